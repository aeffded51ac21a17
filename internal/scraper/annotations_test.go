package scraper

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/griffnb/core-openapi/internal/domain"
)

const mainSrc = `// Package main serves the shop.
//
// @title Shop API
// @version v1
// @description Buy things.
// @server https://shop.example.com Production
// @tag.name users
// @tag.description User accounts
//
// @securityDefinitions.bearer Token
// @bearerFormat JWT
package main

func main() {}
`

const usersSrc = `package api

import "example.com/shop/models"

type Users struct{}

// Get returns one user.
//
// @Router /users/{id} [get]
// @Tags users
// @Security Token
// @Wrapper models.Envelope data
// @return models.User
func (u *Users) Get(id int) models.User { return models.User{} }

// Create stores a user.
//
// @Router /users [post]
// @Router /accounts [put]
// @Version v2
// @Security Token || ApiKey[read, write]
func (u *Users) Create(user models.User) {}

// helper is not a handler.
func helper() {}

// Health reports liveness.
//
// @Router /health [get]
// @Router /health [fetch]
func Health() string { return "ok" }
`

const modelsSrc = `package models

type User struct {
	ID   int    ` + "`json:\"id\"`" + `
	Name string ` + "`json:\"name\"`" + `
}

type Envelope struct {
	Status string      ` + "`json:\"status\"`" + `
	Data   interface{} ` + "`json:\"data\"`" + `
}
`

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func newShop(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "go.mod"), "module example.com/shop\n\ngo 1.22\n")
	writeFile(t, filepath.Join(root, "main.go"), mainSrc)
	writeFile(t, filepath.Join(root, "api", "users.go"), usersSrc)
	writeFile(t, filepath.Join(root, "models", "models.go"), modelsSrc)
	return root
}

func TestAnnotationsScrape(t *testing.T) {
	// Arrange
	root := newShop(t)
	scraper := &Annotations{}

	// Act
	specs, err := scraper.Scrape(context.Background(), root)

	// Assert
	require.NoError(t, err)
	require.Len(t, specs, 2)

	v1 := specs[0]
	assert.Equal(t, "v1", v1.Version)
	assert.Equal(t, "Shop API", v1.Title)
	assert.Equal(t, "Buy things.", v1.Description)
	assert.Equal(t, []domain.Server{{URL: "https://shop.example.com", Description: "Production"}}, v1.Servers)
	require.Len(t, v1.SecuritySchemes, 1)
	assert.Equal(t, "JWT", v1.SecuritySchemes[0].BearerFormat)

	require.Len(t, v1.Endpoints, 2)
	get := v1.Endpoints[0]
	assert.Equal(t, "/users/{id}", get.ID)
	assert.Equal(t, "GET", get.Method())
	assert.Equal(t, domain.Callback{Type: "example.com/shop/api.Users", Method: "Get"}, get.Callback)
	assert.Equal(t, []string{"users"}, get.Tags)
	assert.Equal(t, []string{"Token"}, get.SecuritySchemes)
	assert.Equal(t, &domain.ResultWrapper{WrapperType: "models.Envelope", ResultingProperty: "data"}, get.ResultWrapper)

	health := v1.Endpoints[1]
	assert.Equal(t, "/health", health.ID)
	assert.Equal(t, domain.Callback{Method: "example.com/shop/api.Health"}, health.Callback)
	assert.Equal(t, []string{"Api"}, health.Tags)

	v2 := specs[1]
	assert.Equal(t, "v2", v2.Version)
	assert.Equal(t, "API", v2.DisplayTitle())
	require.Len(t, v2.Endpoints, 2)
	assert.Equal(t, "POST", v2.Endpoints[0].Method())
	assert.Equal(t, "/accounts", v2.Endpoints[1].ID)
	assert.Equal(t, "PUT", v2.Endpoints[1].Method())
	assert.Equal(t, []string{"Token", "ApiKey"}, v2.Endpoints[0].SecuritySchemes)
}

func TestAnnotationsIntrospector(t *testing.T) {
	t.Run("before scraping", func(t *testing.T) {
		_, err := (&Annotations{}).Introspector(context.Background())
		assert.ErrorIs(t, err, ErrNotScraped)
	})

	t.Run("reads the scraped handlers", func(t *testing.T) {
		scraper := &Annotations{}
		_, err := scraper.Scrape(context.Background(), newShop(t))
		require.NoError(t, err)

		in, err := scraper.Introspector(context.Background())
		require.NoError(t, err)

		method, err := in.Method("example.com/shop/api.Users", "Get")
		require.NoError(t, err)
		require.Len(t, method.Params, 1)
		assert.Equal(t, "id", method.Params[0].Name)
		assert.Contains(t, method.Doc, "@return models.User")
	})
}

func TestAnnotationsDuplicateVersion(t *testing.T) {
	root := newShop(t)
	writeFile(t, filepath.Join(root, "info.go"), "package main\n\n// @title Again\n// @version v1\nvar _ = 0\n")

	_, err := (&Annotations{}).Scrape(context.Background(), root)

	assert.ErrorContains(t, err, `version "v1" is described twice`)
}

func TestParseSecurity(t *testing.T) {
	assert.Equal(t, []string{"Token"}, parseSecurity("Token"))
	assert.Equal(t, []string{"OAuth2", "ApiKey"}, parseSecurity("OAuth2[read, write] && ApiKey"))
	assert.Empty(t, parseSecurity(" "))
}

func TestParseRouter(t *testing.T) {
	r, err := parseRouter("/users/{id} [delete]")
	require.NoError(t, err)
	assert.Equal(t, route{path: "/users/{id}", method: "DELETE"}, r)

	_, err = parseRouter("/users [fetch]")
	assert.Error(t, err)

	_, err = parseRouter("users")
	assert.Error(t, err)
}
