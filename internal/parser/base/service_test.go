package base

import (
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/griffnb/core-openapi/internal/domain"
)

func TestParseGeneralInfo(t *testing.T) {
	t.Parallel()

	t.Run("parse title, version, and description", func(t *testing.T) {
		service := NewService()

		comments := []string{
			"@title Test API",
			"@version v2",
			"@description This is a test API",
		}

		spec, err := service.ParseGeneralInfo(comments)
		require.NoError(t, err)
		assert.Equal(t, "Test API", spec.Title)
		assert.Equal(t, "v2", spec.Version)
		assert.Equal(t, "This is a test API", spec.Description)
	})

	t.Run("parse multiline description", func(t *testing.T) {
		service := NewService()

		comments := []string{
			"@description Line 1",
			"@description Line 2",
			"@description Line 3",
		}

		spec, err := service.ParseGeneralInfo(comments)
		require.NoError(t, err)
		assert.Equal(t, "Line 1\nLine 2\nLine 3", spec.Description)
	})

	t.Run("parse description from markdown", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "api.md"), []byte("# Shop"), 0o644))
		service := NewService()
		service.SetMarkdownFileDir(dir)

		spec, err := service.ParseGeneralInfo([]string{"@description.markdown"})
		require.NoError(t, err)
		assert.Equal(t, "# Shop", spec.Description)
	})
}

func TestParseTagInfo(t *testing.T) {
	t.Parallel()

	t.Run("parse tags with description and external docs", func(t *testing.T) {
		service := NewService()

		comments := []string{
			"@tag.name users",
			"@tag.description User accounts",
			"@tag.docs.url https://docs.example.com/users",
			"@tag.name orders",
		}

		spec, err := service.ParseGeneralInfo(comments)
		require.NoError(t, err)
		assert.Equal(t, []domain.Tag{
			{Name: "users", Description: "User accounts", ExternalDocs: "https://docs.example.com/users"},
			{Name: "orders"},
		}, spec.Tags)
	})

	t.Run("tag attributes before a tag are ignored", func(t *testing.T) {
		spec, err := NewService().ParseGeneralInfo([]string{"@tag.description orphan"})
		require.NoError(t, err)
		assert.Empty(t, spec.Tags)
	})
}

func TestParseServerInfo(t *testing.T) {
	t.Parallel()

	t.Run("parse servers", func(t *testing.T) {
		comments := []string{
			"@server https://api.example.com Production",
			"@server http://localhost:8080",
		}

		spec, err := NewService().ParseGeneralInfo(comments)
		require.NoError(t, err)
		assert.Equal(t, []domain.Server{
			{URL: "https://api.example.com", Description: "Production"},
			{URL: "http://localhost:8080"},
		}, spec.Servers)
	})

	t.Run("server without url", func(t *testing.T) {
		_, err := NewService().ParseGeneralInfo([]string{"@server"})
		assert.Error(t, err)
	})
}

func TestParseExternalDocs(t *testing.T) {
	t.Parallel()

	comments := []string{
		"@externalDocs.description OpenAPI",
		"@externalDocs.url https://swagger.io/resources/open-api/",
	}

	spec, err := NewService().ParseGeneralInfo(comments)
	require.NoError(t, err)
	require.NotNil(t, spec.ExternalDocs)
	assert.Equal(t, "OpenAPI", spec.ExternalDocs.Description)
	assert.Equal(t, "https://swagger.io/resources/open-api/", spec.ExternalDocs.URL)
}

func TestParseSecurityDefinitions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		comments []string
		want     domain.SecurityScheme
	}{
		{
			name:     "basic",
			comments: []string{"@securityDefinitions.basic BasicAuth"},
			want:     domain.SecurityScheme{ID: "BasicAuth", Type: domain.SecurityHTTP, Scheme: "basic"},
		},
		{
			name: "bearer",
			comments: []string{
				"@securityDefinitions.bearer Token",
				"@bearerFormat JWT",
				"@description Session token",
			},
			want: domain.SecurityScheme{ID: "Token", Type: domain.SecurityHTTP, Scheme: "bearer", BearerFormat: "JWT", Description: "Session token"},
		},
		{
			name: "apikey",
			comments: []string{
				"@securityDefinitions.apikey ApiKeyAuth",
				"@in header",
				"@name Authorization",
			},
			want: domain.SecurityScheme{ID: "ApiKeyAuth", Type: domain.SecurityAPIKey, In: "header", Name: "Authorization"},
		},
		{
			name: "oauth2 implicit",
			comments: []string{
				"@securitydefinitions.oauth2.implicit OAuth2Implicit",
				"@authorizationurl https://example.com/oauth/authorize",
				"@scope.write Grants write access",
				"@scope.admin Grants read and write access to administrative information",
			},
			want: domain.SecurityScheme{
				ID:   "OAuth2Implicit",
				Type: domain.SecurityOAuth2,
				Flows: &domain.OAuthFlows{Implicit: &domain.OAuthFlow{
					AuthorizationURL: "https://example.com/oauth/authorize",
					Scopes: map[string]string{
						"write": "Grants write access",
						"admin": "Grants read and write access to administrative information",
					},
				}},
			},
		},
		{
			name: "oauth2 password",
			comments: []string{
				"@securitydefinitions.oauth2.password OAuth2Password",
				"@tokenUrl https://example.com/oauth/token",
				"@refreshUrl https://example.com/oauth/refresh",
			},
			want: domain.SecurityScheme{
				ID:   "OAuth2Password",
				Type: domain.SecurityOAuth2,
				Flows: &domain.OAuthFlows{Password: &domain.OAuthFlow{
					TokenURL:   "https://example.com/oauth/token",
					RefreshURL: "https://example.com/oauth/refresh",
					Scopes:     map[string]string{},
				}},
			},
		},
		{
			name: "oauth2 application",
			comments: []string{
				"@securitydefinitions.oauth2.application OAuth2Application",
				"@tokenUrl https://example.com/oauth/token",
			},
			want: domain.SecurityScheme{
				ID:   "OAuth2Application",
				Type: domain.SecurityOAuth2,
				Flows: &domain.OAuthFlows{ClientCredentials: &domain.OAuthFlow{
					TokenURL: "https://example.com/oauth/token",
					Scopes:   map[string]string{},
				}},
			},
		},
		{
			name: "oauth2 accessCode",
			comments: []string{
				"@securitydefinitions.oauth2.accessCode OAuth2AccessCode",
				"@tokenUrl https://example.com/oauth/token",
				"@authorizationurl https://example.com/oauth/authorize",
			},
			want: domain.SecurityScheme{
				ID:   "OAuth2AccessCode",
				Type: domain.SecurityOAuth2,
				Flows: &domain.OAuthFlows{AuthorizationCode: &domain.OAuthFlow{
					AuthorizationURL: "https://example.com/oauth/authorize",
					TokenURL:         "https://example.com/oauth/token",
					Scopes:           map[string]string{},
				}},
			},
		},
		{
			name: "openid connect",
			comments: []string{
				"@securityDefinitions.openIdConnect OIDC",
				"@openIdConnectUrl https://example.com/.well-known/openid-configuration",
			},
			want: domain.SecurityScheme{ID: "OIDC", Type: domain.SecurityOpenIDConnect, OpenIDConnectURL: "https://example.com/.well-known/openid-configuration"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec, err := NewService().ParseGeneralInfo(tt.comments)
			require.NoError(t, err)
			require.Len(t, spec.SecuritySchemes, 1)
			assert.Equal(t, tt.want, spec.SecuritySchemes[0])
		})
	}

	t.Run("definition ends at the next attribute", func(t *testing.T) {
		comments := []string{
			"@securityDefinitions.apikey ApiKeyAuth",
			"@in header",
			"@name X-Key",
			"@title After",
		}

		spec, err := NewService().ParseGeneralInfo(comments)
		require.NoError(t, err)
		assert.Equal(t, "After", spec.Title)
		assert.Len(t, spec.SecuritySchemes, 1)
	})

	t.Run("missing attributes", func(t *testing.T) {
		_, err := NewService().ParseGeneralInfo([]string{"@securityDefinitions.apikey ApiKeyAuth", "@in header"})
		assert.Error(t, err)
	})

	t.Run("scope with comma", func(t *testing.T) {
		comments := []string{
			"@securitydefinitions.oauth2.implicit OAuth2Implicit",
			"@authorizationurl https://example.com/oauth/authorize",
			"@scope.read,write Nope",
		}
		_, err := NewService().ParseGeneralInfo(comments)
		assert.Error(t, err)
	})

	t.Run("duplicate ids", func(t *testing.T) {
		comments := []string{
			"@securityDefinitions.basic Auth",
			"@securityDefinitions.basic Auth",
		}
		_, err := NewService().ParseGeneralInfo(comments)
		assert.Error(t, err)
	})
}

func TestParseFile(t *testing.T) {
	t.Parallel()

	src := `// Package main serves the shop.
//
// @title Shop API
// @version v1
// @server https://shop.example.com
package main

// @title Shop API
// @version v2
var _ = 0

// GetUser godoc
// @version v1
// @router /users/{id} [get]
func GetUser() {}
`
	file, err := parser.ParseFile(token.NewFileSet(), "main.go", src, parser.ParseComments)
	require.NoError(t, err)

	specs, err := NewService().ParseFile(file)
	require.NoError(t, err)
	require.Len(t, specs, 2)
	assert.Equal(t, "v1", specs[0].Version)
	assert.Equal(t, "Shop API", specs[0].Title)
	assert.Len(t, specs[0].Servers, 1)
	assert.Equal(t, "v2", specs[1].Version)
}

func TestFieldsByAnySpace(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{"@server", "https://x.example.com  Main server"}, FieldsByAnySpace("@server   https://x.example.com  Main server", 2))
	assert.Equal(t, []string{"a", "b", "c d"}, FieldsByAnySpace("a\tb c d", 3))
	assert.Equal(t, []string{"single"}, FieldsByAnySpace(" single ", 2))
	assert.Empty(t, FieldsByAnySpace("   ", 2))
}
