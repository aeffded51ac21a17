package registry

import (
	"go/ast"
	goparser "go/parser"
	"go/token"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collect(t *testing.T, s *Service, pkgPath, path, src string) {
	t.Helper()
	file, err := goparser.ParseFile(token.NewFileSet(), path, src, goparser.ParseComments)
	require.NoError(t, err)
	s.CollectAstFile(pkgPath, path, file)
}

const pagingSrc = `package paging

// DefaultSize is the default page size.
const DefaultSize = 20

const (
	MaxSize = DefaultSize * 5
	Label   = "page"
)
`

const apiSrc = `package api

import (
	"net/http"

	pg "example.com/shop/paging"
	"example.com/shop/models"
	_ "example.com/shop/drivers"
)

type Status string

const (
	StatusActive Status = "active"
	StatusBlocked Status = "blocked"
)

const (
	First = iota + 1
	Second
	Third
)

const (
	KB = 1 << (10 * (iota + 1))
	MB
)

const (
	Limit      = pg.DefaultSize
	Ratio      float64 = 3
	Half       = 7 / 2
	Enabled    = Limit > 10
	Greeting   = "hello, " + pg.Label
	Letter     = string(rune(65))
	NameLength = len(Greeting)
	Cycle      = Cycle + 1
)

// Handler serves users.
type Handler struct {
	users []models.User
}

type (
	// Request is the list request.
	Request struct{}
	Response struct{}
)

// List lists users.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {}

func (h Handler) Get(id int) {}

// Health reports liveness.
func Health() {}
`

func newIndexedService(t *testing.T) *Service {
	s := NewService()
	collect(t, s, "example.com/shop/paging", "/src/paging/paging.go", pagingSrc)
	collect(t, s, "example.com/shop/api", "/src/api/api.go", apiSrc)
	return s
}

func TestCollectAstFile(t *testing.T) {
	s := newIndexedService(t)

	t.Run("indexes packages", func(t *testing.T) {
		assert.Equal(t, 2, s.Packages())
		pkg, ok := s.Package("example.com/shop/api")
		require.True(t, ok)
		assert.Equal(t, "api", pkg.Name)
		require.Len(t, pkg.Files, 1)

		all := s.AllPackages()
		require.Len(t, all, 2)
		assert.Equal(t, "example.com/shop/api", all[0].Path)
		assert.Equal(t, "example.com/shop/paging", all[1].Path)
	})

	t.Run("ignores duplicate files", func(t *testing.T) {
		collect(t, s, "example.com/shop/api", "/src/api/api.go", apiSrc)
		pkg, _ := s.Package("example.com/shop/api")
		assert.Len(t, pkg.Files, 1)
	})

	t.Run("indexes types with docs", func(t *testing.T) {
		handler, ok := s.FindType("example.com/shop/api", "Handler")
		require.True(t, ok)
		assert.Equal(t, "Handler serves users.\n", handler.Doc.Text())

		request, ok := s.FindType("example.com/shop/api", "Request")
		require.True(t, ok)
		assert.Equal(t, "Request is the list request.\n", request.Doc.Text())

		response, ok := s.FindType("example.com/shop/api", "Response")
		require.True(t, ok)
		assert.Nil(t, response.Doc)

		_, ok = s.FindType("example.com/shop/missing", "Handler")
		assert.False(t, ok)
	})

	t.Run("indexes functions and methods", func(t *testing.T) {
		list, ok := s.FindMethod("example.com/shop/api", "Handler", "List")
		require.True(t, ok)
		assert.Equal(t, "Handler", list.Receiver)

		_, ok = s.FindMethod("example.com/shop/api", "Handler", "Get")
		assert.True(t, ok)

		health, ok := s.FindFunc("example.com/shop/api", "Health")
		require.True(t, ok)
		assert.Equal(t, "", health.Receiver)

		_, ok = s.FindFunc("example.com/shop/api", "List")
		assert.False(t, ok)
	})
}

func TestImports(t *testing.T) {
	s := newIndexedService(t)
	pkg, _ := s.Package("example.com/shop/api")

	imports := s.Imports(pkg.Files[0])

	assert.Equal(t, []Import{
		{Path: "net/http"},
		{Path: "example.com/shop/paging", Alias: "pg", Name: "paging"},
		{Path: "example.com/shop/models"},
	}, imports)

	path, ok := s.ResolvePackage(pkg.Files[0], "pg")
	require.True(t, ok)
	assert.Equal(t, "example.com/shop/paging", path)

	path, ok = s.ResolvePackage(pkg.Files[0], "models")
	require.True(t, ok)
	assert.Equal(t, "example.com/shop/models", path)

	_, ok = s.ResolvePackage(pkg.Files[0], "paging")
	assert.False(t, ok)
}

func TestConstValue(t *testing.T) {
	s := newIndexedService(t)

	tests := []struct {
		name     string
		expected interface{}
	}{
		{"StatusActive", "active"},
		{"StatusBlocked", "blocked"},
		{"First", 1},
		{"Second", 2},
		{"Third", 3},
		{"KB", 1024},
		{"MB", 1048576},
		{"Limit", 20},
		{"Ratio", float64(3)},
		{"Half", 3},
		{"Enabled", true},
		{"Greeting", "hello, page"},
		{"Letter", "A"},
		{"NameLength", 11},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			value, ok := s.ConstValue("example.com/shop/api", tt.name)
			require.True(t, ok)
			assert.Equal(t, tt.expected, value)
		})
	}

	t.Run("cross-package expression", func(t *testing.T) {
		value, ok := s.ConstValue("example.com/shop/paging", "MaxSize")
		require.True(t, ok)
		assert.Equal(t, 100, value)
	})

	t.Run("self reference fails", func(t *testing.T) {
		_, ok := s.ConstValue("example.com/shop/api", "Cycle")
		assert.False(t, ok)
	})

	t.Run("unknown constant", func(t *testing.T) {
		_, ok := s.ConstValue("example.com/shop/api", "Missing")
		assert.False(t, ok)
		_, ok = s.ConstValue("example.com/shop/none", "Limit")
		assert.False(t, ok)
	})
}

func TestReceiverName(t *testing.T) {
	expr, err := goparser.ParseExpr("*Box[T]")
	require.NoError(t, err)
	assert.Equal(t, "Box", receiverName(expr))
	assert.Equal(t, "", receiverName(&ast.ArrayType{}))
}
