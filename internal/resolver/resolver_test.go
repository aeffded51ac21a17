package resolver

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/griffnb/core-openapi/internal/introspect"
)

type importsOnly struct {
	imports map[string][]introspect.Import
	calls   atomic.Int32
}

func (f *importsOnly) Class(name string) (*introspect.ClassInfo, error) {
	return nil, introspect.ErrNotFound
}

func (f *importsOnly) Method(class, method string) (*introspect.MethodInfo, error) {
	return nil, introspect.ErrNotFound
}

func (f *importsOnly) Imports(declaring string) ([]introspect.Import, error) {
	f.calls.Add(1)
	imports, ok := f.imports[declaring]
	if !ok {
		return nil, introspect.ErrNotFound
	}
	return imports, nil
}

func (f *importsOnly) Constant(scope, name string) (interface{}, error) {
	return nil, introspect.ErrNotFound
}

func TestResolve(t *testing.T) {
	in := &importsOnly{imports: map[string][]introspect.Import{
		"example.com/shop/api.Users": {
			{Path: "example.com/shop/models"},
			{Path: "example.com/shop/paging", Alias: "pg"},
			{Path: "example.com/shop/v2/entities", Name: "entity"},
			{Path: "example.com/shop/models.Profile", Alias: "Profile"},
		},
	}}
	s := NewService(in)

	tests := []struct {
		name      string
		declaring string
		short     string
		want      string
	}{
		{"whole name alias", "example.com/shop/api.Users", "Profile", "example.com/shop/models.Profile"},
		{"package qualified", "example.com/shop/api.Users", "models.User", "example.com/shop/models.User"},
		{"explicit alias", "example.com/shop/api.Users", "pg.Page", "example.com/shop/paging.Page"},
		{"declared package name", "example.com/shop/api.Users", "entity.Order", "example.com/shop/v2/entities.Order"},
		{"same namespace", "example.com/shop/api.Users", "Filter", "example.com/shop/api.Filter"},
		{"unknown qualifier", "example.com/shop/api.Users", "other.Thing", "other.Thing"},
		{"already qualified", "example.com/shop/api.Users", "example.com/shop/models.User", "example.com/shop/models.User"},
		{"leading backslash", "example.com/shop/api.Users", `\Filter`, "Filter"},
		{"leading dot", "example.com/shop/api.Users", ".models.User", "models.User"},
		{"declaring without imports", "example.com/shop/api.Health", "Status", "example.com/shop/api.Status"},
		{"declaring without namespace", "Health", "Status", "Status"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, s.Resolve(tt.declaring, tt.short))
		})
	}
}

func TestResolveIsIdempotent(t *testing.T) {
	in := &importsOnly{imports: map[string][]introspect.Import{
		"example.com/shop/api.Users": {{Path: "example.com/shop/models"}},
	}}
	s := NewService(in)

	first := s.Resolve("example.com/shop/api.Users", "models.User")
	assert.Equal(t, first, s.Resolve("example.com/shop/api.Users", first))
}

func TestTableIsBuiltOnce(t *testing.T) {
	in := &importsOnly{imports: map[string][]introspect.Import{
		"example.com/shop/api.Users": {{Path: "example.com/shop/models"}},
	}}
	s := NewService(in)

	for i := 0; i < 5; i++ {
		s.Resolve("example.com/shop/api.Users", "models.User")
		s.Resolve("example.com/shop/api.Missing", "models.User")
	}

	assert.Equal(t, int32(2), in.calls.Load())
	assert.Equal(t, ImportTable{"models": "example.com/shop/models"}, s.Table("example.com/shop/api.Users"))
}
