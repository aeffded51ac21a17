package loader

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

// newModule lays out a small module:
//
//	go.mod                  example.com/shop
//	api/handler.go
//	api/handler_test.go
//	api/models/user.go
//	vendor/lib/lib.go
//	.hidden/skip.go
//	README.md
func newModule(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "go.mod"), "module example.com/shop\n\ngo 1.22\n")
	writeFile(t, filepath.Join(root, "api", "handler.go"), "package api\n\nfunc List() {}\n")
	writeFile(t, filepath.Join(root, "api", "handler_test.go"), "package api\n")
	writeFile(t, filepath.Join(root, "api", "models", "user.go"), "package models\n\ntype User struct{}\n")
	writeFile(t, filepath.Join(root, "vendor", "lib", "lib.go"), "package lib\n")
	writeFile(t, filepath.Join(root, ".hidden", "skip.go"), "package hidden\n")
	writeFile(t, filepath.Join(root, "README.md"), "# shop\n")
	return root
}

func packagePaths(result *LoadResult) []string {
	var paths []string
	for _, info := range result.Sorted() {
		paths = append(paths, info.PackagePath)
	}
	return paths
}

func TestLoadSearchDirs(t *testing.T) {
	t.Run("loads a module directory", func(t *testing.T) {
		// Arrange
		root := newModule(t)
		service := NewService()

		// Act
		result, err := service.LoadSearchDirs([]string{root})

		// Assert
		require.NoError(t, err)
		assert.Equal(t, []string{"example.com/shop/api", "example.com/shop/api/models"}, packagePaths(result))
	})

	t.Run("computes import paths for nested search dirs", func(t *testing.T) {
		root := newModule(t)

		result, err := NewService().LoadSearchDirs([]string{filepath.Join(root, "api", "models")})

		require.NoError(t, err)
		assert.Equal(t, []string{"example.com/shop/api/models"}, packagePaths(result))
	})

	t.Run("includes vendor when configured", func(t *testing.T) {
		root := newModule(t)

		result, err := NewService(WithParseVendor(true)).LoadSearchDirs([]string{root})

		require.NoError(t, err)
		assert.Contains(t, packagePaths(result), "example.com/shop/vendor/lib")
	})

	t.Run("respects custom exclude patterns", func(t *testing.T) {
		root := newModule(t)
		excludes := map[string]struct{}{filepath.Join(root, "api", "models"): {}}

		result, err := NewService(WithExcludes(excludes)).LoadSearchDirs([]string{root})

		require.NoError(t, err)
		assert.Equal(t, []string{"example.com/shop/api"}, packagePaths(result))
	})

	t.Run("respects package prefix filter", func(t *testing.T) {
		root := newModule(t)

		result, err := NewService(WithPackagePrefix([]string{"example.com/other"})).LoadSearchDirs([]string{root})

		require.NoError(t, err)
		assert.Empty(t, result.Files)
	})

	t.Run("handles non-existent directory", func(t *testing.T) {
		_, err := NewService().LoadSearchDirs([]string{filepath.Join(t.TempDir(), "missing")})
		assert.Error(t, err)
	})

	t.Run("reports syntax errors", func(t *testing.T) {
		root := newModule(t)
		writeFile(t, filepath.Join(root, "api", "broken.go"), "package api\n\nfunc {")

		_, err := NewService().LoadSearchDirs([]string{root})
		assert.Error(t, err)
	})
}

func TestLoad(t *testing.T) {
	root := newModule(t)
	var messages []string
	service := NewService(WithDebugger(debugFunc(func(format string, v ...interface{}) {
		messages = append(messages, format)
	})))

	result, err := service.Load(context.Background(), []string{root})

	require.NoError(t, err)
	assert.Len(t, result.Files, 2)
	assert.Contains(t, messages, "Loader: loaded %d files")
}

type debugFunc func(format string, v ...interface{})

func (f debugFunc) Printf(format string, v ...interface{}) { f(format, v...) }

func TestImportPathForDir(t *testing.T) {
	root := newModule(t)

	path, err := importPathForDir(root)
	require.NoError(t, err)
	assert.Equal(t, "example.com/shop", path)

	path, err = importPathForDir(filepath.Join(root, "api", "models"))
	require.NoError(t, err)
	assert.Equal(t, "example.com/shop/api/models", path)
}

func TestParseSource(t *testing.T) {
	result := NewResult()

	err := NewService().ParseSource(result, "example.com/inline", "inline.go", "package inline\n\ntype T struct{}\n")

	require.NoError(t, err)
	require.Len(t, result.Files, 1)
	for file, info := range result.Files {
		assert.Equal(t, "inline", file.Name.Name)
		assert.Equal(t, "example.com/inline", info.PackagePath)
		assert.False(t, info.Dependency)
	}
}

func TestMerge(t *testing.T) {
	service := NewService()
	a, b := NewResult(), NewResult()
	require.NoError(t, service.ParseSource(a, "p", "one.go", "package p\n"))
	require.NoError(t, service.ParseSource(b, "p", "one.go", "package p\n"))
	require.NoError(t, service.ParseSource(b, "p", "two.go", "package p\n"))

	a.Merge(b)

	assert.Len(t, a.Files, 2)
}

func TestSkipLogic(t *testing.T) {
	service := NewService()

	assert.True(t, service.shouldSkipFile("handler_test.go"))
	assert.True(t, service.shouldSkipFile("README.md"))
	assert.False(t, service.shouldSkipFile("handler.go"))
}

func TestLoadDependenciesDisabled(t *testing.T) {
	result, err := NewService().LoadDependencies([]string{"."}, 0)
	require.NoError(t, err)
	assert.Empty(t, result.Files)
}
