// Package loader finds and parses the Go source files the source introspector indexes.
package loader

import (
	"go/ast"
	"go/token"
)

// Service handles loading Go packages and their AST files
type Service struct {
	parseVendor     bool
	parseInternal   bool
	excludes        map[string]struct{}
	packagePrefix   []string
	parseExtension  string
	useGoPackages   bool
	dependencyDepth int
	debug           Debugger
}

// Debugger interface for logging
type Debugger interface {
	Printf(format string, v ...interface{})
}

// LoadResult contains the results of loading packages
type LoadResult struct {
	Files map[*ast.File]*AstFileInfo
}

// AstFileInfo contains information about a parsed AST file
type AstFileInfo struct {
	File *ast.File

	// Path is the absolute file path
	Path string

	// PackagePath is the import path of the file's package
	PackagePath string

	// Dependency is set for files loaded as dependencies of the search dirs
	Dependency bool

	FileSet *token.FileSet
}

// Option is a functional option for configuring Service
type Option func(*Service)

// noOpDebugger is a no-op debugger
type noOpDebugger struct{}

func (n *noOpDebugger) Printf(format string, v ...interface{}) {}

func newResult() *LoadResult {
	return &LoadResult{Files: make(map[*ast.File]*AstFileInfo)}
}

// Merge adds the files of other that are not loaded yet, keyed by path.
func (r *LoadResult) Merge(other *LoadResult) {
	seen := make(map[string]struct{}, len(r.Files))
	for _, info := range r.Files {
		seen[info.Path] = struct{}{}
	}
	for file, info := range other.Files {
		if _, ok := seen[info.Path]; ok {
			continue
		}
		r.Files[file] = info
	}
}
