package loader

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/tools/go/packages"
)

// LoadWithGoPackages loads packages using go/packages. Dependencies are walked when a
// dependency depth is configured.
func (s *Service) LoadWithGoPackages(ctx context.Context, searchDirs []string) (*LoadResult, error) {
	mode := packages.NeedName | packages.NeedFiles | packages.NeedCompiledGoFiles | packages.NeedImports |
		packages.NeedSyntax
	if s.dependencyDepth > 0 {
		mode |= packages.NeedDeps
	}

	patterns := make([]string, 0, len(searchDirs))
	for _, dir := range searchDirs {
		absDir, err := filepath.Abs(dir)
		if err != nil {
			return nil, err
		}
		patterns = append(patterns, absDir+"/...")
	}

	pkgs, err := packages.Load(&packages.Config{
		Context: ctx,
		Mode:    mode,
	}, patterns...)
	if err != nil {
		return nil, err
	}

	for _, pkg := range pkgs {
		for _, e := range pkg.Errors {
			return nil, fmt.Errorf("package %s: %w", pkg.PkgPath, e)
		}
	}

	result := newResult()
	seen := make(map[string]struct{})
	if err := s.walkPackages(pkgs, 0, seen, result); err != nil {
		return nil, err
	}
	return result, nil
}

func (s *Service) walkPackages(pkgs []*packages.Package, depth int, seen map[string]struct{}, result *LoadResult) error {
	for _, pkg := range pkgs {
		if s.skipPackageByPrefix(pkg.PkgPath) {
			continue
		}
		if _, ok := seen[pkg.PkgPath]; ok {
			continue
		}
		seen[pkg.PkgPath] = struct{}{}

		for i, file := range pkg.CompiledGoFiles {
			if i >= len(pkg.Syntax) {
				break
			}
			fileInfo, err := os.Stat(file)
			if err != nil {
				return err
			}
			if s.shouldSkipDir(file, fileInfo) != nil || s.shouldSkipFile(file) {
				continue
			}

			result.Files[pkg.Syntax[i]] = &AstFileInfo{
				File:        pkg.Syntax[i],
				Path:        file,
				PackagePath: pkg.PkgPath,
				Dependency:  depth > 0,
				FileSet:     pkg.Fset,
			}
		}

		if depth < s.dependencyDepth {
			imports := make([]*packages.Package, 0, len(pkg.Imports))
			for _, dep := range pkg.Imports {
				imports = append(imports, dep)
			}
			if err := s.walkPackages(imports, depth+1, seen, result); err != nil {
				return err
			}
		}
	}
	return nil
}
