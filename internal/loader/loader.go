package loader

import (
	"context"
	"fmt"
	goparser "go/parser"
	"go/token"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Load loads the search dirs with the configured strategy and adds their dependencies
// when a dependency depth is set.
func (s *Service) Load(ctx context.Context, dirs []string) (*LoadResult, error) {
	var (
		result *LoadResult
		err    error
	)
	if s.useGoPackages {
		result, err = s.LoadWithGoPackages(ctx, dirs)
	} else {
		result, err = s.LoadSearchDirs(dirs)
	}
	if err != nil {
		return nil, err
	}

	if s.dependencyDepth > 0 && !s.useGoPackages {
		deps, err := s.LoadDependencies(dirs, s.dependencyDepth)
		if err != nil {
			return nil, err
		}
		result.Merge(deps)
	}

	s.debug.Printf("Loader: loaded %d files", len(result.Files))
	return result, nil
}

// LoadSearchDirs loads Go files from the specified search directories
func (s *Service) LoadSearchDirs(dirs []string) (*LoadResult, error) {
	result := newResult()

	for _, searchDir := range dirs {
		absDir, err := filepath.Abs(searchDir)
		if err != nil {
			return nil, err
		}

		packageDir, err := importPathForDir(absDir)
		if err != nil {
			s.debug.Printf("warning: failed to get package name in dir: %s, error: %s", absDir, err.Error())
			packageDir = filepath.ToSlash(filepath.Base(absDir))
		}

		err = s.walkDirectory(packageDir, absDir, result)
		if err != nil {
			return nil, err
		}
	}

	return result, nil
}

// walkDirectory walks a directory and parses Go files
func (s *Service) walkDirectory(packageDir, searchDir string, result *LoadResult) error {
	if s.skipPackageByPrefix(packageDir) {
		return nil
	}

	return filepath.Walk(searchDir, func(path string, f os.FileInfo, wError error) error {
		if wError != nil {
			return fmt.Errorf("failed to access path %q, err: %v", path, wError)
		}

		err := s.shouldSkipDir(path, f)
		if err != nil {
			return err
		}

		if f.IsDir() || s.shouldSkipFile(path) {
			return nil
		}

		relPath, err := filepath.Rel(searchDir, path)
		if err != nil {
			return err
		}

		pkgPath := filepath.ToSlash(filepath.Dir(filepath.Clean(filepath.Join(packageDir, relPath))))
		return s.parseFile(pkgPath, path, nil, false, result)
	})
}

// parseFile parses a single Go file
func (s *Service) parseFile(packagePath, path string, src interface{}, dependency bool, result *LoadResult) error {
	if s.shouldSkipFile(path) {
		return nil
	}

	fileSet := token.NewFileSet()
	astFile, err := goparser.ParseFile(fileSet, path, src, goparser.ParseComments)
	if err != nil {
		return fmt.Errorf("failed to parse file %s, error:%+v", path, err)
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	result.Files[astFile] = &AstFileInfo{
		File:        astFile,
		Path:        absPath,
		PackagePath: packagePath,
		Dependency:  dependency,
		FileSet:     fileSet,
	}
	return nil
}

// ParseSource parses an in-memory file as part of packagePath. Used by tests and by callers
// that generate sources on the fly.
func (s *Service) ParseSource(result *LoadResult, packagePath, path string, src string) error {
	return s.parseFile(packagePath, path, src, false, result)
}

// NewResult returns an empty result for ParseSource.
func NewResult() *LoadResult {
	return newResult()
}

// shouldSkipFile checks if a file should be skipped
func (s *Service) shouldSkipFile(path string) bool {
	if strings.HasSuffix(strings.ToLower(path), "_test.go") {
		return true
	}
	return filepath.Ext(path) != s.parseExtension
}

// shouldSkipDir checks if a directory should be skipped
func (s *Service) shouldSkipDir(path string, f os.FileInfo) error {
	if !f.IsDir() {
		return nil
	}

	if !s.parseVendor && f.Name() == "vendor" {
		return filepath.SkipDir
	}
	if f.Name() == "testdata" {
		return filepath.SkipDir
	}
	if len(f.Name()) > 1 && f.Name()[0] == '.' && f.Name() != ".." {
		return filepath.SkipDir
	}

	if s.excludes != nil {
		if _, ok := s.excludes[path]; ok {
			return filepath.SkipDir
		}
		if _, ok := s.excludes[f.Name()]; ok {
			return filepath.SkipDir
		}
	}

	return nil
}

// skipPackageByPrefix checks if a package should be skipped based on prefix
func (s *Service) skipPackageByPrefix(pkgpath string) bool {
	if len(s.packagePrefix) == 0 {
		return false
	}
	for _, prefix := range s.packagePrefix {
		if strings.HasPrefix(pkgpath, prefix) {
			return false
		}
	}
	return true
}

// Sorted returns the loaded files ordered by path.
func (r *LoadResult) Sorted() []*AstFileInfo {
	files := make([]*AstFileInfo, 0, len(r.Files))
	for _, info := range r.Files {
		files = append(files, info)
	}
	sort.Slice(files, func(i, j int) bool {
		return files[i].Path < files[j].Path
	})
	return files
}
