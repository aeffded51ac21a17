// Package resolver expands the short class names written in doc comments into fully
// qualified names using the imports of the declaring type.
package resolver

import (
	"strings"

	"github.com/griffnb/core-openapi/internal/introspect"
)

// ImportTable maps a local alias to the imported name.
type ImportTable map[string]string

// Service resolves names. Import tables are built once per declaring type.
type Service struct {
	introspector introspect.Introspector
	tables       introspect.Memo[ImportTable]
}

// NewService creates a resolver over an introspector.
func NewService(in introspect.Introspector) *Service {
	return &Service{introspector: in}
}

// Resolve returns the fully qualified name of shortName as seen from declaring.
//
// Strategy:
//  1. The whole name is an alias: its import.
//  2. "pkg.Type" where pkg is an alias: "importpath.Type".
//  3. An unqualified name: the declaring type's namespace plus the name.
//  4. Anything else is returned unchanged.
//
// A leading "\" or "." marks a name as already qualified.
func (s *Service) Resolve(declaring, shortName string) string {
	if rest, ok := qualified(shortName); ok {
		return rest
	}

	table := s.Table(declaring)
	if full, ok := table[shortName]; ok {
		return full
	}

	if !strings.Contains(shortName, "/") {
		if dot := strings.Index(shortName, "."); dot > 0 {
			if path, ok := table[shortName[:dot]]; ok {
				return path + shortName[dot:]
			}
			return shortName
		}
		if ns := introspect.Namespace(declaring); ns != "" {
			return ns + "." + shortName
		}
	}
	return shortName
}

// Table returns the import table of declaring. Declarations without imports get an
// empty table.
func (s *Service) Table(declaring string) ImportTable {
	table, _ := s.tables.Get(declaring, func() (ImportTable, error) {
		imports, err := s.introspector.Imports(declaring)
		if err != nil {
			return ImportTable{}, nil
		}
		table := make(ImportTable, len(imports))
		for _, imp := range imports {
			table[imp.LocalName()] = imp.Path
		}
		return table, nil
	})
	return table
}

func qualified(name string) (string, bool) {
	for _, prefix := range []string{`\`, "."} {
		if strings.HasPrefix(name, prefix) && len(name) > len(prefix) {
			return name[len(prefix):], true
		}
	}
	return "", false
}
