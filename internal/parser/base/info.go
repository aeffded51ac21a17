package base

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// getMarkdownForTag reads markdown content for a given tag name
func (s *Service) getMarkdownForTag(tagName string) ([]byte, error) {
	if tagName == "" {
		return make([]byte, 0), nil
	}

	dirEntries, err := os.ReadDir(s.markdownFileDir)
	if err != nil {
		return nil, err
	}

	expectedFileName := tagName
	if !strings.HasSuffix(tagName, ".md") {
		expectedFileName = tagName + ".md"
	}

	for _, entry := range dirEntries {
		if entry.IsDir() || entry.Name() != expectedFileName {
			continue
		}

		fullPath := filepath.Join(s.markdownFileDir, entry.Name())
		content, err := os.ReadFile(fullPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read markdown file %s: %w", fullPath, err)
		}
		return content, nil
	}

	return nil, fmt.Errorf("unable to find markdown file for tag %s in %s", tagName, s.markdownFileDir)
}
