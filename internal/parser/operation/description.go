package operation

import (
	"strings"

	"github.com/griffnb/core-openapi/internal/domain"
	"github.com/griffnb/core-openapi/internal/parser/docblock"
)

// describe fills the description. A single @link becomes the external documentation,
// several are listed under the description.
func (s *Service) describe(op *Operation, doc *docblock.DocBlock, location string) {
	var lines []string
	if doc.Description != "" {
		lines = append(lines, doc.Description)
	}

	var links []docblock.Link
	for _, tag := range doc.TagsByName("link") {
		link, err := docblock.ParseLink(tag)
		if err != nil {
			s.invalidTag(err, location)
			continue
		}
		links = append(links, link)
	}

	switch len(links) {
	case 0:
	case 1:
		op.ExternalDocs = &domain.ExternalDocs{URL: links[0].URL, Description: links[0].Description}
	default:
		for _, link := range links {
			lines = append(lines, strings.TrimSpace(link.URL+" "+link.Description))
		}
	}

	op.Description = strings.Join(lines, "\n")
}
