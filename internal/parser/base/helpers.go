package base

import (
	"strings"
)

// IsGeneralAPIComment reports whether a comment carries general API info: it names a
// title or a version and no route.
func IsGeneralAPIComment(comments []string) bool {
	general := false
	for _, commentLine := range comments {
		commentLine = strings.TrimSpace(commentLine)
		if len(commentLine) == 0 {
			continue
		}
		attribute := strings.ToLower(FieldsByAnySpace(commentLine, 2)[0])
		switch attribute {
		case "@summary", "@router", "@success", "@failure", "@response", "@return", "@param":
			return false
		case "@title", "@version":
			general = true
		}
	}
	return general
}

// FieldsByAnySpace splits s by whitespace into at most n fields; the last field keeps
// the rest of the line.
func FieldsByAnySpace(s string, n int) []string {
	s = strings.TrimSpace(s)
	var out []string
	for len(s) > 0 && len(out) < n-1 {
		i := strings.IndexFunc(s, isSpace)
		if i < 0 {
			break
		}
		out = append(out, s[:i])
		s = strings.TrimLeftFunc(s[i:], isSpace)
	}
	if len(s) > 0 {
		out = append(out, s)
	}
	return out
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t'
}

// AppendDescription joins a continued description line.
func AppendDescription(description, line string) string {
	if description == "" {
		return line
	}
	return description + "\n" + line
}
