// Package docblock splits a documentation comment into summary, description and @tags,
// and parses the tag shapes the generator understands.
package docblock

import (
	"strings"
)

// Tag is one "@name content" entry. Continuation lines are joined to the content with "\n".
type Tag struct {
	Name    string
	Content string
	// Line is the 1-based line of the comment the tag starts on
	Line int
}

// DocBlock is a parsed documentation comment.
type DocBlock struct {
	Summary     string
	Description string
	Tags        []Tag
}

// Parse accepts Go comments ("// ..." or the text of an ast.CommentGroup) as well as
// block comments ("/** ... */" with leading stars).
func Parse(text string) *DocBlock {
	block := &DocBlock{}
	var prose []string
	var current *Tag

	for i, raw := range strings.Split(text, "\n") {
		line := cleanLine(raw)

		if strings.HasPrefix(line, "@") {
			name, content := splitTag(line)
			block.Tags = append(block.Tags, Tag{Name: name, Content: content, Line: i + 1})
			current = &block.Tags[len(block.Tags)-1]
			continue
		}

		if current != nil {
			if line != "" {
				if current.Content == "" {
					current.Content = line
				} else {
					current.Content += "\n" + line
				}
			}
			continue
		}
		prose = append(prose, line)
	}

	block.Summary, block.Description = splitProse(prose)
	return block
}

// Empty reports whether the comment carried neither prose nor tags.
func (d *DocBlock) Empty() bool {
	return d == nil || (d.Summary == "" && d.Description == "" && len(d.Tags) == 0)
}

// TagsByName returns the tags with the given name, compared case-insensitively.
func (d *DocBlock) TagsByName(name string) []Tag {
	if d == nil {
		return nil
	}
	var tags []Tag
	for _, tag := range d.Tags {
		if strings.EqualFold(tag.Name, name) {
			tags = append(tags, tag)
		}
	}
	return tags
}

// FirstTag returns the first tag with the given name.
func (d *DocBlock) FirstTag(name string) (Tag, bool) {
	tags := d.TagsByName(name)
	if len(tags) == 0 {
		return Tag{}, false
	}
	return tags[0], true
}

// HasTag reports whether a tag with the given name is present.
func (d *DocBlock) HasTag(name string) bool {
	_, ok := d.FirstTag(name)
	return ok
}

// Text returns the summary and description joined by a blank line.
func (d *DocBlock) Text() string {
	if d == nil {
		return ""
	}
	if d.Description == "" {
		return d.Summary
	}
	if d.Summary == "" {
		return d.Description
	}
	return d.Summary + "\n\n" + d.Description
}

func cleanLine(raw string) string {
	line := strings.TrimSpace(raw)

	switch {
	case strings.HasPrefix(line, "//"):
		line = line[2:]
	case strings.HasPrefix(line, "/**"):
		line = line[3:]
	case strings.HasPrefix(line, "/*"):
		line = line[2:]
	}
	line = strings.TrimSuffix(strings.TrimSpace(line), "*/")
	line = strings.TrimSpace(line)

	// de-star block comment lines
	line = strings.TrimLeft(line, "*")
	return strings.TrimSpace(line)
}

func splitTag(line string) (string, string) {
	end := strings.IndexAny(line, " \t")
	if end < 0 {
		return line[1:], ""
	}
	return line[1:end], strings.TrimSpace(line[end:])
}

// splitProse separates the summary (first paragraph) from the rest.
func splitProse(lines []string) (string, string) {
	for len(lines) > 0 && lines[0] == "" {
		lines = lines[1:]
	}
	for len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}

	var summary []string
	i := 0
	for ; i < len(lines); i++ {
		if lines[i] == "" {
			break
		}
		summary = append(summary, lines[i])
		if strings.HasSuffix(lines[i], ".") {
			i++
			break
		}
	}

	rest := lines[i:]
	for len(rest) > 0 && rest[0] == "" {
		rest = rest[1:]
	}
	return strings.Join(summary, " "), strings.Join(rest, "\n")
}
