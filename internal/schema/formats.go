package schema

import "strings"

// basicFormats are the formats OpenAPI defines per schema type.
var basicFormats = map[string][]string{
	STRING:  {"date", "date-time", "password", "byte", "binary", "email", "uuid", "uri", "hostname", "ipv4", "ipv6"},
	INTEGER: {"int32", "int64"},
	NUMBER:  {"float", "double"},
}

// IsBasicFormat reports whether format is a standard format of schemaType.
func IsBasicFormat(schemaType, format string) bool {
	for _, f := range basicFormats[schemaType] {
		if f == format {
			return true
		}
	}
	return false
}

// Formats is a registry of custom formats, each a schema fragment merged into the
// schema that uses it.
type Formats map[string]*Schema

// ApplyFormat sets format on s. A standard format of the schema's type becomes the
// format field and is trimmed from the front of the description; a registered custom
// format is merged in. It reports whether the format was known.
func (f Formats) ApplyFormat(s *Schema, format string) bool {
	if IsBasicFormat(s.Type, format) {
		s.Format = format
		s.Description = TrimFormat(s.Description, format)
		return true
	}
	if custom, ok := f[format]; ok {
		MergeSchema(s, custom.DeepCopy())
		return true
	}
	return false
}

// TrimFormat removes a leading "<format> " from a description.
func TrimFormat(description, format string) string {
	return strings.TrimSpace(strings.TrimPrefix(description, format+" "))
}
