package synth

import "github.com/griffnb/core-openapi/internal/introspect"

// VirtualFamily is a doc tag family declaring virtual properties on a class comment,
// e.g. "property" for "@property type $name description". Enum and Example enable the
// "<tag>Enum" and "<tag>Example" companion tags.
type VirtualFamily struct {
	Tag     string `yaml:"tag"`
	Enum    bool   `yaml:"enum"`
	Example bool   `yaml:"example"`
}

// Options are the describing options of a rule.
type Options struct {
	// PublicProperties describes the serialized fields of the class
	PublicProperties bool `yaml:"publicProperties"`

	VirtualFamilies []VirtualFamily `yaml:"virtualFamilies"`

	// RedirectTag names the tag that redirects describing elsewhere, empty to disable
	RedirectTag string `yaml:"redirectTag"`
}

// Rule applies Options to Base and every class embedding it. An empty Base is the
// default rule.
type Rule struct {
	Base    string  `yaml:"base"`
	Options Options `yaml:"options"`
}

// DefaultRule describes public properties and "@property" tags, and honors "@schema".
var DefaultRule = Rule{
	Options: Options{
		PublicProperties: true,
		VirtualFamilies: []VirtualFamily{
			{Tag: "property", Enum: true, Example: true},
		},
		RedirectTag: "schema",
	},
}

// rulesFor returns the options of the last registered rule matching class, falling back
// to the last default rule.
func (c *ClassService) rulesFor(class string) Options {
	for i := len(c.rules) - 1; i >= 0; i-- {
		rule := c.rules[i]
		if rule.Base == "" {
			continue
		}
		if introspect.IsSubclassOf(c.introspector, class, rule.Base) {
			return rule.Options
		}
	}
	for i := len(c.rules) - 1; i >= 0; i-- {
		if c.rules[i].Base == "" {
			return c.rules[i].Options
		}
	}
	return DefaultRule.Options
}
