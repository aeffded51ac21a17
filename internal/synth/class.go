package synth

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/griffnb/core-openapi/internal/domain"
	"github.com/griffnb/core-openapi/internal/introspect"
	"github.com/griffnb/core-openapi/internal/parser/docblock"
	"github.com/griffnb/core-openapi/internal/resolver"
	"github.com/griffnb/core-openapi/internal/schema"
)

// ClassService describes classes and live instances as object schemas.
type ClassService struct {
	introspector introspect.Introspector
	resolver     *resolver.Service
	types        *TypeService
	rules        []Rule
	notifier     domain.Notifier
	debug        Debugger

	// describing holds the classes on the current call chain
	describing map[string]struct{}
}

// DescribeClass describes a class by its fully qualified name. It returns nil, after an
// ERROR notice, when the class cannot be found.
func (c *ClassService) DescribeClass(name string) *schema.Schema {
	info, err := c.introspector.Class(name)
	if err != nil {
		c.notifier.Notify(domain.LevelError, fmt.Sprintf("Class %q could not be found", name))
		return nil
	}
	return c.describe(info, nil)
}

// DescribeInstance describes a live struct value. Field values take part in redirection.
// Classes the introspector does not know are described from their Go type alone.
func (c *ClassService) DescribeInstance(v interface{}) *schema.Schema {
	name := introspect.ClassName(v)
	if name == "" {
		c.notifier.Notify(domain.LevelWarning, fmt.Sprintf("Value of type %T is not a struct", v))
		return nil
	}

	info, err := c.introspector.Class(name)
	if err != nil {
		info = introspect.ReflectClass(v)
	}
	return c.describe(info, v)
}

func (c *ClassService) describe(info *introspect.ClassInfo, instance interface{}) *schema.Schema {
	if _, ok := c.describing[info.Name]; ok {
		c.notifier.Notify(domain.LevelWarning, fmt.Sprintf("Class %s refers to itself, described as a plain object", info.Name))
		return schema.PrimitiveSchema(schema.OBJECT)
	}
	c.describing[info.Name] = struct{}{}
	defer delete(c.describing, info.Name)

	c.debug.Printf("Synth: analyzing class %s", info.Name)

	options := c.rulesFor(info.Name)
	doc := docblock.Parse(info.Doc)

	if options.RedirectTag != "" {
		if redirected, ok := c.redirect(info, doc, options.RedirectTag, instance); ok {
			return redirected
		}
	}

	obj := schema.PrimitiveSchema(schema.OBJECT)
	for _, family := range options.VirtualFamilies {
		c.virtualProperties(info, doc, family, instance, obj)
	}
	if options.PublicProperties {
		c.explicitProperties(info, obj)
	}

	if len(obj.Properties) == 0 {
		c.notifier.Notify(domain.LevelInfo, fmt.Sprintf("Class %s has no properties after describing", info.Name))
	}
	return obj
}

// redirect follows the redirection tag. The second result reports whether the tag was
// present, in which case the first result replaces the class's own description.
func (c *ClassService) redirect(info *introspect.ClassInfo, doc *docblock.DocBlock, tagName string, instance interface{}) (*schema.Schema, bool) {
	tags := doc.TagsByName(tagName)
	if len(tags) == 0 {
		return nil, false
	}
	if len(tags) > 1 {
		c.notifier.Notify(domain.LevelWarning, fmt.Sprintf("Using first redirection tag for %s", info.Name))
	}

	fields := strings.Fields(tags[0].Content)
	if len(fields) == 0 {
		c.invalidTag(tags[0], info.Name, "missing redirection target")
		return nil, true
	}
	target := fields[0]

	if strings.HasPrefix(target, "$") {
		prop, iterable := strings.CutSuffix(target[1:], "[]")
		c.debug.Printf("Synth: redirection from %s to $%s", info.Name, target[1:])
		sch, found := c.propertyReference(info, prop, instance)
		if !found {
			c.notifier.Notify(domain.LevelWarning, fmt.Sprintf("Could not find redirection property %s in class %s", prop, info.Name))
			return nil, true
		}
		if iterable && sch != nil {
			sch = schema.ArraySchema(sch)
		}
		return sch, true
	}

	full := c.resolver.Resolve(info.Name, target)
	if _, err := c.introspector.Class(full); err != nil {
		c.notifier.Notify(domain.LevelError, fmt.Sprintf("Redirection tag in %s should start with $ or name a class, got %q", info.Name, target))
		return nil, true
	}
	c.debug.Printf("Synth: redirection from %s to %s", info.Name, full)
	return c.DescribeClass(full), true
}

// propertyReference describes a class property by name: its runtime value on an
// instance, else its declared type. The second result is false when no such property
// exists.
func (c *ClassService) propertyReference(info *introspect.ClassInfo, name string, instance interface{}) (*schema.Schema, bool) {
	if instance != nil {
		value, ok := introspect.FieldValue(instance, name)
		if !ok {
			return nil, false
		}
		return c.types.SynthesizeValue(info.Name, value), true
	}

	prop, ok := info.Property(name)
	if !ok {
		return nil, false
	}
	typeSpec, _ := c.propertyType(info, prop)
	if typeSpec == "" {
		return nil, true
	}
	sch, _ := c.types.Synthesize(declaringOf(info, prop), typeSpec, nil, false)
	return sch, true
}

// virtualProperties reads one tag family off the class comment.
func (c *ClassService) virtualProperties(info *introspect.ClassInfo, doc *docblock.DocBlock, family VirtualFamily, instance interface{}, obj *schema.Schema) {
	for _, tag := range doc.TagsByName(family.Tag) {
		param, err := docblock.ParseParam(tag)
		if err != nil {
			c.invalidTag(tag, info.Name, err.Error())
			continue
		}
		if param.Type == "" {
			c.notifier.Notify(domain.LevelWarning, fmt.Sprintf("Property %q of %q has doc-block, but type is not defined", param.Name, info.Name))
			continue
		}

		var prop *schema.Schema
		nullable := false
		if strings.HasPrefix(param.Type, "$") {
			ref, iterable := strings.CutSuffix(param.Type[1:], "[]")
			sch, found := c.propertyReference(info, ref, instance)
			if !found {
				c.notifier.Notify(domain.LevelWarning, fmt.Sprintf("Property %q of %q refers to unknown property %s", param.Name, info.Name, ref))
				continue
			}
			if iterable && sch != nil {
				sch = schema.ArraySchema(sch)
			}
			prop = sch
		} else {
			prop, nullable = c.types.Synthesize(info.Name, param.Type, nil, false)
		}
		if prop == nil {
			continue
		}

		prop = schema.MergeSchema(&schema.Schema{}, prop)
		if param.Description != "" {
			prop.Description = param.Description
		}
		obj.SetProperty(param.Name, prop)
		if !nullable {
			obj.AddRequired(param.Name)
		}
	}

	if family.Enum {
		for _, tag := range doc.TagsByName(family.Tag + "Enum") {
			c.applyCompanion(info, tag, obj, "enum", func(prop *schema.Schema, value string) {
				for _, v := range docblock.SplitEnum(value) {
					prop.Enum = append(prop.Enum, v)
				}
			})
		}
	}
	if family.Example {
		for _, tag := range doc.TagsByName(family.Tag + "Example") {
			c.applyCompanion(info, tag, obj, "example", func(prop *schema.Schema, value string) {
				prop.Example = value
			})
		}
	}
}

func (c *ClassService) applyCompanion(info *introspect.ClassInfo, tag docblock.Tag, obj *schema.Schema, what string, apply func(*schema.Schema, string)) {
	nv, err := docblock.ParseNamedValue(tag)
	if err != nil {
		c.notifier.Notify(domain.LevelWarning, fmt.Sprintf("Property %s %q of %s is incomplete", what, tag.Content, info.Name))
		return
	}
	prop, ok := obj.Property(nv.Name)
	if !ok {
		c.notifier.Notify(domain.LevelWarning, fmt.Sprintf("Property %q of %s %q is not defined in %s", nv.Name, what, nv.Value, info.Name))
		return
	}
	apply(prop, nv.Value)
}

// explicitProperties describes the public fields of the class. All of them are required.
func (c *ClassService) explicitProperties(info *introspect.ClassInfo, obj *schema.Schema) {
	for _, p := range info.Properties {
		if !p.Public {
			continue
		}
		c.debug.Printf("Synth: discovering property %s:%s", info.Name, p.Name)

		if strings.TrimSpace(p.Doc) == "" {
			c.notifier.Notify(domain.LevelWarning, fmt.Sprintf("Property %q of %q has no doc-block at all", p.Name, info.Name))
		}

		typeSpec, description := c.propertyType(info, p)
		prop := &schema.Schema{}
		if typeSpec != "" {
			sch, _ := c.types.Synthesize(declaringOf(info, p), typeSpec, p.Default, false)
			if sch == nil {
				continue
			}
			prop = schema.MergeSchema(prop, sch)
		}
		if description != "" {
			prop.Description = description
		}

		obj.SetProperty(p.Name, prop)
		obj.AddRequired(p.Name)
	}
}

// propertyType returns the type specification of a property and its description:
// the @var tag first, then the declared type, then the type of the default value.
func (c *ClassService) propertyType(info *introspect.ClassInfo, p introspect.PropertyInfo) (string, string) {
	doc := docblock.Parse(p.Doc)
	description := doc.Text()

	if tag, ok := doc.FirstTag("var"); ok {
		v, err := docblock.ParseVar(tag)
		if err != nil {
			c.invalidTag(tag, info.Name+":"+p.Name, err.Error())
		} else {
			if v.Description != "" {
				description = v.Description
			}
			return v.Type, description
		}
	}
	if p.Type != "" {
		return p.Type, description
	}
	if p.Default != nil {
		return introspect.ReflectTypeSpec(reflect.TypeOf(p.Default)), description
	}
	return "", description
}

func (c *ClassService) invalidTag(tag docblock.Tag, location, reason string) {
	c.notifier.Notify(domain.LevelError, fmt.Sprintf("Invalid tag @%s %q in %s (line %d): %s", tag.Name, tag.Content, location, tag.Line, reason))
}

func declaringOf(info *introspect.ClassInfo, p introspect.PropertyInfo) string {
	if p.Declaring != "" {
		return p.Declaring
	}
	return info.Name
}
