package operation

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/griffnb/core-openapi/internal/domain"
	"github.com/griffnb/core-openapi/internal/introspect"
	"github.com/griffnb/core-openapi/internal/parser/docblock"
	"github.com/griffnb/core-openapi/internal/schema"
	"github.com/griffnb/core-openapi/internal/typespec"
)

var (
	// self::Limit or static::Limit names a constant next to the handler
	selfConstantPattern = regexp.MustCompile(`^(?:self|static)::(\w+)$`)

	// {id} or {id:[0-9]+}
	pathPlaceholderPattern = regexp.MustCompile(`\{([^{}/:]+)(?::[^{}]*)?\}`)
)

// argument is a handler parameter with its documentation applied.
type argument struct {
	name        string
	typeSpec    string
	class       string
	description string
	def         interface{}
	optional    bool
	hasDefault  bool
}

// companions holds the @paramEnum, @paramExample and @paramFormat values by parameter name.
// @default tags are read by the introspector and only checked here.
type companions struct {
	enums    map[string][]string
	examples map[string]string
	formats  map[string]string
}

// arguments splits the handler's parameters into query parameters and request body
// properties. Non-primitive arguments go to the body in body mode and to a matching
// extractor otherwise.
func (s *Service) arguments(op *Operation, method *introspect.MethodInfo, doc *docblock.DocBlock, location string) error {
	documented := make(map[string]docblock.Param)
	for _, tag := range doc.TagsByName("param") {
		p, err := docblock.ParseParam(tag)
		if err != nil {
			s.invalidTag(err, location)
			continue
		}
		documented[p.Name] = p
	}
	extras := s.companions(doc)

	body := schema.ObjectSchema()
	for _, param := range method.Params {
		arg, ok := s.argument(method, param, documented, location)
		if !ok {
			continue
		}

		kind, err := typespec.Classify(arg.typeSpec)
		if err != nil {
			s.notifier.Notify(domain.LevelError, fmt.Sprintf("%s: argument %q: %v", location, arg.name, err))
			continue
		}

		switch {
		case kind == typespec.Primitive:
			p, err := s.parameter(method.Declaring, arg, extras, location)
			if err != nil {
				return err
			}
			if p != nil {
				op.Parameters = append(op.Parameters, p)
			}

		case s.settings.TreatComplexArgumentsAsBody:
			prop, required, err := s.bodyProperty(method.Declaring, arg, extras, location)
			if err != nil {
				return err
			}
			if prop != nil {
				body.SetProperty(arg.name, prop)
				if required {
					body.AddRequired(arg.name)
				}
			}

		default:
			handled, err := s.extract(op, body, method, param, arg)
			if err != nil {
				return fmt.Errorf("%s: %w", location, err)
			}
			if !handled {
				s.notifier.Notify(domain.LevelInfo, fmt.Sprintf("%s: argument %q of type %s is not a query parameter, skipping", location, arg.name, arg.typeSpec))
			}
		}
	}

	if len(body.Properties) > 0 {
		op.RequestBody = body
	}
	return nil
}

// argument applies the @param tag to a handler parameter. The documented type wins over
// the declared one; without either the parameter is skipped.
func (s *Service) argument(method *introspect.MethodInfo, param introspect.ParamInfo, documented map[string]docblock.Param, location string) (argument, bool) {
	arg := argument{
		name:     param.Name,
		typeSpec: param.Type,
		class:    param.Class,
		optional: param.Optional || param.HasDefault,
	}

	if p, ok := documented[param.Name]; ok {
		if p.Type != "" {
			arg.typeSpec = p.Type
		}
		arg.description = p.Description
	}
	if arg.description == "" {
		arg.description = s.commonParameters[param.Name]
	}

	if strings.TrimSpace(arg.typeSpec) == "" {
		s.notifier.Notify(domain.LevelWarning, fmt.Sprintf("%s: argument %q has neither a documented nor a declared type, skipping", location, param.Name))
		return arg, false
	}

	if arg.class == "" {
		if node, err := typespec.Parse(arg.typeSpec); err == nil {
			if named, ok := unwrapNamed(node); ok {
				arg.class = s.resolver.Resolve(method.Declaring, named.Name)
			}
		}
	}

	if param.HasDefault {
		arg.def, arg.hasDefault = s.defaultValue(method.Declaring, param, location)
	}
	return arg, true
}

// defaultValue resolves a literal default or a constant reference: "self::X" and
// "static::X" next to the handler, "X" in the handler's package, "pkg.X" through the
// handler's imports.
func (s *Service) defaultValue(declaring string, param introspect.ParamInfo, location string) (interface{}, bool) {
	ref := param.DefaultConstant
	if ref == "" {
		return param.Default, true
	}

	var value interface{}
	var err error
	switch m := selfConstantPattern.FindStringSubmatch(ref); {
	case m != nil:
		value, err = s.introspector.Constant(declaring, m[1])
	case !strings.Contains(ref, "."):
		value, err = s.introspector.Constant(declaring, ref)
	default:
		value, err = s.introspector.Constant("", s.resolver.Resolve(declaring, ref))
	}
	if err != nil {
		s.notifier.Notify(domain.LevelInfo, fmt.Sprintf("%s: argument %q has unexpected default value %q", location, param.Name, ref))
		return nil, false
	}
	return value, true
}

// parameter builds a query parameter. It is required unless it may be omitted or is
// nullable.
func (s *Service) parameter(declaring string, arg argument, extras companions, location string) (*schema.Parameter, error) {
	nullable := arg.optional && !arg.hasDefault
	container, nullable, err := s.types.SynthesizeAs(declaring, arg.typeSpec, arg.def, nullable, schema.TargetParameter)
	if err != nil {
		return nil, err
	}
	if container == nil {
		return nil, nil
	}

	param := container.(*schema.Parameter)
	param.Name = arg.name
	param.In = schema.InQuery
	param.Description = arg.description
	param.Required = !arg.optional && !nullable

	s.decorate(param.Schema, &param.Description, arg.name, extras, location)
	if param.Schema.Example != nil {
		param.Example = param.Schema.Example
	}
	return param, nil
}

// bodyProperty builds a request body property and reports whether it is required.
func (s *Service) bodyProperty(declaring string, arg argument, extras companions, location string) (*schema.Schema, bool, error) {
	nullable := arg.optional && !arg.hasDefault
	container, nullable, err := s.types.SynthesizeAs(declaring, arg.typeSpec, arg.def, nullable, schema.TargetProperty)
	if err != nil {
		return nil, false, err
	}
	if container == nil {
		return nil, false, nil
	}

	prop := container.(*schema.Schema)
	if arg.description != "" {
		prop.Description = arg.description
	}
	s.decorate(prop, &prop.Description, arg.name, extras, location)
	return prop, !arg.optional && !nullable, nil
}

// extract hands the argument to the first extractor matching its class and merges what
// it returns.
func (s *Service) extract(op *Operation, body *schema.Schema, method *introspect.MethodInfo, param introspect.ParamInfo, arg argument) (bool, error) {
	if param.Class == "" {
		param.Class = arg.class
	}

	for _, registration := range s.extractors {
		if registration.Match == nil || registration.Extractor == nil || !registration.Match(param.Class) {
			continue
		}

		entries, err := registration.Extractor.Extract(method, param)
		if err != nil {
			return true, fmt.Errorf("extracting argument %q: %w", param.Name, err)
		}
		for _, entry := range entries {
			switch {
			case entry.Parameter != nil:
				if entry.Parameter.Name == "" {
					entry.Parameter.Name = entry.Name
				}
				if entry.Parameter.In == "" {
					entry.Parameter.In = schema.InQuery
				}
				op.Parameters = append(op.Parameters, entry.Parameter)
			case entry.Property != nil:
				body.SetProperty(entry.Name, entry.Property)
				if entry.Required {
					body.AddRequired(entry.Name)
				}
			}
		}
		return true, nil
	}
	return false, nil
}

// companions collects the enum, example and format tags of the handler's parameters.
// The first example of a parameter wins.
func (s *Service) companions(doc *docblock.DocBlock) companions {
	c := companions{
		enums:    make(map[string][]string),
		examples: make(map[string]string),
		formats:  make(map[string]string),
	}

	collect := func(tagName, what string, apply func(docblock.NamedValue)) {
		for _, tag := range doc.TagsByName(tagName) {
			nv, err := docblock.ParseNamedValue(tag)
			if err != nil {
				s.notifier.Notify(domain.LevelWarning, fmt.Sprintf("Param %s %q is incomplete", what, tag.Content))
				continue
			}
			apply(nv)
		}
	}

	collect("paramEnum", "enum", func(nv docblock.NamedValue) {
		c.enums[nv.Name] = docblock.SplitEnum(nv.Value)
	})
	collect("paramExample", "example", func(nv docblock.NamedValue) {
		if _, ok := c.examples[nv.Name]; !ok {
			c.examples[nv.Name] = nv.Value
		}
	})
	collect("paramFormat", "format", func(nv docblock.NamedValue) {
		c.formats[nv.Name] = nv.Value
	})
	collect("default", "default", func(docblock.NamedValue) {})
	return c
}

// decorate applies the companion tags of a parameter to its schema.
func (s *Service) decorate(sch *schema.Schema, description *string, name string, extras companions, location string) {
	if sch == nil {
		return
	}

	if values, ok := extras.enums[name]; ok && len(values) > 0 {
		target := sch
		if sch.Type == schema.ARRAY && sch.Items != nil {
			target = sch.Items
		}
		target.Enum = make([]interface{}, 0, len(values))
		for _, v := range values {
			target.Enum = append(target.Enum, coerce(target.Type, v))
		}
	}

	if example, ok := extras.examples[name]; ok {
		sch.Example = coerce(sch.Type, example)
	}

	if format, ok := extras.formats[name]; ok {
		if !s.formats.ApplyFormat(sch, format) {
			s.notifier.Notify(domain.LevelWarning, fmt.Sprintf("%s: argument %q has unknown format %q", location, name, format))
			return
		}
		if sch.Format == format {
			*description = schema.TrimFormat(*description, format)
		}
	}
}

// extractPathParameters moves the parameters named by the path's placeholders to the path.
func extractPathParameters(op *Operation) {
	for _, m := range pathPlaceholderPattern.FindAllStringSubmatch(op.Path, -1) {
		if p, ok := op.Parameter(strings.TrimSpace(m[1])); ok {
			p.In = schema.InPath
			p.Required = true
		}
	}
}

// coerce converts a tag value to the scalar type of the schema it is attached to.
func coerce(schemaType, value string) interface{} {
	switch schemaType {
	case schema.INTEGER:
		if i, err := strconv.ParseInt(value, 10, 64); err == nil {
			return i
		}
	case schema.NUMBER:
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	case schema.BOOLEAN:
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return value
}

func unwrapNamed(node typespec.Node) (*typespec.Named, bool) {
	node, _ = typespec.Unwrap(node)
	named, ok := node.(*typespec.Named)
	return named, ok
}
