// Package manifest implements introspect.Introspector over a YAML description of classes,
// handler functions and constants. It lets the generator run against code it cannot parse.
package manifest

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/griffnb/core-openapi/internal/introspect"
)

// File is the YAML document.
type File struct {
	Classes   []Class                `yaml:"classes"`
	Functions []Method               `yaml:"functions"`
	Constants map[string]interface{} `yaml:"constants"`
}

// Class describes one class.
type Class struct {
	Name       string                 `yaml:"name"`
	Doc        string                 `yaml:"doc"`
	Parents    []string               `yaml:"parents"`
	Imports    []introspect.Import    `yaml:"imports"`
	Properties []Property             `yaml:"properties"`
	Methods    []Method               `yaml:"methods"`
	Constants  map[string]interface{} `yaml:"constants"`
}

// Property describes one class property. Properties are public unless marked otherwise.
type Property struct {
	Name    string      `yaml:"name"`
	Doc     string      `yaml:"doc"`
	Public  *bool       `yaml:"public"`
	Type    string      `yaml:"type"`
	Default interface{} `yaml:"default"`
}

// Method describes a method, or a function when listed under functions.
type Method struct {
	Name    string              `yaml:"name"`
	Doc     string              `yaml:"doc"`
	Imports []introspect.Import `yaml:"imports"`
	Params  []Param             `yaml:"params"`
}

// Param describes one parameter. A default or defaultConstant makes it optional.
type Param struct {
	Name            string     `yaml:"name"`
	Type            string     `yaml:"type"`
	Class           string     `yaml:"class"`
	Optional        bool       `yaml:"optional"`
	Default         *yaml.Node `yaml:"default"`
	DefaultConstant string     `yaml:"defaultConstant"`
}

// Backend serves a parsed manifest.
type Backend struct {
	classes   map[string]*Class
	functions map[string]*Method
	constants map[string]interface{}
}

// Load reads a manifest file.
func Load(path string) (*Backend, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}
	backend, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return backend, nil
}

// Parse decodes a manifest document.
func Parse(data []byte) (*Backend, error) {
	var file File
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&file); err != nil {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}
	return New(&file)
}

// New indexes a decoded manifest.
func New(file *File) (*Backend, error) {
	b := &Backend{
		classes:   make(map[string]*Class, len(file.Classes)),
		functions: make(map[string]*Method, len(file.Functions)),
		constants: make(map[string]interface{}),
	}
	for i := range file.Classes {
		class := &file.Classes[i]
		if class.Name == "" {
			return nil, fmt.Errorf("class #%d has no name", i+1)
		}
		if _, dup := b.classes[class.Name]; dup {
			return nil, fmt.Errorf("class %s is declared twice", class.Name)
		}
		b.classes[class.Name] = class
		for name, value := range class.Constants {
			b.constants[introspect.Namespace(class.Name)+"."+name] = value
		}
	}
	for i := range file.Functions {
		fn := &file.Functions[i]
		if fn.Name == "" {
			return nil, fmt.Errorf("function #%d has no name", i+1)
		}
		b.functions[fn.Name] = fn
	}
	for name, value := range file.Constants {
		b.constants[name] = value
	}
	return b, nil
}

// Class implements introspect.Introspector.
func (b *Backend) Class(name string) (*introspect.ClassInfo, error) {
	class, ok := b.classes[name]
	if !ok {
		return nil, fmt.Errorf("class %s: %w", name, introspect.ErrNotFound)
	}

	info := &introspect.ClassInfo{
		Name:    class.Name,
		Doc:     class.Doc,
		Parents: append([]string(nil), class.Parents...),
	}
	for _, p := range class.Properties {
		info.Properties = append(info.Properties, introspect.PropertyInfo{
			Name:    p.Name,
			Doc:     p.Doc,
			Public:  p.Public == nil || *p.Public,
			Type:    p.Type,
			Default: p.Default,
		})
	}
	return info, nil
}

// Method implements introspect.Introspector.
func (b *Backend) Method(class, method string) (*introspect.MethodInfo, error) {
	if class == "" {
		fn, ok := b.functions[method]
		if !ok {
			return nil, fmt.Errorf("function %s: %w", method, introspect.ErrNotFound)
		}
		return methodInfo(method, fn)
	}

	c, ok := b.classes[class]
	if !ok {
		return nil, fmt.Errorf("class %s: %w", class, introspect.ErrNotFound)
	}
	for i := range c.Methods {
		if c.Methods[i].Name == method {
			return methodInfo(class, &c.Methods[i])
		}
	}
	return nil, fmt.Errorf("method %s.%s: %w", class, method, introspect.ErrNotFound)
}

func methodInfo(declaring string, m *Method) (*introspect.MethodInfo, error) {
	info := &introspect.MethodInfo{
		Declaring: declaring,
		Name:      m.Name,
		Doc:       m.Doc,
	}
	for _, p := range m.Params {
		param := introspect.ParamInfo{
			Name:            p.Name,
			Type:            p.Type,
			Class:           p.Class,
			Optional:        p.Optional,
			DefaultConstant: p.DefaultConstant,
		}
		if p.Default != nil {
			if err := p.Default.Decode(&param.Default); err != nil {
				return nil, fmt.Errorf("%s: default of $%s: %w", declaring, p.Name, err)
			}
			param.HasDefault = true
		}
		if p.DefaultConstant != "" {
			param.HasDefault = true
		}
		if param.HasDefault {
			param.Optional = true
		}
		info.Params = append(info.Params, param)
	}
	return info, nil
}

// Imports implements introspect.Introspector.
func (b *Backend) Imports(declaring string) ([]introspect.Import, error) {
	if class, ok := b.classes[declaring]; ok {
		return class.Imports, nil
	}
	if fn, ok := b.functions[declaring]; ok {
		return fn.Imports, nil
	}
	return nil, fmt.Errorf("declaration %s: %w", declaring, introspect.ErrNotFound)
}

// Constant implements introspect.Introspector. Constants are keyed by their fully
// qualified name; class constants are also reachable through the class's namespace.
func (b *Backend) Constant(scope, name string) (interface{}, error) {
	key := name
	if scope != "" {
		key = introspect.Namespace(scope) + "." + name
	}
	value, ok := b.constants[key]
	if !ok {
		return nil, fmt.Errorf("constant %s: %w", key, introspect.ErrNotFound)
	}
	return value, nil
}
