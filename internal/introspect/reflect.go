package introspect

import (
	"reflect"
	"strings"
	"time"
)

var timeType = reflect.TypeOf(time.Time{})

// ClassName returns the fully qualified class name of a value's struct type,
// dereferencing pointers. It returns "" for values that are not named structs.
func ClassName(v interface{}) string {
	t := reflect.TypeOf(v)
	for t != nil && t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct || t.Name() == "" {
		return ""
	}
	if t.PkgPath() == "" {
		return t.Name()
	}
	return t.PkgPath() + "." + t.Name()
}

// ReflectClass builds a ClassInfo from a live value. It is used for instances whose class the
// backend does not know; properties carry no documentation.
func ReflectClass(v interface{}) *ClassInfo {
	t := reflect.TypeOf(v)
	for t != nil && t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		return nil
	}

	info := &ClassInfo{Name: ClassName(v)}
	for _, field := range reflect.VisibleFields(t) {
		if field.Anonymous {
			if parent := typeName(field.Type); parent != "" && len(field.Index) == 1 {
				info.Parents = append(info.Parents, parent)
			}
			continue
		}
		name, public := SerializedName(field.Name, field.Tag.Get("json"))
		prop := PropertyInfo{
			Name:   name,
			Field:  field.Name,
			Public: public && field.IsExported(),
			Type:   ReflectTypeSpec(field.Type),
		}
		if depth := len(field.Index); depth > 1 {
			prop.Declaring = typeName(t.FieldByIndex(field.Index[:depth-1]).Type)
		}
		info.Properties = append(info.Properties, prop)
	}
	return info
}

// FieldValue returns the value of the property named by its serialized or field name.
func FieldValue(v interface{}, name string) (interface{}, bool) {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Ptr || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return nil, false
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil, false
	}

	for _, field := range reflect.VisibleFields(rv.Type()) {
		if !field.IsExported() || field.Anonymous {
			continue
		}
		serialized, _ := SerializedName(field.Name, field.Tag.Get("json"))
		if field.Name != name && serialized != name {
			continue
		}
		value, err := rv.FieldByIndexErr(field.Index)
		if err != nil {
			return nil, false
		}
		return value.Interface(), true
	}
	return nil, false
}

// SerializedName applies a json struct tag to a field name. The second result is false
// when the tag hides the field.
func SerializedName(field, jsonTag string) (string, bool) {
	if jsonTag == "-" {
		return field, false
	}
	if name := strings.Split(jsonTag, ",")[0]; name != "" {
		return name, true
	}
	return field, true
}

// ReflectTypeSpec renders a Go type as a type specification.
func ReflectTypeSpec(t reflect.Type) string {
	if t == timeType {
		return "string"
	}
	switch t.Kind() {
	case reflect.Bool:
		return "bool"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return "int"
	case reflect.Float32, reflect.Float64:
		return "float"
	case reflect.String:
		return "string"
	case reflect.Ptr:
		return NullableSpec(ReflectTypeSpec(t.Elem()))
	case reflect.Slice, reflect.Array:
		if t.Elem().Kind() == reflect.Uint8 {
			return "string"
		}
		return ArraySpec(ReflectTypeSpec(t.Elem()))
	case reflect.Map:
		return "object"
	case reflect.Interface:
		return "mixed"
	case reflect.Struct:
		if name := typeName(t); name != "" {
			return name
		}
		return "object"
	}
	return "mixed"
}

func typeName(t reflect.Type) string {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Name() == "" {
		return ""
	}
	if t.PkgPath() == "" {
		return t.Name()
	}
	return t.PkgPath() + "." + t.Name()
}

// NullableSpec appends "|null" to a type specification once.
func NullableSpec(spec string) string {
	if strings.HasSuffix(spec, "|null") {
		return spec
	}
	return spec + "|null"
}

// ArraySpec wraps a type specification in "[]", grouping unions.
func ArraySpec(spec string) string {
	if strings.Contains(spec, "|") {
		return "(" + spec + ")[]"
	}
	return spec + "[]"
}
