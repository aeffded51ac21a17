package typespec

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"scalar", "int", "int"},
		{"scalar keeps written keyword", "Double", "double"},
		{"abstract", "stdclass", "stdClass"},
		{"named", "models.User", "models.User"},
		{"array", "User[]", "User[]"},
		{"nested array", "int[][]", "int[][]"},
		{"nullable sigil", "?int", "int|null"},
		{"nullable union", "int|null", "int|null"},
		{"null first", "null|User", "User|null"},
		{"union", "int|string", "int|string"},
		{"nullable union of two", "int|string|null", "int|string|null"},
		{"grouped array", "(int|string)[]", "(int|string)[]"},
		{"nullable array", "?User[]", "User[]|null"},
		{"spaces are ignored", " int | string ", "int|string"},
		{"duplicates collapse", "int|int", "int"},
		{"nested group flattens", "(int|string)|bool", "int|string|bool"},
		{"bare null", "null", "null"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			node, err := Parse(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, node.String())
		})
	}
}

func TestParseNullCollapse(t *testing.T) {
	for _, input := range []string{"User|null", "?User", "null|User"} {
		t.Run(input, func(t *testing.T) {
			node, err := Parse(input)
			require.NoError(t, err)

			elem, nullable := Unwrap(node)
			assert.True(t, nullable)
			assert.Equal(t, &Named{Name: "User"}, elem)
		})
	}
}

func TestParseBareNull(t *testing.T) {
	node, err := Parse("null")
	require.NoError(t, err)

	nullable, ok := node.(*Nullable)
	require.True(t, ok)
	assert.True(t, nullable.NullOnly)
	assert.Equal(t, &Scalar{Name: "string"}, nullable.Elem)
}

func TestParseUnionOrder(t *testing.T) {
	node, err := Parse("B|A")
	require.NoError(t, err)

	union, ok := node.(*Union)
	require.True(t, ok)
	require.Len(t, union.Members, 2)
	assert.Equal(t, "B", union.Members[0].String())
	assert.Equal(t, "A", union.Members[1].String())
}

func TestParseErrors(t *testing.T) {
	tests := []string{
		"",
		"   ",
		"int||string",
		"|int",
		"int|",
		"null|null",
		"?null",
		"int[",
		"(int|string",
		"int)",
		"()",
	}

	for _, input := range tests {
		t.Run(input, func(t *testing.T) {
			_, err := Parse(input)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalid))
		})
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		input    string
		expected Kind
	}{
		{"int", Primitive},
		{"?string", Primitive},
		{"int[]", Primitive},
		{"array", ComplexAbstract},
		{"mixed", ComplexAbstract},
		{"SomeClass", Complex},
		{"SomeClass[]", Complex},
		{"int|SomeClass", Complex},
		{"int|array", ComplexAbstract},
		{"array|SomeClass|null", Complex},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			kind, err := Classify(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, kind)
		})
	}
}

func TestMustParsePanics(t *testing.T) {
	assert.Panics(t, func() { MustParse("int||") })
	assert.NotPanics(t, func() { MustParse("int") })
}

func TestMembers(t *testing.T) {
	tests := []struct {
		input    string
		expected []string
	}{
		{"int", []string{"int"}},
		{"User|Error", []string{"User", "Error"}},
		{"?User | null", []string{"?User", "null"}},
		{"(int|string)[]|Page", []string{"(int|string)[]", "Page"}},
		{"int||string", []string{"int", "", "string"}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, Members(tt.input))
		})
	}
}
