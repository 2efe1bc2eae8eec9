package str

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToScreamingSnakeCase(t *testing.T) {
	cases := map[string]string{
		"camelCase":         "CAMEL_CASE",
		"PascalCase":        "PASCAL_CASE",
		"lower_case_string": "LOWER_CASE_STRING",
		"kebab-case-string": "KEBAB_CASE_STRING",
		"version2Release":   "VERSION_2_RELEASE",
		"max_depth":         "MAX_DEPTH",
		"  camelCase  ":     "CAMEL_CASE",
		"   ":               "",
		"":                  "",
	}

	for input, expected := range cases {
		t.Run("it should convert "+input, func(t *testing.T) {
			// WHEN
			result := ToScreamingSnakeCase(input)

			// THEN
			assert.Equal(t, expected, result)
		})
	}
}

func TestParseOptions(t *testing.T) {
	t.Run("it should split flags and key values", func(t *testing.T) {
		// WHEN
		opts := ParseOptions("name=db, optional,source=parent")

		// THEN
		assert.Equal(t, []string{"optional"}, opts.Flags)
		assert.True(t, opts.Has("optional"))
		name, found := opts.Get("name")
		assert.True(t, found)
		assert.Equal(t, "db", name)
		source, _ := opts.Get("source")
		assert.Equal(t, "parent", source)
	})

	t.Run("it should keep commas inside quoted values", func(t *testing.T) {
		// WHEN
		opts := ParseOptions(`name="a,b",local`)

		// THEN
		name, _ := opts.Get("name")
		assert.Equal(t, "a,b", name)
		assert.Equal(t, []string{"local"}, opts.Flags)
	})

	t.Run("it should return empty options for an empty string", func(t *testing.T) {
		// WHEN
		opts := ParseOptions("")

		// THEN
		assert.Empty(t, opts.Flags)
		assert.Empty(t, opts.Values)
		assert.False(t, opts.Has("optional"))
	})
}
