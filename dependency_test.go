package treedi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDependency(t *testing.T) {
	t.Run("it should parse an empty tag", func(t *testing.T) {
		// WHEN
		spec, err := ParseDependency("")

		// THEN
		require.NoError(t, err)
		assert.Equal(t, Inject.Auto(), spec)
	})

	t.Run("it should parse names, flags and sources", func(t *testing.T) {
		// WHEN
		spec, err := ParseDependency("name=replica,optional,source=parent")

		// THEN
		require.NoError(t, err)
		assert.Equal(t, Inject.Named("replica").Optional().Parent(), spec)
	})

	t.Run("it should accept source shortcuts", func(t *testing.T) {
		// WHEN
		local, err := ParseDependency("local")
		require.NoError(t, err)
		all, err := ParseDependency("all,optional=true")
		require.NoError(t, err)

		// THEN
		assert.Equal(t, Inject.Local(), local)
		assert.Equal(t, Inject.All().Optional(), all)
	})

	t.Run("it should reject unknown options", func(t *testing.T) {
		// WHEN
		_, flagErr := ParseDependency("lazy")
		_, keyErr := ParseDependency("scope=singleton")
		_, sourceErr := ParseDependency("source=sibling")

		// THEN
		assert.EqualError(t, flagErr, `unknown inject flag "lazy"`)
		assert.EqualError(t, keyErr, `unknown inject option "scope"`)
		assert.EqualError(t, sourceErr, `unknown source "sibling", expected any, local or parent`)
	})
}

func TestDependencySpec(t *testing.T) {
	t.Run("it should build a request for the target type", func(t *testing.T) {
		// WHEN
		req := Inject.Named("rex").Optional().Local().build(TypeOf[*Dog]())

		// THEN
		assert.Equal(t, DependencyRequest{
			Type:     TypeOf[*Dog](),
			ID:       ID("rex"),
			Name:     "rex",
			Optional: true,
			Source:   Local,
		}, req)
	})

	t.Run("it should default missing dependencies to auto", func(t *testing.T) {
		// WHEN
		requests := buildRequests(TypeOf[func(*Dog, string) *Kennel](), 0, []Dependency{nil})

		// THEN
		require.Len(t, requests, 2)
		assert.Equal(t, DependencyRequest{Type: TypeOf[*Dog]()}, requests[0])
		assert.Equal(t, DependencyRequest{Type: TypeOf[string]()}, requests[1])
	})

	t.Run("it should drop the name when given an identifier", func(t *testing.T) {
		// WHEN
		req := Inject.Named("rex").WithID(ID("max")).build(TypeOf[*Dog]())

		// THEN
		assert.Equal(t, ID("max"), req.ID)
		assert.Empty(t, req.Name)
	})
}

func TestSource(t *testing.T) {
	t.Run("it should parse source names", func(t *testing.T) {
		for name, expected := range map[string]Source{"": Any, "any": Any, " Local ": Local, "PARENT": Parent} {
			source, err := ParseSource(name)
			require.NoError(t, err)
			assert.Equal(t, expected, source)
			assert.NotEmpty(t, source.String())
		}
	})
}
