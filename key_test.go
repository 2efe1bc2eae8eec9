package treedi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestID(t *testing.T) {
	t.Run("it should map the empty name to the default identifier", func(t *testing.T) {
		assert.Equal(t, NoID, ID(""))
	})

	t.Run("it should hash names deterministically", func(t *testing.T) {
		assert.Equal(t, ID("replica"), ID("replica"))
		assert.NotEqual(t, ID("replica"), ID("primary"))
		assert.NotEqual(t, NoID, ID("replica"))
	})
}

func TestBindingKey(t *testing.T) {
	t.Run("it should render the type alone without identifier", func(t *testing.T) {
		assert.Equal(t, "*treedi.Dog", KeyOf[*Dog]("").String())
	})

	t.Run("it should render unknown identifiers as hex", func(t *testing.T) {
		// GIVEN
		key := KeyOf[*Dog]("rex")

		// WHEN
		rendered := key.String()

		// THEN
		assert.Regexp(t, `^\*treedi\.Dog:#[0-9a-f]{16}$`, rendered)
	})

	t.Run("it should render remembered names", func(t *testing.T) {
		// GIVEN
		names := newNameTable()
		names.remember(ID("rex"), "rex")

		// WHEN
		rendered := KeyOf[*Dog]("rex").format(names)

		// THEN
		assert.Equal(t, "*treedi.Dog:rex", rendered)
	})

	t.Run("it should be usable as a map key", func(t *testing.T) {
		// GIVEN
		keys := map[BindingKey]int{KeyOf[*Dog]("rex"): 1}

		// WHEN
		value, found := keys[Key(TypeOf[*Dog](), ID("rex"))]

		// THEN
		require.True(t, found)
		assert.Equal(t, 1, value)
	})

	t.Run("it should only keep names of debug trees", func(t *testing.T) {
		// GIVEN
		debug := New(WithSettings(Settings{Debug: true}))
		quiet := New()
		Bind[*Dog](debug).Named("rex")
		Bind[*Dog](quiet).Named("rex")
		require.NoError(t, debug.Flush())
		require.NoError(t, quiet.Flush())

		// WHEN
		debugKey := KeyOf[*Dog]("rex").format(debug.tree.names)
		quietKey := KeyOf[*Dog]("rex").format(quiet.tree.names)

		// THEN
		assert.Equal(t, "*treedi.Dog:rex", debugKey)
		assert.NotEqual(t, "*treedi.Dog:rex", quietKey)
	})
}
