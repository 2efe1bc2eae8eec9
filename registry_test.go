package treedi

import (
	"errors"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_Register(t *testing.T) {
	t.Run("it should keep the first entry as primary", func(t *testing.T) {
		// GIVEN
		registry := New().registry
		first := &instanceProvider{value: reflect.ValueOf(&Dog{})}
		second := &instanceProvider{value: reflect.ValueOf(&Cat{})}

		// WHEN
		firstIdx, err := registry.Register([]reflect.Type{TypeOf[Speaker]()}, NoID, first)
		require.NoError(t, err)
		secondIdx, err := registry.Register([]reflect.Type{TypeOf[Speaker]()}, NoID, second)
		require.NoError(t, err)

		// THEN
		primary, found := registry.Primary(KeyOf[Speaker](""))
		assert.True(t, found)
		assert.Equal(t, firstIdx, primary)
		assert.NotEqual(t, firstIdx, secondIdx)
	})

	t.Run("it should index every contract of an entry", func(t *testing.T) {
		// GIVEN
		registry := New().registry

		// WHEN
		idx, err := registry.Register(
			[]reflect.Type{TypeOf[Speaker](), TypeOf[*Dog](), TypeOf[Speaker]()},
			ID("rex"),
			&instanceProvider{value: reflect.ValueOf(&Dog{})},
		)

		// THEN
		require.NoError(t, err)
		entry, _ := registry.entries.Get(idx)
		assert.Len(t, entry.contracts, 2)
		assert.True(t, registry.HasBinding(KeyOf[Speaker]("rex")))
		assert.True(t, registry.HasBinding(KeyOf[*Dog]("rex")))
		assert.False(t, registry.HasBinding(KeyOf[*Dog]("")))
	})

	t.Run("it should reject a duplicate of a unique entry", func(t *testing.T) {
		// GIVEN
		registry := New(Name("root")).registry
		_, err := registry.Register(
			[]reflect.Type{TypeOf[Speaker]()},
			NoID,
			&instanceProvider{value: reflect.ValueOf(&Dog{})},
			AsUnique(),
		)
		require.NoError(t, err)
		before := registry.Len()

		// WHEN
		_, err = registry.Register(
			[]reflect.Type{TypeOf[Speaker]()},
			NoID,
			&instanceProvider{value: reflect.ValueOf(&Cat{})},
		)

		// THEN
		var duplicate *DuplicateBindingError
		require.ErrorAs(t, err, &duplicate)
		assert.Equal(t, "treedi.Speaker", duplicate.Key)
		assert.Equal(t, "root", duplicate.Container)
		assert.Equal(t, before, registry.Len())
	})

	t.Run("it should reject a unique entry on a bound key", func(t *testing.T) {
		// GIVEN
		registry := New().registry
		_, err := registry.Register(
			[]reflect.Type{TypeOf[Speaker]()},
			ID("rex"),
			&instanceProvider{value: reflect.ValueOf(&Dog{})},
		)
		require.NoError(t, err)

		// WHEN
		_, err = registry.Register(
			[]reflect.Type{TypeOf[Speaker]()},
			ID("rex"),
			&instanceProvider{value: reflect.ValueOf(&Cat{})},
			AsUnique(),
			WithName("rex"),
		)

		// THEN
		var duplicate *DuplicateBindingError
		require.ErrorAs(t, err, &duplicate)
		assert.Equal(t, "treedi.Speaker:rex", duplicate.Key)
	})

	t.Run("it should reject entries without contract or provider", func(t *testing.T) {
		// GIVEN
		registry := New().registry

		// WHEN
		_, noContract := registry.Register(nil, NoID, &instanceProvider{value: reflect.ValueOf(1)})
		_, noProvider := registry.Register([]reflect.Type{TypeOf[int]()}, NoID, nil)

		// THEN
		assert.EqualError(t, noContract, "a binding needs at least one contract")
		assert.EqualError(t, noProvider, "a binding needs a provider")
	})
}

func TestRegistry_Resolve(t *testing.T) {
	t.Run("it should fail on an unknown index", func(t *testing.T) {
		// GIVEN
		c := New(Name("root"))

		// WHEN
		_, err := c.registry.Resolve(c.newContext(), 42)

		// THEN
		assert.EqualError(t, err, `no binding at index 42 in container "root"`)
	})

	t.Run("it should only aggregate the requested identifier", func(t *testing.T) {
		// GIVEN
		c := New()
		registry := c.registry
		_, _ = registry.Register([]reflect.Type{TypeOf[Speaker]()}, ID("rex"), &instanceProvider{value: reflect.ValueOf(&Dog{})})
		_, _ = registry.Register([]reflect.Type{TypeOf[Speaker]()}, NoID, &instanceProvider{value: reflect.ValueOf(&Cat{})})
		var out []reflect.Value

		// WHEN
		err := registry.ResolveAll(c.newContext(), newRequest(TypeOf[Speaker](), Named("rex")), &out)

		// THEN
		require.NoError(t, err)
		require.Len(t, out, 1)
		assert.IsType(t, &Dog{}, out[0].Interface())
	})
}

func TestRegistry_Close(t *testing.T) {
	t.Run("it should join close errors", func(t *testing.T) {
		// GIVEN
		c := New()
		recorder := &Recorder{}
		Bind[*ClosingResource](c).
			Named("first").
			FromFactory(func() *ClosingResource {
				return &ClosingResource{name: "first", recorder: recorder, failure: errors.New("first failed")}
			}).
			AsSingleton()
		Bind[*ClosingResource](c).
			Named("second").
			FromFactory(func() *ClosingResource {
				return &ClosingResource{name: "second", recorder: recorder, failure: errors.New("second failed")}
			}).
			AsSingleton()
		_, err := ResolveAll[*ClosingResource](c, AllIDs())
		require.NoError(t, err)

		// WHEN
		err = c.Close()

		// THEN
		assert.ErrorContains(t, err, "first failed")
		assert.ErrorContains(t, err, "second failed")
		assert.Equal(t, []string{"close second", "close first"}, recorder.Events())
	})

	t.Run("it should not close transient instances", func(t *testing.T) {
		// GIVEN
		c := New()
		recorder := &Recorder{}
		Bind[*ClosingResource](c).
			FromFactory(func() *ClosingResource {
				return &ClosingResource{name: "transient", recorder: recorder}
			}).
			AsTransient()
		_, err := Resolve[*ClosingResource](c)
		require.NoError(t, err)

		// WHEN
		err = c.Close()

		// THEN
		assert.NoError(t, err)
		assert.Empty(t, recorder.Events())
	})
}
