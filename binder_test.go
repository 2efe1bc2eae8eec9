package treedi

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBinder(t *testing.T) {
	t.Run("it should build non-lazy bindings once at flush and lazy ones on demand", func(t *testing.T) {
		// GIVEN
		c := New()
		eagerCalls, lazyCalls := 0, 0
		Bind[*Dog](c).
			FromFactory(func() *Dog {
				eagerCalls++
				return &Dog{}
			}).
			AsSingleton().
			NonLazy()
		Bind[*Cat](c).FromFactory(func() *Cat {
			lazyCalls++
			return &Cat{}
		})

		// WHEN
		err := c.Flush()
		require.NoError(t, err)
		_ = c.Flush()

		// THEN
		assert.Equal(t, 1, eagerCalls)
		assert.Equal(t, 0, lazyCalls)
		assert.True(t, c.Ready())

		_, err = Resolve[*Dog](c)
		require.NoError(t, err)
		_, err = Resolve[*Cat](c)
		require.NoError(t, err)
		assert.Equal(t, 1, eagerCalls)
		assert.Equal(t, 1, lazyCalls)
	})

	t.Run("it should not be ready while bindings are pending", func(t *testing.T) {
		// GIVEN
		c := New()

		// WHEN
		Bind[*Dog](c)

		// THEN
		assert.False(t, c.Ready())
		require.NoError(t, c.Flush())
		assert.True(t, c.Ready())
	})

	t.Run("it should accept bindings after a flush", func(t *testing.T) {
		// GIVEN
		c := New()
		Bind[*Dog](c)
		require.NoError(t, c.Flush())

		// WHEN
		Bind[*Cat](c)
		cat, err := Resolve[*Cat](c)

		// THEN
		require.NoError(t, err)
		assert.NotNil(t, cat)
	})

	t.Run("it should build transients on every request and singletons once", func(t *testing.T) {
		// GIVEN
		c := New()
		Bind[*Dog](c).AsTransient()
		Bind[*Cat](c).AsSingleton()

		// WHEN
		dog1, _ := Resolve[*Dog](c)
		dog2, _ := Resolve[*Dog](c)
		cat1, _ := Resolve[*Cat](c)
		cat2, _ := Resolve[*Cat](c)

		// THEN
		assert.NotSame(t, dog1, dog2)
		assert.Same(t, cat1, cat2)
	})

	t.Run("it should bind interfaces to a concrete type", func(t *testing.T) {
		// GIVEN
		c := New()
		c.BindInterfacesAndSelfTo(TypeOf[*Dog](), TypeOf[Speaker]()).AsSingleton()

		// WHEN
		speaker, err := Resolve[Speaker](c)
		require.NoError(t, err)
		dog, err := Resolve[*Dog](c)
		require.NoError(t, err)

		// THEN
		assert.Same(t, dog, speaker)
	})

	t.Run("it should bind only the interfaces", func(t *testing.T) {
		// GIVEN
		c := New()
		c.BindInterfacesTo(TypeOf[*Cat](), TypeOf[Speaker]())

		// WHEN
		speaker, err := Resolve[Speaker](c)
		require.NoError(t, err)
		found, err := HasBinding[*Cat](c)
		require.NoError(t, err)

		// THEN
		assert.Equal(t, "meow", speaker.Speak())
		assert.False(t, found)
	})

	t.Run("it should never inject instances", func(t *testing.T) {
		// GIVEN
		c := New()
		Bind[*Dog](c)
		kennel := &Kennel{}
		Bind[*Kennel](c).FromInstance(kennel)

		// WHEN
		resolved, err := Resolve[*Kennel](c)

		// THEN
		require.NoError(t, err)
		assert.Same(t, kennel, resolved)
		assert.Nil(t, resolved.Dog)
		assert.False(t, resolved.ready)
	})

	t.Run("it should call methods with the inject context", func(t *testing.T) {
		// GIVEN
		c := New()
		Bind[string](c).Named("greeting").FromInstance("hello")
		Bind[*Greeter](c).FromMethod(func(ctx *InjectContext) (any, error) {
			greeting, err := Resolve[string](ctx, Named("greeting"))
			if err != nil {
				return nil, err
			}
			return &Greeter{Greeting: greeting + " world"}, nil
		})

		// WHEN
		greeter, err := Resolve[*Greeter](c)

		// THEN
		require.NoError(t, err)
		assert.Equal(t, "hello world", greeter.Greeting)
	})

	t.Run("it should treat a method returning nil as missing", func(t *testing.T) {
		// GIVEN
		c := New()
		Bind[*Greeter](c).FromMethod(func(*InjectContext) (any, error) { return nil, nil })

		// WHEN
		_, found, err := TryResolve[*Greeter](c)
		_, mandatoryErr := Resolve[*Greeter](c)

		// THEN
		require.NoError(t, err)
		assert.False(t, found)
		var notFound *BindingNotFoundError
		require.ErrorAs(t, mandatoryErr, &notFound)
		assert.Contains(t, notFound.Reason, "produced no instance")
	})

	t.Run("it should call factories with resolved parameters and extra arguments", func(t *testing.T) {
		// GIVEN
		c := New()
		Bind[*Dog](c).AsSingleton()
		Bind[*Kennel](c).
			FromFactory(func(dog *Dog, name string) *Kennel {
				return &Kennel{Dog: dog, Name: name}
			}).
			WithArguments("rex")

		// WHEN
		kennel, err := Resolve[*Kennel](c)

		// THEN
		require.NoError(t, err)
		assert.NotNil(t, kennel.Dog)
		assert.Equal(t, "rex", kennel.Name)
		assert.False(t, kennel.ready, "factories results are not injected")
	})

	t.Run("it should forward resolutions", func(t *testing.T) {
		// GIVEN
		parent := New()
		Bind[*Dog](parent).AsSingleton()
		child := parent.NewChild()
		Bind[Speaker](child).FromResolve(TypeOf[*Dog](), From(Parent))

		// WHEN
		speaker, err := Resolve[Speaker](child)
		require.NoError(t, err)
		dog, err := Resolve[*Dog](parent)
		require.NoError(t, err)

		// THEN
		assert.Same(t, dog, speaker)
	})

	t.Run("it should forward collections", func(t *testing.T) {
		// GIVEN
		c := New()
		Bind[*Dog](c).Named("rex").AsSingleton()
		Bind[*Dog](c).Named("max").AsSingleton()
		Bind[Speaker](c).FromResolveAll(TypeOf[*Dog](), AllIDs())
		Bind[Speaker](c).To(TypeOf[*Cat]())

		// WHEN
		speakers, err := ResolveAll[Speaker](c)
		require.NoError(t, err)
		_, singleErr := Resolve[Speaker](c)

		// THEN
		require.Len(t, speakers, 3)
		assert.IsType(t, &Dog{}, speakers[0])
		assert.IsType(t, &Dog{}, speakers[1])
		assert.IsType(t, &Cat{}, speakers[2])
		assert.ErrorContains(t, singleErr, "produced 2 instances")
	})

	t.Run("it should read environment variables", func(t *testing.T) {
		// GIVEN
		t.Setenv("TREEDI_TEST_GREETING", "bonjour")
		c := New()
		Bind[string](c).Named("greeting").FromEnv("TREEDI_TEST_GREETING")
		Bind[string](c).Named("missing").FromEnv("TREEDI_TEST_MISSING_VARIABLE")

		// WHEN
		greeting, err := Resolve[string](c, Named("greeting"))
		require.NoError(t, err)
		_, found, err := TryResolve[string](c, Named("missing"))

		// THEN
		require.NoError(t, err)
		assert.Equal(t, "bonjour", greeting)
		assert.False(t, found)
	})

	t.Run("it should register bindings only when their condition holds", func(t *testing.T) {
		// GIVEN
		c := New()
		Bind[string](c).Named("APP_ENV").FromInstance("prod")
		Bind[Speaker](c).To(TypeOf[*Dog]()).When(When("APP_ENV").Equals("prod"))
		Bind[Speaker](c).To(TypeOf[*Cat]()).When(When("APP_ENV").NotEquals("prod"))
		Bind[Speaker](c).Named("unset").To(TypeOf[*Cat]()).When(When("OTHER").Equals(""))

		// WHEN
		speakers, err := ResolveAll[Speaker](c, AllIDs())

		// THEN
		require.NoError(t, err)
		require.Len(t, speakers, 1)
		assert.IsType(t, &Dog{}, speakers[0])
	})

	t.Run("it should evaluate conditions on strings bound later in the same flush", func(t *testing.T) {
		// GIVEN
		c := New()
		Bind[Speaker](c).To(TypeOf[*Dog]()).When(When("APP_ENV").Equals("prod"))
		Bind[Speaker](c).Named("fallback").To(TypeOf[*Cat]()).When(When("MISSING").Equals("x"))
		Bind[string](c).Named("APP_ENV").FromInstance("prod")

		// WHEN
		speakers, err := ResolveAll[Speaker](c, AllIDs())

		// THEN
		require.NoError(t, err)
		require.Len(t, speakers, 1)
		assert.IsType(t, &Dog{}, speakers[0])
	})

	t.Run("it should reject duplicates of unique bindings", func(t *testing.T) {
		// GIVEN
		c := New()
		Bind[Speaker](c).To(TypeOf[*Dog]()).Unique()
		Bind[Speaker](c).To(TypeOf[*Cat]())

		// WHEN
		err := c.Flush()

		// THEN
		var duplicate *DuplicateBindingError
		require.ErrorAs(t, err, &duplicate)
		assert.Equal(t, "treedi.Speaker", duplicate.Key)
		all, err := ResolveAll[Speaker](c)
		require.NoError(t, err)
		assert.Len(t, all, 1)
	})

	t.Run("it should report misused binders", func(t *testing.T) {
		// GIVEN
		c := New()
		Bind[*Dog](c).FromInstance(&Dog{}).FromMethod(func(*InjectContext) (any, error) { return nil, nil })
		c.Bind(TypeOf[Speaker](), TypeOf[*Dog]())
		Bind[Speaker](c).FromFactory("not a function")
		Bind[Speaker](c).FromInstance(&Dog{}).WithArguments(1)
		Bind[Speaker](c)

		// WHEN
		err := c.Flush()

		// THEN
		var bindingErr *BindingError
		require.ErrorAs(t, err, &bindingErr)
		assert.ErrorContains(t, err, "binding target already set")
		assert.ErrorContains(t, err, "no target given for several contracts")
		assert.ErrorContains(t, err, "factory method must be a function")
		assert.ErrorContains(t, err, "extra arguments are only used by constructors and factories")
		assert.ErrorContains(t, err, "cannot build treedi.Speaker without a registered constructor")
	})

	t.Run("it should join non-lazy failures", func(t *testing.T) {
		// GIVEN
		c := New()
		Bind[*Greeter](c).FromFactory(NewFailingGreeter).NonLazy()

		// WHEN
		err := c.Flush()

		// THEN
		var ctorErr *ConstructorInvocationError
		require.True(t, errors.As(err, &ctorErr))
		assert.ErrorContains(t, err, "failed to resolve non-lazy binding")
	})
}
