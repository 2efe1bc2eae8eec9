package treedi

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/a-peyrard/treedi/option"
)

type (
	// Scope tells whether a binding builds on every request or once.
	Scope int

	// Binder accumulates one binding, turned into a registry entry at the next flush of its container.
	Binder struct {
		container   *Container
		contracts   []reflect.Type
		id          Identifier
		name        string
		target      target
		concrete    reflect.Type
		instance    reflect.Value
		method      MethodFunc
		factory     any
		factoryDeps []Dependency
		request     DependencyRequest
		variable    string
		scope       Scope
		args        []any
		nonLazy     bool
		unique      bool
		description string
		conditions  []Condition
		errs        []error
	}

	target int
)

const (
	Transient Scope = iota
	Singleton
)

const (
	targetNone target = iota
	targetConcrete
	targetInstance
	targetMethod
	targetFactory
	targetResolve
	targetResolveAll
	targetEnv
)

func (s Scope) String() string {
	if s == Singleton {
		return "singleton"
	}
	return "transient"
}

// Bind starts a binding for the contract types. Without target, the single contract is bound to itself.
func (c *Container) Bind(contracts ...reflect.Type) *Binder {
	b := &Binder{
		container: c,
		contracts: contracts,
	}
	if len(contracts) == 0 {
		b.fail(errors.New("no contract type given"))
	}
	for _, contract := range contracts {
		if contract == nil {
			b.fail(errors.New("nil contract type"))
		}
	}
	c.enqueue(b)
	return b
}

// Bind starts a binding of T.
func Bind[T any](c *Container) *Binder {
	return c.Bind(TypeOf[T]())
}

// BindInterfacesTo binds the interfaces to the concrete type.
func (c *Container) BindInterfacesTo(concrete reflect.Type, interfaces ...reflect.Type) *Binder {
	return c.Bind(interfaces...).To(concrete)
}

// BindInterfacesAndSelfTo binds the concrete type and the interfaces to the concrete type.
func (c *Container) BindInterfacesAndSelfTo(concrete reflect.Type, interfaces ...reflect.Type) *Binder {
	return c.Bind(append([]reflect.Type{concrete}, interfaces...)...).To(concrete)
}

func (b *Binder) WithID(id Identifier) *Binder {
	b.id = id
	b.name = ""
	return b
}

func (b *Binder) Named(name string) *Binder {
	b.id = ID(name)
	b.name = name
	return b
}

func (b *Binder) ToSelf() *Binder {
	if len(b.contracts) != 1 {
		return b.fail(fmt.Errorf("binding to self needs exactly one contract, got %d", len(b.contracts)))
	}
	return b.To(b.contracts[0])
}

// To builds the concrete type with the instantiation engine.
func (b *Binder) To(concrete reflect.Type) *Binder {
	if concrete == nil {
		return b.fail(errors.New("nil concrete type"))
	}
	b.setTarget(targetConcrete)
	b.concrete = concrete
	return b
}

// FromInstance binds an already built value, nothing is injected in it.
func (b *Binder) FromInstance(instance any) *Binder {
	if instance == nil {
		return b.fail(errors.New("nil instance"))
	}
	b.setTarget(targetInstance)
	b.instance = reflect.ValueOf(instance)
	return b
}

func (b *Binder) FromMethod(method MethodFunc) *Binder {
	if method == nil {
		return b.fail(errors.New("nil method"))
	}
	b.setTarget(targetMethod)
	b.method = method
	return b
}

// FromFactory calls the function, its parameters being resolved like constructor parameters.
func (b *Binder) FromFactory(factory any, deps ...Dependency) *Binder {
	b.setTarget(targetFactory)
	b.factory = factory
	b.factoryDeps = deps
	return b
}

// FromResolve forwards to another request, resolved from the container owning the binding.
func (b *Binder) FromResolve(typ reflect.Type, opts ...RequestOption) *Binder {
	b.setTarget(targetResolve)
	b.request = newRequest(typ, opts...)
	return b
}

// FromResolveAll forwards to every binding of the type, to be part of collections of the contract.
func (b *Binder) FromResolveAll(typ reflect.Type, opts ...RequestOption) *Binder {
	b.setTarget(targetResolveAll)
	b.request = newRequest(typ, opts...)
	return b
}

// FromEnv binds a string contract to an environment variable, the binding provides nothing when it is unset.
func (b *Binder) FromEnv(variable string) *Binder {
	b.setTarget(targetEnv)
	b.variable = variable
	return b
}

func (b *Binder) AsTransient() *Binder {
	b.scope = Transient
	return b
}

func (b *Binder) AsSingleton() *Binder {
	b.scope = Singleton
	return b
}

// WithArguments are extra arguments used before the container by constructors and factories.
func (b *Binder) WithArguments(args ...any) *Binder {
	b.args = append(b.args, args...)
	return b
}

// NonLazy resolves the binding once at flush.
func (b *Binder) NonLazy() *Binder {
	b.nonLazy = true
	return b
}

// Unique rejects any other binding of the same key in the container.
func (b *Binder) Unique() *Binder {
	b.unique = true
	return b
}

// When registers the binding only if the condition holds when the container flushes.
func (b *Binder) When(cond Condition) *Binder {
	b.conditions = append(b.conditions, cond)
	return b
}

func (b *Binder) Description(description string) *Binder {
	b.description = description
	return b
}

func (b *Binder) setTarget(t target) {
	if b.target != targetNone {
		b.fail(errors.New("binding target already set"))
	}
	b.target = t
}

func (b *Binder) fail(err error) *Binder {
	b.errs = append(b.errs, err)
	return b
}

// errConditionUndecided is returned by a non final registration when a condition names a string that
// is not bound yet, it may be bound later in the same flush.
var errConditionUndecided = errors.New("condition names a string that is not bound yet")

// register finalizes the binding into a provider and registers it. It returns false when a condition
// skipped the binding. Unless final, a condition on an unbound string returns errConditionUndecided.
func (b *Binder) register(final bool) (int, bool, error) {
	for _, cond := range b.conditions {
		holds, found, err := cond.holds(b.container)
		if err != nil {
			return -1, false, &BindingError{Contracts: b.contracts, Description: b.description, Cause: err}
		}
		if !found && !final {
			return -1, false, errConditionUndecided
		}
		if !holds {
			b.container.logger.Debug().
				Stringer("condition", cond).
				Str("binding", b.String()).
				Msg("condition not met, binding skipped")
			return -1, false, nil
		}
	}

	provider, err := b.provider()
	if err != nil {
		return -1, false, &BindingError{Contracts: b.contracts, Description: b.description, Cause: err}
	}

	opts := []option.Option[RegisterOptions]{Describing(b.description), WithName(b.name)}
	if b.nonLazy {
		opts = append(opts, AsNonLazy())
	}
	if b.unique {
		opts = append(opts, AsUnique())
	}
	b.container.tree.names.remember(b.id, b.name)

	idx, err := b.container.registry.Register(b.contracts, b.id, provider, opts...)
	if err != nil {
		return -1, false, &BindingError{Contracts: b.contracts, Description: b.description, Cause: err}
	}
	return idx, true, nil
}

func (b *Binder) String() string {
	entry := registryEntry{contracts: b.contracts, id: b.id, name: b.name}
	return entry.String()
}

func (b *Binder) provider() (Provider, error) {
	if len(b.errs) > 0 {
		return nil, errors.Join(b.errs...)
	}

	if b.target == targetNone {
		if len(b.contracts) != 1 {
			return nil, errors.New("no target given for several contracts")
		}
		b.target = targetConcrete
		b.concrete = b.contracts[0]
	}

	var (
		provider Provider
		produced reflect.Type
	)
	switch b.target {
	case targetConcrete:
		if _, err := b.container.tree.descriptors.Get(b.concrete); err != nil {
			return nil, err
		}
		provider = &transientProvider{concrete: b.concrete, args: b.args}
		produced = b.concrete
	case targetInstance:
		provider = &instanceProvider{value: b.instance}
		produced = b.instance.Type()
	case targetMethod:
		provider = &methodProvider{method: b.method}
	case targetFactory:
		factory, err := NewFactoryMethodProvider(b.factory, b.factoryDeps...)
		if err != nil {
			return nil, err
		}
		factory.args = b.args
		factory.debug = b.container.tree.settings.Debug
		provider = factory
		produced = factory.Provides()
	case targetResolve:
		provider = &resolveProvider{request: b.request}
		produced = b.request.Type
	case targetResolveAll:
		if b.request.isCollection() {
			return nil, fmt.Errorf("resolve all takes the element type, got %s", b.request.Type)
		}
		provider = &resolveProvider{request: b.request, all: true}
		produced = b.request.Type
	case targetEnv:
		provider = NewEnvProvider(b.variable)
		produced = StringType
	}

	if len(b.args) > 0 && b.target != targetConcrete && b.target != targetFactory {
		return nil, errors.New("extra arguments are only used by constructors and factories")
	}
	if produced != nil {
		for _, contract := range b.contracts {
			if !satisfies(produced, contract) {
				return nil, fmt.Errorf("%s cannot be used as %s", produced, contract)
			}
		}
	}

	if b.scope == Singleton && b.target != targetInstance {
		provider = newCachedProvider(provider, b.container.tree.settings.Concurrent)
	}
	return provider, nil
}
