package treedi

import (
	"fmt"
	"reflect"
)

type (
	// Resolver is what resolution functions accept: a container, or the context given to factories and
	// methods so that what they resolve is part of the ongoing resolution.
	Resolver interface {
		resolutionContext() (*InjectContext, error)
	}

	// InjectContext is the state of one resolution call, bound to the container currently resolving.
	InjectContext struct {
		container *Container
		tracker   *Tracker
	}
)

func (c *Container) newContext() *InjectContext {
	return &InjectContext{
		container: c,
		tracker:   NewTracker(c.tree.settings.MaxDepth),
	}
}

func (c *Container) resolutionContext() (*InjectContext, error) {
	if err := c.flushChain(); err != nil {
		return nil, fmt.Errorf("failed to flush bindings of container %q:\n\t%w", c.name, err)
	}
	return c.newContext(), nil
}

func (ctx *InjectContext) resolutionContext() (*InjectContext, error) {
	return ctx, nil
}

// Container is the container resolving, the one owning the binding being built.
func (ctx *InjectContext) Container() *Container {
	return ctx.container
}

// Depth is the number of nested resolutions in progress.
func (ctx *InjectContext) Depth() int {
	return ctx.tracker.Depth()
}

func (ctx *InjectContext) in(c *Container) *InjectContext {
	if ctx.container == c {
		return ctx
	}
	return &InjectContext{container: c, tracker: ctx.tracker}
}

// Resolve resolves a value of type T, failing when no binding matches.
func Resolve[T any](r Resolver, opts ...RequestOption) (T, error) {
	var zero T
	val, found, err := resolveTyped[T](r, newRequest(TypeOf[T](), opts...))
	if err != nil {
		return zero, err
	}
	if !found {
		return zero, fmt.Errorf("no instance of %s", TypeOf[T]())
	}
	return val, nil
}

// MustResolve is Resolve panicking on error.
func MustResolve[T any](r Resolver, opts ...RequestOption) T {
	val, err := Resolve[T](r, opts...)
	if err != nil {
		panic(fmt.Sprintf("failed to resolve %s:\n\t%v", TypeOf[T](), err))
	}
	return val
}

// TryResolve resolves an optional value of type T.
//
// It returns the resolved value, a boolean indicating if it was found, and an error if any occurred during resolution.
func TryResolve[T any](r Resolver, opts ...RequestOption) (value T, found bool, err error) {
	return resolveTyped[T](r, newRequest(TypeOf[T](), append(opts, Optional())...))
}

// ResolveAll resolves every binding of T in the request scope, nearest container first then in
// registration order. It returns an empty slice when there is none.
func ResolveAll[T any](r Resolver, opts ...RequestOption) ([]T, error) {
	values, found, err := resolveTyped[[]T](r, newRequest(TypeOf[[]T](), opts...))
	if err != nil {
		return nil, err
	}
	if !found || values == nil {
		return []T{}, nil
	}
	return values, nil
}

// HasBinding reports whether a binding matches the request, without building anything.
func HasBinding[T any](r Resolver, opts ...RequestOption) (bool, error) {
	ctx, err := r.resolutionContext()
	if err != nil {
		return false, err
	}
	return ctx.container.hasBinding(newRequest(TypeOf[T](), opts...)), nil
}

// Instantiate builds a new T with the container, whether T is bound or not. Extra arguments are used
// before the container for parameters and fields of a matching type.
func Instantiate[T any](r Resolver, args ...any) (T, error) {
	var zero T
	ctx, err := r.resolutionContext()
	if err != nil {
		return zero, err
	}
	typ := TypeOf[T]()
	value, err := ctx.container.build(ctx, typ, args)
	if err != nil {
		return zero, fmt.Errorf("failed to instantiate %s:\n\t%w", typ, err)
	}
	return unReflect[T](value)
}

// InjectInto injects the fields and calls the post construct method of an instance built elsewhere.
func InjectInto(r Resolver, target any, args ...any) error {
	ctx, err := r.resolutionContext()
	if err != nil {
		return err
	}
	return ctx.container.inject(ctx, reflect.ValueOf(target), args)
}

// Resolve is the untyped Resolve.
func (c *Container) Resolve(typ reflect.Type, opts ...RequestOption) (any, error) {
	val, found, err := c.resolveValue(newRequest(typ, opts...))
	if err != nil || !found {
		return nil, err
	}
	return val.Interface(), nil
}

// TryResolve is the untyped TryResolve.
func (c *Container) TryResolve(typ reflect.Type, opts ...RequestOption) (any, bool, error) {
	val, found, err := c.resolveValue(newRequest(typ, append(opts, Optional())...))
	if err != nil || !found {
		return nil, false, err
	}
	return val.Interface(), true, nil
}

// Inject is InjectInto the container.
func (c *Container) Inject(target any, args ...any) error {
	return InjectInto(c, target, args...)
}

func (c *Container) resolveValue(req DependencyRequest) (reflect.Value, bool, error) {
	ctx, err := c.resolutionContext()
	if err != nil {
		return reflect.Value{}, false, err
	}
	c.tree.names.remember(req.ID, req.Name)
	val, found, err := c.resolve(ctx, req)
	if err != nil {
		return reflect.Value{}, false, fmt.Errorf("failed to resolve %s:\n\t%w", req.format(c.tree.names), err)
	}
	return val, found, nil
}

func (c *Container) build(ctx *InjectContext, typ reflect.Type, args []any) (reflect.Value, error) {
	frame := ctorFrame{typ: typ}
	if err := ctx.tracker.Enter(frame); err != nil {
		return reflect.Value{}, err
	}
	defer ctx.tracker.Leave()

	instance, inject, err := c.instantiate(ctx, typ, args)
	if err != nil {
		return reflect.Value{}, err
	}
	if err := inject(); err != nil {
		return reflect.Value{}, err
	}
	return instance, nil
}

func resolveTyped[T any](r Resolver, req DependencyRequest) (val T, found bool, err error) {
	ctx, err := r.resolutionContext()
	if err != nil {
		return val, false, err
	}
	c := ctx.container
	c.tree.names.remember(req.ID, req.Name)

	resolved, found, err := c.resolve(ctx, req)
	if err != nil {
		return val, false, fmt.Errorf("failed to resolve %s:\n\t%w", req.format(c.tree.names), err)
	}
	if !found {
		return val, false, nil
	}
	val, err = unReflect[T](resolved)
	return val, true, err
}
