package treedi

import (
	"fmt"
	"path/filepath"
	"reflect"
	"runtime"
)

type (
	// FactoryMethodProvider calls a function whose parameters are resolved from the container.
	// The function returns the instance, optionally followed by an error.
	FactoryMethodProvider struct {
		name     string
		factory  reflect.Value
		provides reflect.Type
		params   []DependencyRequest
		args     []any
		debug    bool
	}
)

func NewFactoryMethodProvider(factoryMethod any, deps ...Dependency) (*FactoryMethodProvider, error) {
	if factoryMethod == nil {
		return nil, fmt.Errorf("factory method must be a function, got nil")
	}
	t := reflect.TypeOf(factoryMethod)
	if t.Kind() != reflect.Func {
		return nil, fmt.Errorf("factory method must be a function, got %s", t)
	}
	if t.IsVariadic() {
		return nil, fmt.Errorf("factory method %s cannot be variadic", t)
	}
	if t.NumOut() == 0 {
		return nil, fmt.Errorf("factory method %s must return the instance", t)
	}
	if err := checkReturns(t, 1); err != nil {
		return nil, fmt.Errorf("invalid factory method %s:\n\t%w", t, err)
	}
	if len(deps) > t.NumIn() {
		return nil, fmt.Errorf("factory method %s takes %d parameters, %d dependencies given", t, t.NumIn(), len(deps))
	}

	fn := reflect.ValueOf(factoryMethod)
	return &FactoryMethodProvider{
		name:     filepath.Base(runtime.FuncForPC(fn.Pointer()).Name()),
		factory:  fn,
		provides: t.Out(0),
		params:   buildRequests(t, 0, deps),
	}, nil
}

// Provides is the type returned by the factory.
func (f *FactoryMethodProvider) Provides() reflect.Type {
	return f.provides
}

func (f *FactoryMethodProvider) GetInstances(ctx *InjectContext, args []any) ([]reflect.Value, func() error, error) {
	extra, err := newExtraArgs(append(append([]any(nil), f.args...), args...))
	if err != nil {
		return nil, nil, &ConstructorInvocationError{Type: f.provides, Param: -1, Cause: err}
	}

	buf, values := rentArgs(len(f.params))
	defer buf.release()
	for i := range f.params {
		v, err := ctx.container.argument(ctx, f.params[i], extra)
		if err != nil {
			return nil, nil, &ConstructorInvocationError{Type: f.provides, Param: i, Request: &f.params[i], Cause: err}
		}
		values[i] = v
	}

	out, err := invoke(f.factory, values)
	if err != nil {
		return nil, nil, &ConstructorInvocationError{
			Type:  f.provides,
			Param: -1,
			Cause: fmt.Errorf("factory %s failed:\n\t%w", f.name, err),
		}
	}
	if f.debug {
		if unused := extra.unused(); len(unused) > 0 {
			return nil, nil, fmt.Errorf("factory %s left extra arguments unused: %v", f.name, unused)
		}
	}
	return out[:1], nil, nil
}

func (f *FactoryMethodProvider) Kind() ProviderKind {
	return FactoryKind
}

func (f *FactoryMethodProvider) String() string {
	return fmt.Sprintf("factory(%s)", f.name)
}
