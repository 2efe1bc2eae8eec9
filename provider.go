package treedi

import (
	"errors"
	"fmt"
	"reflect"
	"sync"
)

// ProviderKind is the closed set of provider variants.
type ProviderKind int

const (
	InstanceKind ProviderKind = iota
	TransientKind
	CachedKind
	ResolveKind
	ResolveAllKind
	MethodKind
	FactoryKind
	EnvKind
	CollectionKind
)

type (
	// Provider produces the instances of a binding. The returned inject callback, when not nil, runs the
	// member injection of the produced instances and must be called once construction is over, it is
	// what lets injection cycles close on instances that already exist.
	Provider interface {
		GetInstances(ctx *InjectContext, args []any) (instances []reflect.Value, inject func() error, err error)
		Kind() ProviderKind
	}

	// MethodFunc builds an instance by hand, nothing is injected in what it returns. Dependencies are
	// resolved through ctx, which carries the cycle tracking of the resolution in progress.
	MethodFunc func(ctx *InjectContext) (any, error)

	instanceProvider struct {
		value reflect.Value
	}

	transientProvider struct {
		concrete reflect.Type
		args     []any
	}

	cachedProvider struct {
		inner         Provider
		mu            *sync.Mutex
		building      bool
		materialized  bool
		failure       error
		values        []reflect.Value
		onMaterialize func(values []reflect.Value)
	}

	resolveProvider struct {
		request DependencyRequest
		all     bool
	}

	methodProvider struct {
		method MethodFunc
	}

	collectionProvider struct {
		request DependencyRequest
	}
)

func (k ProviderKind) String() string {
	switch k {
	case InstanceKind:
		return "instance"
	case TransientKind:
		return "transient"
	case CachedKind:
		return "singleton"
	case ResolveKind:
		return "resolve"
	case ResolveAllKind:
		return "resolve-all"
	case MethodKind:
		return "method"
	case FactoryKind:
		return "factory"
	case EnvKind:
		return "env"
	case CollectionKind:
		return "collection"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

func (p *instanceProvider) GetInstances(*InjectContext, []any) ([]reflect.Value, func() error, error) {
	return []reflect.Value{p.value}, nil, nil
}

func (p *instanceProvider) Kind() ProviderKind {
	return InstanceKind
}

func (p *instanceProvider) String() string {
	return fmt.Sprintf("instance(%s)", typeName(p.value.Type()))
}

func (p *transientProvider) GetInstances(ctx *InjectContext, args []any) ([]reflect.Value, func() error, error) {
	all := p.args
	if len(args) > 0 {
		all = append(append(make([]any, 0, len(p.args)+len(args)), p.args...), args...)
	}
	instance, inject, err := ctx.container.instantiate(ctx, p.concrete, all)
	if err != nil {
		return nil, nil, err
	}
	return []reflect.Value{instance}, inject, nil
}

func (p *transientProvider) Kind() ProviderKind {
	return TransientKind
}

func (p *transientProvider) String() string {
	return fmt.Sprintf("transient(%s)", typeName(p.concrete))
}

func newCachedProvider(inner Provider, concurrent bool) *cachedProvider {
	p := &cachedProvider{inner: inner}
	if concurrent {
		p.mu = &sync.Mutex{}
	}
	return p
}

// GetInstances materializes the wrapped provider once. Coming back while the wrapped provider is still
// constructing is a cycle, coming back while its instances get injected returns them. Once the injection
// of the instances failed, every later call fails with the same error.
func (p *cachedProvider) GetInstances(ctx *InjectContext, args []any) ([]reflect.Value, func() error, error) {
	if err := ctx.tracker.Push(p); err != nil {
		return nil, nil, err
	}
	defer ctx.tracker.Pop()

	p.lock()
	defer p.unlock()

	if p.failure != nil {
		return nil, nil, fmt.Errorf("%s failed to be injected:\n\t%w", p, p.failure)
	}
	if p.materialized {
		return p.values, nil, nil
	}
	if p.building {
		return nil, nil, &CircularDependencyError{Path: []string{p.String(), p.String()}}
	}

	p.building = true
	values, inject, err := p.inner.GetInstances(ctx, args)
	p.building = false
	if err != nil {
		return nil, nil, err
	}

	p.values = values
	p.materialized = true
	if p.onMaterialize != nil {
		p.onMaterialize(values)
	}
	if inject == nil {
		return values, nil, nil
	}
	return values, func() error {
		if err := inject(); err != nil {
			p.lock()
			p.failure = err
			p.values = nil
			p.unlock()
			return err
		}
		return nil
	}, nil
}

func (p *cachedProvider) lock() {
	if p.mu != nil {
		p.mu.Lock()
	}
}

func (p *cachedProvider) unlock() {
	if p.mu != nil {
		p.mu.Unlock()
	}
}

func (p *cachedProvider) Kind() ProviderKind {
	return CachedKind
}

func (p *cachedProvider) String() string {
	return fmt.Sprintf("singleton(%s)", p.inner)
}

func (p *resolveProvider) GetInstances(ctx *InjectContext, _ []any) ([]reflect.Value, func() error, error) {
	if p.all {
		values := rentValues()
		defer releaseValues(values)
		if err := ctx.container.aggregate(ctx, p.request, values); err != nil {
			return nil, nil, err
		}
		return append([]reflect.Value(nil), *values...), nil, nil
	}

	value, found, err := ctx.container.resolve(ctx, p.request)
	if err != nil || !found {
		return nil, nil, err
	}
	return []reflect.Value{value}, nil, nil
}

func (p *resolveProvider) Kind() ProviderKind {
	if p.all {
		return ResolveAllKind
	}
	return ResolveKind
}

func (p *resolveProvider) String() string {
	if p.all {
		return fmt.Sprintf("resolve-all(%s)", p.request)
	}
	return fmt.Sprintf("resolve(%s)", p.request)
}

func (p *methodProvider) GetInstances(ctx *InjectContext, _ []any) (instances []reflect.Value, inject func() error, err error) {
	var result any
	func() {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("panic calling method provider: %v", r)
			}
		}()
		result, err = p.method(ctx)
	}()
	if err != nil {
		return nil, nil, err
	}
	if result == nil {
		return nil, nil, nil
	}
	return []reflect.Value{reflect.ValueOf(result)}, nil, nil
}

func (p *methodProvider) Kind() ProviderKind {
	return MethodKind
}

func (p *methodProvider) String() string {
	return "method"
}

// GetInstances returns a single slice aggregating the bindings of the element type.
func (p *collectionProvider) GetInstances(ctx *InjectContext, _ []any) ([]reflect.Value, func() error, error) {
	values := rentValues()
	defer releaseValues(values)

	if err := ctx.container.aggregate(ctx, p.request.element(), values); err != nil {
		return nil, nil, err
	}
	if len(*values) == 0 && p.request.Optional {
		return nil, nil, nil
	}

	elem := p.request.Type.Elem()
	slice := reflect.MakeSlice(p.request.Type, 0, len(*values))
	for _, v := range *values {
		if !satisfies(v.Type(), elem) {
			return nil, nil, fmt.Errorf("binding produced a %s, which cannot be used as %s", v.Type(), elem)
		}
		slice = reflect.Append(slice, v)
	}
	return []reflect.Value{slice}, nil, nil
}

func (p *collectionProvider) Kind() ProviderKind {
	return CollectionKind
}

func (p *collectionProvider) String() string {
	return fmt.Sprintf("collection(%s)", p.request)
}

// invoke calls fn, turning panics and a trailing non nil error into an error.
func invoke(fn reflect.Value, args []reflect.Value) (out []reflect.Value, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	out = fn.Call(args)
	if n := len(out); n > 0 && fn.Type().Out(n-1) == ErrorType {
		if errV := out[n-1]; !errV.IsNil() {
			return nil, errV.Interface().(error)
		}
		out = out[:n-1]
	}
	return out, nil
}

func checkReturns(fnTyp reflect.Type, minOut int) error {
	switch {
	case fnTyp.NumOut() == minOut:
		return nil
	case fnTyp.NumOut() == minOut+1 && fnTyp.Out(minOut) == ErrorType:
		return nil
	case minOut == 0:
		return errors.New("function must return nothing or an error")
	default:
		return errors.New("function must either return the instance and an error, or just the instance")
	}
}
