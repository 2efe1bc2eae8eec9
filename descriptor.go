package treedi

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/a-peyrard/treedi/option"
	"github.com/a-peyrard/treedi/reflectutils"
	"github.com/puzpuzpuz/xsync/v3"
)

const (
	DefaultInjectTag           = "inject"
	DefaultPostConstructMethod = "PostInject"
)

type (
	// Descriptor lists what building a type takes: a constructor, fields injected once it is built and a
	// method called after the fields.
	Descriptor struct {
		Type          reflect.Type
		Constructor   *ConstructorDescriptor
		Fields        []FieldDescriptor
		PostConstruct *MethodDescriptor
	}

	// ConstructorDescriptor is a function returning the type, optionally followed by an error.
	// A nil constructor allocates a zero value of the pointed struct.
	ConstructorDescriptor struct {
		Func   reflect.Value
		Params []DependencyRequest
	}

	FieldDescriptor struct {
		Name    string
		Request DependencyRequest
		Set     func(target, value reflect.Value)
	}

	// MethodDescriptor is a method expression, the receiver being its first parameter.
	MethodDescriptor struct {
		Name   string
		Func   reflect.Value
		Params []DependencyRequest
	}

	// FieldSpec is an explicit field injection, built by SetField.
	FieldSpec struct {
		owner reflect.Type
		field FieldDescriptor
	}

	// TypeAnalyzer computes the descriptor of the types nobody registered one for.
	TypeAnalyzer interface {
		Analyze(t reflect.Type) (*Descriptor, error)
	}

	// TagAnalyzer describes pointers to structs: zero value construction, fields carrying the inject tag
	// (unexported ones included) and the post construct method when the type has it.
	TagAnalyzer struct {
		Tag                 string
		PostConstructMethod string
	}

	// DescriptorTable caches one descriptor per type for its whole lifetime. Explicit registrations
	// must happen before the type is first used.
	DescriptorTable struct {
		mu       sync.Mutex
		explicit map[reflect.Type]*Descriptor
		cache    *xsync.MapOf[reflect.Type, descriptorResult]
		analyzer TypeAnalyzer
	}

	DescriptorTableOptions struct {
		analyzer TypeAnalyzer
	}

	descriptorResult struct {
		descriptor *Descriptor
		err        error
	}
)

// WithAnalyzer replaces the tag analyzer, nil leaves only explicit registrations.
func WithAnalyzer(analyzer TypeAnalyzer) option.Option[DescriptorTableOptions] {
	return func(opts *DescriptorTableOptions) {
		opts.analyzer = analyzer
	}
}

func NewDescriptorTable(opts ...option.Option[DescriptorTableOptions]) *DescriptorTable {
	options := option.Build(
		&DescriptorTableOptions{
			analyzer: TagAnalyzer{},
		},
		opts...,
	)
	return &DescriptorTable{
		explicit: make(map[reflect.Type]*Descriptor),
		cache:    xsync.NewMapOf[reflect.Type, descriptorResult](),
		analyzer: options.analyzer,
	}
}

// Constructor registers the constructor of the type it returns. Dependencies are given per parameter,
// missing ones default to Inject.Auto().
func (t *DescriptorTable) Constructor(constructor any, deps ...Dependency) error {
	if constructor == nil {
		return fmt.Errorf("constructor must be a function, got nil")
	}
	fnTyp := reflect.TypeOf(constructor)
	if fnTyp.Kind() != reflect.Func {
		return fmt.Errorf("constructor must be a function, got %s", fnTyp)
	}
	if fnTyp.IsVariadic() {
		return fmt.Errorf("constructor %s cannot be variadic", fnTyp)
	}
	if fnTyp.NumOut() == 0 {
		return fmt.Errorf("constructor %s must return the instance", fnTyp)
	}
	if err := checkReturns(fnTyp, 1); err != nil {
		return fmt.Errorf("invalid constructor %s:\n\t%w", fnTyp, err)
	}
	if len(deps) > fnTyp.NumIn() {
		return fmt.Errorf("constructor %s takes %d parameters, %d dependencies given", fnTyp, fnTyp.NumIn(), len(deps))
	}

	return t.update(fnTyp.Out(0), func(d *Descriptor) error {
		if d.Constructor != nil {
			return fmt.Errorf("constructor of %s already registered", d.Type)
		}
		d.Constructor = &ConstructorDescriptor{
			Func:   reflect.ValueOf(constructor),
			Params: buildRequests(fnTyp, 0, deps),
		}
		return nil
	})
}

// Fields registers field injections, appended in order to the descriptor of their owner.
func (t *DescriptorTable) Fields(specs ...FieldSpec) error {
	for _, spec := range specs {
		err := t.update(spec.owner, func(d *Descriptor) error {
			d.Fields = append(d.Fields, spec.field)
			return nil
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// PostConstruct registers the method expression called once fields are injected, e.g. (*Service).Init.
func (t *DescriptorTable) PostConstruct(method any, deps ...Dependency) error {
	if method == nil {
		return fmt.Errorf("post construct method must be a function, got nil")
	}
	fnTyp := reflect.TypeOf(method)
	if fnTyp.Kind() != reflect.Func || fnTyp.NumIn() == 0 {
		return fmt.Errorf("post construct method must be a method expression, got %s", fnTyp)
	}
	if fnTyp.IsVariadic() {
		return fmt.Errorf("post construct method %s cannot be variadic", fnTyp)
	}
	if err := checkReturns(fnTyp, 0); err != nil {
		return fmt.Errorf("invalid post construct method %s:\n\t%w", fnTyp, err)
	}
	if len(deps) > fnTyp.NumIn()-1 {
		return fmt.Errorf("post construct method %s takes %d parameters, %d dependencies given", fnTyp, fnTyp.NumIn()-1, len(deps))
	}

	return t.update(fnTyp.In(0), func(d *Descriptor) error {
		if d.PostConstruct != nil {
			return fmt.Errorf("post construct method of %s already registered", d.Type)
		}
		d.PostConstruct = &MethodDescriptor{
			Name:   "PostConstruct",
			Func:   reflect.ValueOf(method),
			Params: buildRequests(fnTyp, 1, deps),
		}
		return nil
	})
}

func (t *DescriptorTable) update(typ reflect.Type, fn func(d *Descriptor) error) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, used := t.cache.Load(typ); used {
		return fmt.Errorf("descriptor of %s is already in use, register it before building the type", typ)
	}
	d, found := t.explicit[typ]
	if !found {
		d = &Descriptor{Type: typ}
	}
	if err := fn(d); err != nil {
		return err
	}
	t.explicit[typ] = d
	return nil
}

// Get returns the descriptor of the type, computing it on first use.
func (t *DescriptorTable) Get(typ reflect.Type) (*Descriptor, error) {
	result, _ := t.cache.LoadOrCompute(typ, func() descriptorResult {
		t.mu.Lock()
		explicit, found := t.explicit[typ]
		t.mu.Unlock()

		if found {
			if explicit.Constructor == nil && !isStructPointer(typ) {
				return descriptorResult{err: fmt.Errorf("no constructor registered for %s", typ)}
			}
			return descriptorResult{descriptor: explicit}
		}
		if t.analyzer == nil {
			return descriptorResult{err: fmt.Errorf("no descriptor registered for %s", typ)}
		}
		descriptor, err := t.analyzer.Analyze(typ)
		return descriptorResult{descriptor: descriptor, err: err}
	})
	return result.descriptor, result.err
}

// SetField describes the injection of a field through a setter, which keeps unexported fields
// reachable without reflection on the struct layout.
func SetField[T any, F any](name string, set func(T, F), deps ...Dependency) FieldSpec {
	return FieldSpec{
		owner: TypeOf[T](),
		field: FieldDescriptor{
			Name:    name,
			Request: dependencyAt(deps, 0).build(TypeOf[F]()),
			Set: func(target, value reflect.Value) {
				set(target.Interface().(T), value.Interface().(F))
			},
		},
	}
}

func (a TagAnalyzer) Analyze(t reflect.Type) (*Descriptor, error) {
	if !isStructPointer(t) {
		return nil, fmt.Errorf(
			"cannot build %s without a registered constructor, only pointers to structs are built by default", t,
		)
	}

	tag := a.Tag
	if tag == "" {
		tag = DefaultInjectTag
	}
	descriptor := &Descriptor{Type: t}
	for _, field := range reflectutils.TaggedFields(t, tag) {
		spec, err := ParseDependency(field.Tag)
		if err != nil {
			return nil, fmt.Errorf("invalid %s tag on field %s of %s:\n\t%w", tag, field.Name, t, err)
		}
		index := field.Index
		descriptor.Fields = append(descriptor.Fields, FieldDescriptor{
			Name:    field.Name,
			Request: spec.build(field.Type),
			Set: func(target, value reflect.Value) {
				reflectutils.Settable(target.Elem().Field(index)).Set(value)
			},
		})
	}

	methodName := a.PostConstructMethod
	if methodName == "" {
		methodName = DefaultPostConstructMethod
	}
	if method, found := t.MethodByName(methodName); found {
		if method.Type.IsVariadic() {
			return nil, fmt.Errorf("method %s of %s cannot be variadic", methodName, t)
		}
		if err := checkReturns(method.Type, 0); err != nil {
			return nil, fmt.Errorf("invalid method %s of %s:\n\t%w", methodName, t, err)
		}
		descriptor.PostConstruct = &MethodDescriptor{
			Name:   methodName,
			Func:   method.Func,
			Params: buildRequests(method.Type, 1, nil),
		}
	}
	return descriptor, nil
}

func isStructPointer(t reflect.Type) bool {
	return t.Kind() == reflect.Pointer && t.Elem().Kind() == reflect.Struct
}
