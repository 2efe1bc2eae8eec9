package treedi

import (
	"errors"
	"fmt"
	"reflect"
)

type (
	// ctorFrame marks a type whose constructor is running.
	ctorFrame struct {
		typ reflect.Type
	}
)

func (f ctorFrame) String() string {
	return fmt.Sprintf("new %s", typeName(f.typ))
}

// instantiate builds a concrete type and returns it along with the injection of its members, which the
// caller runs once the construction path is unwound.
func (c *Container) instantiate(ctx *InjectContext, concrete reflect.Type, args []any) (reflect.Value, func() error, error) {
	descriptor, err := c.tree.descriptors.Get(concrete)
	if err != nil {
		return reflect.Value{}, nil, &ConstructorInvocationError{Type: concrete, Param: -1, Cause: err}
	}
	extra, err := newExtraArgs(args)
	if err != nil {
		return reflect.Value{}, nil, &ConstructorInvocationError{Type: concrete, Param: -1, Cause: err}
	}

	frame := ctorFrame{typ: concrete}
	if err := ctx.tracker.Push(frame); err != nil {
		return reflect.Value{}, nil, err
	}
	instance, err := c.construct(ctx, descriptor, extra)
	ctx.tracker.Pop()
	if err != nil {
		return reflect.Value{}, nil, err
	}

	return instance, func() error {
		if err := c.injectMembers(ctx, descriptor, instance, extra); err != nil {
			return err
		}
		return c.checkUnused(concrete, extra)
	}, nil
}

func (c *Container) construct(ctx *InjectContext, descriptor *Descriptor, extra *extraArgs) (reflect.Value, error) {
	ctor := descriptor.Constructor
	if ctor == nil {
		return reflect.New(descriptor.Type.Elem()), nil
	}

	var (
		out []reflect.Value
		err error
	)
	if len(ctor.Params) == 0 {
		out, err = invoke(ctor.Func, nil)
	} else {
		buf, values := rentArgs(len(ctor.Params))
		defer buf.release()
		for i := range ctor.Params {
			v, err := c.argument(ctx, ctor.Params[i], extra)
			if err != nil {
				return reflect.Value{}, &ConstructorInvocationError{
					Type:    descriptor.Type,
					Param:   i,
					Request: &ctor.Params[i],
					Cause:   err,
				}
			}
			values[i] = v
		}
		out, err = invoke(ctor.Func, values)
	}
	if err != nil {
		return reflect.Value{}, &ConstructorInvocationError{Type: descriptor.Type, Param: -1, Cause: err}
	}
	return out[0], nil
}

// injectMembers sets the fields, then calls the post construct method. An optional field without
// binding keeps its current value.
func (c *Container) injectMembers(ctx *InjectContext, descriptor *Descriptor, target reflect.Value, extra *extraArgs) error {
	for _, field := range descriptor.Fields {
		value, found, err := c.member(ctx, field.Request, extra)
		if err != nil {
			return &FieldInjectionError{Type: descriptor.Type, Field: field.Name, Request: field.Request, Cause: err}
		}
		if !found {
			continue
		}
		if err := setField(field, target, value); err != nil {
			return &FieldInjectionError{Type: descriptor.Type, Field: field.Name, Request: field.Request, Cause: err}
		}
	}

	method := descriptor.PostConstruct
	if method == nil {
		return nil
	}
	buf, values := rentArgs(len(method.Params) + 1)
	defer buf.release()
	values[0] = target
	for i := range method.Params {
		v, err := c.argument(ctx, method.Params[i], extra)
		if err != nil {
			return &MethodInjectionError{Type: descriptor.Type, Method: method.Name, Param: i, Cause: err}
		}
		values[i+1] = v
	}
	if _, err := invoke(method.Func, values); err != nil {
		return &MethodInjectionError{Type: descriptor.Type, Method: method.Name, Param: -1, Cause: err}
	}
	return nil
}

func setField(field FieldDescriptor, target, value reflect.Value) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	field.Set(target, value)
	return nil
}

// argument fills a parameter: extra arguments first, then the container. An optional parameter without
// binding gets the zero value.
func (c *Container) argument(ctx *InjectContext, req DependencyRequest, extra *extraArgs) (reflect.Value, error) {
	value, found, err := c.member(ctx, req, extra)
	if err != nil {
		return reflect.Value{}, err
	}
	if !found {
		return reflect.Zero(req.Type), nil
	}
	return value, nil
}

func (c *Container) member(ctx *InjectContext, req DependencyRequest, extra *extraArgs) (reflect.Value, bool, error) {
	if v, found := extra.take(req.Type); found {
		return v, true, nil
	}
	if req.Type == InjectContextType {
		return reflect.ValueOf(ctx), true, nil
	}
	return c.resolve(ctx, req)
}

func (c *Container) checkUnused(typ reflect.Type, extra *extraArgs) error {
	if !c.tree.settings.Debug {
		return nil
	}
	if unused := extra.unused(); len(unused) > 0 {
		return &ConstructorInvocationError{
			Type:  typ,
			Param: -1,
			Cause: fmt.Errorf("extra arguments left unused: %v", unused),
		}
	}
	return nil
}

// inject runs the member injection of an instance built outside the container.
func (c *Container) inject(ctx *InjectContext, target reflect.Value, args []any) error {
	if !target.IsValid() || target.Kind() != reflect.Pointer || target.IsNil() {
		return errors.New("injection target must be a non nil pointer")
	}
	descriptor, err := c.tree.descriptors.Get(target.Type())
	if err != nil {
		return fmt.Errorf("cannot inject %s:\n\t%w", target.Type(), err)
	}
	extra, err := newExtraArgs(args)
	if err != nil {
		return fmt.Errorf("cannot inject %s:\n\t%w", target.Type(), err)
	}

	frame := ctorFrame{typ: target.Type()}
	if err := ctx.tracker.Enter(frame); err != nil {
		return err
	}
	defer ctx.tracker.Leave()

	if err := c.injectMembers(ctx, descriptor, target, extra); err != nil {
		return err
	}
	return c.checkUnused(target.Type(), extra)
}
