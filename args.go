package treedi

import (
	"fmt"
	"reflect"
)

type (
	// extraArgs are caller supplied values used before the container to fill parameters and fields.
	// Each value is consumed at most once.
	extraArgs struct {
		values []reflect.Value
		used   []bool
	}
)

func newExtraArgs(args []any) (*extraArgs, error) {
	if len(args) == 0 {
		return nil, nil
	}
	extra := &extraArgs{
		values: make([]reflect.Value, len(args)),
		used:   make([]bool, len(args)),
	}
	seen := make(map[reflect.Type]int, len(args))
	for i, arg := range args {
		if arg == nil {
			return nil, fmt.Errorf("extra argument %d is nil, its type cannot be matched", i)
		}
		v := reflect.ValueOf(arg)
		if previous, found := seen[v.Type()]; found {
			return nil, fmt.Errorf("extra arguments %d and %d have the same type %s", previous, i, v.Type())
		}
		seen[v.Type()] = i
		extra.values[i] = v
	}
	return extra, nil
}

// take consumes the argument matching the type, exact type first, then any assignable one.
func (a *extraArgs) take(t reflect.Type) (reflect.Value, bool) {
	if a == nil {
		return reflect.Value{}, false
	}
	for i, v := range a.values {
		if !a.used[i] && v.Type() == t {
			a.used[i] = true
			return v, true
		}
	}
	for i, v := range a.values {
		if !a.used[i] && satisfies(v.Type(), t) {
			a.used[i] = true
			return v, true
		}
	}
	return reflect.Value{}, false
}

func (a *extraArgs) unused() []string {
	if a == nil {
		return nil
	}
	var types []string
	for i, v := range a.values {
		if !a.used[i] {
			types = append(types, v.Type().String())
		}
	}
	return types
}
