package reflectutils

import (
	"reflect"
)

// TaggedField describes a struct field carrying a given tag key.
type TaggedField struct {
	Name  string
	Index int
	Type  reflect.Type
	Tag   string
}

// TaggedFields lists the direct fields of the struct type t (or of the struct t points to) carrying the tag key,
// unexported ones included, in declaration order.
func TaggedFields(t reflect.Type, key string) []TaggedField {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil
	}

	var fields []TaggedField
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		tag, found := f.Tag.Lookup(key)
		if !found {
			continue
		}
		fields = append(fields, TaggedField{Name: f.Name, Index: i, Type: f.Type, Tag: tag})
	}
	return fields
}

// Settable returns a settable view of the value, bypassing the read-only flag reflect puts on unexported fields.
// The value must be addressable.
func Settable(v reflect.Value) reflect.Value {
	if v.CanSet() {
		return v
	}
	return reflect.NewAt(v.Type(), v.Addr().UnsafePointer()).Elem()
}

// IsNilable reports whether values of kind k can hold nil.
func IsNilable(k reflect.Kind) bool {
	switch k {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return true
	default:
		return false
	}
}
