package reflectutils

import (
	"reflect"

	"github.com/a-peyrard/treedi/fn"
)

// WalkStruct applies a tri-consumer on all exported fields and nested fields of a given object,
// the last argument being the path of field names leading to the value.
func WalkStruct[T any](element T, consumer fn.TriConsumer[reflect.Value, reflect.Type, []string]) {
	walkStructInternal(reflect.ValueOf(element), []string{}, consumer)
}

func walkStructInternal(val reflect.Value, path []string, consumer fn.TriConsumer[reflect.Value, reflect.Type, []string]) {
	consumer(val, val.Type(), path)

	val = Deref(val)
	if !val.IsValid() || val.Kind() != reflect.Struct {
		return
	}

	typ := val.Type()
	for i := 0; i < typ.NumField(); i++ {
		structField := typ.Field(i)
		if !structField.IsExported() {
			continue
		}
		walkStructInternal(val.Field(i), append(path, structField.Name), consumer)
	}
}

// Deref dereferences recursively a reflect.Value until it reaches a non-pointer or non-interface value
func Deref(value reflect.Value) reflect.Value {
	if value.Kind() == reflect.Ptr || value.Kind() == reflect.Interface {
		return Deref(value.Elem())
	}
	return value
}

// CreateNilStructs creates new struct instances for nil struct pointers
func CreateNilStructs(val reflect.Value, typ reflect.Type, _ []string) {
	if typ.Kind() == reflect.Pointer &&
		val.IsNil() &&
		typ.Elem().Kind() == reflect.Struct &&
		val.CanSet() {

		val.Set(reflect.New(typ.Elem()))
	}
}
