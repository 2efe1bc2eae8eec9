package treedi

import (
	"fmt"
	"reflect"
)

var (
	StringType        = TypeOf[string]()
	ErrorType         = TypeOf[error]()
	CloseableType     = TypeOf[Closeable]()
	StringerType      = TypeOf[fmt.Stringer]()
	ContainerType     = TypeOf[*Container]()
	InjectContextType = TypeOf[*InjectContext]()
)

type (
	// Closeable is implemented by singletons owning resources, they are closed along with their container.
	Closeable interface {
		Close() error
	}
)

// satisfies reports whether a value of type provided can be handed out for the contract type.
func satisfies(provided, contract reflect.Type) bool {
	if provided == contract {
		return true
	}
	if contract.Kind() == reflect.Interface {
		return provided.Implements(contract)
	}
	return provided.AssignableTo(contract)
}

func TypeOf[I any]() reflect.Type {
	var i I
	t := reflect.TypeOf(i)
	if t == nil {
		t = reflect.TypeOf((*I)(nil)).Elem()
	}
	return t
}

func unReflect[T any](v reflect.Value) (res T, err error) {
	if !v.IsValid() {
		return res, nil
	}
	res, ok := v.Interface().(T)
	if !ok {
		return res, fmt.Errorf("value %v is not of type %T", v, res)
	}
	return res, nil
}

func typeName(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}
	return t.String()
}
