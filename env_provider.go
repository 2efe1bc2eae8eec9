package treedi

import (
	"fmt"
	"os"
	"reflect"
)

// EnvProvider provides the value of an environment variable as a string, and nothing when it is unset.
type EnvProvider struct {
	variable string
}

func NewEnvProvider(variable string) *EnvProvider {
	return &EnvProvider{variable: variable}
}

func (e *EnvProvider) GetInstances(*InjectContext, []any) ([]reflect.Value, func() error, error) {
	value, found := os.LookupEnv(e.variable)
	if !found {
		return nil, nil, nil
	}
	return []reflect.Value{reflect.ValueOf(value)}, nil, nil
}

func (e *EnvProvider) Kind() ProviderKind {
	return EnvKind
}

func (e *EnvProvider) String() string {
	return fmt.Sprintf("env(%s)", e.variable)
}
