// Package structs reads values out of configuration structs by dotted path.
package structs

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/a-peyrard/treedi/reflectutils"
)

// Get retrieves the value for the specified field from the provided struct.
// Supports nested access using dot notation (e.g., "Database.Primary.URL"), through struct fields and string keyed maps.
func Get(origin any, path string) (any, error) {
	if origin == nil {
		return nil, fmt.Errorf("cannot get field %s from nil origin", path)
	}
	if path == "" {
		return nil, fmt.Errorf("field path cannot be empty")
	}

	current := origin
	for i, token := range strings.Split(path, ".") {
		if token == "" {
			return nil, fmt.Errorf("empty token at position %d in field path %s", i, path)
		}

		valueOf := reflectutils.Deref(reflect.ValueOf(current))
		if !valueOf.IsValid() {
			return nil, fmt.Errorf("encountered nil value at token %s (position %d) in field path %s", token, i, path)
		}

		next, err := step(valueOf, token)
		if err != nil {
			return nil, fmt.Errorf("cannot resolve %s at position %d in field path %s: %w", token, i, path, err)
		}
		current = next
	}

	return current, nil
}

// GetAs is Get followed by a type assertion to T.
func GetAs[T any](origin any, path string) (T, error) {
	var zero T
	raw, err := Get(origin, path)
	if err != nil {
		return zero, err
	}
	value, ok := raw.(T)
	if !ok {
		return zero, fmt.Errorf("value at %s is a %T, not a %T", path, raw, zero)
	}
	return value, nil
}

func step(valueOf reflect.Value, token string) (any, error) {
	switch valueOf.Kind() {
	case reflect.Map:
		if valueOf.Type().Key().Kind() != reflect.String {
			return nil, fmt.Errorf("map keys are %s, expected strings", valueOf.Type().Key())
		}
		mapValue := valueOf.MapIndex(reflect.ValueOf(token).Convert(valueOf.Type().Key()))
		if !mapValue.IsValid() {
			return nil, fmt.Errorf("key not found in map")
		}
		return mapValue.Interface(), nil

	case reflect.Struct:
		fieldValue := valueOf.FieldByName(token)
		if !fieldValue.IsValid() {
			return nil, fmt.Errorf("field not found in struct %s", valueOf.Type().Name())
		}
		if !fieldValue.CanInterface() {
			return nil, fmt.Errorf("field is not exported in struct %s", valueOf.Type().Name())
		}
		return fieldValue.Interface(), nil

	default:
		return nil, fmt.Errorf("expected struct or map but got %s", valueOf.Kind())
	}
}
