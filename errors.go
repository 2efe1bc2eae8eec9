package treedi

import (
	"fmt"
	"reflect"
	"strings"
)

type (
	// BindingNotFoundError is returned when a mandatory request finds no binding in the searched containers.
	BindingNotFoundError struct {
		Request   DependencyRequest
		Container string
		Reason    string
	}

	// DuplicateBindingError is returned when a key is bound twice and one of the bindings is marked unique.
	DuplicateBindingError struct {
		Key       string
		Container string
		Existing  string
	}

	// CircularDependencyError reports a construction path coming back to one of its own frames.
	// Path starts and ends with the offending frame.
	CircularDependencyError struct {
		Path []string
	}

	// ConstructorInvocationError wraps a failure while resolving the parameters of a constructor, or
	// while calling it. Param is the position of the failing parameter, -1 when the call itself failed.
	ConstructorInvocationError struct {
		Type    reflect.Type
		Param   int
		Request *DependencyRequest
		Cause   error
	}

	// FieldInjectionError wraps a failure while injecting a field of an already built instance.
	FieldInjectionError struct {
		Type    reflect.Type
		Field   string
		Request DependencyRequest
		Cause   error
	}

	// MethodInjectionError wraps a failure of the post construction method, Param is -1 when the call failed.
	MethodInjectionError struct {
		Type   reflect.Type
		Method string
		Param  int
		Cause  error
	}

	// BindingError reports a binding that cannot be turned into a provider.
	BindingError struct {
		Contracts   []reflect.Type
		Description string
		Cause       error
	}
)

func (e *BindingNotFoundError) Error() string {
	var b strings.Builder
	b.WriteString("no binding found for ")
	b.WriteString(e.Request.String())
	if e.Container != "" {
		b.WriteString(fmt.Sprintf(" from container %q", e.Container))
	}
	if e.Reason != "" {
		b.WriteString(": ")
		b.WriteString(e.Reason)
	}
	return b.String()
}

func (e *DuplicateBindingError) Error() string {
	return fmt.Sprintf(
		"duplicate binding for %s in container %q, already bound by %s",
		e.Key, e.Container, e.Existing,
	)
}

func (e *CircularDependencyError) Error() string {
	var b strings.Builder
	b.WriteString("circular dependency detected:\n")
	for i, frame := range e.Path {
		b.WriteString(strings.Repeat("\t", i))
		if i > 0 {
			b.WriteString(" -> ")
		}
		b.WriteString(frame)
		b.WriteString("\n")
	}
	return b.String()
}

func (e *ConstructorInvocationError) Error() string {
	if e.Param < 0 {
		return fmt.Sprintf("failed to construct %s:\n\t%v", typeName(e.Type), e.Cause)
	}
	return fmt.Sprintf(
		"failed to resolve parameter %d (%s) of %s constructor:\n\t%v",
		e.Param, e.Request, typeName(e.Type), e.Cause,
	)
}

func (e *ConstructorInvocationError) Unwrap() error {
	return e.Cause
}

func (e *FieldInjectionError) Error() string {
	return fmt.Sprintf(
		"failed to inject field %s (%s) of %s:\n\t%v",
		e.Field, e.Request, typeName(e.Type), e.Cause,
	)
}

func (e *FieldInjectionError) Unwrap() error {
	return e.Cause
}

func (e *MethodInjectionError) Error() string {
	if e.Param < 0 {
		return fmt.Sprintf("failed to call %s.%s:\n\t%v", typeName(e.Type), e.Method, e.Cause)
	}
	return fmt.Sprintf(
		"failed to resolve parameter %d of %s.%s:\n\t%v",
		e.Param, typeName(e.Type), e.Method, e.Cause,
	)
}

func (e *MethodInjectionError) Unwrap() error {
	return e.Cause
}

func (e *BindingError) Error() string {
	names := make([]string, len(e.Contracts))
	for i, c := range e.Contracts {
		names[i] = typeName(c)
	}
	msg := fmt.Sprintf("invalid binding for [%s]", strings.Join(names, ", "))
	if e.Description != "" {
		msg += fmt.Sprintf(" (%s)", e.Description)
	}
	return fmt.Sprintf("%s:\n\t%v", msg, e.Cause)
}

func (e *BindingError) Unwrap() error {
	return e.Cause
}
