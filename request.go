package treedi

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/a-peyrard/treedi/option"
)

// Source restricts the containers a request may be satisfied from.
type Source int

const (
	// Any searches the container, then its ancestors.
	Any Source = iota
	// Local searches only the container.
	Local
	// Parent skips the container and searches its ancestors.
	Parent
)

type (
	// DependencyRequest is what a constructor parameter, a field or a resolution call asks for.
	DependencyRequest struct {
		Type     reflect.Type
		ID       Identifier
		Name     string
		Optional bool
		Source   Source
		// AllIDs makes a collection request aggregate the bindings of every identifier.
		AllIDs bool
	}

	RequestOption = option.Option[DependencyRequest]
)

func (s Source) String() string {
	switch s {
	case Any:
		return "any"
	case Local:
		return "local"
	case Parent:
		return "parent"
	default:
		return fmt.Sprintf("source(%d)", int(s))
	}
}

// ParseSource reads the source names used in inject tags.
func ParseSource(name string) (Source, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "any":
		return Any, nil
	case "local":
		return Local, nil
	case "parent":
		return Parent, nil
	default:
		return Any, fmt.Errorf("unknown source %q, expected any, local or parent", name)
	}
}

func Named(name string) RequestOption {
	return func(req *DependencyRequest) {
		req.ID = ID(name)
		req.Name = name
	}
}

func WithID(id Identifier) RequestOption {
	return func(req *DependencyRequest) {
		req.ID = id
		req.Name = ""
	}
}

func From(source Source) RequestOption {
	return func(req *DependencyRequest) {
		req.Source = source
	}
}

func Optional() RequestOption {
	return func(req *DependencyRequest) {
		req.Optional = true
	}
}

// AllIDs makes a collection request ignore identifiers.
func AllIDs() RequestOption {
	return func(req *DependencyRequest) {
		req.AllIDs = true
	}
}

func newRequest(typ reflect.Type, opts ...RequestOption) DependencyRequest {
	return *option.Build(&DependencyRequest{Type: typ}, opts...)
}

func (r DependencyRequest) Key() BindingKey {
	return BindingKey{Type: r.Type, ID: r.ID}
}

func (r DependencyRequest) isCollection() bool {
	return r.Type.Kind() == reflect.Slice
}

func (r DependencyRequest) element() DependencyRequest {
	elem := r
	elem.Type = r.Type.Elem()
	return elem
}

func (r DependencyRequest) String() string {
	return r.format(nil)
}

func (r DependencyRequest) format(names *nameTable) string {
	var b strings.Builder
	b.WriteString(typeName(r.Type))
	switch {
	case r.Name != "":
		b.WriteString(":")
		b.WriteString(r.Name)
	case r.ID != NoID:
		b.WriteString(":")
		b.WriteString(names.lookup(r.ID))
	}

	var flags []string
	if r.Optional {
		flags = append(flags, "optional")
	}
	if r.Source != Any {
		flags = append(flags, "source="+r.Source.String())
	}
	if r.AllIDs {
		flags = append(flags, "all ids")
	}
	if len(flags) > 0 {
		b.WriteString(" (")
		b.WriteString(strings.Join(flags, ", "))
		b.WriteString(")")
	}
	return b.String()
}
