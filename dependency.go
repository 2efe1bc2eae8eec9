package treedi

import (
	"fmt"
	"reflect"

	"github.com/a-peyrard/treedi/str"
)

// Inject is used as a namespace for dependency builders.
//
//	table.Constructor(NewService, Inject.Auto(), Inject.Named("replica").Parent())
var Inject = injectBuilder{}

type (
	// Dependency describes how a parameter or a field is requested, its type comes from the signature.
	Dependency interface {
		build(targetTyp reflect.Type) DependencyRequest
	}

	// DependencySpec is a chainable Dependency.
	DependencySpec struct {
		name     string
		id       Identifier
		optional bool
		source   Source
		allIDs   bool
	}

	// entry points for builders
	injectBuilder struct{}
)

func (injectBuilder) Auto() DependencySpec {
	return DependencySpec{}
}

func (injectBuilder) Named(name string) DependencySpec {
	return DependencySpec{}.Named(name)
}

func (injectBuilder) WithID(id Identifier) DependencySpec {
	return DependencySpec{}.WithID(id)
}

func (injectBuilder) Optional() DependencySpec {
	return DependencySpec{}.Optional()
}

func (injectBuilder) Local() DependencySpec {
	return DependencySpec{}.Local()
}

func (injectBuilder) Parent() DependencySpec {
	return DependencySpec{}.Parent()
}

func (injectBuilder) All() DependencySpec {
	return DependencySpec{}.All()
}

func (d DependencySpec) Named(name string) DependencySpec {
	d.name = name
	d.id = ID(name)
	return d
}

func (d DependencySpec) WithID(id Identifier) DependencySpec {
	d.name = ""
	d.id = id
	return d
}

func (d DependencySpec) Optional() DependencySpec {
	d.optional = true
	return d
}

func (d DependencySpec) Local() DependencySpec {
	d.source = Local
	return d
}

func (d DependencySpec) Parent() DependencySpec {
	d.source = Parent
	return d
}

// All makes a slice dependency aggregate the bindings of every identifier.
func (d DependencySpec) All() DependencySpec {
	d.allIDs = true
	return d
}

func (d DependencySpec) build(targetTyp reflect.Type) DependencyRequest {
	return DependencyRequest{
		Type:     targetTyp,
		ID:       d.id,
		Name:     d.name,
		Optional: d.optional,
		Source:   d.source,
		AllIDs:   d.allIDs,
	}
}

// ParseDependency reads the inject tag syntax: `name=x,optional,source=local|parent,all`.
// The bare flags local and parent are accepted as shortcuts.
func ParseDependency(tag string) (DependencySpec, error) {
	var (
		spec DependencySpec
		opts = str.ParseOptions(tag)
	)
	for _, flag := range opts.Flags {
		switch flag {
		case "optional":
			spec = spec.Optional()
		case "local":
			spec = spec.Local()
		case "parent":
			spec = spec.Parent()
		case "all":
			spec = spec.All()
		default:
			return spec, fmt.Errorf("unknown inject flag %q", flag)
		}
	}
	for key, value := range opts.Values {
		switch key {
		case "name":
			spec = spec.Named(value)
		case "source":
			source, err := ParseSource(value)
			if err != nil {
				return spec, err
			}
			spec.source = source
		case "optional":
			if value == "true" {
				spec = spec.Optional()
			}
		default:
			return spec, fmt.Errorf("unknown inject option %q", key)
		}
	}
	return spec, nil
}

func dependencyAt(deps []Dependency, i int) Dependency {
	if i < len(deps) && deps[i] != nil {
		return deps[i]
	}
	return Inject.Auto()
}

func buildRequests(fnTyp reflect.Type, from int, deps []Dependency) []DependencyRequest {
	requests := make([]DependencyRequest, 0, fnTyp.NumIn()-from)
	for i := from; i < fnTyp.NumIn(); i++ {
		requests = append(requests, dependencyAt(deps, i-from).build(fnTyp.In(i)))
	}
	return requests
}
