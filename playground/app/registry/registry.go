// Package registry binds the playground components, see registry_gen.go.
package registry

//go:generate go run github.com/a-peyrard/treedi/cmd/generator
