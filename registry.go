package treedi

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/a-peyrard/treedi/concurrent"
	"github.com/a-peyrard/treedi/option"
	"github.com/a-peyrard/treedi/reflectutils"
	"github.com/a-peyrard/treedi/slices"
	"github.com/puzpuzpuz/xsync/v3"
	"github.com/rs/zerolog"
)

type (
	// Registry holds the bindings of one container: an append-only list of entries and an index of the
	// primary entry per key, the first one registered.
	Registry struct {
		owner        *Container
		entries      *COWSlice[*registryEntry]
		primary      *xsync.MapOf[BindingKey, int]
		materialized *concurrent.Slice[reflect.Value]
		mu           sync.Mutex
		logger       zerolog.Logger
		debug        bool
	}

	RegisterOptions struct {
		nonLazy     bool
		unique      bool
		description string
		name        string
	}

	registryEntry struct {
		contracts   []reflect.Type
		id          Identifier
		name        string
		provider    Provider
		nonLazy     bool
		unique      bool
		description string
	}

	// registryFrame marks an entry under construction.
	registryFrame struct {
		registry *Registry
		idx      int
	}
)

func AsNonLazy() option.Option[RegisterOptions] {
	return func(opts *RegisterOptions) {
		opts.nonLazy = true
	}
}

func AsUnique() option.Option[RegisterOptions] {
	return func(opts *RegisterOptions) {
		opts.unique = true
	}
}

func Describing(description string) option.Option[RegisterOptions] {
	return func(opts *RegisterOptions) {
		opts.description = description
	}
}

// WithName keeps the name the identifier was derived from, for diagnostics.
func WithName(name string) option.Option[RegisterOptions] {
	return func(opts *RegisterOptions) {
		opts.name = name
	}
}

func newRegistry(owner *Container, logger zerolog.Logger, debug bool) *Registry {
	return &Registry{
		owner:        owner,
		entries:      NewCOWSlice[*registryEntry](),
		primary:      xsync.NewMapOf[BindingKey, int](),
		materialized: concurrent.NewSlice[reflect.Value](),
		logger:       logger,
		debug:        debug,
	}
}

// Register appends an entry for the contracts and makes it the primary entry of every key that has none.
// Binding a key twice is accepted unless one of the two bindings is unique.
func (r *Registry) Register(
	contracts []reflect.Type,
	id Identifier,
	provider Provider,
	opts ...option.Option[RegisterOptions],
) (int, error) {
	if len(contracts) == 0 {
		return -1, errors.New("a binding needs at least one contract")
	}
	if provider == nil {
		return -1, errors.New("a binding needs a provider")
	}
	options := option.Build(&RegisterOptions{}, opts...)

	entry := &registryEntry{
		contracts:   dedupTypes(contracts),
		id:          id,
		name:        options.name,
		provider:    provider,
		nonLazy:     options.nonLazy,
		unique:      options.unique,
		description: options.description,
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, contract := range entry.contracts {
		existingIdx, found := r.primary.Load(Key(contract, id))
		if !found {
			continue
		}
		existing, _ := r.entries.Get(existingIdx)
		if existing.unique || entry.unique {
			return -1, &DuplicateBindingError{
				Key:       r.format(Key(contract, id), entry.name),
				Container: r.owner.Name(),
				Existing:  existing.String(),
			}
		}
		if r.debug {
			r.logger.Warn().
				Str("key", r.format(Key(contract, id), entry.name)).
				Str("primary", existing.String()).
				Msg("duplicate binding, the first one stays primary")
		}
	}

	if cached, ok := provider.(*cachedProvider); ok {
		cached.onMaterialize = func(values []reflect.Value) {
			for _, v := range values {
				r.materialized.Append(v)
			}
		}
	}

	idx := r.entries.Append(entry)
	for _, contract := range entry.contracts {
		r.primary.LoadOrStore(Key(contract, id), idx)
	}
	return idx, nil
}

func (r *Registry) HasBinding(key BindingKey) bool {
	_, found := r.primary.Load(key)
	return found
}

func (r *Registry) Primary(key BindingKey) (int, bool) {
	return r.primary.Load(key)
}

func (r *Registry) Len() int {
	return r.entries.Len()
}

// Resolve produces the instances of an entry. The entry is tracked as under construction while its
// provider runs, the deferred injection happens once it is not anymore.
func (r *Registry) Resolve(ctx *InjectContext, idx int) ([]reflect.Value, error) {
	entry, found := r.entries.Get(idx)
	if !found {
		return nil, fmt.Errorf("no binding at index %d in container %q", idx, r.owner.Name())
	}

	frame := registryFrame{registry: r, idx: idx}
	if err := ctx.tracker.Enter(frame); err != nil {
		return nil, err
	}
	defer ctx.tracker.Leave()

	if err := ctx.tracker.Push(frame); err != nil {
		return nil, err
	}
	values, inject, err := entry.provider.GetInstances(ctx.in(r.owner), nil)
	ctx.tracker.Pop()
	if err != nil {
		return nil, fmt.Errorf("failed to provide %s using %s:\n\t%w", entry, entry.provider, err)
	}

	if inject != nil {
		if err := inject(); err != nil {
			return nil, fmt.Errorf("failed to inject %s:\n\t%w", entry, err)
		}
	}
	return values, nil
}

// ResolveAll appends to out the instances of every entry bound to the request type with the request
// identifier, or with any identifier for AllIDs requests, in registration order.
func (r *Registry) ResolveAll(ctx *InjectContext, req DependencyRequest, out *[]reflect.Value) error {
	for idx, entry := range r.entries.All() {
		if !req.AllIDs && entry.id != req.ID {
			continue
		}
		if !containsType(entry.contracts, req.Type) {
			continue
		}
		values, err := r.Resolve(ctx, idx)
		if err != nil {
			return err
		}
		*out = append(*out, values...)
	}
	return nil
}

// Close closes the materialized singletons implementing Closeable, the last materialized first.
func (r *Registry) Close() error {
	materialized := r.materialized.Snapshot()
	closeErrors := make([]error, 0)
	for i := len(materialized) - 1; i >= 0; i-- {
		comp := materialized[i]
		if !comp.IsValid() || !comp.Type().Implements(CloseableType) {
			continue
		}
		if reflectutils.IsNilable(comp.Kind()) && comp.IsNil() {
			continue
		}
		if err := comp.Interface().(Closeable).Close(); err != nil {
			closeErrors = append(
				closeErrors,
				fmt.Errorf("failed to close component %s:\n\t%w", comp.Type(), err),
			)
		}
	}

	return errors.Join(closeErrors...)
}

func (r *Registry) describe(b *strings.Builder) {
	for idx, entry := range r.entries.All() {
		b.WriteString(fmt.Sprintf("\t- #%d %s -> %s", idx, entry, entry.provider))
		var flags []string
		if entry.nonLazy {
			flags = append(flags, "non-lazy")
		}
		if entry.unique {
			flags = append(flags, "unique")
		}
		if len(flags) > 0 {
			b.WriteString(" (" + strings.Join(flags, ", ") + ")")
		}
		b.WriteString("\n")
		if entry.description != "" {
			b.WriteString(fmt.Sprintf("\t\tdescription: %s\n", entry.description))
		}
	}
}

func (r *Registry) format(key BindingKey, name string) string {
	if name != "" {
		return typeName(key.Type) + ":" + name
	}
	return key.format(r.owner.tree.names)
}

func (e *registryEntry) String() string {
	names := slices.Map(e.contracts, typeName)
	contracts := strings.Join(names, ", ")
	if len(names) > 1 {
		contracts = "[" + contracts + "]"
	}
	switch {
	case e.name != "":
		return contracts + ":" + e.name
	case e.id != NoID:
		return contracts + ":" + e.id.String()
	default:
		return contracts
	}
}

func (f registryFrame) String() string {
	entry, _ := f.registry.entries.Get(f.idx)
	return fmt.Sprintf("%s in %q", entry, f.registry.owner.Name())
}

func dedupTypes(types []reflect.Type) []reflect.Type {
	out := make([]reflect.Type, 0, len(types))
	for _, t := range types {
		if !containsType(out, t) {
			out = append(out, t)
		}
	}
	return out
}

func containsType(types []reflect.Type, t reflect.Type) bool {
	for _, candidate := range types {
		if candidate == t {
			return true
		}
	}
	return false
}
