package treedi

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/a-peyrard/treedi/logging"
	"github.com/a-peyrard/treedi/option"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type (
	// Container owns a registry of bindings and resolves requests against it, then against its ancestors.
	// Bindings are buffered until the next flush, which every resolution entry point performs.
	Container struct {
		id       uuid.UUID
		name     string
		parent   *Container
		chain    []*Container
		tree     *tree
		registry *Registry
		logger   zerolog.Logger
		trace    bool

		flushMu  sync.Mutex
		mu       sync.Mutex
		dirty    atomic.Bool
		pending  []*Binder
		nonLazy  []int
		children atomic.Int32
	}

	// tree is the state shared by a root container and all its descendants.
	tree struct {
		settings    Settings
		descriptors *DescriptorTable
		names       *nameTable
	}

	Options struct {
		name        string
		logger      *zerolog.Logger
		settings    *Settings
		descriptors *DescriptorTable
	}
)

// Name sets the container name used in logs and errors.
func Name(name string) option.Option[Options] {
	return func(opts *Options) {
		opts.name = name
	}
}

func WithLogger(logger zerolog.Logger) option.Option[Options] {
	return func(opts *Options) {
		opts.logger = &logger
	}
}

// WithSettings configures the tree, it is ignored by child containers which share their root settings.
func WithSettings(settings Settings) option.Option[Options] {
	return func(opts *Options) {
		opts.settings = &settings
	}
}

// WithDescriptorTable shares a descriptor table, typically filled by generated registrations.
// It is ignored by child containers.
func WithDescriptorTable(table *DescriptorTable) option.Option[Options] {
	return func(opts *Options) {
		opts.descriptors = table
	}
}

// New creates a root container.
func New(opts ...option.Option[Options]) *Container {
	options := option.Build(&Options{name: "root"}, opts...)

	settings := Settings{}
	if options.settings != nil {
		settings = *options.settings
	}
	settings.ApplyDefault()

	t := &tree{
		settings:    settings,
		descriptors: options.descriptors,
	}
	if t.descriptors == nil {
		t.descriptors = NewDescriptorTable()
	}
	if settings.Debug {
		t.names = newNameTable()
	}

	logger := zerolog.Nop()
	if options.logger != nil {
		logger = *options.logger
	} else if fromSettings, err := settings.Logger(); err != nil {
		logger, _ = logging.New()
		logger.Warn().Err(err).Msg("invalid container log settings, logging with defaults")
	} else if fromSettings != nil {
		logger = *fromSettings
	}

	return newContainer(nil, t, options.name, logger)
}

// NewChild creates a container resolving from this one when its own bindings are not enough.
func (c *Container) NewChild(opts ...option.Option[Options]) *Container {
	n := c.children.Add(1)
	options := option.Build(&Options{name: fmt.Sprintf("%s/%d", c.name, n)}, opts...)

	logger := c.logger
	if options.logger != nil {
		logger = *options.logger
	}
	return newContainer(c, c.tree, options.name, logger)
}

func newContainer(parent *Container, t *tree, name string, logger zerolog.Logger) *Container {
	c := &Container{
		id:     uuid.New(),
		name:   name,
		parent: parent,
		tree:   t,
	}
	c.logger = logger.With().Str("container", name).Logger()
	c.trace = c.logger.GetLevel() <= zerolog.TraceLevel && zerolog.GlobalLevel() <= zerolog.TraceLevel

	c.chain = []*Container{c}
	if parent != nil {
		c.chain = append(c.chain, parent.chain...)
	}
	c.registry = newRegistry(c, c.logger, t.settings.Debug)

	// containers resolve themselves, factories can ask for the container they are built from
	_, _ = c.registry.Register(
		[]reflect.Type{ContainerType},
		NoID,
		&instanceProvider{value: reflect.ValueOf(c)},
		Describing("the container itself"),
	)
	return c
}

func (c *Container) ID() uuid.UUID {
	return c.id
}

func (c *Container) Name() string {
	return c.name
}

func (c *Container) Parent() *Container {
	return c.parent
}

func (c *Container) Settings() Settings {
	return c.tree.settings
}

func (c *Container) Descriptors() *DescriptorTable {
	return c.tree.descriptors
}

func (c *Container) Logger() zerolog.Logger {
	return c.logger
}

// Flush turns the pending bindings into registry entries, then resolves the non-lazy ones once. The
// container stays dirty until the non-lazy pass is over, resolutions flushing it meanwhile wait for the
// pass to end. Non-lazy factories must therefore resolve through their InjectContext.
func (c *Container) Flush() error {
	c.flushMu.Lock()
	defer c.flushMu.Unlock()

	c.mu.Lock()
	specs := c.pending
	c.pending = nil

	var (
		errs     []error
		deferred []*Binder
	)
	register := func(binder *Binder, final bool) {
		idx, registered, err := binder.register(final)
		switch {
		case errors.Is(err, errConditionUndecided):
			deferred = append(deferred, binder)
		case err != nil:
			errs = append(errs, err)
		case registered && binder.nonLazy:
			c.nonLazy = append(c.nonLazy, idx)
		}
	}
	for _, binder := range specs {
		register(binder, false)
	}
	// conditions on strings bound later in the batch
	for _, binder := range deferred {
		register(binder, true)
	}
	nonLazy := c.nonLazy
	c.mu.Unlock()

	if len(specs) > 0 {
		c.logger.Debug().
			Int("bindings", len(specs)).
			Int("deferred", len(deferred)).
			Int("non_lazy", len(nonLazy)).
			Int("errors", len(errs)).
			Msg("flushed bindings")
	}

	for _, idx := range nonLazy {
		start := time.Now()
		if _, err := c.registry.Resolve(c.newContext(), idx); err != nil {
			errs = append(errs, fmt.Errorf("failed to resolve non-lazy binding:\n\t%w", err))
			continue
		}
		c.logger.Debug().Int("index", idx).Dur("took", time.Since(start)).Msg("resolved non-lazy binding")
	}

	c.mu.Lock()
	c.nonLazy = nil
	if len(c.pending) == 0 {
		c.dirty.Store(false)
	}
	c.mu.Unlock()

	return errors.Join(errs...)
}

// Ready reports whether every binding has been flushed and every non-lazy binding resolved.
func (c *Container) Ready() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return !c.dirty.Load() && len(c.pending) == 0 && len(c.nonLazy) == 0
}

// flushChain flushes the ancestors first, their non-lazy bindings may be needed by the descendants.
func (c *Container) flushChain() error {
	var errs []error
	for i := len(c.chain) - 1; i >= 0; i-- {
		if cont := c.chain[i]; cont.dirty.Load() {
			if err := cont.Flush(); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

func (c *Container) enqueue(b *Binder) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pending = append(c.pending, b)
	c.dirty.Store(true)
}

// scope lists the containers a source allows, nearest first.
func (c *Container) scope(source Source) []*Container {
	switch source {
	case Local:
		return c.chain[:1]
	case Parent:
		return c.chain[1:]
	default:
		return c.chain
	}
}

// resolve is the single entry of every request: types get the primary binding of the nearest container
// having one, slices without such a binding aggregate the bindings of their element type.
func (c *Container) resolve(ctx *InjectContext, req DependencyRequest) (val reflect.Value, found bool, err error) {
	if c.trace {
		start := time.Now()
		defer func() {
			c.logger.Trace().
				Str("request", req.format(c.tree.names)).
				Bool("found", found).
				Dur("took", time.Since(start)).
				Msg("resolved")
		}()
	}

	if req.isCollection() && (req.AllIDs || !c.hasPrimary(req)) {
		values, _, err := (&collectionProvider{request: req}).GetInstances(ctx, nil)
		if err != nil {
			return reflect.Value{}, false, err
		}
		if len(values) == 0 {
			return reflect.Value{}, false, nil
		}
		return values[0], true, nil
	}

	key := req.Key()
	for _, cont := range c.scope(req.Source) {
		idx, found := cont.registry.Primary(key)
		if !found {
			continue
		}
		values, err := cont.registry.Resolve(ctx, idx)
		if err != nil {
			return reflect.Value{}, false, err
		}
		switch len(values) {
		case 0:
			return c.notFound(req, fmt.Sprintf("binding of container %q produced no instance", cont.name))
		case 1:
			if !satisfies(values[0].Type(), req.Type) {
				return reflect.Value{}, false, fmt.Errorf(
					"binding of container %q produced a %s, which cannot be used as %s",
					cont.name, values[0].Type(), typeName(req.Type),
				)
			}
			return values[0], true, nil
		default:
			return reflect.Value{}, false, fmt.Errorf(
				"binding of container %q produced %d instances of %s, expected one",
				cont.name, len(values), typeName(req.Type),
			)
		}
	}
	return c.notFound(req, "")
}

func (c *Container) notFound(req DependencyRequest, reason string) (reflect.Value, bool, error) {
	if req.Optional {
		return reflect.Value{}, false, nil
	}
	if req.Name == "" && req.ID != NoID {
		req.Name = c.tree.names.lookup(req.ID)
	}
	return reflect.Value{}, false, &BindingNotFoundError{Request: req, Container: c.name, Reason: reason}
}

// aggregate appends the instances of every binding of the request in its scope, nearest container first.
func (c *Container) aggregate(ctx *InjectContext, req DependencyRequest, out *[]reflect.Value) error {
	for _, cont := range c.scope(req.Source) {
		if err := cont.registry.ResolveAll(ctx, req, out); err != nil {
			return fmt.Errorf("failed to resolve all %s from container %q:\n\t%w", req, cont.name, err)
		}
	}
	return nil
}

func (c *Container) hasBinding(req DependencyRequest) bool {
	if req.isCollection() && (req.AllIDs || !c.hasPrimary(req)) {
		req = req.element()
	}
	return c.hasPrimary(req)
}

// hasPrimary reports whether a container of the request scope has a primary binding for its key.
func (c *Container) hasPrimary(req DependencyRequest) bool {
	key := req.Key()
	for _, cont := range c.scope(req.Source) {
		if cont.registry.HasBinding(key) {
			return true
		}
	}
	return false
}

// Close closes the singletons of this container, children are closed by their owners.
func (c *Container) Close() error {
	if err := c.registry.Close(); err != nil {
		return fmt.Errorf("failed to close container %q:\n\t%w", c.name, err)
	}
	return nil
}

// Describe lists the bindings of the container and its ancestors.
func (c *Container) Describe() string {
	var b strings.Builder
	for _, cont := range c.chain {
		b.WriteString(fmt.Sprintf("* Container %q (%s):\n", cont.name, cont.id))
		cont.registry.describe(&b)
		cont.mu.Lock()
		if pending := len(cont.pending); pending > 0 {
			b.WriteString(fmt.Sprintf("\t%d binding(s) pending flush\n", pending))
		}
		cont.mu.Unlock()
	}
	return b.String()
}
