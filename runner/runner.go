// Package runner runs the long-lived components bound in a container.
package runner

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/a-peyrard/treedi"
	"golang.org/x/sync/errgroup"
)

type (
	// Runnable represents a component that can be run with a context.
	Runnable interface {
		Run(ctx context.Context) error
	}

	// RunnableFunc adapts a function to Runnable.
	RunnableFunc func(ctx context.Context) error
)

func (f RunnableFunc) Run(ctx context.Context) error {
	return f(ctx)
}

// RunAll runs all the provided runnables concurrently and waits for all of them to finish.
//
// This method is blocking and will return an error if any of the runnables returns an error.
func RunAll(parentCtx context.Context, runnables ...Runnable) error {
	group, ctx := errgroup.WithContext(parentCtx)

	for _, runnable := range runnables {
		group.Go(func() error {
			return runnable.Run(ctx)
		})
	}

	return group.Wait()
}

// Run resolves every Runnable bound in the resolver, whatever its name, and runs them with RunAll.
// The context is resolved from the container when one is bound, ctx is used otherwise.
func Run(ctx context.Context, r treedi.Resolver) error {
	bound, found, err := treedi.TryResolve[context.Context](r)
	if err != nil {
		return fmt.Errorf("failed to resolve the run context:\n\t%w", err)
	}
	if found {
		ctx = bound
	}

	runnables, err := treedi.ResolveAll[Runnable](r, treedi.AllIDs())
	if err != nil {
		return fmt.Errorf("failed to resolve runnables:\n\t%w", err)
	}
	return RunAll(ctx, runnables...)
}

// WithSyscallKillableContext returns a context canceled on SIGINT or SIGTERM.
func WithSyscallKillableContext(parent context.Context) context.Context {
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-ctx.Done()
		stop()
	}()
	return ctx
}
