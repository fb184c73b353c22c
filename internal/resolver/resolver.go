package resolver

import (
	"context"
	"errors"

	"github.com/vk/wodc/internal/ast"
	"github.com/vk/wodc/internal/ctxlog"
)

// Strategy locates the parsed module for one reference. Implementations must
// return *ResolutionError for lookup failures so callers can classify them.
type Strategy interface {
	Load(ctx context.Context, ref Ref) (*ast.Module, error)
}

// Chain tries strategies in order, falling through on NotFound. Any other
// failure stops the chain.
func Chain(strategies ...Strategy) Strategy {
	return chain(strategies)
}

type chain []Strategy

func (c chain) Load(ctx context.Context, ref Ref) (*ast.Module, error) {
	for _, s := range c {
		m, err := s.Load(ctx, ref)
		var resErr *ResolutionError
		if errors.As(err, &resErr) && resErr.Kind == NotFound {
			continue
		}
		return m, err
	}
	return nil, &ResolutionError{Kind: NotFound, Ref: ref.String()}
}

// Resolver caches strategy lookups for the duration of one compilation run
// and tracks the in-flight reference stack for cycle detection.
//
// A Resolver is not safe for concurrent use; each compilation run owns its
// own instance.
type Resolver struct {
	strategy Strategy
	cache    map[string]*ast.Module
	inflight []string
}

// New builds a resolver over the given strategy with an empty cache.
func New(strategy Strategy) *Resolver {
	return &Resolver{
		strategy: strategy,
		cache:    map[string]*ast.Module{},
	}
}

// Resolve returns the module for a reference string, consulting the cache
// first. Within one run, every resolution of the same normalized reference
// yields the identical parsed value.
func (r *Resolver) Resolve(ctx context.Context, raw string) (*ast.Module, error) {
	ref, err := ParseRef(raw)
	if err != nil {
		return nil, &ResolutionError{Kind: ParseFailed, Ref: raw, Err: err}
	}
	key := ref.String()
	if m, ok := r.cache[key]; ok {
		ctxlog.FromContext(ctx).Debug("module cache hit", "ref", key)
		return m, nil
	}

	m, err := r.strategy.Load(ctx, ref)
	if err != nil {
		if _, ok := err.(*ResolutionError); ok {
			return nil, err
		}
		return nil, &ResolutionError{Kind: NotFound, Ref: key, Err: err}
	}
	r.cache[key] = m
	ctxlog.FromContext(ctx).Debug("module resolved", "ref", key)
	return m, nil
}

// Enter pushes a reference onto the in-flight stack. If the reference is
// already in flight the push is rejected with a CycleError whose stack shows
// the full chain back to the repeat.
func (r *Resolver) Enter(raw string) error {
	key := raw
	if ref, err := ParseRef(raw); err == nil {
		key = ref.String()
	}
	for _, active := range r.inflight {
		if active == key {
			stack := make([]string, len(r.inflight), len(r.inflight)+1)
			copy(stack, r.inflight)
			return &CycleError{Stack: append(stack, key)}
		}
	}
	r.inflight = append(r.inflight, key)
	return nil
}

// Exit pops the most recent in-flight reference.
func (r *Resolver) Exit() {
	if len(r.inflight) > 0 {
		r.inflight = r.inflight[:len(r.inflight)-1]
	}
}

// Active returns the current in-flight stack, outermost first.
func (r *Resolver) Active() []string {
	out := make([]string, len(r.inflight))
	copy(out, r.inflight)
	return out
}
