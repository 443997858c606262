package parallel

import "context"

type unitKey struct{}

type runtimeKey struct{}

// unitScope is the identity bound to a unit of work.
type unitScope struct {
	thread   int
	inRegion bool
}

func scopeFrom(ctx context.Context) unitScope {
	if s, ok := ctx.Value(unitKey{}).(unitScope); ok {
		return s
	}
	return unitScope{}
}

// ThreadNum returns the logical thread id bound to ctx, or 0 when ctx does
// not belong to a unit of work.
func ThreadNum(ctx context.Context) int {
	return scopeFrom(ctx).thread
}

// InParallelRegion reports whether ctx descends from a unit dispatched by an
// enclosing parallel For or Reduce call.
func InParallelRegion(ctx context.Context) bool {
	return scopeFrom(ctx).inRegion
}

// WithThreadNum returns a child of ctx whose ThreadNum is id. The parallel
// region flag of ctx is kept. ctx itself is unchanged, so the previous id is
// back in effect as soon as the caller stops using the child.
func WithThreadNum(ctx context.Context, id int) context.Context {
	s := scopeFrom(ctx)
	s.thread = id
	return context.WithValue(ctx, unitKey{}, s)
}

// enterRegion binds a dispatched unit's identity.
func enterRegion(ctx context.Context, id int) context.Context {
	return context.WithValue(ctx, unitKey{}, unitScope{thread: id, inRegion: true})
}

// WithRuntime attaches rt to ctx. Package-level For and Reduce calls made
// with the returned context, or any context derived from it, run on rt.
func WithRuntime(ctx context.Context, rt *Runtime) context.Context {
	return context.WithValue(ctx, runtimeKey{}, rt)
}

// RuntimeFrom returns the Runtime attached to ctx, or Default.
func RuntimeFrom(ctx context.Context) *Runtime {
	if rt, ok := ctx.Value(runtimeKey{}).(*Runtime); ok && rt != nil {
		return rt
	}
	return Default()
}
