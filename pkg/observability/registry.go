package observability

import "sync/atomic"

// slot holds the installed implementation of one hook interface.
type slot[T any] struct {
	v    atomic.Value // holds box[T]
	noop T
}

// box keeps atomic.Value's stored type constant across implementations.
type box[T any] struct{ h T }

func newSlot[T any](noop T) *slot[T] {
	s := &slot[T]{noop: noop}
	s.reset()
	return s
}

func (s *slot[T]) get() T { return s.v.Load().(box[T]).h }

// set installs h; a nil h leaves the current hooks in place.
func (s *slot[T]) set(h T) {
	if any(h) == nil {
		return
	}
	s.v.Store(box[T]{h})
}

func (s *slot[T]) reset() { s.v.Store(box[T]{s.noop}) }

var (
	resolverSlot = newSlot[ResolverHooks](NoopResolverHooks{})
	treeSlot     = newSlot[TreeHooks](NoopTreeHooks{})
	cacheSlot    = newSlot[CacheHooks](NoopCacheHooks{})
	httpSlot     = newSlot[HTTPHooks](NoopHTTPHooks{})
)

func SetResolverHooks(h ResolverHooks) { resolverSlot.set(h) }
func SetTreeHooks(h TreeHooks)         { treeSlot.set(h) }
func SetCacheHooks(h CacheHooks)       { cacheSlot.set(h) }
func SetHTTPHooks(h HTTPHooks)         { httpSlot.set(h) }

func Resolver() ResolverHooks { return resolverSlot.get() }
func Tree() TreeHooks         { return treeSlot.get() }
func Cache() CacheHooks       { return cacheSlot.get() }
func HTTP() HTTPHooks         { return httpSlot.get() }

// Reset reinstalls the no-op hooks everywhere.
func Reset() {
	resolverSlot.reset()
	treeSlot.reset()
	cacheSlot.reset()
	httpSlot.reset()
}
