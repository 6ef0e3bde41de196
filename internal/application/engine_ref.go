package application

import "sync/atomic"

// EngineRef holds the current Engine for readers that outlive a reload.
// Swap publishes a complete new snapshot; readers holding the previous
// engine keep a consistent view until they finish.
type EngineRef struct {
	ptr atomic.Pointer[Engine]
}

// NewEngineRef creates a reference to e.
func NewEngineRef(e *Engine) *EngineRef {
	ref := &EngineRef{}
	ref.ptr.Store(e)
	return ref
}

// Load returns the current engine.
func (r *EngineRef) Load() *Engine { return r.ptr.Load() }

// Swap installs e and returns the engine it replaced.
func (r *EngineRef) Swap(e *Engine) *Engine { return r.ptr.Swap(e) }
