package agents

import (
	"github.com/amd/gaia/mcpservers"
	"github.com/amd/gaia/store"
)

const (
	// DefaultMaxSteps is the per-request step budget.
	DefaultMaxSteps = 25
	// DefaultMaxPlanRejections bounds how many times the engine re-asks
	// the backend after a needs_plan rejection before failing the request.
	DefaultMaxPlanRejections = 3
)

// Option configures an Engine.
type Option func(*Engine)

// WithName sets the agent name used in logs and metric tags.
func WithName(name string) Option {
	return func(e *Engine) {
		e.name = name
	}
}

// WithSimpleTools marks tools that may run directly, without an explicit
// plan. The list is per-agent policy; the engine ships none by default.
func WithSimpleTools(names ...string) Option {
	return func(e *Engine) {
		for _, name := range names {
			e.simpleTools[name] = true
		}
	}
}

// WithMaxSteps sets the per-request step budget.
func WithMaxSteps(n int) Option {
	return func(e *Engine) {
		e.maxSteps = n
	}
}

// WithMaxPlanRejections sets the needs_plan retry bound.
func WithMaxPlanRejections(n int) Option {
	return func(e *Engine) {
		e.maxPlanRejections = n
	}
}

// WithManager attaches the tool-server manager so the engine can shut the
// servers down with Close.
func WithManager(mgr *mcpservers.Manager) Option {
	return func(e *Engine) {
		e.manager = mgr
	}
}

// WithStore attaches a conversation history store.
func WithStore(s store.MessageStore) Option {
	return func(e *Engine) {
		e.store = s
	}
}

// WithCallback attaches a lifecycle callback.
func WithCallback(cb Callback) Option {
	return func(e *Engine) {
		e.callback = cb
	}
}
