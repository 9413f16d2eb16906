package agents

import (
	"context"
	"encoding/json"

	"github.com/tmc/langchaingo/llms"

	"github.com/amd/gaia/tools"
)

// Action is the completion backend's proposed next move: either a direct
// tool invocation (Tool + Args) or a full plan.
type Action struct {
	Tool string          `json:"tool,omitempty"`
	Args json.RawMessage `json:"args,omitempty"`
	Plan []PlanStep      `json:"plan,omitempty"`
}

// IsPlan reports whether the action carries a committed plan.
func (a *Action) IsPlan() bool {
	return len(a.Plan) > 0
}

// Completer is the external completion backend. Propose returns the next
// action for the conversation so far; Finalize produces the natural-language
// answer from the accumulated step results.
type Completer interface {
	Propose(ctx context.Context, messages []llms.MessageContent) (*Action, error)
	Finalize(ctx context.Context, messages []llms.MessageContent) (string, error)
}

// Callback receives engine lifecycle events. All methods may be called
// concurrently with respect to other engines, never within one.
type Callback interface {
	tools.Callback

	OnPlanCommitted(ctx context.Context, plan *Plan)
	OnPlanRequired(ctx context.Context, tool string)
	OnToolNotFound(ctx context.Context, tool string)
	OnRequestEnd(ctx context.Context, input string, result *Result)
}

// Result is the outcome of one request. State is StateDone or StateFailed;
// Steps carries every executed step with its raw result.
type Result struct {
	State   ExecutionState `json:"state"`
	Answer  string         `json:"answer,omitempty"`
	Steps   []PlanStep     `json:"steps,omitempty"`
	Failure *Failure       `json:"failure,omitempty"`
}

// Failure is the structured payload for a failed request. Steps holds the
// results of the steps that completed before the failure, for diagnostics.
type Failure struct {
	Kind    FailureKind `json:"kind"`
	Message string      `json:"message"`
	Steps   []PlanStep  `json:"steps,omitempty"`
}
