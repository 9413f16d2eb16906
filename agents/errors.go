package agents

import (
	"github.com/cockroachdb/errors"
)

var (
	// ErrEngineBusy is returned when ProcessRequest is called while a
	// request is already in flight. One request at a time per engine.
	ErrEngineBusy = errors.New("engine is processing another request")
	// ErrPlanRequired marks a direct tool invocation that must be
	// resubmitted as an explicit plan.
	ErrPlanRequired = errors.New("tool requires an explicit plan")
	// ErrPlaceholderResolution marks a step argument placeholder that
	// could not be resolved against prior step results.
	ErrPlaceholderResolution = errors.New("placeholder resolution failed")
	// ErrStepBudgetExceeded marks a plan that ran past the configured
	// step ceiling.
	ErrStepBudgetExceeded = errors.New("step budget exceeded")
)

// FailureKind classifies a failed request in the structured payload.
type FailureKind string

const (
	FailurePlanning     FailureKind = "planning_error"
	FailurePlanRequired FailureKind = "plan_required"
	FailureToolNotFound FailureKind = "tool_not_found"
	FailureToolError    FailureKind = "tool_error"
	FailurePlaceholder  FailureKind = "placeholder_resolution"
	FailureStepBudget   FailureKind = "step_budget_exceeded"
	FailureCompletion   FailureKind = "completion_error"
)
