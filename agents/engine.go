package agents

import (
	"context"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/xlog"
	"github.com/tmc/langchaingo/llms"

	"github.com/amd/gaia/llmutils"
	"github.com/amd/gaia/mcpservers"
	"github.com/amd/gaia/pkg/metricskey"
	"github.com/amd/gaia/store"
	"github.com/amd/gaia/tools"
)

var logger = xlog.NewPackageLogger("github.com/amd/gaia", "agents")

// Engine drives one request at a time through the planner/executor state
// machine. Tool dispatch goes through the shared registry, so locally
// defined tools and server-proxied tools are handled uniformly.
type Engine struct {
	name              string
	registry          *tools.Registry
	completer         Completer
	manager           *mcpservers.Manager
	store             store.MessageStore
	callback          Callback
	simpleTools       map[string]bool
	maxSteps          int
	maxPlanRejections int

	mu    sync.Mutex
	state ExecutionState
}

// NewEngine creates an engine over the registry and completion backend.
func NewEngine(registry *tools.Registry, completer Completer, ops ...Option) *Engine {
	e := &Engine{
		name:              "agent",
		registry:          registry,
		completer:         completer,
		simpleTools:       make(map[string]bool),
		maxSteps:          DefaultMaxSteps,
		maxPlanRejections: DefaultMaxPlanRejections,
		state:             StateIdle,
	}
	for _, op := range ops {
		op(e)
	}
	return e
}

func (e *Engine) Name() string {
	return e.name
}

// State returns the engine's current execution state.
func (e *Engine) State() ExecutionState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Manager returns the attached tool-server manager, if any.
func (e *Engine) Manager() *mcpservers.Manager {
	return e.manager
}

// Close disconnects all attached tool servers.
func (e *Engine) Close(ctx context.Context) {
	if e.manager != nil {
		e.manager.DisconnectAll(ctx)
	}
}

// ProcessRequest runs one natural-language request to completion. Engine
// failures are reported in the Result's failure payload, not as a Go error;
// the error return is reserved for misuse (busy engine, missing backend).
func (e *Engine) ProcessRequest(ctx context.Context, input string) (*Result, error) {
	if e.completer == nil {
		return nil, errors.New("completion backend is required")
	}
	if err := e.begin(); err != nil {
		return nil, err
	}
	defer e.setState(StateIdle)

	started := time.Now()
	defer metricskey.PerfRequest.MeasureSince(started, e.name)

	messages := e.history(ctx)
	messages = append(messages, llms.TextParts(llms.ChatMessageTypeHuman, input))

	// planning: loop until the backend commits a plan or an allow-listed
	// direct tool call
	var plan *Plan
	rejections := 0
	for plan == nil {
		action, err := e.completer.Propose(ctx, messages)
		if err != nil {
			return e.fail(ctx, input, FailureCompletion, err.Error(), nil), nil
		}
		if action == nil {
			return e.fail(ctx, input, FailureCompletion, "backend proposed no action", nil), nil
		}

		if action.IsPlan() {
			plan = &Plan{Steps: action.Plan}
			if e.callback != nil {
				e.callback.OnPlanCommitted(ctx, plan)
			}
			break
		}

		if e.allowSimple(action.Tool) {
			return e.runSimple(ctx, input, action)
		}

		// the gate applies only here, before any plan exists
		rejections++
		metricskey.StatsPlanRejections.IncrCounter(1, e.name)
		if e.callback != nil {
			e.callback.OnPlanRequired(ctx, action.Tool)
		}
		if rejections > e.maxPlanRejections {
			return e.fail(ctx, input, FailurePlanRequired,
				errors.WithMessagef(ErrPlanRequired, "tool %q", action.Tool).Error(), nil), nil
		}
		logger.ContextKV(ctx, xlog.DEBUG,
			"status", "needs_plan",
			"agent", e.name,
			"tool", action.Tool,
		)
		messages = append(messages, llms.TextParts(llms.ChatMessageTypeTool,
			llmutils.ToJSON(map[string]string{
				"status":  "needs_plan",
				"tool":    action.Tool,
				"message": "This tool may not run directly. Resubmit the request as an explicit plan.",
			})))
	}

	e.setState(StateExecuting)
	done := make([]PlanStep, 0, len(plan.Steps))
	for i := range plan.Steps {
		if i >= e.maxSteps {
			return e.fail(ctx, input, FailureStepBudget,
				errors.WithMessagef(ErrStepBudgetExceeded, "%d steps allowed, plan has %d", e.maxSteps, len(plan.Steps)).Error(),
				done), nil
		}

		step := plan.Steps[i]
		resolved, err := resolveArgs(step.Args, i, done)
		if err != nil {
			return e.fail(ctx, input, FailurePlaceholder, err.Error(), done), nil
		}
		step.Args = resolved

		out, kind, err := e.dispatch(ctx, step.Tool, string(resolved))
		if err != nil {
			return e.fail(ctx, input, kind, err.Error(), done), nil
		}
		step.Result = out
		done = append(done, step)
		metricskey.StatsPlanStepsExecuted.IncrCounter(1, e.name)
	}

	for _, step := range done {
		messages = append(messages, llms.TextParts(llms.ChatMessageTypeTool,
			llmutils.ToJSON(map[string]string{
				"tool":   step.Tool,
				"result": step.Result,
			})))
	}
	answer, err := e.completer.Finalize(ctx, messages)
	if err != nil {
		return e.fail(ctx, input, FailureCompletion, err.Error(), done), nil
	}

	return e.finish(ctx, input, &Result{
		State:  StateDone,
		Answer: answer,
		Steps:  done,
	}), nil
}

// allowSimple reports whether the tool may run without an explicit plan:
// either named in the per-agent allow-list or registered as atomic.
func (e *Engine) allowSimple(name string) bool {
	if e.simpleTools[name] {
		return true
	}
	spec, ok := e.registry.Get(name)
	return ok && spec.Atomic
}

// runSimple executes an allow-listed direct tool call and returns its
// result as the answer, without a synthesis call.
func (e *Engine) runSimple(ctx context.Context, input string, action *Action) (*Result, error) {
	e.setState(StateExecuting)

	out, kind, err := e.dispatch(ctx, action.Tool, string(action.Args))
	if err != nil {
		return e.fail(ctx, input, kind, err.Error(), nil), nil
	}

	step := PlanStep{Tool: action.Tool, Args: action.Args, Result: out}
	return e.finish(ctx, input, &Result{
		State:  StateDone,
		Answer: out,
		Steps:  []PlanStep{step},
	}), nil
}

// dispatch looks the tool up and invokes its handler. The failure kind
// distinguishes a registry miss from a handler error.
func (e *Engine) dispatch(ctx context.Context, name, input string) (string, FailureKind, error) {
	spec, ok := e.registry.Get(name)
	if !ok {
		metricskey.StatsToolCallsNotFound.IncrCounter(1, name)
		if e.callback != nil {
			e.callback.OnToolNotFound(ctx, name)
		}
		return "", FailureToolNotFound, errors.WithMessagef(tools.ErrUnknownTool, "%q", name)
	}

	if e.callback != nil {
		e.callback.OnToolStart(ctx, spec.Handler, input)
	}

	local := spec.Server == ""
	started := time.Now()
	out, err := spec.Handler.Call(ctx, input)
	if local {
		// proxied tools record their own metrics in the manager
		metricskey.PerfToolCall.MeasureSince(started, name)
	}
	if err != nil {
		if local {
			metricskey.StatsToolCallsFailed.IncrCounter(1, name)
		}
		if e.callback != nil {
			e.callback.OnToolError(ctx, spec.Handler, input, err)
		}
		return "", FailureToolError, err
	}
	if local {
		metricskey.StatsToolCallsSucceeded.IncrCounter(1, name)
	}
	if e.callback != nil {
		e.callback.OnToolEnd(ctx, spec.Handler, input, out)
	}
	return out, "", nil
}

func (e *Engine) begin() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != StateIdle {
		return errors.WithMessagef(ErrEngineBusy, "state %s", e.state)
	}
	e.state = StatePlanning
	return nil
}

func (e *Engine) setState(s ExecutionState) {
	e.mu.Lock()
	e.state = s
	e.mu.Unlock()
}

func (e *Engine) finish(ctx context.Context, input string, res *Result) *Result {
	e.setState(StateDone)
	metricskey.StatsRequestsSucceeded.IncrCounter(1, e.name)

	if e.store != nil {
		err := e.store.Add(ctx,
			llms.HumanChatMessage{Content: input},
			llms.AIChatMessage{Content: res.Answer},
		)
		if err != nil {
			logger.ContextKV(ctx, xlog.WARNING,
				"status", "store_add_failed",
				"agent", e.name,
				"err", err.Error(),
			)
		}
	}
	if e.callback != nil {
		e.callback.OnRequestEnd(ctx, input, res)
	}
	return res
}

func (e *Engine) fail(ctx context.Context, input string, kind FailureKind, msg string, done []PlanStep) *Result {
	e.setState(StateFailed)
	metricskey.StatsRequestsFailed.IncrCounter(1, e.name)

	logger.ContextKV(ctx, xlog.WARNING,
		"status", "request_failed",
		"agent", e.name,
		"kind", string(kind),
		"err", msg,
	)
	res := &Result{
		State: StateFailed,
		Steps: done,
		Failure: &Failure{
			Kind:    kind,
			Message: msg,
			Steps:   done,
		},
	}
	if e.callback != nil {
		e.callback.OnRequestEnd(ctx, input, res)
	}
	return res
}

// history converts the stored conversation into completion messages.
func (e *Engine) history(ctx context.Context) []llms.MessageContent {
	if e.store == nil {
		return nil
	}
	var messages []llms.MessageContent
	for _, m := range e.store.Messages(ctx) {
		messages = append(messages, llms.TextParts(m.GetType(), m.GetContent()))
	}
	return messages
}
