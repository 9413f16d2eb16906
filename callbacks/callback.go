// Package callbacks provides ready-made implementations of the engine
// lifecycle callback.
package callbacks

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/effective-security/xlog"

	"github.com/amd/gaia/agents"
	"github.com/amd/gaia/tools"
)

// ensure that the callbacks implement the correct interfaces
var (
	_ agents.Callback = (*Noop)(nil)
	_ tools.Callback  = (*Noop)(nil)
	_ agents.Callback = (*Printer)(nil)
	_ tools.Callback  = (*Printer)(nil)
	_ agents.Callback = (*PackageLogger)(nil)
	_ tools.Callback  = (*PackageLogger)(nil)
	_ agents.Callback = (*Fanout)(nil)
	_ tools.Callback  = (*Fanout)(nil)
)

// Mode defines the mode for callback printing
type Mode int

const (
	// ModeDefault is the default mode for callback printing
	ModeDefault Mode = iota
	// ModeVerbose is the verbose mode for callback printing
	ModeVerbose
)

// Fanout forwards the events to multiple callbacks.
type Fanout struct {
	callbacks []agents.Callback
}

func NewFanout(callbacks ...agents.Callback) *Fanout {
	return &Fanout{callbacks: callbacks}
}

func (l *Fanout) Add(callback agents.Callback) {
	l.callbacks = append(l.callbacks, callback)
}

func (l *Fanout) OnToolStart(ctx context.Context, tool tools.ITool, input string) {
	for _, callback := range l.callbacks {
		callback.OnToolStart(ctx, tool, input)
	}
}

func (l *Fanout) OnToolEnd(ctx context.Context, tool tools.ITool, input, output string) {
	for _, callback := range l.callbacks {
		callback.OnToolEnd(ctx, tool, input, output)
	}
}

func (l *Fanout) OnToolError(ctx context.Context, tool tools.ITool, input string, err error) {
	for _, callback := range l.callbacks {
		callback.OnToolError(ctx, tool, input, err)
	}
}

func (l *Fanout) OnToolNotFound(ctx context.Context, tool string) {
	for _, callback := range l.callbacks {
		callback.OnToolNotFound(ctx, tool)
	}
}

func (l *Fanout) OnPlanCommitted(ctx context.Context, plan *agents.Plan) {
	for _, callback := range l.callbacks {
		callback.OnPlanCommitted(ctx, plan)
	}
}

func (l *Fanout) OnPlanRequired(ctx context.Context, tool string) {
	for _, callback := range l.callbacks {
		callback.OnPlanRequired(ctx, tool)
	}
}

func (l *Fanout) OnRequestEnd(ctx context.Context, input string, result *agents.Result) {
	for _, callback := range l.callbacks {
		callback.OnRequestEnd(ctx, input, result)
	}
}

// Noop does nothing.
type Noop struct{}

func NewNoop() *Noop {
	return &Noop{}
}

func (l *Noop) OnToolStart(ctx context.Context, tool tools.ITool, input string)       {}
func (l *Noop) OnToolEnd(ctx context.Context, tool tools.ITool, input, output string) {}
func (l *Noop) OnToolError(ctx context.Context, tool tools.ITool, input string, err error) {
}
func (l *Noop) OnToolNotFound(ctx context.Context, tool string)                       {}
func (l *Noop) OnPlanCommitted(ctx context.Context, plan *agents.Plan)                {}
func (l *Noop) OnPlanRequired(ctx context.Context, tool string)                       {}
func (l *Noop) OnRequestEnd(ctx context.Context, input string, result *agents.Result) {}

// Printer is a callback handler that prints to the Writer.
type Printer struct {
	Out  io.Writer
	Mode Mode

	lock sync.Mutex
}

func NewPrinter(out io.Writer, mode Mode) *Printer {
	return &Printer{Out: out, Mode: mode}
}

func (l *Printer) OnToolStart(ctx context.Context, tool tools.ITool, input string) {
	l.lock.Lock()
	defer l.lock.Unlock()
	fmt.Fprintf(l.Out, "Tool Start: %s\n", tool.Name())
	fmt.Fprintf(l.Out, "Input: %s\n", input)
}

func (l *Printer) OnToolEnd(ctx context.Context, tool tools.ITool, input, output string) {
	l.lock.Lock()
	defer l.lock.Unlock()
	fmt.Fprintf(l.Out, "Tool End: %s\n", tool.Name())
	if l.Mode == ModeVerbose {
		fmt.Fprintf(l.Out, "Output: %s\n", output)
	}
}

func (l *Printer) OnToolError(ctx context.Context, tool tools.ITool, input string, err error) {
	l.lock.Lock()
	defer l.lock.Unlock()
	fmt.Fprintf(l.Out, "Tool Error: %s: %s\n", tool.Name(), err.Error())
}

func (l *Printer) OnToolNotFound(ctx context.Context, tool string) {
	l.lock.Lock()
	defer l.lock.Unlock()
	fmt.Fprintf(l.Out, "Tool Not Found: %s\n", tool)
}

func (l *Printer) OnPlanCommitted(ctx context.Context, plan *agents.Plan) {
	l.lock.Lock()
	defer l.lock.Unlock()
	fmt.Fprintf(l.Out, "Plan Committed: %d steps\n", len(plan.Steps))
	if l.Mode == ModeVerbose {
		for i, step := range plan.Steps {
			fmt.Fprintf(l.Out, "  %d. %s %s\n", i, step.Tool, string(step.Args))
		}
	}
}

func (l *Printer) OnPlanRequired(ctx context.Context, tool string) {
	l.lock.Lock()
	defer l.lock.Unlock()
	fmt.Fprintf(l.Out, "Plan Required: %s\n", tool)
}

func (l *Printer) OnRequestEnd(ctx context.Context, input string, result *agents.Result) {
	l.lock.Lock()
	defer l.lock.Unlock()
	fmt.Fprintf(l.Out, "Request End: %s\n", result.State)
	if result.Failure != nil {
		fmt.Fprintf(l.Out, "Failure: %s: %s\n", result.Failure.Kind, result.Failure.Message)
	} else if l.Mode == ModeVerbose {
		fmt.Fprintf(l.Out, "Answer: %s\n", result.Answer)
	}
}

// PackageLogger is a callback handler that prints to the logger.
type PackageLogger struct {
	logger *xlog.PackageLogger
}

func NewPackageLogger(logger *xlog.PackageLogger) *PackageLogger {
	return &PackageLogger{logger: logger}
}

func (l *PackageLogger) OnToolStart(ctx context.Context, tool tools.ITool, input string) {
	l.logger.ContextKV(ctx, xlog.DEBUG,
		"event", "tool_start",
		"tool", tool.Name(),
		"input", input,
	)
}

func (l *PackageLogger) OnToolEnd(ctx context.Context, tool tools.ITool, input, output string) {
	l.logger.ContextKV(ctx, xlog.DEBUG,
		"event", "tool_end",
		"tool", tool.Name(),
	)
}

func (l *PackageLogger) OnToolError(ctx context.Context, tool tools.ITool, input string, err error) {
	l.logger.ContextKV(ctx, xlog.ERROR,
		"event", "tool_error",
		"tool", tool.Name(),
		"err", err.Error(),
	)
}

func (l *PackageLogger) OnToolNotFound(ctx context.Context, tool string) {
	l.logger.ContextKV(ctx, xlog.WARNING,
		"event", "tool_not_found",
		"tool", tool,
	)
}

func (l *PackageLogger) OnPlanCommitted(ctx context.Context, plan *agents.Plan) {
	l.logger.ContextKV(ctx, xlog.DEBUG,
		"event", "plan_committed",
		"steps", len(plan.Steps),
	)
}

func (l *PackageLogger) OnPlanRequired(ctx context.Context, tool string) {
	l.logger.ContextKV(ctx, xlog.DEBUG,
		"event", "plan_required",
		"tool", tool,
	)
}

func (l *PackageLogger) OnRequestEnd(ctx context.Context, input string, result *agents.Result) {
	if result.Failure != nil {
		l.logger.ContextKV(ctx, xlog.WARNING,
			"event", "request_end",
			"state", result.State.String(),
			"kind", string(result.Failure.Kind),
			"err", result.Failure.Message,
		)
		return
	}
	l.logger.ContextKV(ctx, xlog.DEBUG,
		"event", "request_end",
		"state", result.State.String(),
		"steps", len(result.Steps),
	)
}
