package callbacks_test

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"

	"github.com/amd/gaia/agents"
	"github.com/amd/gaia/callbacks"
	"github.com/amd/gaia/tools"
)

func newTool(name string) tools.ITool {
	return tools.NewFunc(name, "test tool", nil, func(_ context.Context, input string) (string, error) {
		return input, nil
	})
}

func Test_Printer(t *testing.T) {
	ctx := context.Background()
	var buf bytes.Buffer
	cb := callbacks.NewPrinter(&buf, callbacks.ModeVerbose)

	tool := newTool("get_scene_info")
	cb.OnPlanRequired(ctx, "generate_image")
	cb.OnPlanCommitted(ctx, &agents.Plan{Steps: []agents.PlanStep{
		{Tool: "get_scene_info", Args: json.RawMessage(`{}`)},
	}})
	cb.OnToolStart(ctx, tool, `{}`)
	cb.OnToolEnd(ctx, tool, `{}`, `{"objects": 3}`)
	cb.OnToolError(ctx, tool, `{}`, errors.New("boom"))
	cb.OnToolNotFound(ctx, "missing_tool")
	cb.OnRequestEnd(ctx, "request", &agents.Result{State: agents.StateDone, Answer: "ok"})

	out := buf.String()
	assert.Contains(t, out, "Plan Required: generate_image")
	assert.Contains(t, out, "Plan Committed: 1 steps")
	assert.Contains(t, out, "Tool Start: get_scene_info")
	assert.Contains(t, out, `Output: {"objects": 3}`)
	assert.Contains(t, out, "Tool Error: get_scene_info: boom")
	assert.Contains(t, out, "Tool Not Found: missing_tool")
	assert.Contains(t, out, "Request End: done")
	assert.Contains(t, out, "Answer: ok")
}

func Test_Printer_Failure(t *testing.T) {
	var buf bytes.Buffer
	cb := callbacks.NewPrinter(&buf, callbacks.ModeDefault)

	cb.OnRequestEnd(context.Background(), "request", &agents.Result{
		State: agents.StateFailed,
		Failure: &agents.Failure{
			Kind:    agents.FailureStepBudget,
			Message: "25 steps allowed",
		},
	})
	assert.Contains(t, buf.String(), "Failure: step_budget_exceeded: 25 steps allowed")
}

func Test_Fanout(t *testing.T) {
	ctx := context.Background()
	var a, b bytes.Buffer
	fan := callbacks.NewFanout(callbacks.NewPrinter(&a, callbacks.ModeDefault))
	fan.Add(callbacks.NewPrinter(&b, callbacks.ModeDefault))
	fan.Add(callbacks.NewNoop())

	fan.OnToolNotFound(ctx, "missing_tool")
	assert.Contains(t, a.String(), "missing_tool")
	assert.Contains(t, b.String(), "missing_tool")
}
