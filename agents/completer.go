package agents

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/prompts"

	"github.com/amd/gaia/tools"
)

const planningTemplate = `You are an agent that controls tools.
You may respond with exactly one JSON object and no other text.

Available tools:
{{.tools}}

To call a single tool directly:
{"tool": "<tool_name>", "args": {...}}

To run several tools in order:
{"plan": [{"tool": "<tool_name>", "args": {...}}, ...]}

Inside plan arguments you may reference earlier results with
"$PREV.<field>" or "$STEP_<n>.<field>" where <n> is the zero-based step index.`

const synthesisTemplate = `You have executed the requested tools and received their results.
Provide a concise, natural-language answer for the user based on the conversation
and the tool results. Do not repeat raw JSON or tool internals.`

// TextCompleter adapts a text-producing language model into a Completer.
// The tool list is rendered into the planning prompt from the registry on
// every proposal, so newly attached servers are visible immediately.
type TextCompleter struct {
	model    llms.Model
	registry *tools.Registry
	planTmpl prompts.PromptTemplate
}

var _ Completer = (*TextCompleter)(nil)

func NewTextCompleter(model llms.Model, registry *tools.Registry) *TextCompleter {
	return &TextCompleter{
		model:    model,
		registry: registry,
		planTmpl: prompts.NewPromptTemplate(planningTemplate, []string{"tools"}),
	}
}

func (c *TextCompleter) Propose(ctx context.Context, messages []llms.MessageContent) (*Action, error) {
	sys, err := c.planTmpl.Format(map[string]any{
		"tools": tools.GetDescriptions(c.registry.List()...),
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to format planning prompt")
	}

	text, err := c.generate(ctx, sys, messages)
	if err != nil {
		return nil, err
	}
	return ParseAction(text)
}

func (c *TextCompleter) Finalize(ctx context.Context, messages []llms.MessageContent) (string, error) {
	return c.generate(ctx, synthesisTemplate, messages)
}

func (c *TextCompleter) generate(ctx context.Context, system string, messages []llms.MessageContent) (string, error) {
	payload := make([]llms.MessageContent, 0, len(messages)+1)
	payload = append(payload, llms.TextParts(llms.ChatMessageTypeSystem, system))
	payload = append(payload, messages...)

	resp, err := c.model.GenerateContent(ctx, payload)
	if err != nil {
		return "", errors.Wrap(err, "completion failed")
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("completion returned no choices")
	}
	return resp.Choices[0].Content, nil
}
