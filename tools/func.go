package tools

import (
	"context"
)

// FuncTool adapts a plain Go function into an ITool.
type FuncTool struct {
	name        string
	description string
	params      map[string]Parameter
	fn          func(context.Context, string) (string, error)
}

var _ ITool = (*FuncTool)(nil)

// NewFunc creates a tool from a handler function. params may be nil for
// tools without arguments.
func NewFunc(name, description string, params map[string]Parameter, fn func(context.Context, string) (string, error)) *FuncTool {
	return &FuncTool{
		name:        name,
		description: description,
		params:      params,
		fn:          fn,
	}
}

func (t *FuncTool) Name() string {
	return t.name
}

func (t *FuncTool) Description() string {
	return t.description
}

func (t *FuncTool) Parameters() any {
	return t.params
}

func (t *FuncTool) Call(ctx context.Context, input string) (string, error) {
	return t.fn(ctx, input)
}
