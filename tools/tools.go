package tools

import (
	"context"

	"github.com/amd/gaia/llmutils"
)

// ITool is a tool for the agent to interact with different applications.
type ITool interface {
	// Name returns the name of the Tool.
	Name() string
	// Description returns the description of the tool, to be used in the prompt.
	// Should not exceed LLM model limit.
	Description() string
	// Parameters returns the parameters definition of the function, to be used in the prompt.
	Parameters() any

	// Call executes the tool with the given JSON input and returns the result.
	Call(context.Context, string) (string, error)
}

type Callback interface {
	OnToolStart(context.Context, ITool, string)
	OnToolEnd(context.Context, ITool, string, string)
	OnToolError(context.Context, ITool, string, error)
}

type toolDescription struct {
	Name        string               `json:"Name" yaml:"Name"`
	Description string               `json:"Description" yaml:"Description"`
	Parameters  map[string]Parameter `json:"Parameters,omitempty" yaml:"Parameters,omitempty"`
}

type toolsDescription struct {
	Tools []toolDescription `json:"Tools" yaml:"Tools"`
}

// GetDescriptions returns a prompt-ready JSON block describing the tools.
func GetDescriptions(list ...ToolSpec) string {
	var d toolsDescription
	for _, spec := range list {
		d.Tools = append(d.Tools, toolDescription{
			Name:        spec.Name,
			Description: spec.Description,
			Parameters:  spec.Parameters,
		})
	}
	return llmutils.BackticksJSON(llmutils.ToJSONIndent(d))
}
