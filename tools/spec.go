package tools

import (
	"reflect"

	"github.com/cockroachdb/errors"

	"github.com/amd/gaia/schema"
)

// Parameter describes one named argument of a tool.
type Parameter struct {
	Type     string `json:"type" yaml:"type"`
	Required bool   `json:"required,omitempty" yaml:"required,omitempty"`
}

// ToolSpec is the registry entry for one tool.
// Server is set for tools proxied to an external tool server.
type ToolSpec struct {
	Name        string
	Description string
	Parameters  map[string]Parameter
	Handler     ITool
	// Atomic marks cheap, side-effect-light tools; the engine lets an
	// atomic tool run directly, without an explicit multi-step plan.
	Atomic bool
	Server string
}

// SpecOf builds a ToolSpec from a tool. The parameter map is taken from
// Parameters() when the tool declares one.
func SpecOf(t ITool, atomic bool) ToolSpec {
	params, _ := t.Parameters().(map[string]Parameter)
	return ToolSpec{
		Name:        t.Name(),
		Description: t.Description(),
		Parameters:  params,
		Handler:     t,
		Atomic:      atomic,
	}
}

// ParamsFromStruct derives the parameter map from a Go struct type
// using its reflected json schema.
func ParamsFromStruct(v any) (map[string]Parameter, error) {
	s, err := schema.New(reflect.TypeOf(v))
	if err != nil {
		return nil, err
	}

	required := make(map[string]bool, len(s.Parameters.Required))
	for _, name := range s.Parameters.Required {
		required[name] = true
	}

	params := make(map[string]Parameter)
	for pair := s.Parameters.Properties.Oldest(); pair != nil; pair = pair.Next() {
		params[pair.Key] = Parameter{
			Type:     pair.Value.Type,
			Required: required[pair.Key],
		}
	}
	return params, nil
}

// ParamsFromJSONSchema converts a JSON-schema document reported by a tool
// server (decoded as map[string]any) into the parameter map. The translation
// happens once at registration time, not per call.
func ParamsFromJSONSchema(doc any) (map[string]Parameter, error) {
	m, ok := doc.(map[string]any)
	if !ok {
		if doc == nil {
			return map[string]Parameter{}, nil
		}
		return nil, errors.Newf("tools: unsupported schema document type %T", doc)
	}

	required := make(map[string]bool)
	if rs, ok := m["required"].([]any); ok {
		for _, r := range rs {
			if name, ok := r.(string); ok {
				required[name] = true
			}
		}
	}

	params := make(map[string]Parameter)
	if props, ok := m["properties"].(map[string]any); ok {
		for name, p := range props {
			typ := "string"
			if pm, ok := p.(map[string]any); ok {
				if t, ok := pm["type"].(string); ok {
					typ = t
				}
			}
			params[name] = Parameter{
				Type:     typ,
				Required: required[name],
			}
		}
	}
	return params, nil
}
