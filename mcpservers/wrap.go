package mcpservers

import (
	"encoding/json"
	"strings"
)

const resultInstruction = "Summarize the data field for the user; do not invent fields that are not present."

type resultEnvelope struct {
	Status      string          `json:"status"`
	Message     string          `json:"message,omitempty"`
	Error       string          `json:"error,omitempty"`
	Data        json.RawMessage `json:"data,omitempty"`
	Instruction string          `json:"instruction,omitempty"`
}

// WrapResult normalizes a successful tool result for the conversational
// context. Structured results (JSON objects or arrays) are wrapped in a
// uniform envelope regardless of which server produced them; plain text
// passes through unchanged.
func WrapResult(tool, text string) string {
	trimmed := strings.TrimSpace(text)
	if !isStructured(trimmed) {
		return text
	}
	out, err := json.Marshal(resultEnvelope{
		Status:      "success",
		Message:     "Tool " + tool + " completed.",
		Data:        json.RawMessage(trimmed),
		Instruction: resultInstruction,
	})
	if err != nil {
		return text
	}
	return string(out)
}

// WrapError builds the error envelope for a failed tool call. The envelope
// reaches the completion backend so it can explain the failure instead of
// fabricating a result. data carries any partial output, and may be empty.
func WrapError(tool string, callErr error, data string) string {
	env := resultEnvelope{
		Status: "error",
		Error:  callErr.Error(),
	}
	if trimmed := strings.TrimSpace(data); isStructured(trimmed) {
		env.Data = json.RawMessage(trimmed)
	} else if trimmed != "" {
		raw, err := json.Marshal(trimmed)
		if err == nil {
			env.Data = raw
		}
	}
	out, err := json.Marshal(env)
	if err != nil {
		return `{"status":"error","error":"` + tool + ` failed"}`
	}
	return string(out)
}

func isStructured(s string) bool {
	if len(s) == 0 {
		return false
	}
	if s[0] != '{' && s[0] != '[' {
		return false
	}
	return json.Valid([]byte(s))
}
