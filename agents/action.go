package agents

import (
	"github.com/bububa/ljson"
	"github.com/cockroachdb/errors"

	"github.com/amd/gaia/llmutils"
)

// ParseAction extracts an Action from raw model output. The text may carry
// chatter or a markdown fence around the JSON; parsing is lenient about
// trailing commas and similar model artifacts.
func ParseAction(text string) (*Action, error) {
	data := llmutils.CleanJSON([]byte(llmutils.TrimBackticks(text)))

	var action Action
	if err := ljson.Unmarshal(data, &action); err != nil {
		return nil, errors.Wrap(err, "failed to parse action")
	}
	if action.Tool == "" && len(action.Plan) == 0 {
		return nil, errors.New("action names no tool and no plan")
	}
	return &action, nil
}
