package agents_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/amd/gaia/agents"
)

func Test_ParseAction(t *testing.T) {
	// direct tool call with chatter around the JSON
	action, err := agents.ParseAction("Sure, here you go: {\"tool\": \"get_scene_info\", \"args\": {\"detail\": \"full\"}}")
	require.NoError(t, err)
	assert.False(t, action.IsPlan())
	assert.Equal(t, "get_scene_info", action.Tool)
	assert.Equal(t, "full", gjson.GetBytes(action.Args, "detail").String())

	// plan inside a markdown fence
	action, err = agents.ParseAction("```json\n{\"plan\": [{\"tool\": \"generate_image\", \"args\": {\"prompt\": \"x\"}}]}\n```")
	require.NoError(t, err)
	require.True(t, action.IsPlan())
	assert.Equal(t, "generate_image", action.Plan[0].Tool)

	_, err = agents.ParseAction("I cannot help with that.")
	assert.Error(t, err)

	_, err = agents.ParseAction("{}")
	assert.Error(t, err)
}
