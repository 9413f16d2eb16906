package mcpservers_test

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/tidwall/gjson"

	"github.com/amd/gaia/mcpservers"
)

func Test_WrapResult(t *testing.T) {
	// structured results get the uniform envelope
	out := mcpservers.WrapResult("mcp_blender_get_scene_info", `{"objects": 3, "name": "Cube"}`)
	assert.Equal(t, "success", gjson.Get(out, "status").String())
	assert.Equal(t, int64(3), gjson.Get(out, "data.objects").Int())
	assert.NotEmpty(t, gjson.Get(out, "message").String())
	assert.NotEmpty(t, gjson.Get(out, "instruction").String())

	// plain text passes through unchanged
	assert.Equal(t, "rendered 42 frames", mcpservers.WrapResult("t", "rendered 42 frames"))
	assert.Equal(t, "", mcpservers.WrapResult("t", ""))

	// invalid JSON that merely starts with a brace is still plain text
	assert.Equal(t, "{oops", mcpservers.WrapResult("t", "{oops"))
}

func Test_WrapError(t *testing.T) {
	out := mcpservers.WrapError("mcp_blender_render", errors.New("boom"), `{"partial": true}`)
	assert.Equal(t, "error", gjson.Get(out, "status").String())
	assert.Equal(t, "boom", gjson.Get(out, "error").String())
	assert.True(t, gjson.Get(out, "data.partial").Bool())

	out = mcpservers.WrapError("mcp_blender_render", errors.New("boom"), "")
	assert.Equal(t, "error", gjson.Get(out, "status").String())
	assert.False(t, gjson.Get(out, "data").Exists())

	out = mcpservers.WrapError("mcp_blender_render", errors.New("boom"), "half a log line")
	assert.Equal(t, "half a log line", gjson.Get(out, "data").String())
}
