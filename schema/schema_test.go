package schema_test

import (
	"reflect"
	"testing"

	"github.com/amd/gaia/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type generateInput struct {
	Prompt string `json:"prompt" jsonschema:"required,description=Image prompt"`
	Width  int    `json:"width,omitempty"`
	Height int    `json:"height,omitempty"`
}

type describeInput struct {
	Image  generateInput `json:"image"`
	Detail string        `json:"detail,omitempty"`
}

func Test_New(t *testing.T) {
	s, err := schema.New(reflect.TypeOf(generateInput{}))
	require.NoError(t, err)
	require.NotNil(t, s.Parameters)

	prop, ok := s.Parameters.Properties.Get("prompt")
	require.True(t, ok)
	assert.Equal(t, "string", prop.Type)
	assert.Contains(t, s.Parameters.Required, "prompt")
	assert.NotContains(t, s.Parameters.Required, "width")

	// cached on second call
	s2, err := schema.New(reflect.TypeOf(generateInput{}))
	require.NoError(t, err)
	assert.Same(t, s, s2)
}

func Test_New_NestedRefs(t *testing.T) {
	s, err := schema.New(reflect.TypeOf(describeInput{}))
	require.NoError(t, err)

	prop, ok := s.Parameters.Properties.Get("image")
	require.True(t, ok)
	// the nested $ref must be resolved into an inline object
	assert.Empty(t, prop.Ref)
	assert.Equal(t, "object", prop.Type)

	assert.NotEmpty(t, s.String())
}
