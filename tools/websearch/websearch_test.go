package websearch_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/amd/gaia/tools"
	"github.com/amd/gaia/tools/websearch"
)

func Test_WebSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"query": "golang",
			"answer": "Go is a programming language.",
			"results": [
				{"title": "The Go Programming Language", "url": "https://go.dev", "content": "Go", "score": 0.99}
			]
		}`))
	}))
	defer srv.Close()

	t.Setenv("TAVILY_API_KEY", "test-key")
	tool, err := websearch.New()
	require.NoError(t, err)
	tool = tool.WithBaseURL(srv.URL)

	assert.Equal(t, websearch.ToolName, tool.Name())
	params, ok := tool.Parameters().(map[string]tools.Parameter)
	require.True(t, ok)
	assert.True(t, params["query"].Required)

	out, err := tool.Call(context.Background(), `{"query": "golang"}`)
	require.NoError(t, err)
	assert.Equal(t, "Go is a programming language.", gjson.Get(out, "answer").String())
	assert.Equal(t, "https://go.dev", gjson.Get(out, "results.0.url").String())

	_, err = tool.Call(context.Background(), `{"query": ""}`)
	assert.Error(t, err)
}

func Test_WebSearch_NoAPIKey(t *testing.T) {
	t.Setenv("TAVILY_API_KEY", "")
	_, err := websearch.New()
	assert.Error(t, err)
}
