// Package websearch provides a locally defined web-search tool backed by
// the Tavily API. It is a reference for writing local tools against the
// registry; agents typically register it on their simple-tool list.
package websearch

import (
	"context"
	"encoding/json"
	"os"

	"github.com/cockroachdb/errors"
	tavilygo "github.com/diverged/tavily-go"
	tavilymodels "github.com/diverged/tavily-go/models"

	"github.com/amd/gaia/llmutils"
	"github.com/amd/gaia/tools"
)

const ToolName = "web_search"

// SearchRequest represents the tool input.
type SearchRequest struct {
	Query string `json:"query" jsonschema:"required,description=The query to search the web for."`
}

// SearchResult represents the structure for a search response.
type SearchResult struct {
	Results []tavilymodels.SearchResult `json:"results"`
	Answer  string                      `json:"answer,omitempty"`
}

// Tool is a web-search tool.
type Tool struct {
	apiKey  string
	baseURL string
	params  map[string]tools.Parameter
}

var _ tools.ITool = (*Tool)(nil)

func New() (*Tool, error) {
	apiKey := os.Getenv("TAVILY_API_KEY")
	if apiKey == "" {
		return nil, errors.New("TAVILY_API_KEY is not set")
	}

	params, err := tools.ParamsFromStruct(SearchRequest{})
	if err != nil {
		return nil, err
	}
	return &Tool{
		apiKey: apiKey,
		params: params,
	}, nil
}

func (t *Tool) WithBaseURL(baseURL string) *Tool {
	t.baseURL = baseURL
	return t
}

func (t *Tool) Name() string {
	return ToolName
}

func (t *Tool) Description() string {
	return "Searches the web and returns scored results with an aggregated answer."
}

func (t *Tool) Parameters() any {
	return t.params
}

func (t *Tool) Run(ctx context.Context, req *SearchRequest) (*SearchResult, error) {
	if req.Query == "" {
		return nil, errors.New("invalid request: empty query")
	}

	client := tavilygo.NewClient(t.apiKey)
	if t.baseURL != "" {
		client.BaseURL = t.baseURL
	}

	searchResp, err := tavilygo.Search(client, tavilymodels.SearchRequest{
		Query:         req.Query,
		SearchDepth:   "basic",
		IncludeAnswer: true,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to perform search")
	}

	return &SearchResult{
		Results: searchResp.Results,
		Answer:  searchResp.Answer,
	}, nil
}

func (t *Tool) Call(ctx context.Context, input string) (string, error) {
	var req SearchRequest
	if err := json.Unmarshal(llmutils.CleanJSON([]byte(input)), &req); err != nil {
		return "", errors.Wrap(err, "failed to unmarshal input")
	}
	out, err := t.Run(ctx, &req)
	if err != nil {
		return "", err
	}
	return llmutils.ToJSON(out), nil
}
