package mcpservers

import (
	"context"
	"encoding/json"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/x/values"
	mcpgolang "github.com/metoro-io/mcp-golang"

	"github.com/amd/gaia/pkg/metricskey"
	"github.com/amd/gaia/tools"
)

// proxyTool forwards calls to a remote tool on a connected server. The
// parameter schema translation happens once here, at registration, not
// per call.
type proxyTool struct {
	name        string
	description string
	params      map[string]tools.Parameter
	server      string
	remote      string
	client      ServerClient
}

var _ tools.ITool = (*proxyTool)(nil)

func proxySpec(server string, remote mcpgolang.ToolRetType, client ServerClient) (tools.ToolSpec, error) {
	params, err := tools.ParamsFromJSONSchema(remote.InputSchema)
	if err != nil {
		return tools.ToolSpec{}, errors.WithMessagef(err, "tool %q on server %q", remote.Name, server)
	}

	description := ""
	if remote.Description != nil {
		description = *remote.Description
	}
	p := &proxyTool{
		name:        ToolNamePrefix + server + "_" + remote.Name,
		description: values.StringsCoalesce(description, remote.Name),
		params:      params,
		server:      server,
		remote:      remote.Name,
		client:      client,
	}
	return tools.ToolSpec{
		Name:        p.name,
		Description: p.description,
		Parameters:  p.params,
		Handler:     p,
		Server:      server,
	}, nil
}

func (p *proxyTool) Name() string {
	return p.name
}

func (p *proxyTool) Description() string {
	return p.description
}

func (p *proxyTool) Parameters() any {
	return p.params
}

// Call forwards the JSON input to the remote tool and normalizes the
// result into the response envelope.
func (p *proxyTool) Call(ctx context.Context, input string) (string, error) {
	started := time.Now()
	defer metricskey.PerfToolCall.MeasureSince(started, p.name)

	var args map[string]any
	if input != "" {
		if err := json.Unmarshal([]byte(input), &args); err != nil {
			metricskey.StatsToolCallsFailed.IncrCounter(1, p.name)
			return "", errors.Wrapf(err, "invalid arguments for tool %q", p.name)
		}
	}

	res, err := p.client.CallTool(ctx, p.remote, args)
	if err != nil {
		metricskey.StatsToolCallsFailed.IncrCounter(1, p.name)
		return WrapError(p.name, err, res), nil
	}
	metricskey.StatsToolCallsSucceeded.IncrCounter(1, p.name)
	return WrapResult(p.name, res), nil
}
