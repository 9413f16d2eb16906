package metricskey

import "github.com/effective-security/metrics"

// Stats
var (
	StatsRequestsSucceeded = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_requests_succeeded",
		Help:         "stats_requests_succeeded provides total agent requests completed",
		RequiredTags: []string{"agent"},
	}

	StatsRequestsFailed = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_requests_failed",
		Help:         "stats_requests_failed provides total agent requests failed",
		RequiredTags: []string{"agent"},
	}

	StatsPlanStepsExecuted = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_plan_steps_executed",
		Help:         "stats_plan_steps_executed provides total plan steps executed",
		RequiredTags: []string{"agent"},
	}

	StatsPlanRejections = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_plan_rejections",
		Help:         "stats_plan_rejections provides total tool calls rejected pending a plan",
		RequiredTags: []string{"agent"},
	}

	StatsToolCallsSucceeded = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_tool_calls_succeeded",
		Help:         "stats_tool_calls_succeeded provides total tool calls succeeded",
		RequiredTags: []string{"tool"},
	}

	StatsToolCallsFailed = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_tool_calls_failed",
		Help:         "stats_tool_calls_failed provides total tool calls failed",
		RequiredTags: []string{"tool"},
	}

	StatsToolCallsNotFound = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_tool_calls_not_found",
		Help:         "stats_tool_calls_not_found provides total tool calls not found",
		RequiredTags: []string{"tool"},
	}

	StatsServersConnected = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_servers_connected",
		Help:         "stats_servers_connected provides total tool server connections established",
		RequiredTags: []string{"server"},
	}

	StatsServersDisconnected = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_servers_disconnected",
		Help:         "stats_servers_disconnected provides total tool server disconnects",
		RequiredTags: []string{"server"},
	}
)

// Perf
var (
	PerfRequest = metrics.Describe{
		Type:         metrics.TypeSample,
		Name:         "perf_request",
		Help:         "perf_request provides duration of agent request",
		RequiredTags: []string{"agent"},
	}

	PerfToolCall = metrics.Describe{
		Type:         metrics.TypeSample,
		Name:         "perf_tool_call",
		Help:         "perf_tool_call provides duration of tool call",
		RequiredTags: []string{"tool"},
	}
)

// Metrics returns slice of metrics from this repo
// keep sorted by name
var Metrics = []*metrics.Describe{
	&PerfRequest,
	&PerfToolCall,
	&StatsPlanRejections,
	&StatsPlanStepsExecuted,
	&StatsRequestsFailed,
	&StatsRequestsSucceeded,
	&StatsServersConnected,
	&StatsServersDisconnected,
	&StatsToolCallsFailed,
	&StatsToolCallsNotFound,
	&StatsToolCallsSucceeded,
}
