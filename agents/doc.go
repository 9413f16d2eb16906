// Package agents implements the planner/executor engine. The engine asks
// an external completion backend for the next action, gates direct tool
// calls behind a per-agent simple-tool allow-list, executes committed
// multi-step plans in order with placeholder substitution between steps,
// and surfaces structured failure payloads instead of bare errors.
package agents
