// Package mcpservers manages connections to external MCP tool servers.
// Each server runs as a child process speaking JSON-RPC over stdio; its
// discovered tools are registered into the shared tool registry under the
// mcp_<server>_<tool> namespace so that servers with overlapping tool
// names never collide and removal is exact.
package mcpservers
