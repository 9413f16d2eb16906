// Package tools defines the Tool interface for the agent engine, the
// process-wide tool registry, and parameter schema declarations. Tools are
// named callable operations, either implemented locally or proxied to an
// external tool server, dispatched by name through the Registry.
package tools
