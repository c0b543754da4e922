/*
Package observability provides tools for monitoring the rootseek engine.

Metrics are Prometheus collectors fed by the engine's lifecycle hooks, so any host
(CLI, HTTP, MCP) gets the same counters by wiring Metrics.Hooks into the engine.
*/
package observability
