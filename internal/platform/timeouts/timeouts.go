// Package timeouts holds the durations shared by the game server's clients.
package timeouts

import "time"

// HealthWait caps how long a client waits for the game server to report
// SERVING.
const HealthWait = 10 * time.Second

// GRPCCall caps a single game call made on behalf of an MCP tool.
const GRPCCall = 5 * time.Second

// ReadHeader limits how long an HTTP server waits for request headers.
const ReadHeader = 10 * time.Second

// Shutdown limits how long an HTTP server waits for in-flight requests
// during graceful shutdown.
const Shutdown = 5 * time.Second
