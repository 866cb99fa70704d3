// Package service runs the MCP server over stdio or streamable HTTP and
// connects its tools to the game gRPC API.
package service
