// Package domain maps MCP tool calls onto game actions.
//
// Handlers parse tool input, call the game service through a GameClient and
// return the game view as structured output. The most recently started game
// is remembered so later calls may omit game_id.
package domain
