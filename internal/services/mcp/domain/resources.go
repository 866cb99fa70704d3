package domain

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/louisbranch/arithmetic/internal/platform/timeouts"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const gameURIPrefix = "arithmetic://games/"

// GameResourceTemplate defines the readable game state resource.
func GameResourceTemplate() *mcp.ResourceTemplate {
	return &mcp.ResourceTemplate{
		Name:        "game_state",
		Title:       "Game",
		Description: "Current round of a game. URI format: arithmetic://games/{game_id}",
		MIMEType:    "application/json",
		URITemplate: "arithmetic://games/{game_id}",
	}
}

// GameResourceHandler reads a game as JSON.
func GameResourceHandler(client GameClient) mcp.ResourceHandler {
	return func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		if client == nil {
			return nil, fmt.Errorf("game client is not configured")
		}
		if req == nil || req.Params == nil || req.Params.URI == "" {
			return nil, fmt.Errorf("game ID is required; use URI format arithmetic://games/{game_id}")
		}
		uri := req.Params.URI
		gameID, err := parseGameURI(uri)
		if err != nil {
			return nil, err
		}

		runCtx, cancel := context.WithTimeout(ctx, timeouts.GRPCCall)
		defer cancel()
		view, err := client.State(runCtx, gameID)
		if err != nil {
			return nil, fmt.Errorf("read game failed: %w", err)
		}
		data, err := json.MarshalIndent(gameResult(view), "", "  ")
		if err != nil {
			return nil, fmt.Errorf("marshal game: %w", err)
		}
		return &mcp.ReadResourceResult{
			Contents: []*mcp.ResourceContents{
				{
					URI:      uri,
					MIMEType: "application/json",
					Text:     string(data),
				},
			},
		}, nil
	}
}

func parseGameURI(uri string) (string, error) {
	if !strings.HasPrefix(uri, gameURIPrefix) {
		return "", fmt.Errorf("URI must start with %q", gameURIPrefix)
	}
	gameID := strings.TrimSpace(strings.TrimPrefix(uri, gameURIPrefix))
	if gameID == "" {
		return "", fmt.Errorf("game ID is required in URI")
	}
	if strings.ContainsAny(gameID, "/?#") {
		return "", fmt.Errorf("URI must not contain path segments, query or fragment after the game ID")
	}
	return gameID, nil
}
