package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	platformgrpc "github.com/louisbranch/arithmetic/internal/platform/grpc"
	"github.com/louisbranch/arithmetic/internal/platform/timeouts"
	"github.com/louisbranch/arithmetic/internal/services/arithmetic/api/grpc/games"
	"github.com/louisbranch/arithmetic/internal/services/mcp/domain"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"google.golang.org/grpc"
)

const (
	serverName    = "arithmetic"
	serverVersion = "0.1.0"
)

// TransportKind identifies the MCP transport implementation.
type TransportKind string

const (
	// TransportStdio uses standard input/output for MCP.
	TransportStdio TransportKind = "stdio"
	// TransportHTTP serves MCP over streamable HTTP.
	TransportHTTP TransportKind = "http"
)

// Config configures the MCP server.
type Config struct {
	GameAddr    string
	Transport   TransportKind
	HTTPAddr    string
	DialTimeout time.Duration
}

// Server hosts the MCP tools for one game client.
type Server struct {
	mcpServer *mcp.Server
	conn      *grpc.ClientConn
	current   *domain.Context
}

// NewServer registers every tool and resource against client. The returned
// server owns no connection.
func NewServer(client domain.GameClient) *Server {
	mcpServer := mcp.NewServer(&mcp.Implementation{Name: serverName, Version: serverVersion}, nil)
	current := &domain.Context{}

	mcp.AddTool(mcpServer, domain.StartTool(), domain.StartHandler(client, current))
	mcp.AddTool(mcpServer, domain.StateTool(), domain.StateHandler(client, current))
	mcp.AddTool(mcpServer, domain.NewRoundTool(), domain.NewRoundHandler(client, current))
	mcp.AddTool(mcpServer, domain.MoveTool(), domain.MoveHandler(client, current))
	mcp.AddTool(mcpServer, domain.UndoTool(), domain.UndoHandler(client, current))
	mcp.AddTool(mcpServer, domain.ResetTool(), domain.ResetHandler(client, current))
	mcp.AddTool(mcpServer, domain.OperatorsTool(), domain.OperatorsHandler(client))
	mcpServer.AddResourceTemplate(domain.GameResourceTemplate(), domain.GameResourceHandler(client))

	return &Server{mcpServer: mcpServer, current: current}
}

// Dial connects to the game server and builds an MCP server on top of it.
// The connection is released by Close.
func Dial(ctx context.Context, cfg Config) (*Server, error) {
	timeout := cfg.DialTimeout
	if timeout <= 0 {
		timeout = timeouts.HealthWait
	}
	logf := func(format string, args ...any) {
		log.Printf("game %s", fmt.Sprintf(format, args...))
	}
	conn, err := platformgrpc.Connect(ctx, cfg.GameAddr, games.ServiceName, timeout, logf)
	if err != nil {
		var dialErr *platformgrpc.DialError
		if errors.As(err, &dialErr) && dialErr.Stage == platformgrpc.DialStageConnect {
			return nil, fmt.Errorf("connect to game server at %s: %w", cfg.GameAddr, dialErr.Err)
		}
		return nil, err
	}
	server := NewServer(games.NewClient(conn))
	server.conn = conn
	return server, nil
}

// Run dials the game server and serves MCP until the context ends.
func Run(ctx context.Context, cfg Config) error {
	if cfg.Transport == "" {
		cfg.Transport = TransportStdio
	}
	switch cfg.Transport {
	case TransportStdio, TransportHTTP:
	default:
		return fmt.Errorf("transport %q is not supported", cfg.Transport)
	}

	server, err := Dial(ctx, cfg)
	if err != nil {
		return err
	}
	if cfg.Transport == TransportHTTP {
		defer server.Close()
		return server.ServeHTTP(ctx, cfg.HTTPAddr)
	}
	return server.serveWithTransport(ctx, &mcp.StdioTransport{})
}

// Serve runs the MCP server on stdio.
func (s *Server) Serve(ctx context.Context) error {
	return s.serveWithTransport(ctx, &mcp.StdioTransport{})
}

// Close releases the game connection, if any.
func (s *Server) Close() error {
	if s == nil || s.conn == nil {
		return nil
	}
	if err := s.conn.Close(); err != nil {
		return err
	}
	s.conn = nil
	return nil
}

// serveWithTransport runs the MCP server on transport and closes the game
// connection when it stops.
func (s *Server) serveWithTransport(ctx context.Context, transport mcp.Transport) error {
	if s == nil || s.mcpServer == nil {
		return fmt.Errorf("MCP server is not configured")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	err := s.mcpServer.Run(ctx, transport)
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		err = nil
	}
	closeErr := s.Close()
	if closeErr != nil {
		if err == nil {
			return fmt.Errorf("close gRPC connection: %w", closeErr)
		}
		return fmt.Errorf("serve MCP: %v; close gRPC connection: %w", err, closeErr)
	}
	if err != nil {
		return fmt.Errorf("serve MCP: %w", err)
	}
	return nil
}
