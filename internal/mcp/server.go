package mcp

import (
	"log/slog"
	"net/http"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// Server wraps the SDK MCP server and serves it over Streamable HTTP.
type Server struct {
	sdk    *sdkmcp.Server
	logger *slog.Logger
}

// NewServer creates an MCP server with no tools registered.
// Tools are added by the caller through SDK().
func NewServer(name, version string, logger *slog.Logger) *Server {
	return &Server{
		sdk:    sdkmcp.NewServer(&sdkmcp.Implementation{Name: name, Version: version}, nil),
		logger: logger,
	}
}

// SDK returns the underlying SDK server for tool registration.
func (s *Server) SDK() *sdkmcp.Server {
	return s.sdk
}

// Handler returns the Streamable HTTP handler. Stateless mode ignores stale
// session IDs left over from a restart; every request gets a fresh session.
func (s *Server) Handler() http.Handler {
	return sdkmcp.NewStreamableHTTPHandler(
		func(*http.Request) *sdkmcp.Server { return s.sdk },
		&sdkmcp.StreamableHTTPOptions{Stateless: true},
	)
}

// Mux mounts the handler on /mcp and on the root path.
func (s *Server) Mux() *http.ServeMux {
	h := s.Handler()
	mux := http.NewServeMux()
	mux.Handle("/mcp", h)
	mux.Handle("/", h)
	s.logger.Debug("mcp handler mounted", slog.String("path", "/mcp"))
	return mux
}
