package mcp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/a3tai/mcp-formcalc/internal/config"
	"github.com/a3tai/mcp-formcalc/internal/descriptions"
	"github.com/a3tai/mcp-formcalc/internal/xfa"
)

const shutdownTimeout = 5 * time.Second

// Server represents the MCP server instance
type Server struct {
	config     *config.Config
	xfaService *xfa.Service
	mcpServer  *server.MCPServer

	stdin  io.Reader
	stdout io.Writer
}

// NewServer creates a new MCP server instance
func NewServer(cfg *config.Config, xfaService *xfa.Service) (*Server, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}
	if xfaService == nil {
		return nil, errors.New("xfaService cannot be nil")
	}

	mcpServer := server.NewMCPServer(
		cfg.ServerName,
		cfg.Version,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	)

	s := &Server{
		config:     cfg,
		xfaService: xfaService,
		mcpServer:  mcpServer,
		stdin:      os.Stdin,
		stdout:     os.Stdout,
	}

	s.registerTools()

	return s, nil
}

// registerTools registers all available MCP tools
func (s *Server) registerTools() {
	formcalcParseTool := mcp.NewTool(
		"formcalc_parse",
		mcp.WithDescription(descriptions.GetToolDescription("formcalc_parse")),
		mcp.WithString("source",
			mcp.Required(),
			mcp.Description("FormCalc source code"),
		),
		mcp.WithString("format",
			mcp.Description("Output format for the tree and report"),
			mcp.Enum("json", "yaml"),
		),
		mcp.WithBoolean("include_report",
			mcp.Description("Include the static analysis report (default true)"),
		),
	)
	s.mcpServer.AddTool(formcalcParseTool, s.handleFormCalcParse)

	formcalcValidateTool := mcp.NewTool(
		"formcalc_validate",
		mcp.WithDescription(descriptions.GetToolDescription("formcalc_validate")),
		mcp.WithString("source",
			mcp.Required(),
			mcp.Description("FormCalc source code"),
		),
	)
	s.mcpServer.AddTool(formcalcValidateTool, s.handleFormCalcValidate)

	formcalcBuiltinsTool := mcp.NewTool(
		"formcalc_builtins",
		mcp.WithDescription(descriptions.GetToolDescription("formcalc_builtins")),
		mcp.WithString("name",
			mcp.Description("Look up a single function by name (case-insensitive)"),
		),
		mcp.WithString("category",
			mcp.Description("Only list functions of this category"),
		),
	)
	s.mcpServer.AddTool(formcalcBuiltinsTool, s.handleFormCalcBuiltins)

	pdfScriptsTool := mcp.NewTool(
		"pdf_formcalc_scripts",
		mcp.WithDescription(descriptions.GetToolDescription("pdf_formcalc_scripts")),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Path to the XFA PDF, relative to the configured directory or absolute inside it"),
		),
		mcp.WithBoolean("include_ast",
			mcp.Description("Include the syntax tree of each parsed script (default true)"),
		),
	)
	s.mcpServer.AddTool(pdfScriptsTool, s.handlePDFFormCalcScripts)

	serverInfoTool := mcp.NewTool(
		"formcalc_server_info",
		mcp.WithDescription(descriptions.GetToolDescription("formcalc_server_info")),
	)
	s.mcpServer.AddTool(serverInfoTool, s.handleServerInfo)
}

// Run starts the MCP server in the configured mode
func (s *Server) Run(ctx context.Context) error {
	if s.config.IsServerMode() {
		return s.runServerMode(ctx)
	}
	return s.runStdioMode(ctx)
}

// runStdioMode serves MCP over standard I/O until stdin closes or ctx is done
func (s *Server) runStdioMode(ctx context.Context) error {
	if s.config.IsDebug() {
		log.Printf("Starting FormCalc MCP server in stdio mode")
		log.Printf("PDF directory: %s", s.config.PDFDirectory)
	}

	stdioServer := server.NewStdioServer(s.mcpServer)
	stdioServer.SetErrorLogger(log.Default())
	if err := stdioServer.Listen(ctx, s.stdin, s.stdout); err != nil && !errors.Is(err, context.Canceled) &&
		!errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("failed to serve stdio: %w", err)
	}
	return nil
}

// runServerMode serves MCP over HTTP with server-sent events
func (s *Server) runServerMode(ctx context.Context) error {
	addr := s.config.Address()
	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL("http://"+addr))

	log.Printf("Starting FormCalc MCP server on %s", addr)
	log.Printf("PDF directory: %s", s.config.PDFDirectory)

	errCh := make(chan error, 1)
	go func() {
		errCh <- sseServer.Start(addr)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("failed to serve HTTP: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := sseServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("failed to shut down HTTP server: %w", err)
		}
		log.Printf("FormCalc MCP server stopped")
		return nil
	}
}
