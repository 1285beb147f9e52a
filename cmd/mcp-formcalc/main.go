package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/a3tai/mcp-formcalc/internal/config"
	"github.com/a3tai/mcp-formcalc/internal/mcp"
	"github.com/a3tai/mcp-formcalc/internal/xfa"
)

var (
	version   = "dev"     // This will be set by build flags
	buildTime = "unknown" // This will be set by build flags
	gitCommit = "unknown" // This will be set by build flags
)

// setupLogging configures logging based on the server mode
func setupLogging(cfg *config.Config, stderr io.Writer) {
	if cfg.IsStdioMode() {
		// stdout carries the MCP protocol, so logs go to stderr and only in debug
		log.SetFlags(log.LstdFlags)
		if cfg.IsDebug() {
			log.SetOutput(stderr)
		} else {
			log.SetOutput(io.Discard)
		}
		return
	}
	log.SetOutput(stderr)
	log.SetFlags(log.LstdFlags | log.Lshortfile)
}

// newServer wires the XFA service and the MCP server for cfg
func newServer(cfg *config.Config) (*mcp.Server, error) {
	readerType, err := xfa.ParseReaderType(cfg.Reader)
	if err != nil {
		return nil, err
	}

	xfaService, err := xfa.NewService(xfa.Config{
		Directory:     cfg.PDFDirectory,
		MaxFileSize:   cfg.MaxFileSize,
		MaxScriptSize: cfg.MaxScriptSize,
		Reader:        readerType,
		Debug:         cfg.IsDebug(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create XFA service: %w", err)
	}

	return mcp.NewServer(cfg, xfaService)
}

// run loads the configuration from args and serves until ctx is done or the
// transport stops
func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	cfg, err := config.Load(args, stderr)
	if errors.Is(err, config.ErrVersionRequested) {
		printVersion(stdout)
		return nil
	}
	if errors.Is(err, pflag.ErrHelp) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	setupLogging(cfg, stderr)

	if version != "dev" {
		cfg.Version = version
	}

	if cfg.IsDebug() {
		log.Printf("Starting with configuration: %s", cfg.String())
	}

	server, err := newServer(cfg)
	if err != nil {
		return fmt.Errorf("failed to create MCP server: %w", err)
	}

	if err := server.Run(ctx); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	log.Println("Server stopped successfully")
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

// printVersion prints version information
func printVersion(w io.Writer) {
	fmt.Fprintf(w, "MCP FormCalc\n")
	fmt.Fprintf(w, "Version: %s\n", version)
	fmt.Fprintf(w, "Build Time: %s\n", buildTime)
	fmt.Fprintf(w, "Git Commit: %s\n", gitCommit)
	fmt.Fprintf(w, "Built with: %s\n", runtime.Version())
}
