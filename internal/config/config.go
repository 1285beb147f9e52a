package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	// Mode constants
	ModeStdio  = "stdio"
	ModeServer = "server"

	// Reader constants, matching the xfa package reader names
	ReaderAuto       = "auto"
	ReaderPDFCPU     = "pdfcpu"
	ReaderLedongthuc = "ledongthuc"

	// Default values
	DefaultPort          = 8080
	DefaultHost          = "127.0.0.1"
	DefaultLogLevel      = "info"
	DefaultMaxFileSize   = 100 * 1024 * 1024 // 100MB
	DefaultMaxScriptSize = 256 * 1024        // 256KB of FormCalc source
	DefaultReader        = ReaderAuto

	// EnvPrefix prefixes every environment variable, e.g. MCP_FORMCALC_PORT
	EnvPrefix = "MCP_FORMCALC"

	// Directory permissions
	DefaultDirPerm = 0o750
)

// ErrVersionRequested is returned by Load when --version was passed
var ErrVersionRequested = errors.New("version requested")

// Config holds all configuration for the FormCalc MCP server
type Config struct {
	// Server configuration
	Mode string // "server" or "stdio"
	Host string
	Port int

	// Directory that PDF paths are confined to
	PDFDirectory string

	// Parsing limits
	MaxFileSize   int64 // Maximum PDF file size in bytes
	MaxScriptSize int   // Maximum FormCalc source size in bytes
	Reader        string

	// Application configuration
	Version    string
	ServerName string
	LogLevel   string
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	currentDir, err := os.Getwd()
	if err != nil {
		currentDir = "."
	}

	return &Config{
		Mode:          ModeStdio,
		Host:          DefaultHost,
		Port:          DefaultPort,
		PDFDirectory:  currentDir,
		MaxFileSize:   DefaultMaxFileSize,
		MaxScriptSize: DefaultMaxScriptSize,
		Reader:        DefaultReader,
		Version:       "1.0.0",
		ServerName:    "mcp-formcalc",
		LogLevel:      DefaultLogLevel,
	}
}

// LoadFromFlags loads the configuration from the process arguments and
// environment
func LoadFromFlags() (*Config, error) {
	return Load(os.Args[1:], os.Stderr)
}

// Load parses args with environment fallbacks. Flags win over environment
// variables, which win over defaults. Usage goes to usage on --help.
func Load(args []string, usage io.Writer) (*Config, error) {
	for _, arg := range args {
		if arg == "-version" || arg == "--version" || arg == "-v" {
			return nil, ErrVersionRequested
		}
	}

	cfg := DefaultConfig()
	v := newViper(cfg)
	flags := newFlagSet(cfg, usage)
	if err := flags.Parse(args); err != nil {
		return nil, err
	}
	if err := v.BindPFlags(flags); err != nil {
		return nil, fmt.Errorf("failed to bind flags: %w", err)
	}

	cfg.Mode = v.GetString("mode")
	cfg.Host = v.GetString("host")
	cfg.Port = v.GetInt("port")
	cfg.PDFDirectory = v.GetString("dir")
	cfg.LogLevel = strings.ToLower(v.GetString("loglevel"))
	cfg.MaxFileSize = v.GetInt64("maxfilesize")
	cfg.MaxScriptSize = v.GetInt("maxscriptsize")
	cfg.Reader = strings.ToLower(v.GetString("reader"))

	if cfg.PDFDirectory != "" {
		if expandedPath, err := filepath.Abs(cfg.PDFDirectory); err == nil {
			cfg.PDFDirectory = expandedPath
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func newViper(cfg *Config) *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	v.SetDefault("mode", cfg.Mode)
	v.SetDefault("host", cfg.Host)
	v.SetDefault("port", cfg.Port)
	v.SetDefault("dir", cfg.PDFDirectory)
	v.SetDefault("loglevel", cfg.LogLevel)
	v.SetDefault("maxfilesize", cfg.MaxFileSize)
	v.SetDefault("maxscriptsize", cfg.MaxScriptSize)
	v.SetDefault("reader", cfg.Reader)
	return v
}

func newFlagSet(cfg *Config, usage io.Writer) *pflag.FlagSet {
	flags := pflag.NewFlagSet("mcp-formcalc", pflag.ContinueOnError)
	flags.SetOutput(usage)

	flags.String("mode", cfg.Mode, "Server mode: 'stdio' for MCP standard I/O, 'server' for HTTP server")
	flags.String("host", cfg.Host, "Server host address (server mode only)")
	flags.Int("port", cfg.Port, "Server port (server mode only)")
	flags.String("dir", cfg.PDFDirectory, "Directory containing XFA PDF forms")
	flags.String("loglevel", cfg.LogLevel, "Log level (debug, info, warn, error)")
	flags.Int64("maxfilesize", cfg.MaxFileSize, "Maximum PDF file size in bytes")
	flags.Int("maxscriptsize", cfg.MaxScriptSize, "Maximum FormCalc script size in bytes")
	flags.String("reader", cfg.Reader, "XFA packet reader: auto, pdfcpu or ledongthuc")

	flags.Usage = func() {
		fmt.Fprintf(usage, "Usage of mcp-formcalc:\n")
		fmt.Fprintf(usage, "\nMCP FormCalc - A Model Context Protocol server that parses FormCalc scripts\n\n")
		fmt.Fprintf(usage, "Options:\n")
		flags.PrintDefaults()
		fmt.Fprintf(usage, "\nExamples:\n")
		fmt.Fprintf(usage, "  mcp-formcalc                                   # stdio mode, current directory\n")
		fmt.Fprintf(usage, "  mcp-formcalc --dir=/path/to/forms              # stdio mode with custom directory\n")
		fmt.Fprintf(usage, "  mcp-formcalc --mode=server --port=8081         # server mode\n")
		fmt.Fprintf(usage, "  mcp-formcalc --reader=ledongthuc               # force the fallback reader\n")
		fmt.Fprintf(usage, "\nEnvironment Variables:\n")
		for _, name := range []string{"mode", "host", "port", "dir", "loglevel", "maxfilesize", "maxscriptsize", "reader"} {
			fmt.Fprintf(usage, "  %s_%s\n", EnvPrefix, strings.ToUpper(name))
		}
	}
	return flags
}

var (
	validReaders   = []string{ReaderAuto, ReaderPDFCPU, ReaderLedongthuc}
	validLogLevels = []string{"debug", "info", "warn", "error"}
)

// Validate reports the first invalid setting. A missing PDF directory is
// created.
func (c *Config) Validate() error {
	switch {
	case c.Mode != ModeStdio && c.Mode != ModeServer:
		return fmt.Errorf("mode must be either '%s' or '%s'", ModeStdio, ModeServer)
	case c.IsServerMode() && (c.Port < 1 || c.Port > 65535):
		return errors.New("port must be between 1 and 65535")
	case c.MaxFileSize <= 0:
		return errors.New("maximum file size must be positive")
	case c.MaxScriptSize <= 0:
		return errors.New("maximum script size must be positive")
	case !slices.Contains(validReaders, c.Reader):
		return fmt.Errorf("invalid reader: %s (must be one of: %s)", c.Reader, strings.Join(validReaders, ", "))
	case !slices.Contains(validLogLevels, c.LogLevel):
		return fmt.Errorf("invalid log level: %s (must be one of: %s)", c.LogLevel, strings.Join(validLogLevels, ", "))
	}
	return c.ensureDirectory()
}

func (c *Config) ensureDirectory() error {
	if c.PDFDirectory == "" {
		return errors.New("PDF directory cannot be empty")
	}
	info, err := os.Stat(c.PDFDirectory)
	switch {
	case os.IsNotExist(err):
		if err := os.MkdirAll(c.PDFDirectory, DefaultDirPerm); err != nil {
			return fmt.Errorf("cannot create PDF directory %s: %w", c.PDFDirectory, err)
		}
		return nil
	case err != nil:
		return fmt.Errorf("cannot access PDF directory %s: %w", c.PDFDirectory, err)
	case !info.IsDir():
		return fmt.Errorf("PDF directory %s is not a directory", c.PDFDirectory)
	}
	return nil
}

// Address returns the server address as host:port
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// IsDebug returns true if debug logging is enabled
func (c *Config) IsDebug() bool {
	return c.LogLevel == "debug"
}

// String returns a string representation of the configuration
func (c *Config) String() string {
	return fmt.Sprintf("Config{Mode: %s, Host: %s, Port: %d, PDFDirectory: %s, LogLevel: %s, "+
		"MaxFileSize: %d, MaxScriptSize: %d, Reader: %s}",
		c.Mode, c.Host, c.Port, c.PDFDirectory, c.LogLevel, c.MaxFileSize, c.MaxScriptSize, c.Reader)
}

// IsServerMode returns true if the server is running in HTTP server mode
func (c *Config) IsServerMode() bool {
	return c.Mode == ModeServer
}

// IsStdioMode returns true if the server is running in stdio mode
func (c *Config) IsStdioMode() bool {
	return c.Mode == ModeStdio
}
