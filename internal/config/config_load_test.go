package config

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/pflag"
)

func TestLoad_DefaultConfig(t *testing.T) {
	cfg, err := Load(nil, &bytes.Buffer{})
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}

	if cfg.Mode != "stdio" {
		t.Errorf("Load() Mode = %v, want %v", cfg.Mode, "stdio")
	}
	if cfg.Port != 8080 {
		t.Errorf("Load() Port = %v, want %v", cfg.Port, 8080)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("Load() LogLevel = %v, want %v", cfg.LogLevel, "info")
	}
	if cfg.MaxScriptSize != DefaultMaxScriptSize {
		t.Errorf("Load() MaxScriptSize = %v, want %v", cfg.MaxScriptSize, DefaultMaxScriptSize)
	}
	if cfg.Reader != "auto" {
		t.Errorf("Load() Reader = %v, want %v", cfg.Reader, "auto")
	}
	if !filepath.IsAbs(cfg.PDFDirectory) {
		t.Errorf("Load() PDFDirectory = %v, want an absolute path", cfg.PDFDirectory)
	}
}

func TestLoad_ValidFlags(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name          string
		args          []string
		wantMode      string
		wantPort      int
		wantLogLevel  string
		wantScriptMax int
		wantReader    string
	}{
		{
			name:          "server mode with port",
			args:          []string{"--mode=server", "--port=9090", "--dir=" + dir},
			wantMode:      "server",
			wantPort:      9090,
			wantLogLevel:  "info",
			wantScriptMax: DefaultMaxScriptSize,
			wantReader:    "auto",
		},
		{
			name:          "debug logging and reader",
			args:          []string{"--loglevel", "DEBUG", "--reader", "Ledongthuc", "--dir", dir},
			wantMode:      "stdio",
			wantPort:      8080,
			wantLogLevel:  "debug",
			wantScriptMax: DefaultMaxScriptSize,
			wantReader:    "ledongthuc",
		},
		{
			name:          "script size",
			args:          []string{"--maxscriptsize=1024", "--dir=" + dir},
			wantMode:      "stdio",
			wantPort:      8080,
			wantLogLevel:  "info",
			wantScriptMax: 1024,
			wantReader:    "auto",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(tt.args, &bytes.Buffer{})
			if err != nil {
				t.Fatalf("Load() unexpected error: %v", err)
			}
			if cfg.Mode != tt.wantMode {
				t.Errorf("Load() Mode = %v, want %v", cfg.Mode, tt.wantMode)
			}
			if cfg.Port != tt.wantPort {
				t.Errorf("Load() Port = %v, want %v", cfg.Port, tt.wantPort)
			}
			if cfg.LogLevel != tt.wantLogLevel {
				t.Errorf("Load() LogLevel = %v, want %v", cfg.LogLevel, tt.wantLogLevel)
			}
			if cfg.MaxScriptSize != tt.wantScriptMax {
				t.Errorf("Load() MaxScriptSize = %v, want %v", cfg.MaxScriptSize, tt.wantScriptMax)
			}
			if cfg.Reader != tt.wantReader {
				t.Errorf("Load() Reader = %v, want %v", cfg.Reader, tt.wantReader)
			}
			if cfg.PDFDirectory != dir {
				t.Errorf("Load() PDFDirectory = %v, want %v", cfg.PDFDirectory, dir)
			}
		})
	}
}

func TestLoad_EnvironmentVariables(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("MCP_FORMCALC_MODE", "server")
	t.Setenv("MCP_FORMCALC_PORT", "7070")
	t.Setenv("MCP_FORMCALC_DIR", dir)
	t.Setenv("MCP_FORMCALC_READER", "pdfcpu")
	t.Setenv("MCP_FORMCALC_MAXSCRIPTSIZE", "2048")

	cfg, err := Load(nil, &bytes.Buffer{})
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}
	if cfg.Mode != "server" {
		t.Errorf("Load() Mode = %v, want server", cfg.Mode)
	}
	if cfg.Port != 7070 {
		t.Errorf("Load() Port = %v, want 7070", cfg.Port)
	}
	if cfg.PDFDirectory != dir {
		t.Errorf("Load() PDFDirectory = %v, want %v", cfg.PDFDirectory, dir)
	}
	if cfg.Reader != "pdfcpu" {
		t.Errorf("Load() Reader = %v, want pdfcpu", cfg.Reader)
	}
	if cfg.MaxScriptSize != 2048 {
		t.Errorf("Load() MaxScriptSize = %v, want 2048", cfg.MaxScriptSize)
	}

	// Flags take precedence over the environment
	cfg, err = Load([]string{"--port=6060"}, &bytes.Buffer{})
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}
	if cfg.Port != 6060 {
		t.Errorf("Load() Port = %v, want 6060", cfg.Port)
	}
}

func TestLoad_InvalidConfiguration(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name string
		args []string
	}{
		{"invalid mode", []string{"--mode=http", "--dir=" + dir}},
		{"invalid port", []string{"--mode=server", "--port=0", "--dir=" + dir}},
		{"invalid reader", []string{"--reader=poppler", "--dir=" + dir}},
		{"invalid log level", []string{"--loglevel=verbose", "--dir=" + dir}},
		{"zero script size", []string{"--maxscriptsize=0", "--dir=" + dir}},
		{"unknown flag", []string{"--colour"}},
		{"malformed number", []string{"--port=eighty"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load(tt.args, &bytes.Buffer{}); err == nil {
				t.Errorf("Load(%v) expected error, got nil", tt.args)
			}
		})
	}
}

func TestLoad_Version(t *testing.T) {
	for _, arg := range []string{"--version", "-version", "-v"} {
		_, err := Load([]string{"--dir=/nonexistent", arg}, &bytes.Buffer{})
		if !errors.Is(err, ErrVersionRequested) {
			t.Errorf("Load(%s) error = %v, want ErrVersionRequested", arg, err)
		}
	}
}

func TestLoad_Help(t *testing.T) {
	var usage bytes.Buffer
	_, err := Load([]string{"--help"}, &usage)
	if !errors.Is(err, pflag.ErrHelp) {
		t.Fatalf("Load(--help) error = %v, want pflag.ErrHelp", err)
	}

	out := usage.String()
	for _, want := range []string{"--maxscriptsize", "--reader", "MCP_FORMCALC_READER"} {
		if !strings.Contains(out, want) {
			t.Errorf("usage output missing %q", want)
		}
	}
}
