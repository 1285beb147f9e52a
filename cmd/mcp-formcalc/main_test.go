package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/a3tai/mcp-formcalc/internal/config"
)

const testVersion = "1.2.3"

func TestPrintVersion(t *testing.T) {
	oldVersion, oldBuildTime, oldGitCommit := version, buildTime, gitCommit
	defer func() {
		version, buildTime, gitCommit = oldVersion, oldBuildTime, oldGitCommit
	}()

	version = testVersion
	buildTime = "2025-06-01_10:30:00"
	gitCommit = "abc123"

	var buf bytes.Buffer
	printVersion(&buf)
	output := buf.String()

	expectedStrings := []string{
		"MCP FormCalc",
		"Version: " + testVersion,
		"Build Time: 2025-06-01_10:30:00",
		"Git Commit: abc123",
		"Built with:",
	}
	for _, expected := range expectedStrings {
		if !strings.Contains(output, expected) {
			t.Errorf("printVersion() output missing expected string: %s\nActual output:\n%s", expected, output)
		}
	}
}

func TestSetupLogging(t *testing.T) {
	originalOutput := log.Writer()
	originalFlags := log.Flags()
	defer func() {
		log.SetOutput(originalOutput)
		log.SetFlags(originalFlags)
	}()

	tests := []struct {
		name       string
		config     *config.Config
		wantOutput bool
		wantFlags  int
	}{
		{"stdio mode - debug enabled", &config.Config{Mode: "stdio", LogLevel: "debug"}, true, log.LstdFlags},
		{"stdio mode - debug disabled", &config.Config{Mode: "stdio", LogLevel: "info"}, false, log.LstdFlags},
		{"server mode", &config.Config{Mode: "server", LogLevel: "info"}, true, log.LstdFlags | log.Lshortfile},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stderr bytes.Buffer
			setupLogging(tt.config, &stderr)
			log.Print("probe")

			if got := stderr.Len() > 0; got != tt.wantOutput {
				t.Errorf("setupLogging() wrote output = %v, want %v", got, tt.wantOutput)
			}
			if !tt.wantOutput && log.Writer() != io.Discard {
				t.Error("setupLogging() should discard logs in non-debug stdio mode")
			}
			if log.Flags() != tt.wantFlags {
				t.Errorf("setupLogging() flags = %d, want %d", log.Flags(), tt.wantFlags)
			}
		})
	}
}

func TestRun_Version(t *testing.T) {
	var stdout, stderr bytes.Buffer
	if err := run(context.Background(), []string{"--version"}, &stdout, &stderr); err != nil {
		t.Fatalf("run() unexpected error: %v", err)
	}
	if !strings.Contains(stdout.String(), "MCP FormCalc") {
		t.Errorf("run(--version) output = %q", stdout.String())
	}
}

func TestRun_Help(t *testing.T) {
	var stdout, stderr bytes.Buffer
	if err := run(context.Background(), []string{"--help"}, &stdout, &stderr); err != nil {
		t.Fatalf("run() unexpected error: %v", err)
	}
	if !strings.Contains(stderr.String(), "Usage of mcp-formcalc") {
		t.Errorf("run(--help) should print usage, got %q", stderr.String())
	}
}

func TestRun_InvalidConfiguration(t *testing.T) {
	var stdout, stderr bytes.Buffer
	err := run(context.Background(), []string{"--reader=poppler", "--dir=" + t.TempDir()}, &stdout, &stderr)
	if err == nil || !strings.Contains(err.Error(), "failed to load configuration") {
		t.Errorf("run() error = %v, want a configuration error", err)
	}
}

func TestRun_ServerMode(t *testing.T) {
	originalOutput := log.Writer()
	originalFlags := log.Flags()
	defer func() {
		log.SetOutput(originalOutput)
		log.SetFlags(originalFlags)
	}()

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to find a free port: %v", err)
	}
	port := listener.Addr().(*net.TCPAddr).Port
	listener.Close()

	ctx, cancel := context.WithCancel(context.Background())
	args := []string{"--mode=server", fmt.Sprintf("--port=%d", port), "--dir=" + t.TempDir()}

	var stdout, stderr bytes.Buffer
	done := make(chan error, 1)
	go func() {
		done <- run(ctx, args, &stdout, &stderr)
	}()

	addr := fmt.Sprintf("127.0.0.1:%d", port)
	deadline := time.Now().Add(2 * time.Second)
	for {
		conn, err := net.DialTimeout("tcp", addr, 50*time.Millisecond)
		if err == nil {
			conn.Close()
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("server did not start listening on %s", addr)
		}
		time.Sleep(10 * time.Millisecond)
	}
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("run() error = %v", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("run() did not return after cancellation")
	}
}

func TestNewServer(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.PDFDirectory = t.TempDir()

	if _, err := newServer(cfg); err != nil {
		t.Errorf("newServer() unexpected error: %v", err)
	}

	cfg.Reader = "poppler"
	if _, err := newServer(cfg); err == nil {
		t.Error("newServer() expected error for an unknown reader")
	}
}
