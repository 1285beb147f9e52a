package xfa

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/a3tai/mcp-formcalc/internal/formcalc"
	"github.com/a3tai/mcp-formcalc/internal/formcalc/analysis"
	"github.com/a3tai/mcp-formcalc/internal/security"
)

// Config configures a Service
type Config struct {
	Directory     string
	MaxFileSize   int64
	MaxScriptSize int
	Reader        ReaderType
	Debug         bool
}

// ScriptError describes why a script was rejected
type ScriptError struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
	Offset  int    `json:"offset"`
}

// ScriptResult is one script and the outcome of parsing it
type ScriptResult struct {
	Script
	AST    any              `json:"ast,omitempty"`
	Report *analysis.Report `json:"report,omitempty"`
	Error  *ScriptError     `json:"error,omitempty"`
}

// ScriptsResult lists the FormCalc scripts of one document
type ScriptsResult struct {
	Path    string         `json:"path"`
	Reader  ReaderType     `json:"reader"`
	Scripts []ScriptResult `json:"scripts"`
	Parsed  int            `json:"parsed"`
	Failed  int            `json:"failed"`
	Skipped int            `json:"skipped_non_formcalc"`
}

// Service extracts and parses FormCalc scripts from PDF files inside a
// configured directory
type Service struct {
	validator     *security.PathValidator
	reader        PacketReader
	maxFileSize   int64
	maxScriptSize int
	debug         bool
}

// NewService creates a service with the reader named in cfg
func NewService(cfg Config) (*Service, error) {
	reader, err := NewPacketReader(cfg.Reader, cfg.Debug)
	if err != nil {
		return nil, err
	}
	return NewServiceWithReader(cfg, reader)
}

// NewServiceWithReader creates a service that reads packets with reader
func NewServiceWithReader(cfg Config, reader PacketReader) (*Service, error) {
	validator, err := security.NewPathValidator(cfg.Directory)
	if err != nil {
		return nil, fmt.Errorf("failed to create path validator: %w", err)
	}
	return &Service{
		validator:     validator,
		reader:        reader,
		maxFileSize:   cfg.MaxFileSize,
		maxScriptSize: cfg.MaxScriptSize,
		debug:         cfg.Debug,
	}, nil
}

// Directory returns the directory PDF paths are confined to
func (s *Service) Directory() string {
	return s.validator.Root()
}

// ReaderType returns the configured packet reader
func (s *Service) ReaderType() ReaderType {
	return s.reader.Type()
}

// MaxScriptSize returns the source size limit applied to each script
func (s *Service) MaxScriptSize() int {
	return s.maxScriptSize
}

// Scripts reads the XFA form of the PDF at path and parses every FormCalc
// script in it. A script that fails to parse is reported and skipped; it
// does not fail the document.
func (s *Service) Scripts(ctx context.Context, path string) (*ScriptsResult, error) {
	resolved, _, err := s.validator.ResolveFile(path, s.maxFileSize)
	if err != nil {
		return nil, fmt.Errorf("security validation failed: %w", err)
	}

	xdp, err := s.reader.ReadXFA(resolved)
	if err != nil {
		return nil, fmt.Errorf("failed to read XFA from %s: %w", path, err)
	}

	result, err := s.ParseXDP(ctx, xdp)
	if err != nil {
		return nil, err
	}
	result.Path = resolved
	return result, nil
}

// ParseXDP parses the FormCalc scripts of an XDP document
func (s *Service) ParseXDP(ctx context.Context, xdp []byte) (*ScriptsResult, error) {
	extraction, err := ExtractScripts(xdp)
	if err != nil {
		return nil, err
	}

	result := &ScriptsResult{
		Reader:  s.reader.Type(),
		Scripts: make([]ScriptResult, 0, len(extraction.Scripts)),
		Skipped: extraction.Skipped,
	}

	for _, script := range extraction.Scripts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		sr := ScriptResult{Script: script}
		list, err := formcalc.ParseWithOptions(script.Source, formcalc.WithMaxSourceSize(s.maxScriptSize))
		if err != nil {
			sr.Error = scriptError(err)
			result.Failed++
			if s.debug {
				log.Printf("Skipping script %d at %s: %v", script.Index, script.SomPath, err)
			}
		} else {
			sr.AST = formcalc.Dump(list)
			sr.Report = analysis.Analyze(list)
			result.Parsed++
		}
		result.Scripts = append(result.Scripts, sr)
	}

	return result, nil
}

func scriptError(err error) *ScriptError {
	var pe *formcalc.ParseError
	if errors.As(err, &pe) {
		return &ScriptError{Kind: pe.Kind.String(), Message: pe.Error(), Offset: pe.Pos}
	}
	return &ScriptError{Kind: "unknown", Message: err.Error(), Offset: -1}
}

// FormFile is a PDF in the configured directory
type FormFile struct {
	Name string `json:"name"`
	Size int64  `json:"size"`
}

// Forms lists the PDF files directly inside the configured directory,
// sorted by name
func (s *Service) Forms() ([]FormFile, error) {
	entries, err := os.ReadDir(s.validator.Root())
	if err != nil {
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}

	var forms []FormFile
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".pdf") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		forms = append(forms, FormFile{Name: entry.Name(), Size: info.Size()})
	}
	return forms, nil
}
