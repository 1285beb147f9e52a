package mcp

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/a3tai/mcp-formcalc/internal/formcalc"
	"github.com/a3tai/mcp-formcalc/internal/formcalc/encode"
	"github.com/a3tai/mcp-formcalc/internal/xfa"
)

// maxListedForms caps the directory listing in the server info
const maxListedForms = 10

// ServerInfo describes the running server
type ServerInfo struct {
	ServerName       string         `json:"server_name"`
	Version          string         `json:"version"`
	DefaultDirectory string         `json:"default_directory"`
	MaxFileSize      int64          `json:"max_file_size"`
	MaxScriptSize    int            `json:"max_script_size"`
	Reader           string         `json:"reader"`
	OutputFormats    []string       `json:"output_formats"`
	AvailableTools   []ToolInfo     `json:"available_tools"`
	Forms            []xfa.FormFile `json:"forms"`
}

// ToolInfo represents information about an available tool
type ToolInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func formatParseError(err error) string {
	var pe *formcalc.ParseError
	if !errors.As(err, &pe) {
		return err.Error()
	}
	text := fmt.Sprintf("Error kind: %s\n", pe.Kind)
	if pe.Pos >= 0 {
		text += fmt.Sprintf("Offset: %d\n", pe.Pos)
	}
	if pe.Token != "" {
		text += fmt.Sprintf("Near: %s\n", pe.Token)
	}
	text += fmt.Sprintf("Message: %s", pe.Error())
	return text
}

func formatBuiltinCategory(category string, names []string) string {
	return fmt.Sprintf("%s (%d): %s\n", category, len(names), strings.Join(names, ", "))
}

func formatBuiltins(byCategory map[formcalc.BuiltinCategory][]string) string {
	categories := make([]string, 0, len(byCategory))
	total := 0
	for category, names := range byCategory {
		categories = append(categories, string(category))
		total += len(names)
	}
	sort.Strings(categories)

	text := fmt.Sprintf("FormCalc builtins: %d functions in %d categories\n\n", total, len(categories))
	for _, category := range categories {
		text += formatBuiltinCategory(category, byCategory[formcalc.BuiltinCategory(category)])
	}
	return text
}

func formatScriptsResult(result *xfa.ScriptsResult, includeAST bool) (string, error) {
	text := fmt.Sprintf("FormCalc scripts in: %s\n", result.Path)
	text += fmt.Sprintf("Reader: %s\n", result.Reader)
	text += fmt.Sprintf("Parsed: %d, Failed: %d, Skipped (not FormCalc): %d\n",
		result.Parsed, result.Failed, result.Skipped)

	for _, script := range result.Scripts {
		text += fmt.Sprintf("\n%d. %s", script.Index+1, scriptLocation(script.Script))
		text += fmt.Sprintf(" (line %d)\n", script.Line)
		text += fmt.Sprintf("   Source: %s\n", oneLine(script.Source))

		if script.Error != nil {
			text += fmt.Sprintf("   Error (%s at offset %d): %s\n", script.Error.Kind, script.Error.Offset, script.Error.Message)
			continue
		}

		report := script.Report
		if len(report.Variables) > 0 {
			text += fmt.Sprintf("   Variables: %s\n", strings.Join(report.Variables, ", "))
		}
		if len(report.Functions) > 0 {
			text += fmt.Sprintf("   Functions: %s\n", strings.Join(report.Functions, ", "))
		}
		if len(report.SomReferences) > 0 {
			text += fmt.Sprintf("   References: %s\n", strings.Join(report.SomReferences, ", "))
		}
		for _, call := range report.UnresolvedCalls {
			text += fmt.Sprintf("   Unresolved call: %s", call.Name)
			if call.Suggestion != "" {
				text += fmt.Sprintf(" (did you mean %s?)", call.Suggestion)
			}
			text += "\n"
		}
		if includeAST {
			data, err := encode.JSON(script.AST)
			if err != nil {
				return "", err
			}
			text += "   AST: " + strings.TrimSpace(string(data)) + "\n"
		}
	}

	return text, nil
}

func scriptLocation(script xfa.Script) string {
	location := script.SomPath
	if location == "" {
		location = "(root)"
	}
	if script.Name != "" {
		location += " script " + script.Name
	}
	if script.Event != "" {
		location += " on " + script.Event
	}
	return location
}

func oneLine(source string) string {
	fields := strings.Fields(source)
	line := strings.Join(fields, " ")
	if len(line) > 120 {
		line = line[:117] + "..."
	}
	return line
}

func formatServerInfo(info *ServerInfo) string {
	text := fmt.Sprintf("%s v%s - Server Information\n", info.ServerName, info.Version)
	text += fmt.Sprintf("Default Directory: %s\n", info.DefaultDirectory)
	text += fmt.Sprintf("Max File Size: %d MB\n", info.MaxFileSize/(1024*1024))
	text += fmt.Sprintf("Max Script Size: %d bytes\n", info.MaxScriptSize)
	text += fmt.Sprintf("XFA Reader: %s\n", info.Reader)
	text += fmt.Sprintf("Output Formats: %s\n\n", strings.Join(info.OutputFormats, ", "))

	if len(info.Forms) > 0 {
		text += fmt.Sprintf("Directory Contents (%d PDF files found):\n", len(info.Forms))
		for i, form := range info.Forms {
			if i >= maxListedForms {
				text += fmt.Sprintf("   ... and %d more files\n", len(info.Forms)-maxListedForms)
				break
			}
			text += fmt.Sprintf("   %d. %s (%d bytes)\n", i+1, form.Name, form.Size)
		}
		text += "\n"
	} else {
		text += "Directory Contents: No PDF files found in default directory\n\n"
	}

	text += "Available Tools:\n"
	for _, tool := range info.AvailableTools {
		text += fmt.Sprintf("• %s: %s\n", tool.Name, tool.Description)
	}

	return text
}
