package mcp

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/a3tai/mcp-formcalc/internal/descriptions"
	"github.com/a3tai/mcp-formcalc/internal/formcalc"
	"github.com/a3tai/mcp-formcalc/internal/formcalc/analysis"
	"github.com/a3tai/mcp-formcalc/internal/formcalc/encode"
	"github.com/a3tai/mcp-formcalc/internal/xfa"
)

func (s *Server) handleFormCalcParse(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	source, err := request.RequireString("source")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	args := request.GetArguments()
	format := encode.FormatJSON
	if name, ok := args["format"].(string); ok {
		format, err = encode.ParseFormat(name)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if format.IsBinary() {
			return mcp.NewToolResultError(fmt.Sprintf("format %s is binary and cannot be returned as text", format)), nil
		}
	}
	includeReport := boolArg(args, "include_report", true)

	list, err := s.parse(source)
	if err != nil {
		return mcp.NewToolResultError(formatParseError(err)), nil
	}

	payload := map[string]any{"ast": formcalc.Dump(list)}
	if includeReport {
		payload["report"] = analysis.Analyze(list)
	}
	data, err := encode.Marshal(payload, format)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(string(data)), nil
}

func (s *Server) handleFormCalcValidate(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	source, err := request.RequireString("source")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	list, err := s.parse(source)
	if err != nil {
		return mcp.NewToolResultText("FormCalc script is invalid\n" + formatParseError(err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("FormCalc script is valid (%d statement(s))", len(list.Exprs))), nil
}

func (s *Server) handleFormCalcBuiltins(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	if name, ok := args["name"].(string); ok && name != "" {
		category, found := formcalc.BuiltinCategoryOf(name)
		if !found {
			text := fmt.Sprintf("%s is not a FormCalc builtin", name)
			if suggestion := analysis.Suggest(name, formcalc.Builtins()); suggestion != "" {
				text += fmt.Sprintf(" (did you mean %s?)", suggestion)
			}
			return mcp.NewToolResultText(text), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("%s is a FormCalc builtin in category %s",
			strings.ToLower(name), category)), nil
	}

	byCategory := formcalc.BuiltinsByCategory()
	if category, ok := args["category"].(string); ok && category != "" {
		names, found := byCategory[formcalc.BuiltinCategory(strings.ToLower(category))]
		if !found {
			return mcp.NewToolResultError(fmt.Sprintf("unknown builtin category: %s", category)), nil
		}
		return mcp.NewToolResultText(formatBuiltinCategory(strings.ToLower(category), names)), nil
	}

	return mcp.NewToolResultText(formatBuiltins(byCategory)), nil
}

func (s *Server) handlePDFFormCalcScripts(ctx context.Context, request mcp.CallToolRequest) (
	*mcp.CallToolResult, error,
) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	includeAST := boolArg(request.GetArguments(), "include_ast", true)

	result, err := s.xfaService.Scripts(ctx, path)
	if err != nil {
		if errors.Is(err, xfa.ErrNoXFA) {
			return mcp.NewToolResultText(fmt.Sprintf("No XFA form found in %s", path)), nil
		}
		return mcp.NewToolResultError(err.Error()), nil
	}

	text, err := formatScriptsResult(result, includeAST)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(text), nil
}

func (s *Server) handleServerInfo(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	forms, err := s.xfaService.Forms()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	info := &ServerInfo{
		ServerName:       s.config.ServerName,
		Version:          s.config.Version,
		DefaultDirectory: s.xfaService.Directory(),
		MaxFileSize:      s.config.MaxFileSize,
		MaxScriptSize:    s.xfaService.MaxScriptSize(),
		Reader:           string(s.xfaService.ReaderType()),
		Forms:            forms,
	}
	for _, format := range encode.Formats() {
		if !format.IsBinary() {
			info.OutputFormats = append(info.OutputFormats, string(format))
		}
	}
	for _, name := range descriptions.GetAllToolNames() {
		info.AvailableTools = append(info.AvailableTools, ToolInfo{
			Name:        name,
			Description: descriptions.Summary(name),
		})
	}

	return mcp.NewToolResultText(formatServerInfo(info)), nil
}

func (s *Server) parse(source string) (*formcalc.ExprList, error) {
	return formcalc.ParseWithOptions(source, formcalc.WithMaxSourceSize(s.xfaService.MaxScriptSize()))
}

func boolArg(args map[string]any, name string, def bool) bool {
	if v, ok := args[name].(bool); ok {
		return v
	}
	return def
}
