// Package mcp exposes the analysis pipeline as Model Context Protocol tools.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	tlserver "github.com/acheong08/threatlens/internal/server"
	"github.com/acheong08/threatlens/pkg/models"
)

var toolDescriptions = map[models.AnalysisKind]struct{ tool, arg string }{
	models.KindCode: {
		"Assess a source code snippet for malicious intent, backdoors, obfuscation, and vulnerabilities",
		"Source code to analyze",
	},
	models.KindPackage: {
		"Assess an npm package (name or package.json) for supply-chain risk using live registry metadata",
		"Package name or package.json document",
	},
	models.KindURL: {
		"Assess a URL for phishing, homograph attacks, and malware delivery using structure, DNS, and redirect checks",
		"URL to analyze; http:// is assumed when no scheme is given",
	},
}

// ToolName returns the MCP tool name for kind
func ToolName(kind models.AnalysisKind) string {
	return "threatlens_analyze_" + string(kind)
}

// NewThreatLensMCPServer creates an MCP server with one analysis tool per input kind
func NewThreatLensMCPServer(pipeline *tlserver.Pipeline, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"threatlens",
		version,
		server.WithToolCapabilities(true),
	)

	for _, kind := range models.Kinds {
		desc := toolDescriptions[kind]
		s.AddTool(
			mcplib.NewTool(ToolName(kind),
				mcplib.WithDescription(desc.tool),
				mcplib.WithString("content",
					mcplib.Required(),
					mcplib.Description(desc.arg),
				),
			),
			handleAnalyze(pipeline, kind),
		)
	}

	return s
}

func handleAnalyze(pipeline *tlserver.Pipeline, kind models.AnalysisKind) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		content, err := request.RequireString("content")
		if err != nil {
			return errorResult(err.Error()), nil
		}

		if _, _, err := tlserver.Validate(string(kind), content); err != nil {
			return errorResult(err.Error()), nil
		}

		verdict, err := pipeline.Run(ctx, kind, content, nil)
		if err != nil {
			return errorResult(fmt.Sprintf("analysis failed: %v", err)), nil
		}
		return jsonResult(tlserver.ResultPayload{Type: kind, Result: verdict})
	}
}

// jsonResult marshals v as indented JSON text content
func jsonResult(v any) (*mcplib.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling result: %w", err)
	}
	return &mcplib.CallToolResult{
		Content: []mcplib.Content{mcplib.NewTextContent(string(data))},
	}, nil
}

func errorResult(msg string) *mcplib.CallToolResult {
	return &mcplib.CallToolResult{
		Content: []mcplib.Content{mcplib.NewTextContent(msg)},
		IsError: true,
	}
}
