package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/ovis-hpc/ldms-appsampler/internal/catalog"
)

// handleListTrackedSets reports registry size and handler vector
// length, the two numbers most useful for confirming a sampler
// instance is actually doing work.
func (s *Server) handleListTrackedSets(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	summary := map[string]interface{}{
		"tracked_sets":      s.sampler.TrackedSetCount(),
		"handlers_per_tick": s.sampler.HandlerCount(),
	}
	jsonData, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return errResult(fmt.Sprintf("json marshal failed: %v", err)), nil
	}
	return newTextResult(string(jsonData)), nil
}

// handleDescribeCatalog lists every catalog metric name, flagging
// which ones are enabled on this instance.
func (s *Server) handleDescribeCatalog(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	type entry struct {
		Name    string `json:"name"`
		Unit    string `json:"unit,omitempty"`
		Meta    bool   `json:"meta"`
		Enabled bool   `json:"enabled"`
	}

	enabled := make(map[string]bool)
	for _, name := range s.sampler.EnabledMetrics() {
		enabled[name] = true
	}

	var entries []entry
	for _, d := range catalog.Descriptors() {
		if d.Code == catalog.All {
			continue
		}
		entries = append(entries, entry{
			Name:    d.Name,
			Unit:    d.Unit,
			Meta:    d.Meta,
			Enabled: enabled[d.Name],
		})
	}

	jsonData, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return errResult(fmt.Sprintf("json marshal failed: %v", err)), nil
	}
	return newTextResult(string(jsonData)), nil
}

// handleSchemaSummary describes the built schema's field order, names
// and types.
func (s *Server) handleSchemaSummary(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sch := s.sampler.Schema()
	if sch == nil {
		return errResult("sampler is not configured yet"), nil
	}

	type field struct {
		Index    int    `json:"index"`
		Name     string `json:"name"`
		Type     string `json:"type"`
		ArrayLen int    `json:"array_len,omitempty"`
		Meta     bool   `json:"meta"`
	}

	fields := make([]field, 0, len(sch.Fields))
	for i, f := range sch.Fields {
		fields = append(fields, field{
			Index:    i + 1,
			Name:     f.Name,
			Type:     f.Type.String(),
			ArrayLen: f.ArrayLen,
			Meta:     f.Meta,
		})
	}

	jsonData, err := json.MarshalIndent(fields, "", "  ")
	if err != nil {
		return errResult(fmt.Sprintf("json marshal failed: %v", err)), nil
	}
	return newTextResult(string(jsonData)), nil
}

// newTextResult creates a successful MCP tool result with text content.
func newTextResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{
				Type: "text",
				Text: text,
			},
		},
	}
}

// errResult creates an MCP tool error result (IsError=true), a
// tool-level error rather than a transport-level JSON-RPC one.
func errResult(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{
			mcp.TextContent{
				Type: "text",
				Text: msg,
			},
		},
	}
}
