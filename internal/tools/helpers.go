// Package tools implements the MCP tool handlers.
//
// Each file holds one area's tools (messages, tasks, groups, system).
// Tools depend on the chat engines through their structs and never
// touch the JSON documents directly. Domain rejections (bad input,
// missing records, permission failures) are reported to the model as
// tool-result errors; only infrastructure faults surface as Go errors.
package tools

import (
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

// intArg reads a numeric argument. JSON numbers arrive as float64.
func intArg(req mcp.CallToolRequest, key string, def int) int {
	if v, ok := req.GetArguments()[key].(float64); ok {
		return int(v)
	}
	return def
}

// boolArg reads a boolean argument.
func boolArg(req mcp.CallToolRequest, key string, def bool) bool {
	if v, ok := req.GetArguments()[key].(bool); ok {
		return v
	}
	return def
}

// stringSliceArg reads an array-of-strings argument, skipping non-string
// elements.
func stringSliceArg(req mcp.CallToolRequest, key string) []string {
	raw, ok := req.GetArguments()[key].([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// splitRecipients splits an "&"-separated recipient list, trimming
// whitespace and dropping empty parts.
func splitRecipients(s string) []string {
	var out []string
	for _, part := range strings.Split(s, "&") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
