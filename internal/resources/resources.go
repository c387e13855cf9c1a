// Package resources implements the MCP resource handlers.
//
// Resources provide read-only data that the host can consume for
// context. They use URI-based addressing (crewchat://...) following MCP
// conventions.
package resources

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/crewchat/crewchat/internal/chat"
	"github.com/mark3labs/mcp-go/mcp"
)

// Handler serves the team status resource.
type Handler struct {
	store chat.Store
}

// NewHandler creates a resource Handler.
func NewHandler(store chat.Store) *Handler {
	return &Handler{store: store}
}

// teamStatus is the JSON shape of the status resource.
type teamStatus struct {
	Agents       int            `json:"agents"`
	Messages     int            `json:"messages"`
	ActiveGroups int            `json:"active_groups"`
	TasksByState map[string]int `json:"tasks_by_state"`
}

// StatusResource returns the MCP resource definition for team status.
func (h *Handler) StatusResource() mcp.Resource {
	return mcp.NewResource(
		"crewchat://team/status",
		"Team Status",
		mcp.WithResourceDescription("Registered agents, message volume, active groups, and task counts by state"),
		mcp.WithMIMEType("application/json"),
	)
}

// HandleStatus returns the current team status as JSON.
func (h *Handler) HandleStatus(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	status := teamStatus{
		Agents:       len(h.store.Agents()),
		Messages:     len(h.store.Messages()),
		TasksByState: map[string]int{},
	}
	for _, g := range h.store.Groups() {
		if g.IsActive() {
			status.ActiveGroups++
		}
	}
	for _, t := range h.store.Tasks() {
		status.TasksByState[string(t.Status)]++
	}

	data, err := json.MarshalIndent(status, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling status: %w", err)
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
