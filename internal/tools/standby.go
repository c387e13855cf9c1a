package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/crewchat/crewchat/internal/chat"
	"github.com/mark3labs/mcp-go/mcp"
)

// StandbyTool handles the standby MCP tool.
type StandbyTool struct {
	standby *chat.StandbyService
}

// NewStandbyTool creates a StandbyTool.
func NewStandbyTool(standby *chat.StandbyService) *StandbyTool {
	return &StandbyTool{standby: standby}
}

// Definition returns the MCP tool definition for registration.
func (t *StandbyTool) Definition() mcp.Tool {
	return mcp.NewTool("standby",
		mcp.WithDescription(
			"Wait for new work. The window is fixed at 5 minutes: call standby repeatedly; "+
				"it returns immediately each time. New tasks or unread messages end the wait, "+
				"otherwise keep polling until the window expires. Best called at the end of a reply.",
		),
		mcp.WithString("status_message",
			mcp.Description("What you are waiting on, shown in the standby state."),
		),
		mcp.WithBoolean("check_tasks",
			mcp.Description("Look for pending or in-progress tasks assigned to you (default true)."),
		),
		mcp.WithBoolean("check_messages",
			mcp.Description("Look for unread direct messages (default true)."),
		),
		mcp.WithBoolean("auto_read",
			mcp.Description("Include task descriptions and message bodies in the response (default true)."),
		),
	)
}

// Handle processes the standby tool call.
func (t *StandbyTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	opts := chat.StandbyOptions{
		CheckTasks:    boolArg(req, "check_tasks", true),
		CheckMessages: boolArg(req, "check_messages", true),
		AutoRead:      boolArg(req, "auto_read", true),
		StatusMessage: req.GetString("status_message", ""),
	}

	result, err := t.standby.Check(opts)
	if err != nil {
		return nil, err
	}

	if len(result.Tasks) > 0 || len(result.Messages) > 0 {
		var b strings.Builder
		b.WriteString("🔔 Standby check: new work found, back to it\n")

		if len(result.Tasks) > 0 {
			fmt.Fprintf(&b, "\n📋 Tasks (%d):\n", len(result.Tasks))
			shown := result.Tasks
			if len(shown) > 5 {
				shown = shown[:5]
			}
			for _, task := range shown {
				fmt.Fprintf(&b, "\n--- Task %s ---\n", task.ID)
				fmt.Fprintf(&b, "Title: %s\n", task.Title)
				fmt.Fprintf(&b, "Priority: %s\n", task.Priority)
				fmt.Fprintf(&b, "Status: %s\n", task.Status)
				if opts.AutoRead {
					fmt.Fprintf(&b, "Description: %s\n", task.Description)
				}
			}
		}

		if len(result.Messages) > 0 {
			fmt.Fprintf(&b, "\n📬 Unread messages (%d):\n", len(result.Messages))
			shown := result.Messages
			if len(shown) > 3 {
				shown = shown[:3]
			}
			for _, m := range shown {
				fmt.Fprintf(&b, "\n--- Message %s ---\n", m.ID)
				fmt.Fprintf(&b, "From: %s (%s)\n", m.Sender, m.SenderRole)
				fmt.Fprintf(&b, "Time: %s\n", m.Timestamp)
				if opts.AutoRead {
					fmt.Fprintf(&b, "Content: %s\n", m.Content)
				}
			}
		}
		return mcp.NewToolResultText(b.String()), nil
	}

	var b strings.Builder
	if result.Expired {
		b.WriteString("⌛ Standby window expired with no new work\n")
		b.WriteString("Call standby again to start a new 5-minute cycle")
		return mcp.NewToolResultText(b.String()), nil
	}

	b.WriteString("💤 Standing by: no new tasks or messages")
	if opts.StatusMessage != "" {
		fmt.Fprintf(&b, "\nStatus: %s", opts.StatusMessage)
	}
	fmt.Fprintf(&b, "\n\n⏱️ Elapsed %dm%ds / remaining %dm%ds",
		int(result.Elapsed)/60, int(result.Elapsed)%60,
		int(result.Remaining)/60, int(result.Remaining)%60)
	fmt.Fprintf(&b, "\nChecking tasks: %t", opts.CheckTasks)
	fmt.Fprintf(&b, "\nChecking messages: %t", opts.CheckMessages)
	b.WriteString("\n\n💡 Keep polling; new work returns immediately")
	return mcp.NewToolResultText(b.String()), nil
}
