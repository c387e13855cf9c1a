// Package prompts implements the MCP prompt handlers.
//
// MCP prompts are user-triggered workflows (like slash commands) that
// instruct the AI to execute a specific sequence. Unlike tools (which
// the AI calls), prompts are initiated by the user.
package prompts

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

// StartPrompt handles the crew-start MCP prompt. It guides an agent
// through joining the team: register, check tasks, then stand by.
type StartPrompt struct{}

// NewStartPrompt creates a StartPrompt.
func NewStartPrompt() *StartPrompt {
	return &StartPrompt{}
}

// Definition returns the MCP prompt definition for registration.
func (p *StartPrompt) Definition() mcp.Prompt {
	return mcp.NewPrompt("crew-start",
		mcp.WithPromptDescription(
			"Join the agent team: register under a name, pick up any pending "+
				"tasks, and enter the standby loop to wait for work.",
		),
		mcp.WithArgument("agent_name",
			mcp.ArgumentDescription("Name to register under, e.g. a, b, manager"),
		),
		mcp.WithArgument("role",
			mcp.ArgumentDescription("Role for this agent, e.g. backend engineer. Optional when an employee config exists."),
		),
	)
}

// Handle processes the crew-start prompt request.
func (p *StartPrompt) Handle(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	agentName := "a"
	role := ""
	if args := req.Params.Arguments; args != nil {
		if name, ok := args["agent_name"]; ok && name != "" {
			agentName = name
		}
		if r, ok := args["role"]; ok {
			role = r
		}
	}

	roleClause := ""
	if role != "" {
		roleClause = fmt.Sprintf(" and role='%s'", role)
	}

	return &mcp.GetPromptResult{
		Description: fmt.Sprintf("Join the team as %s", agentName),
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.NewTextContent(fmt.Sprintf(
					"I want to work as agent '%s' on this team.\n\n"+
						"Please:\n"+
						"1. Run `register_agent` with agent_name='%s'%s\n"+
						"2. If registration reports pending tasks, start on the highest-priority one and set it 进行中 with `update_task_status`\n"+
						"3. Check `receive_messages` with unread_only=true for anything addressed to you\n"+
						"4. When there is nothing left to do, call `standby` and keep polling until new work arrives",
					agentName, agentName, roleClause,
				)),
			},
		},
	}, nil
}
