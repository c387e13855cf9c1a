package tools

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/crewchat/crewchat/internal/chat"
	"github.com/crewchat/crewchat/internal/config"
	"github.com/crewchat/crewchat/internal/roles"
)

// RegisterAgentTool handles the register_agent MCP tool.
type RegisterAgentTool struct {
	store chat.Store
	id    *chat.Identity
	cfg   *config.Config
}

// NewRegisterAgentTool creates a RegisterAgentTool.
func NewRegisterAgentTool(store chat.Store, id *chat.Identity, cfg *config.Config) *RegisterAgentTool {
	return &RegisterAgentTool{store: store, id: id, cfg: cfg}
}

// Definition returns the MCP tool definition for registration.
func (t *RegisterAgentTool) Definition() mcp.Tool {
	return mcp.NewTool("register_agent",
		mcp.WithDescription(
			"Register this agent and open a session. Re-registering an existing name "+
				"inherits its previous role and picks up its pending tasks. With an "+
				"employee config set, role and description are read from the .mdc file.",
		),
		mcp.WithString("agent_name",
			mcp.Required(),
			mcp.Description("Agent name, e.g. a, b, c, d, manager."),
		),
		mcp.WithString("role",
			mcp.Description("Agent role, e.g. frontend engineer, backend engineer. Read from the .mdc file when an employee config is set."),
		),
		mcp.WithString("description",
			mcp.Description("What this agent does. Read from the .mdc file when an employee config is set."),
		),
		mcp.WithBoolean("auto_load_from_mdc",
			mcp.Description("Load role and description from the configured .mdc file (default true)."),
		),
	)
}

// Handle processes the register_agent tool call.
func (t *RegisterAgentTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name := req.GetString("agent_name", "")
	role := req.GetString("role", "")
	description := req.GetString("description", "")
	autoLoad := boolArg(req, "auto_load_from_mdc", true)

	if name == "" {
		return mcp.NewToolResultError("an agent name is required"), nil
	}

	if autoLoad {
		if mdcPath := chat.EmployeeMDCPath(t.store, name); mdcPath != "" {
			if !filepath.IsAbs(mdcPath) {
				mdcPath = filepath.Join(t.cfg.WorkspaceRoot, mdcPath)
			}
			mdcRole, mdcDescription := roles.LoadFile(mdcPath)
			if role == "" {
				role = mdcRole
			}
			if description == "" {
				description = mdcDescription
			}
		}
	}

	reg, err := t.id.Register(name, role, description)
	if err != nil {
		return mcp.NewToolResultError(err.Error() + "\nHint: set_employee_config lets register_agent load the role from an .mdc file"), nil
	}

	var b strings.Builder
	b.WriteString("✅ Agent registered, session opened\n")
	fmt.Fprintf(&b, "Name: %s\n", reg.AgentName)
	fmt.Fprintf(&b, "Role: %s\n", reg.Role)
	fmt.Fprintf(&b, "Description: %s\n", reg.Description)
	fmt.Fprintf(&b, "Session ID: %s", reg.SessionID)

	if reg.Previous != nil {
		b.WriteString("\n\n🔄 Inherited previous agent info")
		if reg.Previous.Role != "" {
			fmt.Fprintf(&b, "\nPrevious role: %s", reg.Previous.Role)
		}
		if reg.Previous.Description != "" {
			fmt.Fprintf(&b, "\nPrevious description: %s", reg.Previous.Description)
		}
	}

	if len(reg.PendingTasks) > 0 {
		fmt.Fprintf(&b, "\n\n📋 %d pending tasks:", len(reg.PendingTasks))
		shown := reg.PendingTasks
		if len(shown) > 3 {
			shown = shown[:3]
		}
		for _, task := range shown {
			fmt.Fprintf(&b, "\n  - %s (priority: %s)", task.Title, task.Priority)
		}
		if rest := len(reg.PendingTasks) - len(shown); rest > 0 {
			fmt.Fprintf(&b, "\n  ... and %d more", rest)
		}
	}

	return mcp.NewToolResultText(b.String()), nil
}

// SetEmployeeConfigTool handles the set_employee_config MCP tool.
type SetEmployeeConfigTool struct {
	store chat.Store
	cfg   *config.Config
}

// NewSetEmployeeConfigTool creates a SetEmployeeConfigTool.
func NewSetEmployeeConfigTool(store chat.Store, cfg *config.Config) *SetEmployeeConfigTool {
	return &SetEmployeeConfigTool{store: store, cfg: cfg}
}

// Definition returns the MCP tool definition for registration.
func (t *SetEmployeeConfigTool) Definition() mcp.Tool {
	return mcp.NewTool("set_employee_config",
		mcp.WithDescription("Point an agent name at its .mdc rule file so register_agent can load its role and description."),
		mcp.WithString("agent_name",
			mcp.Required(),
			mcp.Description("Agent name, e.g. a, b, c, d, manager."),
		),
		mcp.WithString("mdc_file_path",
			mcp.Description(".mdc path relative to the workspace root, e.g. .cursor/rules/a.mdc. Defaults to the rules dir with the agent's name."),
		),
	)
}

// Handle processes the set_employee_config tool call.
func (t *SetEmployeeConfigTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name := req.GetString("agent_name", "")
	if name == "" {
		return mcp.NewToolResultError("an agent name is required"), nil
	}

	mdcPath := req.GetString("mdc_file_path", "")
	var absPath string
	if mdcPath != "" {
		absPath = mdcPath
		if !filepath.IsAbs(absPath) {
			absPath = filepath.Join(t.cfg.WorkspaceRoot, mdcPath)
		}
	} else {
		absPath = filepath.Join(t.cfg.RulesDir, name+".mdc")
	}

	if _, err := os.Stat(absPath); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf(".mdc file not found: %s", absPath)), nil
	}

	// Store the path workspace-relative when possible so the data dir
	// stays portable across checkouts.
	stored := absPath
	if rel, err := filepath.Rel(t.cfg.WorkspaceRoot, absPath); err == nil && !strings.HasPrefix(rel, "..") {
		stored = rel
	}

	if err := chat.SetEmployeeConfig(t.store, name, stored); err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(fmt.Sprintf(
		"✅ Employee config saved\nAgent: %s\n.mdc file: %s\n\n💡 register_agent now loads the role and description automatically",
		name, stored,
	)), nil
}

// GetCurrentSessionTool handles the get_current_session MCP tool.
type GetCurrentSessionTool struct {
	store chat.Store
	id    *chat.Identity
}

// NewGetCurrentSessionTool creates a GetCurrentSessionTool.
func NewGetCurrentSessionTool(store chat.Store, id *chat.Identity) *GetCurrentSessionTool {
	return &GetCurrentSessionTool{store: store, id: id}
}

// Definition returns the MCP tool definition for registration.
func (t *GetCurrentSessionTool) Definition() mcp.Tool {
	return mcp.NewTool("get_current_session",
		mcp.WithDescription("Show this agent's current session."),
	)
}

// Handle processes the get_current_session tool call.
func (t *GetCurrentSessionTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID := t.id.CurrentSessionID()
	if sessionID == "" {
		return mcp.NewToolResultText("⚠️ No active session\nRegister with register_agent first"), nil
	}

	session, ok := t.store.Sessions()[sessionID]
	if !ok {
		return mcp.NewToolResultText(fmt.Sprintf(
			"⚠️ Session record missing\nSession ID: %s\nRegister again with register_agent", sessionID,
		)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf(
		"✅ Current session\nAgent: %s\nSession ID: %s\nRole: %s\nDescription: %s\nCreated: %s",
		t.id.CurrentAgent(), sessionID, session.Role, session.Description, session.CreatedAt,
	)), nil
}

// ListAgentsTool handles the list_agents MCP tool.
type ListAgentsTool struct {
	store chat.Store
}

// NewListAgentsTool creates a ListAgentsTool.
func NewListAgentsTool(store chat.Store) *ListAgentsTool {
	return &ListAgentsTool{store: store}
}

// Definition returns the MCP tool definition for registration.
func (t *ListAgentsTool) Definition() mcp.Tool {
	return mcp.NewTool("list_agents",
		mcp.WithDescription("List every registered agent."),
	)
}

// Handle processes the list_agents tool call.
func (t *ListAgentsTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	agents := t.store.Agents()
	if len(agents) == 0 {
		return mcp.NewToolResultText("📋 No agents registered yet"), nil
	}

	names := make([]string, 0, len(agents))
	for name := range agents {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	fmt.Fprintf(&b, "📋 Registered agents (%d):\n", len(agents))
	for _, name := range names {
		info := agents[name]
		fmt.Fprintf(&b, "\n--- %s ---\n", name)
		fmt.Fprintf(&b, "Role: %s\n", info.Role)
		fmt.Fprintf(&b, "Description: %s\n", info.Description)
		fmt.Fprintf(&b, "Session ID: %s\n", info.SessionID)
		fmt.Fprintf(&b, "Registered: %s\n", info.RegisteredAt)
	}
	return mcp.NewToolResultText(b.String()), nil
}
