package tools

import (
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/crewchat/crewchat/internal/chat"
	"github.com/crewchat/crewchat/internal/config"
)

// --- Test helpers ---

// testEnv wires the full service stack over one shared data dir so tool
// tests can act as different agents against the same state.
type testEnv struct {
	store     *chat.FileStore
	cfg       *config.Config
	workspace string

	id       *chat.Identity
	messages *chat.MessageService
	tasks    *chat.TaskService
	groups   *chat.GroupService
	standby  *chat.StandbyService
}

// newToolEnv creates a fresh env and registers the given agent.
func newToolEnv(t *testing.T, agent, role string) *testEnv {
	t.Helper()
	e := &testEnv{
		store:     chat.NewFileStore(t.TempDir()),
		workspace: t.TempDir(),
	}
	e.cfg = &config.Config{
		WorkspaceRoot: e.workspace,
		RulesDir:      e.workspace,
	}
	e.bind(t, agent, role)
	return e
}

// as returns a sibling env over the same store, acting as another agent.
func (e *testEnv) as(t *testing.T, agent, role string) *testEnv {
	t.Helper()
	sibling := &testEnv{store: e.store, cfg: e.cfg, workspace: e.workspace}
	sibling.bind(t, agent, role)
	return sibling
}

func (e *testEnv) bind(t *testing.T, agent, role string) {
	t.Helper()
	e.id = chat.NewIdentity(e.store, "")
	if agent != "" {
		if _, err := e.id.Register(agent, role, ""); err != nil {
			t.Fatalf("registering %s: %v", agent, err)
		}
	}
	e.messages = chat.NewMessageService(e.store, e.id, e.workspace)
	e.tasks = chat.NewTaskService(e.store, e.id)
	e.groups = chat.NewGroupService(e.store, e.id)
	e.standby = chat.NewStandbyService(e.store, e.id)
}

// call builds a request with the given arguments.
func call(args map[string]interface{}) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	return req
}

// isErrorResult checks if the result is a tool error.
func isErrorResult(result *mcp.CallToolResult) bool {
	return result != nil && result.IsError
}

// getResultText extracts the text content from a CallToolResult.
func getResultText(result *mcp.CallToolResult) string {
	if result == nil || len(result.Content) == 0 {
		return ""
	}
	for _, c := range result.Content {
		if tc, ok := c.(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}
