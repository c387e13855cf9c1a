package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/crewchat/crewchat/internal/chat"
	"github.com/mark3labs/mcp-go/mcp"
)

// CreateTaskTool handles the create_task MCP tool.
type CreateTaskTool struct {
	tasks *chat.TaskService
}

// NewCreateTaskTool creates a CreateTaskTool.
func NewCreateTaskTool(tasks *chat.TaskService) *CreateTaskTool {
	return &CreateTaskTool{tasks: tasks}
}

// Definition returns the MCP tool definition for registration.
func (t *CreateTaskTool) Definition() mcp.Tool {
	return mcp.NewTool("create_task",
		mcp.WithDescription("Create a task. New tasks start unassigned in the 待开始 state."),
		mcp.WithString("title",
			mcp.Required(),
			mcp.Description("Task title."),
		),
		mcp.WithString("description",
			mcp.Required(),
			mcp.Description("What needs to be done."),
		),
		mcp.WithString("priority",
			mcp.Required(),
			mcp.Description("Task priority."),
			mcp.Enum("P0", "P1", "P2"),
		),
		mcp.WithString("due_date",
			mcp.Description("Due date (optional, free-form timestamp)."),
		),
	)
}

// Handle processes the create_task tool call.
func (t *CreateTaskTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	task, err := t.tasks.Create(
		req.GetString("title", ""),
		req.GetString("description", ""),
		chat.Priority(req.GetString("priority", "")),
		req.GetString("due_date", ""),
	)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf(
		"✅ Task created\nTask ID: %s\nTitle: %s\nPriority: %s %s\nStatus: %s",
		task.ID, task.Title, priorityIcon(task.Priority), task.Priority, task.Status,
	)), nil
}

// AssignTaskTool handles the assign_task MCP tool.
type AssignTaskTool struct {
	tasks *chat.TaskService
}

// NewAssignTaskTool creates an AssignTaskTool.
func NewAssignTaskTool(tasks *chat.TaskService) *AssignTaskTool {
	return &AssignTaskTool{tasks: tasks}
}

// Definition returns the MCP tool definition for registration.
func (t *AssignTaskTool) Definition() mcp.Tool {
	return mcp.NewTool("assign_task",
		mcp.WithDescription("Assign a task to an agent. The assignee is notified by direct message and the task is reset to 待开始."),
		mcp.WithString("task_id",
			mcp.Required(),
			mcp.Description("ID of the task to assign."),
		),
		mcp.WithString("assignee",
			mcp.Required(),
			mcp.Description("Agent to assign the task to."),
		),
	)
}

// Handle processes the assign_task tool call.
func (t *AssignTaskTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	taskID := req.GetString("task_id", "")
	assignee := req.GetString("assignee", "")
	if taskID == "" || assignee == "" {
		return mcp.NewToolResultError("task_id and assignee are required"), nil
	}

	task, err := t.tasks.Assign(taskID, assignee)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf(
		"✅ Task assigned\nTask ID: %s\nTitle: %s\nAssigned to: %s\nStatus: %s",
		task.ID, task.Title, assignee, task.Status,
	)), nil
}

// UpdateTaskStatusTool handles the update_task_status MCP tool.
type UpdateTaskStatusTool struct {
	tasks *chat.TaskService
}

// NewUpdateTaskStatusTool creates an UpdateTaskStatusTool.
func NewUpdateTaskStatusTool(tasks *chat.TaskService) *UpdateTaskStatusTool {
	return &UpdateTaskStatusTool{tasks: tasks}
}

// Definition returns the MCP tool definition for registration.
func (t *UpdateTaskStatusTool) Definition() mcp.Tool {
	return mcp.NewTool("update_task_status",
		mcp.WithDescription("Change a task's status. Any transition between the listed states is allowed."),
		mcp.WithString("task_id",
			mcp.Required(),
			mcp.Description("ID of the task to update."),
		),
		mcp.WithString("status",
			mcp.Required(),
			mcp.Description("New status."),
			mcp.Enum("待开始", "进行中", "已完成", "已阻塞", "已取消"),
		),
		mcp.WithString("progress_note",
			mcp.Description("Optional progress note stored with the task."),
		),
	)
}

// Handle processes the update_task_status tool call.
func (t *UpdateTaskStatusTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	old, task, err := t.tasks.UpdateStatus(
		req.GetString("task_id", ""),
		chat.TaskStatus(req.GetString("status", "")),
		req.GetString("progress_note", ""),
	)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "✅ Task status updated\nTask ID: %s\nTitle: %s\n%s → %s %s",
		task.ID, task.Title, old, statusIcon(task.Status), task.Status)
	if task.ProgressNote != "" {
		fmt.Fprintf(&b, "\nProgress: %s", task.ProgressNote)
	}
	return mcp.NewToolResultText(b.String()), nil
}

// GetTasksTool handles the get_tasks MCP tool.
type GetTasksTool struct {
	tasks *chat.TaskService
}

// NewGetTasksTool creates a GetTasksTool.
func NewGetTasksTool(tasks *chat.TaskService) *GetTasksTool {
	return &GetTasksTool{tasks: tasks}
}

// Definition returns the MCP tool definition for registration.
func (t *GetTasksTool) Definition() mcp.Tool {
	return mcp.NewTool("get_tasks",
		mcp.WithDescription("List tasks. Non-manager agents only see tasks assigned to themselves; the manager sees everything."),
		mcp.WithString("assignee",
			mcp.Description("Filter by assignee. '*' means all tasks (manager only)."),
		),
		mcp.WithString("status",
			mcp.Description("Filter by task status (optional)."),
		),
		mcp.WithString("priority",
			mcp.Description("Filter by priority (optional)."),
		),
	)
}

// Handle processes the get_tasks tool call.
func (t *GetTasksTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	found := t.tasks.List(
		req.GetString("assignee", "*"),
		chat.TaskStatus(req.GetString("status", "")),
		chat.Priority(req.GetString("priority", "")),
	)
	if len(found) == 0 {
		return mcp.NewToolResultText("📋 No tasks found"), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "📋 Tasks: %d found\n", len(found))
	for _, task := range found {
		assignee := task.AssignedTo()
		if assignee == "" {
			assignee = "unassigned"
		}
		fmt.Fprintf(&b, "\n--- Task %s ---\n", task.ID)
		fmt.Fprintf(&b, "%s Priority: %s\n", priorityIcon(task.Priority), task.Priority)
		fmt.Fprintf(&b, "Title: %s\n", task.Title)
		fmt.Fprintf(&b, "%s Status: %s\n", statusIcon(task.Status), task.Status)
		fmt.Fprintf(&b, "Assignee: %s\n", assignee)
		fmt.Fprintf(&b, "Creator: %s\n", task.Creator)
		fmt.Fprintf(&b, "Created: %s\n", task.CreatedAt)
		if task.DueDate != "" {
			fmt.Fprintf(&b, "Due: %s\n", task.DueDate)
		}
		if task.Description != "" {
			fmt.Fprintf(&b, "Description: %s\n", truncate(task.Description, 200))
		}
	}
	return mcp.NewToolResultText(b.String()), nil
}

// DeleteTaskTool handles the delete_task MCP tool.
type DeleteTaskTool struct {
	tasks *chat.TaskService
}

// NewDeleteTaskTool creates a DeleteTaskTool.
func NewDeleteTaskTool(tasks *chat.TaskService) *DeleteTaskTool {
	return &DeleteTaskTool{tasks: tasks}
}

// Definition returns the MCP tool definition for registration.
func (t *DeleteTaskTool) Definition() mcp.Tool {
	return mcp.NewTool("delete_task",
		mcp.WithDescription("Delete tasks, soft by default. Only a task's creator or the manager may delete it."),
		mcp.WithArray("task_ids",
			mcp.Required(),
			mcp.Description("IDs of the tasks to delete."),
			mcp.Items(map[string]any{"type": "string"}),
		),
		mcp.WithBoolean("permanent",
			mcp.Description("Remove the tasks entirely instead of marking them 已删除 (default false)."),
		),
	)
}

// Handle processes the delete_task tool call.
func (t *DeleteTaskTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	taskIDs := stringSliceArg(req, "task_ids")
	if len(taskIDs) == 0 {
		return mcp.NewToolResultError("at least one task ID is required"), nil
	}

	report, err := t.tasks.Delete(taskIDs, boolArg(req, "permanent", false))
	if err != nil {
		return nil, err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "🗑️ Delete results: %d deleted, %d failed\n", len(report.Deleted), len(report.Failed))
	for _, d := range report.Deleted {
		mode := "soft"
		if d.Permanent {
			mode = "permanent"
		}
		fmt.Fprintf(&b, "\n✅ %s: %s (%s)", d.ID, d.Title, mode)
	}
	for _, f := range report.Failed {
		fmt.Fprintf(&b, "\n❌ %s: %s", f.ID, f.Reason)
	}
	return mcp.NewToolResultText(b.String()), nil
}
