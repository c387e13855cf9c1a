package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/crewchat/crewchat/internal/chat"
	"github.com/mark3labs/mcp-go/mcp"
)

// CreateGroupTool handles the create_group MCP tool.
type CreateGroupTool struct {
	groups *chat.GroupService
}

// NewCreateGroupTool creates a CreateGroupTool.
func NewCreateGroupTool(groups *chat.GroupService) *CreateGroupTool {
	return &CreateGroupTool{groups: groups}
}

// Definition returns the MCP tool definition for registration.
func (t *CreateGroupTool) Definition() mcp.Tool {
	return mcp.NewTool("create_group",
		mcp.WithDescription(
			"Create a group. Only the listed members belong to it; include yourself "+
				"if you want to take part.",
		),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Group name."),
		),
		mcp.WithString("description",
			mcp.Description("What the group is for."),
		),
		mcp.WithArray("members",
			mcp.Required(),
			mcp.Description("Member names, e.g. [\"manager\", \"a\", \"b\"]."),
			mcp.Items(map[string]any{"type": "string"}),
		),
	)
}

// Handle processes the create_group tool call.
func (t *CreateGroupTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	groupID, group, err := t.groups.Create(
		req.GetString("name", ""),
		req.GetString("description", ""),
		stringSliceArg(req, "members"),
	)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf(
		"✅ Group created\nGroup ID: %s\nName: %s\nCreator: %s\nMembers: %s",
		groupID, group.Name, group.Creator, strings.Join(group.Members, ", "),
	)), nil
}

// JoinGroupTool handles the join_group MCP tool.
type JoinGroupTool struct {
	groups *chat.GroupService
}

// NewJoinGroupTool creates a JoinGroupTool.
func NewJoinGroupTool(groups *chat.GroupService) *JoinGroupTool {
	return &JoinGroupTool{groups: groups}
}

// Definition returns the MCP tool definition for registration.
func (t *JoinGroupTool) Definition() mcp.Tool {
	return mcp.NewTool("join_group",
		mcp.WithDescription("Join a group."),
		mcp.WithString("group_id",
			mcp.Required(),
			mcp.Description("ID of the group to join."),
		),
	)
}

// Handle processes the join_group tool call.
func (t *JoinGroupTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	groupID := req.GetString("group_id", "")
	group, joined, err := t.groups.Join(groupID)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if !joined {
		return mcp.NewToolResultText(fmt.Sprintf(
			"ℹ️ You are already a member of %s (%s)", group.Name, groupID,
		)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf(
		"✅ Joined group\nGroup: %s (%s)\nMembers: %s",
		group.Name, groupID, strings.Join(group.Members, ", "),
	)), nil
}

// LeaveGroupTool handles the leave_group MCP tool.
type LeaveGroupTool struct {
	groups *chat.GroupService
}

// NewLeaveGroupTool creates a LeaveGroupTool.
func NewLeaveGroupTool(groups *chat.GroupService) *LeaveGroupTool {
	return &LeaveGroupTool{groups: groups}
}

// Definition returns the MCP tool definition for registration.
func (t *LeaveGroupTool) Definition() mcp.Tool {
	return mcp.NewTool("leave_group",
		mcp.WithDescription("Leave a group you belong to."),
		mcp.WithString("group_id",
			mcp.Required(),
			mcp.Description("ID of the group to leave."),
		),
	)
}

// Handle processes the leave_group tool call.
func (t *LeaveGroupTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	groupID := req.GetString("group_id", "")
	group, err := t.groups.Leave(groupID)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf(
		"✅ Left group %s (%s)", group.Name, groupID,
	)), nil
}

// ListGroupsTool handles the list_groups MCP tool.
type ListGroupsTool struct {
	groups *chat.GroupService
}

// NewListGroupsTool creates a ListGroupsTool.
func NewListGroupsTool(groups *chat.GroupService) *ListGroupsTool {
	return &ListGroupsTool{groups: groups}
}

// Definition returns the MCP tool definition for registration.
func (t *ListGroupsTool) Definition() mcp.Tool {
	return mcp.NewTool("list_groups",
		mcp.WithDescription("List groups, active ones by default."),
		mcp.WithString("member",
			mcp.Description("Only groups that include this member (optional)."),
		),
		mcp.WithString("status",
			mcp.Description("Filter by group status (default active)."),
			mcp.Enum("active", "archived", "all"),
		),
		mcp.WithBoolean("include_preview",
			mcp.Description("Include the latest message and your unread counts per group (default false)."),
		),
	)
}

// Handle processes the list_groups tool call.
func (t *ListGroupsTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	listings := t.groups.List(
		req.GetString("member", ""),
		req.GetString("status", "active"),
		boolArg(req, "include_preview", false),
	)
	if len(listings) == 0 {
		return mcp.NewToolResultText("👥 No groups found"), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "👥 Groups: %d found\n", len(listings))
	for _, l := range listings {
		status := l.Group.Status
		if status == "" {
			status = chat.GroupActive
		}
		fmt.Fprintf(&b, "\n--- Group %s ---\n", l.ID)
		fmt.Fprintf(&b, "Name: %s\n", l.Group.Name)
		if l.Group.Description != "" {
			fmt.Fprintf(&b, "Description: %s\n", l.Group.Description)
		}
		fmt.Fprintf(&b, "Status: %s\n", status)
		fmt.Fprintf(&b, "Creator: %s\n", l.Group.Creator)
		fmt.Fprintf(&b, "Members (%d): %s\n", len(l.Group.Members), strings.Join(l.Group.Members, ", "))
		if l.Group.ArchivedAt != "" {
			fmt.Fprintf(&b, "Archived: %s by %s\n", l.Group.ArchivedAt, l.Group.ArchivedBy)
			if l.Group.ArchiveReason != "" {
				fmt.Fprintf(&b, "Reason: %s\n", l.Group.ArchiveReason)
			}
		}
		if l.Preview != nil {
			fmt.Fprintf(&b, "Unread: %d (@me: %d)\n", l.Preview.Unread, l.Preview.Mentions)
			if l.Preview.LastMessage != nil {
				fmt.Fprintf(&b, "Latest: [%s] %s: %s\n",
					l.Preview.LastMessage.Timestamp,
					l.Preview.LastMessage.Sender,
					truncate(l.Preview.LastMessage.Content, 100))
			}
		}
	}
	return mcp.NewToolResultText(b.String()), nil
}

// ArchiveGroupTool handles the archive_group MCP tool.
type ArchiveGroupTool struct {
	groups *chat.GroupService
}

// NewArchiveGroupTool creates an ArchiveGroupTool.
func NewArchiveGroupTool(groups *chat.GroupService) *ArchiveGroupTool {
	return &ArchiveGroupTool{groups: groups}
}

// Definition returns the MCP tool definition for registration.
func (t *ArchiveGroupTool) Definition() mcp.Tool {
	return mcp.NewTool("archive_group",
		mcp.WithDescription("Archive a group. Creator only; archived groups stop accepting messages and there is no unarchive."),
		mcp.WithString("group_id",
			mcp.Required(),
			mcp.Description("ID of the group to archive."),
		),
		mcp.WithString("reason",
			mcp.Description("Why the group is being archived (optional)."),
		),
	)
}

// Handle processes the archive_group tool call.
func (t *ArchiveGroupTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	groupID := req.GetString("group_id", "")
	group, err := t.groups.Archive(groupID, req.GetString("reason", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf(
		"📦 Group archived\nGroup: %s (%s)\nArchived by: %s\nArchived at: %s",
		group.Name, groupID, group.ArchivedBy, group.ArchivedAt,
	)), nil
}
