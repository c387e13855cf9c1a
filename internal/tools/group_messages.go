package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/crewchat/crewchat/internal/chat"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/crewchat/crewchat/internal/config"
)

// SendGroupMessageTool handles the send_group_message MCP tool.
type SendGroupMessageTool struct {
	messages *chat.MessageService
}

// NewSendGroupMessageTool creates a SendGroupMessageTool.
func NewSendGroupMessageTool(messages *chat.MessageService) *SendGroupMessageTool {
	return &SendGroupMessageTool{messages: messages}
}

// Definition returns the MCP tool definition for registration.
func (t *SendGroupMessageTool) Definition() mcp.Tool {
	return mcp.NewTool("send_group_message",
		mcp.WithDescription("Post a message to a group you belong to."),
		mcp.WithString("group_id",
			mcp.Required(),
			mcp.Description("Target group ID."),
		),
		mcp.WithString("message",
			mcp.Required(),
			mcp.Description("Message text."),
		),
		mcp.WithString("file_path",
			mcp.Description("Path of a file to send instead of the message text (optional)."),
		),
		mcp.WithString("topic",
			mcp.Description("Topic label for later filtering (optional)."),
		),
		mcp.WithString("reply_to",
			mcp.Description("ID of the message being replied to (optional)."),
		),
		mcp.WithArray("mentions",
			mcp.Description("Members to @-mention, e.g. [\"a\", \"b\"] (optional)."),
			mcp.Items(map[string]any{"type": "string"}),
		),
		mcp.WithString("importance",
			mcp.Description("Message importance, default normal."),
			mcp.Enum("low", "normal", "high"),
		),
	)
}

// Handle processes the send_group_message tool call.
func (t *SendGroupMessageTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	msg, group, err := t.messages.SendGroup(
		req.GetString("group_id", ""),
		req.GetString("message", ""),
		req.GetString("file_path", ""),
		req.GetString("topic", ""),
		req.GetString("reply_to", ""),
		stringSliceArg(req, "mentions"),
		chat.Importance(req.GetString("importance", "")),
	)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "✅ Group message sent\nGroup: %s (%s)\nFrom: %s\nMessage ID: %s",
		group.Name, msg.GroupID, msg.Sender, msg.ID)
	if msg.Topic != "" {
		fmt.Fprintf(&b, "\nTopic: %s", msg.Topic)
	}
	if len(msg.Mentions) > 0 {
		fmt.Fprintf(&b, "\nMentions: @%s", strings.Join(msg.Mentions, " @"))
	}
	if msg.ReplyTo != "" {
		fmt.Fprintf(&b, "\nIn reply to: %s", msg.ReplyTo)
	}
	return mcp.NewToolResultText(b.String()), nil
}

// ReceiveGroupMessagesTool handles the receive_group_messages MCP tool.
type ReceiveGroupMessagesTool struct {
	messages *chat.MessageService
	id       *chat.Identity
}

// NewReceiveGroupMessagesTool creates a ReceiveGroupMessagesTool.
func NewReceiveGroupMessagesTool(messages *chat.MessageService, id *chat.Identity) *ReceiveGroupMessagesTool {
	return &ReceiveGroupMessagesTool{messages: messages, id: id}
}

// Definition returns the MCP tool definition for registration.
func (t *ReceiveGroupMessagesTool) Definition() mcp.Tool {
	return mcp.NewTool("receive_group_messages",
		mcp.WithDescription("Read a group's messages, newest first. Membership required."),
		mcp.WithString("group_id",
			mcp.Required(),
			mcp.Description("Group ID to read from."),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of messages (default 20, keep under 50)."),
		),
		mcp.WithBoolean("unread_only",
			mcp.Description("Only messages you have not read yet (default false)."),
		),
		mcp.WithString("since",
			mcp.Description("Only messages after this timestamp (optional)."),
		),
		mcp.WithArray("keywords",
			mcp.Description("Only messages containing any of these keywords (optional)."),
			mcp.Items(map[string]any{"type": "string"}),
		),
		mcp.WithString("topic",
			mcp.Description("Only messages with this topic (optional)."),
		),
		mcp.WithBoolean("mentions_me",
			mcp.Description("Only messages that @-mention you (default false)."),
		),
		mcp.WithString("importance",
			mcp.Description("Only messages with this importance (optional)."),
			mcp.Enum("low", "normal", "high"),
		),
		mcp.WithBoolean("show_pinned_first",
			mcp.Description("Move pinned messages to the front of the result (default false)."),
		),
		mcp.WithNumber("max_content_length",
			mcp.Description("Truncate each message body to this many characters (default 5000)."),
		),
	)
}

// Handle processes the receive_group_messages tool call.
func (t *ReceiveGroupMessagesTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	filter := chat.GroupReceiveFilter{
		GroupID:    req.GetString("group_id", ""),
		UnreadOnly: boolArg(req, "unread_only", false),
		Since:      req.GetString("since", ""),
		Keywords:   stringSliceArg(req, "keywords"),
		Topic:      req.GetString("topic", ""),
		MentionsMe: boolArg(req, "mentions_me", false),
		Importance: chat.Importance(req.GetString("importance", "")),
		ShowPinned: boolArg(req, "show_pinned_first", false),
		Limit:      intArg(req, "limit", config.DefaultMessageLimit),
	}
	maxLen := intArg(req, "max_content_length", config.DefaultMaxContentLength)

	found, group, err := t.messages.ReceiveGroup(filter)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(found) == 0 {
		return mcp.NewToolResultText(fmt.Sprintf("📭 No messages in %s", group.Name)), nil
	}

	agent := t.id.CurrentAgent()
	var b strings.Builder
	fmt.Fprintf(&b, "💬 %s: %d messages\n", group.Name, len(found))
	for _, m := range found {
		b.WriteString("\n--- ")
		if m.IsPinned {
			b.WriteString("📌 ")
		}
		fmt.Fprintf(&b, "Message %s ---\n", m.ID)
		fmt.Fprintf(&b, "From: %s (%s)\n", m.Sender, m.SenderRole)
		fmt.Fprintf(&b, "Time: %s\n", m.Timestamp)
		if m.ReadBy(agent, false) {
			b.WriteString("Status: ✅ read\n")
		} else {
			b.WriteString("Status: 📩 unread\n")
		}
		if m.Topic != "" {
			fmt.Fprintf(&b, "Topic: %s\n", m.Topic)
		}
		if len(m.Mentions) > 0 {
			fmt.Fprintf(&b, "Mentions: @%s\n", strings.Join(m.Mentions, " @"))
		}
		if m.Importance == chat.ImportanceHigh {
			b.WriteString("Importance: ❗ high\n")
		}
		if m.ReplyTo != "" {
			fmt.Fprintf(&b, "↩️ Reply to %s: %s\n", m.ReplyToSender, m.ReplyToContent)
		}
		fmt.Fprintf(&b, "\nContent:\n%s\n", truncate(m.Content, maxLen))
	}
	return mcp.NewToolResultText(b.String()), nil
}

// SummarizeGroupMessagesTool handles the summarize_group_messages MCP tool.
type SummarizeGroupMessagesTool struct {
	groups *chat.GroupService
}

// NewSummarizeGroupMessagesTool creates a SummarizeGroupMessagesTool.
func NewSummarizeGroupMessagesTool(groups *chat.GroupService) *SummarizeGroupMessagesTool {
	return &SummarizeGroupMessagesTool{groups: groups}
}

// Definition returns the MCP tool definition for registration.
func (t *SummarizeGroupMessagesTool) Definition() mcp.Tool {
	return mcp.NewTool("summarize_group_messages",
		mcp.WithDescription("Summarize a group's recent activity: message count and who posted."),
		mcp.WithString("group_id",
			mcp.Required(),
			mcp.Description("Group ID to summarize."),
		),
		mcp.WithString("time_range",
			mcp.Description("last_24_hours, last_7_days, last_30_days, or a timestamp (default last_7_days)."),
		),
		mcp.WithNumber("max_length",
			mcp.Description("Maximum summary length in characters (default 500)."),
		),
	)
}

// Handle processes the summarize_group_messages tool call.
func (t *SummarizeGroupMessagesTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	summary, err := t.groups.Summarize(
		req.GetString("group_id", ""),
		req.GetString("time_range", ""),
	)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	maxLen := intArg(req, "max_length", 500)

	var b strings.Builder
	fmt.Fprintf(&b, "📊 %s — %s\n", summary.GroupName, summary.TimeRange)
	fmt.Fprintf(&b, "Messages: %d\n", summary.Total)
	if len(summary.Participants) > 0 {
		b.WriteString("Participants:\n")
		for _, p := range summary.Participants {
			fmt.Fprintf(&b, "- %s: %d\n", p.Sender, p.Count)
		}
	}
	return mcp.NewToolResultText(truncate(b.String(), maxLen)), nil
}

// GetUnreadCountsTool handles the get_unread_counts MCP tool.
type GetUnreadCountsTool struct {
	groups *chat.GroupService
}

// NewGetUnreadCountsTool creates a GetUnreadCountsTool.
func NewGetUnreadCountsTool(groups *chat.GroupService) *GetUnreadCountsTool {
	return &GetUnreadCountsTool{groups: groups}
}

// Definition returns the MCP tool definition for registration.
func (t *GetUnreadCountsTool) Definition() mcp.Tool {
	return mcp.NewTool("get_unread_counts",
		mcp.WithDescription("Unread message counts per group, including @-mentions and high-importance messages."),
		mcp.WithArray("group_ids",
			mcp.Description("Group IDs to query. Defaults to every active group you belong to."),
			mcp.Items(map[string]any{"type": "string"}),
		),
	)
}

// Handle processes the get_unread_counts tool call.
func (t *GetUnreadCountsTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	counts := t.groups.UnreadCounts(stringSliceArg(req, "group_ids"))
	if len(counts) == 0 {
		return mcp.NewToolResultText("📭 No groups to report on"), nil
	}

	var b strings.Builder
	b.WriteString("📊 Unread counts\n")
	for _, c := range counts {
		fmt.Fprintf(&b, "\n%s (%s)\n", c.Name, c.ID)
		fmt.Fprintf(&b, "Unread: %d | @me: %d | ❗ high: %d\n", c.Unread, c.Mentions, c.Important)
	}
	return mcp.NewToolResultText(b.String()), nil
}

// PinMessageTool handles the pin_message MCP tool.
type PinMessageTool struct {
	messages *chat.MessageService
}

// NewPinMessageTool creates a PinMessageTool.
func NewPinMessageTool(messages *chat.MessageService) *PinMessageTool {
	return &PinMessageTool{messages: messages}
}

// Definition returns the MCP tool definition for registration.
func (t *PinMessageTool) Definition() mcp.Tool {
	return mcp.NewTool("pin_message",
		mcp.WithDescription("Pin a group message so members can surface it with show_pinned_first."),
		mcp.WithString("group_id",
			mcp.Required(),
			mcp.Description("Group the message belongs to."),
		),
		mcp.WithString("message_id",
			mcp.Required(),
			mcp.Description("ID of the message to pin."),
		),
	)
}

// Handle processes the pin_message tool call.
func (t *PinMessageTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	msg, group, err := t.messages.Pin(
		req.GetString("group_id", ""),
		req.GetString("message_id", ""),
	)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf(
		"📌 Message pinned\nGroup: %s\nMessage: %s\nPinned by: %s",
		group.Name, msg.ID, msg.PinnedBy,
	)), nil
}

// UnpinMessageTool handles the unpin_message MCP tool.
type UnpinMessageTool struct {
	messages *chat.MessageService
}

// NewUnpinMessageTool creates an UnpinMessageTool.
func NewUnpinMessageTool(messages *chat.MessageService) *UnpinMessageTool {
	return &UnpinMessageTool{messages: messages}
}

// Definition returns the MCP tool definition for registration.
func (t *UnpinMessageTool) Definition() mcp.Tool {
	return mcp.NewTool("unpin_message",
		mcp.WithDescription("Remove a pin from a group message."),
		mcp.WithString("group_id",
			mcp.Required(),
			mcp.Description("Group the message belongs to."),
		),
		mcp.WithString("message_id",
			mcp.Required(),
			mcp.Description("ID of the message to unpin."),
		),
	)
}

// Handle processes the unpin_message tool call.
func (t *UnpinMessageTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	group, err := t.messages.Unpin(
		req.GetString("group_id", ""),
		req.GetString("message_id", ""),
	)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf(
		"📌 Message unpinned from %s", group.Name,
	)), nil
}
