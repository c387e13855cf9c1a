package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/crewchat/crewchat/internal/chat"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/crewchat/crewchat/internal/config"
)

// SendMessageTool handles the send_message MCP tool.
type SendMessageTool struct {
	messages *chat.MessageService
}

// NewSendMessageTool creates a SendMessageTool.
func NewSendMessageTool(messages *chat.MessageService) *SendMessageTool {
	return &SendMessageTool{messages: messages}
}

// Definition returns the MCP tool definition for registration.
func (t *SendMessageTool) Definition() mcp.Tool {
	return mcp.NewTool("send_message",
		mcp.WithDescription(
			"Send a direct message to other agents. Shorthand: use <file> send@<a>&<b> "+
				"sends a file's content to agents a and b.",
		),
		mcp.WithString("recipients",
			mcp.Required(),
			mcp.Description("Recipient names separated by '&', e.g. a&b or a&b&c."),
		),
		mcp.WithString("message",
			mcp.Description("Message text. Ignored when file_path is given."),
		),
		mcp.WithString("file_path",
			mcp.Description("Path of a file to send, relative to the workspace root."),
		),
	)
}

// Handle processes the send_message tool call.
func (t *SendMessageTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	recipients := splitRecipients(req.GetString("recipients", ""))
	if len(recipients) == 0 {
		return mcp.NewToolResultError("at least one recipient is required"), nil
	}

	msg, err := t.messages.Send(recipients, req.GetString("message", ""), req.GetString("file_path", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf(
		"✅ Message sent\nFrom: %s\nTo: %s\nMessage ID: %s\nContent length: %d chars",
		msg.Sender, strings.Join(msg.Recipients, ", "), msg.ID, len([]rune(msg.Content)),
	)), nil
}

// ReceiveMessagesTool handles the receive_messages MCP tool.
type ReceiveMessagesTool struct {
	messages *chat.MessageService
	id       *chat.Identity
}

// NewReceiveMessagesTool creates a ReceiveMessagesTool.
func NewReceiveMessagesTool(messages *chat.MessageService, id *chat.Identity) *ReceiveMessagesTool {
	return &ReceiveMessagesTool{messages: messages, id: id}
}

// Definition returns the MCP tool definition for registration.
func (t *ReceiveMessagesTool) Definition() mcp.Tool {
	return mcp.NewTool("receive_messages",
		mcp.WithDescription(
			"Read direct messages. Use recipient '*' for all messages. "+
				"Filters keep the response small enough for a model context.",
		),
		mcp.WithString("recipient",
			mcp.Description("Recipient name to filter by, or '*' for every message."),
		),
		mcp.WithBoolean("unread_only",
			mcp.Description("Only return messages you have not read yet (default false)."),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of messages (default 20, keep under 50)."),
		),
		mcp.WithString("since",
			mcp.Description("Only messages after this timestamp, e.g. 2025-11-10T00:00:00."),
		),
		mcp.WithArray("keywords",
			mcp.Description("Only messages containing any of these keywords."),
			mcp.Items(map[string]any{"type": "string"}),
		),
		mcp.WithNumber("max_content_length",
			mcp.Description("Truncate each message body to this many characters (default 5000)."),
		),
	)
}

// Handle processes the receive_messages tool call.
func (t *ReceiveMessagesTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	filter := chat.ReceiveFilter{
		Recipient:  req.GetString("recipient", "*"),
		UnreadOnly: boolArg(req, "unread_only", false),
		Since:      req.GetString("since", ""),
		Keywords:   stringSliceArg(req, "keywords"),
		Limit:      intArg(req, "limit", config.DefaultMessageLimit),
	}
	maxLen := intArg(req, "max_content_length", config.DefaultMaxContentLength)

	found := t.messages.Receive(filter)
	if len(found) == 0 {
		return mcp.NewToolResultText("📭 No messages found"), nil
	}

	agent := t.id.CurrentAgent()
	var b strings.Builder
	fmt.Fprintf(&b, "📬 Messages: %d found\n", len(found))
	for _, m := range found {
		read := "📩 unread"
		if m.ReadBy(agent, false) {
			read = "✅ read"
		}
		fmt.Fprintf(&b, "\n--- Message %s ---\n", m.ID)
		fmt.Fprintf(&b, "From: %s (%s)\n", m.Sender, m.SenderRole)
		fmt.Fprintf(&b, "Time: %s\n", m.Timestamp)
		fmt.Fprintf(&b, "Status: %s\n", read)
		if m.FilePath != nil {
			fmt.Fprintf(&b, "File: %s\n", *m.FilePath)
		}
		fmt.Fprintf(&b, "\nContent:\n%s\n", truncate(m.Content, maxLen))
	}
	return mcp.NewToolResultText(b.String()), nil
}

// MarkMessagesReadTool handles the mark_messages_read MCP tool.
type MarkMessagesReadTool struct {
	messages *chat.MessageService
}

// NewMarkMessagesReadTool creates a MarkMessagesReadTool.
func NewMarkMessagesReadTool(messages *chat.MessageService) *MarkMessagesReadTool {
	return &MarkMessagesReadTool{messages: messages}
}

// Definition returns the MCP tool definition for registration.
func (t *MarkMessagesReadTool) Definition() mcp.Tool {
	return mcp.NewTool("mark_messages_read",
		mcp.WithDescription("Mark messages as read."),
		mcp.WithArray("message_ids",
			mcp.Required(),
			mcp.Description("IDs of the messages to mark as read."),
			mcp.Items(map[string]any{"type": "string"}),
		),
	)
}

// Handle processes the mark_messages_read tool call.
func (t *MarkMessagesReadTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	count, err := t.messages.MarkRead(stringSliceArg(req, "message_ids"))
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(fmt.Sprintf("✅ Marked %d messages as read", count)), nil
}
