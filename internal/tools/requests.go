package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/crewchat/crewchat/internal/chat"
	"github.com/mark3labs/mcp-go/mcp"
)

// embedLimit caps how much file content a review or snippet message
// carries inline.
const embedLimit = 2000

// RequestHelpTool handles the request_help MCP tool. It is a structured
// wrapper over send_message: the request is posted to the shared log
// like any other direct message.
type RequestHelpTool struct {
	messages *chat.MessageService
}

// NewRequestHelpTool creates a RequestHelpTool.
func NewRequestHelpTool(messages *chat.MessageService) *RequestHelpTool {
	return &RequestHelpTool{messages: messages}
}

// Definition returns the MCP tool definition for registration.
func (t *RequestHelpTool) Definition() mcp.Tool {
	return mcp.NewTool("request_help",
		mcp.WithDescription("Ask other agents for help."),
		mcp.WithString("recipients",
			mcp.Required(),
			mcp.Description("Agents to ask, separated by '&', e.g. a&b."),
		),
		mcp.WithString("topic",
			mcp.Required(),
			mcp.Description("What you need help with."),
		),
		mcp.WithString("description",
			mcp.Required(),
			mcp.Description("Details of the help needed."),
		),
		mcp.WithString("urgency",
			mcp.Description("Urgency level."),
			mcp.Enum("紧急", "重要", "一般"),
		),
	)
}

// Handle processes the request_help tool call.
func (t *RequestHelpTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	recipients := splitRecipients(req.GetString("recipients", ""))
	topic := req.GetString("topic", "")
	description := req.GetString("description", "")
	urgency := req.GetString("urgency", "一般")

	if len(recipients) == 0 || topic == "" || description == "" {
		return mcp.NewToolResultError("recipients, topic and description are required"), nil
	}

	icon := "ℹ️"
	switch urgency {
	case "紧急":
		icon = "🚨"
	case "重要":
		icon = "⚠️"
	}
	content := fmt.Sprintf("%s Help requested\n\nTopic: %s\nUrgency: %s\n\nDetails:\n%s",
		icon, topic, urgency, description)

	if _, err := t.messages.Post(recipients, content, nil); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf(
		"✅ Help request sent\nTo: %s\nTopic: %s\nUrgency: %s",
		strings.Join(recipients, ", "), topic, urgency,
	)), nil
}

// RequestReviewTool handles the request_review MCP tool.
type RequestReviewTool struct {
	messages *chat.MessageService
}

// NewRequestReviewTool creates a RequestReviewTool.
func NewRequestReviewTool(messages *chat.MessageService) *RequestReviewTool {
	return &RequestReviewTool{messages: messages}
}

// Definition returns the MCP tool definition for registration.
func (t *RequestReviewTool) Definition() mcp.Tool {
	return mcp.NewTool("request_review",
		mcp.WithDescription("Ask other agents to review a file. The file content is embedded in the message."),
		mcp.WithString("recipients",
			mcp.Required(),
			mcp.Description("Reviewers, separated by '&', e.g. b&c."),
		),
		mcp.WithString("file_path",
			mcp.Required(),
			mcp.Description("Path of the file to review."),
		),
		mcp.WithString("description",
			mcp.Description("Optional notes for the reviewers."),
		),
	)
}

// Handle processes the request_review tool call.
func (t *RequestReviewTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	recipients := splitRecipients(req.GetString("recipients", ""))
	filePath := req.GetString("file_path", "")
	description := req.GetString("description", "")

	if len(recipients) == 0 || filePath == "" {
		return mcp.NewToolResultError("recipients and file_path are required"), nil
	}

	fileContent, err := t.messages.ReadWorkspaceFile(filePath)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "🔍 Review requested\n\nFile: %s\n", filePath)
	if description != "" {
		fmt.Fprintf(&b, "Notes: %s\n\n", description)
	}
	fmt.Fprintf(&b, "Content:\n```\n%s\n```", truncate(fileContent, embedLimit))

	if _, err := t.messages.Post(recipients, b.String(), &filePath); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf(
		"✅ Review request sent\nTo: %s\nFile: %s",
		strings.Join(recipients, ", "), filePath,
	)), nil
}

// NotifyCompletionTool handles the notify_completion MCP tool.
type NotifyCompletionTool struct {
	messages *chat.MessageService
}

// NewNotifyCompletionTool creates a NotifyCompletionTool.
func NewNotifyCompletionTool(messages *chat.MessageService) *NotifyCompletionTool {
	return &NotifyCompletionTool{messages: messages}
}

// Definition returns the MCP tool definition for registration.
func (t *NotifyCompletionTool) Definition() mcp.Tool {
	return mcp.NewTool("notify_completion",
		mcp.WithDescription("Tell other agents a task is finished."),
		mcp.WithString("recipients",
			mcp.Required(),
			mcp.Description("Agents to notify, separated by '&', e.g. manager&a."),
		),
		mcp.WithString("task_title",
			mcp.Required(),
			mcp.Description("Title of the finished task."),
		),
		mcp.WithString("summary",
			mcp.Required(),
			mcp.Description("What was done."),
		),
		mcp.WithArray("related_files",
			mcp.Description("Files touched by the work (optional)."),
			mcp.Items(map[string]any{"type": "string"}),
		),
	)
}

// Handle processes the notify_completion tool call.
func (t *NotifyCompletionTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	recipients := splitRecipients(req.GetString("recipients", ""))
	taskTitle := req.GetString("task_title", "")
	summary := req.GetString("summary", "")
	relatedFiles := stringSliceArg(req, "related_files")

	if len(recipients) == 0 || taskTitle == "" || summary == "" {
		return mcp.NewToolResultError("recipients, task_title and summary are required"), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "✅ Task finished\n\nTask: %s\n\nSummary:\n%s", taskTitle, summary)
	if len(relatedFiles) > 0 {
		b.WriteString("\n\nRelated files:\n")
		for _, f := range relatedFiles {
			fmt.Fprintf(&b, "- %s\n", f)
		}
	}

	if _, err := t.messages.Post(recipients, b.String(), nil); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf(
		"✅ Completion notice sent\nTo: %s\nTask: %s",
		strings.Join(recipients, ", "), taskTitle,
	)), nil
}

// ShareCodeSnippetTool handles the share_code_snippet MCP tool.
type ShareCodeSnippetTool struct {
	messages *chat.MessageService
}

// NewShareCodeSnippetTool creates a ShareCodeSnippetTool.
func NewShareCodeSnippetTool(messages *chat.MessageService) *ShareCodeSnippetTool {
	return &ShareCodeSnippetTool{messages: messages}
}

// Definition returns the MCP tool definition for registration.
func (t *ShareCodeSnippetTool) Definition() mcp.Tool {
	return mcp.NewTool("share_code_snippet",
		mcp.WithDescription("Share a code snippet from a file, optionally restricted to a line range."),
		mcp.WithString("recipients",
			mcp.Required(),
			mcp.Description("Agents to share with, separated by '&'."),
		),
		mcp.WithString("file_path",
			mcp.Required(),
			mcp.Description("Path of the code file."),
		),
		mcp.WithString("description",
			mcp.Required(),
			mcp.Description("What the snippet shows."),
		),
		mcp.WithNumber("line_start",
			mcp.Description("First line to include, 1-based (optional)."),
		),
		mcp.WithNumber("line_end",
			mcp.Description("Last line to include, inclusive (optional)."),
		),
	)
}

// Handle processes the share_code_snippet tool call.
func (t *ShareCodeSnippetTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	recipients := splitRecipients(req.GetString("recipients", ""))
	filePath := req.GetString("file_path", "")
	description := req.GetString("description", "")
	lineStart := intArg(req, "line_start", 0)
	lineEnd := intArg(req, "line_end", 0)

	if len(recipients) == 0 || filePath == "" || description == "" {
		return mcp.NewToolResultError("recipients, file_path and description are required"), nil
	}

	fileContent, err := t.messages.ReadWorkspaceFile(filePath)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	snippet := fileContent
	lineInfo := ""
	if lineStart > 0 && lineEnd >= lineStart {
		lines := strings.Split(fileContent, "\n")
		if lineStart <= len(lines) {
			end := lineEnd
			if end > len(lines) {
				end = len(lines)
			}
			snippet = strings.Join(lines[lineStart-1:end], "\n")
		}
		lineInfo = fmt.Sprintf(" (lines %d-%d)", lineStart, lineEnd)
	}

	content := fmt.Sprintf("💻 Code snippet%s\n\nFile: %s\nNotes: %s\n\nCode:\n```\n%s\n```",
		lineInfo, filePath, description, truncate(snippet, embedLimit))

	if _, err := t.messages.Post(recipients, content, &filePath); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf(
		"✅ Snippet shared\nTo: %s\nFile: %s%s",
		strings.Join(recipients, ", "), filePath, lineInfo,
	)), nil
}
