package tools

import "github.com/crewchat/crewchat/internal/chat"

// statusIcon maps a task status to its display icon.
func statusIcon(status chat.TaskStatus) string {
	switch status {
	case chat.TaskPending:
		return "⏳"
	case chat.TaskInProgress:
		return "🔄"
	case chat.TaskCompleted:
		return "✅"
	case chat.TaskBlocked:
		return "⚠️"
	case chat.TaskCancelled:
		return "❌"
	case chat.TaskDeleted:
		return "🗑️"
	}
	return "•"
}

// priorityIcon maps a task priority to its display icon.
func priorityIcon(p chat.Priority) string {
	switch p {
	case chat.PriorityP0:
		return "🔴"
	case chat.PriorityP1:
		return "🟡"
	}
	return "🟢"
}

// truncate shortens s to max runes, appending "..." when cut.
func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max]) + "..."
}
