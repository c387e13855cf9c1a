// Package chat implements the shared coordination state for a team of AI
// agents: a single append-only message log, a task list, topic groups,
// registration/session records, and the standby polling protocol.
//
// All state lives in whole JSON documents on disk (see store.go). Every
// operation loads a fresh snapshot, mutates it in memory, and writes the
// full document back. There is no locking: concurrent writers follow
// last-write-wins semantics, which is an accepted property of the system,
// not a defect.
//
// Design notes:
//   - SRP: types, store, identity, and the four engines live in separate files
//   - DIP: Store is an interface; engines and tools depend on the abstraction
//   - Status/priority/importance vocabularies are closed string enums,
//     validated at the tool boundary and never translated.
package chat

import "fmt"

// --- Message type enum ---

// MessageType discriminates the two kinds of log entries. An empty value
// in a stored document means private (messages written before group
// support have no type field).
type MessageType string

const (
	MessagePrivate MessageType = "private"
	MessageGroup   MessageType = "group"
)

// --- Task status enum ---

// TaskStatus is the task lifecycle vocabulary. The labels are part of the
// external contract (other agents and tooling match on them literally)
// and must not be localized or renamed.
type TaskStatus string

const (
	TaskPending    TaskStatus = "待开始"
	TaskInProgress TaskStatus = "进行中"
	TaskCompleted  TaskStatus = "已完成"
	TaskBlocked    TaskStatus = "已阻塞"
	TaskCancelled  TaskStatus = "已取消"
	TaskDeleted    TaskStatus = "已删除"
)

// settableTaskStatuses are the statuses update_task_status may write.
// 已删除 is reachable only through delete_task.
var settableTaskStatuses = map[TaskStatus]bool{
	TaskPending:    true,
	TaskInProgress: true,
	TaskCompleted:  true,
	TaskBlocked:    true,
	TaskCancelled:  true,
}

// ValidateTaskStatus returns an error if the status is not one an agent
// may set directly.
func ValidateTaskStatus(s TaskStatus) error {
	if !settableTaskStatuses[s] {
		return fmt.Errorf("invalid task status %q: must be one of: 待开始, 进行中, 已完成, 已阻塞, 已取消", s)
	}
	return nil
}

// --- Priority enum ---

// Priority ranks tasks. P0 is most urgent.
type Priority string

const (
	PriorityP0 Priority = "P0"
	PriorityP1 Priority = "P1"
	PriorityP2 Priority = "P2"
)

var validPriorities = map[Priority]bool{
	PriorityP0: true,
	PriorityP1: true,
	PriorityP2: true,
}

// ValidatePriority returns an error if the priority is not recognized.
func ValidatePriority(p Priority) error {
	if !validPriorities[p] {
		return fmt.Errorf("invalid priority %q: must be one of: P0, P1, P2", p)
	}
	return nil
}

// --- Importance enum ---

// Importance weights group messages for filtering and unread statistics.
type Importance string

const (
	ImportanceLow    Importance = "low"
	ImportanceNormal Importance = "normal"
	ImportanceHigh   Importance = "high"
)

var validImportances = map[Importance]bool{
	ImportanceLow:    true,
	ImportanceNormal: true,
	ImportanceHigh:   true,
}

// ValidateImportance returns an error if the importance is not recognized.
func ValidateImportance(i Importance) error {
	if !validImportances[i] {
		return fmt.Errorf("invalid importance %q: must be one of: low, normal, high", i)
	}
	return nil
}

// --- Group status enum ---

// GroupStatus tracks the group lifecycle. Archiving is one-way: there is
// no unarchive operation — callers needing a "reactivated" group create a
// new one.
type GroupStatus string

const (
	GroupActive   GroupStatus = "active"
	GroupArchived GroupStatus = "archived"
)

// --- Core data structures ---

// Message is one entry in the global append-only log. Private and group
// messages share the log, distinguished by Type. Sender identity fields
// are snapshots taken at send time and never updated retroactively; the
// same goes for Recipients on group messages (membership changes do not
// rewrite history).
//
// The log is append-only except for in-place mutation of Read entries and
// the pin fields. No message is ever removed.
type Message struct {
	ID              string      `json:"id"`
	Sender          string      `json:"sender"`
	SenderRole      string      `json:"sender_role"`
	SenderSessionID string      `json:"sender_session_id"`
	Type            MessageType `json:"type,omitempty"`
	GroupID         string      `json:"group_id,omitempty"`
	GroupName       string      `json:"group_name,omitempty"`
	Recipients      []string    `json:"recipients"`
	Content         string      `json:"content"`
	FilePath        *string     `json:"file_path"`
	Topic           string      `json:"topic,omitempty"`
	Mentions        []string    `json:"mentions,omitempty"`
	Importance      Importance  `json:"importance,omitempty"`
	IsPinned        bool        `json:"is_pinned,omitempty"`
	PinnedAt        string      `json:"pinned_at,omitempty"`
	PinnedBy        string      `json:"pinned_by,omitempty"`
	ReplyTo         string      `json:"reply_to,omitempty"`
	ReplyToSender   string      `json:"reply_to_sender,omitempty"`
	ReplyToContent  string      `json:"reply_to_content,omitempty"`
	Timestamp       string      `json:"timestamp"`

	// Read maps agent name → read flag, one entry per recipient at
	// creation time. Agents added to a group later do not gain entries
	// for older messages.
	Read map[string]bool `json:"read"`
}

// IsPrivate reports whether the message belongs to the private half of
// the log. Messages with no type field are private.
func (m *Message) IsPrivate() bool {
	return m.Type == "" || m.Type == MessagePrivate
}

// ReadBy reports the read flag for an agent, treating a missing entry
// per the caller-supplied default (call sites disagree on what absence
// means, and that disagreement is part of the observed contract).
func (m *Message) ReadBy(agent string, absent bool) bool {
	v, ok := m.Read[agent]
	if !ok {
		return absent
	}
	return v
}

// Task is one entry in the task list. Soft-deleted tasks keep their
// record with Status 已删除 and are excluded from all listings.
type Task struct {
	ID               string     `json:"id"`
	Title            string     `json:"title"`
	Description      string     `json:"description"`
	Priority         Priority   `json:"priority"`
	Status           TaskStatus `json:"status"`
	Creator          string     `json:"creator"`
	CreatorSessionID string     `json:"creator_session_id,omitempty"`
	Assignee         *string    `json:"assignee"`
	CreatedAt        string     `json:"created_at"`
	UpdatedAt        string     `json:"updated_at"`
	DueDate          string     `json:"due_date,omitempty"`
	ProgressNote     string     `json:"progress_note,omitempty"`
	DeletedAt        string     `json:"deleted_at,omitempty"`
	DeletedBy        string     `json:"deleted_by,omitempty"`
}

// AssignedTo returns the assignee name, empty when unassigned.
func (t *Task) AssignedTo() string {
	if t.Assignee == nil {
		return ""
	}
	return *t.Assignee
}

// Group is a named member set. Groups are stored as a map keyed by group
// ID, so the ID does not appear inside the record itself.
type Group struct {
	Name             string      `json:"name"`
	Description      string      `json:"description"`
	Creator          string      `json:"creator"`
	CreatorSessionID string      `json:"creator_session_id,omitempty"`
	Members          []string    `json:"members"`
	CreatedAt        string      `json:"created_at"`
	Active           bool        `json:"active"`
	Status           GroupStatus `json:"status"`
	ArchivedAt       string      `json:"archived_at,omitempty"`
	ArchivedBy       string      `json:"archived_by,omitempty"`
	ArchiveReason    string      `json:"archive_reason,omitempty"`
	PinnedMessages   []string    `json:"pinned_messages,omitempty"`
}

// HasMember reports whether the agent is currently a group member.
func (g *Group) HasMember(agent string) bool {
	for _, m := range g.Members {
		if m == agent {
			return true
		}
	}
	return false
}

// IsActive reports whether the group accepts new messages. Records
// written before the status field existed fall back to the legacy
// Active flag.
func (g *Group) IsActive() bool {
	if g.Status != "" {
		return g.Status == GroupActive
	}
	return g.Active
}

// AgentInfo is the registration record for an agent name, keyed by name
// in the agents document. Re-registering carries role/description forward
// when the new call omits them.
type AgentInfo struct {
	Role                 string `json:"role"`
	Description          string `json:"description"`
	SessionID            string `json:"session_id"`
	RegisteredAt         string `json:"registered_at"`
	PreviousRegisteredAt string `json:"previous_registered_at,omitempty"`
}

// Session binds an agent name to a role for a period of time, keyed by
// session ID in the sessions document. Multiple sessions per agent may
// exist; registration deactivates the agent's older sessions.
type Session struct {
	AgentName   string `json:"agent_name"`
	Role        string `json:"role"`
	Description string `json:"description"`
	CreatedAt   string `json:"created_at"`
	Active      bool   `json:"active"`
}

// StandbyState is one ephemeral polling row, keyed by a random ID in the
// standby document. Superseded rows are never garbage-collected.
type StandbyState struct {
	Agent          string `json:"agent"`
	SessionID      string `json:"session_id"`
	CheckTasks     bool   `json:"check_tasks"`
	CheckMessages  bool   `json:"check_messages"`
	AutoRead       bool   `json:"auto_read"`
	StatusMessage  string `json:"status_message,omitempty"`
	StartedAt      string `json:"started_at"`
	LastCheck      string `json:"last_check"`
	Active         bool   `json:"active"`
	TimeoutSeconds int    `json:"timeout_seconds"`
	FoundTasks     int    `json:"found_tasks"`
	FoundMessages  int    `json:"found_messages"`
}

// EmployeeEntry maps an agent name to its .mdc role file, keyed by agent
// name in the employee config document.
type EmployeeEntry struct {
	MDCFilePath string `json:"mdc_file_path"`
	UpdatedAt   string `json:"updated_at"`
}

// UnknownRole is the sender_role recorded when no session is active.
// Like the task statuses, it is part of the stored vocabulary.
const UnknownRole = "未知"
