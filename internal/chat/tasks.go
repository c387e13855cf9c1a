package chat

import (
	"fmt"
)

// assignmentRole is the sender_role stamped on the notification message
// emitted by Assign. Part of the stored vocabulary.
const assignmentRole = "任务分配"

// ManagerAgent is the privileged agent name: it may view every task and
// delete tasks it did not create. Matched literally.
const ManagerAgent = "manager"

// TaskService is the task engine: creation, assignment with notification,
// free-form status transitions, scoped listing, and soft/hard delete.
type TaskService struct {
	store Store
	id    *Identity
}

// NewTaskService creates the task engine.
func NewTaskService(store Store, id *Identity) *TaskService {
	return &TaskService{store: store, id: id}
}

// Create adds a task in the pending state with no assignee.
func (s *TaskService) Create(title, description string, priority Priority, dueDate string) (*Task, error) {
	if title == "" || description == "" {
		return nil, fmt.Errorf("a task title and description are required")
	}
	if priority == "" {
		priority = PriorityP2
	}
	if err := ValidatePriority(priority); err != nil {
		return nil, err
	}

	tasks := s.store.Tasks()
	now := nowStamp()
	t := Task{
		ID:               fmt.Sprintf("TASK_%s_%d", nowCompact(), len(tasks)),
		Title:            title,
		Description:      description,
		Priority:         priority,
		Status:           TaskPending,
		Creator:          s.id.CurrentAgent(),
		CreatorSessionID: s.id.CurrentSessionID(),
		CreatedAt:        now,
		UpdatedAt:        now,
		DueDate:          dueDate,
	}
	tasks = append(tasks, t)
	if err := s.store.SaveTasks(tasks); err != nil {
		return nil, fmt.Errorf("saving tasks: %w", err)
	}
	return &t, nil
}

// Assign hands a task to an agent. The status is unconditionally reset
// to 待开始 — even from 进行中 or 已完成; reassignment restarts the task
// from the top. A private notification message to the assignee is
// emitted as part of the same call.
func (s *TaskService) Assign(taskID, assignee string) (*Task, error) {
	tasks := s.store.Tasks()
	idx := -1
	for i := range tasks {
		if tasks[i].ID == taskID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, fmt.Errorf("task %s not found", taskID)
	}

	name := assignee
	tasks[idx].Assignee = &name
	tasks[idx].Status = TaskPending
	tasks[idx].UpdatedAt = nowStamp()
	if err := s.store.SaveTasks(tasks); err != nil {
		return nil, fmt.Errorf("saving tasks: %w", err)
	}
	assigned := tasks[idx]

	messages := s.store.Messages()
	notification := Message{
		ID:              newMessageID(len(messages)),
		Sender:          s.id.CurrentAgent(),
		SenderRole:      assignmentRole,
		SenderSessionID: s.id.CurrentSessionID(),
		Recipients:      []string{assignee},
		Content: fmt.Sprintf("📋 Task assigned\nTask ID: %s\nTitle: %s\nAssigned to: %s",
			taskID, assigned.Title, assignee),
		Timestamp: nowStamp(),
		Read:      unreadMap([]string{assignee}),
	}
	messages = append(messages, notification)
	if err := s.store.SaveMessages(messages); err != nil {
		return nil, fmt.Errorf("saving notification message: %w", err)
	}

	return &assigned, nil
}

// UpdateStatus moves the task to the given status and returns the
// previous one. Deliberately not a state machine: any status may follow
// any other.
func (s *TaskService) UpdateStatus(taskID string, status TaskStatus, progressNote string) (TaskStatus, *Task, error) {
	if err := ValidateTaskStatus(status); err != nil {
		return "", nil, err
	}

	tasks := s.store.Tasks()
	for i := range tasks {
		if tasks[i].ID != taskID {
			continue
		}
		old := tasks[i].Status
		tasks[i].Status = status
		tasks[i].UpdatedAt = nowStamp()
		if progressNote != "" {
			tasks[i].ProgressNote = progressNote
		}
		if err := s.store.SaveTasks(tasks); err != nil {
			return "", nil, fmt.Errorf("saving tasks: %w", err)
		}
		return old, &tasks[i], nil
	}
	return "", nil, fmt.Errorf("task %s not found", taskID)
}

// List returns tasks matching the filters. Non-manager callers asking
// for "*" are silently scoped down to their own assignments; soft-deleted
// tasks never appear, whatever the filters say.
func (s *TaskService) List(assignee string, status TaskStatus, priority Priority) []Task {
	agent := s.id.CurrentAgent()
	if assignee == "*" && agent != ManagerAgent {
		assignee = agent
	}

	var out []Task
	for _, t := range s.store.Tasks() {
		if t.Status == TaskDeleted {
			continue
		}
		if assignee != "*" && t.AssignedTo() != assignee {
			continue
		}
		if status != "" && t.Status != status {
			continue
		}
		if priority != "" && t.Priority != priority {
			continue
		}
		out = append(out, t)
	}
	return out
}

// DeletedTask describes one successful removal in a Delete batch.
type DeletedTask struct {
	ID        string
	Title     string
	Permanent bool
}

// DeleteFailure describes one rejected ID in a Delete batch.
type DeleteFailure struct {
	ID     string
	Reason string
}

// DeleteReport is the per-item outcome of a Delete batch. Partial
// success is expected; callers report item by item.
type DeleteReport struct {
	Deleted []DeletedTask
	Failed  []DeleteFailure
}

// Delete removes (permanent) or soft-deletes the given tasks. Only the
// creator or the manager may delete a task; unauthorized and unknown IDs
// are collected as failures without aborting the rest of the batch.
func (s *TaskService) Delete(taskIDs []string, permanent bool) (*DeleteReport, error) {
	agent := s.id.CurrentAgent()
	tasks := s.store.Tasks()
	report := &DeleteReport{}

	for _, taskID := range taskIDs {
		idx := -1
		for i := range tasks {
			if tasks[i].ID == taskID {
				idx = i
				break
			}
		}
		if idx < 0 {
			report.Failed = append(report.Failed, DeleteFailure{ID: taskID, Reason: "task not found"})
			continue
		}

		creator := tasks[idx].Creator
		if agent != creator && agent != ManagerAgent {
			report.Failed = append(report.Failed, DeleteFailure{
				ID:     taskID,
				Reason: fmt.Sprintf("permission denied (only the creator %s or manager may delete)", creator),
			})
			continue
		}

		title := tasks[idx].Title
		if permanent {
			tasks = append(tasks[:idx], tasks[idx+1:]...)
		} else {
			tasks[idx].Status = TaskDeleted
			tasks[idx].DeletedAt = nowStamp()
			tasks[idx].DeletedBy = agent
		}
		report.Deleted = append(report.Deleted, DeletedTask{ID: taskID, Title: title, Permanent: permanent})
	}

	if err := s.store.SaveTasks(tasks); err != nil {
		return nil, fmt.Errorf("saving tasks: %w", err)
	}
	return report, nil
}
