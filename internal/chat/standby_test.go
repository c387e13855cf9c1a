package chat

import (
	"testing"
	"time"
)

func standbyOpts() StandbyOptions {
	return StandbyOptions{CheckTasks: true, CheckMessages: true, AutoRead: true}
}

func TestStandby_WindowOpensAndCountsDown(t *testing.T) {
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.Local)
	advance := freezeTime(t, base)

	store := newTestStore(t)
	id := register(t, store, "a", "dev")
	svc := NewStandbyService(store, id)

	first, err := svc.Check(standbyOpts())
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if first.Expired {
		t.Fatal("fresh window must not be expired")
	}
	if first.Remaining != StandbyWindow {
		t.Errorf("remaining = %v, want %v", first.Remaining, float64(StandbyWindow))
	}
	if len(first.Tasks) != 0 || len(first.Messages) != 0 {
		t.Errorf("empty store produced work: %+v", first)
	}

	advance(base.Add(100 * time.Second))
	second, err := svc.Check(standbyOpts())
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if second.Expired {
		t.Fatal("window should still be open at 100s")
	}
	if second.Remaining <= 0 || second.Remaining >= StandbyWindow {
		t.Errorf("remaining = %v, want strictly between 0 and %d", second.Remaining, StandbyWindow)
	}
	if second.Elapsed != 100 {
		t.Errorf("elapsed = %v, want 100", second.Elapsed)
	}

	// Both polls reuse the one window row.
	if got := len(store.Standby()); got != 1 {
		t.Errorf("standby rows = %d, want 1", got)
	}
}

func TestStandby_ExpiresOnEmptyPollPastWindow(t *testing.T) {
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.Local)
	advance := freezeTime(t, base)

	store := newTestStore(t)
	id := register(t, store, "a", "dev")
	svc := NewStandbyService(store, id)

	if _, err := svc.Check(standbyOpts()); err != nil {
		t.Fatalf("Check: %v", err)
	}

	advance(base.Add(301 * time.Second))
	result, err := svc.Check(standbyOpts())
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if !result.Expired {
		t.Fatal("empty poll past the window must report expiry")
	}
	if result.Remaining != 0 {
		t.Errorf("remaining = %v, want 0", result.Remaining)
	}
	for _, row := range store.Standby() {
		if row.Active {
			t.Error("expired row must be marked inactive")
		}
	}

	// The next poll opens a fresh window.
	next, err := svc.Check(standbyOpts())
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if next.Expired || next.Remaining != StandbyWindow {
		t.Errorf("post-expiry poll = %+v, want a fresh window", next)
	}
	if got := len(store.Standby()); got != 2 {
		t.Errorf("standby rows = %d, want the old and the fresh one", got)
	}
}

func TestStandby_FindsAssignedTasksEvenPastWindow(t *testing.T) {
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.Local)
	advance := freezeTime(t, base)

	store := newTestStore(t)
	manager := register(t, store, "manager", "manager")
	taskSvc := NewTaskService(store, manager)

	id := register(t, store, "a", "dev")
	svc := NewStandbyService(store, id)
	if _, err := svc.Check(standbyOpts()); err != nil {
		t.Fatalf("Check: %v", err)
	}

	task, err := taskSvc.Create("review", "review the patch", "", "")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := taskSvc.Assign(task.ID, "a"); err != nil {
		t.Fatalf("Assign: %v", err)
	}

	// Work found wins even when the window has long elapsed.
	advance(base.Add(500 * time.Second))
	result, err := svc.Check(standbyOpts())
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if result.Expired {
		t.Error("a poll that found work must not expire")
	}
	if len(result.Tasks) != 1 || result.Tasks[0].ID != task.ID {
		t.Errorf("tasks = %+v, want the assigned task", result.Tasks)
	}
	// The assignment notification is unread private mail for a.
	if len(result.Messages) != 1 {
		t.Errorf("messages = %+v, want the assignment notification", result.Messages)
	}
	if result.State.FoundTasks != 1 || result.State.FoundMessages != 1 {
		t.Errorf("recorded counts = %+v", result.State)
	}
}

func TestStandby_SkipsCompletedTasksAndReadMessages(t *testing.T) {
	store := newTestStore(t)
	manager := register(t, store, "manager", "manager")
	taskSvc := NewTaskService(store, manager)

	task, err := taskSvc.Create("done already", "nothing left", "", "")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := taskSvc.Assign(task.ID, "a"); err != nil {
		t.Fatalf("Assign: %v", err)
	}
	if _, _, err := taskSvc.UpdateStatus(task.ID, TaskCompleted, ""); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}

	id := register(t, store, "a", "dev")
	msgSvc := NewMessageService(store, id, "")
	// Read the assignment notification so nothing is pending.
	var ids []string
	for _, m := range store.Messages() {
		ids = append(ids, m.ID)
	}
	if _, err := msgSvc.MarkRead(ids); err != nil {
		t.Fatalf("MarkRead: %v", err)
	}

	result, err := NewStandbyService(store, id).Check(standbyOpts())
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if len(result.Tasks) != 0 {
		t.Errorf("completed task surfaced: %+v", result.Tasks)
	}
	if len(result.Messages) != 0 {
		t.Errorf("read message surfaced: %+v", result.Messages)
	}
}

func TestStandby_ChecksAreOptional(t *testing.T) {
	store := newTestStore(t)
	manager := register(t, store, "manager", "manager")
	taskSvc := NewTaskService(store, manager)
	task, err := taskSvc.Create("pending", "waiting", "", "")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := taskSvc.Assign(task.ID, "a"); err != nil {
		t.Fatalf("Assign: %v", err)
	}

	id := register(t, store, "a", "dev")
	result, err := NewStandbyService(store, id).Check(StandbyOptions{CheckMessages: true})
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if len(result.Tasks) != 0 {
		t.Errorf("tasks surfaced with check_tasks off: %+v", result.Tasks)
	}
	if len(result.Messages) != 1 {
		t.Errorf("messages = %+v, want the assignment notification", result.Messages)
	}
}
