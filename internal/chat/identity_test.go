package chat

import (
	"testing"
	"time"
)

func TestRegister_RequiresRoleForNewAgent(t *testing.T) {
	store := newTestStore(t)
	id := NewIdentity(store, "")

	if _, err := id.Register("a", "", ""); err == nil {
		t.Fatal("registering a new agent without a role should fail")
	}
}

func TestRegister_InheritsRoleFromPreviousRegistration(t *testing.T) {
	store := newTestStore(t)

	id := NewIdentity(store, "")
	if _, err := id.Register("a", "backend engineer", "does backends"); err != nil {
		t.Fatalf("first registration: %v", err)
	}

	// A fresh process re-registers the same name without a role.
	id2 := NewIdentity(store, "")
	reg, err := id2.Register("a", "", "")
	if err != nil {
		t.Fatalf("re-registration: %v", err)
	}
	if reg.Role != "backend engineer" {
		t.Errorf("inherited role = %q, want %q", reg.Role, "backend engineer")
	}
	if reg.Description != "does backends" {
		t.Errorf("inherited description = %q", reg.Description)
	}
	if reg.Previous == nil {
		t.Error("re-registration should report the previous agent info")
	}
}

func TestRegister_DeactivatesOlderSessions(t *testing.T) {
	store := newTestStore(t)
	tick := freezeTime(t, time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC))

	id := NewIdentity(store, "")
	first, err := id.Register("a", "dev", "")
	if err != nil {
		t.Fatalf("first registration: %v", err)
	}

	tick(time.Date(2026, 3, 1, 10, 5, 0, 0, time.UTC))
	second, err := NewIdentity(store, "").Register("a", "", "")
	if err != nil {
		t.Fatalf("second registration: %v", err)
	}

	sessions := store.Sessions()
	if sessions[first.SessionID].Active {
		t.Error("first session should be deactivated by re-registration")
	}
	if !sessions[second.SessionID].Active {
		t.Error("second session should be active")
	}
}

func TestRegister_ReportsPendingTasks(t *testing.T) {
	store := newTestStore(t)

	manager := register(t, store, "manager", "manager")
	tasks := NewTaskService(store, manager)
	created, err := tasks.Create("fix login", "login is broken", PriorityP0, "")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := tasks.Assign(created.ID, "a"); err != nil {
		t.Fatalf("Assign: %v", err)
	}

	reg, err := NewIdentity(store, "").Register("a", "dev", "")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if len(reg.PendingTasks) != 1 || reg.PendingTasks[0].ID != created.ID {
		t.Fatalf("PendingTasks = %+v, want the assigned task", reg.PendingTasks)
	}
}

func TestIdentity_DefaultAgentRecoversNewestActiveSession(t *testing.T) {
	store := newTestStore(t)
	tick := freezeTime(t, time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))

	if _, err := NewIdentity(store, "").Register("a", "dev", ""); err != nil {
		t.Fatalf("first registration: %v", err)
	}
	tick(time.Date(2026, 3, 1, 11, 0, 0, 0, time.UTC))
	second, err := NewIdentity(store, "").Register("a", "", "")
	if err != nil {
		t.Fatalf("second registration: %v", err)
	}

	// Simulates a restarted server configured for agent "a".
	recovered := NewIdentity(store, "a")
	if got := recovered.CurrentSessionID(); got != second.SessionID {
		t.Errorf("CurrentSessionID() = %q, want newest active %q", got, second.SessionID)
	}
	if got := recovered.CurrentAgent(); got != "a" {
		t.Errorf("CurrentAgent() = %q, want a", got)
	}
}

func TestIdentity_UnknownWithoutRegistration(t *testing.T) {
	store := newTestStore(t)
	id := NewIdentity(store, "")

	if got := id.CurrentAgent(); got != "unknown" {
		t.Errorf("CurrentAgent() = %q, want unknown", got)
	}
	if got := id.CurrentRole(); got != UnknownRole {
		t.Errorf("CurrentRole() = %q, want %q", got, UnknownRole)
	}
}
