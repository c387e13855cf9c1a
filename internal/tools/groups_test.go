package tools

import (
	"context"
	"strings"
	"testing"
)

func TestCreateGroupTool_Handle(t *testing.T) {
	e := newToolEnv(t, "manager", "manager")
	tool := NewCreateGroupTool(e.groups)

	result, err := tool.Handle(context.Background(), call(map[string]interface{}{
		"name":    "frontend",
		"members": []interface{}{"manager", "a", "b"},
	}))
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	if isErrorResult(result) {
		t.Fatalf("expected success, got error: %s", getResultText(result))
	}

	text := getResultText(result)
	if !strings.Contains(text, "✅ Group created") {
		t.Errorf("confirmation missing: %s", text)
	}
	if !strings.Contains(text, "Members: manager, a, b") {
		t.Errorf("member list wrong: %s", text)
	}
}

func TestCreateGroupTool_Handle_NoMembers(t *testing.T) {
	e := newToolEnv(t, "manager", "manager")
	tool := NewCreateGroupTool(e.groups)

	result, err := tool.Handle(context.Background(), call(map[string]interface{}{
		"name": "empty",
	}))
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	if !isErrorResult(result) {
		t.Fatal("a group without members should be a tool error")
	}
}

func TestJoinGroupTool_Handle_AlreadyMember(t *testing.T) {
	e := newToolEnv(t, "a", "dev")
	groupID, _, err := e.groups.Create("crew", "", []string{"a", "b"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	tool := NewJoinGroupTool(e.groups)
	result, err := tool.Handle(context.Background(), call(map[string]interface{}{
		"group_id": groupID,
	}))
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	// Informational, not an error.
	if isErrorResult(result) {
		t.Fatal("re-joining must not be a tool error")
	}
	if !strings.Contains(getResultText(result), "ℹ️ You are already a member") {
		t.Errorf("result = %q", getResultText(result))
	}
}

func TestLeaveGroupTool_Handle_NotMember(t *testing.T) {
	e := newToolEnv(t, "a", "dev")
	groupID, _, err := e.groups.Create("crew", "", []string{"b"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	tool := NewLeaveGroupTool(e.groups)
	result, err := tool.Handle(context.Background(), call(map[string]interface{}{
		"group_id": groupID,
	}))
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	if !isErrorResult(result) {
		t.Fatal("leaving a group you don't belong to should be a tool error")
	}
}

func TestListGroupsTool_Handle(t *testing.T) {
	e := newToolEnv(t, "a", "dev")
	if _, _, err := e.groups.Create("crew", "daily work", []string{"a", "b"}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	archivedID, _, err := e.groups.Create("old", "", []string{"a"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := e.groups.Archive(archivedID, "wrapped"); err != nil {
		t.Fatalf("Archive: %v", err)
	}

	tool := NewListGroupsTool(e.groups)

	// Default: active only.
	result, err := tool.Handle(context.Background(), call(map[string]interface{}{}))
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	text := getResultText(result)
	if !strings.Contains(text, "👥 Groups: 1 found") || !strings.Contains(text, "crew") {
		t.Errorf("default listing wrong: %s", text)
	}

	// status=all shows the archive metadata too.
	result, err = tool.Handle(context.Background(), call(map[string]interface{}{
		"status": "all",
	}))
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	text = getResultText(result)
	if !strings.Contains(text, "👥 Groups: 2 found") {
		t.Errorf("all listing wrong: %s", text)
	}
	if !strings.Contains(text, "Reason: wrapped") {
		t.Errorf("archive reason missing: %s", text)
	}
}

func TestArchiveGroupTool_Handle_CreatorOnly(t *testing.T) {
	e := newToolEnv(t, "a", "dev")
	groupID, _, err := e.groups.Create("crew", "", []string{"a", "b"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	b := e.as(t, "b", "dev")
	tool := NewArchiveGroupTool(b.groups)
	result, err := tool.Handle(context.Background(), call(map[string]interface{}{
		"group_id": groupID,
	}))
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	if !isErrorResult(result) {
		t.Fatal("non-creator archive should be a tool error")
	}

	tool = NewArchiveGroupTool(e.groups)
	result, err = tool.Handle(context.Background(), call(map[string]interface{}{
		"group_id": groupID,
		"reason":   "project done",
	}))
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	if !strings.Contains(getResultText(result), "📦 Group archived") {
		t.Errorf("result = %q", getResultText(result))
	}
}
