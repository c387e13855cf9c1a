package chat

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func newMessageEnv(t *testing.T) (*FileStore, *MessageService, *Identity) {
	t.Helper()
	store := newTestStore(t)
	id := register(t, store, "a", "dev")
	return store, NewMessageService(store, id, t.TempDir()), id
}

func TestSend_OneUnreadEntryPerRecipient(t *testing.T) {
	_, svc, _ := newMessageEnv(t)

	msg, err := svc.Send([]string{"b", "c"}, "hello", "")
	if err != nil {
		t.Fatalf("Send: %v", err)
	}

	if len(msg.Read) != 2 {
		t.Fatalf("read map has %d entries, want 2", len(msg.Read))
	}
	for _, r := range []string{"b", "c"} {
		if read, ok := msg.Read[r]; !ok || read {
			t.Errorf("read[%s] = %v,%v, want false entry", r, read, ok)
		}
	}
	if msg.FilePath != nil {
		t.Error("literal sends should have a null file_path")
	}
	if !msg.IsPrivate() {
		t.Error("direct sends must be private messages")
	}
}

func TestSend_FileContentReplacesMessage(t *testing.T) {
	store := newTestStore(t)
	id := register(t, store, "a", "dev")
	workspace := t.TempDir()
	svc := NewMessageService(store, id, workspace)

	if err := os.WriteFile(filepath.Join(workspace, "plan.md"), []byte("the plan"), 0o644); err != nil {
		t.Fatalf("writing workspace file: %v", err)
	}

	msg, err := svc.Send([]string{"b"}, "ignored text", "plan.md")
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if msg.Content != "the plan" {
		t.Errorf("content = %q, want file content", msg.Content)
	}
	if msg.FilePath == nil || *msg.FilePath != "plan.md" {
		t.Errorf("file_path = %v, want plan.md", msg.FilePath)
	}
}

func TestSend_MissingFileFails(t *testing.T) {
	_, svc, _ := newMessageEnv(t)

	if _, err := svc.Send([]string{"b"}, "", "missing.md"); err == nil {
		t.Fatal("sending a nonexistent file should fail")
	}
}

func TestSend_EmptyContentFails(t *testing.T) {
	_, svc, _ := newMessageEnv(t)

	if _, err := svc.Send([]string{"b"}, "", ""); err == nil {
		t.Fatal("empty content should fail")
	}
	if _, err := svc.Send(nil, "hi", ""); err == nil {
		t.Fatal("no recipients should fail")
	}
}

func TestReceive_UnreadOnlyNeverReturnsRead(t *testing.T) {
	store, svc, _ := newMessageEnv(t)

	sent, err := svc.Send([]string{"b"}, "for b", "")
	if err != nil {
		t.Fatalf("Send: %v", err)
	}

	b := register(t, store, "b", "dev")
	bSvc := NewMessageService(store, b, t.TempDir())

	got := bSvc.Receive(ReceiveFilter{Recipient: "b", UnreadOnly: true})
	if len(got) != 1 {
		t.Fatalf("unread receive = %d messages, want 1", len(got))
	}

	if _, err := bSvc.MarkRead([]string{sent.ID}); err != nil {
		t.Fatalf("MarkRead: %v", err)
	}
	if got := bSvc.Receive(ReceiveFilter{Recipient: "b", UnreadOnly: true}); len(got) != 0 {
		t.Errorf("unread receive after MarkRead = %d messages, want 0", len(got))
	}
}

func TestReceive_NewestFirstAndLimit(t *testing.T) {
	_, svc, _ := newMessageEnv(t)

	for _, text := range []string{"one", "two", "three"} {
		if _, err := svc.Send([]string{"b"}, text, ""); err != nil {
			t.Fatalf("Send %s: %v", text, err)
		}
	}

	got := svc.Receive(ReceiveFilter{Recipient: "b", Limit: 2})
	if len(got) != 2 {
		t.Fatalf("limited receive = %d messages, want 2", len(got))
	}
	if got[0].Content != "three" || got[1].Content != "two" {
		t.Errorf("order = %q,%q, want newest first", got[0].Content, got[1].Content)
	}
}

func TestReceive_KeywordsAnyMatchCaseInsensitive(t *testing.T) {
	_, svc, _ := newMessageEnv(t)

	if _, err := svc.Send([]string{"b"}, "Deploy finished OK", ""); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if _, err := svc.Send([]string{"b"}, "lunch plans", ""); err != nil {
		t.Fatalf("Send: %v", err)
	}

	got := svc.Receive(ReceiveFilter{Recipient: "b", Keywords: []string{"deploy", "rollback"}})
	if len(got) != 1 || !strings.Contains(got[0].Content, "Deploy") {
		t.Fatalf("keyword receive = %+v, want only the deploy message", got)
	}
}

func TestPrivateAndGroupLogsAreDisjoint(t *testing.T) {
	store := newTestStore(t)
	a := register(t, store, "a", "dev")
	svc := NewMessageService(store, a, t.TempDir())
	groups := NewGroupService(store, a)

	groupID, _, err := groups.Create("team", "", []string{"a", "b"})
	if err != nil {
		t.Fatalf("Create group: %v", err)
	}
	if _, _, err := svc.SendGroup(groupID, "group text", "", "", "", nil, ""); err != nil {
		t.Fatalf("SendGroup: %v", err)
	}
	if _, err := svc.Send([]string{"b"}, "private text", ""); err != nil {
		t.Fatalf("Send: %v", err)
	}

	private := svc.Receive(ReceiveFilter{Recipient: "*"})
	if len(private) != 1 || private[0].Content != "private text" {
		t.Fatalf("private receive = %+v, want only the private message", private)
	}

	grouped, _, err := svc.ReceiveGroup(GroupReceiveFilter{GroupID: groupID})
	if err != nil {
		t.Fatalf("ReceiveGroup: %v", err)
	}
	if len(grouped) != 1 || grouped[0].Content != "group text" {
		t.Fatalf("group receive = %+v, want only the group message", grouped)
	}
}

func TestMarkRead_IdempotentAndScopedToExistingEntries(t *testing.T) {
	store, svc, _ := newMessageEnv(t)

	sent, err := svc.Send([]string{"b"}, "for b", "")
	if err != nil {
		t.Fatalf("Send: %v", err)
	}

	// "c" is not a recipient: marking must not create an entry.
	c := register(t, store, "c", "dev")
	cSvc := NewMessageService(store, c, t.TempDir())
	if n, err := cSvc.MarkRead([]string{sent.ID}); err != nil || n != 0 {
		t.Fatalf("MarkRead by non-recipient = %d,%v, want 0", n, err)
	}
	if _, ok := store.Messages()[0].Read["c"]; ok {
		t.Error("MarkRead must not create read entries for non-recipients")
	}

	b := register(t, store, "b", "dev")
	bSvc := NewMessageService(store, b, t.TempDir())
	if n, _ := bSvc.MarkRead([]string{sent.ID}); n != 1 {
		t.Fatalf("first MarkRead = %d, want 1", n)
	}
	if n, _ := bSvc.MarkRead([]string{sent.ID}); n != 1 {
		t.Fatalf("second MarkRead = %d, want 1 (idempotent)", n)
	}
	if !store.Messages()[0].Read["b"] {
		t.Error("message should stay read after repeated MarkRead")
	}

	// Unknown IDs are ignored, not errors.
	if n, err := bSvc.MarkRead([]string{"nope"}); err != nil || n != 0 {
		t.Errorf("MarkRead unknown id = %d,%v, want 0,nil", n, err)
	}
}

func TestSendGroup_MembershipAndLifecycle(t *testing.T) {
	store := newTestStore(t)
	a := register(t, store, "a", "dev")
	groups := NewGroupService(store, a)

	groupID, _, err := groups.Create("team", "", []string{"a", "b"})
	if err != nil {
		t.Fatalf("Create group: %v", err)
	}

	outsider := register(t, store, "z", "dev")
	zSvc := NewMessageService(store, outsider, t.TempDir())
	if _, _, err := zSvc.SendGroup(groupID, "hi", "", "", "", nil, ""); err == nil {
		t.Fatal("non-member send should fail")
	}

	aSvc := NewMessageService(store, a, t.TempDir())
	if _, _, err := aSvc.SendGroup("GROUP_none", "hi", "", "", "", nil, ""); err == nil {
		t.Fatal("send to unknown group should fail")
	}

	if _, err := groups.Archive(groupID, "done"); err != nil {
		t.Fatalf("Archive: %v", err)
	}
	if _, _, err := aSvc.SendGroup(groupID, "hi", "", "", "", nil, ""); err == nil {
		t.Fatal("send to archived group should fail")
	}
}

func TestSendGroup_ReplySnapshotTruncated(t *testing.T) {
	store := newTestStore(t)
	a := register(t, store, "a", "dev")
	groups := NewGroupService(store, a)
	svc := NewMessageService(store, a, t.TempDir())

	groupID, _, err := groups.Create("team", "", []string{"a", "b"})
	if err != nil {
		t.Fatalf("Create group: %v", err)
	}

	long := strings.Repeat("x", replySnapshotLen+50)
	original, _, err := svc.SendGroup(groupID, long, "", "", "", nil, "")
	if err != nil {
		t.Fatalf("SendGroup: %v", err)
	}

	reply, _, err := svc.SendGroup(groupID, "agreed", "", "", original.ID, nil, "")
	if err != nil {
		t.Fatalf("SendGroup reply: %v", err)
	}
	if reply.ReplyTo != original.ID || reply.ReplyToSender != "a" {
		t.Errorf("reply metadata = %q/%q", reply.ReplyTo, reply.ReplyToSender)
	}
	if len([]rune(reply.ReplyToContent)) != replySnapshotLen {
		t.Errorf("snapshot length = %d, want %d", len([]rune(reply.ReplyToContent)), replySnapshotLen)
	}

	// An unresolvable reply_to is dropped, not an error.
	plain, _, err := svc.SendGroup(groupID, "fresh", "", "", "missing-id", nil, "")
	if err != nil {
		t.Fatalf("SendGroup with bad reply_to: %v", err)
	}
	if plain.ReplyTo != "" {
		t.Errorf("bad reply_to should be dropped, got %q", plain.ReplyTo)
	}
}

func TestSendGroup_DefaultsImportanceToNormal(t *testing.T) {
	store := newTestStore(t)
	a := register(t, store, "a", "dev")
	groups := NewGroupService(store, a)
	svc := NewMessageService(store, a, t.TempDir())

	groupID, _, err := groups.Create("team", "", []string{"a"})
	if err != nil {
		t.Fatalf("Create group: %v", err)
	}
	msg, _, err := svc.SendGroup(groupID, "hi", "", "", "", nil, "")
	if err != nil {
		t.Fatalf("SendGroup: %v", err)
	}
	if msg.Importance != ImportanceNormal {
		t.Errorf("importance = %q, want normal", msg.Importance)
	}
}

func TestReceiveGroup_FiltersAndPinnedReorder(t *testing.T) {
	store := newTestStore(t)
	a := register(t, store, "a", "dev")
	groups := NewGroupService(store, a)
	svc := NewMessageService(store, a, t.TempDir())

	groupID, _, err := groups.Create("team", "", []string{"a", "b"})
	if err != nil {
		t.Fatalf("Create group: %v", err)
	}

	first, _, err := svc.SendGroup(groupID, "design notes", "", "design", "", nil, "")
	if err != nil {
		t.Fatalf("SendGroup: %v", err)
	}
	if _, _, err := svc.SendGroup(groupID, "ping", "", "", "", []string{"b"}, ImportanceHigh); err != nil {
		t.Fatalf("SendGroup: %v", err)
	}

	byTopic, _, err := svc.ReceiveGroup(GroupReceiveFilter{GroupID: groupID, Topic: "design"})
	if err != nil {
		t.Fatalf("ReceiveGroup: %v", err)
	}
	if len(byTopic) != 1 || byTopic[0].ID != first.ID {
		t.Fatalf("topic filter = %+v, want only the design message", byTopic)
	}

	byImportance, _, err := svc.ReceiveGroup(GroupReceiveFilter{GroupID: groupID, Importance: ImportanceHigh})
	if err != nil {
		t.Fatalf("ReceiveGroup: %v", err)
	}
	if len(byImportance) != 1 || byImportance[0].Content != "ping" {
		t.Fatalf("importance filter = %+v", byImportance)
	}

	// Pin the older message; with ShowPinned it moves to the front.
	if _, _, err := svc.Pin(groupID, first.ID); err != nil {
		t.Fatalf("Pin: %v", err)
	}
	ordered, _, err := svc.ReceiveGroup(GroupReceiveFilter{GroupID: groupID, ShowPinned: true})
	if err != nil {
		t.Fatalf("ReceiveGroup: %v", err)
	}
	if len(ordered) != 2 || ordered[0].ID != first.ID || !ordered[0].IsPinned {
		t.Fatalf("pinned-first order = %+v", ordered)
	}
}

func TestReceiveGroup_MentionsMe(t *testing.T) {
	store := newTestStore(t)
	a := register(t, store, "a", "dev")
	groups := NewGroupService(store, a)
	aSvc := NewMessageService(store, a, t.TempDir())

	groupID, _, err := groups.Create("team", "", []string{"a", "b"})
	if err != nil {
		t.Fatalf("Create group: %v", err)
	}
	if _, _, err := aSvc.SendGroup(groupID, "for b", "", "", "", []string{"b"}, ""); err != nil {
		t.Fatalf("SendGroup: %v", err)
	}
	if _, _, err := aSvc.SendGroup(groupID, "for everyone", "", "", "", nil, ""); err != nil {
		t.Fatalf("SendGroup: %v", err)
	}

	b := register(t, store, "b", "dev")
	bSvc := NewMessageService(store, b, t.TempDir())
	got, _, err := bSvc.ReceiveGroup(GroupReceiveFilter{GroupID: groupID, MentionsMe: true})
	if err != nil {
		t.Fatalf("ReceiveGroup: %v", err)
	}
	if len(got) != 1 || got[0].Content != "for b" {
		t.Fatalf("mentions filter = %+v", got)
	}
}

func TestPinUnpin_MirrorsGroupList(t *testing.T) {
	store := newTestStore(t)
	a := register(t, store, "a", "dev")
	groups := NewGroupService(store, a)
	svc := NewMessageService(store, a, t.TempDir())

	groupID, _, err := groups.Create("team", "", []string{"a"})
	if err != nil {
		t.Fatalf("Create group: %v", err)
	}
	msg, _, err := svc.SendGroup(groupID, "keep this", "", "", "", nil, "")
	if err != nil {
		t.Fatalf("SendGroup: %v", err)
	}

	if _, _, err := svc.Pin(groupID, msg.ID); err != nil {
		t.Fatalf("Pin: %v", err)
	}
	g := store.Groups()[groupID]
	if len(g.PinnedMessages) != 1 || g.PinnedMessages[0] != msg.ID {
		t.Fatalf("pinned list = %v", g.PinnedMessages)
	}

	if _, err := svc.Unpin(groupID, msg.ID); err != nil {
		t.Fatalf("Unpin: %v", err)
	}
	g = store.Groups()[groupID]
	if len(g.PinnedMessages) != 0 {
		t.Fatalf("pinned list after unpin = %v", g.PinnedMessages)
	}
	if store.Messages()[0].IsPinned {
		t.Error("message should no longer be pinned")
	}

	if _, _, err := svc.Pin(groupID, "missing"); err == nil {
		t.Error("pinning an unknown message should fail")
	}
}

func TestGroupRoundTrip(t *testing.T) {
	store := newTestStore(t)

	m := register(t, store, "m", "manager")
	groupID, _, err := NewGroupService(store, m).Create("trio", "", []string{"m", "a", "b"})
	if err != nil {
		t.Fatalf("Create group: %v", err)
	}

	a := register(t, store, "a", "dev")
	if _, _, err := NewMessageService(store, a, t.TempDir()).SendGroup(groupID, "hello crew", "", "", "", nil, ""); err != nil {
		t.Fatalf("SendGroup: %v", err)
	}

	b := register(t, store, "b", "dev")
	got, _, err := NewMessageService(store, b, t.TempDir()).ReceiveGroup(GroupReceiveFilter{GroupID: groupID})
	if err != nil {
		t.Fatalf("ReceiveGroup: %v", err)
	}
	if len(got) != 1 || got[0].Sender != "a" || got[0].Content != "hello crew" {
		t.Fatalf("round trip = %+v, want one message from a", got)
	}
}
