package chat

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// replySnapshotLen caps the quoted content carried on a reply.
const replySnapshotLen = 200

// MessageService is the messaging engine: append-only private and group
// messages on the shared log, with filtering, read-tracking, replies, and
// pinning.
type MessageService struct {
	store     Store
	id        *Identity
	workspace string
}

// NewMessageService creates the messaging engine. Relative file
// references are resolved against workspace.
func NewMessageService(store Store, id *Identity, workspace string) *MessageService {
	return &MessageService{store: store, id: id, workspace: workspace}
}

// ReadWorkspaceFile reads a referenced file, resolving relative paths
// against the workspace root.
func (s *MessageService) ReadWorkspaceFile(path string) (string, error) {
	resolved := path
	if !filepath.IsAbs(resolved) {
		resolved = filepath.Join(s.workspace, path)
	}
	data, err := os.ReadFile(resolved)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("file not found: %s", path)
		}
		return "", fmt.Errorf("reading file %s: %v", path, err)
	}
	return string(data), nil
}

// Send appends a private message. When fileRef is given the file's full
// contents replace the literal message text; empty final content is an
// error.
func (s *MessageService) Send(recipients []string, message, fileRef string) (*Message, error) {
	content := message
	var fp *string
	if fileRef != "" {
		text, err := s.ReadWorkspaceFile(fileRef)
		if err != nil {
			return nil, err
		}
		content = text
		ref := fileRef
		fp = &ref
	}
	return s.Post(recipients, content, fp)
}

// Post appends a private message with pre-composed content. Used by Send
// and by the request/notify/snippet tools that build their own bodies.
func (s *MessageService) Post(recipients []string, content string, filePath *string) (*Message, error) {
	if len(recipients) == 0 {
		return nil, fmt.Errorf("at least one recipient is required")
	}
	if content == "" {
		return nil, fmt.Errorf("message content is empty")
	}

	messages := s.store.Messages()
	m := Message{
		ID:              newMessageID(len(messages)),
		Sender:          s.id.CurrentAgent(),
		SenderRole:      s.id.CurrentRole(),
		SenderSessionID: s.id.CurrentSessionID(),
		Recipients:      recipients,
		Content:         content,
		FilePath:        filePath,
		Timestamp:       nowStamp(),
		Read:            unreadMap(recipients),
	}
	messages = append(messages, m)
	if err := s.store.SaveMessages(messages); err != nil {
		return nil, fmt.Errorf("saving messages: %w", err)
	}
	return &m, nil
}

// SendGroup appends a group message. Recipients are a snapshot of the
// current membership; archived groups and non-members are rejected. A
// reply_to that doesn't resolve against the log is silently dropped
// rather than failing the send.
func (s *MessageService) SendGroup(groupID, message, fileRef, topic, replyTo string, mentions []string, importance Importance) (*Message, *Group, error) {
	groups := s.store.Groups()
	group, ok := groups[groupID]
	if !ok {
		return nil, nil, fmt.Errorf("group %s not found", groupID)
	}
	if !group.IsActive() {
		return nil, nil, fmt.Errorf("group %s is archived", groupID)
	}
	agent := s.id.CurrentAgent()
	if !group.HasMember(agent) {
		return nil, nil, fmt.Errorf("you are not a member of group %s", groupID)
	}

	content := message
	var fp *string
	if fileRef != "" {
		text, err := s.ReadWorkspaceFile(fileRef)
		if err != nil {
			return nil, nil, err
		}
		content = text
		ref := fileRef
		fp = &ref
	}
	if content == "" {
		return nil, nil, fmt.Errorf("message content is empty")
	}
	if importance == "" {
		importance = ImportanceNormal
	}
	if mentions == nil {
		mentions = []string{}
	}

	messages := s.store.Messages()
	members := append([]string(nil), group.Members...)
	m := Message{
		ID:              newMessageID(len(messages)),
		Sender:          agent,
		SenderRole:      s.id.CurrentRole(),
		SenderSessionID: s.id.CurrentSessionID(),
		Type:            MessageGroup,
		GroupID:         groupID,
		GroupName:       group.Name,
		Recipients:      members,
		Content:         content,
		FilePath:        fp,
		Topic:           topic,
		Mentions:        mentions,
		Importance:      importance,
		Timestamp:       nowStamp(),
		Read:            unreadMap(members),
	}

	if replyTo != "" {
		for i := range messages {
			if messages[i].ID == replyTo {
				m.ReplyTo = replyTo
				m.ReplyToSender = messages[i].Sender
				m.ReplyToContent = truncateRunes(messages[i].Content, replySnapshotLen)
				break
			}
		}
	}

	messages = append(messages, m)
	if err := s.store.SaveMessages(messages); err != nil {
		return nil, nil, fmt.Errorf("saving messages: %w", err)
	}
	return &m, &group, nil
}

// ReceiveFilter selects private messages.
type ReceiveFilter struct {
	// Recipient narrows to messages addressed to this name; "*" matches
	// every private message.
	Recipient  string
	UnreadOnly bool
	Since      string
	Keywords   []string
	Limit      int
}

// Receive returns private messages newest first. Filters apply in order:
// type, recipient, read-state, time lower bound, keywords; the result is
// capped at Limit. Read-state is judged against the calling agent, and a
// malformed Since is ignored rather than rejected.
func (s *MessageService) Receive(f ReceiveFilter) []Message {
	agent := s.id.CurrentAgent()
	since, haveSince := ParseStamp(f.Since)

	var out []Message
	messages := s.store.Messages()
	for i := len(messages) - 1; i >= 0; i-- {
		m := messages[i]
		if !m.IsPrivate() {
			continue
		}
		if f.Recipient != "*" && !containsString(m.Recipients, f.Recipient) {
			continue
		}
		if f.UnreadOnly && m.ReadBy(agent, true) {
			continue
		}
		if haveSince {
			if t, ok := ParseStamp(m.Timestamp); ok && t.Before(since) {
				continue
			}
		}
		if !matchesKeywords(m.Content, f.Keywords) {
			continue
		}
		out = append(out, m)
		if f.Limit > 0 && len(out) >= f.Limit {
			break
		}
	}
	return out
}

// GroupReceiveFilter selects messages of one group.
type GroupReceiveFilter struct {
	GroupID    string
	UnreadOnly bool
	Since      string
	Keywords   []string
	Topic      string
	MentionsMe bool
	Importance Importance
	ShowPinned bool
	Limit      int
}

// ReceiveGroup returns one group's messages newest first, membership
// required. When ShowPinned is set, pinned messages are moved to the
// front of the already-limited result — the limit is applied before the
// reorder, so pinned messages beyond the window are not pulled in.
func (s *MessageService) ReceiveGroup(f GroupReceiveFilter) ([]Message, *Group, error) {
	groups := s.store.Groups()
	group, ok := groups[f.GroupID]
	if !ok {
		return nil, nil, fmt.Errorf("group %s not found", f.GroupID)
	}
	agent := s.id.CurrentAgent()
	if !group.HasMember(agent) {
		return nil, nil, fmt.Errorf("you are not a member of group %s", f.GroupID)
	}

	since, haveSince := ParseStamp(f.Since)

	var out []Message
	messages := s.store.Messages()
	for i := len(messages) - 1; i >= 0; i-- {
		m := messages[i]
		if m.Type != MessageGroup || m.GroupID != f.GroupID {
			continue
		}
		if f.UnreadOnly && m.ReadBy(agent, true) {
			continue
		}
		if haveSince {
			if t, ok := ParseStamp(m.Timestamp); ok && t.Before(since) {
				continue
			}
		}
		if !matchesKeywords(m.Content, f.Keywords) {
			continue
		}
		if f.Topic != "" && m.Topic != f.Topic {
			continue
		}
		if f.MentionsMe && !containsString(m.Mentions, agent) {
			continue
		}
		if f.Importance != "" && m.Importance != f.Importance {
			continue
		}
		out = append(out, m)
		if f.Limit > 0 && len(out) >= f.Limit {
			break
		}
	}

	if f.ShowPinned && len(out) > 0 {
		var pinned, rest []Message
		for _, m := range out {
			if m.IsPinned {
				pinned = append(pinned, m)
			} else {
				rest = append(rest, m)
			}
		}
		out = append(pinned, rest...)
	}

	return out, &group, nil
}

// MarkRead flags the given messages as read by the calling agent.
// Only messages that already carry a read entry for the agent are
// touched — other recipients' messages are unaffected — and unknown IDs
// are silently ignored. Idempotent.
func (s *MessageService) MarkRead(ids []string) (int, error) {
	agent := s.id.CurrentAgent()
	wanted := make(map[string]bool, len(ids))
	for _, id := range ids {
		wanted[id] = true
	}

	messages := s.store.Messages()
	count := 0
	for i := range messages {
		if !wanted[messages[i].ID] {
			continue
		}
		if _, ok := messages[i].Read[agent]; !ok {
			continue
		}
		messages[i].Read[agent] = true
		count++
	}

	if count > 0 {
		if err := s.store.SaveMessages(messages); err != nil {
			return 0, fmt.Errorf("saving messages: %w", err)
		}
	}
	return count, nil
}

// Pin flags a group message for priority display. The caller must be a
// member; the flag is mirrored into the group's pinned_messages list.
func (s *MessageService) Pin(groupID, messageID string) (*Message, *Group, error) {
	group, err := s.memberGroup(groupID)
	if err != nil {
		return nil, nil, err
	}

	messages := s.store.Messages()
	idx := -1
	for i := range messages {
		if messages[i].ID == messageID && messages[i].GroupID == groupID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, nil, fmt.Errorf("message %s not found in group %s", messageID, groupID)
	}

	messages[idx].IsPinned = true
	messages[idx].PinnedAt = nowStamp()
	messages[idx].PinnedBy = s.id.CurrentAgent()
	if err := s.store.SaveMessages(messages); err != nil {
		return nil, nil, fmt.Errorf("saving messages: %w", err)
	}

	if !containsString(group.PinnedMessages, messageID) {
		group.PinnedMessages = append(group.PinnedMessages, messageID)
		groups := s.store.Groups()
		groups[groupID] = *group
		if err := s.store.SaveGroups(groups); err != nil {
			return nil, nil, fmt.Errorf("saving groups: %w", err)
		}
	}

	return &messages[idx], group, nil
}

// Unpin clears the pin flag and removes the message from the group's
// pinned list.
func (s *MessageService) Unpin(groupID, messageID string) (*Group, error) {
	group, err := s.memberGroup(groupID)
	if err != nil {
		return nil, err
	}

	messages := s.store.Messages()
	idx := -1
	for i := range messages {
		if messages[i].ID == messageID && messages[i].GroupID == groupID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, fmt.Errorf("message %s not found in group %s", messageID, groupID)
	}

	messages[idx].IsPinned = false
	if err := s.store.SaveMessages(messages); err != nil {
		return nil, fmt.Errorf("saving messages: %w", err)
	}

	for i, id := range group.PinnedMessages {
		if id == messageID {
			group.PinnedMessages = append(group.PinnedMessages[:i], group.PinnedMessages[i+1:]...)
			groups := s.store.Groups()
			groups[groupID] = *group
			if err := s.store.SaveGroups(groups); err != nil {
				return nil, fmt.Errorf("saving groups: %w", err)
			}
			break
		}
	}

	return group, nil
}

// memberGroup loads a group and verifies the caller's membership.
func (s *MessageService) memberGroup(groupID string) (*Group, error) {
	groups := s.store.Groups()
	group, ok := groups[groupID]
	if !ok {
		return nil, fmt.Errorf("group %s not found", groupID)
	}
	if !group.HasMember(s.id.CurrentAgent()) {
		return nil, fmt.Errorf("you are not a member of group %s", groupID)
	}
	return &group, nil
}

// --- Shared helpers ---

// newMessageID derives a message ID from the timestamp and the log
// length at append time. Not collision-safe under concurrent writers —
// a best-effort invariant the rest of the system can live with, and the
// format is observable by external tooling, so it stays.
func newMessageID(logLen int) string {
	return fmt.Sprintf("%s_%d", nowStamp(), logLen)
}

// unreadMap builds the initial read map: one false entry per recipient.
func unreadMap(recipients []string) map[string]bool {
	read := make(map[string]bool, len(recipients))
	for _, r := range recipients {
		read[r] = false
	}
	return read
}

// matchesKeywords reports whether content contains any of the keywords,
// case-insensitively. No keywords means no filtering.
func matchesKeywords(content string, keywords []string) bool {
	if len(keywords) == 0 {
		return true
	}
	lower := strings.ToLower(content)
	for _, kw := range keywords {
		if kw != "" && strings.Contains(lower, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// truncateRunes shortens s to at most n runes. Rune-based so multi-byte
// text isn't cut mid-character.
func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
