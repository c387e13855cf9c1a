package chat

import (
	"fmt"
	"sort"
)

// GroupService is the group engine: named member sets with an
// active/archived lifecycle, built on top of the group-typed messages in
// the shared log.
type GroupService struct {
	store Store
	id    *Identity
}

// NewGroupService creates the group engine.
func NewGroupService(store Store, id *Identity) *GroupService {
	return &GroupService{store: store, id: id}
}

// Create makes a new active group. Members are deduplicated; the creator
// is NOT implicitly added — only the listed members belong to the group.
func (s *GroupService) Create(name, description string, members []string) (string, *Group, error) {
	if name == "" {
		return "", nil, fmt.Errorf("a group name is required")
	}
	if len(members) == 0 {
		return "", nil, fmt.Errorf("at least one member is required")
	}

	groups := s.store.Groups()
	groupID := fmt.Sprintf("GROUP_%s_%d", nowCompact(), len(groups))
	g := Group{
		Name:             name,
		Description:      description,
		Creator:          s.id.CurrentAgent(),
		CreatorSessionID: s.id.CurrentSessionID(),
		Members:          dedupe(members),
		CreatedAt:        nowStamp(),
		Active:           true,
		Status:           GroupActive,
	}
	groups[groupID] = g
	if err := s.store.SaveGroups(groups); err != nil {
		return "", nil, fmt.Errorf("saving groups: %w", err)
	}
	return groupID, &g, nil
}

// Join adds the calling agent to the group. Joining a group you already
// belong to is a no-op reported as informational, not an error.
func (s *GroupService) Join(groupID string) (*Group, bool, error) {
	groups := s.store.Groups()
	group, ok := groups[groupID]
	if !ok {
		return nil, false, fmt.Errorf("group %s not found", groupID)
	}

	agent := s.id.CurrentAgent()
	if group.HasMember(agent) {
		return &group, false, nil
	}

	group.Members = append(group.Members, agent)
	groups[groupID] = group
	if err := s.store.SaveGroups(groups); err != nil {
		return nil, false, fmt.Errorf("saving groups: %w", err)
	}
	return &group, true, nil
}

// Leave removes the calling agent from the group. Leaving a group you
// don't belong to is an error.
func (s *GroupService) Leave(groupID string) (*Group, error) {
	groups := s.store.Groups()
	group, ok := groups[groupID]
	if !ok {
		return nil, fmt.Errorf("group %s not found", groupID)
	}

	agent := s.id.CurrentAgent()
	if !group.HasMember(agent) {
		return nil, fmt.Errorf("you are not a member of group %s", groupID)
	}

	members := group.Members[:0:0]
	for _, m := range group.Members {
		if m != agent {
			members = append(members, m)
		}
	}
	group.Members = members
	groups[groupID] = group
	if err := s.store.SaveGroups(groups); err != nil {
		return nil, fmt.Errorf("saving groups: %w", err)
	}
	return &group, nil
}

// Archive retires a group. Creator-only, and one-way: there is no
// unarchive operation.
func (s *GroupService) Archive(groupID, reason string) (*Group, error) {
	groups := s.store.Groups()
	group, ok := groups[groupID]
	if !ok {
		return nil, fmt.Errorf("group %s not found", groupID)
	}

	agent := s.id.CurrentAgent()
	if agent != group.Creator {
		return nil, fmt.Errorf("only the creator (%s) may archive this group", group.Creator)
	}

	group.Status = GroupArchived
	group.Active = false
	group.ArchivedAt = nowStamp()
	group.ArchivedBy = agent
	if reason != "" {
		group.ArchiveReason = reason
	}
	groups[groupID] = group
	if err := s.store.SaveGroups(groups); err != nil {
		return nil, fmt.Errorf("saving groups: %w", err)
	}
	return &group, nil
}

// GroupPreview is the optional per-group digest computed by List.
type GroupPreview struct {
	LastMessage *Message
	Unread      int
	Mentions    int
}

// GroupListing pairs a group with its ID (the record itself doesn't
// carry one) and an optional preview.
type GroupListing struct {
	ID      string
	Group   Group
	Preview *GroupPreview
}

// List returns groups matching the member and status filters, ordered by
// ID (creation order). Status "all" bypasses status matching entirely.
// With includePreview, each group gets its latest message and the
// caller's unread/mentions counts — a full log scan per group, fine at
// this scale.
func (s *GroupService) List(memberFilter, statusFilter string, includePreview bool) []GroupListing {
	if statusFilter == "" {
		statusFilter = string(GroupActive)
	}

	agent := s.id.CurrentAgent()
	groups := s.store.Groups()
	var messages []Message
	if includePreview {
		messages = s.store.Messages()
	}

	ids := make([]string, 0, len(groups))
	for id := range groups {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var out []GroupListing
	for _, id := range ids {
		group := groups[id]
		if memberFilter != "" && !group.HasMember(memberFilter) {
			continue
		}
		status := group.Status
		if status == "" {
			status = GroupActive
		}
		if statusFilter != "all" && string(status) != statusFilter {
			continue
		}

		listing := GroupListing{ID: id, Group: group}
		if includePreview {
			listing.Preview = s.preview(id, agent, messages)
		}
		out = append(out, listing)
	}
	return out
}

// preview scans the log for one group's latest message and the agent's
// unread/mention counts.
func (s *GroupService) preview(groupID, agent string, messages []Message) *GroupPreview {
	p := &GroupPreview{}
	for i := len(messages) - 1; i >= 0; i-- {
		m := messages[i]
		if m.Type != MessageGroup || m.GroupID != groupID {
			continue
		}
		if p.LastMessage == nil {
			last := m
			p.LastMessage = &last
		}
		if !m.ReadBy(agent, true) {
			p.Unread++
			if containsString(m.Mentions, agent) {
				p.Mentions++
			}
		}
	}
	return p
}

// GroupUnread is one group's unread statistics for the calling agent.
type GroupUnread struct {
	ID        string
	Name      string
	Unread    int
	Mentions  int
	Important int
}

// UnreadCounts computes unread / unread-and-mentions-me /
// unread-and-high-importance per group. With no explicit IDs it covers
// every active group the caller belongs to; requested groups the caller
// isn't a member of are silently skipped.
func (s *GroupService) UnreadCounts(groupIDs []string) []GroupUnread {
	agent := s.id.CurrentAgent()
	groups := s.store.Groups()

	if len(groupIDs) == 0 {
		for id, g := range groups {
			status := g.Status
			if status == "" {
				status = GroupActive
			}
			if g.HasMember(agent) && status == GroupActive {
				groupIDs = append(groupIDs, id)
			}
		}
		sort.Strings(groupIDs)
	}

	messages := s.store.Messages()
	var out []GroupUnread
	for _, groupID := range groupIDs {
		group, ok := groups[groupID]
		if !ok || !group.HasMember(agent) {
			continue
		}

		counts := GroupUnread{ID: groupID, Name: group.Name}
		for _, m := range messages {
			if m.Type != MessageGroup || m.GroupID != groupID {
				continue
			}
			if m.ReadBy(agent, true) {
				continue
			}
			counts.Unread++
			if containsString(m.Mentions, agent) {
				counts.Mentions++
			}
			if m.Importance == ImportanceHigh {
				counts.Important++
			}
		}
		out = append(out, counts)
	}
	return out
}

// ParticipantCount ranks one sender in a summary.
type ParticipantCount struct {
	Sender string
	Count  int
}

// GroupSummary is the digest produced by Summarize.
type GroupSummary struct {
	GroupName    string
	TimeRange    string
	Total        int
	Participants []ParticipantCount
}

// Summarize counts a group's messages over a time range (keyword or
// timestamp; anything unparseable falls back to the last 7 days) and
// ranks participants by message count. Membership required.
func (s *GroupService) Summarize(groupID, timeRange string) (*GroupSummary, error) {
	groups := s.store.Groups()
	group, ok := groups[groupID]
	if !ok {
		return nil, fmt.Errorf("group %s not found", groupID)
	}
	if !group.HasMember(s.id.CurrentAgent()) {
		return nil, fmt.Errorf("you are not a member of group %s", groupID)
	}

	if timeRange == "" {
		timeRange = "last_7_days"
	}
	since, ok := ParseTimeRange(timeRange)
	if !ok {
		since = timeNow().AddDate(0, 0, -7)
	}

	summary := &GroupSummary{GroupName: group.Name, TimeRange: timeRange}
	bySender := map[string]int{}
	for _, m := range s.store.Messages() {
		if m.Type != MessageGroup || m.GroupID != groupID {
			continue
		}
		t, ok := ParseStamp(m.Timestamp)
		if !ok || t.Before(since) {
			continue
		}
		summary.Total++
		bySender[m.Sender]++
	}

	for sender, count := range bySender {
		summary.Participants = append(summary.Participants, ParticipantCount{Sender: sender, Count: count})
	}
	sort.Slice(summary.Participants, func(i, j int) bool {
		if summary.Participants[i].Count != summary.Participants[j].Count {
			return summary.Participants[i].Count > summary.Participants[j].Count
		}
		return summary.Participants[i].Sender < summary.Participants[j].Sender
	})

	return summary, nil
}

// dedupe removes duplicate names, keeping first-occurrence order.
func dedupe(names []string) []string {
	seen := make(map[string]bool, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}
