package chat

import (
	"fmt"
	"sync"
)

// Identity is the explicit per-process identity context: which agent this
// server is acting as and under which session. It replaces the ambient
// globals a first cut of this system would reach for — every engine gets
// the same Identity injected, so the coupling is visible in constructors.
type Identity struct {
	store Store

	// defaultAgent, when non-empty, allows session recovery after a
	// restart: the most recent active session for that agent name is
	// adopted without re-registering.
	defaultAgent string

	mu        sync.Mutex
	agent     string
	sessionID string
}

// NewIdentity creates an identity context backed by the given store.
func NewIdentity(store Store, defaultAgent string) *Identity {
	return &Identity{store: store, defaultAgent: defaultAgent}
}

// CurrentAgent returns the agent name this process acts as: the
// explicitly registered name, else the name recorded on the current
// session, else the sentinel "unknown".
func (id *Identity) CurrentAgent() string {
	id.mu.Lock()
	agent, sessionID := id.agent, id.sessionID
	id.mu.Unlock()

	if agent != "" {
		return agent
	}
	if sessionID != "" {
		if s, ok := id.store.Sessions()[sessionID]; ok {
			return s.AgentName
		}
	}
	return "unknown"
}

// CurrentSessionID returns the session this process registered in this
// run. If none exists (fresh process), it falls back to the most recently
// created active session for the configured default agent.
func (id *Identity) CurrentSessionID() string {
	id.mu.Lock()
	defer id.mu.Unlock()

	if id.sessionID != "" {
		return id.sessionID
	}
	if id.defaultAgent == "" {
		return ""
	}

	var bestID, bestCreated string
	for sid, s := range id.store.Sessions() {
		if s.AgentName != id.defaultAgent || !s.Active {
			continue
		}
		if s.CreatedAt > bestCreated {
			bestID, bestCreated = sid, s.CreatedAt
		}
	}
	if bestID != "" {
		id.sessionID = bestID
		id.agent = id.defaultAgent
	}
	return bestID
}

// CurrentRole returns the role recorded on the current session, or the
// unknown-role sentinel.
func (id *Identity) CurrentRole() string {
	sid := id.CurrentSessionID()
	if sid == "" {
		return UnknownRole
	}
	if s, ok := id.store.Sessions()[sid]; ok && s.Role != "" {
		return s.Role
	}
	return UnknownRole
}

// Registration reports the outcome of Register, including the courtesy
// payload of tasks already waiting for the agent.
type Registration struct {
	SessionID    string
	AgentName    string
	Role         string
	Description  string
	Previous     *AgentInfo
	PendingTasks []Task
}

// Register creates a new session for the agent, deactivating the agent's
// older sessions, and records (or refreshes) the registration entry.
// Role and description fall back to the agent's previous registration
// when omitted; no determinable role is a user-facing error, not a
// crash.
func (id *Identity) Register(name, role, description string) (*Registration, error) {
	if name == "" {
		return nil, fmt.Errorf("an agent name is required")
	}

	agents := id.store.Agents()
	var previous *AgentInfo
	if prev, ok := agents[name]; ok {
		previous = &prev
	}

	if role == "" && previous != nil {
		role = previous.Role
	}
	if role == "" {
		return nil, fmt.Errorf("a role is required: supply one, or configure it with set_employee_config so it can be loaded from the agent's .mdc file")
	}
	if description == "" && previous != nil {
		description = previous.Description
	}

	now := timeNow()
	sessionID := fmt.Sprintf("%s_%s", name, now.Format(compactLayout))

	sessions := id.store.Sessions()
	for sid, s := range sessions {
		if s.AgentName == name && s.Active {
			s.Active = false
			sessions[sid] = s
		}
	}
	sessions[sessionID] = Session{
		AgentName:   name,
		Role:        role,
		Description: description,
		CreatedAt:   now.Format(stampLayout),
		Active:      true,
	}
	if err := id.store.SaveSessions(sessions); err != nil {
		return nil, fmt.Errorf("saving sessions: %w", err)
	}

	info := AgentInfo{
		Role:         role,
		Description:  description,
		SessionID:    sessionID,
		RegisteredAt: now.Format(stampLayout),
	}
	if previous != nil {
		info.PreviousRegisteredAt = previous.RegisteredAt
	}
	agents[name] = info
	if err := id.store.SaveAgents(agents); err != nil {
		return nil, fmt.Errorf("saving agents: %w", err)
	}

	id.mu.Lock()
	id.agent = name
	id.sessionID = sessionID
	id.mu.Unlock()

	// Courtesy payload: tasks already waiting for this agent.
	var pending []Task
	for _, t := range id.store.Tasks() {
		if t.AssignedTo() == name && (t.Status == TaskPending || t.Status == TaskInProgress) {
			pending = append(pending, t)
		}
	}

	return &Registration{
		SessionID:    sessionID,
		AgentName:    name,
		Role:         role,
		Description:  description,
		Previous:     previous,
		PendingTasks: pending,
	}, nil
}
