package chat

import (
	"fmt"

	"github.com/google/uuid"
)

// StandbyWindow is how long a polling loop may run without finding work
// before the server tells the caller to stop.
const StandbyWindow = 300 // seconds

// StandbyOptions controls one standby poll.
type StandbyOptions struct {
	CheckTasks    bool
	CheckMessages bool
	AutoRead      bool
	StatusMessage string
}

// StandbyResult is what one poll observed. Each call returns
// immediately; waiting happens on the caller's side between polls.
// Elapsed and Remaining are in seconds.
type StandbyResult struct {
	Elapsed   float64
	Remaining float64
	Expired   bool
	Tasks     []Task
	Messages  []Message
	State     StandbyState
}

// StandbyService implements the wait-for-work polling protocol.
type StandbyService struct {
	store Store
	id    *Identity
}

// NewStandbyService creates the standby engine.
func NewStandbyService(store Store, id *Identity) *StandbyService {
	return &StandbyService{store: store, id: id}
}

// Check runs one standby poll for the calling agent. The first poll (or
// any poll after the previous window expired) opens a fresh window;
// subsequent polls reuse it. Finding any work keeps the window open
// indefinitely; an empty poll past the window marks the row inactive and
// reports expiry so the caller stops looping.
func (s *StandbyService) Check(opts StandbyOptions) (*StandbyResult, error) {
	agent := s.id.CurrentAgent()
	sessionID := s.id.CurrentSessionID()
	now := timeNow()

	// The active row is matched even past its window: the empty-poll
	// branch below is what retires it, so expiry is reported exactly
	// once instead of silently opening a fresh window.
	states := s.store.Standby()
	key := ""
	var row StandbyState
	for k, st := range states {
		if st.Agent != agent || st.SessionID != sessionID || !st.Active {
			continue
		}
		if _, ok := ParseStamp(st.StartedAt); !ok {
			continue
		}
		key, row = k, st
		break
	}
	if key == "" {
		key = uuid.NewString()
		row = StandbyState{
			Agent:          agent,
			SessionID:      sessionID,
			StartedAt:      nowStamp(),
			Active:         true,
			TimeoutSeconds: StandbyWindow,
		}
	}

	row.CheckTasks = opts.CheckTasks
	row.CheckMessages = opts.CheckMessages
	row.AutoRead = opts.AutoRead
	row.StatusMessage = opts.StatusMessage
	row.LastCheck = nowStamp()

	result := &StandbyResult{}
	if opts.CheckTasks {
		for _, t := range s.store.Tasks() {
			if t.AssignedTo() != agent {
				continue
			}
			if t.Status == TaskPending || t.Status == TaskInProgress {
				result.Tasks = append(result.Tasks, t)
			}
		}
	}
	if opts.CheckMessages {
		messages := s.store.Messages()
		for i := len(messages) - 1; i >= 0; i-- {
			m := messages[i]
			if !m.IsPrivate() {
				continue
			}
			if !containsString(m.Recipients, agent) && !containsString(m.Recipients, "*") {
				continue
			}
			// Absent read entries count as unread here: a standby
			// agent should see everything addressed to it.
			if m.ReadBy(agent, false) {
				continue
			}
			result.Messages = append(result.Messages, m)
		}
	}

	started, _ := ParseStamp(row.StartedAt)
	result.Elapsed = now.Sub(started).Seconds()
	if result.Elapsed < 0 {
		result.Elapsed = 0
	}
	result.Remaining = float64(row.TimeoutSeconds) - result.Elapsed
	if result.Remaining < 0 {
		result.Remaining = 0
	}

	row.FoundTasks = len(result.Tasks)
	row.FoundMessages = len(result.Messages)

	if len(result.Tasks) == 0 && len(result.Messages) == 0 && result.Elapsed >= float64(row.TimeoutSeconds) {
		row.Active = false
		result.Expired = true
		result.Remaining = 0
	}

	states[key] = row
	if err := s.store.SaveStandby(states); err != nil {
		return nil, fmt.Errorf("saving standby state: %w", err)
	}

	result.State = row
	return result, nil
}
