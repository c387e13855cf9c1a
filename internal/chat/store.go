package chat

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Document file names inside the data directory.
const (
	MessagesFile       = "messages.json"
	AgentsFile         = "agents.json"
	SessionsFile       = "sessions.json"
	TasksFile          = "tasks.json"
	GroupsFile         = "groups.json"
	StandbyFile        = "standby.json"
	EmployeeConfigFile = "employee_config.json"
)

// Store is the persistence interface for the seven shared documents.
// Abstracted for testability (DIP).
//
// Load methods never fail: an absent or unparseable file yields the
// documented empty default. A corrupt store therefore degrades to
// "empty" rather than halting the system — data loss is traded for
// availability, deliberately.
//
// Save methods rewrite the whole document. There is no locking; two
// processes saving concurrently lose one side's update (last write
// wins). That hazard is documented, not worked around.
type Store interface {
	Messages() []Message
	SaveMessages([]Message) error
	Agents() map[string]AgentInfo
	SaveAgents(map[string]AgentInfo) error
	Sessions() map[string]Session
	SaveSessions(map[string]Session) error
	Tasks() []Task
	SaveTasks([]Task) error
	Groups() map[string]Group
	SaveGroups(map[string]Group) error
	Standby() map[string]StandbyState
	SaveStandby(map[string]StandbyState) error
	EmployeeConfig() map[string]EmployeeEntry
	SaveEmployeeConfig(map[string]EmployeeEntry) error
}

// FileStore implements Store using one JSON file per document under a
// data directory. Writes go through a temp file and a rename, so readers
// never observe a truncated document.
type FileStore struct {
	dir string
}

// NewFileStore creates a filesystem-backed store rooted at dir.
func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

// Dir returns the data directory this store writes to.
func (fs *FileStore) Dir() string {
	return fs.dir
}

// load reads path into v. Returns false on any failure — missing file,
// unreadable file, bad JSON — leaving v untouched for the caller's
// default.
func (fs *FileStore) load(name string, v any) bool {
	data, err := os.ReadFile(filepath.Join(fs.dir, name))
	if err != nil {
		return false
	}
	return json.Unmarshal(data, v) == nil
}

// save serializes v and atomically replaces the document file.
func (fs *FileStore) save(name string, v any) error {
	if err := os.MkdirAll(fs.dir, 0o755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling %s: %w", name, err)
	}

	path := filepath.Join(fs.dir, name)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", name, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replacing %s: %w", name, err)
	}
	return nil
}

func (fs *FileStore) Messages() []Message {
	var m []Message
	fs.load(MessagesFile, &m)
	if m == nil {
		m = []Message{}
	}
	return m
}

func (fs *FileStore) SaveMessages(m []Message) error {
	return fs.save(MessagesFile, m)
}

func (fs *FileStore) Agents() map[string]AgentInfo {
	var a map[string]AgentInfo
	fs.load(AgentsFile, &a)
	if a == nil {
		a = map[string]AgentInfo{}
	}
	return a
}

func (fs *FileStore) SaveAgents(a map[string]AgentInfo) error {
	return fs.save(AgentsFile, a)
}

func (fs *FileStore) Sessions() map[string]Session {
	var s map[string]Session
	fs.load(SessionsFile, &s)
	if s == nil {
		s = map[string]Session{}
	}
	return s
}

func (fs *FileStore) SaveSessions(s map[string]Session) error {
	return fs.save(SessionsFile, s)
}

func (fs *FileStore) Tasks() []Task {
	var t []Task
	fs.load(TasksFile, &t)
	if t == nil {
		t = []Task{}
	}
	return t
}

func (fs *FileStore) SaveTasks(t []Task) error {
	return fs.save(TasksFile, t)
}

func (fs *FileStore) Groups() map[string]Group {
	var g map[string]Group
	fs.load(GroupsFile, &g)
	if g == nil {
		g = map[string]Group{}
	}
	return g
}

func (fs *FileStore) SaveGroups(g map[string]Group) error {
	return fs.save(GroupsFile, g)
}

func (fs *FileStore) Standby() map[string]StandbyState {
	var s map[string]StandbyState
	fs.load(StandbyFile, &s)
	if s == nil {
		s = map[string]StandbyState{}
	}
	return s
}

func (fs *FileStore) SaveStandby(s map[string]StandbyState) error {
	return fs.save(StandbyFile, s)
}

func (fs *FileStore) EmployeeConfig() map[string]EmployeeEntry {
	var e map[string]EmployeeEntry
	fs.load(EmployeeConfigFile, &e)
	if e == nil {
		e = map[string]EmployeeEntry{}
	}
	return e
}

func (fs *FileStore) SaveEmployeeConfig(e map[string]EmployeeEntry) error {
	return fs.save(EmployeeConfigFile, e)
}
