package chat

import (
	"testing"
	"time"
)

// newTestStore returns a FileStore rooted in a fresh temp dir.
func newTestStore(t *testing.T) *FileStore {
	t.Helper()
	return NewFileStore(t.TempDir())
}

// register creates an identity bound to the store and registers it.
func register(t *testing.T, store Store, name, role string) *Identity {
	t.Helper()
	id := NewIdentity(store, "")
	if _, err := id.Register(name, role, ""); err != nil {
		t.Fatalf("registering %s: %v", name, err)
	}
	return id
}

// freezeTime pins the package clock and restores it on cleanup.
func freezeTime(t *testing.T, at time.Time) func(time.Time) {
	t.Helper()
	timeNow = func() time.Time { return at }
	t.Cleanup(func() { timeNow = time.Now })
	return func(next time.Time) {
		timeNow = func() time.Time { return next }
	}
}
