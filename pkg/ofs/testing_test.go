package ofs

import (
	"path/filepath"
	"testing"
)

// newTestInstance formats and mounts a small scratch container for use in a
// single test, matching pkg/ext4's "build a tiny throwaway image" test
// style rather than shipping a fixture file.
func newTestInstance(t *testing.T) (*Instance, *Session) {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, "test.omni")

	cfg := Config{
		TotalSize:     1 << 20,
		HeaderSize:    MinHeaderSize,
		BlockSize:     256,
		MaxFiles:      64,
		MaxUsers:      8,
		AdminUsername: "admin",
		AdminPassword: "admin123",
	}

	inst, err := Init(path, cfg, nil)
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	t.Cleanup(func() { inst.Shutdown() })

	sess, err := inst.UserLogin("admin", "admin123")
	if err != nil {
		t.Fatalf("UserLogin: %v", err)
	}

	return inst, sess
}
