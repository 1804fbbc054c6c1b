package ofs

import (
	"path/filepath"
	"testing"
)

func TestFsckCleanContainerReportsNothing(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "clean.omni")
	cfg := Config{
		TotalSize: 1 << 20, HeaderSize: MinHeaderSize, BlockSize: 256,
		MaxFiles: 32, MaxUsers: 4, AdminUsername: "admin", AdminPassword: "admin123",
	}
	inst, err := Init(path, cfg, nil)
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	sess, err := inst.UserLogin("admin", "admin123")
	if err != nil {
		t.Fatalf("UserLogin: %v", err)
	}
	if err := inst.FileCreate(sess, "/a.txt", []byte("hello")); err != nil {
		t.Fatalf("FileCreate: %v", err)
	}
	inst.Shutdown()

	report, err := Fsck(path, false)
	if err != nil {
		t.Fatalf("Fsck: %v", err)
	}
	if len(report.LeakedBlocks) != 0 || len(report.CorruptBlocks) != 0 || len(report.DanglingSlots) != 0 {
		t.Errorf("Fsck on a clean container reported problems: %+v", report)
	}
}

func TestFsckDetectsLeakedBlock(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "leak.omni")
	cfg := Config{
		TotalSize: 1 << 20, HeaderSize: MinHeaderSize, BlockSize: 256,
		MaxFiles: 32, MaxUsers: 4, AdminUsername: "admin", AdminPassword: "admin123",
	}
	inst, err := Init(path, cfg, nil)
	if err != nil {
		t.Fatalf("Init: %v", err)
	}

	// Mark a block allocated without any meta entry pointing at it.
	inst.bmap.allocate(1)
	if err := inst.persistBitmap(); err != nil {
		t.Fatalf("persistBitmap: %v", err)
	}
	inst.Shutdown()

	report, err := Fsck(path, false)
	if err != nil {
		t.Fatalf("Fsck: %v", err)
	}
	if len(report.LeakedBlocks) != 1 {
		t.Fatalf("LeakedBlocks = %v, want exactly one leaked block", report.LeakedBlocks)
	}
}

func TestFsckRepairClearsDanglingSlot(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "dangling.omni")
	cfg := Config{
		TotalSize: 1 << 20, HeaderSize: MinHeaderSize, BlockSize: 256,
		MaxFiles: 32, MaxUsers: 4, AdminUsername: "admin", AdminPassword: "admin123",
	}
	inst, err := Init(path, cfg, nil)
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	sess, err := inst.UserLogin("admin", "admin123")
	if err != nil {
		t.Fatalf("UserLogin: %v", err)
	}
	if err := inst.FileCreate(sess, "/orphan.txt", []byte("x")); err != nil {
		t.Fatalf("FileCreate: %v", err)
	}

	// Corrupt the entry's parent pointer so its chain never reaches root.
	slot := inst.pathIndex["/orphan.txt"]
	inst.meta.at(slot).Parent = slot
	if err := inst.persistMeta(); err != nil {
		t.Fatalf("persistMeta: %v", err)
	}
	inst.Shutdown()

	report, err := Fsck(path, true)
	if err != nil {
		t.Fatalf("Fsck: %v", err)
	}
	if len(report.DanglingSlots) != 1 || !report.Repaired {
		t.Fatalf("Fsck repair report = %+v, want one dangling slot and Repaired=true", report)
	}

	// Re-running fsck after repair should find nothing left to fix.
	clean, err := Fsck(path, false)
	if err != nil {
		t.Fatalf("Fsck after repair: %v", err)
	}
	if len(clean.DanglingSlots) != 0 {
		t.Errorf("DanglingSlots after repair = %v, want none", clean.DanglingSlots)
	}
}
