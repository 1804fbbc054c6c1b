package ofs

import "testing"

func TestValidateRejectsUndersizedHeader(t *testing.T) {
	cfg := DefaultConfig()
	cfg.HeaderSize = 10
	if err := cfg.Validate(); err == nil {
		t.Errorf("expected Validate to reject an undersized header")
	}
}

func TestValidateRejectsUndersizedBlock(t *testing.T) {
	cfg := DefaultConfig()
	cfg.BlockSize = 10
	if err := cfg.Validate(); err == nil {
		t.Errorf("expected Validate to reject an undersized block")
	}
}

func TestValidateRejectsNoRoomForData(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TotalSize = cfg.HeaderSize + 1
	if err := cfg.Validate(); err == nil {
		t.Errorf("expected Validate to reject a container with no room for data blocks")
	}
}

func TestFormatThenMountHasRoot(t *testing.T) {
	inst, _ := newTestInstance(t)

	if !inst.meta.at(rootSlot).InUse() {
		t.Fatalf("root slot must be in use after Format")
	}
	if !inst.meta.at(rootSlot).IsDir() {
		t.Fatalf("root slot must be a directory")
	}
	if got := inst.buildPath(rootSlot); got != "/" {
		t.Errorf("buildPath(root) = %q, want %q", got, "/")
	}
}

func TestLayoutOfIsStableFixedPoint(t *testing.T) {
	cfg := DefaultConfig()
	_, _, bitmapOffset, numBlocks, bitmapBytesN := layoutOf(cfg)

	if numBlocks <= 0 {
		t.Fatalf("layoutOf produced %d blocks, want > 0", numBlocks)
	}
	// The region must fit inside total_size exactly once resolved.
	end := bitmapOffset + bitmapBytesN + numBlocks*int64(cfg.BlockSize)
	if end > int64(cfg.TotalSize) {
		t.Errorf("computed layout overflows total_size: end=%d > total=%d", end, cfg.TotalSize)
	}
}
