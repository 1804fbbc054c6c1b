package ofs

// Metadata table: a fixed-size array of MetaEntry slots. Grounded on
// pkg/ext4/inode.go's fixed-size inode table handling, generalized from a
// compile-time-only table to one that is read whole on mount and rewritten
// whole on every mutation (spec.md §4.4 accepts this given max_files is
// bounded).

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"os"
)

type metaTable struct {
	entries []MetaEntry
	offset  int64
}

func readMetaTable(f *os.File, offset int64, maxFiles uint32) (*metaTable, error) {
	entries := make([]MetaEntry, maxFiles)
	buf := make([]byte, int64(maxFiles)*MetaEntrySize)
	if _, err := f.ReadAt(buf, offset); err != nil {
		return nil, fmt.Errorf("reading meta table: %w", Err(IOError, "%v", err))
	}

	r := bytes.NewReader(buf)
	for i := range entries {
		if err := binary.Read(r, byteOrder, &entries[i]); err != nil {
			return nil, fmt.Errorf("decoding meta table: %w", Err(IOError, "%v", err))
		}
	}

	return &metaTable{entries: entries, offset: offset}, nil
}

func (t *metaTable) persist(f *os.File) error {
	buf := new(bytes.Buffer)
	buf.Grow(len(t.entries) * MetaEntrySize)
	for i := range t.entries {
		if err := binary.Write(buf, byteOrder, &t.entries[i]); err != nil {
			return fmt.Errorf("encoding meta table: %w", Err(IOError, "%v", err))
		}
	}
	if _, err := f.WriteAt(buf.Bytes(), t.offset); err != nil {
		return fmt.Errorf("writing meta table: %w", Err(IOError, "%v", err))
	}
	return nil
}

// at returns a pointer to the slot at the given 1-based index.
func (t *metaTable) at(idx uint32) *MetaEntry {
	return &t.entries[idx-1]
}

// findFreeSlot performs the linear scan of spec.md §4.4, returning a
// 1-based index or 0 if the table is full.
func (t *metaTable) findFreeSlot() uint32 {
	for i := range t.entries {
		if t.entries[i].Valid == slotFree {
			return uint32(i + 1)
		}
	}
	return 0
}
