package ofs

// Metadata, permissions, and filesystem-wide statistics (spec.md §4.10's
// companion read ops). Grounded on the original's get_metadata/
// set_permissions/get_stats (original_source/source/core/ofs_core.cpp).

import "time"

// Metadata is the detailed, single-entry view returned by GetMetadata: the
// logical FileEntry plus the allocator-level block accounting the original
// reports separately (blocks_used, actual_size).
type Metadata struct {
	Path       string
	Entry      FileEntry
	BlocksUsed uint32
	ActualSize uint64
}

// GetMetadata resolves path to its full metadata view, regardless of
// whether it names a file or a directory.
func (inst *Instance) GetMetadata(sess *Session, path string) (*Metadata, error) {
	slot, ok := inst.pathIndex[path]
	if !ok {
		return nil, ErrNotFound
	}
	me := inst.meta.at(slot)
	if !me.InUse() {
		return nil, ErrNotFound
	}

	chain, err := inst.getChain(me.StartIndex)
	if err != nil {
		return nil, err
	}

	return &Metadata{
		Path: path,
		Entry: FileEntry{
			Name:         me.NameString(),
			IsDir:        me.IsDir(),
			Size:         me.TotalSize,
			Permissions:  me.Permissions,
			CreatedTime:  me.CreatedTime,
			ModifiedTime: me.ModifiedTime,
			Owner:        inst.ownerName(me.OwnerID),
			Slot:         slot,
		},
		BlocksUsed: uint32(len(chain)),
		ActualSize: uint64(len(chain)) * inst.header.BlockSize,
	}, nil
}

// SetPermissions overwrites the mode bits of the entry at path.
func (inst *Instance) SetPermissions(sess *Session, path string, permissions uint32) error {
	slot, ok := inst.pathIndex[path]
	if !ok {
		return ErrNotFound
	}
	me := inst.meta.at(slot)
	if !me.InUse() {
		return ErrNotFound
	}

	me.Permissions = permissions
	me.ModifiedTime = uint64(time.Now().Unix())
	return inst.persistMeta()
}

// Stats is the whole-container snapshot returned by GetStats.
type Stats struct {
	TotalSize        uint64
	UsedSpace        uint64
	FreeSpace        uint64
	TotalFiles       uint32
	TotalDirectories uint32
	TotalUsers       uint32
	ActiveSessions   uint32
	FragmentationPct float64
}

// GetStats summarizes allocation and population counters across the whole
// mounted container (spec.md's supplemented stats surface).
func (inst *Instance) GetStats(sess *Session) (*Stats, error) {
	usedBlocks := inst.bmap.popcount()
	freeBlocks := inst.numBlocks - usedBlocks

	var totalFiles, totalDirs uint32
	for i := range inst.meta.entries {
		e := &inst.meta.entries[i]
		if !e.InUse() {
			continue
		}
		if e.IsDir() {
			totalDirs++
		} else {
			totalFiles++
		}
	}

	var totalUsers uint32
	for i := range inst.users.entries {
		if inst.users.entries[i].IsActive != 0 {
			totalUsers++
		}
	}

	var frag float64
	if inst.numBlocks > 0 {
		frag = 100.0 * (1.0 - float64(usedBlocks)/float64(inst.numBlocks))
	}

	return &Stats{
		TotalSize:        inst.header.TotalSize,
		UsedSpace:        uint64(usedBlocks) * inst.header.BlockSize,
		FreeSpace:        uint64(freeBlocks) * inst.header.BlockSize,
		TotalFiles:       totalFiles,
		TotalDirectories: totalDirs,
		TotalUsers:       totalUsers,
		ActiveSessions:   uint32(inst.sessions.count()),
		FragmentationPct: frag,
	}, nil
}
