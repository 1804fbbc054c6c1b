package ofs

// File and directory operations (spec.md §4.6-§4.11). Grounded on the
// original's file_create/file_read/file_edit/file_truncate/file_delete/
// file_rename/dir_create/dir_list/dir_delete/dir_exists/file_exists
// (original_source/source/core/ofs_core.cpp), wired onto the chain/bitmap/
// transcoder/meta primitives already generalized in this package.

import "time"

// FileEntry is the directory-listing view returned by DirList, the Go
// analogue of the original's FileEntry struct.
type FileEntry struct {
	Name         string
	IsDir        bool
	Size         uint64
	Permissions  uint32
	CreatedTime  uint64
	ModifiedTime uint64
	Owner        string
	Slot         uint32
}

func (inst *Instance) blockPayload() uint64 {
	return inst.header.BlockSize - BlockNextSize
}

// resolveEntry looks up path and returns its slot and entry pointer, failing
// with NotFound if the slot is absent, stale, or doesn't match wantDir.
func (inst *Instance) resolveEntry(path string, wantDir bool) (uint32, *MetaEntry, error) {
	slot, ok := inst.pathIndex[path]
	if !ok {
		return 0, nil, ErrNotFound
	}
	if slot == 0 || int(slot) > len(inst.meta.entries) {
		return 0, nil, ErrNotFound
	}
	e := inst.meta.at(slot)
	if !e.InUse() {
		return 0, nil, ErrNotFound
	}
	if e.IsDir() != wantDir {
		return 0, nil, ErrInvalidOperation
	}
	return slot, e, nil
}

// FileCreate writes a brand new file at path with the given contents
// (spec.md §4.6).
func (inst *Instance) FileCreate(sess *Session, path string, data []byte) error {
	parentPath, base, err := splitPath(path)
	if err != nil {
		return err
	}

	parentSlot, ok := inst.pathIndex[parentPath]
	if !ok {
		return ErrNotFound
	}
	parent := inst.meta.at(parentSlot)
	if !parent.IsDir() {
		return ErrInvalidOperation
	}
	if _, exists := inst.pathIndex[path]; exists {
		return ErrFileExists
	}

	slot := inst.meta.findFreeSlot()
	if slot == 0 {
		return ErrNoSpace
	}
	entry := inst.meta.at(slot)

	size := uint64(len(data))
	blockPayload := inst.blockPayload()
	need := 0
	if size > 0 {
		need = int((size + blockPayload - 1) / blockPayload)
	}

	var blocks []uint32
	if need > 0 {
		blocks = inst.bmap.allocate(need)
		if blocks == nil {
			return ErrNoSpace
		}
	}

	now := uint64(time.Now().Unix())
	*entry = MetaEntry{
		Valid:        slotInUse,
		Type:         uint8(TypeFile),
		Parent:       parentSlot,
		TotalSize:    size,
		OwnerID:      inst.ownerSlot(sess),
		Permissions:  0o644,
		CreatedTime:  now,
		ModifiedTime: now,
	}
	entry.SetName(base)

	for i, blk := range blocks {
		var next uint32
		if i+1 < len(blocks) {
			next = blocks[i+1]
		}
		offset := uint64(i) * blockPayload
		end := offset + blockPayload
		if end > size {
			end = size
		}
		enc := inst.trans.encodePayload(data[offset:end])
		if err := inst.dev.writeBlock(blk, next, enc); err != nil {
			inst.bmap.free(blocks)
			entry.Valid = slotFree
			return err
		}
	}
	if len(blocks) > 0 {
		entry.StartIndex = blocks[0]
	}

	if err := inst.dirAddChild(parent, slot); err != nil {
		inst.bmap.free(blocks)
		entry.Valid = slotFree
		return err
	}

	if err := inst.persistMeta(); err != nil {
		return err
	}
	if err := inst.persistBitmap(); err != nil {
		return err
	}
	inst.pathIndex[path] = slot
	return nil
}

// FileRead returns the full decoded contents of the file at path (spec.md
// §4.7).
func (inst *Instance) FileRead(sess *Session, path string) ([]byte, error) {
	_, entry, err := inst.resolveEntry(path, false)
	if err != nil {
		return nil, err
	}

	total := entry.TotalSize
	if total == 0 {
		return []byte{}, nil
	}

	out := make([]byte, 0, total)
	cur := entry.StartIndex
	remaining := total
	for cur != 0 && remaining > 0 {
		next, payload, err := inst.dev.readBlock(cur)
		if err != nil {
			return nil, err
		}
		chunk := uint64(len(payload))
		if remaining < chunk {
			chunk = remaining
		}
		dec := inst.trans.decodePayload(payload[:chunk])
		out = append(out, dec...)
		remaining -= chunk
		cur = next
	}

	return out, nil
}

// FileEdit overwrites size bytes of data starting at byte index within the
// file at path, clamped to whatever room remains in the block holding index
// (spec.md §4.8) -- it never extends the file, matching the original.
func (inst *Instance) FileEdit(sess *Session, path string, index uint64, data []byte) error {
	_, entry, err := inst.resolveEntry(path, false)
	if err != nil {
		return err
	}
	if index > entry.TotalSize {
		return ErrInvalidOperation
	}

	blockPayload := inst.blockPayload()
	blockNo := index / blockPayload
	offsetInBlock := index % blockPayload

	cur := entry.StartIndex
	for i := uint64(0); i < blockNo && cur != 0; i++ {
		next, _, err := inst.dev.readBlock(cur)
		if err != nil {
			return err
		}
		cur = next
	}
	if cur == 0 {
		return ErrInvalidOperation
	}

	next, payload, err := inst.dev.readBlock(cur)
	if err != nil {
		return err
	}
	dec := inst.trans.decodePayload(payload)

	writeLen := uint64(len(data))
	room := uint64(len(payload)) - offsetInBlock
	if writeLen > room {
		writeLen = room
	}
	copy(dec[offsetInBlock:offsetInBlock+writeLen], data[:writeLen])

	enc := inst.trans.encodePayload(dec)
	if err := inst.dev.writeBlock(cur, next, enc); err != nil {
		return err
	}

	entry.ModifiedTime = uint64(time.Now().Unix())
	return inst.persistMeta()
}

// FileTruncate grows or shrinks the file at path to new_size bytes (spec.md
// §4.9), allocating or freeing blocks as needed.
func (inst *Instance) FileTruncate(sess *Session, path string, newSize uint64) error {
	_, entry, err := inst.resolveEntry(path, false)
	if err != nil {
		return err
	}

	blockPayload := inst.blockPayload()
	requiredBlocks := 0
	if newSize > 0 {
		requiredBlocks = int((newSize + blockPayload - 1) / blockPayload)
	}

	chain, err := inst.getChain(entry.StartIndex)
	if err != nil {
		return err
	}
	currentBlocks := len(chain)

	switch {
	case requiredBlocks == currentBlocks:
		// no block-count change, just the size bookkeeping below.

	case requiredBlocks < currentBlocks:
		if requiredBlocks == 0 {
			inst.bmap.free(chain)
			entry.StartIndex = 0
		} else {
			inst.bmap.free(chain[requiredBlocks:])
			lastKeep := chain[requiredBlocks-1]
			_, payload, err := inst.dev.readBlock(lastKeep)
			if err != nil {
				return err
			}
			if err := inst.dev.writeBlock(lastKeep, 0, payload); err != nil {
				return err
			}
		}
		if err := inst.persistBitmap(); err != nil {
			return err
		}

	default:
		need := requiredBlocks - currentBlocks
		newBlocks := inst.bmap.allocate(need)
		if newBlocks == nil {
			return ErrNoSpace
		}

		if currentBlocks == 0 {
			entry.StartIndex = newBlocks[0]
		} else {
			last := chain[len(chain)-1]
			_, payload, err := inst.dev.readBlock(last)
			if err != nil {
				inst.bmap.free(newBlocks)
				return err
			}
			if err := inst.dev.writeBlock(last, newBlocks[0], payload); err != nil {
				inst.bmap.free(newBlocks)
				return err
			}
		}

		for i, blk := range newBlocks {
			var next uint32
			if i+1 < len(newBlocks) {
				next = newBlocks[i+1]
			}
			if err := inst.dev.writeBlock(blk, next, nil); err != nil {
				inst.bmap.free(newBlocks)
				return err
			}
		}

		if err := inst.persistBitmap(); err != nil {
			return err
		}
	}

	entry.TotalSize = newSize
	entry.ModifiedTime = uint64(time.Now().Unix())
	return inst.persistMeta()
}

// FileDelete removes the file at path, freeing its blocks and detaching it
// from its parent directory (spec.md §4.10).
func (inst *Instance) FileDelete(sess *Session, path string) error {
	slot, entry, err := inst.resolveEntry(path, false)
	if err != nil {
		return err
	}

	if err := inst.freeChain(entry.StartIndex); err != nil {
		return err
	}

	if entry.Parent != 0 && int(entry.Parent) <= len(inst.meta.entries) {
		parent := inst.meta.at(entry.Parent)
		if err := inst.dirRemoveChild(parent, slot); err != nil {
			return err
		}
	}

	entry.Valid = slotFree
	entry.StartIndex = 0
	entry.TotalSize = 0

	if err := inst.persistMeta(); err != nil {
		return err
	}
	if err := inst.persistBitmap(); err != nil {
		return err
	}
	inst.rebuildPathIndex()
	return nil
}

// FileRename moves the file or directory at oldPath to newPath, possibly
// into a different parent directory (spec.md §4.11).
func (inst *Instance) FileRename(sess *Session, oldPath, newPath string) error {
	if oldPath == "" || newPath == "" {
		return ErrInvalidPath
	}

	oldSlot, ok := inst.pathIndex[oldPath]
	if !ok {
		return ErrNotFound
	}
	if oldSlot == 0 || int(oldSlot) > len(inst.meta.entries) {
		return ErrNotFound
	}
	entry := inst.meta.at(oldSlot)
	if !entry.InUse() {
		return ErrNotFound
	}
	if _, exists := inst.pathIndex[newPath]; exists {
		return ErrFileExists
	}

	newParentPath, newBase, err := splitPath(newPath)
	if err != nil {
		return err
	}

	newParentSlot, ok := inst.pathIndex[newParentPath]
	if !ok {
		return ErrNotFound
	}
	newParent := inst.meta.at(newParentSlot)
	if !newParent.InUse() || !newParent.IsDir() {
		return ErrInvalidOperation
	}

	oldParentSlot := entry.Parent
	if oldParentSlot == 0 || int(oldParentSlot) > len(inst.meta.entries) {
		return ErrInvalidOperation
	}
	oldParent := inst.meta.at(oldParentSlot)

	if err := inst.dirRemoveChild(oldParent, oldSlot); err != nil {
		return err
	}

	oldName := entry.NameString()
	entry.SetName(newBase)
	entry.Parent = newParentSlot
	entry.ModifiedTime = uint64(time.Now().Unix())

	if err := inst.dirAddChild(newParent, oldSlot); err != nil {
		entry.SetName(oldName)
		entry.Parent = oldParentSlot
		_ = inst.dirAddChild(oldParent, oldSlot)
		return err
	}

	if err := inst.persistMeta(); err != nil {
		return err
	}
	if err := inst.persistBitmap(); err != nil {
		return err
	}
	inst.rebuildPathIndex()
	return nil
}

// FileExists reports whether path names an in-use file (spec.md §4.6).
func (inst *Instance) FileExists(sess *Session, path string) (bool, error) {
	_, _, err := inst.resolveEntry(path, false)
	if err != nil {
		if c, ok := CodeOf(err); ok && c == NotFound {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// DirCreate makes a new, empty directory at path (spec.md §4.5).
func (inst *Instance) DirCreate(sess *Session, path string) error {
	parentPath, base, err := splitPath(path)
	if err != nil {
		return err
	}

	parentSlot, ok := inst.pathIndex[parentPath]
	if !ok {
		return ErrNotFound
	}
	parent := inst.meta.at(parentSlot)
	if !parent.InUse() || !parent.IsDir() {
		return ErrInvalidOperation
	}
	if _, exists := inst.pathIndex[path]; exists {
		return ErrFileExists
	}

	slot := inst.meta.findFreeSlot()
	if slot == 0 {
		return ErrNoSpace
	}
	entry := inst.meta.at(slot)

	now := uint64(time.Now().Unix())
	*entry = MetaEntry{
		Valid:        slotInUse,
		Type:         uint8(TypeDir),
		Parent:       parentSlot,
		OwnerID:      inst.ownerSlot(sess),
		Permissions:  0o755,
		CreatedTime:  now,
		ModifiedTime: now,
	}
	entry.SetName(base)

	if err := inst.dirAddChild(parent, slot); err != nil {
		entry.Valid = slotFree
		return err
	}

	if err := inst.persistMeta(); err != nil {
		return err
	}
	if err := inst.persistBitmap(); err != nil {
		return err
	}
	inst.pathIndex[path] = slot
	return nil
}

// DirList returns the immediate children of the directory at path (spec.md
// §4.5).
func (inst *Instance) DirList(sess *Session, path string) ([]FileEntry, error) {
	_, dir, err := inst.resolveEntry(path, true)
	if err != nil {
		return nil, err
	}

	children, err := inst.dirList(dir)
	if err != nil {
		return nil, err
	}

	out := make([]FileEntry, 0, len(children))
	for _, idx := range children {
		if idx == 0 || int(idx) > len(inst.meta.entries) {
			continue
		}
		me := inst.meta.at(idx)
		if !me.InUse() {
			continue
		}
		out = append(out, FileEntry{
			Name:         me.NameString(),
			IsDir:        me.IsDir(),
			Size:         me.TotalSize,
			Permissions:  me.Permissions,
			CreatedTime:  me.CreatedTime,
			ModifiedTime: me.ModifiedTime,
			Owner:        inst.ownerName(me.OwnerID),
			Slot:         idx,
		})
	}

	return out, nil
}

// DirDelete removes the empty directory at path (spec.md §4.5); a directory
// holding children returns DirectoryNotEmpty rather than recursing.
func (inst *Instance) DirDelete(sess *Session, path string) error {
	if path == "" || path == "/" {
		return ErrInvalidOperation
	}

	slot, dir, err := inst.resolveEntry(path, true)
	if err != nil {
		return err
	}

	children, err := inst.dirList(dir)
	if err != nil {
		return err
	}
	if len(children) > 0 {
		return ErrDirectoryNotEmpty
	}

	if dir.Parent == 0 || int(dir.Parent) > len(inst.meta.entries) {
		return ErrInvalidOperation
	}
	parent := inst.meta.at(dir.Parent)
	if err := inst.dirRemoveChild(parent, slot); err != nil {
		return err
	}

	dir.Valid = slotFree
	if dir.StartIndex != 0 {
		inst.bmap.free([]uint32{dir.StartIndex})
	}
	dir.StartIndex = 0

	if err := inst.persistMeta(); err != nil {
		return err
	}
	if err := inst.persistBitmap(); err != nil {
		return err
	}
	inst.rebuildPathIndex()
	return nil
}

// DirExists reports whether path names an in-use directory (spec.md §4.5).
func (inst *Instance) DirExists(sess *Session, path string) (bool, error) {
	_, _, err := inst.resolveEntry(path, true)
	if err != nil {
		if c, ok := CodeOf(err); ok && c == NotFound {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// ownerSlot resolves sess's active user-table slot for a new entry's
// owner_id, falling back to 0 if the session's username no longer has an
// active slot (spec.md §9's "unknown owner" tolerance).
func (inst *Instance) ownerSlot(sess *Session) uint32 {
	if sess == nil {
		return 0
	}
	username := trimNUL(sess.User.Username[:])
	if i, ok := inst.users.lookupActive(username); ok {
		return uint32(i)
	}
	return 0
}
