package ofs

// Directory protocol (spec.md §4.5): a directory's chain stores, in its
// head block's payload, a packed array of child slot indices. Grounded on
// the original's dir_block_read/dir_add_child/dir_remove_child
// (original_source/source/core/ofs_core.cpp), which always rewrites into
// a single head block rather than chaining multiple directory blocks --
// preserved here per spec.md §4.5 design constraint choice (a).

import "fmt"

// childrenPerBlock is the largest number of child slot indices a single
// directory block's payload can hold.
func (inst *Instance) childrenPerBlock() int {
	return int((inst.dev.payloadSize) / 4)
}

// dirList returns every nonzero child slot index stored in dir's chain
// (spec.md §4.5).
func (inst *Instance) dirList(dir *MetaEntry) ([]uint32, error) {
	if dir.StartIndex == 0 {
		return nil, nil
	}

	var children []uint32
	chain, err := inst.getChain(dir.StartIndex)
	if err != nil {
		return nil, err
	}

	for _, blk := range chain {
		_, payload, err := inst.dev.readBlock(blk)
		if err != nil {
			return nil, err
		}
		for off := 0; off+4 <= len(payload); off += 4 {
			v := byteOrder.Uint32(payload[off : off+4])
			if v != 0 {
				children = append(children, v)
			}
		}
	}

	return children, nil
}

// dirRewriteHead rewrites dir's single head block with children, allocating
// the head block first if the directory is currently empty.
func (inst *Instance) dirRewriteHead(dir *MetaEntry, children []uint32) error {
	if len(children) > inst.childrenPerBlock() {
		return Err(NoSpace, "directory cannot hold more than %d children", inst.childrenPerBlock())
	}

	if dir.StartIndex == 0 {
		blocks := inst.bmap.allocate(1)
		if blocks == nil {
			return ErrNoSpace
		}
		dir.StartIndex = blocks[0]
	}

	payload := make([]byte, inst.dev.payloadSize)
	for i, c := range children {
		byteOrder.PutUint32(payload[i*4:i*4+4], c)
	}

	return inst.dev.writeBlock(dir.StartIndex, 0, payload)
}

// dirAddChild appends child to dir's child list (spec.md §4.5).
func (inst *Instance) dirAddChild(dir *MetaEntry, child uint32) error {
	children, err := inst.dirList(dir)
	if err != nil {
		return err
	}
	children = append(children, child)
	return inst.dirRewriteHead(dir, children)
}

// dirRemoveChild removes child from dir's child list. It is a no-op error
// if child isn't present, which should not happen given the invariants in
// spec.md §3.
func (inst *Instance) dirRemoveChild(dir *MetaEntry, child uint32) error {
	children, err := inst.dirList(dir)
	if err != nil {
		return err
	}

	out := children[:0]
	found := false
	for _, c := range children {
		if c == child && !found {
			found = true
			continue
		}
		out = append(out, c)
	}
	if !found {
		return fmt.Errorf("ofs: child slot %d not found in directory", child)
	}

	return inst.dirRewriteHead(dir, out)
}
