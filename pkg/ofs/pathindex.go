package ofs

// In-memory path index: maps an absolute path string to its 1-based meta
// slot. Rebuilt from the authoritative on-disk meta table on mount and
// after any rename or delete (spec.md §4.4), matching §9's rule that
// derived indices are never trusted across a partial persist.

import "strings"

// rebuildPathIndex recomputes inst.pathIndex from inst.meta from scratch.
func (inst *Instance) rebuildPathIndex() {
	idx := make(map[string]uint32, len(inst.meta.entries))
	for i := range inst.meta.entries {
		e := &inst.meta.entries[i]
		if !e.InUse() {
			continue
		}
		slot := uint32(i + 1)
		idx[inst.buildPath(slot)] = slot
	}
	inst.pathIndex = idx
}

// buildPath reconstructs the absolute path of slot by walking Parent
// pointers, bounded by maxFiles to defeat a malformed parent cycle
// (spec.md §9).
func (inst *Instance) buildPath(slot uint32) string {
	if slot == rootSlot {
		return "/"
	}

	var parts []string
	cur := slot
	guard := uint32(0)
	maxFiles := uint32(len(inst.meta.entries))

	for cur != 0 && cur <= maxFiles && guard < maxFiles {
		e := inst.meta.at(cur)
		if !e.InUse() {
			break
		}
		if cur == rootSlot {
			break
		}
		name := e.NameString()
		if name == "" {
			name = "unnamed"
		}
		parts = append(parts, name)
		cur = e.Parent
		guard++
	}

	if len(parts) == 0 {
		return "/"
	}

	// parts were collected leaf-to-root; reverse them.
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}

	return "/" + strings.Join(parts, "/")
}

// splitPath validates an absolute path and returns its parent path and
// basename. The root "/" itself has no valid parent/basename split and is
// rejected by callers that need to create or rename an entry.
func splitPath(path string) (parent, base string, err error) {
	if path == "" || path[0] != '/' {
		return "", "", Err(InvalidPath, "path must be absolute: %q", path)
	}
	if path == "/" {
		return "", "", Err(InvalidOperation, "cannot operate on root directly")
	}

	trimmed := strings.TrimRight(path, "/")
	if trimmed == "" {
		return "", "", Err(InvalidPath, "empty path")
	}

	i := strings.LastIndex(trimmed, "/")
	base = trimmed[i+1:]
	if base == "" {
		return "", "", Err(InvalidPath, "empty path component: %q", path)
	}
	if len(base) > MaxNameLen {
		return "", "", Err(InvalidOperation, "name %q exceeds %d-byte name slot", base, MaxNameLen)
	}

	parent = trimmed[:i]
	if parent == "" {
		parent = "/"
	}

	return parent, base, nil
}
