package ofs

// User table & auth (spec.md §4.14). Grounded on the original's
// user_login/user_create/user_delete (original_source/source/core/
// ofs_core.cpp): a fixed-size slot array with a name index for the common
// case and a linear-scan fallback.

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"os"
	"time"
)

type userTable struct {
	entries []UserInfo
	offset  int64
	// byName maps an active username to its 0-based slot index.
	byName map[string]int
}

func readUserTable(f *os.File, offset int64, maxUsers uint32) (*userTable, error) {
	entries := make([]UserInfo, maxUsers)
	buf := make([]byte, int64(maxUsers)*UserInfoSize)
	if _, err := f.ReadAt(buf, offset); err != nil {
		return nil, fmt.Errorf("reading user table: %w", Err(IOError, "%v", err))
	}

	r := bytes.NewReader(buf)
	for i := range entries {
		if err := binary.Read(r, byteOrder, &entries[i]); err != nil {
			return nil, fmt.Errorf("decoding user table: %w", Err(IOError, "%v", err))
		}
	}

	t := &userTable{entries: entries, offset: offset}
	t.rebuildIndex()
	return t, nil
}

func (t *userTable) rebuildIndex() {
	t.byName = make(map[string]int, len(t.entries))
	for i := range t.entries {
		if t.entries[i].IsActive != 0 {
			t.byName[trimNUL(t.entries[i].Username[:])] = i
		}
	}
}

func (t *userTable) persist(f *os.File) error {
	buf := new(bytes.Buffer)
	buf.Grow(len(t.entries) * UserInfoSize)
	for i := range t.entries {
		if err := binary.Write(buf, byteOrder, &t.entries[i]); err != nil {
			return fmt.Errorf("encoding user table: %w", Err(IOError, "%v", err))
		}
	}
	if _, err := f.WriteAt(buf.Bytes(), t.offset); err != nil {
		return fmt.Errorf("writing user table: %w", Err(IOError, "%v", err))
	}
	return nil
}

// lookupActive finds an active user by name, using the index with a
// linear-scan fallback (spec.md §4.14), returning its 0-based slot index.
func (t *userTable) lookupActive(username string) (int, bool) {
	if i, ok := t.byName[username]; ok {
		return i, true
	}
	for i := range t.entries {
		if t.entries[i].IsActive != 0 && trimNUL(t.entries[i].Username[:]) == username {
			return i, true
		}
	}
	return 0, false
}

func (t *userTable) findFreeSlot() (int, bool) {
	for i := range t.entries {
		if t.entries[i].IsActive == 0 {
			return i, true
		}
	}
	return 0, false
}

// UserLogin authenticates username/password and returns a new session
// handle, per spec.md §4.14.
func (inst *Instance) UserLogin(username, password string) (*Session, error) {
	i, ok := inst.users.lookupActive(username)
	if !ok {
		return nil, Err(NotFound, "no such active user %q", username)
	}

	user := &inst.users.entries[i]
	if fingerprint(password) != trimNUL(user.PasswordHash[:]) {
		return nil, Err(PermissionDenied, "incorrect password")
	}

	now := uint64(time.Now().Unix())
	user.LastLogin = now
	if err := inst.users.persist(inst.file); err != nil {
		return nil, err
	}

	snapshot := *user
	sess := inst.sessions.create(snapshot, now)
	return sess, nil
}

// UserLogout removes a session from the registry.
func (inst *Instance) UserLogout(sess *Session) error {
	inst.sessions.remove(sess.Token)
	return nil
}

// requireAdmin returns a PermissionDenied error unless sess belongs to an
// administrator.
func (sess *Session) requireAdmin() error {
	if UserRole(sess.User.Role) != RoleAdmin {
		return Err(PermissionDenied, "operation requires an administrator session")
	}
	return nil
}

// UserCreate adds a new, active user. admin-gated (spec.md §4.14).
func (inst *Instance) UserCreate(adminSess *Session, username, password string, role UserRole) error {
	if err := adminSess.requireAdmin(); err != nil {
		return err
	}
	if len(username) == 0 || len(username) > 31 {
		return Err(InvalidOperation, "username length must be in [1,31]")
	}
	if _, exists := inst.users.lookupActive(username); exists {
		return Err(FileExists, "user %q already exists", username)
	}

	slot, ok := inst.users.findFreeSlot()
	if !ok {
		return Err(NoSpace, "user table is full")
	}

	now := uint64(time.Now().Unix())
	u := &inst.users.entries[slot]
	*u = UserInfo{}
	copy(u.Username[:], username)
	copy(u.PasswordHash[:], fingerprint(password))
	u.Role = uint32(role)
	u.CreatedTime = now
	u.IsActive = 1

	inst.users.rebuildIndex()
	return inst.users.persist(inst.file)
}

// UserDelete deactivates a user. admin-gated; does not reclaim the user's
// files (spec.md §4.14).
func (inst *Instance) UserDelete(adminSess *Session, username string) error {
	if err := adminSess.requireAdmin(); err != nil {
		return err
	}

	i, ok := inst.users.lookupActive(username)
	if !ok {
		return Err(NotFound, "no such active user %q", username)
	}

	inst.users.entries[i].IsActive = 0
	inst.users.rebuildIndex()
	return inst.users.persist(inst.file)
}

// UserList returns a snapshot of every active user. admin-gated.
func (inst *Instance) UserList(adminSess *Session) ([]UserInfo, error) {
	if err := adminSess.requireAdmin(); err != nil {
		return nil, err
	}

	var out []UserInfo
	for i := range inst.users.entries {
		if inst.users.entries[i].IsActive != 0 {
			out = append(out, inst.users.entries[i])
		}
	}
	return out, nil
}

// ownerName resolves an owner_id to a username, rendering "unknown" for an
// out-of-range or inactive owner slot (spec.md §9).
func (inst *Instance) ownerName(ownerID uint32) string {
	if int(ownerID) >= len(inst.users.entries) {
		return "unknown"
	}
	u := &inst.users.entries[ownerID]
	if u.IsActive == 0 {
		return "unknown"
	}
	return trimNUL(u.Username[:])
}
