package ofs

import "testing"

func TestUserLoginWrongPasswordDenied(t *testing.T) {
	inst, _ := newTestInstance(t)
	_, err := inst.UserLogin("admin", "wrong")
	if c, _ := CodeOf(err); c != PermissionDenied {
		t.Errorf("wrong password code = %v, want %v", c, PermissionDenied)
	}
}

func TestUserLoginUnknownUser(t *testing.T) {
	inst, _ := newTestInstance(t)
	_, err := inst.UserLogin("nobody", "whatever")
	if c, _ := CodeOf(err); c != NotFound {
		t.Errorf("unknown user code = %v, want %v", c, NotFound)
	}
}

func TestUserCreateRequiresAdmin(t *testing.T) {
	inst, adminSess := newTestInstance(t)
	if err := inst.UserCreate(adminSess, "alice", "pw123456", RoleNormal); err != nil {
		t.Fatalf("UserCreate: %v", err)
	}

	aliceSess, err := inst.UserLogin("alice", "pw123456")
	if err != nil {
		t.Fatalf("UserLogin(alice): %v", err)
	}

	if err := inst.UserCreate(aliceSess, "bob", "pw123456", RoleNormal); err == nil {
		t.Errorf("expected non-admin UserCreate to fail")
	} else if c, _ := CodeOf(err); c != PermissionDenied {
		t.Errorf("non-admin UserCreate code = %v, want %v", c, PermissionDenied)
	}
}

func TestUserCreateDuplicateRejected(t *testing.T) {
	inst, adminSess := newTestInstance(t)
	if err := inst.UserCreate(adminSess, "alice", "pw123456", RoleNormal); err != nil {
		t.Fatalf("UserCreate: %v", err)
	}
	err := inst.UserCreate(adminSess, "alice", "anything", RoleNormal)
	if c, _ := CodeOf(err); c != FileExists {
		t.Errorf("duplicate UserCreate code = %v, want %v", c, FileExists)
	}
}

func TestUserDeleteThenLoginFails(t *testing.T) {
	inst, adminSess := newTestInstance(t)
	if err := inst.UserCreate(adminSess, "alice", "pw123456", RoleNormal); err != nil {
		t.Fatalf("UserCreate: %v", err)
	}
	if err := inst.UserDelete(adminSess, "alice"); err != nil {
		t.Fatalf("UserDelete: %v", err)
	}
	if _, err := inst.UserLogin("alice", "pw123456"); err == nil {
		t.Errorf("expected login to fail for a deleted user")
	}
}

func TestUserListReturnsOnlyAdminAfterFormat(t *testing.T) {
	inst, adminSess := newTestInstance(t)
	users, err := inst.UserList(adminSess)
	if err != nil {
		t.Fatalf("UserList: %v", err)
	}
	if len(users) != 1 {
		t.Fatalf("UserList = %d users, want 1 (just admin)", len(users))
	}
}

func TestOwnerNameUnknownForOutOfRange(t *testing.T) {
	inst, _ := newTestInstance(t)
	if got := inst.ownerName(9999); got != "unknown" {
		t.Errorf("ownerName(out of range) = %q, want %q", got, "unknown")
	}
}
