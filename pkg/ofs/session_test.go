package ofs

import "testing"

func TestSessionTokenShape(t *testing.T) {
	_, sess := newTestInstance(t)
	if len(sess.Token) != 32 {
		t.Errorf("session token length = %d, want 32", len(sess.Token))
	}
	for _, c := range sess.Token {
		isHex := (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f')
		if !isHex {
			t.Errorf("session token %q contains non-hex character %q", sess.Token, c)
			break
		}
	}
}

func TestGetSessionInfoAfterLogout(t *testing.T) {
	inst, sess := newTestInstance(t)
	if err := inst.UserLogout(sess); err != nil {
		t.Fatalf("UserLogout: %v", err)
	}
	if _, err := inst.GetSessionInfo(sess); err == nil {
		t.Errorf("expected GetSessionInfo to fail after logout")
	}
}

func TestGetSessionInfoReflectsUser(t *testing.T) {
	inst, sess := newTestInstance(t)
	info, err := inst.GetSessionInfo(sess)
	if err != nil {
		t.Fatalf("GetSessionInfo: %v", err)
	}
	if info.Username != "admin" {
		t.Errorf("Username = %q, want %q", info.Username, "admin")
	}
	if info.Role != RoleAdmin {
		t.Errorf("Role = %v, want %v", info.Role, RoleAdmin)
	}
}
