package ofs

// Session registry: an in-memory map from session token to session state.
// Never persisted (spec.md §4.14/§3). Session IDs come from
// github.com/google/uuid -- a UUIDv4 is exactly "a 128-bit random value"
// and we hex-encode its 16 raw bytes without dashes for the 32-hex-char
// token spec.md §4.14 calls for.

import (
	"sync"

	"github.com/google/uuid"
)

// Session is the in-memory authenticated context tied to one logged-in
// user (spec.md glossary). It carries no back-pointer to the Instance
// that issued it (spec.md §9's back-reference guidance) -- callers always
// reach operations through the Instance, passing the Session in as an
// argument.
type Session struct {
	Token          string
	User           UserInfo
	LoginTime      uint64
	LastActivity   uint64
	OperationCount uint64
}

// SessionInfo is the read-only view returned by GetSessionInfo.
type SessionInfo struct {
	Token          string
	Username       string
	Role           UserRole
	LoginTime      uint64
	LastActivity   uint64
	OperationCount uint64
}

type sessionRegistry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

func newSessionRegistry() *sessionRegistry {
	return &sessionRegistry{sessions: make(map[string]*Session)}
}

func (r *sessionRegistry) create(user UserInfo, now uint64) *Session {
	sess := &Session{
		Token:        uuid.New().String(),
		User:         user,
		LoginTime:    now,
		LastActivity: now,
	}
	// Strip the UUID's dashes so the token matches spec.md's "32-hex-char
	// session id" shape exactly.
	sess.Token = stripDashes(sess.Token)

	r.mu.Lock()
	r.sessions[sess.Token] = sess
	r.mu.Unlock()
	return sess
}

func stripDashes(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if s[i] != '-' {
			out = append(out, s[i])
		}
	}
	return string(out)
}

func (r *sessionRegistry) remove(token string) {
	r.mu.Lock()
	delete(r.sessions, token)
	r.mu.Unlock()
}

// lookup is the one read the transport layer may safely perform
// concurrently with dispatcher activity (spec.md §5): it only reads the
// map, never mutates it.
func (r *sessionRegistry) lookup(token string) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[token]
	return s, ok
}

// count returns the number of live sessions, for GetStats.
func (r *sessionRegistry) count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// GetSessionInfo returns the cached snapshot for sess (spec.md §4.14).
// LastActivity/OperationCount never advance past login, matching the
// original implementation, which also never updates them past creation.
func (inst *Instance) GetSessionInfo(sess *Session) (*SessionInfo, error) {
	if _, ok := inst.sessions.lookup(sess.Token); !ok {
		return nil, ErrInvalidSession
	}
	return &SessionInfo{
		Token:          sess.Token,
		Username:       trimNUL(sess.User.Username[:]),
		Role:           UserRole(sess.User.Role),
		LoginTime:      sess.LoginTime,
		LastActivity:   sess.LastActivity,
		OperationCount: sess.OperationCount,
	}, nil
}
