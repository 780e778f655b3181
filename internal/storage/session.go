package storage

import "sync"

// Session carries the identity the remote backend writes on behalf of:
// the user's login and the bearer token issued by the vault server.
type Session struct {
	Login string
	Token string
}

// SessionSource yields the current session, if any. The remote backend
// consults it on every operation; an absent session makes reads return
// domain defaults and writes report ErrNotPersisted. This is the expected
// state during logout transitions, not an error.
type SessionSource interface {
	Current() (Session, bool)
}

// SessionHolder is a SessionSource whose session is set and cleared by the
// authentication flow. The zero value is an empty holder.
type SessionHolder struct {
	mu      sync.RWMutex
	session Session
	ok      bool
}

// Set installs the session.
func (h *SessionHolder) Set(s Session) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.session = s
	h.ok = true
}

// Clear removes the session.
func (h *SessionHolder) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.session = Session{}
	h.ok = false
}

// Current returns the installed session and whether one is present.
func (h *SessionHolder) Current() (Session, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.session, h.ok
}
