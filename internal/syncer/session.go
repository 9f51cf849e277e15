// Package syncer reconciles the local library with the remote books
// table and tracks the active identity. There is no merge: non-empty
// remote state wins wholesale, an empty remote is seeded from local.
package syncer

import "sync"

// Identity is the authenticated principal behind a session. A nil
// *Identity means anonymous local use.
type Identity struct {
	UserID string
	Email  string
}

// Session is the explicit session context: current identity plus an
// observer list notified on every change. Replaces the ambient
// auth-state globals and ad hoc callbacks of a typical client app.
type Session struct {
	mu        sync.Mutex
	current   *Identity
	observers map[int]func(*Identity)
	nextID    int
}

func NewSession() *Session {
	return &Session{observers: make(map[int]func(*Identity))}
}

// Current returns the active identity, or nil when anonymous.
func (s *Session) Current() *Identity {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// SetIdentity swaps the active identity and notifies every subscriber,
// including on sign-out (nil).
func (s *Session) SetIdentity(id *Identity) {
	s.mu.Lock()
	s.current = id
	handlers := make([]func(*Identity), 0, len(s.observers))
	for _, h := range s.observers {
		handlers = append(handlers, h)
	}
	s.mu.Unlock()

	for _, h := range handlers {
		h(id)
	}
}

// Subscribe registers a handler invoked with the new identity (or nil)
// on every change. The returned function unsubscribes.
func (s *Session) Subscribe(handler func(*Identity)) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.observers[id] = handler
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.observers, id)
		s.mu.Unlock()
	}
}
