package app

import (
	"errors"
	"sync"

	"github.com/google/uuid"

	"github.com/five82/typetune/internal/bridge"
	"github.com/five82/typetune/internal/logging"
	"github.com/five82/typetune/internal/protocol"
	"github.com/five82/typetune/internal/state"
)

// ErrSessionStarted is returned by a second call to Session.Start.
var ErrSessionStarted = errors.New("session already started")

// ErrSessionStopped is returned by Start after Stop.
var ErrSessionStopped = errors.New("session stopped")

// Mailbox is the part of the bridge a session needs.
type Mailbox interface {
	bridge.Sender
	OnMessage(h bridge.Handler) (unregister func())
}

// Session mounts a panel on a bridge. Start registers the inbound handler
// and sends init; Stop deregisters it and clears pending copy feedback.
// The host is never told about either.
type Session struct {
	id    string
	box   Mailbox
	panel *state.Panel

	// mu is held for reading while an envelope is delivered, so Stop
	// waits for an in-flight delivery and none begins after it returns.
	mu         sync.RWMutex
	started    bool
	stopped    bool
	unregister func()
}

// NewSession binds panel to box. Nothing is sent until Start.
func NewSession(box Mailbox, panel *state.Panel) *Session {
	return &Session{
		id:    uuid.NewString(),
		box:   box,
		panel: panel,
	}
}

// ID identifies the session in logs.
func (s *Session) ID() string {
	return s.id
}

// Start registers deliver as the destination for inbound envelopes and
// sends the panel's init request. It may be called once.
func (s *Session) Start(deliver func(protocol.Inbound)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch {
	case s.stopped:
		return ErrSessionStopped
	case s.started:
		return ErrSessionStarted
	}
	s.started = true

	s.unregister = s.box.OnMessage(func(msg protocol.Inbound) {
		s.mu.RLock()
		defer s.mu.RUnlock()
		if s.stopped {
			return
		}
		deliver(msg)
	})
	s.box.Send(s.panel.Init())
	logging.Info("session started", logging.String("session", s.id))
	return nil
}

// Stop deregisters the inbound handler and cancels copy feedback. It is
// safe to call more than once and before Start. Stop must not run while
// the UI loop is still applying envelopes to the panel.
func (s *Session) Stop() {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.stopped = true
	unregister, started := s.unregister, s.started
	s.mu.Unlock()

	// Outside mu: unregister can wait on a handler call, which takes mu.
	if unregister != nil {
		unregister()
	}
	s.panel.CancelFeedback()
	if started {
		logging.Info("session stopped", logging.String("session", s.id))
	}
}
