// Package session is the per-conversation handle handed to callers. It is a
// thin façade: serialization and cache ownership live in the engine, the
// session only pins the conversation id so callers cannot cross wires.
package session

import (
	"context"

	"threadsync/pkg/engine"
	"threadsync/pkg/models"
)

// Session binds one conversation to the engine.
type Session struct {
	eng  *engine.Engine
	conv string
}

// Open returns a session for the given contact's conversation. The cache is
// created lazily on first load.
func Open(eng *engine.Engine, conversationID string) *Session {
	return &Session{eng: eng, conv: conversationID}
}

// ID returns the conversation id this session is bound to.
func (s *Session) ID() string { return s.conv }

// Load runs a fetch-and-merge cycle and returns the merged, ordered list.
func (s *Session) Load(ctx context.Context) ([]models.Message, error) {
	return s.eng.Load(ctx, s.conv)
}

// Send writes text optimistically and reconciles with the remote
// confirmation. The returned message is provisional until its Origin is
// local-confirmed.
func (s *Session) Send(ctx context.Context, text string) (models.Message, error) {
	return s.eng.Send(ctx, s.conv, text)
}

// Delete removes a message remotely and, on confirmation, from both local
// layers.
func (s *Session) Delete(ctx context.Context, messageID string) error {
	return s.eng.Delete(ctx, s.conv, messageID)
}

// Messages returns the current cache without touching the remote.
func (s *Session) Messages() []models.Message {
	return s.eng.Messages(s.conv)
}

// CurrentError returns the conversation's latest recorded failure, or nil.
func (s *Session) CurrentError() error {
	return s.eng.LastError(s.conv)
}

// ClearError resets the error slot, leaving other conversations untouched.
func (s *Session) ClearError() {
	s.eng.ClearError(s.conv)
}
