package models

import "time"

// Origin tracks where a message came from and its confirmation state.
type Origin string

const (
	// OriginRemote marks a message fetched from the remote service.
	OriginRemote Origin = "remote"
	// OriginLocalPending marks an optimistic local write that has not been
	// confirmed by the remote service yet. Its ID is a local placeholder.
	OriginLocalPending Origin = "local-pending"
	// OriginLocalConfirmed marks a local write that the remote service has
	// confirmed; its ID is the server-issued identity.
	OriginLocalConfirmed Origin = "local-confirmed"
)

// Status is the delivery state of a message.
type Status string

const (
	StatusPending Status = "pending"
	StatusSent    Status = "sent"
	StatusFailed  Status = "failed"
	StatusDeleted Status = "deleted"
)

// Message is one unit of conversation content. Text is immutable after
// creation; ID is stable once server-confirmed. Direction and confirmation
// state are carried explicitly in Origin/Status, never inferred from which
// fields happen to be set.
type Message struct {
	ID           string    `json:"id"`
	Conversation string    `json:"conversation"`
	Text         string    `json:"text"`
	CreatedAt    time.Time `json:"created_at"`
	Origin       Origin    `json:"origin"`
	Status       Status    `json:"status"`
}

// Local reports whether the message originated on this client.
func (m Message) Local() bool {
	return m.Origin == OriginLocalPending || m.Origin == OriginLocalConfirmed
}

// NewPending is the single constructor for optimistic cache entries. Every
// field is populated so downstream code never sees a partially shaped
// message.
func NewPending(id, conversation, text string) Message {
	return Message{
		ID:           id,
		Conversation: conversation,
		Text:         text,
		CreatedAt:    time.Now().UTC(),
		Origin:       OriginLocalPending,
		Status:       StatusPending,
	}
}

// FromRemote normalizes a gateway wire message into the cache shape.
func FromRemote(rm RemoteMessage) Message {
	return Message{
		ID:           rm.ID,
		Conversation: rm.Conversation,
		Text:         rm.Text,
		CreatedAt:    rm.CreatedAt.UTC(),
		Origin:       OriginRemote,
		Status:       StatusSent,
	}
}

// Confirm returns the message with the server-issued identity and timestamp
// in place of the local placeholder. The logical message is unchanged.
func (m Message) Confirm(rm RemoteMessage) Message {
	m.ID = rm.ID
	if !rm.CreatedAt.IsZero() {
		m.CreatedAt = rm.CreatedAt.UTC()
	}
	m.Origin = OriginLocalConfirmed
	m.Status = StatusSent
	return m
}

// Fail marks an optimistic entry whose send was rejected. The entry stays
// visible so the caller can retry or discard it.
func (m Message) Fail() Message {
	m.Status = StatusFailed
	return m
}
