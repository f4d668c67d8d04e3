package models

import "time"

// RemoteMessage is the wire form returned by the message service. The
// gateway decodes into this shape; normalization into Message happens in
// exactly one place (FromRemote / Confirm).
type RemoteMessage struct {
	ID           string    `json:"id"`
	Conversation string    `json:"conversation"`
	Text         string    `json:"text"`
	CreatedAt    time.Time `json:"created_at"`
}

// Conversation is bookkeeping for one per-contact thread. The message list
// itself lives in the engine's cache; this struct is what list endpoints
// return.
type Conversation struct {
	ID        string `json:"id"`
	Loading   bool   `json:"loading,omitempty"`
	LastError string `json:"last_error,omitempty"`
}
