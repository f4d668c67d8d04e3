package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/pebble"

	"threadsync/pkg/logger"
	"threadsync/pkg/models"
)

// ErrUnavailable is returned (wrapped) when the local mirror cannot serve a
// request. Callers treat it as "no local messages" for reads and surface it
// for writes without rolling back in-memory state.
var ErrUnavailable = errors.New("local store unavailable")

// Store is the durable mirror of locally originated messages. Remote-origin
// messages are never persisted here; the remote service stays their source
// of truth.
//
// Key format: conv:<conversationID>:local -> JSON array of models.Message.
type Store struct {
	db   *pebble.DB
	path string
}

// Open opens (or creates) a Pebble database at the given path.
func Open(path string) (*Store, error) {
	logger.Info("opening_pebble_db", "path", path)
	db, err := pebble.Open(path, &pebble.Options{})
	if err != nil {
		logger.Error("pebble_open_failed", "path", path, "error", err)
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	logger.Info("pebble_opened", "path", path)
	return &Store{db: db, path: path}, nil
}

// Close closes the underlying pebble DB if present.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	if err := s.db.Close(); err != nil {
		return err
	}
	s.db = nil
	logger.Info("pebble_closed")
	return nil
}

// Ready reports whether the store is opened and ready.
func (s *Store) Ready() bool {
	return s != nil && s.db != nil
}

func convKey(conversationID string) []byte {
	return []byte("conv:" + conversationID + ":local")
}

// GetConversationMessages returns the persisted local messages for a
// conversation. An absent conversation yields a nil slice and no error.
func (s *Store) GetConversationMessages(conversationID string) ([]models.Message, error) {
	if !s.Ready() {
		return nil, fmt.Errorf("%w: not opened", ErrUnavailable)
	}
	v, closer, err := s.db.Get(convKey(conversationID))
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return nil, nil
		}
		logger.Error("get_conversation_failed", "conversation", conversationID, "error", err)
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer closer.Close()
	var msgs []models.Message
	if err := json.Unmarshal(v, &msgs); err != nil {
		logger.Error("conversation_decode_failed", "conversation", conversationID, "error", err)
		return nil, fmt.Errorf("invalid local message record: %w", err)
	}
	return msgs, nil
}

// PutConversationMessages replaces the persisted local message list for a
// conversation. Callers perform read-merge-write under the conversation
// lock; this method is a plain durable set.
func (s *Store) PutConversationMessages(conversationID string, msgs []models.Message) error {
	if !s.Ready() {
		return fmt.Errorf("%w: not opened", ErrUnavailable)
	}
	data, err := json.Marshal(msgs)
	if err != nil {
		return fmt.Errorf("failed to marshal local messages: %w", err)
	}
	if err := s.db.Set(convKey(conversationID), data, pebble.Sync); err != nil {
		logger.Error("put_conversation_failed", "conversation", conversationID, "error", err)
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	logger.Debug("conversation_saved", "conversation", conversationID, "count", len(msgs))
	return nil
}

// DeleteConversation removes the persisted local message list.
func (s *Store) DeleteConversation(conversationID string) error {
	if !s.Ready() {
		return fmt.Errorf("%w: not opened", ErrUnavailable)
	}
	if err := s.db.Delete(convKey(conversationID), pebble.Sync); err != nil {
		logger.Error("delete_conversation_failed", "conversation", conversationID, "error", err)
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	logger.Info("conversation_deleted", "conversation", conversationID)
	return nil
}

// ListConversations returns the IDs of all conversations with persisted
// local messages.
func (s *Store) ListConversations() ([]string, error) {
	if !s.Ready() {
		return nil, fmt.Errorf("%w: not opened", ErrUnavailable)
	}
	prefix := []byte("conv:")
	iter, err := s.db.NewIter(&pebble.IterOptions{})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer iter.Close()
	var out []string
	for iter.SeekGE(prefix); iter.Valid(); iter.Next() {
		if !bytes.HasPrefix(iter.Key(), prefix) {
			break
		}
		k := string(iter.Key())
		if strings.HasSuffix(k, ":local") {
			out = append(out, strings.TrimSuffix(strings.TrimPrefix(k, "conv:"), ":local"))
		}
	}
	return out, iter.Error()
}

// Size returns the on-disk size of the mirror in bytes, best-effort.
func (s *Store) Size() uint64 {
	if s == nil || s.path == "" {
		return 0
	}
	var total uint64
	_ = filepath.Walk(s.path, func(_ string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if !info.IsDir() {
			total += uint64(info.Size())
		}
		return nil
	})
	return total
}
