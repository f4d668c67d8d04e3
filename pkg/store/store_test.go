package store

import (
	"errors"
	"testing"
	"time"

	"threadsync/pkg/models"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func localMsg(id string) models.Message {
	return models.Message{
		ID:           id,
		Conversation: "c1",
		Text:         "t-" + id,
		CreatedAt:    time.Now().UTC(),
		Origin:       models.OriginLocalConfirmed,
		Status:       models.StatusSent,
	}
}

func TestGetAbsentConversation(t *testing.T) {
	s := openTestStore(t)
	msgs, err := s.GetConversationMessages("nobody")
	if err != nil {
		t.Fatalf("expected absent conversation to read as empty, got %v", err)
	}
	if msgs != nil {
		t.Fatalf("expected nil slice, got %v", msgs)
	}
}

func TestPutGetRoundtrip(t *testing.T) {
	s := openTestStore(t)
	in := []models.Message{localMsg("m-1"), localMsg("m-2")}
	if err := s.PutConversationMessages("c1", in); err != nil {
		t.Fatalf("Put: %v", err)
	}
	out, err := s.GetConversationMessages("c1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(out) != 2 || out[0].ID != "m-1" || out[1].ID != "m-2" {
		t.Fatalf("roundtrip mismatch: %+v", out)
	}
}

func TestReadMergeWrite(t *testing.T) {
	s := openTestStore(t)
	if err := s.PutConversationMessages("c1", []models.Message{localMsg("m-1")}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	// append without losing the existing entry
	cur, err := s.GetConversationMessages("c1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	cur = append(cur, localMsg("m-2"))
	if err := s.PutConversationMessages("c1", cur); err != nil {
		t.Fatalf("Put: %v", err)
	}
	out, _ := s.GetConversationMessages("c1")
	if len(out) != 2 {
		t.Fatalf("expected 2 entries after read-merge-write, got %d", len(out))
	}
}

func TestListAndDeleteConversations(t *testing.T) {
	s := openTestStore(t)
	_ = s.PutConversationMessages("alice", []models.Message{localMsg("m-1")})
	_ = s.PutConversationMessages("bob", []models.Message{localMsg("m-2")})

	ids, err := s.ListConversations()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(ids) != 2 || ids[0] != "alice" || ids[1] != "bob" {
		t.Fatalf("unexpected conversation list: %v", ids)
	}

	if err := s.DeleteConversation("alice"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	ids, _ = s.ListConversations()
	if len(ids) != 1 || ids[0] != "bob" {
		t.Fatalf("expected only bob after delete, got %v", ids)
	}
}

func TestClosedStoreUnavailable(t *testing.T) {
	s := openTestStore(t)
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if _, err := s.GetConversationMessages("c1"); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable on read, got %v", err)
	}
	if err := s.PutConversationMessages("c1", nil); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable on write, got %v", err)
	}
	if s.Ready() {
		t.Fatalf("closed store reports ready")
	}
}
