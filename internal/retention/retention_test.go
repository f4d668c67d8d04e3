package retention

import (
	"context"
	"testing"
	"time"

	"threadsync/pkg/config"
	"threadsync/pkg/engine"
	"threadsync/pkg/models"
	"threadsync/pkg/store"
)

type noRemote struct{}

func (noRemote) FetchMessages(context.Context, string, int) ([]models.RemoteMessage, error) {
	return nil, nil
}
func (noRemote) SendMessage(context.Context, string, string) (models.RemoteMessage, error) {
	return models.RemoteMessage{}, nil
}
func (noRemote) DeleteMessage(context.Context, string) error { return nil }

func openStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func mirrored(id, conv string, age time.Duration) models.Message {
	return models.Message{
		ID:           id,
		Conversation: conv,
		Text:         "t",
		CreatedAt:    time.Now().UTC().Add(-age),
		Origin:       models.OriginLocalConfirmed,
		Status:       models.StatusSent,
	}
}

func TestRunOncePrunesOldMirrorEntries(t *testing.T) {
	st := openStore(t)
	_ = st.PutConversationMessages("alice", []models.Message{
		mirrored("m-1", "alice", 72*time.Hour),
		mirrored("m-2", "alice", time.Hour),
	})
	_ = st.PutConversationMessages("bob", []models.Message{
		mirrored("m-3", "bob", 72*time.Hour),
	})
	eng := engine.New(noRemote{}, st, 100)

	if err := RunOnce(eng, st, 24*time.Hour); err != nil {
		t.Fatalf("RunOnce: %v", err)
	}

	alice, _ := st.GetConversationMessages("alice")
	if len(alice) != 1 || alice[0].ID != "m-2" {
		t.Fatalf("expected only recent entry kept for alice, got %+v", alice)
	}
	bob, _ := st.GetConversationMessages("bob")
	if len(bob) != 0 {
		t.Fatalf("expected bob fully pruned, got %+v", bob)
	}
}

func TestStartDisabled(t *testing.T) {
	st := openStore(t)
	eng := engine.New(noRemote{}, st, 100)
	cfg := &config.Config{}

	cancel, err := Start(context.Background(), cfg, eng, st)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	cancel()
}

func TestStartRejectsBadCron(t *testing.T) {
	st := openStore(t)
	eng := engine.New(noRemote{}, st, 100)
	cfg := &config.Config{}
	cfg.Retention.Enabled = true
	cfg.Retention.MaxAge = "24h"
	cfg.Retention.Cron = "not a cron"

	if _, err := Start(context.Background(), cfg, eng, st); err == nil {
		t.Fatalf("expected invalid cron to be rejected")
	}
}
