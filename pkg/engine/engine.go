// Package engine coordinates fetch, send and delete against the remote
// gateway and the local mirror, and keeps each conversation's in-memory
// cache consistent under concurrent calls.
package engine

import (
	"context"
	"sync"
	"time"

	"threadsync/pkg/cache"
	"threadsync/pkg/logger"
	"threadsync/pkg/metrics"
	"threadsync/pkg/models"
	"threadsync/pkg/utils"
)

// Remote is the gateway surface the engine consumes. The concrete client is
// injected so tests can run against a deterministic fake.
type Remote interface {
	FetchMessages(ctx context.Context, conversationID string, limit int) ([]models.RemoteMessage, error)
	SendMessage(ctx context.Context, conversationID, text string) (models.RemoteMessage, error)
	DeleteMessage(ctx context.Context, messageID string) error
}

// LocalStore is the durable mirror of locally originated messages.
type LocalStore interface {
	GetConversationMessages(conversationID string) ([]models.Message, error)
	PutConversationMessages(conversationID string, msgs []models.Message) error
}

// conversation bundles everything owned per contact: the mutation lock, the
// cache, and the bookkeeping the session surfaces.
type conversation struct {
	mu    sync.Mutex // serializes load/send/delete, including awaited I/O
	cache *cache.Cache
}

// Engine owns the per-conversation caches. Mutating operations on one
// conversation are serialized by its lock; operations on different
// conversations proceed concurrently. The store read-merge-write sequences
// run under the same lock as the cache mutation they accompany, so two
// back-to-back sends cannot lose each other's persisted entries.
type Engine struct {
	remote    Remote
	local     LocalStore
	pageLimit int

	mu      sync.Mutex
	convs   map[string]*conversation
	errs    map[string]error
	loading map[string]bool
}

// New constructs an Engine over the given gateway and mirror.
func New(remote Remote, local LocalStore, pageLimit int) *Engine {
	if pageLimit <= 0 {
		pageLimit = 100
	}
	return &Engine{
		remote:    remote,
		local:     local,
		pageLimit: pageLimit,
		convs:     map[string]*conversation{},
		errs:      map[string]error{},
		loading:   map[string]bool{},
	}
}

// conv returns the conversation state, creating it lazily on first use.
func (e *Engine) conv(id string) *conversation {
	e.mu.Lock()
	defer e.mu.Unlock()
	cs, ok := e.convs[id]
	if !ok {
		cs = &conversation{cache: cache.New()}
		e.convs[id] = cs
	}
	return cs
}

func (e *Engine) setErr(id string, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err == nil {
		delete(e.errs, id)
		return
	}
	e.errs[id] = err
}

func (e *Engine) setLoading(id string, v bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if v {
		e.loading[id] = true
		return
	}
	delete(e.loading, id)
}

// LastError returns the most recent failure recorded for a conversation, or
// nil. A successful operation clears the slot.
func (e *Engine) LastError(id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.errs[id]
}

// ClearError drops the conversation's error slot without touching any other
// conversation's state.
func (e *Engine) ClearError(id string) {
	e.setErr(id, nil)
}

// Conversation returns the session-facing bookkeeping for a conversation.
func (e *Engine) Conversation(id string) models.Conversation {
	e.mu.Lock()
	defer e.mu.Unlock()
	c := models.Conversation{ID: id, Loading: e.loading[id]}
	if err := e.errs[id]; err != nil {
		c.LastError = err.Error()
	}
	return c
}

// Messages returns the current cache content without touching the remote.
func (e *Engine) Messages(id string) []models.Message {
	cs := e.conv(id)
	cs.mu.Lock()
	defer cs.mu.Unlock()
	return cs.cache.Snapshot()
}

// Load runs one fetch-and-merge cycle: remote history (first page only),
// locally persisted messages, merged and published as the conversation's
// cache. Failed and unconfirmed optimistic entries survive the refresh. On
// gateway failure the cache is left untouched; stale-but-consistent beats
// empty.
func (e *Engine) Load(ctx context.Context, conversationID string) ([]models.Message, error) {
	cs := e.conv(conversationID)
	cs.mu.Lock()
	defer cs.mu.Unlock()

	e.setLoading(conversationID, true)
	defer e.setLoading(conversationID, false)

	start := time.Now()
	remote, err := e.remote.FetchMessages(ctx, conversationID, e.pageLimit)
	metrics.GatewayLatency.WithLabelValues("fetch").Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.LoadFailures.Inc()
		e.setErr(conversationID, err)
		logger.Warn("load_fetch_failed", "conversation", conversationID, "error", err)
		return nil, err
	}

	local, lerr := e.local.GetConversationMessages(conversationID)
	if lerr != nil {
		// degraded read: merge proceeds with the remote view only
		logger.Warn("local_read_unavailable", "conversation", conversationID, "error", lerr)
		local = nil
	}

	// Failed and still-pending entries exist only in the cache (a failed
	// send writes nothing to the mirror), so they are carried into the merge
	// explicitly; otherwise a successful refresh would silently drop them.
	for _, m := range cs.cache.Snapshot() {
		if m.Status == models.StatusFailed || m.Origin == models.OriginLocalPending {
			local = append(local, m)
		}
	}

	rms := make([]models.Message, 0, len(remote))
	for _, rm := range remote {
		rms = append(rms, models.FromRemote(rm))
	}
	merged := cache.Merge(rms, local)
	cs.cache.Replace(merged)
	e.setErr(conversationID, nil)
	metrics.Loads.Inc()
	logger.Debug("load_merged", "conversation", conversationID, "remote", len(rms), "local", len(local), "merged", len(merged))
	return cs.cache.Snapshot(), nil
}

// Send applies an optimistic local-pending entry, then issues the remote
// send while still holding the conversation lock. On confirmation the
// placeholder is swapped in place for the server identity and the confirmed
// form is appended to the mirror (read-merge-write). On failure the entry
// stays visible with status failed and nothing is persisted.
//
// The returned message is the entry's state at the end of the call:
// confirmed on success, failed alongside the SendFailed error. The
// optimistic entry is observable through Messages between the upsert and
// the gateway response.
func (e *Engine) Send(ctx context.Context, conversationID, text string) (models.Message, error) {
	cs := e.conv(conversationID)
	cs.mu.Lock()
	defer cs.mu.Unlock()

	pending := models.NewPending(utils.GenLocalID(), conversationID, text)
	cs.cache.Upsert(pending)

	start := time.Now()
	rm, err := e.remote.SendMessage(ctx, conversationID, text)
	metrics.GatewayLatency.WithLabelValues("send").Observe(time.Since(start).Seconds())
	if err != nil {
		failed := pending.Fail()
		cs.cache.Upsert(failed)
		metrics.SendFailures.Inc()
		e.setErr(conversationID, err)
		logger.Warn("send_failed", "conversation", conversationID, "placeholder", pending.ID, "error", err)
		return failed, err
	}

	confirmed := pending.Confirm(rm)
	// same logical message: the placeholder entry is replaced, never duplicated
	cs.cache.Remove(pending.ID)
	cs.cache.Upsert(confirmed)

	persistErr := e.persistLocal(conversationID, confirmed)
	if persistErr != nil {
		e.setErr(conversationID, persistErr)
	} else {
		e.setErr(conversationID, nil)
	}
	metrics.Sends.Inc()
	logger.Info("send_confirmed", "conversation", conversationID, "id", confirmed.ID)
	return confirmed, nil
}

// Delete issues the remote delete first; only a confirmed delete mutates
// local state. Local-origin entries are also removed from the mirror.
func (e *Engine) Delete(ctx context.Context, conversationID, messageID string) error {
	cs := e.conv(conversationID)
	cs.mu.Lock()
	defer cs.mu.Unlock()

	start := time.Now()
	err := e.remote.DeleteMessage(ctx, messageID)
	metrics.GatewayLatency.WithLabelValues("delete").Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.DeleteFailures.Inc()
		e.setErr(conversationID, err)
		logger.Warn("delete_failed", "conversation", conversationID, "id", messageID, "error", err)
		return err
	}

	entry, present := cs.cache.Get(messageID)
	cs.cache.Remove(messageID)
	if present && entry.Local() {
		if perr := e.removeLocal(conversationID, messageID); perr != nil {
			e.setErr(conversationID, perr)
			metrics.Deletes.Inc()
			return nil
		}
	}
	e.setErr(conversationID, nil)
	metrics.Deletes.Inc()
	logger.Info("delete_confirmed", "conversation", conversationID, "id", messageID)
	return nil
}

// persistLocal appends (or replaces) one confirmed message in the mirror via
// read-merge-write. Callers hold the conversation lock. A write failure is
// surfaced but never rolls back the in-memory update.
func (e *Engine) persistLocal(conversationID string, m models.Message) error {
	locals, err := e.local.GetConversationMessages(conversationID)
	if err != nil {
		locals = nil
	}
	replaced := false
	for i := range locals {
		if locals[i].ID == m.ID {
			locals[i] = m
			replaced = true
			break
		}
	}
	if !replaced {
		locals = append(locals, m)
	}
	if werr := e.local.PutConversationMessages(conversationID, locals); werr != nil {
		metrics.StoreWriteFailures.Inc()
		logger.Error("local_persist_failed", "conversation", conversationID, "id", m.ID, "error", werr)
		return werr
	}
	return nil
}

// removeLocal drops one message from the mirror via read-merge-write.
func (e *Engine) removeLocal(conversationID, messageID string) error {
	locals, err := e.local.GetConversationMessages(conversationID)
	if err != nil {
		locals = nil
	}
	kept := locals[:0]
	for _, lm := range locals {
		if lm.ID != messageID {
			kept = append(kept, lm)
		}
	}
	if werr := e.local.PutConversationMessages(conversationID, kept); werr != nil {
		metrics.StoreWriteFailures.Inc()
		logger.Error("local_remove_failed", "conversation", conversationID, "id", messageID, "error", werr)
		return werr
	}
	return nil
}
