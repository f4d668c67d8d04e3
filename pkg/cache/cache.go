// Package cache holds the in-memory ordered, deduplicated message list for
// one conversation and the pure merge operation used during reconciliation.
//
// The cache itself carries no locking; the engine serializes all access per
// conversation.
package cache

import (
	"sort"

	"threadsync/pkg/models"
)

// Merge produces the deduplicated union of a remote-fetched history and the
// locally persisted messages, ordered ascending by CreatedAt with ties kept
// in arrival order (remote block first, then local).
//
// A local entry is dropped when a remote entry carries the same id: the
// remote service is the source of truth for confirmed messages. Entries
// still carrying a placeholder id (local-pending) can never collide with a
// server id and are always retained. No content/time heuristic matching
// happens here; the identity swap is performed by the send confirmation.
//
// Merge is pure: inputs are not mutated and identical inputs yield an
// identical output.
func Merge(remote, local []models.Message) []models.Message {
	out := make([]models.Message, 0, len(remote)+len(local))
	seen := make(map[string]struct{}, len(remote)+len(local))
	for _, m := range remote {
		if _, dup := seen[m.ID]; dup {
			continue
		}
		seen[m.ID] = struct{}{}
		out = append(out, m)
	}
	for _, m := range local {
		if _, dup := seen[m.ID]; dup {
			continue
		}
		seen[m.ID] = struct{}{}
		out = append(out, m)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

// Cache is the message list for a single conversation. Invariant: entries
// are sorted ascending by CreatedAt and no two entries share an id.
type Cache struct {
	msgs []models.Message
}

// New returns an empty cache.
func New() *Cache {
	return &Cache{}
}

// Replace publishes a freshly merged list as the current cache content.
func (c *Cache) Replace(msgs []models.Message) {
	c.msgs = append(c.msgs[:0:0], msgs...)
}

// Snapshot returns a copy of the current list; callers may hold it across
// later mutations.
func (c *Cache) Snapshot() []models.Message {
	return append([]models.Message(nil), c.msgs...)
}

// Len returns the number of cached messages.
func (c *Cache) Len() int { return len(c.msgs) }

// Get returns the entry with the given id.
func (c *Cache) Get(id string) (models.Message, bool) {
	if i := c.indexOf(id); i >= 0 {
		return c.msgs[i], true
	}
	return models.Message{}, false
}

// Upsert inserts or replaces by id, keeping CreatedAt order. The insertion
// point is found by binary search; the id lookup is a linear scan, fine for
// per-contact threads (bounded page size) but a known limit for very large
// ones.
func (c *Cache) Upsert(m models.Message) {
	if i := c.indexOf(m.ID); i >= 0 {
		c.msgs = append(c.msgs[:i], c.msgs[i+1:]...)
	}
	// insert after any entries with the same timestamp to preserve arrival order
	pos := sort.Search(len(c.msgs), func(i int) bool {
		return c.msgs[i].CreatedAt.After(m.CreatedAt)
	})
	c.msgs = append(c.msgs, models.Message{})
	copy(c.msgs[pos+1:], c.msgs[pos:])
	c.msgs[pos] = m
}

// Remove deletes the entry with the given id and reports whether one was
// present.
func (c *Cache) Remove(id string) bool {
	i := c.indexOf(id)
	if i < 0 {
		return false
	}
	c.msgs = append(c.msgs[:i], c.msgs[i+1:]...)
	return true
}

func (c *Cache) indexOf(id string) int {
	for i := range c.msgs {
		if c.msgs[i].ID == id {
			return i
		}
	}
	return -1
}
