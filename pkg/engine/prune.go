package engine

import (
	"time"

	"threadsync/pkg/models"
)

// PruneLocal drops mirror entries older than cutoff, under the conversation
// lock so an in-flight send cannot race the rewrite. Confirmed entries stay
// visible in the cache (the remote still holds them and the next load
// re-fetches them); failed and deleted entries are removed from the cache
// too. It returns how many mirror entries were removed.
func (e *Engine) PruneLocal(conversationID string, cutoff time.Time) (int, error) {
	cs := e.conv(conversationID)
	cs.mu.Lock()
	defer cs.mu.Unlock()

	locals, err := e.local.GetConversationMessages(conversationID)
	if err != nil {
		return 0, err
	}
	kept := make([]models.Message, 0, len(locals))
	var dropped []models.Message
	for _, m := range locals {
		if m.CreatedAt.Before(cutoff) {
			dropped = append(dropped, m)
			continue
		}
		kept = append(kept, m)
	}
	if len(dropped) == 0 {
		return 0, nil
	}
	if err := e.local.PutConversationMessages(conversationID, kept); err != nil {
		return 0, err
	}
	for _, m := range dropped {
		if m.Status == models.StatusFailed || m.Status == models.StatusDeleted {
			cs.cache.Remove(m.ID)
		}
	}
	return len(dropped), nil
}
