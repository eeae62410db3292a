package workers

import (
	"chat-sync/contract"
	"chat-sync/domain"
	"context"
	"log/slog"
)

// CacheWriter mirrors the authoritative list to the local cache off the notification path.
// Only the most recent list is kept: a newer one replaces a list not yet written.
type CacheWriter struct {
	log     *slog.Logger
	store   contract.CacheStore
	pending chan domain.MessageList
}

func NewCacheWriter(log *slog.Logger, store contract.CacheStore) *CacheWriter {
	return &CacheWriter{log: log, store: store, pending: make(chan domain.MessageList, 1)}
}

// Schedule never blocks.
func (w *CacheWriter) Schedule(list domain.MessageList) {
	for {
		select {
		case w.pending <- list:
			return
		default:
		}
		// Slot taken by an older list, drop it
		select {
		case <-w.pending:
			w.log.Debug("Superseded cache write dropped")
		default:
		}
	}
}

// Run writes scheduled lists until the context is done, then flushes the last one.
func (w *CacheWriter) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			w.flush()
			return nil
		case list := <-w.pending:
			w.store.Save(list)
		}
	}
}

func (w *CacheWriter) flush() {
	select {
	case list := <-w.pending:
		w.store.Save(list)
	default:
	}
}
