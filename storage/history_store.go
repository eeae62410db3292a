package storage

import (
	"chat-sync/domain"
	"chat-sync/errors"
	"chat-sync/observability"
	"chat-sync/repositories"
	"fmt"
	"log/slog"
)

// HistoryStore is the local cache fallback of the sync controller.
// Failures of the underlying repository are logged and swallowed.
type HistoryStore struct {
	repository repositories.IHistoryRepository
	log        *slog.Logger
	metrics    *observability.Metrics
}

func NewHistoryStore(repository repositories.IHistoryRepository, log *slog.Logger, metrics *observability.Metrics) *HistoryStore {
	return &HistoryStore{repository: repository, log: log, metrics: metrics}
}

func (s *HistoryStore) Save(list domain.MessageList) {
	if err := s.repository.StoreHistory(list); err != nil {
		s.fail(fmt.Errorf("%w: save: %v", errors.ErrCache, err))
		return
	}
	s.log.Debug("History cached", "size", len(list))
}

// Load returns an empty list when nothing was stored or the copy cannot be decoded.
func (s *HistoryStore) Load() domain.MessageList {
	list, found, err := s.repository.GetHistory()
	if err != nil {
		s.fail(fmt.Errorf("%w: load: %v", errors.ErrCache, err))
		return domain.MessageList{}
	}
	if !found {
		return domain.MessageList{}
	}
	return list
}

func (s *HistoryStore) fail(err error) {
	s.log.Error("Local cache failure", "error", err)
	if s.metrics != nil {
		s.metrics.CacheFailures.Inc()
	}
}
