package repositories

import (
	"chat-sync/codec"
	"chat-sync/domain"
	stderrors "errors"
	"fmt"
	"log/slog"

	"github.com/dgraph-io/badger/v4"
)

const DefaultHistoryKey = "chat:history"

type IHistoryRepository interface {
	StoreHistory(list domain.MessageList) error
	GetHistory() (domain.MessageList, bool, error)
	DeleteHistory() error
}

// HistoryRepository keeps one serialized copy of the last known message list.
type HistoryRepository struct {
	db  *badger.DB
	log *slog.Logger
	key []byte
}

func NewHistoryRepository(db *badger.DB, log *slog.Logger, key string) HistoryRepository {
	if key == "" {
		key = DefaultHistoryKey
	}
	return HistoryRepository{db: db, log: log, key: []byte(key)}
}

// StoreHistory overwrites the stored list with the given one.
func (h HistoryRepository) StoreHistory(list domain.MessageList) error {
	bytes, err := codec.JSON.Marshal(codec.FromList(list))
	if err != nil {
		return fmt.Errorf("history encoding failed: %w", err)
	}
	return h.db.Update(func(txn *badger.Txn) error {
		return txn.Set(h.key, bytes)
	})
}

// GetHistory returns the stored list. The boolean is false when nothing was ever stored.
func (h HistoryRepository) GetHistory() (domain.MessageList, bool, error) {
	var raw []byte
	err := h.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(h.key)
		if err != nil {
			return err
		}
		raw, err = item.ValueCopy(nil)
		return err
	})
	if stderrors.Is(err, badger.ErrKeyNotFound) {
		h.log.Debug("No cached history", "key", string(h.key))
		return domain.MessageList{}, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var docs []codec.Document
	if err = codec.JSON.Unmarshal(raw, &docs); err != nil {
		return nil, true, fmt.Errorf("history decoding failed: %w", err)
	}
	list, err := codec.ToList(docs)
	if err != nil {
		return nil, true, fmt.Errorf("history decoding failed: %w", err)
	}
	return list, true, nil
}

func (h HistoryRepository) DeleteHistory() error {
	return h.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(h.key)
	})
}
