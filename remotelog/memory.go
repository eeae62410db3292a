// Package remotelog contains the clients of the hosted ordered message log.
package remotelog

import (
	"chat-sync/contract"
	"chat-sync/domain"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

const memoryScheme = "mem://"

// MemoryLog is an in-process ordered log with realtime snapshots.
// It behaves like the hosted service: ids and timestamps are assigned on append
// and every subscriber receives a full snapshot after each change.
type MemoryLog struct {
	log   *slog.Logger
	clock func() time.Time

	// deliver serializes state changes with their notifications
	deliver  sync.Mutex
	mu       sync.Mutex
	messages domain.MessageList
	subs     map[uint64]*memorySubscription
	nextSub  uint64
	blobs    map[string]domain.Blob
}

type memorySubscription struct {
	owner   *MemoryLog
	id      uint64
	seq     uint64
	handler contract.SnapshotHandler
	active  atomic.Bool
}

func (s *memorySubscription) Unsubscribe() {
	if s.active.CompareAndSwap(true, false) {
		s.owner.mu.Lock()
		delete(s.owner.subs, s.id)
		s.owner.mu.Unlock()
	}
}

type MemoryOption func(*MemoryLog)

// WithClock replaces the server clock used to stamp appended entries. Stamps are kept in UTC.
func WithClock(clock func() time.Time) MemoryOption {
	return func(m *MemoryLog) { m.clock = clock }
}

func NewMemoryLog(log *slog.Logger, opts ...MemoryOption) *MemoryLog {
	m := &MemoryLog{
		log:   log,
		clock: func() time.Time { return time.Now().UTC() },
		subs:  make(map[uint64]*memorySubscription),
		blobs: make(map[string]domain.Blob),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Subscribe delivers the current content right away, then one snapshot per append.
func (m *MemoryLog) Subscribe(ctx context.Context, orderKey string, handler contract.SnapshotHandler) (contract.Subscription, error) {
	if orderKey != domain.OrderKey {
		return nil, fmt.Errorf("unsupported order key %q", orderKey)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.deliver.Lock()
	defer m.deliver.Unlock()

	m.mu.Lock()
	m.nextSub++
	sub := &memorySubscription{owner: m, id: m.nextSub, handler: handler}
	sub.active.Store(true)
	m.subs[sub.id] = sub
	current := m.messages.Ordered()
	m.mu.Unlock()

	m.notify(sub, current)
	return sub, nil
}

func (m *MemoryLog) Append(ctx context.Context, entry domain.Entry) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := domain.ValidateBody(entry.Body); err != nil {
		return "", err
	}
	m.deliver.Lock()
	defer m.deliver.Unlock()

	m.mu.Lock()
	at := m.clock().UTC()
	message := domain.Message{
		ID:        uuid.NewString(),
		Body:      entry.Body,
		Author:    entry.Author,
		CreatedAt: &at,
	}
	m.messages = append(m.messages, message)
	current := m.messages.Ordered()
	subs := make([]*memorySubscription, 0, len(m.subs))
	for _, sub := range m.subs {
		subs = append(subs, sub)
	}
	m.mu.Unlock()

	for _, sub := range subs {
		m.notify(sub, current)
	}
	m.log.Debug("Entry appended", "id", message.ID, "author", message.Author)
	return message.ID, nil
}

// UploadBinary keeps the blob in memory and returns a mem:// reference.
func (m *MemoryLog) UploadBinary(ctx context.Context, blob domain.Blob) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if blob.Name == "" {
		return "", fmt.Errorf("blob name is required")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.blobs[blob.Name] = blob
	return memoryScheme + blob.Name, nil
}

// Blob returns an uploaded binary by its reference.
func (m *MemoryLog) Blob(ref string) (domain.Blob, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	blob, ok := m.blobs[strings.TrimPrefix(ref, memoryScheme)]
	return blob, ok
}

func (m *MemoryLog) Messages() domain.MessageList {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.messages.Ordered()
}

func (m *MemoryLog) notify(sub *memorySubscription, current domain.MessageList) {
	if !sub.active.Load() {
		return
	}
	sub.seq++
	sub.handler(domain.Snapshot{Seq: sub.seq, Messages: current})
}
