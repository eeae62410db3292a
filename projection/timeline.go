// Package projection builds local timelines from observed view events.
// It does not talk to the remote log and never mutates the authoritative list.
package projection

import (
	"chat-sync/domain"
	"chat-sync/domain/event"
	"context"
	"sync"
	"time"

	"github.com/samber/lo"
)

// Row is one rendered entry. Mine is set for entries authored by the owner.
type Row struct {
	ID     string
	Author string
	Kind   domain.BodyKind
	Text   string
	Ref    string
	At     *time.Time
	Mine   bool
}

// Timeline holds the last list received, projected for one identity.
type Timeline struct {
	Owner string

	mu             sync.RWMutex
	rows           []Row
	seq            uint64
	fromCache      bool
	scrollRequests int
}

func NewTimeline(owner string) *Timeline {
	return &Timeline{Owner: owner}
}

func (t *Timeline) Consume(_ context.Context, e event.ViewEvent) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	switch evt := e.(type) {
	case event.ListReplaced:
		t.rows = lo.Map(evt.Messages, func(m domain.Message, _ int) Row {
			return t.toRow(m)
		})
		t.seq = evt.Seq
		t.fromCache = evt.FromCache
	case event.ScrollToBottom:
		t.scrollRequests++
	}
	return nil
}

func (t *Timeline) toRow(m domain.Message) Row {
	var kind domain.BodyKind
	if m.Body != nil {
		kind = m.Body.Kind()
	}
	return Row{
		ID:     m.ID,
		Author: m.Author,
		Kind:   kind,
		Text:   m.Text(),
		Ref:    m.AttachmentRef(),
		At:     m.CreatedAt,
		Mine:   m.IsFrom(t.Owner),
	}
}

// Rows returns a copy of the projected entries, oldest first.
func (t *Timeline) Rows() []Row {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return append([]Row(nil), t.rows...)
}

// Seq is the sequence of the last list received. FromCache tells whether it came from the local copy.
func (t *Timeline) Seq() (uint64, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.seq, t.fromCache
}

func (t *Timeline) ScrollRequests() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.scrollRequests
}
