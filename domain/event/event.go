package event

import "chat-sync/domain"

// ViewEvent is pushed to renderers by the sync controller.
type ViewEvent interface {
	Sequence() uint64
}

// ListReplaced carries the full authoritative list after a replacement.
// FromCache is set when the list comes from the local fallback copy.
type ListReplaced struct {
	Seq       uint64
	Messages  domain.MessageList
	FromCache bool
}

func (e ListReplaced) Sequence() uint64 { return e.Seq }

// ScrollToBottom asks renderers to bring the newest entry into view.
type ScrollToBottom struct {
	Seq uint64
}

func (e ScrollToBottom) Sequence() uint64 { return e.Seq }
