// Package codec holds the JSON document layout of a message, shared by the
// local cache and the remote log wire frames.
package codec

import (
	"chat-sync/domain"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/samber/lo"
)

var JSON = jsoniter.ConfigCompatibleWithStandardLibrary

// Document has exactly one of Text / ImageURL set, CreatedAt is null until committed.
type Document struct {
	ID        string     `json:"id"`
	Text      string     `json:"text,omitempty"`
	ImageURL  string     `json:"imageUrl,omitempty"`
	User      string     `json:"user"`
	CreatedAt *Timestamp `json:"createdAt"`
}

type Timestamp struct {
	Seconds     int64 `json:"seconds"`
	Nanoseconds int64 `json:"nanoseconds"`
}

func NewTimestamp(t time.Time) *Timestamp {
	return &Timestamp{Seconds: t.Unix(), Nanoseconds: int64(t.Nanosecond())}
}

// Time restores the instant in UTC. A time saved with another location comes
// back equal by time.Equal, not by ==.
func (t *Timestamp) Time() *time.Time {
	if t == nil {
		return nil
	}
	return lo.ToPtr(time.Unix(t.Seconds, t.Nanoseconds).UTC())
}

func FromMessage(m domain.Message) Document {
	doc := Document{ID: m.ID, User: m.Author}
	switch b := m.Body.(type) {
	case domain.TextBody:
		doc.Text = b.Text
	case domain.AttachmentBody:
		doc.ImageURL = b.Ref
	}
	if m.CreatedAt != nil {
		doc.CreatedAt = NewTimestamp(*m.CreatedAt)
	}
	return doc
}

// ToMessage leaves Body nil when neither payload is present, Validate reports it.
func ToMessage(doc Document) domain.Message {
	m := domain.Message{ID: doc.ID, Author: doc.User, CreatedAt: doc.CreatedAt.Time()}
	switch {
	case doc.ImageURL != "":
		m.Body = domain.AttachmentBody{Ref: doc.ImageURL}
	case doc.Text != "":
		m.Body = domain.TextBody{Text: doc.Text}
	}
	return m
}

func FromList(list domain.MessageList) []Document {
	return lo.Map(list, func(m domain.Message, _ int) Document { return FromMessage(m) })
}

// ToMessages converts every document without validating them.
func ToMessages(docs []Document) domain.MessageList {
	return lo.Map(docs, func(doc Document, _ int) domain.Message { return ToMessage(doc) })
}

// ToList converts and validates every document.
func ToList(docs []Document) (domain.MessageList, error) {
	list := make(domain.MessageList, 0, len(docs))
	for _, doc := range docs {
		m := ToMessage(doc)
		if err := m.Validate(); err != nil {
			return nil, err
		}
		list = append(list, m)
	}
	return list, nil
}

// EntryDocument is the append payload, the server fills id and createdAt.
type EntryDocument struct {
	Text     string `json:"text,omitempty"`
	ImageURL string `json:"imageUrl,omitempty"`
	User     string `json:"user"`
}

func FromEntry(e domain.Entry) EntryDocument {
	doc := EntryDocument{User: e.Author}
	switch b := e.Body.(type) {
	case domain.TextBody:
		doc.Text = b.Text
	case domain.AttachmentBody:
		doc.ImageURL = b.Ref
	}
	return doc
}
