// Package domain contains core concepts of the chat client.
// This file defines Message entries mirrored from the remote log.
// Messages are immutable once materialized from a snapshot.
package domain

import (
	"chat-sync/errors"
	"fmt"
	"slices"
	"strings"
	"time"
)

// OrderKey is the field the remote log orders its collection by.
const OrderKey = "createdAt"

type BodyKind string

const (
	KindText       BodyKind = "text"
	KindAttachment BodyKind = "attachment"
)

// Body is a closed union: only TextBody and AttachmentBody implement it.
type Body interface {
	Kind() BodyKind
	validate() error
}

type TextBody struct {
	Text string
}

func (TextBody) Kind() BodyKind { return KindText }

func (b TextBody) validate() error {
	if strings.TrimSpace(b.Text) == "" {
		return fmt.Errorf("%w: empty text", errors.ErrInvalidBody)
	}
	return nil
}

// AttachmentBody carries the durable reference of an uploaded binary.
type AttachmentBody struct {
	Ref string
}

func (AttachmentBody) Kind() BodyKind { return KindAttachment }

func (b AttachmentBody) validate() error {
	if strings.TrimSpace(b.Ref) == "" {
		return fmt.Errorf("%w: empty attachment reference", errors.ErrInvalidBody)
	}
	return nil
}

func ValidateBody(b Body) error {
	if b == nil {
		return errors.ErrInvalidBody
	}
	return b.validate()
}

// Message represents one chat entry as known by the remote log.
type Message struct {
	ID        string // assigned by the remote log
	Body      Body
	Author    string
	CreatedAt *time.Time // nil until the server commits it
}

func (m Message) Validate() error {
	if m.ID == "" {
		return fmt.Errorf("%w: missing id", errors.ErrInvalidBody)
	}
	if strings.TrimSpace(m.Author) == "" {
		return fmt.Errorf("%w: missing author", errors.ErrInvalidBody)
	}
	return ValidateBody(m.Body)
}

// IsFrom tells whether the message was written by the given display identity.
func (m Message) IsFrom(identity string) bool {
	return identity != "" && m.Author == identity
}

// Text returns the text payload, empty for attachments.
func (m Message) Text() string {
	if b, ok := m.Body.(TextBody); ok {
		return b.Text
	}
	return ""
}

// AttachmentRef returns the attachment reference, empty for text messages.
func (m Message) AttachmentRef() string {
	if b, ok := m.Body.(AttachmentBody); ok {
		return b.Ref
	}
	return ""
}

// MessageList is ordered ascending by CreatedAt, ties kept in server insertion order.
type MessageList []Message

// Ordered returns a sorted copy of the list. Entries still waiting for their
// server timestamp are kept after committed ones, in arrival order.
func (l MessageList) Ordered() MessageList {
	out := slices.Clone(l)
	slices.SortStableFunc(out, func(a, b Message) int {
		switch {
		case a.CreatedAt == nil && b.CreatedAt == nil:
			return 0
		case a.CreatedAt == nil:
			return 1
		case b.CreatedAt == nil:
			return -1
		}
		return a.CreatedAt.Compare(*b.CreatedAt)
	})
	return out
}

// Valid returns the messages passing Validate, in the same order, and how many were left out.
func (l MessageList) Valid() (MessageList, int) {
	out := make(MessageList, 0, len(l))
	for _, m := range l {
		if m.Validate() == nil {
			out = append(out, m)
		}
	}
	return out, len(l) - len(out)
}

func (l MessageList) Last() (Message, bool) {
	if len(l) == 0 {
		return Message{}, false
	}
	return l[len(l)-1], true
}

// Entry is what a client appends to the remote log.
type Entry struct {
	Body   Body
	Author string
}

func NewTextEntry(author, text string) (Entry, error) {
	return newEntry(author, TextBody{Text: text})
}

func NewAttachmentEntry(author, ref string) (Entry, error) {
	return newEntry(author, AttachmentBody{Ref: ref})
}

func newEntry(author string, body Body) (Entry, error) {
	if strings.TrimSpace(author) == "" {
		return Entry{}, fmt.Errorf("%w: author is required", errors.ErrValidation)
	}
	if err := ValidateBody(body); err != nil {
		return Entry{}, fmt.Errorf("%w: %v", errors.ErrValidation, err)
	}
	return Entry{Body: body, Author: author}, nil
}

// Snapshot is a full replacement view of the remote log.
// Seq increases with every notification of a subscription.
type Snapshot struct {
	Seq      uint64
	Messages MessageList
}
