package main

import (
	"bytes"
	"chat-sync/domain"
	"chat-sync/domain/event"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
)

func TestTerminal_Prints_New_Rows_Once(t *testing.T) {
	req := require.New(t)
	var out bytes.Buffer
	term := newTerminal(&out, "alice", false)
	ctx := context.Background()
	at := time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)
	first := domain.Message{ID: "1", Author: "bob", Body: domain.TextBody{Text: "hi alice"}, CreatedAt: lo.ToPtr(at)}
	second := domain.Message{ID: "2", Author: "alice", Body: domain.AttachmentBody{Ref: "https://cdn/cat.png"}, CreatedAt: lo.ToPtr(at.Add(time.Minute))}

	req.NoError(term.Consume(ctx, event.ListReplaced{Seq: 1, Messages: domain.MessageList{first}}))
	req.NoError(term.Consume(ctx, event.ScrollToBottom{Seq: 1}))
	req.NoError(term.Consume(ctx, event.ListReplaced{Seq: 2, Messages: domain.MessageList{first, second}}))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	req.Len(lines, 2)
	req.Contains(lines[0], "bob: hi alice")
	req.Contains(lines[1], "me: [image] https://cdn/cat.png")
}

func TestTerminal_Marks_Offline_Copy(t *testing.T) {
	var out bytes.Buffer
	term := newTerminal(&out, "alice", false)

	require.NoError(t, term.Consume(context.Background(), event.ListReplaced{FromCache: true, Messages: domain.MessageList{
		{ID: "1", Author: "bob", Body: domain.TextBody{Text: "old"}},
	}}))

	require.Contains(t, out.String(), "offline copy")
	require.Contains(t, out.String(), "[--:--] bob: old")
}

func TestRenderHistory(t *testing.T) {
	var out bytes.Buffer
	renderHistory(&out, domain.MessageList{
		{ID: "1", Author: "bob", Body: domain.TextBody{Text: "hello"}},
		{ID: "2", Author: "alice", Body: domain.AttachmentBody{Ref: "https://cdn/cat.png"}},
	})

	require.Contains(t, out.String(), "hello")
	require.Contains(t, out.String(), "https://cdn/cat.png")
	require.Contains(t, out.String(), "pending")
}
