package projection

import (
	"chat-sync/domain"
	"chat-sync/domain/event"
	"context"
	"testing"
	"time"

	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
)

func TestTimeline_Consume_ListReplaced(t *testing.T) {
	req := require.New(t)
	timeline := NewTimeline("alice")
	ctx := context.Background()
	now := time.Now()

	list := domain.MessageList{
		{ID: "1", Author: "alice", Body: domain.TextBody{Text: "Hello Bob"}, CreatedAt: lo.ToPtr(now)},
		{ID: "2", Author: "bob", Body: domain.AttachmentBody{Ref: "https://cdn/cat.png"}, CreatedAt: lo.ToPtr(now.Add(time.Second))},
	}

	req.NoError(timeline.Consume(ctx, event.ListReplaced{Seq: 4, Messages: list}))
	req.NoError(timeline.Consume(ctx, event.ScrollToBottom{Seq: 4}))

	rows := timeline.Rows()
	req.Len(rows, 2)
	req.True(rows[0].Mine)
	req.Equal("Hello Bob", rows[0].Text)
	req.Equal(domain.KindText, rows[0].Kind)
	req.False(rows[1].Mine)
	req.Equal(domain.KindAttachment, rows[1].Kind)
	req.Equal("https://cdn/cat.png", rows[1].Ref)
	req.Empty(rows[1].Text)
	req.Equal(1, timeline.ScrollRequests())
	seq, fromCache := timeline.Seq()
	req.Equal(uint64(4), seq)
	req.False(fromCache)
}

func TestTimeline_Replacement_Is_Wholesale(t *testing.T) {
	req := require.New(t)
	timeline := NewTimeline("bob")
	ctx := context.Background()

	req.NoError(timeline.Consume(ctx, event.ListReplaced{FromCache: true, Messages: domain.MessageList{
		{ID: "1", Author: "alice", Body: domain.TextBody{Text: "cached"}},
		{ID: "2", Author: "alice", Body: domain.TextBody{Text: "cached too"}},
	}}))
	_, fromCache := timeline.Seq()
	req.True(fromCache)

	req.NoError(timeline.Consume(ctx, event.ListReplaced{Seq: 1, Messages: domain.MessageList{
		{ID: "3", Author: "bob", Body: domain.TextBody{Text: "fresh"}},
	}}))

	rows := timeline.Rows()
	req.Len(rows, 1)
	req.Equal("3", rows[0].ID)
	req.True(rows[0].Mine)
}

func TestTimeline_Message_Without_Body(t *testing.T) {
	req := require.New(t)
	timeline := NewTimeline("alice")

	req.NotPanics(func() {
		req.NoError(timeline.Consume(context.Background(), event.ListReplaced{Seq: 1, Messages: domain.MessageList{
			{ID: "1", Author: "bob"},
		}}))
	})

	rows := timeline.Rows()
	req.Len(rows, 1)
	req.Empty(rows[0].Kind)
	req.Empty(rows[0].Text)
}
