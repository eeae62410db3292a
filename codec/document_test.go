package codec

import (
	"chat-sync/domain"
	"chat-sync/errors"
	"testing"
	"time"

	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
)

func TestToList_Rejects_Document_Without_Body(t *testing.T) {
	_, err := ToList([]Document{{ID: "1", User: "alice"}})

	require.ErrorIs(t, err, errors.ErrInvalidBody)
}

func TestFromMessage_Keeps_Nanoseconds(t *testing.T) {
	req := require.New(t)
	at := time.Date(2026, 10, 18, 10, 0, 0, 42, time.UTC)

	doc := FromMessage(domain.Message{ID: "1", Body: domain.TextBody{Text: "hi"}, Author: "alice", CreatedAt: lo.ToPtr(at)})

	req.Equal(&Timestamp{Seconds: at.Unix(), Nanoseconds: 42}, doc.CreatedAt)
	req.Equal(at, *doc.CreatedAt.Time())
}

func TestFromEntry(t *testing.T) {
	req := require.New(t)

	req.Equal(EntryDocument{Text: "hi", User: "alice"},
		FromEntry(domain.Entry{Body: domain.TextBody{Text: "hi"}, Author: "alice"}))
	req.Equal(EntryDocument{ImageURL: "ref", User: "bob"},
		FromEntry(domain.Entry{Body: domain.AttachmentBody{Ref: "ref"}, Author: "bob"}))
}

func TestDocument_JSON_Layout(t *testing.T) {
	req := require.New(t)
	doc := FromMessage(domain.Message{ID: "1", Body: domain.AttachmentBody{Ref: "u"}, Author: "bob"})

	raw, err := JSON.Marshal(doc)

	req.NoError(err)
	req.JSONEq(`{"id":"1","imageUrl":"u","user":"bob","createdAt":null}`, string(raw))
}

func TestToMessages_Keeps_Invalid_Documents(t *testing.T) {
	req := require.New(t)

	list := ToMessages([]Document{{ID: "1", User: "alice"}, {ID: "2", User: "bob", Text: "hi"}})

	req.Len(list, 2)
	req.Nil(list[0].Body)
	req.Equal(domain.TextBody{Text: "hi"}, list[1].Body)
}

func TestTimestamp_Time_Restores_Instant_In_UTC(t *testing.T) {
	req := require.New(t)
	paris := time.FixedZone("CEST", 2*60*60)
	at := time.Date(2026, 10, 18, 11, 0, 0, 7, paris)

	restored := NewTimestamp(at).Time()

	req.True(at.Equal(*restored))
	req.Equal(time.UTC, restored.Location())
}
