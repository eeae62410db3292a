package remotelog

import "chat-sync/codec"

// Frames exchanged with the realtime endpoint, one JSON object per websocket message.
const (
	opSubscribe   = "subscribe"
	opUnsubscribe = "unsubscribe"
	opAppend      = "append"

	typeSnapshot = "snapshot"
	typeAck      = "ack"
	typeError    = "error"
)

type clientFrame struct {
	Op         string               `json:"op"`
	Collection string               `json:"collection,omitempty"`
	OrderBy    string               `json:"orderBy,omitempty"`
	RequestID  string               `json:"requestId,omitempty"`
	Entry      *codec.EntryDocument `json:"entry,omitempty"`
}

type serverFrame struct {
	Type      string           `json:"type"`
	Seq       uint64           `json:"seq,omitempty"`
	Messages  []codec.Document `json:"messages,omitempty"`
	RequestID string           `json:"requestId,omitempty"`
	ID        string           `json:"id,omitempty"`
	Error     string           `json:"error,omitempty"`
}
