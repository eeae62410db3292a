package remotelog

import (
	"chat-sync/contract"
	"chat-sync/domain"
	"context"
)

// Client bundles the realtime log and the binary storage of the hosted service.
type Client struct {
	*Stream
	uploader *Uploader
}

var _ contract.RemoteLog = (*Client)(nil)
var _ contract.RemoteLog = (*MemoryLog)(nil)

func NewClient(stream *Stream, uploader *Uploader) *Client {
	return &Client{Stream: stream, uploader: uploader}
}

func (c *Client) UploadBinary(ctx context.Context, blob domain.Blob) (string, error) {
	return c.uploader.UploadBinary(ctx, blob)
}
