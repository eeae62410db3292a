package remotelog

import (
	"chat-sync/codec"
	"chat-sync/domain"
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/valyala/fasthttp"
)

const defaultUploadTimeout = 30 * time.Second

// Uploader stores binaries in the hosted object storage.
// The durable reference is the download url the storage answers with.
type Uploader struct {
	client  *fasthttp.Client
	baseURL string
	timeout time.Duration
}

func NewUploader(baseURL string, timeout time.Duration) *Uploader {
	if timeout <= 0 {
		timeout = defaultUploadTimeout
	}
	return &Uploader{
		client:  &fasthttp.Client{Name: "chat-sync"},
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: timeout,
	}
}

type uploadResponse struct {
	URL string `json:"url"`
}

// UploadBinary posts the blob under its object name.
// Cancellation is honoured through the context deadline only.
func (u *Uploader) UploadBinary(ctx context.Context, blob domain.Blob) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(u.baseURL + "/" + escapeObjectName(blob.Name))
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType(blob.ContentType)
	req.SetBody(blob.Data)

	deadline := time.Now().Add(u.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := u.client.DoDeadline(req, resp, deadline); err != nil {
		return "", err
	}

	status := resp.StatusCode()
	if status < fasthttp.StatusOK || status >= fasthttp.StatusMultipleChoices {
		return "", fmt.Errorf("storage answered %d", status)
	}

	var body uploadResponse
	if len(resp.Body()) > 0 {
		if err := codec.JSON.Unmarshal(resp.Body(), &body); err != nil {
			return "", fmt.Errorf("unreadable storage answer: %w", err)
		}
	}
	if body.URL != "" {
		return body.URL, nil
	}
	if location := string(resp.Header.Peek(fasthttp.HeaderLocation)); location != "" {
		return location, nil
	}
	return "", fmt.Errorf("storage answer carries no download url")
}

func escapeObjectName(name string) string {
	segments := strings.Split(name, "/")
	for i, segment := range segments {
		segments[i] = url.PathEscape(segment)
	}
	return strings.Join(segments, "/")
}
