package attachment

import (
	"fmt"
	"mime"
	"regexp"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
)

type MIME string

const (
	Unknown   MIME = "unknown"
	ImagePNG  MIME = "image/png"
	ImageJPEG MIME = "image/jpeg"
	ImageGIF  MIME = "image/gif"
	ImageWEBP MIME = "image/webp"
	ImageHEIC MIME = "image/heic"
)

func ToMIME(detected string) MIME {
	mt, _, err := mime.ParseMediaType(detected)
	if err != nil {
		return Unknown
	}
	return MIME(mt)
}

func IsImage(detected string) bool {
	return strings.HasPrefix(string(ToMIME(detected)), "image/")
}

var unsafeName = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// Extension returns the usual file extension of a content type, with its dot.
func Extension(contentType string) string {
	if mt := mimetype.Lookup(string(ToMIME(contentType))); mt != nil {
		return mt.Extension()
	}
	return ""
}

// ObjectName builds the storage path of an uploaded image: chat-images/<millis>-<author><ext>.
// ext comes from mime detection and carries its leading dot.
func ObjectName(author, ext string, at time.Time) string {
	if ext == "" {
		ext = ".jpg"
	}
	safe := strings.Trim(unsafeName.ReplaceAllString(author, "_"), "_")
	if safe == "" {
		safe = "anonymous"
	}
	return fmt.Sprintf("chat-images/%d-%s%s", at.UnixMilli(), safe, ext)
}
