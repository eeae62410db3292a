// Package attachment reads images picked on the device before they are uploaded.
package attachment

import (
	"chat-sync/domain"
	"chat-sync/errors"
	"context"
	stderrors "errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

const DefaultMaxSizeMb = 10

// FileSource opens local files. Only images are accepted, like the gallery picker did.
type FileSource struct {
	maxSize int64
}

func NewFileSource(maxSizeMb int) *FileSource {
	if maxSizeMb <= 0 {
		maxSizeMb = DefaultMaxSizeMb
	}
	return &FileSource{maxSize: int64(maxSizeMb) * domain.MB}
}

// Open returns errors.ErrPermission when the device denies access and
// errors.ErrValidation when the file cannot be used as an attachment.
// The blob is named after the local file, see ObjectName for the storage name.
func (s *FileSource) Open(ctx context.Context, ref string) (domain.Blob, error) {
	if err := ctx.Err(); err != nil {
		return domain.Blob{}, err
	}
	path := strings.TrimPrefix(ref, "file://")
	info, err := os.Stat(path)
	if err != nil {
		return domain.Blob{}, classify(path, err)
	}
	if !info.Mode().IsRegular() {
		return domain.Blob{}, fmt.Errorf("%w: %s is not a file", errors.ErrValidation, path)
	}
	if info.Size() == 0 {
		return domain.Blob{}, fmt.Errorf("%w: %s is empty", errors.ErrValidation, path)
	}
	if info.Size() > s.maxSize {
		return domain.Blob{}, fmt.Errorf("%w: file is too large: %d bytes (limit is %d)", errors.ErrValidation, info.Size(), s.maxSize)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return domain.Blob{}, classify(path, err)
	}
	mime := mimetype.Detect(data)
	if !IsImage(mime.String()) {
		return domain.Blob{}, fmt.Errorf("%w: %s is %s, not an image", errors.ErrValidation, filepath.Base(path), mime.String())
	}
	return domain.Blob{ContentType: mime.String(), Data: data, Name: filepath.Base(path)}, nil
}

func classify(path string, err error) error {
	if stderrors.Is(err, fs.ErrPermission) {
		return fmt.Errorf("%w: %s", errors.ErrPermission, path)
	}
	return fmt.Errorf("%w: %s: %v", errors.ErrValidation, path, err)
}
