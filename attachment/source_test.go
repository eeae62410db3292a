package attachment

import (
	"bytes"
	"chat-sync/errors"
	"context"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writePNG(t *testing.T, dir string) string {
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 4, 4))))
	path := filepath.Join(dir, "photo.png")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o600))
	return path
}

func TestFileSource_Open_Image(t *testing.T) {
	req := require.New(t)
	path := writePNG(t, t.TempDir())

	blob, err := NewFileSource(1).Open(context.Background(), "file://"+path)

	req.NoError(err)
	req.Equal("image/png", blob.ContentType)
	req.Equal("photo.png", blob.Name)
	req.NotEmpty(blob.Data)
}

func TestFileSource_Rejects_Non_Image(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("just some text"), 0o600))

	_, err := NewFileSource(1).Open(context.Background(), path)

	require.ErrorIs(t, err, errors.ErrValidation)
}

func TestFileSource_Missing_File(t *testing.T) {
	_, err := NewFileSource(1).Open(context.Background(), filepath.Join(t.TempDir(), "nope.png"))

	require.ErrorIs(t, err, errors.ErrValidation)
}

func TestFileSource_Permission_Denied(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("root ignores file permissions")
	}
	dir := t.TempDir()
	path := writePNG(t, dir)
	require.NoError(t, os.Chmod(path, 0o000))
	t.Cleanup(func() { _ = os.Chmod(path, 0o600) })

	_, err := NewFileSource(1).Open(context.Background(), path)

	require.ErrorIs(t, err, errors.ErrPermission)
}

func TestFileSource_Too_Large(t *testing.T) {
	path := filepath.Join(t.TempDir(), "big.png")
	require.NoError(t, os.WriteFile(path, make([]byte, 2*1024*1024), 0o600))

	_, err := NewFileSource(1).Open(context.Background(), path)

	require.ErrorIs(t, err, errors.ErrValidation)
}

func TestObjectName(t *testing.T) {
	at := time.UnixMilli(1760000000123)

	require.Equal(t, "chat-images/1760000000123-alice.png", ObjectName("alice", ".png", at))
	require.Equal(t, "chat-images/1760000000123-budi_santoso.jpg", ObjectName("budi santoso", "", at))
	require.Equal(t, "chat-images/1760000000123-anonymous.jpg", ObjectName("   ", "", at))
}

func TestExtension(t *testing.T) {
	require.Equal(t, ".png", Extension("image/png"))
	require.Equal(t, ".jpg", Extension("image/jpeg"))
	require.Equal(t, "", Extension("not a mime"))
}

func TestIsImage(t *testing.T) {
	require.True(t, IsImage("image/png"))
	require.True(t, IsImage("image/jpeg; charset=binary"))
	require.False(t, IsImage("text/plain; charset=utf-8"))
	require.False(t, IsImage(""))
}
