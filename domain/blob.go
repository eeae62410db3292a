package domain

const (
	KB = 1024
	MB = 1024 * KB
)

// Blob is a local binary ready to be uploaded.
type Blob struct {
	Name        string
	ContentType string
	Data        []byte
}

func (b Blob) Size() int { return len(b.Data) }
