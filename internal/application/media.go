package application

import (
	"context"
	"io"
)

// Upload is an incoming media file staged by the transport layer.
type Upload struct {
	Filename    string
	ContentType string
	Reader      io.Reader
}

// MediaStore persists uploaded media and returns a public URL. A failed or
// empty result for a mandatory asset is treated as Bad-Request by callers.
type MediaStore interface {
	Upload(ctx context.Context, folder string, up *Upload) (string, error)
}
