package ocr

import "context"

// Engine turns one PNG-encoded raster image into text using default
// language and page segmentation settings.
type Engine interface {
	Name() string
	Recognize(ctx context.Context, png []byte) (string, error)
}
