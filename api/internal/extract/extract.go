// Package extract pulls plain text out of uploaded documents. The declared
// content type picks the path: PDF text layer or OCR over a raster image.
package extract

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"doc-digest/api/internal/ocr"
)

const MimePDF = "application/pdf"

var (
	ErrUnsupportedType  = errors.New("unsupported file type")
	ErrUndecodableImage = errors.New("image could not be decoded")
)

type Service struct {
	ocr ocr.Engine
}

func New(engine ocr.Engine) *Service {
	return &Service{ocr: engine}
}

// Extract never sniffs data; contentType is trusted as declared.
func (s *Service) Extract(ctx context.Context, data []byte, contentType string) (string, error) {
	switch {
	case contentType == MimePDF:
		text, err := PDFText(data)
		if err != nil {
			return "", fmt.Errorf("read pdf: %w", err)
		}
		return text, nil
	case strings.HasPrefix(contentType, "image/"):
		img, err := NormalizeImage(data)
		if err != nil {
			return "", err
		}
		text, err := s.ocr.Recognize(ctx, img)
		if err != nil {
			return "", fmt.Errorf("ocr (%s): %w", s.ocr.Name(), err)
		}
		return text, nil
	default:
		return "", ErrUnsupportedType
	}
}

func (s *Service) EngineName() string { return s.ocr.Name() }
