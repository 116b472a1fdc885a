// Package app builds the extraction and analysis services from config.
// Both binaries share it.
package app

import (
	"fmt"

	"doc-digest/api/internal/analyze"
	"doc-digest/api/internal/config"
	"doc-digest/api/internal/extract"
	"doc-digest/api/internal/gemini"
	"doc-digest/api/internal/ocr"
	"doc-digest/api/internal/ocr/command"
	"doc-digest/api/internal/ocr/tesseract"
)

type Services struct {
	Extract *extract.Service
	Analyze *analyze.Service
}

func NewOCREngine(cfg *config.Config) (ocr.Engine, error) {
	switch cfg.OCREngine {
	case config.OCRLibrary:
		return tesseract.New(cfg.TessdataPrefix), nil
	case config.OCRCommand, "":
		eng, err := command.New(cfg.TesseractCmd)
		if err != nil {
			return nil, err
		}
		return eng, nil
	default:
		return nil, fmt.Errorf("unknown ocr engine %q", cfg.OCREngine)
	}
}

func NewGenerator(cfg *config.Config) (analyze.Generator, error) {
	switch cfg.GeminiTransport {
	case config.TransportSDK:
		return gemini.NewSDK(cfg.GeminiAPIKey, cfg.GeminiModel, cfg.GeminiTimeout), nil
	case config.TransportREST, "":
		return gemini.New(cfg.GeminiAPIKey, cfg.GeminiModel,
			gemini.WithBaseURL(cfg.GeminiBaseURL),
			gemini.WithTimeout(cfg.GeminiTimeout),
		), nil
	default:
		return nil, fmt.Errorf("unknown gemini transport %q", cfg.GeminiTransport)
	}
}

func NewServices(cfg *config.Config) (*Services, error) {
	eng, err := NewOCREngine(cfg)
	if err != nil {
		return nil, fmt.Errorf("ocr engine: %w", err)
	}
	gen, err := NewGenerator(cfg)
	if err != nil {
		return nil, err
	}
	return &Services{
		Extract: extract.New(eng),
		Analyze: analyze.New(gen),
	}, nil
}
