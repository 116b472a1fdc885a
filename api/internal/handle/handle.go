package handle

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"doc-digest/api/internal/httpserver"
)

// HeaderErrorKind carries a stable machine-readable error class alongside
// the human-readable JSON body.
const HeaderErrorKind = "X-Error-Kind"

const (
	KindBadRequest         = "bad_request"
	KindUnsupportedType    = "unsupported_type"
	KindExtractionFailed   = "extraction_failed"
	KindEmptyText          = "empty_text"
	KindMissingAPIKey      = "missing_api_key"
	KindUpstreamStatus     = "upstream_status"
	KindUnexpectedResponse = "unexpected_response"
	KindTimeout            = "timeout"
	KindTransport          = "transport"
	KindProcessing         = "processing"
)

type Extractor interface {
	Extract(ctx context.Context, data []byte, contentType string) (string, error)
}

type Summarizer interface {
	Summarize(ctx context.Context, text string) (string, error)
}

type Handle struct {
	ext Extractor
	an  Summarizer
}

func New(ext Extractor, an Summarizer) *Handle {
	return &Handle{
		ext: ext,
		an:  an,
	}
}

func (h *Handle) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("/extract", h.Extract)
	mux.HandleFunc("/analyze", h.Analyze)
	return mux
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, r *http.Request, code int, kind string, body map[string]any, cause error) {
	if cause != nil {
		log.Printf("%s %s [%s] %s: %v", r.Method, r.URL.Path, httpserver.RequestID(r.Context()), kind, cause)
	}
	w.Header().Set(HeaderErrorKind, kind)
	writeJSON(w, code, body)
}

func postOnly(w http.ResponseWriter, r *http.Request) bool {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, r, http.StatusMethodNotAllowed, KindBadRequest, map[string]any{"error": "POST only"}, nil)
		return false
	}
	return true
}
