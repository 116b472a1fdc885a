package handle

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"doc-digest/api/internal/analyze"
	"doc-digest/api/internal/gemini"
)

type analyzeReq struct {
	Text string `json:"text"`
}

// Analyze answers 200 for every outcome of the summarisation itself; the
// body carries either "analysis" or "error".
func (h *Handle) Analyze(w http.ResponseWriter, r *http.Request) {
	if !postOnly(w, r) {
		return
	}

	var req analyzeReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, KindBadRequest, map[string]any{"error": "Invalid request body"}, err)
		return
	}

	out, err := h.an.Summarize(r.Context(), req.Text)
	if err != nil {
		kind, body := analysisError(err)
		var cause error
		if kind != KindEmptyText && kind != KindMissingAPIKey {
			cause = err
		}
		writeError(w, r, http.StatusOK, kind, body, cause)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"analysis": out})
}

func analysisError(err error) (string, map[string]any) {
	var (
		se *gemini.StatusError
		fe *gemini.FormatError
		te *gemini.TransportError
	)
	switch {
	case errors.Is(err, analyze.ErrEmptyText):
		return KindEmptyText, map[string]any{"error": "Empty text received"}
	case errors.Is(err, gemini.ErrMissingAPIKey):
		return KindMissingAPIKey, map[string]any{"error": "Gemini API key missing in environment variables"}
	case errors.Is(err, gemini.ErrTimeout):
		return KindTimeout, map[string]any{"error": "Request to Gemini API timed out"}
	case errors.As(err, &se):
		return KindUpstreamStatus, map[string]any{
			"error":   fmt.Sprintf("Gemini API error: %d", se.Code),
			"details": se.Body,
		}
	case errors.As(err, &fe):
		return KindUnexpectedResponse, map[string]any{
			"error": "Unexpected API response format",
			"raw":   fe.Raw,
		}
	case errors.As(err, &te):
		return KindTransport, map[string]any{"error": "Request failed: " + te.Error()}
	default:
		return KindProcessing, map[string]any{"error": "Error processing response: " + err.Error()}
	}
}

// AnalysisMessage is the "error" string the HTTP contract carries for err.
func AnalysisMessage(err error) string {
	_, body := analysisError(err)
	msg, _ := body["error"].(string)
	return msg
}
