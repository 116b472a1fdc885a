package handle

import (
	"errors"
	"io"
	"net/http"

	"doc-digest/api/internal/extract"
)

const maxMemory = 32 << 20

// Extract expects a multipart upload in field "file". Dispatch uses the
// part's declared Content-Type only.
func (h *Handle) Extract(w http.ResponseWriter, r *http.Request) {
	if !postOnly(w, r) {
		return
	}

	if err := r.ParseMultipartForm(maxMemory); err != nil {
		writeError(w, r, http.StatusBadRequest, KindBadRequest, map[string]any{"error": "No file uploaded"}, err)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, r, http.StatusBadRequest, KindBadRequest, map[string]any{"error": "No file uploaded"}, err)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, KindBadRequest, map[string]any{"error": "Failed to read upload: " + err.Error()}, err)
		return
	}

	text, err := h.ext.Extract(r.Context(), data, header.Header.Get("Content-Type"))
	switch {
	case errors.Is(err, extract.ErrUnsupportedType):
		writeError(w, r, http.StatusOK, KindUnsupportedType, map[string]any{"error": "Unsupported file type"}, nil)
		return
	case err != nil:
		writeError(w, r, http.StatusUnprocessableEntity, KindExtractionFailed, map[string]any{"error": "Failed to extract text: " + err.Error()}, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"text": text})
}
