package util

import (
	"bytes"
	"net/http"
	"strings"
)

var pdfMagic = []byte("%PDF-")

// SniffMimeHTTP guesses a media type from leading bytes. PDF, JPEG and PNG
// are checked by magic number first, then http.DetectContentType.
func SniffMimeHTTP(b []byte) string {
	switch {
	case bytes.HasPrefix(b, pdfMagic):
		return "application/pdf"
	case len(b) >= 2 && b[0] == 0xFF && b[1] == 0xD8:
		return "image/jpeg"
	case len(b) >= 8 &&
		b[0] == 0x89 && b[1] == 0x50 && b[2] == 0x4E && b[3] == 0x47 &&
		b[4] == 0x0D && b[5] == 0x0A && b[6] == 0x1A && b[7] == 0x0A:
		return "image/png"
	case len(b) == 0:
		return "application/octet-stream"
	}
	ct := http.DetectContentType(b)
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = ct[:i]
	}
	return ct
}

// PickMIME prefers the declared type and sniffs only when none was given.
func PickMIME(explicit string, data []byte) string {
	if exp := strings.TrimSpace(explicit); exp != "" {
		return exp
	}
	return SniffMimeHTTP(data)
}
