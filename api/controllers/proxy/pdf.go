package proxy

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/tmaseko/veldmarket-backend/pkg/logger"
)

// Some document hosts refuse requests without browser-looking headers.
const browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"

// PDFParams wires the tender document relay.
type PDFParams struct {
	Client   *http.Client
	MaxBytes int64
	Logger   *logger.Logger
}

// PDF fetches a remote tender document and streams it back as a PDF. The
// upstream is accepted when the content type looks like a PDF, the URL ends
// in .pdf, or the body carries the %PDF magic; anything else is a 502.
func PDF(params PDFParams) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		rawURL := strings.TrimSpace(r.URL.Query().Get("url"))
		if rawURL == "" {
			writeRawError(w, http.StatusBadRequest, "url query parameter is required")
			return
		}
		if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
			writeRawError(w, http.StatusBadRequest, "url must be absolute")
			return
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			writeRawError(w, http.StatusBadRequest, "invalid url")
			return
		}
		req.Header.Set("User-Agent", browserUserAgent)
		req.Header.Set("Accept", "application/pdf,application/octet-stream,*/*")

		resp, err := params.Client.Do(req)
		if err != nil {
			if params.Logger != nil {
				params.Logger.Error(ctx, "pdf relay fetch failed", err)
			}
			writePDFError(w, "failed to fetch document", err.Error())
			return
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			writePDFError(w, "failed to fetch document", fmt.Sprintf("upstream returned status %d", resp.StatusCode))
			return
		}

		body, err := io.ReadAll(io.LimitReader(resp.Body, params.MaxBytes+1))
		if err != nil {
			writePDFError(w, "failed to read document", err.Error())
			return
		}
		if int64(len(body)) > params.MaxBytes {
			writePDFError(w, "document too large", fmt.Sprintf("exceeds %d bytes", params.MaxBytes))
			return
		}

		if !looksLikePDF(rawURL, resp.Header.Get("Content-Type"), body) {
			writePDFError(w, "upstream did not return a PDF", fmt.Sprintf("content type %q", resp.Header.Get("Content-Type")))
			return
		}

		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Length", strconv.Itoa(len(body)))
		if _, err := w.Write(body); err != nil && params.Logger != nil {
			params.Logger.Error(ctx, "pdf relay write failed", err)
		}
	}
}

func looksLikePDF(rawURL, contentType string, body []byte) bool {
	if strings.Contains(strings.ToLower(contentType), "pdf") {
		return true
	}
	trimmed := rawURL
	if i := strings.IndexAny(trimmed, "?#"); i >= 0 {
		trimmed = trimmed[:i]
	}
	if strings.HasSuffix(strings.ToLower(trimmed), ".pdf") {
		return true
	}
	return bytes.HasPrefix(body, []byte("%PDF"))
}

func writePDFError(w http.ResponseWriter, message, details string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadGateway)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message, "details": details})
}
