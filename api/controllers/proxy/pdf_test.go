package proxy

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newPDFHandler(upstream *httptest.Server, maxBytes int64) http.HandlerFunc {
	return PDF(PDFParams{
		Client:   upstream.Client(),
		MaxBytes: maxBytes,
		Logger:   testLogger(),
	})
}

func TestPDFAcceptsMagicBytesDespiteContentType(t *testing.T) {
	doc := append([]byte("%PDF-1.7\n"), bytes.Repeat([]byte{0x20}, 64)...)
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/octet-stream")
		_, _ = w.Write(doc)
	}))
	defer upstream.Close()

	handler := newPDFHandler(upstream, 1<<20)
	req := httptest.NewRequest(http.MethodGet, "/api/public/pdf-proxy?url="+upstream.URL+"/doc", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/pdf" {
		t.Fatalf("unexpected content type %q", ct)
	}
	if !bytes.Equal(rec.Body.Bytes(), doc) {
		t.Fatal("document bytes were altered")
	}
}

func TestPDFAcceptsPDFSuffixWithOpaqueBody(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/octet-stream")
		_, _ = w.Write([]byte("not-magic-but-trusted"))
	}))
	defer upstream.Close()

	handler := newPDFHandler(upstream, 1<<20)
	req := httptest.NewRequest(http.MethodGet, "/api/public/pdf-proxy?url="+upstream.URL+"/tender-doc.PDF?download=1", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", rec.Code, rec.Body.String())
	}
}

func TestPDFSendsBrowserHeaders(t *testing.T) {
	var gotUA string
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "application/pdf")
		_, _ = w.Write([]byte("%PDF-1.4"))
	}))
	defer upstream.Close()

	handler := newPDFHandler(upstream, 1<<20)
	req := httptest.NewRequest(http.MethodGet, "/api/public/pdf-proxy?url="+upstream.URL+"/doc", nil)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if gotUA != browserUserAgent {
		t.Fatalf("unexpected user agent %q", gotUA)
	}
}

func TestPDFRejectsNonPDFUpstream(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<html>login page</html>"))
	}))
	defer upstream.Close()

	handler := newPDFHandler(upstream, 1<<20)
	req := httptest.NewRequest(http.MethodGet, "/api/public/pdf-proxy?url="+upstream.URL+"/doc", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", rec.Code)
	}
	var payload map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	if payload["error"] != "upstream did not return a PDF" {
		t.Fatalf("unexpected error %q", payload["error"])
	}
}

func TestPDFRejectsUpstreamError(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer upstream.Close()

	handler := newPDFHandler(upstream, 1<<20)
	req := httptest.NewRequest(http.MethodGet, "/api/public/pdf-proxy?url="+upstream.URL+"/doc.pdf", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", rec.Code)
	}
}

func TestPDFEnforcesSizeCap(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		_, _ = w.Write(append([]byte("%PDF-1.4"), bytes.Repeat([]byte{0x00}, 512)...))
	}))
	defer upstream.Close()

	handler := newPDFHandler(upstream, 128)
	req := httptest.NewRequest(http.MethodGet, "/api/public/pdf-proxy?url="+upstream.URL+"/doc.pdf", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", rec.Code)
	}
	var payload map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	if payload["error"] != "document too large" {
		t.Fatalf("unexpected error %q", payload["error"])
	}
}

func TestPDFRequiresAbsoluteURL(t *testing.T) {
	handler := PDF(PDFParams{Client: &http.Client{}, MaxBytes: 1 << 20, Logger: testLogger()})

	for _, raw := range []string{"", "ftp://example.com/doc.pdf", "/relative/doc.pdf"} {
		req := httptest.NewRequest(http.MethodGet, "/api/public/pdf-proxy?url="+raw, nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("url %q: expected 400, got %d", raw, rec.Code)
		}
	}
}
