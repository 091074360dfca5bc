// Package proxy holds boundary relays that sit outside the JSON envelope:
// responses are passed through (or minimal {error} objects) so browser
// clients can consume upstream payloads unchanged.
package proxy

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/tmaseko/veldmarket-backend/api/validators"
	"github.com/tmaseko/veldmarket-backend/pkg/logger"
)

// EtendersParams wires the generic OCDS relay.
type EtendersParams struct {
	BaseURL string
	Client  *http.Client
	Logger  *logger.Logger
}

type etendersRelayRequest struct {
	Path   string            `json:"path"`
	Params map[string]string `json:"params,omitempty"`
}

// Etenders forwards a single request to the eTenders OCDS API and returns
// the upstream JSON verbatim on success; any non-2xx upstream response
// collapses to a 500 error object. No retry, no cache.
func Etenders(params EtendersParams) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		relay, err := relayRequestFrom(r)
		if err != nil {
			writeRawError(w, http.StatusBadRequest, err.Error())
			return
		}
		if relay.Path == "" {
			writeRawError(w, http.StatusBadRequest, "path is required")
			return
		}

		target, err := buildTargetURL(params.BaseURL, relay)
		if err != nil {
			writeRawError(w, http.StatusBadRequest, err.Error())
			return
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
		if err != nil {
			writeRawError(w, http.StatusInternalServerError, "failed to build upstream request")
			return
		}
		req.Header.Set("Accept", "application/json")

		resp, err := params.Client.Do(req)
		if err != nil {
			if params.Logger != nil {
				params.Logger.Error(ctx, "etenders relay failed", err)
			}
			writeRawError(w, http.StatusInternalServerError, "upstream request failed")
			return
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			if params.Logger != nil {
				ctx = params.Logger.WithField(ctx, "upstream_status", resp.StatusCode)
				params.Logger.Warn(ctx, "etenders relay upstream error")
			}
			writeRawError(w, http.StatusInternalServerError, fmt.Sprintf("upstream returned status %d", resp.StatusCode))
			return
		}

		contentType := resp.Header.Get("Content-Type")
		if contentType == "" {
			contentType = "application/json"
		}
		w.Header().Set("Content-Type", contentType)
		w.WriteHeader(resp.StatusCode)
		if _, err := io.Copy(w, resp.Body); err != nil && params.Logger != nil {
			params.Logger.Error(ctx, "etenders relay copy failed", err)
		}
	}
}

func relayRequestFrom(r *http.Request) (*etendersRelayRequest, error) {
	if r.Method == http.MethodPost {
		var relay etendersRelayRequest
		if err := json.NewDecoder(r.Body).Decode(&relay); err != nil {
			return nil, err
		}
		relay.Path = strings.TrimSpace(relay.Path)
		return &relay, nil
	}

	relay := etendersRelayRequest{
		Path:   strings.TrimSpace(r.URL.Query().Get("path")),
		Params: map[string]string{},
	}
	for key, values := range r.URL.Query() {
		if key == "path" || len(values) == 0 {
			continue
		}
		relay.Params[validators.SanitizeString(key, 100)] = values[0]
	}
	return &relay, nil
}

func buildTargetURL(baseURL string, relay *etendersRelayRequest) (string, error) {
	target, err := url.Parse(strings.TrimRight(baseURL, "/") + "/" + strings.TrimLeft(relay.Path, "/"))
	if err != nil {
		return "", err
	}
	query := target.Query()
	for key, value := range relay.Params {
		query.Set(key, value)
	}
	target.RawQuery = query.Encode()
	return target.String(), nil
}

func writeRawError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
