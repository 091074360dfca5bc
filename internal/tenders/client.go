package tenders

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/tmaseko/veldmarket-backend/pkg/config"
	pkgerrors "github.com/tmaseko/veldmarket-backend/pkg/errors"
	"github.com/tmaseko/veldmarket-backend/pkg/logger"
	"github.com/tmaseko/veldmarket-backend/pkg/metrics"
)

const (
	upstreamTarget = "etenders"
	dateLayout     = "2006-01-02"
)

// provinceParams maps friendly province inputs onto the values the eTenders
// API expects. Unknown values are passed through untouched.
var provinceParams = map[string]string{
	"all":           "",
	"eastern cape":  "Eastern Cape",
	"free state":    "Free State",
	"gauteng":       "Gauteng",
	"kwazulu-natal": "KwaZulu-Natal",
	"kwazulu natal": "KwaZulu-Natal",
	"limpopo":       "Limpopo",
	"mpumalanga":    "Mpumalanga",
	"northern cape": "Northern Cape",
	"north west":    "North West",
	"western cape":  "Western Cape",
	"national":      "National",
}

// Client fetches release pages from the eTenders OCDS API.
type Client struct {
	baseURL        string
	httpClient     *http.Client
	dateWindowDays int
	pageSize       int
	logger         *logger.Logger
	metrics        *metrics.HTTPMetrics
	now            func() time.Time
}

// ClientParams groups dependencies for the OCDS client.
type ClientParams struct {
	Config  config.TendersConfig
	Logger  *logger.Logger
	Metrics *metrics.HTTPMetrics
}

// NewClient validates configuration and returns an OCDS fetch client.
func NewClient(params ClientParams) (*Client, error) {
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "logger is required")
	}
	baseURL := strings.TrimRight(strings.TrimSpace(params.Config.BaseURL), "/")
	if baseURL == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tenders base url is required")
	}
	timeout := params.Config.FetchTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	windowDays := params.Config.DateWindowDays
	if windowDays <= 0 {
		windowDays = 90
	}
	pageSize := params.Config.UpstreamPage
	if pageSize <= 0 {
		pageSize = 50
	}

	return &Client{
		baseURL:        baseURL,
		httpClient:     &http.Client{Timeout: timeout},
		dateWindowDays: windowDays,
		pageSize:       pageSize,
		logger:         params.Logger,
		metrics:        params.Metrics,
		now:            time.Now,
	}, nil
}

// FetchPage pulls one upstream page of releases covering the recent date
// window, optionally scoped to a province. Timeouts surface as a distinct
// error so callers can present a retryable failure.
func (c *Client) FetchPage(ctx context.Context, page int, province string) ([]Release, error) {
	if page < 1 {
		page = 1
	}

	endpoint, err := c.buildURL(page, province)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build tenders request")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if isTimeout(err) {
			c.metrics.IncUpstream(upstreamTarget, "timeout")
			return nil, pkgerrors.Wrap(pkgerrors.CodeTimeout, err, "timed out")
		}
		c.metrics.IncUpstream(upstreamTarget, "error")
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "fetch tenders")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.metrics.IncUpstream(upstreamTarget, "error")
		return nil, pkgerrors.New(pkgerrors.CodeDependency,
			fmt.Sprintf("tenders upstream returned status %d", resp.StatusCode))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.metrics.IncUpstream(upstreamTarget, "error")
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read tenders response")
	}

	var pkg releasePackage
	if err := json.Unmarshal(body, &pkg); err != nil {
		c.metrics.IncUpstream(upstreamTarget, "error")
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode tenders response")
	}

	c.metrics.IncUpstream(upstreamTarget, "ok")
	c.logger.Info(c.logger.WithFields(ctx, map[string]any{
		"page":     page,
		"releases": len(pkg.Releases),
	}), "fetched tenders page")

	return pkg.Releases, nil
}

func (c *Client) buildURL(page int, province string) (string, error) {
	u, err := url.Parse(c.baseURL + "/OCDSReleases")
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "parse tenders base url")
	}

	today := c.now().UTC()
	q := u.Query()
	q.Set("dateFrom", today.AddDate(0, 0, -c.dateWindowDays).Format(dateLayout))
	q.Set("dateTo", today.Format(dateLayout))
	q.Set("PageNumber", strconv.Itoa(page))
	q.Set("PageSize", strconv.Itoa(c.pageSize))
	if mapped := MapProvince(province); mapped != "" {
		q.Set("province", mapped)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// MapProvince resolves a friendly province name to the upstream parameter
// value. Empty and "all" mean no province filter.
func MapProvince(province string) string {
	trimmed := strings.TrimSpace(province)
	if trimmed == "" {
		return ""
	}
	if mapped, ok := provinceParams[strings.ToLower(trimmed)]; ok {
		return mapped
	}
	return trimmed
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return urlErr.Timeout()
	}
	return false
}
