package gviz

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// DefaultBaseURL is the published-spreadsheet endpoint
const DefaultBaseURL = "https://docs.google.com/spreadsheets/d"

// TableRef identifies one sheet tab
type TableRef struct {
	SheetID string // dataset identifier
	GID     string // sheet-tab identifier
}

func (r TableRef) String() string {
	return r.SheetID + "#gid=" + r.GID
}

// Client fetches sheet tabs over HTTP
type Client struct {
	baseURL   string
	http      *http.Client
	userAgent string
	now       func() time.Time
}

// NewClient creates a new client. An empty baseURL uses DefaultBaseURL.
func NewClient(baseURL, userAgent string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		http:      &http.Client{Timeout: 30 * time.Second},
		userAgent: userAgent,
		now:       time.Now,
	}
}

// TableURL builds the export URL for ref. The trailing "_" parameter busts caches.
func (c *Client) TableURL(ref TableRef) string {
	params := url.Values{}
	params.Set("tqx", "out:json")
	if ref.GID != "" {
		params.Set("gid", ref.GID)
	}
	params.Set("_", strconv.FormatInt(c.now().UnixMilli(), 10))

	return fmt.Sprintf("%s/%s/gviz/tq?%s", c.baseURL, url.PathEscape(ref.SheetID), params.Encode())
}

// FetchTable performs a single GET for ref and parses the response. There is no retry.
func (c *Client) FetchTable(ctx context.Context, ref TableRef) (*Table, error) {
	endpoint := c.TableURL(ref)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &FetchError{Endpoint: ref.String(), Message: "request failed", Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &FetchError{StatusCode: resp.StatusCode, Endpoint: ref.String(), Message: "reading response body", Err: err}
	}

	log.Debug().
		Str("table", ref.String()).
		Int("status", resp.StatusCode).
		Int("bytes", len(body)).
		Dur("duration", time.Since(start)).
		Msg("Fetched sheet table")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		preview := string(body)
		if len(preview) > 200 {
			preview = preview[:200]
		}
		return nil, &FetchError{StatusCode: resp.StatusCode, Endpoint: ref.String(), Message: preview}
	}

	table, err := ParseEnvelope(body)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", ref, err)
	}
	return table, nil
}
