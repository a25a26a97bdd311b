// Package crm is the client for the upstream CRM REST API. It normalizes the
// API's two list shapes (bare array or {"data": [...]} envelope) at the
// boundary, parses Link-header pagination, and guards the upstream with a
// client-side rate limiter and a circuit breaker.
package crm

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/brightwater-dev/leadboard/internal/config"
	"github.com/brightwater-dev/leadboard/internal/logging"
	"github.com/brightwater-dev/leadboard/internal/metrics"
)

const maxErrorBody = 4 * 1024

// HTTPDoer is the transport seam; tests substitute their own.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

type Client struct {
	baseURL  string
	token    string
	pageSize int
	maxPages int
	httpc    HTTPDoer
	limiter  *rate.Limiter
	breaker  *breaker
	log      zerolog.Logger

	typeMaps   *nameMapCache
	memberMaps *nameMapCache
}

func NewClient(cfg config.CRMConfig) *Client {
	c := &Client{
		baseURL:    cfg.BaseURL,
		token:      cfg.APIToken,
		pageSize:   cfg.PageSize,
		maxPages:   cfg.MaxPages,
		httpc:      &http.Client{Timeout: cfg.Timeout},
		limiter:    rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1),
		log:        logging.With("crm"),
		typeMaps:   newNameMapCache(),
		memberMaps: newNameMapCache(),
	}
	c.breaker = newBreaker("crm-api", c.log)
	return c
}

// WithTransport replaces the HTTP transport. Tests use this to point the
// client at an httptest server without constructing a full config.
func (c *Client) WithTransport(d HTTPDoer) *Client {
	c.httpc = d
	return c
}

// pageLinks is the pagination metadata from a Link response header.
type pageLinks struct {
	Next int
	Last int
}

func (p pageLinks) HasNext() bool { return p.Next > 0 }

var linkRelRe = regexp.MustCompile(`<[^>]*[?&]page=(\d+)[^>]*>;\s*rel="(\w+)"`)

// parseLinkHeader extracts page numbers from a header like
// <https://api/contacts?page=2>; rel="next", <...?page=9>; rel="last".
func parseLinkHeader(h string) pageLinks {
	var links pageLinks
	if h == "" {
		return links
	}
	for _, m := range linkRelRe.FindAllStringSubmatch(h, -1) {
		page, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		switch m[2] {
		case "next":
			links.Next = page
		case "last":
			links.Last = page
		}
	}
	return links
}

// do performs one authenticated GET and returns the raw body plus pagination
// links. Transport failures and 5xx count against the circuit breaker; 4xx
// responses are API errors for the caller and leave the breaker alone.
func (c *Client) do(ctx context.Context, resource, path string) ([]byte, pageLinks, error) {
	if c.token == "" {
		return nil, pageLinks{}, &APIError{Status: http.StatusInternalServerError, Message: "CRM API token not configured"}
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, pageLinks{}, err
	}

	start := time.Now()
	res, err := c.breaker.execute(func() (callResult, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
		if err != nil {
			return callResult{}, err
		}
		req.Header.Set("Authorization", fmt.Sprintf("Token token=%q", c.token))
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpc.Do(req)
		if err != nil {
			return callResult{}, err
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 500 {
			body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
			return callResult{}, newAPIError(resp.StatusCode, string(body))
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
			return callResult{apiErr: newAPIError(resp.StatusCode, string(body))}, nil
		}

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return callResult{}, err
		}
		return callResult{body: body, links: parseLinkHeader(resp.Header.Get("Link"))}, nil
	})

	status := "ok"
	switch {
	case err != nil:
		status = "error"
	case res.apiErr != nil:
		status = strconv.Itoa(res.apiErr.Status)
	}
	metrics.UpstreamRequests.WithLabelValues(resource, status).Inc()
	metrics.UpstreamDuration.WithLabelValues(resource).Observe(time.Since(start).Seconds())

	if err != nil {
		return nil, pageLinks{}, fmt.Errorf("%s: %w", resource, err)
	}
	if res.apiErr != nil {
		return nil, pageLinks{}, res.apiErr
	}
	return res.body, res.links, nil
}

// get decodes a single object response.
func (c *Client) get(ctx context.Context, resource, path string, out any) error {
	body, _, err := c.do(ctx, resource, path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%s: decode: %w", resource, err)
	}
	return nil
}

// getList decodes a list response, unwrapping the {"data": [...]} envelope
// when present so callers only ever see a plain array.
func (c *Client) getList(ctx context.Context, resource, path string) ([]byte, pageLinks, error) {
	body, links, err := c.do(ctx, resource, path)
	if err != nil {
		return nil, pageLinks{}, err
	}
	arr, err := normalizeList(body)
	if err != nil {
		return nil, pageLinks{}, fmt.Errorf("%s: %w", resource, err)
	}
	return arr, links, nil
}

// normalizeList accepts either a bare JSON array or an envelope object with a
// "data" array and returns the array bytes. A missing data key normalizes to
// an empty list.
func normalizeList(body []byte) ([]byte, error) {
	trimmed := bytes.TrimLeft(body, " \t\r\n")
	if len(trimmed) == 0 {
		return []byte("[]"), nil
	}
	if trimmed[0] == '[' {
		return trimmed, nil
	}
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(trimmed, &envelope); err != nil {
		return nil, fmt.Errorf("decode list envelope: %w", err)
	}
	if len(envelope.Data) == 0 {
		return []byte("[]"), nil
	}
	return envelope.Data, nil
}

func decodeList[T any](arr []byte) ([]T, error) {
	var out []T
	if err := json.Unmarshal(arr, &out); err != nil {
		return nil, fmt.Errorf("decode list: %w", err)
	}
	return out, nil
}

// query builds a query string, skipping empty values.
func query(params map[string]string) string {
	v := url.Values{}
	for k, val := range params {
		if val != "" {
			v.Set(k, val)
		}
	}
	if len(v) == 0 {
		return ""
	}
	return "?" + v.Encode()
}
