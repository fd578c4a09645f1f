// Package ingest is the paginated, retrying fetcher for upstream user
// profiles, follower/following lists, posts, and engagement (spec §4.1).
//
// Two logical upstreams may coexist: a primary bulk provider and a fallback
// used only for like-lists. The client presents their union through a
// single set of lazy, channel-based sequences.
package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"golang.org/x/time/rate"

	"social-graph-atlas/internal/apperr"
)

// requestsPerSecond bounds outbound calls to each upstream well under
// typical provider limits; pagination already paces itself by blocking on
// channel send, this is a hard ceiling beneath that.
const requestsPerSecond = 5

const (
	primaryBaseURL = "https://api.twitterapi.io"
	xBaseURL       = "https://api.twitter.com/2"

	retryMax     = 3
	retryWaitMin = 2 * time.Second
	retryWaitMax = 30 * time.Second
)

// Client is the union of the primary and (optional) fallback upstream.
type Client struct {
	primary        *retryablehttp.Client
	primaryKey     string
	primaryLimiter *rate.Limiter

	x        *retryablehttp.Client
	xToken   string
	xLimiter *rate.Limiter
}

// NewClient builds a Client authenticated with the primary bearer credential
// and, if xBearerToken is non-empty, the fallback X API v2 credential used
// for like-list lookups.
func NewClient(primaryKey, xBearerToken string) *Client {
	c := &Client{
		primary:        newRetryableClient(),
		primaryKey:     primaryKey,
		primaryLimiter: rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond),
	}
	if xBearerToken != "" {
		c.x = newRetryableClient()
		c.xToken = xBearerToken
		c.xLimiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
	}
	return c
}

// HasXAPI reports whether the fallback like-list upstream is configured.
func (c *Client) HasXAPI() bool { return c.x != nil }

func newRetryableClient() *retryablehttp.Client {
	rc := retryablehttp.NewClient()
	rc.RetryMax = retryMax
	rc.RetryWaitMin = retryWaitMin
	rc.RetryWaitMax = retryWaitMax
	rc.Logger = nil // the collector logs at a higher level; avoid double noise
	rc.CheckRetry = checkRetry
	return rc
}

// checkRetry classifies failures per spec §4.1: transient (429, 5xx,
// connection errors) are retried; anything else is returned as-is for
// doJSON to classify (403/404 as NotFound, other non-2xx as UpstreamHard).
func checkRetry(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if ctx.Err() != nil {
		return false, ctx.Err()
	}
	if err != nil {
		return true, nil // connection error: transient
	}
	if resp.StatusCode == http.StatusTooManyRequests {
		return true, nil
	}
	if resp.StatusCode >= 500 {
		return true, nil
	}
	return false, nil
}

// doJSON performs a request against the given retryable client and decodes
// a JSON object response, classifying failures into apperr types. lim may
// be nil, in which case the request is not throttled client-side.
func doJSON(ctx context.Context, rc *retryablehttp.Client, lim *rate.Limiter, method, baseURL, path string, headers http.Header, query map[string]string) (map[string]any, error) {
	if lim != nil {
		if err := lim.Wait(ctx); err != nil {
			return nil, apperr.UpstreamTransient(fmt.Sprintf("%s %s: rate limiter wait", method, path), err)
		}
	}

	u := baseURL + path
	req, err := retryablehttp.NewRequestWithContext(ctx, method, u, nil)
	if err != nil {
		return nil, apperr.Internal("build request", err)
	}
	for k, vs := range headers {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	if len(query) > 0 {
		q := req.URL.Query()
		for k, v := range query {
			if v != "" {
				q.Set(k, v)
			}
		}
		req.URL.RawQuery = q.Encode()
	}

	resp, err := rc.Do(req)
	if err != nil {
		return nil, apperr.UpstreamTransient(fmt.Sprintf("%s %s exhausted retries", method, path), err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		// Should have been retried already; reaching here means retries were
		// exhausted without a transport-level error.
		return nil, apperr.UpstreamTransient(fmt.Sprintf("%s %s: status %d after retries", method, path, resp.StatusCode), nil)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusNotFound {
			return nil, apperr.NotFound(fmt.Sprintf("%s %s: status %d: %s", method, path, resp.StatusCode, string(body)))
		}
		return nil, apperr.UpstreamHard(resp.StatusCode, string(body))
	}

	if len(body) == 0 {
		return map[string]any{}, nil
	}

	var out map[string]any
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, apperr.Internal("decode response", err)
	}
	return out, nil
}

func (c *Client) primaryHeaders() http.Header {
	h := http.Header{}
	h.Set("x-api-key", c.primaryKey)
	return h
}

func (c *Client) xHeaders() http.Header {
	h := http.Header{}
	h.Set("Authorization", "Bearer "+c.xToken)
	return h
}

func asString(v any) string {
	if v == nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", t)
	}
}

func asInt64(v any) int64 {
	switch t := v.(type) {
	case float64:
		return int64(t)
	case string:
		n, _ := strconv.ParseInt(t, 10, 64)
		return n
	default:
		return 0
	}
}

func asBool(v any) bool {
	b, _ := v.(bool)
	return b
}

func asMap(v any) map[string]any {
	m, _ := v.(map[string]any)
	return m
}

func asSlice(v any) []any {
	s, _ := v.([]any)
	return s
}
