// Package apiclient talks to the catalog REST API.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"catalogconsole/internal/apperr"
)

const maxBodyBytes = 8 << 20

type Config struct {
	BaseURL  string
	Timeout  time.Duration
	RetryMax int
	// HTTPClient replaces the retrying transport, mostly for tests.
	HTTPClient *http.Client
}

type Client struct {
	base string
	http *http.Client
}

func New(cfg Config) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid api base url %q", cfg.BaseURL)
	}
	hc := cfg.HTTPClient
	if hc == nil {
		hc = buildHTTPClient(cfg)
	}
	return &Client{base: base.String(), http: hc}, nil
}

func buildHTTPClient(cfg Config) *http.Client {
	rc := retryablehttp.NewClient()
	rc.RetryMax = cfg.RetryMax
	rc.RetryWaitMin = 200 * time.Millisecond
	rc.RetryWaitMax = 2 * time.Second
	rc.CheckRetry = retryIdempotent
	// the caller decides what to make of a final non-2xx
	rc.ErrorHandler = retryablehttp.PassthroughErrorHandler
	rc.Logger = nil
	httpClient := rc.StandardClient()
	httpClient.Timeout = cfg.Timeout
	return httpClient
}

type idempotentKey struct{}

// retryIdempotent applies the default policy to GETs only; writes are never replayed.
func retryIdempotent(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if ok, _ := ctx.Value(idempotentKey{}).(bool); !ok {
		return false, nil
	}
	return retryablehttp.DefaultRetryPolicy(ctx, resp, err)
}

type response struct {
	status  int
	cookies []*http.Cookie
	body    []byte
}

// endpoint joins an already escaped path onto the base URL.
func (c *Client) endpoint(path string) string {
	return c.base + path
}

func (c *Client) do(ctx context.Context, method, path string, in any) (*response, error) {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return nil, apperr.Wrap(apperr.CodeInternal, err, "encoding request body")
		}
		body = bytes.NewReader(raw)
	}
	if method == http.MethodGet {
		ctx = context.WithValue(ctx, idempotentKey{}, true)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path), body)
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeInternal, err, "building request")
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	CredentialsFrom(ctx).apply(req)

	res, err := c.http.Do(req)
	if err != nil {
		return nil, transportError(err)
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(res.Body, maxBodyBytes))
	if err != nil {
		return nil, transportError(err)
	}
	out := &response{status: res.StatusCode, cookies: res.Cookies(), body: raw}
	if res.StatusCode < 200 || res.StatusCode > 299 {
		return out, statusError(res.StatusCode, raw)
	}
	return out, nil
}

func transportError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return apperr.Wrap(apperr.CodeUpstream, err, "The catalog API did not respond in time")
	}
	if errors.Is(err, context.Canceled) {
		return apperr.Wrap(apperr.CodeUpstream, err, "Request was cancelled")
	}
	return apperr.Wrap(apperr.CodeUpstream, err, "Could not reach the catalog API")
}

// statusError takes the message from body.message, then body.error.
func statusError(status int, body []byte) error {
	var payload struct {
		Message any `json:"message"`
		Error   any `json:"error"`
	}
	msg := ""
	if err := json.Unmarshal(body, &payload); err == nil {
		msg = textOf(payload.Message)
		if msg == "" {
			msg = textOf(payload.Error)
		}
	}
	if msg == "" {
		msg = apperr.FallbackMessage
	}

	code := apperr.CodeUpstream
	switch status {
	case http.StatusUnauthorized:
		code = apperr.CodeAuthExpired
	case http.StatusNotFound:
		code = apperr.CodeNotFound
	}
	return apperr.New(code, msg).WithStatus(status)
}

// textOf accepts a string or a list of strings, which some validation layers send.
func textOf(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case []any:
		parts := make([]string, 0, len(t))
		for _, p := range t {
			if s, ok := p.(string); ok && strings.TrimSpace(s) != "" {
				parts = append(parts, strings.TrimSpace(s))
			}
		}
		return strings.Join(parts, ", ")
	}
	return ""
}

// decodeEnvelope accepts {"data": T} or a bare T.
func decodeEnvelope(body []byte, out any) error {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return apperr.New(apperr.CodeUpstream, "Unexpected empty response from the catalog API")
	}
	if trimmed[0] == '{' {
		var env struct {
			Data json.RawMessage `json:"data"`
		}
		if err := json.Unmarshal(trimmed, &env); err == nil {
			data := bytes.TrimSpace(env.Data)
			if len(data) > 0 && !bytes.Equal(data, []byte("null")) {
				trimmed = data
			}
		}
	}
	if err := json.Unmarshal(trimmed, out); err != nil {
		return apperr.Wrap(apperr.CodeUpstream, err, "Unexpected response from the catalog API")
	}
	return nil
}
