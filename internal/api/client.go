package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gregjones/httpcache"
	cookiejar "github.com/juju/persistent-cookiejar"
	"github.com/mhotoys/shopctl/internal/logger"
	"github.com/rs/zerolog"
	"golang.org/x/net/publicsuffix"
)

// publicPrefix marks endpoints that never carry session semantics. A 401
// from one of these is a credential rejection, not an expired session, so
// the unauthenticated hook is not invoked for them.
const publicPrefix = "/auth/public/"

// Config holds common client configuration.
type Config struct {
	BaseURL string
	Timeout time.Duration
	Jar     http.CookieJar
	Logger  zerolog.Logger
}

// Client is the single outbound channel to the storefront backend. Every
// request carries the session cookie from the jar; response handling is
// centralized and table-driven by HTTP status. The client never retries;
// retries, if any, are the caller's decision.
type Client struct {
	base    *url.URL
	http    *http.Client
	catalog *http.Client
	logger  zerolog.Logger

	onUnauthenticated func()
}

// New creates a client for the given base URL. The catalog client shares
// the jar but routes through an in-memory caching transport for the
// public, cacheable catalog reads.
func New(config Config) (*Client, error) {
	base, err := url.Parse(strings.TrimSuffix(config.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("failed to parse base URL: %w", err)
	}

	if config.Timeout <= 0 {
		config.Timeout = 10 * time.Second
	}

	logged := logger.NewHTTPRequests(config.Logger, nil)

	caching := httpcache.NewTransport(httpcache.NewMemoryCache())
	caching.Transport = logged

	return &Client{
		base: base,
		http: &http.Client{
			Timeout:   config.Timeout,
			Jar:       config.Jar,
			Transport: logged,
		},
		catalog: &http.Client{
			Timeout:   config.Timeout,
			Jar:       config.Jar,
			Transport: caching,
		},
		logger: config.Logger,
	}, nil
}

// NewPersistentJar opens (or creates) the on-disk cookie jar at path. The
// file is owned by the HTTP client; application code never reads it, so
// the server-set httpOnly session cookie stays opaque to the rest of the
// program.
func NewPersistentJar(path string) (*cookiejar.Jar, error) {
	jar, err := cookiejar.New(&cookiejar.Options{
		PublicSuffixList: publicsuffix.List,
		Filename:         path,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open cookie jar: %w", err)
	}
	return jar, nil
}

// SetUnauthenticatedHook registers the callback invoked whenever a
// session-bearing request comes back 401. Set once during startup wiring.
func (c *Client) SetUnauthenticatedHook(fn func()) {
	c.onUnauthenticated = fn
}

// Get issues a GET request and decodes the JSON response into out.
func (c *Client) Get(ctx context.Context, path string, query url.Values, out any) error {
	return c.do(ctx, c.http, http.MethodGet, path, query, nil, out)
}

// GetCached is Get through the caching transport, for catalog reads.
func (c *Client) GetCached(ctx context.Context, path string, query url.Values, out any) error {
	return c.do(ctx, c.catalog, http.MethodGet, path, query, nil, out)
}

// Post issues a POST request with a JSON body.
func (c *Client) Post(ctx context.Context, path string, query url.Values, body, out any) error {
	return c.do(ctx, c.http, http.MethodPost, path, query, body, out)
}

// Put issues a PUT request with a JSON body.
func (c *Client) Put(ctx context.Context, path string, query url.Values, body, out any) error {
	return c.do(ctx, c.http, http.MethodPut, path, query, body, out)
}

// Delete issues a DELETE request.
func (c *Client) Delete(ctx context.Context, path string) error {
	return c.do(ctx, c.http, http.MethodDelete, path, nil, nil, nil)
}

func (c *Client) do(ctx context.Context, httpClient *http.Client, method, path string, query url.Values, body, out any) error {
	u := *c.base
	u.Path = strings.TrimSuffix(u.Path, "/") + path
	if query != nil {
		u.RawQuery = query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-Id", uuid.NewString())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		// The request never produced a response. Keep this distinct
		// from a 5xx.
		return fmt.Errorf("%w: %v", ErrNetworkUnreachable, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNetworkUnreachable, err)
	}

	c.persistJar(httpClient)

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return c.translate(resp.StatusCode, path, data)
	}

	if out == nil || len(data) == 0 {
		return nil
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

// translate maps a non-2xx status to a classified error. This is the one
// place response statuses are interpreted.
func (c *Client) translate(status int, path string, body []byte) error {
	message := bodyMessage(body)

	switch {
	case status == http.StatusUnauthorized:
		if c.onUnauthenticated != nil && !strings.HasPrefix(path, publicPrefix) {
			c.onUnauthenticated()
		}
		return &Error{Status: status, Message: message, Kind: ErrAuthenticationRequired}

	case status == http.StatusForbidden:
		return &Error{Status: status, Message: message, Kind: ErrPermissionDenied}

	case status == http.StatusNotFound:
		return &Error{Status: status, Message: message, Kind: ErrNotFound}

	case status == http.StatusUnprocessableEntity:
		if fields, ok := fieldErrors(body); ok {
			return &ValidationError{Fields: fields}
		}
		return &Error{Status: status, Message: message}

	case status == http.StatusBadRequest:
		// The backend reports bean-validation failures as a 400 with a
		// flat field->message object.
		if fields, ok := fieldErrors(body); ok {
			return &ValidationError{Fields: fields}
		}
		return &Error{Status: status, Message: message}

	case status >= http.StatusInternalServerError:
		return &Error{Status: status, Message: message, Kind: ErrServerFault}

	default:
		return &Error{Status: status, Message: message}
	}
}

func (c *Client) persistJar(httpClient *http.Client) {
	saver, ok := httpClient.Jar.(interface{ Save() error })
	if !ok {
		return
	}
	if err := saver.Save(); err != nil {
		c.logger.Debug().Err(err).Msg("failed to persist cookie jar")
	}
}

// bodyMessage extracts the server's displayable message, if any.
func bodyMessage(body []byte) string {
	if len(body) == 0 {
		return ""
	}

	var payload struct {
		Message string `json:"message"`
		ErrMsg  string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}

	if payload.Message != "" {
		return payload.Message
	}
	return payload.ErrMsg
}

// fieldErrors decodes a flat field->message object. Payloads carrying a
// "message" or "status" key are envelope responses, not field maps.
func fieldErrors(body []byte) (map[string]string, bool) {
	var fields map[string]string
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, false
	}
	if len(fields) == 0 {
		return nil, false
	}
	if _, ok := fields["message"]; ok {
		return nil, false
	}
	if _, ok := fields["status"]; ok {
		return nil, false
	}
	return fields, true
}
