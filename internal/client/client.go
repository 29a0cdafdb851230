package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// SessionPath is the current-user endpoint. A 401 there means the stored token is no longer valid.
const SessionPath = "/auth/me"

const DefaultTimeout = 10 * time.Second

// Request describes one logical call. Path is relative to the client's base URL. Public requests
// never carry the bearer token.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Body   any
	Public bool
}

// HttpClient performs calls against the backend. The bearer token is a mutable field read at call
// time; only the session manager writes it.
type HttpClient struct {
	base   *url.URL
	client *http.Client

	tokenMutex sync.RWMutex
	token      string
	onExpired  func()
}

func New(base *url.URL, client *http.Client) (*HttpClient, error) {
	if base == nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid base url %q", base)
	}
	if client == nil {
		client = &http.Client{Timeout: DefaultTimeout}
	}
	return &HttpClient{
		base:   base,
		client: client,
	}, nil
}

func (c *HttpClient) SetToken(token string) {
	c.tokenMutex.Lock()
	defer c.tokenMutex.Unlock()
	c.token = token
}

func (c *HttpClient) ClearToken() {
	c.SetToken("")
}

func (c *HttpClient) Token() string {
	c.tokenMutex.RLock()
	defer c.tokenMutex.RUnlock()
	return c.token
}

// OnSessionExpired registers the function invoked after the session endpoint answers 401.
func (c *HttpClient) OnSessionExpired(f func()) {
	c.tokenMutex.Lock()
	defer c.tokenMutex.Unlock()
	c.onExpired = f
}

// Do performs the request and returns the raw response body. It never retries; every failure is
// returned as an *Error.
func (c *HttpClient) Do(ctx context.Context, r Request) ([]byte, error) {
	method := r.Method
	if method == "" {
		method = http.MethodGet
	}
	u := c.base.JoinPath(r.Path)
	if len(r.Query) > 0 {
		u.RawQuery = r.Query.Encode()
	}

	var body io.Reader
	if r.Body != nil {
		b, err := json.Marshal(r.Body)
		if err != nil {
			return nil, fmt.Errorf("encoding request body: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, err
	}
	requestId := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestId)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if !r.Public {
		if token := c.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	start := time.Now()
	res, err := c.client.Do(req)
	if err != nil {
		log.Error().Err(err).
			Str("method", method).
			Str("path", r.Path).
			Str("request_id", requestId).
			Msg("request failed")
		return nil, networkError(err)
	}
	defer res.Body.Close()

	content, err := io.ReadAll(res.Body)
	if err != nil {
		log.Error().Err(err).Str("request_id", requestId).Msg("failed to read response body")
		return nil, networkError(err)
	}

	log.Debug().
		Str("method", method).
		Str("path", r.Path).
		Int("status", res.StatusCode).
		Dur("elapsed", time.Since(start)).
		Str("request_id", requestId).
		Send()

	if res.StatusCode < http.StatusBadRequest {
		return content, nil
	}

	if res.StatusCode == http.StatusUnauthorized && isSessionPath(r.Path) {
		c.tokenMutex.RLock()
		hook := c.onExpired
		c.tokenMutex.RUnlock()
		if hook != nil {
			hook()
		}
		return nil, &Error{Kind: ErrSessionExpired, Status: res.StatusCode, Message: extractMessage(content)}
	}

	err = remoteError(res.StatusCode, content)
	log.Error().Int("code", res.StatusCode).Bytes("response body", content).Msg("backend error")
	return nil, err
}

// DoJSON performs the request and decodes a JSON response into out, which may be nil.
func (c *HttpClient) DoJSON(ctx context.Context, r Request, out any) error {
	content, err := c.Do(ctx, r)
	if err != nil || out == nil || len(bytes.TrimSpace(content)) == 0 {
		return err
	}
	if err = json.Unmarshal(content, out); err != nil {
		return &Error{Kind: ErrRemote, Message: "malformed response", Err: err}
	}
	return nil
}

func isSessionPath(p string) bool {
	return path.Clean("/"+p) == SessionPath
}

// IsTimeout reports whether a network failure was caused by the call's deadline.
func IsTimeout(err error) bool {
	if !errors.Is(err, ErrNetwork) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne interface{ Timeout() bool }
	return errors.As(err, &ne) && ne.Timeout()
}
