package api

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/reserveja/reserveja-cli/internal/errors"
	"github.com/reserveja/reserveja-cli/internal/log"
)

// Client is the ReserveJá platform API client.
//
// It owns the credential pair and the active-company context for the whole
// process: the session manager seeds both and every request call site shares
// this one instance. A 401 on an authenticated request triggers a single
// transparent refresh cycle; concurrent 401s share one in-flight refresh.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *log.Logger

	mu        sync.RWMutex
	tokens    *Tokens
	companyID string

	onTokenChange  func(*Tokens)
	onUnauthorized func()

	refresh singleflight.Group
}

// NewClient creates a new platform API client
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: log.DefaultLogger(),
	}
}

// SetLogger replaces the client's logger.
func (c *Client) SetLogger(logger *log.Logger) {
	if logger != nil {
		c.logger = logger
	}
}

// BaseURL returns the base URL all requests are resolved against.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// SetHooks registers the credential lifecycle callbacks.
//
// onTokenChange fires on every credential change, including the pair becoming
// empty. onUnauthorized fires when the client gives up after a failed refresh.
// A nil argument leaves the corresponding hook unchanged.
func (c *Client) SetHooks(onTokenChange func(*Tokens), onUnauthorized func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if onTokenChange != nil {
		c.onTokenChange = onTokenChange
	}
	if onUnauthorized != nil {
		c.onUnauthorized = onUnauthorized
	}
}

// SetTokens replaces the credential pair and notifies the token-change hook.
// Pass nil to clear credentials.
func (c *Client) SetTokens(tokens *Tokens) {
	var notify *Tokens
	c.mu.Lock()
	if tokens != nil {
		cp := *tokens
		c.tokens = &cp
		notify = &cp
	} else {
		c.tokens = nil
	}
	hook := c.onTokenChange
	c.mu.Unlock()

	// The hook runs outside the lock: it may call back into the client.
	if hook != nil {
		if notify != nil {
			cp := *notify
			hook(&cp)
		} else {
			hook(nil)
		}
	}
}

// Tokens returns a copy of the current credential pair, or nil.
func (c *Client) Tokens() *Tokens {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.tokens == nil {
		return nil
	}
	cp := *c.tokens
	return &cp
}

// SetCompanyID sets the active company used to scope company-level requests.
// Pass the empty string to clear it.
func (c *Client) SetCompanyID(companyID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.companyID = companyID
}

// CompanyID returns the active company id, or the empty string.
func (c *Client) CompanyID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.companyID
}

// Request describes one API call.
type Request struct {
	Method string
	Path   string

	// Body is JSON-marshalled unless it is an io.Reader, in which case it is
	// passed through unmodified and no JSON content type is set.
	Body any

	// Headers are extra headers merged into the request.
	Headers http.Header

	// SkipAuth disables the Authorization and X-Company-Id headers and the
	// refresh protocol; requests require auth by default.
	SkipAuth bool

	// CompanyID overrides the client-wide active company for this request.
	CompanyID string
}

// preparedBody is the request body captured once so that the post-refresh
// retry resends identical bytes even for opaque reader payloads.
type preparedBody struct {
	data []byte
	json bool
}

func prepareBody(body any) (*preparedBody, error) {
	if body == nil {
		return nil, nil
	}
	if reader, ok := body.(io.Reader); ok {
		data, err := io.ReadAll(reader)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeAPIRequest, "failed to read request body", err)
		}
		return &preparedBody{data: data}, nil
	}
	data, err := json.Marshal(body)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeAPIRequest, "failed to encode request body", err)
	}
	return &preparedBody{data: data, json: true}, nil
}

// Do performs the request and decodes a JSON response into out (which may be
// nil). On a 401 for an authenticated request it refreshes the credential
// pair once and retries once; if the refresh fails the original 401 error is
// returned and the client signals global de-authentication.
func (c *Client) Do(ctx context.Context, req Request, out any) error {
	body, err := prepareBody(req.Body)
	if err != nil {
		return err
	}

	err = c.send(ctx, req, body, out)
	if !c.refreshEligible(ctx, req, err) {
		return err
	}

	next, refreshErr := c.refreshTokens(ctx)
	if refreshErr != nil || !next.Valid() {
		// The original 401 propagates; de-auth was already signalled.
		return err
	}

	// At most one retry, with the rotated access token.
	return c.send(ctx, req, body, out)
}

// refreshEligible reports whether err is a 401 that should go through the
// refresh protocol. Canceled requests never refresh.
func (c *Client) refreshEligible(ctx context.Context, req Request, err error) bool {
	if req.SkipAuth || ctx.Err() != nil {
		return false
	}
	var apiErr *APIError
	if !stderrors.As(err, &apiErr) || apiErr.Status != http.StatusUnauthorized {
		return false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.tokens != nil && c.tokens.RefreshToken != ""
}

func (c *Client) send(ctx context.Context, r Request, body *preparedBody, out any) error {
	var reqBody io.Reader
	if body != nil {
		reqBody = bytes.NewReader(body.data)
	}

	httpReq, err := http.NewRequestWithContext(ctx, r.Method, c.baseURL+r.Path, reqBody)
	if err != nil {
		return errors.Wrap(errors.ErrCodeAPIRequest, "failed to create request", err)
	}

	for key, values := range r.Headers {
		for _, value := range values {
			httpReq.Header.Add(key, value)
		}
	}
	if body != nil && body.json {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	httpReq.Header.Set("X-Request-Id", uuid.NewString())

	if !r.SkipAuth {
		c.mu.RLock()
		access := ""
		if c.tokens != nil {
			access = c.tokens.AccessToken
		}
		company := r.CompanyID
		if company == "" {
			company = c.companyID
		}
		c.mu.RUnlock()

		if access != "" {
			httpReq.Header.Set("Authorization", "Bearer "+access)
		}
		if company != "" {
			httpReq.Header.Set("X-Company-Id", company)
		}
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return errors.Wrap(errors.ErrCodeAPIUnavailable, "request failed", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrap(errors.ErrCodeAPIDecode, "failed to read response", err)
	}

	isJSON := strings.Contains(resp.Header.Get("Content-Type"), "application/json")
	var parsed any
	if isJSON && len(raw) > 0 {
		// Best effort: an unparseable error body still yields a status error.
		_ = json.Unmarshal(raw, &parsed)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		message := http.StatusText(resp.StatusCode)
		if fields, ok := parsed.(map[string]any); ok {
			if m, ok := fields["message"].(string); ok && m != "" {
				message = m
			}
		}
		return &APIError{Status: resp.StatusCode, Message: message, Body: parsed}
	}

	if out != nil && isJSON && len(raw) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			return errors.Wrap(errors.ErrCodeAPIDecode, "failed to decode response", err)
		}
	}

	return nil
}

// refreshTokens redeems the current refresh token for a new credential pair.
// Concurrent callers share a single in-flight redemption: most backends
// invalidate a refresh token on use, so a second simultaneous redemption
// would fail and log the user out for no reason.
func (c *Client) refreshTokens(ctx context.Context) (*Tokens, error) {
	v, err, _ := c.refresh.Do("refresh", func() (any, error) {
		// Detached from the triggering request so one canceled caller does
		// not poison the refresh its peers are waiting on.
		rctx := context.WithoutCancel(ctx)

		c.mu.RLock()
		refreshToken := ""
		if c.tokens != nil {
			refreshToken = c.tokens.RefreshToken
		}
		c.mu.RUnlock()

		if refreshToken == "" {
			return (*Tokens)(nil), errors.New(errors.ErrCodeAuthRefreshDown, "no refresh token held")
		}

		var payload tokenPayload
		err := c.Do(rctx, Request{
			Method:   http.MethodPost,
			Path:     "/auth/refresh",
			Body:     map[string]string{"refreshToken": refreshToken},
			SkipAuth: true,
		}, &payload)
		if err != nil {
			c.dropCredentials(err)
			return (*Tokens)(nil), err
		}

		next := payload.Tokens()
		if next == nil {
			err := errors.New(errors.ErrCodeAuthRefreshDown, "refresh response missing tokens")
			c.dropCredentials(err)
			return (*Tokens)(nil), err
		}

		c.SetTokens(next)
		return next, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Tokens), nil
}

// dropCredentials clears the pair and signals global de-authentication.
func (c *Client) dropCredentials(cause error) {
	c.logger.WithError(cause).Warn("token refresh failed, clearing credentials")

	c.SetTokens(nil)

	c.mu.RLock()
	hook := c.onUnauthorized
	c.mu.RUnlock()
	if hook != nil {
		hook()
	}
}

// Convenience wrappers used by the resource methods.

func (c *Client) get(ctx context.Context, path string, out any) error {
	return c.Do(ctx, Request{Method: http.MethodGet, Path: path}, out)
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, Request{Method: http.MethodPost, Path: path, Body: body}, out)
}

func (c *Client) patch(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, Request{Method: http.MethodPatch, Path: path, Body: body}, out)
}

func (c *Client) delete(ctx context.Context, path string) error {
	return c.Do(ctx, Request{Method: http.MethodDelete, Path: path}, nil)
}
