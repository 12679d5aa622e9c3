// Package apiclient talks to the course/blog backend on behalf of the
// authoring core: persistence, uploads and login.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"tdc-backend/internal/content"
)

const maxResponseBytes = 10 << 20

type Client struct {
	baseURL string
	http    *http.Client
	session *Session
	log     *slog.Logger
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithLogger(log *slog.Logger) Option {
	return func(c *Client) { c.log = log }
}

// New returns a client for the API rooted at baseURL, e.g.
// "https://example.com/api". A nil session means public calls only.
func New(baseURL string, session *Session, opts ...Option) *Client {
	if session == nil {
		session = NewSession()
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 60 * time.Second},
		session: session,
		log:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Session() *Session { return c.session }

type envelope struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Details map[string]string `json:"details"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Login acquires a session for an admin account.
func (c *Client) Login(ctx context.Context, email, password string) error {
	var resp loginResponse
	if err := c.call(ctx, http.MethodPost, "/auth/login", loginRequest{Email: email, Password: password}, false, &resp); err != nil {
		return err
	}
	if resp.Token == "" {
		return &Error{Kind: ErrTransport, Message: "login response without token"}
	}
	c.session.set(resp.Token, resp.ExpiresAt)
	c.log.Info("apiclient login: ok", slog.Time("expires_at", resp.ExpiresAt))
	return nil
}

func (c *Client) Logout() {
	c.session.Invalidate()
}

func (c *Client) call(ctx context.Context, method, path string, body any, admin bool, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return &Error{Kind: ErrValidationRejected, Message: "cannot encode request", Err: err}
		}
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return &Error{Kind: ErrTransport, Err: err}
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.send(req, admin, out)
}

func (c *Client) send(req *http.Request, admin bool, out any) error {
	req.Header.Set("Accept", "application/json")
	if admin {
		token, ok := c.session.Token()
		if !ok {
			return &Error{Kind: ErrUnauthorized, Message: "not signed in"}
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn("apiclient: request failed", slog.String("method", req.Method), slog.String("path", req.URL.Path), slog.String("error", err.Error()))
		return &Error{Kind: ErrTransport, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return &Error{Kind: ErrTransport, Status: resp.StatusCode, Err: err}
	}

	var env envelope
	_ = json.Unmarshal(data, &env)

	if resp.StatusCode >= 300 {
		kind := kindForStatus(resp.StatusCode)
		if errors.Is(kind, ErrUnauthorized) && admin {
			c.session.Invalidate()
		}
		msg := env.Message
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		c.log.Warn("apiclient: request rejected",
			slog.String("method", req.Method),
			slog.String("path", req.URL.Path),
			slog.Int("status", resp.StatusCode),
			slog.String("message", msg),
		)
		return &Error{Kind: kind, Status: resp.StatusCode, Message: msg, Details: env.Details}
	}
	if !env.Success {
		return &Error{Kind: ErrTransport, Status: resp.StatusCode, Message: "unexpected response"}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		if errors.Is(err, content.ErrInvalidContentShape) {
			c.log.Warn("apiclient: unreadable document", slog.String("path", req.URL.Path), slog.String("error", err.Error()))
			return &Error{Kind: ErrInvalidContent, Status: resp.StatusCode, Message: "cannot decode response", Err: err}
		}
		return &Error{Kind: ErrTransport, Status: resp.StatusCode, Message: "cannot decode response", Err: err}
	}
	return nil
}

func escape(id string) string {
	return url.PathEscape(id)
}

func requirePersisted(what string, id content.ID) error {
	if !id.IsPersisted() {
		return &Error{Kind: ErrValidationRejected, Message: fmt.Sprintf("%s has no server identifier", what)}
	}
	return nil
}
