// Package api is the HTTP client for the gophusers REST API. It remembers the
// session token returned by Register and Login and presents it as a Bearer
// token on authenticated calls.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophusers/internal/common"
)

var (
	ErrUnavailable  = errors.New("server unavailable")
	ErrUnauthorized = errors.New("unauthorized")
)

// Error is a non-2xx answer from the server.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server returned %d", e.Status)
	}
	return fmt.Sprintf("%s (%d)", e.Message, e.Status)
}

// Is lets errors.Is(err, ErrUnauthorized) match a 401.
func (e *Error) Is(target error) bool {
	return target == ErrUnauthorized && e.Status == http.StatusUnauthorized
}

type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Age       int       `json:"age"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Session struct {
	User  User   `json:"user"`
	Token string `json:"token"`
}

type Client struct {
	baseURL string
	http    *http.Client

	mu    sync.RWMutex
	token string
}

// New returns a client for baseURL, e.g. "http://127.0.0.1:8080/api".
func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

func (c *Client) Register(ctx context.Context, name, email, password string, age int) (*Session, error) {
	body := map[string]any{"name": name, "email": email, "password": password, "age": age}
	var s Session
	if err := c.doJSON(ctx, http.MethodPost, "/users", false, body, &s); err != nil {
		return nil, err
	}
	c.SetToken(s.Token)
	return &s, nil
}

func (c *Client) Login(ctx context.Context, email, password string) (*Session, error) {
	var s Session
	if err := c.doJSON(ctx, http.MethodPost, "/users/login", false, map[string]string{"email": email, "password": password}, &s); err != nil {
		return nil, err
	}
	c.SetToken(s.Token)
	return &s, nil
}

func (c *Client) Me(ctx context.Context) (*User, error) {
	var u User
	if err := c.doJSON(ctx, http.MethodGet, "/users/me", true, nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// Update sends only the named fields: name, email, password or age.
func (c *Client) Update(ctx context.Context, fields map[string]any) (*User, error) {
	var u User
	if err := c.doJSON(ctx, http.MethodPatch, "/users/me", true, fields, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// Delete removes the account and forgets the token.
func (c *Client) Delete(ctx context.Context) (*User, error) {
	var u User
	if err := c.doJSON(ctx, http.MethodDelete, "/users/me", true, nil, &u); err != nil {
		return nil, err
	}
	c.SetToken("")
	return &u, nil
}

func (c *Client) Logout(ctx context.Context) error {
	if err := c.doJSON(ctx, http.MethodPost, "/users/logout", true, nil, nil); err != nil {
		return err
	}
	c.SetToken("")
	return nil
}

func (c *Client) LogoutAll(ctx context.Context) error {
	if err := c.doJSON(ctx, http.MethodPost, "/users/logoutAll", true, nil, nil); err != nil {
		return err
	}
	c.SetToken("")
	return nil
}

// UploadAvatar sends content as the "avatar" multipart field. The server
// decides by filename extension whether it looks like an image.
func (c *Client) UploadAvatar(ctx context.Context, filename string, content io.Reader) error {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile(common.AvatarFormField, filename)
	if err != nil {
		return err
	}
	if _, err := io.Copy(fw, content); err != nil {
		return err
	}
	if err := mw.Close(); err != nil {
		return err
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/users/me/avatar", true, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	_, err = c.do(req)
	return err
}

func (c *Client) DeleteAvatar(ctx context.Context) error {
	return c.doJSON(ctx, http.MethodDelete, "/users/me/avatar", true, nil, nil)
}

// Avatar returns the PNG bytes of userID's avatar.
func (c *Client) Avatar(ctx context.Context, userID string) ([]byte, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/users/"+url.PathEscape(userID)+"/avatar", false, nil)
	if err != nil {
		return nil, err
	}
	return c.do(req)
}

func (c *Client) doJSON(ctx context.Context, method, path string, auth bool, in, out any) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(raw)
	}

	req, err := c.newRequest(ctx, method, path, auth, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	data, err := c.do(req)
	if err != nil {
		return err
	}
	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s %s response: %w", method, path, err)
	}
	return nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, auth bool, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	if auth {
		token := c.Token()
		if token == "" {
			return nil, ErrUnauthorized
		}
		req.Header.Set(common.AuthorizationHeaderName, common.BearerScheme+" "+token)
	}
	return req, nil
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var e struct {
			Error string `json:"error"`
		}
		_ = json.Unmarshal(data, &e)
		return nil, &Error{Status: resp.StatusCode, Message: e.Error}
	}
	return data, nil
}
