package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrijs2005/apparel/internal/server/models"
)

type HTTPClient struct {
	base *url.URL
	http *http.Client
}

// NewHTTPClient returns a client for the API at baseURL. Each request is
// limited to timeout.
func NewHTTPClient(baseURL string, timeout time.Duration) (*HTTPClient, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("server url: %w", err)
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	return &HTTPClient{base: u, http: &http.Client{Jar: jar, Timeout: timeout}}, nil
}

func (c *HTTPClient) url(parts ...string) string {
	escaped := make([]string, len(parts))
	for i, p := range parts {
		escaped[i] = url.PathEscape(p)
	}
	return c.base.String() + "/" + strings.Join(escaped, "/")
}

// do sends a request and decodes a JSON answer into out when out is not nil.
func (c *HTTPClient) do(ctx context.Context, method, target string, body any, out any) error {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rd = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, rd)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		apiErr := &APIError{Status: resp.StatusCode}
		var eb struct {
			Error   string `json:"error"`
			Message string `json:"message"`
		}
		if json.NewDecoder(resp.Body).Decode(&eb) == nil {
			apiErr.Code, apiErr.Message = eb.Error, eb.Message
		}
		return apiErr
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *HTTPClient) Ping(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, c.url("health"), nil, nil)
}

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (c *HTTPClient) Register(ctx context.Context, username, password string) error {
	return c.do(ctx, http.MethodPost, c.url("register"), credentials{username, password}, nil)
}

func (c *HTTPClient) Login(ctx context.Context, username, password string) error {
	return c.do(ctx, http.MethodPost, c.url("login"), credentials{username, password}, nil)
}

func (c *HTTPClient) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, c.url("logout"), nil, nil)
}

func (c *HTTPClient) Items(ctx context.Context, username string) ([]models.Item, error) {
	var items []models.Item
	err := c.do(ctx, http.MethodGet, c.url("get", "items", username), nil, &items)
	return items, err
}

func (c *HTTPClient) Item(ctx context.Context, id string) (*models.Item, error) {
	var item models.Item
	if err := c.do(ctx, http.MethodGet, c.url("get", "oneitem", id), nil, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

func (c *HTTPClient) Outfits(ctx context.Context, username string) ([]models.Outfit, error) {
	var outfits []models.Outfit
	err := c.do(ctx, http.MethodGet, c.url("get", "outfits", username), nil, &outfits)
	return outfits, err
}

func (c *HTTPClient) Search(ctx context.Context, username, keyword string) ([]models.Item, error) {
	var items []models.Item
	err := c.do(ctx, http.MethodGet, c.url("search", "all", username, keyword), nil, &items)
	return items, err
}

func (c *HTTPClient) Filter(ctx context.Context, username, field, keyword string) ([]models.Item, error) {
	body := struct {
		Username string `json:"username"`
		Field    string `json:"field"`
		Keyword  string `json:"keyword"`
	}{username, field, keyword}

	var items []models.Item
	err := c.do(ctx, http.MethodPost, c.url("search", "field"), body, &items)
	return items, err
}
