package openapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// Client talks to the collaboration platform's open API: the tabular
// record store, the OAuth endpoints and the message API all share the
// same base URL, error envelope and app credentials.
//
// Calls are not retried; a failed round-trip surfaces immediately.
type Client struct {
	baseURL   string
	appID     string
	appSecret string
	httpc     *http.Client
	token     tokenState
}

func New(baseURL, appID, appSecret string, timeout time.Duration) *Client {
	return &Client{
		baseURL:   baseURL,
		appID:     appID,
		appSecret: appSecret,
		httpc:     &http.Client{Timeout: timeout},
	}
}

func (c *Client) AppID() string { return c.appID }

func (c *Client) BaseURL() string { return c.baseURL }

// Do performs an app-authenticated JSON request and decodes the response
// body into out (which may be nil). action names the attempted operation
// for error reporting.
func (c *Client) Do(ctx context.Context, method, path string, query url.Values, body, out any, action string) error {
	token, err := c.AppAccessToken(ctx)
	if err != nil {
		return err
	}
	return c.do(ctx, method, path, "Bearer "+token, query, body, out, action)
}

// DoWithToken is Do with a caller-supplied bearer token (user access
// tokens during the OAuth exchange).
func (c *Client) DoWithToken(ctx context.Context, method, path, token string, query url.Values, body, out any, action string) error {
	return c.do(ctx, method, path, "Bearer "+token, query, body, out, action)
}

func (c *Client) do(ctx context.Context, method, path, authorization string, query url.Values, body, out any, action string) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s: encode request: %w", action, err)
		}
		reader = bytes.NewReader(payload)
	}

	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("%s: build request: %w", action, err)
	}
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}

	res, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", action, err)
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return fmt.Errorf("%s: read response: %w", action, err)
	}

	var env struct {
		Code int    `json:"code"`
		Msg  string `json:"msg"`
	}
	if err := json.Unmarshal(raw, &env); err != nil {
		return fmt.Errorf("%s: decode response: %w", action, err)
	}
	if env.Code != 0 {
		return &APIError{Action: action, Code: env.Code, Msg: env.Msg}
	}
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return &APIError{Action: action, Code: res.StatusCode, Msg: http.StatusText(res.StatusCode)}
	}

	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("%s: decode response: %w", action, err)
		}
	}
	return nil
}
