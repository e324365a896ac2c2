package openapi

import (
	"context"
	"net/http"
	"sync"
	"time"
)

const tokenSlack = 2 * time.Minute

type tokenState struct {
	mu      sync.Mutex
	value   string
	expires time.Time
}

// AppAccessToken returns the app-level access token, fetching a fresh
// one only when the cached token is near expiry.
func (c *Client) AppAccessToken(ctx context.Context) (string, error) {
	c.token.mu.Lock()
	defer c.token.mu.Unlock()

	if c.token.value != "" && time.Now().Before(c.token.expires) {
		return c.token.value, nil
	}

	var res struct {
		TenantAccessToken string `json:"tenant_access_token"`
		Expire            int    `json:"expire"`
	}
	body := map[string]string{"app_id": c.appID, "app_secret": c.appSecret}
	if err := c.do(ctx, http.MethodPost, "/auth/v3/tenant_access_token/internal", "", nil, body, &res, "fetch app access token"); err != nil {
		return "", err
	}
	if res.TenantAccessToken == "" {
		return "", &APIError{Action: "fetch app access token", Code: -1, Msg: "empty token in response"}
	}

	c.token.value = res.TenantAccessToken
	c.token.expires = time.Now().Add(time.Duration(res.Expire)*time.Second - tokenSlack)
	return c.token.value, nil
}
