package oauth

import (
	"context"
	"net/http"
	"net/url"

	"okr/internal/platform/openapi"
)

// UserInfo is the identity profile returned by the platform after a
// successful authorization-code exchange.
type UserInfo struct {
	UserID    string `json:"user_id"`
	OpenID    string `json:"open_id"`
	UnionID   string `json:"union_id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	AvatarURL string `json:"avatar_url"`
}

// ExternalID returns the id used as the employee identity key.
func (u UserInfo) ExternalID() string {
	if u.UserID != "" {
		return u.UserID
	}
	return u.OpenID
}

// Exchanger is what the auth service consumes; tests substitute a fake.
type Exchanger interface {
	ExchangeCode(ctx context.Context, code string) (UserInfo, error)
}

type Client struct {
	api         *openapi.Client
	redirectURL string
	scope       string
}

func New(api *openapi.Client, redirectURL, scope string) *Client {
	return &Client{api: api, redirectURL: redirectURL, scope: scope}
}

// AuthorizeURL builds the browser redirect for the platform's consent
// page. The redirect flow itself happens outside this service.
func (c *Client) AuthorizeURL(state string) string {
	params := url.Values{}
	params.Set("app_id", c.api.AppID())
	params.Set("redirect_uri", c.redirectURL)
	params.Set("scope", c.scope)
	params.Set("state", state)
	return c.api.BaseURL() + "/authen/v1/authorize?" + params.Encode()
}

// ExchangeCode swaps an authorization code for the caller's identity:
// code -> user access token -> user info.
func (c *Client) ExchangeCode(ctx context.Context, code string) (UserInfo, error) {
	var tokenRes struct {
		Data struct {
			AccessToken string `json:"access_token"`
		} `json:"data"`
	}
	body := map[string]string{"grant_type": "authorization_code", "code": code}
	if err := c.api.Do(ctx, http.MethodPost, "/authen/v1/oidc/access_token", nil, body, &tokenRes, "exchange authorization code"); err != nil {
		return UserInfo{}, err
	}
	if tokenRes.Data.AccessToken == "" {
		return UserInfo{}, &openapi.APIError{Action: "exchange authorization code", Code: -1, Msg: "empty access token"}
	}

	var infoRes struct {
		Data UserInfo `json:"data"`
	}
	if err := c.api.DoWithToken(ctx, http.MethodGet, "/authen/v1/user_info", tokenRes.Data.AccessToken, nil, nil, &infoRes, "fetch user info"); err != nil {
		return UserInfo{}, err
	}
	return infoRes.Data, nil
}
