// Package wso2 implements the OAuth 2.0 / OpenID Connect flow against a
// WSO2 Identity Server. WSO2 deployments are loose about the token endpoint:
// some answer JSON, some answer url-encoded form data, and some want the
// exchange as a GET. The client tolerates all of it.
package wso2

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dropDatabas3/wso2gate/internal/claims"
)

// Config holds the provider endpoints and credentials for one WSO2 tenant.
type Config struct {
	// BaseURL is the identity server root, e.g. https://idp.example.org.
	// Endpoints default to BaseURL + /oauth2/{authorize,token,userinfo}
	// unless set explicitly.
	BaseURL      string
	AuthorizeURL string
	TokenURL     string
	UserInfoURL  string

	ClientID     string
	ClientSecret string
	RedirectURL  string
	Scopes       []string

	// TokenMethod is "POST" (form body) or "GET" (query params).
	TokenMethod string

	// BasicAuth sends credentials in an Authorization header on the token
	// exchange. When false the client_id goes in the body; the client_secret
	// is never sent in the body (WSO2 rejects public-client exchanges that
	// include it).
	BasicAuth bool

	// Timeout bounds each outbound HTTP call. Defaults to 10s.
	Timeout time.Duration
}

// Client is the WSO2 OAuth2 client.
type Client struct {
	cfg  Config
	http *http.Client
}

// New creates a WSO2 client from config, filling endpoint defaults.
func New(cfg Config) *Client {
	base := strings.TrimRight(cfg.BaseURL, "/")
	if cfg.AuthorizeURL == "" {
		cfg.AuthorizeURL = base + "/oauth2/authorize"
	}
	if cfg.TokenURL == "" {
		cfg.TokenURL = base + "/oauth2/token"
	}
	if cfg.UserInfoURL == "" {
		cfg.UserInfoURL = base + "/oauth2/userinfo"
	}
	if cfg.TokenMethod == "" {
		cfg.TokenMethod = http.MethodPost
	}
	if len(cfg.Scopes) == 0 {
		cfg.Scopes = []string{"openid"}
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: timeout},
	}
}

// AuthURL builds the authorization redirect URL. Values in extra override the
// defaults on key collision; empty-string values are stripped before encoding.
func (c *Client) AuthURL(state string, extra map[string]string) string {
	params := map[string]string{
		"client_id":     c.cfg.ClientID,
		"redirect_uri":  c.cfg.RedirectURL,
		"scope":         strings.Join(c.cfg.Scopes, " "),
		"response_type": "code",
	}
	if state != "" {
		params["state"] = state
	}
	for k, v := range extra {
		params[k] = v
	}
	stripEmpty(params)

	q := url.Values{}
	for k, v := range params {
		q.Set(k, v)
	}
	return c.cfg.AuthorizeURL + "?" + q.Encode()
}

// Token is an access token obtained from the token endpoint.
type Token struct {
	AccessToken  string
	RefreshToken string
	TokenType    string
	// ExpiresAt is zero when the provider sent no expires_in.
	ExpiresAt time.Time
}

// ExchangeCode exchanges an authorization code for an access token.
func (c *Client) ExchangeCode(ctx context.Context, code string) (*Token, error) {
	params := map[string]string{
		"redirect_uri": c.cfg.RedirectURL,
		"grant_type":   "authorization_code",
		"code":         code,
	}
	if !c.cfg.BasicAuth {
		params["client_id"] = c.cfg.ClientID
	}
	stripEmpty(params)

	form := url.Values{}
	for k, v := range params {
		form.Set(k, v)
	}

	var req *http.Request
	var err error
	if strings.EqualFold(c.cfg.TokenMethod, http.MethodGet) {
		req, err = http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.TokenURL+"?"+form.Encode(), nil)
	} else {
		req, err = http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.TokenURL, strings.NewReader(form.Encode()))
		if err == nil {
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		}
	}
	if err != nil {
		return nil, err
	}
	if c.cfg.BasicAuth {
		req.SetBasicAuth(c.cfg.ClientID, c.cfg.ClientSecret)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, &TokenExchangeError{Status: resp.StatusCode, Body: string(body)}
	}

	data := parseTokenBody(resp.Header.Get("Content-Type"), body)
	access, _ := data["access_token"].(string)
	if access == "" {
		return nil, &TokenExchangeError{Status: resp.StatusCode, Body: string(body)}
	}

	tok := &Token{AccessToken: access}
	if v, ok := data["refresh_token"].(string); ok {
		tok.RefreshToken = v
	}
	if v, ok := data["token_type"].(string); ok {
		tok.TokenType = v
	}
	if secs, ok := expiresIn(data["expires_in"]); ok {
		tok.ExpiresAt = time.Now().Add(time.Duration(secs) * time.Second)
	}
	return tok, nil
}

// UserInfo fetches the userinfo claims with a bearer token. The subject claim
// is renamed from "sub" to "id"; all other claims pass through unchanged.
func (c *Client) UserInfo(ctx context.Context, accessToken string) (claims.Set, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.UserInfoURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return nil, &ProviderHTTPError{Endpoint: "userinfo", Status: resp.StatusCode, Body: string(body)}
	}

	var set claims.Set
	if err := json.NewDecoder(resp.Body).Decode(&set); err != nil {
		return nil, fmt.Errorf("wso2: decode userinfo: %w", err)
	}

	if sub, ok := set["sub"]; ok {
		set["id"] = sub
		delete(set, "sub")
	}
	return set, nil
}

// parseTokenBody decodes a token endpoint response. JSON when the
// content-type says so or the body looks like it (some servers send JSON as
// text/plain); url-encoded form data otherwise.
func parseTokenBody(contentType string, body []byte) map[string]any {
	ct := strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0])
	if strings.EqualFold(ct, "application/json") || strings.HasPrefix(string(body), `{"`) {
		var data map[string]any
		if err := json.Unmarshal(body, &data); err == nil {
			return data
		}
		return map[string]any{}
	}

	data := map[string]any{}
	values, err := url.ParseQuery(string(body))
	if err != nil {
		return data
	}
	for k := range values {
		data[k] = values.Get(k)
	}
	return data
}

// expiresIn normalizes the expires_in claim, which arrives as a JSON number
// or as a string depending on the body encoding.
func expiresIn(v any) (int64, bool) {
	switch n := v.(type) {
	case float64:
		if n > 0 {
			return int64(n), true
		}
	case string:
		var secs int64
		if _, err := fmt.Sscanf(strings.TrimSpace(n), "%d", &secs); err == nil && secs > 0 {
			return secs, true
		}
	}
	return 0, false
}

// stripEmpty removes empty-string parameters. WSO2 rejects requests carrying
// an empty scope rather than ignoring it.
func stripEmpty(params map[string]string) {
	for k, v := range params {
		if v == "" {
			delete(params, k)
		}
	}
}
