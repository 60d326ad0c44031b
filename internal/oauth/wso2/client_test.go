package wso2

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func baseConfig() Config {
	return Config{
		BaseURL:      "https://idp.example.org",
		ClientID:     "client-1",
		ClientSecret: "secret-1",
		RedirectURL:  "https://app.example.org/callback",
	}
}

func TestNew_Defaults(t *testing.T) {
	c := New(baseConfig())

	assert.Equal(t, "https://idp.example.org/oauth2/authorize", c.cfg.AuthorizeURL)
	assert.Equal(t, "https://idp.example.org/oauth2/token", c.cfg.TokenURL)
	assert.Equal(t, "https://idp.example.org/oauth2/userinfo", c.cfg.UserInfoURL)
	assert.Equal(t, http.MethodPost, c.cfg.TokenMethod)
	assert.Equal(t, []string{"openid"}, c.cfg.Scopes)
}

func TestAuthURL(t *testing.T) {
	c := New(baseConfig())

	raw := c.AuthURL("st4te", map[string]string{"prompt": "login"})
	u, err := url.Parse(raw)
	require.NoError(t, err)

	q := u.Query()
	assert.Equal(t, "client-1", q.Get("client_id"))
	assert.Equal(t, "https://app.example.org/callback", q.Get("redirect_uri"))
	assert.Equal(t, "openid", q.Get("scope"))
	assert.Equal(t, "code", q.Get("response_type"))
	assert.Equal(t, "st4te", q.Get("state"))
	assert.Equal(t, "login", q.Get("prompt"))
}

func TestAuthURL_ExtraOverridesAndStripsEmpty(t *testing.T) {
	c := New(baseConfig())

	raw := c.AuthURL("", map[string]string{
		"scope":        "openid profile",
		"redirect_uri": "",
	})
	u, err := url.Parse(raw)
	require.NoError(t, err)

	q := u.Query()
	assert.Equal(t, "openid profile", q.Get("scope"))
	assert.False(t, q.Has("redirect_uri"), "empty override should drop the param")
	assert.False(t, q.Has("state"))
}

func TestExchangeCode_JSONBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "authorization_code", r.PostForm.Get("grant_type"))
		assert.Equal(t, "abc123", r.PostForm.Get("code"))
		assert.Equal(t, "client-1", r.PostForm.Get("client_id"))
		assert.Empty(t, r.PostForm.Get("client_secret"), "secret must never travel in the body")

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"tok","refresh_token":"ref","token_type":"Bearer","expires_in":3600}`))
	}))
	defer srv.Close()

	cfg := baseConfig()
	cfg.TokenURL = srv.URL
	c := New(cfg)

	tok, err := c.ExchangeCode(context.Background(), "abc123")
	require.NoError(t, err)
	assert.Equal(t, "tok", tok.AccessToken)
	assert.Equal(t, "ref", tok.RefreshToken)
	assert.Equal(t, "Bearer", tok.TokenType)
	assert.WithinDuration(t, time.Now().Add(time.Hour), tok.ExpiresAt, 10*time.Second)
}

func TestExchangeCode_FormBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/x-www-form-urlencoded")
		w.Write([]byte("access_token=tok&token_type=Bearer&expires_in=120"))
	}))
	defer srv.Close()

	cfg := baseConfig()
	cfg.TokenURL = srv.URL
	c := New(cfg)

	tok, err := c.ExchangeCode(context.Background(), "abc123")
	require.NoError(t, err)
	assert.Equal(t, "tok", tok.AccessToken)
	assert.Equal(t, "Bearer", tok.TokenType)
	assert.WithinDuration(t, time.Now().Add(2*time.Minute), tok.ExpiresAt, 10*time.Second)
}

func TestExchangeCode_JSONAsTextPlain(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte(`{"access_token":"tok"}`))
	}))
	defer srv.Close()

	cfg := baseConfig()
	cfg.TokenURL = srv.URL
	c := New(cfg)

	tok, err := c.ExchangeCode(context.Background(), "abc123")
	require.NoError(t, err)
	assert.Equal(t, "tok", tok.AccessToken)
	assert.True(t, tok.ExpiresAt.IsZero())
}

func TestExchangeCode_GETMethod(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "abc123", r.URL.Query().Get("code"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"tok"}`))
	}))
	defer srv.Close()

	cfg := baseConfig()
	cfg.TokenURL = srv.URL
	cfg.TokenMethod = "GET"
	c := New(cfg)

	tok, err := c.ExchangeCode(context.Background(), "abc123")
	require.NoError(t, err)
	assert.Equal(t, "tok", tok.AccessToken)
}

func TestExchangeCode_BasicAuth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		require.True(t, ok)
		assert.Equal(t, "client-1", user)
		assert.Equal(t, "secret-1", pass)

		require.NoError(t, r.ParseForm())
		assert.Empty(t, r.PostForm.Get("client_id"), "client_id moves to the header in basic-auth mode")

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"tok"}`))
	}))
	defer srv.Close()

	cfg := baseConfig()
	cfg.TokenURL = srv.URL
	cfg.BasicAuth = true
	c := New(cfg)

	_, err := c.ExchangeCode(context.Background(), "abc123")
	require.NoError(t, err)
}

func TestExchangeCode_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"invalid_grant"}`))
	}))
	defer srv.Close()

	cfg := baseConfig()
	cfg.TokenURL = srv.URL
	c := New(cfg)

	_, err := c.ExchangeCode(context.Background(), "stale")
	var exchErr *TokenExchangeError
	require.ErrorAs(t, err, &exchErr)
	assert.Equal(t, http.StatusBadRequest, exchErr.Status)
	assert.Contains(t, exchErr.Body, "invalid_grant")
}

func TestExchangeCode_MissingAccessToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"token_type":"Bearer"}`))
	}))
	defer srv.Close()

	cfg := baseConfig()
	cfg.TokenURL = srv.URL
	c := New(cfg)

	_, err := c.ExchangeCode(context.Background(), "abc123")
	var exchErr *TokenExchangeError
	require.ErrorAs(t, err, &exchErr)
}

func TestUserInfo_RenamesSub(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"sub":"jdoe","email":"jdoe@example.org","reparto":"IT"}`))
	}))
	defer srv.Close()

	cfg := baseConfig()
	cfg.UserInfoURL = srv.URL
	c := New(cfg)

	set, err := c.UserInfo(context.Background(), "tok")
	require.NoError(t, err)

	assert.Equal(t, "jdoe", set["id"])
	assert.NotContains(t, set, "sub")
	assert.Equal(t, "jdoe@example.org", set["email"])
	assert.Equal(t, "IT", set["reparto"])
}

func TestUserInfo_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte("expired token"))
	}))
	defer srv.Close()

	cfg := baseConfig()
	cfg.UserInfoURL = srv.URL
	c := New(cfg)

	_, err := c.UserInfo(context.Background(), "tok")
	var httpErr *ProviderHTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, "userinfo", httpErr.Endpoint)
	assert.Equal(t, http.StatusUnauthorized, httpErr.Status)
	assert.True(t, strings.Contains(httpErr.Body, "expired"))
}
