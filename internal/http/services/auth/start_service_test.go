package auth

import (
	"context"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/wso2gate/internal/oauth/wso2"
)

func TestStart_BuildsAuthorizeURL(t *testing.T) {
	client := wso2.New(wso2.Config{
		BaseURL:     "https://idp.example.org",
		ClientID:    "client-1",
		RedirectURL: "https://app.example.org/callback",
	})
	signer := NewHMACStateSigner("test-secret", 5*time.Minute)
	svc := NewStartService(client, signer)

	res, err := svc.Start(context.Background(), StartRequest{
		RedirectURI: "https://app.example.org/done",
		Extra:       map[string]string{"prompt": "login"},
	})
	require.NoError(t, err)

	u, err := url.Parse(res.RedirectURL)
	require.NoError(t, err)
	assert.Equal(t, "idp.example.org", u.Host)
	assert.Equal(t, "/oauth2/authorize", u.Path)

	q := u.Query()
	assert.Equal(t, "client-1", q.Get("client_id"))
	assert.Equal(t, "code", q.Get("response_type"))
	assert.Equal(t, "login", q.Get("prompt"))

	// El state firmado trae el redirect y un nonce fresco.
	claims, err := signer.ParseState(q.Get("state"))
	require.NoError(t, err)
	assert.Equal(t, "wso2_openid", claims.Provider)
	assert.Equal(t, "https://app.example.org/done", claims.RedirectURI)
	assert.NotEmpty(t, claims.Nonce)
}

func TestStart_FreshNoncePerRequest(t *testing.T) {
	client := wso2.New(wso2.Config{BaseURL: "https://idp.example.org", ClientID: "c"})
	signer := NewHMACStateSigner("test-secret", 5*time.Minute)
	svc := NewStartService(client, signer)

	first, err := svc.Start(context.Background(), StartRequest{})
	require.NoError(t, err)
	second, err := svc.Start(context.Background(), StartRequest{})
	require.NoError(t, err)

	c1, err := signer.ParseState(stateParam(t, first.RedirectURL))
	require.NoError(t, err)
	c2, err := signer.ParseState(stateParam(t, second.RedirectURL))
	require.NoError(t, err)
	assert.NotEqual(t, c1.Nonce, c2.Nonce)
}

func stateParam(t *testing.T, raw string) string {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	return u.Query().Get("state")
}
