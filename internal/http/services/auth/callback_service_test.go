package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/wso2gate/internal/cache"
	"github.com/dropDatabas3/wso2gate/internal/claims"
	"github.com/dropDatabas3/wso2gate/internal/domain/repository"
	"github.com/dropDatabas3/wso2gate/internal/oauth/wso2"
	"github.com/dropDatabas3/wso2gate/internal/provision"
	"github.com/dropDatabas3/wso2gate/internal/store/memory"
)

// fakeIDP serves the token and userinfo endpoints of a WSO2-shaped provider.
func fakeIDP(t *testing.T, userinfo string) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/oauth2/token", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"tok","token_type":"Bearer"}`))
	})
	mux.HandleFunc("/oauth2/userinfo", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(userinfo))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func claimsRegistry() claims.Registry { return claims.NewRegistry() }

func loginCodeFromURL(t *testing.T, raw string) string {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	code := u.Query().Get("code")
	require.NotEmpty(t, code)
	return code
}

type callbackFixture struct {
	svc    CallbackService
	signer *HMACStateSigner
	cache  cache.Client
	store  *memory.Store
}

func newCallbackFixture(t *testing.T, userinfo string) *callbackFixture {
	t.Helper()
	srv := fakeIDP(t, userinfo)

	client := wso2.New(wso2.Config{
		BaseURL:     srv.URL,
		ClientID:    "client-1",
		RedirectURL: srv.URL + "/callback",
	})

	st := memory.New()
	require.NoError(t, st.Departments().Upsert(context.Background(), &repository.Department{
		Name:      "IT",
		Label:     "Information Technology",
		IsAllowed: true,
	}))

	engine := provision.New(st, claimsRegistry(), provision.Policy{}, nil)
	signer := NewHMACStateSigner("test-secret", 5*time.Minute)
	c := cache.NewMemory("test")

	svc := NewCallbackService(CallbackDeps{
		Client:       client,
		Signer:       signer,
		Engine:       engine,
		Cache:        c,
		LoginCodeTTL: time.Minute,
	})
	return &callbackFixture{svc: svc, signer: signer, cache: c, store: st}
}

const userinfoJane = `{
	"sub": "u1",
	"email": "jane@example.org",
	"preferred_username": "Jane Doe",
	"department": "IT"
}`

func TestCallback_JSONFlow(t *testing.T) {
	fx := newCallbackFixture(t, userinfoJane)

	state, err := fx.signer.SignState(StateClaims{Provider: "wso2_openid", Nonce: "n"})
	require.NoError(t, err)

	res, err := fx.svc.Callback(context.Background(), CallbackRequest{State: state, Code: "abc"})
	require.NoError(t, err)

	assert.Empty(t, res.RedirectURL)
	require.NotNil(t, res.Result)
	assert.Equal(t, "u1", res.Result.Username)
	assert.Equal(t, "jane@example.org", res.Result.Email)
	assert.True(t, res.Active)
	require.NotNil(t, res.Result.Group)
	assert.Equal(t, "IT", res.Result.Group.Slug)
	assert.Equal(t, "Information Technology", res.Result.Group.Title)
	assert.Equal(t, "member", res.Result.Group.Role)
}

func TestCallback_RedirectFlowStashesOneShotCode(t *testing.T) {
	fx := newCallbackFixture(t, userinfoJane)

	state, err := fx.signer.SignState(StateClaims{
		Provider:    "wso2_openid",
		RedirectURI: "https://app.example.org/done?next=/home",
		Nonce:       "n",
	})
	require.NoError(t, err)

	res, err := fx.svc.Callback(context.Background(), CallbackRequest{State: state, Code: "abc"})
	require.NoError(t, err)

	require.NotEmpty(t, res.RedirectURL)
	assert.Nil(t, res.Result, "profile data must not travel in the redirect")
	assert.Contains(t, res.RedirectURL, "https://app.example.org/done")
	assert.Contains(t, res.RedirectURL, "social=true")
	assert.Contains(t, res.RedirectURL, "next=%2Fhome")

	code := loginCodeFromURL(t, res.RedirectURL)

	// El código se canjea una sola vez.
	exch := NewExchangeService(fx.cache)
	result, err := exch.Exchange(context.Background(), code)
	require.NoError(t, err)
	assert.Equal(t, "u1", result.Username)
	assert.True(t, result.Active)

	_, err = exch.Exchange(context.Background(), code)
	assert.ErrorIs(t, err, ErrCodeNotFound)
}

func TestCallback_InactiveAccountStillCompletes(t *testing.T) {
	fx := newCallbackFixture(t, `{"sub":"u2","department":"Unknown"}`)

	state, err := fx.signer.SignState(StateClaims{Provider: "wso2_openid", Nonce: "n"})
	require.NoError(t, err)

	res, err := fx.svc.Callback(context.Background(), CallbackRequest{State: state, Code: "abc"})
	require.NoError(t, err)
	assert.False(t, res.Active)
	assert.Nil(t, res.Result.Group)
}

func TestCallback_MissingParameters(t *testing.T) {
	fx := newCallbackFixture(t, userinfoJane)

	_, err := fx.svc.Callback(context.Background(), CallbackRequest{Code: "abc"})
	assert.ErrorIs(t, err, ErrCallbackMissingState)

	state, _ := fx.signer.SignState(StateClaims{Provider: "wso2_openid", Nonce: "n"})
	_, err = fx.svc.Callback(context.Background(), CallbackRequest{State: state})
	assert.ErrorIs(t, err, ErrCallbackMissingCode)
}

func TestCallback_InvalidState(t *testing.T) {
	fx := newCallbackFixture(t, userinfoJane)

	_, err := fx.svc.Callback(context.Background(), CallbackRequest{State: "garbage", Code: "abc"})
	assert.ErrorIs(t, err, ErrCallbackInvalidState)
}

func TestCallback_ProviderMismatch(t *testing.T) {
	fx := newCallbackFixture(t, userinfoJane)

	state, err := fx.signer.SignState(StateClaims{Provider: "github", Nonce: "n"})
	require.NoError(t, err)

	_, err = fx.svc.Callback(context.Background(), CallbackRequest{State: state, Code: "abc"})
	assert.ErrorIs(t, err, ErrCallbackProviderMismatch)
}

func TestCallback_ExchangeFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"invalid_grant"}`))
	}))
	t.Cleanup(srv.Close)

	client := wso2.New(wso2.Config{BaseURL: srv.URL, ClientID: "client-1"})
	signer := NewHMACStateSigner("test-secret", 5*time.Minute)
	svc := NewCallbackService(CallbackDeps{
		Client: client,
		Signer: signer,
		Engine: provision.New(memory.New(), claimsRegistry(), provision.Policy{}, nil),
		Cache:  cache.NewMemory("test"),
	})

	state, err := signer.SignState(StateClaims{Provider: "wso2_openid", Nonce: "n"})
	require.NoError(t, err)

	_, err = svc.Callback(context.Background(), CallbackRequest{State: state, Code: "stale"})
	assert.ErrorIs(t, err, ErrCallbackExchangeFailed)
}
