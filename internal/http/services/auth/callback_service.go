package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/dropDatabas3/wso2gate/internal/audit"
	"github.com/dropDatabas3/wso2gate/internal/cache"
	"github.com/dropDatabas3/wso2gate/internal/claims"
	dtoauth "github.com/dropDatabas3/wso2gate/internal/http/dto/auth"
	"github.com/dropDatabas3/wso2gate/internal/oauth/wso2"
	"github.com/dropDatabas3/wso2gate/internal/observability/logger"
	"github.com/dropDatabas3/wso2gate/internal/provision"
)

// CallbackService handles the callback phase of social login.
type CallbackService interface {
	// Callback processes the OAuth callback. It exchanges the provider code,
	// provisions the account and stashes a one-shot login code.
	Callback(ctx context.Context, req CallbackRequest) (*CallbackResult, error)
}

// CallbackRequest contains the parameters of the provider callback.
type CallbackRequest struct {
	State string
	Code  string
}

// CallbackResult contains the outcome of callback processing.
type CallbackResult struct {
	// If RedirectURL is set, the controller should redirect there.
	RedirectURL string
	// Otherwise the controller answers this payload as JSON.
	Result *dtoauth.LoginResult
	// Active reports whether the account ended the login activated.
	Active bool
}

// Errors for the callback service.
var (
	ErrCallbackMissingState     = errors.New("missing state")
	ErrCallbackMissingCode      = errors.New("missing code")
	ErrCallbackInvalidState     = errors.New("invalid state")
	ErrCallbackProviderMismatch = errors.New("provider mismatch")
	ErrCallbackExchangeFailed   = errors.New("code exchange failed")
	ErrCallbackUserInfoFailed   = errors.New("userinfo fetch failed")
	ErrCallbackProvisionFailed  = errors.New("account provisioning failed")
	ErrCallbackStashFailed      = errors.New("login code stash failed")
)

const loginCodePrefix = "social:code:"

// CallbackDeps contains the dependencies of the callback service.
type CallbackDeps struct {
	Client       *wso2.Client
	Signer       StateSigner
	Engine       *provision.Engine
	Cache        cache.Client
	LoginCodeTTL time.Duration
}

type callbackService struct {
	client       *wso2.Client
	signer       StateSigner
	engine       *provision.Engine
	cache        cache.Client
	loginCodeTTL time.Duration
}

// NewCallbackService creates a CallbackService.
func NewCallbackService(d CallbackDeps) CallbackService {
	ttl := d.LoginCodeTTL
	if ttl <= 0 {
		ttl = 60 * time.Second
	}
	return &callbackService{
		client:       d.Client,
		signer:       d.Signer,
		engine:       d.Engine,
		cache:        d.Cache,
		loginCodeTTL: ttl,
	}
}

func (s *callbackService) Callback(ctx context.Context, req CallbackRequest) (*CallbackResult, error) {
	log := logger.From(ctx).With(logger.Layer("service"), logger.Component("auth.callback"))

	if req.State == "" {
		return nil, ErrCallbackMissingState
	}
	if req.Code == "" {
		return nil, ErrCallbackMissingCode
	}

	stateClaims, err := s.signer.ParseState(req.State)
	if err != nil {
		log.Warn("state validation failed", logger.Err(err))
		return nil, fmt.Errorf("%w: %v", ErrCallbackInvalidState, err)
	}
	if stateClaims.Provider != claims.WSO2ProviderID {
		log.Warn("provider mismatch", logger.Provider(stateClaims.Provider))
		return nil, ErrCallbackProviderMismatch
	}
	if stateClaims.Nonce == "" {
		return nil, ErrCallbackInvalidState
	}

	token, err := s.client.ExchangeCode(ctx, req.Code)
	if err != nil {
		log.Error("code exchange failed", logger.Err(err))
		return nil, fmt.Errorf("%w: %v", ErrCallbackExchangeFailed, err)
	}

	set, err := s.client.UserInfo(ctx, token.AccessToken)
	if err != nil {
		log.Error("userinfo fetch failed", logger.Err(err))
		return nil, fmt.Errorf("%w: %v", ErrCallbackUserInfoFailed, err)
	}

	// Attribute-exchange shaped payloads collapse into named claims here.
	set = claims.Summarize(set)

	res, err := s.engine.Login(ctx, claims.WSO2ProviderID, set)
	if err != nil {
		log.Error("provisioning failed", logger.Err(err))
		return nil, fmt.Errorf("%w: %v", ErrCallbackProvisionFailed, err)
	}

	auditEvent := audit.EventLoginCompleted
	if !res.Profile.IsActive {
		auditEvent = audit.EventLoginDenied
	}
	audit.Log(auditEvent,
		logger.Provider(claims.WSO2ProviderID),
		logger.Username(res.Profile.Username),
		logger.Department(res.Profile.Department),
		logger.Bool("active", res.Profile.IsActive),
	)

	result := &dtoauth.LoginResult{
		Provider:   claims.WSO2ProviderID,
		Username:   res.Profile.Username,
		Email:      res.Profile.Email,
		FirstName:  res.Profile.FirstName,
		LastName:   res.Profile.LastName,
		Department: res.Profile.Department,
		Active:     res.Profile.IsActive,
	}
	if res.Membership != nil {
		result.Group = &dtoauth.GroupMembership{
			Slug:  res.Membership.GroupSlug,
			Title: res.Membership.GroupTitle,
			Role:  string(res.Membership.Role),
		}
	}

	if stateClaims.RedirectURI == "" {
		return &CallbackResult{Result: result, Active: result.Active}, nil
	}

	// Redirect flow: stash the result behind a one-shot login code so tokens
	// and profile data never travel in the URL.
	loginCode, err := generateNonce(32)
	if err != nil {
		return nil, ErrCallbackStashFailed
	}
	payload, err := json.Marshal(result)
	if err != nil {
		return nil, ErrCallbackStashFailed
	}
	if err := s.cache.Set(ctx, loginCodePrefix+loginCode, string(payload), s.loginCodeTTL); err != nil {
		log.Error("login code stash failed", logger.Err(err))
		return nil, fmt.Errorf("%w: %v", ErrCallbackStashFailed, err)
	}

	log.Info("login code stored",
		logger.Username(result.Username),
		logger.String("code_prefix", loginCode[:8]),
	)

	return &CallbackResult{
		RedirectURL: appendLoginCode(stateClaims.RedirectURI, loginCode),
		Active:      result.Active,
	}, nil
}

func appendLoginCode(redirect, code string) string {
	u, err := url.Parse(redirect)
	if err != nil {
		return redirect
	}
	q := u.Query()
	q.Set("code", code)
	q.Set("social", "true") // marker so the SDK can tell social callbacks apart
	u.RawQuery = q.Encode()
	return u.String()
}
