// Package auth implementa los services del flujo de login social.
package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"

	"github.com/dropDatabas3/wso2gate/internal/claims"
	"github.com/dropDatabas3/wso2gate/internal/oauth/wso2"
	"github.com/dropDatabas3/wso2gate/internal/observability/logger"
)

// StartService handles the start phase of social login.
type StartService interface {
	// Start initiates the login flow and returns the provider redirect URL.
	Start(ctx context.Context, req StartRequest) (*StartResult, error)
}

// StartRequest contains the parameters for starting the login.
type StartRequest struct {
	// RedirectURI is where the application wants the user sent after the
	// callback completes. Optional; empty means the callback answers JSON.
	RedirectURI string

	// Extra are caller-supplied authorize parameters. They override the
	// defaults on key collision.
	Extra map[string]string
}

// StartResult contains the result of starting the login.
type StartResult struct {
	RedirectURL string
}

// Errors for the start service.
var (
	ErrStartStateFailed = errors.New("failed to sign state")
)

type startService struct {
	client *wso2.Client
	signer StateSigner
}

// NewStartService creates a StartService over the provider client.
func NewStartService(client *wso2.Client, signer StateSigner) StartService {
	return &startService{client: client, signer: signer}
}

func (s *startService) Start(ctx context.Context, req StartRequest) (*StartResult, error) {
	log := logger.From(ctx).With(logger.Layer("service"), logger.Component("auth.start"))

	nonce, err := generateNonce(16)
	if err != nil {
		return nil, ErrStartStateFailed
	}

	state, err := s.signer.SignState(StateClaims{
		Provider:    claims.WSO2ProviderID,
		RedirectURI: req.RedirectURI,
		Nonce:       nonce,
	})
	if err != nil {
		log.Error("state signing failed", logger.Err(err))
		return nil, ErrStartStateFailed
	}

	url := s.client.AuthURL(state, req.Extra)
	log.Debug("login started", logger.Provider(claims.WSO2ProviderID))

	return &StartResult{RedirectURL: url}, nil
}

func generateNonce(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
