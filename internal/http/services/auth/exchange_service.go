package auth

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/dropDatabas3/wso2gate/internal/cache"
	dtoauth "github.com/dropDatabas3/wso2gate/internal/http/dto/auth"
	"github.com/dropDatabas3/wso2gate/internal/observability/logger"
)

// ExchangeService redeems a one-shot login code for the login result.
type ExchangeService interface {
	Exchange(ctx context.Context, code string) (*dtoauth.LoginResult, error)
}

// Errors for the exchange service.
var (
	ErrCodeMissing    = errors.New("missing code")
	ErrCodeNotFound   = errors.New("code not found or expired")
	ErrPayloadInvalid = errors.New("stored payload invalid")
)

type exchangeService struct {
	cache cache.Client
}

// NewExchangeService creates an ExchangeService over the cache.
func NewExchangeService(c cache.Client) ExchangeService {
	return &exchangeService{cache: c}
}

func (s *exchangeService) Exchange(ctx context.Context, code string) (*dtoauth.LoginResult, error) {
	log := logger.From(ctx).With(logger.Layer("service"), logger.Component("auth.exchange"))

	if code == "" {
		return nil, ErrCodeMissing
	}

	key := loginCodePrefix + code
	payload, err := s.cache.Get(ctx, key)
	if err != nil {
		if cache.IsNotFound(err) {
			return nil, ErrCodeNotFound
		}
		return nil, err
	}

	// One-shot: the code dies on first read, success or not.
	if err := s.cache.Delete(ctx, key); err != nil {
		log.Warn("login code delete failed", logger.Err(err))
	}

	var result dtoauth.LoginResult
	if err := json.Unmarshal([]byte(payload), &result); err != nil {
		log.Error("stored payload unmarshal failed", logger.Err(err))
		return nil, ErrPayloadInvalid
	}

	log.Debug("login code exchanged", logger.Username(result.Username))
	return &result, nil
}
