package auth

import (
	"errors"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
)

// StateClaims contains the claims carried across the OAuth redirect.
type StateClaims struct {
	Provider    string
	RedirectURI string
	Nonce       string
}

// StateAudience is the expected audience for login state tokens.
const StateAudience = "wso2-state"

// StateSigner signs and validates the OAuth state parameter.
type StateSigner interface {
	SignState(claims StateClaims) (string, error)
	ParseState(tokenString string) (*StateClaims, error)
}

// Errors for state operations.
var (
	ErrStateInvalid  = errors.New("invalid state token")
	ErrStateExpired  = errors.New("state token expired")
	ErrStateAudience = errors.New("state audience mismatch")
)

// HMACStateSigner implements StateSigner with HS256 over a shared secret.
type HMACStateSigner struct {
	Secret []byte
	TTL    time.Duration
}

// NewHMACStateSigner creates a signer. ttl<=0 defaults to 10 minutes.
func NewHMACStateSigner(secret string, ttl time.Duration) *HMACStateSigner {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &HMACStateSigner{Secret: []byte(secret), TTL: ttl}
}

// SignState signs a state JWT.
func (s *HMACStateSigner) SignState(claims StateClaims) (string, error) {
	now := time.Now().UTC()
	mapClaims := jwtv5.MapClaims{
		"aud":      StateAudience,
		"exp":      now.Add(s.TTL).Unix(),
		"iat":      now.Unix(),
		"nbf":      now.Unix(),
		"provider": claims.Provider,
		"nonce":    claims.Nonce,
	}
	if claims.RedirectURI != "" {
		mapClaims["redir"] = claims.RedirectURI
	}

	tk := jwtv5.NewWithClaims(jwtv5.SigningMethodHS256, mapClaims)
	return tk.SignedString(s.Secret)
}

// ParseState parses and validates a state JWT.
func (s *HMACStateSigner) ParseState(tokenString string) (*StateClaims, error) {
	tk, err := jwtv5.Parse(tokenString,
		func(*jwtv5.Token) (any, error) { return s.Secret, nil },
		jwtv5.WithValidMethods([]string{"HS256"}),
	)
	if err != nil {
		if errors.Is(err, jwtv5.ErrTokenExpired) {
			return nil, ErrStateExpired
		}
		return nil, ErrStateInvalid
	}
	if !tk.Valid {
		return nil, ErrStateInvalid
	}

	mapClaims, ok := tk.Claims.(jwtv5.MapClaims)
	if !ok {
		return nil, ErrStateInvalid
	}

	if aud, _ := mapClaims["aud"].(string); aud != StateAudience {
		return nil, ErrStateAudience
	}

	return &StateClaims{
		Provider:    getString(mapClaims, "provider"),
		RedirectURI: getString(mapClaims, "redir"),
		Nonce:       getString(mapClaims, "nonce"),
	}, nil
}

func getString(m map[string]any, key string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}
