package wso2

import "fmt"

// TokenExchangeError reports a failed code-for-token exchange: bad HTTP
// status or a body without an access_token. Body carries the raw response
// for diagnostics.
type TokenExchangeError struct {
	Status int
	Body   string
}

func (e *TokenExchangeError) Error() string {
	return fmt.Sprintf("wso2: error retrieving access token (http %d): %s", e.Status, e.Body)
}

// ProviderHTTPError reports a non-2xx answer from a provider endpoint other
// than the token endpoint. It propagates as-is, never retried.
type ProviderHTTPError struct {
	Endpoint string
	Status   int
	Body     string
}

func (e *ProviderHTTPError) Error() string {
	return fmt.Sprintf("wso2: %s returned http %d: %s", e.Endpoint, e.Status, e.Body)
}
