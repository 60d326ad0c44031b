// Package auth define los DTOs del flujo de login social.
package auth

// ExchangeRequest es el body de POST /auth/wso2/exchange.
type ExchangeRequest struct {
	Code string `json:"code"`
}

// GroupMembership describe la membresía resultante del login.
type GroupMembership struct {
	Slug  string `json:"slug"`
	Title string `json:"title"`
	Role  string `json:"role"`
}

// LoginResult es el payload que el exchange entrega a la aplicación.
type LoginResult struct {
	Provider   string           `json:"provider"`
	Username   string           `json:"username"`
	Email      string           `json:"email"`
	FirstName  string           `json:"first_name,omitempty"`
	LastName   string           `json:"last_name,omitempty"`
	Department string           `json:"department,omitempty"`
	Active     bool             `json:"active"`
	Group      *GroupMembership `json:"group,omitempty"`
}
