// Package claims holds the per-login claim set returned by the identity
// provider and the logic that normalizes it into profile fields.
package claims

import "strings"

// Set is the raw claim map for one login attempt. Values are strings for
// ordinary claims but may be bools or lists depending on the provider.
// A Set never outlives the login request that produced it.
type Set map[string]any

// String returns the trimmed string value for key, or "" when the claim is
// absent or not a string.
func (s Set) String(key string) string {
	if v, ok := s[key].(string); ok {
		return strings.TrimSpace(v)
	}
	return ""
}

// Has reports whether the claim is present.
func (s Set) Has(key string) bool {
	_, ok := s[key]
	return ok
}

// Clone returns a shallow copy of the set.
func (s Set) Clone() Set {
	out := make(Set, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// Common is the canonical field set derived once per login.
type Common struct {
	Username     string
	Email        string
	FullName     string
	FirstName    string
	LastName     string
	Country      string
	Organization string

	// Extra carries every claim not mapped to a field above, verbatim
	// (string values trimmed, everything else untouched).
	Extra Set
}

// ExtractCommon derives the canonical fields from a claim set.
//
// Username is the subject id. Email falls back to the id when blank
// (some WSO2 tenants use the fiscal code as subject and omit email).
// First/last name come from given_name/family_name when present, else from
// splitting preferred_username on a single interior space.
// The function is idempotent: same input, same output.
func ExtractCommon(s Set) Common {
	id := s.String("id")

	fullName := s.String("preferred_username")
	var firstName, lastName string
	if strings.Count(fullName, " ") == 1 {
		parts := strings.SplitN(fullName, " ", 2)
		firstName, lastName = parts[0], parts[1]
	} else {
		firstName, lastName = fullName, ""
	}
	if v := s.String("given_name"); v != "" {
		firstName = v
	}
	if v := s.String("family_name"); v != "" {
		lastName = v
	}

	email := s.String("email")
	if email == "" {
		email = id
	}

	c := Common{
		Username:     id,
		Email:        email,
		FullName:     fullName,
		FirstName:    firstName,
		LastName:     lastName,
		Country:      s.String("country"),
		Organization: s.String("organization"),
		Extra:        Set{},
	}

	mapped := map[string]bool{
		"id": true, "email": true, "preferred_username": true,
		"given_name": true, "family_name": true,
		"country": true, "organization": true,
	}
	for k, v := range s {
		if mapped[k] {
			continue
		}
		if sv, ok := v.(string); ok {
			c.Extra[k] = strings.TrimSpace(sv)
		} else {
			c.Extra[k] = v
		}
	}
	return c
}

// ParseFlag parses common truthy strings case-insensitively.
// The WSO2 manager flag arrives as free text ("True", "TRUE", "si", ...).
func ParseFlag(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "true", "t", "1", "yes", "y", "si", "sì":
		return true
	}
	return false
}
