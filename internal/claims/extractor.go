package claims

import "errors"

// Profile field identifiers attempted on every login. The list is fixed:
// a provider extractor may cover any subset of it.
const (
	FieldEmail             = "email"
	FieldFirstName         = "first_name"
	FieldLastName          = "last_name"
	FieldCountry           = "country"
	FieldCity              = "city"
	FieldZipcode           = "zipcode"
	FieldOrganization      = "organization"
	FieldVoice             = "voice"
	FieldGroups            = "groups"
	FieldRoles             = "roles"
	FieldKeywords          = "keywords"
	FieldPreferredUsername = "preferred_username"
	FieldEmployeeNumber    = "employee_number"
	FieldFiscalCode        = "fiscal_code"
	FieldDepartment        = "department"
	FieldAuthMethod        = "auth_method"
	FieldIsManager         = "is_manager"
	FieldLanguage          = "language"
	FieldTimezone          = "timezone"
)

// FieldFunc extracts one named profile field from a raw claim set.
type FieldFunc func(Set) (string, error)

// Extractor maps field identifiers to extraction functions for one provider.
// A missing entry means the provider does not supply that field; that is not
// an error.
type Extractor map[string]FieldFunc

// Extract runs the field function for the given field. It returns ok=false
// when the provider has no extractor for the field or the extraction fails;
// both cases are silent skips per contract, the login never aborts on them.
func (e Extractor) Extract(field string, s Set) (string, bool) {
	fn, ok := e[field]
	if !ok || fn == nil {
		return "", false
	}
	v, err := fn(s)
	if err != nil {
		return "", false
	}
	return v, true
}

// Registry maps a provider identifier to its extractor.
type Registry map[string]Extractor

// Lookup returns the extractor for the provider, if one is configured.
func (r Registry) Lookup(provider string) (Extractor, bool) {
	e, ok := r[provider]
	return e, ok
}

// errClaimType signals a claim whose value has an unusable type.
var errClaimType = errors.New("claims: unexpected claim type")

// claimString builds a FieldFunc that returns a claim verbatim (trimmed).
func claimString(key string) FieldFunc {
	return func(s Set) (string, error) {
		if s.Has(key) {
			if _, isStr := s[key].(string); !isStr {
				return "", errClaimType
			}
		}
		return s.String(key), nil
	}
}

// WSO2ProviderID identifies the WSO2 OpenID provider in the registry.
const WSO2ProviderID = "wso2_openid"

// NewWSO2Extractor returns the extractor for claims as WSO2 emits them.
func NewWSO2Extractor() Extractor {
	return Extractor{
		FieldEmail:             claimString("email"),
		FieldFirstName:         claimString("first_name"),
		FieldLastName:          claimString("last_name"),
		FieldCity:              claimString("city"),
		FieldZipcode:           claimString("postal_code"),
		FieldOrganization:      claimString("organization"),
		FieldVoice:             claimString("phone"),
		FieldGroups:            claimString("groups"),
		FieldRoles:             claimString("roles"),
		FieldPreferredUsername: claimString("preferred_username"),
		FieldEmployeeNumber:    claimString("employee_number"),
		FieldFiscalCode:        claimString("fiscal_code"),
		FieldDepartment:        claimString("department"),
		FieldAuthMethod:        claimString("authmethod"),
		FieldIsManager:         claimString("isdirigente"),
		FieldCountry: func(s Set) (string, error) {
			return CountryCode(s.String("country")), nil
		},
		FieldLanguage: func(s Set) (string, error) {
			return LanguageCode(s.String("language")), nil
		},
		FieldTimezone: func(s Set) (string, error) {
			return TimezoneCode(s.String("timezone")), nil
		},
		// FieldKeywords deliberately absent: keywords are list-valued and
		// handled by ExtractKeywords.
	}
}

// ExtractKeywords pulls the list-valued keywords claim. Keywords feed the
// profile tag list, not a scalar field, so they bypass Extract.
func ExtractKeywords(s Set) []string {
	var out []string
	switch v := s["keywords"].(type) {
	case []string:
		out = append(out, v...)
	case []any:
		for _, item := range v {
			if kw, ok := item.(string); ok && kw != "" {
				out = append(out, kw)
			}
		}
	case string:
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

// NewRegistry returns the default provider registry.
func NewRegistry() Registry {
	return Registry{
		WSO2ProviderID: NewWSO2Extractor(),
	}
}
