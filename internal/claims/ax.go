package claims

import "strings"

// Some WSO2 tenants return profile attributes the attribute-exchange way:
// paired "type.<key>" / "value.<key>" claims where the type claim carries an
// axschema URI. Summarize folds those pairs into named claims so the rest of
// the pipeline never sees the paired form.

type axAttribute struct {
	field string
	uri   string
}

var axAttributes = []axAttribute{
	{"realname", "http://axschema.org/namePerson"},
	{"first_name", "http://axschema.org/namePerson/first"},
	{"last_name", "http://axschema.org/namePerson/last"},
	{"email", "http://axschema.org/contact/email"},
	{"admin", "http://axschema.org/identity/isAdmin"},
	{"groups", "http://axschema.org/claims/groups"},
	{"roles", "http://axschema.org/claims/roles"},
	{"country", "http://axschema.org/contact/country/home"},
	{"organization", "http://axschema.org/contact/organization"},
	{"nickname", "http://axschema.org/namePerson/friendly"},
	{"birthday", "http://axschema.org/birthDate"},
	{"gender", "http://axschema.org/person/gender"},
	{"postal_code", "http://axschema.org/contact/postalCode/home"},
	{"timezone", "http://axschema.org/pref/timezone"},
	{"language", "http://axschema.org/pref/language"},
	{"name_prefix", "http://axschema.org/namePerson/prefix"},
	{"middle_name", "http://axschema.org/namePerson/middle"},
	{"name_suffix", "http://axschema.org/namePerson/suffix"},
	{"web", "http://axschema.org/contact/web/default"},
	{"thumbnail", "http://axschema.org/media/image/default"},
	{"phone", "http://axschema.org/contact/phone/default"},
}

// Summarize resolves type./value. attribute pairs into named claims and tags
// the set with the provider keywords. The input set is not modified.
func Summarize(s Set) Set {
	out := s.Clone()
	out["keywords"] = []string{"OpenID", "WSO2"}

	// key suffix -> attribute URI
	uris := map[string]string{}
	for k, v := range s {
		if !strings.HasPrefix(k, "type.") {
			continue
		}
		if uri, ok := v.(string); ok {
			uris[strings.TrimPrefix(k, "type.")] = uri
		}
	}

	for key, uri := range uris {
		for _, attr := range axAttributes {
			if uri != attr.uri {
				continue
			}
			if v, ok := s["value."+key]; ok {
				out[attr.field] = v
			}
			break
		}
	}
	return out
}
