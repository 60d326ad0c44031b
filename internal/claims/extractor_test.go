package claims

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractor_SilentSkips(t *testing.T) {
	e := NewWSO2Extractor()

	// Campo sin extractor configurado.
	_, ok := e.Extract(FieldKeywords, Set{"keywords": []string{"a"}})
	assert.False(t, ok)

	// Claim con tipo inesperado: skip, nunca error.
	_, ok = e.Extract(FieldEmail, Set{"email": 42})
	assert.False(t, ok)

	// Claim ausente: valor vacío pero ok.
	v, ok := e.Extract(FieldEmail, Set{})
	assert.True(t, ok)
	assert.Equal(t, "", v)
}

func TestWSO2Extractor_FieldMapping(t *testing.T) {
	e := NewWSO2Extractor()
	set := Set{
		"email":           "jane@example.org",
		"postal_code":     "00100",
		"phone":           "+39 06 123",
		"authmethod":      "password",
		"isdirigente":     "True",
		"employee_number": "1234",
		"department":      "IT",
	}

	cases := map[string]string{
		FieldEmail:          "jane@example.org",
		FieldZipcode:        "00100",
		FieldVoice:          "+39 06 123",
		FieldAuthMethod:     "password",
		FieldIsManager:      "True",
		FieldEmployeeNumber: "1234",
		FieldDepartment:     "IT",
	}
	for field, want := range cases {
		v, ok := e.Extract(field, set)
		require.True(t, ok, field)
		assert.Equal(t, want, v, field)
	}
}

func TestWSO2Extractor_Lookups(t *testing.T) {
	e := NewWSO2Extractor()

	v, ok := e.Extract(FieldCountry, Set{"country": "Italy"})
	require.True(t, ok)
	assert.Equal(t, "ITA", v)

	v, ok = e.Extract(FieldLanguage, Set{"language": "Italian"})
	require.True(t, ok)
	assert.Equal(t, "ita", v)

	v, ok = e.Extract(FieldTimezone, Set{"timezone": "Rome"})
	require.True(t, ok)
	assert.Equal(t, "Europe/Rome", v)

	// Valores no mapeados pasan sin cambios.
	v, _ = e.Extract(FieldCountry, Set{"country": "Atlantis"})
	assert.Equal(t, "Atlantis", v)
}

func TestRegistry_Lookup(t *testing.T) {
	r := NewRegistry()

	_, ok := r.Lookup(WSO2ProviderID)
	assert.True(t, ok)

	_, ok = r.Lookup("github")
	assert.False(t, ok)
}

func TestExtractKeywords(t *testing.T) {
	assert.Equal(t, []string{"OpenID", "WSO2"},
		ExtractKeywords(Set{"keywords": []string{"OpenID", "WSO2"}}))

	// Forma []any tras un round-trip JSON.
	assert.Equal(t, []string{"a", "b"},
		ExtractKeywords(Set{"keywords": []any{"a", "", "b", 7}}))

	assert.Equal(t, []string{"solo"},
		ExtractKeywords(Set{"keywords": "solo"}))

	assert.Nil(t, ExtractKeywords(Set{}))
}
