package claims

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractCommon(t *testing.T) {
	set := Set{
		"id":                 "u1",
		"email":              "jane@example.org",
		"preferred_username": "Jane Doe",
		"country":            "Italy",
		"organization":       "ACME",
		"department":         "IT",
	}

	c := ExtractCommon(set)

	assert.Equal(t, "u1", c.Username)
	assert.Equal(t, "jane@example.org", c.Email)
	assert.Equal(t, "Jane Doe", c.FullName)
	assert.Equal(t, "Jane", c.FirstName)
	assert.Equal(t, "Doe", c.LastName)
	assert.Equal(t, "Italy", c.Country)
	assert.Equal(t, "ACME", c.Organization)
	assert.Equal(t, "IT", c.Extra["department"])
	assert.NotContains(t, c.Extra, "email")
}

func TestExtractCommon_EmailFallsBackToSubject(t *testing.T) {
	c := ExtractCommon(Set{"id": "RSSMRA80A01H501U"})
	assert.Equal(t, "RSSMRA80A01H501U", c.Email)
	assert.Equal(t, "RSSMRA80A01H501U", c.Username)
}

func TestExtractCommon_NameSplitting(t *testing.T) {
	// Un solo espacio interior: split en nombre y apellido.
	c := ExtractCommon(Set{"id": "u1", "preferred_username": "Jane Doe"})
	assert.Equal(t, "Jane", c.FirstName)
	assert.Equal(t, "Doe", c.LastName)

	// Más de un espacio: todo al nombre.
	c = ExtractCommon(Set{"id": "u1", "preferred_username": "Jane van Doe"})
	assert.Equal(t, "Jane van Doe", c.FirstName)
	assert.Equal(t, "", c.LastName)

	// given_name/family_name ganan sobre el split.
	c = ExtractCommon(Set{
		"id":                 "u1",
		"preferred_username": "Jane Doe",
		"given_name":         "Giovanna",
		"family_name":        "Rossi",
	})
	assert.Equal(t, "Giovanna", c.FirstName)
	assert.Equal(t, "Rossi", c.LastName)
}

func TestExtractCommon_Idempotent(t *testing.T) {
	set := Set{
		"id":                 "u1",
		"email":              "jane@example.org",
		"preferred_username": "Jane Doe",
		"employee_number":    "1234",
	}
	first := ExtractCommon(set)
	second := ExtractCommon(set)
	assert.Equal(t, first, second)
}

func TestSetString_TrimsAndTolerates(t *testing.T) {
	s := Set{"a": "  x  ", "b": 42, "c": nil}
	assert.Equal(t, "x", s.String("a"))
	assert.Equal(t, "", s.String("b"))
	assert.Equal(t, "", s.String("c"))
	assert.Equal(t, "", s.String("missing"))
	assert.True(t, s.Has("c"))
	assert.False(t, s.Has("missing"))
}

func TestParseFlag(t *testing.T) {
	for _, v := range []string{"true", "True", "TRUE", " t ", "1", "yes", "Y", "si", "Sì"} {
		assert.True(t, ParseFlag(v), "expected truthy: %q", v)
	}
	for _, v := range []string{"", "false", "0", "no", "dirigente", "truthy"} {
		assert.False(t, ParseFlag(v), "expected falsy: %q", v)
	}
}
