package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidDepartmentName(t *testing.T) {
	valid := []string{
		"IT",
		"a",
		"Risorse Umane",
		"R&D",
		"IT-Ops",
		"Area 51",
		"dep.legale",
		"A_B",
		strings.Repeat("a", 64),
	}
	for _, name := range valid {
		assert.True(t, ValidDepartmentName(name), "expected valid: %q", name)
	}

	invalid := []string{
		"",
		" IT",
		"IT ",
		"-IT",
		"IT-",
		"a/b",
		"dep;drop",
		"con\ttab",
		strings.Repeat("a", 65),
	}
	for _, name := range invalid {
		assert.False(t, ValidDepartmentName(name), "expected invalid: %q", name)
	}
}
