package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMaskEmail(t *testing.T) {
	assert.Equal(t, "j…@e….org", maskEmail("jdoe@example.org"))
	assert.Equal(t, "a@e….org", maskEmail("a@example.org"))
	assert.Equal(t, "", maskEmail(""))
	assert.Equal(t, "***", maskEmail("abc"))
	assert.Equal(t, "r…u", maskEmail("RSSMRA80A01H501U"))
}
