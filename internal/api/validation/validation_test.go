package validation_test

import (
	"strings"
	"testing"

	"github.com/hugh/teamly/internal/api/validation"
	"github.com/stretchr/testify/assert"
)

func TestIsValidEmail(t *testing.T) {
	valid := []string{
		"user@example.com",
		"first.last@example.co.uk",
		"user+tag@example.io",
	}
	for _, email := range valid {
		assert.True(t, validation.IsValidEmail(email), email)
	}

	invalid := []string{
		"",
		"plainaddress",
		"@example.com",
		"user@",
		"user@nodot",
		strings.Repeat("a", 250) + "@example.com",
	}
	for _, email := range invalid {
		assert.False(t, validation.IsValidEmail(email), email)
	}
}

func TestIsValidUUID(t *testing.T) {
	assert.True(t, validation.IsValidUUID("123e4567-e89b-12d3-a456-426614174000"))
	assert.False(t, validation.IsValidUUID("123e4567"))
	assert.False(t, validation.IsValidUUID(""))
	assert.False(t, validation.IsValidUUID("123e4567-e89b-12d3-a456-42661417400z"))
}

func TestIsValidPassword(t *testing.T) {
	ok, _ := validation.IsValidPassword("Goodpassword1")
	assert.True(t, ok)

	cases := map[string]string{
		"Short1":                   "at least 8",
		strings.Repeat("Aa1", 50):  "at most 128",
		"alllowercase1":            "uppercase",
		"ALLUPPERCASE1":            "lowercase",
		"NoNumbersHere":            "number",
	}
	for password, fragment := range cases {
		ok, msg := validation.IsValidPassword(password)
		assert.False(t, ok, password)
		assert.Contains(t, msg, fragment)
	}
}
