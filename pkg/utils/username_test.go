package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateUsername(t *testing.T) {
	valid := []string{"quietriver", "dr-ada", "dr_bell", "a1b", "Nightingale24"}
	for _, handle := range valid {
		assert.NoError(t, ValidateUsername(handle), handle)
	}

	invalid := []string{
		"ab",
		"this-handle-is-far-too-long-to-fit",
		"-leading-hyphen",
		"_leading_underscore",
		"has space",
		"emoji☺name",
	}
	for _, handle := range invalid {
		err := ValidateUsername(handle)
		if assert.Error(t, err, handle) {
			var verr *ValidationError
			assert.ErrorAs(t, err, &verr)
			assert.Equal(t, "username", verr.Field)
		}
	}
}

func TestNormalizeUsername(t *testing.T) {
	assert.Equal(t, "dr-ada", NormalizeUsername("  Dr-Ada "))
	assert.Equal(t, NormalizeUsername("QUIETRIVER"), NormalizeUsername("quietriver"))
}
