package utils

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"nine_digits_local", "901234567", "+998 90 123 45 67", false},
		{"full_international", "+998901234567", "+998 90 123 45 67", false},
		{"already_formatted", "+998 90 123 45 67", "+998 90 123 45 67", false},
		{"with_separators", "90-123-45-67", "+998 90 123 45 67", false},
		{"with_parentheses", "(90) 123 45 67", "+998 90 123 45 67", false},
		{"bare_998_prefix", "998712005050", "+998 71 200 50 50", false},
		{"too_short", "12345", "", true},
		{"too_long", "9989012345678", "", true},
		{"empty", "", "", true},
		{"letters_only", "call me", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizePhone(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				assert.True(t, errors.Is(err, ErrInvalidPhone))
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "tyul-premium", Slugify("Tyul Premium"))
	assert.Equal(t, "blackout-200x260", Slugify("Blackout  200x260!"))
	assert.Equal(t, "tyul-premium", Slugify("Тюль Премиум"))
	assert.Equal(t, "", Slugify("!!!"))
}
