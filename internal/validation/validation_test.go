package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateISBN(t *testing.T) {
	tests := []struct {
		isbn string
		want bool
	}{
		{"9780439023481", true},
		{"1439023483", true},
		{"0439023483", false},
		{"0000000000000", false},
		{"978043902348", false},
		{"97804390234811", false},
		{"978-0439023481", false},
		{"-978043902348", false},
		{"", false},
		{"abcdefghijklm", false},
	}

	for _, tt := range tests {
		t.Run(tt.isbn, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidateISBN(tt.isbn))
		})
	}
}

func TestParseISBN(t *testing.T) {
	n, ok := ParseISBN(" 9780439023481 ")
	assert.True(t, ok)
	assert.Equal(t, int64(9780439023481), n)

	_, ok = ParseISBN("12")
	assert.False(t, ok)

	// 0123456789 would come back as 123456789.
	_, ok = ParseISBN("0123456789")
	assert.False(t, ok)
}

func TestValidateYear(t *testing.T) {
	assert.True(t, ValidateYear(1600, 3000))
	assert.True(t, ValidateYear(2000, 2000))
	assert.False(t, ValidateYear(2001, 2000))
	assert.False(t, ValidateYear(1599, 2000))
	assert.False(t, ValidateYear(2000, 3001))
}

func TestValidateRatings(t *testing.T) {
	tests := []struct {
		name     string
		min, max float64
		want     bool
	}{
		{"full range", 1, 5, true},
		{"single point", 3, 3, true},
		{"fractional", 3.5, 4.25, true},
		{"min below range", 0.5, 5, false},
		{"max above range", 1, 5.1, false},
		{"inverted", 4, 2, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidateRatings(tt.min, tt.max))
		})
	}
}

func TestValidateTitle(t *testing.T) {
	assert.True(t, ValidateTitle("Dune"))
	assert.False(t, ValidateTitle(""))
	assert.False(t, ValidateTitle("   "))
}

func TestIsNumberProvided(t *testing.T) {
	assert.True(t, IsNumberProvided("42"))
	assert.True(t, IsNumberProvided("4.5"))
	assert.False(t, IsNumberProvided(""))
	assert.False(t, IsNumberProvided("four"))
}

func TestResolvePagination(t *testing.T) {
	tests := []struct {
		name          string
		limit, offset string
		want          Pagination
	}{
		{"defaults when missing", "", "", Pagination{Limit: 10, Offset: 0}},
		{"explicit values", "25", "50", Pagination{Limit: 25, Offset: 50}},
		{"invalid limit", "abc", "5", Pagination{Limit: 10, Offset: 5}},
		{"zero limit", "0", "5", Pagination{Limit: 10, Offset: 5}},
		{"negative offset", "5", "-1", Pagination{Limit: 5, Offset: 0}},
		{"limit capped", "1000", "0", Pagination{Limit: LimitMax, Offset: 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolvePagination(tt.limit, tt.offset))
		})
	}
}

func TestIsValidEmail(t *testing.T) {
	assert.True(t, IsValidEmail("reader@example.com"))
	assert.False(t, IsValidEmail("reader@example"))
	assert.False(t, IsValidEmail("Reader <reader@example.com>"))
	assert.False(t, IsValidEmail(""))
}

func TestIsValidPassword(t *testing.T) {
	assert.True(t, IsValidPassword("Str0ng#Pass"))
	assert.False(t, IsValidPassword("Sh0rt!"))
	assert.False(t, IsValidPassword("nouppercase1!"))
	assert.False(t, IsValidPassword("NOLOWERCASE1!"))
	assert.False(t, IsValidPassword("NoDigitsHere!"))
	assert.False(t, IsValidPassword("NoSpecial123"))
}

func TestIsValidPhone(t *testing.T) {
	assert.True(t, IsValidPhone("+1 206-555-0100"))
	assert.True(t, IsValidPhone("2065550100"))
	assert.False(t, IsValidPhone("555"))
	assert.False(t, IsValidPhone("phone"))
	assert.False(t, IsValidPhone("+1234567890123456"))
}
