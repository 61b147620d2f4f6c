// Package validation holds the request predicates shared by the book and
// account handlers. Every function here is pure.
package validation

import (
	"net/mail"
	"regexp"
	"strconv"
	"strings"
)

const (
	YearMin = 1600
	YearMax = 3000

	RatingMin = 1
	RatingMax = 5

	LimitDefault  = 10
	OffsetDefault = 0
	LimitMax      = 100
)

// Pagination is a resolved limit/offset pair.
type Pagination struct {
	Limit  int
	Offset int
}

// IsStringProvided reports whether s has any non-space content.
func IsStringProvided(s string) bool {
	return strings.TrimSpace(s) != ""
}

// IsNumberProvided reports whether s is non-empty and parses as a number.
func IsNumberProvided(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}

// ValidateISBN accepts an all-digit ISBN of 13 or 10 digits. ISBNs are stored
// as integers, so a leading zero is rejected rather than silently dropped.
func ValidateISBN(isbn string) bool {
	_, ok := ParseISBN(isbn)
	return ok
}

// ParseISBN returns the numeric value of a valid ISBN.
func ParseISBN(isbn string) (int64, bool) {
	isbn = strings.TrimSpace(isbn)
	if len(isbn) != 13 && len(isbn) != 10 || isbn[0] == '0' {
		return 0, false
	}
	for _, c := range isbn {
		if c < '0' || c > '9' {
			return 0, false
		}
	}
	n, err := strconv.ParseInt(isbn, 10, 64)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

func ValidateYear(min, max int) bool {
	return ValidatePostYear(min) && ValidatePostYear(max) && min <= max
}

func ValidatePostYear(year int) bool {
	return year >= YearMin && year <= YearMax
}

func ValidateRatings(min, max float64) bool {
	isMinValid := min >= RatingMin && min <= RatingMax
	isMaxValid := max >= RatingMin && max <= RatingMax
	return isMinValid && isMaxValid && min <= max
}

func ValidateTitle(title string) bool {
	return IsStringProvided(title)
}

// ResolvePagination turns raw limit/offset query values into a usable pair.
// Missing or invalid values fall back to the defaults; limit is capped at LimitMax.
func ResolvePagination(limit, offset string) Pagination {
	p := Pagination{Limit: LimitDefault, Offset: OffsetDefault}

	if l, err := strconv.Atoi(strings.TrimSpace(limit)); err == nil && l > 0 {
		p.Limit = min(l, LimitMax)
	}
	if o, err := strconv.Atoi(strings.TrimSpace(offset)); err == nil && o >= 0 {
		p.Offset = o
	}
	return p
}

// IsValidEmail checks for a bare address (no display name).
func IsValidEmail(email string) bool {
	email = strings.TrimSpace(email)
	if email == "" {
		return false
	}
	addr, err := mail.ParseAddress(email)
	if err != nil {
		return false
	}
	return addr.Address == email && strings.Contains(email[strings.LastIndex(email, "@"):], ".")
}

var (
	upperRe   = regexp.MustCompile(`[A-Z]`)
	lowerRe   = regexp.MustCompile(`[a-z]`)
	digitRe   = regexp.MustCompile(`[0-9]`)
	specialRe = regexp.MustCompile(`[!@#$%^&*()_+\-=\[\]{};':"\\|,.<>\/?]`)
	phoneRe   = regexp.MustCompile(`^\+?[0-9][0-9 \-]{5,20}[0-9]$`)
)

// IsValidPassword requires 8+ characters with upper, lower, digit and special.
func IsValidPassword(password string) bool {
	return len(password) >= 8 &&
		upperRe.MatchString(password) &&
		lowerRe.MatchString(password) &&
		digitRe.MatchString(password) &&
		specialRe.MatchString(password)
}

// IsValidPhone accepts an optional leading '+' and 7 to 15 digits,
// optionally grouped with spaces or dashes.
func IsValidPhone(phone string) bool {
	phone = strings.TrimSpace(phone)
	if !phoneRe.MatchString(phone) {
		return false
	}
	digits := 0
	for _, c := range phone {
		if c >= '0' && c <= '9' {
			digits++
		}
	}
	return digits >= 7 && digits <= 15
}
