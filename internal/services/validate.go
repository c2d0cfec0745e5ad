package services

import (
	"regexp"
	"strings"
	"time"
	"unicode"

	"gorm.io/datatypes"

	"github.com/sghss/sghss-api/internal/apperr"
)

const (
	dateLayout     = "2006-01-02"
	dateTimeLayout = "2006-01-02 15:04"
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

func validEmail(email string) bool {
	return emailPattern.MatchString(email)
}

func digitsOnly(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return r
		}
		return -1
	}, s)
}

// normalizeCPF strips punctuation ("123.456.789-01" -> "12345678901") and
// checks the length. Check digits are not verified.
func normalizeCPF(raw string) (string, error) {
	cpf := digitsOnly(raw)
	if len(cpf) != 11 {
		return "", apperr.BadFormat("cpf must contain exactly 11 digits")
	}
	return cpf, nil
}

func normalizePhone(raw string) (string, error) {
	phone := digitsOnly(raw)
	if len(phone) < 10 || len(phone) > 11 {
		return "", apperr.BadFormat("telefone must contain 10 or 11 digits")
	}
	return phone, nil
}

func parseDate(field, raw string) (*datatypes.Date, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(raw))
	if err != nil {
		return nil, apperr.BadFormat(field + " must use the YYYY-MM-DD format")
	}
	d := datatypes.Date(t)
	return &d, nil
}

// parseSchedule accepts "YYYY-MM-DD HH:MM", "YYYY-MM-DDTHH:MM" or RFC 3339.
// Zone-less values are read as UTC.
func parseSchedule(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range []string{dateTimeLayout, "2006-01-02T15:04", time.RFC3339} {
		if t, err := time.ParseInLocation(layout, raw, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, apperr.BadFormat("data_consulta must use the YYYY-MM-DD HH:MM format")
}

// optional trims s and maps blank values to nil.
func optional(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

func optionalString(s string) *string {
	return optional(&s)
}
