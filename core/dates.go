package core

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	openapi_types "github.com/oapi-codegen/runtime/types"
)

// ISO date pattern matches: 2024-01-15, 2024-01-15T10:30:00, 2024-01-15T10:30:00.000Z, etc.
var isoDatePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}(T\d{2}:\d{2}:\d{2}(\.\d{1,7})?(Z|[+-]\d{2}:?\d{2})?)?$`)

// IsISODateString checks if a string looks like an ISO 8601 date.
func IsISODateString(value string) bool {
	return isoDatePattern.MatchString(value)
}

// ParseISODate parses an ISO 8601 date string to time.Time.
// Values without a zone are read as UTC.
func ParseISODate(value string) (time.Time, error) {
	formats := []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02T15:04:05.9999999",
		"2006-01-02T15:04:05",
		"2006-01-02",
	}

	for _, format := range formats {
		if t, err := time.Parse(format, value); err == nil {
			return t, nil
		}
	}

	return time.Time{}, &time.ParseError{Value: value, Message: ": not a valid ISO 8601 date"}
}

// ParseScalar interprets a textual value the way a caller most likely meant
// it in a filter: integers and decimals become numbers, true/false become
// booleans, YYYY-MM-DD becomes a types.Date and full ISO timestamps become
// time.Time. Anything else, including quoted text, is returned as a string
// with the quotes removed. Zero-padded digits such as "001" stay strings.
func ParseScalar(s string) any {
	if len(s) >= 2 && (s[0] == '\'' || s[0] == '"') && s[len(s)-1] == s[0] {
		return s[1 : len(s)-1]
	}
	if zeroPadded(s) {
		return s
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && strings.ContainsAny(s, ".eE") && !strings.ContainsAny(s, "xXnN") {
		return f
	}
	switch s {
	case "true":
		return true
	case "false":
		return false
	}
	if IsISODateString(s) {
		if t, err := ParseISODate(s); err == nil {
			if len(s) == len("2006-01-02") {
				return openapi_types.Date{Time: t}
			}
			return t
		}
	}
	return s
}

// zeroPadded reports whether s is a number written with a leading zero
// before another digit, like an ERP code ("001", "-07").
func zeroPadded(s string) bool {
	s = strings.TrimLeft(s, "+-")
	return len(s) >= 2 && s[0] == '0' && s[1] >= '0' && s[1] <= '9'
}
