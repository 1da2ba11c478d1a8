package query

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// FieldMap maps logical field names to remote column names for fields whose
// remote name does not follow the camelCase to UPPER_SNAKE_CASE rule.
// A nil FieldMap is valid and always falls back to RemoteName.
type FieldMap map[string]string

// Remote returns the remote column name for a logical field name.
func (m FieldMap) Remote(logical string) string {
	if remote, ok := m[logical]; ok && remote != "" {
		return remote
	}
	return RemoteName(logical)
}

// Merge returns a new FieldMap holding m overlaid with other.
func (m FieldMap) Merge(other FieldMap) FieldMap {
	out := make(FieldMap, len(m)+len(other))
	for k, v := range m {
		out[k] = v
	}
	for k, v := range other {
		out[k] = v
	}
	return out
}

// RemoteName converts a camelCase logical name to the API's UPPER_SNAKE_CASE
// column name. Names without lower-case letters are returned unchanged.
//
//	auxilCode        -> AUXIL_CODE
//	invoiceID        -> INVOICE_ID
//	xmlExportFile    -> XML_EXPORT_FILE
//	address2         -> ADDRESS2
//	line2Code        -> LINE2_CODE
//	DATE_            -> DATE_
func RemoteName(logical string) string {
	if !strings.ContainsFunc(logical, unicode.IsLower) {
		return logical
	}

	runes := []rune(logical)
	var b strings.Builder
	b.Grow(len(logical) + 4)

	for i, r := range runes {
		if i > 0 && unicode.IsUpper(r) && wordBoundary(runes, i) {
			b.WriteByte('_')
		}
		b.WriteRune(r)
	}

	// Casers keep state, so each call gets its own.
	return cases.Upper(language.Und).String(b.String())
}

// wordBoundary reports whether an upper-case rune at i starts a new word.
func wordBoundary(runes []rune, i int) bool {
	prev := runes[i-1]
	if prev == '_' {
		return false
	}
	if unicode.IsLower(prev) || unicode.IsDigit(prev) {
		return true
	}
	// End of an acronym: "XMLFile" splits before "File".
	return unicode.IsUpper(prev) && i+1 < len(runes) && unicode.IsLower(runes[i+1])
}
