package query

import (
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"

	openapi_types "github.com/oapi-codegen/runtime/types"
)

// DateTimeLayout is the layout of date-time literals in filter expressions.
const DateTimeLayout = "2006-01-02T15:04:05"

// Literal renders v as a filter-expression literal.
//
// Strings are single-quoted with embedded quotes doubled. Numbers are bare,
// booleans are true/false, time.Time uses DateTimeLayout and types.Date uses
// YYYY-MM-DD, both quoted. Other kinds report false.
func Literal(v any) (string, bool) {
	switch x := v.(type) {
	case nil:
		return "", false
	case string:
		return quote(x), true
	case bool:
		return strconv.FormatBool(x), true
	case time.Time:
		return quote(x.Format(DateTimeLayout)), true
	case openapi_types.Date:
		return quote(x.Time.Format(openapi_types.DateFormat)), true
	}

	if s, ok := formatNumber(v); ok {
		return s, true
	}

	// Named types such as `type Code string` or `type Flag bool`.
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.String:
		return quote(rv.String()), true
	case reflect.Bool:
		return strconv.FormatBool(rv.Bool()), true
	}
	return "", false
}

func quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

func formatNumber(v any) (string, bool) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return strconv.FormatUint(rv.Uint(), 10), true
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return "", false
		}
		return strconv.FormatFloat(f, 'f', -1, rv.Type().Bits()), true
	}
	return "", false
}
