package query

import (
	"reflect"
	"strings"
)

// Wildcard is the API's multi-character wildcard in like patterns.
const Wildcard = "*"

// Join and-joins the non-empty expressions. Expressions are used verbatim.
//
//	Join("CODE eq 'ABC'", "STATUS eq 1") // CODE eq 'ABC' and STATUS eq 1
func Join(exprs ...string) string {
	parts := make([]string, 0, len(exprs))
	for _, e := range exprs {
		if e = strings.TrimSpace(e); e != "" {
			parts = append(parts, e)
		}
	}
	return strings.Join(parts, " and ")
}

// LikePrefix rewrites every string-valued field of c into a prefix match:
// {auxilCode: "test"} becomes AUXIL_CODE like 'test*'. Values that already
// end in the wildcard are not extended. Non-string values are left as they are.
func LikePrefix(c Criteria) Criteria {
	out := Criteria{terms: make([]term, len(c.terms))}
	for i, t := range c.terms {
		out.terms[i] = t
		v := deref(t.value)
		if v == nil {
			continue
		}
		rv := reflect.ValueOf(v)
		if rv.Kind() != reflect.String {
			continue
		}
		pattern := rv.String()
		if !strings.HasSuffix(pattern, Wildcard) {
			pattern += Wildcard
		}
		out.terms[i].value = Ops(Like(pattern))
	}
	return out
}

// Search compiles c and merges it into opts. When c yields no condition the
// options are returned unchanged, so no q parameter is sent.
func Search(c Criteria, names FieldMap, opts ListOptions) ListOptions {
	expr, ok := Compile(c, names)
	if !ok {
		return opts
	}
	return opts.WithQuery(expr)
}
