// Package query builds the query strings and filter expressions sent to the
// Logo Objects REST API.
//
// Two pieces live here:
//   - [Build] serializes [ListOptions] (paging, projection, sort, filter) into
//     a URL query string.
//   - [Compile] turns [Criteria] into the API's OData-like filter expression,
//     which callers place in ListOptions.Q.
//
// Both are pure functions. They never fail: unset or unrecognised input is
// left out of the result.
//
// Example:
//
//	crit := query.Where("code", "ABC").And("status", 1)
//	expr, _ := query.Compile(crit, nil) // CODE eq 'ABC' and STATUS eq 1
//
//	qs := query.Build(query.ListOptions{
//	    Limit: query.Int(10),
//	    Sort:  query.SortBy("CODE").Desc(),
//	    Q:     expr,
//	})
//	// limit=10&sort=CODE&direction=desc&q=CODE%20eq%20%27ABC%27%20and%20STATUS%20eq%201
package query

import (
	"net/url"
	"sort"
	"strconv"
	"strings"
)

// Query parameter names understood by the Logo Objects API.
const (
	ParamLimit       = "limit"
	ParamOffset      = "offset"
	ParamFields      = "fields"
	ParamSort        = "sort"
	ParamDirection   = "direction"
	ParamQ           = "q"
	ParamCount       = "count"
	ParamExpandLevel = "expandLevel"
)

// paramOrder is the order in which recognised parameters are emitted.
var paramOrder = []string{
	ParamLimit,
	ParamOffset,
	ParamFields,
	ParamSort,
	ParamDirection,
	ParamQ,
	ParamCount,
	ParamExpandLevel,
}

func isReserved(key string) bool {
	for _, k := range paramOrder {
		if k == key {
			return true
		}
	}
	return false
}

// ListOptions controls paging and shape of a list request.
// The zero value requests the server defaults.
type ListOptions struct {
	// Limit bounds the number of returned items.
	Limit *int
	// Offset is the index of the first returned item.
	Offset *int
	// Fields is the projection. Order is kept; blanks and repeats are dropped.
	Fields []string
	// Sort orders the result.
	Sort *Sort
	// Q is a filter expression, usually produced by Compile.
	Q string
	// Count asks the server to compute the total item count.
	Count *bool
	// ExpandLevel controls how deep related entities are expanded.
	ExpandLevel string
	// Extra holds passthrough parameters. Only string, integer, float and
	// bool values are sent; keys that collide with the fields above are ignored.
	Extra map[string]any
}

// Int returns a pointer to n, for use with Limit and Offset.
func Int(n int) *int {
	return &n
}

// Bool returns a pointer to b, for use with Count.
func Bool(b bool) *bool {
	return &b
}

// WithQuery returns a copy of o whose Q is expr and-joined with the existing Q.
// The receiver is not modified.
func (o ListOptions) WithQuery(expr string) ListOptions {
	o.Q = Join(o.Q, expr)
	return o
}

// Build serializes opts into a query string without a leading '?'.
// It returns "" when no option is set.
func Build(opts ListOptions) string {
	var b strings.Builder

	add := func(key, value string) {
		if b.Len() > 0 {
			b.WriteByte('&')
		}
		b.WriteString(escape(key))
		b.WriteByte('=')
		b.WriteString(value)
	}

	if opts.Limit != nil {
		add(ParamLimit, strconv.Itoa(*opts.Limit))
	}
	if opts.Offset != nil {
		add(ParamOffset, strconv.Itoa(*opts.Offset))
	}
	if fields := distinct(opts.Fields); len(fields) > 0 {
		add(ParamFields, escapeList(fields))
	}
	if opts.Sort != nil {
		if fields := distinct(opts.Sort.Fields); len(fields) > 0 {
			add(ParamSort, escapeList(fields))
			if opts.Sort.Direction != "" {
				add(ParamDirection, escape(string(opts.Sort.Direction)))
			}
		}
	}
	if opts.Q != "" {
		add(ParamQ, escape(opts.Q))
	}
	if opts.Count != nil {
		add(ParamCount, strconv.FormatBool(*opts.Count))
	}
	if opts.ExpandLevel != "" {
		add(ParamExpandLevel, escape(opts.ExpandLevel))
	}

	if len(opts.Extra) > 0 {
		keys := make([]string, 0, len(opts.Extra))
		for k := range opts.Extra {
			if k == "" || isReserved(k) {
				continue
			}
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if v, ok := formatExtra(opts.Extra[k]); ok {
				add(k, escape(v))
			}
		}
	}

	return b.String()
}

// AppendTo appends the query string for opts to path.
// The '?' separator is only added when there is something to append.
func AppendTo(path string, opts *ListOptions) string {
	if opts == nil {
		return path
	}
	qs := Build(*opts)
	if qs == "" {
		return path
	}
	if strings.Contains(path, "?") {
		return path + "&" + qs
	}
	return path + "?" + qs
}

// Parse decodes a query string produced by Build back into ListOptions.
// Unrecognised keys are kept in Extra as strings. Malformed numbers and
// booleans are reported as errors.
func Parse(raw string) (ListOptions, error) {
	var opts ListOptions

	raw = strings.TrimPrefix(raw, "?")
	values, err := url.ParseQuery(raw)
	if err != nil {
		return opts, err
	}
	lists := rawLists(raw)

	for key, vs := range values {
		if len(vs) == 0 {
			continue
		}
		v := vs[len(vs)-1]

		switch key {
		case ParamLimit:
			n, err := strconv.Atoi(v)
			if err != nil {
				return opts, &ParseError{Param: key, Value: v, Err: err}
			}
			opts.Limit = &n
		case ParamOffset:
			n, err := strconv.Atoi(v)
			if err != nil {
				return opts, &ParseError{Param: key, Value: v, Err: err}
			}
			opts.Offset = &n
		case ParamFields:
			opts.Fields = splitList(lists[key])
		case ParamSort:
			if opts.Sort == nil {
				opts.Sort = &Sort{}
			}
			opts.Sort.Fields = splitList(lists[key])
		case ParamDirection:
			if opts.Sort == nil {
				opts.Sort = &Sort{}
			}
			opts.Sort.Direction = Direction(strings.ToLower(v))
		case ParamQ:
			opts.Q = v
		case ParamCount:
			c, err := strconv.ParseBool(v)
			if err != nil {
				return opts, &ParseError{Param: key, Value: v, Err: err}
			}
			opts.Count = &c
		case ParamExpandLevel:
			opts.ExpandLevel = v
		default:
			if opts.Extra == nil {
				opts.Extra = make(map[string]any)
			}
			opts.Extra[key] = v
		}
	}

	return opts, nil
}

// ParseError reports a query parameter whose value could not be decoded.
type ParseError struct {
	Param string
	Value string
	Err   error
}

func (e *ParseError) Error() string {
	return "invalid value " + strconv.Quote(e.Value) + " for query parameter " + e.Param + ": " + e.Err.Error()
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// escape percent-encodes s the way encodeURIComponent does: spaces become
// %20 rather than '+'.
func escape(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

func escapeList(items []string) string {
	escaped := make([]string, len(items))
	for i, item := range items {
		escaped[i] = escape(item)
	}
	return strings.Join(escaped, ",")
}

// rawLists returns the still-escaped values of the list parameters, last
// occurrence winning. Names are separated by literal commas only; an escaped
// %2C belongs to the name.
func rawLists(raw string) map[string]string {
	out := make(map[string]string)
	for _, pair := range strings.Split(raw, "&") {
		key, value, _ := strings.Cut(pair, "=")
		if key == ParamFields || key == ParamSort {
			out[key] = value
		}
	}
	return out
}

// splitList splits an escaped comma-separated list and unescapes each name.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if name, err := url.QueryUnescape(part); err == nil {
			part = name
		}
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// distinct drops blank and repeated names, keeping first occurrences in order.
func distinct(names []string) []string {
	if len(names) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}

func formatExtra(v any) (string, bool) {
	switch x := v.(type) {
	case string:
		return x, true
	case bool:
		return strconv.FormatBool(x), true
	case nil:
		return "", false
	}
	if s, ok := formatNumber(v); ok {
		return s, true
	}
	return "", false
}
