package query

import (
	"reflect"
	"sort"
	"strings"
	"time"

	openapi_types "github.com/oapi-codegen/runtime/types"
)

// Operator is a comparison operator of the filter language.
type Operator string

const (
	OpEq   Operator = "eq"
	OpNe   Operator = "ne"
	OpLike Operator = "like"
	OpGt   Operator = "gt"
	OpGte  Operator = "gte"
	OpLt   Operator = "lt"
	OpLte  Operator = "lte"
	OpIn   Operator = "in"
)

// operatorOrder is used when operators come from an unordered map.
var operatorOrder = []Operator{OpEq, OpNe, OpLike, OpGt, OpGte, OpLt, OpLte, OpIn}

// Known reports whether op is understood by Compile.
func (op Operator) Known() bool {
	for _, o := range operatorOrder {
		if o == op {
			return true
		}
	}
	return false
}

// Cond is one operator applied to a value.
type Cond struct {
	Op    Operator
	Value any
}

// Conditions is an operator object: every condition applies to the same field
// and they are and-joined in order.
type Conditions []Cond

// Ops groups conditions on a single field.
//
// Example:
//
//	query.Where("amount", query.Ops(query.Gte(100), query.Lte(500)))
//	// AMOUNT gte 100 and AMOUNT lte 500
func Ops(conds ...Cond) Conditions {
	return Conditions(conds)
}

// Eq matches values equal to v.
func Eq(v any) Cond { return Cond{Op: OpEq, Value: v} }

// Ne matches values not equal to v.
func Ne(v any) Cond { return Cond{Op: OpNe, Value: v} }

// Like matches the pattern v; see LikePrefix.
func Like(v any) Cond { return Cond{Op: OpLike, Value: v} }

// Gt matches values greater than v.
func Gt(v any) Cond { return Cond{Op: OpGt, Value: v} }

// Gte matches values greater than or equal to v.
func Gte(v any) Cond { return Cond{Op: OpGte, Value: v} }

// Lt matches values less than v.
func Lt(v any) Cond { return Cond{Op: OpLt, Value: v} }

// Lte matches values less than or equal to v.
func Lte(v any) Cond { return Cond{Op: OpLte, Value: v} }

// In matches any of values. A single slice argument is expanded, so
// In(ids) and In(ids...) are the same condition.
func In(values ...any) Cond {
	if len(values) == 1 {
		if items, ok := listOf(deref(values[0])); ok {
			return Cond{Op: OpIn, Value: items}
		}
	}
	return Cond{Op: OpIn, Value: values}
}

type term struct {
	field string
	value any
}

// Criteria is an ordered set of per-field search conditions keyed by logical
// (camelCase) field name.
//
// A value may be:
//   - a scalar (string, number, bool, time.Time, types.Date): equality
//   - a slice of scalars: or-joined equalities
//   - Conditions (see Ops), a single Cond, or a map[string]any of operator
//     name to value: and-joined operator conditions
//   - nil: ignored
type Criteria struct {
	terms []term
}

// Where starts a Criteria with one field.
func Where(field string, value any) Criteria {
	return Criteria{}.And(field, value)
}

// And returns a copy of c with field appended. Adding a field that is already
// present adds a second condition for it.
func (c Criteria) And(field string, value any) Criteria {
	terms := make([]term, len(c.terms), len(c.terms)+1)
	copy(terms, c.terms)
	return Criteria{terms: append(terms, term{field: field, value: value})}
}

// FromMap builds Criteria from an unordered map. Fields are ordered by name.
func FromMap(m map[string]any) Criteria {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var c Criteria
	for _, k := range keys {
		c = c.And(k, m[k])
	}
	return c
}

// Len returns the number of fields in c, including nil-valued ones.
func (c Criteria) Len() int {
	return len(c.terms)
}

// Fields returns the logical field names in order.
func (c Criteria) Fields() []string {
	names := make([]string, len(c.terms))
	for i, t := range c.terms {
		names[i] = t.field
	}
	return names
}

// Compile translates c into a filter expression. Field names are resolved
// through names, falling back to RemoteName. The second result is false when
// no field produced a condition; callers should then send no filter at all.
func Compile(c Criteria, names FieldMap) (string, bool) {
	parts := make([]string, 0, len(c.terms))
	for _, t := range c.terms {
		if t.field == "" {
			continue
		}
		if expr := compileTerm(names.Remote(t.field), t.value); expr != "" {
			parts = append(parts, expr)
		}
	}
	if len(parts) == 0 {
		return "", false
	}
	return strings.Join(parts, " and "), true
}

func compileTerm(field string, value any) string {
	value = deref(value)

	switch v := value.(type) {
	case nil:
		return ""
	case Conditions:
		return compileConditions(field, v)
	case []Cond:
		return compileConditions(field, v)
	case Cond:
		return compileConditions(field, Conditions{v})
	case map[string]any:
		return compileConditions(field, conditionsFromMap(v))
	}

	if lit, ok := Literal(value); ok {
		return field + " " + string(OpEq) + " " + lit
	}
	if items, ok := listOf(value); ok {
		return disjunction(field, items)
	}
	return ""
}

func compileConditions(field string, conds Conditions) string {
	parts := make([]string, 0, len(conds))
	for _, cond := range conds {
		if !cond.Op.Known() {
			continue
		}
		value := deref(cond.Value)
		if cond.Op == OpIn {
			items, ok := listOf(value)
			if !ok {
				items = []any{value}
			}
			if expr := disjunction(field, items); expr != "" {
				parts = append(parts, expr)
			}
			continue
		}
		if lit, ok := Literal(value); ok {
			parts = append(parts, field+" "+string(cond.Op)+" "+lit)
		}
	}
	return strings.Join(parts, " and ")
}

// disjunction renders (FIELD eq a or FIELD eq b ...). Items without a literal
// form are skipped.
func disjunction(field string, items []any) string {
	parts := make([]string, 0, len(items))
	for _, item := range items {
		if lit, ok := Literal(deref(item)); ok {
			parts = append(parts, field+" "+string(OpEq)+" "+lit)
		}
	}
	if len(parts) == 0 {
		return ""
	}
	return "(" + strings.Join(parts, " or ") + ")"
}

func conditionsFromMap(m map[string]any) Conditions {
	conds := make(Conditions, 0, len(m))
	for _, op := range operatorOrder {
		if v, ok := m[string(op)]; ok {
			conds = append(conds, Cond{Op: op, Value: v})
		}
	}
	return conds
}

// deref follows pointers; a nil pointer becomes nil.
func deref(v any) any {
	for v != nil {
		rv := reflect.ValueOf(v)
		if rv.Kind() != reflect.Pointer {
			return v
		}
		if rv.IsNil() {
			return nil
		}
		v = rv.Elem().Interface()
	}
	return v
}

// listOf returns the elements of a slice or array value. Byte slices are not
// treated as lists.
func listOf(v any) ([]any, bool) {
	switch v.(type) {
	case []byte, time.Time, openapi_types.Date:
		return nil, false
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	items := make([]any, rv.Len())
	for i := range items {
		items[i] = rv.Index(i).Interface()
	}
	return items, true
}
