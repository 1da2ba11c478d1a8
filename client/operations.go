package client

import (
	"fmt"
	"sort"
	"strings"

	"github.com/DrewBradfordXYZ/logo-objects-go/core"
	"github.com/DrewBradfordXYZ/logo-objects-go/query"
	"github.com/oapi-codegen/runtime"
)

// Verb is the HTTP verb of an operation, in the lower-case form used by
// operation tables.
type Verb string

const (
	Get    Verb = "get"
	Post   Verb = "post"
	Put    Verb = "put"
	Patch  Verb = "patch"
	Delete Verb = "delete"
)

// Method returns the HTTP method name.
func (v Verb) Method() string {
	return strings.ToUpper(string(v))
}

// BodyKind says whether an operation sends a request body.
type BodyKind int

const (
	BodyNone BodyKind = iota
	BodyJSON
)

func (k BodyKind) String() string {
	if k == BodyJSON {
		return "json"
	}
	return "none"
}

// Operation describes one remote operation: verb, path template relative to
// the base URL, and body kind. Templates use {name} placeholders, e.g.
// "/exportNationalizationSlips/{id}/ApplyADiscount/{_discCode}".
type Operation struct {
	Verb Verb
	Path string
	Body BodyKind
}

// Placeholders returns the template's parameter names in order.
func (op Operation) Placeholders() []string {
	names, _ := placeholders(op.Path)
	return names
}

// Args are the inputs of an operation call.
//
// Path values fill placeholders positionally; Params fills them by name and
// wins over positional values. Params not named in the template are ignored.
type Args struct {
	Path    []any
	Params  map[string]any
	Body    any
	Options *query.ListOptions
}

// Expand substitutes args into the template and appends the query string.
func (op Operation) Expand(args Args) (string, error) {
	path, err := ExpandPath(op.Path, args.Path, args.Params)
	if err != nil {
		return "", err
	}
	return query.AppendTo(path, args.Options), nil
}

// ExpandPath substitutes path parameters into template. Values are encoded
// with simple-style path encoding. A placeholder with no value, or extra
// positional values, is a *core.ValidationError.
func ExpandPath(template string, positional []any, named map[string]any) (string, error) {
	names, err := placeholders(template)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	next := 0
	rest := template
	for _, name := range names {
		i := strings.Index(rest, "{"+name+"}")
		b.WriteString(rest[:i])
		rest = rest[i+len(name)+2:]

		value, ok := named[name]
		if !ok {
			if next >= len(positional) {
				return "", missingParam(template, name)
			}
			value = positional[next]
			next++
		}
		if value == nil {
			return "", missingParam(template, name)
		}

		encoded, err := runtime.StyleParamWithLocation("simple", false, name, runtime.ParamLocationPath, value)
		if err != nil {
			return "", core.NewValidationError(
				fmt.Sprintf("encoding path parameter %q: %v", name, err), "",
				[]core.FieldError{{Field: name, Message: err.Error()}},
			)
		}
		if encoded == "" {
			return "", missingParam(template, name)
		}
		b.WriteString(encoded)
	}
	b.WriteString(rest)

	if next < len(positional) {
		return "", core.NewValidationError(
			fmt.Sprintf("%s takes %d path parameters, got %d", template, next, len(positional)), "", nil,
		)
	}
	return b.String(), nil
}

func missingParam(template, name string) error {
	return core.NewValidationError(
		fmt.Sprintf("missing path parameter %q for %s", name, template), "",
		[]core.FieldError{{Field: name, Message: "required"}},
	)
}

func placeholders(template string) ([]string, error) {
	var names []string
	rest := template
	for {
		open := strings.IndexByte(rest, '{')
		if open < 0 {
			if strings.IndexByte(rest, '}') >= 0 {
				return nil, badTemplate(template)
			}
			return names, nil
		}
		end := strings.IndexByte(rest[open:], '}')
		if end < 0 || strings.IndexByte(rest[:open], '}') >= 0 {
			return nil, badTemplate(template)
		}
		name := rest[open+1 : open+end]
		if name == "" || strings.ContainsAny(name, "{/") {
			return nil, badTemplate(template)
		}
		names = append(names, name)
		rest = rest[open+end+1:]
	}
}

func badTemplate(template string) error {
	return core.NewValidationError(fmt.Sprintf("malformed path template %q", template), "", nil)
}

// Entity is the declarative description of one API collection.
type Entity struct {
	// Name is the collection name, e.g. "exportNationalizationSlips".
	Name string
	// Path is the collection path, e.g. "/exportNationalizationSlips".
	Path string
	// Fields overrides the default camelCase to UPPER_SNAKE mapping.
	Fields query.FieldMap
	// Operations are the entity's named sub-endpoints.
	Operations map[string]Operation
}

// Operation looks up a named operation. Names match case-insensitively.
func (e *Entity) Operation(name string) (Operation, error) {
	if op, ok := e.Operations[name]; ok {
		return op, nil
	}
	for k, op := range e.Operations {
		if strings.EqualFold(k, name) {
			return op, nil
		}
	}
	return Operation{}, &core.NameError{
		Kind:       "operation",
		Name:       name,
		Suggestion: core.FindSimilar(name, e.OperationNames()),
	}
}

// OperationNames returns the operation names in sorted order.
func (e *Entity) OperationNames() []string {
	names := make([]string, 0, len(e.Operations))
	for k := range e.Operations {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// ItemPath returns the path of a single record.
func (e *Entity) ItemPath(id any) (string, error) {
	return ExpandPath(e.Path+"/{id}", []any{id}, nil)
}
