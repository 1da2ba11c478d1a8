// Package main generates the objects package's entity tables from the
// Logo Objects OpenAPI document.
//
// Every path is grouped by its first segment (the collection). The plain
// collection and item paths ("/items", "/items/{id}") are served by the
// generic CRUD methods of client.Resource; every other path becomes a named
// operation in the entity's table.
//
//go:generate go run . --spec ../../spec/logo-objects.json --out ../../objects/zz_operations.go
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/pflag"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// OpenAPI spec structures
type OpenAPI struct {
	Paths map[string]PathItem `json:"paths"`
	// Fields holds per-collection overrides of the camelCase to UPPER_SNAKE
	// field mapping, e.g. {"items": {"id": "INTERNAL_REFERENCE"}}.
	Fields map[string]map[string]string `json:"x-logo-fields"`
}

type PathItem map[string]Operation // key is HTTP method

type Operation struct {
	OperationID string       `json:"operationId"`
	Summary     string       `json:"summary"`
	Parameters  []Parameter  `json:"parameters"`
	RequestBody *RequestBody `json:"requestBody"`
}

type Parameter struct {
	Name string `json:"name"`
	In   string `json:"in"` // path, query, header
}

type RequestBody struct {
	Required bool `json:"required"`
}

// EntityDef is one collection to generate.
type EntityDef struct {
	Name       string // collection name, e.g. "salesOrders"
	GoName     string // exported accessor, e.g. "SalesOrders"
	VarName    string // table variable, e.g. "salesOrdersEntity"
	Path       string
	Fields     []FieldDef
	Operations []OperationDef
}

type FieldDef struct {
	Logical string
	Remote  string
}

// OperationDef is one named operation.
type OperationDef struct {
	Name    string
	Verb    string // client constant: Get, Post, Put, Patch, Delete
	Path    string
	Body    string // client constant: BodyNone, BodyJSON
	Summary string
}

var methods = map[string]string{
	"get":    "Get",
	"post":   "Post",
	"put":    "Put",
	"patch":  "Patch",
	"delete": "Delete",
}

func main() {
	specPath := pflag.String("spec", "spec/logo-objects.json", "OpenAPI document to read")
	outPath := pflag.String("out", "objects/zz_operations.go", "Go file to write")
	pflag.Parse()

	data, err := os.ReadFile(*specPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading spec: %v\n", err)
		os.Exit(1)
	}

	var spec OpenAPI
	if err := json.Unmarshal(data, &spec); err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing spec: %v\n", err)
		os.Exit(1)
	}

	entities, err := buildEntities(spec)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error building entities: %v\n", err)
		os.Exit(1)
	}

	src, err := render(entities)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error generating code: %v\n", err)
		os.Exit(1)
	}
	if err := os.WriteFile(*outPath, src, 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing output: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Generated %s (%d entities)\n", *outPath, len(entities))
}

// buildEntities groups the document's paths into entities.
func buildEntities(spec OpenAPI) ([]EntityDef, error) {
	byName := make(map[string]*EntityDef)

	paths := make([]string, 0, len(spec.Paths))
	for p := range spec.Paths {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	for _, path := range paths {
		segments := strings.Split(strings.Trim(path, "/"), "/")
		if len(segments) == 0 || segments[0] == "" || isParam(segments[0]) {
			return nil, fmt.Errorf("path %q has no collection segment", path)
		}
		name := segments[0]

		e, ok := byName[name]
		if !ok {
			e = &EntityDef{
				Name:    name,
				GoName:  goName(name),
				VarName: varName(name),
				Path:    "/" + name,
			}
			byName[name] = e
		}

		if isCRUD(segments) {
			continue
		}

		verbs := make([]string, 0, len(spec.Paths[path]))
		for v := range spec.Paths[path] {
			verbs = append(verbs, v)
		}
		sort.Strings(verbs)

		for _, verb := range verbs {
			constant, ok := methods[strings.ToLower(verb)]
			if !ok {
				continue // parameters, summary and other path-item keys
			}
			op := spec.Paths[path][verb]
			def := OperationDef{
				Name:    operationName(op.OperationID, segments),
				Verb:    constant,
				Path:    path,
				Body:    "BodyNone",
				Summary: strings.TrimSpace(op.Summary),
			}
			if op.RequestBody != nil {
				def.Body = "BodyJSON"
			}
			e.Operations = append(e.Operations, def)
		}
	}

	var out []EntityDef
	for _, e := range byName {
		e.Operations = dedupe(e.Operations)
		for logical, remote := range spec.Fields[e.Name] {
			e.Fields = append(e.Fields, FieldDef{Logical: logical, Remote: remote})
		}
		sort.Slice(e.Fields, func(i, j int) bool { return e.Fields[i].Logical < e.Fields[j].Logical })
		out = append(out, *e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func isParam(segment string) bool {
	return strings.HasPrefix(segment, "{") && strings.HasSuffix(segment, "}")
}

// isCRUD reports whether segments address the collection or one record.
func isCRUD(segments []string) bool {
	return len(segments) == 1 || (len(segments) == 2 && isParam(segments[1]))
}

// operationName prefers the part of the operationId after the last
// underscore ("SalesOrders_ApplyCampaign"), then the last literal path segment.
func operationName(operationID string, segments []string) string {
	if operationID != "" {
		if i := strings.LastIndexByte(operationID, '_'); i >= 0 && i < len(operationID)-1 {
			return operationID[i+1:]
		}
	}
	for i := len(segments) - 1; i > 0; i-- {
		if !isParam(segments[i]) {
			return segments[i]
		}
	}
	return operationID
}

// dedupe sorts operations by name and suffixes the verb onto names shared
// by several operations.
func dedupe(ops []OperationDef) []OperationDef {
	count := make(map[string]int)
	for _, op := range ops {
		count[op.Name]++
	}
	for i := range ops {
		if count[ops[i].Name] > 1 {
			ops[i].Name += ops[i].Verb
		}
	}
	sort.Slice(ops, func(i, j int) bool { return ops[i].Name < ops[j].Name })
	return ops
}

// goName turns a collection name into an exported identifier:
// "salesOrders" -> "SalesOrders", "bank-accounts" -> "BankAccounts".
func goName(name string) string {
	caser := cases.Title(language.Und, cases.NoLower)
	words := strings.FieldsFunc(name, func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9')
	})
	var b strings.Builder
	for _, w := range words {
		b.WriteString(caser.String(w))
	}
	return b.String()
}

func varName(name string) string {
	g := goName(name)
	if g == "" {
		return "entity"
	}
	lower := cases.Lower(language.Und)
	return lower.String(g[:1]) + g[1:] + "Entity"
}
