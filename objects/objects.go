// Package objects holds the declarative entity tables of the Logo Objects
// REST service and typed accessors for each collection.
//
// Every entity shares the generic CRUD surface of client.Resource; the
// tables add the collection's field-name overrides and its named
// operations (ApplyADiscount, ExportToXML, ...), which are called through
// Resource.Invoke:
//
//	slips := objects.ExportNationalizationSlips(c)
//	err := slips.Invoke(ctx, "ApplyADiscount", client.Args{Path: []any{42, "D10"}}, nil)
//
// The tables are generated; see cmd/generate-objects.
package objects

import (
	"sort"
	"strings"

	"github.com/DrewBradfordXYZ/logo-objects-go/client"
	"github.com/DrewBradfordXYZ/logo-objects-go/core"
)

//go:generate go run ../cmd/generate-objects --spec ../spec/logo-objects.json --out zz_operations.go

// All returns every known entity, sorted by collection name.
func All() []*client.Entity {
	out := make([]*client.Entity, len(entities))
	copy(out, entities)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Names returns the sorted collection names.
func Names() []string {
	names := make([]string, 0, len(entities))
	for _, e := range entities {
		names = append(names, e.Name)
	}
	sort.Strings(names)
	return names
}

// Lookup resolves an entity by collection name. Matching is exact first,
// then case-insensitive. Unknown names return a *core.NameError carrying the
// closest known name, if any.
func Lookup(name string) (*client.Entity, error) {
	name = strings.Trim(name, "/ ")
	for _, e := range entities {
		if e.Name == name {
			return e, nil
		}
	}
	for _, e := range entities {
		if strings.EqualFold(e.Name, name) {
			return e, nil
		}
	}
	return nil, &core.NameError{
		Kind:       "entity",
		Name:       name,
		Suggestion: core.FindSimilar(name, Names()),
	}
}

// Resource returns an untyped resource for the named entity.
func Resource(t client.Transport, name string) (*client.Resource[client.Record], error) {
	e, err := Lookup(name)
	if err != nil {
		return nil, err
	}
	return client.NewResource[client.Record](t, e), nil
}
