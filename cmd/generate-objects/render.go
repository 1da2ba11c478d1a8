package main

import (
	"bytes"
	"fmt"
	"go/format"
	"strconv"
	"text/template"
)

func render(entities []EntityDef) ([]byte, error) {
	tmpl := template.Must(template.New("objects").Funcs(template.FuncMap{
		"quote": strconv.Quote,
	}).Parse(objectsTemplate))

	needsQuery := false
	for _, e := range entities {
		if len(e.Fields) > 0 {
			needsQuery = true
		}
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, struct {
		Entities   []EntityDef
		NeedsQuery bool
	}{
		Entities:   entities,
		NeedsQuery: needsQuery,
	}); err != nil {
		return nil, err
	}

	src, err := format.Source(buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("formatting output: %w\n%s", err, buf.Bytes())
	}
	return src, nil
}

const objectsTemplate = `// Code generated by cmd/generate-objects. DO NOT EDIT.

package objects

import (
	"github.com/DrewBradfordXYZ/logo-objects-go/client"
{{- if .NeedsQuery}}
	"github.com/DrewBradfordXYZ/logo-objects-go/query"
{{- end}}
)

var entities = []*client.Entity{
{{- range .Entities}}
	{{.VarName}},
{{- end}}
}
{{range .Entities}}
var {{.VarName}} = &client.Entity{
	Name: {{quote .Name}},
	Path: {{quote .Path}},
{{- if .Fields}}
	Fields: query.FieldMap{
{{- range .Fields}}
		{{quote .Logical}}: {{quote .Remote}},
{{- end}}
	},
{{- end}}
	Operations: map[string]client.Operation{
{{- range .Operations}}
		{{quote .Name}}: {Verb: client.{{.Verb}}, Path: {{quote .Path}}{{if eq .Body "BodyJSON"}}, Body: client.BodyJSON{{end}}},
{{- end}}
	},
}

// {{.GoName}} returns the {{.Name}} resource.
func {{.GoName}}(t client.Transport) *client.Resource[client.Record] {
	return client.NewResource[client.Record](t, {{.VarName}})
}
{{end}}`
