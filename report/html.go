// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package report

import (
	"io"

	"github.com/google/safehtml/template"
)

var htmlTemplate = template.Must(template.New("").Funcs(template.FuncMap{
	"numeric": func(t *Table, col int) bool { return t.numeric(col) },
}).Parse(`
{{- range $t := . -}}
<table class='brjstat'>
{{- with .Title}}
<caption>{{.}}</caption>
{{- end}}
<thead>
<tr>{{range .Header}}<th>{{.}}{{end}}
</thead>
<tbody>
{{range .Rows -}}
<tr>{{range $i, $cell := .}}<td{{if numeric $t $i}} class='num'{{end}}>{{$cell}}{{end}}
{{end -}}
</tbody>
</table>
{{range .Notes -}}
<p class='note'>{{.}}</p>
{{end -}}
{{end -}}
`))

func writeHTML(w io.Writer, tables []*Table) error {
	return htmlTemplate.Execute(w, tables)
}
