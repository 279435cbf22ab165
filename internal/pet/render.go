// Package pet renders the pet fetched by AppPetByIdQuery, showing a
// placeholder while the fetch is outstanding.
package pet

import (
	"context"
	"html/template"
	"io"

	"github.com/jamesprial/petview/internal/preload"
	"github.com/jamesprial/petview/internal/query"
)

// Fallback is rendered in place of the pet while its data is pending.
const Fallback = "Loading..."

const templates = `
{{define "page-start"}}<!DOCTYPE html>
<html lang="en">
<head><meta charset="utf-8"><title>Pet</title></head>
<body>
{{end}}
{{define "page-end"}}
</body>
</html>
{{end}}
{{define "fallback"}}<div id="fallback">{{.}}</div>{{end}}
{{define "reveal"}}<script>document.getElementById("fallback").remove()</script>{{end}}
{{define "pet"}}<div class="App"><section>{{with .PhotoURL}}<img src="{{.}}">{{else}}<img>{{end}}<p>{{.Name}}</p></section></div>{{end}}
{{define "error"}}<script>document.getElementById("fallback")?.remove()</script><div class="App" role="alert"><p>Could not load pet.</p></div>{{end}}
`

// PetHandle is the preload handle the presentation layer reads from.
type PetHandle = *preload.Handle[query.PetByIDResponse]

type flusher interface{ Flush() }

// Root renders either the placeholder or the resolved pet.
type Root struct {
	tmpl *template.Template
}

// NewRoot parses the page templates.
func NewRoot() *Root {
	return &Root{tmpl: template.Must(template.New("root").Parse(templates))}
}

// Render writes the current view of h without blocking: the placeholder while
// the fetch is outstanding, the pet once it resolved. A failed fetch writes
// nothing and returns the fetch error unchanged.
func (r *Root) Render(w io.Writer, h PetHandle) error {
	v, state, err := h.Peek()
	switch state {
	case preload.Resolved:
		return r.RenderPet(w, v.PetByID)
	case preload.Failed:
		return err
	}
	return r.tmpl.ExecuteTemplate(w, "fallback", Fallback)
}

// RenderPet writes the pet view: its photo, or an image without a source
// when it has none, and its name.
func (r *Root) RenderPet(w io.Writer, p query.Pet) error {
	return r.tmpl.ExecuteTemplate(w, "pet", p)
}

// Stream renders h to a streaming writer. While the fetch is outstanding it
// writes and flushes the placeholder, then suspends until the handle
// settles and writes the pet along with a script removing the placeholder.
func (r *Root) Stream(ctx context.Context, w io.Writer, h PetHandle) error {
	if _, state, _ := h.Peek(); state == preload.Resolved || state == preload.Failed {
		return r.Render(w, h)
	}

	if err := r.tmpl.ExecuteTemplate(w, "fallback", Fallback); err != nil {
		return err
	}
	if f, ok := w.(flusher); ok {
		f.Flush()
	}

	v, err := h.Read(ctx)
	if err != nil {
		return err
	}
	if err := r.tmpl.ExecuteTemplate(w, "reveal", nil); err != nil {
		return err
	}
	return r.RenderPet(w, v.PetByID)
}

func (r *Root) pageStart(w io.Writer) error { return r.tmpl.ExecuteTemplate(w, "page-start", nil) }
func (r *Root) pageEnd(w io.Writer) error   { return r.tmpl.ExecuteTemplate(w, "page-end", nil) }
func (r *Root) renderError(w io.Writer) error {
	return r.tmpl.ExecuteTemplate(w, "error", nil)
}
