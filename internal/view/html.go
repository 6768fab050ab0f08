package view

import (
	"embed"
	"fmt"
	"html/template"
	"io"

	"github.com/kpozdnikin/nft-history/internal/service"
)

//go:embed templates/*.html
var templateFS embed.FS

type HTMLRenderer struct {
	tmpl *template.Template
}

func NewHTMLRenderer() (*HTMLRenderer, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parsing templates: %w", err)
	}
	return &HTMLRenderer{tmpl: tmpl}, nil
}

// Render writes the full lookup page.
func (r *HTMLRenderer) Render(w io.Writer, state service.State) error {
	if err := r.tmpl.ExecuteTemplate(w, "page.html", NewPage(state)); err != nil {
		return fmt.Errorf("rendering page: %w", err)
	}
	return nil
}
