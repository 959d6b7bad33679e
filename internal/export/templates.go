package export

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"time"
)

//go:embed templates/*.html
var templateFS embed.FS

var initiativeTemplate = template.Must(
	template.New("initiative.html").Funcs(template.FuncMap{
		"formatDate": func(t time.Time, layout string) string {
			return t.Format(layout)
		},
		"plural": func(n int, one, many string) string {
			if n == 1 {
				return fmt.Sprintf("%d %s", n, one)
			}
			return fmt.Sprintf("%d %s", n, many)
		},
	}).ParseFS(templateFS, "templates/initiative.html"),
)

// TemplateData holds data for initiative template rendering
type TemplateData struct {
	ID          string
	Title       string
	Status      string
	Type        string
	Deadline    string
	Blockers    int
	GeneratedAt time.Time
	Sections    []TemplateSection
}

// TemplateSection is one rendered document.
type TemplateSection struct {
	Key   string
	Label string
	HTML  template.HTML
}

// RenderInitiativeHTML renders the initiative template with provided data
func RenderInitiativeHTML(data TemplateData) (string, error) {
	var buf bytes.Buffer
	if err := initiativeTemplate.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
