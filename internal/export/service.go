package export

import (
	"context"
	"fmt"
	"html/template"
	"log/slog"
	"time"

	"tracker/internal/initiative"
	"tracker/internal/logging"
	"tracker/internal/markdown"
)

// Loader reads an initiative's documents.
type Loader interface {
	Get(ctx context.Context, id, directory string) (initiative.Detail, error)
}

var sectionLabels = map[initiative.File]string{
	initiative.FileReadme: "Overview",
	initiative.FileNotes:  "Notes",
	initiative.FileComms:  "Communications",
	initiative.FileLinks:  "Links",
}

// Service provides initiative export functionality
type Service struct {
	loader   Loader
	renderer *markdown.Renderer
	now      func() time.Time
	log      *slog.Logger
}

// NewService creates a new export service
func NewService(loader Loader) *Service {
	return &Service{
		loader:   loader,
		renderer: markdown.NewRenderer(true),
		now:      time.Now,
		log:      logging.New("export"),
	}
}

// Export generates an export in the requested format
func (s *Service) Export(ctx context.Context, req Request) (*Result, error) {
	detail, err := s.loader.Get(ctx, req.InitiativeID, req.Directory)
	if err != nil {
		return nil, err
	}

	meta := markdown.ParseMetadata(detail.Readme)
	title := meta.Name
	if title == "" {
		title = detail.ID
	}

	data := TemplateData{
		ID:          detail.ID,
		Title:       title,
		Status:      meta.Status,
		Type:        meta.Type,
		Deadline:    meta.Deadline,
		Blockers:    meta.Blockers,
		GeneratedAt: s.now(),
	}
	for _, f := range initiative.Files {
		source := detail.Document(f)
		if source == "" {
			continue
		}
		rendered, err := s.renderer.Render(source)
		if err != nil {
			return nil, fmt.Errorf("render %s: %w", f.Filename(), err)
		}
		data.Sections = append(data.Sections, TemplateSection{
			Key:   string(f),
			Label: sectionLabels[f],
			HTML:  template.HTML(rendered),
		})
	}

	html, err := RenderInitiativeHTML(data)
	if err != nil {
		return nil, fmt.Errorf("render template: %w", err)
	}

	basename := downloadName(meta.Name, detail.ID)
	s.log.Info("exporting initiative", "id", detail.ID, "format", req.Format, "file", basename)
	switch req.Format {
	case FormatHTML, "":
		return &Result{
			Data:     []byte(html),
			Filename: basename + ".html",
			MimeType: "text/html; charset=utf-8",
		}, nil
	case FormatPDF:
		return exportPDF(ctx, html, basename)
	case FormatDOCX:
		return exportDOCX(ctx, html, basename)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, req.Format)
	}
}
