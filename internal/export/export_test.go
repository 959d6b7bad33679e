package export

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"tracker/internal/initiative"
)

type fakeLoader map[string]initiative.Detail

func (f fakeLoader) Get(_ context.Context, id, _ string) (initiative.Detail, error) {
	detail, ok := f[id]
	if !ok {
		return initiative.Detail{}, initiative.ErrNotFound
	}
	return detail, nil
}

func newTestService() *Service {
	svc := NewService(fakeLoader{
		"payments": {
			ID: "payments",
			Readme: "# Payments Revamp\n\n## Overview\n- **Type:** <!-- Discovery | PoC -->\n- **Status:** In Progress\n- **Target deadline:** 2026-12-01\n\n" +
				"## High-level Milestones\n- [ ] Rollout\n- [x] Discovery completed\n\n## Blockers / Risks\n- Vendor contract\n",
			Comms: "| Date | Channel |\n|------|---------|\n| 2026-01-02 | Slack |\n",
		},
		"untitled": {ID: "untitled", Notes: "just notes\n"},
	})
	svc.now = func() time.Time { return time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC) }
	return svc
}

func TestExportHTML(t *testing.T) {
	res, err := newTestService().Export(context.Background(), Request{InitiativeID: "payments", Format: FormatHTML})
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if res.Filename != "payments-revamp.html" || !strings.HasPrefix(res.MimeType, "text/html") {
		t.Fatalf("unexpected result metadata: %q %q", res.Filename, res.MimeType)
	}
	html := string(res.Data)
	for _, want := range []string{
		"<title>Payments Revamp</title>",
		"<span>In Progress</span>",
		"<span>Due 2026-12-01</span>",
		"<span>1 blocker</span>",
		"Exported Mar 14, 2026",
		`type="checkbox"`,
		"<td>Slack</td>",
		`<section class="document" id="comms">`,
	} {
		if !strings.Contains(html, want) {
			t.Errorf("expected %q in export", want)
		}
	}
	if strings.Contains(html, `id="notes"`) {
		t.Error("empty documents should be omitted")
	}
	if strings.Contains(html, "<!-- Discovery") {
		t.Error("raw HTML comments should not be rendered")
	}
}

func TestExportTitleFallsBackToID(t *testing.T) {
	res, err := newTestService().Export(context.Background(), Request{InitiativeID: "untitled"})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(res.Data), "<title>untitled</title>") {
		t.Fatalf("expected id as title:\n%s", res.Data)
	}
}

func TestExportMissingInitiative(t *testing.T) {
	_, err := newTestService().Export(context.Background(), Request{InitiativeID: "ghost", Format: FormatHTML})
	if !errors.Is(err, initiative.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestExportUnsupportedFormat(t *testing.T) {
	_, err := newTestService().Export(context.Background(), Request{InitiativeID: "payments", Format: "odt"})
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestExportPDFReportsMissingChrome(t *testing.T) {
	if _, ok := findChrome(); ok {
		t.Skip("chromium available")
	}
	_, err := newTestService().Export(context.Background(), Request{InitiativeID: "payments", Format: FormatPDF})
	if !errors.Is(err, ErrPDFDependencyMissing) {
		t.Fatalf("expected ErrPDFDependencyMissing, got %v", err)
	}
}

func TestExportDOCXReportsMissingPandoc(t *testing.T) {
	t.Setenv("PATH", t.TempDir())
	_, err := newTestService().Export(context.Background(), Request{InitiativeID: "payments", Format: FormatDOCX})
	if !errors.Is(err, ErrDOCXDependencyMissing) {
		t.Fatalf("expected ErrDOCXDependencyMissing, got %v", err)
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input   string
		want    Format
		wantErr bool
	}{
		{input: "", want: FormatHTML},
		{input: "PDF", want: FormatPDF},
		{input: " docx ", want: FormatDOCX},
		{input: "html", want: FormatHTML},
		{input: "rtf", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.input)
		if tt.wantErr {
			if !errors.Is(err, ErrUnsupportedFormat) {
				t.Errorf("ParseFormat(%q) error = %v, want ErrUnsupportedFormat", tt.input, err)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, %v; want %q", tt.input, got, err, tt.want)
		}
	}
}

func TestDownloadName(t *testing.T) {
	tests := []struct {
		name string
		id   string
		want string
	}{
		{name: "Payments Revamp", id: "payments", want: "payments-revamp"},
		{name: "Q3: Launch / EU (phase 2)", id: "q3", want: "q3-launch-eu-phase-2"},
		{name: "  --Café Ops--  ", id: "cafe", want: "caf-ops"},
		{name: "", id: "payments_v2", want: "payments-v2"},
		{name: "日本語", id: "jp-rollout", want: "jp-rollout"},
		{name: "", id: "…", want: "initiative"},
		{name: strings.Repeat("ab ", 40), id: "long", want: strings.TrimRight(strings.Repeat("ab-", 20), "-")},
	}
	for _, tt := range tests {
		if got := downloadName(tt.name, tt.id); got != tt.want {
			t.Errorf("downloadName(%q, %q) = %q, want %q", tt.name, tt.id, got, tt.want)
		}
	}
}

func TestHTMLDataURL(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"hello world", "hello%20world"},
		{"<p>#1</p>", "%3Cp%3E%231%3C%2Fp%3E"},
		{"100%", "100%25"},
		{"é", "%C3%A9"},
		{"", ""},
	}
	for _, tt := range tests {
		want := "data:text/html;charset=utf-8," + tt.want
		if got := htmlDataURL(tt.input); got != want {
			t.Errorf("htmlDataURL(%q) = %q, want %q", tt.input, got, want)
		}
	}
}
