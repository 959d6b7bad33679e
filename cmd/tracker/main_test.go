package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goliatone/go-slug"

	"tracker/internal/config"
)

func runCLI(t *testing.T, args ...string) string {
	t.Helper()
	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("tracker %s: %v\n%s", strings.Join(args, " "), err, errOut.String())
	}
	return out.String()
}

func TestCLIWorkflow(t *testing.T) {
	base := t.TempDir()
	root := filepath.Join(base, "initiatives")
	configPath := filepath.Join(base, "config.json")
	doc := config.Defaults()
	doc.Directories = []config.Directory{{Name: "Work", Path: root, Default: true}}
	raw, err := json.Marshal(doc)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(configPath, raw, 0o644); err != nil {
		t.Fatal(err)
	}

	id, err := slug.Normalize("Payments Revamp")
	if err != nil || id == "" {
		t.Fatalf("slug.Normalize() = %q, %v", id, err)
	}
	out := runCLI(t, "new", "--config", configPath, "--name", "Payments Revamp", "--type", "Growth")
	if !strings.Contains(out, "Created initiative "+id) {
		t.Fatalf("unexpected new output: %q", out)
	}
	if _, err := os.Stat(filepath.Join(root, id, "README.md")); err != nil {
		t.Fatalf("README not created: %v", err)
	}

	runCLI(t, "note", "--config", configPath, id, "Vendor", "call", "booked")
	notes, err := os.ReadFile(filepath.Join(root, id, "notes.md"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasSuffix(string(notes), "- Vendor call booked\n") {
		t.Fatalf("note not appended:\n%s", notes)
	}

	out = runCLI(t, "list", "--config", configPath)
	for _, want := range []string{id, "Payments Revamp", "Idea", "Growth"} {
		if !strings.Contains(out, want) {
			t.Errorf("list output missing %q:\n%s", want, out)
		}
	}

	out = runCLI(t, "search", "--config", configPath, "vendor")
	if !strings.Contains(out, id+"/notes.md") {
		t.Fatalf("search output missing match:\n%s", out)
	}

	out = runCLI(t, "show", "--config", configPath, id, "notes")
	if out != string(notes) {
		t.Fatalf("show output mismatch:\n%s", out)
	}
}
