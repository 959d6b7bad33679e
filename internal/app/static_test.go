package app

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func newStaticRoot(t *testing.T, withIndex bool) (string, string) {
	t.Helper()
	base := t.TempDir()
	root := filepath.Join(base, "dist")
	if err := os.MkdirAll(filepath.Join(root, "assets"), 0o755); err != nil {
		t.Fatal(err)
	}
	files := map[string]string{
		"assets/app.js":   "console.log(1)",
		"assets/app.css":  "body{}",
		"assets/blob.zzz": "raw",
	}
	if withIndex {
		files["index.html"] = "<html>index</html>"
	}
	for rel, content := range files {
		if err := os.WriteFile(filepath.Join(root, filepath.FromSlash(rel)), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.WriteFile(filepath.Join(base, "secret.txt"), []byte("secret"), 0o644); err != nil {
		t.Fatal(err)
	}
	return base, root
}

func serveStatic(root, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.URL.Path = target
	req.URL.RawPath = ""
	rr := httptest.NewRecorder()
	NewStaticServer(root).ServeHTTP(rr, req)
	return rr
}

func TestStaticServesFilesWithContentType(t *testing.T) {
	_, root := newStaticRoot(t, true)
	tests := []struct {
		target      string
		body        string
		contentType string
	}{
		{target: "/assets/app.js", body: "console.log(1)", contentType: "javascript"},
		{target: "/assets/app.css", body: "body{}", contentType: "text/css"},
		{target: "/assets/blob.zzz", body: "raw", contentType: "application/octet-stream"},
		{target: "/", body: "<html>index</html>", contentType: "text/html"},
		{target: "/initiatives/alpha", body: "<html>index</html>", contentType: "text/html"},
		{target: "/assets", body: "<html>index</html>", contentType: "text/html"},
	}
	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			rr := serveStatic(root, tt.target)
			if rr.Code != http.StatusOK {
				t.Fatalf("status = %d, body=%s", rr.Code, rr.Body.String())
			}
			if rr.Body.String() != tt.body {
				t.Fatalf("body = %q, want %q", rr.Body.String(), tt.body)
			}
			if ct := rr.Header().Get("Content-Type"); !strings.Contains(ct, tt.contentType) {
				t.Fatalf("Content-Type = %q, want %q", ct, tt.contentType)
			}
		})
	}
}

func TestStaticRejectsTraversal(t *testing.T) {
	_, root := newStaticRoot(t, true)
	for _, target := range []string{"/../secret.txt", "/assets/../../secret.txt"} {
		rr := serveStatic(root, target)
		if rr.Code != http.StatusForbidden {
			t.Fatalf("%s: status = %d, want 403", target, rr.Code)
		}
		if strings.Contains(rr.Body.String(), "secret") && !strings.Contains(rr.Body.String(), "error") {
			t.Fatalf("%s: leaked file contents", target)
		}
	}
}

func TestStaticRejectsSymlinkEscape(t *testing.T) {
	base, root := newStaticRoot(t, true)
	if err := os.Symlink(filepath.Join(base, "secret.txt"), filepath.Join(root, "leak.txt")); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}
	if rr := serveStatic(root, "/leak.txt"); rr.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rr.Code)
	}
}

func TestStaticMissingIndex(t *testing.T) {
	_, root := newStaticRoot(t, false)
	if rr := serveStatic(root, "/anything"); rr.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rr.Code)
	}
	if rr := serveStatic(root, "/assets/app.js"); rr.Code != http.StatusOK {
		t.Fatalf("existing files should still be served, got %d", rr.Code)
	}
}

func TestStaticBadPath(t *testing.T) {
	_, root := newStaticRoot(t, true)
	if rr := serveStatic(root, "/bad\x00path"); rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rr.Code)
	}
}
