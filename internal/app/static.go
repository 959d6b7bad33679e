package app

import (
	"errors"
	"io/fs"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"tracker/internal/logging"
)

const indexFile = "index.html"

// StaticServer serves the frontend bundle from a fixed root. Paths that do
// not name a regular file fall back to index.html so client-side routes work.
type StaticServer struct {
	root string
	log  *slog.Logger
}

func NewStaticServer(root string) *StaticServer {
	if abs, err := filepath.Abs(root); err == nil {
		root = abs
	}
	if resolved, err := filepath.EvalSymlinks(root); err == nil {
		root = resolved
	}
	return &StaticServer{root: root, log: logging.New("static")}
}

func (s *StaticServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	target, err := s.resolve(r.URL)
	if errors.Is(err, errOutsideRoot) {
		writeError(w, http.StatusForbidden, "Forbidden")
		return
	}
	if err != nil {
		s.log.Debug("static path resolution failed", "path", r.URL.Path, "error", err)
		writeError(w, http.StatusBadRequest, "Bad request")
		return
	}

	if info, err := os.Stat(target); err == nil && info.Mode().IsRegular() {
		s.serveFile(w, r, target, info)
		return
	}

	index := filepath.Join(s.root, indexFile)
	info, err := os.Stat(index)
	if err != nil || !info.Mode().IsRegular() {
		writeError(w, http.StatusNotFound, "Not found")
		return
	}
	s.serveFile(w, r, index, info)
}

var errOutsideRoot = errors.New("path escapes static root")

// resolve maps the request path to a location beneath the root. Symlinks
// inside the root are followed and must stay within it.
func (s *StaticServer) resolve(u *url.URL) (string, error) {
	raw, err := url.PathUnescape(u.EscapedPath())
	if err != nil {
		return "", err
	}
	if strings.ContainsRune(raw, 0) {
		return "", errors.New("path contains NUL byte")
	}

	target := filepath.Join(s.root, filepath.FromSlash(raw))
	if !within(s.root, target) {
		return "", errOutsideRoot
	}
	resolved, err := filepath.EvalSymlinks(target)
	if errors.Is(err, fs.ErrNotExist) {
		return target, nil
	}
	if err != nil {
		return "", err
	}
	if !within(s.root, resolved) {
		return "", errOutsideRoot
	}
	return resolved, nil
}

func (s *StaticServer) serveFile(w http.ResponseWriter, r *http.Request, name string, info fs.FileInfo) {
	f, err := os.Open(name)
	if err != nil {
		writeError(w, http.StatusNotFound, "Not found")
		return
	}
	defer f.Close()

	contentType := mime.TypeByExtension(filepath.Ext(name))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	http.ServeContent(w, r, info.Name(), info.ModTime(), f)
}

func within(root, target string) bool {
	rel, err := filepath.Rel(root, target)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
