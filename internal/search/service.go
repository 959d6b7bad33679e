package search

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"tracker/internal/logging"
)

// Engine performs case-insensitive substring search over the *.md files of
// every initiative under a directory root.
type Engine struct {
	dirs    Resolver
	workers int
	log     *slog.Logger
}

func NewEngine(dirs Resolver) *Engine {
	return &Engine{
		dirs:    dirs,
		workers: runtime.GOMAXPROCS(0),
		log:     logging.New("search"),
	}
}

// Search returns results ordered by initiative id, then file name. An empty
// query returns no results. Unreadable files and directories are skipped.
func (e *Engine) Search(ctx context.Context, query, directory string) ([]Result, error) {
	results := make([]Result, 0)
	if query == "" {
		return results, nil
	}
	root := e.dirs.Resolve(directory).Path

	entries, err := os.ReadDir(root)
	if err != nil {
		e.log.Debug("search root unreadable", "root", root, "error", err)
		return results, nil
	}
	ids := make([]string, 0, len(entries))
	for _, entry := range entries {
		if strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		info, err := os.Stat(filepath.Join(root, entry.Name()))
		if err != nil || !info.IsDir() {
			continue
		}
		ids = append(ids, entry.Name())
	}
	sort.Strings(ids)

	needle := strings.ToLower(query)
	perInitiative := make([][]Result, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for i, id := range ids {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			perInitiative[i] = scanInitiative(filepath.Join(root, id), id, needle)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, found := range perInitiative {
		results = append(results, found...)
	}
	return results, nil
}

// scanInitiative searches the markdown files directly inside dir. Only the
// file name is matched against the extension, so ids and roots may hold any
// characters.
func scanInitiative(dir, id, needle string) []Result {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}

	var results []Result
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || filepath.Ext(name) != ".md" {
			continue
		}
		raw, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			continue
		}
		content := string(raw)
		if !strings.Contains(strings.ToLower(content), needle) {
			continue
		}
		results = append(results, Result{
			Initiative: id,
			File:       name,
			Matches:    matchingLines(content, needle),
		})
	}
	return results
}

func matchingLines(content, needle string) []Match {
	matches := make([]Match, 0, MaxMatchesPerFile)
	for i, line := range strings.Split(content, "\n") {
		if !strings.Contains(strings.ToLower(line), needle) {
			continue
		}
		matches = append(matches, Match{LineNum: i + 1, Text: truncate(line, MaxLineRunes)})
		if len(matches) == MaxMatchesPerFile {
			break
		}
	}
	return matches
}

func truncate(line string, limit int) string {
	runes := []rune(line)
	if len(runes) <= limit {
		return line
	}
	return string(runes[:limit])
}
