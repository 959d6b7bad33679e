// Package initiative stores initiatives as directories of markdown files. The
// filesystem is the only source of truth: every read re-parses from disk.
package initiative

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"tracker/internal/config"
	"tracker/internal/gitrepo"
	"tracker/internal/logging"
	"tracker/internal/markdown"
)

const dateLayout = "2006-01-02"

// Resolver maps an optional directory name to a configured root.
type Resolver interface {
	Resolve(name string) config.Directory
	InitiativeTypes() []string
}

// Journal records writes. Paths are slash-separated and relative to root.
type Journal interface {
	Record(root string, paths []string, message string) (gitrepo.Commit, error)
	History(root, initiativeID string, limit int) ([]gitrepo.Commit, error)
}

type Repository struct {
	dirs    Resolver
	journal Journal
	now     func() time.Time
	log     *slog.Logger

	writeFile func(name string, data []byte, perm fs.FileMode) error

	lockMu sync.Mutex
	locks  map[string]*sync.Mutex
}

type Option func(*Repository)

// WithJournal enables history recording.
func WithJournal(j Journal) Option {
	return func(r *Repository) { r.journal = j }
}

// WithClock overrides the clock used for note and comm dates.
func WithClock(now func() time.Time) Option {
	return func(r *Repository) { r.now = now }
}

func NewRepository(dirs Resolver, opts ...Option) *Repository {
	r := &Repository{
		dirs:      dirs,
		now:       time.Now,
		log:       logging.New("initiative"),
		writeFile: os.WriteFile,
		locks:     make(map[string]*sync.Mutex),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Root returns the resolved directory for an optional name.
func (r *Repository) Root(directory string) config.Directory {
	return r.dirs.Resolve(directory)
}

// List summarizes every subdirectory of the root that holds a README.md, in
// lexicographic order. A missing root yields an empty list.
func (r *Repository) List(ctx context.Context, directory string) ([]Summary, error) {
	dir := r.dirs.Resolve(directory)
	items := make([]Summary, 0)

	entries, err := os.ReadDir(dir.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return items, nil
	}
	if err != nil {
		return nil, ioFailure("read directory", err)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		id := entry.Name()
		// os.Stat follows symlinked initiative directories.
		info, err := os.Stat(filepath.Join(dir.Path, id))
		if err != nil || !info.IsDir() {
			continue
		}
		raw, err := os.ReadFile(filepath.Join(dir.Path, id, FileReadme.Filename()))
		if err != nil {
			continue
		}
		meta := markdown.ParseMetadata(string(raw))
		name := meta.Name
		if name == "" {
			name = id
		}
		items = append(items, Summary{
			ID:        id,
			Name:      name,
			Status:    meta.Status,
			Type:      meta.Type,
			Deadline:  meta.Deadline,
			Blockers:  meta.Blockers,
			Directory: dir.Name,
		})
	}
	return items, nil
}

// Get returns the text of all four documents. Absent documents are empty.
func (r *Repository) Get(_ context.Context, id, directory string) (Detail, error) {
	if err := ValidateID(id); err != nil {
		return Detail{}, err
	}
	base := filepath.Join(r.dirs.Resolve(directory).Path, id)
	if err := requireDir(base, id); err != nil {
		return Detail{}, err
	}

	docs := make(map[File]string, len(Files))
	for _, f := range Files {
		raw, err := os.ReadFile(filepath.Join(base, f.Filename()))
		if err != nil {
			continue
		}
		docs[f] = string(raw)
	}
	return Detail{
		ID:     id,
		Readme: docs[FileReadme],
		Notes:  docs[FileNotes],
		Comms:  docs[FileComms],
		Links:  docs[FileLinks],
	}, nil
}

// GetFile returns one document, which must exist.
func (r *Repository) GetFile(_ context.Context, id string, file File, directory string) (FileContent, error) {
	if err := ValidateID(id); err != nil {
		return FileContent{}, err
	}
	if !file.Valid() {
		return FileContent{}, invalidf("invalid file name %q", string(file))
	}
	raw, err := os.ReadFile(filepath.Join(r.dirs.Resolve(directory).Path, id, file.Filename()))
	if errors.Is(err, fs.ErrNotExist) {
		return FileContent{}, fmt.Errorf("%w: %s for initiative %q", ErrNotFound, file.Filename(), id)
	}
	if err != nil {
		return FileContent{}, ioFailure("read file", err)
	}
	return FileContent{Content: string(raw)}, nil
}

// Create scaffolds a new initiative and returns its id.
func (r *Repository) Create(_ context.Context, req CreateRequest) (string, error) {
	req = req.normalized()
	if err := req.Validate(); err != nil {
		return "", invalid(err)
	}

	dir := r.dirs.Resolve(req.Directory)
	lock := r.lock(dir.Path, req.ID)
	lock.Lock()
	defer lock.Unlock()

	base := filepath.Join(dir.Path, req.ID)
	if _, err := os.Lstat(base); err == nil {
		return "", fmt.Errorf("%w: initiative %q", ErrAlreadyExists, req.ID)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return "", ioFailure("stat initiative", err)
	}
	if err := os.MkdirAll(dir.Path, 0o755); err != nil {
		return "", ioFailure("create directory root", err)
	}
	if err := os.Mkdir(base, 0o755); err != nil {
		if errors.Is(err, fs.ErrExist) {
			return "", fmt.Errorf("%w: initiative %q", ErrAlreadyExists, req.ID)
		}
		return "", ioFailure("create initiative", err)
	}

	docs := scaffold(req.ID, req.Name, req.Type, r.dirs.InitiativeTypes(), r.today())
	paths := make([]string, 0, len(Files))
	for _, f := range Files {
		if err := r.writeFile(filepath.Join(base, f.Filename()), []byte(docs[f]), 0o644); err != nil {
			if rmErr := os.RemoveAll(base); rmErr != nil {
				r.log.Warn("partial initiative left behind", "id", req.ID, "error", rmErr)
			}
			return "", ioFailure("write "+f.Filename(), err)
		}
		paths = append(paths, path.Join(req.ID, f.Filename()))
	}
	r.record(dir.Path, paths, fmt.Sprintf("Create initiative %s", req.ID))
	r.log.Info("initiative created", "id", req.ID, "directory", dir.Name)
	return req.ID, nil
}

// AddNote appends a note under today's heading, starting the heading if it
// is not in the file yet.
func (r *Repository) AddNote(_ context.Context, id string, req NoteRequest) error {
	if err := ValidateID(id); err != nil {
		return err
	}
	req.Note = strings.TrimSpace(req.Note)
	if err := req.Validate(); err != nil {
		return invalid(err)
	}

	dir := r.dirs.Resolve(req.Directory)
	lock := r.lock(dir.Path, id)
	lock.Lock()
	defer lock.Unlock()

	target := filepath.Join(dir.Path, id, FileNotes.Filename())
	raw, err := os.ReadFile(target)
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: notes.md for initiative %q", ErrNotFound, id)
	}
	if err != nil {
		return ioFailure("read notes", err)
	}

	today := r.today()
	entry := "- " + req.Note + "\n"
	if !strings.Contains(string(raw), "## "+today) {
		entry = "\n## " + today + "\n" + entry
	}
	if err := appendFile(target, entry); err != nil {
		return err
	}
	r.record(dir.Path, []string{path.Join(id, FileNotes.Filename())}, fmt.Sprintf("Add note to %s", id))
	return nil
}

// AddComm appends a row to the communications table.
func (r *Repository) AddComm(_ context.Context, id string, req CommRequest) error {
	if err := ValidateID(id); err != nil {
		return err
	}
	req = req.normalized()
	if err := req.Validate(); err != nil {
		return invalid(err)
	}

	dir := r.dirs.Resolve(req.Directory)
	lock := r.lock(dir.Path, id)
	lock.Lock()
	defer lock.Unlock()

	target := filepath.Join(dir.Path, id, FileComms.Filename())
	if _, err := os.Stat(target); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: comms.md for initiative %q", ErrNotFound, id)
		}
		return ioFailure("stat comms", err)
	}
	row := fmt.Sprintf("| %s | %s | %s | %s |\n", r.today(), req.Channel, req.Link, req.Context)
	if err := appendFile(target, row); err != nil {
		return err
	}
	r.record(dir.Path, []string{path.Join(id, FileComms.Filename())}, fmt.Sprintf("Log %s communication for %s", req.Channel, id))
	return nil
}

// ReplaceFile overwrites an existing document verbatim.
func (r *Repository) ReplaceFile(_ context.Context, id string, file File, req ReplaceRequest) error {
	if err := ValidateID(id); err != nil {
		return err
	}
	if !file.Valid() {
		return invalidf("invalid file name %q", string(file))
	}
	if err := req.Validate(); err != nil {
		return invalid(err)
	}

	dir := r.dirs.Resolve(req.Directory)
	lock := r.lock(dir.Path, id)
	lock.Lock()
	defer lock.Unlock()

	target := filepath.Join(dir.Path, id, file.Filename())
	info, err := os.Stat(target)
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s for initiative %q", ErrNotFound, file.Filename(), id)
	}
	if err != nil {
		return ioFailure("stat file", err)
	}
	if err := os.WriteFile(target, []byte(*req.Content), info.Mode().Perm()); err != nil {
		return ioFailure("write file", err)
	}
	r.record(dir.Path, []string{path.Join(id, file.Filename())}, fmt.Sprintf("Update %s in %s", file.Filename(), id))
	return nil
}

// History lists journal commits touching the initiative, newest first.
// Without a journal the history is empty.
func (r *Repository) History(_ context.Context, id, directory string, limit int) ([]gitrepo.Commit, error) {
	if err := ValidateID(id); err != nil {
		return nil, err
	}
	dir := r.dirs.Resolve(directory)
	if err := requireDir(filepath.Join(dir.Path, id), id); err != nil {
		return nil, err
	}
	if r.journal == nil {
		return []gitrepo.Commit{}, nil
	}
	commits, err := r.journal.History(dir.Path, id, limit)
	if err != nil {
		return nil, ioFailure("read history", err)
	}
	return commits, nil
}

// requireDir reports ErrNotFound unless base is an existing directory.
func requireDir(base, id string) error {
	info, err := os.Stat(base)
	if errors.Is(err, fs.ErrNotExist) || (err == nil && !info.IsDir()) {
		return fmt.Errorf("%w: initiative %q", ErrNotFound, id)
	}
	if err != nil {
		return ioFailure("stat initiative", err)
	}
	return nil
}

func (r *Repository) today() string {
	return r.now().Format(dateLayout)
}

func (r *Repository) record(root string, paths []string, message string) {
	if r.journal == nil {
		return
	}
	if _, err := r.journal.Record(root, paths, message); err != nil {
		r.log.Warn("history record failed", "root", root, "message", message, "error", err)
	}
}

func (r *Repository) lock(root, id string) *sync.Mutex {
	key := filepath.Join(root, id)
	r.lockMu.Lock()
	defer r.lockMu.Unlock()
	lock, ok := r.locks[key]
	if ok {
		return lock
	}
	lock = &sync.Mutex{}
	r.locks[key] = lock
	return lock
}

func appendFile(target, text string) error {
	f, err := os.OpenFile(target, os.O_APPEND|os.O_WRONLY, 0)
	if err != nil {
		return ioFailure("open for append", err)
	}
	if _, err := f.WriteString(text); err != nil {
		_ = f.Close()
		return ioFailure("append", err)
	}
	if err := f.Close(); err != nil {
		return ioFailure("close", err)
	}
	return nil
}
