// Package gitrepo keeps a git history of the initiative files under each
// directory root. The working tree stays the source of truth; the repository
// only records who changed what and when.
package gitrepo

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// Commit describes one recorded change.
type Commit struct {
	Hash      string    `json:"hash"`
	Message   string    `json:"message"`
	Author    string    `json:"author"`
	CreatedAt time.Time `json:"createdAt"`
	Files     []string  `json:"files,omitempty"`
}

type Service struct {
	author string
	lockMu sync.Mutex
	locks  map[string]*sync.Mutex
}

func New(author string) *Service {
	if strings.TrimSpace(author) == "" {
		author = "Initiative Tracker"
	}
	return &Service{
		author: author,
		locks:  make(map[string]*sync.Mutex),
	}
}

// Record stages files (slash-separated, relative to root) and commits them.
// The repository is initialized on first use. A commit with no changes is
// skipped and reported as a zero Commit.
func (s *Service) Record(root string, files []string, message string) (Commit, error) {
	lock := s.rootLock(root)
	lock.Lock()
	defer lock.Unlock()

	repo, err := s.ensureRepo(root)
	if err != nil {
		return Commit{}, err
	}

	worktree, err := repo.Worktree()
	if err != nil {
		return Commit{}, fmt.Errorf("open worktree: %w", err)
	}
	for _, file := range files {
		if _, err := worktree.Add(file); err != nil {
			return Commit{}, fmt.Errorf("git add %s: %w", file, err)
		}
	}

	hash, err := worktree.Commit(message, &git.CommitOptions{
		Author: &object.Signature{
			Name:  s.author,
			Email: fmt.Sprintf("%s@local.tracker", sanitizeEmail(s.author)),
			When:  time.Now(),
		},
	})
	if errors.Is(err, git.ErrEmptyCommit) {
		return Commit{}, nil
	}
	if err != nil {
		return Commit{}, fmt.Errorf("commit: %w", err)
	}

	commitObj, err := repo.CommitObject(hash)
	if err != nil {
		return Commit{}, fmt.Errorf("read commit object: %w", err)
	}
	info := toCommit(commitObj)
	info.Files = append([]string(nil), files...)
	return info, nil
}

// History lists commits, newest first, that touched files under
// "<initiativeID>/". A root without a repository has no history.
func (s *Service) History(root, initiativeID string, limit int) ([]Commit, error) {
	lock := s.rootLock(root)
	lock.Lock()
	defer lock.Unlock()

	items := make([]Commit, 0)
	repo, err := git.PlainOpen(root)
	if errors.Is(err, git.ErrRepositoryNotExists) {
		return items, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open repo: %w", err)
	}

	head, err := repo.Head()
	if errors.Is(err, plumbing.ErrReferenceNotFound) {
		return items, nil
	}
	if err != nil {
		return nil, fmt.Errorf("resolve HEAD: %w", err)
	}

	prefix := initiativeID + "/"
	iter, err := repo.Log(&git.LogOptions{
		From: head.Hash(),
		PathFilter: func(p string) bool {
			return strings.HasPrefix(p, prefix)
		},
	})
	if err != nil {
		return nil, fmt.Errorf("read log: %w", err)
	}
	defer iter.Close()

	err = iter.ForEach(func(commitObj *object.Commit) error {
		info := toCommit(commitObj)
		info.Files = touchedFiles(commitObj, prefix)
		items = append(items, info)
		if limit > 0 && len(items) >= limit {
			return io.EOF
		}
		return nil
	})
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("iterate log: %w", err)
	}
	return items, nil
}

func (s *Service) ensureRepo(root string) (*git.Repository, error) {
	repo, err := git.PlainOpen(root)
	if err == nil {
		return repo, nil
	}
	if !errors.Is(err, git.ErrRepositoryNotExists) {
		return nil, fmt.Errorf("open repo: %w", err)
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create repo dir: %w", err)
	}
	repo, err = git.PlainInit(root, false)
	if err != nil {
		return nil, fmt.Errorf("init repo: %w", err)
	}
	if err := repo.Storer.SetReference(plumbing.NewSymbolicReference(plumbing.HEAD, plumbing.NewBranchReferenceName("main"))); err != nil {
		return nil, fmt.Errorf("set HEAD to main: %w", err)
	}
	return repo, nil
}

func (s *Service) rootLock(root string) *sync.Mutex {
	key := filepath.Clean(root)
	s.lockMu.Lock()
	defer s.lockMu.Unlock()
	lock, ok := s.locks[key]
	if ok {
		return lock
	}
	lock = &sync.Mutex{}
	s.locks[key] = lock
	return lock
}

// touchedFiles lists the document names under prefix changed by commitObj.
func touchedFiles(commitObj *object.Commit, prefix string) []string {
	stats, err := commitObj.Stats()
	if err != nil {
		return nil
	}
	files := make([]string, 0, len(stats))
	for _, stat := range stats {
		if strings.HasPrefix(stat.Name, prefix) {
			files = append(files, path.Base(stat.Name))
		}
	}
	return files
}

func toCommit(commitObj *object.Commit) Commit {
	return Commit{
		Hash:      commitObj.Hash.String()[:7],
		Message:   strings.TrimSpace(commitObj.Message),
		Author:    commitObj.Author.Name,
		CreatedAt: commitObj.Author.When,
	}
}

func sanitizeEmail(input string) string {
	bytes := make([]rune, 0, len(input))
	for _, r := range input {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			bytes = append(bytes, r)
			continue
		}
		if r == ' ' || r == '-' || r == '_' {
			bytes = append(bytes, '.')
		}
	}
	if len(bytes) == 0 {
		return "user"
	}
	return string(bytes)
}
