package app

import (
	"context"
	"errors"
	"net/http"

	"tracker/internal/config"
	"tracker/internal/export"
	"tracker/internal/gitrepo"
	"tracker/internal/initiative"
	"tracker/internal/search"
)

const defaultHistoryLimit = 50

// Options tunes optional collaborators of the Service.
type Options struct {
	// History enables the git journal; Author signs its commits.
	History bool
	Author  string
}

// Service is the facade the HTTP server and CLI talk to. It owns the config
// store and every component that reads directories through it.
type Service struct {
	config   *config.Store
	repo     *initiative.Repository
	searcher *search.Engine
	exporter *export.Service
}

func NewService(store *config.Store, opts Options) *Service {
	var repoOpts []initiative.Option
	if opts.History {
		repoOpts = append(repoOpts, initiative.WithJournal(gitrepo.New(opts.Author)))
	}
	repo := initiative.NewRepository(store, repoOpts...)
	return &Service{
		config:   store,
		repo:     repo,
		searcher: search.NewEngine(store),
		exporter: export.NewService(repo),
	}
}

// Config returns the persisted configuration, or defaults when no file
// exists yet.
func (s *Service) Config(_ context.Context) (config.Document, error) {
	return s.config.Persisted()
}

// UpdateConfig validates, persists and hot-swaps the configuration.
func (s *Service) UpdateConfig(_ context.Context, doc config.Document) error {
	if _, err := s.config.Replace(doc); err != nil {
		if errors.Is(err, config.ErrInvalid) {
			return domainError(http.StatusBadRequest, err.Error())
		}
		return err
	}
	return nil
}

func (s *Service) Directories() []config.Directory {
	return s.config.Directories()
}

// Server returns the configured listen address parts.
func (s *Service) Server() config.Server {
	return s.config.Server()
}

func (s *Service) ListInitiatives(ctx context.Context, directory string) ([]initiative.Summary, error) {
	return s.repo.List(ctx, directory)
}

func (s *Service) GetInitiative(ctx context.Context, id, directory string) (initiative.Detail, error) {
	return s.repo.Get(ctx, id, directory)
}

func (s *Service) GetFile(ctx context.Context, id, file, directory string) (initiative.FileContent, error) {
	f, err := initiative.ParseFile(file)
	if err != nil {
		return initiative.FileContent{}, err
	}
	return s.repo.GetFile(ctx, id, f, directory)
}

func (s *Service) CreateInitiative(ctx context.Context, req initiative.CreateRequest) (string, error) {
	return s.repo.Create(ctx, req)
}

func (s *Service) AddNote(ctx context.Context, id string, req initiative.NoteRequest) error {
	return s.repo.AddNote(ctx, id, req)
}

func (s *Service) AddComm(ctx context.Context, id string, req initiative.CommRequest) error {
	return s.repo.AddComm(ctx, id, req)
}

func (s *Service) ReplaceFile(ctx context.Context, id, file string, req initiative.ReplaceRequest) error {
	f, err := initiative.ParseFile(file)
	if err != nil {
		return err
	}
	return s.repo.ReplaceFile(ctx, id, f, req)
}

// History returns up to limit journal commits for the initiative; a
// non-positive limit uses the default.
func (s *Service) History(ctx context.Context, id, directory string, limit int) ([]gitrepo.Commit, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	return s.repo.History(ctx, id, directory, limit)
}

func (s *Service) Search(ctx context.Context, query, directory string) ([]search.Result, error) {
	return s.searcher.Search(ctx, query, directory)
}

func (s *Service) Export(ctx context.Context, id, directory, format string) (*export.Result, error) {
	f, err := export.ParseFormat(format)
	if err != nil {
		return nil, domainError(http.StatusBadRequest, err.Error())
	}
	if err := initiative.ValidateID(id); err != nil {
		return nil, err
	}
	return s.exporter.Export(ctx, export.Request{
		InitiativeID: id,
		Directory:    directory,
		Format:       f,
	})
}
