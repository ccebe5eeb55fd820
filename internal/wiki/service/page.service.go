package service

import (
	"context"
	"errors"
	"strconv"
	"wikiforum/internal/wiki/model"
	"wikiforum/internal/wiki/repository"
)

// HistoryLimit caps the versions listed on a history page.
const HistoryLimit = 100

// ErrEmptyContent rejects an empty first version of a page.
var ErrEmptyContent = errors.New("page content is empty")

type PageService struct {
	Repo repository.PageRepository
}

func NewPageService(repo repository.PageRepository) *PageService {
	return &PageService{Repo: repo}
}

// Current returns the newest version at path, or repository.ErrNotFound.
func (s *PageService) Current(ctx context.Context, path string) (*model.Page, error) {
	pages, err := s.Repo.ByPath(ctx, path, 1)
	if err != nil {
		return nil, err
	}
	if len(pages) == 0 {
		return nil, repository.ErrNotFound
	}
	return &pages[0], nil
}

// Version resolves the raw ?v= value. Anything but a known id within path is not found.
func (s *PageService) Version(ctx context.Context, path, v string) (*model.Page, error) {
	id, err := strconv.ParseInt(v, 10, 64)
	if err != nil || id <= 0 {
		return nil, repository.ErrNotFound
	}
	return s.Repo.ByID(ctx, id, path)
}

// Lookup picks the version named by v, or the current page when v is empty.
func (s *PageService) Lookup(ctx context.Context, path, v string) (*model.Page, error) {
	if v != "" {
		return s.Version(ctx, path, v)
	}
	return s.Current(ctx, path)
}

func (s *PageService) History(ctx context.Context, path string) ([]model.Page, error) {
	return s.Repo.ByPath(ctx, path, HistoryLimit)
}

// Edit appends a new version unless content matches the current one. The
// read-then-write is not atomic: concurrent edits may both append.
func (s *PageService) Edit(ctx context.Context, path, content string) (page *model.Page, created bool, err error) {
	current, err := s.Current(ctx, path)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		if content == "" {
			return nil, false, ErrEmptyContent
		}
	case err != nil:
		return nil, false, err
	case current.Content == content:
		return current, false, nil
	}

	page, err = s.Repo.Create(ctx, path, content)
	if err != nil {
		return nil, false, err
	}
	return page, true, nil
}

func (s *PageService) Paths(ctx context.Context) ([]string, error) {
	return s.Repo.Paths(ctx)
}
