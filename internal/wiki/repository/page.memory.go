package repository

import (
	"context"
	"sort"
	"sync"
	"time"
	"wikiforum/internal/wiki/model"
)

type PageMemoryRepository struct {
	mu     sync.RWMutex
	byPath map[string][]model.Page // oldest first
	nextID int64
}

func NewPageMemoryRepository() *PageMemoryRepository {
	return &PageMemoryRepository{
		byPath: make(map[string][]model.Page),
		nextID: 1,
	}
}

func (r *PageMemoryRepository) Create(_ context.Context, path, content string) (*model.Page, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	p := model.Page{ID: r.nextID, Path: path, Content: content, CreatedAt: now, LastModified: now}
	r.nextID++
	r.byPath[path] = append(r.byPath[path], p)
	return &p, nil
}

func (r *PageMemoryRepository) ByPath(_ context.Context, path string, limit int) ([]model.Page, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	versions := r.byPath[path]
	n := len(versions)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]model.Page, 0, n)
	for i := len(versions) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, versions[i])
	}
	return out, nil
}

func (r *PageMemoryRepository) ByID(_ context.Context, id int64, path string) (*model.Page, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.byPath[path] {
		if p.ID == id {
			out := p
			return &out, nil
		}
	}
	return nil, ErrNotFound
}

func (r *PageMemoryRepository) Paths(_ context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	paths := make([]string, 0, len(r.byPath))
	for p := range r.byPath {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths, nil
}
