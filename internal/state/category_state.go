package state

import (
	"sync"

	"github.com/aoyama/taskvault/internal/models"
	"github.com/aoyama/taskvault/internal/repository"
)

// CategoryState is the in-memory mirror of the category collection, following
// the same action protocol as TaskState.
type CategoryState struct {
	repo repository.CategoryRepository

	mu         sync.RWMutex
	categories []models.Category
	loading    bool
	lastErr    error
}

// NewCategoryState creates a CategoryState over a category repository.
func NewCategoryState(repo repository.CategoryRepository) *CategoryState {
	return &CategoryState{repo: repo}
}

// Loading reports whether the most recently settled action was marked in flight.
func (s *CategoryState) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// LastError returns the error captured by the most recent failing action.
func (s *CategoryState) LastError() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastErr
}

// Categories returns a copy of the cached collection in display order.
func (s *CategoryState) Categories() []models.Category {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Category, len(s.categories))
	copy(out, s.categories)
	return out
}

// Count returns the number of cached categories.
func (s *CategoryState) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.categories)
}

// GetByID looks a category up in the cache; ok is false when it is not there.
func (s *CategoryState) GetByID(id string) (models.Category, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.categories {
		if c.ID == id {
			return c, true
		}
	}
	return models.Category{}, false
}

// Load rebuilds the cache from the store.
func (s *CategoryState) Load() error {
	s.begin()
	categories, err := s.repo.GetAll()
	if err != nil {
		s.finish(err)
		return err
	}

	s.mu.Lock()
	s.categories = categories
	s.mu.Unlock()
	s.finish(nil)
	return nil
}

// Add persists a new category and appends it to the cache.
func (s *CategoryState) Add(data models.Category) (*models.Category, error) {
	s.begin()
	category, err := s.repo.Add(data)
	if err != nil {
		s.finish(err)
		return nil, err
	}

	s.mu.Lock()
	s.categories = append(s.categories, *category)
	s.mu.Unlock()
	s.finish(nil)
	return category, nil
}

// Update persists changes to one category and replaces its cached element.
func (s *CategoryState) Update(id string, changes repository.CategoryChanges) (*models.Category, error) {
	s.begin()
	category, err := s.repo.Update(id, changes)
	if err != nil {
		s.finish(err)
		return nil, err
	}

	s.mu.Lock()
	for i := range s.categories {
		if s.categories[i].ID == id {
			s.categories[i] = *category
			break
		}
	}
	s.mu.Unlock()
	s.finish(nil)
	return category, nil
}

// Delete removes a category; the repository's deletion guard rejects it with
// a conflict fault while tasks still reference the category, in which case
// the cache is left untouched.
func (s *CategoryState) Delete(id string) error {
	s.begin()
	if err := s.repo.Delete(id); err != nil {
		s.finish(err)
		return err
	}

	s.mu.Lock()
	kept := s.categories[:0]
	for _, c := range s.categories {
		if c.ID != id {
			kept = append(kept, c)
		}
	}
	s.categories = kept
	s.mu.Unlock()
	s.finish(nil)
	return nil
}

// Reorder persists the new order and rearranges the cache to match, with
// sort keys rewritten to positional indexes.
func (s *CategoryState) Reorder(idsInOrder []string) error {
	s.begin()
	if err := s.repo.Reorder(idsInOrder); err != nil {
		s.finish(err)
		return err
	}

	s.mu.Lock()
	byID := make(map[string]models.Category, len(s.categories))
	for _, c := range s.categories {
		byID[c.ID] = c
	}
	reordered := make([]models.Category, 0, len(idsInOrder))
	for position, id := range idsInOrder {
		if c, ok := byID[id]; ok {
			c.Order = position
			reordered = append(reordered, c)
		}
	}
	s.categories = reordered
	s.mu.Unlock()
	s.finish(nil)
	return nil
}

func (s *CategoryState) begin() {
	s.mu.Lock()
	s.loading = true
	s.lastErr = nil
	s.mu.Unlock()
}

func (s *CategoryState) finish(err error) {
	s.mu.Lock()
	if err != nil {
		s.lastErr = err
	}
	s.loading = false
	s.mu.Unlock()
}
