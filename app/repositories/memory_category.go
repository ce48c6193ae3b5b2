package repositories

import (
	"context"
	"sort"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/app/search"
)

// MemoryCategories is a CategoryStore backed by one map per level.
type MemoryCategories struct {
	mu     sync.RWMutex
	levels map[models.Level]map[primitive.ObjectID]models.Category
}

func NewMemoryCategories() *MemoryCategories {
	s := &MemoryCategories{levels: make(map[models.Level]map[primitive.ObjectID]models.Category, len(models.Levels))}
	for _, l := range models.Levels {
		s.levels[l] = make(map[primitive.ObjectID]models.Category)
	}
	return s
}

var _ CategoryStore = (*MemoryCategories)(nil)

func (s *MemoryCategories) ResolveSlug(_ context.Context, slug string) (search.CategoryMatch, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, level := range models.Levels {
		for id, c := range s.levels[level] {
			if c.Slug == slug {
				return search.CategoryMatch{Level: level, ID: id}, true, nil
			}
		}
	}
	return search.CategoryMatch{}, false, nil
}

func (s *MemoryCategories) FindByID(_ context.Context, level models.Level, id primitive.ObjectID) (models.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.levels[level][id]
	if !ok {
		return models.Category{}, ErrNotFound
	}
	return c, nil
}

func (s *MemoryCategories) FindByIDs(_ context.Context, level models.Level, ids []primitive.ObjectID) (map[primitive.ObjectID]models.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[primitive.ObjectID]models.Category, len(ids))
	for _, id := range ids {
		if c, ok := s.levels[level][id]; ok {
			out[id] = c
		}
	}
	return out, nil
}

func (s *MemoryCategories) List(_ context.Context, level models.Level) ([]models.Category, error) {
	s.mu.RLock()
	out := make([]models.Category, 0, len(s.levels[level]))
	for _, c := range s.levels[level] {
		out = append(out, c)
	}
	s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *MemoryCategories) Create(_ context.Context, level models.Level, c *models.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c.ID.IsZero() {
		c.ID = primitive.NewObjectID()
	}
	if s.slugTaken(level, c.Slug, c.ID) {
		return ErrDuplicate
	}
	s.levels[level][c.ID] = *c
	return nil
}

func (s *MemoryCategories) Update(_ context.Context, level models.Level, c *models.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.levels[level][c.ID]; !ok {
		return ErrNotFound
	}
	if s.slugTaken(level, c.Slug, c.ID) {
		return ErrDuplicate
	}
	s.levels[level][c.ID] = *c
	return nil
}

func (s *MemoryCategories) Delete(_ context.Context, level models.Level, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.levels[level][id]; !ok {
		return ErrNotFound
	}
	delete(s.levels[level], id)
	return nil
}

func (s *MemoryCategories) SlugExists(_ context.Context, level models.Level, slug string, exclude primitive.ObjectID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.slugTaken(level, slug, exclude), nil
}

func (s *MemoryCategories) slugTaken(level models.Level, slug string, exclude primitive.ObjectID) bool {
	for id, c := range s.levels[level] {
		if id != exclude && c.Slug == slug {
			return true
		}
	}
	return false
}
