package repositories

import (
	"context"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/app/search"
	"github.com/shashiranjanraj/storefront/pkg/metrics"
)

// MemoryProducts is a ProductStore backed by a map. It enforces the same
// unique slug and SKU constraints as the Mongo indexes.
type MemoryProducts struct {
	mu    sync.RWMutex
	items map[primitive.ObjectID]models.Product
}

func NewMemoryProducts(seed ...models.Product) *MemoryProducts {
	s := &MemoryProducts{items: make(map[primitive.ObjectID]models.Product, len(seed))}
	for _, p := range seed {
		if p.ID.IsZero() {
			p.ID = primitive.NewObjectID()
		}
		s.items[p.ID] = cloneProduct(p)
	}
	return s
}

var _ ProductStore = (*MemoryProducts)(nil)

func (s *MemoryProducts) snapshot() []models.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Product, 0, len(s.items))
	for _, p := range s.items {
		out = append(out, cloneProduct(p))
	}
	return out
}

func (s *MemoryProducts) Find(_ context.Context, q *search.Query) ([]models.Product, error) {
	defer metrics.ObserveStore("memory", "find", time.Now())
	page, _ := search.Apply(q, s.snapshot())
	return page, nil
}

func (s *MemoryProducts) Count(_ context.Context, q *search.Query) (int64, error) {
	defer metrics.ObserveStore("memory", "count", time.Now())
	if q.Empty {
		return 0, nil
	}
	var n int64
	s.mu.RLock()
	for _, p := range s.items {
		if q.Matches(p) {
			n++
		}
	}
	s.mu.RUnlock()
	return n, nil
}

func (s *MemoryProducts) FindByID(_ context.Context, id primitive.ObjectID) (models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.items[id]
	if !ok {
		return models.Product{}, ErrNotFound
	}
	return cloneProduct(p), nil
}

func (s *MemoryProducts) FindBySlug(_ context.Context, slug string) (models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.items {
		if p.Slug == slug {
			return cloneProduct(p), nil
		}
	}
	return models.Product{}, ErrNotFound
}

func (s *MemoryProducts) Create(_ context.Context, p *models.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	if s.conflicts(*p) {
		return ErrDuplicate
	}
	s.items[p.ID] = cloneProduct(*p)
	return nil
}

func (s *MemoryProducts) Update(_ context.Context, p *models.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[p.ID]; !ok {
		return ErrNotFound
	}
	if s.conflicts(*p) {
		return ErrDuplicate
	}
	s.items[p.ID] = cloneProduct(*p)
	return nil
}

func (s *MemoryProducts) Delete(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[id]; !ok {
		return ErrNotFound
	}
	delete(s.items, id)
	return nil
}

func (s *MemoryProducts) SlugExists(_ context.Context, slug string, exclude primitive.ObjectID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for id, p := range s.items {
		if id != exclude && p.Slug == slug {
			return true, nil
		}
	}
	return false, nil
}

func (s *MemoryProducts) SKUsTaken(_ context.Context, skus []string, exclude primitive.ObjectID) ([]string, error) {
	s.mu.RLock()
	others := make([]models.Product, 0, len(s.items))
	for id, p := range s.items {
		if id != exclude {
			others = append(others, p)
		}
	}
	s.mu.RUnlock()
	return intersectSKUs(skus, others), nil
}

// conflicts reports a slug or SKU clash with any other product. Caller
// holds the lock.
func (s *MemoryProducts) conflicts(p models.Product) bool {
	mine := p.SKUs()
	for id, other := range s.items {
		if id == p.ID {
			continue
		}
		if other.Slug == p.Slug || len(intersectSKUs(mine, []models.Product{other})) > 0 {
			return true
		}
	}
	return false
}

func cloneProduct(p models.Product) models.Product {
	c := p
	if p.SubCategoryID != nil {
		id := *p.SubCategoryID
		c.SubCategoryID = &id
	}
	if p.ChildCategoryID != nil {
		id := *p.ChildCategoryID
		c.ChildCategoryID = &id
	}
	if p.Price.Sale != nil {
		sale := *p.Price.Sale
		c.Price.Sale = &sale
	}
	c.Variations = append([]models.Variation(nil), p.Variations...)
	for i, v := range c.Variations {
		if v.Price != nil {
			vp := *v.Price
			c.Variations[i].Price = &vp
		}
	}
	c.Tags = append([]string(nil), p.Tags...)
	c.Images.Gallery = append([]string(nil), p.Images.Gallery...)
	return c
}
