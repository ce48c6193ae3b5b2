package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/app/repositories"
	"github.com/shashiranjanraj/storefront/app/resources"
	"github.com/shashiranjanraj/storefront/pkg/collection"
	"github.com/shashiranjanraj/storefront/pkg/logger"
)

// CategoryInput is the admin payload for any hierarchy level. Parent is
// required below the top level and rejected at it.
type CategoryInput struct {
	Name   string `json:"name"   validate:"required,max=100"`
	Slug   string `json:"slug"   validate:"nullable,alpha_dash,max=100"`
	Status string `json:"status" validate:"nullable,in=Active,Inactive"`
	Image  string `json:"image"  validate:"nullable,url"`
	Parent string `json:"parent" validate:"nullable,objectid"`
}

type CategoryService struct {
	store repositories.CategoryStore
	now   func() time.Time
}

func NewCategoryService(store repositories.CategoryStore) *CategoryService {
	return &CategoryService{store: store, now: time.Now}
}

func (s *CategoryService) List(ctx context.Context, level models.Level) ([]models.Category, error) {
	return s.store.List(ctx, level)
}

func (s *CategoryService) Get(ctx context.Context, level models.Level, id string) (models.Category, error) {
	oid, err := parseID(id)
	if err != nil {
		return models.Category{}, err
	}
	return s.store.FindByID(ctx, level, oid)
}

func (s *CategoryService) Create(ctx context.Context, level models.Level, in CategoryInput) (models.Category, error) {
	now := s.now().UTC()
	c := models.Category{CreatedAt: now}
	if err := s.apply(ctx, level, &c, in); err != nil {
		return models.Category{}, err
	}
	if err := s.store.Create(ctx, level, &c); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return models.Category{}, fmt.Errorf("%w: %s", ErrSlugTaken, c.Slug)
		}
		return models.Category{}, err
	}
	logger.WithCtx(ctx).Info("category created", "level", level, "slug", c.Slug)
	return c, nil
}

func (s *CategoryService) Update(ctx context.Context, level models.Level, id string, in CategoryInput) (models.Category, error) {
	c, err := s.Get(ctx, level, id)
	if err != nil {
		return models.Category{}, err
	}
	if err := s.apply(ctx, level, &c, in); err != nil {
		return models.Category{}, err
	}
	if err := s.store.Update(ctx, level, &c); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return models.Category{}, fmt.Errorf("%w: %s", ErrSlugTaken, c.Slug)
		}
		return models.Category{}, err
	}
	return c, nil
}

func (s *CategoryService) Delete(ctx context.Context, level models.Level, id string) error {
	oid, err := parseID(id)
	if err != nil {
		return err
	}
	return s.store.Delete(ctx, level, oid)
}

func (s *CategoryService) apply(ctx context.Context, level models.Level, c *models.Category, in CategoryInput) error {
	parentLevel, needsParent := level.Parent()
	switch {
	case needsParent && in.Parent == "":
		return fmt.Errorf("%w: %s requires a parent", ErrParentNotFound, level)
	case needsParent:
		pid, err := parseID(in.Parent)
		if err != nil {
			return err
		}
		if _, err := s.store.FindByID(ctx, parentLevel, pid); err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return fmt.Errorf("%w: %s %s", ErrParentNotFound, parentLevel, in.Parent)
			}
			return err
		}
		c.ParentID = &pid
	default:
		c.ParentID = nil
	}

	slug := Slugify(in.Slug)
	if slug == "" {
		slug = Slugify(in.Name)
	}
	if slug == "" {
		slug = fallbackSlug(c.Slug, string(level))
	}
	taken, err := s.store.SlugExists(ctx, level, slug, c.ID)
	if err != nil {
		return err
	}
	if taken {
		return fmt.Errorf("%w: %s", ErrSlugTaken, slug)
	}

	c.Name = strings.TrimSpace(in.Name)
	c.Slug = slug
	c.Image = in.Image
	c.Status = models.CategoryStatus(in.Status)
	if c.Status == "" {
		c.Status = models.CategoryActive
	}
	c.UpdatedAt = s.now().UTC()
	return nil
}

// Tree returns the active hierarchy nested root to leaf.
func (s *CategoryService) Tree(ctx context.Context) ([]resources.Category, error) {
	var levels [3][]models.Category
	for i, level := range models.Levels {
		all, err := s.store.List(ctx, level)
		if err != nil {
			return nil, err
		}
		levels[i] = collection.Filter(all, func(c models.Category) bool { return c.Status != models.CategoryInactive })
	}

	byParent := func(cs []models.Category) map[primitive.ObjectID][]models.Category {
		return collection.GroupBy(cs, func(c models.Category) primitive.ObjectID {
			if c.ParentID == nil {
				return primitive.NilObjectID
			}
			return *c.ParentID
		})
	}
	subs, children := byParent(levels[1]), byParent(levels[2])

	return collection.Map(levels[0], func(root models.Category) resources.Category {
		node := resources.CategoryOf(root)
		node.Children = collection.Map(subs[root.ID], func(sub models.Category) resources.Category {
			n := resources.CategoryOf(sub)
			n.Children = collection.Map(children[sub.ID], resources.CategoryOf)
			return n
		})
		return node
	}), nil
}
