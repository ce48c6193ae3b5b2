package controllers

import (
	"net/http"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/app/resources"
	"github.com/shashiranjanraj/storefront/app/services"
	"github.com/shashiranjanraj/storefront/pkg/ctx"
	"github.com/shashiranjanraj/storefront/pkg/resource"
)

// CategoryController serves the public tree and the per-level admin CRUD
// under /api/admin/categories/{level}.
type CategoryController struct {
	service *services.CategoryService
}

func NewCategoryController(service *services.CategoryService) *CategoryController {
	return &CategoryController{service: service}
}

// Tree handles GET /api/categories.
func (h *CategoryController) Tree(c *ctx.Context) {
	tree, err := h.service.Tree(c.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, map[string]any{"categories": tree})
}

func level(c *ctx.Context) (models.Level, bool) {
	l := models.Level(c.Param("level"))
	if !l.Valid() {
		c.NotFound("Unknown category level")
		return "", false
	}
	return l, true
}

func (h *CategoryController) Index(c *ctx.Context) {
	l, ok := level(c)
	if !ok {
		return
	}
	list, err := h.service.List(c.Context(), l)
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(resource.Collection(list, resources.CategoryOf))
}

func (h *CategoryController) Show(c *ctx.Context) {
	l, ok := level(c)
	if !ok {
		return
	}
	cat, err := h.service.Get(c.Context(), l, c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(resources.CategoryOf(cat))
}

func (h *CategoryController) Store(c *ctx.Context) {
	l, ok := level(c)
	if !ok {
		return
	}
	var in services.CategoryInput
	if !c.BindJSON(&in) {
		return
	}
	cat, err := h.service.Create(c.Context(), l, in)
	if err != nil {
		fail(c, err)
		return
	}
	c.Created(resources.CategoryOf(cat))
}

func (h *CategoryController) Update(c *ctx.Context) {
	l, ok := level(c)
	if !ok {
		return
	}
	var in services.CategoryInput
	if !c.BindJSON(&in) {
		return
	}
	cat, err := h.service.Update(c.Context(), l, c.Param("id"), in)
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(resources.CategoryOf(cat))
}

func (h *CategoryController) Destroy(c *ctx.Context) {
	l, ok := level(c)
	if !ok {
		return
	}
	if err := h.service.Delete(c.Context(), l, c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	c.NoContent()
}
