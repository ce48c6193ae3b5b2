package controllers

import (
	"github.com/shashiranjanraj/storefront/app/services"
	"github.com/shashiranjanraj/storefront/pkg/ctx"
)

// ProductController serves the admin product endpoints.
type ProductController struct {
	catalog *services.CatalogService
}

func NewProductController(catalog *services.CatalogService) *ProductController {
	return &ProductController{catalog: catalog}
}

func (h *ProductController) Show(c *ctx.Context) {
	p, err := h.catalog.Get(c.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	res, err := h.catalog.Resource(c.Context(), p)
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(res)
}

func (h *ProductController) Store(c *ctx.Context) {
	var in services.ProductInput
	if !c.BindJSON(&in) {
		return
	}
	p, err := h.catalog.Create(c.Context(), in)
	if err != nil {
		fail(c, err)
		return
	}
	res, err := h.catalog.Resource(c.Context(), p)
	if err != nil {
		fail(c, err)
		return
	}
	c.Created(res)
}

func (h *ProductController) Update(c *ctx.Context) {
	var in services.ProductInput
	if !c.BindJSON(&in) {
		return
	}
	p, err := h.catalog.Update(c.Context(), c.Param("id"), in)
	if err != nil {
		fail(c, err)
		return
	}
	res, err := h.catalog.Resource(c.Context(), p)
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(res)
}

func (h *ProductController) Destroy(c *ctx.Context) {
	if err := h.catalog.Delete(c.Context(), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	c.NoContent()
}
