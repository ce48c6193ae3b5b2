package routes

import (
	"github.com/shashiranjanraj/storefront/app/controllers"
	"github.com/shashiranjanraj/storefront/app/services"
	"github.com/shashiranjanraj/storefront/pkg/auth"
	"github.com/shashiranjanraj/storefront/pkg/ctx"
	"github.com/shashiranjanraj/storefront/pkg/middleware"
	"github.com/shashiranjanraj/storefront/pkg/router"
)

// Services is what the API routes are served from.
type Services struct {
	Search     *services.SearchService
	Catalog    *services.CatalogService
	Categories *services.CategoryService
}

func RegisterAPI(r *router.Router, s Services) {
	searchController := controllers.NewSearchController(s.Search)
	productController := controllers.NewProductController(s.Catalog)
	categoryController := controllers.NewCategoryController(s.Categories)

	api := r.Group("/api")
	api.Get("/products/search", "products.search", ctx.Wrap(searchController.Search))
	api.Get("/products/{slug}", "products.show", ctx.Wrap(searchController.Show))
	api.Get("/categories", "categories.tree", ctx.Wrap(categoryController.Tree))
	api.Get("/categories/{slug}/products", "categories.products", ctx.Wrap(searchController.Browse))

	admin := api.Group("/admin", middleware.RequireRole(auth.RoleAdmin))

	admin.Post("/products", "admin.products.store", ctx.Wrap(productController.Store))
	admin.Get("/products/{id}", "admin.products.show", ctx.Wrap(productController.Show))
	admin.Put("/products/{id}", "admin.products.update", ctx.Wrap(productController.Update))
	admin.Delete("/products/{id}", "admin.products.destroy", ctx.Wrap(productController.Destroy))

	admin.Get("/categories/{level}", "admin.categories.index", ctx.Wrap(categoryController.Index))
	admin.Post("/categories/{level}", "admin.categories.store", ctx.Wrap(categoryController.Store))
	admin.Get("/categories/{level}/{id}", "admin.categories.show", ctx.Wrap(categoryController.Show))
	admin.Put("/categories/{level}/{id}", "admin.categories.update", ctx.Wrap(categoryController.Update))
	admin.Delete("/categories/{level}/{id}", "admin.categories.destroy", ctx.Wrap(categoryController.Destroy))
}
