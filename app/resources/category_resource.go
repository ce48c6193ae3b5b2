package resources

import "github.com/shashiranjanraj/storefront/app/models"

// Category is one node of the public category tree.
type Category struct {
	ID       string                `json:"id"`
	Name     string                `json:"name"`
	Slug     string                `json:"slug"`
	Status   models.CategoryStatus `json:"status"`
	Image    string                `json:"image"`
	ParentID *string               `json:"parent"`
	Children []Category            `json:"children,omitempty"`
}

func CategoryOf(c models.Category) Category {
	out := Category{
		ID:     c.ID.Hex(),
		Name:   c.Name,
		Slug:   c.Slug,
		Status: c.Status,
		Image:  c.Image,
	}
	if c.ParentID != nil {
		hex := c.ParentID.Hex()
		out.ParentID = &hex
	}
	return out
}
