package services

import "errors"

var (
	// ErrSKUTaken is returned when a product or variation SKU is already
	// used anywhere in the catalog, or repeated within one product.
	ErrSKUTaken = errors.New("sku already in use")

	// ErrSlugTaken is returned when a category slug collides within its level.
	ErrSlugTaken = errors.New("slug already in use")

	// ErrParentNotFound is returned when a referenced parent or product
	// category does not exist.
	ErrParentNotFound = errors.New("parent category not found")

	// ErrInvalidID is returned for a malformed ObjectID.
	ErrInvalidID = errors.New("invalid id")
)
