package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Level is a tier of the fixed three-level category hierarchy.
type Level string

const (
	LevelCategory      Level = "category"
	LevelSubCategory   Level = "subcategory"
	LevelChildCategory Level = "childcategory"
)

// Levels lists the hierarchy from root to leaf.
var Levels = []Level{LevelCategory, LevelSubCategory, LevelChildCategory}

// Valid reports whether l is one of the three known levels.
func (l Level) Valid() bool {
	switch l {
	case LevelCategory, LevelSubCategory, LevelChildCategory:
		return true
	}
	return false
}

// Parent returns the level above l; the root level has none.
func (l Level) Parent() (Level, bool) {
	switch l {
	case LevelSubCategory:
		return LevelCategory, true
	case LevelChildCategory:
		return LevelSubCategory, true
	}
	return "", false
}

// Collection is the MongoDB collection holding nodes of this level.
func (l Level) Collection() string {
	switch l {
	case LevelSubCategory:
		return "subcategories"
	case LevelChildCategory:
		return "childcategories"
	default:
		return "categories"
	}
}

type CategoryStatus string

const (
	CategoryActive   CategoryStatus = "Active"
	CategoryInactive CategoryStatus = "Inactive"
)

// Category is a node at any level. ParentID is nil for top-level
// categories and required for the two lower levels.
type Category struct {
	ID        primitive.ObjectID  `bson:"_id,omitempty"    json:"id"`
	Name      string              `bson:"name"             json:"name"`
	Slug      string              `bson:"slug"             json:"slug"`
	Status    CategoryStatus      `bson:"status"           json:"status"`
	Image     string              `bson:"image,omitempty"  json:"image,omitempty"`
	ParentID  *primitive.ObjectID `bson:"parent,omitempty" json:"parent,omitempty"`
	CreatedAt time.Time           `bson:"createdAt"        json:"createdAt"`
	UpdatedAt time.Time           `bson:"updatedAt"        json:"updatedAt"`
}
