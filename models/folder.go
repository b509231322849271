package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Folder struct {
	ID        primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Name      string               `bson:"name" json:"name"`
	ParentID  *primitive.ObjectID  `bson:"parent_id" json:"parentId"`
	OwnerID   primitive.ObjectID   `bson:"owner_id" json:"userId"`
	Path      []primitive.ObjectID `bson:"path" json:"path"` // ancestor ids, root first
	CreatedAt time.Time            `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time            `bson:"updated_at" json:"updatedAt"`
}

// IsRoot reports whether the folder sits at the top of its owner's tree.
func (f *Folder) IsRoot() bool {
	return f.ParentID == nil
}

// PathItem is one breadcrumb entry.
type PathItem struct {
	ID   primitive.ObjectID `json:"id"`
	Name string             `json:"name"`
}
