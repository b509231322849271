package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type File struct {
	ID           primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Name         string              `bson:"name" json:"name"`
	OriginalName string              `bson:"original_name" json:"originalName"`
	MimeType     string              `bson:"mime_type" json:"type"`
	Size         int64               `bson:"size" json:"size"`
	FolderID     *primitive.ObjectID `bson:"folder_id" json:"folderId"`
	OwnerID      primitive.ObjectID  `bson:"owner_id" json:"userId"`
	URL          string              `bson:"url" json:"url"`
	BlobID       string              `bson:"blob_id" json:"cloudinaryPublicId"`
	CreatedAt    time.Time           `bson:"created_at" json:"createdAt"`
	UpdatedAt    time.Time           `bson:"updated_at" json:"updatedAt"`
}
