package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type User struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name          string             `bson:"name" json:"name"`
	Email         string             `bson:"email" json:"email"`
	PasswordHash  string             `bson:"password" json:"-"`
	EmailVerified *time.Time         `bson:"email_verified" json:"emailVerified"`
	CreatedAt     time.Time          `bson:"created_at" json:"createdAt"`
}
