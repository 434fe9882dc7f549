package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type User struct {
	ID           bson.ObjectID `bson:"_id,omitempty" json:"id"`
	Username     string        `bson:"username" json:"username"`
	PasswordHash string        `bson:"password" json:"-"` // never expose
	Admin        bool          `bson:"admin" json:"admin"`
	CreatedAt    time.Time     `bson:"created_at" json:"created_at"`
}

// RevokedToken is one entry of the logout blacklist.
type RevokedToken struct {
	Token     string    `bson:"token"`
	RevokedAt time.Time `bson:"revoked_at"`
}
