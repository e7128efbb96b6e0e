package types

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Account struct {
	ID primitive.ObjectID `bson:"_id,omitempty" json:"id"`

	Username  string `bson:"username" json:"username"`
	Email     string `bson:"email" json:"email"`
	FirstName string `bson:"firstName" json:"firstName"`
	LastName  string `bson:"lastName" json:"lastName"`

	// argon2id encoded hash, never the plain password
	Password string `bson:"password" json:"-"`

	Timestamps Timestamps `bson:"timestamps" json:"timestamps"`
}

type Timestamps struct {
	CreatedAt          int64 `bson:"createdAt" json:"createdAt"`
	UpdatedAt          int64 `bson:"updatedAt" json:"updatedAt"`
	LastLogin          int64 `bson:"lastLogin" json:"lastLogin"`
	LastPasswordChange int64 `bson:"lastPasswordChange" json:"lastPasswordChange"`
}
