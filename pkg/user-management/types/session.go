package types

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Session binds a browser to an authenticated account. The document is
// removed by a TTL index once ExpiresAt has passed.
type Session struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	SessionID string             `bson:"sessionID" json:"sessionID"`
	AccountID string             `bson:"accountID" json:"accountID"`
	CreatedAt int64              `bson:"createdAt" json:"createdAt"`
	ExpiresAt time.Time          `bson:"expiresAt" json:"expiresAt"`
}
