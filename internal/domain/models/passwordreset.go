// internal/domain/models/passwordreset.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PasswordReset is a single-use, time-limited password reset token.
//
// The token the user receives is "<token_id>.<secret>": the ID locates this
// record and the secret is verified against SecretHash. Only the hash is
// stored, so a database read cannot reconstruct a usable token.
type PasswordReset struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	TokenID    string             `bson:"token_id" json:"-"`
	SecretHash string             `bson:"secret_hash" json:"-"`
	UserID     primitive.ObjectID `bson:"user_id" json:"-"`
	ExpiresAt  time.Time          `bson:"expires_at" json:"-"` // TTL index field
	ConsumedAt *time.Time         `bson:"consumed_at,omitempty" json:"-"`
	CreatedAt  time.Time          `bson:"created_at" json:"-"`
}
