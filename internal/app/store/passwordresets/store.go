// internal/app/store/passwordresets/store.go
package passwordresets

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dalemusser/taskhive/internal/domain/models"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"
)

const (
	// SecretLength is the length of the token secret in bytes (32 bytes = 64 hex chars).
	SecretLength = 32
	// DefaultExpiry is how long a reset token is valid.
	DefaultExpiry = 1 * time.Hour
	// BcryptCost for hashing token secrets.
	BcryptCost = 10
)

var (
	// ErrTokenInvalid is returned when a token is unknown, malformed,
	// expired, or already consumed. Callers must not distinguish these
	// cases to the client.
	ErrTokenInvalid = errors.New("reset token is invalid or expired")
)

// Store manages password reset tokens.
//
// The token handed to the user is "<token_id>.<secret>". The ID locates
// the record; only a bcrypt hash of the secret is stored, so reading the
// collection cannot reconstruct a usable token.
type Store struct {
	c      *mongo.Collection
	expiry time.Duration
}

// New creates a new Store with the specified expiry duration.
// If expiry is 0 or negative, DefaultExpiry (1 hour) is used.
func New(db *mongo.Database, expiry time.Duration) *Store {
	if expiry <= 0 {
		expiry = DefaultExpiry
	}
	return &Store{
		c:      db.Collection("password_resets"),
		expiry: expiry,
	}
}

// Expiry returns the expiry duration for reset tokens.
func (s *Store) Expiry() time.Duration {
	return s.expiry
}

// Issue creates a reset token for userID and returns the plain token to
// email to the user. Any previous tokens for the user are invalidated.
func (s *Store) Issue(ctx context.Context, userID primitive.ObjectID) (string, error) {
	now := time.Now()

	secret := generateSecret()
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), BcryptCost)
	if err != nil {
		return "", fmt.Errorf("hash secret: %w", err)
	}

	// One live token per user.
	_, _ = s.c.DeleteMany(ctx, bson.M{"user_id": userID})

	pr := models.PasswordReset{
		ID:         primitive.NewObjectID(),
		TokenID:    uuid.NewString(),
		SecretHash: string(hash),
		UserID:     userID,
		ExpiresAt:  now.Add(s.expiry),
		CreatedAt:  now,
	}
	if _, err := s.c.InsertOne(ctx, pr); err != nil {
		return "", fmt.Errorf("insert reset token: %w", err)
	}

	return pr.TokenID + "." + secret, nil
}

// Verify checks that token is currently redeemable without consuming it.
// Returns ErrTokenInvalid on any failure.
func (s *Store) Verify(ctx context.Context, token string) (*models.PasswordReset, error) {
	pr, secret, err := s.lookup(ctx, token)
	if err != nil {
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(pr.SecretHash), []byte(secret)); err != nil {
		return nil, ErrTokenInvalid
	}
	return pr, nil
}

// Redeem verifies the token and marks it consumed in one pass. A token can
// be redeemed exactly once; a second caller loses the guarded update and
// gets ErrTokenInvalid.
func (s *Store) Redeem(ctx context.Context, token string) (*models.PasswordReset, error) {
	pr, err := s.Verify(ctx, token)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": pr.ID, "consumed_at": nil},
		bson.M{"$set": bson.M{"consumed_at": now}})
	if err != nil {
		return nil, err
	}
	if res.ModifiedCount == 0 {
		return nil, ErrTokenInvalid
	}
	pr.ConsumedAt = &now
	return pr, nil
}

// DeleteByUser deletes all reset tokens for a user.
func (s *Store) DeleteByUser(ctx context.Context, userID primitive.ObjectID) error {
	_, err := s.c.DeleteMany(ctx, bson.M{"user_id": userID})
	return err
}

// lookup splits the token, loads the live record, and returns it with the
// presented secret. Expiry is checked here rather than trusting the Mongo
// TTL sweep, which runs on its own schedule.
func (s *Store) lookup(ctx context.Context, token string) (*models.PasswordReset, string, error) {
	tokenID, secret, ok := strings.Cut(token, ".")
	if !ok || tokenID == "" || secret == "" {
		return nil, "", ErrTokenInvalid
	}

	var pr models.PasswordReset
	err := s.c.FindOne(ctx, bson.M{
		"token_id":    tokenID,
		"consumed_at": nil,
		"expires_at":  bson.M{"$gt": time.Now()},
	}).Decode(&pr)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, "", ErrTokenInvalid
		}
		return nil, "", err
	}
	return &pr, secret, nil
}

// generateSecret generates the random token secret.
// Panics if the system's cryptographic random number generator fails.
func generateSecret() string {
	b := make([]byte, SecretLength)
	if _, err := rand.Read(b); err != nil {
		panic("crypto/rand.Read failed: " + err.Error())
	}
	return hex.EncodeToString(b)
}
