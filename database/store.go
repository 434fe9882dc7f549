package database

import (
	"context"
	"time"

	"github.com/princinho/weatherbackend/models"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// UserStore persists user accounts. FindByUsername returns ErrNotFound for an
// unknown name and Insert returns ErrDuplicate for a taken one.
type UserStore interface {
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	Insert(ctx context.Context, user *models.User) error
	// SeedAdmin inserts user only if the username is free.
	SeedAdmin(ctx context.Context, user *models.User) (bool, error)
	UpdatePassword(ctx context.Context, username, hash string) (int64, error)
}

// StationStore exposes atomic single-document operations on weather
// stations. Mutations return the number of documents matched by a filter
// that includes the element id when one is given, so 0 means the station or
// the element does not exist.
type StationStore interface {
	Insert(ctx context.Context, st *models.Station) (bson.ObjectID, error)
	FindByID(ctx context.Context, id bson.ObjectID) (*models.Station, error)
	List(ctx context.Context, skip, limit int64) ([]models.Station, error)
	FindMany(ctx context.Context, filter models.StationFilter) ([]models.Station, error)
	Update(ctx context.Context, id bson.ObjectID, patch models.StationPatch, now time.Time) (int64, error)
	Delete(ctx context.Context, id bson.ObjectID) (int64, error)

	PushComment(ctx context.Context, id bson.ObjectID, c models.Comment, now time.Time) (int64, error)
	SetComment(ctx context.Context, id bson.ObjectID, commentID string, patch models.CommentPatch, now time.Time) (int64, error)
	PullComment(ctx context.Context, id bson.ObjectID, commentID string, now time.Time) (int64, error)

	PushReading(ctx context.Context, id bson.ObjectID, r models.Reading, now time.Time) (int64, error)
	SetReading(ctx context.Context, id bson.ObjectID, readingID string, patch models.ReadingPatch, now time.Time) (int64, error)
	PullReading(ctx context.Context, id bson.ObjectID, readingID string, now time.Time) (int64, error)
}

// RevocationStore is the logout blacklist. Revoke is idempotent.
type RevocationStore interface {
	Revoke(ctx context.Context, token string, at time.Time) error
	IsRevoked(ctx context.Context, token string) (bool, error)
	Close(ctx context.Context) error
}
