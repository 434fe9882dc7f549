package database

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/princinho/weatherbackend/models"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

type StationRepository struct {
	col *mongo.Collection
}

func NewStationRepository(db *mongo.Database) *StationRepository {
	return &StationRepository{col: db.Collection(WeatherCollection)}
}

func (r *StationRepository) Insert(ctx context.Context, st *models.Station) (bson.ObjectID, error) {
	if st.ID.IsZero() {
		st.ID = bson.NewObjectID()
	}
	if st.Comments == nil {
		st.Comments = []models.Comment{}
	}
	if st.Readings == nil {
		st.Readings = []models.Reading{}
	}
	if _, err := r.col.InsertOne(ctx, st); err != nil {
		return bson.ObjectID{}, fmt.Errorf("insert station: %w", err)
	}
	return st.ID, nil
}

func (r *StationRepository) FindByID(ctx context.Context, id bson.ObjectID) (*models.Station, error) {
	var st models.Station
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&st); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find station: %w", err)
	}
	return &st, nil
}

func (r *StationRepository) List(ctx context.Context, skip, limit int64) ([]models.Station, error) {
	opts := options.Find().
		SetSkip(skip).
		SetLimit(limit).
		SetSort(bson.D{{Key: "_id", Value: 1}})
	return r.find(ctx, bson.M{}, opts)
}

func (r *StationRepository) FindMany(ctx context.Context, f models.StationFilter) ([]models.Station, error) {
	filter := bson.M{}
	for field, q := range map[string]string{
		"region": f.Region,
		"state":  f.State,
		"city":   f.City,
		"place":  f.Place,
	} {
		if q != "" {
			filter[field] = bson.M{"$regex": regexp.QuoteMeta(q), "$options": "i"}
		}
	}
	if f.WithAlerts {
		filter["alerts"] = bson.M{"$exists": true, "$ne": bson.A{}}
	}
	return r.find(ctx, filter, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
}

func (r *StationRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptionsBuilder) ([]models.Station, error) {
	cursor, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find stations: %w", err)
	}
	defer cursor.Close(ctx)

	items := make([]models.Station, 0)
	for cursor.Next(ctx) {
		var st models.Station
		if err := cursor.Decode(&st); err != nil {
			return nil, fmt.Errorf("decode station: %w", err)
		}
		items = append(items, st)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("iterate stations: %w", err)
	}
	return items, nil
}

func (r *StationRepository) Update(ctx context.Context, id bson.ObjectID, patch models.StationPatch, now time.Time) (int64, error) {
	set := patch.Fields()
	set["last_updated_at"] = now
	res, err := r.col.UpdateByID(ctx, id, bson.M{"$set": set})
	if err != nil {
		return 0, fmt.Errorf("update station: %w", err)
	}
	return res.MatchedCount, nil
}

func (r *StationRepository) Delete(ctx context.Context, id bson.ObjectID) (int64, error) {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, fmt.Errorf("delete station: %w", err)
	}
	return res.DeletedCount, nil
}

func (r *StationRepository) PushComment(ctx context.Context, id bson.ObjectID, c models.Comment, now time.Time) (int64, error) {
	return r.pushElement(ctx, id, models.CommentsField, c, now)
}

func (r *StationRepository) SetComment(ctx context.Context, id bson.ObjectID, commentID string, patch models.CommentPatch, now time.Time) (int64, error) {
	return r.setElement(ctx, id, models.CommentsField, commentID, patch.Fields(), now)
}

func (r *StationRepository) PullComment(ctx context.Context, id bson.ObjectID, commentID string, now time.Time) (int64, error) {
	return r.pullElement(ctx, id, models.CommentsField, commentID, now)
}

func (r *StationRepository) PushReading(ctx context.Context, id bson.ObjectID, rd models.Reading, now time.Time) (int64, error) {
	return r.pushElement(ctx, id, models.ReadingsField, rd, now)
}

func (r *StationRepository) SetReading(ctx context.Context, id bson.ObjectID, readingID string, patch models.ReadingPatch, now time.Time) (int64, error) {
	return r.setElement(ctx, id, models.ReadingsField, readingID, patch.Fields(), now)
}

func (r *StationRepository) PullReading(ctx context.Context, id bson.ObjectID, readingID string, now time.Time) (int64, error) {
	return r.pullElement(ctx, id, models.ReadingsField, readingID, now)
}

func (r *StationRepository) pushElement(ctx context.Context, id bson.ObjectID, field string, elem any, now time.Time) (int64, error) {
	res, err := r.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$push": bson.M{field: elem},
		"$set":  bson.M{"last_updated_at": now},
	})
	if err != nil {
		return 0, fmt.Errorf("push %s: %w", field, err)
	}
	return res.MatchedCount, nil
}

// setElement updates fields of the array element matched by the positional
// operator; the filter pins both the station and the element id.
func (r *StationRepository) setElement(ctx context.Context, id bson.ObjectID, field, elemID string, fields bson.M, now time.Time) (int64, error) {
	set := bson.M{"last_updated_at": now}
	for k, v := range fields {
		set[field+".$."+k] = v
	}
	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": id, field + "._id": elemID},
		bson.M{"$set": set},
	)
	if err != nil {
		return 0, fmt.Errorf("update %s element: %w", field, err)
	}
	return res.MatchedCount, nil
}

func (r *StationRepository) pullElement(ctx context.Context, id bson.ObjectID, field, elemID string, now time.Time) (int64, error) {
	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": id, field + "._id": elemID},
		bson.M{
			"$pull": bson.M{field: bson.M{"_id": elemID}},
			"$set":  bson.M{"last_updated_at": now},
		},
	)
	if err != nil {
		return 0, fmt.Errorf("pull %s element: %w", field, err)
	}
	return res.MatchedCount, nil
}
