package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/princinho/weatherbackend/common"
	"github.com/princinho/weatherbackend/database"
	"github.com/princinho/weatherbackend/dto"
	"github.com/princinho/weatherbackend/logging"
	"github.com/princinho/weatherbackend/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
)

func newStationService(t *testing.T) (*StationService, *database.MemoryStations) {
	t.Helper()
	store := database.NewMemoryStations()
	return NewStationService(store, logging.Discard()), store
}

func seedStation(t *testing.T, s *StationService, st models.Station) string {
	t.Helper()
	if st.StationName == "" {
		st.StationName = "Brisbane Central"
	}
	id, err := s.CreateStation(context.Background(), st)
	require.NoError(t, err)
	return id.Hex()
}

func ptr[T any](v T) *T { return &v }

func TestAddComment(t *testing.T) {
	ctx := context.Background()
	s, _ := newStationService(t)
	id := seedStation(t, s, models.Station{})

	_, err := s.AddComment(ctx, bson.NewObjectID().Hex(), dto.CreateCommentDTO{Username: "alice", Comment: "hi"})
	assert.ErrorIs(t, err, common.ErrNotFound)

	_, err = s.AddComment(ctx, "not-an-id", dto.CreateCommentDTO{Username: "alice", Comment: "hi"})
	assert.ErrorIs(t, err, common.ErrBadRequest)

	seen := map[string]bool{}
	for i := 0; i < 5; i++ {
		c, err := s.AddComment(ctx, id, dto.CreateCommentDTO{Username: "alice", Comment: "hi", Rating: 4})
		require.NoError(t, err)
		assert.False(t, seen[c.ID], "duplicate comment id %s", c.ID)
		seen[c.ID] = true
	}

	list, err := s.ListComments(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Brisbane Central", list.Station)
	assert.Len(t, list.Comments, 5)
}

func TestListComments_EmptyAndMissing(t *testing.T) {
	ctx := context.Background()
	s, _ := newStationService(t)
	id := seedStation(t, s, models.Station{})

	list, err := s.ListComments(ctx, id)
	require.NoError(t, err)
	assert.NotNil(t, list.Comments)
	assert.Empty(t, list.Comments)

	_, err = s.ListComments(ctx, bson.NewObjectID().Hex())
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestUpdateComment(t *testing.T) {
	ctx := context.Background()
	s, _ := newStationService(t)
	id := seedStation(t, s, models.Station{})
	c, err := s.AddComment(ctx, id, dto.CreateCommentDTO{Username: "alice", Comment: "hi", Rating: 2})
	require.NoError(t, err)

	require.NoError(t, s.UpdateComment(ctx, id, c.ID, models.CommentPatch{Rating: ptr(5)}))
	// same value again is still a success
	require.NoError(t, s.UpdateComment(ctx, id, c.ID, models.CommentPatch{Rating: ptr(5)}))

	list, err := s.ListComments(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 5, list.Comments[0].Rating)
	assert.Equal(t, "hi", list.Comments[0].Comment)

	err = s.UpdateComment(ctx, id, "missing", models.CommentPatch{Rating: ptr(1)})
	assert.ErrorIs(t, err, common.ErrNotFound)
	err = s.UpdateComment(ctx, bson.NewObjectID().Hex(), c.ID, models.CommentPatch{Rating: ptr(1)})
	assert.ErrorIs(t, err, common.ErrNotFound)
	err = s.UpdateComment(ctx, id, c.ID, models.CommentPatch{})
	assert.ErrorIs(t, err, common.ErrBadRequest)
}

func TestDeleteComment_MissingLeavesSequenceUnchanged(t *testing.T) {
	ctx := context.Background()
	s, _ := newStationService(t)
	id := seedStation(t, s, models.Station{})
	first, err := s.AddComment(ctx, id, dto.CreateCommentDTO{Username: "a", Comment: "one"})
	require.NoError(t, err)
	second, err := s.AddComment(ctx, id, dto.CreateCommentDTO{Username: "b", Comment: "two"})
	require.NoError(t, err)

	before, err := s.ListComments(ctx, id)
	require.NoError(t, err)

	err = s.DeleteComment(ctx, id, "no-such-comment")
	assert.ErrorIs(t, err, common.ErrNotFound)

	after, err := s.ListComments(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, before.Comments, after.Comments)

	require.NoError(t, s.DeleteComment(ctx, id, first.ID))
	after, err = s.ListComments(ctx, id)
	require.NoError(t, err)
	require.Len(t, after.Comments, 1)
	assert.Equal(t, second.ID, after.Comments[0].ID)

	assert.ErrorIs(t, s.DeleteComment(ctx, id, first.ID), common.ErrNotFound)
}

func TestAddReading_Defaults(t *testing.T) {
	ctx := context.Background()
	s, store := newStationService(t)
	id := seedStation(t, s, models.Station{})

	in, err := dto.ParseCreateReading(dto.Fields{"temp_c": "25.5", "humidity": "60"}, time.Now())
	require.NoError(t, err)
	r, err := s.AddReading(ctx, id, in)
	require.NoError(t, err)
	assert.NotEmpty(t, r.ID)

	oid, _ := bson.ObjectIDFromHex(id)
	st, err := store.FindByID(ctx, oid)
	require.NoError(t, err)
	require.Len(t, st.Readings, 1)
	got := st.Readings[0]
	assert.Equal(t, 25.5, got.TempC)
	assert.Equal(t, 60.0, got.Humidity)
	assert.Equal(t, 0.0, got.WindKmh)
	assert.Equal(t, 0.0, got.PressureKpa)
	assert.NotEmpty(t, got.TS)

	_, err = s.AddReading(ctx, bson.NewObjectID().Hex(), in)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestListReadings_Range(t *testing.T) {
	ctx := context.Background()
	s, _ := newStationService(t)
	id := seedStation(t, s, models.Station{})
	for _, ts := range []string{"2024-01-01T08:00:00Z", "2024-01-02T08:00:00Z", "2024-01-03T08:00:00Z"} {
		_, err := s.AddReading(ctx, id, dto.CreateReadingDTO{TS: ts, TempC: 10})
		require.NoError(t, err)
	}

	list, err := s.ListReadings(ctx, id, ReadingRange{From: "2024-01-02"})
	require.NoError(t, err)
	require.Len(t, list.Readings, 2)
	for _, r := range list.Readings {
		assert.GreaterOrEqual(t, r.TS, "2024-01-02")
	}

	list, err = s.ListReadings(ctx, id, ReadingRange{From: "2024-01-02", To: "2024-01-02T23:59:59Z"})
	require.NoError(t, err)
	require.Len(t, list.Readings, 1)
	assert.Equal(t, "2024-01-02T08:00:00Z", list.Readings[0].TS)

	list, err = s.ListReadings(ctx, id, ReadingRange{})
	require.NoError(t, err)
	assert.Len(t, list.Readings, 3)
}

func TestReadingRange_ExcludesMissingTimestamp(t *testing.T) {
	r := models.Reading{ID: "x"}
	assert.True(t, ReadingRange{}.contains(r))
	assert.False(t, ReadingRange{From: "2024"}.contains(r))
	assert.False(t, ReadingRange{To: "2024"}.contains(r))
}

func TestUpdateReading_BadNumberDoesNotMutate(t *testing.T) {
	ctx := context.Background()
	s, _ := newStationService(t)
	id := seedStation(t, s, models.Station{})
	r, err := s.AddReading(ctx, id, dto.CreateReadingDTO{TS: "2024-01-01", TempC: 20})
	require.NoError(t, err)

	// the boundary rejects the body before the service is reached
	_, err = dto.ParseReadingPatch(dto.Fields{"temp_c": "warm"})
	assert.ErrorIs(t, err, common.ErrBadRequest)

	list, err := s.ListReadings(ctx, id, ReadingRange{})
	require.NoError(t, err)
	assert.Equal(t, 20.0, list.Readings[0].TempC)

	require.NoError(t, s.UpdateReading(ctx, id, r.ID, models.ReadingPatch{TempC: ptr(21.5)}))
	list, err = s.ListReadings(ctx, id, ReadingRange{})
	require.NoError(t, err)
	assert.Equal(t, 21.5, list.Readings[0].TempC)

	assert.ErrorIs(t, s.UpdateReading(ctx, id, "nope", models.ReadingPatch{TempC: ptr(1.0)}), common.ErrNotFound)
	assert.ErrorIs(t, s.UpdateReading(ctx, id, r.ID, models.ReadingPatch{}), common.ErrBadRequest)
}

func TestDeleteReading(t *testing.T) {
	ctx := context.Background()
	s, _ := newStationService(t)
	id := seedStation(t, s, models.Station{})
	r, err := s.AddReading(ctx, id, dto.CreateReadingDTO{TS: "2024-01-01"})
	require.NoError(t, err)

	require.NoError(t, s.DeleteReading(ctx, id, r.ID))
	assert.ErrorIs(t, s.DeleteReading(ctx, id, r.ID), common.ErrNotFound)
	assert.ErrorIs(t, s.DeleteReading(ctx, "zzz", r.ID), common.ErrBadRequest)
}

func TestStationCRUD(t *testing.T) {
	ctx := context.Background()
	s, _ := newStationService(t)
	id := seedStation(t, s, models.Station{City: "Brisbane", AvgTempC: 42, MaxWindKmh: 20})

	st, err := s.GetStation(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, []string{AlertHeatwave}, st.Alerts)
	assert.False(t, st.CreatedAt.IsZero())

	require.NoError(t, s.UpdateStation(ctx, id, models.StationPatch{MaxWindKmh: ptr(120.0)}))
	st, err = s.GetStation(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, []string{AlertHeatwave, AlertStorm}, st.Alerts)
	require.NotNil(t, st.LastUpdatedAt)

	require.NoError(t, s.UpdateStation(ctx, id, models.StationPatch{City: ptr("Perth")}))
	st, err = s.GetStation(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Perth", st.City)
	assert.Len(t, st.Alerts, 2)

	assert.ErrorIs(t, s.UpdateStation(ctx, id, models.StationPatch{}), common.ErrBadRequest)
	assert.ErrorIs(t, s.UpdateStation(ctx, bson.NewObjectID().Hex(), models.StationPatch{City: ptr("x")}), common.ErrNotFound)

	items, err := s.ListStations(ctx, 1, 10)
	require.NoError(t, err)
	assert.Len(t, items, 1)

	require.NoError(t, s.DeleteStation(ctx, id))
	assert.ErrorIs(t, s.DeleteStation(ctx, id), common.ErrNotFound)
	_, err = s.GetStation(ctx, id)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

type brokenStations struct {
	*database.MemoryStations
}

func (brokenStations) PushComment(context.Context, bson.ObjectID, models.Comment, time.Time) (int64, error) {
	return 0, errors.New("server selection timeout")
}

func TestStorageFailureSurfaces(t *testing.T) {
	s := NewStationService(brokenStations{database.NewMemoryStations()}, logging.Discard())
	_, err := s.AddComment(context.Background(), bson.NewObjectID().Hex(), dto.CreateCommentDTO{Username: "a", Comment: "b"})
	assert.ErrorIs(t, err, common.ErrStorage)
	assert.Contains(t, common.Message(err), "server selection timeout")
}
