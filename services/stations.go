package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/princinho/weatherbackend/common"
	"github.com/princinho/weatherbackend/database"
	"github.com/princinho/weatherbackend/models"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// StationService implements station CRUD, the comment and reading
// sub-resources and the derived statistics. Every nested mutation is a
// single atomic store update.
type StationService struct {
	stations database.StationStore
	logger   *slog.Logger
	now      func() time.Time
}

func NewStationService(stations database.StationStore, logger *slog.Logger) *StationService {
	return &StationService{
		stations: stations,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func parseStationID(hex string) (bson.ObjectID, error) {
	id, err := bson.ObjectIDFromHex(hex)
	if err != nil {
		return bson.NilObjectID, common.BadRequest("Invalid station id")
	}
	return id, nil
}

func (s *StationService) ListStations(ctx context.Context, page, size int) ([]models.Station, error) {
	if page < 1 {
		page = 1
	}
	skip := int64(page-1) * int64(size)
	if skip < 0 || (size > 0 && skip/int64(size) != int64(page-1)) {
		return []models.Station{}, nil
	}
	items, err := s.stations.List(ctx, skip, int64(size))
	if err != nil {
		return nil, s.storageError(ctx, "list stations", err)
	}
	return items, nil
}

func (s *StationService) GetStation(ctx context.Context, stationID string) (*models.Station, error) {
	id, err := parseStationID(stationID)
	if err != nil {
		return nil, err
	}
	return s.findStation(ctx, id)
}

// CreateStation stores st with derived alerts and empty sub-resources.
func (s *StationService) CreateStation(ctx context.Context, st models.Station) (bson.ObjectID, error) {
	st.ID = bson.NilObjectID
	st.Alerts = DeriveAlerts(st.AvgTempC, st.MaxWindKmh)
	st.CreatedAt = s.now()
	st.LastUpdatedAt = nil
	st.Comments = []models.Comment{}
	st.Readings = []models.Reading{}

	id, err := s.stations.Insert(ctx, &st)
	if err != nil {
		return bson.NilObjectID, s.storageError(ctx, "insert station", err)
	}
	s.logger.InfoContext(ctx, "station created", "station_id", id.Hex(), "alerts", len(st.Alerts))
	return id, nil
}

// UpdateStation applies a sparse update. Alerts are recomputed when the
// temperature or wind changes.
func (s *StationService) UpdateStation(ctx context.Context, stationID string, patch models.StationPatch) error {
	id, err := parseStationID(stationID)
	if err != nil {
		return err
	}
	if patch.Empty() {
		return common.BadRequest("No valid data passed")
	}

	if patch.AvgTempC != nil || patch.MaxWindKmh != nil {
		current, err := s.findStation(ctx, id)
		if err != nil {
			return err
		}
		temp, wind := current.AvgTempC, current.MaxWindKmh
		if patch.AvgTempC != nil {
			temp = *patch.AvgTempC
		}
		if patch.MaxWindKmh != nil {
			wind = *patch.MaxWindKmh
		}
		patch.Alerts = DeriveAlerts(temp, wind)
	}

	n, err := s.stations.Update(ctx, id, patch, s.now())
	if err != nil {
		return s.storageError(ctx, "update station", err)
	}
	if n == 0 {
		return common.NotFound("Weather record not found")
	}
	return nil
}

func (s *StationService) DeleteStation(ctx context.Context, stationID string) error {
	id, err := parseStationID(stationID)
	if err != nil {
		return err
	}
	n, err := s.stations.Delete(ctx, id)
	if err != nil {
		return s.storageError(ctx, "delete station", err)
	}
	if n == 0 {
		return common.NotFound("Record not found")
	}
	s.logger.InfoContext(ctx, "station deleted", "station_id", stationID)
	return nil
}

func (s *StationService) findStation(ctx context.Context, id bson.ObjectID) (*models.Station, error) {
	st, err := s.stations.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, common.NotFound("Station not found")
		}
		return nil, s.storageError(ctx, "find station", err)
	}
	return st, nil
}

// explainMiss logs whether a zero-match mutation missed the station or only
// the element. The caller's result is NotFound either way.
func (s *StationService) explainMiss(ctx context.Context, id bson.ObjectID, field, elemID string) {
	cause := "element"
	if _, err := s.stations.FindByID(ctx, id); errors.Is(err, database.ErrNotFound) {
		cause = "station"
	}
	s.logger.InfoContext(ctx, "sub-resource mutation matched nothing",
		"station_id", id.Hex(), "field", field, "element_id", elemID, "missing", cause)
}

func (s *StationService) storageError(ctx context.Context, op string, err error) error {
	s.logger.ErrorContext(ctx, "store operation failed", "op", op, "error", err)
	return common.Storage(op, err)
}
