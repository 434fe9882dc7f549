package services

import (
	"context"

	"github.com/princinho/weatherbackend/common"
	"github.com/princinho/weatherbackend/dto"
	"github.com/princinho/weatherbackend/models"
	"go.mongodb.org/mongo-driver/v2/bson"
)

type ReadingList struct {
	Station  string
	Readings []models.Reading
}

// ReadingRange bounds readings by ts, inclusive on both ends. Empty bounds
// are open.
type ReadingRange struct {
	From string
	To   string
}

func (r ReadingRange) contains(rd models.Reading) bool {
	if r.From == "" && r.To == "" {
		return true
	}
	if rd.TS == "" {
		return false
	}
	if r.From != "" && rd.TS < r.From {
		return false
	}
	if r.To != "" && rd.TS > r.To {
		return false
	}
	return true
}

func (s *StationService) AddReading(ctx context.Context, stationID string, in dto.CreateReadingDTO) (*models.Reading, error) {
	id, err := parseStationID(stationID)
	if err != nil {
		return nil, err
	}
	r := models.Reading{
		ID:          bson.NewObjectID().Hex(),
		TS:          in.TS,
		TempC:       in.TempC,
		Humidity:    in.Humidity,
		WindKmh:     in.WindKmh,
		PressureKpa: in.PressureKpa,
	}

	n, err := s.stations.PushReading(ctx, id, r, s.now())
	if err != nil {
		return nil, s.storageError(ctx, "add reading", err)
	}
	if n == 0 {
		return nil, common.NotFound("Weather station not found")
	}
	s.logger.InfoContext(ctx, "reading added", "station_id", stationID, "reading_id", r.ID)
	return &r, nil
}

func (s *StationService) ListReadings(ctx context.Context, stationID string, rng ReadingRange) (*ReadingList, error) {
	id, err := parseStationID(stationID)
	if err != nil {
		return nil, err
	}
	st, err := s.findStation(ctx, id)
	if err != nil {
		return nil, err
	}

	out := make([]models.Reading, 0, len(st.Readings))
	for _, r := range st.Readings {
		if rng.contains(r) {
			out = append(out, r)
		}
	}
	return &ReadingList{Station: st.StationName, Readings: out}, nil
}

func (s *StationService) UpdateReading(ctx context.Context, stationID, readingID string, patch models.ReadingPatch) error {
	id, err := parseStationID(stationID)
	if err != nil {
		return err
	}
	if patch.Empty() {
		return common.BadRequest("No valid fields to update")
	}

	n, err := s.stations.SetReading(ctx, id, readingID, patch, s.now())
	if err != nil {
		return s.storageError(ctx, "update reading", err)
	}
	if n == 0 {
		s.explainMiss(ctx, id, models.ReadingsField, readingID)
		return common.NotFound("Reading not found")
	}
	return nil
}

func (s *StationService) DeleteReading(ctx context.Context, stationID, readingID string) error {
	id, err := parseStationID(stationID)
	if err != nil {
		return err
	}
	n, err := s.stations.PullReading(ctx, id, readingID, s.now())
	if err != nil {
		return s.storageError(ctx, "delete reading", err)
	}
	if n == 0 {
		s.explainMiss(ctx, id, models.ReadingsField, readingID)
		return common.NotFound("Reading not found")
	}
	return nil
}
