package services

import (
	"context"
	"testing"

	"github.com/princinho/weatherbackend/common"
	"github.com/princinho/weatherbackend/dto"
	"github.com/princinho/weatherbackend/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveAlerts(t *testing.T) {
	assert.Empty(t, DeriveAlerts(20, 50))
	assert.Equal(t, []string{AlertHeatwave}, DeriveAlerts(40.1, 100))
	assert.Equal(t, []string{AlertFrost, AlertStorm}, DeriveAlerts(-1, 101))
	assert.Empty(t, DeriveAlerts(40, 0))
}

func TestStats(t *testing.T) {
	ctx := context.Background()
	s, _ := newStationService(t)
	seedStation(t, s, models.Station{StationName: "A", Region: "England", AvgTempC: 10, MaxWindKmh: 30, AirQualityIndex: 40})
	seedStation(t, s, models.Station{StationName: "B", Region: "north england", AvgTempC: 15, MaxWindKmh: 45, AirQualityIndex: 51})
	seedStation(t, s, models.Station{StationName: "C", Region: "Wales", AvgTempC: 30})

	_, err := s.Stats(ctx, models.StationFilter{})
	assert.ErrorIs(t, err, common.ErrBadRequest)

	stats, err := s.Stats(ctx, models.StationFilter{Region: "ENGLAND"})
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalStations)
	assert.Equal(t, 12.5, stats.AvgTemperatureC)
	assert.Equal(t, 37.5, stats.AvgWindSpeedKmh)
	assert.Equal(t, 45.5, stats.AvgAirQualityIndex)
	assert.Equal(t, []string{"A", "B"}, stats.StationsIncluded)

	_, err = s.Stats(ctx, models.StationFilter{Region: "Scotland"})
	assert.ErrorIs(t, err, common.ErrNotFound)

	// regex metacharacters are matched literally
	_, err = s.Stats(ctx, models.StationFilter{Region: ".*"})
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestAlerts(t *testing.T) {
	ctx := context.Background()
	s, _ := newStationService(t)

	_, err := s.Alerts(ctx, models.StationFilter{})
	assert.ErrorIs(t, err, common.ErrNotFound)

	seedStation(t, s, models.Station{StationName: "Hot", City: "Perth", AvgTempC: 45, MaxWindKmh: 110})
	seedStation(t, s, models.Station{StationName: "Hotter", City: "Alice Springs", AvgTempC: 47})
	seedStation(t, s, models.Station{StationName: "Mild", City: "Perth", AvgTempC: 20})

	report, err := s.Alerts(ctx, models.StationFilter{})
	require.NoError(t, err)
	assert.Equal(t, 2, report.Count)
	assert.Equal(t, "all", report.FilteredBy)
	assert.Equal(t, map[string]int{AlertHeatwave: 2, AlertStorm: 1}, report.Summary)

	report, err = s.Alerts(ctx, models.StationFilter{City: "perth"})
	require.NoError(t, err)
	assert.Equal(t, 1, report.Count)
	assert.Equal(t, "perth", report.FilteredBy)

	_, err = s.Alerts(ctx, models.StationFilter{City: "Hobart"})
	assert.ErrorIs(t, err, common.ErrNotFound)
	assert.Equal(t, "No weather alerts found for Hobart.", common.Message(err))
}

func TestTrends(t *testing.T) {
	ctx := context.Background()
	s, _ := newStationService(t)
	id := seedStation(t, s, models.Station{StationName: "A", City: "Leeds"})

	_, err := s.Trends(ctx, id)
	assert.ErrorIs(t, err, common.ErrNotFound)
	_, err = s.GlobalTrends(ctx)
	assert.ErrorIs(t, err, common.ErrNotFound)

	for _, r := range []dto.CreateReadingDTO{
		{TS: "1", TempC: 10, Humidity: 50, WindKmh: 5},
		{TS: "2", TempC: 11, Humidity: 55, WindKmh: 6},
		{TS: "3", TempC: -2, Humidity: 61, WindKmh: 10},
	} {
		_, err := s.AddReading(ctx, id, r)
		require.NoError(t, err)
	}

	tr, err := s.Trends(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "A", tr.StationName)
	assert.Equal(t, 3, tr.TotalReadings)
	assert.Equal(t, 6.33, tr.AvgTemp)
	assert.Equal(t, -2.0, tr.MinTemp)
	assert.Equal(t, 11.0, tr.MaxTemp)
	assert.Equal(t, 55.33, tr.AvgHumidity)
	assert.Equal(t, 7.0, tr.AvgWindKmh)

	other := seedStation(t, s, models.Station{StationName: "B"})
	_, err = s.AddReading(ctx, other, dto.CreateReadingDTO{TS: "4", TempC: 30})
	require.NoError(t, err)

	g, err := s.GlobalTrends(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, g.TotalStations)
	assert.Equal(t, 4, g.TotalReadings)
	assert.Equal(t, 30.0, g.MaxTemp)
	assert.Equal(t, 12.25, g.AvgTemp)
}
