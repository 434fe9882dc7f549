package services

import (
	"context"
	"fmt"
	"math"

	"github.com/princinho/weatherbackend/common"
	"github.com/princinho/weatherbackend/models"
)

// Alert labels derived from station averages.
const (
	AlertHeatwave = "Heatwave Alert"
	AlertFrost    = "Frost Warning"
	AlertStorm    = "Storm Warning"
)

// DeriveAlerts returns the alerts for a station's average temperature and
// peak wind.
func DeriveAlerts(avgTempC, maxWindKmh float64) []string {
	alerts := []string{}
	if avgTempC > 40 {
		alerts = append(alerts, AlertHeatwave)
	}
	if avgTempC < 0 {
		alerts = append(alerts, AlertFrost)
	}
	if maxWindKmh > 100 {
		alerts = append(alerts, AlertStorm)
	}
	return alerts
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

type StationStats struct {
	Filters            map[string]string `json:"filters"`
	TotalStations      int               `json:"total_stations"`
	AvgTemperatureC    float64           `json:"avg_temperature_c"`
	AvgWindSpeedKmh    float64           `json:"avg_wind_speed_kmh"`
	AvgAirQualityIndex float64           `json:"avg_air_quality_index"`
	StationsIncluded   []string          `json:"stations_included"`
}

type StationAlert struct {
	StationName string   `json:"station_name"`
	City        string   `json:"city"`
	State       string   `json:"state"`
	Region      string   `json:"region"`
	Place       string   `json:"place"`
	Country     string   `json:"country"`
	Alerts      []string `json:"alerts"`
}

type AlertReport struct {
	Count      int            `json:"count"`
	FilteredBy string         `json:"filtered_by"`
	Summary    map[string]int `json:"summary_by_alert_type"`
	Alerts     []StationAlert `json:"alerts"`
}

// ReadingSummary aggregates reading values.
type ReadingSummary struct {
	TotalReadings int     `json:"total_readings"`
	AvgTemp       float64 `json:"avg_temp"`
	MinTemp       float64 `json:"min_temp"`
	MaxTemp       float64 `json:"max_temp"`
	AvgHumidity   float64 `json:"avg_humidity"`
	AvgWindKmh    float64 `json:"avg_wind_kmh"`
}

type StationTrends struct {
	StationName string `json:"station_name"`
	City        string `json:"city"`
	ReadingSummary
}

type GlobalTrends struct {
	TotalStations int `json:"total_stations"`
	ReadingSummary
}

// summarize returns false when there are no readings.
func summarize(readings []models.Reading) (ReadingSummary, bool) {
	if len(readings) == 0 {
		return ReadingSummary{}, false
	}
	var sumT, sumH, sumW float64
	minT, maxT := math.Inf(1), math.Inf(-1)
	for _, r := range readings {
		sumT += r.TempC
		sumH += r.Humidity
		sumW += r.WindKmh
		minT = math.Min(minT, r.TempC)
		maxT = math.Max(maxT, r.TempC)
	}
	n := float64(len(readings))
	return ReadingSummary{
		TotalReadings: len(readings),
		AvgTemp:       round2(sumT / n),
		MinTemp:       minT,
		MaxTemp:       maxT,
		AvgHumidity:   round2(sumH / n),
		AvgWindKmh:    round2(sumW / n),
	}, true
}

// Stats averages station summaries matching at least one of region, state
// or place.
func (s *StationService) Stats(ctx context.Context, filter models.StationFilter) (*StationStats, error) {
	if filter.Region == "" && filter.State == "" && filter.Place == "" {
		return nil, common.BadRequest("Missing filter parameter. Example: /weather/stats?region=England")
	}
	filter.City = ""
	filter.WithAlerts = false

	stations, err := s.stations.FindMany(ctx, filter)
	if err != nil {
		return nil, s.storageError(ctx, "station stats", err)
	}
	if len(stations) == 0 {
		return nil, common.NotFound("No weather data found for given filters")
	}

	var sumT, sumW, sumA float64
	names := make([]string, 0, len(stations))
	for _, st := range stations {
		sumT += st.AvgTempC
		sumW += st.MaxWindKmh
		sumA += float64(st.AirQualityIndex)
		name := st.StationName
		if name == "" {
			name = "Unknown Station"
		}
		names = append(names, name)
	}
	n := float64(len(stations))
	return &StationStats{
		Filters: map[string]string{
			"region": filter.Region,
			"state":  filter.State,
			"place":  filter.Place,
		},
		TotalStations:      len(stations),
		AvgTemperatureC:    round2(sumT / n),
		AvgWindSpeedKmh:    round2(sumW / n),
		AvgAirQualityIndex: round2(sumA / n),
		StationsIncluded:   names,
	}, nil
}

// Alerts lists stations carrying alerts with a count per alert type.
func (s *StationService) Alerts(ctx context.Context, filter models.StationFilter) (*AlertReport, error) {
	filter.WithAlerts = true
	stations, err := s.stations.FindMany(ctx, filter)
	if err != nil {
		return nil, s.storageError(ctx, "station alerts", err)
	}

	location := firstNonEmpty(filter.Region, filter.State, filter.City, filter.Place)
	report := &AlertReport{
		FilteredBy: location,
		Summary:    map[string]int{},
		Alerts:     make([]StationAlert, 0, len(stations)),
	}
	if report.FilteredBy == "" {
		report.FilteredBy = "all"
	}
	for _, st := range stations {
		if len(st.Alerts) == 0 {
			continue
		}
		report.Alerts = append(report.Alerts, StationAlert{
			StationName: st.StationName,
			City:        st.City,
			State:       st.State,
			Region:      st.Region,
			Place:       st.Place,
			Country:     st.Country,
			Alerts:      st.Alerts,
		})
		for _, a := range st.Alerts {
			report.Summary[a]++
		}
	}
	if len(report.Alerts) == 0 {
		if location == "" {
			location = "all locations"
		}
		return nil, common.NotFound(fmt.Sprintf("No weather alerts found for %s.", location))
	}
	report.Count = len(report.Alerts)
	return report, nil
}

func (s *StationService) Trends(ctx context.Context, stationID string) (*StationTrends, error) {
	id, err := parseStationID(stationID)
	if err != nil {
		return nil, err
	}
	st, err := s.findStation(ctx, id)
	if err != nil {
		return nil, err
	}
	summary, ok := summarize(st.Readings)
	if !ok {
		return nil, common.NotFound("No readings available")
	}
	return &StationTrends{StationName: st.StationName, City: st.City, ReadingSummary: summary}, nil
}

func (s *StationService) GlobalTrends(ctx context.Context) (*GlobalTrends, error) {
	stations, err := s.stations.List(ctx, 0, 0)
	if err != nil {
		return nil, s.storageError(ctx, "global trends", err)
	}
	if len(stations) == 0 {
		return nil, common.NotFound("No weather data found")
	}
	var all []models.Reading
	for _, st := range stations {
		all = append(all, st.Readings...)
	}
	summary, ok := summarize(all)
	if !ok {
		return nil, common.NotFound("No readings found")
	}
	return &GlobalTrends{TotalStations: len(stations), ReadingSummary: summary}, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
