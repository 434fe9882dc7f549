package dto

import (
	"strings"

	"github.com/princinho/weatherbackend/common"
	"github.com/princinho/weatherbackend/models"
)

var stationText = []string{"station_name", "city", "state", "region", "place", "country", "overall_condition"}

// ParseCreateStation builds a new station from the request. Derived fields
// such as alerts are left to the service.
func ParseCreateStation(f Fields) (models.Station, error) {
	if !f.Has("station_name") || !f.Has("city") || !f.Has("country") {
		return models.Station{}, common.BadRequest("Missing required data: station_name, city and country")
	}
	patch, err := parseStationFields(f)
	if err != nil {
		return models.Station{}, err
	}
	st := models.Station{OverallCondition: "Unknown"}
	patch.Apply(&st)
	return st, nil
}

func ParseStationPatch(f Fields) (models.StationPatch, error) {
	patch, err := parseStationFields(f)
	if err != nil {
		return patch, err
	}
	if patch.Empty() {
		return patch, common.BadRequest("No valid data passed")
	}
	return patch, nil
}

func parseStationFields(f Fields) (models.StationPatch, error) {
	var p models.StationPatch
	text := []**string{&p.StationName, &p.City, &p.State, &p.Region, &p.Place, &p.Country, &p.OverallCondition}
	for i, key := range stationText {
		*text[i] = f.String(key)
	}

	var err error
	if p.AvgTempC, err = f.Float("avg_temp_c"); err != nil {
		return p, err
	}
	if p.MaxWindKmh, err = f.Float("max_wind_kmh"); err != nil {
		return p, err
	}
	if p.AirQualityIndex, err = f.Int("air_quality_index"); err != nil {
		return p, err
	}
	if p.Views, err = f.Int("views"); err != nil {
		return p, err
	}
	return p, nil
}

// StationFilterFromQuery reads the location filters shared by the stats and
// alerts endpoints.
func StationFilterFromQuery(query func(string) string) models.StationFilter {
	return models.StationFilter{
		Region: strings.TrimSpace(query("region")),
		State:  strings.TrimSpace(query("state")),
		City:   strings.TrimSpace(query("city")),
		Place:  strings.TrimSpace(query("place")),
	}
}
