package dto

import (
	"time"

	"github.com/princinho/weatherbackend/common"
	"github.com/princinho/weatherbackend/models"
)

var readingNumbers = []string{"temp_c", "humidity", "wind_kmh", "pressure_kpa"}

type CreateReadingDTO struct {
	TS          string
	TempC       float64
	Humidity    float64
	WindKmh     float64
	PressureKpa float64
}

// ParseCreateReading fills absent numbers with 0 and an absent ts with now
// in RFC 3339 UTC.
func ParseCreateReading(f Fields, now time.Time) (CreateReadingDTO, error) {
	dto := CreateReadingDTO{TS: f.Get("ts")}
	if dto.TS == "" {
		dto.TS = now.UTC().Format(time.RFC3339)
	}
	dst := []*float64{&dto.TempC, &dto.Humidity, &dto.WindKmh, &dto.PressureKpa}
	for i, key := range readingNumbers {
		v, err := f.Float(key)
		if err != nil {
			return CreateReadingDTO{}, err
		}
		if v != nil {
			*dst[i] = *v
		}
	}
	return dto, nil
}

func ParseReadingPatch(f Fields) (models.ReadingPatch, error) {
	var patch models.ReadingPatch
	dst := []**float64{&patch.TempC, &patch.Humidity, &patch.WindKmh, &patch.PressureKpa}
	for i, key := range readingNumbers {
		v, err := f.Float(key)
		if err != nil {
			return models.ReadingPatch{}, err
		}
		*dst[i] = v
	}
	patch.TS = f.String("ts")
	if patch.Empty() {
		return patch, common.BadRequest("No valid fields to update")
	}
	return patch, nil
}
