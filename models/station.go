package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Array fields of a station document holding sub-resources.
const (
	CommentsField = "comments"
	ReadingsField = "readings"
)

type Station struct {
	ID               bson.ObjectID `bson:"_id,omitempty" json:"_id"`
	StationName      string        `bson:"station_name" json:"station_name"`
	City             string        `bson:"city" json:"city"`
	State            string        `bson:"state" json:"state"`
	Region           string        `bson:"region" json:"region"`
	Place            string        `bson:"place" json:"place"`
	Country          string        `bson:"country" json:"country"`
	AvgTempC         float64       `bson:"avg_temp_c" json:"avg_temp_c"`
	MaxWindKmh       float64       `bson:"max_wind_kmh" json:"max_wind_kmh"`
	OverallCondition string        `bson:"overall_condition" json:"overall_condition"`
	AirQualityIndex  int           `bson:"air_quality_index" json:"air_quality_index"`
	Alerts           []string      `bson:"alerts" json:"alerts"`
	Views            int           `bson:"views" json:"views"`
	CreatedAt        time.Time     `bson:"created_at" json:"created_at"`
	LastUpdatedAt    *time.Time    `bson:"last_updated_at,omitempty" json:"last_updated_at,omitempty"`
	Comments         []Comment     `bson:"comments" json:"comments"`
	Readings         []Reading     `bson:"readings" json:"readings"`
}

type Comment struct {
	ID        string    `bson:"_id" json:"_id"`
	Username  string    `bson:"username" json:"username"`
	Comment   string    `bson:"comment" json:"comment"`
	Rating    int       `bson:"rating" json:"rating"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

type Reading struct {
	ID          string  `bson:"_id" json:"_id"`
	TS          string  `bson:"ts" json:"ts"`
	TempC       float64 `bson:"temp_c" json:"temp_c"`
	Humidity    float64 `bson:"humidity" json:"humidity"`
	WindKmh     float64 `bson:"wind_kmh" json:"wind_kmh"`
	PressureKpa float64 `bson:"pressure_kpa" json:"pressure_kpa"`
}

// CommentPatch holds the fields of an update; nil means untouched.
type CommentPatch struct {
	Comment *string
	Rating  *int
}

func (p CommentPatch) Empty() bool { return p.Comment == nil && p.Rating == nil }

// Fields returns the patch keyed by bson field name.
func (p CommentPatch) Fields() bson.M {
	set := bson.M{}
	if p.Comment != nil {
		set["comment"] = *p.Comment
	}
	if p.Rating != nil {
		set["rating"] = *p.Rating
	}
	return set
}

// Apply writes the patch onto c.
func (p CommentPatch) Apply(c *Comment) {
	if p.Comment != nil {
		c.Comment = *p.Comment
	}
	if p.Rating != nil {
		c.Rating = *p.Rating
	}
}

type ReadingPatch struct {
	TS          *string
	TempC       *float64
	Humidity    *float64
	WindKmh     *float64
	PressureKpa *float64
}

func (p ReadingPatch) Empty() bool { return len(p.Fields()) == 0 }

func (p ReadingPatch) Fields() bson.M {
	set := bson.M{}
	if p.TS != nil {
		set["ts"] = *p.TS
	}
	if p.TempC != nil {
		set["temp_c"] = *p.TempC
	}
	if p.Humidity != nil {
		set["humidity"] = *p.Humidity
	}
	if p.WindKmh != nil {
		set["wind_kmh"] = *p.WindKmh
	}
	if p.PressureKpa != nil {
		set["pressure_kpa"] = *p.PressureKpa
	}
	return set
}

func (p ReadingPatch) Apply(r *Reading) {
	if p.TS != nil {
		r.TS = *p.TS
	}
	if p.TempC != nil {
		r.TempC = *p.TempC
	}
	if p.Humidity != nil {
		r.Humidity = *p.Humidity
	}
	if p.WindKmh != nil {
		r.WindKmh = *p.WindKmh
	}
	if p.PressureKpa != nil {
		r.PressureKpa = *p.PressureKpa
	}
}

// StationPatch is a sparse update of top-level station fields.
type StationPatch struct {
	StationName      *string
	City             *string
	State            *string
	Region           *string
	Place            *string
	Country          *string
	OverallCondition *string
	AvgTempC         *float64
	MaxWindKmh       *float64
	AirQualityIndex  *int
	Views            *int
	Alerts           []string
}

func (p StationPatch) Empty() bool { return len(p.Fields()) == 0 }

func (p StationPatch) Fields() bson.M {
	set := bson.M{}
	for name, v := range map[string]*string{
		"station_name":      p.StationName,
		"city":              p.City,
		"state":             p.State,
		"region":            p.Region,
		"place":             p.Place,
		"country":           p.Country,
		"overall_condition": p.OverallCondition,
	} {
		if v != nil {
			set[name] = *v
		}
	}
	if p.AvgTempC != nil {
		set["avg_temp_c"] = *p.AvgTempC
	}
	if p.MaxWindKmh != nil {
		set["max_wind_kmh"] = *p.MaxWindKmh
	}
	if p.AirQualityIndex != nil {
		set["air_quality_index"] = *p.AirQualityIndex
	}
	if p.Views != nil {
		set["views"] = *p.Views
	}
	if p.Alerts != nil {
		set["alerts"] = p.Alerts
	}
	return set
}

func (p StationPatch) Apply(s *Station) {
	for dst, v := range map[*string]*string{
		&s.StationName:      p.StationName,
		&s.City:             p.City,
		&s.State:            p.State,
		&s.Region:           p.Region,
		&s.Place:            p.Place,
		&s.Country:          p.Country,
		&s.OverallCondition: p.OverallCondition,
	} {
		if v != nil {
			*dst = *v
		}
	}
	if p.AvgTempC != nil {
		s.AvgTempC = *p.AvgTempC
	}
	if p.MaxWindKmh != nil {
		s.MaxWindKmh = *p.MaxWindKmh
	}
	if p.AirQualityIndex != nil {
		s.AirQualityIndex = *p.AirQualityIndex
	}
	if p.Views != nil {
		s.Views = *p.Views
	}
	if p.Alerts != nil {
		s.Alerts = append([]string(nil), p.Alerts...)
	}
}

// StationFilter selects stations by case-insensitive substring of location
// fields. Empty fields are ignored.
type StationFilter struct {
	Region     string
	State      string
	City       string
	Place      string
	WithAlerts bool
}
