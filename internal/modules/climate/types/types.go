package types

import "time"

// DateLayout is the ISO calendar date format used by the dataset and the API.
const DateLayout = "2006-01-02"

type Measurement struct {
	StationID     string
	Date          string
	Precipitation *float64
	Tobs          float64
}

type Station struct {
	ID        string
	Name      string
	Latitude  float64
	Longitude float64
	Elevation float64
}

// Precipitation is one (date, prcp) row; Value is nil when no reading was taken.
type Precipitation struct {
	Date  string
	Value *float64
}

type StationSummary struct {
	Station string `json:"station"`
	Name    string `json:"name"`
}

type TempObservation struct {
	Date string  `json:"date"`
	Tobs float64 `json:"tobs"`
}

// TempAggregate holds min/avg/max temperature over a date range. All fields
// are nil when no rows matched.
type TempAggregate struct {
	Min *float64
	Avg *float64
	Max *float64
}

func (a TempAggregate) Empty() bool {
	return a.Min == nil
}

type StartAggregate struct {
	StartDate string   `json:"Start Date"`
	TMin      *float64 `json:"TMIN"`
	TAvg      *float64 `json:"TAVG"`
	TMax      *float64 `json:"TMAX"`
}

type RangeAggregate struct {
	StartDate string   `json:"Start Date"`
	EndDate   string   `json:"End Date"`
	TMin      *float64 `json:"TMIN"`
	TAvg      *float64 `json:"TAVG"`
	TMax      *float64 `json:"TMAX"`
}

func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}

// HasData reports whether any measurement fell in the requested range.
func (a StartAggregate) HasData() bool { return a.TMin != nil }

func (a RangeAggregate) HasData() bool { return a.TMin != nil }
