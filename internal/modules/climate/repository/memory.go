package repository

import (
	"context"
	"slices"
	"time"

	"github.com/cmhillm75/sqlalchemy-challenge/internal/modules/climate/types"
)

// MemoryRepository answers the same queries as the SQLite repository from
// slices held in memory. It is never mutated after construction, so it needs
// no locking.
type MemoryRepository struct {
	measurements []types.Measurement
	stations     []types.Station
}

var _ ClimateRepository = (*MemoryRepository)(nil)

// NewMemoryRepository copies both collections; later changes to the
// arguments are not observed.
func NewMemoryRepository(measurements []types.Measurement, stations []types.Station) *MemoryRepository {
	return &MemoryRepository{
		measurements: slices.Clone(measurements),
		stations:     slices.Clone(stations),
	}
}

func (m *MemoryRepository) MaxMeasurementDate(ctx context.Context) (time.Time, error) {
	if len(m.measurements) == 0 {
		return time.Time{}, ErrNotFound
	}
	max := m.measurements[0].Date
	for _, rec := range m.measurements[1:] {
		if rec.Date > max {
			max = rec.Date
		}
	}
	return types.ParseDate(max)
}

func (m *MemoryRepository) MeasurementsSince(ctx context.Context, since time.Time) ([]types.Precipitation, error) {
	from := types.FormatDate(since)
	var out []types.Precipitation
	for _, rec := range m.measurements {
		if rec.Date >= from {
			out = append(out, types.Precipitation{Date: rec.Date, Value: rec.Precipitation})
		}
	}
	return out, nil
}

func (m *MemoryRepository) AllStations(ctx context.Context) ([]types.Station, error) {
	return slices.Clone(m.stations), nil
}

func (m *MemoryRepository) MostActiveStation(ctx context.Context) (string, error) {
	if len(m.measurements) == 0 {
		return "", ErrNotFound
	}
	counts := make(map[string]int)
	for _, rec := range m.measurements {
		counts[rec.StationID]++
	}

	best, bestCount := "", -1
	for id, n := range counts {
		if n > bestCount || (n == bestCount && id < best) {
			best, bestCount = id, n
		}
	}
	return best, nil
}

func (m *MemoryRepository) MeasurementsForStation(ctx context.Context, stationID string, since time.Time) ([]types.TempObservation, error) {
	from := types.FormatDate(since)
	var out []types.TempObservation
	for _, rec := range m.measurements {
		if rec.StationID == stationID && rec.Date >= from {
			out = append(out, types.TempObservation{Date: rec.Date, Tobs: rec.Tobs})
		}
	}
	return out, nil
}

func (m *MemoryRepository) AggregateTemps(ctx context.Context, since time.Time, until *time.Time) (types.TempAggregate, error) {
	from := types.FormatDate(since)
	to := ""
	if until != nil {
		to = types.FormatDate(*until)
	}

	var (
		n             int
		sum, min, max float64
	)
	for _, rec := range m.measurements {
		if rec.Date < from || (until != nil && rec.Date > to) {
			continue
		}
		if n == 0 || rec.Tobs < min {
			min = rec.Tobs
		}
		if n == 0 || rec.Tobs > max {
			max = rec.Tobs
		}
		sum += rec.Tobs
		n++
	}
	if n == 0 {
		return types.TempAggregate{}, nil
	}
	avg := sum / float64(n)
	return types.TempAggregate{Min: &min, Avg: &avg, Max: &max}, nil
}
