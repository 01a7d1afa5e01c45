package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/cmhillm75/sqlalchemy-challenge/internal/modules/climate/repository"
	"github.com/cmhillm75/sqlalchemy-challenge/internal/modules/climate/types"
)

// recentWindowDays is the length of the trailing window used by the
// precipitation and tobs queries. It is a fixed day count, not a calendar year.
const recentWindowDays = 365

// ErrEmptyDataset is returned when a query needs the most recent measurement
// date (or the most active station) and the dataset has no measurements.
var ErrEmptyDataset = errors.New("dataset has no measurements")

type Service struct {
	repository repository.ClimateRepository
}

func NewService(repository repository.ClimateRepository) *Service {
	return &Service{repository: repository}
}

// Precipitation maps each date in the recent window to its precipitation.
// When several rows share a date the last one read wins.
func (s *Service) Precipitation(ctx context.Context) (map[string]*float64, error) {
	start, err := s.recentWindowStart(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := s.repository.MeasurementsSince(ctx, start)
	if err != nil {
		return nil, fmt.Errorf("precipitation since %s: %w", types.FormatDate(start), err)
	}

	out := make(map[string]*float64, len(rows))
	for _, r := range rows {
		out[r.Date] = r.Value
	}
	slog.Debug("precipitation query", "window_start", types.FormatDate(start), "rows", len(rows), "dates", len(out))
	return out, nil
}

func (s *Service) Stations(ctx context.Context) ([]types.StationSummary, error) {
	stations, err := s.repository.AllStations(ctx)
	if err != nil {
		return nil, fmt.Errorf("list stations: %w", err)
	}
	out := make([]types.StationSummary, 0, len(stations))
	for _, st := range stations {
		out = append(out, types.StationSummary{Station: st.ID, Name: st.Name})
	}
	return out, nil
}

// TemperatureObservations returns every recent-window observation of the
// most active station. Rows sharing a date are all kept.
func (s *Service) TemperatureObservations(ctx context.Context) ([]types.TempObservation, error) {
	station, err := s.repository.MostActiveStation(ctx)
	if err != nil {
		return nil, emptyDatasetOr(err, "most active station")
	}

	start, err := s.recentWindowStart(ctx)
	if err != nil {
		return nil, err
	}

	obs, err := s.repository.MeasurementsForStation(ctx, station, start)
	if err != nil {
		return nil, fmt.Errorf("tobs for %s: %w", station, err)
	}
	if obs == nil {
		obs = []types.TempObservation{}
	}
	slog.Debug("tobs query", "station_id", station, "window_start", types.FormatDate(start), "rows", len(obs))
	return obs, nil
}

// StartAggregate computes TMIN/TAVG/TMAX over every measurement on or after
// start. The returned aggregate has nil metrics when nothing matched.
func (s *Service) StartAggregate(ctx context.Context, start string) (types.StartAggregate, error) {
	from, err := parseStartDate(start)
	if err != nil {
		return types.StartAggregate{}, err
	}

	agg, err := s.repository.AggregateTemps(ctx, from, nil)
	if err != nil {
		return types.StartAggregate{}, fmt.Errorf("aggregate since %s: %w", start, err)
	}

	res := types.StartAggregate{StartDate: start}
	if !agg.Empty() {
		res.TMin, res.TAvg, res.TMax = agg.Min, round2(agg.Avg), agg.Max
	}
	return res, nil
}

// RangeAggregate is StartAggregate bounded by end (inclusive). An end before
// start is not rejected; it simply matches nothing.
func (s *Service) RangeAggregate(ctx context.Context, start, end string) (types.RangeAggregate, error) {
	from, to, err := parseRangeDates(start, end)
	if err != nil {
		return types.RangeAggregate{}, err
	}

	agg, err := s.repository.AggregateTemps(ctx, from, &to)
	if err != nil {
		return types.RangeAggregate{}, fmt.Errorf("aggregate %s..%s: %w", start, end, err)
	}

	res := types.RangeAggregate{StartDate: start, EndDate: end}
	if !agg.Empty() {
		res.TMin, res.TAvg, res.TMax = agg.Min, round2(agg.Avg), agg.Max
	}
	return res, nil
}

// LatestDate returns the most recent measurement date, or "" when the
// dataset is empty.
func (s *Service) LatestDate(ctx context.Context) (string, error) {
	max, err := s.repository.MaxMeasurementDate(ctx)
	if errors.Is(err, repository.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("latest date: %w", err)
	}
	return types.FormatDate(max), nil
}

func (s *Service) recentWindowStart(ctx context.Context) (time.Time, error) {
	max, err := s.repository.MaxMeasurementDate(ctx)
	if err != nil {
		return time.Time{}, emptyDatasetOr(err, "most recent date")
	}
	return max.AddDate(0, 0, -recentWindowDays), nil
}

func emptyDatasetOr(err error, what string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("%s: %w: %w", what, ErrEmptyDataset, err)
	}
	return fmt.Errorf("%s: %w", what, err)
}

// round2 rounds to two decimals from the exact binary value, so a true
// half such as 80.125 goes to the even digit (80.12).
func round2(v *float64) *float64 {
	if v == nil {
		return nil
	}
	// FormatFloat output always parses.
	r, _ := strconv.ParseFloat(strconv.FormatFloat(*v, 'f', 2, 64), 64)
	return &r
}
