package repository

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmhillm75/sqlalchemy-challenge/internal/modules/climate/types"
)

//go:embed sql/max-measurement-date.sql
var maxMeasurementDateSQL string

//go:embed sql/measurements-since.sql
var measurementsSinceSQL string

//go:embed sql/get-stations.sql
var getStationsSQL string

//go:embed sql/most-active-station.sql
var mostActiveStationSQL string

//go:embed sql/station-measurements-since.sql
var stationMeasurementsSinceSQL string

//go:embed sql/aggregate-temps-since.sql
var aggregateTempsSinceSQL string

//go:embed sql/aggregate-temps-between.sql
var aggregateTempsBetweenSQL string

//go:embed sql/all-measurements.sql
var allMeasurementsSQL string

// ErrNotFound is returned when the measurement collection is empty and no
// most-recent date or most-active station exists.
var ErrNotFound = errors.New("no measurements in dataset")

// ClimateRepository is the read-only view of the measurement and station
// collections. Implementations must be safe for concurrent use.
type ClimateRepository interface {
	MaxMeasurementDate(ctx context.Context) (time.Time, error)
	MeasurementsSince(ctx context.Context, since time.Time) ([]types.Precipitation, error)
	AllStations(ctx context.Context) ([]types.Station, error)
	// MostActiveStation breaks count ties by the smallest station id.
	MostActiveStation(ctx context.Context) (string, error)
	MeasurementsForStation(ctx context.Context, stationID string, since time.Time) ([]types.TempObservation, error)
	// AggregateTemps never fails on an empty range; it returns an empty aggregate.
	AggregateTemps(ctx context.Context, since time.Time, until *time.Time) (types.TempAggregate, error)
}

type repositoryImpl struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) ClimateRepository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) MaxMeasurementDate(ctx context.Context) (time.Time, error) {
	var max sql.NullString
	if err := r.db.QueryRowContext(ctx, maxMeasurementDateSQL).Scan(&max); err != nil {
		return time.Time{}, fmt.Errorf("max measurement date: %w", err)
	}
	if !max.Valid {
		return time.Time{}, ErrNotFound
	}
	t, err := types.ParseDate(max.String)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse max measurement date %q: %w", max.String, err)
	}
	return t, nil
}

func (r *repositoryImpl) MeasurementsSince(ctx context.Context, since time.Time) ([]types.Precipitation, error) {
	rows, err := r.db.QueryContext(ctx, measurementsSinceSQL, types.FormatDate(since))
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("close precipitation rows", "error", err)
		}
	}()

	var out []types.Precipitation
	for rows.Next() {
		var (
			p    types.Precipitation
			prcp sql.NullFloat64
		)
		if err := rows.Scan(&p.Date, &prcp); err != nil {
			return nil, err
		}
		if prcp.Valid {
			v := prcp.Float64
			p.Value = &v
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *repositoryImpl) AllStations(ctx context.Context) ([]types.Station, error) {
	rows, err := r.db.QueryContext(ctx, getStationsSQL)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("close stations rows", "error", err)
		}
	}()
	return scanStations(rows)
}

func (r *repositoryImpl) MostActiveStation(ctx context.Context) (string, error) {
	var id string
	err := r.db.QueryRowContext(ctx, mostActiveStationSQL).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("most active station: %w", err)
	}
	return id, nil
}

func (r *repositoryImpl) MeasurementsForStation(ctx context.Context, stationID string, since time.Time) ([]types.TempObservation, error) {
	rows, err := r.db.QueryContext(ctx, stationMeasurementsSinceSQL, stationID, types.FormatDate(since))
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("close tobs rows", "station_id", stationID, "error", err)
		}
	}()

	var out []types.TempObservation
	for rows.Next() {
		var o types.TempObservation
		if err := rows.Scan(&o.Date, &o.Tobs); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func (r *repositoryImpl) AggregateTemps(ctx context.Context, since time.Time, until *time.Time) (types.TempAggregate, error) {
	var row *sql.Row
	if until == nil {
		row = r.db.QueryRowContext(ctx, aggregateTempsSinceSQL, types.FormatDate(since))
	} else {
		row = r.db.QueryRowContext(ctx, aggregateTempsBetweenSQL, types.FormatDate(since), types.FormatDate(*until))
	}

	var min, avg, max sql.NullFloat64
	if err := row.Scan(&min, &avg, &max); err != nil {
		return types.TempAggregate{}, fmt.Errorf("aggregate temps: %w", err)
	}
	if !min.Valid {
		return types.TempAggregate{}, nil
	}
	return types.TempAggregate{
		Min: &min.Float64,
		Avg: &avg.Float64,
		Max: &max.Float64,
	}, nil
}

// LoadSnapshot reads both collections once and returns an in-memory
// repository over them.
func LoadSnapshot(ctx context.Context, db *sql.DB) (*MemoryRepository, error) {
	stationRows, err := db.QueryContext(ctx, getStationsSQL)
	if err != nil {
		return nil, fmt.Errorf("load stations: %w", err)
	}
	stations, err := scanStations(stationRows)
	if closeErr := stationRows.Close(); closeErr != nil {
		slog.Error("close stations rows", "error", closeErr)
	}
	if err != nil {
		return nil, fmt.Errorf("load stations: %w", err)
	}

	rows, err := db.QueryContext(ctx, allMeasurementsSQL)
	if err != nil {
		return nil, fmt.Errorf("load measurements: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("close measurement rows", "error", err)
		}
	}()

	var measurements []types.Measurement
	for rows.Next() {
		var (
			m    types.Measurement
			prcp sql.NullFloat64
		)
		if err := rows.Scan(&m.StationID, &m.Date, &prcp, &m.Tobs); err != nil {
			return nil, fmt.Errorf("load measurements: %w", err)
		}
		if prcp.Valid {
			v := prcp.Float64
			m.Precipitation = &v
		}
		measurements = append(measurements, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load measurements: %w", err)
	}

	slog.Info("dataset loaded into memory",
		"measurements", len(measurements),
		"stations", len(stations),
	)
	return NewMemoryRepository(measurements, stations), nil
}

func scanStations(rows *sql.Rows) ([]types.Station, error) {
	var out []types.Station
	for rows.Next() {
		var (
			s             types.Station
			lat, lon, elv sql.NullFloat64
		)
		if err := rows.Scan(&s.ID, &s.Name, &lat, &lon, &elv); err != nil {
			return nil, err
		}
		s.Latitude, s.Longitude, s.Elevation = lat.Float64, lon.Float64, elv.Float64
		out = append(out, s)
	}
	return out, rows.Err()
}
