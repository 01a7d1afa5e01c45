package controller

import (
	"context"
	"net/http"

	"github.com/cmhillm75/sqlalchemy-challenge/internal/modules/climate/types"
)

// ClimateService is the query surface the HTTP handlers depend on.
type ClimateService interface {
	Precipitation(ctx context.Context) (map[string]*float64, error)
	Stations(ctx context.Context) ([]types.StationSummary, error)
	TemperatureObservations(ctx context.Context) ([]types.TempObservation, error)
	StartAggregate(ctx context.Context, start string) (types.StartAggregate, error)
	RangeAggregate(ctx context.Context, start, end string) (types.RangeAggregate, error)
	LatestDate(ctx context.Context) (string, error)
}

type ClimateController interface {
	RegisterRoutes(mux *http.ServeMux)
}

type climateControllerImpl struct {
	service ClimateService
}

func NewClimateController(service ClimateService) ClimateController {
	return &climateControllerImpl{service: service}
}

// RegisterRoutes relies on ServeMux precedence: the literal routes are more
// specific than {start} and always win.
func (c *climateControllerImpl) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", c.handleIndex)
	mux.HandleFunc("GET /api/v1.0/precipitation", c.handlePrecipitation)
	mux.HandleFunc("GET /api/v1.0/stations", c.handleStations)
	mux.HandleFunc("GET /api/v1.0/tobs", c.handleTobs)
	mux.HandleFunc("GET /api/v1.0/{start}", c.handleStartAggregate)
	mux.HandleFunc("GET /api/v1.0/{start}/{end}", c.handleRangeAggregate)
}
