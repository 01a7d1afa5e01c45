package controller

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/cmhillm75/sqlalchemy-challenge/internal/modules/climate/service"
	"github.com/cmhillm75/sqlalchemy-challenge/internal/modules/climate/views"
	"github.com/cmhillm75/sqlalchemy-challenge/internal/utils"
)

const indexTitle = "Climate API"

func (c *climateControllerImpl) handleIndex(w http.ResponseWriter, r *http.Request) {
	lastDate, err := c.service.LatestDate(r.Context())
	if err != nil {
		// The page is still useful without the date line.
		slog.Warn("index: latest date failed", "error", err)
	}
	data := &views.IndexData{Title: indexTitle, LastDate: lastDate, Routes: views.APIRoutes}
	utils.WriteHTML(w, http.StatusOK, func(out io.Writer) error {
		return views.RenderIndex(out, data)
	})
}

func (c *climateControllerImpl) handlePrecipitation(w http.ResponseWriter, r *http.Request) {
	precipitation, err := c.service.Precipitation(r.Context())
	if err != nil {
		writeServiceError(w, r, "precipitation", err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, precipitation)
}

func (c *climateControllerImpl) handleStations(w http.ResponseWriter, r *http.Request) {
	stations, err := c.service.Stations(r.Context())
	if err != nil {
		writeServiceError(w, r, "stations", err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, stations)
}

func (c *climateControllerImpl) handleTobs(w http.ResponseWriter, r *http.Request) {
	obs, err := c.service.TemperatureObservations(r.Context())
	if err != nil {
		writeServiceError(w, r, "tobs", err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, obs)
}

func (c *climateControllerImpl) handleStartAggregate(w http.ResponseWriter, r *http.Request) {
	agg, err := c.service.StartAggregate(r.Context(), r.PathValue("start"))
	if err != nil {
		writeServiceError(w, r, "start aggregate", err)
		return
	}
	status := http.StatusOK
	if !agg.HasData() {
		status = http.StatusNotFound
	}
	utils.WriteJSON(w, status, agg)
}

func (c *climateControllerImpl) handleRangeAggregate(w http.ResponseWriter, r *http.Request) {
	agg, err := c.service.RangeAggregate(r.Context(), r.PathValue("start"), r.PathValue("end"))
	if err != nil {
		writeServiceError(w, r, "range aggregate", err)
		return
	}
	status := http.StatusOK
	if !agg.HasData() {
		status = http.StatusNotFound
	}
	utils.WriteJSON(w, status, agg)
}

// writeServiceError maps service errors onto HTTP replies. Bad date segments
// are the caller's fault; everything else is logged and reported as a 500.
func writeServiceError(w http.ResponseWriter, r *http.Request, op string, err error) {
	var dateErr *service.MalformedDateError
	if errors.As(err, &dateErr) {
		utils.WriteError(w, http.StatusBadRequest, dateErr.Hint)
		return
	}

	slog.Error(op+" failed", "path", r.URL.Path, "error", err)
	msg := "failed to load " + op
	if errors.Is(err, service.ErrEmptyDataset) {
		msg = service.ErrEmptyDataset.Error()
	}
	utils.WriteError(w, http.StatusInternalServerError, msg)
}
