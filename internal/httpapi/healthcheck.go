package httpapi

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/cmhillm75/sqlalchemy-challenge/internal/utils"
)

// datasetHealth is the /healthz body. LatestDate is omitted while the
// measurement table is empty.
type datasetHealth struct {
	Status     string `json:"status"`
	Backend    string `json:"backend"`
	LatestDate string `json:"latest_date,omitempty"`
}

type datasetChecker struct {
	db      *sql.DB
	backend string
}

func newDatasetChecker(db *sql.DB, backend string) *datasetChecker {
	return &datasetChecker{db: db, backend: backend}
}

// handleHealthz reads the newest measurement date, which proves the dataset
// is reachable and shows how current it is.
func (c *datasetChecker) handleHealthz(w http.ResponseWriter, r *http.Request) {
	var latest sql.NullString
	if err := c.db.QueryRowContext(r.Context(), `SELECT MAX(date) FROM measurement`).Scan(&latest); err != nil {
		slog.ErrorContext(r.Context(), "dataset health check failed", "backend", c.backend, "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to read the climate dataset")
		return
	}
	utils.WriteJSON(w, http.StatusOK, datasetHealth{
		Status:     "ok",
		Backend:    c.backend,
		LatestDate: latest.String,
	})
}

func registerHealthcheck(mux *http.ServeMux, db *sql.DB, backend string) {
	mux.HandleFunc("GET /healthz", newDatasetChecker(db, backend).handleHealthz)
}
