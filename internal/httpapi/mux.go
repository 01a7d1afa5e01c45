package httpapi

import (
	"database/sql"
	"net/http"
)

// NewMux returns a mux carrying the operational endpoints. Feature modules
// register their own routes on it. backend names the active data backend
// reported by /healthz.
func NewMux(db *sql.DB, backend string, metrics *Metrics) *http.ServeMux {
	mux := http.NewServeMux()
	registerHealthcheck(mux, db, backend)
	mux.Handle("GET /metrics", metrics)
	return mux
}
