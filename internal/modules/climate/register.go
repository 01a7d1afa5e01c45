package climate

import (
	"net/http"

	"github.com/cmhillm75/sqlalchemy-challenge/internal/modules/climate/controller"
	"github.com/cmhillm75/sqlalchemy-challenge/internal/modules/climate/repository"
	"github.com/cmhillm75/sqlalchemy-challenge/internal/modules/climate/service"
)

// RegisterFeature wires the climate routes over the given repository. The
// caller chooses the backend (SQLite or in-memory snapshot).
func RegisterFeature(mux *http.ServeMux, repo repository.ClimateRepository) {
	climateService := service.NewService(repo)
	climateController := controller.NewClimateController(climateService)
	climateController.RegisterRoutes(mux)
}
