package controller

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/cmhillm75/sqlalchemy-challenge/internal/modules/climate/repository"
	"github.com/cmhillm75/sqlalchemy-challenge/internal/modules/climate/service"
	"github.com/cmhillm75/sqlalchemy-challenge/internal/modules/climate/types"
	"github.com/cmhillm75/sqlalchemy-challenge/internal/modules/climate/views"
	"github.com/cmhillm75/sqlalchemy-challenge/internal/utils"
)

func f(v float64) *float64 { return &v }

var testMeasurements = []types.Measurement{
	{StationID: "USC00519281", Date: "2016-08-23", Precipitation: f(1.79), Tobs: 77},
	{StationID: "USC00519397", Date: "2016-08-23", Precipitation: f(0.00), Tobs: 81},
	{StationID: "USC00513117", Date: "2017-08-01", Precipitation: f(0.12), Tobs: 80},
	{StationID: "USC00519281", Date: "2017-08-01", Precipitation: f(0.20), Tobs: 82},
	{StationID: "USC00519397", Date: "2017-08-23", Precipitation: nil, Tobs: 79},
}

var testStations = []types.Station{
	{ID: "USC00519397", Name: "WAIKIKI 717.2, HI US"},
	{ID: "USC00519281", Name: "WAIHEE 837.5, HI US"},
}

// mockService returns err from every method.
type mockService struct {
	err error
}

func (m *mockService) Precipitation(context.Context) (map[string]*float64, error) {
	return nil, m.err
}

func (m *mockService) Stations(context.Context) ([]types.StationSummary, error) {
	return nil, m.err
}

func (m *mockService) TemperatureObservations(context.Context) ([]types.TempObservation, error) {
	return nil, m.err
}

func (m *mockService) StartAggregate(context.Context, string) (types.StartAggregate, error) {
	return types.StartAggregate{}, m.err
}

func (m *mockService) RangeAggregate(context.Context, string, string) (types.RangeAggregate, error) {
	return types.RangeAggregate{}, m.err
}

func (m *mockService) LatestDate(context.Context) (string, error) {
	return "", m.err
}

func newMux(t *testing.T, svc ClimateService) *http.ServeMux {
	t.Helper()
	if err := views.LoadTemplates(); err != nil {
		t.Fatalf("LoadTemplates() = %v", err)
	}
	mux := http.NewServeMux()
	NewClimateController(svc).RegisterRoutes(mux)
	return mux
}

func newTestMux(t *testing.T) *http.ServeMux {
	repo := repository.NewMemoryRepository(testMeasurements, testStations)
	return newMux(t, service.NewService(repo))
}

func serve(mux http.Handler, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rec.Body).Decode(&v); err != nil {
		t.Fatalf("body is not valid JSON: %v", err)
	}
	return v
}

func Test_handleIndex(t *testing.T) {
	mux := newTestMux(t)

	t.Run("lists routes", func(t *testing.T) {
		rec := serve(mux, "/")
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d; want %d", rec.Code, http.StatusOK)
		}
		if got := rec.Header().Get("Content-Type"); got != "text/html; charset=utf-8" {
			t.Errorf("Content-Type = %q", got)
		}
		body := rec.Body.String()
		for _, want := range []string{"/api/v1.0/precipitation", "/api/v1.0/tobs", "2017-08-23"} {
			if !strings.Contains(body, want) {
				t.Errorf("body missing %q", want)
			}
		}
	})

	t.Run("unknown path is 404", func(t *testing.T) {
		if rec := serve(mux, "/dashboard"); rec.Code != http.StatusNotFound {
			t.Errorf("status = %d; want %d", rec.Code, http.StatusNotFound)
		}
	})

	t.Run("renders without latest date", func(t *testing.T) {
		rec := serve(newMux(t, &mockService{err: errors.New("db down")}), "/")
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d; want %d", rec.Code, http.StatusOK)
		}
	})
}

func Test_handlePrecipitation(t *testing.T) {
	rec := serve(newTestMux(t), "/api/v1.0/precipitation")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d; want %d", rec.Code, http.StatusOK)
	}
	got := decode[map[string]*float64](t, rec)

	if len(got) != 3 {
		t.Fatalf("len = %d; want 3: %v", len(got), got)
	}
	if v := got["2017-08-01"]; v == nil || *v != 0.20 {
		t.Errorf("2017-08-01 = %v; want 0.20", v)
	}
	if v, ok := got["2017-08-23"]; !ok || v != nil {
		t.Errorf("2017-08-23 = %v (present %v); want null", v, ok)
	}
}

func Test_handleStations(t *testing.T) {
	rec := serve(newTestMux(t), "/api/v1.0/stations")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d; want %d", rec.Code, http.StatusOK)
	}
	got := decode[[]types.StationSummary](t, rec)
	want := []types.StationSummary{
		{Station: "USC00519397", Name: "WAIKIKI 717.2, HI US"},
		{Station: "USC00519281", Name: "WAIHEE 837.5, HI US"},
	}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("got %+v; want %+v", got, want)
	}
}

func Test_handleTobs(t *testing.T) {
	rec := serve(newTestMux(t), "/api/v1.0/tobs")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d; want %d", rec.Code, http.StatusOK)
	}
	var got []map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("body is not valid JSON: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d; want 2: %v", len(got), got)
	}
	if got[0]["date"] != "2016-08-23" || got[0]["tobs"] != 77.0 {
		t.Errorf("first = %v", got[0])
	}
}

func Test_handleStartAggregate(t *testing.T) {
	mux := newTestMux(t)

	t.Run("ok", func(t *testing.T) {
		rec := serve(mux, "/api/v1.0/2017-08-01")
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d; want %d", rec.Code, http.StatusOK)
		}
		got := decode[map[string]any](t, rec)
		if got["Start Date"] != "2017-08-01" || got["TMIN"] != 79.0 || got["TAVG"] != 80.33 || got["TMAX"] != 82.0 {
			t.Errorf("body = %v", got)
		}
	})

	t.Run("after last date is 404 sentinel", func(t *testing.T) {
		rec := serve(mux, "/api/v1.0/2018-01-01")
		if rec.Code != http.StatusNotFound {
			t.Fatalf("status = %d; want %d", rec.Code, http.StatusNotFound)
		}
		got := decode[map[string]any](t, rec)
		if got["Start Date"] != "2018-01-01" {
			t.Errorf("Start Date = %v", got["Start Date"])
		}
		for _, k := range []string{"TMIN", "TAVG", "TMAX"} {
			if v, ok := got[k]; !ok || v != nil {
				t.Errorf("%s = %v (present %v); want null", k, v, ok)
			}
		}
	})

	t.Run("malformed date is 400", func(t *testing.T) {
		rec := serve(mux, "/api/v1.0/2017%2F01%2F01")
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d; want %d", rec.Code, http.StatusBadRequest)
		}
		got := decode[utils.ErrorResponse](t, rec)
		if got.Message != service.StartDateHint {
			t.Errorf("message = %q; want %q", got.Message, service.StartDateHint)
		}
	})

	t.Run("literal routes take precedence", func(t *testing.T) {
		rec := serve(mux, "/api/v1.0/stations")
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d; want %d", rec.Code, http.StatusOK)
		}
	})
}

func Test_handleRangeAggregate(t *testing.T) {
	mux := newTestMux(t)

	t.Run("ok", func(t *testing.T) {
		rec := serve(mux, "/api/v1.0/2016-08-23/2017-08-01")
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d; want %d", rec.Code, http.StatusOK)
		}
		got := decode[map[string]any](t, rec)
		if got["Start Date"] != "2016-08-23" || got["End Date"] != "2017-08-01" {
			t.Errorf("dates = %v / %v", got["Start Date"], got["End Date"])
		}
		if got["TMIN"] != 77.0 || got["TAVG"] != 80.0 || got["TMAX"] != 82.0 {
			t.Errorf("body = %v", got)
		}
	})

	t.Run("inverted range is 404 sentinel", func(t *testing.T) {
		rec := serve(mux, "/api/v1.0/2017-08-23/2016-08-23")
		if rec.Code != http.StatusNotFound {
			t.Fatalf("status = %d; want %d", rec.Code, http.StatusNotFound)
		}
		got := decode[map[string]any](t, rec)
		if got["TMIN"] != nil || got["End Date"] != "2016-08-23" {
			t.Errorf("body = %v", got)
		}
	})

	t.Run("malformed end is 400", func(t *testing.T) {
		rec := serve(mux, "/api/v1.0/2016-08-23/tomorrow")
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d; want %d", rec.Code, http.StatusBadRequest)
		}
		got := decode[utils.ErrorResponse](t, rec)
		if got.Error != "Bad Request" || got.Message != service.RangeDateHint {
			t.Errorf("body = %+v", got)
		}
	})
}

func Test_serviceErrors(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		path    string
		status  int
		message string
	}{
		{
			name:    "empty dataset",
			err:     service.ErrEmptyDataset,
			path:    "/api/v1.0/precipitation",
			status:  http.StatusInternalServerError,
			message: service.ErrEmptyDataset.Error(),
		},
		{
			name:    "store failure",
			err:     errors.New("disk I/O error"),
			path:    "/api/v1.0/stations",
			status:  http.StatusInternalServerError,
			message: "failed to load stations",
		},
		{
			name:    "store failure on tobs",
			err:     errors.New("disk I/O error"),
			path:    "/api/v1.0/tobs",
			status:  http.StatusInternalServerError,
			message: "failed to load tobs",
		},
		{
			name:    "store failure on aggregate",
			err:     errors.New("disk I/O error"),
			path:    "/api/v1.0/2017-01-01/2017-02-01",
			status:  http.StatusInternalServerError,
			message: "failed to load range aggregate",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(newMux(t, &mockService{err: tt.err}), tt.path)
			if rec.Code != tt.status {
				t.Fatalf("status = %d; want %d", rec.Code, tt.status)
			}
			got := decode[utils.ErrorResponse](t, rec)
			if got.Message != tt.message {
				t.Errorf("message = %q; want %q", got.Message, tt.message)
			}
		})
	}
}

func Test_methodNotAllowed(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/v1.0/stations", nil)
	rec := httptest.NewRecorder()
	newTestMux(t).ServeHTTP(rec, req)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d; want %d", rec.Code, http.StatusMethodNotAllowed)
	}
}
