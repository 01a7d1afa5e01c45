package views

import (
	"errors"
	"html/template"
	"io"
	"io/fs"
)

var indexTmpl *template.Template

// loadTemplatesFromFS parses every page template under dir.
// Tests use it with an fstest.MapFS to exercise failure paths.
func loadTemplatesFromFS(fsys fs.FS, dir string) error {
	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		return err
	}
	indexTmpl, err = template.ParseFS(sub, "*.html")
	if err != nil {
		return err
	}
	return nil
}

// LoadTemplates loads the embedded templates. Call during startup before
// serving requests; if it returns an error, do not start the server.
func LoadTemplates() error {
	return loadTemplatesFromFS(viewsFS, "templates")
}

// Route is one entry of the API listing on the index page.
type Route struct {
	Path        string
	Description string
}

type IndexData struct {
	Title    string
	LastDate string // empty when the dataset has no measurements
	Routes   []Route
}

// noDataNote documents the aggregate routes' empty-match response.
const noDataNote = "Responds 404 with null TMIN/TAVG/TMAX when no measurements match."

// APIRoutes lists the data routes in the order they are documented.
var APIRoutes = []Route{
	{Path: "/api/v1.0/precipitation", Description: "Precipitation by date for the most recent 12 months of data."},
	{Path: "/api/v1.0/stations", Description: "The id and name of every weather station."},
	{Path: "/api/v1.0/tobs", Description: "Temperature observations of the most active station for the most recent 12 months."},
	{Path: "/api/v1.0/<start>", Description: "Minimum, average and maximum temperature on and after start (YYYY-MM-DD). " + noDataNote},
	{Path: "/api/v1.0/<start>/<end>", Description: "Minimum, average and maximum temperature from start to end inclusive (YYYY-MM-DD/YYYY-MM-DD). " + noDataNote},
}

func RenderIndex(w io.Writer, data *IndexData) error {
	if indexTmpl == nil {
		return errors.New("index template not loaded: call views.LoadTemplates during startup")
	}
	return indexTmpl.ExecuteTemplate(w, "index.html", data)
}
