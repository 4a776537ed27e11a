package webui

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"html/template"
	"net/http"

	"github.com/davecgh/go-spew/spew"

	"commuter.routing.org/internal/transit"
)

//go:embed debug_index.html
var templateFS embed.FS

var debugTemplate = template.Must(template.ParseFS(templateFS, "debug_index.html"))

// DataTypes lists the views served by the debug page, in menu order.
var DataTypes = []string{"stats", "issues", "stops", "routes", "import", "tables"}

// WebUI renders internal state of the transit manager for operators.
type WebUI struct {
	Manager *transit.Manager
}

type debugData struct {
	Title     string
	Pre       string
	DataTypes []string
	Key       string
}

func writeDebugData(w http.ResponseWriter, r *http.Request, title string, data interface{}) {
	config := spew.ConfigState{Indent: "  ", DisablePointerAddresses: true, SortKeys: true}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	err := debugTemplate.Execute(w, debugData{
		Title:     title,
		Pre:       config.Sdump(data),
		DataTypes: DataTypes,
		Key:       r.URL.Query().Get("key"),
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// debugView resolves a data type to a title and the value to dump.
func (webUI *WebUI) debugView(ctx context.Context, dataType string) (string, interface{}) {
	stats := webUI.Manager.Stats()

	switch dataType {
	case "stats":
		return "Transit Graph - Statistics", stats
	case "issues":
		return "Transit Graph - Build Issues", stats.Report.Issues
	case "stops":
		if g, err := webUI.Manager.Graph(); err == nil {
			return "Transit Graph - Stops", g.Stops()
		}
		return "Transit Graph - Stops", graphNotReady
	case "routes":
		routes, err := webUI.Manager.Store().ListRoutes(ctx)
		if err != nil {
			return "Transit Store - Routes", errorView(err)
		}
		return "Transit Store - Routes", routes
	case "import":
		meta, err := webUI.Manager.Store().GetImportMetadata(ctx)
		if errors.Is(err, sql.ErrNoRows) {
			return "Transit Store - Last Import", map[string]string{"import": "nothing imported yet"}
		}
		if err != nil {
			return "Transit Store - Last Import", errorView(err)
		}
		return "Transit Store - Last Import", meta
	case "tables":
		counts, err := webUI.Manager.Store().TableCounts()
		if err != nil {
			return "Transit Store - Table Counts", errorView(err)
		}
		return "Transit Store - Table Counts", counts
	default:
		return "Choose a data type", map[string]interface{}{
			"error": "Please use one of the following data types.",
			"types": DataTypes,
		}
	}
}

var graphNotReady = map[string]string{"error": "transit graph is not ready"}

func errorView(err error) map[string]string {
	return map[string]string{"error": err.Error()}
}

// DebugIndexHandler serves /debug/?dataType=...
func (webUI *WebUI) DebugIndexHandler(w http.ResponseWriter, r *http.Request) {
	title, data := webUI.debugView(r.Context(), r.URL.Query().Get("dataType"))
	writeDebugData(w, r, title, data)
}
