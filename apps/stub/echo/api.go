package stubapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/trezcool/masomo-sync/core/entity"
	"github.com/trezcool/masomo-sync/storage/inmem"
)

const dashboardListLen = 5

// readAPI serves the read-only JSON endpoints of the admin pages.
type readAPI struct {
	db       *inmemdb.DB
	registry *entity.Registry
}

func registerReadAPI(group *echo.Group, db *inmemdb.DB, registry *entity.Registry) {
	api := &readAPI{db: db, registry: registry}
	group.GET("/dashboard", api.dashboard)
	group.GET("/semestres", api.list("semester", "fecha_inicio", true))
	group.GET("/reportes", api.list("report", "fecha", true))
}

func (api *readAPI) table(kind string) (*inmemdb.Table, error) {
	spec, err := api.registry.Kind(kind)
	if err != nil {
		return nil, err
	}
	return OpenTable(api.db, spec), nil
}

func (api *readAPI) dashboard(ctx echo.Context) error {
	counts := make(map[string]int)
	for _, spec := range api.registry.Specs() {
		keep := hooksFor(spec.Kind).listed
		counts[spec.Kind] = len(OpenTable(api.db, spec).Query(keep))
	}

	notices, err := api.table("notice")
	if err != nil {
		return err
	}
	events, err := api.table("event")
	if err != nil {
		return err
	}
	today := now().Format(dateLayout)
	upcoming := events.Query(func(rec entity.Record) bool { return rec.String("fecha") >= today })

	return ctx.JSON(http.StatusOK, echo.Map{
		"counts":           counts,
		"avisos_recientes": head(sortedBy(notices.Query(nil), "fecha_publicacion", true), dashboardListLen),
		"eventos_proximos": head(sortedBy(upcoming, "fecha", false), dashboardListLen),
	})
}

// list returns a handler listing every record of kind sorted by field.
func (api *readAPI) list(kind, field string, desc bool) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		table, err := api.table(kind)
		if err != nil {
			return err
		}
		return ctx.JSON(http.StatusOK, sortedBy(table.Query(nil), field, desc))
	}
}

func head(recs []entity.Record, n int) []entity.Record {
	if len(recs) > n {
		return recs[:n]
	}
	return recs
}
