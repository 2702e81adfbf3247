package routes

import (
	"net/http"

	"tractionservice/handlers"
	"tractionservice/middlewares"
)

func SetupRoutes(
	measureHandler *handlers.MeasureHandler,
	linkHandler *handlers.MeasureLinkHandler,
	dataHandler *handlers.MeasureDataHandler,
	jwtSecret string,
) *http.ServeMux {
	mux := http.NewServeMux()

	jwtMiddleware := middlewares.JWTMiddleware(jwtSecret)
	protect := func(h http.HandlerFunc) http.Handler {
		return jwtMiddleware(http.HandlerFunc(h))
	}

	// Measures
	mux.Handle("POST /api/measures", protect(measureHandler.CreateMeasure))
	mux.Handle("GET /api/measures", protect(measureHandler.GetAllMeasures))
	mux.Handle("GET /api/measures/{id}", protect(measureHandler.GetMeasureByID))
	mux.Handle("PUT /api/measures/{id}", protect(measureHandler.UpdateMeasure))
	mux.Handle("DELETE /api/measures/{id}", protect(measureHandler.DeleteMeasure))
	mux.Handle("POST /api/measures/{id}/values", protect(measureHandler.RecordValue))

	// Qualitative option sets
	mux.Handle("GET /api/measures/{id}/options", protect(measureHandler.GetOptions))
	mux.Handle("PUT /api/measures/{id}/options", protect(measureHandler.SetOptions))
	mux.Handle("DELETE /api/measures/{id}/options", protect(measureHandler.DeleteOptions))
	mux.Handle("POST /api/measures/{id}/options/copy-from-catalog", protect(measureHandler.CopyOptionsFromCatalog))

	// Measure catalog (read-only reference data)
	mux.Handle("GET /api/catalog", protect(measureHandler.GetCatalog))
	mux.Handle("GET /api/catalog/{id}", protect(measureHandler.GetCatalogEntry))

	// Measure links
	mux.Handle("POST /api/measure-links", protect(linkHandler.CreateLink))
	mux.Handle("GET /api/measure-links", protect(linkHandler.QueryLinks))
	mux.Handle("GET /api/measure-links/{id}", protect(linkHandler.GetLinkByID))
	mux.Handle("PUT /api/measure-links/{id}", protect(linkHandler.UpdateLink))
	mux.Handle("DELETE /api/measure-links/{id}", protect(linkHandler.DeleteLink))
	mux.Handle("GET /api/measure-links/analytics/distribution", protect(linkHandler.GetLinkTypeDistribution))

	// Target/actual series
	mux.Handle("POST /api/measures/{id}/targets", protect(dataHandler.CreateTarget))
	mux.Handle("PUT /api/measures/{id}/targets/{targetId}", protect(dataHandler.UpdateTarget))
	mux.Handle("DELETE /api/measures/{id}/targets/{targetId}", protect(dataHandler.DeleteTarget))
	mux.Handle("POST /api/measures/{id}/actuals", protect(dataHandler.CreateActual))
	mux.Handle("PUT /api/measures/{id}/actuals/{actualId}/override", protect(dataHandler.OverrideActual))
	mux.Handle("DELETE /api/measures/{id}/actuals/{actualId}", protect(dataHandler.DeleteActual))
	mux.Handle("GET /api/measures/{id}/all-series", protect(dataHandler.GetAllSeries))
	mux.Handle("GET /api/measures/{id}/series-stats", protect(dataHandler.GetSeriesStats))

	return mux
}
