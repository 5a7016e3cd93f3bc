package api

import (
	"net/http"

	"github.com/erazemk/inventura/internal/db"
	"github.com/erazemk/inventura/internal/metrics"
)

// NewRouter creates the API router with all endpoints registered.
func NewRouter(d *db.DB) http.Handler {
	mux := http.NewServeMux()

	productsHandler := &ProductsHandler{DB: d}
	tasksHandler := &TasksHandler{DB: d}

	mux.HandleFunc("GET /api/health", healthHandler(d))
	mux.HandleFunc("GET /api/products", productsHandler.List)

	mux.HandleFunc("POST /api/tasks", tasksHandler.Create)
	mux.HandleFunc("GET /api/tasks", tasksHandler.List)
	mux.HandleFunc("POST /api/tasks/{id}/start", tasksHandler.Start)
	mux.HandleFunc("POST /api/tasks/{id}/unassign", tasksHandler.Unassign)
	mux.HandleFunc("POST /api/tasks/{id}/count", tasksHandler.Count)
	mux.HandleFunc("POST /api/tasks/{id}/complete", tasksHandler.Complete)
	mux.HandleFunc("POST /api/tasks/{id}/items/{gtin}/approve", tasksHandler.Approve)
	mux.HandleFunc("POST /api/tasks/{id}/recheck", tasksHandler.Recheck)
	mux.HandleFunc("DELETE /api/tasks/{id}", tasksHandler.Delete)

	mux.Handle("GET /metrics", metrics.Handler())

	return mux
}

// healthHandler reports whether the datastore is reachable.
func healthHandler(d *db.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := d.PingContext(r.Context()); err != nil {
			jsonError(w, http.StatusServiceUnavailable, "database unreachable")
			return
		}
		jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
