package api

import (
	"net/http"

	"github.com/gorilla/mux"
)

// NewRouter assembles the API routes.
func NewRouter(flights *FlightHandler, sync *SyncHandler) *mux.Router {
	r := mux.NewRouter()

	apiRouter := r.PathPrefix("/api").Subrouter()

	apiRouter.HandleFunc("/flights", flights.Create).Methods(http.MethodPost)
	apiRouter.HandleFunc("/flights", flights.List).Methods(http.MethodGet)
	apiRouter.HandleFunc("/flights", flights.ClearAll).Methods(http.MethodDelete)
	apiRouter.HandleFunc("/flights/{id}", flights.Update).Methods(http.MethodPatch)
	apiRouter.HandleFunc("/flights/{id}", flights.Delete).Methods(http.MethodDelete)
	apiRouter.HandleFunc("/stats", flights.Stats).Methods(http.MethodGet)

	apiRouter.HandleFunc("/sync/status", sync.Status).Methods(http.MethodGet)
	apiRouter.HandleFunc("/sync/force", sync.Force).Methods(http.MethodPost)
	apiRouter.HandleFunc("/sync/error", sync.ClearError).Methods(http.MethodDelete)
	apiRouter.HandleFunc("/me", sync.Me).Methods(http.MethodGet)

	return r
}
