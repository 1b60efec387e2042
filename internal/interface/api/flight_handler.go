package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"flightlog-service/internal/domain/entity"
	"flightlog-service/internal/usecase"
	"flightlog-service/pkg/logger"
)

// FlightHandler exposes the local store over HTTP. The presentation
// layer (Telegram mini-app or browser) is a plain consumer of these
// endpoints; no behavior lives here beyond translation.
type FlightHandler struct {
	store *usecase.LocalStore
	log   logger.Logger
}

func NewFlightHandler(store *usecase.LocalStore, log logger.Logger) *FlightHandler {
	return &FlightHandler{store: store, log: log}
}

func (h *FlightHandler) Create(w http.ResponseWriter, r *http.Request) {
	var form entity.FlightForm
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	rec, err := h.store.AddFlight(form)
	if err != nil {
		var verr *entity.ValidationError
		if errors.As(err, &verr) {
			writeValidationErrors(w, verr.Messages)
			return
		}
		var serr *entity.StorageError
		if errors.As(err, &serr) {
			// The record is in memory; durability failed. Surface it but
			// hand the record back so the UI keeps working.
			h.log.Error("Flight added but not persisted", "id", rec.ID, "error", err)
			writeJSON(w, http.StatusCreated, map[string]interface{}{
				"flight":  rec,
				"warning": "flight saved in memory only, local storage write failed",
			})
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to add flight")
		return
	}

	writeJSON(w, http.StatusCreated, rec)
}

func (h *FlightHandler) List(w http.ResponseWriter, r *http.Request) {
	filter, err := filterFromQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, h.store.ListFlights(filter))
}

func (h *FlightHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var patch entity.FlightPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	rec, err := h.store.UpdateFlight(id, patch)
	if err != nil {
		var nf *entity.NotFoundError
		if errors.As(err, &nf) {
			writeError(w, http.StatusNotFound, nf.Error())
			return
		}
		var serr *entity.StorageError
		if errors.As(err, &serr) {
			h.log.Error("Flight updated but not persisted", "id", id, "error", err)
			writeJSON(w, http.StatusOK, map[string]interface{}{
				"flight":  rec,
				"warning": "flight updated in memory only, local storage write failed",
			})
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to update flight")
		return
	}

	writeJSON(w, http.StatusOK, rec)
}

func (h *FlightHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if err := h.store.DeleteFlight(id); err != nil {
		h.log.Error("Flight deleted but snapshot not persisted", "id", id, "error", err)
	}

	// Deletion is idempotent: absent ids succeed too.
	writeJSON(w, http.StatusOK, map[string]string{"id": id})
}

// ClearAll requires confirm=true; without it the destructive operation
// is refused.
func (h *FlightHandler) ClearAll(w http.ResponseWriter, r *http.Request) {
	confirmed := r.URL.Query().Get("confirm") == "true"

	if err := h.store.ClearAll(confirmed); err != nil {
		var creq *entity.ConfirmationRequiredError
		if errors.As(err, &creq) {
			writeError(w, http.StatusBadRequest, creq.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to clear flights")
		return
	}

	writeJSON(w, http.StatusOK, map[string]int{"remaining": h.store.Count()})
}

func (h *FlightHandler) Stats(w http.ResponseWriter, r *http.Request) {
	filter, err := filterFromQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, entity.ComputeStatistics(h.store.ListFlights(filter)))
}

// filterFromQuery builds a FilterSpec from query parameters. No
// parameters means nil, which falls back to the persisted filter state.
func filterFromQuery(r *http.Request) (*entity.FilterSpec, error) {
	q := r.URL.Query()
	if len(q) == 0 {
		return nil, nil
	}

	spec := &entity.FilterSpec{
		Search:    q.Get("search"),
		Airline:   q.Get("airline"),
		DateFrom:  q.Get("dateFrom"),
		DateTo:    q.Get("dateTo"),
		Class:     entity.Class(q.Get("class")),
		SortBy:    entity.SortKey(q.Get("sortBy")),
		SortOrder: entity.SortOrder(q.Get("sortOrder")),
	}

	for name, target := range map[string]**int{
		"minDistance": &spec.MinDistance,
		"maxDistance": &spec.MaxDistance,
	} {
		if raw := q.Get(name); raw != "" {
			v, err := strconv.Atoi(raw)
			if err != nil {
				return nil, errors.New(name + " must be an integer")
			}
			*target = &v
		}
	}

	return spec, nil
}
