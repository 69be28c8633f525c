package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"garage-client-api/internal/apperrors"
	"garage-client-api/internal/logger"
	"garage-client-api/internal/models"
	"garage-client-api/internal/registry"
)

type Handler struct {
	Service *registry.Service
	Logger  *logger.Logger
}

func NewHandler(service *registry.Service) *Handler {
	return &Handler{Service: service, Logger: logger.NewLogger()}
}

func (h *Handler) RegisterCountryRoutes(r chi.Router) {
	r.Get("/", h.ListCountries)
	r.Get("/{countryId}", h.GetCountry)
	r.Post("/", h.CreateCountry)
	r.Put("/{countryId}", h.UpdateCountry)
	r.Delete("/{countryId}", h.DeleteCountry)
}

func (h *Handler) RegisterSpecializationRoutes(r chi.Router) {
	r.Get("/", h.ListSpecializations)
	r.Get("/{specializationId}", h.GetSpecialization)
	r.Post("/", h.CreateSpecialization)
	r.Put("/{specializationId}", h.UpdateSpecialization)
	r.Delete("/{specializationId}", h.DeleteSpecialization)
}

func (h *Handler) ListCountries(w http.ResponseWriter, r *http.Request) {
	list, err := h.Service.ListCountries()
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("ListCountries: %v", err))
		http.Error(w, "Could not list countries", apperrors.HTTPStatus(err))
		return
	}
	h.writeJSON(w, http.StatusOK, list)
}

func (h *Handler) GetCountry(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "countryId")
	if !ok {
		return
	}
	country, err := h.Service.GetCountry(id)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("GetCountry: country %d: %v", id, err))
		http.Error(w, "Country not found", apperrors.HTTPStatus(err))
		return
	}
	h.writeJSON(w, http.StatusOK, country)
}

func (h *Handler) CreateCountry(w http.ResponseWriter, r *http.Request) {
	var country models.Country
	if err := json.NewDecoder(r.Body).Decode(&country); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	created, err := h.Service.CreateCountry(&country)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("CreateCountry: %v", err))
		http.Error(w, "Could not create country: "+err.Error(), apperrors.HTTPStatus(err))
		return
	}
	h.writeJSON(w, http.StatusCreated, created)
}

func (h *Handler) UpdateCountry(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "countryId")
	if !ok {
		return
	}
	var country models.Country
	if err := json.NewDecoder(r.Body).Decode(&country); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	updated, err := h.Service.UpdateCountry(id, &country)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("UpdateCountry: country %d: %v", id, err))
		http.Error(w, "Could not update country: "+err.Error(), apperrors.HTTPStatus(err))
		return
	}
	h.writeJSON(w, http.StatusOK, updated)
}

func (h *Handler) DeleteCountry(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "countryId")
	if !ok {
		return
	}
	if err := h.Service.DeleteCountry(id); err != nil {
		h.Logger.Error("API", fmt.Sprintf("DeleteCountry: country %d: %v", id, err))
		http.Error(w, "Could not delete country: "+err.Error(), apperrors.HTTPStatus(err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ListSpecializations(w http.ResponseWriter, r *http.Request) {
	list, err := h.Service.ListSpecializations()
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("ListSpecializations: %v", err))
		http.Error(w, "Could not list specializations", apperrors.HTTPStatus(err))
		return
	}
	h.writeJSON(w, http.StatusOK, list)
}

func (h *Handler) GetSpecialization(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "specializationId")
	if !ok {
		return
	}
	specialization, err := h.Service.GetSpecialization(id)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("GetSpecialization: specialization %d: %v", id, err))
		http.Error(w, "Specialization not found", apperrors.HTTPStatus(err))
		return
	}
	h.writeJSON(w, http.StatusOK, specialization)
}

func (h *Handler) CreateSpecialization(w http.ResponseWriter, r *http.Request) {
	var specialization models.Specialization
	if err := json.NewDecoder(r.Body).Decode(&specialization); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	created, err := h.Service.CreateSpecialization(&specialization)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("CreateSpecialization: %v", err))
		http.Error(w, "Could not create specialization: "+err.Error(), apperrors.HTTPStatus(err))
		return
	}
	h.writeJSON(w, http.StatusCreated, created)
}

func (h *Handler) UpdateSpecialization(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "specializationId")
	if !ok {
		return
	}
	var specialization models.Specialization
	if err := json.NewDecoder(r.Body).Decode(&specialization); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	updated, err := h.Service.UpdateSpecialization(id, &specialization)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("UpdateSpecialization: specialization %d: %v", id, err))
		http.Error(w, "Could not update specialization: "+err.Error(), apperrors.HTTPStatus(err))
		return
	}
	h.writeJSON(w, http.StatusOK, updated)
}

func (h *Handler) DeleteSpecialization(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "specializationId")
	if !ok {
		return
	}
	if err := h.Service.DeleteSpecialization(id); err != nil {
		h.Logger.Error("API", fmt.Sprintf("DeleteSpecialization: specialization %d: %v", id, err))
		http.Error(w, "Could not delete specialization: "+err.Error(), apperrors.HTTPStatus(err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		http.Error(w, "Invalid "+name+": "+raw, http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.Logger.Error("API", fmt.Sprintf("failed to encode response: %v", err))
	}
}
