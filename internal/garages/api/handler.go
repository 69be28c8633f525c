package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"garage-client-api/internal/apperrors"
	"garage-client-api/internal/garages"
	"garage-client-api/internal/logger"
	"garage-client-api/internal/models"
)

type Handler struct {
	Service *garages.Service
	Logger  *logger.Logger
}

func NewHandler(service *garages.Service) *Handler {
	return &Handler{Service: service, Logger: logger.NewLogger()}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.ListGarages)
	r.Get("/premium", h.ListPremiumGarages)
	r.Get("/search", h.SearchGarages)
	r.Get("/user/{userId}", h.GetGarageByUser)
	r.Get("/country/{countryId}", h.ListGaragesByCountry)
	r.Get("/specialization/{specializationId}", h.ListGaragesBySpecialization)
	r.Get("/{garageId}", h.GetGarage)
	r.Post("/", h.CreateGarage)
	r.Put("/{garageId}", h.UpdateGarage)
	r.Patch("/{garageId}/premium-status", h.SetPremiumStatus)
	r.Post("/{garageId}/check-premium", h.CheckPremium)
	r.Delete("/{garageId}", h.DeleteGarage)
}

func (h *Handler) ListGarages(w http.ResponseWriter, r *http.Request) {
	list, err := h.Service.List()
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("ListGarages: %v", err))
		http.Error(w, "Could not list garages", apperrors.HTTPStatus(err))
		return
	}
	h.writeJSON(w, http.StatusOK, list)
}

func (h *Handler) GetGarage(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "garageId")
	if !ok {
		return
	}
	garage, err := h.Service.Get(id)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("GetGarage: garage %d: %v", id, err))
		http.Error(w, "Garage not found", apperrors.HTTPStatus(err))
		return
	}
	h.writeJSON(w, http.StatusOK, garage)
}

func (h *Handler) GetGarageByUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.pathID(w, r, "userId")
	if !ok {
		return
	}
	garage, err := h.Service.GetByUser(userID)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("GetGarageByUser: user %d: %v", userID, err))
		http.Error(w, "Garage not found", apperrors.HTTPStatus(err))
		return
	}
	h.writeJSON(w, http.StatusOK, garage)
}

func (h *Handler) ListPremiumGarages(w http.ResponseWriter, r *http.Request) {
	list, err := h.Service.ListPremium()
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("ListPremiumGarages: %v", err))
		http.Error(w, "Could not list premium garages", apperrors.HTTPStatus(err))
		return
	}
	h.writeJSON(w, http.StatusOK, list)
}

func (h *Handler) ListGaragesByCountry(w http.ResponseWriter, r *http.Request) {
	countryID, ok := h.pathID(w, r, "countryId")
	if !ok {
		return
	}
	list, err := h.Service.ListByCountry(countryID)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("ListGaragesByCountry: country %d: %v", countryID, err))
		http.Error(w, "Could not list garages", apperrors.HTTPStatus(err))
		return
	}
	h.writeJSON(w, http.StatusOK, list)
}

func (h *Handler) ListGaragesBySpecialization(w http.ResponseWriter, r *http.Request) {
	specializationID, ok := h.pathID(w, r, "specializationId")
	if !ok {
		return
	}
	list, err := h.Service.ListBySpecialization(specializationID)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("ListGaragesBySpecialization: specialization %d: %v", specializationID, err))
		http.Error(w, "Could not list garages", apperrors.HTTPStatus(err))
		return
	}
	h.writeJSON(w, http.StatusOK, list)
}

func (h *Handler) SearchGarages(w http.ResponseWriter, r *http.Request) {
	term := r.URL.Query().Get("q")
	list, err := h.Service.Search(term)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("SearchGarages: %q: %v", term, err))
		http.Error(w, "Could not search garages: "+err.Error(), apperrors.HTTPStatus(err))
		return
	}
	h.writeJSON(w, http.StatusOK, list)
}

func (h *Handler) CreateGarage(w http.ResponseWriter, r *http.Request) {
	var garage models.GarageProfile
	if err := json.NewDecoder(r.Body).Decode(&garage); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	created, err := h.Service.Create(&garage)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("CreateGarage: %v", err))
		http.Error(w, "Could not create garage: "+err.Error(), apperrors.HTTPStatus(err))
		return
	}
	h.Logger.Info("API", fmt.Sprintf("CreateGarage: garage %d created", created.ID))
	h.writeJSON(w, http.StatusCreated, created)
}

func (h *Handler) UpdateGarage(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "garageId")
	if !ok {
		return
	}
	var garage models.GarageProfile
	if err := json.NewDecoder(r.Body).Decode(&garage); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	updated, err := h.Service.Update(id, &garage)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("UpdateGarage: garage %d: %v", id, err))
		http.Error(w, "Could not update garage: "+err.Error(), apperrors.HTTPStatus(err))
		return
	}
	h.writeJSON(w, http.StatusOK, updated)
}

func (h *Handler) SetPremiumStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "garageId")
	if !ok {
		return
	}
	var req models.PremiumStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	garage, err := h.Service.SetPremiumStatus(id, req.IsPremium)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("SetPremiumStatus: garage %d: %v", id, err))
		http.Error(w, "Could not update premium status: "+err.Error(), apperrors.HTTPStatus(err))
		return
	}
	h.writeJSON(w, http.StatusOK, garage)
}

func (h *Handler) CheckPremium(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "garageId")
	if !ok {
		return
	}
	garage, err := h.Service.CheckPremium(id)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("CheckPremium: garage %d: %v", id, err))
		http.Error(w, "Could not check premium status: "+err.Error(), apperrors.HTTPStatus(err))
		return
	}
	h.writeJSON(w, http.StatusOK, garage)
}

func (h *Handler) DeleteGarage(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "garageId")
	if !ok {
		return
	}
	if err := h.Service.Delete(id); err != nil {
		h.Logger.Error("API", fmt.Sprintf("DeleteGarage: garage %d: %v", id, err))
		http.Error(w, "Could not delete garage: "+err.Error(), apperrors.HTTPStatus(err))
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
