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
	"garage-client-api/internal/vehicles"
)

type Handler struct {
	Service *vehicles.Service
	Logger  *logger.Logger
}

func NewHandler(service *vehicles.Service) *Handler {
	return &Handler{Service: service, Logger: logger.NewLogger()}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.ListVehicles)
	r.Get("/active", h.ListActiveVehicles)
	r.Get("/count", h.CountVehicles)
	r.Get("/search", h.SearchVehicles)
	r.Get("/license-plate/{plate}", h.GetVehicleByLicensePlate)
	r.Get("/client/{clientId}", h.ListVehiclesByClient)
	r.Get("/manufacturer/{manufacturerId}", h.ListVehiclesByManufacturer)
	r.Get("/{vehicleId}", h.GetVehicle)
	r.Post("/", h.CreateVehicle)
	r.Put("/{vehicleId}", h.UpdateVehicle)
	r.Delete("/{vehicleId}", h.DeleteVehicle)
}

func (h *Handler) ListVehicles(w http.ResponseWriter, r *http.Request) {
	list, err := h.Service.List()
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("ListVehicles: %v", err))
		http.Error(w, "Could not list vehicles", apperrors.HTTPStatus(err))
		return
	}
	h.writeJSON(w, http.StatusOK, list)
}

func (h *Handler) GetVehicle(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "vehicleId")
	if !ok {
		return
	}
	vehicle, err := h.Service.Get(id)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("GetVehicle: vehicle %d: %v", id, err))
		http.Error(w, "Vehicle not found", apperrors.HTTPStatus(err))
		return
	}
	h.writeJSON(w, http.StatusOK, vehicle)
}

func (h *Handler) GetVehicleByLicensePlate(w http.ResponseWriter, r *http.Request) {
	plate := chi.URLParam(r, "plate")
	vehicle, err := h.Service.GetByLicensePlate(plate)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("GetVehicleByLicensePlate: %q: %v", plate, err))
		http.Error(w, "Vehicle not found", apperrors.HTTPStatus(err))
		return
	}
	h.writeJSON(w, http.StatusOK, vehicle)
}

func (h *Handler) ListVehiclesByClient(w http.ResponseWriter, r *http.Request) {
	clientID, ok := h.pathID(w, r, "clientId")
	if !ok {
		return
	}
	list, err := h.Service.ListByClient(clientID)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("ListVehiclesByClient: client %d: %v", clientID, err))
		http.Error(w, "Could not list vehicles", apperrors.HTTPStatus(err))
		return
	}
	h.writeJSON(w, http.StatusOK, list)
}

func (h *Handler) ListVehiclesByManufacturer(w http.ResponseWriter, r *http.Request) {
	manufacturerID, ok := h.pathID(w, r, "manufacturerId")
	if !ok {
		return
	}
	list, err := h.Service.ListByManufacturer(manufacturerID)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("ListVehiclesByManufacturer: manufacturer %d: %v", manufacturerID, err))
		http.Error(w, "Could not list vehicles", apperrors.HTTPStatus(err))
		return
	}
	h.writeJSON(w, http.StatusOK, list)
}

func (h *Handler) ListActiveVehicles(w http.ResponseWriter, r *http.Request) {
	list, err := h.Service.ListActive()
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("ListActiveVehicles: %v", err))
		http.Error(w, "Could not list active vehicles", apperrors.HTTPStatus(err))
		return
	}
	h.writeJSON(w, http.StatusOK, list)
}

func (h *Handler) SearchVehicles(w http.ResponseWriter, r *http.Request) {
	term := r.URL.Query().Get("q")
	list, err := h.Service.Search(term)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("SearchVehicles: %q: %v", term, err))
		http.Error(w, "Could not search vehicles: "+err.Error(), apperrors.HTTPStatus(err))
		return
	}
	h.writeJSON(w, http.StatusOK, list)
}

func (h *Handler) CountVehicles(w http.ResponseWriter, r *http.Request) {
	count, err := h.Service.Count()
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("CountVehicles: %v", err))
		http.Error(w, "Could not count vehicles", apperrors.HTTPStatus(err))
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]int{"count": count})
}

func (h *Handler) CreateVehicle(w http.ResponseWriter, r *http.Request) {
	var vehicle models.Vehicle
	if err := json.NewDecoder(r.Body).Decode(&vehicle); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	created, err := h.Service.Create(&vehicle)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("CreateVehicle: %v", err))
		http.Error(w, "Could not create vehicle: "+err.Error(), apperrors.HTTPStatus(err))
		return
	}
	h.Logger.Info("API", fmt.Sprintf("CreateVehicle: vehicle %d created", created.ID))
	h.writeJSON(w, http.StatusCreated, created)
}

func (h *Handler) UpdateVehicle(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "vehicleId")
	if !ok {
		return
	}
	var vehicle models.Vehicle
	if err := json.NewDecoder(r.Body).Decode(&vehicle); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	updated, err := h.Service.Update(id, &vehicle)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("UpdateVehicle: vehicle %d: %v", id, err))
		http.Error(w, "Could not update vehicle: "+err.Error(), apperrors.HTTPStatus(err))
		return
	}
	h.writeJSON(w, http.StatusOK, updated)
}

func (h *Handler) DeleteVehicle(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "vehicleId")
	if !ok {
		return
	}
	if err := h.Service.Delete(id); err != nil {
		h.Logger.Error("API", fmt.Sprintf("DeleteVehicle: vehicle %d: %v", id, err))
		http.Error(w, "Could not delete vehicle: "+err.Error(), apperrors.HTTPStatus(err))
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
