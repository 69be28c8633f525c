package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"garage-client-api/internal/apperrors"
	"garage-client-api/internal/appointments"
	"garage-client-api/internal/logger"
	"garage-client-api/internal/models"
)

type Handler struct {
	Service *appointments.Service
	Logger  *logger.Logger
}

func NewHandler(service *appointments.Service) *Handler {
	return &Handler{Service: service, Logger: logger.NewLogger()}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.ListAppointments)
	r.Get("/upcoming", h.ListUpcomingAppointments)
	r.Get("/count", h.CountAppointments)
	r.Get("/date/{date}", h.ListAppointmentsByDate)
	r.Get("/range", h.ListAppointmentsByDateRange)
	r.Get("/vehicle/{vehicleId}", h.ListAppointmentsByVehicle)
	r.Get("/garage/{garageId}", h.ListAppointmentsByGarage)
	r.Get("/client/{clientId}", h.ListAppointmentsByClient)
	r.Get("/{appointmentId}", h.GetAppointment)
	r.Get("/{appointmentId}/check-in-code", h.CheckInCode)
	r.Post("/", h.CreateAppointment)
	r.Put("/{appointmentId}", h.UpdateAppointment)
	r.Patch("/{appointmentId}/reschedule", h.RescheduleAppointment)
	r.Patch("/{appointmentId}/note", h.UpdateAppointmentNote)
	r.Delete("/{appointmentId}", h.DeleteAppointment)
}

func (h *Handler) ListAppointments(w http.ResponseWriter, r *http.Request) {
	list, err := h.Service.List()
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("ListAppointments: %v", err))
		http.Error(w, "Could not list appointments", apperrors.HTTPStatus(err))
		return
	}
	h.writeJSON(w, http.StatusOK, list)
}

func (h *Handler) GetAppointment(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "appointmentId")
	if !ok {
		return
	}
	appointment, err := h.Service.Get(id)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("GetAppointment: appointment %d: %v", id, err))
		http.Error(w, "Appointment not found", apperrors.HTTPStatus(err))
		return
	}
	h.writeJSON(w, http.StatusOK, appointment)
}

func (h *Handler) ListAppointmentsByVehicle(w http.ResponseWriter, r *http.Request) {
	vehicleID, ok := h.pathID(w, r, "vehicleId")
	if !ok {
		return
	}
	list, err := h.Service.ListByVehicle(vehicleID)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("ListAppointmentsByVehicle: vehicle %d: %v", vehicleID, err))
		http.Error(w, "Could not list appointments", apperrors.HTTPStatus(err))
		return
	}
	h.writeJSON(w, http.StatusOK, list)
}

func (h *Handler) ListAppointmentsByGarage(w http.ResponseWriter, r *http.Request) {
	garageID, ok := h.pathID(w, r, "garageId")
	if !ok {
		return
	}
	list, err := h.Service.ListByGarage(garageID)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("ListAppointmentsByGarage: garage %d: %v", garageID, err))
		http.Error(w, "Could not list appointments", apperrors.HTTPStatus(err))
		return
	}
	h.writeJSON(w, http.StatusOK, list)
}

func (h *Handler) ListUpcomingAppointments(w http.ResponseWriter, r *http.Request) {
	list, err := h.Service.ListUpcoming()
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("ListUpcomingAppointments: %v", err))
		http.Error(w, "Could not list upcoming appointments", apperrors.HTTPStatus(err))
		return
	}
	h.writeJSON(w, http.StatusOK, list)
}

func (h *Handler) ListAppointmentsByDate(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "date")
	day, err := time.Parse("2006-01-02", raw)
	if err != nil {
		http.Error(w, "Invalid date (expected YYYY-MM-DD): "+raw, http.StatusBadRequest)
		return
	}
	list, err := h.Service.ListByDate(day)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("ListAppointmentsByDate: %s: %v", raw, err))
		http.Error(w, "Could not list appointments", apperrors.HTTPStatus(err))
		return
	}
	h.writeJSON(w, http.StatusOK, list)
}

func (h *Handler) ListAppointmentsByDateRange(w http.ResponseWriter, r *http.Request) {
	from, err := time.Parse("2006-01-02", r.URL.Query().Get("from"))
	if err != nil {
		http.Error(w, "Invalid from date (expected YYYY-MM-DD)", http.StatusBadRequest)
		return
	}
	to, err := time.Parse("2006-01-02", r.URL.Query().Get("to"))
	if err != nil {
		http.Error(w, "Invalid to date (expected YYYY-MM-DD)", http.StatusBadRequest)
		return
	}
	list, err := h.Service.ListByDateRange(from, to.AddDate(0, 0, 1).Add(-time.Nanosecond))
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("ListAppointmentsByDateRange: %v", err))
		http.Error(w, "Could not list appointments: "+err.Error(), apperrors.HTTPStatus(err))
		return
	}
	h.writeJSON(w, http.StatusOK, list)
}

func (h *Handler) CountAppointments(w http.ResponseWriter, r *http.Request) {
	count, err := h.Service.Count()
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("CountAppointments: %v", err))
		http.Error(w, "Could not count appointments", apperrors.HTTPStatus(err))
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]int{"count": count})
}

func (h *Handler) CheckInCode(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "appointmentId")
	if !ok {
		return
	}
	png, err := h.Service.CheckInCode(id)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("CheckInCode: appointment %d: %v", id, err))
		http.Error(w, "Could not generate check-in code: "+err.Error(), apperrors.HTTPStatus(err))
		return
	}
	w.Header().Set("Content-Type", "image/png")
	if _, err := w.Write(png); err != nil {
		h.Logger.Error("API", fmt.Sprintf("CheckInCode: failed to write image: %v", err))
	}
}

func (h *Handler) CreateAppointment(w http.ResponseWriter, r *http.Request) {
	var appointment models.VehicleAppointment
	if err := json.NewDecoder(r.Body).Decode(&appointment); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	created, err := h.Service.Create(&appointment)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("CreateAppointment: %v", err))
		http.Error(w, "Could not create appointment: "+err.Error(), apperrors.HTTPStatus(err))
		return
	}
	h.Logger.Info("API", fmt.Sprintf("CreateAppointment: appointment %d created", created.ID))
	h.writeJSON(w, http.StatusCreated, created)
}

func (h *Handler) UpdateAppointment(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "appointmentId")
	if !ok {
		return
	}
	var appointment models.VehicleAppointment
	if err := json.NewDecoder(r.Body).Decode(&appointment); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	updated, err := h.Service.Update(id, &appointment)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("UpdateAppointment: appointment %d: %v", id, err))
		http.Error(w, "Could not update appointment: "+err.Error(), apperrors.HTTPStatus(err))
		return
	}
	h.writeJSON(w, http.StatusOK, updated)
}

func (h *Handler) ListAppointmentsByClient(w http.ResponseWriter, r *http.Request) {
	clientID, ok := h.pathID(w, r, "clientId")
	if !ok {
		return
	}
	list, err := h.Service.ListByClient(clientID)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("ListAppointmentsByClient: client %d: %v", clientID, err))
		http.Error(w, "Could not list appointments", apperrors.HTTPStatus(err))
		return
	}
	h.writeJSON(w, http.StatusOK, list)
}

func (h *Handler) RescheduleAppointment(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "appointmentId")
	if !ok {
		return
	}
	var req models.RescheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	updated, err := h.Service.Reschedule(id, req.AppointmentDate)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("RescheduleAppointment: appointment %d: %v", id, err))
		http.Error(w, "Could not reschedule appointment: "+err.Error(), apperrors.HTTPStatus(err))
		return
	}
	h.writeJSON(w, http.StatusOK, updated)
}

func (h *Handler) UpdateAppointmentNote(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "appointmentId")
	if !ok {
		return
	}
	var req models.AppointmentNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	updated, err := h.Service.UpdateNote(id, req.Note)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("UpdateAppointmentNote: appointment %d: %v", id, err))
		http.Error(w, "Could not update appointment note: "+err.Error(), apperrors.HTTPStatus(err))
		return
	}
	h.writeJSON(w, http.StatusOK, updated)
}

func (h *Handler) DeleteAppointment(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "appointmentId")
	if !ok {
		return
	}
	if err := h.Service.Delete(id); err != nil {
		h.Logger.Error("API", fmt.Sprintf("DeleteAppointment: appointment %d: %v", id, err))
		http.Error(w, "Could not delete appointment: "+err.Error(), apperrors.HTTPStatus(err))
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
