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
	"garage-client-api/internal/notifications"
	"garage-client-api/internal/notifications/sse"
)

type Handler struct {
	Service *notifications.Service
	Emitter *sse.NotificationEmitter
	Logger  *logger.Logger
}

func NewHandler(service *notifications.Service, emitter *sse.NotificationEmitter) *Handler {
	return &Handler{Service: service, Emitter: emitter, Logger: logger.NewLogger()}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.ListNotifications)
	r.Get("/{notificationId}", h.GetNotification)
	r.Get("/client/{clientId}", h.ListNotificationsByClient)
	r.Get("/client/{clientId}/unread", h.ListUnreadNotifications)
	r.Get("/client/{clientId}/recent", h.ListRecentNotifications)
	r.Get("/client/{clientId}/stream", h.StreamNotifications)
	r.Post("/", h.CreateNotification)
	r.Post("/bulk", h.CreateNotifications)
	r.Put("/{notificationId}", h.UpdateNotification)
	r.Patch("/{notificationId}/read", h.MarkNotificationRead)
	r.Patch("/client/{clientId}/read-all", h.MarkAllNotificationsRead)
	r.Delete("/{notificationId}", h.DeleteNotification)
	r.Delete("/client/{clientId}", h.DeleteNotificationsByClient)
}

func (h *Handler) RegisterReminderRoutes(r chi.Router) {
	r.Get("/", h.ListReminders)
	r.Get("/{reminderId}", h.GetReminder)
	r.Get("/client/{clientId}", h.GetReminderByClient)
	r.Post("/", h.CreateReminder)
	r.Put("/{reminderId}", h.UpdateReminder)
	r.Delete("/{reminderId}", h.DeleteReminder)
}

func (h *Handler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	list, err := h.Service.List()
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("ListNotifications: %v", err))
		http.Error(w, "Could not list notifications", apperrors.HTTPStatus(err))
		return
	}
	h.writeJSON(w, http.StatusOK, list)
}

func (h *Handler) GetNotification(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "notificationId")
	if !ok {
		return
	}
	notification, err := h.Service.Get(id)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("GetNotification: notification %d: %v", id, err))
		http.Error(w, "Notification not found", apperrors.HTTPStatus(err))
		return
	}
	h.writeJSON(w, http.StatusOK, notification)
}

func (h *Handler) ListNotificationsByClient(w http.ResponseWriter, r *http.Request) {
	clientID, ok := h.pathID(w, r, "clientId")
	if !ok {
		return
	}
	list, err := h.Service.ListByClient(clientID)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("ListNotificationsByClient: client %d: %v", clientID, err))
		http.Error(w, "Could not list notifications", apperrors.HTTPStatus(err))
		return
	}
	h.writeJSON(w, http.StatusOK, list)
}

func (h *Handler) ListUnreadNotifications(w http.ResponseWriter, r *http.Request) {
	clientID, ok := h.pathID(w, r, "clientId")
	if !ok {
		return
	}
	list, err := h.Service.ListUnread(clientID)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("ListUnreadNotifications: client %d: %v", clientID, err))
		http.Error(w, "Could not list unread notifications", apperrors.HTTPStatus(err))
		return
	}
	h.writeJSON(w, http.StatusOK, list)
}

func (h *Handler) ListRecentNotifications(w http.ResponseWriter, r *http.Request) {
	clientID, ok := h.pathID(w, r, "clientId")
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	list, err := h.Service.ListRecent(clientID, limit)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("ListRecentNotifications: client %d: %v", clientID, err))
		http.Error(w, "Could not list recent notifications", apperrors.HTTPStatus(err))
		return
	}
	h.writeJSON(w, http.StatusOK, list)
}

// StreamNotifications holds the connection open and forwards new
// notifications for the client as SSE events until the client disconnects.
func (h *Handler) StreamNotifications(w http.ResponseWriter, r *http.Request) {
	clientID, ok := h.pathID(w, r, "clientId")
	if !ok {
		return
	}
	flusher, canFlush := w.(http.Flusher)
	if !canFlush {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	subscriberChan := h.Emitter.Subscribe(r.Context(), clientID)
	h.Logger.Info("API", fmt.Sprintf("StreamNotifications: client %d subscribed", clientID))

	for {
		select {
		case notification, open := <-subscriberChan:
			if !open {
				return
			}
			payload, err := json.Marshal(notification)
			if err != nil {
				h.Logger.Error("API", fmt.Sprintf("StreamNotifications: failed to encode event: %v", err))
				continue
			}
			fmt.Fprintf(w, "data: %s\n\n", payload)
			flusher.Flush()
		case <-r.Context().Done():
			h.Logger.Info("API", fmt.Sprintf("StreamNotifications: client %d disconnected", clientID))
			return
		}
	}
}

func (h *Handler) CreateNotification(w http.ResponseWriter, r *http.Request) {
	var notification models.ClientNotification
	if err := json.NewDecoder(r.Body).Decode(&notification); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	created, err := h.Service.Create(&notification)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("CreateNotification: %v", err))
		http.Error(w, "Could not create notification: "+err.Error(), apperrors.HTTPStatus(err))
		return
	}
	h.writeJSON(w, http.StatusCreated, created)
}

func (h *Handler) CreateNotifications(w http.ResponseWriter, r *http.Request) {
	var batch []models.ClientNotification
	if err := json.NewDecoder(r.Body).Decode(&batch); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	created, err := h.Service.CreateBulk(batch)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("CreateNotifications: %v", err))
		http.Error(w, "Could not create notifications: "+err.Error(), apperrors.HTTPStatus(err))
		return
	}
	h.writeJSON(w, http.StatusCreated, created)
}

func (h *Handler) UpdateNotification(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "notificationId")
	if !ok {
		return
	}
	var notification models.ClientNotification
	if err := json.NewDecoder(r.Body).Decode(&notification); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	updated, err := h.Service.Update(id, &notification)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("UpdateNotification: notification %d: %v", id, err))
		http.Error(w, "Could not update notification: "+err.Error(), apperrors.HTTPStatus(err))
		return
	}
	h.writeJSON(w, http.StatusOK, updated)
}

func (h *Handler) MarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "notificationId")
	if !ok {
		return
	}
	notification, err := h.Service.MarkRead(id)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("MarkNotificationRead: notification %d: %v", id, err))
		http.Error(w, "Could not mark notification read: "+err.Error(), apperrors.HTTPStatus(err))
		return
	}
	h.writeJSON(w, http.StatusOK, notification)
}

func (h *Handler) MarkAllNotificationsRead(w http.ResponseWriter, r *http.Request) {
	clientID, ok := h.pathID(w, r, "clientId")
	if !ok {
		return
	}
	affected, err := h.Service.MarkAllRead(clientID)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("MarkAllNotificationsRead: client %d: %v", clientID, err))
		http.Error(w, "Could not mark notifications read: "+err.Error(), apperrors.HTTPStatus(err))
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]int64{"updated": affected})
}

func (h *Handler) DeleteNotificationsByClient(w http.ResponseWriter, r *http.Request) {
	clientID, ok := h.pathID(w, r, "clientId")
	if !ok {
		return
	}
	deleted, err := h.Service.DeleteByClient(clientID)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("DeleteNotificationsByClient: client %d: %v", clientID, err))
		http.Error(w, "Could not delete notifications: "+err.Error(), apperrors.HTTPStatus(err))
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]int64{"deleted": deleted})
}

func (h *Handler) DeleteNotification(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "notificationId")
	if !ok {
		return
	}
	if err := h.Service.Delete(id); err != nil {
		h.Logger.Error("API", fmt.Sprintf("DeleteNotification: notification %d: %v", id, err))
		http.Error(w, "Could not delete notification: "+err.Error(), apperrors.HTTPStatus(err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ---------------- REMINDERS ----------------

func (h *Handler) ListReminders(w http.ResponseWriter, r *http.Request) {
	list, err := h.Service.ListReminders()
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("ListReminders: %v", err))
		http.Error(w, "Could not list reminders", apperrors.HTTPStatus(err))
		return
	}
	h.writeJSON(w, http.StatusOK, list)
}

func (h *Handler) GetReminder(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "reminderId")
	if !ok {
		return
	}
	reminder, err := h.Service.GetReminder(id)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("GetReminder: reminder %d: %v", id, err))
		http.Error(w, "Reminder not found", apperrors.HTTPStatus(err))
		return
	}
	h.writeJSON(w, http.StatusOK, reminder)
}

func (h *Handler) GetReminderByClient(w http.ResponseWriter, r *http.Request) {
	clientID, ok := h.pathID(w, r, "clientId")
	if !ok {
		return
	}
	reminder, err := h.Service.GetReminderByClient(clientID)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("GetReminderByClient: client %d: %v", clientID, err))
		http.Error(w, "Reminder not found", apperrors.HTTPStatus(err))
		return
	}
	h.writeJSON(w, http.StatusOK, reminder)
}

func (h *Handler) CreateReminder(w http.ResponseWriter, r *http.Request) {
	var reminder models.ClientReminder
	if err := json.NewDecoder(r.Body).Decode(&reminder); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	created, err := h.Service.CreateReminder(&reminder)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("CreateReminder: %v", err))
		http.Error(w, "Could not create reminder: "+err.Error(), apperrors.HTTPStatus(err))
		return
	}
	h.writeJSON(w, http.StatusCreated, created)
}

func (h *Handler) UpdateReminder(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "reminderId")
	if !ok {
		return
	}
	var reminder models.ClientReminder
	if err := json.NewDecoder(r.Body).Decode(&reminder); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	updated, err := h.Service.UpdateReminder(id, &reminder)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("UpdateReminder: reminder %d: %v", id, err))
		http.Error(w, "Could not update reminder: "+err.Error(), apperrors.HTTPStatus(err))
		return
	}
	h.writeJSON(w, http.StatusOK, updated)
}

func (h *Handler) DeleteReminder(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "reminderId")
	if !ok {
		return
	}
	if err := h.Service.DeleteReminder(id); err != nil {
		h.Logger.Error("API", fmt.Sprintf("DeleteReminder: reminder %d: %v", id, err))
		http.Error(w, "Could not delete reminder: "+err.Error(), apperrors.HTTPStatus(err))
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
