package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"garage-client-api/internal/apperrors"
	"garage-client-api/internal/clients"
	"garage-client-api/internal/logger"
	"garage-client-api/internal/models"
)

type Handler struct {
	Service *clients.Service
	Logger  *logger.Logger
}

func NewHandler(service *clients.Service) *Handler {
	return &Handler{Service: service, Logger: logger.NewLogger()}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.ListClients)
	r.Get("/premium", h.ListPremiumClients)
	r.Get("/by-email", h.GetClientByEmail)
	r.Get("/user/{userId}", h.GetClientByUser)
	r.Get("/{clientId}", h.GetClient)
	r.Post("/", h.CreateClient)
	r.Put("/{clientId}", h.UpdateClient)
	r.Delete("/{clientId}", h.DeleteClient)
}

func (h *Handler) ListClients(w http.ResponseWriter, r *http.Request) {
	list, err := h.Service.List()
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("ListClients: %v", err))
		http.Error(w, "Could not list clients", apperrors.HTTPStatus(err))
		return
	}
	h.writeJSON(w, http.StatusOK, list)
}

func (h *Handler) GetClient(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "clientId")
	if !ok {
		return
	}
	client, err := h.Service.Get(id)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("GetClient: client %d: %v", id, err))
		http.Error(w, "Client not found", apperrors.HTTPStatus(err))
		return
	}
	h.writeJSON(w, http.StatusOK, client)
}

func (h *Handler) GetClientByUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.pathID(w, r, "userId")
	if !ok {
		return
	}
	client, err := h.Service.GetByUser(userID)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("GetClientByUser: user %d: %v", userID, err))
		http.Error(w, "Client not found", apperrors.HTTPStatus(err))
		return
	}
	h.writeJSON(w, http.StatusOK, client)
}

func (h *Handler) GetClientByEmail(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	client, err := h.Service.GetByEmail(email)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("GetClientByEmail: %q: %v", email, err))
		http.Error(w, "Client not found", apperrors.HTTPStatus(err))
		return
	}
	h.writeJSON(w, http.StatusOK, client)
}

func (h *Handler) ListPremiumClients(w http.ResponseWriter, r *http.Request) {
	list, err := h.Service.ListPremium()
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("ListPremiumClients: %v", err))
		http.Error(w, "Could not list premium clients", apperrors.HTTPStatus(err))
		return
	}
	h.writeJSON(w, http.StatusOK, list)
}

func (h *Handler) CreateClient(w http.ResponseWriter, r *http.Request) {
	var client models.ClientProfile
	if err := json.NewDecoder(r.Body).Decode(&client); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	created, err := h.Service.Create(&client)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("CreateClient: %v", err))
		http.Error(w, "Could not create client: "+err.Error(), apperrors.HTTPStatus(err))
		return
	}
	h.Logger.Info("API", fmt.Sprintf("CreateClient: client %d created", created.ID))
	h.writeJSON(w, http.StatusCreated, created)
}

func (h *Handler) UpdateClient(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "clientId")
	if !ok {
		return
	}
	var client models.ClientProfile
	if err := json.NewDecoder(r.Body).Decode(&client); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	updated, err := h.Service.Update(id, &client)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("UpdateClient: client %d: %v", id, err))
		http.Error(w, "Could not update client: "+err.Error(), apperrors.HTTPStatus(err))
		return
	}
	h.writeJSON(w, http.StatusOK, updated)
}

func (h *Handler) DeleteClient(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "clientId")
	if !ok {
		return
	}
	if err := h.Service.Delete(id); err != nil {
		h.Logger.Error("API", fmt.Sprintf("DeleteClient: client %d: %v", id, err))
		http.Error(w, "Could not delete client: "+err.Error(), apperrors.HTTPStatus(err))
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
