package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"garage-client-api/internal/apperrors"
	"garage-client-api/internal/billing/premium"
	"garage-client-api/internal/logger"
	"garage-client-api/internal/models"
	"garage-client-api/internal/utils"
)

type Handler[M any, T interface {
	*M
	models.Registration
}] struct {
	Service *premium.Service[T]
	Logger  *logger.Logger
}

func NewHandler[M any, T interface {
	*M
	models.Registration
}](service *premium.Service[T], log *logger.Logger) *Handler[M, T] {
	return &Handler[M, T]{Service: service, Logger: log}
}

func (h *Handler[M, T]) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.GET("/active", h.ListActive)
	rg.GET("/:id", h.Get)
	rg.POST("", h.Create)
	rg.PUT("/:id", h.Update)
	rg.PATCH("/:id/activate", h.Activate)
	rg.PATCH("/:id/extend", h.Extend)
	rg.DELETE("/:id", h.Delete)
	rg.GET("/owner/:ownerId", h.ListByOwner)
}

func (h *Handler[M, T]) List(c *gin.Context) {
	regs, err := h.Service.List()
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("List premium registrations: %v", err))
		c.JSON(apperrors.HTTPStatus(err), utils.ErrorResponse("Failed to list premium registrations", err.Error()))
		return
	}
	c.JSON(http.StatusOK, utils.SuccessResponse("Premium registrations retrieved", regs))
}

func (h *Handler[M, T]) ListActive(c *gin.Context) {
	regs, err := h.Service.ListActive()
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("ListActive premium registrations: %v", err))
		c.JSON(apperrors.HTTPStatus(err), utils.ErrorResponse("Failed to list active premium registrations", err.Error()))
		return
	}
	c.JSON(http.StatusOK, utils.SuccessResponse("Active premium registrations retrieved", regs))
}

func (h *Handler[M, T]) Get(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	reg, err := h.Service.Get(id)
	if err != nil {
		c.JSON(apperrors.HTTPStatus(err), utils.ErrorResponse("Premium registration not found", err.Error()))
		return
	}
	c.JSON(http.StatusOK, utils.SuccessResponse("Premium registration retrieved", reg))
}

func (h *Handler[M, T]) ListByOwner(c *gin.Context) {
	ownerID, ok := h.pathID(c, "ownerId")
	if !ok {
		return
	}
	regs, err := h.Service.ListByOwner(ownerID)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("ListByOwner premium registrations: %v", err))
		c.JSON(apperrors.HTTPStatus(err), utils.ErrorResponse("Failed to list premium registrations", err.Error()))
		return
	}
	c.JSON(http.StatusOK, utils.SuccessResponse("Premium registrations retrieved", regs))
}

func (h *Handler[M, T]) Create(c *gin.Context) {
	reg := T(new(M))
	if err := c.ShouldBindJSON(reg); err != nil {
		c.JSON(http.StatusBadRequest, utils.ErrorResponse("Invalid request payload", err.Error()))
		return
	}
	if err := h.Service.Create(reg); err != nil {
		h.Logger.Error("API", fmt.Sprintf("Create premium registration: %v", err))
		c.JSON(apperrors.HTTPStatus(err), utils.ErrorResponse("Failed to create premium registration", err.Error()))
		return
	}
	c.JSON(http.StatusCreated, utils.SuccessResponse("Premium registration created", reg))
}

func (h *Handler[M, T]) Update(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	reg := T(new(M))
	if err := c.ShouldBindJSON(reg); err != nil {
		c.JSON(http.StatusBadRequest, utils.ErrorResponse("Invalid request payload", err.Error()))
		return
	}
	if err := h.Service.Update(id, reg); err != nil {
		h.Logger.Error("API", fmt.Sprintf("Update premium registration %d: %v", id, err))
		c.JSON(apperrors.HTTPStatus(err), utils.ErrorResponse("Failed to update premium registration", err.Error()))
		return
	}
	c.JSON(http.StatusOK, utils.SuccessResponse("Premium registration updated", reg))
}

func (h *Handler[M, T]) Activate(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	if err := h.Service.Activate(id); err != nil {
		h.Logger.Error("API", fmt.Sprintf("Activate premium registration %d: %v", id, err))
		c.JSON(apperrors.HTTPStatus(err), utils.ErrorResponse("Failed to activate premium registration", err.Error()))
		return
	}
	c.JSON(http.StatusOK, utils.SuccessResponse("Premium registration activated", gin.H{"id": id}))
}

func (h *Handler[M, T]) Extend(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req models.ExtendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, utils.ErrorResponse("Invalid request payload", err.Error()))
		return
	}
	reg, err := h.Service.Extend(id, req.Months)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("Extend premium registration %d: %v", id, err))
		c.JSON(apperrors.HTTPStatus(err), utils.ErrorResponse("Failed to extend premium registration", err.Error()))
		return
	}
	c.JSON(http.StatusOK, utils.SuccessResponse("Premium registration extended", reg))
}

func (h *Handler[M, T]) Delete(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	if err := h.Service.Delete(id); err != nil {
		h.Logger.Error("API", fmt.Sprintf("Delete premium registration %d: %v", id, err))
		c.JSON(apperrors.HTTPStatus(err), utils.ErrorResponse("Failed to delete premium registration", err.Error()))
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler[M, T]) pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, utils.ErrorResponse("Invalid id", c.Param(name)))
		return 0, false
	}
	return id, true
}
