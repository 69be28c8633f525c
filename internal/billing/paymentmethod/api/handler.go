package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"garage-client-api/internal/apperrors"
	"garage-client-api/internal/billing/paymentmethod"
	"garage-client-api/internal/logger"
	"garage-client-api/internal/models"
	"garage-client-api/internal/utils"
)

// Handler exposes one payment method family over gin. M fixes the concrete
// row type so request bodies can be allocated and bound.
type Handler[M any, T interface {
	*M
	models.CardMethod
}] struct {
	Service *paymentmethod.Service[T]
	Logger  *logger.Logger
}

func NewHandler[M any, T interface {
	*M
	models.CardMethod
}](service *paymentmethod.Service[T], log *logger.Logger) *Handler[M, T] {
	return &Handler[M, T]{Service: service, Logger: log}
}

// RegisterRoutes mounts the payment method endpoints on the given group,
// e.g. /api/billing/client-payment-methods.
func (h *Handler[M, T]) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.GET("/:id", h.Get)
	rg.POST("", h.Create)
	rg.PUT("/:id", h.Update)
	rg.PATCH("/:id/primary", h.SetPrimary)
	rg.DELETE("/:id", h.Delete)
	rg.GET("/owner/:ownerId", h.ListByOwner)
	rg.GET("/owner/:ownerId/primary", h.GetPrimary)
}

func (h *Handler[M, T]) List(c *gin.Context) {
	methods, err := h.Service.List()
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("List payment methods: %v", err))
		c.JSON(apperrors.HTTPStatus(err), utils.ErrorResponse("Failed to list payment methods", err.Error()))
		return
	}
	c.JSON(http.StatusOK, utils.SuccessResponse("Payment methods retrieved", methods))
}

func (h *Handler[M, T]) Get(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	method, err := h.Service.Get(id)
	if err != nil {
		c.JSON(apperrors.HTTPStatus(err), utils.ErrorResponse("Payment method not found", err.Error()))
		return
	}
	c.JSON(http.StatusOK, utils.SuccessResponse("Payment method retrieved", method))
}

func (h *Handler[M, T]) ListByOwner(c *gin.Context) {
	ownerID, ok := h.pathID(c, "ownerId")
	if !ok {
		return
	}
	methods, err := h.Service.ListByOwner(ownerID)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("ListByOwner payment methods: %v", err))
		c.JSON(apperrors.HTTPStatus(err), utils.ErrorResponse("Failed to list payment methods", err.Error()))
		return
	}
	c.JSON(http.StatusOK, utils.SuccessResponse("Payment methods retrieved", methods))
}

func (h *Handler[M, T]) GetPrimary(c *gin.Context) {
	ownerID, ok := h.pathID(c, "ownerId")
	if !ok {
		return
	}
	method, err := h.Service.GetPrimary(ownerID)
	if err != nil {
		c.JSON(apperrors.HTTPStatus(err), utils.ErrorResponse("No primary payment method", err.Error()))
		return
	}
	c.JSON(http.StatusOK, utils.SuccessResponse("Primary payment method retrieved", method))
}

func (h *Handler[M, T]) Create(c *gin.Context) {
	method := T(new(M))
	if err := c.ShouldBindJSON(method); err != nil {
		c.JSON(http.StatusBadRequest, utils.ErrorResponse("Invalid request payload", err.Error()))
		return
	}
	if err := h.Service.Create(method); err != nil {
		h.Logger.Error("API", fmt.Sprintf("Create payment method: %v", err))
		c.JSON(apperrors.HTTPStatus(err), utils.ErrorResponse("Failed to create payment method", err.Error()))
		return
	}
	c.JSON(http.StatusCreated, utils.SuccessResponse("Payment method created", method))
}

func (h *Handler[M, T]) Update(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	method := T(new(M))
	if err := c.ShouldBindJSON(method); err != nil {
		c.JSON(http.StatusBadRequest, utils.ErrorResponse("Invalid request payload", err.Error()))
		return
	}
	if err := h.Service.Update(id, method); err != nil {
		h.Logger.Error("API", fmt.Sprintf("Update payment method %d: %v", id, err))
		c.JSON(apperrors.HTTPStatus(err), utils.ErrorResponse("Failed to update payment method", err.Error()))
		return
	}
	c.JSON(http.StatusOK, utils.SuccessResponse("Payment method updated", method))
}

func (h *Handler[M, T]) SetPrimary(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	if err := h.Service.SetPrimary(id); err != nil {
		h.Logger.Error("API", fmt.Sprintf("SetPrimary payment method %d: %v", id, err))
		c.JSON(apperrors.HTTPStatus(err), utils.ErrorResponse("Failed to set primary payment method", err.Error()))
		return
	}
	c.JSON(http.StatusOK, utils.SuccessResponse("Primary payment method updated", gin.H{"id": id}))
}

func (h *Handler[M, T]) Delete(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	if err := h.Service.Delete(id); err != nil {
		h.Logger.Error("API", fmt.Sprintf("Delete payment method %d: %v", id, err))
		c.JSON(apperrors.HTTPStatus(err), utils.ErrorResponse("Failed to delete payment method", err.Error()))
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
