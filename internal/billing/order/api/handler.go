package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"garage-client-api/internal/apperrors"
	"garage-client-api/internal/billing/order"
	"garage-client-api/internal/logger"
	"garage-client-api/internal/models"
	"garage-client-api/internal/utils"
)

type Handler[M any, T interface {
	*M
	models.PaymentOrder
}] struct {
	Service *order.Service[T]
	Logger  *logger.Logger
}

func NewHandler[M any, T interface {
	*M
	models.PaymentOrder
}](service *order.Service[T], log *logger.Logger) *Handler[M, T] {
	return &Handler[M, T]{Service: service, Logger: log}
}

// RegisterRoutes mounts the order routes. Any middleware passed in guards the
// administrative status override; the caller decides whether the role gate
// applies, since the claims middleware is itself conditional.
func (h *Handler[M, T]) RegisterRoutes(rg *gin.RouterGroup, adminGate ...gin.HandlerFunc) {
	rg.GET("", h.List)
	rg.GET("/:id", h.Get)
	rg.GET("/number/:orderNumber", h.GetByOrderNumber)
	rg.POST("", h.Create)
	rg.DELETE("/:id", h.Delete)
	rg.GET("/owner/:ownerId", h.ListByOwner)
	rg.GET("/status/:status", h.ListByStatus)
	rg.GET("/method/:methodId", h.ListByMethod)
	rg.PATCH("/:id/status", append(adminGate, gin.HandlerFunc(h.UpdateStatus))...)
}

func (h *Handler[M, T]) List(c *gin.Context) {
	orders, err := h.Service.List()
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("List orders: %v", err))
		c.JSON(apperrors.HTTPStatus(err), utils.ErrorResponse("Failed to list orders", err.Error()))
		return
	}
	c.JSON(http.StatusOK, utils.SuccessResponse("Orders retrieved", orders))
}

func (h *Handler[M, T]) Get(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	o, err := h.Service.Get(id)
	if err != nil {
		c.JSON(apperrors.HTTPStatus(err), utils.ErrorResponse("Order not found", err.Error()))
		return
	}
	c.JSON(http.StatusOK, utils.SuccessResponse("Order retrieved", o))
}

func (h *Handler[M, T]) GetByOrderNumber(c *gin.Context) {
	o, err := h.Service.GetByOrderNumber(c.Param("orderNumber"))
	if err != nil {
		c.JSON(apperrors.HTTPStatus(err), utils.ErrorResponse("Order not found", err.Error()))
		return
	}
	c.JSON(http.StatusOK, utils.SuccessResponse("Order retrieved", o))
}

func (h *Handler[M, T]) Create(c *gin.Context) {
	o := T(new(M))
	if err := c.ShouldBindJSON(o); err != nil {
		c.JSON(http.StatusBadRequest, utils.ErrorResponse("Invalid request payload", err.Error()))
		return
	}
	if err := h.Service.Create(o); err != nil {
		h.Logger.Error("API", fmt.Sprintf("Create order: %v", err))
		c.JSON(apperrors.HTTPStatus(err), utils.ErrorResponse("Failed to create order", err.Error()))
		return
	}
	// The order is accepted Pending; settlement happens in the background.
	c.JSON(http.StatusAccepted, utils.SuccessResponse("Order created", o))
}

func (h *Handler[M, T]) ListByOwner(c *gin.Context) {
	ownerID, ok := h.pathID(c, "ownerId")
	if !ok {
		return
	}
	orders, err := h.Service.ListByOwner(ownerID)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("ListByOwner orders: %v", err))
		c.JSON(apperrors.HTTPStatus(err), utils.ErrorResponse("Failed to list orders", err.Error()))
		return
	}
	c.JSON(http.StatusOK, utils.SuccessResponse("Orders retrieved", orders))
}

func (h *Handler[M, T]) ListByStatus(c *gin.Context) {
	orders, err := h.Service.ListByStatus(c.Param("status"))
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("ListByStatus orders: %v", err))
		c.JSON(apperrors.HTTPStatus(err), utils.ErrorResponse("Failed to list orders", err.Error()))
		return
	}
	c.JSON(http.StatusOK, utils.SuccessResponse("Orders retrieved", orders))
}

func (h *Handler[M, T]) ListByMethod(c *gin.Context) {
	methodID, ok := h.pathID(c, "methodId")
	if !ok {
		return
	}
	orders, err := h.Service.ListByMethod(methodID)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("ListByMethod orders: %v", err))
		c.JSON(apperrors.HTTPStatus(err), utils.ErrorResponse("Failed to list orders", err.Error()))
		return
	}
	c.JSON(http.StatusOK, utils.SuccessResponse("Orders retrieved", orders))
}

func (h *Handler[M, T]) Delete(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	if err := h.Service.Delete(id); err != nil {
		h.Logger.Error("API", fmt.Sprintf("Delete order %d: %v", id, err))
		c.JSON(apperrors.HTTPStatus(err), utils.ErrorResponse("Failed to delete order", err.Error()))
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler[M, T]) UpdateStatus(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req models.OrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, utils.ErrorResponse("Invalid request payload", err.Error()))
		return
	}
	o, err := h.Service.UpdateStatus(id, req.Status)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("UpdateStatus order %d: %v", id, err))
		c.JSON(apperrors.HTTPStatus(err), utils.ErrorResponse("Failed to update order status", err.Error()))
		return
	}
	c.JSON(http.StatusOK, utils.SuccessResponse("Order status updated", o))
}

func (h *Handler[M, T]) pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, utils.ErrorResponse("Invalid id", c.Param(name)))
		return 0, false
	}
	return id, true
}
