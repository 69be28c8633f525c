package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"garage-client-api/internal/apperrors"
	"garage-client-api/internal/billing/catalog"
	"garage-client-api/internal/logger"
	"garage-client-api/internal/models"
	"garage-client-api/internal/utils"
)

type Handler struct {
	Service *catalog.Service
	Logger  *logger.Logger
}

func NewHandler(service *catalog.Service, log *logger.Logger) *Handler {
	return &Handler{Service: service, Logger: log}
}

// RegisterRoutes mounts the three catalog resource groups.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	currencies := rg.Group("/currencies")
	{
		currencies.GET("", h.ListCurrencies)
		currencies.GET("/:id", h.GetCurrency)
		currencies.GET("/:id/dependents", h.CurrencyDependents)
		currencies.POST("", h.CreateCurrency)
		currencies.PUT("/:id", h.UpdateCurrency)
		currencies.DELETE("/:id", h.DeleteCurrency)
	}

	paymentTypes := rg.Group("/payment-types")
	{
		paymentTypes.GET("", h.ListPaymentTypes)
		paymentTypes.GET("/:id", h.GetPaymentType)
		paymentTypes.POST("", h.CreatePaymentType)
		paymentTypes.PUT("/:id", h.UpdatePaymentType)
		paymentTypes.DELETE("/:id", h.DeletePaymentType)
	}

	offers := rg.Group("/premium-offers")
	{
		offers.GET("", h.ListOffers)
		offers.GET("/active", h.ListActiveOffers)
		offers.GET("/popular", h.PopularOffers)
		offers.GET("/:id", h.GetOffer)
		offers.GET("/user-type/:userTypeId", h.ListOffersByUserType)
		offers.GET("/currency/:currencyId", h.ListOffersByCurrency)
		offers.POST("", h.CreateOffer)
		offers.PUT("/:id", h.UpdateOffer)
		offers.DELETE("/:id", h.DeleteOffer)
	}
}

// ---------------- CURRENCIES ----------------

func (h *Handler) ListCurrencies(c *gin.Context) {
	currencies, err := h.Service.ListCurrencies()
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("ListCurrencies: %v", err))
		c.JSON(apperrors.HTTPStatus(err), utils.ErrorResponse("Failed to list currencies", err.Error()))
		return
	}
	c.JSON(http.StatusOK, utils.SuccessResponse("Currencies retrieved", currencies))
}

func (h *Handler) GetCurrency(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	currency, err := h.Service.GetCurrency(id)
	if err != nil {
		c.JSON(apperrors.HTTPStatus(err), utils.ErrorResponse("Currency not found", err.Error()))
		return
	}
	c.JSON(http.StatusOK, utils.SuccessResponse("Currency retrieved", currency))
}

func (h *Handler) CurrencyDependents(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	dependents, err := h.Service.CurrencyDependents(id)
	if err != nil {
		c.JSON(apperrors.HTTPStatus(err), utils.ErrorResponse("Failed to load currency dependents", err.Error()))
		return
	}
	c.JSON(http.StatusOK, utils.SuccessResponse("Currency dependents retrieved", dependents))
}

func (h *Handler) CreateCurrency(c *gin.Context) {
	var currency models.Currency
	if err := c.ShouldBindJSON(&currency); err != nil {
		c.JSON(http.StatusBadRequest, utils.ErrorResponse("Invalid request payload", err.Error()))
		return
	}
	if err := h.Service.CreateCurrency(&currency); err != nil {
		c.JSON(apperrors.HTTPStatus(err), utils.ErrorResponse("Failed to create currency", err.Error()))
		return
	}
	c.JSON(http.StatusCreated, utils.SuccessResponse("Currency created", currency))
}

func (h *Handler) UpdateCurrency(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var currency models.Currency
	if err := c.ShouldBindJSON(&currency); err != nil {
		c.JSON(http.StatusBadRequest, utils.ErrorResponse("Invalid request payload", err.Error()))
		return
	}
	if err := h.Service.UpdateCurrency(id, &currency); err != nil {
		c.JSON(apperrors.HTTPStatus(err), utils.ErrorResponse("Failed to update currency", err.Error()))
		return
	}
	c.JSON(http.StatusOK, utils.SuccessResponse("Currency updated", currency))
}

func (h *Handler) DeleteCurrency(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	if err := h.Service.DeleteCurrency(id); err != nil {
		h.Logger.Error("API", fmt.Sprintf("DeleteCurrency %d: %v", id, err))
		c.JSON(apperrors.HTTPStatus(err), utils.ErrorResponse("Failed to delete currency", err.Error()))
		return
	}
	c.Status(http.StatusNoContent)
}

// ---------------- PAYMENT TYPES ----------------

func (h *Handler) ListPaymentTypes(c *gin.Context) {
	types, err := h.Service.ListPaymentTypes()
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("ListPaymentTypes: %v", err))
		c.JSON(apperrors.HTTPStatus(err), utils.ErrorResponse("Failed to list payment types", err.Error()))
		return
	}
	c.JSON(http.StatusOK, utils.SuccessResponse("Payment types retrieved", types))
}

func (h *Handler) GetPaymentType(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	paymentType, err := h.Service.GetPaymentType(id)
	if err != nil {
		c.JSON(apperrors.HTTPStatus(err), utils.ErrorResponse("Payment type not found", err.Error()))
		return
	}
	c.JSON(http.StatusOK, utils.SuccessResponse("Payment type retrieved", paymentType))
}

func (h *Handler) CreatePaymentType(c *gin.Context) {
	var paymentType models.PaymentType
	if err := c.ShouldBindJSON(&paymentType); err != nil {
		c.JSON(http.StatusBadRequest, utils.ErrorResponse("Invalid request payload", err.Error()))
		return
	}
	if err := h.Service.CreatePaymentType(&paymentType); err != nil {
		c.JSON(apperrors.HTTPStatus(err), utils.ErrorResponse("Failed to create payment type", err.Error()))
		return
	}
	c.JSON(http.StatusCreated, utils.SuccessResponse("Payment type created", paymentType))
}

func (h *Handler) UpdatePaymentType(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var paymentType models.PaymentType
	if err := c.ShouldBindJSON(&paymentType); err != nil {
		c.JSON(http.StatusBadRequest, utils.ErrorResponse("Invalid request payload", err.Error()))
		return
	}
	if err := h.Service.UpdatePaymentType(id, &paymentType); err != nil {
		c.JSON(apperrors.HTTPStatus(err), utils.ErrorResponse("Failed to update payment type", err.Error()))
		return
	}
	c.JSON(http.StatusOK, utils.SuccessResponse("Payment type updated", paymentType))
}

func (h *Handler) DeletePaymentType(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	if err := h.Service.DeletePaymentType(id); err != nil {
		c.JSON(apperrors.HTTPStatus(err), utils.ErrorResponse("Failed to delete payment type", err.Error()))
		return
	}
	c.Status(http.StatusNoContent)
}

// ---------------- PREMIUM OFFERS ----------------

func (h *Handler) ListOffers(c *gin.Context) {
	offers, err := h.Service.ListOffers()
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("ListOffers: %v", err))
		c.JSON(apperrors.HTTPStatus(err), utils.ErrorResponse("Failed to list premium offers", err.Error()))
		return
	}
	c.JSON(http.StatusOK, utils.SuccessResponse("Premium offers retrieved", offers))
}

func (h *Handler) ListActiveOffers(c *gin.Context) {
	offers, err := h.Service.ListActiveOffers()
	if err != nil {
		c.JSON(apperrors.HTTPStatus(err), utils.ErrorResponse("Failed to list active premium offers", err.Error()))
		return
	}
	c.JSON(http.StatusOK, utils.SuccessResponse("Active premium offers retrieved", offers))
}

func (h *Handler) PopularOffers(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			c.JSON(http.StatusBadRequest, utils.ErrorResponse("Invalid limit", raw))
			return
		}
		limit = parsed
	}
	offers, err := h.Service.PopularOffers(limit)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("PopularOffers: %v", err))
		c.JSON(apperrors.HTTPStatus(err), utils.ErrorResponse("Failed to rank premium offers", err.Error()))
		return
	}
	c.JSON(http.StatusOK, utils.SuccessResponse("Popular premium offers retrieved", offers))
}

func (h *Handler) GetOffer(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	offer, err := h.Service.GetOffer(id)
	if err != nil {
		c.JSON(apperrors.HTTPStatus(err), utils.ErrorResponse("Premium offer not found", err.Error()))
		return
	}
	c.JSON(http.StatusOK, utils.SuccessResponse("Premium offer retrieved", offer))
}

func (h *Handler) ListOffersByUserType(c *gin.Context) {
	userTypeID, ok := h.pathID(c, "userTypeId")
	if !ok {
		return
	}
	offers, err := h.Service.ListOffersByUserType(userTypeID)
	if err != nil {
		c.JSON(apperrors.HTTPStatus(err), utils.ErrorResponse("Failed to list premium offers", err.Error()))
		return
	}
	c.JSON(http.StatusOK, utils.SuccessResponse("Premium offers retrieved", offers))
}

func (h *Handler) ListOffersByCurrency(c *gin.Context) {
	currencyID, ok := h.pathID(c, "currencyId")
	if !ok {
		return
	}
	offers, err := h.Service.ListOffersByCurrency(currencyID)
	if err != nil {
		c.JSON(apperrors.HTTPStatus(err), utils.ErrorResponse("Failed to list premium offers", err.Error()))
		return
	}
	c.JSON(http.StatusOK, utils.SuccessResponse("Premium offers retrieved", offers))
}

func (h *Handler) CreateOffer(c *gin.Context) {
	var offer models.PremiumOffer
	if err := c.ShouldBindJSON(&offer); err != nil {
		c.JSON(http.StatusBadRequest, utils.ErrorResponse("Invalid request payload", err.Error()))
		return
	}
	if err := h.Service.CreateOffer(&offer); err != nil {
		c.JSON(apperrors.HTTPStatus(err), utils.ErrorResponse("Failed to create premium offer", err.Error()))
		return
	}
	c.JSON(http.StatusCreated, utils.SuccessResponse("Premium offer created", offer))
}

func (h *Handler) UpdateOffer(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var offer models.PremiumOffer
	if err := c.ShouldBindJSON(&offer); err != nil {
		c.JSON(http.StatusBadRequest, utils.ErrorResponse("Invalid request payload", err.Error()))
		return
	}
	if err := h.Service.UpdateOffer(id, &offer); err != nil {
		c.JSON(apperrors.HTTPStatus(err), utils.ErrorResponse("Failed to update premium offer", err.Error()))
		return
	}
	c.JSON(http.StatusOK, utils.SuccessResponse("Premium offer updated", offer))
}

func (h *Handler) DeleteOffer(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	if err := h.Service.DeleteOffer(id); err != nil {
		h.Logger.Error("API", fmt.Sprintf("DeleteOffer %d: %v", id, err))
		c.JSON(apperrors.HTTPStatus(err), utils.ErrorResponse("Failed to delete premium offer", err.Error()))
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, utils.ErrorResponse("Invalid id", c.Param(name)))
		return 0, false
	}
	return id, true
}
