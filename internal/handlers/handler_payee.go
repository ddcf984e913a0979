package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/galexy/pennyledger/internal/apperrors"
	portssvc "github.com/galexy/pennyledger/internal/core/ports/services"
	"github.com/galexy/pennyledger/internal/dto"
	"github.com/galexy/pennyledger/internal/middleware"
	"github.com/gin-gonic/gin"
)

// payeeHandler handles HTTP requests related to payees.
type payeeHandler struct {
	payeeService portssvc.PayeeSvcFacade
}

func newPayeeHandler(payeeService portssvc.PayeeSvcFacade) *payeeHandler {
	return &payeeHandler{
		payeeService: payeeService,
	}
}

// createPayee godoc
// @Summary Create a payee
// @Tags payees
// @Accept  json
// @Produce  json
// @Param   payee body dto.CreatePayeeRequest true "Payee"
// @Success 201 {object} dto.PayeeResponse
// @Router /payees [post]
func (h *payeeHandler) createPayee(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.CreatePayeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	payee, err := h.payeeService.CreatePayee(c.Request.Context(), req, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			c.JSON(http.StatusConflict, gin.H{"error": "Payee already exists"})
			return
		}
		logger.Error("Failed to create payee", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	c.JSON(http.StatusCreated, dto.ToPayeeResponse(payee))
}

// getPayee godoc
// @Summary Get a payee
// @Tags payees
// @Produce  json
// @Param   payeeID path string true "Payee ID"
// @Success 200 {object} dto.PayeeResponse
// @Failure 404 {object} map[string]string "Payee not found"
// @Router /payees/{payeeID} [get]
func (h *payeeHandler) getPayee(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	payeeID := c.Param("payeeID")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	payee, err := h.payeeService.GetPayeeByID(c.Request.Context(), payeeID, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Payee not found"})
			return
		}
		logger.Error("Failed to get payee", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	c.JSON(http.StatusOK, dto.ToPayeeResponse(payee))
}

// listPayees godoc
// @Summary List payees
// @Tags payees
// @Produce  json
// @Success 200 {array} dto.PayeeResponse
// @Router /payees [get]
func (h *payeeHandler) listPayees(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	payees, err := h.payeeService.ListPayees(c.Request.Context(), userID)
	if err != nil {
		logger.Error("Failed to list payees", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	c.JSON(http.StatusOK, dto.ToPayeeResponses(payees))
}

// registerPayeeRoutes registers payee specific routes
func registerPayeeRoutes(group *gin.RouterGroup, payeeService portssvc.PayeeSvcFacade) {
	h := newPayeeHandler(payeeService)

	payees := group.Group("/payees")
	{
		payees.POST("", h.createPayee)
		payees.GET("", h.listPayees)
		payees.GET("/:payeeID", h.getPayee)
	}
}
