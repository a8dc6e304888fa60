package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/firmbooks/trade_books_app/internal/apperrors"
	portssvc "github.com/firmbooks/trade_books_app/internal/core/ports/services"
	"github.com/firmbooks/trade_books_app/internal/core/services"
	"github.com/firmbooks/trade_books_app/internal/dto"
	"github.com/firmbooks/trade_books_app/internal/middleware"
	"github.com/gin-gonic/gin"
)

// settlementHandler handles the read-only settlement helpers.
type settlementHandler struct {
	settlementService portssvc.SettlementSvcFacade
}

func newSettlementHandler(ss portssvc.SettlementSvcFacade) *settlementHandler {
	return &settlementHandler{settlementService: ss}
}

// registerSettlementRoutes registers the settlement helper routes.
func registerSettlementRoutes(rg *gin.RouterGroup, settlementService portssvc.SettlementSvcFacade) {
	h := newSettlementHandler(settlementService)

	settlements := rg.Group("/settlements")
	{
		settlements.POST("/discount-preview", h.previewDiscount)
		settlements.POST("/combinations", h.searchCombinations)
	}
}

// previewDiscount godoc
// @Summary Preview a cash discount
// @Description Computes the cash discount a hypothetical payment would earn against the party's current outstanding entries. Nothing is written.
// @Tags settlements
// @Accept  json
// @Produce  json
// @Param   preview body dto.DiscountPreviewRequest true "Preview inputs"
// @Success 200 {object} dto.DiscountPreviewResponse
// @Failure 400 {object} map[string]string "Invalid input format or validation error"
// @Failure 404 {object} map[string]string "Party not found"
// @Failure 500 {object} map[string]string "Failed to compute discount preview"
// @Router /settlements/discount-preview [post]
func (h *settlementHandler) previewDiscount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.DiscountPreviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for PreviewDiscount", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	logger = logger.With(slog.String("party_id", req.PartyID))
	logger.Info("Received request to preview discount", slog.String("mode", req.Mode))

	resp, err := h.settlementService.PreviewDiscount(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("Party not found for discount preview", slog.String("error", err.Error()))
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		} else if errors.Is(err, apperrors.ErrValidation) || errors.Is(err, services.ErrEntryNotSelectable) {
			logger.Warn("Validation error previewing discount", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		} else {
			logger.Error("Failed to preview discount in service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute discount preview"})
		}
		return
	}

	c.JSON(http.StatusOK, resp)
}

// searchCombinations godoc
// @Summary Search receipt combinations
// @Description Proposes receipt subsets whose surcharged totals come closest to the target official amount, closest first
// @Tags settlements
// @Accept  json
// @Produce  json
// @Param   search body dto.CombinationSearchRequest true "Search inputs"
// @Success 200 {object} dto.CombinationSearchResponse
// @Failure 400 {object} map[string]string "Invalid input format or validation error"
// @Failure 404 {object} map[string]string "Party not found"
// @Failure 500 {object} map[string]string "Failed to search combinations"
// @Router /settlements/combinations [post]
func (h *settlementHandler) searchCombinations(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CombinationSearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for SearchCombinations", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	logger = logger.With(slog.String("party_id", req.PartyID))
	logger.Info("Received request to search combinations", slog.String("target", req.TargetAmount.String()))

	resp, err := h.settlementService.SearchCombinations(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("Party not found for combination search", slog.String("error", err.Error()))
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		} else if errors.Is(err, apperrors.ErrValidation) || errors.Is(err, services.ErrEntryNotSelectable) {
			logger.Warn("Validation error searching combinations", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		} else {
			logger.Error("Failed to search combinations in service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to search combinations"})
		}
		return
	}

	c.JSON(http.StatusOK, resp)
}
