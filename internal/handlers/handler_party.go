package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/firmbooks/trade_books_app/internal/apperrors"
	portssvc "github.com/firmbooks/trade_books_app/internal/core/ports/services"
	"github.com/firmbooks/trade_books_app/internal/dto"
	"github.com/firmbooks/trade_books_app/internal/middleware"
	"github.com/gin-gonic/gin"
)

// partyHandler handles HTTP requests related to parties.
type partyHandler struct {
	partyService portssvc.PartySvcFacade
}

func newPartyHandler(ps portssvc.PartySvcFacade) *partyHandler {
	return &partyHandler{partyService: ps}
}

// registerPartyRoutes registers routes related to parties.
func registerPartyRoutes(rg *gin.RouterGroup, partyService portssvc.PartySvcFacade) {
	h := newPartyHandler(partyService)

	parties := rg.Group("/parties")
	{
		parties.POST("", h.createParty)
		parties.GET("/:id", h.getParty)
		parties.GET("", h.listParties)
		parties.PUT("/:id", h.updateParty)
		parties.DELETE("/:id", h.deleteParty)
	}
}

// createParty godoc
// @Summary Create a new party
// @Description Creates a new party whose ledger, entries and payments can then be recorded
// @Tags parties
// @Accept  json
// @Produce  json
// @Param   party body dto.CreatePartyRequest true "Party details"
// @Success 201 {object} dto.PartyResponse
// @Failure 400 {object} map[string]string "Invalid input format or validation error"
// @Failure 409 {object} map[string]string "Party already exists"
// @Failure 500 {object} map[string]string "Failed to create party"
// @Router /parties [post]
func (h *partyHandler) createParty(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreatePartyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateParty", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	logger.Info("Received request to create party", slog.String("party_name", req.Name))

	newParty, err := h.partyService.CreateParty(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, apperrors.ErrValidation) {
			logger.Warn("Validation error creating party", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		} else if errors.Is(err, apperrors.ErrDuplicate) {
			logger.Warn("Duplicate party", slog.String("error", err.Error()))
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		} else {
			logger.Error("Failed to create party in service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create party"})
		}
		return
	}

	logger.Info("Party created successfully", slog.String("party_id", newParty.PartyID))
	c.JSON(http.StatusCreated, dto.ToPartyResponse(newParty))
}

// getParty godoc
// @Summary Get a party by ID
// @Description Retrieves details for a specific party by its ID
// @Tags parties
// @Produce  json
// @Param   id path string true "Party ID"
// @Success 200 {object} dto.PartyResponse
// @Failure 404 {object} map[string]string "Party not found"
// @Failure 500 {object} map[string]string "Failed to retrieve party"
// @Router /parties/{id} [get]
func (h *partyHandler) getParty(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	partyID := c.Param("id")

	logger = logger.With(slog.String("party_id", partyID))
	logger.Info("Received request to get party")

	party, err := h.partyService.GetPartyByID(c.Request.Context(), partyID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("Party not found")
			c.JSON(http.StatusNotFound, gin.H{"error": "Party not found"})
		} else {
			logger.Error("Failed to get party from service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve party"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToPartyResponse(party))
}

// listParties godoc
// @Summary List parties
// @Description Retrieves a paginated list of parties ordered by name
// @Tags parties
// @Produce  json
// @Param   limit query int false "Limit number of results" default(20)
// @Param   offset query int false "Offset for pagination" default(0)
// @Success 200 {object} dto.ListPartiesResponse
// @Failure 500 {object} map[string]string "Failed to list parties"
// @Router /parties [get]
func (h *partyHandler) listParties(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var params dto.ListPartiesParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Failed to bind query params for ListParties", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	parties, err := h.partyService.ListParties(c.Request.Context(), params.Limit, params.Offset)
	if err != nil {
		logger.Error("Failed to list parties from service", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list parties"})
		return
	}

	partyResponses := make([]dto.PartyResponse, len(parties))
	for i := range parties {
		partyResponses[i] = dto.ToPartyResponse(&parties[i])
	}

	logger.Info("Parties listed successfully", slog.Int("count", len(partyResponses)))
	c.JSON(http.StatusOK, dto.ListPartiesResponse{Parties: partyResponses})
}

// updateParty godoc
// @Summary Update a party
// @Description Updates a party's details (name, address, contact)
// @Tags parties
// @Accept  json
// @Produce  json
// @Param   id path string true "Party ID to update"
// @Param   party body dto.UpdatePartyRequest true "Party details to update"
// @Success 200 {object} dto.PartyResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 404 {object} map[string]string "Party not found"
// @Failure 500 {object} map[string]string "Failed to update party"
// @Router /parties/{id} [put]
func (h *partyHandler) updateParty(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	partyID := c.Param("id")
	var req dto.UpdatePartyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for UpdateParty", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	logger = logger.With(slog.String("party_id", partyID))
	logger.Info("Received request to update party")

	updatedParty, err := h.partyService.UpdateParty(c.Request.Context(), partyID, req)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("Party not found for update")
			c.JSON(http.StatusNotFound, gin.H{"error": "Party not found"})
		} else if errors.Is(err, apperrors.ErrValidation) {
			logger.Warn("Validation error updating party", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		} else {
			logger.Error("Failed to update party in service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update party"})
		}
		return
	}

	logger.Info("Party updated successfully")
	c.JSON(http.StatusOK, dto.ToPartyResponse(updatedParty))
}

// deleteParty godoc
// @Summary Deactivate a party
// @Description Marks a party as inactive; its history stays readable but no new rows can be recorded
// @Tags parties
// @Produce  json
// @Param   id path string true "Party ID to deactivate"
// @Success 204 "No Content"
// @Failure 404 {object} map[string]string "Party not found"
// @Failure 409 {object} map[string]string "Party already inactive"
// @Failure 500 {object} map[string]string "Failed to deactivate party"
// @Router /parties/{id} [delete]
func (h *partyHandler) deleteParty(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	partyID := c.Param("id")

	logger = logger.With(slog.String("party_id", partyID))
	logger.Info("Received request to deactivate party")

	err := h.partyService.DeactivateParty(c.Request.Context(), partyID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("Party not found for deactivation")
			c.JSON(http.StatusNotFound, gin.H{"error": "Party not found"})
		} else if errors.Is(err, apperrors.ErrValidation) {
			logger.Warn("Party already inactive", slog.String("error", err.Error()))
			c.JSON(http.StatusConflict, gin.H{"error": "Party already inactive"})
		} else {
			logger.Error("Failed to deactivate party in service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to deactivate party"})
		}
		return
	}

	logger.Info("Party deactivated successfully")
	c.Status(http.StatusNoContent)
}
