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

// ledgerHandler handles HTTP requests related to ledger postings.
type ledgerHandler struct {
	ledgerService portssvc.LedgerSvcFacade
}

func newLedgerHandler(ls portssvc.LedgerSvcFacade) *ledgerHandler {
	return &ledgerHandler{ledgerService: ls}
}

// registerLedgerRoutes registers routes related to ledger postings.
func registerLedgerRoutes(rg *gin.RouterGroup, ledgerService portssvc.LedgerSvcFacade) {
	h := newLedgerHandler(ledgerService)

	postings := rg.Group("/postings")
	{
		postings.POST("", h.createPosting)
		postings.GET("/:id", h.getPosting)
		postings.PUT("/:id", h.updatePosting)
		postings.DELETE("/:id", h.deletePosting)
	}

	parties := rg.Group("/parties")
	{
		parties.GET("/:id/postings", h.listPartyPostings)
		parties.GET("/:id/balance", h.getPartyBalance)
	}
}

// isPostingValidationErr reports whether the service rejected the payload.
func isPostingValidationErr(err error) bool {
	return errors.Is(err, apperrors.ErrValidation) ||
		errors.Is(err, services.ErrPartyInactive) ||
		errors.Is(err, services.ErrNegativeAmount) ||
		errors.Is(err, services.ErrLinkedToSelf) ||
		errors.Is(err, services.ErrNoAmount) ||
		errors.Is(err, services.ErrStrategyOnUnlink)
}

// createPosting godoc
// @Summary Create a ledger posting
// @Description Creates a posting on a party's ledger; a linked posting also writes the counterpart row and both ledgers are rebalanced
// @Tags ledger
// @Accept  json
// @Produce  json
// @Param   posting body dto.CreatePostingRequest true "Posting details"
// @Success 201 {object} dto.PostingMutationResponse
// @Failure 400 {object} map[string]string "Invalid input format or validation error"
// @Failure 404 {object} map[string]string "Party not found"
// @Failure 500 {object} map[string]string "Failed to create posting"
// @Router /postings [post]
func (h *ledgerHandler) createPosting(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreatePostingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreatePosting", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	logger = logger.With(slog.String("party_id", req.PartyID))
	logger.Info("Received request to create posting")

	posting, err := h.ledgerService.CreatePosting(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("Party not found for posting", slog.String("error", err.Error()))
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		} else if isPostingValidationErr(err) {
			logger.Warn("Validation error creating posting", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		} else {
			logger.Error("Failed to create posting in service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create posting"})
		}
		return
	}

	logger.Info("Posting created successfully", slog.String("posting_id", posting.PostingID))
	c.JSON(http.StatusCreated, dto.PostingMutationResponse{Posting: dto.ToPostingResponse(posting)})
}

// getPosting godoc
// @Summary Get a posting by ID
// @Description Retrieves one ledger row by its ID
// @Tags ledger
// @Produce  json
// @Param   id path string true "Posting ID"
// @Success 200 {object} dto.PostingResponse
// @Failure 404 {object} map[string]string "Posting not found"
// @Failure 500 {object} map[string]string "Failed to retrieve posting"
// @Router /postings/{id} [get]
func (h *ledgerHandler) getPosting(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	postingID := c.Param("id")

	posting, err := h.ledgerService.GetPostingByID(c.Request.Context(), postingID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("Posting not found", slog.String("posting_id", postingID))
			c.JSON(http.StatusNotFound, gin.H{"error": "Posting not found"})
		} else {
			logger.Error("Failed to get posting from service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve posting"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToPostingResponse(posting))
}

// updatePosting godoc
// @Summary Update a posting
// @Description Updates a posting; a linked posting's counterpart changes with it and both ledgers are rebalanced. linkDiverged reports a counterpart that no longer exists.
// @Tags ledger
// @Accept  json
// @Produce  json
// @Param   id path string true "Posting ID to update"
// @Param   posting body dto.UpdatePostingRequest true "Posting fields to update"
// @Success 200 {object} dto.PostingMutationResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 404 {object} map[string]string "Posting not found"
// @Failure 500 {object} map[string]string "Failed to update posting"
// @Router /postings/{id} [put]
func (h *ledgerHandler) updatePosting(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	postingID := c.Param("id")
	var req dto.UpdatePostingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for UpdatePosting", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	logger = logger.With(slog.String("posting_id", postingID))
	logger.Info("Received request to update posting")

	posting, diverged, err := h.ledgerService.UpdatePosting(c.Request.Context(), postingID, req)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("Posting not found for update")
			c.JSON(http.StatusNotFound, gin.H{"error": "Posting not found"})
		} else if isPostingValidationErr(err) {
			logger.Warn("Validation error updating posting", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		} else {
			logger.Error("Failed to update posting in service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update posting"})
		}
		return
	}

	logger.Info("Posting updated successfully", slog.Bool("link_diverged", diverged))
	c.JSON(http.StatusOK, dto.PostingMutationResponse{Posting: dto.ToPostingResponse(posting), LinkDiverged: diverged})
}

// deletePosting godoc
// @Summary Delete a posting
// @Description Removes a posting and its linked counterpart, then rebalances the affected ledgers
// @Tags ledger
// @Produce  json
// @Param   id path string true "Posting ID to delete"
// @Success 200 {object} map[string]bool "linkDiverged flag"
// @Failure 404 {object} map[string]string "Posting not found"
// @Failure 500 {object} map[string]string "Failed to delete posting"
// @Router /postings/{id} [delete]
func (h *ledgerHandler) deletePosting(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	postingID := c.Param("id")

	logger = logger.With(slog.String("posting_id", postingID))
	logger.Info("Received request to delete posting")

	diverged, err := h.ledgerService.DeletePosting(c.Request.Context(), postingID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("Posting not found for deletion")
			c.JSON(http.StatusNotFound, gin.H{"error": "Posting not found"})
		} else {
			logger.Error("Failed to delete posting in service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete posting"})
		}
		return
	}

	logger.Info("Posting deleted successfully", slog.Bool("link_diverged", diverged))
	c.JSON(http.StatusOK, gin.H{"linkDiverged": diverged})
}

// listPartyPostings godoc
// @Summary List a party's ledger
// @Description Retrieves a page of the party's ledger rows, newest first, with running balances and the closing balance
// @Tags ledger
// @Produce  json
// @Param   id path string true "Party ID"
// @Param   limit query int false "Limit number of results" default(20)
// @Param   nextToken query string false "Pagination token from a previous page"
// @Success 200 {object} dto.ListPostingsResponse
// @Failure 400 {object} map[string]string "Invalid query parameters"
// @Failure 404 {object} map[string]string "Party not found"
// @Failure 500 {object} map[string]string "Failed to list postings"
// @Router /parties/{id}/postings [get]
func (h *ledgerHandler) listPartyPostings(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	partyID := c.Param("id")

	var params dto.ListPostingsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Failed to bind query params for ListPartyPostings", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	resp, err := h.ledgerService.ListPostingsByParty(c.Request.Context(), partyID, params)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("Party not found for ledger listing", slog.String("party_id", partyID))
			c.JSON(http.StatusNotFound, gin.H{"error": "Party not found"})
		} else {
			logger.Error("Failed to list postings from service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list postings"})
		}
		return
	}

	c.JSON(http.StatusOK, resp)
}

// getPartyBalance godoc
// @Summary Get a party's balance
// @Description Returns the party's current running balance
// @Tags ledger
// @Produce  json
// @Param   id path string true "Party ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]string "Party not found"
// @Failure 500 {object} map[string]string "Failed to calculate balance"
// @Router /parties/{id}/balance [get]
func (h *ledgerHandler) getPartyBalance(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	partyID := c.Param("id")

	balance, err := h.ledgerService.CalculatePartyBalance(c.Request.Context(), partyID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("Party not found for balance", slog.String("party_id", partyID))
			c.JSON(http.StatusNotFound, gin.H{"error": "Party not found"})
		} else {
			logger.Error("Failed to calculate party balance", slog.String("error", err.Error()), slog.String("party_id", partyID))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to calculate balance"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"partyID": partyID, "balance": balance})
}
