package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	portssvc "github.com/ledgerkeeper/ledger_keeper_app/internal/core/ports/services"
	"github.com/ledgerkeeper/ledger_keeper_app/internal/dto"
)

type EntryHandler struct {
	ledgerService portssvc.LedgerSvcFacade
}

func NewEntryHandler(ledgerService portssvc.LedgerSvcFacade) *EntryHandler {
	return &EntryHandler{ledgerService: ledgerService}
}

// CreateEntry handles POST /entries.
func (h *EntryHandler) CreateEntry(c *gin.Context) {
	var req dto.CreateEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	entry, err := h.ledgerService.CreateEntry(c.Request.Context(), req, requestUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.ToEntryResponse(*entry))
}

// GetEntry handles GET /entries/:entryID.
func (h *EntryHandler) GetEntry(c *gin.Context) {
	entry, err := h.ledgerService.GetEntry(c.Request.Context(), c.Param("entryID"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToEntryResponse(*entry))
}

// UpdateEntry handles PUT /entries/:entryID.
func (h *EntryHandler) UpdateEntry(c *gin.Context) {
	var req dto.UpdateEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	entry, err := h.ledgerService.UpdateEntry(c.Request.Context(), c.Param("entryID"), req, requestUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToEntryResponse(*entry))
}

// DeleteEntry handles DELETE /entries/:entryID.
func (h *EntryHandler) DeleteEntry(c *gin.Context) {
	if err := h.ledgerService.DeleteEntry(c.Request.Context(), c.Param("entryID")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListEntries handles GET /accounts/:accountID/entries.
func (h *EntryHandler) ListEntries(c *gin.Context) {
	var params dto.ListEntriesRequest
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp, err := h.ledgerService.ListEntries(c.Request.Context(), c.Param("accountID"), params)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GetBalance handles GET /accounts/:accountID/balance with an optional
// asOf=YYYY-MM-DD query parameter.
func (h *EntryHandler) GetBalance(c *gin.Context) {
	accountID := c.Param("accountID")

	if asOf := c.Query("asOf"); asOf != "" {
		date, err := time.ParseInLocation(dto.DateLayout, asOf, time.UTC)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "asOf must be YYYY-MM-DD"})
			return
		}
		balance, err := h.ledgerService.GetBalanceAsOf(c.Request.Context(), accountID, date)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, dto.BalanceResponse{AccountID: accountID, Balance: balance, AsOf: &asOf})
		return
	}

	balance, err := h.ledgerService.GetBalance(c.Request.Context(), accountID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.BalanceResponse{AccountID: accountID, Balance: balance})
}

// VerifyChain handles GET /accounts/:accountID/chain/verify.
func (h *EntryHandler) VerifyChain(c *gin.Context) {
	resp, err := h.ledgerService.VerifyAccountChain(c.Request.Context(), c.Param("accountID"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
