package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	portssvc "github.com/ledgerkeeper/ledger_keeper_app/internal/core/ports/services"
)

// RegisterHandlers wires all routes onto the router group.
func RegisterHandlers(rg *gin.RouterGroup, services portssvc.ServicesProvider) {
	entryHandler := NewEntryHandler(services.Ledger)
	accountHandler := NewAccountHandler(services.Account)
	categoryHandler := NewCategoryHandler(services.Category)

	entries := rg.Group("/entries")
	{
		entries.POST("", entryHandler.CreateEntry)
		entries.GET("/:entryID", entryHandler.GetEntry)
		entries.PUT("/:entryID", entryHandler.UpdateEntry)
		entries.DELETE("/:entryID", entryHandler.DeleteEntry)
	}

	accounts := rg.Group("/accounts")
	{
		accounts.POST("", accountHandler.CreateAccount)
		accounts.GET("", accountHandler.ListAccounts)
		accounts.GET("/:accountID", accountHandler.GetAccount)
		accounts.PUT("/:accountID", accountHandler.UpdateAccount)
		accounts.DELETE("/:accountID", accountHandler.DeactivateAccount)
		accounts.GET("/:accountID/entries", entryHandler.ListEntries)
		accounts.GET("/:accountID/balance", entryHandler.GetBalance)
		accounts.GET("/:accountID/chain/verify", entryHandler.VerifyChain)
	}

	categories := rg.Group("/categories")
	{
		categories.POST("", categoryHandler.CreateCategory)
		categories.GET("", categoryHandler.ListCategories)
		categories.GET("/:categoryID", categoryHandler.GetCategory)
		categories.DELETE("/:categoryID", categoryHandler.DeleteCategory)
	}
}

// GetHealth reports service liveness.
func GetHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
