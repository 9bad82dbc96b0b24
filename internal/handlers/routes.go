package handlers

import (
	"github.com/labstack/echo/v4"
)

// API groups every handler mounted under the versioned prefix
type API struct {
	Auth         *AuthHandlers
	Dashboard    *DashboardHandlers
	Locations    *LocationHandlers
	Parties      *PartyHandlers
	Crops        *CropHandlers
	Transactions *TransactionHandlers
	Inventory    *InventoryHandlers
	CashRegister *CashRegisterHandlers
	Ledger       *LedgerHandlers
}

// RegisterPublic mounts the routes reachable without a token
func (a *API) RegisterPublic(g *echo.Group) {
	auth := g.Group("/auth")
	auth.POST("/login", a.Auth.Login)
	auth.POST("/refresh", a.Auth.RefreshToken)
}

// RegisterProtected mounts the routes that need an authenticated user.
// The caller is responsible for installing the JWT middleware on g.
func (a *API) RegisterProtected(g *echo.Group) {
	g.POST("/auth/logout", a.Auth.Logout)
	g.GET("/auth/me", a.Auth.Me)

	g.GET("/dashboard/metrics", a.Dashboard.GetMetrics)

	g.GET("/states", a.Locations.ListStates)
	g.POST("/states", a.Locations.CreateState)
	g.PUT("/states/:id", a.Locations.UpdateState)
	g.DELETE("/states/:id", a.Locations.DeleteState)
	g.GET("/cities", a.Locations.ListCities)
	g.POST("/cities", a.Locations.CreateCity)
	g.PUT("/cities/:id", a.Locations.UpdateCity)
	g.DELETE("/cities/:id", a.Locations.DeleteCity)

	g.GET("/parties", a.Parties.ListParties)
	g.POST("/parties", a.Parties.CreateParty)
	g.GET("/parties/with-balance", a.Parties.ListPartiesWithBalance)
	g.GET("/parties/:id", a.Parties.GetParty)
	g.PUT("/parties/:id", a.Parties.UpdateParty)
	g.DELETE("/parties/:id", a.Parties.DeleteParty)

	g.GET("/crops", a.Crops.ListCrops)
	g.POST("/crops", a.Crops.CreateCrop)
	g.GET("/crops/:id", a.Crops.GetCrop)
	g.PUT("/crops/:id", a.Crops.UpdateCrop)
	g.DELETE("/crops/:id", a.Crops.DeleteCrop)

	g.GET("/transactions", a.Transactions.ListTransactions)
	g.POST("/transactions", a.Transactions.CreateTransaction)
	g.GET("/transactions/deleted/all", a.Transactions.ListDeletedTransactions)
	g.GET("/transactions/:id", a.Transactions.GetTransaction)
	g.PUT("/transactions/:id", a.Transactions.UpdateTransaction)
	g.DELETE("/transactions/:id", a.Transactions.DeleteTransaction)
	g.POST("/transactions/:id/restore", a.Transactions.RestoreTransaction)
	g.DELETE("/transactions/:id/permanent", a.Transactions.PermanentlyDeleteTransaction)
	g.POST("/transactions/:id/attachment", a.Transactions.UploadAttachment)
	g.GET("/transactions/:id/attachment", a.Transactions.GetAttachment)

	g.GET("/inventory", a.Inventory.ListInventory)
	g.GET("/inventory/low-stock", a.Inventory.ListLowStock)
	g.PUT("/inventory/:cropId/settings", a.Inventory.UpdateSettings)

	g.GET("/cash-register", a.CashRegister.ListCashEntries)
	g.POST("/cash-register", a.CashRegister.CreateCashEntry)
	g.GET("/cash-register/balance", a.CashRegister.GetBalance)
	g.GET("/cash-register/:id", a.CashRegister.GetCashEntry)
	g.PUT("/cash-register/:id", a.CashRegister.UpdateCashEntry)

	g.GET("/ledger/all/entries", a.Ledger.GetAllEntries)
	g.GET("/ledger/:partyId", a.Ledger.GetPartyLedger)
	g.POST("/ledger/:partyId/recalculate", a.Ledger.Recalculate)
}
