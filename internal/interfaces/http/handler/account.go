package handler

import (
	"time"

	ledgerapp "github.com/finbooks/backend/internal/application/ledger"
	"github.com/finbooks/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// AccountHandler handles chart-of-accounts API endpoints
type AccountHandler struct {
	BaseHandler
	accountService *ledgerapp.AccountService
	queryService   *ledgerapp.JournalQueryService
}

// NewAccountHandler creates a new AccountHandler
func NewAccountHandler(accountService *ledgerapp.AccountService, queryService *ledgerapp.JournalQueryService) *AccountHandler {
	return &AccountHandler{
		accountService: accountService,
		queryService:   queryService,
	}
}

// RegisterRoutes registers account routes on the API group
func (h *AccountHandler) RegisterRoutes(rg *gin.RouterGroup) {
	accounts := rg.Group("/ledger/accounts")
	{
		accounts.POST("", h.Create)
		accounts.GET("", h.List)
		accounts.GET("/:id", h.GetByID)
		accounts.PUT("/:id/name", h.Rename)
		accounts.POST("/:id/activate", h.Activate)
		accounts.POST("/:id/deactivate", h.Deactivate)
		accounts.GET("/:id/balance", h.Balance)
		accounts.GET("/:id/ledger", h.RunningBalance)
	}
}

// RenameAccountRequest updates the display name of an account
type RenameAccountRequest struct {
	Name string `json:"name" binding:"required,min=1,max=200"`
}

// Create registers a new account in the chart of accounts
func (h *AccountHandler) Create(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req ledgerapp.CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	account, err := h.accountService.CreateAccount(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, account)
}

// GetByID retrieves one account
func (h *AccountHandler) GetByID(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	accountID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid account ID format")
		return
	}

	account, err := h.accountService.GetAccount(c.Request.Context(), tenantID, accountID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, account)
}

// List retrieves accounts with optional type/active/search filters
func (h *AccountHandler) List(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var filter ledgerapp.AccountListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	accounts, err := h.accountService.ListAccounts(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, accounts)
}

// Rename updates an account's display name
func (h *AccountHandler) Rename(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	accountID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid account ID format")
		return
	}

	var req RenameAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	account, err := h.accountService.RenameAccount(c.Request.Context(), tenantID, accountID, req.Name)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, account)
}

// Activate reactivates a deactivated account
func (h *AccountHandler) Activate(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	accountID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid account ID format")
		return
	}

	account, err := h.accountService.ActivateAccount(c.Request.Context(), tenantID, accountID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, account)
}

// Deactivate deactivates an account so it cannot take new entries
func (h *AccountHandler) Deactivate(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	accountID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid account ID format")
		return
	}

	account, err := h.accountService.DeactivateAccount(c.Request.Context(), tenantID, accountID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, account)
}

// Balance returns the account's current posted balance
func (h *AccountHandler) Balance(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	accountID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid account ID format")
		return
	}

	balance, err := h.queryService.AccountBalance(c.Request.Context(), tenantID, accountID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, gin.H{"account_id": accountID, "balance": balance})
}

// RunningBalance returns the account's ledger lines with a running
// balance, optionally up to an as_of date
func (h *AccountHandler) RunningBalance(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	accountID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid account ID format")
		return
	}

	var asOf *time.Time
	if raw := c.Query("as_of"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			parsed, err = time.Parse("2006-01-02", raw)
		}
		if err != nil {
			h.BadRequest(c, "Invalid as_of date format")
			return
		}
		asOf = &parsed
	}

	statement, err := h.queryService.RunningBalance(c.Request.Context(), tenantID, accountID, asOf)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, statement)
}
