package handler

import (
	ledgerapp "github.com/finbooks/backend/internal/application/ledger"
	"github.com/finbooks/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// TransactionHandler handles journal transaction API endpoints
type TransactionHandler struct {
	BaseHandler
	transactionService *ledgerapp.TransactionService
	queryService       *ledgerapp.JournalQueryService
}

// NewTransactionHandler creates a new TransactionHandler
func NewTransactionHandler(transactionService *ledgerapp.TransactionService, queryService *ledgerapp.JournalQueryService) *TransactionHandler {
	return &TransactionHandler{
		transactionService: transactionService,
		queryService:       queryService,
	}
}

// RegisterRoutes registers transaction routes on the API group
func (h *TransactionHandler) RegisterRoutes(rg *gin.RouterGroup) {
	transactions := rg.Group("/ledger/transactions")
	{
		transactions.POST("", h.Create)
		transactions.GET("", h.List)
		transactions.GET("/:id", h.GetByID)
		transactions.POST("/:id/post", h.Post)
		transactions.POST("/:id/void", h.Void)
		transactions.POST("/:id/reverse", h.Reverse)
		transactions.POST("/:id/notes", h.AppendNote)
		transactions.POST("/bulk-approve", h.BulkApprove)
	}
}

// VoidTransactionRequest carries the mandatory void reason
type VoidTransactionRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// ReverseTransactionRequest carries the mandatory reversal reason
type ReverseTransactionRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// AppendNoteRequest adds one note to a transaction
type AppendNoteRequest struct {
	Text string `json:"text" binding:"required,min=1,max=1000"`
}

// BulkApproveRequest posts a batch of draft transactions
type BulkApproveRequest struct {
	TransactionIDs []uuid.UUID `json:"transaction_ids" binding:"required,min=1"`
}

// Create creates a DRAFT journal transaction
func (h *TransactionHandler) Create(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req ledgerapp.CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	tx, err := h.transactionService.CreateTransaction(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, tx)
}

// GetByID retrieves a transaction with its entries and notes
func (h *TransactionHandler) GetByID(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	transactionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid transaction ID format")
		return
	}

	tx, err := h.transactionService.GetTransaction(c.Request.Context(), tenantID, transactionID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, tx)
}

// List retrieves a filtered journal page with compliance metadata
func (h *TransactionHandler) List(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var filter ledgerapp.JournalListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}
	if filter.Page == 0 {
		filter.Page = 1
	}
	if filter.PageSize == 0 {
		filter.PageSize = 20
	}

	page, err := h.queryService.ListJournal(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// Post transitions a balanced draft to POSTED
func (h *TransactionHandler) Post(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "User ID is required")
		return
	}

	transactionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid transaction ID format")
		return
	}

	tx, err := h.transactionService.PostTransaction(c.Request.Context(), tenantID, transactionID, userID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, tx)
}

// Void marks a posted transaction VOIDED and records the reason
func (h *TransactionHandler) Void(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "User ID is required")
		return
	}

	transactionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid transaction ID format")
		return
	}

	var req VoidTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	tx, err := h.transactionService.VoidTransaction(c.Request.Context(), tenantID, transactionID, userID, req.Reason)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, tx)
}

// Reverse creates and posts a mirror-image reversal of a posted
// transaction
func (h *TransactionHandler) Reverse(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "User ID is required")
		return
	}

	transactionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid transaction ID format")
		return
	}

	var req ReverseTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	reversal, err := h.transactionService.CreateReverseEntry(c.Request.Context(), tenantID, transactionID, userID, req.Reason)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, reversal)
}

// AppendNote adds an append-only note; allowed even on posted
// transactions
func (h *TransactionHandler) AppendNote(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "User ID is required")
		return
	}

	transactionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid transaction ID format")
		return
	}

	var req AppendNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	tx, err := h.transactionService.AppendNote(c.Request.Context(), tenantID, transactionID, userID, req.Text)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, tx)
}

// BulkApprove posts a batch of drafts, reporting per-item outcomes
func (h *TransactionHandler) BulkApprove(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "User ID is required")
		return
	}

	var req BulkApproveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	result, err := h.transactionService.BulkApprove(c.Request.Context(), tenantID, req.TransactionIDs, userID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, result)
}
