package handler

import (
	"time"

	costingapp "github.com/finbooks/backend/internal/application/costing"
	"github.com/finbooks/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CostingHandler handles standard-cost and revaluation API endpoints
type CostingHandler struct {
	BaseHandler
	standardCostService *costingapp.StandardCostService
	revaluationService  *costingapp.RevaluationService
}

// NewCostingHandler creates a new CostingHandler
func NewCostingHandler(standardCostService *costingapp.StandardCostService, revaluationService *costingapp.RevaluationService) *CostingHandler {
	return &CostingHandler{
		standardCostService: standardCostService,
		revaluationService:  revaluationService,
	}
}

// RegisterRoutes registers costing routes on the API group
func (h *CostingHandler) RegisterRoutes(rg *gin.RouterGroup) {
	costs := rg.Group("/costing/standard-costs")
	{
		costs.POST("", h.CreateStandardCost)
		costs.POST("/:id/close", h.CloseStandardCost)
		costs.GET("/effective", h.GetEffective)
		costs.GET("/products/:id/history", h.History)
		costs.GET("/products/:id/rollup", h.RollUp)
		costs.GET("/variances", h.VarianceAnalysis)
	}

	revaluations := rg.Group("/costing/revaluations")
	{
		revaluations.POST("", h.CreateRevaluation)
		revaluations.GET("", h.ListRevaluations)
		revaluations.GET("/:id", h.GetRevaluation)
		revaluations.POST("/:id/approve", h.ApproveRevaluation)
		revaluations.POST("/:id/reject", h.RejectRevaluation)
		revaluations.POST("/:id/post", h.PostRevaluation)
	}
}

// CloseStandardCostRequest caps an open-ended cost version
type CloseStandardCostRequest struct {
	EffectiveTo time.Time `json:"effective_to" binding:"required"`
}

// RejectRevaluationRequest carries the mandatory rejection reason
type RejectRevaluationRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// PostRevaluationRequest names the GL accounts the adjustment posts to
type PostRevaluationRequest struct {
	InventoryAccountID  uuid.UUID `json:"inventory_account_id" binding:"required"`
	AdjustmentAccountID uuid.UUID `json:"adjustment_account_id" binding:"required"`
}

// CreateStandardCost creates a standard cost version for a product
func (h *CostingHandler) CreateStandardCost(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req costingapp.CreateStandardCostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	cost, err := h.standardCostService.CreateStandardCost(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, cost)
}

// CloseStandardCost caps an open-ended cost version at a date
func (h *CostingHandler) CloseStandardCost(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	costID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid standard cost ID format")
		return
	}

	var req CloseStandardCostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	cost, err := h.standardCostService.CloseStandardCost(c.Request.Context(), tenantID, costID, req.EffectiveTo)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, cost)
}

// GetEffective returns the cost version effective right now for a
// product
func (h *CostingHandler) GetEffective(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	productID, err := uuid.Parse(c.Query("product_id"))
	if err != nil {
		h.BadRequest(c, "Invalid product ID format")
		return
	}

	cost, err := h.standardCostService.GetEffective(c.Request.Context(), tenantID, productID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, cost)
}

// History lists a product's cost versions, newest first
func (h *CostingHandler) History(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid product ID format")
		return
	}

	history, err := h.standardCostService.History(c.Request.Context(), tenantID, productID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, history)
}

// RollUp computes a product's cost from its BOM tree bottom-up
func (h *CostingHandler) RollUp(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid product ID format")
		return
	}

	rolled, err := h.standardCostService.RollUp(c.Request.Context(), tenantID, productID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, rolled)
}

// VarianceAnalysis compares standard and actual costs across products
func (h *CostingHandler) VarianceAnalysis(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	threshold := decimal.Zero
	if raw := c.Query("threshold"); raw != "" {
		threshold, err = decimal.NewFromString(raw)
		if err != nil {
			h.BadRequest(c, "Invalid threshold format")
			return
		}
	}

	report, err := h.standardCostService.VarianceAnalysis(c.Request.Context(), tenantID, threshold)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, report)
}

// CreateRevaluation creates a revaluation document, optionally
// auto-approving and posting it
func (h *CostingHandler) CreateRevaluation(c *gin.Context) {
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

	var req costingapp.CreateRevaluationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	reval, err := h.revaluationService.CreateRevaluation(c.Request.Context(), tenantID, userID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, reval)
}

// ListRevaluations lists revaluations, optionally filtered by status
func (h *CostingHandler) ListRevaluations(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var list struct {
		Status   string `form:"status"`
		Page     int    `form:"page"`
		PageSize int    `form:"page_size"`
	}
	if err := c.ShouldBindQuery(&list); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}
	if list.Page == 0 {
		list.Page = 1
	}
	if list.PageSize == 0 {
		list.PageSize = 20
	}

	page, err := h.revaluationService.List(c.Request.Context(), tenantID, list.Status, list.Page, list.PageSize)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// GetRevaluation retrieves one revaluation
func (h *CostingHandler) GetRevaluation(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	revaluationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid revaluation ID format")
		return
	}

	reval, err := h.revaluationService.Get(c.Request.Context(), tenantID, revaluationID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, reval)
}

// ApproveRevaluation moves a pending revaluation to APPROVED
func (h *CostingHandler) ApproveRevaluation(c *gin.Context) {
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

	revaluationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid revaluation ID format")
		return
	}

	reval, err := h.revaluationService.Approve(c.Request.Context(), tenantID, revaluationID, userID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, reval)
}

// RejectRevaluation rejects a pending revaluation with a reason
func (h *CostingHandler) RejectRevaluation(c *gin.Context) {
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

	revaluationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid revaluation ID format")
		return
	}

	var req RejectRevaluationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	reval, err := h.revaluationService.Reject(c.Request.Context(), tenantID, revaluationID, userID, req.Reason)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, reval)
}

// PostRevaluation posts an approved revaluation to the GL
func (h *CostingHandler) PostRevaluation(c *gin.Context) {
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

	revaluationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid revaluation ID format")
		return
	}

	var req PostRevaluationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	reval, err := h.revaluationService.Post(c.Request.Context(), tenantID, revaluationID, userID, req.InventoryAccountID, req.AdjustmentAccountID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, reval)
}
