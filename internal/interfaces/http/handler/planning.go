package handler

import (
	planningapp "github.com/finbooks/backend/internal/application/planning"
	"github.com/finbooks/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// PlanningHandler handles safety-stock planning API endpoints
type PlanningHandler struct {
	BaseHandler
	safetyStockService *planningapp.SafetyStockService
}

// NewPlanningHandler creates a new PlanningHandler
func NewPlanningHandler(safetyStockService *planningapp.SafetyStockService) *PlanningHandler {
	return &PlanningHandler{safetyStockService: safetyStockService}
}

// RegisterRoutes registers planning routes on the API group
func (h *PlanningHandler) RegisterRoutes(rg *gin.RouterGroup) {
	planning := rg.Group("/planning/safety-stock")
	{
		planning.POST("/recommendations", h.Recommend)
		planning.POST("", h.Apply)
		planning.GET("/effective", h.GetEffective)
		planning.GET("/products/:id/history", h.History)
	}
}

// Recommend computes safety-stock recommendations from demand history
// without persisting anything
func (h *PlanningHandler) Recommend(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req planningapp.RecommendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	results, err := h.safetyStockService.Recommend(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, results)
}

// Apply persists a quantity as the new effective safety-stock record,
// closing the previous one
func (h *PlanningHandler) Apply(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req planningapp.ApplyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	record, err := h.safetyStockService.Apply(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, record)
}

// GetEffective returns the currently effective safety-stock record for
// a product and warehouse
func (h *PlanningHandler) GetEffective(c *gin.Context) {
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
	warehouseID, err := uuid.Parse(c.Query("warehouse_id"))
	if err != nil {
		h.BadRequest(c, "Invalid warehouse ID format")
		return
	}

	record, err := h.safetyStockService.GetEffective(c.Request.Context(), tenantID, productID, warehouseID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, record)
}

// History lists a product's safety-stock records, newest first
func (h *PlanningHandler) History(c *gin.Context) {
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

	records, err := h.safetyStockService.History(c.Request.Context(), tenantID, productID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, records)
}
