package handler

import (
	assetapp "github.com/finbooks/backend/internal/application/asset"
	"github.com/finbooks/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// AssetHandler handles fixed-asset and depreciation API endpoints
type AssetHandler struct {
	BaseHandler
	assetService        *assetapp.AssetService
	depreciationService *assetapp.DepreciationService
}

// NewAssetHandler creates a new AssetHandler
func NewAssetHandler(assetService *assetapp.AssetService, depreciationService *assetapp.DepreciationService) *AssetHandler {
	return &AssetHandler{
		assetService:        assetService,
		depreciationService: depreciationService,
	}
}

// RegisterRoutes registers asset routes on the API group
func (h *AssetHandler) RegisterRoutes(rg *gin.RouterGroup) {
	assets := rg.Group("/assets")
	{
		assets.POST("/categories", h.CreateCategory)
		assets.POST("", h.CreateAsset)
		assets.GET("/:id", h.GetAsset)
		assets.POST("/:id/dispose", h.DisposeAsset)
		assets.GET("/:id/depreciation/schedule", h.Schedule)
		assets.GET("/:id/depreciation/:period", h.ComputePeriod)
		assets.POST("/:id/depreciation/:period/post", h.PostDepreciation)
	}
	rg.POST("/depreciation/runs", h.RunMonthly)
}

// RunMonthlyRequest triggers a depreciation batch for one period
type RunMonthlyRequest struct {
	Period string `json:"period" binding:"required,period"`
}

// CreateCategory registers an asset category with its GL accounts
func (h *AssetHandler) CreateCategory(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req assetapp.CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	category, err := h.assetService.CreateCategory(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, category)
}

// CreateAsset registers a depreciable asset
func (h *AssetHandler) CreateAsset(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req assetapp.CreateAssetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	asset, err := h.assetService.CreateAsset(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, asset)
}

// GetAsset retrieves one asset
func (h *AssetHandler) GetAsset(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	assetID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid asset ID format")
		return
	}

	asset, err := h.assetService.GetAsset(c.Request.Context(), tenantID, assetID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, asset)
}

// DisposeAsset marks an asset DISPOSED; no further depreciation runs
func (h *AssetHandler) DisposeAsset(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	assetID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid asset ID format")
		return
	}

	asset, err := h.assetService.DisposeAsset(c.Request.Context(), tenantID, assetID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, asset)
}

// Schedule returns the full projected depreciation schedule
func (h *AssetHandler) Schedule(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	assetID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid asset ID format")
		return
	}

	schedule, err := h.depreciationService.GenerateSchedule(c.Request.Context(), tenantID, assetID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, schedule)
}

// ComputePeriod computes one period's depreciation without posting it
func (h *AssetHandler) ComputePeriod(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	assetID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid asset ID format")
		return
	}

	line, err := h.depreciationService.ComputePeriod(c.Request.Context(), tenantID, assetID, c.Param("period"))
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, line)
}

// PostDepreciation records one period's depreciation and posts the GL
// entry
func (h *AssetHandler) PostDepreciation(c *gin.Context) {
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

	assetID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid asset ID format")
		return
	}

	line, err := h.depreciationService.PostToGL(c.Request.Context(), tenantID, assetID, c.Param("period"), userID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, line)
}

// RunMonthly runs depreciation for every eligible asset in one period
func (h *AssetHandler) RunMonthly(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req RunMonthlyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	result, err := h.depreciationService.RunMonthly(c.Request.Context(), tenantID, req.Period)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, result)
}
