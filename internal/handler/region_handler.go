package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"plz-territory-go/internal/region"
	"plz-territory-go/pkg/model"
)

// RegionHandler handles representative and region assignment requests
type RegionHandler struct {
	regionService *region.RegionService
	logger        *zap.Logger
}

// NewRegionHandler creates a new region handler
func NewRegionHandler(regionService *region.RegionService, logger *zap.Logger) *RegionHandler {
	return &RegionHandler{
		regionService: regionService,
		logger:        logger,
	}
}

// GetRepresentatives handles GET /api/representatives
func (h *RegionHandler) GetRepresentatives(c *gin.Context) {
	names, err := h.regionService.ListRepresentatives(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"representatives": names,
		"total":           len(names),
	})
}

// GetRepresentativeRegions handles GET /api/representatives/:name/regions
func (h *RegionHandler) GetRepresentativeRegions(c *gin.Context) {
	codes, err := h.regionService.RegionsFor(c.Request.Context(), c.Param("name"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, model.RegionListResponse{Regions: codes, Total: len(codes)})
}

// GetUnassignedRegions handles GET /api/regions/unassigned
func (h *RegionHandler) GetUnassignedRegions(c *gin.Context) {
	codes, err := h.regionService.UnassignedRegions(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, model.RegionListResponse{Regions: codes, Total: len(codes)})
}

// GetAssignments handles GET /api/assignments
func (h *RegionHandler) GetAssignments(c *gin.Context) {
	snapshot, err := h.regionService.AllRegionAssignments(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"assignments": snapshot,
		"total":       len(snapshot),
		"unassigned":  snapshot.Unassigned(),
	})
}

// Assign handles POST /api/admin/assignments
func (h *RegionHandler) Assign(c *gin.Context) {
	var req model.AssignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.regionService.Assign(c.Request.Context(), req.Representative, req.Regions)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	status := http.StatusOK
	if result.Created {
		status = http.StatusCreated
	}
	c.JSON(status, result)
}

// SetRegions handles PUT /api/admin/representatives/:name/regions
func (h *RegionHandler) SetRegions(c *gin.Context) {
	var req model.RegionListRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.regionService.SetRegions(c.Request.Context(), c.Param("name"), req.Regions)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// Unassign handles POST /api/admin/regions/unassign
func (h *RegionHandler) Unassign(c *gin.Context) {
	var req model.RegionListRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	changed, err := h.regionService.Unassign(c.Request.Context(), req.Regions)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"unassigned": changed})
}

// UpdateRepresentative handles PATCH /api/admin/representatives/:name.
// Rename and color change are applied together or not at all.
func (h *RegionHandler) UpdateRepresentative(c *gin.Context) {
	var req model.RepresentativeUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rep, err := h.regionService.Update(c.Request.Context(), c.Param("name"), req.Name, req.Color)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, rep)
}

// DeleteRepresentative handles DELETE /api/admin/representatives/:name.
// Deleting an unknown name succeeds with deleted=false.
func (h *RegionHandler) DeleteRepresentative(c *gin.Context) {
	deleted, err := h.regionService.Delete(c.Request.Context(), c.Param("name"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": deleted})
}
