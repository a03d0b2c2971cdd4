package handler

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"plz-territory-go/internal/export"
	"plz-territory-go/internal/geodata"
	"plz-territory-go/internal/region"
	"plz-territory-go/pkg/model"
	"plz-territory-go/web"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// MapHandler serves the viewer page, the choropleth feed and the data derived from it
type MapHandler struct {
	regionService *region.RegionService
	dataset       *geodata.Dataset
	logger        *zap.Logger
}

// NewMapHandler creates a new map handler
func NewMapHandler(regionService *region.RegionService, dataset *geodata.Dataset, logger *zap.Logger) *MapHandler {
	return &MapHandler{
		regionService: regionService,
		dataset:       dataset,
		logger:        logger,
	}
}

// Index handles GET /
func (h *MapHandler) Index(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", web.IndexHTML)
}

// GetMap handles GET /api/map?highlight=<name>.
// A highlight naming nobody with regions draws the normal map.
func (h *MapHandler) GetMap(c *gin.Context) {
	snapshot, err := h.regionService.AllRegionAssignments(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, h.dataset.Choropleth(snapshot, highlightSet(snapshot, c.Query("highlight"))))
}

// highlightSet returns the codes owned by name, or nil when there are none
func highlightSet(snapshot model.Assignments, name string) map[string]bool {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil
	}

	var set map[string]bool
	for code, owner := range snapshot {
		if owner == nil || owner.Name != name {
			continue
		}
		if set == nil {
			set = make(map[string]bool)
		}
		set[code] = true
	}
	return set
}

// GetLegend handles GET /api/legend
func (h *MapHandler) GetLegend(c *gin.Context) {
	reps, err := h.regionService.Representatives(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	legend := make([]model.LegendEntry, 0, len(reps)+1)
	for _, rep := range reps {
		legend = append(legend, model.LegendEntry{Name: rep.Name, Color: rep.Color})
	}
	legend = append(legend, model.LegendEntry{Name: region.UnassignedLabel, Color: region.UnassignedColor})

	c.JSON(http.StatusOK, legend)
}

// Seed handles POST /api/admin/seed
func (h *MapHandler) Seed(c *gin.Context) {
	codes := h.dataset.UniqueCodes()
	inserted, err := h.regionService.Seed(c.Request.Context(), codes)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, model.SeedResponse{Inserted: inserted, Total: len(codes)})
}

// Export handles GET /api/admin/export
func (h *MapHandler) Export(c *gin.Context) {
	ctx := c.Request.Context()

	snapshot, err := h.regionService.AllRegionAssignments(ctx)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	reps, err := h.regionService.Representatives(ctx)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	data, err := export.AssignmentWorkbook(snapshot, reps)
	if err != nil {
		h.logger.Error("Failed to build export workbook", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build export"})
		return
	}

	filename := fmt.Sprintf("vertriebsgebiete_%s.xlsx", time.Now().Format("20060102"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, xlsxContentType, data)
}
