package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/oakline/planboard/internal/facet"
	"github.com/oakline/planboard/internal/logger"
)

// FacetController exposes the observed facet values and the filter state.
type FacetController struct {
	projector *facet.Projector
}

func NewFacetController(projector *facet.Projector) *FacetController {
	return &FacetController{projector: projector}
}

// Facets handles GET /facets.
func (fc *FacetController) Facets(c *gin.Context) {
	formats, statuses, taskStatuses := fc.projector.Selections()
	c.JSON(http.StatusOK, gin.H{
		"available": fc.projector.Facets(),
		"selected": gin.H{
			"formats":          formats,
			"content_statuses": statuses,
			"task_statuses":    taskStatuses,
		},
	})
}

// SetFilters handles PUT /filters. Lists that are present replace the
// selection wholesale, including present-but-empty ("show nothing").
func (fc *FacetController) SetFilters(c *gin.Context) {
	var req FilterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	if req.Formats != nil {
		fc.projector.SetFormats(*req.Formats)
	}
	if req.ContentStatuses != nil {
		fc.projector.SetContentStatuses(*req.ContentStatuses)
	}
	if req.TaskStatuses != nil {
		fc.projector.SetTaskStatuses(*req.TaskStatuses)
	}

	logger.WithComponent("facet-controller").Debugf("filters updated")
	c.Status(http.StatusNoContent)
}
