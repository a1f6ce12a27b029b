package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/oakline/planboard/internal/facet"
	"github.com/oakline/planboard/internal/loader"
	"github.com/oakline/planboard/internal/logger"
)

// ScopeController handles calendar window selection and brand switching.
type ScopeController struct {
	coordinator *loader.Coordinator
	projector   *facet.Projector
	validator   *validator.Validate
}

func NewScopeController(coordinator *loader.Coordinator, projector *facet.Projector) *ScopeController {
	return &ScopeController{
		coordinator: coordinator,
		projector:   projector,
		validator:   validator.New(),
	}
}

// LoadScope handles POST /scope - loads a (brand, month, year) window.
func (sc *ScopeController) LoadScope(c *gin.Context) {
	var req LoadScopeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	if err := sc.validator.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	logger.WithComponent("scope-controller").Debugf("POST /scope brand=%s month=%d year=%d", req.Brand, req.Month, req.Year)

	sc.coordinator.SetBrand(req.Brand)
	err := sc.coordinator.LoadScope(c.Request.Context(), monthOf(req.Month), req.Year)
	if err != nil {
		if errors.Is(err, loader.ErrSuperseded) {
			c.JSON(http.StatusConflict, gin.H{"error": "scope load superseded by a newer request"})
			return
		}
		// Partial data is retained; the client may render it and retry.
		c.JSON(http.StatusBadGateway, gin.H{"error": "scope load failed", "partial": true})
		return
	}

	sc.projector.Refresh()

	scope, _ := sc.coordinator.Scope()
	c.JSON(http.StatusOK, gin.H{
		"scope_key": scope.Key(),
		"facets":    sc.projector.Facets(),
	})
}

// CurrentScope handles GET /scope.
func (sc *ScopeController) CurrentScope(c *gin.Context) {
	scope, ok := sc.coordinator.Scope()
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "no scope loaded"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"brand": scope.Brand,
		"month": int(scope.Month),
		"year":  scope.Year,
	})
}
