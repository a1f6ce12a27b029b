package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/oakline/planboard/internal/logger"
	"github.com/oakline/planboard/internal/mutation"
	"github.com/oakline/planboard/internal/store"
)

// ContentController handles the mutating endpoints: create, edit, delete and
// the interactive drag-move.
type ContentController struct {
	engine    *mutation.Engine
	validator *validator.Validate
}

func NewContentController(engine *mutation.Engine) *ContentController {
	return &ContentController{engine: engine, validator: validator.New()}
}

// Create handles POST /content.
func (cc *ContentController) Create(c *gin.Context) {
	var req mutation.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	if err := cc.validator.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	logger.WithComponent("content-controller").Debugf("POST /content %q for brand %s", req.ContentName, req.BrandName)
	item, err := cc.engine.Create(c.Request.Context(), req)
	if err != nil {
		cc.renderMutationError(c, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

// Edit handles PATCH /content/:id.
func (cc *ContentController) Edit(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing content id"})
		return
	}

	var req EditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	logger.WithComponent("content-controller").Debugf("PATCH /content/%s", id)
	err := cc.engine.Edit(c.Request.Context(), id, mutation.EditRequest{
		Patch:    req.Patch(),
		LiveDate: req.LiveDate,
	})
	if err != nil {
		cc.renderMutationError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Delete handles DELETE /content/:id.
func (cc *ContentController) Delete(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing content id"})
		return
	}

	logger.WithComponent("content-controller").Debugf("DELETE /content/%s", id)
	if err := cc.engine.Delete(c.Request.Context(), id); err != nil {
		cc.renderMutationError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Move handles POST /content/:id/move - the direct reschedule.
func (cc *ContentController) Move(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing content id"})
		return
	}

	var req MoveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	if err := cc.validator.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	logger.WithComponent("content-controller").Debugf("POST /content/%s/move -> %04d-%02d-%02d", id, req.Year, req.Month, req.Day)
	err := cc.engine.Move(c.Request.Context(), id, req.Year, monthOf(req.Month), req.Day)
	if err != nil {
		cc.renderMutationError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// DragStart handles POST /drag/start.
func (cc *ContentController) DragStart(c *gin.Context) {
	var req DragStartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	if err := cc.validator.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := cc.engine.BeginDrag(req.ID); err != nil {
		cc.renderMutationError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// DragDrop handles POST /drag/drop.
func (cc *ContentController) DragDrop(c *gin.Context) {
	var req MoveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	if err := cc.validator.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := cc.engine.Drop(c.Request.Context(), req.Year, monthOf(req.Month), req.Day)
	if err != nil {
		cc.renderMutationError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// DragEnd handles POST /drag/end - the global drag-cancel signal.
func (cc *ContentController) DragEnd(c *gin.Context) {
	cc.engine.EndDrag()
	c.Status(http.StatusNoContent)
}

// renderMutationError maps the engine's error taxonomy to HTTP statuses.
func (cc *ContentController) renderMutationError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, mutation.ErrCrossScope):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "target date is outside the loaded month"})
	case errors.Is(err, mutation.ErrInvalidDay):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "day is outside the target month"})
	case errors.Is(err, mutation.ErrNoScope):
		c.JSON(http.StatusConflict, gin.H{"error": "no scope loaded"})
	case errors.Is(err, mutation.ErrNoDrag):
		c.JSON(http.StatusConflict, gin.H{"error": "no drag in progress"})
	case errors.Is(err, store.ErrItemNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "content item not found"})
	case errors.Is(err, mutation.ErrRemoteFailed):
		// Local state has already been rolled back to the pre-mutation snapshot.
		c.JSON(http.StatusBadGateway, gin.H{"error": "remote store rejected the change, local change reverted"})
	default:
		logger.WithComponent("content-controller").Errorf("mutation error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "mutation failed"})
	}
}
