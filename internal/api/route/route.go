package route

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/oakline/planboard/internal/api/controller"
	"github.com/oakline/planboard/internal/api/middleware"
	"github.com/oakline/planboard/internal/app"
	"github.com/sirupsen/logrus"
)

// SetupRoutes builds the gin engine for the calendar API.
func SetupRoutes(appCtx *app.App, log *logrus.Logger) *gin.Engine {
	r := gin.New()
	r.Use(middleware.HoneybadgerMiddleware(log))
	r.Use(gin.Recovery())
	r.Use(middleware.CORSMiddleware(appCtx.Config.Server.CORSAllowedOrigins))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "UP",
		})
	})

	api := r.Group("")
	api.Use(middleware.RequestTimeout(appCtx.Config.Server.RequestTimeout))

	scopeController := controller.NewScopeController(appCtx.Coordinator, appCtx.Projector)
	calendarController := controller.NewCalendarController(appCtx.Coordinator, appCtx.Projector)
	facetController := controller.NewFacetController(appCtx.Projector)
	contentController := controller.NewContentController(appCtx.Engine)

	api.POST("/scope", scopeController.LoadScope)
	api.GET("/scope", scopeController.CurrentScope)

	api.GET("/calendar/:year/:month", calendarController.Month)
	api.GET("/calendar/:year/:month/:day", calendarController.Day)

	api.GET("/facets", facetController.Facets)
	api.PUT("/filters", facetController.SetFilters)

	api.POST("/content", contentController.Create)
	api.PATCH("/content/:id", contentController.Edit)
	api.DELETE("/content/:id", contentController.Delete)
	api.POST("/content/:id/move", contentController.Move)

	api.POST("/drag/start", contentController.DragStart)
	api.POST("/drag/drop", contentController.DragDrop)
	api.POST("/drag/end", contentController.DragEnd)

	return r
}
