package controller

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/oakline/planboard/internal/content"
	"github.com/oakline/planboard/internal/facet"
	"github.com/oakline/planboard/internal/loader"
	"github.com/oakline/planboard/internal/logger"
)

// CalendarController serves the filtered per-day views the grid renders from.
type CalendarController struct {
	coordinator *loader.Coordinator
	projector   *facet.Projector
}

func NewCalendarController(coordinator *loader.Coordinator, projector *facet.Projector) *CalendarController {
	return &CalendarController{coordinator: coordinator, projector: projector}
}

// Month handles GET /calendar/:year/:month - the full filtered month view.
func (cc *CalendarController) Month(c *gin.Context) {
	year, month, ok := cc.parseYearMonth(c)
	if !ok {
		return
	}

	scope, loaded := cc.coordinator.Scope()
	if !loaded || scope.Month != month || scope.Year != year {
		c.JSON(http.StatusNotFound, gin.H{"error": "requested month is not loaded"})
		return
	}

	view := MonthView{Brand: scope.Brand, Month: int(month), Year: year, Days: []DayView{}}
	for day := 1; day <= content.DaysIn(month, year); day++ {
		items := cc.projector.FilterDay(year, month, day)
		if len(items) == 0 {
			continue
		}
		view.Days = append(view.Days, DayView{
			Date:  content.DateKey(year, month, day),
			Items: items,
		})
		view.Total += len(items)
	}

	logger.WithComponent("calendar-controller").Debugf("GET month %04d-%02d -> %d visible items", year, int(month), view.Total)
	c.JSON(http.StatusOK, view)
}

// Day handles GET /calendar/:year/:month/:day - one filtered cell.
func (cc *CalendarController) Day(c *gin.Context) {
	year, month, ok := cc.parseYearMonth(c)
	if !ok {
		return
	}
	day, err := strconv.Atoi(c.Param("day"))
	if err != nil || day < 1 || day > content.DaysIn(month, year) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid day"})
		return
	}

	c.JSON(http.StatusOK, DayView{
		Date:  content.DateKey(year, month, day),
		Items: cc.projector.FilterDay(year, month, day),
	})
}

func (cc *CalendarController) parseYearMonth(c *gin.Context) (int, time.Month, bool) {
	year, err := strconv.Atoi(c.Param("year"))
	if err != nil || year < 1970 || year > 9999 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid year"})
		return 0, 0, false
	}
	m, err := strconv.Atoi(c.Param("month"))
	if err != nil || m < 1 || m > 12 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid month"})
		return 0, 0, false
	}
	return year, monthOf(m), true
}
