package controller

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func newCalendarRouter(stack *calendarStack) *gin.Engine {
	gin.SetMode(gin.TestMode)
	cc := NewCalendarController(stack.coordinator, stack.projector)

	r := gin.New()
	r.GET("/calendar/:year/:month", cc.Month)
	r.GET("/calendar/:year/:month/:day", cc.Day)
	return r
}

func TestCalendarController_Month(t *testing.T) {
	stack := newCalendarStack(t, allAccessPerms("acme", "reel", "story", "post"), marchItems())
	stack.load(t, "acme", time.March, 2026)
	router := newCalendarRouter(stack)

	w := doJSON(t, router, http.MethodGet, "/calendar/2026/3", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", w.Code, w.Body.String())
	}

	var view MonthView
	if err := json.Unmarshal(w.Body.Bytes(), &view); err != nil {
		t.Fatalf("unmarshal month view: %v", err)
	}
	if view.Brand != "acme" || view.Month != 3 || view.Year != 2026 {
		t.Errorf("unexpected view header: %+v", view)
	}
	if view.Total != 3 {
		t.Errorf("expected 3 visible items, got %d", view.Total)
	}
	// Empty days are omitted, so only the two occupied cells appear.
	if len(view.Days) != 2 {
		t.Fatalf("expected 2 day cells, got %d", len(view.Days))
	}
	if view.Days[0].Date != "2026-03-05" || len(view.Days[0].Items) != 2 {
		t.Errorf("unexpected first cell: %+v", view.Days[0])
	}
}

func TestCalendarController_EmptyMonthIsEmptyArray(t *testing.T) {
	stack := newCalendarStack(t, allAccessPerms("acme", "reel"), nil)
	stack.load(t, "acme", time.March, 2026)
	router := newCalendarRouter(stack)

	w := doJSON(t, router, http.MethodGet, "/calendar/2026/3", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	// Clients iterate days directly, so an empty month must be [] not null.
	if !strings.Contains(w.Body.String(), `"days":[]`) {
		t.Errorf("expected empty days array, got %s", w.Body.String())
	}
}

func TestCalendarController_MonthNotLoaded(t *testing.T) {
	stack := newCalendarStack(t, allAccessPerms("acme", "reel", "story", "post"), marchItems())
	stack.load(t, "acme", time.March, 2026)
	router := newCalendarRouter(stack)

	tests := []struct {
		name           string
		path           string
		expectedStatus int
	}{
		{name: "different month", path: "/calendar/2026/4", expectedStatus: http.StatusNotFound},
		{name: "different year", path: "/calendar/2025/3", expectedStatus: http.StatusNotFound},
		{name: "invalid month", path: "/calendar/2026/13", expectedStatus: http.StatusBadRequest},
		{name: "invalid year", path: "/calendar/banana/3", expectedStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(t, router, http.MethodGet, tt.path, nil)
			if w.Code != tt.expectedStatus {
				t.Errorf("expected %d, got %d", tt.expectedStatus, w.Code)
			}
		})
	}
}

func TestCalendarController_Day(t *testing.T) {
	stack := newCalendarStack(t, allAccessPerms("acme", "reel", "story", "post"), marchItems())
	stack.load(t, "acme", time.March, 2026)
	router := newCalendarRouter(stack)

	w := doJSON(t, router, http.MethodGet, "/calendar/2026/3/12", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var view DayView
	if err := json.Unmarshal(w.Body.Bytes(), &view); err != nil {
		t.Fatalf("unmarshal day view: %v", err)
	}
	if view.Date != "2026-03-12" {
		t.Errorf("expected date 2026-03-12, got %s", view.Date)
	}
	if len(view.Items) != 1 || view.Items[0].ID != "c-3" {
		t.Errorf("unexpected items: %+v", view.Items)
	}

	// An empty cell is still a valid response.
	w = doJSON(t, router, http.MethodGet, "/calendar/2026/3/25", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 for empty cell, got %d", w.Code)
	}
	if err := json.Unmarshal(w.Body.Bytes(), &view); err != nil {
		t.Fatalf("unmarshal empty cell: %v", err)
	}
	if len(view.Items) != 0 {
		t.Errorf("expected empty cell, got %+v", view.Items)
	}

	w = doJSON(t, router, http.MethodGet, "/calendar/2026/3/32", nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for day out of range, got %d", w.Code)
	}
}

func TestCalendarController_PermissionGate(t *testing.T) {
	// Only the reel format is accessible for acme.
	stack := newCalendarStack(t, allAccessPerms("acme", "reel"), marchItems())
	stack.load(t, "acme", time.March, 2026)
	router := newCalendarRouter(stack)

	w := doJSON(t, router, http.MethodGet, "/calendar/2026/3", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var view MonthView
	if err := json.Unmarshal(w.Body.Bytes(), &view); err != nil {
		t.Fatalf("unmarshal month view: %v", err)
	}
	if view.Total != 1 {
		t.Fatalf("expected only the reel item to be visible, got %d", view.Total)
	}
	if view.Days[0].Items[0].FormatType != "reel" {
		t.Errorf("unexpected visible item: %+v", view.Days[0].Items[0])
	}
}
