package controller

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/oakline/planboard/internal/facet"
)

func newFacetRouter(stack *calendarStack) *gin.Engine {
	gin.SetMode(gin.TestMode)
	fc := NewFacetController(stack.projector)
	cc := NewCalendarController(stack.coordinator, stack.projector)

	r := gin.New()
	r.GET("/facets", fc.Facets)
	r.PUT("/filters", fc.SetFilters)
	r.GET("/calendar/:year/:month", cc.Month)
	return r
}

type facetsResponse struct {
	Available facet.Facets `json:"available"`
	Selected  struct {
		Formats         []string `json:"formats"`
		ContentStatuses []string `json:"content_statuses"`
		TaskStatuses    []string `json:"task_statuses"`
	} `json:"selected"`
}

func TestFacetController_Facets(t *testing.T) {
	stack := newCalendarStack(t, allAccessPerms("acme", "reel", "story", "post"), marchItems())
	stack.load(t, "acme", time.March, 2026)
	router := newFacetRouter(stack)

	w := doJSON(t, router, http.MethodGet, "/facets", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var response facetsResponse
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("unmarshal facets: %v", err)
	}

	expectedFormats := []string{"post", "reel", "story"}
	if len(response.Available.Formats) != len(expectedFormats) {
		t.Fatalf("expected formats %v, got %v", expectedFormats, response.Available.Formats)
	}
	for i, f := range expectedFormats {
		if response.Available.Formats[i] != f {
			t.Errorf("expected format %s at %d, got %s", f, i, response.Available.Formats[i])
		}
	}

	// Everything starts selected.
	if len(response.Selected.Formats) != 3 {
		t.Errorf("expected all formats selected, got %v", response.Selected.Formats)
	}
}

func TestFacetController_SetFilters(t *testing.T) {
	stack := newCalendarStack(t, allAccessPerms("acme", "reel", "story", "post"), marchItems())
	stack.load(t, "acme", time.March, 2026)
	router := newFacetRouter(stack)

	// Narrow to the story format only.
	w := doJSON(t, router, http.MethodPut, "/filters", map[string]any{
		"formats": []string{"story"},
	})
	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d (%s)", w.Code, w.Body.String())
	}

	w = doJSON(t, router, http.MethodGet, "/calendar/2026/3", nil)
	var view MonthView
	if err := json.Unmarshal(w.Body.Bytes(), &view); err != nil {
		t.Fatalf("unmarshal month view: %v", err)
	}
	if view.Total != 1 {
		t.Fatalf("expected 1 visible item after narrowing, got %d", view.Total)
	}
	if view.Days[0].Items[0].FormatType != "story" {
		t.Errorf("unexpected item: %+v", view.Days[0].Items[0])
	}

	// A present-but-empty list hides everything.
	w = doJSON(t, router, http.MethodPut, "/filters", map[string]any{
		"formats": []string{},
	})
	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", w.Code)
	}

	w = doJSON(t, router, http.MethodGet, "/calendar/2026/3", nil)
	if err := json.Unmarshal(w.Body.Bytes(), &view); err != nil {
		t.Fatalf("unmarshal month view: %v", err)
	}
	if view.Total != 0 {
		t.Errorf("expected empty view after clearing selection, got %d items", view.Total)
	}

	// Absent lists leave their selection untouched: restoring formats brings
	// everything back because the status selections were never narrowed.
	w = doJSON(t, router, http.MethodPut, "/filters", map[string]any{
		"formats": []string{"reel", "story", "post"},
	})
	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", w.Code)
	}

	w = doJSON(t, router, http.MethodGet, "/calendar/2026/3", nil)
	if err := json.Unmarshal(w.Body.Bytes(), &view); err != nil {
		t.Fatalf("unmarshal month view: %v", err)
	}
	if view.Total != 3 {
		t.Errorf("expected full view after restore, got %d items", view.Total)
	}
}

func TestFacetController_TaskStatusFilterBypass(t *testing.T) {
	stack := newCalendarStack(t, allAccessPerms("acme", "reel", "story", "post"), marchItems())
	stack.load(t, "acme", time.March, 2026)
	router := newFacetRouter(stack)

	// Hiding every task status only hides items that actually carry a task.
	w := doJSON(t, router, http.MethodPut, "/filters", map[string]any{
		"task_statuses": []string{},
	})
	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", w.Code)
	}

	w = doJSON(t, router, http.MethodGet, "/calendar/2026/3", nil)
	var view MonthView
	if err := json.Unmarshal(w.Body.Bytes(), &view); err != nil {
		t.Fatalf("unmarshal month view: %v", err)
	}
	if view.Total != 2 {
		t.Fatalf("expected the 2 taskless items to stay visible, got %d", view.Total)
	}
	for _, day := range view.Days {
		for _, item := range day.Items {
			if item.HasTask() {
				t.Errorf("item with task leaked through: %+v", item)
			}
		}
	}
}
