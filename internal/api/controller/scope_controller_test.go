package controller

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func newScopeRouter(stack *calendarStack) *gin.Engine {
	gin.SetMode(gin.TestMode)
	sc := NewScopeController(stack.coordinator, stack.projector)

	r := gin.New()
	r.POST("/scope", sc.LoadScope)
	r.GET("/scope", sc.CurrentScope)
	return r
}

func TestScopeController_LoadScope(t *testing.T) {
	stack := newCalendarStack(t, allAccessPerms("acme", "reel", "story", "post"), marchItems())
	router := newScopeRouter(stack)

	w := doJSON(t, router, http.MethodPost, "/scope", LoadScopeRequest{Brand: "acme", Month: 3, Year: 2026})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", w.Code, w.Body.String())
	}

	var response struct {
		ScopeKey string `json:"scope_key"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if response.ScopeKey != "acme-3-2026" {
		t.Errorf("expected scope key acme-3-2026, got %s", response.ScopeKey)
	}

	if stack.store.Len() != 3 {
		t.Errorf("expected 3 items loaded, got %d", stack.store.Len())
	}
}

func TestScopeController_LoadScopeValidation(t *testing.T) {
	tests := []struct {
		name string
		body LoadScopeRequest
	}{
		{name: "missing brand", body: LoadScopeRequest{Month: 3, Year: 2026}},
		{name: "month out of range", body: LoadScopeRequest{Brand: "acme", Month: 13, Year: 2026}},
		{name: "year out of range", body: LoadScopeRequest{Brand: "acme", Month: 3, Year: 1800}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stack := newCalendarStack(t, allAccessPerms("acme", "reel"), nil)
			router := newScopeRouter(stack)

			w := doJSON(t, router, http.MethodPost, "/scope", tt.body)
			if w.Code != http.StatusBadRequest {
				t.Errorf("expected 400, got %d", w.Code)
			}
		})
	}
}

func TestScopeController_CurrentScope(t *testing.T) {
	stack := newCalendarStack(t, allAccessPerms("acme", "reel"), nil)
	router := newScopeRouter(stack)

	w := doJSON(t, router, http.MethodGet, "/scope", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 before any load, got %d", w.Code)
	}

	stack.load(t, "acme", time.March, 2026)

	w = doJSON(t, router, http.MethodGet, "/scope", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var response struct {
		Brand string `json:"brand"`
		Month int    `json:"month"`
		Year  int    `json:"year"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if response.Brand != "acme" || response.Month != 3 || response.Year != 2026 {
		t.Errorf("unexpected scope: %+v", response)
	}
}
