package controller

import (
	"context"
	"testing"
	"time"

	"github.com/oakline/planboard/internal/content"
	"github.com/oakline/planboard/internal/facet"
	"github.com/oakline/planboard/internal/loader"
	"github.com/oakline/planboard/internal/mutation"
	"github.com/oakline/planboard/internal/permission"
	"github.com/oakline/planboard/internal/remote"
	"github.com/oakline/planboard/internal/store"
)

// calendarStack wires the full component chain on top of the in-memory remote
// service, the same way app.New does it.
type calendarStack struct {
	svc         *remote.MemoryService
	store       *store.BucketStore
	coordinator *loader.Coordinator
	projector   *facet.Projector
	engine      *mutation.Engine
}

func newCalendarStack(t *testing.T, perms permission.Document, items []content.Item) *calendarStack {
	t.Helper()

	svc := remote.NewMemoryServiceFromItems(items)
	bucketStore := store.NewBucketStore()
	coordinator := loader.NewCoordinator(svc, bucketStore, loader.DefaultPageLimit)
	holder := permission.NewHolder(perms)
	projector := facet.NewProjector(bucketStore, holder, coordinator)
	engine := mutation.NewEngine(bucketStore, svc, coordinator, projector)

	return &calendarStack{
		svc:         svc,
		store:       bucketStore,
		coordinator: coordinator,
		projector:   projector,
		engine:      engine,
	}
}

// load brings a (brand, month, year) window into the store and seeds the facet
// selections, mirroring what the scope endpoint does.
func (s *calendarStack) load(t *testing.T, brand string, month time.Month, year int) {
	t.Helper()

	s.coordinator.SetBrand(brand)
	if err := s.coordinator.LoadScope(context.Background(), month, year); err != nil {
		t.Fatalf("load scope: %v", err)
	}
	s.projector.Refresh()
}

func allAccessPerms(brand string, formats ...string) permission.Document {
	byFormat := map[string][]string{}
	for _, f := range formats {
		byFormat[f] = []string{"editor"}
	}
	return permission.Document{brand: byFormat}
}

func marchItems() []content.Item {
	return []content.Item{
		{ID: "c-1", BrandName: "acme", ContentName: "spring teaser", FormatType: "reel", Status: content.StatusWorking, LiveDate: "2026-03-05"},
		{ID: "c-2", BrandName: "acme", ContentName: "launch recap", FormatType: "story", Status: content.StatusApproved, LiveDate: "2026-03-05", TaskStatus: "todo", TaskID: "T-9"},
		{ID: "c-3", BrandName: "acme", ContentName: "faq roundup", FormatType: "post", Status: content.StatusWorking, LiveDate: "2026-03-12"},
	}
}
