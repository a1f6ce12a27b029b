package facet

import (
	"sort"
	"sync"
	"time"

	"github.com/oakline/planboard/internal/content"
	"github.com/oakline/planboard/internal/loader"
	"github.com/oakline/planboard/internal/logger"
	"github.com/oakline/planboard/internal/permission"
	"github.com/oakline/planboard/internal/store"
)

// Facets are the distinct filterable values observed in the loaded scope.
type Facets struct {
	Formats         []string `json:"formats"`
	ContentStatuses []string `json:"content_statuses"`
	TaskStatuses    []string `json:"task_statuses"`
}

// Equal compares two facet sets. Slices are kept sorted, so element-wise
// comparison is enough.
func (f Facets) Equal(o Facets) bool {
	return equalStrings(f.Formats, o.Formats) &&
		equalStrings(f.ContentStatuses, o.ContentStatuses) &&
		equalStrings(f.TaskStatuses, o.TaskStatuses)
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// ScopeSource exposes the currently loaded scope (for the permission gate's
// active brand).
type ScopeSource interface {
	Scope() (loader.Scope, bool)
}

// Projector derives facet sets and filtered per-day views from the bucket
// store without ever mutating it. Filter selections default to "everything
// observed is selected"; they reset to all-selected whenever the available
// facet set changes, and persist otherwise.
type Projector struct {
	store *store.BucketStore
	perms *permission.Holder
	scope ScopeSource

	mu           sync.Mutex
	known        Facets
	selFormats   map[string]bool
	selStatuses  map[string]bool
	selTaskStats map[string]bool
}

// NewProjector creates a projector over the given store and permission map.
func NewProjector(bucketStore *store.BucketStore, perms *permission.Holder, scope ScopeSource) *Projector {
	return &Projector{
		store:        bucketStore,
		perms:        perms,
		scope:        scope,
		selFormats:   map[string]bool{},
		selStatuses:  map[string]bool{},
		selTaskStats: map[string]bool{},
	}
}

// Compute scans every bucket and collects the distinct non-empty facet values.
func (p *Projector) Compute() Facets {
	formats := map[string]bool{}
	statuses := map[string]bool{}
	taskStatuses := map[string]bool{}

	for _, item := range p.store.Items() {
		if item.FormatType != "" {
			formats[item.FormatType] = true
		}
		if item.Status != "" {
			statuses[item.Status] = true
		}
		if item.TaskStatus != "" {
			taskStatuses[item.TaskStatus] = true
		}
	}

	return Facets{
		Formats:         sortedKeys(formats),
		ContentStatuses: sortedKeys(statuses),
		TaskStatuses:    sortedKeys(taskStatuses),
	}
}

// Refresh recomputes the facet set. If it changed since the last refresh, the
// filter state resets to all-selected; user narrowing survives refreshes that
// leave the facet set untouched.
func (p *Projector) Refresh() {
	facets := p.Compute()

	p.mu.Lock()
	defer p.mu.Unlock()
	if facets.Equal(p.known) {
		return
	}
	logger.WithComponent("facets").Debugf("facet set changed, resetting filters to all-selected (%d formats, %d statuses, %d task statuses)",
		len(facets.Formats), len(facets.ContentStatuses), len(facets.TaskStatuses))
	p.known = facets
	p.selFormats = setOf(facets.Formats)
	p.selStatuses = setOf(facets.ContentStatuses)
	p.selTaskStats = setOf(facets.TaskStatuses)
}

// Facets returns the facet set as of the last refresh.
func (p *Projector) Facets() Facets {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.known
}

// Selections returns the currently selected facet values, sorted.
func (p *Projector) Selections() (formats, contentStatuses, taskStatuses []string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return sortedKeys(p.selFormats), sortedKeys(p.selStatuses), sortedKeys(p.selTaskStats)
}

// SetFormats replaces the selected formats. An empty selection is an explicit
// "show nothing", not "show all".
func (p *Projector) SetFormats(formats []string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.selFormats = setOf(formats)
}

// SetContentStatuses replaces the selected content statuses.
func (p *Projector) SetContentStatuses(statuses []string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.selStatuses = setOf(statuses)
}

// SetTaskStatuses replaces the selected task statuses.
func (p *Projector) SetTaskStatuses(statuses []string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.selTaskStats = setOf(statuses)
}

// FilterDay returns the visible subset of a day's bucket. Ordering of the
// stages matters: the permission gate always runs first and is never
// user-overridable; the three user filters are AND-combined narrowings of the
// permission-gated set.
func (p *Projector) FilterDay(year int, month time.Month, day int) []content.Item {
	bucket := p.store.Get(year, month, day)

	brand := ""
	if scope, ok := p.scope.Scope(); ok {
		brand = scope.Brand
	}

	p.mu.Lock()
	selFormats := p.selFormats
	selStatuses := p.selStatuses
	selTaskStats := p.selTaskStats
	p.mu.Unlock()

	out := []content.Item{}
	for _, item := range bucket {
		if !p.perms.Accessible(brand, item.FormatType) {
			continue
		}
		if !selFormats[item.FormatType] {
			continue
		}
		if !selStatuses[item.Status] {
			continue
		}
		// Items without a task bypass the task-status filter entirely.
		if item.HasTask() && !selTaskStats[item.TaskStatus] {
			continue
		}
		out = append(out, item)
	}
	return out
}

func sortedKeys(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for k, selected := range set {
		if selected {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}

func setOf(values []string) map[string]bool {
	out := make(map[string]bool, len(values))
	for _, v := range values {
		if v != "" {
			out[v] = true
		}
	}
	return out
}
