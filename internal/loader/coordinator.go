package loader

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/oakline/planboard/internal/content"
	"github.com/oakline/planboard/internal/logger"
	"github.com/oakline/planboard/internal/remote"
	"github.com/oakline/planboard/internal/store"
)

// DefaultPageLimit is the page size requested from the remote store.
const DefaultPageLimit = 50

var (
	// ErrLoadFailed marks a page fetch that failed mid-pagination. The store
	// keeps whatever partial state was accumulated; the scope is not recorded
	// as completed, so a retry re-triggers a full reload.
	ErrLoadFailed = errors.New("scope load failed")
	// ErrSuperseded marks a load whose results were discarded because a newer
	// scope was requested while it was still fetching.
	ErrSuperseded = errors.New("scope load superseded by a newer request")
)

// Scope is the (brand, month, year) window materialized in the bucket store.
type Scope struct {
	Brand string
	Month time.Month
	Year  int
}

// Key is the dedup key for a scope.
func (s Scope) Key() string {
	return fmt.Sprintf("%s-%d-%d", s.Brand, int(s.Month), s.Year)
}

type inflightLoad struct {
	done chan struct{}
	err  error
}

// Coordinator drives paginated loads of one scope at a time into the bucket
// store. Repeated requests for the already-completed scope are no-ops; a
// request for a scope that is currently loading joins the in-flight load
// instead of starting a second one; a request for a different scope bumps the
// generation counter so the superseded load discards its remaining results.
type Coordinator struct {
	svc       remote.Service
	store     *store.BucketStore
	pageLimit int

	mu           sync.Mutex
	brand        string
	current      Scope
	hasScope     bool
	completedKey string
	loadedBrand  string
	generation   uint64
	inflight     map[string]*inflightLoad
}

// NewCoordinator creates a coordinator. Scope state is owned by the instance,
// constructed fresh per calendar-view lifetime.
func NewCoordinator(svc remote.Service, bucketStore *store.BucketStore, pageLimit int) *Coordinator {
	if pageLimit <= 0 {
		pageLimit = DefaultPageLimit
	}
	return &Coordinator{
		svc:       svc,
		store:     bucketStore,
		pageLimit: pageLimit,
		inflight:  map[string]*inflightLoad{},
	}
}

// SetBrand records the externally-supplied active brand. The next LoadScope
// call for a different brand than the last completed load forces a reload even
// if month and year coincide.
func (c *Coordinator) SetBrand(brand string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.brand = brand
}

// ActiveBrand returns the currently selected brand.
func (c *Coordinator) ActiveBrand() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.brand
}

// Scope returns the scope currently materialized (possibly partially, after a
// mid-pagination failure) in the bucket store.
func (c *Coordinator) Scope() (Scope, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current, c.hasScope
}

// InScope reports whether a live date falls inside the loaded month window.
func (c *Coordinator) InScope(liveDate string) bool {
	scope, ok := c.Scope()
	if !ok {
		return false
	}
	return content.InMonth(liveDate, scope.Month, scope.Year)
}

// LoadScope fetches all of the active brand's items for the month, across
// pages, and installs them into the bucket store. The store is reset first: a
// reload is a hard replacement, not a diff.
func (c *Coordinator) LoadScope(ctx context.Context, month time.Month, year int) error {
	c.mu.Lock()
	scope := Scope{Brand: c.brand, Month: month, Year: year}
	key := scope.Key()

	if c.brand != c.loadedBrand {
		c.completedKey = ""
	}
	if key == c.completedKey {
		c.mu.Unlock()
		logger.WithScope("loader", key).Debug("scope already loaded, skipping")
		return nil
	}
	if fl, ok := c.inflight[key]; ok {
		c.mu.Unlock()
		logger.WithScope("loader", key).Debug("scope load in flight, joining")
		select {
		case <-fl.done:
			return fl.err
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	fl := &inflightLoad{done: make(chan struct{})}
	c.inflight[key] = fl
	c.generation++
	gen := c.generation
	c.current = scope
	c.hasScope = true
	c.store.Reset()
	c.mu.Unlock()

	err := c.fetchAll(ctx, scope, gen)

	c.mu.Lock()
	delete(c.inflight, key)
	if err == nil && gen == c.generation {
		c.completedKey = key
		c.loadedBrand = scope.Brand
	}
	c.mu.Unlock()

	fl.err = err
	close(fl.done)
	return err
}

// Refresh re-loads the current scope from the remote store.
func (c *Coordinator) Refresh(ctx context.Context) error {
	c.mu.Lock()
	if !c.hasScope {
		c.mu.Unlock()
		return nil
	}
	scope := c.current
	c.completedKey = ""
	c.mu.Unlock()
	return c.LoadScope(ctx, scope.Month, scope.Year)
}

// Invalidate clears the completed-load record so the next LoadScope call for
// any scope performs a full fetch.
func (c *Coordinator) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.completedKey = ""
}

func (c *Coordinator) fetchAll(ctx context.Context, scope Scope, gen uint64) error {
	monthYear := content.MonthYear(scope.Month, scope.Year)
	key := scope.Key()
	offset := 0
	total := 0
	skipped := 0

	for {
		page, err := c.svc.FetchPage(ctx, scope.Brand, offset, c.pageLimit, monthYear)
		if err != nil {
			logger.WithScope("loader", key).Errorf("page fetch at offset %d failed: %v", offset, err)
			return fmt.Errorf("%w: page at offset %d: %v", ErrLoadFailed, offset, err)
		}

		for _, item := range page.Data {
			if !item.SameBrand(scope.Brand) || !item.Scheduled() {
				skipped++
				continue
			}
			if err := c.install(item, gen); err != nil {
				if errors.Is(err, ErrSuperseded) {
					logger.WithScope("loader", key).Debug("load superseded, discarding remaining results")
					return err
				}
				// Malformed live date on a single record: skip it, keep loading.
				logger.WithScope("loader", key).Warnf("skipping item %s: %v", item.ID, err)
				skipped++
				continue
			}
			total++
		}

		if !page.Pagination.HasMore || len(page.Data) == 0 {
			break
		}
		offset += c.pageLimit
	}

	logger.WithScope("loader", key).Infof("scope loaded: %d items installed, %d skipped", total, skipped)
	return nil
}

// install inserts one item, holding the coordinator lock across the generation
// check so a superseded load cannot write into a store a newer load has reset.
func (c *Coordinator) install(item content.Item, gen uint64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.generation {
		return ErrSuperseded
	}
	return c.store.Insert(item)
}
