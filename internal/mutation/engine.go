package mutation

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/containerd/errdefs"
	"github.com/google/uuid"
	"github.com/oakline/planboard/internal/content"
	"github.com/oakline/planboard/internal/loader"
	"github.com/oakline/planboard/internal/logger"
	"github.com/oakline/planboard/internal/remote"
	"github.com/oakline/planboard/internal/store"
)

var (
	// ErrCrossScope marks a create or move targeting a date outside the loaded
	// month. Rejected before any local mutation or remote call: the destination
	// month's data is not loaded and a partial view would be inconsistent.
	ErrCrossScope = errors.New("target date is outside the loaded month")
	// ErrNoScope means no calendar scope has been loaded yet.
	ErrNoScope = errors.New("no scope loaded")
	// ErrRemoteFailed marks an upsert or delete the remote store rejected after
	// the optimistic local mutation; the local change has been rolled back.
	ErrRemoteFailed = errors.New("remote mutation failed")
	// ErrNoDrag means a drop arrived without a drag in progress.
	ErrNoDrag = errors.New("no drag in progress")
	// ErrInvalidDay marks a day number outside the target month.
	ErrInvalidDay = errors.New("day is outside the target month")
)

// ScopeChecker exposes the loaded scope for boundary validation.
type ScopeChecker interface {
	Scope() (loader.Scope, bool)
	InScope(liveDate string) bool
}

// Refresher is notified after any mutation that could change the facet set.
type Refresher interface {
	Refresh()
}

// DragContext is the ephemeral state between drag-start and drop/drag-end.
type DragContext struct {
	Item      content.Item
	OriginKey string
}

// Engine executes local-first mutations against the bucket store, then issues
// the corresponding remote call, reconciling server-computed fields on success
// and rolling back to the pre-mutation snapshot on failure.
type Engine struct {
	store  *store.BucketStore
	svc    remote.Service
	scope  ScopeChecker
	facets Refresher

	mu   sync.Mutex
	drag *DragContext
}

// NewEngine creates a mutation engine.
func NewEngine(bucketStore *store.BucketStore, svc remote.Service, scope ScopeChecker, facets Refresher) *Engine {
	return &Engine{store: bucketStore, svc: svc, scope: scope, facets: facets}
}

// op is one optimistic mutation, made explicit so the sequencing and rollback
// contract is testable on its own: apply mutates the store synchronously,
// confirm merges the server-reconciled record, revert restores the pre-apply
// snapshot exactly.
type op struct {
	apply   func() error
	confirm func(content.Item)
	revert  func()
}

// run drives an op through the optimistic sequence against a remote upsert.
func (e *Engine) run(ctx context.Context, o op, req remote.UpsertRequest) (content.Item, error) {
	if err := o.apply(); err != nil {
		return content.Item{}, err
	}
	res, err := e.svc.Upsert(ctx, req)
	if err != nil {
		if o.revert != nil {
			o.revert()
		}
		return content.Item{}, fmt.Errorf("%w: %v", ErrRemoteFailed, err)
	}
	if o.confirm != nil {
		o.confirm(res)
	}
	e.facets.Refresh()
	return res, nil
}

// CreateRequest is a new content draft.
type CreateRequest struct {
	BrandName   string `json:"brand_name" validate:"required"`
	ContentName string `json:"content_name" validate:"required"`
	FormatType  string `json:"format_type"`
	Status      string `json:"status"`
	LiveDate    string `json:"live_date"`
}

// Create persists a new item remotely and inserts it locally only when its
// live date falls inside the loaded scope; out-of-window creates still succeed
// against the remote store but never touch the buckets. Double submits are
// suppressed by id and by (content name, brand) pair.
func (e *Engine) Create(ctx context.Context, req CreateRequest) (content.Item, error) {
	if req.Status == "" {
		req.Status = content.StatusWorking
	}

	upsert := remote.UpsertRequest{
		BrandName:   &req.BrandName,
		ContentName: &req.ContentName,
		FormatType:  &req.FormatType,
		Status:      &req.Status,
	}
	if req.LiveDate != "" {
		upsert.LiveDate = &req.LiveDate
	}

	inScope := req.LiveDate != "" && e.scope.InScope(req.LiveDate)
	placeholder := ""

	o := op{
		apply: func() error {
			if !inScope {
				return nil
			}
			if e.store.ContainsName(req.ContentName, req.BrandName) {
				logger.WithComponent("mutations").Debugf("create %q suppressed: already present for brand %s", req.ContentName, req.BrandName)
				return nil
			}
			placeholder = "pending-" + uuid.NewString()
			return e.store.Insert(content.Item{
				ID:          placeholder,
				BrandName:   req.BrandName,
				ContentName: req.ContentName,
				FormatType:  req.FormatType,
				Status:      req.Status,
				LiveDate:    req.LiveDate,
			})
		},
		confirm: func(res content.Item) {
			if placeholder != "" {
				_, _ = e.store.Remove(placeholder)
			}
			if !res.Scheduled() || !e.scope.InScope(res.LiveDate) {
				return
			}
			// The name check must run again here: a double submit whose first
			// copy already confirmed carries no placeholder and a fresh server
			// id, so only the (content name, brand) pair can catch it.
			if e.store.ContainsName(res.ContentName, res.BrandName) {
				logger.WithComponent("mutations").Debugf("create %q confirmed, duplicate of an installed item for brand %s", res.ContentName, res.BrandName)
				return
			}
			if err := e.store.Insert(res); err != nil {
				logger.WithComponent("mutations").Warnf("created item %s not installable: %v", res.ID, err)
			}
		},
		revert: func() {
			if placeholder != "" {
				_, _ = e.store.Remove(placeholder)
			}
		},
	}

	return e.run(ctx, o, upsert)
}

// EditRequest is a partial in-place edit, with the live date split out so a
// date change cannot masquerade as a field update.
type EditRequest struct {
	Patch    content.Patch
	LiveDate *string
}

// Edit applies a partial update. A changed live date still inside the scope is
// treated as a move so the bucket invariant holds; a date leaving the scope
// removes the item from the store entirely (it left the visible window)
// without deleting it remotely.
func (e *Engine) Edit(ctx context.Context, id string, req EditRequest) error {
	original, originKey, found := e.store.Find(id)
	if !found {
		return store.ErrItemNotFound
	}

	upsert := remote.UpsertRequest{
		ID:          id,
		ContentName: req.Patch.ContentName,
		FormatType:  req.Patch.FormatType,
		Status:      req.Patch.Status,
		TaskStatus:  req.Patch.TaskStatus,
		TaskID:      req.Patch.TaskID,
		LiveDate:    req.LiveDate,
	}

	revert := func() {
		_, _ = e.store.Remove(id)
		if err := e.store.Insert(original); err != nil {
			logger.WithComponent("mutations").Errorf("revert of edit %s failed: %v", id, err)
		}
	}
	mergeConfirm := func(res content.Item) {
		current, _, ok := e.store.Find(id)
		if !ok {
			return
		}
		if _, err := e.store.UpdateInPlace(id, content.PatchFrom(current, res)); err != nil {
			logger.WithComponent("mutations").Warnf("merge of server echo for %s failed: %v", id, err)
		}
	}

	dateChanged := req.LiveDate != nil && *req.LiveDate != original.LiveDate

	var o op
	switch {
	case dateChanged && e.scope.InScope(*req.LiveDate):
		newKey := *req.LiveDate
		o = op{
			apply: func() error {
				if err := e.store.Move(id, newKey); err != nil {
					return err
				}
				if !req.Patch.IsZero() {
					if _, err := e.store.UpdateInPlace(id, req.Patch); err != nil {
						return err
					}
				}
				return nil
			},
			confirm: mergeConfirm,
			revert:  revert,
		}
	case dateChanged:
		// Left the visible window: drop locally, keep remotely.
		o = op{
			apply: func() error {
				_, err := e.store.Remove(id)
				return err
			},
			revert: revert,
		}
		logger.WithComponent("mutations").Debugf("edit moves %s to %s, outside scope %s", id, *req.LiveDate, originKey)
	default:
		o = op{
			apply: func() error {
				_, err := e.store.UpdateInPlace(id, req.Patch)
				return err
			},
			confirm: mergeConfirm,
			revert:  revert,
		}
	}

	_, err := e.run(ctx, o, upsert)
	return err
}

// Delete marks the item deleted remotely, then unconditionally removes it from
// the buckets. A remote not-found is treated as already deleted.
func (e *Engine) Delete(ctx context.Context, id string) error {
	remoteErr := e.svc.Delete(ctx, id)
	if _, err := e.store.Remove(id); err != nil && !errors.Is(err, store.ErrItemNotFound) {
		return err
	}
	e.facets.Refresh()

	if remoteErr != nil && !errdefs.IsNotFound(remoteErr) {
		return fmt.Errorf("%w: %v", ErrRemoteFailed, remoteErr)
	}
	return nil
}

// Move is the interactive reschedule: relocate an item to another day of the
// loaded month. Cross-month targets are rejected before any mutation or remote
// call; same-day drops are a pure no-op. On remote failure the item ends up
// identical in every field to its pre-drag state, back in its origin bucket.
func (e *Engine) Move(ctx context.Context, id string, year int, month time.Month, day int) error {
	scope, ok := e.scope.Scope()
	if !ok {
		return ErrNoScope
	}
	if month != scope.Month || year != scope.Year {
		logger.WithComponent("mutations").Debugf("rejecting cross-scope move of %s to %04d-%02d", id, year, int(month))
		return ErrCrossScope
	}
	if day < 1 || day > content.DaysIn(month, year) {
		return ErrInvalidDay
	}

	original, originKey, found := e.store.Find(id)
	if !found {
		return store.ErrItemNotFound
	}

	destKey := content.DateKey(year, month, day)
	if destKey == originKey {
		return nil
	}

	o := op{
		apply: func() error {
			return e.store.Move(id, destKey)
		},
		confirm: func(res content.Item) {
			current, _, ok := e.store.Find(id)
			if !ok {
				return
			}
			if _, err := e.store.UpdateInPlace(id, content.PatchFrom(current, res)); err != nil {
				logger.WithComponent("mutations").Warnf("merge of server echo for %s failed: %v", id, err)
			}
		},
		revert: func() {
			_, _ = e.store.Remove(id)
			if err := e.store.Insert(original); err != nil {
				logger.WithComponent("mutations").Errorf("revert of move %s failed: %v", id, err)
			}
		},
	}

	// The upsert carries only the id and the new live date.
	req := remote.UpsertRequest{ID: id, LiveDate: &destKey}
	_, err := e.run(ctx, o, req)
	return err
}

// BeginDrag records the drag context for an item. Starting a new drag simply
// replaces any previous context.
func (e *Engine) BeginDrag(id string) error {
	item, originKey, found := e.store.Find(id)
	if !found {
		return store.ErrItemNotFound
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.drag = &DragContext{Item: item, OriginKey: originKey}
	return nil
}

// EndDrag clears the drag context unconditionally. Also used as the global
// drag-cancel signal; it does not abort an already-issued remote upsert.
func (e *Engine) EndDrag() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.drag = nil
}

// Drag returns the current drag context, if any.
func (e *Engine) Drag() (DragContext, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.drag == nil {
		return DragContext{}, false
	}
	return *e.drag, true
}

// Drop completes a drag onto a calendar cell. The drag context is cleared no
// matter how the move turns out.
func (e *Engine) Drop(ctx context.Context, year int, month time.Month, day int) error {
	e.mu.Lock()
	drag := e.drag
	e.drag = nil
	e.mu.Unlock()

	if drag == nil {
		return ErrNoDrag
	}
	return e.Move(ctx, drag.Item.ID, year, month, day)
}
