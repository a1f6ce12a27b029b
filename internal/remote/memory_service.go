package remote

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/containerd/errdefs"
	"github.com/google/uuid"
	"github.com/oakline/planboard/internal/content"
	"github.com/oakline/planboard/internal/logger"
)

// MemoryService is an in-memory Service implementation. It is useful for
// development and tests when no real content store is reachable.
type MemoryService struct {
	mu    sync.RWMutex
	items map[string]content.Item
}

func NewMemoryService() *MemoryService {
	return &MemoryService{items: map[string]content.Item{}}
}

// NewMemoryServiceFromItems seeds the service with existing records. Items
// without an id get one assigned.
func NewMemoryServiceFromItems(items []content.Item) *MemoryService {
	ms := NewMemoryService()
	for _, item := range items {
		if item.ID == "" {
			item.ID = uuid.NewString()
		}
		ms.items[item.ID] = item
	}
	return ms
}

// FetchPage returns one page of the brand's items for the MM-YYYY month,
// ordered by id for stable pagination.
func (m *MemoryService) FetchPage(_ context.Context, brand string, offset, limit int, monthYear string) (Page, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var matched []content.Item
	for _, item := range m.items {
		if !item.SameBrand(brand) {
			continue
		}
		if !liveDateInMonthYear(item.LiveDate, monthYear) {
			continue
		}
		matched = append(matched, item)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })

	if offset >= len(matched) {
		return Page{Data: []content.Item{}}, nil
	}
	end := offset + limit
	if end > len(matched) {
		end = len(matched)
	}
	page := Page{
		Data:       append([]content.Item{}, matched[offset:end]...),
		Pagination: Pagination{HasMore: end < len(matched)},
	}
	logger.WithComponent("memory-remote").Debugf("fetch page brand=%s offset=%d -> %d items, has_more=%v",
		brand, offset, len(page.Data), page.Pagination.HasMore)
	return page, nil
}

// Upsert creates or merges a record, assigning a uuid on create.
func (m *MemoryService) Upsert(_ context.Context, req UpsertRequest) (content.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now().UTC().Format(time.RFC3339)
	if req.ID == "" {
		item := content.Item{ID: uuid.NewString(), CreatedAt: now, UpdatedAt: now}
		applyUpsert(&item, req)
		m.items[item.ID] = item
		logger.WithComponent("memory-remote").Debugf("created item %s", item.ID)
		return item, nil
	}

	item, ok := m.items[req.ID]
	if !ok {
		return content.Item{}, fmt.Errorf("upsert content %s: %w", req.ID, errdefs.ErrNotFound)
	}
	applyUpsert(&item, req)
	item.UpdatedAt = now
	m.items[req.ID] = item
	logger.WithComponent("memory-remote").Debugf("updated item %s", item.ID)
	return item, nil
}

// Delete removes a record by id.
func (m *MemoryService) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[id]; !ok {
		return fmt.Errorf("delete content %s: %w", id, errdefs.ErrNotFound)
	}
	delete(m.items, id)
	return nil
}

func applyUpsert(item *content.Item, req UpsertRequest) {
	if req.BrandName != nil {
		item.BrandName = *req.BrandName
	}
	if req.ContentName != nil {
		item.ContentName = *req.ContentName
	}
	if req.FormatType != nil {
		item.FormatType = *req.FormatType
	}
	if req.Status != nil {
		item.Status = *req.Status
	}
	if req.LiveDate != nil {
		item.LiveDate = *req.LiveDate
	}
	if req.TaskStatus != nil {
		item.TaskStatus = *req.TaskStatus
	}
	if req.TaskID != nil {
		item.TaskID = *req.TaskID
	}
}

// liveDateInMonthYear matches a YYYY-MM-DD live date against an MM-YYYY window.
func liveDateInMonthYear(liveDate, monthYear string) bool {
	if liveDate == "" {
		return false
	}
	parts := strings.SplitN(monthYear, "-", 2)
	if len(parts) != 2 {
		return false
	}
	return strings.HasPrefix(liveDate, parts[1]+"-"+parts[0]+"-")
}
