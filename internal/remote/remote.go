package remote

import (
	"context"

	"github.com/oakline/planboard/internal/content"
)

// Pagination carries the remote store's paging signal.
type Pagination struct {
	HasMore bool `json:"has_more"`
}

// Page is one page of a brand/month query.
type Page struct {
	Data       []content.Item `json:"data"`
	Pagination Pagination     `json:"pagination"`
}

// UpsertRequest is a partial record sent to the remote store. An empty ID
// signals a create; present pointer fields are the only ones touched.
type UpsertRequest struct {
	ID          string  `json:"id,omitempty"`
	BrandName   *string `json:"brand_name,omitempty"`
	ContentName *string `json:"content_name,omitempty"`
	FormatType  *string `json:"format_type,omitempty"`
	Status      *string `json:"status,omitempty"`
	LiveDate    *string `json:"live_date,omitempty"`
	TaskStatus  *string `json:"task_status,omitempty"`
	TaskID      *string `json:"task_id,omitempty"`
}

// Service abstracts the remote content store: paginated month queries and
// single-item upsert/delete. The cache treats it as an opaque key-value
// service; its persistence and conflict handling are its own business.
type Service interface {
	FetchPage(ctx context.Context, brand string, offset, limit int, monthYear string) (Page, error)
	Upsert(ctx context.Context, req UpsertRequest) (content.Item, error)
	Delete(ctx context.Context, id string) error
}

// String helper for building upsert requests.
func StringPtr(s string) *string {
	return &s
}
