package content

import (
	"fmt"
	"strings"
	"time"
)

// Known content lifecycle stages. The status domain is free-form: the remote
// store may return values outside this list and they are carried through as-is.
const (
	StatusWorking   = "Working"
	StatusInReview  = "In Review"
	StatusApproved  = "Approved"
	StatusTasks     = "Tasks"
	StatusCompleted = "Completed"
	StatusPosted    = "Posted"
)

// liveDateLayout is the wire format for scheduled dates.
const liveDateLayout = "2006-01-02"

// Item is one schedulable piece of content. ID is empty for create drafts that
// the remote store has not assigned an identifier to yet. LiveDate is empty for
// drafts that are not scheduled on any day.
type Item struct {
	ID          string `json:"id,omitempty"`
	BrandName   string `json:"brand_name" validate:"required"`
	ContentName string `json:"content_name"`
	FormatType  string `json:"format_type"`
	Status      string `json:"status"`
	LiveDate    string `json:"live_date,omitempty"`
	TaskStatus  string `json:"task_status,omitempty"`
	TaskID      string `json:"task_id,omitempty"`
	CreatedAt   string `json:"created_at,omitempty"`
	UpdatedAt   string `json:"updated_at,omitempty"`
}

// Scheduled reports whether the item has a live date and therefore belongs in
// exactly one date bucket.
func (i Item) Scheduled() bool {
	return i.LiveDate != ""
}

// HasTask reports whether a downstream task exists for the item.
func (i Item) HasTask() bool {
	return i.TaskStatus != ""
}

// SameBrand compares brand names case-insensitively.
func (i Item) SameBrand(brand string) bool {
	return strings.EqualFold(i.BrandName, brand)
}

// Patch is a partial in-place update. It deliberately has no live-date field:
// changing an item's date relocates it between buckets and must go through the
// store's Move operation instead.
type Patch struct {
	ContentName *string `json:"content_name,omitempty"`
	FormatType  *string `json:"format_type,omitempty"`
	Status      *string `json:"status,omitempty"`
	TaskStatus  *string `json:"task_status,omitempty"`
	TaskID      *string `json:"task_id,omitempty"`
}

// IsZero reports whether the patch carries no fields.
func (p Patch) IsZero() bool {
	return p.ContentName == nil && p.FormatType == nil && p.Status == nil &&
		p.TaskStatus == nil && p.TaskID == nil
}

// Apply merges the patch into the item.
func (p Patch) Apply(item *Item) {
	if p.ContentName != nil {
		item.ContentName = *p.ContentName
	}
	if p.FormatType != nil {
		item.FormatType = *p.FormatType
	}
	if p.Status != nil {
		item.Status = *p.Status
	}
	if p.TaskStatus != nil {
		item.TaskStatus = *p.TaskStatus
	}
	if p.TaskID != nil {
		item.TaskID = *p.TaskID
	}
}

// PatchFrom builds the patch that would turn base's mutable fields into next's.
// Used to merge a server-reconciled record back into the cached copy without
// touching the live date.
func PatchFrom(base, next Item) Patch {
	var p Patch
	if next.ContentName != base.ContentName {
		p.ContentName = &next.ContentName
	}
	if next.FormatType != base.FormatType {
		p.FormatType = &next.FormatType
	}
	if next.Status != base.Status {
		p.Status = &next.Status
	}
	if next.TaskStatus != base.TaskStatus {
		p.TaskStatus = &next.TaskStatus
	}
	if next.TaskID != base.TaskID {
		p.TaskID = &next.TaskID
	}
	return p
}

// ParseLiveDate parses a YYYY-MM-DD live date.
func ParseLiveDate(s string) (time.Time, error) {
	t, err := time.Parse(liveDateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse live date %q: %w", s, err)
	}
	return t, nil
}

// FormatLiveDate renders a time as a YYYY-MM-DD live date.
func FormatLiveDate(t time.Time) string {
	return t.Format(liveDateLayout)
}

// DateKey builds the bucket key for a calendar day. The key is the canonical
// live-date string, so an item's key is always derivable from its LiveDate.
func DateKey(year int, month time.Month, day int) string {
	return fmt.Sprintf("%04d-%02d-%02d", year, int(month), day)
}

// KeyForLiveDate derives the bucket key for a live date string, normalizing it
// through a parse so malformed dates are rejected rather than silently bucketed.
func KeyForLiveDate(liveDate string) (string, error) {
	t, err := ParseLiveDate(liveDate)
	if err != nil {
		return "", err
	}
	return FormatLiveDate(t), nil
}

// MonthYear renders the MM-YYYY query parameter used by the remote store.
func MonthYear(month time.Month, year int) string {
	return fmt.Sprintf("%02d-%04d", int(month), year)
}

// InMonth reports whether the live date falls inside the given month and year.
func InMonth(liveDate string, month time.Month, year int) bool {
	t, err := ParseLiveDate(liveDate)
	if err != nil {
		return false
	}
	return t.Month() == month && t.Year() == year
}

// DaysIn returns the number of days in a month.
func DaysIn(month time.Month, year int) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
