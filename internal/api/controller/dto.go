package controller

import (
	"time"

	"github.com/oakline/planboard/internal/content"
)

// LoadScopeRequest selects the calendar window (and optionally switches brand).
type LoadScopeRequest struct {
	Brand string `json:"brand" validate:"required"`
	Month int    `json:"month" validate:"required,min=1,max=12"`
	Year  int    `json:"year" validate:"required,min=1970,max=9999"`
}

// MoveRequest is a drag-drop target cell.
type MoveRequest struct {
	Day   int `json:"day" validate:"required,min=1,max=31"`
	Month int `json:"month" validate:"required,min=1,max=12"`
	Year  int `json:"year" validate:"required,min=1970,max=9999"`
}

// EditRequest is a partial content update.
type EditRequest struct {
	ContentName *string `json:"content_name"`
	FormatType  *string `json:"format_type"`
	Status      *string `json:"status"`
	TaskStatus  *string `json:"task_status"`
	TaskID      *string `json:"task_id"`
	LiveDate    *string `json:"live_date"`
}

// Patch extracts the in-place fields (everything but the live date).
func (r EditRequest) Patch() content.Patch {
	return content.Patch{
		ContentName: r.ContentName,
		FormatType:  r.FormatType,
		Status:      r.Status,
		TaskStatus:  r.TaskStatus,
		TaskID:      r.TaskID,
	}
}

// DragStartRequest identifies the item being picked up.
type DragStartRequest struct {
	ID string `json:"id" validate:"required"`
}

// FilterRequest replaces facet selections. A present-but-empty list is an
// explicit "select nothing"; an absent list leaves that selection untouched.
type FilterRequest struct {
	Formats         *[]string `json:"formats"`
	ContentStatuses *[]string `json:"content_statuses"`
	TaskStatuses    *[]string `json:"task_statuses"`
}

// DayView is one calendar cell in a month response.
type DayView struct {
	Date  string         `json:"date"`
	Items []content.Item `json:"items"`
}

// MonthView is the filtered calendar for the loaded scope.
type MonthView struct {
	Brand string    `json:"brand"`
	Month int       `json:"month"`
	Year  int       `json:"year"`
	Days  []DayView `json:"days"`
	Total int       `json:"total"`
}

func monthOf(m int) time.Month {
	return time.Month(m)
}
