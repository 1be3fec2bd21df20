package dto

import (
	"fmt"

	"github.com/allisson/parceltrack/internal/tracking/domain"
)

// HistoryListResponse wraps history entries.
type HistoryListResponse struct {
	Items []*domain.HistoryEntry `json:"items"`
	Total int                    `json:"total"`
}

// ClearHistoryResponse reports how many entries were deleted.
type ClearHistoryResponse struct {
	Message string `json:"message"`
	Count   int64  `json:"count"`
}

// RefreshResponse acknowledges a manual reconciliation request.
type RefreshResponse struct {
	Message string `json:"message"`
}

// MapHistoryToListResponse converts history entries to an API response.
func MapHistoryToListResponse(entries []*domain.HistoryEntry) HistoryListResponse {
	if entries == nil {
		entries = []*domain.HistoryEntry{}
	}
	return HistoryListResponse{
		Items: entries,
		Total: len(entries),
	}
}

// MapClearHistoryResponse builds the response of a history wipe.
func MapClearHistoryResponse(count int64) ClearHistoryResponse {
	return ClearHistoryResponse{
		Message: fmt.Sprintf("Deleted %d tracking history entries", count),
		Count:   count,
	}
}
