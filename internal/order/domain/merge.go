package domain

import (
	trackingDomain "github.com/allisson/parceltrack/internal/tracking/domain"
)

// MergeResult is the outcome of MergeDetailed.
type MergeResult struct {
	// Orders has one entry per input order, in input order.
	Orders []*Order
	// Applied lists the changes that matched an order.
	Applied []AppliedChange
	// Dropped lists the changes that matched no order.
	Dropped []trackingDomain.StatusChangeResult
}

// Merge applies status changes to orders and returns the merged list.
//
// A change is matched by OrderID, falling back to TrackingCode when no order has that
// OrderID. Only the tracking status fields of a matched order are overwritten. The input
// slice and its orders are never mutated: untouched orders are returned as is and touched
// orders are replaced by copies. Changes that match no order are ignored.
func Merge(current []*Order, changes []trackingDomain.StatusChangeResult) []*Order {
	return MergeDetailed(current, changes).Orders
}

// AppliedChange is a change together with the position of the order it was applied to.
type AppliedChange struct {
	Change trackingDomain.StatusChangeResult
	Index  int
}

// MergeDetailed is Merge that also reports which changes were applied or dropped.
func MergeDetailed(current []*Order, changes []trackingDomain.StatusChangeResult) MergeResult {
	merged := make([]*Order, len(current))
	copy(merged, current)

	index := NewOrderIndex(current)

	result := MergeResult{
		Applied: make([]AppliedChange, 0, len(changes)),
		Dropped: make([]trackingDomain.StatusChangeResult, 0),
	}
	copied := make(map[int]bool, len(changes))

	for _, change := range changes {
		i, _, ok := index.Match(change)
		if !ok {
			result.Dropped = append(result.Dropped, change)
			continue
		}

		if !copied[i] {
			clone := *merged[i]
			merged[i] = &clone
			copied[i] = true
		}

		timestamp := change.Timestamp
		merged[i].TrackingStatus = change.NewStatus
		merged[i].TrackingCritical = change.IsCritical
		merged[i].TrackingUpdatedAt = &timestamp

		result.Applied = append(result.Applied, AppliedChange{Change: change, Index: i})
	}

	result.Orders = merged
	return result
}

// OrderIndex resolves status changes to positions in an order list using the Merge
// matching rules. The first order wins when keys repeat.
type OrderIndex struct {
	byOrderID      map[string]int
	byTrackingCode map[string]int
}

// NewOrderIndex indexes orders by OrderID and by tracking code.
func NewOrderIndex(orders []*Order) *OrderIndex {
	index := &OrderIndex{
		byOrderID:      make(map[string]int, len(orders)),
		byTrackingCode: make(map[string]int, len(orders)),
	}
	for i := len(orders) - 1; i >= 0; i-- {
		order := orders[i]
		index.byOrderID[order.OrderID] = i
		if order.IsTracked() {
			index.byTrackingCode[order.TrackedRef().TrackingCode] = i
		}
	}
	return index
}

// Match returns the position of the order change applies to. byOrderID is false when
// the order was found through the tracking code fallback.
func (x *OrderIndex) Match(change trackingDomain.StatusChangeResult) (position int, byOrderID bool, ok bool) {
	if i, found := x.byOrderID[change.OrderID]; found {
		return i, true, true
	}
	if i, found := x.byTrackingCode[change.TrackingCode]; found {
		return i, false, true
	}
	return 0, false, false
}
