package models

// PendingSummary is a derived, point-in-time aggregate of not-yet-delivered
// documents per category for the current account. It is recomputed on demand
// from storage, never maintained incrementally, so it cannot drift.
type PendingSummary struct {
	OrdersCount    int `json:"orders_count"`
	CashCount      int `json:"cash_count"`
	ImagesCount    int `json:"images_count"`
	LocationsCount int `json:"locations_count"`
}

// Total returns the number of pending documents across all categories.
func (s PendingSummary) Total() int {
	return s.OrdersCount + s.CashCount + s.ImagesCount + s.LocationsCount
}

// HasPendingData reports whether at least one document awaits delivery.
func (s PendingSummary) HasPendingData() bool {
	return s.Total() > 0
}

// Count returns the summary value for a single category.
func (s PendingSummary) Count(category DocumentCategory) int {
	switch category {
	case CategoryOrders:
		return s.OrdersCount
	case CategoryCash:
		return s.CashCount
	case CategoryImages:
		return s.ImagesCount
	case CategoryLocations:
		return s.LocationsCount
	}
	return 0
}
