package wishlist

import (
	"github.com/google/uuid"
)

// IDsPage is one cursor page of liked product ids.
type IDsPage struct {
	ProductIDs []uuid.UUID `json:"product_ids"`
	Total      int64       `json:"total"`
	NextCursor string      `json:"next_cursor,omitempty"`
}

// Contains reports whether the product id appears in the fetched set. Pure
// lookup; callers refresh the set themselves when staleness matters.
func Contains(ids []uuid.UUID, productID uuid.UUID) bool {
	for _, id := range ids {
		if id == productID {
			return true
		}
	}
	return false
}
