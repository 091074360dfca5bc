package cart

import "github.com/google/uuid"

// Line is one cart entry. Lines are keyed by (product id, color); size is
// carried along but does not participate in identity.
type Line struct {
	ProductID      uuid.UUID `json:"product_id"`
	Title          string    `json:"title"`
	UnitPriceCents int       `json:"unit_price_cents"`
	Color          string    `json:"color,omitempty"`
	Size           string    `json:"size,omitempty"`
	Qty            int       `json:"qty"`
}

// Key identifies a line within the cart.
type Key struct {
	ProductID uuid.UUID
	Color     string
}

// State is the full session cart. All reducers below return a new State and
// never mutate their input; every persisted line has Qty >= 1 and a unique key.
type State struct {
	Items []Line `json:"items"`
	Open  bool   `json:"open"`
}

func (l Line) key() Key {
	return Key{ProductID: l.ProductID, Color: l.Color}
}

// Add merges the line into an existing entry with the same key, summing
// quantities, or appends it. A non-positive quantity defaults to 1.
func Add(s State, line Line) State {
	if line.Qty <= 0 {
		line.Qty = 1
	}

	next := cloneItems(s.Items)
	for i, existing := range next {
		if existing.key() == line.key() {
			next[i].Qty += line.Qty
			return State{Items: next, Open: s.Open}
		}
	}
	return State{Items: append(next, line), Open: s.Open}
}

// SetQuantity replaces the quantity for the keyed line. A quantity <= 0
// removes the line; an unknown key is a no-op.
func SetQuantity(s State, key Key, qty int) State {
	if qty <= 0 {
		return Remove(s, key)
	}

	next := cloneItems(s.Items)
	for i, existing := range next {
		if existing.key() == key {
			next[i].Qty = qty
			return State{Items: next, Open: s.Open}
		}
	}
	return State{Items: next, Open: s.Open}
}

// Remove drops the keyed line if present.
func Remove(s State, key Key) State {
	next := make([]Line, 0, len(s.Items))
	for _, existing := range s.Items {
		if existing.key() == key {
			continue
		}
		next = append(next, existing)
	}
	return State{Items: next, Open: s.Open}
}

// Clear empties the cart. The visibility flag is preserved.
func Clear(s State) State {
	return State{Open: s.Open}
}

// Toggle flips the cart drawer visibility flag.
func Toggle(s State) State {
	return State{Items: cloneItems(s.Items), Open: !s.Open}
}

// SetOpen sets the visibility flag explicitly.
func SetOpen(s State, open bool) State {
	return State{Items: cloneItems(s.Items), Open: open}
}

// TotalItems is the sum of line quantities, recomputed on every call.
func TotalItems(s State) int {
	total := 0
	for _, line := range s.Items {
		total += line.Qty
	}
	return total
}

// TotalCents is the sum of unit price times quantity, recomputed on every call.
func TotalCents(s State) int {
	total := 0
	for _, line := range s.Items {
		total += line.UnitPriceCents * line.Qty
	}
	return total
}

func cloneItems(items []Line) []Line {
	if len(items) == 0 {
		return nil
	}
	next := make([]Line, len(items))
	copy(next, items)
	return next
}
