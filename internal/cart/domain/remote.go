package domain

import "strconv"

// RemoteItem is an order item as the order service and the catalog
// screen send it. Several optional fields name the same concept;
// Normalize resolves them.
type RemoteItem struct {
	ID         *string  `json:"id,omitempty"`
	ItemName   string   `json:"item_name,omitempty"`
	Name       string   `json:"name,omitempty"`
	UnitPrice  *float64 `json:"unit_price,omitempty"`
	Price      *float64 `json:"price,omitempty"`
	FinalPrice *float64 `json:"finalPrice,omitempty"`
	Quantity   *int     `json:"quantity,omitempty"`
	Qty        *int     `json:"qty,omitempty"`
}

type PendingOrder struct {
	ID    string       `json:"id"`
	Items []RemoteItem `json:"items"`
}

// CartSnapshot is the reply to a cart update. A nil Items means the
// service answered without an item collection.
type CartSnapshot struct {
	Items []RemoteItem `json:"items"`
}

// CartUpdate is the single changed line sent to the order service.
// Quantity zero asks the service to remove the item.
type CartUpdate struct {
	ItemName string  `json:"item_name"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
}

func UpdateFor(l Line) CartUpdate {
	return CartUpdate{ItemName: l.Name, Price: l.UnitPrice, Quantity: l.Qty}
}

// Normalize maps a remote item onto a Line. Precedence:
//
//	name:       item_name, name
//	unit price: unit_price, price, finalPrice, else 0
//	quantity:   quantity, qty, else 1
//	id:         id, else fallbackID
//
// Negative prices and quantities are clamped to zero.
func Normalize(it RemoteItem, fallbackID string) Line {
	l := Line{
		ID:   fallbackID,
		Name: it.ItemName,
		Qty:  1,
	}
	if it.ID != nil && *it.ID != "" {
		l.ID = *it.ID
	}
	if l.Name == "" {
		l.Name = it.Name
	}

	switch {
	case it.UnitPrice != nil:
		l.UnitPrice = *it.UnitPrice
	case it.Price != nil:
		l.UnitPrice = *it.Price
	case it.FinalPrice != nil:
		l.UnitPrice = *it.FinalPrice
	}
	if l.UnitPrice < 0 {
		l.UnitPrice = 0
	}

	switch {
	case it.Quantity != nil:
		l.Qty = *it.Quantity
	case it.Qty != nil:
		l.Qty = *it.Qty
	}
	if l.Qty < 0 {
		l.Qty = 0
	}

	return l
}

// PositionalLines normalizes items handed over without ids; lines are
// numbered from 1 in order. Repeated ids are made unique.
func PositionalLines(items []RemoteItem) []Line {
	lines := make([]Line, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	for i, it := range items {
		l := Normalize(it, strconv.Itoa(i+1))
		l.ID = claimID(seen, l.ID, len(lines)+1)
		lines = append(lines, l)
	}
	return WithoutEmpty(lines)
}

// ReconcileLines turns a server snapshot into lines. Items without an id
// keep the id of the current line carrying the same name, so a confirmed
// line does not change identity; otherwise the item name is the id.
func ReconcileLines(items []RemoteItem, current []Line) []Line {
	byName := make(map[string]string, len(current))
	for _, l := range current {
		if _, ok := byName[l.Name]; !ok {
			byName[l.Name] = l.ID
		}
	}

	lines := make([]Line, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	for _, it := range items {
		name := it.ItemName
		if name == "" {
			name = it.Name
		}
		fallback, ok := byName[name]
		if !ok {
			fallback = name
		}
		l := Normalize(it, fallback)
		l.ID = claimID(seen, l.ID, len(lines)+1)
		lines = append(lines, l)
	}
	return WithoutEmpty(lines)
}

// claimID returns id, or id suffixed "#n" with n counting up from pos
// until it is not in seen, and records the result.
func claimID(seen map[string]struct{}, id string, pos int) string {
	candidate := id
	for n := pos; ; n++ {
		if _, taken := seen[candidate]; !taken {
			break
		}
		candidate = id + "#" + strconv.Itoa(n)
	}
	seen[candidate] = struct{}{}
	return candidate
}
