package domain

import (
	"strconv"
	"time"
)

// Line is one row of the visible cart.
type Line struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	UnitPrice float64 `json:"unitPrice"`
	Qty       int     `json:"qty"`
}

func (l Line) Subtotal() float64 {
	return l.UnitPrice * float64(l.Qty)
}

// Bill is the summary shown under the cart. Handling and delivery are
// not charged yet and stay at zero.
type Bill struct {
	ItemTotal      float64 `json:"itemTotal"`
	HandlingCharge float64 `json:"handlingCharge"`
	DeliveryCharge float64 `json:"deliveryCharge"`
	TotalPay       float64 `json:"totalPay"`
}

func NewBill(lines []Line) Bill {
	var itemTotal float64
	for _, l := range lines {
		itemTotal += l.Subtotal()
	}

	b := Bill{ItemTotal: itemTotal}
	b.TotalPay = b.ItemTotal + b.HandlingCharge + b.DeliveryCharge
	return b
}

// PaymentHandoff is passed to the payment step.
type PaymentHandoff struct {
	TotalPay      string `json:"totalPay"`
	PickupAddress string `json:"pickupAddress"`
}

func FormatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// PickupSchedule combines the separately picked date and clock time.
type PickupSchedule struct {
	Date time.Time `json:"date"`
	Time time.Time `json:"time"`
}

func (s PickupSchedule) At() time.Time {
	y, m, d := s.Date.Date()
	return time.Date(y, m, d, s.Time.Hour(), s.Time.Minute(), 0, 0, s.Date.Location())
}

// WithoutEmpty drops lines whose quantity reached zero. The input slice
// is not modified.
func WithoutEmpty(lines []Line) []Line {
	out := make([]Line, 0, len(lines))
	for _, l := range lines {
		if l.Qty > 0 {
			out = append(out, l)
		}
	}
	return out
}

func Clone(lines []Line) []Line {
	if lines == nil {
		return nil
	}
	out := make([]Line, len(lines))
	copy(out, lines)
	return out
}
