package adapter

import (
	"context"

	cartapp "github.com/dwikikusuma/laundry-pickup/internal/cart/app"
	cartdomain "github.com/dwikikusuma/laundry-pickup/internal/cart/domain"
	checkoutapp "github.com/dwikikusuma/laundry-pickup/internal/checkout/app"
	checkoutdomain "github.com/dwikikusuma/laundry-pickup/internal/checkout/domain"
)

type CartServiceReader struct {
	svc *cartapp.Service
}

func NewCartServiceReader(svc *cartapp.Service) *CartServiceReader {
	return &CartServiceReader{svc: svc}
}

// Load never fails; the cart keeps its lines when the order service is
// unreachable.
func (r *CartServiceReader) Load(ctx context.Context) error {
	r.svc.Load(ctx)
	return nil
}

func (r *CartServiceReader) Totals() checkoutapp.CartTotals {
	lines := r.svc.Lines()

	var count int
	for _, l := range lines {
		count += l.Qty
	}
	return checkoutapp.CartTotals{
		OrderID:   r.svc.OrderID(),
		ItemCount: count,
		TotalPay:  cartdomain.FormatAmount(r.svc.Bill().TotalPay),
	}
}

func (r *CartServiceReader) Checkout(pickupAddress string) (checkoutdomain.Payment, error) {
	h, err := r.svc.Checkout(pickupAddress)
	if err != nil {
		return checkoutdomain.Payment{}, err
	}
	return checkoutdomain.Payment{TotalPay: h.TotalPay, PickupAddress: h.PickupAddress}, nil
}
