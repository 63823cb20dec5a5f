package app

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/dwikikusuma/laundry-pickup/internal/checkout/domain"
	"github.com/dwikikusuma/laundry-pickup/pkg/logger"
)

type CartReader interface {
	// Load refreshes the cart from the order service.
	Load(ctx context.Context) error
	Totals() CartTotals
	Checkout(pickupAddress string) (domain.Payment, error)
}

type CartTotals struct {
	OrderID   string
	ItemCount int
	TotalPay  string
}

type AddressReader interface {
	// LoadRegistered refreshes the registered pickup address.
	LoadRegistered(ctx context.Context) error
	Selected() string
}

type Service struct {
	Cart    CartReader
	Address AddressReader

	log *slog.Logger
}

func NewService(cart CartReader, address AddressReader, log *slog.Logger) *Service {
	return &Service{
		Cart:    cart,
		Address: address,
		log:     logger.OrDefault(log).With("component", "checkout"),
	}
}

// Open loads the cart and the registered address side by side, the way
// the cart screen does on mount.
func (s *Service) Open(ctx context.Context) (domain.Summary, error) {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return s.Cart.Load(ctx) })
	g.Go(func() error { return s.Address.LoadRegistered(ctx) })

	if err := g.Wait(); err != nil {
		return domain.Summary{}, err
	}

	t := s.Cart.Totals()
	sum := domain.Summary{
		OrderID:       t.OrderID,
		ItemCount:     t.ItemCount,
		TotalPay:      t.TotalPay,
		PickupAddress: s.Address.Selected(),
	}
	s.log.Debug("cart screen opened",
		slog.String("order_id", sum.OrderID),
		slog.Int("items", sum.ItemCount),
	)
	return sum, nil
}

// Pay hands the bill total and the selected pickup address to payment.
func (s *Service) Pay(ctx context.Context) (domain.Payment, error) {
	if err := ctx.Err(); err != nil {
		return domain.Payment{}, err
	}
	return s.Cart.Checkout(s.Address.Selected())
}
