package app

import (
	"context"

	"github.com/dwikikusuma/laundry-pickup/internal/cart/domain"
)

// OrderService is the remote source of truth for the cart.
type OrderService interface {
	// FetchPendingOrder returns nil when the user has no pending order.
	FetchPendingOrder(ctx context.Context) (*domain.PendingOrder, error)
	// UpdateCart returns nil when the service answered without a body.
	UpdateCart(ctx context.Context, userID string, items []domain.CartUpdate) (*domain.CartSnapshot, error)
	// CurrentUserID returns "" when nobody is signed in.
	CurrentUserID(ctx context.Context) (string, error)
}
