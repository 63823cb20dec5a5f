package app

import "context"

// RegisteredSource knows the user's registered pickup address.
type RegisteredSource interface {
	// PickupAddress returns "" when the user has none.
	PickupAddress(ctx context.Context) (string, error)
}

// CurrentLocator turns the device position into a one-line address.
type CurrentLocator interface {
	CurrentAddress(ctx context.Context) (string, error)
}
