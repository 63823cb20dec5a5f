package app

import (
	"context"

	"github.com/dwikikusuma/laundry-pickup/internal/location/domain"
)

// Locator reads the device position at a requested accuracy tier. It
// returns domain.ErrPermissionDenied when the user refused access.
type Locator interface {
	CurrentPosition(ctx context.Context, tier domain.Accuracy) (domain.Position, error)
}

// ReverseGeocoder names a coordinate, best guess first.
type ReverseGeocoder interface {
	ReverseGeocode(ctx context.Context, at domain.Coordinate) ([]domain.Placemark, error)
}
