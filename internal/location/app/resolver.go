package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dwikikusuma/laundry-pickup/internal/location/domain"
	placesdomain "github.com/dwikikusuma/laundry-pickup/internal/places/domain"
	"github.com/dwikikusuma/laundry-pickup/pkg/logger"
)

// DefaultCoordinate is where the map starts when no position is known.
var DefaultCoordinate = domain.Coordinate{Latitude: 17.385, Longitude: 78.4867}

// UpgradeRadius is the accuracy in meters above which a second, finer
// reading is attempted.
const UpgradeRadius = 100.0

type Resolver struct {
	locator  Locator
	geocoder ReverseGeocoder
	fallback domain.Coordinate
	log      *slog.Logger
}

// NewResolver builds a resolver; a zero fallback means DefaultCoordinate.
func NewResolver(locator Locator, geocoder ReverseGeocoder, fallback domain.Coordinate, log *slog.Logger) *Resolver {
	if fallback == (domain.Coordinate{}) {
		fallback = DefaultCoordinate
	}
	return &Resolver{
		locator:  locator,
		geocoder: geocoder,
		fallback: fallback,
		log:      logger.OrDefault(log).With("component", "location"),
	}
}

// FromDevice resolves the device position. A coarse first reading is
// retried at the highest tier and replaced only by a strictly better
// one. Permission denial aborts; any other positioning failure falls
// back to the default coordinate.
func (r *Resolver) FromDevice(ctx context.Context) (domain.Resolved, error) {
	pos, err := r.locator.CurrentPosition(ctx, domain.AccuracyBestForNavigation)
	if errors.Is(err, domain.ErrPermissionDenied) {
		return domain.Resolved{}, err
	}
	if err != nil {
		r.log.Warn("device position unavailable, using default", slog.Any("err", err))
		return r.resolve(ctx, r.fallback), nil
	}

	if pos.Radius() > UpgradeRadius {
		better, err := r.locator.CurrentPosition(ctx, domain.AccuracyHighest)
		switch {
		case err != nil:
			r.log.Debug("accuracy upgrade failed", slog.Any("err", err))
		case better.Radius() < pos.Radius():
			pos = better
		}
	}
	return r.resolve(ctx, pos.Coordinate), nil
}

// OnRegionChange names the map center after the user settles a pan.
func (r *Resolver) OnRegionChange(ctx context.Context, at domain.Coordinate) domain.Resolved {
	return r.resolve(ctx, at)
}

// FromPlace normalizes a place picked from search.
func (r *Resolver) FromPlace(d placesdomain.Details) domain.Resolved {
	return domain.FromPlace(d)
}

// CurrentAddress is the one-line address of a balanced-accuracy fix.
// Unlike FromDevice it has no fallback coordinate.
func (r *Resolver) CurrentAddress(ctx context.Context) (string, error) {
	pos, err := r.locator.CurrentPosition(ctx, domain.AccuracyBalanced)
	if err != nil {
		return "", fmt.Errorf("current position: %w", err)
	}

	marks, err := r.geocoder.ReverseGeocode(ctx, pos.Coordinate)
	if err != nil {
		return "", fmt.Errorf("reverse geocode: %w", err)
	}
	if len(marks) > 0 {
		if full := marks[0].FullAddress(); full != "" {
			return full, nil
		}
	}
	return pos.Coordinate.Label(), nil
}

// resolve never fails: an unnamed coordinate still resolves.
func (r *Resolver) resolve(ctx context.Context, at domain.Coordinate) domain.Resolved {
	marks, err := r.geocoder.ReverseGeocode(ctx, at)
	if err != nil {
		r.log.Warn("reverse geocode failed",
			slog.Float64("lat", at.Latitude),
			slog.Float64("lng", at.Longitude),
			slog.Any("err", err),
		)
		return domain.FromPlacemark(at, nil)
	}
	if len(marks) == 0 {
		return domain.FromPlacemark(at, nil)
	}
	return domain.FromPlacemark(at, &marks[0])
}
