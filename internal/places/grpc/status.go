package grpc

import (
	"context"
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/dwikikusuma/laundry-pickup/internal/places/app"
	"github.com/dwikikusuma/laundry-pickup/internal/places/infra/google"
)

// Status translates a search error into a gRPC status error.
func Status(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, app.ErrEmptyQuery), errors.Is(err, app.ErrQueryTooShort):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, app.ErrNoResults):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, app.ErrStale):
		return status.Error(codes.Aborted, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	case errors.Is(err, google.ErrStatus):
		return status.Error(codes.Unavailable, err.Error())
	default:
		return status.Errorf(codes.Internal, "places: %v", err)
	}
}
