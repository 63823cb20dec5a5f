package grpc

import (
	"context"
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/dwikikusuma/laundry-pickup/internal/cart/app"
)

// Status translates a cart error into a gRPC status error. Nil stays nil.
func Status(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, app.ErrLineNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, app.ErrUpdateInFlight):
		return status.Error(codes.Aborted, err.Error())
	case errors.Is(err, app.ErrAuthRequired):
		return status.Error(codes.Unauthenticated, err.Error())
	case errors.Is(err, app.ErrRolledBack):
		return status.Error(codes.Unavailable, err.Error())
	case errors.Is(err, app.ErrEmptyCart), errors.Is(err, app.ErrNoPickupAddress):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	default:
		return status.Errorf(codes.Internal, "cart: %v", err)
	}
}
