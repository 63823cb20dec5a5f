package grpc

import (
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/dwikikusuma/laundry-pickup/internal/address/domain"
	locationdomain "github.com/dwikikusuma/laundry-pickup/internal/location/domain"
)

// Status translates an address error into a gRPC status error.
func Status(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, domain.ErrInvalidDetails), errors.Is(err, domain.ErrEmptyAddress):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, domain.ErrUnknownAddress):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, locationdomain.ErrPermissionDenied):
		return status.Error(codes.PermissionDenied, err.Error())
	case errors.Is(err, locationdomain.ErrNoPosition):
		return status.Error(codes.Unavailable, err.Error())
	default:
		return status.Errorf(codes.Internal, "address: %v", err)
	}
}
