package grpc

import (
	"context"
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	cartgrpc "github.com/dwikikusuma/laundry-pickup/internal/cart/grpc"
)

// Status translates a checkout error. Cart rules decide everything except
// a cancelled request.
func Status(err error) error {
	if errors.Is(err, context.Canceled) {
		return status.Error(codes.Canceled, err.Error())
	}
	return cartgrpc.Status(err)
}
