package grpc

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/dwikikusuma/laundry-pickup/internal/address/domain"
	locationdomain "github.com/dwikikusuma/laundry-pickup/internal/location/domain"
)

func TestStatus(t *testing.T) {
	assert.NoError(t, Status(nil))

	tests := []struct {
		err  error
		want codes.Code
	}{
		{fmt.Errorf("%w: pincode", domain.ErrInvalidDetails), codes.InvalidArgument},
		{domain.ErrEmptyAddress, codes.InvalidArgument},
		{domain.ErrUnknownAddress, codes.NotFound},
		{fmt.Errorf("use current location: %w", locationdomain.ErrPermissionDenied), codes.PermissionDenied},
		{locationdomain.ErrNoPosition, codes.Unavailable},
		{errors.New("boom"), codes.Internal},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.want, status.Code(Status(tt.err)))
		})
	}
}
