package grpc

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/dwikikusuma/laundry-pickup/internal/places/app"
	"github.com/dwikikusuma/laundry-pickup/internal/places/infra/google"
)

func TestStatus(t *testing.T) {
	assert.NoError(t, Status(nil))

	tests := []struct {
		err  error
		want codes.Code
	}{
		{app.ErrEmptyQuery, codes.InvalidArgument},
		{app.ErrQueryTooShort, codes.InvalidArgument},
		{app.ErrNoResults, codes.NotFound},
		{app.ErrStale, codes.Aborted},
		{fmt.Errorf("autocomplete: %w", context.DeadlineExceeded), codes.DeadlineExceeded},
		{fmt.Errorf("place details p1: %w", &google.StatusError{Op: "details", Status: "NOT_FOUND"}), codes.Unavailable},
		{errors.New("boom"), codes.Internal},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.want, status.Code(Status(tt.err)))
		})
	}
}
