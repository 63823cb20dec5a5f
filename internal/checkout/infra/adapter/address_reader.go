package adapter

import (
	"context"

	addressapp "github.com/dwikikusuma/laundry-pickup/internal/address/app"
)

type AddressServiceReader struct {
	svc *addressapp.Service
}

func NewAddressServiceReader(svc *addressapp.Service) *AddressServiceReader {
	return &AddressServiceReader{svc: svc}
}

func (r *AddressServiceReader) LoadRegistered(ctx context.Context) error {
	r.svc.LoadRegistered(ctx)
	return nil
}

func (r *AddressServiceReader) Selected() string {
	return r.svc.Selected()
}
