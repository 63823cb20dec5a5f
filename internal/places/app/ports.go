package app

import (
	"context"

	"github.com/dwikikusuma/laundry-pickup/internal/places/domain"
)

// Autocompleter returns predictions for free text. A successful answer
// with no matches is an empty slice and a nil error.
type Autocompleter interface {
	Autocomplete(ctx context.Context, query, sessionToken string) ([]domain.Prediction, error)
}

type DetailsFetcher interface {
	Details(ctx context.Context, placeID, sessionToken string) (domain.Details, error)
}
