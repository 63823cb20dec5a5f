package geocode

import (
	"context"

	"github.com/dwikikusuma/laundry-pickup/internal/location/domain"
	placesdomain "github.com/dwikikusuma/laundry-pickup/internal/places/domain"
)

// PlacesGeocoder is satisfied by the places web-service client.
type PlacesGeocoder interface {
	ReverseGeocode(ctx context.Context, lat, lng float64) ([]placesdomain.Details, error)
}

// Adapter turns geocoding results into placemarks.
type Adapter struct {
	client PlacesGeocoder
}

func NewAdapter(client PlacesGeocoder) *Adapter {
	return &Adapter{client: client}
}

func (a *Adapter) ReverseGeocode(ctx context.Context, at domain.Coordinate) ([]domain.Placemark, error) {
	results, err := a.client.ReverseGeocode(ctx, at.Latitude, at.Longitude)
	if err != nil {
		return nil, err
	}

	out := make([]domain.Placemark, 0, len(results))
	for _, d := range results {
		out = append(out, ToPlacemark(d))
	}
	return out, nil
}

// ToPlacemark maps address components onto placemark fields. The first
// component of each kind wins.
func ToPlacemark(d placesdomain.Details) domain.Placemark {
	var (
		p            domain.Placemark
		number, road string
	)
	set := func(dst *string, v string) {
		if *dst == "" {
			*dst = v
		}
	}

	for _, c := range d.Components {
		switch {
		case c.Is("premise"), c.Is("point_of_interest"), c.Is("establishment"):
			set(&p.Name, c.LongName)
		case c.Is("street_number"):
			set(&number, c.LongName)
		case c.Is("route"):
			set(&road, c.LongName)
		case c.Is("sublocality"), c.Is("sublocality_level_1"), c.Is("neighborhood"):
			set(&p.District, c.LongName)
		case c.Is(placesdomain.KindLocality):
			set(&p.City, c.LongName)
		case c.Is(placesdomain.KindDistrict):
			set(&p.Subregion, c.LongName)
		case c.Is(placesdomain.KindState):
			set(&p.Region, c.LongName)
		case c.Is(placesdomain.KindPostalCode):
			set(&p.PostalCode, c.LongName)
		case c.Is("country"):
			set(&p.Country, c.LongName)
		}
	}

	switch {
	case number != "" && road != "":
		p.Street = number + " " + road
	default:
		p.Street = road
	}
	return p
}
