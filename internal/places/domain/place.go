package domain

import (
	"slices"
	"strings"
)

type Prediction struct {
	PlaceID       string `json:"placeId"`
	Description   string `json:"description"`
	MainText      string `json:"mainText"`
	SecondaryText string `json:"secondaryText,omitempty"`
}

// Title is what a result row shows; predictions without structured
// formatting fall back to the description.
func (p Prediction) Title() string {
	if p.MainText != "" {
		return p.MainText
	}
	return p.Description
}

// Component kinds the details scan recognises.
const (
	KindState      = "administrative_area_level_1"
	KindDistrict   = "administrative_area_level_2"
	KindLocality   = "locality"
	KindPostalCode = "postal_code"
)

type AddressComponent struct {
	LongName  string   `json:"long_name"`
	ShortName string   `json:"short_name"`
	Types     []string `json:"types"`
}

func (c AddressComponent) Is(kind string) bool {
	return slices.Contains(c.Types, kind)
}

type Details struct {
	PlaceID          string             `json:"placeId"`
	Latitude         float64            `json:"latitude"`
	Longitude        float64            `json:"longitude"`
	FormattedAddress string             `json:"formattedAddress"`
	Components       []AddressComponent `json:"components"`
}

type Region struct {
	State      string
	District   string
	PostalCode string
}

// Region scans the components once. A level-2 area always wins as the
// district; a locality only fills the district while none is known.
func (d Details) Region() Region {
	var r Region
	for _, c := range d.Components {
		switch {
		case c.Is(KindState):
			r.State = c.LongName
		case c.Is(KindDistrict):
			r.District = c.LongName
		case c.Is(KindLocality) && r.District == "":
			r.District = c.LongName
		case c.Is(KindPostalCode):
			r.PostalCode = c.LongName
		}
	}
	return r
}

// ShortNames joins every component's short name, in order.
func (d Details) ShortNames() string {
	names := make([]string, 0, len(d.Components))
	for _, c := range d.Components {
		names = append(names, c.ShortName)
	}
	return strings.Join(names, ", ")
}
