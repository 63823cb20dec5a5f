package domain

import (
	"errors"
	"fmt"
	"strings"

	placesdomain "github.com/dwikikusuma/laundry-pickup/internal/places/domain"
)

var (
	ErrPermissionDenied = errors.New("location permission denied")
	ErrNoPosition       = errors.New("no position available")
)

// UnknownPlace is shown when a coordinate could not be named.
const UnknownPlace = "Selected location"

type Coordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Label is the last-resort text for a coordinate nobody could name.
func (c Coordinate) Label() string {
	return fmt.Sprintf("Lat: %.5f, Lon: %.5f", c.Latitude, c.Longitude)
}

// Accuracy is the tier a position is requested at.
type Accuracy string

const (
	AccuracyBalanced          Accuracy = "balanced"
	AccuracyHigh              Accuracy = "high"
	AccuracyHighest           Accuracy = "highest"
	AccuracyBestForNavigation Accuracy = "best_for_navigation"
)

func (a Accuracy) Valid() bool {
	switch a {
	case AccuracyBalanced, AccuracyHigh, AccuracyHighest, AccuracyBestForNavigation:
		return true
	}
	return false
}

// Position is one device reading. Accuracy is the reported radius in
// meters, nil when the device did not report one.
type Position struct {
	Coordinate
	Accuracy *float64 `json:"accuracy,omitempty"`
}

// Radius treats a missing accuracy as infinitely imprecise.
func (p Position) Radius() float64 {
	if p.Accuracy == nil {
		return maxRadius
	}
	return *p.Accuracy
}

const maxRadius = 1e308

// Placemark is the structured guess a reverse geocode returns.
type Placemark struct {
	Name       string `json:"name,omitempty"`
	Street     string `json:"street,omitempty"`
	District   string `json:"district,omitempty"`
	Subregion  string `json:"subregion,omitempty"`
	City       string `json:"city,omitempty"`
	Region     string `json:"region,omitempty"`
	PostalCode string `json:"postalCode,omitempty"`
	Country    string `json:"country,omitempty"`
}

// FullAddress joins every known part, most specific first.
func (p Placemark) FullAddress() string {
	parts := []string{p.Name, p.Street, p.Subregion, p.City, p.Region, p.PostalCode, p.Country}
	kept := parts[:0]
	for _, s := range parts {
		if strings.TrimSpace(s) != "" {
			kept = append(kept, s)
		}
	}
	return strings.Join(kept, ", ")
}

// Resolved is the one address shape both the map and the search
// produce.
type Resolved struct {
	Latitude   float64 `json:"latitude"`
	Longitude  float64 `json:"longitude"`
	MainLine   string  `json:"mainLine"`
	SubLine    string  `json:"subLine"`
	State      string  `json:"state"`
	District   string  `json:"district"`
	PostalCode string  `json:"postalCode"`
}

// FromPlacemark names a coordinate from a reverse-geocode guess; a nil
// placemark yields UnknownPlace.
func FromPlacemark(c Coordinate, p *Placemark) Resolved {
	r := Resolved{Latitude: c.Latitude, Longitude: c.Longitude, MainLine: UnknownPlace}
	if p == nil {
		return r
	}

	if main := firstNonEmpty(p.Name, p.Street); main != "" {
		r.MainLine = main
	}
	r.SubLine = joinNonEmpty(p.District, p.City, p.Region)
	r.State = p.Region
	r.District = firstNonEmpty(p.Subregion, p.City, p.District)
	r.PostalCode = p.PostalCode
	return r
}

// FromPlace normalizes place details picked from search.
func FromPlace(d placesdomain.Details) Resolved {
	region := d.Region()
	return Resolved{
		Latitude:   d.Latitude,
		Longitude:  d.Longitude,
		MainLine:   d.FormattedAddress,
		SubLine:    d.ShortNames(),
		State:      region.State,
		District:   region.District,
		PostalCode: region.PostalCode,
	}
}

// Handoff is what the address form receives.
type Handoff struct {
	Latitude   float64 `json:"latitude"`
	Longitude  float64 `json:"longitude"`
	Address    string  `json:"address"`
	SubAddress string  `json:"subAddress"`
	State      string  `json:"state"`
	District   string  `json:"district"`
	Pincode    string  `json:"pincode"`
}

func (r Resolved) Handoff() Handoff {
	return Handoff{
		Latitude:   r.Latitude,
		Longitude:  r.Longitude,
		Address:    r.MainLine,
		SubAddress: r.SubLine,
		State:      r.State,
		District:   r.District,
		Pincode:    r.PostalCode,
	}
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

func joinNonEmpty(vals ...string) string {
	kept := make([]string, 0, len(vals))
	for _, v := range vals {
		if v != "" {
			kept = append(kept, v)
		}
	}
	return strings.Join(kept, ", ")
}
