package google

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/dwikikusuma/laundry-pickup/internal/places/domain"
)

var ErrStatus = errors.New("places api status")

// StatusError carries a non-OK status of the Places web service.
type StatusError struct {
	Op      string
	Status  string
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("places %s: %s", e.Op, e.Status)
	}
	return fmt.Sprintf("places %s: %s: %s", e.Op, e.Status, e.Message)
}

func (e *StatusError) Is(target error) bool { return target == ErrStatus }

type Config struct {
	BaseURL string
	APIKey  string
	// Country biases autocomplete, e.g. "in". Empty disables the bias.
	Country string
	// RPS caps outgoing requests per second; zero means unlimited.
	RPS     float64
	Timeout time.Duration
}

// Client calls the Places autocomplete, details and geocoding endpoints.
type Client struct {
	base    string
	key     string
	country string
	http    *http.Client
	limiter *rate.Limiter
}

func NewClient(cfg Config, hc *http.Client) *Client {
	if hc == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		hc = &http.Client{Timeout: timeout}
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if cfg.RPS > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RPS), max(1, int(cfg.RPS)))
	}

	return &Client{
		base:    strings.TrimRight(cfg.BaseURL, "/"),
		key:     cfg.APIKey,
		country: cfg.Country,
		http:    hc,
		limiter: limiter,
	}
}

type prediction struct {
	PlaceID              string `json:"place_id"`
	Description          string `json:"description"`
	StructuredFormatting *struct {
		MainText      string `json:"main_text"`
		SecondaryText string `json:"secondary_text"`
	} `json:"structured_formatting"`
}

type place struct {
	PlaceID          string `json:"place_id"`
	FormattedAddress string `json:"formatted_address"`
	Geometry         struct {
		Location struct {
			Lat float64 `json:"lat"`
			Lng float64 `json:"lng"`
		} `json:"location"`
	} `json:"geometry"`
	AddressComponents []domain.AddressComponent `json:"address_components"`
}

func (p place) toDomain() domain.Details {
	return domain.Details{
		PlaceID:          p.PlaceID,
		Latitude:         p.Geometry.Location.Lat,
		Longitude:        p.Geometry.Location.Lng,
		FormattedAddress: p.FormattedAddress,
		Components:       p.AddressComponents,
	}
}

func (c *Client) Autocomplete(ctx context.Context, query, sessionToken string) ([]domain.Prediction, error) {
	q := url.Values{}
	q.Set("input", query)
	if c.country != "" {
		q.Set("components", "country:"+c.country)
	}
	if sessionToken != "" {
		q.Set("sessiontoken", sessionToken)
	}

	var res struct {
		Status       string       `json:"status"`
		ErrorMessage string       `json:"error_message"`
		Predictions  []prediction `json:"predictions"`
	}
	if err := c.get(ctx, "autocomplete", "/place/autocomplete/json", q, &res); err != nil {
		return nil, err
	}

	switch res.Status {
	case "OK", "ZERO_RESULTS":
	default:
		return nil, &StatusError{Op: "autocomplete", Status: res.Status, Message: res.ErrorMessage}
	}

	out := make([]domain.Prediction, 0, len(res.Predictions))
	for _, p := range res.Predictions {
		dp := domain.Prediction{PlaceID: p.PlaceID, Description: p.Description}
		if sf := p.StructuredFormatting; sf != nil {
			dp.MainText = sf.MainText
			dp.SecondaryText = sf.SecondaryText
		}
		out = append(out, dp)
	}
	return out, nil
}

func (c *Client) Details(ctx context.Context, placeID, sessionToken string) (domain.Details, error) {
	q := url.Values{}
	q.Set("place_id", placeID)
	q.Set("fields", "geometry,formatted_address,address_components")
	if sessionToken != "" {
		q.Set("sessiontoken", sessionToken)
	}

	var res struct {
		Status       string `json:"status"`
		ErrorMessage string `json:"error_message"`
		Result       place  `json:"result"`
	}
	if err := c.get(ctx, "details", "/place/details/json", q, &res); err != nil {
		return domain.Details{}, err
	}
	if res.Status != "OK" {
		return domain.Details{}, &StatusError{Op: "details", Status: res.Status, Message: res.ErrorMessage}
	}

	d := res.Result.toDomain()
	if d.PlaceID == "" {
		d.PlaceID = placeID
	}
	return d, nil
}

// ReverseGeocode lists the places at a coordinate, best match first.
// No match is an empty slice.
func (c *Client) ReverseGeocode(ctx context.Context, lat, lng float64) ([]domain.Details, error) {
	q := url.Values{}
	q.Set("latlng", strconv.FormatFloat(lat, 'f', -1, 64)+","+strconv.FormatFloat(lng, 'f', -1, 64))

	var res struct {
		Status       string  `json:"status"`
		ErrorMessage string  `json:"error_message"`
		Results      []place `json:"results"`
	}
	if err := c.get(ctx, "reverse geocode", "/geocode/json", q, &res); err != nil {
		return nil, err
	}

	switch res.Status {
	case "OK", "ZERO_RESULTS":
	default:
		return nil, &StatusError{Op: "reverse geocode", Status: res.Status, Message: res.ErrorMessage}
	}

	out := make([]domain.Details, 0, len(res.Results))
	for _, p := range res.Results {
		out = append(out, p.toDomain())
	}
	return out, nil
}

func (c *Client) get(ctx context.Context, op, path string, q url.Values, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("places %s: %w", op, err)
	}

	q.Set("key", c.key)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+path+"?"+q.Encode(), nil)
	if err != nil {
		return fmt.Errorf("places %s: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("places %s: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("places %s: http status %d", op, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("places %s: decode: %w", op, err)
	}
	return nil
}
