package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/dwikikusuma/laundry-pickup/internal/places/domain"
	"github.com/dwikikusuma/laundry-pickup/pkg/logger"
)

var (
	ErrEmptyQuery    = errors.New("search query is empty")
	ErrQueryTooShort = errors.New("search query is too short")
	ErrNoResults     = errors.New("no places found")
	ErrStale         = errors.New("search superseded by newer input")
)

type State string

const (
	StateIdle       State = "idle"
	StateDebouncing State = "debouncing"
	StateFetching   State = "fetching"
	StateReady      State = "ready"
	StateError      State = "error"
)

type Session struct {
	Query       string              `json:"query"`
	Predictions []domain.Prediction `json:"predictions"`
	Pending     bool                `json:"pending"`
	State       State               `json:"state"`
}

type Options struct {
	Debounce time.Duration
	MinQuery int
	Timeout  time.Duration
}

func (o Options) withDefaults() Options {
	if o.Debounce <= 0 {
		o.Debounce = 400 * time.Millisecond
	}
	if o.MinQuery <= 0 {
		o.MinQuery = 3
	}
	if o.Timeout <= 0 {
		o.Timeout = 10 * time.Second
	}
	return o
}

// Search turns keystrokes into autocomplete predictions.
//
// Each keystroke restarts the debounce timer; when it fires the current
// query is sent. Every keystroke also bumps a generation counter and an
// answer is applied only if no newer input arrived while it was in
// flight, so a slow stale response never replaces fresher predictions.
type Search struct {
	ac      Autocompleter
	details DetailsFetcher
	opts    Options
	log     *slog.Logger

	mu          sync.Mutex
	query       string
	predictions []domain.Prediction
	state       State
	timer       *time.Timer
	gen         uint64
	token       string
}

func NewSearch(ac Autocompleter, details DetailsFetcher, opts Options, log *slog.Logger) *Search {
	return &Search{
		ac:      ac,
		details: details,
		opts:    opts.withDefaults(),
		log:     logger.OrDefault(log).With("component", "place_search"),
		state:   StateIdle,
		token:   uuid.NewString(),
	}
}

// Type records the new query text.
func (s *Search) Type(query string) Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.query = query
	s.gen++
	s.stopTimerLocked()

	if utf8.RuneCountInString(query) < s.opts.MinQuery {
		s.predictions = nil
		s.state = StateIdle
		return s.sessionLocked()
	}

	gen := s.gen
	s.state = StateDebouncing
	s.timer = time.AfterFunc(s.opts.Debounce, func() { s.fire(gen) })
	return s.sessionLocked()
}

func (s *Search) fire(gen uint64) {
	s.mu.Lock()
	if gen != s.gen {
		s.mu.Unlock()
		return
	}
	query, token := s.query, s.token
	s.state = StateFetching
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), s.opts.Timeout)
	defer cancel()

	preds, err := s.ac.Autocomplete(ctx, query, token)
	s.apply(gen, query, preds, err)
}

// apply stores an autocomplete answer for generation gen and reports
// whether it was still current.
func (s *Search) apply(gen uint64, query string, preds []domain.Prediction, err error) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.gen {
		s.log.Debug("discarding stale predictions", slog.String("query", query))
		return false
	}
	if err != nil {
		s.log.Warn("autocomplete failed", slog.String("query", query), slog.Any("err", err))
		s.predictions = nil
		s.state = StateError
		return true
	}

	if preds == nil {
		preds = []domain.Prediction{}
	}
	s.predictions = preds
	s.state = StateReady
	return true
}

// Submit resolves the first prediction. Without predictions it runs one
// autocomplete request for the current query first.
func (s *Search) Submit(ctx context.Context) (domain.Details, error) {
	s.mu.Lock()
	query := s.query
	if strings.TrimSpace(query) == "" {
		s.mu.Unlock()
		return domain.Details{}, ErrEmptyQuery
	}
	if len(s.predictions) > 0 {
		first := s.predictions[0]
		s.mu.Unlock()
		return s.Select(ctx, first)
	}
	if utf8.RuneCountInString(query) < s.opts.MinQuery {
		s.mu.Unlock()
		return domain.Details{}, ErrQueryTooShort
	}

	s.stopTimerLocked()
	s.gen++
	gen, token := s.gen, s.token
	s.state = StateFetching
	s.mu.Unlock()

	preds, err := s.ac.Autocomplete(ctx, query, token)
	if !s.apply(gen, query, preds, err) {
		return domain.Details{}, ErrStale
	}
	if err != nil {
		return domain.Details{}, fmt.Errorf("autocomplete %q: %w", query, err)
	}
	if len(preds) == 0 {
		return domain.Details{}, ErrNoResults
	}
	return s.Select(ctx, preds[0])
}

// Select looks up the place behind a prediction. On success the search
// is reset and a fresh session token is issued.
func (s *Search) Select(ctx context.Context, p domain.Prediction) (domain.Details, error) {
	s.mu.Lock()
	token := s.token
	s.mu.Unlock()

	d, err := s.details.Details(ctx, p.PlaceID, token)
	if err != nil {
		s.log.Warn("place details failed", slog.String("place_id", p.PlaceID), slog.Any("err", err))
		return domain.Details{}, fmt.Errorf("place details %s: %w", p.PlaceID, err)
	}
	if d.PlaceID == "" {
		d.PlaceID = p.PlaceID
	}

	s.Close()
	return d, nil
}

// Prediction finds a prediction of the current result list by id.
func (s *Search) Prediction(placeID string) (domain.Prediction, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.predictions {
		if p.PlaceID == placeID {
			return p, true
		}
	}
	return domain.Prediction{}, false
}

// Close clears the query and predictions and abandons pending work.
func (s *Search) Close() Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopTimerLocked()
	s.gen++
	s.query = ""
	s.predictions = nil
	s.state = StateIdle
	s.token = uuid.NewString()
	return s.sessionLocked()
}

func (s *Search) Snapshot() Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessionLocked()
}

func (s *Search) stopTimerLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

func (s *Search) sessionLocked() Session {
	preds := make([]domain.Prediction, len(s.predictions))
	copy(preds, s.predictions)
	return Session{
		Query:       s.query,
		Predictions: preds,
		Pending:     s.state == StateDebouncing || s.state == StateFetching,
		State:       s.state,
	}
}
