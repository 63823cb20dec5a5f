package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/dwikikusuma/laundry-pickup/internal/address/domain"
	"github.com/dwikikusuma/laundry-pickup/pkg/logger"
)

// View is what the pickup sheet renders.
type View struct {
	Addresses []string `json:"addresses"`
	Selected  string   `json:"selected"`
}

// NewAddressHandoff is handed back to the cart after the details form.
type NewAddressHandoff struct {
	NewAddress string `json:"newAddress"`
}

type Service struct {
	registered RegisteredSource
	locator    CurrentLocator
	log        *slog.Logger

	mu   sync.Mutex
	book *domain.Book
}

func NewService(registered RegisteredSource, locator CurrentLocator, log *slog.Logger) *Service {
	return &Service{
		registered: registered,
		locator:    locator,
		log:        logger.OrDefault(log).With("component", "address"),
		book:       domain.NewBook(),
	}
}

// LoadRegistered puts the registered address first and selects it unless
// something is selected already. Failures are logged only.
func (s *Service) LoadRegistered(ctx context.Context) View {
	addr, err := s.registered.PickupAddress(ctx)
	if err != nil {
		s.log.Error("load registered address failed", slog.Any("err", err))
		return s.View()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if strings.TrimSpace(addr) == "" {
		return s.viewLocked()
	}
	if err := s.book.SetRegistered(addr); err != nil {
		return s.viewLocked()
	}
	if s.book.Selected() == "" {
		_, _ = s.book.Select(addr)
	}
	return s.viewLocked()
}

// SaveNew records an address coming back from the details form and makes
// it the active one. Blank input is ignored.
func (s *Service) SaveNew(addr string) View {
	addr = strings.TrimSpace(addr)

	s.mu.Lock()
	defer s.mu.Unlock()

	if addr == "" {
		return s.viewLocked()
	}
	_ = s.book.AddAddress(addr)
	_, _ = s.book.Select(addr)
	return s.viewLocked()
}

// UseCurrentLocation resolves the device position to an address, saves
// it and selects it.
func (s *Service) UseCurrentLocation(ctx context.Context) (View, error) {
	addr, err := s.locator.CurrentAddress(ctx)
	if err != nil {
		s.log.Warn("current location unavailable", slog.Any("err", err))
		return s.View(), fmt.Errorf("use current location: %w", err)
	}
	return s.SaveNew(addr), nil
}

func (s *Service) Select(addr string) (View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.book.Select(addr); err != nil {
		return s.viewLocked(), err
	}
	return s.viewLocked(), nil
}

// Submit validates the details form and hands the composed address back.
func (s *Service) Submit(d domain.Details) (NewAddressHandoff, error) {
	if err := d.Validate(); err != nil {
		return NewAddressHandoff{}, err
	}
	return NewAddressHandoff{NewAddress: d.FullAddress()}, nil
}

func (s *Service) Selected() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.book.Selected()
}

func (s *Service) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewLocked()
}

func (s *Service) viewLocked() View {
	return View{Addresses: s.book.Entries(), Selected: s.book.Selected()}
}
