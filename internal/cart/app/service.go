package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/dwikikusuma/laundry-pickup/internal/cart/domain"
	"github.com/dwikikusuma/laundry-pickup/pkg/logger"
)

var (
	ErrLineNotFound    = errors.New("cart line not found")
	ErrUpdateInFlight  = errors.New("quantity update already in flight")
	ErrAuthRequired    = errors.New("please log in to continue")
	ErrRolledBack      = errors.New("cart update not confirmed, rolled back")
	ErrEmptyCart       = errors.New("cart is empty")
	ErrNoPickupAddress = errors.New("pickup address is required")
)

// Service owns the visible cart of one session. Quantity changes are
// applied optimistically and reconciled against the order service.
type Service struct {
	orders OrderService
	log    *slog.Logger
	now    func() time.Time

	mu       sync.Mutex
	lines    []domain.Line
	orderID  string
	inFlight map[string]struct{}
	schedule domain.PickupSchedule
}

func NewService(orders OrderService, log *slog.Logger) *Service {
	s := &Service{
		orders:   orders,
		log:      logger.OrDefault(log).With("component", "cart"),
		now:      time.Now,
		lines:    []domain.Line{},
		inFlight: make(map[string]struct{}),
	}
	now := s.now()
	s.schedule = domain.PickupSchedule{Date: now, Time: now}
	return s
}

// Seed replaces the cart with items handed over from the catalog.
func (s *Service) Seed(items []domain.RemoteItem) []domain.Line {
	lines := domain.PositionalLines(items)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.lines = lines
	return domain.Clone(s.lines)
}

// Load replaces the cart with the pending order. A missing order or a
// failing service both leave an empty cart.
func (s *Service) Load(ctx context.Context) []domain.Line {
	order, err := s.orders.FetchPendingOrder(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case err != nil:
		s.log.Error("load pending order failed", slog.Any("err", err))
		s.lines = []domain.Line{}
	case order == nil:
		s.lines = []domain.Line{}
	default:
		s.orderID = order.ID
		s.lines = domain.PositionalLines(order.Items)
	}

	return domain.Clone(s.lines)
}

func (s *Service) Lines() []domain.Line {
	s.mu.Lock()
	defer s.mu.Unlock()
	return domain.Clone(s.lines)
}

func (s *Service) OrderID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.orderID
}

func (s *Service) Bill() domain.Bill {
	s.mu.Lock()
	defer s.mu.Unlock()
	return domain.NewBill(s.lines)
}

// ChangeQuantity adds delta to a line's quantity.
//
// The new quantity is visible before the order service is contacted;
// zero-quantity lines disappear immediately. Only one change per line
// runs at a time, a second one is dropped with ErrUpdateInFlight. On
// any failure the cart returns to exactly what it was before the call,
// and the returned error wraps ErrAuthRequired or ErrRolledBack.
func (s *Service) ChangeQuantity(ctx context.Context, lineID string, delta int) error {
	s.mu.Lock()
	if _, busy := s.inFlight[lineID]; busy {
		s.mu.Unlock()
		s.log.Debug("quantity update dropped, already in flight", slog.String("line_id", lineID))
		return ErrUpdateInFlight
	}

	idx := indexOf(s.lines, lineID)
	if idx < 0 {
		s.mu.Unlock()
		return ErrLineNotFound
	}

	s.inFlight[lineID] = struct{}{}
	defer s.release(lineID)

	prev := domain.Clone(s.lines)

	changed := s.lines[idx]
	changed.Qty = max(0, changed.Qty+delta)

	next := domain.Clone(s.lines)
	next[idx] = changed
	s.lines = domain.WithoutEmpty(next)
	s.mu.Unlock()

	userID, err := s.orders.CurrentUserID(ctx)
	if err != nil {
		s.log.Error("resolve current user failed, rolling back", slog.Any("err", err), slog.String("line_id", lineID))
		s.restore(prev)
		return fmt.Errorf("%w: %w", ErrRolledBack, err)
	}
	if strings.TrimSpace(userID) == "" {
		s.log.Warn("no signed-in user, rolling back", slog.String("line_id", lineID))
		s.restore(prev)
		return ErrAuthRequired
	}

	res, err := s.orders.UpdateCart(ctx, userID, []domain.CartUpdate{domain.UpdateFor(changed)})
	if err != nil {
		s.log.Error("update cart failed, rolling back", slog.Any("err", err), slog.String("line_id", lineID))
		s.restore(prev)
		return fmt.Errorf("%w: %w", ErrRolledBack, err)
	}
	if res == nil || res.Items == nil {
		s.log.Warn("update cart returned no items, rolling back", slog.String("line_id", lineID))
		s.restore(prev)
		return ErrRolledBack
	}

	s.mu.Lock()
	s.lines = domain.ReconcileLines(res.Items, s.lines)
	s.mu.Unlock()

	return nil
}

func (s *Service) restore(prev []domain.Line) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lines = prev
}

func (s *Service) release(lineID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inFlight, lineID)
}

func (s *Service) SetPickupDate(d time.Time) domain.PickupSchedule {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.schedule.Date = d
	return s.schedule
}

func (s *Service) SetPickupTime(t time.Time) domain.PickupSchedule {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.schedule.Time = t
	return s.schedule
}

func (s *Service) Schedule() domain.PickupSchedule {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.schedule
}

// Checkout builds the hand-off for the payment step.
func (s *Service) Checkout(pickupAddress string) (domain.PaymentHandoff, error) {
	pickupAddress = strings.TrimSpace(pickupAddress)

	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.lines) == 0 {
		return domain.PaymentHandoff{}, ErrEmptyCart
	}
	if pickupAddress == "" {
		return domain.PaymentHandoff{}, ErrNoPickupAddress
	}

	return domain.PaymentHandoff{
		TotalPay:      domain.FormatAmount(domain.NewBill(s.lines).TotalPay),
		PickupAddress: pickupAddress,
	}, nil
}

func indexOf(lines []domain.Line, id string) int {
	for i, l := range lines {
		if l.ID == id {
			return i
		}
	}
	return -1
}
