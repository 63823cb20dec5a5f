package device

import (
	"context"
	"sync"
	"time"

	"github.com/dwikikusuma/laundry-pickup/internal/location/domain"
)

// DefaultMaxAge is how long a reported fix stays usable.
const DefaultMaxAge = 2 * time.Minute

var rank = map[domain.Accuracy]int{
	domain.AccuracyBalanced:          0,
	domain.AccuracyHigh:              1,
	domain.AccuracyHighest:           2,
	domain.AccuracyBestForNavigation: 3,
}

type fix struct {
	pos domain.Position
	at  time.Time
}

// ReportedLocator serves positions the client app pushed in. The device
// owns the GPS; this side only remembers the latest fix per tier and
// whether the user denied access.
type ReportedLocator struct {
	maxAge time.Duration
	now    func() time.Time

	mu     sync.Mutex
	fixes  map[domain.Accuracy]fix
	denied bool
}

func NewReportedLocator(maxAge time.Duration) *ReportedLocator {
	if maxAge <= 0 {
		maxAge = DefaultMaxAge
	}
	return &ReportedLocator{
		maxAge: maxAge,
		now:    time.Now,
		fixes:  map[domain.Accuracy]fix{},
	}
}

// Report stores a fix and clears any earlier denial.
func (l *ReportedLocator) Report(tier domain.Accuracy, pos domain.Position) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.fixes[tier] = fix{pos: pos, at: l.now()}
	l.denied = false
}

// Deny records that the user refused location access and forgets all
// fixes.
func (l *ReportedLocator) Deny() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.denied = true
	clear(l.fixes)
}

// CurrentPosition prefers a fix at exactly the requested tier and
// otherwise takes the freshest finer one.
func (l *ReportedLocator) CurrentPosition(ctx context.Context, tier domain.Accuracy) (domain.Position, error) {
	if err := ctx.Err(); err != nil {
		return domain.Position{}, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.denied {
		return domain.Position{}, domain.ErrPermissionDenied
	}

	now := l.now()
	if f, ok := l.fixes[tier]; ok && now.Sub(f.at) <= l.maxAge {
		return f.pos, nil
	}

	var (
		best  fix
		found bool
	)
	for t, f := range l.fixes {
		if rank[t] < rank[tier] || now.Sub(f.at) > l.maxAge {
			continue
		}
		if !found || f.at.After(best.at) {
			best, found = f, true
		}
	}
	if !found {
		return domain.Position{}, domain.ErrNoPosition
	}
	return best.pos, nil
}
