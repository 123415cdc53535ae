package withdraw

import (
	"context"
	"errors"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/rias-glitch/rps-arena-go/internal/api"
	"github.com/rias-glitch/rps-arena-go/internal/msgcat"
	"github.com/rias-glitch/rps-arena-go/internal/obslog"
	"github.com/rias-glitch/rps-arena-go/internal/session"
	"github.com/rias-glitch/rps-arena-go/pkg/gamedto"
)

// State tracks the withdrawal screen lifecycle.
type State string

const (
	StateIdle       State = "idle"
	StateValidating State = "validating"
	StateSubmitting State = "submitting"
	StatePending    State = "pending"
	StateError      State = "error"
)

// Local validation failures. None of these reach the network.
var (
	ErrInsufficientBalance = errors.New("amount exceeds balance")
	ErrBelowMinimum        = errors.New("amount below minimum withdrawal")
	ErrWalletRequired      = errors.New("wallet address required")
	ErrBusy                = errors.New("submission in progress")
)

// Gateway is the slice of the API client the lifecycle needs.
type Gateway interface {
	CreateWithdrawal(ctx context.Context, amount int64, wallet string) error
	Withdrawals(ctx context.Context) ([]gamedto.Withdrawal, error)
}

// Lifecycle validates withdrawal requests locally, submits them and
// keeps a read-only list of prior requests refreshed wholesale from
// the backend.
type Lifecycle struct {
	gw    Gateway
	store *session.Store
	cat   *msgcat.Catalog
	min   int64

	mu       sync.Mutex
	state    State
	lastMsg  string
	requests []gamedto.Withdrawal
}

func NewLifecycle(gw Gateway, store *session.Store, cat *msgcat.Catalog, minWithdraw int64) *Lifecycle {
	return &Lifecycle{
		gw:    gw,
		store: store,
		cat:   cat,
		min:   minWithdraw,
		state: StateIdle,
	}
}

func (l *Lifecycle) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// Message returns the last user-facing message (validation or
// submission outcome).
func (l *Lifecycle) Message() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.lastMsg
}

// Minimum returns the withdrawal threshold for display.
func (l *Lifecycle) Minimum() int64 { return l.min }

// Requests returns a snapshot of the read-only request list.
func (l *Lifecycle) Requests() []gamedto.Withdrawal {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]gamedto.Withdrawal, len(l.requests))
	copy(out, l.requests)
	return out
}

// Submit runs local validation and, only when it passes, issues the
// create-request call. A correction after a validation error restarts
// from idle implicitly.
func (l *Lifecycle) Submit(ctx context.Context, amount int64, wallet string) error {
	l.mu.Lock()
	if l.state == StateSubmitting {
		l.mu.Unlock()
		return ErrBusy
	}
	l.state = StateValidating
	l.mu.Unlock()

	if err := l.validate(amount, wallet); err != nil {
		return err
	}

	l.setState(StateSubmitting, "")
	if err := l.gw.CreateWithdrawal(ctx, amount, wallet); err != nil {
		// surface the backend's reason verbatim when it sent one
		msg := api.UserMessage(l.cat, err)
		l.setState(StateError, msg)
		obslog.L().Warn("withdrawal submit failed", zap.Int64("amount", amount), zap.Error(err))
		return err
	}

	l.setState(StatePending, l.cat.RenderOr("withdraw.submitted", nil, "Request submitted."))
	obslog.L().Info("withdrawal submitted", zap.Int64("amount", amount))

	// status changed, re-fetch the full list; best effort
	if err := l.Refresh(ctx); err != nil {
		obslog.L().Warn("withdrawal list refresh failed", zap.Error(err))
	}
	return nil
}

func (l *Lifecycle) validate(amount int64, wallet string) error {
	balance := l.store.Coins()
	switch {
	case amount > balance:
		l.setState(StateError, l.cat.RenderOr("withdraw.insufficient", nil, "Insufficient balance"))
		return ErrInsufficientBalance
	case amount < l.min:
		l.setState(StateError, l.cat.RenderOr("withdraw.minimum", map[string]any{"Min": l.min}, "Amount below minimum"))
		return ErrBelowMinimum
	case strings.TrimSpace(wallet) == "":
		l.setState(StateError, l.cat.RenderOr("withdraw.wallet_required", nil, "Enter a wallet address"))
		return ErrWalletRequired
	}
	return nil
}

// Refresh replaces the request list with the backend's. No incremental
// patching: the list is small and server state must not be inferred.
func (l *Lifecycle) Refresh(ctx context.Context) error {
	list, err := l.gw.Withdrawals(ctx)
	if err != nil {
		return err
	}
	l.mu.Lock()
	l.requests = list
	l.mu.Unlock()
	return nil
}

func (l *Lifecycle) setState(s State, msg string) {
	l.mu.Lock()
	l.state = s
	l.lastMsg = msg
	l.mu.Unlock()
}
