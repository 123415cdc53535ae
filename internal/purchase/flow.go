package purchase

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/rias-glitch/rps-arena-go/internal/api"
	"github.com/rias-glitch/rps-arena-go/internal/economy"
	"github.com/rias-glitch/rps-arena-go/internal/host"
	"github.com/rias-glitch/rps-arena-go/internal/msgcat"
	"github.com/rias-glitch/rps-arena-go/internal/obslog"
)

// State tracks one purchase attempt.
type State string

const (
	StateIdle             State = "idle"
	StateInvoiceRequested State = "invoice-requested"
	StatePaid             State = "paid"
	StateCancelled        State = "cancelled"
	StateFailed           State = "failed"
)

var ErrPurchaseActive = errors.New("purchase already in progress")

// Gateway is the slice of the API client the flow needs.
type Gateway interface {
	CreateInvoice(ctx context.Context, amount int64) (string, error)
	Balance(ctx context.Context) (int64, error)
}

// Flow requests an invoice, hands it to the host payment UI and
// reconciles the balance only after an explicit terminal confirmation.
// Opening an invoice never implies success; the balance is re-queried
// from the backend, never computed locally.
type Flow struct {
	gw    Gateway
	host  host.Platform
	recon *economy.Reconciler
	cat   *msgcat.Catalog

	refreshTimeout time.Duration

	mu    sync.Mutex
	state State
}

func NewFlow(gw Gateway, h host.Platform, recon *economy.Reconciler, cat *msgcat.Catalog) *Flow {
	return &Flow{
		gw:             gw,
		host:           h,
		recon:          recon,
		cat:            cat,
		refreshTimeout: 8 * time.Second,
		state:          StateIdle,
	}
}

func (f *Flow) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Buy runs one purchase attempt for the given coin package. The
// terminal payment status arrives through the host callback at most
// once; a second report for the same invoice is ignored.
func (f *Flow) Buy(ctx context.Context, amount int64) error {
	f.mu.Lock()
	if f.state == StateInvoiceRequested {
		f.mu.Unlock()
		return ErrPurchaseActive
	}
	f.state = StateInvoiceRequested
	f.mu.Unlock()

	if f.host == nil || !f.host.SupportsInvoices() {
		f.setState(StateFailed)
		f.alert("purchase.unavailable", nil)
		return host.ErrNotAvailable
	}

	link, err := f.gw.CreateInvoice(ctx, amount)
	if err != nil {
		f.setState(StateFailed)
		obslog.L().Warn("invoice request failed", zap.Int64("amount", amount), zap.Error(err))
		f.alert("purchase.invoice_failed", nil)
		return err
	}

	var once sync.Once
	if err := f.host.OpenInvoice(link, func(status string) {
		once.Do(func() { f.finish(status) })
	}); err != nil {
		f.setState(StateFailed)
		obslog.L().Warn("open invoice failed", zap.Error(err))
		f.alert("purchase.invoice_failed", nil)
		return err
	}
	return nil
}

func (f *Flow) finish(status string) {
	switch status {
	case host.StatusPaid, host.StatusCompleted:
		f.setState(StatePaid)
		f.refreshBalance()
	case host.StatusCancelled:
		// not an error: the player backed out before paying
		f.setState(StateCancelled)
	default:
		f.setState(StateIdle)
		f.alert("purchase.status", map[string]any{"Status": status})
	}
	obslog.L().Info("invoice closed", zap.String("status", status))
}

// refreshBalance re-queries the source of truth after a confirmed
// payment and merges the absolute value.
func (f *Flow) refreshBalance() {
	ctx, cancel := context.WithTimeout(context.Background(), f.refreshTimeout)
	defer cancel()

	coins, err := f.gw.Balance(ctx)
	if err != nil {
		// the purchase happened server-side; the next balance fetch
		// will pick it up
		obslog.L().Warn("post-purchase balance refresh failed", zap.Error(err))
		f.host.ShowAlert(api.UserMessage(f.cat, err))
		return
	}
	f.recon.ApplyBalance(coins)
	f.alert("purchase.success", nil)
}

func (f *Flow) setState(s State) {
	f.mu.Lock()
	f.state = s
	f.mu.Unlock()
}

func (f *Flow) alert(key string, data map[string]any) {
	if f.host == nil {
		return
	}
	f.host.ShowAlert(f.cat.RenderOr(key, data, "Something went wrong. Try again."))
}
