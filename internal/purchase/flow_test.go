package purchase

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/rias-glitch/rps-arena-go/internal/economy"
	"github.com/rias-glitch/rps-arena-go/internal/host"
	"github.com/rias-glitch/rps-arena-go/internal/msgcat"
	"github.com/rias-glitch/rps-arena-go/internal/session"
)

type fakeGateway struct {
	invoiceCalls int32
	balanceCalls int32
	invoiceLink  string
	invoiceErr   error
	balance      int64
	balanceErr   error
}

func (f *fakeGateway) CreateInvoice(ctx context.Context, amount int64) (string, error) {
	atomic.AddInt32(&f.invoiceCalls, 1)
	return f.invoiceLink, f.invoiceErr
}

func (f *fakeGateway) Balance(ctx context.Context) (int64, error) {
	atomic.AddInt32(&f.balanceCalls, 1)
	return f.balance, f.balanceErr
}

// fakeHost reports a scripted terminal status for every invoice.
type fakeHost struct {
	supports bool
	status   string
	double   bool // report the status twice to test the one-shot guard
	opened   []string
	alerts   []string
}

func (h *fakeHost) Ready() error           { return nil }
func (h *fakeHost) SupportsInvoices() bool { return h.supports }
func (h *fakeHost) ShowAlert(msg string)   { h.alerts = append(h.alerts, msg) }

func (h *fakeHost) OpenInvoice(link string, cb func(status string)) error {
	h.opened = append(h.opened, link)
	cb(h.status)
	if h.double {
		cb(h.status)
	}
	return nil
}

func newFlowFixture(t *testing.T, gw *fakeGateway, h *fakeHost) (*Flow, *session.Store) {
	t.Helper()
	cat, err := msgcat.New("")
	if err != nil {
		t.Fatalf("msgcat: %v", err)
	}
	store := session.NewStore()
	store.Apply(session.Update{Coins: session.Int64Ptr(100)})
	return NewFlow(gw, h, economy.New(store), cat), store
}

func TestPaidRefreshesBalanceFromServer(t *testing.T) {
	gw := &fakeGateway{invoiceLink: "https://t.me/inv", balance: 200}
	h := &fakeHost{supports: true, status: host.StatusPaid}
	flow, store := newFlowFixture(t, gw, h)

	if err := flow.Buy(context.Background(), 100); err != nil {
		t.Fatalf("Buy: %v", err)
	}
	if got := atomic.LoadInt32(&gw.balanceCalls); got != 1 {
		t.Fatalf("expected exactly 1 balance re-fetch, got %d", got)
	}
	if store.Coins() != 200 {
		t.Fatalf("balance not reconciled: %d", store.Coins())
	}
	if flow.State() != StatePaid {
		t.Fatalf("state: %s", flow.State())
	}
}

func TestCancelledLeavesBalanceUntouched(t *testing.T) {
	gw := &fakeGateway{invoiceLink: "https://t.me/inv", balance: 999}
	h := &fakeHost{supports: true, status: host.StatusCancelled}
	flow, store := newFlowFixture(t, gw, h)

	if err := flow.Buy(context.Background(), 100); err != nil {
		t.Fatalf("Buy: %v", err)
	}
	if got := atomic.LoadInt32(&gw.balanceCalls); got != 0 {
		t.Fatalf("cancelled must not fetch balance, got %d calls", got)
	}
	if store.Coins() != 100 {
		t.Fatalf("coins changed on cancel: %d", store.Coins())
	}
	if len(h.alerts) != 0 {
		t.Fatalf("cancel must be silent, got alerts %v", h.alerts)
	}
	if flow.State() != StateCancelled {
		t.Fatalf("state: %s", flow.State())
	}
}

func TestOtherTerminalStatusIsSurfaced(t *testing.T) {
	gw := &fakeGateway{invoiceLink: "https://t.me/inv"}
	h := &fakeHost{supports: true, status: "pending_review"}
	flow, store := newFlowFixture(t, gw, h)

	if err := flow.Buy(context.Background(), 100); err != nil {
		t.Fatalf("Buy: %v", err)
	}
	if store.Coins() != 100 {
		t.Fatalf("coins changed: %d", store.Coins())
	}
	if len(h.alerts) != 1 {
		t.Fatalf("expected one status alert, got %v", h.alerts)
	}
	if flow.State() != StateIdle {
		t.Fatalf("state: %s", flow.State())
	}
}

func TestDoubleStatusReportIsIgnored(t *testing.T) {
	gw := &fakeGateway{invoiceLink: "https://t.me/inv", balance: 200}
	h := &fakeHost{supports: true, status: host.StatusPaid, double: true}
	flow, _ := newFlowFixture(t, gw, h)

	if err := flow.Buy(context.Background(), 100); err != nil {
		t.Fatalf("Buy: %v", err)
	}
	if got := atomic.LoadInt32(&gw.balanceCalls); got != 1 {
		t.Fatalf("duplicate terminal status reached the flow: %d balance calls", got)
	}
}

func TestHostWithoutInvoiceSupportFailsEarly(t *testing.T) {
	gw := &fakeGateway{invoiceLink: "https://t.me/inv"}
	h := &fakeHost{supports: false}
	flow, store := newFlowFixture(t, gw, h)

	err := flow.Buy(context.Background(), 100)
	if !errors.Is(err, host.ErrNotAvailable) {
		t.Fatalf("expected ErrNotAvailable, got %v", err)
	}
	if got := atomic.LoadInt32(&gw.invoiceCalls); got != 0 {
		t.Fatalf("invoice requested without host support: %d calls", got)
	}
	if store.Coins() != 100 {
		t.Fatalf("coins changed: %d", store.Coins())
	}
	if flow.State() != StateFailed {
		t.Fatalf("state: %s", flow.State())
	}
}

func TestInvoiceFailureLeavesCleanState(t *testing.T) {
	gw := &fakeGateway{invoiceErr: errors.New("boom")}
	h := &fakeHost{supports: true}
	flow, store := newFlowFixture(t, gw, h)

	if err := flow.Buy(context.Background(), 100); err == nil {
		t.Fatal("expected error")
	}
	if store.Coins() != 100 {
		t.Fatalf("coins changed: %d", store.Coins())
	}
	if len(h.opened) != 0 {
		t.Fatalf("invoice opened despite retrieval failure: %v", h.opened)
	}
	if flow.State() != StateFailed {
		t.Fatalf("state: %s", flow.State())
	}
}
