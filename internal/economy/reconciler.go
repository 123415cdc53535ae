package economy

import (
	"go.uber.org/zap"

	"github.com/rias-glitch/rps-arena-go/internal/obslog"
	"github.com/rias-glitch/rps-arena-go/internal/session"
	"github.com/rias-glitch/rps-arena-go/pkg/gamedto"
)

// Reconciler merges server-reported economic state into the session
// store. Values are absolute overwrites, never client arithmetic, so
// applying the same result twice is a no-op.
type Reconciler struct {
	store *session.Store
}

func New(store *session.Store) *Reconciler {
	return &Reconciler{store: store}
}

// ApplyRound writes the round's authoritative balance and rating.
func (r *Reconciler) ApplyRound(res *gamedto.RoundResult) {
	if res == nil {
		return
	}
	r.store.Apply(session.Update{
		Coins:  session.Int64Ptr(res.NewBalance),
		Rating: session.IntPtr(res.NewRating),
	})
	obslog.L().Debug("round reconciled",
		zap.String("outcome", string(res.Outcome)),
		zap.Int64("coins_delta", res.CoinsDelta),
		zap.Int64("new_balance", res.NewBalance),
		zap.Int("new_rating", res.NewRating),
	)
}

// ApplyBalance writes a balance-only refresh (post-purchase path).
func (r *Reconciler) ApplyBalance(coins int64) {
	r.store.Apply(session.Update{Coins: session.Int64Ptr(coins)})
	obslog.L().Debug("balance reconciled", zap.Int64("coins", coins))
}
