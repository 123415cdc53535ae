package match

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rias-glitch/rps-arena-go/internal/api"
	"github.com/rias-glitch/rps-arena-go/internal/economy"
	"github.com/rias-glitch/rps-arena-go/internal/msgcat"
	"github.com/rias-glitch/rps-arena-go/internal/obslog"
	"github.com/rias-glitch/rps-arena-go/internal/session"
	"github.com/rias-glitch/rps-arena-go/pkg/gamedto"
)

// Phase is the round lifecycle state.
type Phase string

const (
	PhaseIdle      Phase = "idle"
	PhaseChoosing  Phase = "choosing"
	PhaseWaiting   Phase = "waiting"
	PhaseCompleted Phase = "completed"
)

var (
	ErrInvalidStake        = errors.New("stake must be a positive integer")
	ErrInsufficientBalance = errors.New("stake exceeds current balance")
	ErrRoundActive         = errors.New("round already started")
)

// Submitter is the one backend call a round makes. *api.Client
// satisfies it.
type Submitter interface {
	SubmitMove(ctx context.Context, move gamedto.Move, stake int64) (*gamedto.RoundResult, error)
}

// Hooks let a view observe the controller without owning its state.
type Hooks struct {
	OnTick  func(secondsLeft int)
	OnError func(msg string)
}

type Config struct {
	CountdownSec  int
	SubmitTimeout time.Duration
	Rand          *rand.Rand // optional, defaults to a time-seeded source
}

// Controller runs one round: countdown, move selection, auto-forfeit
// on timeout and the exactly-once submission. One instance per round;
// a new round needs a fresh controller.
type Controller struct {
	submitter Submitter
	store     *session.Store
	recon     *economy.Reconciler
	cat       *msgcat.Catalog
	hooks     Hooks

	countdown     int
	submitTimeout time.Duration
	rng           *rand.Rand

	mu          sync.Mutex
	roundID     string
	stake       int64
	phase       Phase
	move        gamedto.Move
	inFlight    bool
	secondsLeft int
	stopTick    chan struct{}
	closed      bool

	// one-shot handoff to the result view; stays empty if the round
	// never completes, which receivers must treat as "no data".
	result chan *gamedto.RoundResult
}

func NewController(submitter Submitter, store *session.Store, recon *economy.Reconciler, cat *msgcat.Catalog, cfg Config, hooks Hooks) *Controller {
	if cfg.CountdownSec <= 0 {
		cfg.CountdownSec = 10
	}
	if cfg.SubmitTimeout <= 0 {
		cfg.SubmitTimeout = 8 * time.Second
	}
	rng := cfg.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Controller{
		submitter:     submitter,
		store:         store,
		recon:         recon,
		cat:           cat,
		hooks:         hooks,
		countdown:     cfg.CountdownSec,
		submitTimeout: cfg.SubmitTimeout,
		rng:           rng,
		phase:         PhaseIdle,
		result:        make(chan *gamedto.RoundResult, 1),
	}
}

// Start fixes the stake and arms the countdown. The affordability check
// is advisory; the server remains authoritative at submission time.
func (c *Controller) Start(stake int64) error {
	if stake <= 0 {
		return ErrInvalidStake
	}
	if stake > c.store.Coins() {
		return ErrInsufficientBalance
	}

	c.mu.Lock()
	if c.phase != PhaseIdle {
		c.mu.Unlock()
		return ErrRoundActive
	}
	c.roundID = uuid.NewString()
	c.stake = stake
	c.phase = PhaseChoosing
	c.secondsLeft = c.countdown
	stop := make(chan struct{})
	c.stopTick = stop
	c.mu.Unlock()

	obslog.L().Info("round started",
		zap.String("round_id", c.roundID),
		zap.Int64("stake", stake),
		zap.Int("countdown", c.countdown),
	)
	go c.runCountdown(stop)
	return nil
}

// SelectMove accepts a move while choosing with no submission in
// flight; anything else is a silent no-op. The in-flight guard is
// checked and set under one mutex hold, so a timer-driven auto-select
// racing a tap can never produce a second submission.
func (c *Controller) SelectMove(move gamedto.Move) bool {
	if _, ok := gamedto.ParseMove(string(move)); !ok {
		return false
	}

	c.mu.Lock()
	if c.closed || c.phase != PhaseChoosing || c.inFlight {
		c.mu.Unlock()
		return false
	}
	c.move = move
	c.inFlight = true
	c.phase = PhaseWaiting
	stop := c.stopTick
	c.stopTick = nil
	stake := c.stake
	roundID := c.roundID
	c.mu.Unlock()

	if stop != nil {
		close(stop)
	}
	obslog.L().Info("move selected",
		zap.String("round_id", roundID),
		zap.String("move", string(move)),
	)
	go c.submit(move, stake)
	return true
}

// Result is the one-shot handoff channel carrying the completed
// round's payload.
func (c *Controller) Result() <-chan *gamedto.RoundResult {
	return c.result
}

func (c *Controller) Phase() Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase
}

func (c *Controller) SecondsLeft() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.secondsLeft
}

func (c *Controller) SelectedMove() gamedto.Move {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.move
}

func (c *Controller) Stake() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stake
}

// Close tears the round down. A pending countdown is cancelled; a
// submission already in flight keeps running and its result is still
// merged into the shared store, but nothing is rendered for this
// instance.
func (c *Controller) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	stop := c.stopTick
	c.stopTick = nil
	c.mu.Unlock()

	if stop != nil {
		close(stop)
	}
}

func (c *Controller) runCountdown(stop chan struct{}) {
	t := time.NewTicker(time.Second)
	defer t.Stop()
	for {
		select {
		case <-stop:
			return
		case <-t.C:
			expired, alive := c.tickOnce()
			if !alive {
				return
			}
			if expired {
				c.autoSelect()
				return
			}
		}
	}
}

// tickOnce decrements the countdown. alive is false once the round has
// left the choosing phase.
func (c *Controller) tickOnce() (expired, alive bool) {
	c.mu.Lock()
	if c.closed || c.phase != PhaseChoosing {
		c.mu.Unlock()
		return false, false
	}
	c.secondsLeft--
	left := c.secondsLeft
	onTick := c.hooks.OnTick
	c.mu.Unlock()

	if onTick != nil {
		onTick(left)
	}
	return left <= 0, true
}

// autoSelect submits a uniformly random move so a passive player's
// round still terminates.
func (c *Controller) autoSelect() {
	move := gamedto.RandomMove(c.rng)
	obslog.L().Info("countdown expired, auto-selecting",
		zap.String("round_id", c.roundID),
		zap.String("move", string(move)),
	)
	c.SelectMove(move)
}

func (c *Controller) submit(move gamedto.Move, stake int64) {
	ctx, cancel := context.WithTimeout(context.Background(), c.submitTimeout)
	defer cancel()

	res, err := c.submitter.SubmitMove(ctx, move, stake)
	if err != nil {
		c.handleFailure(err)
		return
	}
	c.handleSuccess(res)
}

func (c *Controller) handleSuccess(res *gamedto.RoundResult) {
	c.mu.Lock()
	c.inFlight = false
	c.phase = PhaseCompleted
	closed := c.closed
	roundID := c.roundID
	c.mu.Unlock()

	// Authoritative economics are merged even if the view is gone.
	c.recon.ApplyRound(res)
	obslog.L().Info("round completed",
		zap.String("round_id", roundID),
		zap.String("outcome", string(res.Outcome)),
		zap.Int64("new_balance", res.NewBalance),
	)
	if closed {
		return
	}
	select {
	case c.result <- res:
	default:
	}
}

// handleFailure clears the in-flight guard and returns to choosing with
// a fresh countdown. The selected move is kept so the player can retry
// immediately; no automatic retry happens.
func (c *Controller) handleFailure(err error) {
	msg := api.UserMessage(c.cat, err)

	c.mu.Lock()
	c.inFlight = false
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.phase = PhaseChoosing
	c.secondsLeft = c.countdown
	stop := make(chan struct{})
	c.stopTick = stop
	roundID := c.roundID
	onError := c.hooks.OnError
	c.mu.Unlock()

	obslog.L().Warn("submission failed",
		zap.String("round_id", roundID),
		zap.Error(err),
	)
	go c.runCountdown(stop)
	if onError != nil {
		onError(msg)
	}
}
