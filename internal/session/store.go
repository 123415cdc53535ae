package session

import (
	"sync"

	"go.uber.org/zap"

	"github.com/rias-glitch/rps-arena-go/internal/obslog"
	"github.com/rias-glitch/rps-arena-go/pkg/gamedto"
)

// Profile is the authenticated user's view of shared client state.
// Coins and Rating are always the last values the server reported; the
// client never computes them.
type Profile struct {
	TelegramID int64
	Username   string
	Coins      int64
	Rating     int
}

// Update is a partial profile change. Nil fields are left untouched;
// set fields are whole-field replacements.
type Update struct {
	Username *string
	Coins    *int64
	Rating   *int
}

// Store owns the profile and the bearer token, shared by every screen.
// All mutations go through Apply so no component can hold a private
// copy that drifts.
type Store struct {
	mu      sync.RWMutex
	profile Profile
	token   string
}

func NewStore() *Store {
	return &Store{}
}

// Bootstrap seeds the store from a login response.
func (s *Store) Bootstrap(resp *gamedto.AuthResponse) {
	s.mu.Lock()
	s.profile = Profile{
		TelegramID: resp.User.TelegramID,
		Username:   resp.User.Username,
		Coins:      resp.User.Coins,
		Rating:     resp.User.Rating,
	}
	s.token = resp.Token
	s.mu.Unlock()
	obslog.L().Info("session bootstrapped",
		zap.Int64("telegram_id", resp.User.TelegramID),
		zap.String("username", resp.User.Username),
	)
}

// Apply merges a partial update atomically.
func (s *Store) Apply(u Update) {
	s.mu.Lock()
	if u.Username != nil {
		s.profile.Username = *u.Username
	}
	if u.Coins != nil {
		s.profile.Coins = *u.Coins
	}
	if u.Rating != nil {
		s.profile.Rating = *u.Rating
	}
	s.mu.Unlock()
}

// Profile returns a snapshot of the current profile.
func (s *Store) Profile() Profile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.profile
}

// Coins returns the last known balance.
func (s *Store) Coins() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.profile.Coins
}

// SetToken replaces the bearer credential.
func (s *Store) SetToken(token string) {
	s.mu.Lock()
	s.token = token
	s.mu.Unlock()
}

// Token returns the current bearer credential, empty before login.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Int64Ptr and IntPtr build Update fields without a temp variable at
// the call site.
func Int64Ptr(v int64) *int64    { return &v }
func IntPtr(v int) *int          { return &v }
func StringPtr(v string) *string { return &v }
