package gamedto

// AuthRequest carries the host platform's opaque init payload to the
// backend for verification.
type AuthRequest struct {
	InitData string `json:"initData"`
}

// AuthUser is the profile snapshot returned on login.
type AuthUser struct {
	ID         int64  `json:"id"`
	TelegramID int64  `json:"telegram_id"`
	Username   string `json:"username"`
	Coins      int64  `json:"coins"`
	Rating     int    `json:"rating"`
}

type AuthResponse struct {
	Token   string   `json:"token"`
	User    AuthUser `json:"user"`
	NewUser bool     `json:"new_user"`
}
