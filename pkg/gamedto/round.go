package gamedto

// SubmitMoveRequest is the single submission a round is allowed to make.
type SubmitMoveRequest struct {
	Move  Move  `json:"move"`
	Stake int64 `json:"stake"`
}

// RoundResult is the backend's authoritative verdict for one round.
// Deltas are display-only; NewBalance and NewRating are the absolute
// values merged into the session store.
type RoundResult struct {
	PlayerMove   Move    `json:"player_move"`
	OpponentMove Move    `json:"opponent_move"`
	Outcome      Outcome `json:"result"`
	CoinsDelta   int64   `json:"coins_delta"`
	RatingDelta  int     `json:"rating_delta"`
	NewBalance   int64   `json:"new_balance"`
	NewRating    int     `json:"new_rating"`
}
