package gamedto

import (
	"math/rand"
	"strings"
)

// Move is one of the three legal round moves.
type Move string

const (
	MoveRock     Move = "rock"
	MovePaper    Move = "paper"
	MoveScissors Move = "scissors"
)

// Moves lists the legal moves in wire order.
func Moves() [3]Move {
	return [3]Move{MoveRock, MovePaper, MoveScissors}
}

// ParseMove normalizes user input to a Move. ok is false for anything
// that is not rock/paper/scissors.
func ParseMove(s string) (Move, bool) {
	switch Move(strings.ToLower(strings.TrimSpace(s))) {
	case MoveRock:
		return MoveRock, true
	case MovePaper:
		return MovePaper, true
	case MoveScissors:
		return MoveScissors, true
	default:
		return "", false
	}
}

// RandomMove picks a move uniformly. Used for auto-select when the
// countdown expires.
func RandomMove(rng *rand.Rand) Move {
	m := Moves()
	return m[rng.Intn(len(m))]
}

// Outcome is the server-reported result of a round.
type Outcome string

const (
	OutcomeWin  Outcome = "win"
	OutcomeLose Outcome = "lose"
	OutcomeDraw Outcome = "draw"
)
