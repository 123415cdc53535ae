package gamedto

import (
	"math/rand"
	"testing"
)

func TestParseMove(t *testing.T) {
	cases := map[string]struct {
		move Move
		ok   bool
	}{
		"rock":        {MoveRock, true},
		" Paper ":     {MovePaper, true},
		"SCISSORS":    {MoveScissors, true},
		"lizard":      {"", false},
		"":            {"", false},
		"rock\npaper": {"", false},
	}
	for in, want := range cases {
		got, ok := ParseMove(in)
		if ok != want.ok || got != want.move {
			t.Fatalf("ParseMove(%q) = %q,%v want %q,%v", in, got, ok, want.move, want.ok)
		}
	}
}

func TestRandomMoveCoversAllThree(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	seen := map[Move]bool{}
	for i := 0; i < 200; i++ {
		m := RandomMove(rng)
		if _, ok := ParseMove(string(m)); !ok {
			t.Fatalf("random move %q is not legal", m)
		}
		seen[m] = true
	}
	if len(seen) != 3 {
		t.Fatalf("expected all three moves, saw %v", seen)
	}
}

func TestTransactionTypeLabel(t *testing.T) {
	if got := (Transaction{Type: TxTypeWin}).TypeLabel(); got != "Match win" {
		t.Fatalf("win label: %q", got)
	}
	if got := (Transaction{Type: "bonus"}).TypeLabel(); got != "bonus" {
		t.Fatalf("unknown type must pass through: %q", got)
	}
}
