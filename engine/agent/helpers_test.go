package agent

import (
	"testing"

	engine "github.com/Mear-MRK/hokm/engine"
)

// mustHand parses cards such as "AS" into a hand.
func mustHand(t *testing.T, cards ...string) engine.Hand {
	t.Helper()
	var h engine.Hand
	for _, s := range cards {
		c, err := engine.ParseCard(s)
		if err != nil {
			t.Fatalf("ParseCard(%q): %v", s, err)
		}
		h.Add(c)
	}
	return h
}

func mustCard(t *testing.T, s string) engine.Card {
	t.Helper()
	c, err := engine.ParseCard(s)
	if err != nil {
		t.Fatalf("ParseCard(%q): %v", s, err)
	}
	return c
}

// newDealtRound deals a round from seed with the given opener; trump is not set.
func newDealtRound(seed uint64, opener uint8) (engine.RoundState, engine.DealResult) {
	d := engine.NewDeck(seed)
	d.Shuffle()
	deal := d.Deal(opener)
	return engine.NewRound(deal, opener, engine.DefaultHouseRules()), deal
}

// ownerOf returns the seat truly holding c, or -1.
func ownerOf(r *engine.RoundState, c engine.Card) int {
	for seat := range r.Hands {
		if r.Hands[seat].Has(c) {
			return seat
		}
	}
	return -1
}

// checkSound verifies that every class of part lists the true holder of each
// of its cards and that the structural invariants hold.
func checkSound(t *testing.T, part *Partition, self uint8, r *engine.RoundState) {
	t.Helper()
	var played engine.Hand
	for seat := range r.Played {
		played.AddHand(r.Played[seat])
	}
	if err := part.Verify(r.Hands[self], played); err != nil {
		t.Fatalf("Verify: %v\n%s", err, part)
	}
	for k := Class(0); k < NumClasses; k++ {
		for _, c := range part.Class(k).Cards() {
			seat := ownerOf(r, c)
			if seat < 0 {
				t.Fatalf("%s holds %s which nobody holds", k, c)
			}
			role := RoleOf(self, uint8(seat))
			if !k.Owners().Has(role) {
				t.Fatalf("%s holds %s but its holder is %s\n%s", k, c, role, part)
			}
		}
	}
	for role := Role(0); role < NumRoles; role++ {
		if got, want := part.Target(role), r.Hands[SeatOf(self, role)].Len(); got != want {
			t.Fatalf("Target(%s) = %d, want %d", role, got, want)
		}
	}
}

// playRound runs a full round with players, calling after once per card with
// the suit led before it, and feeding every play to every player. It fails the test on an illegal play.
func playRound(t *testing.T, r *engine.RoundState, players [engine.NumPlayers]Player, firstFive engine.Hand, after func(seat uint8, c engine.Card, led engine.Suit)) {
	t.Helper()
	for seat, p := range players {
		p.InitRound(r.Hands[seat])
	}
	if err := r.SetTrump(players[r.Opener].CallTrump(firstFive)); err != nil {
		t.Fatalf("SetTrump: %v", err)
	}
	for !r.IsOver() {
		seat := r.ToAct()
		led := r.Led
		c := players[seat].Play(r.Trick())
		if err := r.ApplyPlay(c); err != nil {
			t.Fatalf("seat %d: %v", seat, err)
		}
		for _, p := range players {
			p.Observe(seat, c, led)
		}
		if after != nil {
			after(seat, c, led)
		}
	}
}

// firstFiveHand converts the dealt first five into a hand.
func firstFiveHand(d engine.DealResult) engine.Hand {
	return engine.NewHand(d.FirstFive[:]...)
}
