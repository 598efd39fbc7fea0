package agent

import (
	"fmt"
	"math/rand/v2"

	engine "github.com/Mear-MRK/hokm/engine"
)

// RandomAgent plays a uniformly random legal card and calls a random suit
// from its first five cards.
type RandomAgent struct {
	seat uint8
	name string
	hand engine.Hand
	rng  *rand.Rand
}

// NewRandomAgent returns a seeded random agent for seat.
func NewRandomAgent(seat uint8, seed uint64) *RandomAgent {
	return &RandomAgent{
		seat: seat % engine.NumPlayers,
		name: fmt.Sprintf("RND_%d", seat),
		rng:  rand.New(rand.NewPCG(seed, uint64(seat))),
	}
}

func (a *RandomAgent) Seat() uint8 { return a.seat }
func (a *RandomAgent) Name() string { return a.name }
func (a *RandomAgent) InitRound(h engine.Hand) { a.hand = h }
func (a *RandomAgent) Reset() { a.hand.Clear() }
func (a *RandomAgent) Observe(uint8, engine.Card, engine.Suit) {}

// CallTrump picks the suit of a random card among the first five.
func (a *RandomAgent) CallTrump(firstFive engine.Hand) engine.Suit {
	cards := firstFive.Cards()
	if len(cards) == 0 {
		return engine.Suit(a.rng.IntN(engine.NumSuits))
	}
	return cards[a.rng.IntN(len(cards))].Suit()
}

// Play removes and returns a random legal card.
func (a *RandomAgent) Play(t engine.TrickState) engine.Card {
	legal := a.hand.LegalPlays(t.Led).Cards()
	if len(legal) == 0 {
		return engine.NoCard
	}
	c := legal[a.rng.IntN(len(legal))]
	a.hand.Remove(c)
	return c
}
