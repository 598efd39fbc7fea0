package agent

import engine "github.com/Mear-MRK/hokm/engine"

// Player is a seat at the table. The table calls InitRound with the dealt
// hand, CallTrump on the opener, Observe for every card played by any seat,
// and Play when the seat is to act.
type Player interface {
	Seat() uint8
	Name() string
	InitRound(hand engine.Hand)
	CallTrump(firstFive engine.Hand) engine.Suit
	Observe(seat uint8, c engine.Card, led engine.Suit)
	Play(t engine.TrickState) engine.Card
	Reset()
}

var (
	_ Player = (*SoundAgent)(nil)
	_ Player = (*RandomAgent)(nil)
)
