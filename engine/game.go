// Package engine implements the Hokm card game rules.
//
// This package provides flat, allocation-free value types for cards, hands,
// the deck and a single round of play, shared by the inference agents in
// engine/agent and by the table runner in the service.
package engine

// RoundState holds the complete, self-contained state of one Hokm round.
// It is a flat value type (no pointers, no slices); copying it is a snapshot.
type RoundState struct {
	Hands      [NumPlayers]Hand // cards still held
	Played     [NumPlayers]Hand // cards already played, per seat
	Table      [NumPlayers]Card // current trick by seat, NoCard when empty
	LastTrick  [NumPlayers]Card // last completed trick by seat
	Tricks     [NumTeams]uint8  // tricks taken this round
	Rules      HouseRules
	Trump      Suit
	Led        Suit
	Opener     uint8 // seat that called trump; the opener's team is the trump team
	Leader     uint8 // seat leading the current trick
	TrickID    uint8 // completed tricks
	Order      uint8 // cards already on the table this trick
	LastWinner int8  // seat that took the last trick, -1 before the first
	Flags      uint8
}

// ---------------------------------------------------------------------------
// Flags bitfield
// ---------------------------------------------------------------------------

const (
	FlagTrumpCalled uint8 = 1 << 0
	FlagRoundOver   uint8 = 1 << 1
)

func (r *RoundState) IsTrumpCalled() bool { return r.Flags&FlagTrumpCalled != 0 }
func (r *RoundState) IsOver() bool        { return r.Flags&FlagRoundOver != 0 }

// ---------------------------------------------------------------------------
// NewRound
// ---------------------------------------------------------------------------

// NewRound starts a round from a deal. The opener leads the first trick once
// trump has been called.
func NewRound(deal DealResult, opener uint8, rules HouseRules) RoundState {
	r := RoundState{
		Hands:      deal.Hands,
		Rules:      rules,
		Trump:      NoSuit,
		Led:        NoSuit,
		Opener:     opener % NumPlayers,
		Leader:     opener % NumPlayers,
		LastWinner: -1,
	}
	for i := range r.Table {
		r.Table[i] = NoCard
		r.LastTrick[i] = NoCard
	}
	return r
}

// ---------------------------------------------------------------------------
// Query methods
// ---------------------------------------------------------------------------

// ToAct returns the seat that must play next.
func (r *RoundState) ToAct() uint8 { return (r.Leader + r.Order) % NumPlayers }

// TrumpTeam returns the team of the seat that called trump.
func (r *RoundState) TrumpTeam() uint8 { return TeamOf(r.Opener) }

// Winner returns the team that won the round, or -1 while it is running.
func (r *RoundState) Winner() int8 {
	if !r.IsOver() {
		return -1
	}
	if r.Tricks[0] > r.Tricks[1] {
		return 0
	}
	return 1
}

// TrickState is the public view of the current trick handed to a seat about to
// play. Scores are oriented by team, not by seat.
type TrickState struct {
	TrickID uint8
	Order   uint8
	Leader  uint8
	Seat    uint8
	Led     Suit
	Trump   Suit
	Table   [NumPlayers]Card
	Scores  [NumTeams]uint8
}

// Trick returns the view of the current trick for the seat to act.
func (r *RoundState) Trick() TrickState {
	return TrickState{
		TrickID: r.TrickID,
		Order:   r.Order,
		Leader:  r.Leader,
		Seat:    r.ToAct(),
		Led:     r.Led,
		Trump:   r.Trump,
		Table:   r.Table,
		Scores:  r.Tricks,
	}
}

// BestSeat returns the seat currently winning the trick, or -1 on an empty table.
func (t *TrickState) BestSeat() int8 {
	best := int8(-1)
	for i := uint8(0); i < NumPlayers; i++ {
		seat := (t.Leader + i) % NumPlayers
		c := t.Table[seat]
		if c.IsNone() {
			continue
		}
		if best < 0 || Compare(c, t.Table[best], t.Led, t.Trump) > 0 {
			best = int8(seat)
		}
	}
	return best
}

// OwnScore and OppScore return the tricks of the acting seat's team and of the
// other team.
func (t *TrickState) OwnScore() int { return int(t.Scores[TeamOf(t.Seat)]) }
func (t *TrickState) OppScore() int { return int(t.Scores[1-TeamOf(t.Seat)]) }
