package engine

import (
	"errors"
	"fmt"
)

var (
	// ErrIllegalPlay is returned when a card is not held or fails to follow suit.
	ErrIllegalPlay = errors.New("illegal play")
	// ErrRoundOver is returned for any action after the round has ended.
	ErrRoundOver = errors.New("round is already over")
	// ErrTrumpNotCalled is returned when a card is played before trump is set.
	ErrTrumpNotCalled = errors.New("trump not called")
	// ErrTrumpCalled is returned when trump is called twice.
	ErrTrumpCalled = errors.New("trump already called")
)

// SetTrump fixes the trump suit for the round.
func (r *RoundState) SetTrump(s Suit) error {
	if r.IsOver() {
		return ErrRoundOver
	}
	if r.IsTrumpCalled() {
		return ErrTrumpCalled
	}
	if s >= NoSuit {
		return fmt.Errorf("set trump: invalid suit %d", s)
	}
	r.Trump = s
	r.Flags |= FlagTrumpCalled
	return nil
}

// ApplyPlay plays c for the seat to act. When the fourth card lands the trick
// is resolved: the winner's team scores it and the winner leads next.
func (r *RoundState) ApplyPlay(c Card) error {
	if r.IsOver() {
		return ErrRoundOver
	}
	if !r.IsTrumpCalled() {
		return ErrTrumpNotCalled
	}
	seat := r.ToAct()
	if !r.Hands[seat].IsLegalFollow(c, r.Led) {
		return fmt.Errorf("%w: seat %d played %s, led %s, hand %s",
			ErrIllegalPlay, seat, c, r.Led, r.Hands[seat])
	}
	if r.Order == 0 {
		r.Led = c.Suit()
	}
	r.Hands[seat].Remove(c)
	r.Played[seat].Add(c)
	r.Table[seat] = c
	r.Order++
	if r.Order == NumPlayers {
		r.resolveTrick()
	}
	return nil
}
