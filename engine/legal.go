package engine

// LegalPlays returns the cards the seat to act may play. It is empty before
// trump is called and after the round is over.
func (r *RoundState) LegalPlays() Hand {
	if r.IsOver() || !r.IsTrumpCalled() {
		return Hand{}
	}
	return r.Hands[r.ToAct()].LegalPlays(r.Led)
}

// IsLegal reports whether the seat to act may play c.
func (r *RoundState) IsLegal(c Card) bool {
	if r.IsOver() || !r.IsTrumpCalled() {
		return false
	}
	return r.Hands[r.ToAct()].IsLegalFollow(c, r.Led)
}

// WeakestLegal returns the lowest-priority legal card for the seat to act,
// the play used when a seat has to be played for automatically.
func (r *RoundState) WeakestLegal() Card {
	if r.IsOver() || !r.IsTrumpCalled() {
		return NoCard
	}
	h := r.Hands[r.ToAct()]
	return h.LeastToFollow(r.Led, r.Trump, nil)
}
