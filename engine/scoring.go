package engine

// resolveTrick credits the completed trick and resets the table.
func (r *RoundState) resolveTrick() {
	t := r.Trick()
	winner := uint8(t.BestSeat())
	team := TeamOf(winner)
	r.Tricks[team]++
	r.LastTrick = r.Table
	r.LastWinner = int8(winner)
	r.Leader = winner
	r.Order = 0
	r.Led = NoSuit
	r.TrickID++
	for i := range r.Table {
		r.Table[i] = NoCard
	}
	if r.Tricks[team] >= r.Rules.roundWin() || r.TrickID == NumTricks {
		r.Flags |= FlagRoundOver
	}
}

// Kot returns the shut-out bonus of a finished round: 1 if the losing team took
// no trick, plus 1 more if the winners were also not the trump team.
func (r *RoundState) Kot() uint8 {
	w := r.Winner()
	if w < 0 || !r.Rules.KotEnabled {
		return 0
	}
	if r.Tricks[1-w] != 0 {
		return 0
	}
	if uint8(w) != r.TrumpTeam() {
		return 2
	}
	return 1
}

// Points returns the match points the winning team earns for the round.
func (r *RoundState) Points() uint8 {
	if !r.IsOver() {
		return 0
	}
	return 1 + r.Kot()
}

// ---------------------------------------------------------------------------
// Match scoring
// ---------------------------------------------------------------------------

// MatchState tracks match points and the opener across rounds.
type MatchState struct {
	Points  [NumTeams]uint8
	Rounds  uint16
	Kots    [NumTeams]uint8
	Opener  uint8
	Rules   HouseRules
	started bool
}

// NewMatch returns an empty match.
func NewMatch(rules HouseRules) MatchState {
	return MatchState{Rules: rules}
}

// NextOpener returns the opener for the coming round. The first opener is
// drawn from the deck RNG.
func (m *MatchState) NextOpener(d *Deck) uint8 {
	if !m.started {
		m.Opener = d.RandSeat()
		m.started = true
	}
	return m.Opener
}

// RecordRound adds a finished round to the match. The opener passes to the
// next seat when the trump team loses. It returns the winning team and the
// points awarded.
func (m *MatchState) RecordRound(r *RoundState) (int8, uint8) {
	w := r.Winner()
	if w < 0 {
		return -1, 0
	}
	pts := r.Points()
	m.Points[w] += pts
	if pts > 1 {
		m.Kots[w]++
	}
	m.Rounds++
	if uint8(w) != r.TrumpTeam() {
		m.Opener = NextSeat(r.Opener)
	} else {
		m.Opener = r.Opener
	}
	return w, pts
}

// IsOver reports whether a team has reached the match threshold.
func (m *MatchState) IsOver() bool { return m.Winner() >= 0 }

// Winner returns the team that won the match, or -1.
func (m *MatchState) Winner() int8 {
	win := m.Rules.gameWin()
	for t := 0; t < NumTeams; t++ {
		if m.Points[t] >= win {
			return int8(t)
		}
	}
	return -1
}
