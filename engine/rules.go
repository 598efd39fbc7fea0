package engine

// HouseRules holds configurable scoring settings.
type HouseRules struct {
	RoundWinScore uint8 // tricks needed to win a round
	GameWinScore  uint8 // match points needed to win a match
	KotEnabled    bool  // award kot bonus points for a shut-out round
}

// DefaultHouseRules returns the standard Hokm rules: seven tricks take a round,
// seven points take the match.
func DefaultHouseRules() HouseRules {
	return HouseRules{
		RoundWinScore: 7,
		GameWinScore:  7,
		KotEnabled:    true,
	}
}

// roundWin returns the effective round threshold, treating 0 as the default.
func (r *HouseRules) roundWin() uint8 {
	if r.RoundWinScore == 0 || r.RoundWinScore > NumTricks {
		return 7
	}
	return r.RoundWinScore
}

// gameWin returns the effective match threshold, treating 0 as the default.
func (r *HouseRules) gameWin() uint8 {
	if r.GameWinScore == 0 {
		return 7
	}
	return r.GameWinScore
}

// Critical reports whether a team trailing or near defeat should play for
// guaranteed tricks: the opponents are within two tricks of the round, or lead
// by more than half the round threshold.
func (r *HouseRules) Critical(own, opp int) bool {
	win := int(r.roundWin())
	return opp >= win-2 || opp > own+win/2
}
