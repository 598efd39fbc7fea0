package agent

import engine "github.com/Mear-MRK/hokm/engine"

// rankWeight scales the rank sum against the card count in a suit's score.
const rankWeight = 6

// trumpKeys returns rankWeight times each suit's score, kept integral so
// ties compare exactly.
func trumpKeys(h engine.Hand) [engine.NumSuits]int {
	var key [engine.NumSuits]int
	for _, c := range h.Cards() {
		key[c.Suit()] += rankWeight + int(c.Rank())
	}
	return key
}

// TrumpScores scores every suit of h as count + sum(ranks)/6.
func TrumpScores(h engine.Hand) [engine.NumSuits]float64 {
	var scr [engine.NumSuits]float64
	for s, k := range trumpKeys(h) {
		scr[s] = float64(k) / rankWeight
	}
	return scr
}

// ChooseTrump returns the highest-scoring suit of h. Ties go to the suit with
// fewer cards, then to the lower suit.
func ChooseTrump(h engine.Hand) engine.Suit {
	key := trumpKeys(h)
	best := engine.NoSuit
	for s := engine.Suit(0); s < engine.NumSuits; s++ {
		switch {
		case best == engine.NoSuit || key[s] > key[best]:
			best = s
		case key[s] == key[best] && h.SuitLen(s) < h.SuitLen(best):
			best = s
		}
	}
	return best
}
