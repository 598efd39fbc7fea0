package engine

// Compare orders two cards in the context of a trick.
// It returns 1 if left beats right, -1 if right beats left and 0 on a tie:
//   - same suit: higher rank wins, equal ranks tie
//   - a present card beats NoCard
//   - trump beats any non-trump card
//   - a led-suit card beats a card that is neither led nor trump
//   - two cards that are neither led nor trump tie
//
// Compare is antisymmetric: Compare(x, y, l, t) == -Compare(y, x, l, t).
func Compare(left, right Card, led, trump Suit) int {
	ls, rs := left.Suit(), right.Suit()
	if ls == rs {
		lr, rr := left.Rank(), right.Rank()
		switch {
		case lr > rr:
			return 1
		case lr < rr:
			return -1
		}
		return 0
	}
	if right.IsNone() {
		return 1
	}
	if left.IsNone() {
		return -1
	}
	if trump != NoSuit {
		if ls == trump {
			return 1
		}
		if rs == trump {
			return -1
		}
	}
	if led != NoSuit {
		if ls == led {
			return 1
		}
		if rs == led {
			return -1
		}
	}
	return 0
}

// Beats reports whether c strictly beats over.
func Beats(c, over Card, led, trump Suit) bool {
	return Compare(c, over, led, trump) > 0
}

// Best returns the index of the winning card among cards, or -1 if all are NoCard.
// On ties the earliest card wins, i.e. the card played first keeps the trick.
func Best(cards []Card, led, trump Suit) int {
	best := -1
	for i, c := range cards {
		if c.IsNone() {
			continue
		}
		if best < 0 || Compare(c, cards[best], led, trump) > 0 {
			best = i
		}
	}
	return best
}
