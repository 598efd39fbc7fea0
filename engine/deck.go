package engine

// FirstFiveSize is the number of cards the opener sees before calling trump.
const FirstFiveSize = 5

// Deck is a seeded 52-card deck. It is a flat value type.
type Deck struct {
	Cards [NumCards]Card
	RNG   uint64
}

// NewDeck returns an ordered deck seeded for shuffling.
func NewDeck(seed uint64) Deck {
	var d Deck
	d.RNG = seed
	if d.RNG == 0 {
		d.RNG = 1 // xorshift can't start at 0
	}
	for i := range d.Cards {
		d.Cards[i] = Card(i)
	}
	return d
}

// ---------------------------------------------------------------------------
// xorshift64 RNG
// ---------------------------------------------------------------------------

func (d *Deck) nextRand() uint64 {
	x := d.RNG
	x ^= x << 13
	x ^= x >> 7
	x ^= x << 17
	d.RNG = x
	return x
}

// randN returns a random number in [0, n).
func (d *Deck) randN(n uint64) uint64 {
	return d.nextRand() % n
}

// RandSeat returns a uniformly drawn seat, used to pick the first opener.
func (d *Deck) RandSeat() uint8 { return uint8(d.randN(NumPlayers)) }

// ---------------------------------------------------------------------------
// Shuffle and deal
// ---------------------------------------------------------------------------

// Shuffle permutes the deck in place (Fisher-Yates).
func (d *Deck) Shuffle() {
	for i := NumCards - 1; i > 0; i-- {
		j := int(d.randN(uint64(i + 1)))
		d.Cards[i], d.Cards[j] = d.Cards[j], d.Cards[i]
	}
}

// DealResult is the result of dealing one round.
type DealResult struct {
	Hands     [NumPlayers]Hand
	FirstFive [FirstFiveSize]Card // the opener's first five cards
}

// Deal hands out consecutive blocks of 13 cards, the first block going to the
// opener and the rest in seat order after it.
func (d *Deck) Deal(opener uint8) DealResult {
	var out DealResult
	for i := 0; i < NumPlayers; i++ {
		seat := (opener + uint8(i)) % NumPlayers
		block := d.Cards[i*HandSize : (i+1)*HandSize]
		for _, c := range block {
			out.Hands[seat].Add(c)
		}
		if i == 0 {
			copy(out.FirstFive[:], block[:FirstFiveSize])
		}
	}
	return out
}
