package engine

import (
	"math/bits"
	"strings"
)

const (
	fullMask uint64 = 1<<NumCards - 1
	suitMask uint64 = 1<<NumRanks - 1
)

// Hand is a set of cards kept as one sorted, duplicate-free rank array per suit,
// plus a 52-bit presence mask and a total count. The mask is always exactly the
// union of the per-suit arrays.
//
// Hand is a value type; copying it with = yields an independent set.
type Hand struct {
	ranks [NumSuits][NumRanks]Rank
	lens  [NumSuits]uint8
	mask  uint64
	n     uint8
}

// NewHand returns a hand holding the given cards. NoCard entries are ignored.
func NewHand(cards ...Card) Hand {
	var h Hand
	for _, c := range cards {
		h.Add(c)
	}
	return h
}

// HandFromMask builds a hand from a presence mask (bit i = card id i).
// Bits above the 52-card universe are ignored.
func HandFromMask(mask uint64) Hand {
	var h Hand
	h.mask = mask & fullMask
	h.n = uint8(bits.OnesCount64(h.mask))
	// Ids ascend by suit then rank, so appending keeps each suit sorted.
	for m := h.mask; m != 0; m &= m - 1 {
		c := Card(bits.TrailingZeros64(m))
		s := c.Suit()
		h.ranks[s][h.lens[s]] = c.Rank()
		h.lens[s]++
	}
	return h
}

// FullDeck returns a hand holding all 52 cards.
func FullDeck() Hand { return HandFromMask(fullMask) }

// ---------------------------------------------------------------------------
// Basic accessors
// ---------------------------------------------------------------------------

// Len returns the number of cards in the hand.
func (h Hand) Len() int { return int(h.n) }

// IsEmpty reports whether the hand holds no card.
func (h Hand) IsEmpty() bool { return h.n == 0 }

// SuitLen returns the number of cards of suit s.
func (h Hand) SuitLen(s Suit) int {
	if s >= NoSuit {
		return 0
	}
	return int(h.lens[s])
}

// SuitLens returns the per-suit card counts.
func (h Hand) SuitLens() [NumSuits]int {
	var out [NumSuits]int
	for s := range out {
		out[s] = int(h.lens[s])
	}
	return out
}

// Mask returns the 52-bit presence mask.
func (h Hand) Mask() uint64 { return h.mask }

// Has reports whether c is in the hand.
func (h Hand) Has(c Card) bool {
	if c.IsNone() {
		return false
	}
	return h.mask&c.bit() != 0
}

// Lowest returns the lowest card of suit s, or NoCard.
func (h Hand) Lowest(s Suit) Card {
	if s >= NoSuit || h.lens[s] == 0 {
		return NoCard
	}
	return NewCard(s, h.ranks[s][0])
}

// Highest returns the highest card of suit s, or NoCard.
func (h Hand) Highest(s Suit) Card {
	if s >= NoSuit || h.lens[s] == 0 {
		return NoCard
	}
	return NewCard(s, h.ranks[s][h.lens[s]-1])
}

// Cards returns the cards ordered by suit, then rank.
func (h Hand) Cards() []Card {
	out := make([]Card, 0, h.n)
	for s := Suit(0); s < NumSuits; s++ {
		for i := uint8(0); i < h.lens[s]; i++ {
			out = append(out, NewCard(s, h.ranks[s][i]))
		}
	}
	return out
}

// upper returns the number of cards of suit s with rank <= r (binary search).
func (h Hand) upper(s Suit, r Rank) int {
	lo, hi := 0, int(h.lens[s])
	for lo < hi {
		mid := (lo + hi) / 2
		if h.ranks[s][mid] > r {
			hi = mid
		} else {
			lo = mid + 1
		}
	}
	return lo
}

// ---------------------------------------------------------------------------
// Mutation
// ---------------------------------------------------------------------------

// Add inserts c, keeping the suit sorted. It returns false if c was already
// present or is NoCard.
func (h *Hand) Add(c Card) bool {
	if c.IsNone() || h.mask&c.bit() != 0 {
		return false
	}
	s, r := c.Suit(), c.Rank()
	i := h.upper(s, r)
	copy(h.ranks[s][i+1:h.lens[s]+1], h.ranks[s][i:h.lens[s]])
	h.ranks[s][i] = r
	h.lens[s]++
	h.mask |= c.bit()
	h.n++
	return true
}

// AddHand inserts every card of o.
func (h *Hand) AddHand(o Hand) {
	if o.n == 0 {
		return
	}
	*h = HandFromMask(h.mask | o.mask)
}

// Remove deletes c and reports whether it was present.
func (h *Hand) Remove(c Card) bool {
	if !h.Has(c) {
		return false
	}
	s, r := c.Suit(), c.Rank()
	i := h.upper(s, r) - 1
	copy(h.ranks[s][i:h.lens[s]-1], h.ranks[s][i+1:h.lens[s]])
	h.lens[s]--
	h.mask &^= c.bit()
	h.n--
	return true
}

// RemoveHand deletes every card of o that is present.
func (h *Hand) RemoveHand(o Hand) {
	if h.mask&o.mask == 0 {
		return
	}
	*h = HandFromMask(h.mask &^ o.mask)
}

// DiscardSuit removes every card of suit s.
func (h *Hand) DiscardSuit(s Suit) {
	if s >= NoSuit {
		return
	}
	h.n -= h.lens[s]
	h.lens[s] = 0
	h.mask &^= suitMask << (uint(s) * NumRanks)
}

// PopSuit removes the whole suit s and returns it as a hand.
func (h *Hand) PopSuit(s Suit) Hand {
	out := h.SubHand(s)
	h.DiscardSuit(s)
	return out
}

// Clear empties the hand.
func (h *Hand) Clear() { *h = Hand{} }

// ---------------------------------------------------------------------------
// Sub-hands and set algebra
// ---------------------------------------------------------------------------

// SubHand returns the cards of suit s.
func (h Hand) SubHand(s Suit) Hand {
	if s >= NoSuit {
		return Hand{}
	}
	return HandFromMask(h.mask & (suitMask << (uint(s) * NumRanks)))
}

// SubHandAboveRank returns the cards of suit s with rank at or above r.
func (h Hand) SubHandAboveRank(s Suit, r Rank) Hand {
	if s >= NoSuit || r >= NoRank {
		return Hand{}
	}
	m := (suitMask >> uint(r)) << (uint(s)*NumRanks + uint(r))
	return HandFromMask(h.mask & m)
}

// Union returns h ∪ o.
func (h Hand) Union(o Hand) Hand { return HandFromMask(h.mask | o.mask) }

// Intersect returns h ∩ o.
func (h Hand) Intersect(o Hand) Hand { return HandFromMask(h.mask & o.mask) }

// Minus returns h \ o.
func (h Hand) Minus(o Hand) Hand { return HandFromMask(h.mask &^ o.mask) }

// Complement returns the 52-card universe minus h.
func (h Hand) Complement() Hand { return HandFromMask(^h.mask) }

// Equal reports whether both hands hold the same cards.
func (h Hand) Equal(o Hand) bool { return h.mask == o.mask }

// ---------------------------------------------------------------------------
// Trick queries
// ---------------------------------------------------------------------------

// addAbove appends the cards of src in suit s ranked strictly above r.
func (h *Hand) addAbove(src *Hand, s Suit, r Rank) {
	for j := src.upper(s, r); j < int(src.lens[s]); j++ {
		h.Add(NewCard(s, src.ranks[s][j]))
	}
}

// CardsThatBeat returns the cards of h that strictly beat card under Compare.
// When led is NoSuit the card's own suit is taken as led.
func (h Hand) CardsThatBeat(card Card, led, trump Suit) Hand {
	if card.IsNone() {
		return h
	}
	cs := card.Suit()
	if led == NoSuit {
		led = cs
	}
	var out Hand
	if trump != NoSuit && cs == trump {
		out.addAbove(&h, trump, card.Rank())
		return out
	}
	out.addAbove(&h, cs, card.Rank())
	if cs != led {
		out.AddHand(h.SubHand(led))
	}
	if trump != NoSuit {
		out.AddHand(h.SubHand(trump))
	}
	return out
}

// PlayableThatBeat returns the cards h may legally play on a trick led with led
// that beat card.
func (h Hand) PlayableThatBeat(card Card, led, trump Suit) Hand {
	beat := h.CardsThatBeat(card, led, trump)
	legal := h.LegalPlays(led)
	return beat.Intersect(legal)
}

// IsLegalFollow reports whether c may be played: it must be in the hand, and if
// a suit was led and the hand holds that suit, c must follow it.
func (h Hand) IsLegalFollow(c Card, led Suit) bool {
	if !h.Has(c) {
		return false
	}
	if led == NoSuit || c.Suit() == led {
		return true
	}
	return h.lens[led] == 0
}

// LegalPlays returns every card that IsLegalFollow accepts.
func (h Hand) LegalPlays(led Suit) Hand {
	if led != NoSuit && h.lens[led] != 0 {
		return h.SubHand(led)
	}
	return h
}

// LeastToFollow returns the lowest-priority legal card: the lowest led-suit card
// if any; otherwise the lowest non-trump rank over all suits, ties going to the
// suit with fewer cards per tieBreak (the hand's own lengths when nil);
// otherwise the lowest trump. It returns NoCard for an empty hand.
func (h Hand) LeastToFollow(led, trump Suit, tieBreak *[NumSuits]int) Card {
	if h.n == 0 {
		return NoCard
	}
	if led != NoSuit && h.lens[led] != 0 {
		return h.Lowest(led)
	}
	lens := h.SuitLens()
	if tieBreak != nil {
		lens = *tieBreak
	}
	minS, minR, minLen := NoSuit, NoRank, NumRanks+1
	for s := Suit(0); s < NumSuits; s++ {
		if s == trump || h.lens[s] == 0 {
			continue
		}
		r := h.ranks[s][0]
		if r < minR || (r == minR && lens[s] < minLen) {
			minS, minR, minLen = s, r, lens[s]
		}
	}
	if minS != NoSuit {
		return NewCard(minS, minR)
	}
	return h.Lowest(trump)
}

// RanksBetween measures how far high sits above low from the point of view of
// this hand (typically the cards an opponent may hold). Across suits a trump
// low yields -52, a trump high +52, otherwise the plain rank difference. Within a
// suit it counts the hand's cards ranked in (low, high], negative when high < low.
func (h Hand) RanksBetween(low, high Card, trump Suit) int {
	ls, hs := low.Suit(), high.Suit()
	if ls != hs {
		switch {
		case trump != NoSuit && ls == trump:
			return -NumCards
		case trump != NoSuit && hs == trump:
			return NumCards
		}
		return int(high.Rank()) - int(low.Rank())
	}
	if ls >= NoSuit || h.lens[ls] == 0 {
		return 0
	}
	return h.upper(ls, high.Rank()) - h.upper(ls, low.Rank())
}

// ---------------------------------------------------------------------------
// Formatting
// ---------------------------------------------------------------------------

// String lists the cards by suit, e.g. "2S 9S,KH,3D".
func (h Hand) String() string {
	var parts []string
	for s := Suit(0); s < NumSuits; s++ {
		if h.lens[s] == 0 {
			continue
		}
		cs := make([]string, h.lens[s])
		for i := uint8(0); i < h.lens[s]; i++ {
			cs[i] = NewCard(s, h.ranks[s][i]).String()
		}
		parts = append(parts, strings.Join(cs, " "))
	}
	return strings.Join(parts, ",")
}

// SuitString renders one line per suit, e.g. "S: 2 9 K".
func (h Hand) SuitString() string {
	var b strings.Builder
	for s := Suit(0); s < NumSuits; s++ {
		b.WriteString(s.String())
		b.WriteString(":")
		for i := uint8(0); i < h.lens[s]; i++ {
			b.WriteString(" ")
			b.WriteString(h.ranks[s][i].String())
		}
		b.WriteString("\n")
	}
	return b.String()
}
