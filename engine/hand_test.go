package engine

import (
	"math/rand/v2"
	"testing"
)

// checkHandInvariant verifies the mask matches the per-suit arrays and that
// every suit is strictly ascending.
func checkHandInvariant(t *testing.T, h *Hand) {
	t.Helper()
	var mask uint64
	n := 0
	for s := Suit(0); s < NumSuits; s++ {
		for i := uint8(0); i < h.lens[s]; i++ {
			if i > 0 && h.ranks[s][i] <= h.ranks[s][i-1] {
				t.Fatalf("suit %s not strictly ascending: %v", s, h.ranks[s][:h.lens[s]])
			}
			mask |= NewCard(s, h.ranks[s][i]).bit()
			n++
		}
	}
	if mask != h.mask {
		t.Fatalf("mask = %x, want %x", h.mask, mask)
	}
	if n != h.Len() {
		t.Fatalf("Len() = %d, want %d", h.Len(), n)
	}
}

func randomHand(rng *rand.Rand, n int) Hand {
	var h Hand
	for _, id := range rng.Perm(NumCards)[:n] {
		h.Add(Card(id))
	}
	return h
}

// TestHandAddRemove verifies sorted insertion, duplicates and removal.
func TestHandAddRemove(t *testing.T) {
	h := mustHand(t, "KS", "2S", "9S", "AH")
	checkHandInvariant(t, &h)
	if h.Add(mustCard(t, "9S")) {
		t.Error("Add duplicate returned true")
	}
	if h.Add(NoCard) {
		t.Error("Add(NoCard) returned true")
	}
	if got := h.String(); got != "2S 9S KS,AH" {
		t.Errorf("String() = %q, want %q", got, "2S 9S KS,AH")
	}
	if !h.Remove(mustCard(t, "9S")) || h.Has(mustCard(t, "9S")) {
		t.Error("Remove(9S) failed")
	}
	if h.Remove(mustCard(t, "9S")) {
		t.Error("second Remove(9S) returned true")
	}
	checkHandInvariant(t, &h)
	if h.Len() != 3 || h.SuitLen(SuitSpades) != 2 {
		t.Errorf("Len/SuitLen = %d/%d, want 3/2", h.Len(), h.SuitLen(SuitSpades))
	}
	if h.Lowest(SuitSpades) != mustCard(t, "2S") || h.Highest(SuitSpades) != mustCard(t, "KS") {
		t.Errorf("Lowest/Highest = %s/%s", h.Lowest(SuitSpades), h.Highest(SuitSpades))
	}
	if h.Lowest(SuitClubs) != NoCard {
		t.Error("Lowest of empty suit should be NoCard")
	}
}

// TestHandRandomOps keeps the invariant through random add/remove sequences.
func TestHandRandomOps(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	var h Hand
	ref := map[Card]bool{}
	for i := 0; i < 5000; i++ {
		c := Card(rng.IntN(NumCards))
		if rng.IntN(2) == 0 {
			if h.Add(c) == ref[c] {
				t.Fatalf("Add(%s) disagrees with reference", c)
			}
			ref[c] = true
		} else {
			if h.Remove(c) != ref[c] {
				t.Fatalf("Remove(%s) disagrees with reference", c)
			}
			delete(ref, c)
		}
		checkHandInvariant(t, &h)
	}
	if h.Len() != len(ref) {
		t.Errorf("Len() = %d, want %d", h.Len(), len(ref))
	}
}

// TestHandSetAlgebra verifies union, intersection, minus and complement.
func TestHandSetAlgebra(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 4))
	for i := 0; i < 200; i++ {
		x, y := randomHand(rng, rng.IntN(27)), randomHand(rng, rng.IntN(27))
		u, in, m, c := x.Union(y), x.Intersect(y), x.Minus(y), x.Complement()
		for _, h := range []*Hand{&u, &in, &m, &c} {
			checkHandInvariant(t, h)
		}
		for id := 0; id < NumCards; id++ {
			k := Card(id)
			if u.Has(k) != (x.Has(k) || y.Has(k)) {
				t.Fatalf("Union wrong on %s", k)
			}
			if in.Has(k) != (x.Has(k) && y.Has(k)) {
				t.Fatalf("Intersect wrong on %s", k)
			}
			if m.Has(k) != (x.Has(k) && !y.Has(k)) {
				t.Fatalf("Minus wrong on %s", k)
			}
			if c.Has(k) == x.Has(k) {
				t.Fatalf("Complement wrong on %s", k)
			}
		}
	}
	if FullDeck().Len() != NumCards {
		t.Errorf("FullDeck().Len() = %d", FullDeck().Len())
	}
}

// TestSubHands verifies suit filters and whole-suit removal.
func TestSubHands(t *testing.T) {
	h := mustHand(t, "2S", "9S", "JS", "AS", "3H", "QD")
	if got := h.SubHand(SuitSpades).String(); got != "2S 9S JS AS" {
		t.Errorf("SubHand(S) = %q", got)
	}
	if got := h.SubHandAboveRank(SuitSpades, RankJack).String(); got != "JS AS" {
		t.Errorf("SubHandAboveRank(S, J) = %q", got)
	}
	if got := h.SubHandAboveRank(SuitSpades, RankTwo).Len(); got != 4 {
		t.Errorf("SubHandAboveRank(S, 2).Len() = %d, want 4", got)
	}
	if !h.SubHand(NoSuit).IsEmpty() {
		t.Error("SubHand(NoSuit) should be empty")
	}
	s := h.PopSuit(SuitSpades)
	checkHandInvariant(t, &h)
	checkHandInvariant(t, &s)
	if s.Len() != 4 || h.Len() != 2 || h.SuitLen(SuitSpades) != 0 {
		t.Errorf("PopSuit: popped %d, left %d", s.Len(), h.Len())
	}
	h.DiscardSuit(SuitHearts)
	checkHandInvariant(t, &h)
	if h.String() != "QD" {
		t.Errorf("after DiscardSuit(H) = %q, want %q", h.String(), "QD")
	}
}

// TestCardsThatBeatMatchesCompare cross-checks the bisect query against a scan.
func TestCardsThatBeatMatchesCompare(t *testing.T) {
	rng := rand.New(rand.NewPCG(5, 6))
	for i := 0; i < 300; i++ {
		h := randomHand(rng, rng.IntN(40))
		target := Card(rng.IntN(NumCards))
		led := Suit(rng.IntN(NumSuits + 1))
		trump := Suit(rng.IntN(NumSuits + 1))
		got := h.CardsThatBeat(target, led, trump)
		checkHandInvariant(t, &got)
		effLed := led
		if effLed == NoSuit {
			effLed = target.Suit()
		}
		for _, c := range h.Cards() {
			want := Compare(c, target, effLed, trump) > 0
			if got.Has(c) != want {
				t.Fatalf("CardsThatBeat(%s, led=%s, trump=%s) on %s: %s in=%v want %v",
					target, led, trump, h, c, got.Has(c), want)
			}
		}
		if !got.Minus(h).IsEmpty() {
			t.Fatalf("CardsThatBeat returned cards outside the hand")
		}
	}
	h := mustHand(t, "2S", "AH")
	if !h.CardsThatBeat(NoCard, SuitSpades, SuitHearts).Equal(h) {
		t.Error("every card beats NoCard")
	}
}

// TestLegalFollow verifies follow-suit rules.
func TestLegalFollow(t *testing.T) {
	h := mustHand(t, "2S", "KS", "3H")
	if !h.IsLegalFollow(mustCard(t, "3H"), NoSuit) {
		t.Error("any held card may lead")
	}
	if h.IsLegalFollow(mustCard(t, "3H"), SuitSpades) {
		t.Error("must follow spades")
	}
	if !h.IsLegalFollow(mustCard(t, "3H"), SuitClubs) {
		t.Error("void in clubs, any card is legal")
	}
	if h.IsLegalFollow(mustCard(t, "AS"), SuitSpades) {
		t.Error("card not in hand is never legal")
	}
	if got := h.LegalPlays(SuitSpades).String(); got != "2S KS" {
		t.Errorf("LegalPlays(S) = %q", got)
	}
	if got := h.LegalPlays(SuitDiamonds).Len(); got != 3 {
		t.Errorf("LegalPlays(D).Len() = %d, want 3", got)
	}
	p := h.PlayableThatBeat(mustCard(t, "QS"), SuitSpades, SuitHearts)
	if p.String() != "KS" {
		t.Errorf("PlayableThatBeat(QS) = %q, want KS", p.String())
	}
}

// TestLeastToFollow covers each priority tier.
func TestLeastToFollow(t *testing.T) {
	tests := []struct {
		name  string
		hand  []string
		led   Suit
		trump Suit
		tie   *[NumSuits]int
		want  string
	}{
		{"led suit first", []string{"2C", "9S", "KS"}, SuitSpades, SuitHearts, nil, "9S"},
		{"lowest non-trump", []string{"5C", "3D", "2H"}, SuitSpades, SuitHearts, nil, "3D"},
		{"tie to shorter suit", []string{"3C", "9C", "3D"}, SuitSpades, SuitHearts, nil, "3D"},
		{"tie per override", []string{"3C", "9C", "3D"}, SuitSpades, SuitHearts, &[NumSuits]int{0, 0, 1, 5}, "3C"},
		{"trump last", []string{"2H", "5H"}, SuitSpades, SuitHearts, nil, "2H"},
		{"no trump called", []string{"2H", "5C"}, NoSuit, NoSuit, nil, "2H"},
	}
	for _, tt := range tests {
		h := mustHand(t, tt.hand...)
		if got := h.LeastToFollow(tt.led, tt.trump, tt.tie); got.String() != tt.want {
			t.Errorf("%s: LeastToFollow = %s, want %s", tt.name, got, tt.want)
		}
	}
	var empty Hand
	if empty.LeastToFollow(SuitSpades, SuitHearts, nil) != NoCard {
		t.Error("empty hand should return NoCard")
	}
}

// TestRanksBetween covers the cross-suit and same-suit margins.
func TestRanksBetween(t *testing.T) {
	pool := mustHand(t, "9S", "JS", "QS", "2D")
	tests := []struct {
		low, high string
		want      int
	}{
		{"TS", "KS", 2},  // JS, QS in (T, K]
		{"KS", "TS", -2}, // reversed
		{"9S", "9S", 0},
		{"AH", "2S", -52}, // low is trump
		{"AS", "2H", 52},  // high is trump
		{"3C", "9C", 0},   // pool void in clubs
		{"3C", "9S", 6},   // off-suit rank difference
	}
	for _, tt := range tests {
		if got := pool.RanksBetween(mustCard(t, tt.low), mustCard(t, tt.high), SuitHearts); got != tt.want {
			t.Errorf("RanksBetween(%s, %s) = %d, want %d", tt.low, tt.high, got, tt.want)
		}
	}
}
