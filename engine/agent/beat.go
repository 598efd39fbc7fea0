package agent

import engine "github.com/Mear-MRK/hokm/engine"

// OpponentView is what the agent knows about one hidden hand: the cards
// confirmed in it, the ambiguous cards it may hold, and how many of its cards
// are not yet confirmed.
type OpponentView struct {
	Certain engine.Hand
	Pool    engine.Hand
	Draw    int
}

// holdsNone returns the probability that the hand holds no card of set,
// treating its unknown cards as drawn without replacement from the pool.
func (v *OpponentView) holdsNone(set engine.Hand) float64 {
	if !v.Certain.Intersect(set).IsEmpty() {
		return 0
	}
	pool := v.Pool.Len()
	excl := v.Pool.Intersect(set).Len()
	draw := v.Draw
	if draw > pool {
		draw = pool
	}
	p := 1.0
	for i := 0; i < draw; i++ {
		if pool-excl-i <= 0 {
			return 0
		}
		p *= float64(pool-excl-i) / float64(pool-i)
	}
	return p
}

// all returns the union of the certain and possible cards.
func (v *OpponentView) all() engine.Hand { return v.Certain.Union(v.Pool) }

// BeatChance returns the probability that the opponent seen through v can
// legally play a card that beats card on a trick led with led (NoSuit when the
// agent is leading with card). Cards that are neither led nor trump are
// already beaten and score 1.
func BeatChance(v OpponentView, card engine.Card, led, trump engine.Suit) float64 {
	if card.IsNone() {
		return 1
	}
	if led == engine.NoSuit {
		led = card.Suit()
	}
	cs := card.Suit()
	known := v.all()
	ledCards := known.SubHand(led)
	hasTrump := trump != engine.NoSuit && trump != led
	switch {
	case cs == led:
		// A higher card of the led suit, or a void in it plus any trump.
		higher := known.SubHandAboveRank(led, card.Rank()+1)
		p := 1 - v.holdsNone(higher)
		if hasTrump {
			p += v.holdsNone(ledCards) - v.holdsNone(ledCards.Union(known.SubHand(trump)))
		}
		return clamp01(p)
	case trump != engine.NoSuit && cs == trump:
		// Only a void in the led suit with a higher trump wins.
		higher := known.SubHandAboveRank(trump, card.Rank()+1)
		return clamp01(v.holdsNone(ledCards) - v.holdsNone(ledCards.Union(higher)))
	}
	return 1
}

// EitherBeats combines two independent beat chances.
func EitherBeats(pa, pb float64) float64 { return 1 - (1-pa)*(1-pb) }

// BeatChanceFromTable is the marginal form of BeatChance: each card of the
// role's table is treated as held independently with its probability.
func BeatChanceFromTable(t *ProbTable, card engine.Card, led, trump engine.Suit) float64 {
	if card.IsNone() {
		return 1
	}
	if led == engine.NoSuit {
		led = card.Suit()
	}
	cs := card.Suit()
	hasTrump := trump != engine.NoSuit && trump != led
	pLed := t.anyOf(led, 0)
	switch {
	case cs == led:
		p := t.anyOf(led, card.Rank()+1)
		if hasTrump {
			p += (1 - pLed) * t.anyOf(trump, 0)
		}
		return clamp01(p)
	case trump != engine.NoSuit && cs == trump:
		return clamp01((1 - pLed) * t.anyOf(trump, card.Rank()+1))
	}
	return 1
}

// anyOf returns 1 - prod(1 - P) over the cards of suit s ranked at least from.
func (t *ProbTable) anyOf(s engine.Suit, from engine.Rank) float64 {
	none := 1.0
	for r := from; r < engine.NumRanks; r++ {
		none *= 1 - clamp01(t.Get(engine.NewCard(s, r)))
	}
	return 1 - none
}

func clamp01(x float64) float64 {
	switch {
	case x < 0:
		return 0
	case x > 1:
		return 1
	}
	return x
}
