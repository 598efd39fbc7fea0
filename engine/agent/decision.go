package agent

import (
	"fmt"

	"github.com/sirupsen/logrus"

	engine "github.com/Mear-MRK/hokm/engine"
)

// certainWin is the win chance treated as a sure trick.
const certainWin = 1 - 1e-9

// beatChance returns the chance that role r beats card on a trick led with led.
func (s *SoundAgent) beatChance(r Role, card engine.Card, led, trump engine.Suit) float64 {
	if s.opts.Odds == OddsMarginal {
		return BeatChanceFromTable(&s.est.Tables[r], card, led, trump)
	}
	return BeatChance(s.part.View(r), card, led, trump)
}

// qualifies applies the thresholds to a candidate with win chance p.
func (s *SoundAgent) qualifies(c engine.Card, p float64, trump engine.Suit, critical bool) bool {
	if p <= s.opts.ProbFloor {
		return false
	}
	if critical {
		return true
	}
	if p > s.opts.ProbCeiling {
		return false
	}
	return c.Suit() != trump || p <= s.opts.TrumpProbCap
}

// choose picks among candidates by win chance. Sure non-trump winners are
// preferred, then the cheapest qualifying card. ok is false when nothing
// qualifies.
func (s *SoundAgent) choose(cands engine.Hand, t *engine.TrickState, critical bool, win func(engine.Card) float64) (engine.Card, bool) {
	var pass, sure engine.Hand
	for _, c := range cands.Cards() {
		p := win(c)
		if !s.qualifies(c, p, t.Trump, critical) {
			continue
		}
		pass.Add(c)
		if p >= certainWin && c.Suit() != t.Trump {
			sure.Add(c)
		}
	}
	if pass.IsEmpty() {
		return engine.NoCard, false
	}
	pick := pass
	if !sure.IsEmpty() {
		pick = sure
	}
	lens := s.hand.SuitLens()
	return pick.LeastToFollow(t.Led, t.Trump, &lens), true
}

// weakest is the lowest-priority legal card.
func (s *SoundAgent) weakest(t *engine.TrickState) engine.Card {
	return s.hand.LeastToFollow(t.Led, t.Trump, nil)
}

// critical reports whether the score calls for sure tricks over thrift.
func (s *SoundAgent) critical(t *engine.TrickState) bool {
	return s.opts.Rules.Critical(t.OwnScore(), t.OppScore())
}

// withoutCard returns v with c gone from both its certain and possible cards.
func (v OpponentView) withoutCard(c engine.Card) OpponentView {
	v.Certain.Remove(c)
	v.Pool.Remove(c)
	return v
}

// setupLead handles a lead with no qualifying card. For each side suit it
// draws out the opponents' top cards one trick at a time, as many as the hand
// can spare below its own top card, until that top card would win. The lowest
// card of the suit with the best resulting chance is led.
func (s *SoundAgent) setupLead(t *engine.TrickState) (engine.Card, bool) {
	trump := t.Trump
	var pick engine.Hand
	best := 0.0
	for su := engine.Suit(0); su < engine.NumSuits; su++ {
		n := s.hand.SuitLen(su)
		if su == trump || n < 2 {
			continue
		}
		top := s.hand.Highest(su)
		va, vb := s.part.View(RoleA), s.part.View(RoleB)
		for k := 1; k < n; k++ {
			high := va.all().Union(vb.all()).Highest(su)
			if high.IsNone() {
				break
			}
			va, vb = va.withoutCard(high), vb.withoutCard(high)
			p := 1 - EitherBeats(
				BeatChance(va, top, engine.NoSuit, trump),
				BeatChance(vb, top, engine.NoSuit, trump),
			)
			if p <= s.opts.ProbFloor {
				continue
			}
			switch {
			case p > best:
				pick.Clear()
				best = p
				pick.Add(s.hand.Lowest(su))
			case p == best:
				pick.Add(s.hand.Lowest(su))
			}
			break
		}
	}
	if pick.IsEmpty() {
		return engine.NoCard, false
	}
	s.log.WithFields(logrus.Fields{"cards": pick.String(), "chance": best}).Debug("no sure lead, drawing out a suit")
	return pick.LeastToFollow(engine.NoSuit, trump, nil), true
}

// decide runs the per-position selection.
func (s *SoundAgent) decide(t *engine.TrickState) engine.Card {
	critical := s.critical(t)
	cardOf := func(r Role) engine.Card { return t.Table[SeatOf(s.seat, r)] }
	led, trump := t.Led, t.Trump

	switch t.Order {
	case 0:
		win := func(c engine.Card) float64 {
			pa := s.beatChance(RoleA, c, engine.NoSuit, trump)
			pb := s.beatChance(RoleB, c, engine.NoSuit, trump)
			return 1 - EitherBeats(pa, pb)
		}
		if out, ok := s.choose(s.hand, t, critical, win); ok {
			return out
		}
		if out, ok := s.setupLead(t); ok {
			return out
		}
		return s.weakest(t)

	case 1:
		bCard := cardOf(RoleB)
		cands := s.hand.PlayableThatBeat(bCard, led, trump)
		win := func(c engine.Card) float64 { return 1 - s.beatChance(RoleA, c, led, trump) }
		if out, ok := s.choose(cands, t, critical, win); ok {
			return out
		}
		return s.weakest(t)

	case 2:
		bCard, cCard := cardOf(RoleB), cardOf(RoleC)
		partnerWinning := engine.Beats(cCard, bCard, led, trump)
		if partnerWinning && !critical && 1-s.beatChance(RoleA, cCard, led, trump) > s.opts.ProbFloor {
			return s.weakest(t)
		}
		cands := s.hand.PlayableThatBeat(bCard, led, trump)
		win := func(c engine.Card) float64 { return 1 - s.beatChance(RoleA, c, led, trump) }
		out, ok := s.choose(cands, t, critical, win)
		if !ok {
			return s.weakest(t)
		}
		if partnerWinning && (out.Suit() != trump || cCard.Suit() == trump) {
			pool := s.part.Possible(RoleA).Union(s.part.Confirmed(RoleA))
			pool.Add(bCard)
			if pool.RanksBetween(out, cCard, trump) >= 0 {
				return s.weakest(t)
			}
		}
		return out

	case 3:
		aCard, bCard, cCard := cardOf(RoleA), cardOf(RoleB), cardOf(RoleC)
		bestOpp := aCard
		if engine.Beats(bCard, aCard, led, trump) {
			bestOpp = bCard
		}
		if engine.Beats(cCard, bestOpp, led, trump) {
			return s.weakest(t)
		}
		hi := s.hand.PlayableThatBeat(bestOpp, led, trump)
		if !hi.IsEmpty() {
			return hi.LeastToFollow(led, trump, nil)
		}
		return s.weakest(t)
	}
	panic(fmt.Sprintf("agent %s: trick position %d outside 0..3", s.name, t.Order))
}
