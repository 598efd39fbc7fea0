package agent

import (
	"fmt"

	"github.com/sirupsen/logrus"

	engine "github.com/Mear-MRK/hokm/engine"
)

// Odds selects how the agent estimates the chance an opponent beats a card.
type Odds uint8

const (
	// OddsCounting draws the opponent's unknown cards without replacement
	// from the cards it may hold.
	OddsCounting Odds = iota
	// OddsMarginal uses the exact per-card ownership tables as independent
	// marginals.
	OddsMarginal
)

func (o Odds) String() string {
	if o == OddsMarginal {
		return "marginal"
	}
	return "counting"
}

// ParseOdds parses "counting" or "marginal".
func ParseOdds(s string) (Odds, error) {
	switch s {
	case "", "counting":
		return OddsCounting, nil
	case "marginal":
		return OddsMarginal, nil
	}
	return OddsCounting, fmt.Errorf("unknown odds model %q", s)
}

// Options tunes a SoundAgent.
type Options struct {
	ProbFloor    float64 // minimum win chance to commit a card
	TrumpProbCap float64 // highest win chance at which a trump is spent
	ProbCeiling  float64 // highest win chance at which any card is spent
	Odds         Odds
	Rules        engine.HouseRules
	Verify       bool // check the partition invariants before every play
	Logger       logrus.FieldLogger
}

// DefaultOptions returns the standard thresholds.
func DefaultOptions() Options {
	return Options{
		ProbFloor:    0.5,
		TrumpProbCap: 1,
		ProbCeiling:  1,
		Odds:         OddsCounting,
		Rules:        engine.DefaultHouseRules(),
	}
}

// SoundAgent plays from an exact model of the three hidden hands.
type SoundAgent struct {
	seat   uint8
	name   string
	opts   Options
	log    *logrus.Entry
	hand   engine.Hand
	played engine.Hand // every card seen on the table this round
	part   Partition
	est    Estimate
}

// NewSoundAgent returns an agent for seat. Start opts from DefaultOptions; a
// zero ProbCeiling, which no card could pass, is raised to 1 and zero Rules
// become the default house rules.
func NewSoundAgent(seat uint8, opts Options) *SoundAgent {
	if opts.ProbCeiling == 0 {
		opts.ProbCeiling = 1
	}
	if opts.Rules == (engine.HouseRules{}) {
		opts.Rules = engine.DefaultHouseRules()
	}
	name := fmt.Sprintf("AI_%d", seat)
	var log logrus.FieldLogger = logrus.StandardLogger()
	if opts.Logger != nil {
		log = opts.Logger
	}
	return &SoundAgent{
		seat: seat % engine.NumPlayers,
		name: name,
		opts: opts,
		log:  log.WithFields(logrus.Fields{"agent": name, "seat": seat}),
	}
}

func (s *SoundAgent) Seat() uint8 { return s.seat }
func (s *SoundAgent) Name() string { return s.name }

// Hand returns the cards the agent still holds.
func (s *SoundAgent) Hand() engine.Hand { return s.hand }

// Partition exposes the agent's model of the hidden hands.
func (s *SoundAgent) Partition() *Partition { return &s.part }

// InitRound takes the dealt hand and forgets every inference.
func (s *SoundAgent) InitRound(hand engine.Hand) {
	s.hand = hand
	s.played.Clear()
	s.part.Reset(hand)
	s.est = Estimate{}
}

// Reset clears all per-round state.
func (s *SoundAgent) Reset() {
	s.hand.Clear()
	s.played.Clear()
	s.part = Partition{}
	s.est = Estimate{}
}

// CallTrump scores the first five cards.
func (s *SoundAgent) CallTrump(firstFive engine.Hand) engine.Suit {
	t := ChooseTrump(firstFive)
	s.log.WithField("first5", firstFive.String()).Debugf("called trump %s", t)
	return t
}

// Observe folds a card played by any seat into the model. The agent's own
// cards are removed from its hand in Play.
func (s *SoundAgent) Observe(seat uint8, c engine.Card, led engine.Suit) {
	s.played.Add(c)
	r := RoleOf(s.seat, seat)
	if r == NoRole {
		return
	}
	if err := s.part.Observe(r, c, led); err != nil {
		s.log.WithError(err).Warn("observe")
	}
}

// Play chooses the card for the current trick and removes it from the hand.
// It panics if the trick position is outside 0..3.
func (s *SoundAgent) Play(t engine.TrickState) engine.Card {
	if err := s.part.SetTargets(t.TrickID, t.Order); err != nil {
		s.log.WithError(err).Warn("targets")
	}
	s.part.Saturate()
	if s.opts.Verify {
		if err := s.part.Verify(s.hand, s.played); err != nil {
			s.log.WithError(err).Warn("verify")
		}
	}
	s.est = s.part.Estimate()
	if !s.est.Consistent {
		s.log.WithField("method", s.est.Method).Debug("inconsistent remaining counts, using uniform owners")
	}
	if s.log.Logger.IsLevelEnabled(logrus.TraceLevel) {
		s.log.Tracef("partition before trick %d order %d:\n%s", t.TrickID, t.Order, s.part.String())
	}

	out := s.decide(&t)
	if !s.hand.IsLegalFollow(out, t.Led) {
		s.log.WithField("card", out.String()).Warn("decision proposed an illegal card")
		out = s.hand.LeastToFollow(t.Led, t.Trump, nil)
	}
	s.hand.Remove(out)
	s.log.WithFields(logrus.Fields{
		"trick": t.TrickID,
		"order": t.Order,
		"led":   t.Led.String(),
		"trump": t.Trump.String(),
		"card":  out.String(),
	}).Debug("play")
	return out
}
