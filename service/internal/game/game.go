// internal/game/game.go
package game

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	engine "github.com/Mear-MRK/hokm/engine"
	"github.com/Mear-MRK/hokm/engine/agent"
)

// ErrSeatMismatch is returned by NewTable when a player does not sit where it
// was placed.
var ErrSeatMismatch = errors.New("player seat does not match table seat")

// EventType represents the type of a table event.
type EventType string

// Constants defining the Event types emitted by a Table.
const (
	EventRoundStart  EventType = "round_start"  // New round dealt; Seat is the opener.
	EventTrumpCalled EventType = "trump_called" // Opener called trump; Suit is the trump.
	EventCardPlayed  EventType = "card_played"  // Seat played Card.
	EventTrickWon    EventType = "trick_won"    // Seat took the trick just completed.
	EventRoundEnd    EventType = "round_end"    // Winner team scored Kot bonus points.
	EventMatchEnd    EventType = "match_end"    // Winner team reached the match threshold.
)

// Event is the structure for broadcasting table state changes.
type Event struct {
	Type    EventType                  `json:"type"`
	TableID uuid.UUID                  `json:"tableId"`
	Round   int                        `json:"round"`
	Trick   int                        `json:"trick"`
	Seat    *int                       `json:"seat,omitempty"`
	Card    string                     `json:"card,omitempty"`
	Suit    string                     `json:"suit,omitempty"`
	Tricks  [engine.NumTeams]int       `json:"tricks"`
	Points  [engine.NumTeams]int       `json:"points"`
	Winner  *int                       `json:"winner,omitempty"` // Team.
	Kot     int                        `json:"kot,omitempty"`
	Table   *[engine.NumPlayers]string `json:"table,omitempty"`  // Completed trick by seat.
}

// RoundResult summarises a finished round.
type RoundResult struct {
	Opener uint8
	Trump  engine.Suit
	Winner int8 // team
	Points uint8
	Kot    uint8
	Tricks [engine.NumTeams]uint8
}

// MatchResult summarises a finished match.
type MatchResult struct {
	Winner    int8
	Points    [engine.NumTeams]uint8
	Kots      [engine.NumTeams]uint8
	Rounds    int
	RoundWins [engine.NumTeams]int
}

// Table runs Hokm rounds and matches between four players.
type Table struct {
	ID    uuid.UUID
	Rules engine.HouseRules

	// EventFn receives every table event. It is called synchronously.
	EventFn func(ev Event)

	players   [engine.NumPlayers]agent.Player
	log       *logrus.Entry
	deck      engine.Deck
	match     engine.MatchState
	roundWins [engine.NumTeams]int

	mu     sync.Mutex // guards the View snapshot
	round  engine.RoundState
	points [engine.NumTeams]uint8
}

// NewTable seats players (players[i] must report seat i) and seeds the deck.
func NewTable(players [engine.NumPlayers]agent.Player, seed uint64, rules engine.HouseRules, log logrus.FieldLogger) (*Table, error) {
	return NewTableWithID(uuid.New(), players, seed, rules, log)
}

// NewTableWithID is NewTable for a table whose id was handed out beforehand,
// as remote seats need it before the table exists.
func NewTableWithID(id uuid.UUID, players [engine.NumPlayers]agent.Player, seed uint64, rules engine.HouseRules, log logrus.FieldLogger) (*Table, error) {
	for seat, p := range players {
		if p == nil {
			return nil, fmt.Errorf("new table: seat %d is empty", seat)
		}
		if int(p.Seat()) != seat {
			return nil, fmt.Errorf("new table: %w: %s reports seat %d at seat %d", ErrSeatMismatch, p.Name(), p.Seat(), seat)
		}
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	t := &Table{
		ID:      id,
		Rules:   rules,
		players: players,
		log:     log.WithField("table", id.String()),
		deck:    engine.NewDeck(seed),
		match:   engine.NewMatch(rules),
	}
	t.round = engine.NewRound(engine.DealResult{}, 0, rules)
	return t, nil
}

// Match returns a copy of the match score.
func (t *Table) Match() engine.MatchState { return t.match }

// fireEvent stamps and forwards an event to EventFn.
func (t *Table) fireEvent(ev Event) {
	if t.EventFn == nil {
		return
	}
	ev.TableID = t.ID
	if ev.Round == 0 {
		ev.Round = int(t.match.Rounds)
	}
	ev.Points = teamCounts(t.match.Points)
	t.EventFn(ev)
}

func seatPtr(seat uint8) *int {
	v := int(seat)
	return &v
}

// PlayRound deals and plays one round, then records it in the match. It stops
// between plays when ctx is done.
func (t *Table) PlayRound(ctx context.Context) (RoundResult, error) {
	if err := ctx.Err(); err != nil {
		return RoundResult{}, err
	}
	round := int(t.match.Rounds) + 1
	opener := t.match.NextOpener(&t.deck)
	t.deck.Shuffle()
	deal := t.deck.Deal(opener)
	r := engine.NewRound(deal, opener, t.Rules)
	for seat, p := range t.players {
		p.InitRound(deal.Hands[seat])
	}
	t.setRound(&r)
	t.fireEvent(Event{Type: EventRoundStart, Round: round, Seat: seatPtr(opener)})

	firstFive := engine.NewHand(deal.FirstFive[:]...)
	trump := t.players[opener].CallTrump(firstFive)
	if err := r.SetTrump(trump); err != nil {
		t.log.WithError(err).WithField("seat", opener).Warn("invalid trump call, scoring first five instead")
		if err := r.SetTrump(agent.ChooseTrump(firstFive)); err != nil {
			return RoundResult{}, fmt.Errorf("table %s: set trump: %w", t.ID, err)
		}
	}
	t.setRound(&r)
	t.log.WithFields(logrus.Fields{"opener": opener, "trump": r.Trump.String()}).Debug("round started")
	t.fireEvent(Event{Type: EventTrumpCalled, Round: round, Seat: seatPtr(opener), Suit: SuitString(r.Trump)})

	for !r.IsOver() {
		if err := ctx.Err(); err != nil {
			return RoundResult{}, err
		}
		seat := r.ToAct()
		led := r.Led
		c := t.players[seat].Play(r.Trick())
		if err := r.ApplyPlay(c); err != nil {
			return RoundResult{}, fmt.Errorf("table %s: %s: %w", t.ID, t.players[seat].Name(), err)
		}
		for _, p := range t.players {
			p.Observe(seat, c, led)
		}
		t.setRound(&r)
		t.fireEvent(Event{
			Type:   EventCardPlayed,
			Round:  round,
			Trick:  int(r.TrickID),
			Seat:   seatPtr(seat),
			Card:   CardString(c),
			Tricks: teamCounts(r.Tricks),
		})
		if r.Order == 0 {
			last := tableStrings(r.LastTrick)
			t.fireEvent(Event{
				Type:   EventTrickWon,
				Round:  round,
				Trick:  int(r.TrickID) - 1,
				Seat:   seatPtr(uint8(r.LastWinner)),
				Tricks: teamCounts(r.Tricks),
				Table:  &last,
			})
		}
	}

	res := RoundResult{
		Opener: opener,
		Trump:  r.Trump,
		Kot:    r.Kot(),
		Tricks: r.Tricks,
	}
	res.Winner, res.Points = t.match.RecordRound(&r)
	t.setRound(&r)
	if res.Winner >= 0 {
		t.roundWins[res.Winner]++
	}
	winner := int(res.Winner)
	t.log.WithFields(logrus.Fields{
		"winner": res.Winner,
		"tricks": fmt.Sprintf("%d-%d", r.Tricks[0], r.Tricks[1]),
		"kot":    res.Kot,
	}).Debug("round over")
	t.fireEvent(Event{
		Type:   EventRoundEnd,
		Round:  round,
		Trick:  int(r.TrickID),
		Winner: &winner,
		Kot:    int(res.Kot),
		Tricks: teamCounts(r.Tricks),
	})
	return res, nil
}

// PlayMatch plays rounds until a team reaches the match threshold.
func (t *Table) PlayMatch(ctx context.Context) (MatchResult, error) {
	t.match = engine.NewMatch(t.Rules)
	t.roundWins = [engine.NumTeams]int{}
	for _, p := range t.players {
		p.Reset()
	}
	for !t.match.IsOver() {
		if _, err := t.PlayRound(ctx); err != nil {
			return t.result(), err
		}
	}
	res := t.result()
	winner := int(res.Winner)
	t.log.WithFields(logrus.Fields{
		"winner": res.Winner,
		"points": fmt.Sprintf("%d-%d", res.Points[0], res.Points[1]),
		"rounds": res.Rounds,
	}).Info("match over")
	t.fireEvent(Event{Type: EventMatchEnd, Winner: &winner})
	return res, nil
}

func (t *Table) result() MatchResult {
	return MatchResult{
		Winner:    t.match.Winner(),
		Points:    t.match.Points,
		Kots:      t.match.Kots,
		Rounds:    int(t.match.Rounds),
		RoundWins: t.roundWins,
	}
}

func (t *Table) setRound(r *engine.RoundState) {
	t.mu.Lock()
	t.round = *r
	t.points = t.match.Points
	t.mu.Unlock()
}
