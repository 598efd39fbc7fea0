// internal/game/engine_adapter.go
package game

import (
	"fmt"

	engine "github.com/Mear-MRK/hokm/engine"
)

// CardString renders a card as two characters ("AS", "TH"), or "" for NoCard.
func CardString(c engine.Card) string {
	if c.IsNone() {
		return ""
	}
	return c.String()
}

// SuitString renders a suit as one character, or "" for NoSuit.
func SuitString(s engine.Suit) string {
	if s >= engine.NoSuit {
		return ""
	}
	return s.String()
}

// ParseCard parses a client card string. It rejects NoCard.
func ParseCard(s string) (engine.Card, error) {
	c, err := engine.ParseCard(s)
	if err != nil {
		return engine.NoCard, fmt.Errorf("client card: %w", err)
	}
	return c, nil
}

// ParseSuit parses a client suit string.
func ParseSuit(s string) (engine.Suit, error) {
	su, err := engine.ParseSuit(s)
	if err != nil {
		return engine.NoSuit, fmt.Errorf("client suit: %w", err)
	}
	return su, nil
}

// HandStrings lists a hand's cards in suit, then rank order.
func HandStrings(h engine.Hand) []string {
	cards := h.Cards()
	out := make([]string, len(cards))
	for i, c := range cards {
		out[i] = c.String()
	}
	return out
}

// tableStrings renders a trick by seat, "" for empty slots.
func tableStrings(t [engine.NumPlayers]engine.Card) [engine.NumPlayers]string {
	var out [engine.NumPlayers]string
	for seat, c := range t {
		out[seat] = CardString(c)
	}
	return out
}

func teamCounts(v [engine.NumTeams]uint8) [engine.NumTeams]int {
	return [engine.NumTeams]int{int(v[0]), int(v[1])}
}
