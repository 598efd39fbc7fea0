// internal/game/sync_state.go
package game

import (
	"github.com/google/uuid"

	engine "github.com/Mear-MRK/hokm/engine"
)

// SeatView is the table as one seat sees it: its own hand, every face-up card
// and the scores. Other hands are reduced to their sizes.
type SeatView struct {
	TableID   uuid.UUID                 `json:"tableId"`
	Seat      int                       `json:"seat"`
	Hand      []string                  `json:"hand"`
	Legal     []string                  `json:"legal,omitempty"` // Populated when Seat is to act.
	HandSizes [engine.NumPlayers]int    `json:"handSizes"`
	Table     [engine.NumPlayers]string `json:"table"`
	LastTrick [engine.NumPlayers]string `json:"lastTrick"`
	Trump     string                    `json:"trump,omitempty"`
	Led       string                    `json:"led,omitempty"`
	Leader    int                       `json:"leader"`
	ToAct     int                       `json:"toAct"`
	Trick     int                       `json:"trick"`
	Tricks    [engine.NumTeams]int      `json:"tricks"`
	Points    [engine.NumTeams]int      `json:"points"`
}

// View returns the current round as seen from seat.
func (t *Table) View(seat uint8) SeatView {
	t.mu.Lock()
	r, points := t.round, t.points
	t.mu.Unlock()

	seat %= engine.NumPlayers
	v := SeatView{
		TableID:   t.ID,
		Seat:      int(seat),
		Hand:      HandStrings(r.Hands[seat]),
		Table:     tableStrings(r.Table),
		LastTrick: tableStrings(r.LastTrick),
		Trump:     SuitString(r.Trump),
		Led:       SuitString(r.Led),
		Leader:    int(r.Leader),
		ToAct:     int(r.ToAct()),
		Trick:     int(r.TrickID),
		Tricks:    teamCounts(r.Tricks),
		Points:    teamCounts(points),
	}
	for s := range r.Hands {
		v.HandSizes[s] = r.Hands[s].Len()
	}
	if !r.IsOver() && r.IsTrumpCalled() && r.ToAct() == seat {
		v.Legal = HandStrings(r.LegalPlays())
	}
	return v
}

// TrickView builds the view a player has when asked to play: its hand and the
// trick in progress. Hand sizes follow from the trick position.
func TrickView(tableID uuid.UUID, hand engine.Hand, t engine.TrickState) SeatView {
	v := SeatView{
		TableID: tableID,
		Seat:    int(t.Seat),
		Hand:    HandStrings(hand),
		Legal:   HandStrings(hand.LegalPlays(t.Led)),
		Table:   tableStrings(t.Table),
		Trump:   SuitString(t.Trump),
		Led:     SuitString(t.Led),
		Leader:  int(t.Leader),
		ToAct:   int(t.Seat),
		Trick:   int(t.TrickID),
		Tricks:  teamCounts(t.Scores),
	}
	for s := range v.HandSizes {
		n := engine.HandSize - int(t.TrickID)
		if !t.Table[s].IsNone() {
			n--
		}
		v.HandSizes[s] = n
	}
	return v
}
