package game

import (
	"errors"
	"fmt"

	engine "github.com/Mear-MRK/hokm/engine"
	"github.com/Mear-MRK/hokm/engine/agent"
)

// ErrUnknownLineup is returned by NewLineup for an unrecognised kind.
var ErrUnknownLineup = errors.New("unknown lineup")

// Lineup kinds accepted by NewLineup.
const (
	LineupSound  = "sound"  // four sound agents
	LineupRandom = "random" // four random agents
	LineupMixed  = "mixed"  // sound agents on team 0, random agents on team 1
)

// NewLineup builds the four players of a table. seed feeds the random agents.
func NewLineup(kind string, opts agent.Options, seed uint64) ([engine.NumPlayers]agent.Player, error) {
	var players [engine.NumPlayers]agent.Player
	for seat := uint8(0); seat < engine.NumPlayers; seat++ {
		sound := false
		switch kind {
		case LineupSound, "":
			sound = true
		case LineupRandom:
		case LineupMixed:
			sound = engine.TeamOf(seat) == 0
		default:
			return players, fmt.Errorf("%w %q", ErrUnknownLineup, kind)
		}
		if sound {
			players[seat] = agent.NewSoundAgent(seat, opts)
		} else {
			players[seat] = agent.NewRandomAgent(seat, seed)
		}
	}
	return players, nil
}

// TeamLineup seats sound agents on both teams, each team with its own
// options.
func TeamLineup(opts [engine.NumTeams]agent.Options) [engine.NumPlayers]agent.Player {
	var players [engine.NumPlayers]agent.Player
	for seat := uint8(0); seat < engine.NumPlayers; seat++ {
		players[seat] = agent.NewSoundAgent(seat, opts[engine.TeamOf(seat)])
	}
	return players
}
