package game

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	engine "github.com/Mear-MRK/hokm/engine"
	"github.com/Mear-MRK/hokm/engine/agent"
)

// ErrUnknownTuneMode is returned by Tune for an unrecognised mode.
var ErrUnknownTuneMode = errors.New("unknown tune mode")

// TuneMode selects which sound agent thresholds a sweep varies.
type TuneMode string

const (
	TuneFloor    TuneMode = "floor"     // ProbFloor over the grid
	TuneCap      TuneMode = "cap"       // TrumpProbCap over the grid with a zero floor
	TuneFloorCap TuneMode = "floor-cap" // every floor < cap pair of the grid
)

// Thresholds is one candidate setting in a sweep.
type Thresholds struct {
	Floor float64
	Cap   float64
}

func (th Thresholds) apply(base agent.Options) agent.Options {
	base.ProbFloor = th.Floor
	base.TrumpProbCap = th.Cap
	return base
}

// ProbGrid returns n evenly spaced values from lo to hi inclusive.
func ProbGrid(n int, lo, hi float64) []float64 {
	if n <= 1 {
		return []float64{lo}
	}
	out := make([]float64, n)
	for i := range out {
		out[i] = lo + float64(i)*(hi-lo)/float64(n-1)
	}
	return out
}

// Candidates lists the thresholds a sweep of mode over grid compares. Values
// not swept come from base.
func Candidates(mode TuneMode, grid []float64, base agent.Options) ([]Thresholds, error) {
	var out []Thresholds
	switch mode {
	case TuneFloor:
		for _, p := range grid {
			out = append(out, Thresholds{Floor: p, Cap: base.TrumpProbCap})
		}
	case TuneCap:
		for _, p := range grid {
			out = append(out, Thresholds{Floor: 0, Cap: p})
		}
	case TuneFloorCap:
		for i := range grid {
			for j := i + 1; j < len(grid); j++ {
				out = append(out, Thresholds{Floor: grid[i], Cap: grid[j]})
			}
		}
	default:
		return nil, fmt.Errorf("%w %q", ErrUnknownTuneMode, mode)
	}
	return out, nil
}

// TuneOptions configures Tune.
type TuneOptions struct {
	Mode     TuneMode
	Grid     []float64
	Tables   int // matches per pairing
	Parallel int
	Seed     uint64
	Rules    engine.HouseRules
	Base     agent.Options // settings not swept, including the agents' logger
	Logger   logrus.FieldLogger
}

// TuneScore is one candidate's record over all its pairings.
type TuneScore struct {
	Thresholds
	RoundWins int
	MatchWins int
	Rounds    int // rounds played in its pairings
}

// WinRate is the share of rounds the candidate's team won.
func (s TuneScore) WinRate() float64 {
	if s.Rounds == 0 {
		return 0
	}
	return float64(s.RoundWins) / float64(s.Rounds)
}

// TuneResult holds every candidate's score and the index of the best one, or
// -1 when no round was played.
type TuneResult struct {
	Scores []TuneScore
	Best   int
}

// credit folds a batch in which candidate i sat on team 0 and j on team 1.
func (r *TuneResult) credit(i, j int, b BatchResult) {
	for team, k := range [engine.NumTeams]int{i, j} {
		r.Scores[k].RoundWins += b.RoundWins[team]
		r.Scores[k].MatchWins += b.MatchWins[team]
		r.Scores[k].Rounds += b.Rounds
	}
}

// pickBest selects the candidate with the most round wins; the first one
// listed wins a tie.
func (r *TuneResult) pickBest() {
	r.Best = -1
	for k, s := range r.Scores {
		if s.Rounds == 0 {
			continue
		}
		if r.Best < 0 || s.RoundWins > r.Scores[r.Best].RoundWins {
			r.Best = k
		}
	}
}

// Tune plays every candidate against every other, once on each team, and
// credits each side with the rounds it won. Every pairing deals from the same
// seed so candidates meet the same cards.
func Tune(ctx context.Context, opts TuneOptions) (TuneResult, error) {
	cands, err := Candidates(opts.Mode, opts.Grid, opts.Base)
	if err != nil {
		return TuneResult{Best: -1}, err
	}
	if len(cands) < 2 {
		return TuneResult{Best: -1}, fmt.Errorf("tune: %d candidates, need at least two", len(cands))
	}
	log := opts.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}
	res := TuneResult{Scores: make([]TuneScore, len(cands)), Best: -1}
	for k, th := range cands {
		res.Scores[k].Thresholds = th
	}
	for i := range cands {
		for j := range cands {
			if i == j {
				continue
			}
			teams := [engine.NumTeams]agent.Options{cands[i].apply(opts.Base), cands[j].apply(opts.Base)}
			b, err := RunBatch(ctx, BatchOptions{
				Tables:   opts.Tables,
				Parallel: opts.Parallel,
				Seed:     opts.Seed,
				Rules:    opts.Rules,
				Logger:   log,
				Lineup: func(int, uint64) ([engine.NumPlayers]agent.Player, error) {
					return TeamLineup(teams), nil
				},
			})
			if err != nil {
				res.pickBest()
				return res, fmt.Errorf("tune %+v vs %+v: %w", cands[i], cands[j], err)
			}
			res.credit(i, j, b)
			log.WithFields(logrus.Fields{
				"team0":      cands[i],
				"team1":      cands[j],
				"round_wins": fmt.Sprintf("%d-%d", b.RoundWins[0], b.RoundWins[1]),
			}).Debug("pairing done")
		}
	}
	res.pickBest()
	return res, nil
}
