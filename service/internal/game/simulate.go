package game

import (
	"context"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	engine "github.com/Mear-MRK/hokm/engine"
	"github.com/Mear-MRK/hokm/engine/agent"
)

// seedStride spreads per-table seeds over the 64-bit space.
const seedStride = 0x9E3779B97F4A7C15

// LineupFunc builds the players of the table with the given index and seed.
type LineupFunc func(table int, seed uint64) ([engine.NumPlayers]agent.Player, error)

// BatchOptions configures RunBatch.
type BatchOptions struct {
	Tables   int
	Parallel int // concurrent tables, all at once when <= 0
	Seed     uint64
	Rules    engine.HouseRules
	Lineup   LineupFunc
	Logger   logrus.FieldLogger
}

// BatchResult aggregates the matches of a batch.
type BatchResult struct {
	Tables    int
	MatchWins [engine.NumTeams]int
	RoundWins [engine.NumTeams]int
	Kots      [engine.NumTeams]int
	Rounds    int
}

// add folds one match into the totals.
func (b *BatchResult) add(m MatchResult) {
	b.Tables++
	if m.Winner >= 0 {
		b.MatchWins[m.Winner]++
	}
	for team := range b.RoundWins {
		b.RoundWins[team] += m.RoundWins[team]
		b.Kots[team] += int(m.Kots[team])
	}
	b.Rounds += m.Rounds
}

// TableSeed returns the deck seed of table i in a batch seeded with base.
func TableSeed(base uint64, i int) uint64 {
	return base + uint64(i+1)*seedStride
}

// RunBatch plays one match per table on independent tables in parallel. The
// first failing table cancels the rest; no new table starts once ctx is done.
func RunBatch(ctx context.Context, opts BatchOptions) (BatchResult, error) {
	var (
		mu  sync.Mutex
		out BatchResult
	)
	if opts.Lineup == nil {
		return out, fmt.Errorf("run batch: no lineup")
	}
	log := opts.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}
	g, gctx := errgroup.WithContext(ctx)
	if opts.Parallel > 0 {
		g.SetLimit(opts.Parallel)
	}
	for i := 0; i < opts.Tables; i++ {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			seed := TableSeed(opts.Seed, i)
			players, err := opts.Lineup(i, seed)
			if err != nil {
				return fmt.Errorf("table %d: %w", i, err)
			}
			t, err := NewTable(players, seed, opts.Rules, log.WithField("batch_table", i))
			if err != nil {
				return fmt.Errorf("table %d: %w", i, err)
			}
			res, err := t.PlayMatch(gctx)
			if err != nil {
				return fmt.Errorf("table %d: %w", i, err)
			}
			mu.Lock()
			out.add(res)
			mu.Unlock()
			return nil
		})
	}
	err := g.Wait()
	if err == nil {
		err = ctx.Err()
	}
	return out, err
}
