// Command hokm runs batches of simulated Hokm matches, sweeps the sound
// agent's thresholds, or serves one table whose remote seats are taken by
// WebSocket clients.
package main

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	engine "github.com/Mear-MRK/hokm/engine"
	"github.com/Mear-MRK/hokm/engine/agent"
	"github.com/Mear-MRK/hokm/service/internal/config"
	"github.com/Mear-MRK/hokm/service/internal/game"
	"github.com/Mear-MRK/hokm/service/internal/remote"
)

func main() {
	envFile := flag.String("env", ".env", "dotenv file to load before reading HOKM_* variables")
	mode := flag.String("mode", "sim", "sim runs a batch of matches, tune sweeps thresholds, serve hosts one table")
	remotes := flag.String("remote", "0", "comma separated seats taken by remote clients in serve mode")
	sweep := flag.String("tune", string(game.TuneFloor), "thresholds swept in tune mode: floor, cap or floor-cap")
	gridN := flag.Int("grid", 11, "grid points in tune mode")
	gridMin := flag.Float64("grid-min", 0, "lowest grid probability")
	gridMax := flag.Float64("grid-max", 1, "highest grid probability")
	flag.Parse()

	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg, err := config.Load(*envFile)
	if err != nil {
		log.WithError(err).Fatal("config")
	}
	log.SetLevel(cfg.LogLevel)
	if cfg.Seed == 0 {
		cfg.Seed = uint64(time.Now().UnixNano())
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch *mode {
	case "sim":
		err = simulate(ctx, cfg, log)
	case "tune":
		err = tune(ctx, cfg, game.TuneMode(*sweep), game.ProbGrid(*gridN, *gridMin, *gridMax), log)
	case "serve":
		var seats []uint8
		seats, err = parseSeats(*remotes)
		if err == nil {
			err = serve(ctx, cfg, seats, log)
		}
	default:
		err = fmt.Errorf("unknown mode %q", *mode)
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		log.WithError(err).Fatal("hokm")
	}
}

func simulate(ctx context.Context, cfg config.Config, log *logrus.Logger) error {
	start := time.Now()
	res, err := game.RunBatch(ctx, game.BatchOptions{
		Tables:   cfg.Tables,
		Parallel: cfg.Parallel,
		Seed:     cfg.Seed,
		Rules:    cfg.HouseRules(),
		Logger:   log,
		Lineup: func(table int, seed uint64) ([engine.NumPlayers]agent.Player, error) {
			return game.NewLineup(cfg.Agents, cfg.AgentOptions(log.WithField("batch_table", table)), seed)
		},
	})
	log.WithFields(logrus.Fields{
		"lineup":     cfg.Agents,
		"seed":       cfg.Seed,
		"tables":     res.Tables,
		"match_wins": fmt.Sprintf("%d-%d", res.MatchWins[0], res.MatchWins[1]),
		"round_wins": fmt.Sprintf("%d-%d", res.RoundWins[0], res.RoundWins[1]),
		"kots":       fmt.Sprintf("%d-%d", res.Kots[0], res.Kots[1]),
		"rounds":     res.Rounds,
		"elapsed":    time.Since(start).Round(time.Millisecond),
	}).Info("batch done")
	return err
}

func tune(ctx context.Context, cfg config.Config, mode game.TuneMode, grid []float64, log *logrus.Logger) error {
	start := time.Now()
	res, err := game.Tune(ctx, game.TuneOptions{
		Mode:     mode,
		Grid:     grid,
		Tables:   cfg.Tables,
		Parallel: cfg.Parallel,
		Seed:     cfg.Seed,
		Rules:    cfg.HouseRules(),
		Base:     cfg.AgentOptions(log),
		Logger:   log,
	})
	for _, s := range res.Scores {
		log.WithFields(logrus.Fields{
			"floor":      s.Floor,
			"cap":        s.Cap,
			"round_wins": s.RoundWins,
			"rounds":     s.Rounds,
			"win_rate":   fmt.Sprintf("%.3f", s.WinRate()),
		}).Info("candidate")
	}
	if res.Best >= 0 {
		best := res.Scores[res.Best]
		log.WithFields(logrus.Fields{
			"mode":    mode,
			"floor":   best.Floor,
			"cap":     best.Cap,
			"elapsed": time.Since(start).Round(time.Millisecond),
		}).Info("best thresholds")
	}
	return err
}

func serve(ctx context.Context, cfg config.Config, seats []uint8, log *logrus.Logger) error {
	secret := cfg.TokenSecret
	if len(secret) == 0 {
		secret = make([]byte, 32)
		if _, err := rand.Read(secret); err != nil {
			return fmt.Errorf("token secret: %w", err)
		}
		log.Warn("HOKM_TOKEN_SECRET is unset, reconnect tokens die with the process")
	}

	id := uuid.New()
	players, err := game.NewLineup(cfg.Agents, cfg.AgentOptions(log), cfg.Seed)
	if err != nil {
		return err
	}
	srv := remote.NewServer(secret, log)
	defer srv.Close()
	stopClose := srv.CloseOnDone(ctx)
	defer stopClose()
	for _, s := range seats {
		seat := remote.NewSeat(s, id, cfg.TurnTimeout, log)
		srv.Register(seat)
		players[s] = seat
		log.WithFields(logrus.Fields{"seat": s, "join": fmt.Sprintf("/ws?table=%s&seat=%d", id, s)}).Info("remote seat open")
	}
	tbl, err := game.NewTableWithID(id, players, cfg.Seed, cfg.HouseRules(), log)
	if err != nil {
		return err
	}
	tbl.EventFn = func(ev game.Event) {
		if b, err := json.Marshal(ev); err == nil {
			log.WithField("event", string(b)).Debug(string(ev.Type))
		}
	}

	mux := http.NewServeMux()
	mux.Handle("/ws", srv)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("/score", func(w http.ResponseWriter, r *http.Request) {
		seat, err := strconv.Atoi(r.URL.Query().Get("seat"))
		if err != nil || seat < 0 || seat >= engine.NumPlayers {
			http.Error(w, "bad seat", http.StatusBadRequest)
			return
		}
		v := tbl.View(uint8(seat))
		v.Hand, v.Legal = nil, nil
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(v)
	})
	hs := &http.Server{Addr: cfg.Addr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		log.WithField("addr", cfg.Addr).Info("listening")
		if err := hs.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Error("http server")
		}
	}()
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = hs.Shutdown(sctx)
	}()

	res, err := tbl.PlayMatch(ctx)
	if err != nil {
		return err
	}
	log.WithFields(logrus.Fields{
		"winner": res.Winner,
		"points": fmt.Sprintf("%d-%d", res.Points[0], res.Points[1]),
	}).Info("table closed")
	return nil
}

func parseSeats(s string) ([]uint8, error) {
	var out []uint8
	seen := map[int]bool{}
	for _, f := range strings.Split(s, ",") {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		n, err := strconv.Atoi(f)
		if err != nil || n < 0 || n >= engine.NumPlayers || seen[n] {
			return nil, fmt.Errorf("bad remote seat %q", f)
		}
		seen[n] = true
		out = append(out, uint8(n))
	}
	return out, nil
}
