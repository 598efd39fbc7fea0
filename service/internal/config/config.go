// Package config loads the table runner settings from a .env file and the
// environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	engine "github.com/Mear-MRK/hokm/engine"
	"github.com/Mear-MRK/hokm/engine/agent"
)

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid config")

// Config holds the runner settings.
type Config struct {
	Addr        string        // HOKM_ADDR, listen address for remote seats
	Agents      string        // HOKM_AGENTS, lineup kind
	Tables      int           // HOKM_TABLES
	Parallel    int           // HOKM_PARALLEL
	Seed        uint64        // HOKM_SEED, 0 draws one from the clock
	LogLevel    logrus.Level  // HOKM_LOG_LEVEL
	TokenSecret []byte        // HOKM_TOKEN_SECRET
	TurnTimeout time.Duration // HOKM_TURN_TIMEOUT

	ProbFloor    float64 // HOKM_PROB_FLOOR
	TrumpProbCap float64 // HOKM_TRUMP_PROB_CAP
	ProbCeiling  float64 // HOKM_PROB_CEILING
	Odds         agent.Odds

	RoundWin uint8 // HOKM_ROUND_WIN
	GameWin  uint8 // HOKM_GAME_WIN
}

// Default returns the settings used when nothing is configured.
func Default() Config {
	opts := agent.DefaultOptions()
	rules := engine.DefaultHouseRules()
	return Config{
		Addr:         ":8080",
		Agents:       "sound",
		Tables:       100,
		Parallel:     4,
		LogLevel:     logrus.InfoLevel,
		TurnTimeout:  30 * time.Second,
		ProbFloor:    opts.ProbFloor,
		TrumpProbCap: opts.TrumpProbCap,
		ProbCeiling:  opts.ProbCeiling,
		Odds:         opts.Odds,
		RoundWin:     rules.RoundWinScore,
		GameWin:      rules.GameWinScore,
	}
}

// Load reads path with godotenv (a missing file is not an error) and then
// applies the HOKM_* environment variables over the defaults. Variables
// already set in the environment win over the file.
func Load(path string) (Config, error) {
	if path != "" {
		if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", path, err)
		}
	}
	return FromEnv(os.LookupEnv)
}

// FromEnv builds a config from a lookup function such as os.LookupEnv.
func FromEnv(lookup func(string) (string, bool)) (Config, error) {
	c := Default()
	var errs []error
	get := func(key string) (string, bool) {
		v, ok := lookup(key)
		v = strings.TrimSpace(v)
		return v, ok && v != ""
	}
	parse := func(key string, fn func(string) error) {
		if v, ok := get(key); ok {
			if err := fn(v); err != nil {
				errs = append(errs, fmt.Errorf("%w: %s=%q: %v", ErrInvalid, key, v, err))
			}
		}
	}

	if v, ok := get("HOKM_ADDR"); ok {
		c.Addr = v
	}
	if v, ok := get("HOKM_AGENTS"); ok {
		c.Agents = strings.ToLower(v)
	}
	if v, ok := get("HOKM_TOKEN_SECRET"); ok {
		c.TokenSecret = []byte(v)
	}
	parse("HOKM_TABLES", intInto(&c.Tables))
	parse("HOKM_PARALLEL", intInto(&c.Parallel))
	parse("HOKM_SEED", func(s string) (err error) {
		c.Seed, err = strconv.ParseUint(s, 10, 64)
		return err
	})
	parse("HOKM_PROB_FLOOR", floatInto(&c.ProbFloor))
	parse("HOKM_TRUMP_PROB_CAP", floatInto(&c.TrumpProbCap))
	parse("HOKM_PROB_CEILING", floatInto(&c.ProbCeiling))
	parse("HOKM_ODDS", func(s string) (err error) {
		c.Odds, err = agent.ParseOdds(strings.ToLower(s))
		return err
	})
	parse("HOKM_LOG_LEVEL", func(s string) (err error) {
		c.LogLevel, err = logrus.ParseLevel(s)
		return err
	})
	parse("HOKM_TURN_TIMEOUT", func(s string) (err error) {
		c.TurnTimeout, err = time.ParseDuration(s)
		return err
	})
	parse("HOKM_ROUND_WIN", uint8Into(&c.RoundWin))
	parse("HOKM_GAME_WIN", uint8Into(&c.GameWin))

	if err := errors.Join(errs...); err != nil {
		return c, err
	}
	return c, c.Validate()
}

func intInto(dst *int) func(string) error {
	return func(s string) (err error) {
		*dst, err = strconv.Atoi(s)
		return err
	}
}

func floatInto(dst *float64) func(string) error {
	return func(s string) (err error) {
		*dst, err = strconv.ParseFloat(s, 64)
		return err
	}
}

func uint8Into(dst *uint8) func(string) error {
	return func(s string) error {
		n, err := strconv.ParseUint(s, 10, 8)
		*dst = uint8(n)
		return err
	}
}

// Validate checks ranges.
func (c *Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalid}, args...)...))
		}
	}
	check(c.Tables >= 0, "tables %d is negative", c.Tables)
	check(c.Parallel >= 0, "parallel %d is negative", c.Parallel)
	check(c.TurnTimeout >= 0, "turn timeout %s is negative", c.TurnTimeout)
	for _, p := range []struct {
		name string
		v    float64
	}{{"prob floor", c.ProbFloor}, {"trump prob cap", c.TrumpProbCap}, {"prob ceiling", c.ProbCeiling}} {
		check(p.v >= 0 && p.v <= 1, "%s %v outside [0, 1]", p.name, p.v)
	}
	check(c.RoundWin >= 1 && c.RoundWin <= engine.NumTricks, "round win %d outside 1..%d", c.RoundWin, engine.NumTricks)
	check(c.GameWin >= 1, "game win must be positive")
	return errors.Join(errs...)
}

// AgentOptions returns the sound agent settings, logging to log.
func (c *Config) AgentOptions(log logrus.FieldLogger) agent.Options {
	opts := agent.DefaultOptions()
	opts.ProbFloor = c.ProbFloor
	opts.TrumpProbCap = c.TrumpProbCap
	opts.ProbCeiling = c.ProbCeiling
	opts.Odds = c.Odds
	opts.Rules = c.HouseRules()
	opts.Logger = log
	return opts
}

// HouseRules returns the configured scoring rules.
func (c *Config) HouseRules() engine.HouseRules {
	rules := engine.DefaultHouseRules()
	rules.RoundWinScore = c.RoundWin
	rules.GameWinScore = c.GameWin
	return rules
}
