// Package scoutstat implements the scoutstat command: it loads a scouting
// dataset, a catalogue and a formula set, then either serves the HTTP API
// or prints one report.
package scoutstat

import (
	"errors"
	"flag"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Subcommands.
const (
	CommandServe    = "serve"
	CommandTeam     = "team"
	CommandPicklist = "picklist"
	CommandMatch    = "match"
	CommandConvert  = "convert"
)

var commands = []string{CommandServe, CommandTeam, CommandPicklist, CommandMatch, CommandConvert}

// ErrUsage indicates a missing or unknown subcommand or a missing flag.
var ErrUsage = errors.New("usage error")

// Config holds scoutstat configuration. Environment variables provide the
// defaults and flags override them.
type Config struct {
	Command string

	Data        string        `env:"SCOUTSTAT_DATA"`
	Catalog     string        `env:"SCOUTSTAT_CATALOG"`
	Formulas    string        `env:"SCOUTSTAT_FORMULAS"`
	Addr        string        `env:"SCOUTSTAT_ADDR"        envDefault:"localhost:8080"`
	Concurrency int           `env:"SCOUTSTAT_CONCURRENCY"`
	Trace       bool          `env:"SCOUTSTAT_TRACE"`
	Timeout     time.Duration `env:"SCOUTSTAT_TIMEOUT"     envDefault:"30s"`
	Retries     int           `env:"SCOUTSTAT_RETRIES"     envDefault:"2"`
	RateLimit   float64       `env:"SCOUTSTAT_RATE_LIMIT"`
	RateBurst   int           `env:"SCOUTSTAT_RATE_BURST"  envDefault:"20"`

	// Subcommand flags.
	Team   int
	Stat   string
	Limit  int
	Red    string
	Blue   string
	Phase  string
	Out    string
	Format string
}

// ParseConfig parses the subcommand in args[0] and the flags after it.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	if len(args) == 0 || strings.HasPrefix(args[0], "-") {
		return Config{}, fmt.Errorf("%w: expected a command: %s", ErrUsage, strings.Join(commands, ", "))
	}
	cfg.Command = args[0]
	if !slices.Contains(commands, cfg.Command) {
		return Config{}, fmt.Errorf("%w: unknown command %q, expected one of %s",
			ErrUsage, cfg.Command, strings.Join(commands, ", "))
	}

	fs.StringVar(&cfg.Data, "data", cfg.Data, "dataset file or http(s) URL (.json, .msgpack, .msgpack.lz4)")
	fs.StringVar(&cfg.Catalog, "catalog", cfg.Catalog, "catalogue YAML (default: built-in 2023 catalogue)")
	fs.StringVar(&cfg.Formulas, "formulas", cfg.Formulas, "formula set YAML")
	fs.StringVar(&cfg.Addr, "addr", cfg.Addr, "HTTP listen address for serve")
	fs.IntVar(&cfg.Concurrency, "concurrency", cfg.Concurrency, "max teams evaluated concurrently (0 = GOMAXPROCS)")
	fs.BoolVar(&cfg.Trace, "trace", cfg.Trace, "open an OpenTelemetry span per formula evaluation")
	fs.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "timeout for loading the dataset")
	fs.IntVar(&cfg.Retries, "retries", cfg.Retries, "retries for a remote dataset fetch")
	fs.Float64Var(&cfg.RateLimit, "rate-limit", cfg.RateLimit, "serve: requests per second (0 = unlimited)")
	fs.IntVar(&cfg.RateBurst, "rate-burst", cfg.RateBurst, "serve: burst above -rate-limit")

	fs.IntVar(&cfg.Team, "team", 0, "team number for team")
	fs.StringVar(&cfg.Stat, "stat", "", "formula-set stat id for picklist")
	fs.IntVar(&cfg.Limit, "limit", 0, "number of picklist rows (0 = all)")
	fs.StringVar(&cfg.Red, "red", "", "red alliance for match, e.g. 4099,118,180")
	fs.StringVar(&cfg.Blue, "blue", "", "blue alliance for match")
	fs.StringVar(&cfg.Phase, "phase", "", "restrict points to auto or teleop")
	fs.StringVar(&cfg.Out, "out", "", "output file for convert")
	fs.StringVar(&cfg.Format, "format", "", "output format for convert (default: from -out extension)")

	if err := fs.Parse(args[1:]); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// validate checks the flags the chosen command needs.
func (c Config) validate() error {
	if c.Data == "" {
		return fmt.Errorf("%w: -data or SCOUTSTAT_DATA is required", ErrUsage)
	}
	if c.Retries < 0 || c.RateLimit < 0 || c.RateBurst < 0 {
		return fmt.Errorf("%w: -retries, -rate-limit and -rate-burst cannot be negative", ErrUsage)
	}
	switch c.Command {
	case CommandTeam:
		if c.Team <= 0 {
			return fmt.Errorf("%w: team requires -team", ErrUsage)
		}
	case CommandPicklist:
		if c.Stat == "" || c.Formulas == "" {
			return fmt.Errorf("%w: picklist requires -stat and -formulas", ErrUsage)
		}
	case CommandMatch:
		if c.Red == "" || c.Blue == "" {
			return fmt.Errorf("%w: match requires -red and -blue", ErrUsage)
		}
	case CommandConvert:
		if c.Out == "" {
			return fmt.Errorf("%w: convert requires -out", ErrUsage)
		}
	}
	return nil
}
