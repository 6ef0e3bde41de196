package scoutstat

import (
	"flag"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFlagSet() *flag.FlagSet {
	fs := flag.NewFlagSet("scoutstat", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func TestParseConfig_EnvThenFlags(t *testing.T) {
	t.Setenv("SCOUTSTAT_DATA", "env.json")
	t.Setenv("SCOUTSTAT_FORMULAS", "env.yaml")
	t.Setenv("SCOUTSTAT_TIMEOUT", "5s")

	cfg, err := ParseConfig(newFlagSet(), []string{"picklist", "-data", "flag.json", "-stat", "overall", "-limit", "10"})
	require.NoError(t, err)

	assert.Equal(t, CommandPicklist, cfg.Command)
	assert.Equal(t, "flag.json", cfg.Data, "flags override the environment")
	assert.Equal(t, "env.yaml", cfg.Formulas)
	assert.Equal(t, "localhost:8080", cfg.Addr)
	assert.Equal(t, 5*time.Second, cfg.Timeout)
	assert.Equal(t, "overall", cfg.Stat)
	assert.Equal(t, 10, cfg.Limit)
	assert.Equal(t, 2, cfg.Retries)
	assert.Zero(t, cfg.RateLimit)
	assert.Equal(t, 20, cfg.RateBurst)
}

func TestParseConfig_ServeLimits(t *testing.T) {
	t.Setenv("SCOUTSTAT_RATE_LIMIT", "12.5")

	cfg, err := ParseConfig(newFlagSet(), []string{"serve", "-data", "x.json", "-rate-burst", "4", "-retries", "0"})
	require.NoError(t, err)
	assert.InDelta(t, 12.5, cfg.RateLimit, 1e-9)
	assert.Equal(t, 4, cfg.RateBurst)
	assert.Zero(t, cfg.Retries)
	assert.NoError(t, cfg.validate())
}

func TestParseConfig_Errors(t *testing.T) {
	tests := []struct {
		name  string
		args  []string
		usage bool
	}{
		{name: "no command", args: nil, usage: true},
		{name: "flag before command", args: []string{"-data", "x.json"}, usage: true},
		{name: "unknown command", args: []string{"rank"}, usage: true},
		{name: "unknown flag", args: []string{"team", "-bogus"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseConfig(newFlagSet(), tt.args)
			require.Error(t, err)
			if tt.usage {
				assert.ErrorIs(t, err, ErrUsage)
			}
		})
	}
}

func TestParseConfig_BadEnv(t *testing.T) {
	t.Setenv("SCOUTSTAT_CONCURRENCY", "many")
	_, err := ParseConfig(newFlagSet(), []string{"serve"})
	assert.Error(t, err)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		ok   bool
	}{
		{name: "missing data", cfg: Config{Command: CommandServe}},
		{name: "serve", cfg: Config{Command: CommandServe, Data: "x.json"}, ok: true},
		{name: "team without team", cfg: Config{Command: CommandTeam, Data: "x.json"}},
		{name: "team", cfg: Config{Command: CommandTeam, Data: "x.json", Team: 4099}, ok: true},
		{name: "picklist without formulas", cfg: Config{Command: CommandPicklist, Data: "x.json", Stat: "overall"}},
		{name: "picklist", cfg: Config{Command: CommandPicklist, Data: "x.json", Stat: "overall", Formulas: "f.yaml"}, ok: true},
		{name: "match without blue", cfg: Config{Command: CommandMatch, Data: "x.json", Red: "1,2,3"}},
		{name: "convert without out", cfg: Config{Command: CommandConvert, Data: "x.json"}},
		{name: "negative rate", cfg: Config{Command: CommandServe, Data: "x.json", RateLimit: -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrUsage)
			}
		})
	}
}
