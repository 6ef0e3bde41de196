package scoutstat

import (
	"bytes"
	"context"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahrav/go-scout/infrastructure/dataset"
	"github.com/ahrav/go-scout/infrastructure/middleware"
	"github.com/ahrav/go-scout/internal/application"
	"github.com/ahrav/go-scout/internal/domain"
	"github.com/ahrav/go-scout/internal/testutils"
)

// writeInputs writes the sample dataset and formula set to a temp dir.
func writeInputs(t *testing.T) Config {
	t.Helper()
	dir := t.TempDir()

	data := filepath.Join(dir, "event.json")
	var buf bytes.Buffer
	require.NoError(t, dataset.Encode(&buf, testutils.SampleRecords(), dataset.FormatJSON))
	require.NoError(t, os.WriteFile(data, buf.Bytes(), 0o600))

	formulas := filepath.Join(dir, "formulas.yaml")
	require.NoError(t, os.WriteFile(formulas, []byte(testutils.FormulaSetYAML), 0o600))

	return Config{Data: data, Formulas: formulas, Timeout: 10 * time.Second}
}

func run(t *testing.T, cfg Config) (string, error) {
	t.Helper()
	var out bytes.Buffer
	err := Run(context.Background(), cfg, &out, io.Discard)
	return out.String(), err
}

func TestRun_Team(t *testing.T) {
	cfg := writeInputs(t)
	cfg.Command = CommandTeam
	cfg.Team = 4099

	out, err := run(t, cfg)
	require.NoError(t, err)
	assert.Contains(t, out, "Team 4099: 3 matches")
	assert.Contains(t, out, "AVG POINTS")
	assert.Contains(t, out, "teleop")
	assert.Contains(t, out, "DriverRating")
	assert.Contains(t, out, "16.00", "average points over all phases")

	cfg.Team = 9999
	_, err = run(t, cfg)
	assert.ErrorIs(t, err, domain.ErrNoData)
}

func TestRun_Picklist(t *testing.T) {
	cfg := writeInputs(t)
	cfg.Command = CommandPicklist
	cfg.Stat = "driver"
	cfg.Limit = 2

	out, err := run(t, cfg)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[1], "254")
	assert.Contains(t, lines[2], "4099")

	cfg.Stat = "overall"
	cfg.Limit = 0
	out, err = run(t, cfg)
	require.NoError(t, err)
	assert.Contains(t, out, "No data: [5000]")

	cfg.Stat = "overal"
	_, err = run(t, cfg)
	assert.ErrorIs(t, err, domain.ErrUnknownFormula)
}

func TestRun_Match(t *testing.T) {
	cfg := writeInputs(t)
	cfg.Command = CommandMatch
	cfg.Red = testutils.RedTeams.String()
	cfg.Blue = testutils.BlueTeams.String()

	out, err := run(t, cfg)
	require.NoError(t, err)
	assert.Contains(t, out, "Red   4099,118,180")
	assert.Contains(t, out, "Red win odds:")
	assert.Contains(t, out, "Red historical win rate: 50.0%")

	cfg.Blue = "254,1678,5000"
	_, err = run(t, cfg)
	assert.ErrorIs(t, err, domain.ErrNoData, "the spectator team has no points to predict")

	cfg.Blue = "254,1678"
	_, err = run(t, cfg)
	assert.ErrorIs(t, err, domain.ErrInvalidAlliance)
}

func TestRun_Convert(t *testing.T) {
	cfg := writeInputs(t)
	cfg.Command = CommandConvert
	cfg.Out = filepath.Join(t.TempDir(), "event.msgpack.lz4")

	_, err := run(t, cfg)
	require.NoError(t, err)

	records, err := dataset.Open(context.Background(), cfg.Out)
	require.NoError(t, err)
	assert.Len(t, records, len(testutils.SampleRecords()))

	cfg.Out = filepath.Join(t.TempDir(), "event.bin")
	_, err = run(t, cfg)
	assert.ErrorIs(t, err, dataset.ErrUnsupportedFormat)

	cfg.Format = "msgpack"
	_, err = run(t, cfg)
	assert.NoError(t, err, "an explicit format overrides the extension")
}

func TestRun_Usage(t *testing.T) {
	_, err := run(t, Config{Command: CommandTeam})
	assert.ErrorIs(t, err, ErrUsage)
}

func TestReloader_KeepsPreviousEngineOnFailure(t *testing.T) {
	cfg := writeInputs(t)
	metrics := middleware.NewPrometheusMetrics(nil)
	builder, err := newEngineBuilder(cfg, metrics)
	require.NoError(t, err)

	r := &reloader{
		builder: builder,
		ref:     application.NewEngineRef(nil),
		metrics: metrics,
		logger:  log.New(io.Discard, "", 0),
	}

	require.NoError(t, r.reload(context.Background()))
	first := r.ref.Load()
	require.NotNil(t, first)
	assert.Equal(t, 8, first.FormulaSet().Len())

	score, err := first.Score("driver", domain.TeamEntity(4099))
	require.NoError(t, err)
	assert.InDelta(t, 4.0, score.Raw, 1e-9, "instrumented formulas still score")

	r.builder.cfg.Data = filepath.Join(t.TempDir(), "missing.json")
	assert.Error(t, r.reload(context.Background()))
	assert.Same(t, first, r.ref.Load())

	r.builder.cfg = cfg
	require.NoError(t, r.reload(context.Background()))
	assert.NotSame(t, first, r.ref.Load())
}
