package scoutstat

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"text/tabwriter"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/ahrav/go-scout/infrastructure/dataset"
	"github.com/ahrav/go-scout/infrastructure/scoring"
	"github.com/ahrav/go-scout/internal/application"
	"github.com/ahrav/go-scout/internal/domain"
	"github.com/ahrav/go-scout/internal/store"
)

// Run executes the configured command.
func Run(ctx context.Context, cfg Config, out io.Writer, errOut io.Writer) error {
	if out == nil {
		out = io.Discard
	}
	if errOut == nil {
		errOut = io.Discard
	}
	if err := cfg.validate(); err != nil {
		return err
	}

	logger := log.New(errOut, "scoutstat: ", log.LstdFlags)

	switch cfg.Command {
	case CommandServe:
		return serve(ctx, cfg, logger)
	case CommandConvert:
		return convert(ctx, cfg, logger)
	}

	builder, err := newEngineBuilder(cfg, nil)
	if err != nil {
		return err
	}
	e, err := builder.build(ctx)
	if err != nil {
		return err
	}

	r := &reporter{
		engine:  e,
		printer: message.NewPrinter(language.English),
		out:     out,
	}
	switch cfg.Command {
	case CommandTeam:
		return r.team(ctx, cfg.Team)
	case CommandPicklist:
		return r.picklist(ctx, cfg.Stat, cfg.Limit)
	case CommandMatch:
		return r.match(cfg.Red, cfg.Blue, cfg.Phase)
	default:
		return fmt.Errorf("%w: unknown command %q", ErrUsage, cfg.Command)
	}
}

// convert re-encodes the dataset, validating it on the way.
func convert(ctx context.Context, cfg Config, logger *log.Logger) error {
	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	format, err := outputFormat(cfg)
	if err != nil {
		return err
	}

	records, err := dataset.Open(ctx, cfg.Data)
	if err != nil {
		return err
	}
	if _, err := store.Load(records); err != nil {
		return fmt.Errorf("dataset %s is invalid: %w", cfg.Data, err)
	}

	f, err := os.Create(filepath.Clean(cfg.Out))
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", cfg.Out, err)
	}
	if err := dataset.Encode(f, records, format); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", cfg.Out, err)
	}

	logger.Printf("INFO: wrote %d records to %s (%s)", len(records), cfg.Out, format)
	return nil
}

func outputFormat(cfg Config) (dataset.Format, error) {
	if cfg.Format != "" {
		return dataset.ParseFormat(cfg.Format)
	}
	return dataset.FormatFromPath(cfg.Out)
}

// phaseScopes are the scopes a team report breaks points down by.
var phaseScopes = []domain.Scope{domain.ScopeAll, domain.ScopeAuto, domain.ScopeTeleop}

// reporter prints human-readable reports. Numbers go through a message
// printer so large values are grouped; team numbers never are.
type reporter struct {
	engine  *application.Engine
	printer *message.Printer
	out     io.Writer
}

func (r *reporter) team(ctx context.Context, team int) error {
	e := r.engine
	matches, err := e.TeamMatches(team)
	if err != nil {
		return err
	}

	r.printer.Fprintf(r.out, "Team %s: %d matches\n\n", strconv.Itoa(team), len(matches))

	tw := tabwriter.NewWriter(r.out, 0, 4, 2, ' ', 0)
	r.printer.Fprintf(tw, "SCOPE\tAVG POINTS\tIQR\tvs MEDIAN\tvs P75\n")
	for _, scope := range phaseScopes {
		avg, err := e.AveragePoints(team, scope)
		if errors.Is(err, domain.ErrNoData) {
			r.printer.Fprintf(tw, "%s\t-\t-\t-\t-\n", scope)
			continue
		}
		if err != nil {
			return err
		}
		iqr, err := e.Consistency(team, scope)
		if err != nil {
			return err
		}
		median, p75, err := r.eventQuantiles(ctx, scope)
		if err != nil {
			return err
		}
		r.printer.Fprintf(tw, "%s\t%.2f\t%.2f\t%+.2f\t%+.2f\n", scope, avg, iqr, avg-median, avg-p75)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	r.printer.Fprintf(r.out, "\n")
	tw = tabwriter.NewWriter(r.out, 0, 4, 2, ' ', 0)
	r.printer.Fprintf(tw, "FIELD\tAVERAGE\n")
	for _, key := range e.Fields() {
		avg, err := e.Average(team, key)
		if err != nil {
			// Categorical and unplayed fields have no average.
			continue
		}
		r.printer.Fprintf(tw, "%s\t%.2f\n", key, avg)
	}
	return tw.Flush()
}

// eventQuantiles returns the median and 75th percentile of every team's
// average points under scope.
func (r *reporter) eventQuantiles(ctx context.Context, scope domain.Scope) (float64, float64, error) {
	formula, err := scoring.NewPointsFormula("points_"+scope.String(), scoring.PointsConfig{Scope: scope.String()}, r.engine)
	if err != nil {
		return 0, 0, err
	}
	median, err := r.engine.QuantileStat(ctx, 0.5, formula)
	if err != nil {
		return 0, 0, err
	}
	p75, err := r.engine.QuantileStat(ctx, 0.75, formula)
	if err != nil {
		return 0, 0, err
	}
	return median, p75, nil
}

func (r *reporter) picklist(ctx context.Context, stat string, limit int) error {
	formula, err := r.engine.Stat(stat)
	if err != nil {
		return err
	}
	ranking, err := r.engine.Rank(ctx, formula)
	if err != nil {
		return err
	}

	rows := ranking.Teams
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}

	tw := tabwriter.NewWriter(r.out, 0, 4, 2, ' ', 0)
	r.printer.Fprintf(tw, "RANK\tTEAM\t%s\n", stat)
	for _, row := range rows {
		r.printer.Fprintf(tw, "%d\t%s\t%.2f\n", row.Rank, strconv.Itoa(row.Team), row.Value)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	if len(ranking.NoData) > 0 {
		teams := make([]string, len(ranking.NoData))
		for i, team := range ranking.NoData {
			teams[i] = strconv.Itoa(team)
		}
		r.printer.Fprintf(r.out, "\nNo data: [%s]\n", strings.Join(teams, " "))
	}
	return nil
}

func (r *reporter) match(red, blue, phase string) error {
	redGroup, err := domain.ParseAllianceGroup(red)
	if err != nil {
		return err
	}
	blueGroup, err := domain.ParseAllianceGroup(blue)
	if err != nil {
		return err
	}
	scope, err := domain.ParseScope(phase)
	if err != nil {
		return err
	}
	e := r.engine

	redScore, err := e.PredictedScore(redGroup, scope)
	if err != nil {
		return fmt.Errorf("red: %w", err)
	}
	blueScore, err := e.PredictedScore(blueGroup, scope)
	if err != nil {
		return fmt.Errorf("blue: %w", err)
	}
	odds, err := e.WinOdds(redGroup, blueGroup)
	if err != nil {
		return err
	}

	r.printer.Fprintf(r.out, "Red   %s  predicted %.1f\n", redGroup, redScore)
	r.printer.Fprintf(r.out, "Blue  %s  predicted %.1f\n", blueGroup, blueScore)
	r.printer.Fprintf(r.out, "Red win odds: %.1f%%\n", odds*100)

	history, err := e.WinProbability(redGroup, blueGroup, scoring.PointsSeries{Points: e, Scope: scope})
	switch {
	case errors.Is(err, domain.ErrInsufficientData):
		r.printer.Fprintf(r.out, "Red historical win rate: n/a\n")
	case err != nil:
		return err
	default:
		r.printer.Fprintf(r.out, "Red historical win rate: %.1f%%\n", history)
	}
	return nil
}
