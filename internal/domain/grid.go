package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// Tier is a scoring row of the grid.
type Tier string

// Grid tiers.
const (
	TierLow  Tier = "L"
	TierMid  Tier = "M"
	TierHigh Tier = "H"
)

// ParseTier parses a tier letter case-insensitively.
func ParseTier(s string) (Tier, error) {
	switch t := Tier(strings.ToUpper(strings.TrimSpace(s))); t {
	case TierLow, TierMid, TierHigh:
		return t, nil
	default:
		return "", fmt.Errorf("%w: tier %q", ErrUnknownCategory, s)
	}
}

// GridPointTable holds the fixed point value of one placement per tier.
type GridPointTable map[Tier]float64

// TierCounts counts placements per tier.
type TierCounts map[Tier]int

// Score multiplies each tier's count by its point value and sums.
// Tiers missing from the table score zero.
func (t GridPointTable) Score(counts TierCounts) float64 {
	var total float64
	for tier, n := range counts {
		total += float64(n) * t[tier]
	}
	return total
}

// GridCell is one placement position. Column is 1-based; zero means the
// code named only a tier.
type GridCell struct {
	Column int
	Tier   Tier
}

// ParseGridCell parses "<column><tier>", "<tier><column>" or "<tier>".
// Parsing is case-insensitive, so "3h", "H3" and "3H" are the same cell.
func ParseGridCell(code string) (GridCell, error) {
	s := strings.ToUpper(strings.TrimSpace(code))
	if s == "" {
		return GridCell{}, fmt.Errorf("%w: empty grid code", ErrUnknownCategory)
	}
	var tierPart, colPart string
	switch {
	case isTierByte(s[0]):
		tierPart, colPart = s[:1], s[1:]
	case isTierByte(s[len(s)-1]):
		tierPart, colPart = s[len(s)-1:], s[:len(s)-1]
	default:
		return GridCell{}, fmt.Errorf("%w: grid code %q", ErrUnknownCategory, code)
	}
	cell := GridCell{Tier: Tier(tierPart)}
	if colPart == "" {
		return cell, nil
	}
	col, err := strconv.Atoi(colPart)
	if err != nil || col <= 0 {
		return GridCell{}, fmt.Errorf("%w: grid code %q", ErrUnknownCategory, code)
	}
	cell.Column = col
	return cell, nil
}

func isTierByte(b byte) bool { return b == 'L' || b == 'M' || b == 'H' }

// CountTiers parses every code and counts placements per tier.
func CountTiers(codes []string) (TierCounts, error) {
	counts := make(TierCounts, 3)
	for _, code := range codes {
		cell, err := ParseGridCell(code)
		if err != nil {
			return nil, err
		}
		counts[cell.Tier]++
	}
	return counts, nil
}

// ScoreGrid computes the grid score of a list of placement codes.
func ScoreGrid(codes []string, table GridPointTable) (float64, error) {
	counts, err := CountTiers(codes)
	if err != nil {
		return 0, err
	}
	return table.Score(counts), nil
}

// GridLayout fixes the shape of a heatmap: rows follow Tiers, columns are
// numbered 1..Columns.
type GridLayout struct {
	Columns int
	Tiers   []Tier
}

// Heatmap counts placements per grid cell. Counts[row][col] corresponds to
// Tiers[row] and column col+1. Cells never observed hold zero.
type Heatmap struct {
	Tiers   []Tier  `json:"tiers"`
	Columns int     `json:"columns"`
	Counts  [][]int `json:"counts"`
}

// NewHeatmap returns an all-zero heatmap shaped by the layout.
func NewHeatmap(layout GridLayout) Heatmap {
	counts := make([][]int, len(layout.Tiers))
	for i := range counts {
		counts[i] = make([]int, layout.Columns)
	}
	tiers := make([]Tier, len(layout.Tiers))
	copy(tiers, layout.Tiers)
	return Heatmap{Tiers: tiers, Columns: layout.Columns, Counts: counts}
}

// Add records one placement. Cells outside the layout, including
// tier-only codes, are ErrUnknownCategory.
func (h Heatmap) Add(cell GridCell) error {
	if cell.Column < 1 || cell.Column > h.Columns {
		return fmt.Errorf("%w: column %d outside 1..%d", ErrUnknownCategory, cell.Column, h.Columns)
	}
	for row, tier := range h.Tiers {
		if tier == cell.Tier {
			h.Counts[row][cell.Column-1]++
			return nil
		}
	}
	return fmt.Errorf("%w: tier %q not in layout", ErrUnknownCategory, cell.Tier)
}

// Total returns the number of recorded placements.
func (h Heatmap) Total() int {
	var n int
	for _, row := range h.Counts {
		for _, c := range row {
			n += c
		}
	}
	return n
}
