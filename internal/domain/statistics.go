package domain

import (
	"fmt"
	"math"
)

// Mean returns the arithmetic mean of xs.
func Mean(xs []float64) (float64, error) {
	if len(xs) == 0 {
		return 0, ErrEmptyInput
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs)), nil
}

// Quantile returns the linear-interpolation quantile of an ascending
// sequence. The caller must sort the input; Quantile does not.
// The index is q·(n−1) and the result interpolates between the two
// bracketing elements.
func Quantile(sorted []float64, q float64) (float64, error) {
	if len(sorted) == 0 {
		return 0, ErrEmptyInput
	}
	if math.IsNaN(q) || q < 0 || q > 1 {
		return 0, fmt.Errorf("%w: got %v", ErrInvalidQuantile, q)
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo], nil
	}
	frac := pos - float64(lo)
	return sorted[lo] + (sorted[hi]-sorted[lo])*frac, nil
}

// IQR returns the interquartile range of an ascending sequence.
func IQR(sorted []float64) (float64, error) {
	q1, err := Quantile(sorted, 0.25)
	if err != nil {
		return 0, err
	}
	q3, err := Quantile(sorted, 0.75)
	if err != nil {
		return 0, err
	}
	return q3 - q1, nil
}

// StdDev returns the population standard deviation of xs.
func StdDev(xs []float64) (float64, error) {
	mean, err := Mean(xs)
	if err != nil {
		return 0, err
	}
	var ss float64
	for _, x := range xs {
		d := x - mean
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(xs))), nil
}

// CumulativeSum returns the running totals of xs.
func CumulativeSum(xs []float64) []float64 {
	out := make([]float64, len(xs))
	var total float64
	for i, x := range xs {
		total += x
		out[i] = total
	}
	return out
}

// CombineShortest sums the sequences elementwise. The result is as long as
// the shortest input, so no value is invented for an unplayed match.
func CombineShortest(seqs ...[]float64) []float64 {
	if len(seqs) == 0 {
		return nil
	}
	n := len(seqs[0])
	for _, s := range seqs[1:] {
		n = min(n, len(s))
	}
	out := make([]float64, n)
	for _, s := range seqs {
		for i := range n {
			out[i] += s[i]
		}
	}
	return out
}

// HeadToHead returns the percentage of aligned indices at which a strictly
// exceeds b. Comparison stops at the end of the shorter sequence; ties
// count as losses for a.
func HeadToHead(a, b []float64) (float64, error) {
	n := min(len(a), len(b))
	if n == 0 {
		return 0, ErrInsufficientData
	}
	var won int
	for i := range n {
		if a[i] > b[i] {
			won++
		}
	}
	return float64(won) / float64(n) * 100, nil
}

// NormalWinOdds returns the probability that a normally distributed score
// with mean meanA and deviation stdA beats an independent one with meanB
// and stdB. When both deviations are zero the difference of the means
// stands in for the deviation; two identical constant scores are a coin
// flip.
func NormalWinOdds(meanA, stdA, meanB, stdB float64) float64 {
	diff := meanA - meanB
	std := math.Sqrt(stdA*stdA + stdB*stdB)
	if std == 0 {
		if diff == 0 {
			return 0.5
		}
		std = math.Abs(diff)
	}
	return 0.5 * math.Erfc(-diff/(std*math.Sqrt2))
}

// TimeSeries pairs x-axis indices with values. Indices are 0..n-1.
type TimeSeries struct {
	Indices []int     `json:"indices"`
	Values  []float64 `json:"values"`
}

// NewTimeSeries indexes values 0..n-1.
func NewTimeSeries(values []float64) TimeSeries {
	idx := make([]int, len(values))
	for i := range idx {
		idx[i] = i
	}
	return TimeSeries{Indices: idx, Values: values}
}

// Len returns the number of points.
func (ts TimeSeries) Len() int { return len(ts.Values) }
