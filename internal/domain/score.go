package domain

// Score is the result of evaluating a composite stat for one entity.
type Score struct {
	// Raw is the weighted sum of the stat's factors.
	Raw float64 `json:"raw"`

	// Display is the value shown to users. For divisor stats it is Raw as
	// a percentage of the stat's max value; for reference stats it is Raw.
	Display float64 `json:"display"`

	// Reference is the max value drawn as a marker next to Display for
	// reference stats, and zero for divisor stats.
	Reference float64 `json:"reference,omitempty"`
}
