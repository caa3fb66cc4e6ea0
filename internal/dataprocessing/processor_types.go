package dataprocessing

import (
	"context"
	"strings"
)

// MissingStrategy selects how missing cells are resolved
type MissingStrategy string

const (
	StrategyNone       MissingStrategy = "none"
	StrategyDrop       MissingStrategy = "drop"
	StrategyFillMean   MissingStrategy = "fill_mean"
	StrategyFillMedian MissingStrategy = "fill_median"
	StrategyFillMode   MissingStrategy = "fill_mode"
	StrategyFillCustom MissingStrategy = "fill_custom"
)

// Strategies lists every recognized strategy
var Strategies = []MissingStrategy{
	StrategyNone,
	StrategyDrop,
	StrategyFillMean,
	StrategyFillMedian,
	StrategyFillMode,
	StrategyFillCustom,
}

// ParseMissingStrategy maps user input to a strategy. The empty string is StrategyNone.
func ParseMissingStrategy(s string) (MissingStrategy, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return StrategyNone, nil
	}
	for _, st := range Strategies {
		if string(st) == s {
			return st, nil
		}
	}
	return "", invalidOptions("unknown missing_strategy %q", s)
}

// Processor defines the interface for dataset cleaning
type Processor interface {
	// Clean applies options to a dataset and returns the cleaned copy
	Clean(ctx context.Context, ds *Dataset, opts CleaningOptions) (*Dataset, error)
}

// CleaningOptions configures one cleaning run
type CleaningOptions struct {
	MissingStrategy MissingStrategy `json:"missing_strategy"`

	// CustomFillValue is required when MissingStrategy is fill_custom
	CustomFillValue *string `json:"custom_fill_value,omitempty"`

	// Deduplicate removes rows identical to an earlier row
	Deduplicate bool `json:"deduplicate"`
}

// Validate checks that the options can be applied
func (o CleaningOptions) Validate() error {
	strategy, err := ParseMissingStrategy(string(o.MissingStrategy))
	if err != nil {
		return err
	}
	if strategy == StrategyFillCustom && (o.CustomFillValue == nil || *o.CustomFillValue == "") {
		return invalidOptions("custom_fill_value is required for %s", StrategyFillCustom)
	}
	return nil
}

// IsNoop reports whether the options leave every dataset unchanged
func (o CleaningOptions) IsNoop() bool {
	strategy, err := ParseMissingStrategy(string(o.MissingStrategy))
	return err == nil && strategy == StrategyNone && !o.Deduplicate
}

// StringPtr returns a pointer to s, handy for CustomFillValue
func StringPtr(s string) *string {
	return &s
}
