package dataprocessing

import (
	"context"
	"log/slog"
	"sort"

	"github.com/montanaflynn/stats"

	"github.com/nursabrinaas08/data-cleaning/internal/infrastructure"
)

// Step is one transformation of a cleaning pipeline. Steps mutate the
// dataset they are given; the Cleaner hands them a private copy.
type Step interface {
	Name() string
	Apply(ds *Dataset)
}

// Cleaner applies cleaning options to datasets
type Cleaner struct {
	logger *slog.Logger
}

// NewCleaner creates a Cleaner. A nil logger uses slog.Default().
func NewCleaner(logger *slog.Logger) *Cleaner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cleaner{logger: infrastructure.WithComponent(logger, "cleaner")}
}

// Clean resolves missing cells with the selected strategy, then drops
// duplicate rows when requested. The input dataset is never modified.
// Each applied step is recorded as an event on the span in ctx.
func (c *Cleaner) Clean(ctx context.Context, ds *Dataset, opts CleaningOptions) (*Dataset, error) {
	steps, err := BuildPipeline(opts)
	if err != nil {
		return nil, err
	}

	out := ds.Clone()
	if out == nil {
		out = &Dataset{}
	}
	for _, step := range steps {
		before := out.NumRows()
		step.Apply(out)
		infrastructure.AddSpanEvent(ctx, "cleaning.step", map[string]interface{}{
			"step":        step.Name(),
			"rows_before": before,
			"rows_after":  out.NumRows(),
		})
		c.logger.DebugContext(ctx, "Cleaning step applied",
			slog.String("step", step.Name()),
			slog.Int("rows_before", before),
			slog.Int("rows_after", out.NumRows()))
	}
	return out, nil
}

// BuildPipeline turns options into the ordered steps that implement them:
// the missing-value step first, deduplication last.
func BuildPipeline(opts CleaningOptions) ([]Step, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	strategy, _ := ParseMissingStrategy(string(opts.MissingStrategy))

	var steps []Step
	switch strategy {
	case StrategyDrop:
		steps = append(steps, DropMissing{})
	case StrategyFillMean:
		steps = append(steps, FillMissing{Strategy: strategy, value: meanFill})
	case StrategyFillMedian:
		steps = append(steps, FillMissing{Strategy: strategy, value: medianFill})
	case StrategyFillMode:
		steps = append(steps, FillMissing{Strategy: strategy, value: modeFill})
	case StrategyFillCustom:
		custom := *opts.CustomFillValue
		steps = append(steps, FillMissing{
			Strategy: strategy,
			value: func(Kind, []Cell) (string, bool) {
				return custom, true
			},
		})
	}
	if opts.Deduplicate {
		steps = append(steps, Deduplicate{})
	}
	return steps, nil
}

// DropMissing removes every row holding at least one missing cell
type DropMissing struct{}

func (DropMissing) Name() string { return string(StrategyDrop) }

func (DropMissing) Apply(ds *Dataset) {
	kept := ds.Rows[:0]
	for _, row := range ds.Rows {
		if !hasMissing(row) {
			kept = append(kept, row)
		}
	}
	ds.Rows = kept
}

func hasMissing(row []Cell) bool {
	for _, cell := range row {
		if cell.Missing {
			return true
		}
	}
	return false
}

// fillFunc computes the replacement for a column's missing cells.
// ok is false when the column must be left unchanged.
type fillFunc func(kind Kind, cells []Cell) (value string, ok bool)

// FillMissing replaces missing cells column by column
type FillMissing struct {
	Strategy MissingStrategy
	value    fillFunc
}

func (f FillMissing) Name() string { return string(f.Strategy) }

func (f FillMissing) Apply(ds *Dataset) {
	for c, col := range ds.Columns {
		cells := ds.ColumnValues(c)
		if !hasMissing(cells) {
			continue
		}
		fill, ok := f.value(col.Kind, cells)
		if !ok {
			continue
		}
		for _, row := range ds.Rows {
			if row[c].Missing {
				row[c] = Value(fill)
			}
		}
	}
}

func meanFill(kind Kind, cells []Cell) (string, bool) {
	if kind != KindNumeric {
		return "", false
	}
	mean, err := stats.Mean(numericValues(cells))
	if err != nil {
		return "", false
	}
	return FormatNumber(mean), true
}

func medianFill(kind Kind, cells []Cell) (string, bool) {
	if kind != KindNumeric {
		return "", false
	}
	median, err := stats.Median(numericValues(cells))
	if err != nil {
		return "", false
	}
	return FormatNumber(median), true
}

// modeFill picks the most frequent present value. Ties go to the smallest
// value, numerically for numeric columns and lexically otherwise. Numeric
// cells are counted by value and the fill keeps the text of the first cell
// holding the winning value, so "007" stays "007".
func modeFill(kind Kind, cells []Cell) (string, bool) {
	if kind == KindNumeric {
		counts := make(map[float64]int)
		texts := make(map[float64]string)
		for _, cell := range cells {
			if cell.Missing {
				continue
			}
			v, ok := ParseNumber(cell.Value)
			if !ok {
				continue
			}
			if _, seen := texts[v]; !seen {
				texts[v] = cell.Value
			}
			counts[v]++
		}
		if len(counts) == 0 {
			return "", false
		}
		keys := make([]float64, 0, len(counts))
		for v := range counts {
			keys = append(keys, v)
		}
		sort.Float64s(keys)
		best := keys[0]
		for _, v := range keys[1:] {
			if counts[v] > counts[best] {
				best = v
			}
		}
		return texts[best], true
	}

	counts := make(map[string]int)
	for _, cell := range cells {
		if !cell.Missing {
			counts[cell.Value]++
		}
	}
	if len(counts) == 0 {
		return "", false
	}
	keys := make([]string, 0, len(counts))
	for v := range counts {
		keys = append(keys, v)
	}
	sort.Strings(keys)
	best := keys[0]
	for _, v := range keys[1:] {
		if counts[v] > counts[best] {
			best = v
		}
	}
	return best, true
}

// Deduplicate removes rows identical to an earlier surviving row, keeping
// the first occurrence. Rows holding a missing cell are always kept.
type Deduplicate struct{}

func (Deduplicate) Name() string { return "deduplicate" }

func (Deduplicate) Apply(ds *Dataset) {
	seen := make(map[string]struct{}, len(ds.Rows))
	kept := ds.Rows[:0]
	for _, row := range ds.Rows {
		key, ok := duplicateKey(row)
		if !ok {
			kept = append(kept, row)
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		kept = append(kept, row)
	}
	ds.Rows = kept
}
