package heading

import (
	"fmt"

	"go.uber.org/multierr"
)

// Record is a single heading reported by a page scan.
type Record struct {
	Level           int    `json:"level"`   // 1-6, from hN markup or aria-level
	Ordinal         int    `json:"ordinal"` // document order, unique per scan
	Name            string `json:"name"`    // computed accessible name, may be empty
	VisibleOnScreen bool   `json:"visible_on_screen"`
	VisibleToAT     bool   `json:"visible_to_at"`
}

// Options controls which records are displayed.
type Options struct {
	// IncludeHiddenAT keeps headings that are only reachable by assistive
	// technology (off-screen or visually hidden).
	IncludeHiddenAT bool `json:"include_hidden_at" yaml:"include_hidden_at"`
}

const (
	MinLevel = 1
	MaxLevel = 6
)

// Eligible reports whether r should become a tree node under opts.
func Eligible(r Record, opts Options) bool {
	if r.Name == "" {
		return false
	}
	return r.Level == 1 || r.VisibleOnScreen || (r.VisibleToAT && opts.IncludeHiddenAT)
}

// Filter returns the eligible records in their original order.
func Filter(records []Record, opts Options) []Record {
	out := make([]Record, 0, len(records))
	for _, r := range records {
		if Eligible(r, opts) {
			out = append(out, r)
		}
	}
	return out
}

// Validate checks the scanner preconditions the tree builder relies on:
// levels within 1-6 and strictly increasing ordinals. All problems are
// reported together.
func Validate(records []Record) error {
	var err error
	for i, r := range records {
		if r.Level < MinLevel || r.Level > MaxLevel {
			err = multierr.Append(err, fmt.Errorf("record %d (ordinal %d): level %d out of range %d-%d", i, r.Ordinal, r.Level, MinLevel, MaxLevel))
		}
		if i > 0 && r.Ordinal <= records[i-1].Ordinal {
			err = multierr.Append(err, fmt.Errorf("record %d: ordinal %d does not follow %d", i, r.Ordinal, records[i-1].Ordinal))
		}
	}
	return err
}

// Problems splits a Validate error into its individual messages.
func Problems(err error) []string {
	errs := multierr.Errors(err)
	out := make([]string, 0, len(errs))
	for _, e := range errs {
		out = append(out, e.Error())
	}
	return out
}
