package roster

import (
	"errors"
	"strings"
)

// ReportOptions selects which report sections to render.
type ReportOptions struct {
	Members  bool
	Warnings bool
	Stats    bool
}

// DefaultReportOptions is applied when the caller enables no section.
func DefaultReportOptions() ReportOptions {
	return ReportOptions{Members: true, Warnings: true, Stats: false}
}

// insufficientDataNotice is rendered in place of the statistics section
// when the snapshot cannot support the aggregate queries.
const insufficientDataNotice = "Not enough data to compute statistics"

// Compose renders the enabled sections in fixed order (summary, warnings,
// statistics) separated by blank lines, wrapped in a code fence. Zero
// enabled options fall back to DefaultReportOptions.
func Compose(s Snapshot, opts ReportOptions) string {
	if !opts.Members && !opts.Warnings && !opts.Stats {
		opts = DefaultReportOptions()
	}

	var sections []string
	if opts.Members {
		sections = append(sections, s.Summary())
	}
	if opts.Warnings {
		sections = append(sections, s.Warnings())
	}
	if opts.Stats {
		stats, err := s.Statistics()
		if errors.Is(err, ErrInsufficientData) {
			stats = insufficientDataNotice
		}
		sections = append(sections, stats)
	}

	return "```\n" + strings.Join(sections, "\n \n") + "\n```"
}
