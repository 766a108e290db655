package runlog

import (
	"fmt"
	"strings"

	"photo-reconciler/core/index"
	"photo-reconciler/core/reconcile"
	"photo-reconciler/core/utils"
)

// ComparisonReport describes a name comparison. Identical files and files only in
// the destination are counted but not listed.
func ComparisonReport(cmp *reconcile.Comparison) *Report {
	s := cmp.Summary
	r := &Report{
		Title: "Directory Comparison Report",
		Header: []Field{
			F("Source", cmp.RootA),
			F("Destination", cmp.RootB),
		},
		Summary: []Field{
			F("Total files in source", s.FilesA),
			F("Total files in destination", s.FilesB),
			F("Files with matching names", s.CommonKeys),
			F("Files with same name and size", s.Identical),
			F("Files with same name but different size", s.SizeMismatches),
			F("Names with duplicates", s.DuplicateGroups),
			F("Files only in source", s.OnlyInA),
			F("Files only in destination", s.OnlyInB),
		},
	}

	var mismatches []Block
	for _, m := range cmp.SizeMismatches() {
		a, b := m.A[0], m.B[0]
		mismatches = append(mismatches, Block{Fields: []Field{
			F("Filename (source)", a.Name),
			F("Filename (destination)", b.Name),
			F("Source", a.Path),
			F("Source size", utils.FormatBytes(a.Size)),
			F("Destination", b.Path),
			F("Destination size", utils.FormatBytes(b.Size)),
			F("Size difference", utils.FormatBytes(m.SizeDiff)),
		}})
	}
	r.AddSection(Section{Title: "FILES WITH DIFFERENT SIZES", Blocks: mismatches})

	var duplicates []Block
	for _, m := range cmp.ByStatus(reconcile.StatusDuplicateGroup) {
		b := Block{Fields: []Field{F("Filename (case-insensitive)", m.Key)}}
		b.Lines = append(b.Lines, "Source entries:")
		b.Lines = append(b.Lines, recordLines(m.A)...)
		b.Lines = append(b.Lines, "Destination entries:")
		b.Lines = append(b.Lines, recordLines(m.B)...)
		duplicates = append(duplicates, b)
	}
	r.AddSection(Section{Title: "FILES WITH DUPLICATE NAMES", Blocks: duplicates})

	if only := cmp.OnlyInA(); len(only) > 0 {
		r.AddSection(Section{
			Title:  fmt.Sprintf("FILES ONLY IN SOURCE (%d files)", len(only)),
			Blocks: []Block{{Lines: recordLines(only)}},
		})
	}

	return r
}

// TagAnalysisReport lists tag counts for every identical pair.
func TagAnalysisReport(title string, header []Field, analysis []reconcile.TagComparison) *Report {
	better := 0
	var blocks []Block
	for _, c := range analysis {
		verdict := "keep destination"
		if c.Better() {
			verdict = "source has more metadata"
			better++
		}
		blocks = append(blocks, Block{
			Heading: c.Source.Name,
			Fields: []Field{
				F("Source", c.Source.Path),
				F("Source tags", tagValue(c.SourceTags, c.SourceKnown)),
				F("Destination", c.Target.Path),
				F("Destination tags", tagValue(c.TargetTags, c.TargetKnown)),
				F("Verdict", verdict),
			},
		})
	}

	r := &Report{
		Title:  title,
		Header: header,
		Summary: []Field{
			F("Pairs analyzed", len(analysis)),
			F("Source has more metadata", better),
		},
	}
	r.AddSection(Section{Title: "TAG COMPARISON", Blocks: blocks})
	return r
}

// TimestampReport lists matched and ambiguous timestamp keys.
func TimestampReport(header []Field, m *reconcile.TimestampMatch) *Report {
	s := m.Summary
	r := &Report{
		Title:  "Timestamp Match Report",
		Header: header,
		Summary: []Field{
			F("Source files matching pattern", s.Sources),
			F("Source files not matching pattern", s.Unkeyed),
			F("Destination files", s.Destinations),
			F("Matched", s.Matched),
			F("Ambiguous", s.Ambiguous),
			F("No counterpart", s.NoCounterpart),
		},
	}

	var matched []Block
	for _, res := range m.ByStatus(reconcile.StatusMatched) {
		matched = append(matched, Block{Fields: []Field{
			F("Key", res.Key),
			F("Source", res.A[0].Path),
			F("Destination", res.B[0].Path),
		}})
	}
	r.AddSection(Section{Title: "MATCHED FILES", Blocks: matched})

	var ambiguous []Block
	for _, res := range m.ByStatus(reconcile.StatusAmbiguous) {
		b := Block{Fields: []Field{F("Key", res.Key)}}
		b.Lines = append(b.Lines, "Source entries:")
		b.Lines = append(b.Lines, recordLines(res.A)...)
		b.Lines = append(b.Lines, "Destination entries:")
		b.Lines = append(b.Lines, recordLines(res.B)...)
		ambiguous = append(ambiguous, b)
	}
	r.AddSection(Section{Title: "AMBIGUOUS MATCHES (resolve manually)", Blocks: ambiguous})

	return r
}

// StageReport lists one block per action outcome.
func StageReport(title string, header []Field, res reconcile.StageResult) *Report {
	r := &Report{
		Title:  title,
		Header: append(append([]Field{}, header...), F("Stage", res.Stage)),
		Summary: []Field{
			F("Planned", res.Planned),
			F("Moved", res.Count(reconcile.OutcomeMoved)),
			F("Deleted", res.Count(reconcile.OutcomeDeleted)),
			F("Updated", res.Count(reconcile.OutcomeUpdated)),
			F("Skipped", res.Count(reconcile.OutcomeSkipped)),
			F("Failed", res.Count(reconcile.OutcomeFailed)),
			F("Dry run", res.DryRun),
			F("Declined", res.Declined),
		},
	}

	var blocks []Block
	for _, o := range res.Outcomes {
		b := Block{Heading: fmt.Sprintf("%s: %s", outcomeLabel(o.Status), o.Action.Source.Name)}
		b.Fields = append(b.Fields, F("From", o.Source))
		if o.Destination != "" {
			b.Fields = append(b.Fields, F("To", o.Destination))
		}
		if o.Backup != "" {
			b.Fields = append(b.Fields, F("Backup", o.Backup))
		}
		if o.Status != reconcile.OutcomeFailed {
			b.Fields = append(b.Fields, F("Size", utils.FormatBytes(o.Action.Source.Size)))
		}
		if o.Reason != "" {
			b.Fields = append(b.Fields, F("Reason", o.Reason))
		}
		blocks = append(blocks, b)
	}
	r.AddSection(Section{Title: "ACTIONS", Blocks: blocks})

	return r
}

func outcomeLabel(s reconcile.OutcomeStatus) string {
	switch s {
	case reconcile.OutcomeMoved:
		return "SUCCESS"
	default:
		return strings.ToUpper(string(s))
	}
}

func recordLines(records []index.FileRecord) []string {
	lines := make([]string, 0, len(records))
	for _, rec := range records {
		lines = append(lines, fmt.Sprintf("%s - %s (%s)", rec.Name, rec.Path, utils.FormatBytes(rec.Size)))
	}
	return lines
}

func tagValue(n int, known bool) string {
	if !known {
		return "unavailable"
	}
	return fmt.Sprint(n)
}
