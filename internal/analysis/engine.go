package analysis

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"literacylead/internal/models"
)

// Tier band cutoffs, expressed as a fraction of the benchmark target.
// A student's overall ratio is their composite score over the composite
// target when a composite is present, otherwise the mean of their component
// ratios.
const (
	aboveCutoff       = 1.15
	atCutoff          = 1.0
	belowCutoff       = 0.85
	marginalCutoff    = 0.90 // "marginally below" floor for formative override
	componentRatioCap = 1.5
)

// Formative evidence rules: an average above strongEvidenceScore across at
// least minFormativeEntries dated entries supports upward movement; an
// average below regressionScore on a student tiered At triggers a
// regression flag.
const (
	minFormativeEntries = 3
	recentWindow        = 5
	strongEvidenceScore = 85
	regressionScore     = 60
)

// Engine is the deterministic replacement for the external analysis step.
// It classifies every student against a fixed benchmark table and produces
// the same report shape the external contract defines, so the two analyzers
// are interchangeable behind the same interface.
type Engine struct {
	benchmarks Benchmarks
}

// NewEngine creates an engine scoring against the given benchmark table.
func NewEngine(benchmarks Benchmarks) *Engine {
	return &Engine{benchmarks: benchmarks}
}

// Analyze tiers and groups the full roster and diffs group membership
// against the previous report. The output depends only on the roster and
// previous report, so re-running on unchanged input yields an identical
// report.
func (e *Engine) Analyze(ctx context.Context, roster []models.StudentRecord, previous *models.LiteracyAnalysisReport) (*models.LiteracyAnalysisReport, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	report := &models.LiteracyAnalysisReport{
		MovementReport:      []models.MovementRecord{},
		MissingDataStudents: []string{},
	}

	groups := map[string][]string{}
	for _, label := range models.GroupLabels {
		groups[label] = nil
	}

	for _, student := range roster {
		display := models.DisplayName(student.Name)

		if !e.tierable(&student) {
			report.MissingDataStudents = append(report.MissingDataStudents, display)
			continue
		}

		tier := e.tier(&student)
		switch tier {
		case models.TierWellBelow:
			report.ClassHealth.WellBelow++
		case models.TierBelow:
			report.ClassHealth.Below++
		case models.TierAt:
			report.ClassHealth.At++
		case models.TierAbove:
			report.ClassHealth.Above++
		}

		group := e.group(&student, tier)
		groups[group] = append(groups[group], display)

		report.MovementReport = append(report.MovementReport, e.movement(&student, tier, group, previous)...)
	}

	for _, label := range models.GroupLabels {
		students := groups[label]
		if students == nil {
			students = []string{}
		}
		report.Groupings = append(report.Groupings, models.GroupAnalysis{
			GroupID:       label,
			Students:      students,
			Lessons:       lessonsFor(label),
			TeacherAction: teacherActionFor(label),
		})
	}

	sort.SliceStable(report.MovementReport, func(i, j int) bool {
		return report.MovementReport[i].Student < report.MovementReport[j].Student
	})

	return report, nil
}

// tierable requires a composite score, or at least three of the six
// component measures. Anything less is excluded from tiering rather than
// scored as zeros.
func (e *Engine) tierable(s *models.StudentRecord) bool {
	if s.Composite != nil {
		return true
	}
	present := 0
	for _, v := range []*float64{s.LNF, s.PSF, s.NWFCls, s.NWFWrc, s.WRF, s.ORF} {
		if v != nil {
			present++
		}
	}
	return present >= 3
}

// overallRatio is the primary health indicator: composite over target when
// available, otherwise the mean of present component ratios. Component
// ratios are capped so one outlier measure cannot dominate. ORF only counts
// at full value when accuracy meets the target.
func (e *Engine) overallRatio(s *models.StudentRecord) float64 {
	if s.Composite != nil {
		return *s.Composite / e.benchmarks.Composite
	}

	var sum float64
	var n int
	for _, c := range e.componentRatios(s) {
		sum += c
		n++
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

func (e *Engine) componentRatios(s *models.StudentRecord) map[string]float64 {
	ratios := map[string]float64{}
	add := func(name string, score *float64, target float64) {
		if score == nil || target <= 0 {
			return
		}
		r := *score / target
		if r > componentRatioCap {
			r = componentRatioCap
		}
		ratios[name] = r
	}

	add("lnf", s.LNF, e.benchmarks.LNF)
	add("psf", s.PSF, e.benchmarks.PSF)
	add("nwfCls", s.NWFCls, e.benchmarks.NWFCls)
	add("nwfWrc", s.NWFWrc, e.benchmarks.NWFWrc)
	add("wrf", s.WRF, e.benchmarks.WRF)
	if s.ORF != nil {
		r := *s.ORF / e.benchmarks.ORF
		if s.ORFAccuracy != nil && *s.ORFAccuracy < e.benchmarks.ORFAccuracy {
			// Rate without accuracy is not fluency.
			r = r * (*s.ORFAccuracy / e.benchmarks.ORFAccuracy)
		}
		if r > componentRatioCap {
			r = componentRatioCap
		}
		ratios["orf"] = r
	}
	return ratios
}

func (e *Engine) tier(s *models.StudentRecord) models.Tier {
	ratio := e.overallRatio(s)
	switch {
	case ratio >= aboveCutoff:
		return models.TierAbove
	case ratio >= atCutoff:
		return models.TierAt
	case ratio >= belowCutoff:
		return models.TierBelow
	default:
		return models.TierWellBelow
	}
}

// group places At/Above students in the advanced track and everyone else
// with their weakest skill area: LNF/PSF are foundational, NWF is decoding,
// WRF/ORF are fluency.
func (e *Engine) group(s *models.StudentRecord, tier models.Tier) string {
	if tier == models.TierAt || tier == models.TierAbove {
		return models.GroupAdvanced
	}

	ratios := e.componentRatios(s)
	areas := []struct {
		label      string
		components []string
	}{
		{models.GroupFoundational, []string{"lnf", "psf"}},
		{models.GroupDecoding, []string{"nwfCls", "nwfWrc"}},
		{models.GroupFluency, []string{"wrf", "orf"}},
	}

	weakest := ""
	weakestRatio := 0.0
	for _, area := range areas {
		min := -1.0
		for _, c := range area.components {
			if r, ok := ratios[c]; ok && (min < 0 || r < min) {
				min = r
			}
		}
		if min < 0 {
			continue
		}
		if weakest == "" || min < weakestRatio {
			weakest = area.label
			weakestRatio = min
		}
	}

	if weakest == "" {
		// Composite-only profile: no component pinpoints the gap, so start
		// at the foundational track for the lowest band and decoding above.
		if tier == models.TierWellBelow {
			return models.GroupFoundational
		}
		return models.GroupDecoding
	}
	return weakest
}

// movement produces reassignments, promotion proposals and regression flags
// for one student. A flag entry keeps previousGroup == newGroup.
func (e *Engine) movement(s *models.StudentRecord, tier models.Tier, group string, previous *models.LiteracyAnalysisReport) []models.MovementRecord {
	display := models.DisplayName(s.Name)
	var records []models.MovementRecord

	previousGroup := findPreviousGroup(previous, display)
	if previousGroup != "" && previousGroup != group {
		records = append(records, models.MovementRecord{
			Student:       display,
			PreviousGroup: previousGroup,
			NewGroup:      group,
			Reason:        fmt.Sprintf("Reassigned: current scores place %s in %s.", display, shortGroupName(group)),
		})
	}

	avg, dated := recentFormativeAverage(s)

	var promotionEvidence []string
	if s.MetAimLineWeeks >= 3 {
		promotionEvidence = append(promotionEvidence, fmt.Sprintf("met aim line %d consecutive weeks", s.MetAimLineWeeks))
	}
	if dated >= minFormativeEntries && avg > strongEvidenceScore && e.overallRatio(s) >= marginalCutoff {
		promotionEvidence = append(promotionEvidence, fmt.Sprintf("formative average %.0f%% across %d dated entries", avg, dated))
	}
	if next := nextGroupUp(group); next != "" && len(promotionEvidence) > 0 {
		records = append(records, models.MovementRecord{
			Student:       display,
			PreviousGroup: group,
			NewGroup:      next,
			Reason:        fmt.Sprintf("Promotion proposed: %s.", strings.Join(promotionEvidence, "; ")),
		})
	}

	if tier == models.TierAt && dated >= minFormativeEntries && avg < regressionScore {
		records = append(records, models.MovementRecord{
			Student:       display,
			PreviousGroup: group,
			NewGroup:      group,
			Reason:        fmt.Sprintf("Regression watch: at benchmark but recent formative average is %.0f%%.", avg),
		})
	}

	return records
}

// recentFormativeAverage averages the most recent dated formative entries
// (up to recentWindow of them) and reports how many dated entries were
// available. Undated entries carry no trend signal and are skipped.
func recentFormativeAverage(s *models.StudentRecord) (avg float64, dated int) {
	entries := s.AssessmentsNewestFirst()
	var sum float64
	for _, fa := range entries {
		if fa.Date.IsZero() {
			continue
		}
		if dated == recentWindow {
			break
		}
		sum += fa.Score
		dated++
	}
	if dated == 0 {
		return 0, 0
	}
	return sum / float64(dated), dated
}

func findPreviousGroup(previous *models.LiteracyAnalysisReport, display string) string {
	if previous == nil {
		return ""
	}
	for _, g := range previous.Groupings {
		for _, name := range g.Students {
			if name == display {
				return g.GroupID
			}
		}
	}
	return ""
}

func nextGroupUp(group string) string {
	for i, label := range models.GroupLabels {
		if label == group && i+1 < len(models.GroupLabels) {
			return models.GroupLabels[i+1]
		}
	}
	return ""
}

func shortGroupName(group string) string {
	if idx := strings.Index(group, ":"); idx >= 0 {
		name := strings.TrimSpace(group[idx+1:])
		if p := strings.Index(name, "("); p >= 0 {
			name = strings.TrimSpace(name[:p])
		}
		return name
	}
	return group
}
