package analysis

import (
	"context"
	"reflect"
	"strings"
	"testing"
	"time"

	"literacylead/internal/models"
)

func score(v float64) *float64 { return &v }

func datedEntries(scores ...float64) []models.FormativeAssessment {
	entries := make([]models.FormativeAssessment, 0, len(scores))
	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	for i, s := range scores {
		entries = append(entries, models.FormativeAssessment{
			ID:    "fa",
			Date:  day.AddDate(0, 0, i*7),
			Type:  models.AssessmentExitTicket,
			Score: s,
			Skill: "Blending",
		})
	}
	return entries
}

func analyze(t *testing.T, roster []models.StudentRecord, previous *models.LiteracyAnalysisReport) *models.LiteracyAnalysisReport {
	t.Helper()
	report, err := NewEngine(DefaultBenchmarks()).Analyze(context.Background(), roster, previous)
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	return report
}

func groupOf(report *models.LiteracyAnalysisReport, display string) string {
	for _, g := range report.Groupings {
		for _, name := range g.Students {
			if name == display {
				return g.GroupID
			}
		}
	}
	return ""
}

func TestAnalyzeTieringByComposite(t *testing.T) {
	tests := []struct {
		name      string
		composite float64
		want      models.Tier
	}{
		{"well below", 300, models.TierWellBelow},
		{"just under below cutoff", 374, models.TierWellBelow},
		{"below", 400, models.TierBelow},
		{"exactly at benchmark", 441, models.TierAt},
		{"above", 510, models.TierAbove},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			roster := []models.StudentRecord{{ID: "s1", Name: "Test Student", Composite: score(tt.composite)}}
			report := analyze(t, roster, nil)

			h := report.ClassHealth
			got := models.Tier("")
			switch {
			case h.WellBelow == 1:
				got = models.TierWellBelow
			case h.Below == 1:
				got = models.TierBelow
			case h.At == 1:
				got = models.TierAt
			case h.Above == 1:
				got = models.TierAbove
			}
			if got != tt.want {
				t.Errorf("composite %v tiered as %q, want %q", tt.composite, got, tt.want)
			}
		})
	}
}

func TestAnalyzeExcludesSparseStudents(t *testing.T) {
	roster := []models.StudentRecord{
		{ID: "s1", Name: "Full Data", Composite: score(441)},
		{ID: "s2", Name: "Two Components", LNF: score(40), PSF: score(30)},
		{ID: "s3", Name: "Three Components", LNF: score(40), PSF: score(30), ORF: score(20)},
	}
	report := analyze(t, roster, nil)

	if want := []string{"Two C."}; !reflect.DeepEqual(report.MissingDataStudents, want) {
		t.Errorf("MissingDataStudents = %v, want %v", report.MissingDataStudents, want)
	}
	if got := report.ClassHealth.Total(); got != 2 {
		t.Errorf("tiered count = %d, want 2", got)
	}
	if group := groupOf(report, "Two C."); group != "" {
		t.Errorf("excluded student appears in group %q", group)
	}
}

func TestAnalyzeClassHealthSumsToTieredStudents(t *testing.T) {
	roster := []models.StudentRecord{
		{ID: "s1", Name: "A Low", Composite: score(280)},
		{ID: "s2", Name: "B Mid", Composite: score(400)},
		{ID: "s3", Name: "C At", Composite: score(450)},
		{ID: "s4", Name: "D High", Composite: score(520)},
		{ID: "s5", Name: "E Sparse", LNF: score(10)},
	}
	report := analyze(t, roster, nil)

	wantTiered := len(roster) - len(report.MissingDataStudents)
	if got := report.ClassHealth.Total(); got != wantTiered {
		t.Errorf("ClassHealth.Total() = %d, want %d", got, wantTiered)
	}

	placed := 0
	for _, g := range report.Groupings {
		placed += len(g.Students)
	}
	if placed != wantTiered {
		t.Errorf("students placed in groups = %d, want %d", placed, wantTiered)
	}
}

func TestAnalyzeGroupsByWeakestSkill(t *testing.T) {
	tests := []struct {
		name    string
		student models.StudentRecord
		want    string
	}{
		{
			name: "weak phonemic awareness",
			student: models.StudentRecord{
				ID: "s1", Name: "Pat Quinn",
				LNF: score(50), PSF: score(20), NWFCls: score(50),
				NWFWrc: score(14), WRF: score(22), ORF: score(35),
			},
			want: models.GroupFoundational,
		},
		{
			name: "weak decoding",
			student: models.StudentRecord{
				ID: "s2", Name: "Dee Cole",
				LNF: score(59), PSF: score(45), NWFCls: score(30),
				NWFWrc: score(8), WRF: score(24), ORF: score(36),
			},
			want: models.GroupDecoding,
		},
		{
			name: "weak fluency",
			student: models.StudentRecord{
				ID: "s3", Name: "Flo Reed",
				LNF: score(59), PSF: score(45), NWFCls: score(55),
				NWFWrc: score(15), WRF: score(10), ORF: score(30),
			},
			want: models.GroupFluency,
		},
		{
			name:    "at benchmark goes to advanced",
			student: models.StudentRecord{ID: "s4", Name: "Ada Moss", Composite: score(460)},
			want:    models.GroupAdvanced,
		},
		{
			name:    "composite only well below starts foundational",
			student: models.StudentRecord{ID: "s5", Name: "Cal Webb", Composite: score(280)},
			want:    models.GroupFoundational,
		},
		{
			name:    "composite only below starts decoding",
			student: models.StudentRecord{ID: "s6", Name: "Bo Lane", Composite: score(400)},
			want:    models.GroupDecoding,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report := analyze(t, []models.StudentRecord{tt.student}, nil)
			display := models.DisplayName(tt.student.Name)
			if got := groupOf(report, display); got != tt.want {
				t.Errorf("grouped %s into %q, want %q", display, got, tt.want)
			}
		})
	}
}

func TestAnalyzeAllGroupsAlwaysPresent(t *testing.T) {
	report := analyze(t, nil, nil)

	if len(report.Groupings) != len(models.GroupLabels) {
		t.Fatalf("got %d groupings, want %d", len(report.Groupings), len(models.GroupLabels))
	}
	for i, label := range models.GroupLabels {
		g := report.Groupings[i]
		if g.GroupID != label {
			t.Errorf("grouping[%d].GroupID = %q, want %q", i, g.GroupID, label)
		}
		if g.Students == nil || len(g.Students) != 0 {
			t.Errorf("grouping %q students = %v, want empty non-nil", label, g.Students)
		}
		if len(g.Lessons) != 3 {
			t.Errorf("grouping %q has %d lessons, want 3", label, len(g.Lessons))
		}
		if g.TeacherAction == "" {
			t.Errorf("grouping %q has no teacher action", label)
		}
	}
}

func TestAnalyzeIsDeterministic(t *testing.T) {
	roster := []models.StudentRecord{
		{ID: "s1", Name: "James Wilson", Composite: score(350), LNF: score(40), PSF: score(45)},
		{ID: "s2", Name: "Sarah Miller", Composite: score(410), MetAimLineWeeks: 3},
		{ID: "s3", Name: "Ben Thompson", Composite: score(460), FormativeAssessments: datedEntries(50, 55, 40)},
	}
	previous := analyze(t, roster, nil)

	first := analyze(t, roster, previous)
	second := analyze(t, roster, previous)
	if !reflect.DeepEqual(first, second) {
		t.Error("re-running analysis on unchanged input produced a different report")
	}
}

func TestAnalyzeReassignmentAgainstPreviousReport(t *testing.T) {
	previous := &models.LiteracyAnalysisReport{
		Groupings: []models.GroupAnalysis{
			{GroupID: models.GroupFoundational, Students: []string{"Ben T."}},
		},
	}
	roster := []models.StudentRecord{{ID: "s1", Name: "Ben Thompson", Composite: score(460)}}

	report := analyze(t, roster, previous)

	var found *models.MovementRecord
	for i := range report.MovementReport {
		if strings.HasPrefix(report.MovementReport[i].Reason, "Reassigned") {
			found = &report.MovementReport[i]
		}
	}
	if found == nil {
		t.Fatalf("no reassignment record in %v", report.MovementReport)
	}
	if found.PreviousGroup != models.GroupFoundational || found.NewGroup != models.GroupAdvanced {
		t.Errorf("reassignment %q -> %q, want %q -> %q",
			found.PreviousGroup, found.NewGroup, models.GroupFoundational, models.GroupAdvanced)
	}
	if found.Student != "Ben T." {
		t.Errorf("movement uses name %q, want display name \"Ben T.\"", found.Student)
	}
}

func TestAnalyzeAimLinePromotion(t *testing.T) {
	roster := []models.StudentRecord{
		{ID: "s1", Name: "Sarah Miller", Composite: score(400), MetAimLineWeeks: 3},
	}
	report := analyze(t, roster, nil)

	var found *models.MovementRecord
	for i := range report.MovementReport {
		if strings.HasPrefix(report.MovementReport[i].Reason, "Promotion proposed") {
			found = &report.MovementReport[i]
		}
	}
	if found == nil {
		t.Fatalf("no promotion record in %v", report.MovementReport)
	}
	if !strings.Contains(found.Reason, "met aim line 3 consecutive weeks") {
		t.Errorf("promotion reason %q does not cite the aim line evidence", found.Reason)
	}
	if found.PreviousGroup != models.GroupDecoding || found.NewGroup != models.GroupFluency {
		t.Errorf("promotion %q -> %q, want one group up from %q",
			found.PreviousGroup, found.NewGroup, models.GroupDecoding)
	}
}

func TestAnalyzeFormativePromotion(t *testing.T) {
	roster := []models.StudentRecord{
		{
			ID: "s1", Name: "Quinn Baker", Composite: score(400),
			FormativeAssessments: datedEntries(90, 92, 95),
		},
	}
	report := analyze(t, roster, nil)

	var found bool
	for _, m := range report.MovementReport {
		if strings.Contains(m.Reason, "formative average") {
			found = true
		}
	}
	if !found {
		t.Errorf("no formative-evidence promotion in %v", report.MovementReport)
	}
}

func TestAnalyzeNoPromotionWithoutEvidence(t *testing.T) {
	roster := []models.StudentRecord{
		{ID: "s1", Name: "Slow Steady", Composite: score(400), MetAimLineWeeks: 2},
	}
	report := analyze(t, roster, nil)
	if len(report.MovementReport) != 0 {
		t.Errorf("movement report = %v, want empty", report.MovementReport)
	}
}

func TestAnalyzeRegressionFlag(t *testing.T) {
	roster := []models.StudentRecord{
		{
			ID: "s1", Name: "Ben Thompson", Composite: score(450),
			FormativeAssessments: datedEntries(50, 55, 40),
		},
	}
	report := analyze(t, roster, nil)

	var found *models.MovementRecord
	for i := range report.MovementReport {
		if strings.HasPrefix(report.MovementReport[i].Reason, "Regression watch") {
			found = &report.MovementReport[i]
		}
	}
	if found == nil {
		t.Fatalf("no regression flag in %v", report.MovementReport)
	}
	if found.PreviousGroup != found.NewGroup {
		t.Errorf("regression flag moved %q -> %q, flags must keep the group unchanged",
			found.PreviousGroup, found.NewGroup)
	}
}

func TestAnalyzeUndatedEntriesCarryNoSignal(t *testing.T) {
	undated := []models.FormativeAssessment{
		{ID: "a", Score: 10, Skill: "Blending"},
		{ID: "b", Score: 20, Skill: "Blending"},
		{ID: "c", Score: 30, Skill: "Blending"},
	}
	roster := []models.StudentRecord{
		{ID: "s1", Name: "Ben Thompson", Composite: score(450), FormativeAssessments: undated},
	}
	report := analyze(t, roster, nil)
	for _, m := range report.MovementReport {
		if strings.HasPrefix(m.Reason, "Regression watch") {
			t.Errorf("regression flag raised from undated entries: %v", m)
		}
	}
}

func TestAnalyzeORFAccuracyDiscountsRate(t *testing.T) {
	engine := NewEngine(DefaultBenchmarks())

	fast := models.StudentRecord{ORF: score(50), ORFAccuracy: score(95)}
	sloppy := models.StudentRecord{ORF: score(50), ORFAccuracy: score(60)}

	fastRatio := engine.componentRatios(&fast)["orf"]
	sloppyRatio := engine.componentRatios(&sloppy)["orf"]
	if sloppyRatio >= fastRatio {
		t.Errorf("orf ratio with 60%% accuracy (%v) should be below 95%% accuracy (%v)", sloppyRatio, fastRatio)
	}
}

func TestLoadBenchmarksMissingFile(t *testing.T) {
	if _, err := LoadBenchmarks("does-not-exist.yaml"); err == nil {
		t.Error("LoadBenchmarks on a missing file should error")
	}
}
