package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"literacylead/internal/gemini"
	"literacylead/internal/models"
	"literacylead/internal/roster"
)

type stubExtractor struct {
	sample    *gemini.SampleExtraction
	sampleErr error
	rows      []gemini.RosterRow
	rowsErr   error
}

func (e *stubExtractor) ExtractSample(ctx context.Context, data []byte, mimeType string) (*gemini.SampleExtraction, error) {
	return e.sample, e.sampleErr
}

func (e *stubExtractor) ExtractRoster(ctx context.Context, data []byte, mimeType string) ([]gemini.RosterRow, error) {
	return e.rows, e.rowsErr
}

func newIngestFixture(extractor Extractor) (*IngestService, *roster.Store) {
	store := roster.NewStore()
	analyzer := &stubAnalyzer{fn: func([]models.StudentRecord) (*models.LiteracyAnalysisReport, error) {
		return reportWithAt(0), nil
	}}
	analysis := NewAnalysisService(store, analyzer, nil, nil)
	return NewIngestService(store, extractor, analysis), store
}

func sampleExtraction(name string, score float64) *gemini.SampleExtraction {
	s := &gemini.SampleExtraction{StudentName: name}
	s.Assessment.Date = "2026-03-02"
	s.Assessment.Type = "Exit Ticket"
	s.Assessment.Score = score
	s.Assessment.Skill = "Blending"
	return s
}

func TestIngestSampleAppendsToFuzzyMatch(t *testing.T) {
	svc, store := newIngestFixture(&stubExtractor{sample: sampleExtraction("ben", 85)})
	store.Insert(models.StudentRecord{ID: "id-ben", Name: "Ben Thompson"})

	result, err := svc.IngestSample(context.Background(), []byte("img"), "image/png")
	if err != nil {
		t.Fatalf("IngestSample() error = %v", err)
	}

	if result.Created {
		t.Error("fuzzy match reported as a new student")
	}
	if result.StudentID != "id-ben" {
		t.Errorf("StudentID = %q, want id-ben", result.StudentID)
	}
	if result.AnalysisSeq == 0 {
		t.Error("ingestion did not trigger analysis")
	}

	student, _ := store.Get("id-ben")
	if len(student.FormativeAssessments) != 1 {
		t.Fatalf("assessment count = %d, want 1", len(student.FormativeAssessments))
	}
	fa := student.FormativeAssessments[0]
	if fa.Score != 85 || fa.Type != models.AssessmentExitTicket || fa.Skill != "Blending" {
		t.Errorf("stored assessment = %+v", fa)
	}
	if fa.Date.Format("2006-01-02") != "2026-03-02" {
		t.Errorf("date = %v, want 2026-03-02", fa.Date)
	}
}

func TestIngestSampleAmbiguousNameUsesFirstMatch(t *testing.T) {
	svc, store := newIngestFixture(&stubExtractor{sample: sampleExtraction("Anna", 70)})
	store.Insert(models.StudentRecord{ID: "id-anna", Name: "Anna Price"})
	store.Insert(models.StudentRecord{ID: "id-annabelle", Name: "Annabelle Reyes"})

	result, err := svc.IngestSample(context.Background(), []byte("img"), "image/png")
	if err != nil {
		t.Fatalf("IngestSample() error = %v", err)
	}

	if result.StudentID != "id-anna" {
		t.Errorf("StudentID = %q, want first match id-anna", result.StudentID)
	}
	if len(result.Candidates) != 2 {
		t.Errorf("Candidates = %v, want both matching names", result.Candidates)
	}
}

func TestIngestSampleCreatesUnknownStudent(t *testing.T) {
	svc, store := newIngestFixture(&stubExtractor{sample: sampleExtraction("Zelda Knight", 60)})
	store.Insert(models.StudentRecord{ID: "id-ben", Name: "Ben Thompson"})

	result, err := svc.IngestSample(context.Background(), []byte("img"), "image/png")
	if err != nil {
		t.Fatalf("IngestSample() error = %v", err)
	}

	if !result.Created {
		t.Error("unknown name should create a student")
	}
	if store.Count() != 2 {
		t.Errorf("Count() = %d, want 2", store.Count())
	}
	student, ok := store.Get(result.StudentID)
	if !ok || student.Name != "Zelda Knight" {
		t.Errorf("created student = %+v", student)
	}
	if student.Composite != nil {
		t.Error("created student has benchmark scores, want all unset")
	}
}

func TestIngestSampleExtractionFailureLeavesRosterAlone(t *testing.T) {
	svc, store := newIngestFixture(&stubExtractor{sampleErr: errors.New("blurry image")})
	store.Insert(models.StudentRecord{ID: "id-ben", Name: "Ben Thompson"})

	_, err := svc.IngestSample(context.Background(), []byte("img"), "image/png")
	if !errors.Is(err, ErrUnreadableDocument) {
		t.Fatalf("error = %v, want ErrUnreadableDocument", err)
	}

	student, _ := store.Get("id-ben")
	if len(student.FormativeAssessments) != 0 {
		t.Error("failed extraction mutated the roster")
	}
}

func TestIngestRosterCSVReplacesEverything(t *testing.T) {
	svc, store := newIngestFixture(&stubExtractor{})
	for i := 0; i < 5; i++ {
		store.Add()
	}

	csvData := []byte("Name,Composite,LNF,PSF,NWF-CLS,NWF-WRC,WRF,ORF,Accuracy\n" +
		"Ada Moss,455,60,50,58,18,28,45,96%\n" +
		"Bo Lane,380,—,40,30,Discont'd,12,20,\n" +
		"Cal Webb,,,,,,,,\n")

	count, seq, err := svc.IngestRoster(context.Background(), csvData, "text/csv")
	if err != nil {
		t.Fatalf("IngestRoster() error = %v", err)
	}
	if count != 3 || store.Count() != 3 {
		t.Fatalf("count = %d, store = %d, want 3", count, store.Count())
	}
	if seq == 0 {
		t.Error("roster import did not trigger analysis")
	}

	students := store.List()
	ada := students[0]
	if ada.Name != "Ada Moss" || ada.Composite == nil || *ada.Composite != 455 {
		t.Errorf("ada = %+v", ada)
	}
	if ada.ORFAccuracy == nil || *ada.ORFAccuracy != 96 {
		t.Errorf("percent cell not parsed: %v", ada.ORFAccuracy)
	}

	bo := students[1]
	if bo.LNF != nil {
		t.Errorf("dash cell parsed as %v, want unset", *bo.LNF)
	}
	if bo.NWFWrc != nil {
		t.Errorf("Discont'd cell parsed as %v, want unset", *bo.NWFWrc)
	}
	if bo.ORFAccuracy != nil {
		t.Errorf("blank cell parsed as %v, want unset", *bo.ORFAccuracy)
	}

	cal := students[2]
	if cal.Composite != nil || cal.ORF != nil {
		t.Errorf("empty row carries scores: %+v", cal)
	}
}

func TestIngestRosterRejectsEmptyDocuments(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"header only", "Name,Composite\n"},
		{"no name column", "Score,Composite\n5,400\n"},
		{"rows without names", "Name,Composite\n,400\n  ,380\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, store := newIngestFixture(&stubExtractor{})
			existing := store.Add()

			_, _, err := svc.IngestRoster(context.Background(), []byte(tt.data), "text/csv")
			if !errors.Is(err, ErrUnreadableDocument) {
				t.Fatalf("error = %v, want ErrUnreadableDocument", err)
			}
			if _, ok := store.Get(existing.ID); !ok {
				t.Error("failed import destroyed the existing roster")
			}
		})
	}
}

func TestIngestRosterRemoteExtraction(t *testing.T) {
	comp := 420.0
	svc, store := newIngestFixture(&stubExtractor{rows: []gemini.RosterRow{
		{Name: "Ada Moss", Composite: &comp},
		{Name: "  "},
	}})

	count, _, err := svc.IngestRoster(context.Background(), []byte("pdf"), "application/pdf")
	if err != nil {
		t.Fatalf("IngestRoster() error = %v", err)
	}
	if count != 2 {
		t.Fatalf("count = %d, want 2", count)
	}

	students := store.List()
	if students[1].Name != "Unknown" {
		t.Errorf("blank extracted name = %q, want Unknown placeholder", students[1].Name)
	}
}

func TestParseAssessmentDate(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"iso date", "2026-03-02", "2026-03-02"},
		{"us date", "03/02/2026", "2026-03-02"},
		{"short us date", "3/2/2026", "2026-03-02"},
		{"long form", "March 2, 2026", "2026-03-02"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseAssessmentDate(tt.raw)
			if got.Format("2006-01-02") != tt.want {
				t.Errorf("parseAssessmentDate(%q) = %v, want %s", tt.raw, got, tt.want)
			}
		})
	}

	t.Run("garbage falls back to now", func(t *testing.T) {
		got := parseAssessmentDate("sometime last week")
		if time.Since(got) > time.Minute {
			t.Errorf("fallback date = %v, want approximately now", got)
		}
	})
}

func TestNormalizeAssessmentType(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"Exit Ticket", models.AssessmentExitTicket},
		{"exit ticket", models.AssessmentExitTicket},
		{"Weekly Quiz", models.AssessmentWeeklyQuiz},
		{"quiz", models.AssessmentWeeklyQuiz},
		{"worksheet", models.AssessmentScannedSample},
		{"", models.AssessmentScannedSample},
	}

	for _, tt := range tests {
		if got := normalizeAssessmentType(tt.raw); got != tt.want {
			t.Errorf("normalizeAssessmentType(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}
