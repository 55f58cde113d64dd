package service

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"literacylead/internal/gemini"
	"literacylead/internal/models"
	"literacylead/internal/roster"
)

// ErrUnreadableDocument is returned when an uploaded file cannot be turned
// into the expected shape. The roster is left untouched.
var ErrUnreadableDocument = errors.New("the uploaded content could not be read")

// Extractor is the vision/extraction boundary: scanned artifacts in,
// structured score data out.
type Extractor interface {
	ExtractSample(ctx context.Context, data []byte, mimeType string) (*gemini.SampleExtraction, error)
	ExtractRoster(ctx context.Context, data []byte, mimeType string) ([]gemini.RosterRow, error)
}

// SampleResult reports what a single-sample ingestion did. When the scanned
// name matched more than one student, Candidates lists every match so the
// ambiguity is visible; the assessment still went to the first match.
type SampleResult struct {
	StudentID   string                     `json:"studentId"`
	StudentName string                     `json:"studentName"`
	Created     bool                       `json:"created"`
	Candidates  []string                   `json:"candidates,omitempty"`
	Assessment  models.FormativeAssessment `json:"assessment"`
	AnalysisSeq uint64                     `json:"analysisSeq"`
}

// IngestService turns uploaded documents into roster mutations. Both modes
// are atomic: any extraction or parse failure leaves the roster exactly as
// it was.
type IngestService struct {
	store     *roster.Store
	extractor Extractor
	analysis  *AnalysisService
}

// NewIngestService creates a new ingest service.
func NewIngestService(store *roster.Store, extractor Extractor, analysis *AnalysisService) *IngestService {
	return &IngestService{
		store:     store,
		extractor: extractor,
		analysis:  analysis,
	}
}

// IngestSample processes one scanned artifact: extracts a name and an
// assessment, appends it to the first fuzzily matching student, or creates a
// new student when nobody matches. A full re-analysis is triggered on
// success.
func (s *IngestService) IngestSample(ctx context.Context, data []byte, mimeType string) (*SampleResult, error) {
	extraction, err := s.extractor.ExtractSample(ctx, data, mimeType)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadableDocument, err)
	}
	if strings.TrimSpace(extraction.StudentName) == "" {
		return nil, fmt.Errorf("%w: no student name found", ErrUnreadableDocument)
	}

	assessment := models.FormativeAssessment{
		ID:    uuid.New().String(),
		Date:  parseAssessmentDate(extraction.Assessment.Date),
		Type:  normalizeAssessmentType(extraction.Assessment.Type),
		Score: extraction.Assessment.Score,
		Skill: extraction.Assessment.Skill,
		Notes: extraction.Assessment.Notes,
	}
	if assessment.Score < 0 {
		assessment.Score = 0
	}
	if assessment.Skill == "" {
		assessment.Skill = "Literacy Skill"
	}

	result := &SampleResult{Assessment: assessment}

	if id, candidates := s.store.FindByName(extraction.StudentName); id != "" {
		if err := s.store.AppendAssessment(id, assessment); err != nil {
			return nil, err
		}
		result.StudentID = id
		result.StudentName = candidates[0]
		result.Candidates = candidates
	} else {
		student := models.StudentRecord{
			ID:                   uuid.New().String(),
			Name:                 extraction.StudentName,
			FormativeAssessments: []models.FormativeAssessment{assessment},
		}
		s.store.Insert(student)
		result.StudentID = student.ID
		result.StudentName = student.Name
		result.Created = true
	}

	result.AnalysisSeq = s.analysis.Trigger()
	return result, nil
}

// IngestRoster replaces the whole roster from a tabular or scanned
// document. The document is treated as the authoritative current state:
// prior ids and formative histories are discarded, not merged. CSV files are
// parsed locally; everything else goes to the extraction boundary.
func (s *IngestService) IngestRoster(ctx context.Context, data []byte, mimeType string) (int, uint64, error) {
	var students []models.StudentRecord
	var err error

	if isCSV(mimeType) {
		students, err = parseRosterCSV(data)
	} else {
		students, err = s.extractRemoteRoster(ctx, data, mimeType)
	}
	if err != nil {
		return 0, 0, err
	}
	if len(students) == 0 {
		return 0, 0, fmt.Errorf("%w: no students found", ErrUnreadableDocument)
	}

	s.store.ReplaceAll(students)
	seq := s.analysis.Trigger()
	return len(students), seq, nil
}

func (s *IngestService) extractRemoteRoster(ctx context.Context, data []byte, mimeType string) ([]models.StudentRecord, error) {
	rows, err := s.extractor.ExtractRoster(ctx, data, mimeType)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadableDocument, err)
	}

	students := make([]models.StudentRecord, 0, len(rows))
	for _, row := range rows {
		name := strings.TrimSpace(row.Name)
		if name == "" {
			name = "Unknown"
		}
		students = append(students, models.StudentRecord{
			ID:          uuid.New().String(),
			Name:        name,
			Composite:   row.Composite,
			LNF:         row.LNF,
			PSF:         row.PSF,
			NWFCls:      row.NWFCls,
			NWFWrc:      row.NWFWrc,
			WRF:         row.WRF,
			ORF:         row.ORF,
			ORFAccuracy: row.ORFAccuracy,
		})
	}
	return students, nil
}

func isCSV(mimeType string) bool {
	mt := strings.ToLower(mimeType)
	return strings.Contains(mt, "csv") || mt == "text/plain"
}

// csvColumns maps header spellings seen in mCLASS exports to score fields.
var csvColumns = map[string]string{
	"name":         "name",
	"student":      "name",
	"student name": "name",
	"composite":    "composite",
	"comp":         "composite",
	"lnf":          "lnf",
	"psf":          "psf",
	"nwf-cls":      "nwfCls",
	"nwfcls":       "nwfCls",
	"cls":          "nwfCls",
	"nwf-wrc":      "nwfWrc",
	"nwfwrc":       "nwfWrc",
	"wrc":          "nwfWrc",
	"wrf":          "wrf",
	"orf":          "orf",
	"orf-accu":     "orfAccuracy",
	"orfaccuracy":  "orfAccuracy",
	"accuracy":     "orfAccuracy",
}

func parseRosterCSV(data []byte) ([]models.StudentRecord, error) {
	reader := csv.NewReader(strings.NewReader(string(data)))
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadableDocument, err)
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("%w: need a header row and at least one student", ErrUnreadableDocument)
	}

	fields := make([]string, len(records[0]))
	nameCol := -1
	for i, header := range records[0] {
		if field, ok := csvColumns[strings.ToLower(strings.TrimSpace(header))]; ok {
			fields[i] = field
			if field == "name" {
				nameCol = i
			}
		}
	}
	if nameCol < 0 {
		return nil, fmt.Errorf("%w: no name column", ErrUnreadableDocument)
	}

	var students []models.StudentRecord
	for _, row := range records[1:] {
		if len(row) <= nameCol || strings.TrimSpace(row[nameCol]) == "" {
			continue
		}
		student := models.StudentRecord{
			ID:                   uuid.New().String(),
			Name:                 strings.TrimSpace(row[nameCol]),
			FormativeAssessments: []models.FormativeAssessment{},
		}
		for i, cell := range row {
			if i == nameCol || i >= len(fields) || fields[i] == "" {
				continue
			}
			target := student.ScoreField(fields[i])
			if target == nil {
				continue
			}
			*target = parseCSVScore(cell)
		}
		students = append(students, student)
	}
	return students, nil
}

// parseCSVScore treats blank, dash and "Discont'd" cells as unknown, never
// zero. Percent signs are stripped so "87%" reads as 87.
func parseCSVScore(cell string) *float64 {
	cleaned := strings.TrimSpace(cell)
	switch strings.ToLower(cleaned) {
	case "", "-", "—", "discont'd", "discontinued", "n/a":
		return nil
	}
	cleaned = strings.TrimSuffix(cleaned, "%")
	return roster.CoerceScore(cleaned)
}

// parseAssessmentDate accepts the handful of formats the extraction model
// emits. Anything unparsable falls back to ingestion time; a bad date never
// aborts ingestion.
func parseAssessmentDate(raw string) time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Now()
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02", "01/02/2006", "1/2/2006", "January 2, 2006"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t
		}
	}
	return time.Now()
}

func normalizeAssessmentType(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "exit ticket":
		return models.AssessmentExitTicket
	case "weekly quiz", "quiz":
		return models.AssessmentWeeklyQuiz
	default:
		return models.AssessmentScannedSample
	}
}
