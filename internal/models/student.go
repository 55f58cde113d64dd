package models

import (
	"strings"
	"time"
)

// Formative assessment types recognised by the ingestion pipeline.
const (
	AssessmentExitTicket    = "Exit Ticket"
	AssessmentWeeklyQuiz    = "Weekly Quiz"
	AssessmentScannedSample = "Scanned Sample"
)

// FormativeAssessment is one scored classroom artifact (exit ticket, quiz,
// scanned work sample). Entries are never mutated after creation; they are
// only removed together with the owning student.
type FormativeAssessment struct {
	ID    string    `json:"id"`
	Date  time.Time `json:"date"`
	Type  string    `json:"type"`
	Score float64   `json:"score"`
	Skill string    `json:"skill"`
	Notes string    `json:"notes,omitempty"`
}

// StudentRecord is one student's benchmark scores plus their formative
// history. Score fields are pointers: nil means "not assessed", which must
// never collapse into zero.
type StudentRecord struct {
	ID                   string                `json:"id"`
	Name                 string                `json:"name"`
	Composite            *float64              `json:"composite"`
	LNF                  *float64              `json:"lnf"`
	PSF                  *float64              `json:"psf"`
	NWFCls               *float64              `json:"nwfCls"`
	NWFWrc               *float64              `json:"nwfWrc"`
	WRF                  *float64              `json:"wrf"`
	ORF                  *float64              `json:"orf"`
	ORFAccuracy          *float64              `json:"orfAccuracy"`
	MetAimLineWeeks      int                   `json:"metAimLineWeeks"`
	FormativeAssessments []FormativeAssessment `json:"formativeAssessments"`
}

// ScoreField names accepted by UpdateField and the PATCH endpoint.
var ScoreFields = []string{"composite", "lnf", "psf", "nwfCls", "nwfWrc", "wrf", "orf", "orfAccuracy"}

// ScoreField returns a pointer to the named score field, or nil if the name
// is not a score field.
func (s *StudentRecord) ScoreField(field string) **float64 {
	switch field {
	case "composite":
		return &s.Composite
	case "lnf":
		return &s.LNF
	case "psf":
		return &s.PSF
	case "nwfCls":
		return &s.NWFCls
	case "nwfWrc":
		return &s.NWFWrc
	case "wrf":
		return &s.WRF
	case "orf":
		return &s.ORF
	case "orfAccuracy":
		return &s.ORFAccuracy
	}
	return nil
}

// MatchesName reports whether a scanned name refers to this student. The
// match is deliberately lenient: case-insensitive substring containment in
// either direction, so "ben" matches "Ben Thompson" and vice versa. A single
// scanned name can therefore match several students ("Ann" matches both
// "Anna" and "Annabelle"); callers resolve that by taking the first match in
// roster order.
func (s *StudentRecord) MatchesName(name string) bool {
	a := strings.ToLower(strings.TrimSpace(s.Name))
	b := strings.ToLower(strings.TrimSpace(name))
	if a == "" || b == "" {
		return false
	}
	return strings.Contains(a, b) || strings.Contains(b, a)
}

// AssessmentsNewestFirst returns a copy of the formative history sorted most
// recent first, for profile display.
func (s *StudentRecord) AssessmentsNewestFirst() []FormativeAssessment {
	out := make([]FormativeAssessment, len(s.FormativeAssessments))
	copy(out, s.FormativeAssessments)
	for i := 0; i < len(out); i++ {
		for j := i + 1; j < len(out); j++ {
			if out[j].Date.After(out[i].Date) {
				out[i], out[j] = out[j], out[i]
			}
		}
	}
	return out
}

// DisplayName reduces a full name to first name plus last initial
// ("Ben Thompson" -> "Ben T."). Report free-text must never carry full
// surnames; this is a constraint on the output channel, not on stored data.
func DisplayName(fullName string) string {
	parts := strings.Fields(strings.TrimSpace(fullName))
	if len(parts) == 0 {
		return ""
	}
	if len(parts) == 1 {
		return parts[0]
	}
	last := parts[len(parts)-1]
	return parts[0] + " " + strings.ToUpper(last[:1]) + "."
}
