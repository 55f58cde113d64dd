package roster

import (
	"errors"
	"math"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"

	"literacylead/internal/models"
)

var (
	ErrStudentNotFound = errors.New("student not found")
	ErrUnknownField    = errors.New("unknown field")
)

// Store is the in-memory roster: the single mutable source of truth for
// student records. It is volatile by design; analysis reports are derived
// snapshots and live elsewhere.
type Store struct {
	mu       sync.RWMutex
	students []models.StudentRecord
}

// NewStore creates an empty roster store.
func NewStore() *Store {
	return &Store{}
}

// List returns a deep copy of the roster in insertion order.
func (s *Store) List() []models.StudentRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyStudents(s.students)
}

// Count returns the roster size.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.students)
}

// Get returns a copy of one student by id.
func (s *Store) Get(id string) (models.StudentRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.students {
		if s.students[i].ID == id {
			return copyStudent(s.students[i]), true
		}
	}
	return models.StudentRecord{}, false
}

// Add inserts a blank student record: no name, every score unset, empty
// formative history. Returns a copy of the new record.
func (s *Store) Add() models.StudentRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	student := models.StudentRecord{
		ID:                   uuid.New().String(),
		FormativeAssessments: []models.FormativeAssessment{},
	}
	s.students = append(s.students, student)
	return copyStudent(student)
}

// Insert appends a fully formed record (ingestion path).
func (s *Store) Insert(student models.StudentRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if student.ID == "" {
		student.ID = uuid.New().String()
	}
	if student.FormativeAssessments == nil {
		student.FormativeAssessments = []models.FormativeAssessment{}
	}
	s.students = append(s.students, student)
}

// UpdateField applies a textual edit to one field. The name passes through
// unchanged; score fields are coerced with CoerceScore so an empty or
// unparsable value becomes unset rather than zero or NaN.
func (s *Store) UpdateField(id, field, raw string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.students {
		if s.students[i].ID != id {
			continue
		}
		if field == "name" {
			s.students[i].Name = raw
			return nil
		}
		target := s.students[i].ScoreField(field)
		if target == nil {
			return ErrUnknownField
		}
		*target = CoerceScore(raw)
		return nil
	}
	return ErrStudentNotFound
}

// Remove deletes a student and their entire formative history. Destructive
// and not undoable; callers confirm before invoking.
func (s *Store) Remove(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.students {
		if s.students[i].ID == id {
			s.students = append(s.students[:i], s.students[i+1:]...)
			return nil
		}
	}
	return ErrStudentNotFound
}

// ReplaceAll swaps in a brand-new roster. Prior identities, ids and
// formative histories are discarded: the imported document is authoritative,
// not a merge source.
func (s *Store) ReplaceAll(students []models.StudentRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fresh := make([]models.StudentRecord, 0, len(students))
	for _, student := range students {
		if student.ID == "" {
			student.ID = uuid.New().String()
		}
		if student.FormativeAssessments == nil {
			student.FormativeAssessments = []models.FormativeAssessment{}
		}
		fresh = append(fresh, student)
	}
	s.students = fresh
}

// AppendAssessment adds one formative assessment to a student's history.
func (s *Store) AppendAssessment(id string, fa models.FormativeAssessment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.students {
		if s.students[i].ID == id {
			if fa.ID == "" {
				fa.ID = uuid.New().String()
			}
			s.students[i].FormativeAssessments = append(s.students[i].FormativeAssessments, fa)
			return nil
		}
	}
	return ErrStudentNotFound
}

// FindByName reconciles a scanned name against the roster using the lenient
// bidirectional substring match. Policy is first-match-wins in roster order;
// every matching name is returned so callers can surface the ambiguity
// instead of hiding it.
func (s *Store) FindByName(name string) (id string, candidates []string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.students {
		if s.students[i].MatchesName(name) {
			if id == "" {
				id = s.students[i].ID
			}
			candidates = append(candidates, s.students[i].Name)
		}
	}
	return id, candidates
}

// CoerceScore turns a raw text edit into a score value. Empty strings and
// anything that does not parse as a finite number become unset; zero is only
// stored when the user typed a zero.
func CoerceScore(raw string) *float64 {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil
	}
	v, err := strconv.ParseFloat(trimmed, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

func copyStudent(s models.StudentRecord) models.StudentRecord {
	out := s
	out.Composite = copyScore(s.Composite)
	out.LNF = copyScore(s.LNF)
	out.PSF = copyScore(s.PSF)
	out.NWFCls = copyScore(s.NWFCls)
	out.NWFWrc = copyScore(s.NWFWrc)
	out.WRF = copyScore(s.WRF)
	out.ORF = copyScore(s.ORF)
	out.ORFAccuracy = copyScore(s.ORFAccuracy)
	out.FormativeAssessments = make([]models.FormativeAssessment, len(s.FormativeAssessments))
	copy(out.FormativeAssessments, s.FormativeAssessments)
	return out
}

func copyStudents(students []models.StudentRecord) []models.StudentRecord {
	out := make([]models.StudentRecord, len(students))
	for i := range students {
		out[i] = copyStudent(students[i])
	}
	return out
}

func copyScore(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
