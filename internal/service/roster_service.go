package service

import (
	"literacylead/internal/models"
	"literacylead/internal/roster"
)

// RosterService fronts the in-memory roster store for the handlers.
type RosterService struct {
	store *roster.Store
}

// NewRosterService creates a new roster service.
func NewRosterService(store *roster.Store) *RosterService {
	return &RosterService{store: store}
}

// Students returns the full roster in insertion order.
func (s *RosterService) Students() []models.StudentRecord {
	return s.store.List()
}

// AddStudent inserts a blank record and returns it.
func (s *RosterService) AddStudent() models.StudentRecord {
	return s.store.Add()
}

// UpdateField applies a textual edit to one student field with score
// coercion semantics.
func (s *RosterService) UpdateField(id, field, raw string) error {
	return s.store.UpdateField(id, field, raw)
}

// RemoveStudent deletes a student and their assessment history.
func (s *RosterService) RemoveStudent(id string) error {
	return s.store.Remove(id)
}

// Profile returns one student with their formative history ordered most
// recent first.
func (s *RosterService) Profile(id string) (models.StudentRecord, bool) {
	student, ok := s.store.Get(id)
	if !ok {
		return models.StudentRecord{}, false
	}
	student.FormativeAssessments = student.AssessmentsNewestFirst()
	return student, true
}

// SeedDemoRoster loads the demo class when the roster is empty so a first
// login has something to look at.
func (s *RosterService) SeedDemoRoster() bool {
	if s.store.Count() > 0 {
		return false
	}
	for _, student := range demoRoster() {
		s.store.Insert(student)
	}
	return true
}

func demoRoster() []models.StudentRecord {
	f := func(v float64) *float64 { return &v }
	return []models.StudentRecord{
		{Name: "James Wilson", Composite: f(350), LNF: f(40), PSF: f(45), NWFCls: f(30), NWFWrc: f(5), WRF: f(10), ORF: f(15), ORFAccuracy: f(80)},
		{Name: "Sarah Miller", Composite: f(410), LNF: f(60), PSF: f(60), NWFCls: f(65), NWFWrc: f(22), WRF: f(30), ORF: f(50), ORFAccuracy: f(95), MetAimLineWeeks: 3},
		{Name: "Ben Thompson", Composite: f(380), LNF: f(50), PSF: f(58), NWFCls: f(45), NWFWrc: f(10), WRF: f(15), ORF: f(20), ORFAccuracy: f(85), MetAimLineWeeks: 4},
		{Name: "Emily Davis", Composite: f(420), LNF: f(65), PSF: f(62), NWFCls: f(70), NWFWrc: f(25), WRF: f(35), ORF: f(55), ORFAccuracy: f(98), MetAimLineWeeks: 2},
		{Name: "Liam Garcia", Composite: f(280), LNF: f(20), PSF: f(35), MetAimLineWeeks: 1},
	}
}
