package service

import (
	"testing"
	"time"

	"literacylead/internal/models"
	"literacylead/internal/roster"
)

func TestSeedDemoRoster(t *testing.T) {
	store := roster.NewStore()
	svc := NewRosterService(store)

	if !svc.SeedDemoRoster() {
		t.Fatal("empty store should be seeded")
	}
	if got := store.Count(); got != 5 {
		t.Fatalf("seeded %d students, want 5", got)
	}
	if svc.SeedDemoRoster() {
		t.Error("non-empty store must never be reseeded")
	}

	// The sparse demo student keeps unknown scores unknown.
	for _, s := range svc.Students() {
		if s.Name == "Liam Garcia" {
			if s.ORF != nil || s.WRF != nil {
				t.Errorf("Liam Garcia has scores that should be unset: %+v", s)
			}
			return
		}
	}
	t.Error("demo roster is missing Liam Garcia")
}

func TestProfileOrdersAssessmentsNewestFirst(t *testing.T) {
	store := roster.NewStore()
	svc := NewRosterService(store)
	student := store.Add()

	base := time.Date(2026, 2, 2, 0, 0, 0, 0, time.UTC)
	for i, day := range []int{0, 14, 7} {
		err := store.AppendAssessment(student.ID, models.FormativeAssessment{
			ID:   string(rune('a' + i)),
			Date: base.AddDate(0, 0, day),
		})
		if err != nil {
			t.Fatalf("AppendAssessment() error = %v", err)
		}
	}

	profile, ok := svc.Profile(student.ID)
	if !ok {
		t.Fatal("Profile() did not find the student")
	}
	if len(profile.FormativeAssessments) != 3 {
		t.Fatalf("assessment count = %d, want 3", len(profile.FormativeAssessments))
	}
	for i := 1; i < len(profile.FormativeAssessments); i++ {
		prev := profile.FormativeAssessments[i-1].Date
		cur := profile.FormativeAssessments[i].Date
		if cur.After(prev) {
			t.Errorf("assessments out of order: %v before %v", prev, cur)
		}
	}
}

func TestProfileUnknownStudent(t *testing.T) {
	svc := NewRosterService(roster.NewStore())
	if _, ok := svc.Profile("nope"); ok {
		t.Error("Profile() found a student that does not exist")
	}
}
