package models

// Tier is one of the four proficiency bands students are classified into.
type Tier string

const (
	TierWellBelow Tier = "Well Below"
	TierBelow     Tier = "Below"
	TierAt        Tier = "At"
	TierAbove     Tier = "Above"
)

// Intervention group labels. These are wire values shared with the external
// analysis contract and must not be reworded.
const (
	GroupFoundational = "Group 1: Foundational (Phonemic Awareness/PSF)"
	GroupDecoding     = "Group 2: Decoding (Blending/NWF)"
	GroupFluency      = "Group 3: Fluency (Rate and Accuracy/ORF)"
	GroupAdvanced     = "Group 4: Advanced (Comprehension/Vocabulary)"
)

// GroupLabels lists the four fixed intervention groups in display order.
var GroupLabels = []string{GroupFoundational, GroupDecoding, GroupFluency, GroupAdvanced}

// LessonPlan is one 15-minute small-group lesson.
//
// The checkUnderstaning key is misspelled in the external contract; both
// sides of the boundary use it as-is, so the tag stays.
type LessonPlan struct {
	Title          string `json:"title"`
	WarmUp         string `json:"warmUp"`
	ExplicitModel  string `json:"explicitModel"`
	GuidedPractice string `json:"guidedPractice"`
	CheckUnd       string `json:"checkUnderstaning"`
}

// GroupAnalysis is the roster, lessons and teacher action for one
// intervention group. Student entries are display names only.
type GroupAnalysis struct {
	GroupID       string       `json:"groupId"`
	Students      []string     `json:"students"`
	Lessons       []LessonPlan `json:"lessons"`
	TeacherAction string       `json:"teacherAction"`
}

// ClassHealth counts students per tier. The four counts sum to the number of
// tiered students (missing-data students are excluded before tiering).
type ClassHealth struct {
	WellBelow int `json:"wellBelow"`
	Below     int `json:"below"`
	At        int `json:"at"`
	Above     int `json:"above"`
}

// Total returns the number of tiered students.
func (h ClassHealth) Total() int {
	return h.WellBelow + h.Below + h.At + h.Above
}

// AtOrAbovePercent is the dashboard proficiency figure:
// (at+above)/total rounded to a whole percentage, 0 for an empty class.
func (h ClassHealth) AtOrAbovePercent() int {
	total := h.Total()
	if total == 0 {
		return 0
	}
	return int(float64(h.At+h.Above)/float64(total)*100 + 0.5)
}

// MovementRecord describes a proposed group reassignment between the
// previous analysis run and this one, with an evidence-based reason.
type MovementRecord struct {
	Student       string `json:"student"`
	PreviousGroup string `json:"previousGroup"`
	NewGroup      string `json:"newGroup"`
	Reason        string `json:"reason"`
}

// LiteracyAnalysisReport is the full analysis output. It is immutable once
// produced and replaces the previous report wholesale.
type LiteracyAnalysisReport struct {
	ClassHealth         ClassHealth      `json:"classHealth"`
	Groupings           []GroupAnalysis  `json:"groupings"`
	MovementReport      []MovementRecord `json:"movementReport"`
	MissingDataStudents []string         `json:"missingDataStudents"`
}
