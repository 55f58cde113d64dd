package gemini

import (
	"strings"
	"testing"
)

const validReport = `{
  "classHealth": {"wellBelow": 1, "below": 0, "at": 2, "above": 1},
  "groupings": [
    {
      "groupId": "Group 1: Foundational (Phonemic Awareness/PSF)",
      "students": ["Ben T."],
      "lessons": [
        {
          "title": "Sound Boxes",
          "warmUp": "Clap syllables",
          "explicitModel": "Model segmenting",
          "guidedPractice": "Partner segmenting",
          "checkUnderstaning": "Segment three new words"
        }
      ],
      "teacherAction": "Pull daily for 15 minutes"
    }
  ],
  "movementReport": [
    {
      "student": "Ben T.",
      "previousGroup": "Group 2: Decoding (Blending/NWF)",
      "newGroup": "Group 1: Foundational (Phonemic Awareness/PSF)",
      "reason": "PSF dropped below benchmark"
    }
  ],
  "missingDataStudents": ["Liam G."]
}`

func TestValidateReportJSON(t *testing.T) {
	if err := validateReportJSON(validReport); err != nil {
		t.Fatalf("valid report rejected: %v", err)
	}
}

func TestValidateReportJSONMissingKeys(t *testing.T) {
	tests := []struct {
		name   string
		remove string
	}{
		{"missing classHealth tier", `"wellBelow": 1`},
		{"missing grouping teacherAction", `"teacherAction": "Pull daily for 15 minutes"`},
		{"missing lesson check", `"checkUnderstaning": "Segment three new words"`},
		{"missing movement reason", `"reason": "PSF dropped below benchmark"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			broken := strings.Replace(validReport, tt.remove, `"unused": 0`, 1)
			if broken == validReport {
				t.Fatalf("test fixture does not contain %q", tt.remove)
			}
			if err := validateReportJSON(broken); err == nil {
				t.Error("report missing a contract key was accepted")
			}
		})
	}
}

func TestValidateReportJSONTopLevelKeys(t *testing.T) {
	for _, key := range []string{"classHealth", "groupings", "movementReport", "missingDataStudents"} {
		t.Run(key, func(t *testing.T) {
			broken := strings.Replace(validReport, `"`+key+`"`, `"renamed_`+key+`"`, 1)
			if err := validateReportJSON(broken); err == nil {
				t.Errorf("report without %q was accepted", key)
			}
		})
	}
}

func TestStripFences(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "no fence",
			in:   `{"a": 1}`,
			want: `{"a": 1}`,
		},
		{
			name: "json fence",
			in:   "```json\n{\"a\": 1}\n```",
			want: `{"a": 1}`,
		},
		{
			name: "bare fence",
			in:   "```\n{\"a\": 1}\n```",
			want: `{"a": 1}`,
		},
		{
			name: "leading whitespace",
			in:   "  \n```json\n[]\n```\n",
			want: "[]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripFences(tt.in); got != tt.want {
				t.Errorf("StripFences(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNewClientDefaults(t *testing.T) {
	c := NewClient("key", "", "")
	if c.analysisModel == "" || c.visionModel == "" {
		t.Error("model defaults not applied")
	}
	c = NewClient("key", "custom-a", "custom-v")
	if c.analysisModel != "custom-a" || c.visionModel != "custom-v" {
		t.Error("model overrides not honored")
	}
}
