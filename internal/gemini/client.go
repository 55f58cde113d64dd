package gemini

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"literacylead/internal/models"
)

const defaultEndpoint = "https://generativelanguage.googleapis.com/v1beta"

// Client talks to the Gemini generateContent API. It covers the three
// boundaries of the system: roster analysis, single-sample extraction and
// roster extraction. Every call fails closed: a transport error or a
// response missing required fields aborts the operation with no partial
// result.
type Client struct {
	endpoint      string
	apiKey        string
	analysisModel string
	visionModel   string
	httpClient    *http.Client
}

// NewClient builds a client for the given API key. Model names are
// overridable for testing against compatible endpoints.
func NewClient(apiKey, analysisModel, visionModel string) *Client {
	if analysisModel == "" {
		analysisModel = "gemini-3-pro-preview"
	}
	if visionModel == "" {
		visionModel = "gemini-3-flash-preview"
	}
	return &Client{
		endpoint:      defaultEndpoint,
		apiKey:        apiKey,
		analysisModel: analysisModel,
		visionModel:   visionModel,
		httpClient: &http.Client{
			Timeout: 90 * time.Second,
		},
	}
}

// SampleExtraction is the single-sample boundary response: one extracted
// student name plus one assessment. Score and skill are required; the rest
// is optional and defaulted by the ingestion layer.
type SampleExtraction struct {
	StudentName string `json:"studentName"`
	Assessment  struct {
		Date  string  `json:"date"`
		Type  string  `json:"type"`
		Score float64 `json:"score"`
		Skill string  `json:"skill"`
		Notes string  `json:"notes"`
	} `json:"assessment"`
}

// RosterRow is one row of the roster-extraction boundary response. Only the
// name is required; an absent score and a null score both mean unknown.
type RosterRow struct {
	Name        string   `json:"name"`
	Composite   *float64 `json:"composite"`
	LNF         *float64 `json:"lnf"`
	PSF         *float64 `json:"psf"`
	NWFCls      *float64 `json:"nwfCls"`
	NWFWrc      *float64 `json:"nwfWrc"`
	WRF         *float64 `json:"wrf"`
	ORF         *float64 `json:"orf"`
	ORFAccuracy *float64 `json:"orfAccuracy"`
}

// Analyze sends the serialized roster to the analysis model and decodes the
// report. The response is checked for every required contract key before
// strict decoding; a violation fails the whole analysis.
func (c *Client) Analyze(ctx context.Context, roster []models.StudentRecord, previous *models.LiteracyAnalysisReport) (*models.LiteracyAnalysisReport, error) {
	payload, err := json.Marshal(roster)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize roster: %w", err)
	}

	prompt := analysisPrompt + string(payload)
	if previous != nil {
		if prevGroups, err := json.Marshal(previous.Groupings); err == nil {
			prompt += "\n\nPREVIOUS GROUP ASSIGNMENTS (for movement reporting):\n" + string(prevGroups)
		}
	}

	raw, err := c.generate(ctx, c.analysisModel, prompt, "", nil)
	if err != nil {
		return nil, err
	}

	if err := validateReportJSON(raw); err != nil {
		return nil, err
	}

	report := &models.LiteracyAnalysisReport{}
	if err := json.Unmarshal([]byte(raw), report); err != nil {
		return nil, fmt.Errorf("failed to decode analysis response: %w", err)
	}
	return report, nil
}

// ExtractSample reads one scanned artifact and returns the extracted student
// name and assessment.
func (c *Client) ExtractSample(ctx context.Context, data []byte, mimeType string) (*SampleExtraction, error) {
	raw, err := c.generate(ctx, c.visionModel, samplePrompt, mimeType, data)
	if err != nil {
		return nil, err
	}

	parsed := gjson.Parse(raw)
	if !parsed.Get("studentName").Exists() || !parsed.Get("assessment.score").Exists() || !parsed.Get("assessment.skill").Exists() {
		return nil, fmt.Errorf("extraction response missing required fields")
	}

	extraction := &SampleExtraction{}
	if err := json.Unmarshal([]byte(raw), extraction); err != nil {
		return nil, fmt.Errorf("failed to decode extraction response: %w", err)
	}
	return extraction, nil
}

// ExtractRoster reads a tabular/scanned roster document and returns partial
// student rows.
func (c *Client) ExtractRoster(ctx context.Context, data []byte, mimeType string) ([]RosterRow, error) {
	raw, err := c.generate(ctx, c.analysisModel, rosterPrompt, mimeType, data)
	if err != nil {
		return nil, err
	}

	parsed := gjson.Parse(raw)
	if !parsed.IsArray() {
		return nil, fmt.Errorf("roster extraction did not return a list")
	}
	for _, row := range parsed.Array() {
		if !row.Get("name").Exists() {
			return nil, fmt.Errorf("roster extraction row missing name")
		}
	}

	var rows []RosterRow
	if err := json.Unmarshal([]byte(raw), &rows); err != nil {
		return nil, fmt.Errorf("failed to decode roster response: %w", err)
	}
	return rows, nil
}

// generate performs one generateContent call and returns the model's JSON
// text output with any markdown fencing stripped.
func (c *Client) generate(ctx context.Context, model, prompt, mimeType string, inline []byte) (string, error) {
	if c.apiKey == "" {
		return "", fmt.Errorf("gemini client misconfigured: missing API key")
	}

	parts := []map[string]any{}
	if inline != nil {
		parts = append(parts, map[string]any{
			"inline_data": map[string]string{
				"mime_type": mimeType,
				"data":      base64.StdEncoding.EncodeToString(inline),
			},
		})
	}
	parts = append(parts, map[string]any{"text": prompt})

	body, err := json.Marshal(map[string]any{
		"contents": []map[string]any{{"parts": parts}},
		"generationConfig": map[string]any{
			"response_mime_type": "application/json",
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", c.endpoint, model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("analysis call failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("analysis call failed: %s: %s", resp.Status, strings.TrimSpace(string(detail)))
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	text := gjson.GetBytes(respBody, "candidates.0.content.parts.0.text").String()
	if text == "" {
		return "", fmt.Errorf("empty model response")
	}
	return StripFences(text), nil
}

// StripFences removes a markdown code fence wrapper if the model added one
// despite the JSON response mime type.
func StripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// validateReportJSON checks every required key of the analysis contract.
// Absence of any required field is a contract violation and fails the run.
func validateReportJSON(raw string) error {
	parsed := gjson.Parse(raw)

	for _, key := range []string{"classHealth", "groupings", "movementReport", "missingDataStudents"} {
		if !parsed.Get(key).Exists() {
			return fmt.Errorf("analysis response missing %q", key)
		}
	}
	for _, key := range []string{"wellBelow", "below", "at", "above"} {
		if !parsed.Get("classHealth." + key).Exists() {
			return fmt.Errorf("analysis response missing classHealth.%s", key)
		}
	}

	var violation error
	parsed.Get("groupings").ForEach(func(_, group gjson.Result) bool {
		for _, key := range []string{"groupId", "students", "lessons", "teacherAction"} {
			if !group.Get(key).Exists() {
				violation = fmt.Errorf("analysis grouping missing %q", key)
				return false
			}
		}
		group.Get("lessons").ForEach(func(_, lesson gjson.Result) bool {
			for _, key := range []string{"title", "warmUp", "explicitModel", "guidedPractice", "checkUnderstaning"} {
				if !lesson.Get(key).Exists() {
					violation = fmt.Errorf("analysis lesson missing %q", key)
					return false
				}
			}
			return true
		})
		return violation == nil
	})
	if violation != nil {
		return violation
	}

	parsed.Get("movementReport").ForEach(func(_, movement gjson.Result) bool {
		for _, key := range []string{"student", "previousGroup", "newGroup", "reason"} {
			if !movement.Get(key).Exists() {
				violation = fmt.Errorf("analysis movement missing %q", key)
				return false
			}
		}
		return true
	})
	return violation
}
