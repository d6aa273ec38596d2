// Package parser extracts a structured research report from the free-text
// response of a model endpoint. Models are instructed to answer with bare
// JSON but routinely wrap it in a markdown code fence.
package parser

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

// ErrMalformedResponse means the cleaned response text is not a JSON object.
var ErrMalformedResponse = errors.New("malformed model response")

// Report is the structured result of one research response. Missing optional
// keys stay at their zero value; a missing overall_score stays nil so it can
// be told apart from a genuine score of zero.
type Report struct {
	CandidateName string
	OverallScore  *int
	Summary       string
	FullReport    string
	// Raw is the cleaned response text, kept for audit storage.
	Raw string
}

// Parse strips any code fence, decodes the JSON object, and pulls out the
// known fields. It is lenient on missing keys and fails only when the text
// is not a JSON object at all.
func Parse(raw string) (*Report, error) {
	cleaned := stripFences(raw)
	if cleaned == "" || !gjson.Valid(cleaned) {
		return nil, fmt.Errorf("response is not valid JSON: %w", ErrMalformedResponse)
	}
	root := gjson.Parse(cleaned)
	if !root.IsObject() {
		return nil, fmt.Errorf("response is not a JSON object: %w", ErrMalformedResponse)
	}

	report := &Report{
		Raw:           cleaned,
		CandidateName: strings.TrimSpace(root.Get("candidate_name").String()),
		Summary:       strings.TrimSpace(root.Get("summary").String()),
		FullReport:    strings.TrimSpace(root.Get("full_report").String()),
	}
	if score := root.Get("overall_score"); score.Exists() {
		v := clampScore(int(score.Int()))
		report.OverallScore = &v
	}
	return report, nil
}

func clampScore(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// stripFences removes a leading ``` marker, an optional language tag after
// it, and a trailing ``` marker. Text without fences passes through trimmed.
func stripFences(raw string) string {
	cleaned := strings.TrimSpace(raw)
	if strings.HasPrefix(cleaned, "```") {
		cleaned = strings.TrimPrefix(cleaned, "```")
		if idx := strings.IndexByte(cleaned, '\n'); idx != -1 && !strings.Contains(cleaned[:idx], "{") {
			cleaned = cleaned[idx+1:]
		}
		cleaned = strings.TrimSpace(cleaned)
		if idx := strings.LastIndex(cleaned, "```"); idx != -1 {
			cleaned = cleaned[:idx]
		}
	}
	return strings.TrimSpace(cleaned)
}
