package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUpstreamUnavailable means the model endpoint could not be reached
	// at all, including a missing credential.
	ErrUpstreamUnavailable = errors.New("upstream model endpoint unavailable")
	// ErrUpstreamError means the endpoint was reached but returned a
	// non-success response or failed mid-stream.
	ErrUpstreamError = errors.New("upstream model endpoint returned an error")
)

// ResearchClient issues one completion request for a candidate profile and
// returns the assembled response text. Implementations do not retry and do
// not touch persistent state.
type ResearchClient interface {
	Research(ctx context.Context, profileURL, prompt, extraContext, model string) (string, error)
}

const researchSystemPrompt = "You are an expert researcher and talent acquisition specialist. " +
	"Your task is to provide a comprehensive analysis of a candidate's public profile and return the data in a specific JSON format. " +
	"The JSON output must contain the following fields: 'candidate_name' (string), 'overall_score' (integer between 0 and 100), " +
	"'summary' (string), and 'full_report' (string with the detailed analysis). " +
	"Do not include any text outside of the JSON object."

func buildResearchUserPrompt(profileURL, prompt, extraContext string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Please analyze the profile at the following URL: %s. ", profileURL)
	b.WriteString("Based on their profile, generate a professional summary, determine their full name, " +
		"write a detailed report, and provide an overall score reflecting their career achievements and experience. " +
		"Return the data in the specified JSON format.")
	if strings.TrimSpace(prompt) != "" {
		fmt.Fprintf(&b, "\n\nProject instructions:\n%s", prompt)
	}
	if strings.TrimSpace(extraContext) != "" {
		fmt.Fprintf(&b, "\n\nAdditional candidate material:\n%s", extraContext)
	}
	return b.String()
}
