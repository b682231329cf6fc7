package analysis

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/Abraxas-365/talentmatch/pkg/logx"
	"github.com/xeipuuv/gojsonschema"
)

// MaxRawSuggestionRunes bounds the raw text kept when a response cannot be parsed
const MaxRawSuggestionRunes = 500

const feedbackSchemaJSON = `{
	"type": "object",
	"required": ["strengths", "weakness", "suggests"],
	"properties": {
		"strengths": {"type": "array", "items": {"type": "string"}},
		"weakness":  {"type": "array", "items": {"type": "string"}},
		"suggests":  {"type": "array", "items": {"type": "string"}}
	}
}`

var feedbackSchema = gojsonschema.NewStringLoader(feedbackSchemaJSON)

// providerFeedback is the shape the provider is asked to answer with
type providerFeedback struct {
	Strengths []string `json:"strengths"`
	Weakness  []string `json:"weakness"`
	Suggests  []string `json:"suggests"`
}

// ParseFeedback extracts the feedback object from a provider response. Code fences
// and prose around the object are ignored: only the text between the first "{" and
// the last "}" is parsed.
func ParseFeedback(raw string) (Feedback, error) {
	body, ok := extractObject(raw)
	if !ok {
		return Feedback{}, ErrMalformedResponse().WithDetail("reason", "no JSON object found")
	}

	var doc any
	if err := json.Unmarshal([]byte(body), &doc); err != nil {
		return Feedback{}, ErrRegistry.NewWithCause(CodeMalformedResponse, err)
	}

	res, err := gojsonschema.Validate(feedbackSchema, gojsonschema.NewGoLoader(doc))
	if err != nil {
		return Feedback{}, ErrRegistry.NewWithCause(CodeMalformedResponse, err)
	}
	if !res.Valid() {
		msgs := make([]string, 0, len(res.Errors()))
		for _, e := range res.Errors() {
			msgs = append(msgs, e.String())
		}
		return Feedback{}, ErrMalformedResponse().WithDetail("reason", strings.Join(msgs, "; "))
	}

	var pf providerFeedback
	if err := json.Unmarshal([]byte(body), &pf); err != nil {
		return Feedback{}, ErrRegistry.NewWithCause(CodeMalformedResponse, err)
	}

	return Feedback{
		Strengths:   cleanAll(pf.Strengths),
		Weaknesses:  cleanAll(pf.Weakness),
		Suggestions: cleanAll(pf.Suggests),
	}, nil
}

// ParseFeedbackLenient never fails. When raw cannot be parsed it returns
// DegradedFeedback holding at most MaxRawSuggestionRunes of raw, and false.
func ParseFeedbackLenient(raw string) (Feedback, bool) {
	fb, err := ParseFeedback(raw)
	if err == nil {
		return fb, true
	}

	prefix := truncateRunes(stripNUL(raw), MaxRawSuggestionRunes)
	logx.Warnf("Malformed analysis response: %v (preview=%q)", err, truncateRunes(raw, 120))
	return DegradedFeedback(prefix), false
}

func extractObject(raw string) (string, bool) {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, "```json") {
		s = strings.TrimPrefix(s, "```json")
	} else if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")

	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return "", false
	}
	return s[start : end+1], true
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n])
}

// stripNUL removes NUL bytes, which Postgres text columns reject
func stripNUL(s string) string {
	return strings.ReplaceAll(s, "\x00", "")
}

// cleanAll returns a non-nil copy of items without NUL bytes
func cleanAll(items []string) []string {
	out := make([]string, len(items))
	for i, s := range items {
		out[i] = stripNUL(s)
	}
	return out
}

// String implements fmt.Stringer for log lines
func (f Feedback) String() string {
	return fmt.Sprintf("strengths=%d weaknesses=%d suggestions=%d",
		len(f.Strengths), len(f.Weaknesses), len(f.Suggestions))
}
