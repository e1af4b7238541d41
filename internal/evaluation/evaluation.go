package evaluation

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Suggestion is one concrete rewrite proposal inside an Evaluation.
type Suggestion struct {
	OriginalSentence string `json:"original_sentence"`
	RevisedSentence  string `json:"revised_sentence"`
	Reason           string `json:"reason"`
}

// Evaluation is the validated, structured outcome of grading one essay.
type Evaluation struct {
	Score          float64      `json:"score"`
	Strengths      string       `json:"strengths"`
	Weaknesses     string       `json:"weaknesses"`
	Suggestions    []Suggestion `json:"suggestions"`
	SummaryComment string       `json:"summary_comment"`
}

var (
	// objectPattern grabs the largest {...} span, greedy across newlines.
	objectPattern = regexp.MustCompile(`(?s)\{.*\}`)

	// trailingComma matches a comma directly before a closing brace or
	// bracket, a common model artifact that strict JSON rejects.
	trailingComma = regexp.MustCompile(`,\s*([}\]])`)
)

var requiredFields = []string{"score", "strengths", "weaknesses", "suggestions", "summary_comment"}

// Parse locates the JSON object embedded in the model's raw response,
// decodes it, and validates it into an Evaluation.
func Parse(raw string) (*Evaluation, error) {
	candidate := ExtractJSON(raw)

	var fields map[string]any
	dec := json.NewDecoder(strings.NewReader(candidate))
	dec.UseNumber()
	if err := dec.Decode(&fields); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotJSON, err)
	}

	for _, name := range requiredFields {
		if _, ok := fields[name]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingField, name)
		}
	}

	score, err := parseScore(fields["score"])
	if err != nil {
		return nil, err
	}

	rawSuggestions, ok := fields["suggestions"].([]any)
	if !ok {
		return nil, fmt.Errorf("%w: got %T", ErrBadSuggestions, fields["suggestions"])
	}
	suggestions, err := parseSuggestions(rawSuggestions)
	if err != nil {
		return nil, err
	}

	return &Evaluation{
		Score:          score,
		Strengths:      asString(fields["strengths"]),
		Weaknesses:     asString(fields["weaknesses"]),
		Suggestions:    suggestions,
		SummaryComment: asString(fields["summary_comment"]),
	}, nil
}

// ExtractJSON pulls the best JSON-object candidate out of raw text and
// normalizes trailing commas so it can be decoded as strict JSON.
//
// Strategy, in order: the largest {...} span found by a greedy regex;
// a line-by-line scan tracking brace depth (covers multi-line responses
// the regex misses); the entire trimmed text.
func ExtractJSON(raw string) string {
	candidate := objectPattern.FindString(raw)
	if candidate == "" {
		candidate = scanBraceSpan(raw)
	}
	if candidate == "" {
		candidate = strings.TrimSpace(raw)
	}
	return trailingComma.ReplaceAllString(candidate, "$1")
}

// scanBraceSpan assembles a candidate object by scanning lines and
// counting opening and closing braces until the depth returns to zero.
func scanBraceSpan(raw string) string {
	var jsonLines []string
	inObject := false
	depth := 0

	for _, line := range strings.Split(raw, "\n") {
		switch {
		case !inObject && strings.Contains(line, "{"):
			inObject = true
			depth = strings.Count(line, "{") - strings.Count(line, "}")
			jsonLines = append(jsonLines, line)
		case inObject:
			jsonLines = append(jsonLines, line)
			depth += strings.Count(line, "{") - strings.Count(line, "}")
		}
		if inObject && depth <= 0 {
			break
		}
	}

	return strings.Join(jsonLines, "\n")
}

// parseScore accepts JSON numbers and numeric strings, enforcing the
// [0, 100] range.
func parseScore(v any) (float64, error) {
	var (
		score float64
		err   error
	)
	switch n := v.(type) {
	case json.Number:
		score, err = n.Float64()
	case string:
		score, err = strconv.ParseFloat(strings.TrimSpace(n), 64)
	default:
		return 0, fmt.Errorf("%w: got %T", ErrBadScore, v)
	}
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrBadScore, err)
	}
	if score < 0 || score > 100 {
		return 0, fmt.Errorf("%w: got %g", ErrBadScore, score)
	}
	return score, nil
}

func parseSuggestions(items []any) ([]Suggestion, error) {
	encoded, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadSuggestions, err)
	}
	suggestions := make([]Suggestion, 0, len(items))
	if err := json.Unmarshal(encoded, &suggestions); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadSuggestions, err)
	}
	return suggestions, nil
}

// asString renders scalar fields as-is and re-encodes structured values
// the model occasionally returns in their place.
func asString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	encoded, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(encoded)
}
