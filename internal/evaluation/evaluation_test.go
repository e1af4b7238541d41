package evaluation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validPayload = `{
  "score": 85,
  "strengths": "Clear thesis and strong topic sentences.",
  "weaknesses": "Some paragraphs drift off topic.",
  "suggestions": [
    {
      "original_sentence": "The weather was nice.",
      "revised_sentence": "The morning sun warmed the quiet schoolyard.",
      "reason": "Replace a vague description with concrete imagery."
    }
  ],
  "summary_comment": "A solid essay with room to tighten focus."
}`

func TestParseValidPayload(t *testing.T) {
	t.Parallel()

	eval, err := Parse(validPayload)
	require.NoError(t, err)

	assert.Equal(t, 85.0, eval.Score)
	assert.Equal(t, "Clear thesis and strong topic sentences.", eval.Strengths)
	assert.Equal(t, "Some paragraphs drift off topic.", eval.Weaknesses)
	require.Len(t, eval.Suggestions, 1)
	assert.Equal(t, "The weather was nice.", eval.Suggestions[0].OriginalSentence)
	assert.Equal(t, "A solid essay with room to tighten focus.", eval.SummaryComment)
}

func TestParseObjectEmbeddedInCommentary(t *testing.T) {
	t.Parallel()

	raw := "Here is my grading of the essay:\n\n" + validPayload + "\n\nLet me know if you need anything else."
	eval, err := Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, 85.0, eval.Score)
}

func TestParseToleratesTrailingCommas(t *testing.T) {
	t.Parallel()

	raw := `{
  "score": 70,
  "strengths": "Good vocabulary.",
  "weaknesses": "Weak conclusion.",
  "suggestions": [],
  "summary_comment": "Keep practicing.",
}`
	eval, err := Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, 70.0, eval.Score)
	assert.Empty(t, eval.Suggestions)
}

func TestParseNumericStringScore(t *testing.T) {
	t.Parallel()

	raw := `{"score": "92.5", "strengths": "a", "weaknesses": "b", "suggestions": [], "summary_comment": "c"}`
	eval, err := Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, 92.5, eval.Score)
}

func TestParseScoreBounds(t *testing.T) {
	t.Parallel()

	template := func(score string) string {
		return `{"score": ` + score + `, "strengths": "a", "weaknesses": "b", "suggestions": [], "summary_comment": "c"}`
	}

	for _, score := range []string{"0", "100"} {
		eval, err := Parse(template(score))
		require.NoError(t, err, "score %s should be accepted", score)
		assert.NotNil(t, eval)
	}

	for _, score := range []string{"-1", "150", `"abc"`, "null"} {
		_, err := Parse(template(score))
		require.Error(t, err, "score %s should be rejected", score)
		assert.ErrorIs(t, err, ErrBadScore)
		assert.ErrorIs(t, err, ErrInvalid)
	}
}

func TestParseMissingField(t *testing.T) {
	t.Parallel()

	raw := `{"score": 80, "strengths": "a", "weaknesses": "b", "suggestions": []}`
	_, err := Parse(raw)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingField)
	assert.ErrorIs(t, err, ErrInvalid)
	assert.Contains(t, err.Error(), "summary_comment")
}

func TestParseSuggestionsMustBeList(t *testing.T) {
	t.Parallel()

	raw := `{"score": 80, "strengths": "a", "weaknesses": "b", "suggestions": "work harder", "summary_comment": "c"}`
	_, err := Parse(raw)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrBadSuggestions)
}

func TestParseNoJSONAtAll(t *testing.T) {
	t.Parallel()

	_, err := Parse("I could not grade this essay, sorry.")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotJSON)
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestParseStructuredScalarFields(t *testing.T) {
	t.Parallel()

	// Models occasionally return lists where a string is expected; those
	// fields are re-encoded rather than rejected.
	raw := `{"score": 60, "strengths": ["clear", "concise"], "weaknesses": "b", "suggestions": [], "summary_comment": "c"}`
	eval, err := Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, `["clear","concise"]`, eval.Strengths)
}

func TestExtractJSONNormalizesTrailingCommas(t *testing.T) {
	t.Parallel()

	assert.Equal(t, `{"a": 1, "b": [1,2]}`, ExtractJSON(`{"a": 1, "b": [1,2,],}`))
}

func TestExtractJSONLineScanFallback(t *testing.T) {
	t.Parallel()

	got := scanBraceSpan("noise\n{\n\"a\": 1\n}\ntrailing")
	assert.Equal(t, "{\n\"a\": 1\n}", got)
}

func TestExtractJSONWholeTextFallback(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "[1, 2]", ExtractJSON("  [1, 2]  "))
}
