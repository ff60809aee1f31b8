package enrichment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Umc8th-Snack/Back-end-sub000/internal/db"
)

func TestStripFences(t *testing.T) {
	assert.Equal(t, `{"a":1}`, StripFences("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, StripFences("```{\"a\":1}```"))
	assert.Equal(t, `{"a":1}`, StripFences(`  {"a":1} `))
}

func TestParseResultAcceptsLooseAnswerIDs(t *testing.T) {
	res, err := ParseResult(`{"summary":" 요약 ","quizzes":[{"question":"q","options":[
		{"id":1,"text":"a"},{"id":2,"text":"b"},{"id":3,"text":"c"},{"id":4,"text":"d"}],
		"answer":{"id":"4. d","text":"d"},"explanation":"e"}],"terms":[]}`)
	require.NoError(t, err)
	assert.Equal(t, "요약", res.Summary)
	assert.Equal(t, db.OptionID(4), res.Quizzes[0].Answer.ID)
}

func TestParseResultRejects(t *testing.T) {
	cases := map[string]string{
		"not json":        `summary: nope`,
		"empty":           "```json\n```",
		"missing summary": `{"summary":"","quizzes":[],"terms":[]}`,
		"three options": `{"summary":"s","quizzes":[{"question":"q","options":[
			{"id":1,"text":"a"},{"id":2,"text":"b"},{"id":3,"text":"c"}],
			"answer":{"id":1,"text":"a"}}]}`,
		"answer out of range": `{"summary":"s","quizzes":[{"question":"q","options":[
			{"id":1,"text":"a"},{"id":2,"text":"b"},{"id":3,"text":"c"},{"id":4,"text":"d"}],
			"answer":{"id":7,"text":"x"}}]}`,
		"blank term": `{"summary":"s","terms":[{"word":"","meaning":"m"}]}`,
	}
	for name, input := range cases {
		_, err := ParseResult(input)
		assert.ErrorIs(t, err, ErrInvalidResult, name)
	}
}

func TestBuildPromptAppendsContent(t *testing.T) {
	p := BuildPrompt("본문입니다")
	assert.Contains(t, p, `"summary"`)
	assert.True(t, len(p) > len("본문입니다"))
	assert.Equal(t, "본문입니다", p[len(p)-len("본문입니다"):])
}
