package jsonrepair

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractReturnsWellFormedInputUnchanged(t *testing.T) {
	raw := `{"summary": "Covers {scope} ... and more", "scores": [1, 2.5, -3], "ok": true}`

	out, err := Extract(raw)
	require.NoError(t, err)
	assert.Equal(t, raw, string(out))

	again, err := Extract(string(out))
	require.NoError(t, err)
	assert.Equal(t, out, again)
}

func TestExtractRepairs(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{
			name: "surrounding prose",
			raw:  "Here is the analysis:\n{\"score\": 70}\nHope this helps.",
			want: `{"score": 70}`,
		},
		{
			name: "closed reasoning block",
			raw:  "<think>maybe {\"score\": 1}</think>\n{\"score\": 80}",
			want: `{"score": 80}`,
		},
		{
			name: "unclosed reasoning block",
			raw:  "<think>Reasoning about {scope}\n{\"score\": 55, \"summary\": \"ok\"}",
			want: `{"score": 55, "summary": "ok"}`,
		},
		{
			name: "markdown fence",
			raw:  "```json\n{\"score\": 60}\n```",
			want: `{"score": 60}`,
		},
		{
			name: "placeholders",
			raw:  `{"critical_gaps": ["a", "...", ...], "strengths": [...]}`,
			want: `{"critical_gaps": ["a", ""], "strengths": []}`,
		},
		{
			name: "trailing commas",
			raw:  `{"a": [1, 2,], "b": 3,}`,
			want: `{"a": [1, 2], "b": 3}`,
		},
		{
			name: "truncated string",
			raw:  `{"score": 65, "findings": {"a": {"status": "NOT_MET", "gap": "Missing det`,
			want: `{"score": 65, "findings": {"a": {"status": "NOT_MET", "gap": "Missing det"}}}`,
		},
		{
			name: "truncated after colon",
			raw:  `{"score": 65, "summary": `,
			want: `{"score": 65, "summary": null}`,
		},
		{
			name: "dangling key",
			raw:  `{"a": 1, "b"`,
			want: `{"a": 1, "b": null}`,
		},
		{
			name: "missing comma between members",
			raw:  "{\"a\": 1\n\"b\": [\"x\" \"y\"]}",
			want: `{"a": 1, "b": ["x", "y"]}`,
		},
		{
			name: "bare words",
			raw:  `{"status": NOT_MET, "ok": True, "gap": None}`,
			want: `{"status": "NOT_MET", "ok": true, "gap": null}`,
		},
		{
			name: "mismatched closer",
			raw:  `{"a": [1, 2}`,
			want: `{"a": [1, 2]}`,
		},
		{
			name: "stray closers",
			raw:  `{"a": [1]]], "b": 2}`,
			want: `{"a": [1], "b": 2}`,
		},
		{
			name: "raw newline in string",
			raw:  "{\"a\": \"line1\nline2\"}",
			want: `{"a": "line1\nline2"}`,
		},
		{
			name: "well formed candidate preferred",
			raw:  `Set {x} then {"score": 10}`,
			want: `{"score": 10}`,
		},
		{
			name: "placeholder member value",
			raw:  `{"overall_score": 70, "compliance_summary": ..., "strengths": "none"}`,
			want: `{"overall_score": 70, "compliance_summary": null, "strengths": "none"}`,
		},
		{
			name: "placeholder before closing brace",
			raw:  `{"finding": {"status": "NOT_MET", "evidence_found": ...}, "overall_score": 72}`,
			want: `{"finding": {"status": "NOT_MET", "evidence_found": null}, "overall_score": 72}`,
		},
		{
			name: "placeholder value without comma",
			raw:  "{\"summary\": …\n\"overall_score\": 65}",
			want: `{"summary": null, "overall_score": 65}`,
		},
		{
			name: "empty member value",
			raw:  `{"summary": , "overall_score": 65}`,
			want: `{"summary": null, "overall_score": 65}`,
		},
		{
			name: "member without value",
			raw:  `{"summary", "overall_score": 65}`,
			want: `{"summary": null, "overall_score": 65}`,
		},
		{
			name: "prose braces ahead of damaged payload",
			raw:  "Scores use the {framework} rubric.\n{\"overall_score\": 72, \"critical_gaps\": [\"No DPIA\",]",
			want: `{"overall_score": 72, "critical_gaps": ["No DPIA"]}`,
		},
		{
			name: "largest repair wins over earlier closed object",
			raw:  "See {\"note\": \"x\",} below {\"overall_score\": 50, \"strengths\": [\"a\" \"b\"], \"priority_actions\": [\"c\"",
			want: `{"overall_score": 50, "strengths": ["a", "b"], "priority_actions": ["c"]}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := Extract(tt.raw)
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, string(out))

			again, err := Extract(string(out))
			require.NoError(t, err)
			assert.Equal(t, string(out), string(again))
		})
	}
}

func TestExtractErrors(t *testing.T) {
	_, err := Extract("I could not analyse this document.")
	assert.True(t, errors.Is(err, ErrNoPayload))

	_, err = Extract("{[}")
	assert.True(t, errors.Is(err, ErrUnrepairable))

	_, err = Extract("Scores use the {framework} rubric and a {scale")
	assert.True(t, errors.Is(err, ErrUnrepairable))
}

func TestUnmarshal(t *testing.T) {
	var got struct {
		Score   int      `json:"overall_score"`
		Actions []string `json:"priority_actions"`
	}
	raw := "```json\n{\"overall_score\": 42, \"priority_actions\": [\"Publish a DPIA\", ...]\n```"

	require.NoError(t, Unmarshal(raw, &got))
	assert.Equal(t, 42, got.Score)
	assert.Equal(t, []string{"Publish a DPIA"}, got.Actions)
}
