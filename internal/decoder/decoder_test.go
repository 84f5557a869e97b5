package decoder

import (
	"testing"

	"resumeforge/internal/errors"
	"resumeforge/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeNoPayloadKeepsPrevious(t *testing.T) {
	previous := &types.CandidateResume{FullName: "Ada Lovelace"}

	for _, raw := range []string{"", "I cannot help with that", "only a closing }", "{ never closed"} {
		t.Run(raw, func(t *testing.T) {
			got, issues, err := New(nil).Decode(raw, previous)
			require.Error(t, err)
			assert.Same(t, previous, got)
			assert.Nil(t, issues)
			assert.ErrorIs(t, err, errors.ErrNoPayload)
			assert.Equal(t, errors.ErrCodeNoPayload, errors.Code(err))
			assert.Equal(t, "no JSON payload found", err.Error())
		})
	}
}

func TestDecodeMalformed(t *testing.T) {
	raw := `Here you go: {"full_name": "Ada", "skills": [}`
	_, _, err := New(nil).Decode(raw, nil)

	var decErr *DecodeError
	require.ErrorAs(t, err, &decErr)
	assert.Equal(t, Malformed, decErr.Kind)
	assert.Equal(t, raw, decErr.Raw)
	assert.ErrorIs(t, err, errors.ErrMalformedJSON)
	assert.Equal(t, errors.ErrCodeMalformedJSON, errors.Code(err))
}

func TestDecodeNoisyReply(t *testing.T) {
	raw := "Sure! Here is the resume:\n" + `{
  "full_name": "Ada Lovelace",
  "phone_number": "+1 (555) 010-9999",
  "location": "London",
  "socials": {"github": "https://github.com/ada"},
  "profile": "Analyst",
  "skills": ["Go", "SQL"],
  "education": [{"degree/certification": "BSc", "details": null, "year": 1835, "honours": true}],
  "experience": [{"company": "Engines Ltd", "role and details": "Programmer"}],
  "projects": {"Notes": "Bernoulli numbers"},
  "hobbies": null
}
Let me know if you need anything else.`

	got, issues, err := New(BraceSpan{}).Decode(raw, nil)
	require.NoError(t, err)

	assert.Equal(t, "Ada Lovelace", got.FullName)
	require.NotNil(t, got.PhoneNumber)
	assert.Equal(t, int64(15550109999), *got.PhoneNumber)
	assert.Equal(t, map[string]string{"github": "https://github.com/ada"}, got.Socials)
	assert.Equal(t, []map[string]string{{"degree/certification": "BSc", "details": "", "year": "1835", "honours": "true"}}, got.Education)
	assert.Equal(t, []map[string]string{{"Notes": "Bernoulli numbers"}}, got.Projects)
	assert.NotNil(t, got.Hobbies)
	assert.Empty(t, got.Hobbies)
	assert.NotNil(t, got.Languages)

	assert.Contains(t, issues, "field defaulted: languages")
	assert.NotContains(t, issues, "field defaulted: hobbies")
}

func TestDecodeEmptyObjectDefaultsEverything(t *testing.T) {
	got, issues, err := New(nil).Decode("{}", nil)
	require.NoError(t, err)

	assert.Len(t, issues, len(resumeFields))
	assert.Nil(t, got.PhoneNumber)
	assert.NotNil(t, got.Skills)
	assert.NotNil(t, got.Education)
	assert.NotNil(t, got.Experience)
	assert.NotNil(t, got.Projects)
	assert.NotNil(t, got.Socials)
}

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  *int64
	}{
		{name: "formatted string", input: `"555-0100"`, want: ptr(5550100)},
		{name: "international format", input: `"+1 (555) 123-4567"`, want: ptr(15551234567)},
		{name: "number", input: `4155550100`, want: ptr(4155550100)},
		{name: "no digits", input: `"n/a"`, want: nil},
		{name: "null", input: `null`, want: nil},
		{name: "empty string", input: `""`, want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _, err := New(nil).Decode(`{"phone_number": `+tt.input+`}`, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.PhoneNumber)
		})
	}
}

func TestDecodeSchemaIssuesAreNonFatal(t *testing.T) {
	got, issues, err := New(nil).Decode(`{"full_name": "Ada", "skills": ["Go", 42], "socials": "none"}`, nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"Go", "42"}, got.Skills)
	assert.Empty(t, got.Socials)

	var schemaFindings int
	for _, issue := range issues {
		if len(issue) > 7 && issue[:7] == "schema:" {
			schemaFindings++
		}
	}
	assert.Equal(t, 2, schemaFindings)
}

func TestFencedExtractor(t *testing.T) {
	raw := "Notes {draft}\n```json\n{\"job_title\": \"SRE\"}\n```\ntrailing }"

	_, _, err := New(BraceSpan{}).DecodeJob(raw)
	assert.Error(t, err, "brace span should swallow the prose braces")

	job, _, err := New(FencedBlock{}).DecodeJob(raw)
	require.NoError(t, err)
	assert.Equal(t, "SRE", job.JobTitle)
}

func TestExtractorByName(t *testing.T) {
	e, err := ExtractorByName("fenced")
	require.NoError(t, err)
	assert.IsType(t, FencedBlock{}, e)

	e, err = ExtractorByName("")
	require.NoError(t, err)
	assert.IsType(t, BraceSpan{}, e)

	_, err = ExtractorByName("regex")
	assert.Error(t, err)
}

func TestDecodeJob(t *testing.T) {
	job, issues, err := New(nil).DecodeJob(`{"job_poster": "Acme", "required_skills": ["Go", "Kubernetes"], "tasks": []}`)
	require.NoError(t, err)

	assert.Equal(t, "Acme", job.JobPoster)
	assert.Equal(t, []string{"Go", "Kubernetes"}, job.RequiredSkills)
	assert.True(t, job.IsActionable())
	assert.ElementsMatch(t, []string{"field defaulted: job_title", "field defaulted: profile"}, issues)
}

func ptr(n int64) *int64 { return &n }
