package schemas

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNames(t *testing.T) {
	assert.Equal(t, []string{
		ExtractRequest,
		OptimizeRequest,
		OptimizeResult,
		ScoreBreakdown,
		ScoreRequest,
		SuggestRequest,
	}, Names())
}

func TestEverySchemaCompiles(t *testing.T) {
	for _, name := range Names() {
		t.Run(name, func(t *testing.T) {
			raw, err := Raw(name)
			require.NoError(t, err)
			var v map[string]any
			require.NoError(t, json.Unmarshal(raw, &v))

			_, err = schema(name)
			require.NoError(t, err)
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		schema  string
		doc     string
		wantErr bool
		field   string
	}{
		{"valid score", ScoreRequest, `{"job_description":"Go","resume_text":"x","prior_score":40}`, false, ""},
		{"null prior", ScoreRequest, `{"job_description":"Go","prior_score":null}`, false, ""},
		{"missing job", ScoreRequest, `{"resume_text":"x"}`, true, "(root)"},
		{"prior out of range", ScoreRequest, `{"job_description":"Go","prior_score":101}`, true, "prior_score"},
		{"wrong type", ExtractRequest, `{"job_description":42}`, true, "job_description"},
		{"too many extras", OptimizeRequest, `{"job_description":"Go","extra_keywords":[` + repeat(`"a"`, 51) + `]}`, true, "extra_keywords"},
		{"malformed", ExtractRequest, `{"job_description":`, true, "(root)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.schema, []byte(tt.doc))
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			var ve *ValidationError
			require.True(t, errors.As(err, &ve), "got %v", err)
			require.NotEmpty(t, ve.Errors)
			assert.Equal(t, tt.field, ve.Errors[0].Field)
			assert.False(t, ve.Retryable())
		})
	}
}

func TestValidate_UnknownSchema(t *testing.T) {
	err := Validate("nope", []byte(`{}`))
	var le *SchemaLoadError
	require.True(t, errors.As(err, &le))
	assert.Equal(t, "nope", le.Name)
}

func repeat(item string, n int) string {
	out := item
	for i := 1; i < n; i++ {
		out += "," + item
	}
	return out
}
