package types

import (
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// ExtractRequest asks for the keywords of a job description.
type ExtractRequest struct {
	JobDescription string `json:"job_description" validate:"required"`
}

// ScoreRequest asks for the ATS score of a resume against a job.
type ScoreRequest struct {
	ResumeText     string   `json:"resume_text"`
	JobDescription string   `json:"job_description" validate:"required"`
	PriorScore     *float64 `json:"prior_score,omitempty" validate:"omitempty,gte=0,lte=100"`
}

// SuggestRequest asks for missing keywords and improvement suggestions.
type SuggestRequest struct {
	ResumeText     string `json:"resume_text"`
	JobDescription string `json:"job_description" validate:"required"`
}

// OptimizeRequest asks for missing keywords to be merged into the resume.
type OptimizeRequest struct {
	ResumeText     string   `json:"resume_text"`
	JobDescription string   `json:"job_description" validate:"required"`
	ExtraKeywords  []string `json:"extra_keywords,omitempty" validate:"max=50,dive,required,max=64"`
	Company        string   `json:"company,omitempty" validate:"max=100"`
	Role           string   `json:"role,omitempty" validate:"max=100"`
}

// Validate checks struct tags.
func (r *ExtractRequest) Validate() error {
	return check(r, r.JobDescription, "")
}

// Validate checks struct tags.
func (r *ScoreRequest) Validate() error {
	return check(r, r.JobDescription, r.ResumeText)
}

// Validate checks struct tags.
func (r *SuggestRequest) Validate() error {
	return check(r, r.JobDescription, r.ResumeText)
}

// Validate checks struct tags.
func (r *OptimizeRequest) Validate() error {
	return check(r, r.JobDescription, r.ResumeText)
}

func check(req any, job, resume string) error {
	if err := validate.Struct(req); err != nil {
		return FromValidator(err)
	}
	if !utf8.ValidString(job) {
		return NewValidationError("job_description", "is not valid UTF-8")
	}
	if !utf8.ValidString(resume) {
		return NewValidationError("resume_text", "is not valid UTF-8")
	}
	return nil
}
