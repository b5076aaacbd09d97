package esign

import "errors"

// SubmissionFailureMessage is the only failure detail exposed to callers of Submit.
const SubmissionFailureMessage = "Failed to submit for eSign"

var (
	// ErrUpstream wraps provider failures other than authorization.
	ErrUpstream = errors.New("upstream failure")

	// ErrSubmissionFailure matches every error returned by Submit.
	ErrSubmissionFailure = errors.New("submission failure")

	// ErrInvalidTags is returned for malformed or incomplete tag selectors.
	ErrInvalidTags = errors.New("invalid tags")
)

// Step names a stage of the submission workflow.
type Step string

const (
	StepPrepare Step = "prepare"
	StepCreate  Step = "create"
	StepSubmit  Step = "submit"
	StepEmbed   Step = "embed"
)

// SubmissionError reports which step of a submission failed.
// Error() always returns SubmissionFailureMessage.
type SubmissionError struct {
	Step Step
	// RequestID is set once the provider-side request exists.
	RequestID string
	Err       error
}

func (e *SubmissionError) Error() string {
	return SubmissionFailureMessage
}

func (e *SubmissionError) Unwrap() []error {
	return []error{ErrSubmissionFailure, e.Err}
}
