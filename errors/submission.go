package errors

import "fmt"

// SubmissionError is returned when a batch POST did not produce a usable response.
// AcceptanceUnknown means the request may have reached the validator; the batch
// could still commit and should be tracked rather than resubmitted.
type SubmissionError struct {
	BatchID           string
	StatusCode        int
	AcceptanceUnknown bool
	Err               error
}

func (e *SubmissionError) Error() string {
	if e.AcceptanceUnknown {
		return fmt.Sprintf("submit batch %s: acceptance unknown: %v", e.BatchID, e.Err)
	}
	return fmt.Sprintf("submit batch %s rejected (http %d): %v", e.BatchID, e.StatusCode, e.Err)
}

func (e *SubmissionError) Unwrap() error {
	return e.Err
}

func (e *SubmissionError) Is(target error) bool {
	if e.AcceptanceUnknown {
		return target == ErrSubmissionTransport
	}
	return target == ErrSubmissionRejected
}
