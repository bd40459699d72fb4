package errors

import (
	"errors"
	"fmt"
)

// Policy decides what happens to a record when an upstream lookup fails.
type Policy int

const (
	// SkipAndContinue drops the record, counts it and keeps going. Upstream
	// failures never abort a run under this policy.
	SkipAndContinue Policy = iota
	// FailFast returns the first upstream failure to the caller.
	FailFast
)

func (p Policy) String() string {
	switch p {
	case SkipAndContinue:
		return "skip-and-continue"
	case FailFast:
		return "fail-fast"
	default:
		return fmt.Sprintf("policy(%d)", int(p))
	}
}

// Stage names the step at which a record was skipped.
type Stage string

const (
	StageFetch         Stage = "fetch"
	StageMissingISBN   Stage = "missing_isbn"
	StageEditionLookup Stage = "edition_lookup"
	StageWorkMissing   Stage = "work_missing"
	StageRatingsLookup Stage = "ratings_lookup"
	StageNoAverage     Stage = "no_average"
	StageUnknown       Stage = "unknown"
)

// SkipError records why a single record was dropped.
type SkipError struct {
	Stage Stage
	Key   string
	Err   error
}

func (e *SkipError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("skipped %s at %s", e.Key, e.Stage)
	}
	return fmt.Sprintf("skipped %s at %s: %v", e.Key, e.Stage, e.Err)
}

func (e *SkipError) Unwrap() error {
	return e.Err
}

// NewSkipError wraps err as a skip at the given stage.
func NewSkipError(stage Stage, key string, err error) *SkipError {
	return &SkipError{Stage: stage, Key: key, Err: err}
}

// AsSkipError returns the SkipError in err's chain, if any.
func AsSkipError(err error) (*SkipError, bool) {
	var skipErr *SkipError
	if errors.As(err, &skipErr) {
		return skipErr, true
	}
	return nil, false
}

// IsSkipError reports whether err is a SkipError (even when wrapped).
func IsSkipError(err error) bool {
	_, ok := AsSkipError(err)
	return ok
}
