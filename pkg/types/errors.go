package types

import "errors"

// Domain errors for type validation
var (
	ErrEmptyName         = errors.New("name cannot be empty")
	ErrParameterMismatch = errors.New("parameter names and types differ in length")
	ErrInvalidLineRange  = errors.New("end line must be >= start line")
	ErrScoreOutOfRange   = errors.New("score must be between 1 and 5")
	ErrMissingGuidelines = errors.New("metric must define at least one guideline")
	ErrEmptyBatch        = errors.New("batch must contain at least one method")
	ErrInvalidBatchIndex = errors.New("batch index must be >= 0")
	ErrMissingSourcePath = errors.New("source unit path is required")
)
