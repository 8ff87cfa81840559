package queue

import "github.com/taskqueue-go/jobqueue/codec/validator"

// structValidator enforces the non-negativity constraints on job and
// worker options below. Fields validated through it must be exported --
// the reflection walk it performs panics on a field obtained from an
// unexported struct field.
var structValidator = validator.NewStructValidator()

// jobConstraints mirrors the validated subset of jobParams in an exported
// struct so structValidator can walk it.
type jobConstraints struct {
	Timeout    int64 `constraints:"exclusiveMin=0"`
	Attempts   int   `constraints:"exclusiveMin=0"`
	RetryDelay int64 `constraints:"exclusiveMin=0"`
}

// validateJobParams rejects a negative timeout, attempts or retry delay.
func validateJobParams(p jobParams) error {
	err := structValidator.Validate(jobConstraints{
		Timeout:    int64(p.timeout),
		Attempts:   p.attempts,
		RetryDelay: int64(p.retryDelay),
	})
	if err != nil {
		return ErrInvalidArgument
	}
	return nil
}

// workerConstraints mirrors the validated subset of WorkerOptions.
type workerConstraints struct {
	Concurrency int `constraints:"exclusiveMin=0"`
}

// validateWorkerOptions rejects a negative Concurrency. A Concurrency of 0
// is valid input -- Register defaults it to 1 -- so only negative values
// are rejected here.
func validateWorkerOptions(opts WorkerOptions) error {
	err := structValidator.Validate(workerConstraints{Concurrency: opts.Concurrency})
	if err != nil {
		return ErrInvalidArgument
	}
	return nil
}
