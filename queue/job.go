package queue

import (
	"encoding/json"
	"time"
)

// defaultTimeout is substituted for a job's timeout when CreateJob is
// called without an explicit WithTimeout option.
const defaultTimeout = 25000 * time.Millisecond

// defaultAttempts is substituted for a job's attempts when CreateJob is
// called without an explicit WithAttempts option.
const defaultAttempts = 1

// Job is the sole persistent entity the queue manages. Payload and Data are
// both stored as JSON strings; Payload is opaque to the queue and decoded
// only by the handler, Data is owned by the queue and holds attempt
// bookkeeping.
type Job struct {
	ID            string     `json:"id" xml:"id" yaml:"id"`
	Name          string     `json:"name" xml:"name" yaml:"name"`
	Payload       string     `json:"payload" xml:"payload" yaml:"payload"`
	Data          string     `json:"data" xml:"data" yaml:"data"`
	Priority      int        `json:"priority" xml:"priority" yaml:"priority"`
	Active        bool       `json:"active" xml:"active" yaml:"active"`
	Timeout       int        `json:"timeout" xml:"timeout" yaml:"timeout"`
	Created       time.Time  `json:"created" xml:"created" yaml:"created"`
	Failed        *time.Time `json:"failed,omitempty" xml:"failed,omitempty" yaml:"failed,omitempty"`
	NextValidTime time.Time  `json:"nextValidTime" xml:"nextValidTime" yaml:"nextValidTime"`
	RetryDelay    int        `json:"retryDelay" xml:"retryDelay" yaml:"retryDelay"`
}

// jobData is the decoded form of Job.Data.
type jobData struct {
	Attempts       int      `json:"attempts"`
	FailedAttempts int      `json:"failedAttempts,omitempty"`
	Errors         []string `json:"errors,omitempty"`
}

func decodeJobData(raw string) (jobData, error) {
	var d jobData
	if raw == "" {
		return d, nil
	}
	if err := json.Unmarshal([]byte(raw), &d); err != nil {
		return jobData{}, err
	}
	return d, nil
}

func (d jobData) encode() (string, error) {
	b, err := json.Marshal(d)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// jobParams collects the result of applying JobOption values. timeoutSet
// and attemptsSet distinguish "explicitly set to the zero value" from
// "left at the default" — needed because a job may legitimately be created
// with timeout=0 (no timeout) and that must not be overwritten by
// defaultTimeout.
type jobParams struct {
	priority    int
	timeout     time.Duration
	timeoutSet  bool
	attempts    int
	attemptsSet bool
	retryDelay  time.Duration
}

// JobOption customizes a job at creation time. See WithPriority,
// WithTimeout, WithAttempts and WithRetryDelay.
type JobOption func(*jobParams)

// WithPriority sets the job's priority. Higher values are selected first.
// Default 0.
func WithPriority(priority int) JobOption {
	return func(p *jobParams) { p.priority = priority }
}

// WithTimeout sets the job's handler timeout. A value of 0 disables the
// timeout entirely (the handler runs with no time bound) and is preserved
// as-is rather than replaced by the default. Default 25s.
func WithTimeout(timeout time.Duration) JobOption {
	return func(p *jobParams) {
		p.timeout = timeout
		p.timeoutSet = true
	}
}

// WithAttempts sets the maximum number of attempts before a job is marked
// terminally failed. Default 1.
func WithAttempts(attempts int) JobOption {
	return func(p *jobParams) {
		p.attempts = attempts
		p.attemptsSet = true
	}
}

// WithRetryDelay sets the delay added to nextValidTime after a failed
// attempt. Default 0 (immediately eligible again).
func WithRetryDelay(delay time.Duration) JobOption {
	return func(p *jobParams) { p.retryDelay = delay }
}

func newJobParams(opts []JobOption) jobParams {
	p := jobParams{}
	for _, opt := range opts {
		opt(&p)
	}
	if !p.timeoutSet {
		p.timeout = defaultTimeout
	}
	if !p.attemptsSet {
		p.attempts = defaultAttempts
	}
	return p
}
