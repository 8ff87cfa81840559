package queue

import (
	"time"

	"github.com/taskqueue-go/jobqueue/config"
)

// Environment variable names consulted by NewFileAdapterFromEnv when no
// explicit path is supplied.
const (
	envStorePath = "JOBQUEUE_STORE_PATH"
)

// defaultStorePath is used when neither an explicit path nor
// JOBQUEUE_STORE_PATH is set.
const defaultStorePath = "jobqueue.json"

// NewFileAdapterFromEnv resolves a store path -- path if non-empty,
// otherwise the JOBQUEUE_STORE_PATH environment variable, otherwise
// defaultStorePath -- and returns a FileAdapter for it.
func NewFileAdapterFromEnv(path string) (*FileAdapter, error) {
	if path == "" {
		path = config.GetEnvAsString(envStorePath, defaultStorePath)
	}
	return NewFileAdapter(path)
}

// DefaultsFromConfig applies WithTimeout, WithAttempts and WithRetryDelay
// defaults read from a config.Configuration, falling back to this
// package's own defaults for any key that is absent. Recognized keys:
// "queue.defaultTimeoutMs",
// "queue.defaultAttempts", "queue.defaultRetryDelayMs". It returns a
// JobOption slice suitable for splicing into CreateJob's options ahead of
// any call-site overrides (later options in the slice win).
func DefaultsFromConfig(cfg config.Configuration) []JobOption {
	timeoutMs, _ := cfg.GetAsInt("queue.defaultTimeoutMs", int(defaultTimeout.Milliseconds()))
	attempts, _ := cfg.GetAsInt("queue.defaultAttempts", defaultAttempts)
	retryDelayMs, _ := cfg.GetAsInt("queue.defaultRetryDelayMs", 0)

	return []JobOption{
		WithTimeout(time.Duration(timeoutMs) * time.Millisecond),
		WithAttempts(attempts),
		WithRetryDelay(time.Duration(retryDelayMs) * time.Millisecond),
	}
}
