// Package jobqueue is the root of a durable, priority-ordered, at-least-once
// job queue library for Go applications.
//
// The queue itself lives in the queue sub-package; this root package only
// carries module-level documentation. jobqueue provides a small set of
// supporting sub-packages that cover the needs of an embeddable queue:
// logging, configuration, codec, collections, error handling, and more.
//
// Each sub-package is independently importable:
//
//	import "github.com/taskqueue-go/jobqueue/queue"    // Job queue, adapters, workers
//	import "github.com/taskqueue-go/jobqueue/l3"       // Logging
//	import "github.com/taskqueue-go/jobqueue/codec"    // Encoding/decoding (JSON, XML, YAML)
//	import "github.com/taskqueue-go/jobqueue/config"   // Application configuration
//
// For a complete list of packages and documentation, see:
// https://pkg.go.dev/github.com/taskqueue-go/jobqueue
package jobqueue
