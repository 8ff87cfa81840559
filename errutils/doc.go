package errutils

// Package errutils provides a set of utilities for working with errors in Go.

// Example:
//
// The following example demonstrates how to use `MultiError` to collect several errors:
//
//     package main
//
//     import (
//         "fmt"
//         "github.com/taskqueue-go/jobqueue/errutils"
//     )
//
//     func main() {
//         errs := errutils.NewMultiErr(nil)
//         errs.Add(someFunction())
//         errs.Add(otherFunction())
//         if errs.HasErrors() {
//             fmt.Println(errs)
//         }
//     }
//
// In the above example, `Add` ignores nil errors, so only the failures of `someFunction()` and `otherFunction()`
// are kept. Printing the `MultiError` prints each collected error message on its own line.
