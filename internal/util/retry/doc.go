// Package retry repeats an operation with exponential backoff until it
// succeeds, fails fatally, runs out of attempts or the context ends.
//
// talhybrid only retries establishing connections to machines that may
// still be booting. Cloud API calls and generator runs are never retried.
package retry
