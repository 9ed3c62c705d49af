// Package workers runs synchronous units of work on background goroutines with a
// bounded level of concurrency. It backs the asynchronous Sign and Decode variants.
//
// # Semantics
//
//   - A unit of work is atomic: it is never interrupted once started.
//   - Cancelling the caller's context returns ctx.Err() immediately; a started unit
//     keeps running to completion and its result is discarded.
//   - Concurrency is bounded by a weighted semaphore; waiting for a slot honors ctx.
package workers
