// Package batch stamps an ordered list of photos with one style.
//
// # Processor
//
// The Processor drives the per-file pipeline over a batch:
//
//  1. Load the style once; a failure aborts before any file is touched
//  2. For each path, in order, check for cancellation
//  3. Report progress and, optionally, a stamped preview
//  4. Stamp and save the file with an index-aware output path
//  5. Aggregate successes, failures and skips into a BatchResult
//
// # Basic Usage
//
//	p := batch.New(files, styles, logger,
//	    batch.WithProgress(func(current, total int, path string) {
//	        fmt.Printf("[%d/%d] %s\n", current, total, path)
//	    }),
//	)
//
//	result, err := p.Process(ctx, paths, "CANON")
//	if err != nil {
//	    log.Fatal(err) // style could not be loaded
//	}
//
// # Failures
//
// A failing item never stops the batch. It is counted in FailedCount and
// described in Errors. Items skipped because their output already exists
// count as failed and skipped, without an error message.
//
// # Cancellation
//
// Cancel, or cancelling the context, stops the batch before the next item
// starts. An item already in flight always completes.
//
// # Progress Tracking
//
// Callbacks run synchronously on the batch goroutine. For consumers that
// prefer a channel, Events runs the batch in the background and delivers
// progress, previews and messages as Event values:
//
//	type Message struct {
//	    Text  string
//	    Level Level // Info, Verbose, Warning, Error, Success
//	}
package batch
