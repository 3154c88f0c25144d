// Package clip turns one cut window into artifacts: the reference clip and
// its "latest" copy, a microphone take of the same length, a leading-edge PCM
// probe, and a pitch comparison of take against reference.
//
// Every sub-task runs on its own goroutine and fails independently. Results
// converge on a per-cycle Snapshot that is published to the presentation
// mailbox and upserted into the take history each time a sub-task adds to it.
package clip
