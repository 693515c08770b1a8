// Package tokenstore persists resumption tokens in a small SQLite database.
//
// Each named token tracks three cursor variants:
//   - base: the token supplied when the entry was first added
//   - last: the cursor returned by the most recent completed page fetch
//   - latest: the cursor observed at the point where the server reported the
//     fewest remaining items seen so far (the most advanced safe resume point)
//
// The least_remaining watermark backing "latest" starts at +Inf and only
// ever decreases, so "latest" moves strictly forward even when an export is
// restarted from an older cursor.
//
// The store expects a single sequential writer. Concurrent multi-process
// access against the same database is not supported.
package tokenstore
