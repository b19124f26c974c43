// Package sigstore implements the bounded, access-order LRU used to track
// "thinking" block signatures issued by the reference upstream (upstream A).
//
// A signature in the store means: "upstream A produced this thinking block
// and will verify it on a later turn." The content-block sanitizer (pkg
// thinking) consults the store to tell A-origin thinking blocks apart from
// upstream-B-shaped ones that merely carry a signature-looking field.
//
// Store is safe for concurrent use; Add and Has both mutate access order
// (a hit promotes to most-recently-used), so there is no useful read-only
// fast path — both operations take the same mutex, held only across the
// O(1) map/list update (spec.md §9 "Signature store concurrency").
package sigstore
