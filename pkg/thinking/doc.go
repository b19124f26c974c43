// Package thinking implements the content-block normalization engine (C4/C5):
// the deterministic rewriting of the "thinking" content block between the two
// upstreams' shapes, plus the structural repairs upstream A requires of a
// message sequence.
//
// Content blocks are adversarial and loosely typed — a thinking block may
// carry a signature, a nested thinking sub-object, both, or neither. Rather
// than unmarshal into strict structs, this package walks generic
// map[string]interface{}/[]interface{} trees produced by encoding/json and
// rewrites them in place, falling back to "return the input unchanged" on
// any parse failure. That fallback is load-bearing: a proxy must never poison
// a response because a client sent it odd-but-tolerable JSON.
package thinking
