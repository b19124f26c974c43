// Package glob compiles the restricted glob grammar used by ccrelay's
// routing rules: literal characters plus a single wildcard, "*", meaning
// "any characters, including none". There is no "?", no character classes,
// and no escaping — matching spec.md §4.1 exactly.
//
// Compilation is pure and cheap to memoize: callers that evaluate the same
// pattern repeatedly (the route selector, one pattern per rule) should
// compile once at config-load time and reuse the Matcher.
package glob
