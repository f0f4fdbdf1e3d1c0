// Package rules implements the target status state machine. An ordered rule
// list is evaluated against freshly recomputed metrics; the first matching
// rule applies and evaluation stops, so one invocation causes at most one
// transition and the rules cannot oscillate within a single evaluation.
package rules
