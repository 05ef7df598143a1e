// Package evaluate checks a built association graph against a ruleset.
//
// Run performs the checks in a fixed priority order and collects findings
// into a Report instead of printing them; rendering is the caller's job.
// Most checks are independent, but a forbidden-extension multi-inheritance
// leaves the graph without a defensible resolution, so it stops evaluation
// outright with a malformed-input verdict.
package evaluate
