// Package rules defines what the naming convention permits: the registry of
// recognized metadata extensions with their inheritance behaviours, the
// Ruleset type capturing one named variant of the convention, the catalog of
// built-in rulesets, and the mapping from a dataset's declared schema
// version to the ruleset that governs it.
package rules
