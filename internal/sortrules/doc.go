// Package sortrules carries the destination-mapping policy of an organizing
// run as an explicit value: date-based folder layout, rename pattern, and
// folder tagging. Reconstruction-mode verification replays these rules to
// predict where a source file should have landed, and the rule signature
// recorded in every run detects policy drift between runs.
package sortrules
