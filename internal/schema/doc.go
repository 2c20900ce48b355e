// Package schema builds the normalized, immutable description of a
// record type's fields that drives codec compilation: field keys,
// precomputed header-cell bytes, primitive kinds, positional indexes,
// and the column-resolution strategy.
package schema
