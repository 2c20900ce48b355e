// Package diagnostic provides structured schema-definition errors and
// warnings for the CSV codec compiler.
//
// Key capabilities:
//   - Per-type schema violation reports (not a struct, anonymous type, ...)
//   - Field-level key conflicts (mixed keys, duplicate keys)
//   - Batch semantics: a failed type never stops its siblings
package diagnostic
