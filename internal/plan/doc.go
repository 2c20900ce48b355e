// Package plan synthesizes the serialization and deserialization
// procedures for one compiled schema: per-field read/write function
// pointers chosen once by primitive kind, header emission, the
// positional and named row state machines, and column-map
// construction. Compiled plans are read-only and safe to run
// concurrently over independent reader/writer instances.
package plan
