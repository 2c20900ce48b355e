// Package codec is the registration surface of the CSV codec
// compiler. Compile reflects over a record struct once, builds the
// type-specialized write and read procedures, and returns a Codec that
// may be registered in the process-wide type-keyed registry. Compiled
// codecs are stateless with respect to the schema and safe for
// concurrent use over independent reader/writer instances.
package codec
