// Package schema validates OCP output streams against a CUE definition of
// the wire format.
//
// A line is checked in two passes. The first decodes it and requires exactly
// one variant key at the root and inside run and step artifacts. The second
// unifies it with the closed #Envelope definition, which rejects unknown
// keys, wrong types and bad enum names. Streams are additionally checked for
// the schemaVersion preamble and gap-free sequence numbers.
package schema
