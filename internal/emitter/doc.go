// Package emitter stamps artifacts with sequence numbers and timestamps and
// hands the encoded lines to a Writer.
//
// One Emitter serves one test run. It writes the schema version preamble
// (sequence number 0) before the first artifact, then numbers every
// artifact 1, 2, 3, ... in the order lines reach the Writer.
//
// Thread-safety: Emit is safe for concurrent use. Serialization runs outside
// the lock; numbering, timestamping and writing happen under it, so textual
// order always equals sequence order.
package emitter
