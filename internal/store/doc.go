// Package store archives emitted artifact streams in SQLite.
//
// Each stream is one run's JSON lines. Lines are stored verbatim together
// with the envelope fields needed to query them without re-parsing:
//   - seq: the envelope sequenceNumber, unique per stream
//   - kind: the artifact variant, e.g. "measurement" or "testRunEnd"
//   - step_id: the testStepId of step artifacts, "" otherwise
//
// Reads always ORDER BY seq, so an archived stream reads back in emission
// order regardless of insert order.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Artifacts must belong to a known stream
package store
