// Package artifact defines the record shapes of the OCP test output stream and
// the serializer that turns them into JSON lines.
//
// Every record type carries a static descriptor table mapping its Go fields
// to wire names. The serializer walks those tables; it never inspects struct
// tags or uses reflection. Union sites (the "impl" of a root, run or step
// artifact) are sealed interfaces whose variants declare their own wire tag,
// so the tag becomes the key at the parent level:
//
//	{"testStepArtifact": {"measurement": {...}, "testStepId": "0"}, ...}
//
// Key design constraints:
//   - Optional fields are elided when unset, never emitted as null
//   - Lists are always emitted, empty when nil
//   - Enums are typed integers starting at 1; zero means unset
//   - Only this package implements Record (sealed)
package artifact
