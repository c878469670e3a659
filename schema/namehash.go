package schema

import "github.com/spaolacci/murmur3"

// nameHash returns a fast, uniformly-distributed hash of a field name,
// used by SchemaBuilder to reject duplicate names in O(1) amortized
// rather than scanning the existing entries. Modeled on
// github.com/grailbio/bigslice/frame's use of murmur3 for hashing
// column values (frame/ops.go, frame/ops_builtin.go): bridge reaches for
// the same library for the same reason bigslice does, a fast
// non-cryptographic hash over arbitrary byte strings.
func nameHash(name string) uint32 {
	return murmur3.Sum32([]byte(name))
}
