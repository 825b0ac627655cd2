// Package ids generates the synthetic names and debug-correlation
// identifiers the pipeline needs: deterministic mangled names for
// monomorphized instantiations, and random debug ids for correlating
// invariant violations across log lines.
//
// The two are deliberately different: mangled names must be
// reproducible across repeated runs on identical input, so they are
// derived from a deterministic digest, never from
// github.com/google/uuid's randomness. uuid is reserved for
// debug-only correlation ids that never appear in program-visible
// output.
package ids

import (
	"fmt"
	"hash/fnv"

	"github.com/google/uuid"
)

// Mangle derives a stable suffix from key (typically a
// types.TypeSignature.Key) and combines it with base to produce a
// monomorphized instantiation's emitted name.
func Mangle(base string, key string) string {
	h := fnv.New64a()
	_, _ = h.Write([]byte(key))
	return fmt.Sprintf("%s$%x", base, h.Sum64())
}

// DebugCorrelationID returns a fresh random id for tagging a single
// invariant-violation report; it is never derived from,
// or influences, compiled output.
func DebugCorrelationID() string {
	return uuid.NewString()
}
