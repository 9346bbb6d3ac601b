package engine

import (
	"hash/fnv"
	"math/rand"
	"time"
)

// Source produces uniform samples in [0, 1).
//
// *rand.Rand satisfies Source. Sources are not required to be safe for
// concurrent use; give each concurrent run its own.
type Source interface {
	Float64() float64
}

// NewSeededSource returns a reproducible Source.
func NewSeededSource(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

// DeterministicSeed derives a stable seed from a root seed and a label, so
// independent subsystems (one per world line, say) get independent streams.
func DeterministicSeed(rootSeed, label string) int64 {
	hasher := fnv.New64a()
	hasher.Write([]byte(rootSeed))
	hasher.Write([]byte{0})
	hasher.Write([]byte(label))
	sum := hasher.Sum64()
	if sum == 0 {
		sum = 1
	}
	return int64(sum)
}

// NewDeterministicSource is NewSeededSource(DeterministicSeed(rootSeed, label)).
func NewDeterministicSource(rootSeed, label string) *rand.Rand {
	return NewSeededSource(DeterministicSeed(rootSeed, label))
}

// isNilSource reports whether src is nil or holds a nil *rand.Rand.
func isNilSource(src Source) bool {
	switch s := src.(type) {
	case nil:
		return true
	case *rand.Rand:
		return s == nil
	}
	return false
}

// newDefaultSource returns a non-deterministic Source for callers that do
// not inject one.
func newDefaultSource() Source {
	return rand.New(rand.NewSource(time.Now().UnixNano()))
}
