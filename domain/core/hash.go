package core

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
)

// InputHash fingerprints the set of input files consumed by a run.
type InputHash string

func (h InputHash) String() string { return string(h) }

// ComputeInputHash hashes file contents keyed by name. The result does not
// depend on map iteration order.
func ComputeInputHash(files map[string][]byte) InputHash {
	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)

	h := sha256.New()
	for _, name := range names {
		h.Write([]byte(name))
		h.Write([]byte{0})
		sum := sha256.Sum256(files[name])
		h.Write(sum[:])
	}
	return InputHash(hex.EncodeToString(h.Sum(nil)))
}
