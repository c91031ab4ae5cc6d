package syncfolder

import (
	"sort"

	mapset "github.com/deckarep/golang-set/v2"
)

// Snapshot maps a content checksum to the relative path holding that
// content, for one side of a sync at one instant.
type Snapshot map[string]string

// Paths returns the set of relative paths present in the snapshot
func (s Snapshot) Paths() mapset.Set[string] {
	paths := mapset.NewThreadUnsafeSetWithSize[string](len(s))
	for _, p := range s {
		paths.Add(p)
	}
	return paths
}

// Checksums returns the snapshot keys ordered by the path they map to, which
// gives a stable iteration order for reconciliation.
func (s Snapshot) Checksums() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if s[keys[i]] != s[keys[j]] {
			return s[keys[i]] < s[keys[j]]
		}
		return keys[i] < keys[j]
	})
	return keys
}

// Equal reports whether both snapshots hold the same checksum to path mapping
func (s Snapshot) Equal(other Snapshot) bool {
	if len(s) != len(other) {
		return false
	}
	for k, v := range s {
		if ov, ok := other[k]; !ok || ov != v {
			return false
		}
	}
	return true
}
