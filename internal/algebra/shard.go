package algebra

import (
	"hash/fnv"
	"sort"
	"sync"
)

// numShards is the fixed size of the lock array. It is independent of the
// worker count and large enough that unrelated keys rarely collide on the
// same lock.
const numShards = 1024

// shardSet partitions the key space of one generation across a fixed array
// of mutexes. A fresh set is constructed for every round; there is no
// process-wide lock state.
type shardSet struct {
	locks [numShards]sync.Mutex
}

func newShardSet() *shardSet {
	return &shardSet{}
}

// shardIndex selects the shard owning a key by a stable hash of the key
// string. FNV-1a keeps selection fast and identical across runs.
func shardIndex(key string) int {
	h := fnv.New32a()
	h.Write([]byte(key))
	return int(h.Sum32() % numShards)
}

// canonicalOrder returns the distinct shard indices of the given keys in
// ascending order. Every multi-shard acquisition goes through this single
// ordering function; no call site may lock shard j before shard i when i<j.
func canonicalOrder(keys ...string) []int {
	indices := make([]int, 0, len(keys))
	for _, key := range keys {
		indices = append(indices, shardIndex(key))
	}
	sort.Ints(indices)
	// Dedupe: two keys on the same shard need the lock once.
	out := indices[:0]
	for i, idx := range indices {
		if i == 0 || idx != indices[i-1] {
			out = append(out, idx)
		}
	}
	return out
}

// acquire locks the shards owning the given keys in canonical order and
// returns a release function that unlocks them in reverse.
func (s *shardSet) acquire(keys ...string) (release func()) {
	indices := canonicalOrder(keys...)
	for _, idx := range indices {
		s.locks[idx].Lock()
	}
	return func() {
		for i := len(indices) - 1; i >= 0; i-- {
			s.locks[indices[i]].Unlock()
		}
	}
}
