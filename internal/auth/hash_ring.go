package auth

import (
	"hash/fnv"
	"sort"
	"strconv"
	"sync"
)

// HashRing spreads identity-cache keys across the configured session cache
// nodes so every instance of the admin API agrees on key placement.
type HashRing struct {
	replicas int
	points   []uint32 // sorted virtual-node hashes
	owner    map[uint32]string
	nodes    map[string]struct{}
	mu       sync.RWMutex
}

func hashKey(s string) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(s))
	return h.Sum32()
}

// NewHashRing builds a ring; with no nodes a single default shard is used
// so callers never deal with an empty ring.
func NewHashRing(nodes []string, replicas int) *HashRing {
	if replicas <= 0 {
		replicas = 50
	}
	if len(nodes) == 0 {
		nodes = []string{"session-node-default"}
	}
	r := &HashRing{
		replicas: replicas,
		owner:    make(map[uint32]string),
		nodes:    make(map[string]struct{}),
	}
	r.Add(nodes...)
	return r
}

// Add registers nodes on the ring, ignoring duplicates.
func (r *HashRing) Add(nodes ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, node := range nodes {
		if _, ok := r.nodes[node]; ok {
			continue
		}
		r.nodes[node] = struct{}{}
		for i := 0; i < r.replicas; i++ {
			p := hashKey(node + "#" + strconv.Itoa(i))
			r.points = append(r.points, p)
			r.owner[p] = node
		}
	}
	sort.Slice(r.points, func(i, j int) bool { return r.points[i] < r.points[j] })
}

// Node returns the shard responsible for key.
func (r *HashRing) Node(key string) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if len(r.points) == 0 {
		return ""
	}
	h := hashKey(key)
	idx := sort.Search(len(r.points), func(i int) bool { return r.points[i] >= h })
	if idx == len(r.points) {
		idx = 0
	}
	return r.owner[r.points[idx]]
}
