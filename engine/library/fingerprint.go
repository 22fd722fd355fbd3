package library

import (
	"fmt"
	"hash/fnv"
	"math"

	"github.com/voltforge/voltforge/engine/normalize"
)

// Dims is the fingerprint vector size. Small enough to stay cheap, large
// enough that distinct topologies rarely collide.
const Dims = 128

// Fingerprint derives a structural vector from a canonical model. Block
// types and per-component wire degrees are hashed into fixed buckets, so
// equivalent topologies map to the same vector regardless of naming. The
// vector is L2-normalized for cosine search.
func Fingerprint(m *normalize.Model) []float32 {
	vec := make([]float32, Dims)

	degree := make(map[string]int, len(m.Components))
	owner := make(map[string]string)
	kind := make(map[string]string, len(m.Components))
	for _, c := range m.Components {
		kind[c.ID] = c.Type
		for _, p := range c.Ports {
			owner[p.ID] = c.ID
		}
	}
	for _, w := range m.Connections {
		degree[owner[w.From]] += w.Count
		degree[owner[w.To]] += w.Count
	}

	for _, c := range m.Components {
		vec[bucket("type:"+c.Type)]++
		vec[bucket(fmt.Sprintf("deg:%s:%d", c.Type, degree[c.ID]))]++
	}
	for _, w := range m.Connections {
		a, b := kind[owner[w.From]], kind[owner[w.To]]
		if b < a {
			a, b = b, a
		}
		vec[bucket("wire:"+a+":"+b)] += float32(w.Count)
	}

	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if norm > 0 {
		inv := float32(1 / math.Sqrt(norm))
		for i := range vec {
			vec[i] *= inv
		}
	}
	return vec
}

func bucket(s string) int {
	h := fnv.New32a()
	h.Write([]byte(s))
	return int(h.Sum32() % Dims)
}
