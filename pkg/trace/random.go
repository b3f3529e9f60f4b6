package trace

import (
	"fmt"
	"math/rand"
)

// Random builds a well-formed trace of about ops operations over ids block
// ids with sizes up to maxSize. Every id is allocated before it is resized
// or freed, and every block is freed by the end, so the trace can be
// replayed and parsed back. Resizes make up roughly a fifth of the traffic.
func Random(rng *rand.Rand, ids, ops, maxSize int) *Trace {
	if ids < 1 {
		ids = 1
	}
	if maxSize < 1 {
		maxSize = 1
	}
	t := &Trace{
		Name:   fmt.Sprintf("random-%d-%d", ids, ops),
		NumIDs: ids,
		Weight: 1,
	}

	var live, idle []int
	for id := ids - 1; id >= 0; id-- {
		idle = append(idle, id)
	}
	take := func(s *[]int, i int) int {
		v := (*s)[i]
		(*s)[i] = (*s)[len(*s)-1]
		*s = (*s)[:len(*s)-1]
		return v
	}
	size := func() int { return 1 + rng.Intn(maxSize) }

	for len(t.Ops) < ops {
		r := rng.Intn(10)
		switch {
		case len(idle) > 0 && (r < 5 || len(live) == 0):
			id := take(&idle, len(idle)-1)
			t.Ops = append(t.Ops, Op{Kind: OpAlloc, ID: id, Size: size()})
			live = append(live, id)
		case len(live) > 0 && r < 8:
			id := take(&live, rng.Intn(len(live)))
			t.Ops = append(t.Ops, Op{Kind: OpFree, ID: id})
			idle = append(idle, id)
		case len(live) > 0:
			id := live[rng.Intn(len(live))]
			t.Ops = append(t.Ops, Op{Kind: OpResize, ID: id, Size: size()})
		}
	}
	for _, id := range live {
		t.Ops = append(t.Ops, Op{Kind: OpFree, ID: id})
	}

	var peak, cur int
	sizes := make(map[int]int, ids)
	for _, op := range t.Ops {
		switch op.Kind {
		case OpAlloc, OpResize:
			cur += op.Size - sizes[op.ID]
			sizes[op.ID] = op.Size
		case OpFree:
			cur -= sizes[op.ID]
			delete(sizes, op.ID)
		}
		peak = max(peak, cur)
	}
	t.SuggestedHeapSize = peak
	return t
}
