package world

import "container/heap"

// CostFunc returns the cost of stepping from one tile onto an adjacent one,
// or false when the step is not allowed.
type CostFunc func(from, to *Tile) (int, bool)

// FindPath returns the cheapest sequence of coordinates leading from `from`
// to `to`, excluding the start. The boolean is false when no path exists.
func (m *Map) FindPath(from, to HexCoord, cost CostFunc) ([]HexCoord, bool) {
	if from == to {
		return nil, true
	}
	if m.Get(from) == nil || m.Get(to) == nil {
		return nil, false
	}

	open := &nodeQueue{}
	heap.Init(open)
	seq := 0
	push := func(c HexCoord, g int) {
		heap.Push(open, &node{coord: c, g: g, f: g + Distance(c, to), seq: seq})
		seq++
	}

	best := map[HexCoord]int{from: 0}
	prev := make(map[HexCoord]HexCoord)
	push(from, 0)

	for open.Len() > 0 {
		cur := heap.Pop(open).(*node)
		if cur.coord == to {
			return unwind(prev, from, to), true
		}
		if g, ok := best[cur.coord]; ok && cur.g > g {
			continue
		}
		here := m.Get(cur.coord)
		for d := Direction(0); d < 6; d++ {
			next := m.Neighbor(cur.coord, d)
			if next == nil {
				continue
			}
			c, ok := cost(here, next)
			if !ok {
				continue
			}
			g := cur.g + c
			if old, seen := best[next.Coord]; seen && old <= g {
				continue
			}
			best[next.Coord] = g
			prev[next.Coord] = cur.coord
			push(next.Coord, g)
		}
	}
	return nil, false
}

func unwind(prev map[HexCoord]HexCoord, from, to HexCoord) []HexCoord {
	var out []HexCoord
	for c := to; c != from; c = prev[c] {
		out = append(out, c)
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}

type node struct {
	coord HexCoord
	g, f  int
	seq   int
}

type nodeQueue []*node

func (q nodeQueue) Len() int { return len(q) }
func (q nodeQueue) Less(i, j int) bool {
	if q[i].f != q[j].f {
		return q[i].f < q[j].f
	}
	return q[i].seq < q[j].seq
}
func (q nodeQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }
func (q *nodeQueue) Push(x any)   { *q = append(*q, x.(*node)) }
func (q *nodeQueue) Pop() any {
	old := *q
	n := old[len(old)-1]
	*q = old[:len(old)-1]
	return n
}
