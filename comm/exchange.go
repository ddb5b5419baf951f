package comm

import (
	"fmt"
	"slices"
)

func recvAs[T any](c *Comm, from int, tag Tag) (data []T) {
	payload := c.Recv(from, tag)
	if payload == nil {
		return nil
	}
	var ok bool
	if data, ok = payload.([]T); !ok {
		c.abort(fmt.Errorf("rank %d: message from rank %d with tag %d has type %T, expected %T",
			c.rank, from, tag, payload, data))
	}
	return
}

/*
Exchange sends out[p] to every rank p in out and then receives one message
from each rank in from. Sends never block on the receiver, so every rank can
call Exchange at the same time.
*/
func Exchange[T any](c *Comm, tag Tag, out map[int][]T, from []int) (in map[int][]T) {
	targets := make([]int, 0, len(out))
	for p := range out {
		targets = append(targets, p)
	}
	slices.Sort(targets)
	for _, p := range targets {
		c.Send(p, tag, out[p])
	}
	in = make(map[int][]T, len(from))
	for _, p := range from {
		in[p] = recvAs[T](c, p, tag)
	}
	return
}

// AllToAll sends out[p] (possibly empty) to every other rank and receives
// one message from each of them
func AllToAll[T any](c *Comm, tag Tag, out map[int][]T) (in map[int][]T) {
	var (
		full  = make(map[int][]T, c.Size()-1)
		peers = make([]int, 0, c.Size()-1)
	)
	for p := 0; p < c.Size(); p++ {
		if p != c.rank {
			full[p] = out[p]
			peers = append(peers, p)
		}
	}
	return Exchange(c, tag, full, peers)
}

// AllReduceSum returns the sum of v over all ranks, added in rank order so
// every rank gets a bitwise identical result
func AllReduceSum(c *Comm, v float64) (sum float64) {
	out := make(map[int][]float64)
	for p := 0; p < c.Size(); p++ {
		if p != c.rank {
			out[p] = []float64{v}
		}
	}
	in := AllToAll(c, TagReduce, out)
	for p := 0; p < c.Size(); p++ {
		if p == c.rank {
			sum += v
		} else {
			sum += in[p][0]
		}
	}
	return
}
