package fluxcalc

import (
	"encoding/binary"
	"fmt"
	"hash/fnv"
	"slices"

	"github.com/hashicorp/go-multierror"

	"github.com/notargets/gotvd/comm"
	"github.com/notargets/gotvd/graph"
	"github.com/notargets/gotvd/mesh"
	"github.com/notargets/gotvd/types"
)

const (
	tagVerify = comm.TagUser + iota
	tagNodes
	tagPairs
	tagTriples
)

// entryList is everything one rank sends to, or receives from, one peer.
// Entries are global ids in ascending order, positions are the matching
// indices into the local tables.
type entryList struct {
	Nodes   []int
	Pairs   []types.Pair
	Triples []types.Triple

	nodePos   []int
	pairPos   []int
	triplePos []int
}

/*
commLists describe the exchange with every neighbour rank. A rank sends the
entries of its owned elements that are ghosts on the peer, and receives the
entries of the peer's elements it holds as ghosts. Both sides derive their
lists from the same element sets, so what one sends is what the other
expects.
*/
type commLists struct {
	peers []int
	send  map[int]*entryList
	recv  map[int]*entryList
}

func buildCommLists(v *mesh.View, g *graph.Graph) (cl *commLists) {
	var (
		sendElems = make(map[int][]int)
		recvElems = make(map[int][]int)
	)
	for _, k := range v.Owned {
		for _, p := range v.GhostedOn(k) {
			sendElems[p] = append(sendElems[p], k)
		}
	}
	for _, k := range v.Ghosts {
		p := v.Owner(k)
		recvElems[p] = append(recvElems[p], k)
	}
	cl = &commLists{
		send: make(map[int]*entryList),
		recv: make(map[int]*entryList),
	}
	for p, elems := range sendElems {
		cl.send[p] = newEntryList(v.Mesh(), g, elems)
		cl.peers = append(cl.peers, p)
	}
	for p, elems := range recvElems {
		cl.recv[p] = newEntryList(v.Mesh(), g, elems)
		cl.peers = append(cl.peers, p)
	}
	slices.Sort(cl.peers)
	cl.peers = slices.Compact(cl.peers)
	for _, p := range cl.peers {
		if cl.send[p] == nil {
			cl.send[p] = &entryList{}
		}
		if cl.recv[p] == nil {
			cl.recv[p] = &entryList{}
		}
	}
	return
}

func newEntryList(m *mesh.Mesh, g *graph.Graph, elems []int) (el *entryList) {
	el = &entryList{}
	for _, k := range elems {
		verts := m.EToV[k]
		for _, i := range verts {
			el.Nodes = append(el.Nodes, i)
			for _, j := range verts {
				el.Pairs = append(el.Pairs, types.Pair{I: i, J: j})
				for _, kk := range verts {
					el.Triples = append(el.Triples, types.Triple{I: i, J: j, K: kk})
				}
			}
		}
	}
	el.Nodes = types.SortUniqueInts(el.Nodes)
	el.Pairs = types.SortUniquePairs(el.Pairs)
	el.Triples = types.SortUniqueTriples(el.Triples)

	el.nodePos = make([]int, len(el.Nodes))
	for idx, n := range el.Nodes {
		el.nodePos[idx] = g.Seq(n)
	}
	el.pairPos = make([]int, len(el.Pairs))
	for idx, pr := range el.Pairs {
		si := g.Seq(pr.I)
		el.pairPos[idx] = g.PairIndex(si, g.MustOffset(si, g.Seq(pr.J)))
	}
	el.triplePos = make([]int, len(el.Triples))
	for idx, tr := range el.Triples {
		si := g.Seq(tr.I)
		el.triplePos[idx] = g.TripleIndex(si,
			g.MustOffset(si, g.Seq(tr.J)), g.MustOffset(si, g.Seq(tr.K)))
	}
	return
}

// ListDigest summarizes one direction of an exchange
type ListDigest struct {
	Nodes, Pairs, Triples int
	Checksum              uint64 // FNV-1a over the ids in order
}

func (el *entryList) digest() (d ListDigest) {
	var (
		h   = fnv.New64a()
		buf [8]byte
	)
	put := func(x int) {
		binary.LittleEndian.PutUint64(buf[:], uint64(x))
		h.Write(buf[:])
	}
	for _, n := range el.Nodes {
		put(n)
	}
	for _, pr := range el.Pairs {
		put(pr.I)
		put(pr.J)
	}
	for _, tr := range el.Triples {
		put(tr.I)
		put(tr.J)
		put(tr.K)
	}
	return ListDigest{
		Nodes:    len(el.Nodes),
		Pairs:    len(el.Pairs),
		Triples:  len(el.Triples),
		Checksum: h.Sum64(),
	}
}

// CommListError reports a peer whose send list differs from what this rank
// expects to receive from it
type CommListError struct {
	Rank, Peer int
	Sent       ListDigest
	Expected   ListDigest
}

func (e *CommListError) Error() string {
	return fmt.Sprintf("rank %d: comm lists from rank %d disagree: "+
		"peer sends %d nodes, %d pairs, %d triples (checksum %016x), "+
		"expected %d nodes, %d pairs, %d triples (checksum %016x)",
		e.Rank, e.Peer,
		e.Sent.Nodes, e.Sent.Pairs, e.Sent.Triples, e.Sent.Checksum,
		e.Expected.Nodes, e.Expected.Pairs, e.Expected.Triples, e.Expected.Checksum)
}

func (cl *commLists) sendTo(p int) *entryList {
	if el, ok := cl.send[p]; ok {
		return el
	}
	return &entryList{}
}

func (cl *commLists) recvFrom(p int) *entryList {
	if el, ok := cl.recv[p]; ok {
		return el
	}
	return &entryList{}
}

// verifyCommLists exchanges list digests with every rank. Each rank checks
// what every peer will send it against what it expects to receive.
func (c *Calculator[L]) verifyCommLists() error {
	var (
		me  = c.Comm.Rank()
		out = make(map[int][]ListDigest)
	)
	for p := 0; p < c.Comm.Size(); p++ {
		if p != me {
			out[p] = []ListDigest{c.lists.sendTo(p).digest()}
		}
	}
	in := comm.AllToAll(c.Comm, tagVerify, out)
	var result *multierror.Error
	for p := 0; p < c.Comm.Size(); p++ {
		if p == me {
			continue
		}
		want := c.lists.recvFrom(p).digest()
		if got := in[p][0]; got != want {
			result = multierror.Append(result, &CommListError{
				Rank: me, Peer: p, Sent: got, Expected: want,
			})
		}
	}
	return result.ErrorOrNil()
}

// CommListSizes reports the (send, receive) digests per peer rank
func (c *Calculator[L]) CommListSizes() (sizes map[int][2]ListDigest) {
	sizes = make(map[int][2]ListDigest, len(c.lists.peers))
	for _, p := range c.lists.peers {
		sizes[p] = [2]ListDigest{c.lists.sendTo(p).digest(), c.lists.recvFrom(p).digest()}
	}
	return
}

// SendTriples returns the derivative entries sent to rank p, by global id
func (c *Calculator[L]) SendTriples(p int) []types.Triple { return c.lists.sendTo(p).Triples }

// RecvTriples returns the derivative entries expected from rank p, by global id
func (c *Calculator[L]) RecvTriples(p int) []types.Triple { return c.lists.recvFrom(p).Triples }

func (c *Calculator[L]) Peers() []int { return c.lists.peers }
