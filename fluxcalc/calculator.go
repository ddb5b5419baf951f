package fluxcalc

import (
	"fmt"
	"sync"

	"github.com/hashicorp/go-hclog"

	"github.com/notargets/gotvd/comm"
	"github.com/notargets/gotvd/dictator"
	"github.com/notargets/gotvd/graph"
	"github.com/notargets/gotvd/limiter"
	"github.com/notargets/gotvd/material"
	"github.com/notargets/gotvd/mesh"
	"github.com/notargets/gotvd/utils"
	"github.com/notargets/gotvd/velocity"
)

// SyncState tracks whether the node graph and communication lists match the
// current mesh topology
type SyncState uint8

const (
	Stale SyncState = iota
	Valid
)

func (s SyncState) String() string {
	return [...]string{"Stale", "Valid"}[s]
}

type Config struct {
	Limiter         limiter.Type
	Threads         int // Workers per rank
	QuadratureOrder int
	VerifyCommLists bool
	Paths           Paths // Sensitivity paths composed for the kernel, zero means AllPaths
	Logger          hclog.Logger
}

/*
Calculator computes the limited advective flux out of every node visible to
one rank, and the derivatives of that flux with respect to every variable it
depends on. The lifecycle per nonlinear residual pass is

	TimestepSetup  rebuild graph, tables and comm lists if the topology changed
	Initialize     zero the tables
	Execute        sweep owned elements on Threads workers
	Finalize       merge workers, exchange with neighbour ranks, run the limiter
*/
type Calculator[L velocity.Law] struct {
	Law      L
	Material material.Model
	Dict     *dictator.Dictator
	View     *mesh.View
	Comm     *comm.Comm // nil for a serial run

	cfg    Config
	logger hclog.Logger
	state  SyncState
	Builds int // Number of graph and comm list constructions

	g       *graph.Graph
	merged  *tables
	workers []*tables
	pm      *utils.PartitionMap
	lists   *commLists
	lim     *limiter.Limiter
}

func New[L velocity.Law](law L, mat material.Model, dict *dictator.Dictator, view *mesh.View,
	c *comm.Comm, cfg Config) (calc *Calculator[L], err error) {
	switch {
	case any(law) == nil:
		err = fmt.Errorf("a transport law is required")
	case mat == nil:
		err = fmt.Errorf("a material model is required")
	case dict == nil:
		err = fmt.Errorf("a variable dictator is required")
	case view == nil:
		err = fmt.Errorf("a local mesh view is required")
	case c == nil && view.Mesh().NumRanks > 1:
		err = fmt.Errorf("mesh is split across %d ranks but no communicator was given",
			view.Mesh().NumRanks)
	case view.Mesh().NumRanks > 1 && view.Layers < 2:
		err = fmt.Errorf("limiter needs at least 2 ghost layers, have %d", view.Layers)
	}
	if err != nil {
		return
	}
	if cfg.Threads < 1 {
		cfg.Threads = 1
	}
	if cfg.QuadratureOrder < 1 {
		cfg.QuadratureOrder = 2
	}
	if cfg.Paths == 0 {
		cfg.Paths = AllPaths
	}
	if cfg.Logger == nil {
		cfg.Logger = hclog.NewNullLogger()
	}
	calc = &Calculator[L]{
		Law:      law,
		Material: mat,
		Dict:     dict,
		View:     view,
		Comm:     c,
		cfg:      cfg,
		logger:   cfg.Logger,
		state:    Stale,
	}
	return
}

func (c *Calculator[L]) State() SyncState { return c.state }

func (c *Calculator[L]) Graph() *graph.Graph { return c.g }

func (c *Calculator[L]) Limiter() *limiter.Limiter { return c.lim }

// MarkTopologyChanged forces the next TimestepSetup to rebuild everything
func (c *Calculator[L]) MarkTopologyChanged() { c.state = Stale }

func (c *Calculator[L]) TimestepSetup() {
	if c.state == Valid {
		return
	}
	var (
		m     = c.View.Mesh()
		elems = c.View.Elements()
		verts = make([][]int, len(elems))
		nvar  = c.Dict.NumVariables()
	)
	for i, k := range elems {
		verts[i] = m.EToV[k]
	}
	c.g = graph.Build(c.View.Rank, verts, c.View.RowComplete)
	c.merged = newTables(c.g, nvar)

	threads := c.cfg.Threads
	if threads > len(c.View.Owned) {
		threads = max(1, len(c.View.Owned))
	}
	c.pm = utils.NewPartitionMap(threads, len(c.View.Owned))
	c.workers = make([]*tables, threads)
	for np := range c.workers {
		c.workers[np] = newTables(c.g, nvar)
	}

	c.lists = buildCommLists(c.View, c.g)
	if c.Comm != nil && c.cfg.VerifyCommLists {
		if err := c.verifyCommLists(); err != nil {
			panic(err)
		}
	}
	c.state = Valid
	c.Builds++
	c.logger.Debug("node graph rebuilt", "nodes", c.g.NumNodes(), "pairs", c.g.NumPairs(),
		"triples", c.g.NumTriples(), "workers", threads, "peers", c.lists.peers)
}

func (c *Calculator[L]) Initialize() {
	if c.state != Valid {
		panic(fmt.Errorf("rank %d: tables are stale, TimestepSetup must run after a topology change",
			c.View.Rank))
	}
	c.merged.zero()
	for _, w := range c.workers {
		w.zero()
	}
	c.lim = nil
}

/*
Execute sweeps the owned elements, each worker accumulating into its own
tables. Coefficients are evaluated from solK and nodal values from solU; they
are the same solution except when one derivative path is being checked in
isolation.
*/
func (c *Calculator[L]) Execute(solK, solU dictator.Solution) {
	var (
		wg       sync.WaitGroup
		failures = make([]any, c.pm.ParallelDegree)
	)
	for np := 0; np < c.pm.ParallelDegree; np++ {
		wg.Add(1)
		go func(np int) {
			defer wg.Done()
			defer func() { failures[np] = recover() }()
			kMin, kMax := c.pm.GetBucketRange(np)
			for _, k := range c.View.Owned[kMin:kMax] {
				c.executeElement(c.workers[np], k, solK, solU)
			}
		}(np)
	}
	wg.Wait()
	for _, f := range failures {
		if f != nil {
			panic(f)
		}
	}
}

func (c *Calculator[L]) Finalize() {
	c.threadJoin()
	if c.Comm != nil && len(c.lists.peers) > 0 {
		c.exchange()
	}
	if debugChecks {
		c.assertComputed(c.g.Globals(), "after exchange")
		if utils.IsNan(c.merged.k) || utils.IsNan(c.merged.dk) {
			panic(fmt.Errorf("rank %d: NaN in assembled coefficients", c.View.Rank))
		}
	}
	nodes := c.View.OwnedElementNodes()
	seqs := make([]int, len(nodes))
	for i, n := range nodes {
		seqs[i] = c.g.Seq(n)
	}
	c.lim = limiter.New(c.cfg.Limiter, c.g, c.merged.k, c.merged.u, c.merged.valence)
	c.lim.Finalize(seqs)
}

// Compute runs one full residual pass
func (c *Calculator[L]) Compute(solK, solU dictator.Solution) {
	c.TimestepSetup()
	c.Initialize()
	c.Execute(solK, solU)
	c.Finalize()
}

func (c *Calculator[L]) finalized() *limiter.Limiter {
	if c.lim == nil {
		panic(fmt.Errorf("rank %d: flux requested before Finalize", c.View.Rank))
	}
	return c.lim
}

func (c *Calculator[L]) FluxOut(node int) float64 { return c.finalized().FluxOut(node) }

func (c *Calculator[L]) Valence(node int) int { return c.finalized().Valence(node) }

// Coefficient returns the assembled K between two global nodes
func (c *Calculator[L]) Coefficient(i, j int) float64 {
	si := c.g.Seq(i)
	return c.merged.k[c.g.PairIndex(si, c.g.MustOffset(si, c.g.Seq(j)))]
}

// DUDVar returns the nodal derivative table row of a global node
func (c *Calculator[L]) DUDVar(node int) []float64 {
	return c.merged.nodeDerivs(c.g.Seq(node))
}
