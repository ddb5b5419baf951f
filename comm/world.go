package comm

import (
	"context"
	"fmt"
	"runtime/debug"

	"github.com/hashicorp/go-hclog"
	"golang.org/x/sync/errgroup"

	"github.com/notargets/gotvd/utils"
)

// Tag labels a message so a receiver can check it got the message it expects
type Tag uint16

const (
	TagBarrier Tag = iota + 1
	TagReduce
	TagUser // first tag available to callers
)

type envelope struct {
	tag     Tag
	payload any
}

// queueDepth bounds the undelivered batches per ordered rank pair
const queueDepth = 64

type world struct {
	size int
	mb   *utils.MailBox[envelope]
}

/*
Comm is one rank's endpoint. Ranks share no memory with each other, all data
moves through Send and Recv. Messages between an ordered pair of ranks are
received in the order they were sent.
*/
type Comm struct {
	rank    int
	w       *world
	ctx     context.Context
	pending [][]envelope // per source, received but not yet consumed
	Logger  hclog.Logger
}

/*
Run starts size ranks, each running fn on its own goroutine, and waits for
them all. The first rank to fail cancels the rest: any rank blocked in a
receive returns. A panic inside a rank is converted to an error.
*/
func Run(ctx context.Context, size int, logger hclog.Logger, fn func(c *Comm) error) error {
	if size < 1 {
		return fmt.Errorf("need at least one rank, have %d", size)
	}
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	var (
		w       = &world{size: size, mb: utils.NewMailBox[envelope](size, queueDepth)}
		g, gctx = errgroup.WithContext(ctx)
	)
	for r := 0; r < size; r++ {
		c := &Comm{
			rank:    r,
			w:       w,
			ctx:     gctx,
			pending: make([][]envelope, size),
			Logger:  logger.Named(fmt.Sprintf("rank%d", r)),
		}
		g.Go(func() (err error) {
			defer func() {
				if p := recover(); p != nil {
					if perr, ok := p.(error); ok {
						err = fmt.Errorf("rank %d aborted: %w", c.rank, perr)
					} else {
						err = fmt.Errorf("rank %d aborted: %v", c.rank, p)
					}
					c.Logger.Error("rank aborted", "error", err, "stack", string(debug.Stack()))
				}
			}()
			return fn(c)
		})
	}
	return g.Wait()
}

func (c *Comm) Rank() int { return c.rank }

func (c *Comm) Size() int { return c.w.size }

func (c *Comm) Context() context.Context { return c.ctx }

// abort unwinds the rank, Run turns the panic into the rank's error
func (c *Comm) abort(err error) {
	panic(err)
}

// Send hands payload to rank to without waiting for it to be received
func (c *Comm) Send(to int, tag Tag, payload any) {
	if to == c.rank {
		c.abort(fmt.Errorf("rank %d: send to self", c.rank))
	}
	c.w.mb.PostMessage(c.rank, to, envelope{tag: tag, payload: payload})
	if err := c.w.mb.DeliverMyMessages(c.ctx, c.rank); err != nil {
		c.abort(err)
	}
}

// Recv blocks for the next message from rank from. A message carrying any
// other tag means the ranks disagree on the protocol, which is fatal.
func (c *Comm) Recv(from int, tag Tag) (payload any) {
	if len(c.pending[from]) == 0 {
		batch, err := c.w.mb.ReceiveFrom(c.ctx, c.rank, from)
		if err != nil {
			c.abort(err)
		}
		c.pending[from] = batch
	}
	env := c.pending[from][0]
	c.pending[from] = c.pending[from][1:]
	if env.tag != tag {
		c.abort(fmt.Errorf("rank %d: expected tag %d from rank %d, received tag %d",
			c.rank, tag, from, env.tag))
	}
	return env.payload
}

// Barrier returns once every rank has entered it
func (c *Comm) Barrier() {
	c.w.mb.PostMessageToAll(c.rank, envelope{tag: TagBarrier})
	if err := c.w.mb.DeliverMyMessages(c.ctx, c.rank); err != nil {
		c.abort(err)
	}
	for p := 0; p < c.w.size; p++ {
		if p != c.rank {
			c.Recv(p, TagBarrier)
		}
	}
}
