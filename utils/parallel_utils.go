package utils

import (
	"context"
	"fmt"
)

/*
MailBox carries batches of typed messages between NP participants. Every
ordered (source, target) pair has its own buffered channel, so batches between
two participants are received in the order they were delivered. The pattern
is:

	for range messages {Post}; Deliver; Receive
*/
type MailBox[T any] struct {
	NP           int
	MessageChans [][]chan []T  // [target][source]
	PostMsgQs    []map[int][]T // One for each source, key is target
	MailFlag     []bool        // Source has messages in outbox
}

func NewMailBox[T any](NP, depth int) *MailBox[T] {
	if depth < 1 {
		depth = 1
	}
	mb := &MailBox[T]{
		NP:           NP,
		MessageChans: make([][]chan []T, NP),
		PostMsgQs:    make([]map[int][]T, NP),
		MailFlag:     make([]bool, NP),
	}
	for n := 0; n < NP; n++ {
		mb.MessageChans[n] = make([]chan []T, NP)
		for src := 0; src < NP; src++ {
			mb.MessageChans[n][src] = make(chan []T, depth)
		}
		mb.PostMsgQs[n] = make(map[int][]T)
	}
	return mb
}

func (mb *MailBox[T]) PostMessage(myThread, targetThread int, msg T) {
	if targetThread < 0 || targetThread > mb.NP-1 {
		panic(fmt.Errorf("target %d out of bounds [0,%d)", targetThread, mb.NP))
	}
	mb.PostMsgQs[myThread][targetThread] = append(mb.PostMsgQs[myThread][targetThread], msg)
	mb.MailFlag[myThread] = true
}

func (mb *MailBox[T]) PostMessageToAll(myThread int, msg T) {
	for k := 0; k < mb.NP; k++ {
		if k != myThread {
			mb.PostMessage(myThread, k, msg)
		}
	}
}

// DeliverMyMessages hands every posted batch to its target. Ownership of the
// batch moves to the receiver. Blocks while a target channel is full, unless
// ctx is done first.
func (mb *MailBox[T]) DeliverMyMessages(ctx context.Context, myThread int) (err error) {
	if !mb.MailFlag[myThread] {
		return
	}
	for targetThread, batch := range mb.PostMsgQs[myThread] {
		select {
		case mb.MessageChans[targetThread][myThread] <- batch:
		case <-ctx.Done():
			return ctx.Err()
		}
		delete(mb.PostMsgQs[myThread], targetThread)
	}
	mb.MailFlag[myThread] = false
	return
}

// ReceiveFrom blocks until the next batch from source arrives
func (mb *MailBox[T]) ReceiveFrom(ctx context.Context, myThread, source int) (batch []T, err error) {
	select {
	case batch = <-mb.MessageChans[myThread][source]:
	case <-ctx.Done():
		err = ctx.Err()
	}
	return
}

type PartitionMap struct {
	MaxIndex       int // MaxIndex is partitioned into ParallelDegree partitions
	ParallelDegree int
	Partitions     [][2]int // Beginning and end index of partitions
}

func NewPartitionMap(ParallelDegree, maxIndex int) (pm *PartitionMap) {
	pm = &PartitionMap{
		MaxIndex:       maxIndex,
		ParallelDegree: ParallelDegree,
		Partitions:     make([][2]int, ParallelDegree),
	}
	for n := 0; n < ParallelDegree; n++ {
		pm.Partitions[n] = pm.Split1D(n)
	}
	return
}

func (pm *PartitionMap) GetBucketRange(bucketNum int) (kMin, kMax int) {
	kMin, kMax = pm.Partitions[bucketNum][0], pm.Partitions[bucketNum][1]
	return
}

func (pm *PartitionMap) Split1D(threadNum int) (bucket [2]int) {
	// Split one dimension into ParallelDegree pieces, with a maximum imbalance of one item
	var (
		Npart            = pm.MaxIndex / (pm.ParallelDegree)
		startAdd, endAdd int
		remainder        int
	)
	remainder = pm.MaxIndex % pm.ParallelDegree
	if remainder != 0 { // spread the remainder over the first chunks evenly
		if threadNum+1 > remainder {
			startAdd = remainder
			endAdd = 0
		} else {
			startAdd = threadNum
			endAdd = 1
		}
	}
	bucket[0] = threadNum*Npart + startAdd
	bucket[1] = bucket[0] + Npart + endAdd
	return
}
