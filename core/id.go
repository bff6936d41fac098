package core

import (
	"sync/atomic"
	"time"
)

// IDGenerator hands out millisecond-timestamp identifiers that are strictly
// increasing within the process, so two submissions landing in the same
// millisecond still get distinct IDs. Uniqueness across processes is
// best-effort only.
type IDGenerator struct {
	last atomic.Int64
}

func (g *IDGenerator) Next() int64 {
	for {
		id := time.Now().UnixMilli()
		last := g.last.Load()
		if id <= last {
			id = last + 1
		}
		if g.last.CompareAndSwap(last, id) {
			return id
		}
	}
}
