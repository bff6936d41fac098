package ranking

import (
	cryptorand "crypto/rand"
	"encoding/binary"
	"math/rand"
	"sync"

	"quizboard/core"
)

// A skip list keyed by (score desc, id asc) giving O(log n) inserts while
// submissions arrive concurrently. Unlike a per-player board there is no
// update path: entries are immutable, so the list only inserts and trims.

const maxLevel = 16
const pFactor = 0.25

type node struct {
	e    core.Entry
	next [maxLevel]*node
}

type SkipList struct {
	mu   sync.RWMutex
	head *node
	lvl  int
	size int
	rng  *rand.Rand
}

func NewSkipList() *SkipList {
	// Use crypto/rand to generate a secure seed
	var seed [16]byte
	if _, err := cryptorand.Read(seed[:]); err != nil {
		// Fallback to zero seed if crypto/rand fails (extremely unlikely)
		seed = [16]byte{}
	}
	seed1 := binary.BigEndian.Uint64(seed[:8])
	seed2 := binary.BigEndian.Uint64(seed[8:])

	return &SkipList{
		head: &node{},
		lvl:  1,
		rng:  rand.New(rand.NewSource(int64(seed1 ^ seed2))),
	}
}

func (s *SkipList) randomLevel() int {
	lvl := 1
	for lvl < maxLevel && s.rng.Float64() < pFactor {
		lvl++
	}
	return lvl
}

// Insert adds an entry at its ranked position.
func (s *SkipList) Insert(e core.Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	update := [maxLevel]*node{}
	cur := s.head
	for i := s.lvl - 1; i >= 0; i-- {
		for cur.next[i] != nil && core.RankedBefore(cur.next[i].e, e) {
			cur = cur.next[i]
		}
		update[i] = cur
	}
	lvl := s.randomLevel()
	if lvl > s.lvl {
		for i := s.lvl; i < lvl; i++ {
			update[i] = s.head
		}
		s.lvl = lvl
	}
	n := &node{e: e}
	for i := 0; i < lvl; i++ {
		n.next[i] = update[i].next[i]
		update[i].next[i] = n
	}
	s.size++
}

func (s *SkipList) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.size
}

// TopN returns the n best-ranked entries in order.
func (s *SkipList) TopN(n int) []core.Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if n <= 0 {
		return nil
	}
	out := make([]core.Entry, 0, min(n, s.size))
	cur := s.head.next[0]
	for cur != nil && len(out) < n {
		out = append(out, cur.e)
		cur = cur.next[0]
	}
	return out
}

// RemoveLowest removes the n worst-ranked entries and returns them,
// worst last.
func (s *SkipList) RemoveLowest(n int) []core.Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n <= 0 || s.size == 0 {
		return nil
	}
	if n > s.size {
		n = s.size
	}
	cur := s.head.next[0]
	for i := 0; i < s.size-n; i++ {
		cur = cur.next[0]
	}
	removed := make([]core.Entry, 0, n)
	for cur != nil {
		removed = append(removed, cur.e)
		cur = cur.next[0]
	}
	for _, e := range removed {
		s.removeLocked(e)
	}
	return removed
}

func (s *SkipList) removeLocked(e core.Entry) {
	update := [maxLevel]*node{}
	cur := s.head
	for i := s.lvl - 1; i >= 0; i-- {
		for cur.next[i] != nil && core.RankedBefore(cur.next[i].e, e) {
			cur = cur.next[i]
		}
		update[i] = cur
	}
	target := update[0].next[0]
	if target == nil || target.e.ID != e.ID {
		return
	}
	for i := 0; i < s.lvl; i++ {
		if update[i].next[i] == target {
			update[i].next[i] = target.next[i]
		}
	}
	s.size--
	for s.lvl > 1 && s.head.next[s.lvl-1] == nil {
		s.lvl--
	}
}
