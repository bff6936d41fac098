package memory

import (
	"context"
	"testing"

	"quizboard/core"
)

func TestMemoryStoreRange(t *testing.T) {
	s := New()
	ctx := context.Background()
	_ = s.Insert(ctx, core.Entry{ID: 1, Name: "low", Score: 10})
	_ = s.Insert(ctx, core.Entry{ID: 2, Name: "high", Score: 30})
	_ = s.Insert(ctx, core.Entry{ID: 3, Name: "mid", Score: 20})

	entries, err := s.RangeDescending(ctx, 0, 1)
	if err != nil || len(entries) != 2 {
		t.Fatalf("got %v %v", entries, err)
	}
	if entries[0].Name != "high" || entries[1].Name != "mid" {
		t.Fatalf("unexpected order: %#v", entries)
	}

	entries, _ = s.RangeDescending(ctx, 1, 2)
	if len(entries) != 2 || entries[0].Name != "mid" || entries[1].Name != "low" {
		t.Fatalf("unexpected offset range: %#v", entries)
	}

	entries, _ = s.RangeDescending(ctx, 5, 9)
	if len(entries) != 0 {
		t.Fatalf("out-of-range start should be empty: %#v", entries)
	}
}

func TestMemoryStoreEvictLowest(t *testing.T) {
	s := New()
	ctx := context.Background()
	for i := 1; i <= 4; i++ {
		_ = s.Insert(ctx, core.Entry{ID: int64(i), Score: int64(i)})
	}
	removed, err := s.EvictLowest(ctx, 2)
	if err != nil || removed != 2 {
		t.Fatalf("got %d %v", removed, err)
	}
	n, _ := s.Cardinality(ctx)
	if n != 2 {
		t.Fatalf("cardinality = %d", n)
	}
	entries, _ := s.RangeDescending(ctx, 0, 9)
	if entries[len(entries)-1].Score != 3 {
		t.Fatalf("lowest survivors wrong: %#v", entries)
	}
}

func TestMemoryStoreBounded(t *testing.T) {
	s := NewBounded(2)
	ctx := context.Background()
	for i := 1; i <= 5; i++ {
		_ = s.Insert(ctx, core.Entry{ID: int64(i), Score: int64(i * 10)})
	}
	n, _ := s.Cardinality(ctx)
	if n != 2 {
		t.Fatalf("bounded store holds %d", n)
	}
	entries, _ := s.RangeDescending(ctx, 0, 9)
	if entries[0].Score != 50 || entries[1].Score != 40 {
		t.Fatalf("bounded store kept wrong entries: %#v", entries)
	}
}

func TestMemoryStoreDrain(t *testing.T) {
	s := New()
	ctx := context.Background()
	_ = s.Insert(ctx, core.Entry{ID: 1, Score: 10})
	_ = s.Insert(ctx, core.Entry{ID: 2, Score: 20})

	entries, err := s.Drain(ctx)
	if err != nil || len(entries) != 2 {
		t.Fatalf("got %v %v", entries, err)
	}
	n, _ := s.Cardinality(ctx)
	if n != 0 {
		t.Fatalf("store not empty after drain: %d", n)
	}
}
