package core

import (
	"math"
	"testing"
)

func TestLevelForScore(t *testing.T) {
	cases := []struct {
		score int64
		want  string
	}{
		{100, LevelDiamond},
		{150, LevelDiamond},
		{99, LevelGold},
		{90, LevelGold},
		{89, LevelSilver},
		{80, LevelSilver},
		{79, LevelBronze},
		{70, LevelBronze},
		{69, LevelIron},
		{60, LevelIron},
		{59, LevelPasserby},
		{1, LevelPasserby},
		{-5, LevelPasserby},
	}
	for _, c := range cases {
		if got := LevelForScore(c.score); got != c.want {
			t.Fatalf("LevelForScore(%d) = %q, want %q", c.score, got, c.want)
		}
	}
}

func TestValidateSubmission(t *testing.T) {
	if err := ValidateSubmission("Ana", 95); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if err := ValidateSubmission("", 50); err == nil {
		t.Fatal("expected error for empty name")
	}
	if err := ValidateSubmission("Bo", 0); err == nil {
		t.Fatal("expected error for zero score")
	}
	if err := ValidateSubmission("Bo", math.NaN()); err == nil {
		t.Fatal("expected error for NaN score")
	}
	if err := ValidateSubmission("Bo", math.Inf(1)); err == nil {
		t.Fatal("expected error for infinite score")
	}
	if err := ValidateSubmission("Bo", -10); err != nil {
		t.Fatalf("negative scores are accepted as sent: %v", err)
	}
}

func TestIDGeneratorDistinct(t *testing.T) {
	var gen IDGenerator
	seen := map[int64]bool{}
	prev := int64(0)
	for i := 0; i < 1000; i++ {
		id := gen.Next()
		if seen[id] {
			t.Fatalf("duplicate id %d", id)
		}
		if id <= prev {
			t.Fatalf("id %d not increasing after %d", id, prev)
		}
		seen[id] = true
		prev = id
	}
}

func TestOrderDescending(t *testing.T) {
	entries := []Entry{
		{ID: 3, Name: "c", Score: 50},
		{ID: 1, Name: "a", Score: 90},
		{ID: 4, Name: "d", Score: 90},
		{ID: 2, Name: "b", Score: 70},
	}
	OrderDescending(entries)
	wantNames := []string{"a", "d", "b", "c"}
	for i, want := range wantNames {
		if entries[i].Name != want {
			t.Fatalf("position %d: got %q want %q (order %+v)", i, entries[i].Name, want, entries)
		}
	}
}

func TestPlaceholder(t *testing.T) {
	p := Placeholder()
	if p.Name != "Unknown" || p.Score != 0 || p.Level != LevelUnknown {
		t.Fatalf("unexpected placeholder: %+v", p)
	}
}
