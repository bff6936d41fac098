package core

// Fan-level labels derived from a submission score.
const (
	LevelDiamond  = "Diamond Fan"
	LevelGold     = "Gold Fan"
	LevelSilver   = "Silver Fan"
	LevelBronze   = "Bronze Fan"
	LevelIron     = "Iron Fan"
	LevelPasserby = "Passerby Fan"
	LevelUnknown  = "N/A"
)

// levelThresholds is ordered descending; the first threshold at or below the
// score wins.
var levelThresholds = []struct {
	min   int64
	label string
}{
	{100, LevelDiamond},
	{90, LevelGold},
	{80, LevelSilver},
	{70, LevelBronze},
	{60, LevelIron},
}

// LevelForScore maps a score to its fan-level label. The label is derived
// once at submission time and stored with the entry, never recomputed.
func LevelForScore(score int64) string {
	for _, t := range levelThresholds {
		if score >= t.min {
			return t.label
		}
	}
	return LevelPasserby
}
