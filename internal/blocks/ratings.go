package blocks

import "math"

// ─────────────────────────────────────────────────────────────
// Ratings adapter: star tallies to an immutable summary
// ─────────────────────────────────────────────────────────────

// RatingCounts are the stored tallies per star level.
type RatingCounts struct {
	Five  int `json:"five"`
	Four  int `json:"four"`
	Three int `json:"three"`
	Two   int `json:"two"`
	One   int `json:"one"`
}

// byStars returns the counts indexed by star level minus one.
func (c RatingCounts) byStars() [5]int {
	return [5]int{
		max(c.One, 0),
		max(c.Two, 0),
		max(c.Three, 0),
		max(c.Four, 0),
		max(c.Five, 0),
	}
}

// StarShare is one row of the percentage breakdown.
type StarShare struct {
	Stars   int `json:"stars"`
	Count   int `json:"count"`
	Percent int `json:"percent"`
}

// RatingStats is computed once from the counts and never changes.
// With no responses every derived value is zero.
type RatingStats struct {
	Counts       RatingCounts `json:"counts"`
	Total        int          `json:"total"`
	Score        float64      `json:"score"`
	RoundedStars int          `json:"roundedStars"`
	Stars        [5]bool      `json:"stars"`     // filled first
	Breakdown    [5]StarShare `json:"breakdown"` // five stars first
}

// ComputeRatings derives the summary in a single pass over the counts.
// Rounding is half away from zero throughout.
func ComputeRatings(c RatingCounts) RatingStats {
	counts := c.byStars()
	s := RatingStats{Counts: c}

	weighted := 0
	for i, n := range counts {
		s.Total += n
		weighted += (i + 1) * n
	}

	var avg float64
	if s.Total > 0 {
		avg = float64(weighted) / float64(s.Total)
	}
	s.Score = math.Round(avg*10) / 10
	s.RoundedStars = int(math.Round(avg))
	for i := 0; i < s.RoundedStars && i < len(s.Stars); i++ {
		s.Stars[i] = true
	}

	for stars := 5; stars >= 1; stars-- {
		n := counts[stars-1]
		share := StarShare{Stars: stars, Count: n}
		if s.Total > 0 {
			share.Percent = roundToNearest5(100 * float64(n) / float64(s.Total))
		}
		s.Breakdown[5-stars] = share
	}
	return s
}

// RatingsFromStruct reads a stored ratings block.
func RatingsFromStruct(v *StructValue) RatingStats {
	return ComputeRatings(RatingCounts{
		Five:  v.Int("five"),
		Four:  v.Int("four"),
		Three: v.Int("three"),
		Two:   v.Int("two"),
		One:   v.Int("one"),
	})
}

// HasRatings reports whether any response was counted.
func (s RatingStats) HasRatings() bool { return s.Total > 0 }

// Percent returns the rounded share for a star level 1–5.
func (s RatingStats) Percent(stars int) int {
	if stars < 1 || stars > 5 {
		return 0
	}
	return s.Breakdown[5-stars].Percent
}

// StarPattern renders Stars as "filled"/"empty" markers.
func (s RatingStats) StarPattern() []string {
	out := make([]string, len(s.Stars))
	for i, filled := range s.Stars {
		if filled {
			out[i] = "filled"
		} else {
			out[i] = "empty"
		}
	}
	return out
}

func roundToNearest5(p float64) int {
	return int(math.Round(p/5) * 5)
}
