package blocks_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"ventanita/internal/blocks"
)

func TestComputeRatings_Example(t *testing.T) {
	s := blocks.ComputeRatings(blocks.RatingCounts{Five: 10, Four: 5, Three: 0, Two: 0, One: 5})

	assert.Equal(t, 20, s.Total)
	assert.Equal(t, 3.8, s.Score)
	assert.Equal(t, 4, s.RoundedStars)
	assert.Equal(t, [5]bool{true, true, true, true, false}, s.Stars)
	assert.Equal(t, []string{"filled", "filled", "filled", "filled", "empty"}, s.StarPattern())
	assert.Equal(t, 50, s.Percent(5))
	assert.Equal(t, 25, s.Percent(4))
	assert.Equal(t, 0, s.Percent(3))
	assert.Equal(t, 25, s.Percent(1))
	assert.True(t, s.HasRatings())
}

func TestComputeRatings_ZeroTotal(t *testing.T) {
	var s blocks.RatingStats
	assert.NotPanics(t, func() {
		s = blocks.ComputeRatings(blocks.RatingCounts{})
	})

	assert.Equal(t, 0, s.Total)
	assert.Equal(t, 0.0, s.Score)
	assert.Equal(t, 0, s.RoundedStars)
	assert.Equal(t, [5]bool{}, s.Stars)
	for stars := 1; stars <= 5; stars++ {
		assert.Equal(t, 0, s.Percent(stars))
	}
	assert.False(t, s.HasRatings())
}

func TestComputeRatings_RoundsHalfUp(t *testing.T) {
	// 2.5 stars exactly; 1 of 8 responses is 12.5%
	s := blocks.ComputeRatings(blocks.RatingCounts{Three: 1, Two: 1})
	assert.Equal(t, 2.5, s.Score)
	assert.Equal(t, 3, s.RoundedStars)

	s = blocks.ComputeRatings(blocks.RatingCounts{Five: 1, Four: 7})
	assert.Equal(t, 15, s.Percent(5), "12.5% rounds up to 15")
	assert.Equal(t, 90, s.Percent(4), "87.5% rounds up to 90")
}

func TestComputeRatings_BreakdownOrder(t *testing.T) {
	s := blocks.ComputeRatings(blocks.RatingCounts{Five: 3, Two: 1})
	for i, share := range s.Breakdown {
		assert.Equal(t, 5-i, share.Stars)
	}
	assert.Equal(t, 3, s.Breakdown[0].Count)
	assert.Equal(t, 1, s.Breakdown[3].Count)
}

func TestComputeRatings_NegativeCountsIgnored(t *testing.T) {
	s := blocks.ComputeRatings(blocks.RatingCounts{Five: 2, One: -4})
	assert.Equal(t, 2, s.Total)
	assert.Equal(t, 5.0, s.Score)
}

func TestRatingsFromStruct(t *testing.T) {
	v := blocks.NewStructValue(map[string]any{"five": 10, "four": 5, "one": 5})
	s := blocks.RatingsFromStruct(v)
	assert.Equal(t, 3.8, s.Score)
	assert.Equal(t, 4, s.RoundedStars)
}

func TestComputeRatings_Immutable(t *testing.T) {
	counts := blocks.RatingCounts{Five: 1}
	s := blocks.ComputeRatings(counts)
	counts.Five = 100
	assert.Equal(t, 1, s.Total)
	assert.Equal(t, s, blocks.ComputeRatings(blocks.RatingCounts{Five: 1}))
}
