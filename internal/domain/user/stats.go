package user

import "math"

// Stats is the rating aggregate of a user as a ratee. It keeps a running sum and count;
// the average is derived and rounded to one decimal place.
type Stats struct {
	UserID       string
	RatingSum    int
	TotalRatings int
}

// AvgRating returns the arithmetic mean rounded to one decimal, or 0 without ratings.
func (stats Stats) AvgRating() float64 {
	if stats.TotalRatings <= 0 {
		return 0
	}
	return RoundRating(float64(stats.RatingSum) / float64(stats.TotalRatings))
}

// Apply adds a score delta and a count delta. A count that drops to zero resets the sum.
func (stats Stats) Apply(sumDelta, countDelta int) Stats {
	stats.RatingSum += sumDelta
	stats.TotalRatings += countDelta
	if stats.TotalRatings <= 0 {
		stats.TotalRatings = 0
		stats.RatingSum = 0
	}
	return stats
}

// RoundRating rounds to one decimal place.
func RoundRating(v float64) float64 {
	return math.Round(v*10) / 10
}
