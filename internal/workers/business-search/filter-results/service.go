package filterresults

import (
	"strings"

	"business-finder/internal/models"
)

// Filter keeps the businesses whose name contains filters.Name (case-insensitive)
// and whose rating reaches the threshold. The name is matched as typed,
// surrounding spaces included. Input order is kept and the input
// slice is not modified.
func Filter(businesses []models.Business, filters models.Filters) []models.Business {
	name := strings.ToLower(filters.Name)
	minRating := filters.Rating.Min()

	out := make([]models.Business, 0, len(businesses))
	for _, b := range businesses {
		if name != "" && !strings.Contains(strings.ToLower(b.Name), name) {
			continue
		}
		if filters.Rating != models.RatingAny && b.Rating < minRating {
			continue
		}
		out = append(out, b)
	}
	return out
}

// Buckets counts how many businesses reach each rating threshold.
func Buckets(businesses []models.Business) map[models.RatingThreshold]int {
	counts := map[models.RatingThreshold]int{
		models.Rating3:     0,
		models.Rating3Half: 0,
		models.Rating4:     0,
	}
	for _, b := range businesses {
		for t := range counts {
			if b.Rating >= t.Min() {
				counts[t]++
			}
		}
	}
	return counts
}
