package booking

import (
	"math"
	"sort"
	"strings"
	"time"

	"beautycita/models"
	"beautycita/services/geo"
)

const (
	// MaxSearchDistanceMiles caps both the stylist search radius and the distance score.
	MaxSearchDistanceMiles = 25.0

	NewStylistDays  = 21
	NewStylistBonus = 5.0

	weightFlexibility = 0.40
	weightDistance    = 0.30
	weightRating      = 0.25
)

// SortMode is an alternate ordering over an already ranked set.
type SortMode string

const (
	SortByMatch    SortMode = "match"
	SortByRating   SortMode = "rating"
	SortByDistance SortMode = "distance"
	SortByNew      SortMode = "new"
)

// ParseSortMode maps a query value onto a SortMode. "availability" is accepted as the
// match ordering; anything unknown falls back to it too.
func ParseSortMode(s string) SortMode {
	switch SortMode(strings.ToLower(strings.TrimSpace(s))) {
	case SortByRating:
		return SortByRating
	case SortByDistance:
		return SortByDistance
	case SortByNew:
		return SortByNew
	default:
		return SortByMatch
	}
}

// RankRequest is the part of the booking the ranker scores against.
type RankRequest struct {
	Date string
	Time string
}

// Ranker scores and orders candidate stylists. It holds no state beyond its clock,
// so the same inputs at the same instant always give the same order.
type Ranker struct {
	now func() time.Time
}

// NewRanker returns a Ranker reading the current time from now; nil means time.Now.
func NewRanker(now func() time.Time) *Ranker {
	if now == nil {
		now = time.Now
	}
	return &Ranker{now: now}
}

// DistanceScore maps miles onto 0..100, reaching 0 at MaxSearchDistanceMiles.
func DistanceScore(miles float64) float64 {
	return math.Max(0, (MaxSearchDistanceMiles-miles)/MaxSearchDistanceMiles*100)
}

// RatingScore maps a 0..5 average onto 0..100.
func RatingScore(avg float64) float64 {
	if avg < 0 {
		avg = 0
	}
	if avg > 5 {
		avg = 5
	}
	return avg / 5 * 100
}

// IsNewStylist reports whether createdAt falls within NewStylistDays whole days of now.
func IsNewStylist(createdAt, now time.Time) bool {
	if createdAt.IsZero() {
		return false
	}
	days := int(now.Sub(createdAt) / (24 * time.Hour))
	return days <= NewStylistDays
}

// Score fills in the derived fields of one candidate.
func (r *Ranker) Score(c *models.CandidateStylist, req RankRequest, userLocation models.GeoPoint) {
	if c.Location != nil {
		c.DistanceMiles = geo.DistanceMiles(*c.Location, userLocation)
	}
	if c.DistanceMiles < 0 {
		c.DistanceMiles = 0
	}

	flex := FlexibilityScore(c.Availability, req.Date, req.Time)
	c.FlexibilityScore = math.Round(flex)
	c.DistanceScore = DistanceScore(c.DistanceMiles)
	c.IsNew = IsNewStylist(c.CreatedAt, r.now())

	total := flex*weightFlexibility + c.DistanceScore*weightDistance + RatingScore(c.RatingAverage)*weightRating
	if c.IsNew {
		total += NewStylistBonus
	}
	c.MatchScore = int(math.Round(total))
}

// Rank scores a copy of candidates and orders it by descending match score.
// Candidates with equal scores keep their input order.
func (r *Ranker) Rank(candidates []models.CandidateStylist, req RankRequest, userLocation models.GeoPoint) []models.CandidateStylist {
	ranked := make([]models.CandidateStylist, len(candidates))
	copy(ranked, candidates)
	for i := range ranked {
		r.Score(&ranked[i], req, userLocation)
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].MatchScore > ranked[j].MatchScore
	})
	return ranked
}

// Sort returns a copy of ranked reordered by mode without rescoring.
func Sort(ranked []models.CandidateStylist, mode SortMode) []models.CandidateStylist {
	out := make([]models.CandidateStylist, len(ranked))
	copy(out, ranked)

	var less func(i, j int) bool
	switch mode {
	case SortByRating:
		less = func(i, j int) bool { return out[i].RatingAverage > out[j].RatingAverage }
	case SortByDistance:
		less = func(i, j int) bool { return out[i].DistanceMiles < out[j].DistanceMiles }
	case SortByNew:
		less = func(i, j int) bool { return out[i].IsNew && !out[j].IsNew }
	default:
		less = func(i, j int) bool { return out[i].MatchScore > out[j].MatchScore }
	}
	sort.SliceStable(out, less)
	return out
}

// Filter keeps the candidates whose name, specialties or bio contain query, ignoring case.
func Filter(ranked []models.CandidateStylist, query string) []models.CandidateStylist {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		out := make([]models.CandidateStylist, len(ranked))
		copy(out, ranked)
		return out
	}
	out := make([]models.CandidateStylist, 0, len(ranked))
	for _, c := range ranked {
		haystack := strings.ToLower(c.DisplayName + " " + strings.Join(c.Specialties, " ") + " " + c.Bio)
		if strings.Contains(haystack, q) {
			out = append(out, c)
		}
	}
	return out
}
