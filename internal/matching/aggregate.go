package matching

import (
	"math"
	"strings"

	"github.com/erazemk/lostfound/internal/model"
	"github.com/erazemk/lostfound/internal/similarity"
)

// Threshold is the minimum aggregate score that materializes a match.
const Threshold = 0.70

// Weights of the aggregate score. They sum to 1.
const (
	WeightCategory         = 0.35
	WeightTitleDescription = 0.40
	WeightLocation         = 0.20
	WeightKeyword          = 0.05
)

// Breakdown holds the sub-scores behind an aggregate score.
type Breakdown struct {
	CategoryScore         float64 `json:"category_score"`
	TitleScore            float64 `json:"title_score"`
	DescriptionScore      float64 `json:"description_score"`
	TitleDescriptionScore float64 `json:"title_description_score"`
	LocationScore         float64 `json:"location_score"`
	KeywordScore          float64 `json:"keyword_score"`
}

// Result is the outcome of scoring one lost/found pair.
type Result struct {
	Score     float64   `json:"score"`
	Breakdown Breakdown `json:"breakdown"`
}

// Accepted reports whether the score reaches Threshold.
func (r Result) Accepted() bool {
	return r.Score >= Threshold
}

// Aggregate scores a lost item against a found item.
//
// The location sub-score compares the lost item's lost-location (falling back
// to its found-location) with the found item's found-location (falling back to
// its lost-location), so swapping the arguments may change the result.
func Aggregate(lost, found *model.Item) Result {
	var b Breakdown

	if strings.ToLower(lost.Category) == strings.ToLower(found.Category) {
		b.CategoryScore = 1
	}

	b.TitleScore = similarity.String(lost.Title, found.Title)
	b.DescriptionScore = similarity.String(lost.Description, found.Description)
	b.TitleDescriptionScore = (b.TitleScore + b.DescriptionScore) / 2

	b.LocationScore = similarity.Location(lostSideLocation(lost), foundSideLocation(found))

	b.KeywordScore = similarity.KeywordOverlap(
		lost.Title+" "+lost.Description,
		found.Title+" "+found.Description,
	)

	score := b.CategoryScore*WeightCategory +
		b.TitleDescriptionScore*WeightTitleDescription +
		b.LocationScore*WeightLocation +
		b.KeywordScore*WeightKeyword

	return Result{Score: round2(score), Breakdown: b}
}

func lostSideLocation(i *model.Item) string {
	if i.LocationLost != "" {
		return i.LocationLost
	}
	return i.LocationFound
}

func foundSideLocation(i *model.Item) string {
	if i.LocationFound != "" {
		return i.LocationFound
	}
	return i.LocationLost
}

// round2 rounds half up to two decimal places.
func round2(x float64) float64 {
	return math.Floor(x*100+0.5) / 100
}
