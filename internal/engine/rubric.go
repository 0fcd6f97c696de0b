package engine

import (
	"fmt"
	"math"
)

// Rubric dimension weights. Two value dimensions and four effort dimensions;
// each group is re-normalized by its weight sum so both scores land back on
// the 1-10 scale.
const (
	WeightEmotionalNeeds  = 0.20
	WeightRevenueImpact   = 0.25
	WeightDrasticChange   = 0.15
	WeightPilotComplexity = 0.15
	WeightPeopleBuild     = 0.10
	WeightTechnologyCapex = 0.15

	valueWeightSum  = WeightEmotionalNeeds + WeightRevenueImpact
	effortWeightSum = WeightDrasticChange + WeightPilotComplexity + WeightPeopleBuild + WeightTechnologyCapex
)

// Classification thresholds.
const (
	HighValueThreshold  = 6.5
	HighEffortThreshold = 6.0
)

// Quadrant labels.
const (
	QuadrantQuickWins   = "Quick Wins"
	QuadrantBigBets     = "Big Bets"
	QuadrantLowPriority = "Low Priority"
	QuadrantParkingLot  = "Parking Lot"
)

// DimensionScores holds the six rubric inputs, each an integer in [1, 10].
// Advisor proposals and human input both pass through Validate or Clamp
// before reaching Classify.
type DimensionScores struct {
	EmotionalNeeds  int `json:"emotionalNeeds"`
	RevenueImpact   int `json:"revenueImpact"`
	DrasticChange   int `json:"drasticChange"`
	PilotComplexity int `json:"pilotComplexity"`
	PeopleBuild     int `json:"peopleBuild"`
	TechnologyCapex int `json:"technologyCapex"`
}

// DefaultDimensionScores is the midpoint seed assigned at promotion, pending
// explicit scoring.
func DefaultDimensionScores() DimensionScores {
	return DimensionScores{
		EmotionalNeeds:  5,
		RevenueImpact:   5,
		DrasticChange:   5,
		PilotComplexity: 5,
		PeopleBuild:     5,
		TechnologyCapex: 5,
	}
}

// Classification is the derived rubric output. ValueScore and EffortScore are
// rounded to one decimal place.
type Classification struct {
	ValueScore  float64 `json:"valueScore"`
	EffortScore float64 `json:"effortScore"`
	Quadrant    string  `json:"quadrant"`
}

// Validate rejects any dimension outside [1, 10].
func (d DimensionScores) Validate() error {
	for _, dim := range []struct {
		name  string
		score int
	}{
		{"emotionalNeeds", d.EmotionalNeeds},
		{"revenueImpact", d.RevenueImpact},
		{"drasticChange", d.DrasticChange},
		{"pilotComplexity", d.PilotComplexity},
		{"peopleBuild", d.PeopleBuild},
		{"technologyCapex", d.TechnologyCapex},
	} {
		if dim.score < 1 || dim.score > 10 {
			return fmt.Errorf("dimension %s must be between 1 and 10, got %d", dim.name, dim.score)
		}
	}
	return nil
}

// Clamp forces every dimension into [1, 10]. Used for advisor proposals,
// which are suggestions rather than commands.
func (d DimensionScores) Clamp() DimensionScores {
	clamp := func(v int) int {
		if v < 1 {
			return 1
		}
		if v > 10 {
			return 10
		}
		return v
	}
	return DimensionScores{
		EmotionalNeeds:  clamp(d.EmotionalNeeds),
		RevenueImpact:   clamp(d.RevenueImpact),
		DrasticChange:   clamp(d.DrasticChange),
		PilotComplexity: clamp(d.PilotComplexity),
		PeopleBuild:     clamp(d.PeopleBuild),
		TechnologyCapex: clamp(d.TechnologyCapex),
	}
}

// Classify computes the normalized value and effort scores and the strategic
// quadrant. Pure: identical inputs always produce identical output, so it is
// recomputed whenever any dimension changes rather than cached.
func Classify(d DimensionScores) Classification {
	value := (float64(d.EmotionalNeeds)*WeightEmotionalNeeds + float64(d.RevenueImpact)*WeightRevenueImpact) / valueWeightSum
	effort := (float64(d.DrasticChange)*WeightDrasticChange +
		float64(d.PilotComplexity)*WeightPilotComplexity +
		float64(d.PeopleBuild)*WeightPeopleBuild +
		float64(d.TechnologyCapex)*WeightTechnologyCapex) / effortWeightSum

	value = round1(value)
	effort = round1(effort)

	highValue := value >= HighValueThreshold
	highEffort := effort >= HighEffortThreshold

	var quadrant string
	switch {
	case highValue && !highEffort:
		quadrant = QuadrantQuickWins
	case highValue && highEffort:
		quadrant = QuadrantBigBets
	case !highValue && !highEffort:
		quadrant = QuadrantLowPriority
	default:
		quadrant = QuadrantParkingLot
	}

	return Classification{ValueScore: value, EffortScore: effort, Quadrant: quadrant}
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
