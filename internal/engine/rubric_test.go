package engine

import "testing"

func TestClassifyQuickWins(t *testing.T) {
	scores := DimensionScores{
		EmotionalNeeds:  8,
		RevenueImpact:   8,
		DrasticChange:   3,
		PilotComplexity: 3,
		PeopleBuild:     3,
		TechnologyCapex: 3,
	}
	result := Classify(scores)
	if result.ValueScore != 8.0 {
		t.Errorf("valueScore = %v, want 8.0", result.ValueScore)
	}
	if result.EffortScore != 3.0 {
		t.Errorf("effortScore = %v, want 3.0", result.EffortScore)
	}
	if result.Quadrant != QuadrantQuickWins {
		t.Errorf("quadrant = %q, want %q", result.Quadrant, QuadrantQuickWins)
	}
}

func TestClassifyBigBets(t *testing.T) {
	scores := DimensionScores{9, 9, 9, 9, 9, 9}
	result := Classify(scores)
	if result.ValueScore != 9.0 || result.EffortScore != 9.0 {
		t.Errorf("scores = %v/%v, want 9.0/9.0", result.ValueScore, result.EffortScore)
	}
	if result.Quadrant != QuadrantBigBets {
		t.Errorf("quadrant = %q, want %q", result.Quadrant, QuadrantBigBets)
	}
}

func TestClassifyLowPriority(t *testing.T) {
	scores := DimensionScores{2, 2, 2, 2, 2, 2}
	result := Classify(scores)
	if result.ValueScore != 2.0 || result.EffortScore != 2.0 {
		t.Errorf("scores = %v/%v, want 2.0/2.0", result.ValueScore, result.EffortScore)
	}
	if result.Quadrant != QuadrantLowPriority {
		t.Errorf("quadrant = %q, want %q", result.Quadrant, QuadrantLowPriority)
	}
}

func TestClassifyParkingLot(t *testing.T) {
	scores := DimensionScores{
		EmotionalNeeds:  2,
		RevenueImpact:   2,
		DrasticChange:   9,
		PilotComplexity: 9,
		PeopleBuild:     9,
		TechnologyCapex: 9,
	}
	result := Classify(scores)
	if result.ValueScore != 2.0 || result.EffortScore != 9.0 {
		t.Errorf("scores = %v/%v, want 2.0/9.0", result.ValueScore, result.EffortScore)
	}
	if result.Quadrant != QuadrantParkingLot {
		t.Errorf("quadrant = %q, want %q", result.Quadrant, QuadrantParkingLot)
	}
}

func TestClassifyIsPure(t *testing.T) {
	scores := DimensionScores{7, 6, 4, 5, 3, 6}
	first := Classify(scores)
	second := Classify(scores)
	if first != second {
		t.Errorf("Classify not deterministic: %+v vs %+v", first, second)
	}
}

func TestClassifyDefaultSeed(t *testing.T) {
	result := Classify(DefaultDimensionScores())
	if result.ValueScore != 5.0 || result.EffortScore != 5.0 {
		t.Errorf("default scores = %v/%v, want 5.0/5.0", result.ValueScore, result.EffortScore)
	}
	if result.Quadrant != QuadrantLowPriority {
		t.Errorf("default quadrant = %q, want %q", result.Quadrant, QuadrantLowPriority)
	}
}

func TestValidateRange(t *testing.T) {
	valid := DimensionScores{1, 10, 5, 5, 5, 5}
	if err := valid.Validate(); err != nil {
		t.Errorf("valid scores rejected: %v", err)
	}

	low := DimensionScores{0, 5, 5, 5, 5, 5}
	if err := low.Validate(); err == nil {
		t.Error("expected error for dimension below 1")
	}

	high := DimensionScores{5, 5, 5, 5, 5, 11}
	if err := high.Validate(); err == nil {
		t.Error("expected error for dimension above 10")
	}
}

func TestClamp(t *testing.T) {
	raw := DimensionScores{
		EmotionalNeeds:  0,
		RevenueImpact:   15,
		DrasticChange:   -3,
		PilotComplexity: 10,
		PeopleBuild:     1,
		TechnologyCapex: 7,
	}
	clamped := raw.Clamp()
	want := DimensionScores{1, 10, 1, 10, 1, 7}
	if clamped != want {
		t.Errorf("Clamp = %+v, want %+v", clamped, want)
	}
	if err := clamped.Validate(); err != nil {
		t.Errorf("clamped scores fail validation: %v", err)
	}
}
