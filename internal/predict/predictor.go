package predict

import (
	"errors"

	"github.com/shopspring/decimal"
)

// Column names shared by the dataset, the encoders and the model feature orders.
const (
	ColAge               = "Age"
	ColGender            = "Gender"
	ColAcademicLevel     = "Academic_Level"
	ColCountry           = "Country"
	ColDailyUsage        = "Avg_Daily_Usage_Hours"
	ColPlatform          = "Most_Used_Platform"
	ColAffectsAcademics  = "Affects_Academic_Performance"
	ColSleepHours        = "Sleep_Hours_Per_Night"
	ColRelationship      = "Relationship_Status"
	ColConflicts         = "Conflicts_Over_Social_Media"
	ColAddictedScore     = "Addicted_Score"
	ColMentalHealthScore = "Mental_Health_Score"
)

// DefaultSelfAssessment is used when the form leaves the self-perceived addiction empty.
const DefaultSelfAssessment = 5

var ErrModelsUnavailable = errors.New("prediction models are not loaded")

// Input is one student's survey answers.
type Input struct {
	Age                        int
	Gender                     string
	AcademicLevel              string
	Country                    string
	AvgDailyUsageHours         float64
	MostUsedPlatform           string
	AffectsAcademicPerformance string
	SleepHoursPerNight         float64
	RelationshipStatus         string
	ConflictsOverSocialMedia   int
	// SelfPerceivedAddiction (1-10) stands in for the addiction score the regressor was trained with.
	SelfPerceivedAddiction int
}

type Result struct {
	MentalHealthScore      float64
	AddictionRisk          string // "High" or "Low"
	AddictionProbability   float64
	PopulationDistribution []int
}

type Predictor struct {
	Bundle       *Bundle
	Distribution []int
}

func (p *Predictor) features(in Input) map[string]float64 {
	b := p.Bundle
	return map[string]float64{
		ColAge:              float64(in.Age),
		ColGender:           b.Encode(ColGender, in.Gender),
		ColAcademicLevel:    b.Encode(ColAcademicLevel, in.AcademicLevel),
		ColCountry:          b.Encode(ColCountry, in.Country),
		ColDailyUsage:       in.AvgDailyUsageHours,
		ColPlatform:         b.Encode(ColPlatform, in.MostUsedPlatform),
		ColAffectsAcademics: b.Encode(ColAffectsAcademics, in.AffectsAcademicPerformance),
		ColSleepHours:       in.SleepHoursPerNight,
		ColRelationship:     b.Encode(ColRelationship, in.RelationshipStatus),
		ColConflicts:        float64(in.ConflictsOverSocialMedia),
	}
}

// Predict estimates the mental health score first and feeds it to the addiction classifier.
func (p *Predictor) Predict(in Input) (*Result, error) {
	if p == nil || p.Bundle == nil {
		return nil, ErrModelsUnavailable
	}
	if in.SelfPerceivedAddiction == 0 {
		in.SelfPerceivedAddiction = DefaultSelfAssessment
	}

	features := p.features(in)
	features[ColAddictedScore] = float64(in.SelfPerceivedAddiction)
	mentalHealth, err := p.Bundle.Regressor.Decision(features)
	if err != nil {
		return nil, err
	}

	delete(features, ColAddictedScore)
	features[ColMentalHealthScore] = mentalHealth
	prob, err := p.Bundle.Classifier.Probability(features)
	if err != nil {
		return nil, err
	}

	risk := "Low"
	if prob >= 0.5 {
		risk = "High"
	}

	return &Result{
		MentalHealthScore:      round(mentalHealth, 2),
		AddictionRisk:          risk,
		AddictionProbability:   round(prob*100, 1),
		PopulationDistribution: p.Distribution,
	}, nil
}

func round(v float64, places int32) float64 {
	return decimal.NewFromFloat(v).Round(places).InexactFloat64()
}
