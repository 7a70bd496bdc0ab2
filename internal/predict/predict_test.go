package predict

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var baseFeatures = []string{
	ColAge, ColGender, ColAcademicLevel, ColCountry, ColDailyUsage,
	ColPlatform, ColAffectsAcademics, ColSleepHours, ColRelationship, ColConflicts,
}

func identityModel(features []string, intercept float64, coef map[string]float64) LinearModel {
	m := LinearModel{FeatureOrder: features, Intercept: intercept}
	for _, f := range features {
		m.Scaler.Mean = append(m.Scaler.Mean, 0)
		m.Scaler.Scale = append(m.Scaler.Scale, 1)
		m.Coefficients = append(m.Coefficients, coef[f])
	}
	return m
}

// testBundle: mental health = 10 - 0.5*usage - 0.25*self; addiction logit = usage - 5.
func testBundle() *Bundle {
	reg := append(append([]string{}, baseFeatures...), ColAddictedScore)
	cls := []string{
		ColAge, ColGender, ColAcademicLevel, ColCountry, ColDailyUsage,
		ColPlatform, ColAffectsAcademics, ColSleepHours, ColMentalHealthScore, ColRelationship, ColConflicts,
	}
	return &Bundle{
		Encoders: map[string][]string{
			ColGender:   {"Female", "Male"},
			ColPlatform: {"Instagram", "TikTok", "YouTube"},
		},
		Regressor:  identityModel(reg, 10, map[string]float64{ColDailyUsage: -0.5, ColAddictedScore: -0.25}),
		Classifier: identityModel(cls, -5, map[string]float64{ColDailyUsage: 1}),
	}
}

func TestEncodeFallsBackToFirstClass(t *testing.T) {
	b := testBundle()
	assert.Equal(t, 1.0, b.Encode(ColGender, "Male"))
	assert.Equal(t, 2.0, b.Encode(ColPlatform, "YouTube"))
	assert.Equal(t, 0.0, b.Encode(ColPlatform, "MySpace"))
	assert.Equal(t, 0.0, b.Encode("Unknown_Column", "x"))
}

func TestDecisionAppliesScaler(t *testing.T) {
	m := LinearModel{
		FeatureOrder: []string{"a", "b"},
		Scaler:       Scaler{Mean: []float64{1, 10}, Scale: []float64{2, 0}},
		Intercept:    1,
		Coefficients: []float64{4, 1},
	}
	// (5-1)/2*4 + (12-10)/1*1 + 1; a zero scale is treated as 1
	z, err := m.Decision(map[string]float64{"a": 5, "b": 12})
	require.NoError(t, err)
	assert.InDelta(t, 11.0, z, 1e-9)

	_, err = m.Decision(map[string]float64{"a": 5})
	assert.ErrorIs(t, err, ErrMissingFeature)
}

func TestPredictChainsModels(t *testing.T) {
	p := &Predictor{Bundle: testBundle(), Distribution: []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}}

	res, err := p.Predict(Input{
		Age: 20, Gender: "Male", MostUsedPlatform: "TikTok",
		AvgDailyUsageHours: 7, SleepHoursPerNight: 6, SelfPerceivedAddiction: 8,
	})
	require.NoError(t, err)
	assert.Equal(t, 4.5, res.MentalHealthScore)
	assert.Equal(t, "High", res.AddictionRisk)
	assert.Equal(t, math.Round(100/(1+math.Exp(-2))*10)/10, res.AddictionProbability)
	assert.Len(t, res.PopulationDistribution, 10)

	low, err := p.Predict(Input{Age: 20, AvgDailyUsageHours: 1.333})
	require.NoError(t, err)
	assert.Equal(t, "Low", low.AddictionRisk)
	// default self assessment of 5: 10 - 0.6665 - 1.25
	assert.Equal(t, 8.08, low.MentalHealthScore)
}

func TestPredictWithoutModels(t *testing.T) {
	_, err := (&Predictor{}).Predict(Input{})
	assert.ErrorIs(t, err, ErrModelsUnavailable)
}

func TestLoadBundle(t *testing.T) {
	dir := t.TempDir()
	raw, err := json.Marshal(testBundle())
	require.NoError(t, err)
	path := filepath.Join(dir, BundleFile)
	require.NoError(t, os.WriteFile(path, raw, 0o644))

	b, err := LoadBundle(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"Female", "Male"}, b.Encoders[ColGender])
	assert.Len(t, b.Classifier.FeatureOrder, 11)

	broken := testBundle()
	broken.Classifier.Coefficients = broken.Classifier.Coefficients[:3]
	raw, err = json.Marshal(broken)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, raw, 0o644))
	_, err = LoadBundle(path)
	assert.ErrorContains(t, err, "addiction classifier")
}

func TestShippedSampleBundle(t *testing.T) {
	b, err := LoadBundle(filepath.Join("..", "..", "models", BundleFile))
	require.NoError(t, err)
	p := &Predictor{Bundle: b}

	heavy, err := p.Predict(Input{
		Age: 21, Gender: "Female", AcademicLevel: "Undergraduate", Country: "India",
		AvgDailyUsageHours: 8, MostUsedPlatform: "TikTok", AffectsAcademicPerformance: "Yes",
		SleepHoursPerNight: 5, RelationshipStatus: "Single", ConflictsOverSocialMedia: 4,
		SelfPerceivedAddiction: 9,
	})
	require.NoError(t, err)
	assert.Equal(t, "High", heavy.AddictionRisk)

	light, err := p.Predict(Input{
		Age: 21, Gender: "Male", AcademicLevel: "Graduate", Country: "Japan",
		AvgDailyUsageHours: 2, MostUsedPlatform: "LinkedIn", AffectsAcademicPerformance: "No",
		SleepHoursPerNight: 8.5, RelationshipStatus: "In Relationship",
		SelfPerceivedAddiction: 2,
	})
	require.NoError(t, err)
	assert.Equal(t, "Low", light.AddictionRisk)
	assert.Greater(t, light.MentalHealthScore, heavy.MentalHealthScore)
	assert.InDelta(t, 3.92, heavy.MentalHealthScore, 0.01)
	assert.InDelta(t, 9.46, light.MentalHealthScore, 0.01)
}

func TestReadDistribution(t *testing.T) {
	csv := "Student_ID,Age,Mental_Health_Score,Addicted_Score\n" +
		"1,19,6,8\n" +
		"2,20,6,7\n" +
		"3,21,10,3\n" +
		"4,22,,3\n" +
		"5,23,11,3\n"
	dist, err := ReadDistribution(strings.NewReader(csv))
	require.NoError(t, err)
	assert.Equal(t, []int{0, 0, 0, 0, 0, 2, 0, 0, 0, 1}, dist)

	_, err = ReadDistribution(strings.NewReader("a,b\n1,2\n"))
	assert.Error(t, err)
}

type stubRenderer struct{}

func (stubRenderer) Execute(w io.Writer, name string, data any) error {
	_, err := fmt.Fprintf(w, "%s %v", name, data)
	return err
}

func surveyValues() url.Values {
	return url.Values{
		"Age":                          {"20"},
		"Gender":                       {"Female"},
		"Academic_Level":               {"Undergraduate"},
		"Country":                      {"India"},
		"Avg_Daily_Usage_Hours":        {"6.5"},
		"Most_Used_Platform":           {"Instagram"},
		"Affects_Academic_Performance": {"Yes"},
		"Sleep_Hours_Per_Night":        {"6"},
		"Relationship_Status":          {"Single"},
		"Conflicts_Over_Social_Media":  {"3"},
		"Self_Perceived_Addiction":     {"7"},
	}
}

func postSurvey(h *Handler, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/predict", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr := httptest.NewRecorder()
	h.Routes().ServeHTTP(rr, req)
	return rr
}

func TestHandlerPredict(t *testing.T) {
	h := &Handler{Predictor: &Predictor{Bundle: testBundle()}, Templates: stubRenderer{}}

	rr := postSurvey(h, surveyValues())
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, strings.HasPrefix(rr.Body.String(), "result.html"), rr.Body.String())
}

func TestHandlerRerendersFormOnError(t *testing.T) {
	h := &Handler{Predictor: &Predictor{Bundle: testBundle()}, Templates: stubRenderer{}}

	form := surveyValues()
	form.Set("Age", "twenty")
	rr := postSurvey(h, form)
	assert.True(t, strings.HasPrefix(rr.Body.String(), "index.html"))
	assert.Contains(t, rr.Body.String(), "Age must be a valid number")

	form = surveyValues()
	form.Set("Self_Perceived_Addiction", "11")
	rr = postSurvey(h, form)
	assert.Contains(t, rr.Body.String(), "between 1 and 10")

	noModels := &Handler{Predictor: &Predictor{}, Templates: stubRenderer{}}
	rr = postSurvey(noModels, surveyValues())
	assert.Contains(t, rr.Body.String(), ErrModelsUnavailable.Error())
}

func TestBarsMarkPredictedScore(t *testing.T) {
	b := bars([]int{1, 2, 4, 0, 0, 0, 0, 0, 0, 0}, 2.6)
	require.Len(t, b, 10)
	assert.Equal(t, 100, b[2].Percent)
	assert.Equal(t, 50, b[1].Percent)
	assert.True(t, b[2].Current)
	assert.False(t, b[1].Current)
}
