package predict

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/Rakesh-6305/project-store/internal/validation"
)

// Renderer executes a named page template.
type Renderer interface {
	Execute(w io.Writer, name string, data any) error
}

type Handler struct {
	Predictor *Predictor
	Templates Renderer
}

type surveyForm struct {
	Age                        string `form:"Age" validate:"required,number"`
	Gender                     string `form:"Gender" validate:"required"`
	AcademicLevel              string `form:"Academic_Level" validate:"required"`
	Country                    string `form:"Country" validate:"required"`
	AvgDailyUsageHours         string `form:"Avg_Daily_Usage_Hours" validate:"required,numeric"`
	MostUsedPlatform           string `form:"Most_Used_Platform" validate:"required"`
	AffectsAcademicPerformance string `form:"Affects_Academic_Performance" validate:"required"`
	SleepHoursPerNight         string `form:"Sleep_Hours_Per_Night" validate:"required,numeric"`
	RelationshipStatus         string `form:"Relationship_Status" validate:"required"`
	ConflictsOverSocialMedia   string `form:"Conflicts_Over_Social_Media" validate:"required,number"`
	SelfPerceivedAddiction     string `form:"Self_Perceived_Addiction" validate:"omitempty,number"`
}

type bar struct {
	Score   int
	Count   int
	Percent int
	Current bool
}

func (h *Handler) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", h.Index)
	mux.HandleFunc("POST /predict", h.Predict)
	return mux
}

func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	h.render(w, "index.html", nil)
}

func (h *Handler) Predict(w http.ResponseWriter, r *http.Request) {
	in, err := parseSurvey(r)
	if err != nil {
		h.render(w, "index.html", map[string]interface{}{"Error": err.Error()})
		return
	}

	result, err := h.Predictor.Predict(in)
	if err != nil {
		slog.Error("Prediction failed", "error", err)
		h.render(w, "index.html", map[string]interface{}{"Error": err.Error()})
		return
	}

	h.render(w, "result.html", map[string]interface{}{
		"Result": result,
		"Bars":   bars(result.PopulationDistribution, result.MentalHealthScore),
	})
}

func (h *Handler) render(w http.ResponseWriter, name string, data map[string]interface{}) {
	if err := h.Templates.Execute(w, name, data); err != nil {
		slog.Error("Failed to render template", "template", name, "error", err)
		http.Error(w, "Template error", http.StatusInternalServerError)
	}
}

func parseSurvey(r *http.Request) (Input, error) {
	if err := r.ParseForm(); err != nil {
		return Input{}, err
	}
	form := surveyForm{
		Age:                        strings.TrimSpace(r.PostFormValue("Age")),
		Gender:                     r.PostFormValue("Gender"),
		AcademicLevel:              r.PostFormValue("Academic_Level"),
		Country:                    r.PostFormValue("Country"),
		AvgDailyUsageHours:         strings.TrimSpace(r.PostFormValue("Avg_Daily_Usage_Hours")),
		MostUsedPlatform:           r.PostFormValue("Most_Used_Platform"),
		AffectsAcademicPerformance: r.PostFormValue("Affects_Academic_Performance"),
		SleepHoursPerNight:         strings.TrimSpace(r.PostFormValue("Sleep_Hours_Per_Night")),
		RelationshipStatus:         r.PostFormValue("Relationship_Status"),
		ConflictsOverSocialMedia:   strings.TrimSpace(r.PostFormValue("Conflicts_Over_Social_Media")),
		SelfPerceivedAddiction:     strings.TrimSpace(r.PostFormValue("Self_Perceived_Addiction")),
	}
	if msgs := validation.Messages(form); len(msgs) > 0 {
		return Input{}, errors.New(strings.Join(msgs, "; "))
	}

	in := Input{
		Gender:                     form.Gender,
		AcademicLevel:              form.AcademicLevel,
		Country:                    form.Country,
		MostUsedPlatform:           form.MostUsedPlatform,
		AffectsAcademicPerformance: form.AffectsAcademicPerformance,
		RelationshipStatus:         form.RelationshipStatus,
		SelfPerceivedAddiction:     DefaultSelfAssessment,
	}
	var err error
	if in.Age, err = strconv.Atoi(form.Age); err != nil {
		return Input{}, fmt.Errorf("Age: %w", err)
	}
	if in.AvgDailyUsageHours, err = strconv.ParseFloat(form.AvgDailyUsageHours, 64); err != nil {
		return Input{}, fmt.Errorf("Avg_Daily_Usage_Hours: %w", err)
	}
	if in.SleepHoursPerNight, err = strconv.ParseFloat(form.SleepHoursPerNight, 64); err != nil {
		return Input{}, fmt.Errorf("Sleep_Hours_Per_Night: %w", err)
	}
	if in.ConflictsOverSocialMedia, err = strconv.Atoi(form.ConflictsOverSocialMedia); err != nil {
		return Input{}, fmt.Errorf("Conflicts_Over_Social_Media: %w", err)
	}
	if form.SelfPerceivedAddiction != "" {
		if in.SelfPerceivedAddiction, err = strconv.Atoi(form.SelfPerceivedAddiction); err != nil {
			return Input{}, fmt.Errorf("Self_Perceived_Addiction: %w", err)
		}
		if in.SelfPerceivedAddiction < 1 || in.SelfPerceivedAddiction > 10 {
			return Input{}, errors.New("Self_Perceived_Addiction must be between 1 and 10")
		}
	}
	return in, nil
}

// bars scales the distribution for the result chart and marks the bucket of the predicted score.
func bars(dist []int, score float64) []bar {
	peak := 0
	for _, n := range dist {
		peak = max(peak, n)
	}
	current := int(math.Round(score))
	out := make([]bar, len(dist))
	for i, n := range dist {
		out[i] = bar{Score: i + 1, Count: n, Current: i+1 == current}
		if peak > 0 {
			out[i].Percent = n * 100 / peak
		}
	}
	return out
}
