// internal/dashboard/view/render.go
package view

import (
	"fmt"
	"math"

	apperrors "churn-dashboard/internal/common/errors"
	"churn-dashboard/internal/dashboard/predictor"
)

const (
	PlaceholderText = "Enter customer parameters to generate AI prediction."

	RecommendationHighRisk = "⚠️ High Risk: Customer requires immediate intervention. Recommend offering a 12-month loyalty bonus or waiving upcoming fees."
	RecommendationLowRisk  = "✅ Low Risk: Customer is stable. Good candidate for cross-selling premium investment products."

	SubmitLabelIdle = "Calculate Risk"
	SubmitLabelBusy = "Analyzing..."
)

// Tone selects the alert styling of a displayed result.
type Tone string

const (
	ToneHighRisk Tone = "high-risk"
	ToneLowRisk  Tone = "low-risk"
)

// Color is the text colour used for the label and percentage.
func (t Tone) Color() string {
	if t == ToneHighRisk {
		return "red"
	}
	return "green"
}

// ResultView is the result panel plus the submit control.
type ResultView struct {
	Placeholder     bool   `json:"placeholder"`
	PlaceholderText string `json:"placeholderText,omitempty"`
	Label           string `json:"label,omitempty"`
	Percent         string `json:"percent,omitempty"`
	Tone            Tone   `json:"tone,omitempty"`
	Color           string `json:"color,omitempty"`
	Recommendation  string `json:"recommendation,omitempty"`
	Stale           bool   `json:"stale,omitempty"`

	SubmitLabel    string `json:"submitLabel"`
	SubmitDisabled bool   `json:"submitDisabled"`
}

// PageView is everything the page template needs.
type PageView struct {
	Form         map[string]interface{}  `json:"form"`
	Result       ResultView              `json:"result"`
	FieldErrors  map[string][]string     `json:"fieldErrors,omitempty"`
	Notification *apperrors.Notification `json:"notification,omitempty"`
}

// RenderResult produces the result panel for result, nil meaning no
// prediction has been received yet.
func RenderResult(result *predictor.Result, busy bool) ResultView {
	rv := ResultView{SubmitLabel: SubmitLabelIdle}
	if busy {
		rv.SubmitLabel = SubmitLabelBusy
		rv.SubmitDisabled = true
	}

	if result == nil {
		rv.Placeholder = true
		rv.PlaceholderText = PlaceholderText
		return rv
	}

	rv.Label = result.Prediction
	rv.Percent = formatPercent(result.Probability)
	if result.IsChurn() {
		rv.Tone = ToneHighRisk
		rv.Recommendation = RecommendationHighRisk
	} else {
		rv.Tone = ToneLowRisk
		rv.Recommendation = RecommendationLowRisk
	}
	rv.Color = rv.Tone.Color()
	return rv
}

// Render builds the page view for s.
func Render(s State) PageView {
	s = s.clone()

	rv := RenderResult(s.Result, s.Busy)
	rv.Stale = s.Stale()

	return PageView{
		Form:         s.Form.Values(),
		Result:       rv,
		FieldErrors:  s.FieldErrors,
		Notification: s.Failure,
	}
}

// formatPercent renders p as a percentage with one decimal, rounding halves up.
func formatPercent(p float64) string {
	return fmt.Sprintf("%.1f%%", math.Floor(p*1000+0.5)/10)
}
