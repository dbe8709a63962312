// internal/dashboard/predictor/models.go
package predictor

// Labels returned by the prediction service.
const (
	LabelChurn   = "Churn"
	LabelNoChurn = "No Churn"
)

// Result is a successfully parsed prediction.
type Result struct {
	Prediction  string  `json:"prediction"`
	Probability float64 `json:"probability"`
}

// IsChurn reports whether the prediction is the high-risk label.
func (r Result) IsChurn() bool {
	return r.Prediction == LabelChurn
}

// apiResponse mirrors what the service may send back, including the error
// envelope it uses for internal failures.
type apiResponse struct {
	Prediction  *string  `json:"prediction"`
	Probability *float64 `json:"probability"`
	Error       string   `json:"error"`
}
