// pkg/registry/schema.go
package registry

// Input kinds understood by the form state holder.
const (
	KindNumber   = "number"
	KindRange    = "range"
	KindSelect   = "select"
	KindCheckbox = "checkbox"
	KindText     = "text"
)

// FieldRegistry describes how each customer attribute is presented and edited.
type FieldRegistry struct {
	Version     string            `json:"version"`
	LastUpdated string            `json:"lastUpdated"`
	Fields      []FieldDescriptor `json:"fields"`
}

type FieldDescriptor struct {
	Name    string   `json:"name"`
	Label   string   `json:"label"`
	Kind    string   `json:"kind"`
	Group   string   `json:"group"`
	Options []string `json:"options,omitempty"`
	Min     *float64 `json:"min,omitempty"`
	Max     *float64 `json:"max,omitempty"`
	Step    *float64 `json:"step,omitempty"`
}
