// internal/dashboard/form/models.go
package form

import (
	"encoding/json"
	"errors"
)

// Field names one of the ten customer attributes.
type Field string

const (
	CreditScore     Field = "CreditScore"
	Geography       Field = "Geography"
	Gender          Field = "Gender"
	Age             Field = "Age"
	Tenure          Field = "Tenure"
	Balance         Field = "Balance"
	NumOfProducts   Field = "NumOfProducts"
	HasCrCard       Field = "HasCrCard"
	IsActiveMember  Field = "IsActiveMember"
	EstimatedSalary Field = "EstimatedSalary"
)

var ErrUnknownField = errors.New("unknown form field")

var fieldOrder = [fieldCount]Field{
	CreditScore, Geography, Gender, Age, Tenure,
	Balance, NumOfProducts, HasCrCard, IsActiveMember, EstimatedSalary,
}

const fieldCount = 10

// FormData holds the raw value of every field. The array backing makes
// FormData a value type: copies never share storage and the key set is fixed.
type FormData struct {
	values [fieldCount]interface{}
}

// Defaults returns the form as it is first shown.
func Defaults() FormData {
	var d FormData
	d.values[indexOf(CreditScore)] = 600
	d.values[indexOf(Geography)] = "Germany"
	d.values[indexOf(Gender)] = "Male"
	d.values[indexOf(Age)] = 40
	d.values[indexOf(Tenure)] = 3
	d.values[indexOf(Balance)] = 60000
	d.values[indexOf(NumOfProducts)] = 2
	d.values[indexOf(HasCrCard)] = 1
	d.values[indexOf(IsActiveMember)] = 1
	d.values[indexOf(EstimatedSalary)] = 50000
	return d
}

// Fields returns the field names in display order.
func Fields() []Field {
	out := make([]Field, fieldCount)
	copy(out, fieldOrder[:])
	return out
}

// Lookup resolves a field by its wire name.
func Lookup(name string) (Field, bool) {
	f := Field(name)
	return f, indexOf(f) >= 0
}

func indexOf(f Field) int {
	for i, name := range fieldOrder {
		if name == f {
			return i
		}
	}
	return -1
}

// Get returns the raw value of f, or nil for an unknown field.
func (d FormData) Get(f Field) interface{} {
	i := indexOf(f)
	if i < 0 {
		return nil
	}
	return d.values[i]
}

// Values returns a copy of all fields keyed by wire name.
func (d FormData) Values() map[string]interface{} {
	out := make(map[string]interface{}, fieldCount)
	for i, f := range fieldOrder {
		out[string(f)] = d.values[i]
	}
	return out
}

func (d FormData) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Values())
}
