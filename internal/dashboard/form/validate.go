// internal/dashboard/form/validate.go
package form

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	apperrors "churn-dashboard/internal/common/errors"
	"churn-dashboard/internal/common/validation"
)

// Policy decides what happens to values that fail coercion or range checks.
type Policy string

const (
	// PolicyPassthrough performs no checks; uncoercible values are sent raw
	// and left to the prediction service.
	PolicyPassthrough Policy = "passthrough"
	// PolicyWarn reports violations but still submits.
	PolicyWarn Policy = "warn"
	// PolicyReject blocks the submission on any violation.
	PolicyReject Policy = "reject"
)

func ParsePolicy(s string) (Policy, error) {
	switch p := Policy(strings.ToLower(strings.TrimSpace(s))); p {
	case PolicyPassthrough, PolicyWarn, PolicyReject:
		return p, nil
	case "":
		return PolicyPassthrough, nil
	default:
		return "", fmt.Errorf("unknown validation policy %q", s)
	}
}

// Payload is the request body: exactly the ten fields, numbers as JSON
// numbers, enums as strings and flags as 0/1 integers.
type Payload map[string]interface{}

type wireType int

const (
	wireInt wireType = iota
	wireFloat
	wireString
)

var wireTypes = map[Field]wireType{
	CreditScore:     wireInt,
	Geography:       wireString,
	Gender:          wireString,
	Age:             wireInt,
	Tenure:          wireInt,
	Balance:         wireFloat,
	NumOfProducts:   wireInt,
	HasCrCard:       wireInt,
	IsActiveMember:  wireInt,
	EstimatedSalary: wireFloat,
}

//go:embed customer.schema.json
var customerSchemaJSON string

var customerSchema = validation.MustCompileSchema(customerSchemaJSON)

// Parse converts the raw form into a typed payload under policy. The result
// lists field-level problems (empty under PolicyPassthrough). A non-nil error
// is returned only when PolicyReject blocks the submission.
func Parse(data FormData, policy Policy) (Payload, *validation.ValidationResult, error) {
	result := &validation.ValidationResult{Valid: true}
	payload := make(Payload, fieldCount)

	for i, f := range fieldOrder {
		value, err := coerce(data.values[i], wireTypes[f])
		if err != nil {
			result.Add(string(f), err.Error(), "INVALID_TYPE")
		}
		payload[string(f)] = value
	}

	if policy == PolicyPassthrough {
		return payload, &validation.ValidationResult{Valid: true}, nil
	}

	schemaResult, err := customerSchema.Validate(map[string]interface{}(payload))
	if err != nil {
		return nil, result, err
	}
	for _, e := range schemaResult.Errors {
		if result.HasErrors(e.Field) {
			continue
		}
		result.Add(e.Field, e.Message, e.Code)
	}

	if policy == PolicyReject && !result.Valid {
		return nil, result, apperrors.NewValidationFailedError(result.Fields())
	}
	return payload, result, nil
}

// coerce returns the wire value for raw. On failure it returns raw itself so
// lenient policies can forward it.
func coerce(raw interface{}, wt wireType) (interface{}, error) {
	if wt == wireString {
		if s, ok := raw.(string); ok {
			return s, nil
		}
		return fmt.Sprint(raw), nil
	}

	n, err := toFloat(raw)
	if err != nil {
		return raw, err
	}
	if wt == wireFloat {
		return n, nil
	}
	if n != math.Trunc(n) {
		return n, fmt.Errorf("must be a whole number")
	}
	return int(n), nil
}

func toFloat(raw interface{}) (float64, error) {
	var n float64
	switch v := raw.(type) {
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case float64:
		n = v
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return 0, fmt.Errorf("must be a number")
		}
		n = f
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, fmt.Errorf("must be a number")
		}
		n = f
	default:
		return 0, fmt.Errorf("must be a number")
	}
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, fmt.Errorf("must be a finite number")
	}
	return n, nil
}
