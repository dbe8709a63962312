package form

import (
	"encoding/json"
	"testing"

	apperrors "churn-dashboard/internal/common/errors"
	"churn-dashboard/pkg/registry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustUpdate(t *testing.T, state FormData, field string, raw interface{}) FormData {
	t.Helper()
	next, err := Update(state, field, raw, registry.Default().KindOf(field))
	require.NoError(t, err)
	return next
}

func TestParsePolicy(t *testing.T) {
	p, err := ParsePolicy("Reject")
	require.NoError(t, err)
	assert.Equal(t, PolicyReject, p)

	p, err = ParsePolicy("")
	require.NoError(t, err)
	assert.Equal(t, PolicyPassthrough, p)

	_, err = ParsePolicy("strict")
	require.Error(t, err)
}

func TestParse_CoercesWireTypes(t *testing.T) {
	state := mustUpdate(t, Defaults(), "Age", "41")
	state = mustUpdate(t, state, "Balance", "1234.5")
	state = mustUpdate(t, state, "Geography", "Spain")

	payload, result, err := Parse(state, PolicyReject)
	require.NoError(t, err)
	assert.True(t, result.Valid)

	require.Len(t, payload, 10)
	assert.Equal(t, 41, payload["Age"])
	assert.Equal(t, 1234.5, payload["Balance"])
	assert.Equal(t, 600, payload["CreditScore"])
	assert.Equal(t, 50000.0, payload["EstimatedSalary"])
	assert.Equal(t, "Spain", payload["Geography"])
	assert.Equal(t, 1, payload["HasCrCard"])

	body, err := json.Marshal(payload)
	require.NoError(t, err)
	assert.Contains(t, string(body), `"Age":41`)
	assert.Contains(t, string(body), `"HasCrCard":1`)
}

func TestParse_Policies(t *testing.T) {
	outOfRange := mustUpdate(t, Defaults(), "Age", "-4")
	malformed := mustUpdate(t, Defaults(), "CreditScore", "abc")

	tests := []struct {
		name            string
		state           FormData
		policy          Policy
		expectErr       bool
		expectPayload   bool
		expectFieldErrs []string
		check           func(t *testing.T, p Payload)
	}{
		{
			name:          "passthrough sends out of range value",
			state:         outOfRange,
			policy:        PolicyPassthrough,
			expectPayload: true,
			check: func(t *testing.T, p Payload) {
				assert.Equal(t, -4, p["Age"])
			},
		},
		{
			name:          "passthrough forwards uncoercible raw value",
			state:         malformed,
			policy:        PolicyPassthrough,
			expectPayload: true,
			check: func(t *testing.T, p Payload) {
				assert.Equal(t, "abc", p["CreditScore"])
			},
		},
		{
			name:            "warn reports and still submits",
			state:           outOfRange,
			policy:          PolicyWarn,
			expectPayload:   true,
			expectFieldErrs: []string{"Age"},
		},
		{
			name:            "warn reports coercion once",
			state:           malformed,
			policy:          PolicyWarn,
			expectPayload:   true,
			expectFieldErrs: []string{"CreditScore"},
		},
		{
			name:            "reject blocks out of range",
			state:           outOfRange,
			policy:          PolicyReject,
			expectErr:       true,
			expectFieldErrs: []string{"Age"},
		},
		{
			name:            "reject blocks bad enum",
			state:           mustUpdate(t, Defaults(), "Geography", "Italy"),
			policy:          PolicyReject,
			expectErr:       true,
			expectFieldErrs: []string{"Geography"},
		},
		{
			name:            "reject blocks fractional integer",
			state:           mustUpdate(t, Defaults(), "Tenure", "2.5"),
			policy:          PolicyReject,
			expectErr:       true,
			expectFieldErrs: []string{"Tenure"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload, result, err := Parse(tt.state, tt.policy)

			if tt.expectErr {
				require.Error(t, err)
				assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeValidationFailed))
			} else {
				require.NoError(t, err)
			}
			if tt.expectPayload {
				require.Len(t, payload, 10)
			} else {
				assert.Nil(t, payload)
			}
			require.NotNil(t, result)
			assert.Equal(t, tt.expectFieldErrs, result.Fields())
			if tt.check != nil {
				tt.check(t, payload)
			}
		})
	}
}
