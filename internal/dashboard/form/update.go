// internal/dashboard/form/update.go
package form

import (
	"fmt"
	"strings"

	"churn-dashboard/pkg/registry"
)

// Update returns a copy of state with exactly one field changed. Flag fields
// and checkbox inputs are normalised to 1 or 0 whatever kind is given; every
// other value is stored raw and left to Parse. An unknown field returns state
// unchanged together with ErrUnknownField.
func Update(state FormData, name string, raw interface{}, kind string) (FormData, error) {
	i := indexOf(Field(name))
	if i < 0 {
		return state, fmt.Errorf("%w: %q", ErrUnknownField, name)
	}

	next := state
	if kind == registry.KindCheckbox || IsFlag(Field(name)) {
		next.values[i] = checkedValue(raw)
	} else {
		next.values[i] = raw
	}
	return next, nil
}

// IsFlag reports whether f only ever holds 0 or 1.
func IsFlag(f Field) bool {
	return f == HasCrCard || f == IsActiveMember
}

func checkedValue(raw interface{}) int {
	switch v := raw.(type) {
	case bool:
		if v {
			return 1
		}
	case int:
		if v != 0 {
			return 1
		}
	case int64:
		if v != 0 {
			return 1
		}
	case float64:
		if v != 0 {
			return 1
		}
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "true", "on", "checked", "yes":
			return 1
		}
	}
	return 0
}
