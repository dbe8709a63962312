package main

import (
	"path/filepath"
	"testing"

	"churn-dashboard/pkg/registry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func useRegistryPath(t *testing.T) string {
	t.Helper()
	prev := registryPath
	registryPath = filepath.Join(t.TempDir(), "configs", "fields.json")
	t.Cleanup(func() { registryPath = prev })
	return registryPath
}

func TestExportUpdateValidate(t *testing.T) {
	path := useRegistryPath(t)

	require.NoError(t, exportRegistry())
	require.Error(t, exportRegistry(), "export must not overwrite")

	require.NoError(t, updateField("Balance", "max", "300000"))
	require.NoError(t, updateField("Balance", "label", "Account balance"))
	require.NoError(t, validateRegistry())

	reg, err := registry.LoadRegistry(path)
	require.NoError(t, err)
	f, ok := reg.Lookup("Balance")
	require.True(t, ok)
	require.NotNil(t, f.Max)
	assert.Equal(t, 300000.0, *f.Max)
	assert.Equal(t, "Account balance", f.Label)
}

func TestUpdateField_Rejects(t *testing.T) {
	useRegistryPath(t)
	require.NoError(t, exportRegistry())

	tests := []struct {
		name  string
		field string
		attr  string
		value string
	}{
		{name: "unknown field", field: "Surname", attr: "label", value: "x"},
		{name: "unknown attribute", field: "Age", attr: "colour", value: "red"},
		{name: "unknown kind", field: "Age", attr: "kind", value: "slider"},
		{name: "non-numeric bound", field: "Age", attr: "min", value: "old"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, updateField(tt.field, tt.attr, tt.value))
		})
	}
	require.NoError(t, validateRegistry())
}

func TestValidateRegistry_EmptyLabel(t *testing.T) {
	useRegistryPath(t)
	require.NoError(t, exportRegistry())
	require.NoError(t, updateField("Age", "label", ""))

	err := validateRegistry()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "label")
}
