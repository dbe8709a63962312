// cmd/tools/registry-updater/main.go
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"churn-dashboard/internal/dashboard/form"
	"churn-dashboard/pkg/registry"
)

var registryPath string

func main() {
	exportCmd := flag.NewFlagSet("export", flag.ExitOnError)
	updateCmd := flag.NewFlagSet("update", flag.ExitOnError)
	validateCmd := flag.NewFlagSet("validate", flag.ExitOnError)

	for _, fs := range []*flag.FlagSet{exportCmd, updateCmd, validateCmd} {
		fs.StringVar(&registryPath, "path", "configs/fields.json", "Path to field registry file")
	}

	// Update command flags
	name := updateCmd.String("name", "", "Field name (e.g., Balance)")
	attr := updateCmd.String("attr", "", "Attribute to update (label, kind, group, min, max, step)")
	value := updateCmd.String("value", "", "New value for the attribute")

	if len(os.Args) < 2 {
		help()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "export":
		exportCmd.Parse(os.Args[2:])
		if err := exportRegistry(); err != nil {
			fmt.Printf("Error exporting registry: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Wrote built-in registry to %s\n", registryPath)

	case "update":
		updateCmd.Parse(os.Args[2:])
		if *name == "" || *attr == "" {
			fmt.Println("Error: name and attr are required for update.")
			updateCmd.Usage()
			os.Exit(1)
		}
		if err := updateField(*name, *attr, *value); err != nil {
			fmt.Printf("Error updating field: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Updated field %s, %s to %q\n", *name, *attr, *value)

	case "validate":
		validateCmd.Parse(os.Args[2:])
		if err := validateRegistry(); err != nil {
			fmt.Printf("Registry validation failed: %v\n", err)
			os.Exit(1)
		}

	case "help":
		fallthrough
	default:
		help()
	}
}

func exportRegistry() error {
	if _, err := os.Stat(registryPath); err == nil {
		return fmt.Errorf("%s already exists", registryPath)
	}
	reg := registry.Default()
	reg.LastUpdated = time.Now().Format("2006-01-02")
	return saveRegistry(reg, registryPath)
}

func updateField(name, attr, value string) error {
	reg, err := registry.LoadRegistry(registryPath)
	if err != nil {
		return fmt.Errorf("failed to load registry: %w", err)
	}

	found := false
	for i := range reg.Fields {
		if reg.Fields[i].Name != name {
			continue
		}
		found = true
		f := &reg.Fields[i]
		switch attr {
		case "label":
			f.Label = value
		case "kind":
			switch value {
			case registry.KindNumber, registry.KindRange, registry.KindSelect, registry.KindCheckbox, registry.KindText:
				f.Kind = value
			default:
				return fmt.Errorf("unknown kind: %s", value)
			}
		case "group":
			f.Group = value
		case "min", "max", "step":
			bound, err := parseBound(value)
			if err != nil {
				return fmt.Errorf("invalid %s value: %w", attr, err)
			}
			switch attr {
			case "min":
				f.Min = bound
			case "max":
				f.Max = bound
			default:
				f.Step = bound
			}
		default:
			return fmt.Errorf("unknown attribute: %s", attr)
		}
		break
	}

	if !found {
		return fmt.Errorf("field %s not found", name)
	}

	reg.LastUpdated = time.Now().Format("2006-01-02")
	return saveRegistry(reg, registryPath)
}

// parseBound reads a numeric bound; an empty value clears it.
func parseBound(value string) (*float64, error) {
	if value == "" {
		return nil, nil
	}
	n, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func validateRegistry() error {
	reg, err := registry.LoadRegistry(registryPath)
	if err != nil {
		return fmt.Errorf("failed to load registry: %w", err)
	}

	names := make([]string, 0, len(form.Fields()))
	for _, f := range form.Fields() {
		names = append(names, string(f))
	}
	if missing := reg.Missing(names); len(missing) > 0 {
		return fmt.Errorf("registry is missing fields: %v", missing)
	}
	for _, f := range reg.Fields {
		if _, ok := form.Lookup(f.Name); !ok {
			return fmt.Errorf("registry describes unknown field: %s", f.Name)
		}
		if f.Label == "" {
			return fmt.Errorf("field %s missing required attribute: label", f.Name)
		}
		if f.Kind == registry.KindSelect && len(f.Options) == 0 {
			return fmt.Errorf("select field %s has no options", f.Name)
		}
	}

	fmt.Printf("Registry validation passed. Found %d fields.\n", len(reg.Fields))
	return nil
}

// saveRegistry handles saving the registry to file
func saveRegistry(reg *registry.FieldRegistry, path string) error {
	data, err := json.MarshalIndent(reg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal registry: %w", err)
	}

	// Create directory if it doesn't exist
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write registry file: %w", err)
	}
	return nil
}

func help() {
	fmt.Print(`
Usage: registry-updater <command> [flags]

Commands:
  export   Write the built-in field registry to a file for editing
  update   Update one attribute of a field
  validate Validate a registry file against the form fields
  help     Show this help message

Examples:
  registry-updater export -path configs/fields.json
  registry-updater update -path configs/fields.json -name Balance -attr max -value 300000
  registry-updater validate -path configs/fields.json

Start the dashboard with FIELD_REGISTRY_PATH=configs/fields.json to use the file.

Use 'registry-updater <command> -h' for more information about a command.
`)
}
