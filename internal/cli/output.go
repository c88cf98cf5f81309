// Package cli holds configuration and output helpers for the flagship CLI.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"gopkg.in/yaml.v3"

	"github.com/TimurManjosov/bucketflags/internal/flags"
)

// OutputFormat specifies the output format for CLI commands
type OutputFormat string

const (
	FormatTable OutputFormat = "table"
	FormatJSON  OutputFormat = "json"
	FormatYAML  OutputFormat = "yaml"
)

// definitionRow is the serialized form of one flag.
type definitionRow struct {
	Name    string       `json:"name" yaml:"name"`
	Scheme  flags.Scheme `json:"scheme" yaml:"scheme"`
	Enabled float64      `json:"enabled" yaml:"enabled"`
}

func rows(reg *flags.Registry) []definitionRow {
	names := reg.Names()
	out := make([]definitionRow, 0, len(names))
	for _, name := range names {
		def, _ := reg.Get(name)
		scheme := def.Scheme
		if scheme == "" {
			scheme = flags.DefaultScheme
		}
		out = append(out, definitionRow{Name: name, Scheme: scheme, Enabled: def.Enabled})
	}
	return out
}

// PrintRegistry writes the registry's flags, sorted by name, in format.
func PrintRegistry(w io.Writer, reg *flags.Registry, format OutputFormat) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]any{"etag": reg.Fingerprint(), "flags": rows(reg)})
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		defer enc.Close()
		enc.SetIndent(2)
		return enc.Encode(map[string]any{"etag": reg.Fingerprint(), "flags": rows(reg)})
	case FormatTable:
		return printTable(w, rows(reg))
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}

func printTable(w io.Writer, defs []definitionRow) error {
	table := tablewriter.NewWriter(w)
	table.Header("Name", "Scheme", "Enabled")

	for _, d := range defs {
		if err := table.Append(
			d.Name,
			string(d.Scheme),
			strconv.FormatFloat(d.Enabled*100, 'f', -1, 64)+"%",
		); err != nil {
			return err
		}
	}
	return table.Render()
}

// EvalSummary reports repeated evaluations of one flag.
type EvalSummary struct {
	Flag    string  `json:"flag" yaml:"flag"`
	Trials  int     `json:"trials" yaml:"trials"`
	Enabled int     `json:"enabled" yaml:"enabled"`
	Rate    float64 `json:"rate" yaml:"rate"`
}

// PrintEvalSummary writes s in format.
func PrintEvalSummary(w io.Writer, s EvalSummary, format OutputFormat) error {
	switch format {
	case FormatJSON:
		return json.NewEncoder(w).Encode(s)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		defer enc.Close()
		return enc.Encode(s)
	case FormatTable:
		table := tablewriter.NewWriter(w)
		table.Header("Flag", "Trials", "Enabled", "Rate")
		if err := table.Append(s.Flag, strconv.Itoa(s.Trials), strconv.Itoa(s.Enabled),
			strconv.FormatFloat(s.Rate, 'f', 4, 64)); err != nil {
			return err
		}
		return table.Render()
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}
