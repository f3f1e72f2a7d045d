// Package formatter renders run results for terminals and machine
// consumers.
package formatter

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"gopkg.in/yaml.v3"

	"github.com/rhacs-labs/acs-ops/internal/types"
)

// Formatter defines the interface for formatting run results
type Formatter interface {
	Format(run *types.RunResult) (string, error)
}

// Type represents the type of formatter
type Type string

const (
	// TypeJSON formats the run as JSON
	TypeJSON Type = "json"
	// TypeYAML formats the run as YAML
	TypeYAML Type = "yaml"
	// TypeTable formats the run as a table
	TypeTable Type = "table"
)

// JSON implements JSON formatting
type JSON struct{}

// YAML implements YAML formatting
type YAML struct{}

// Table implements table formatting
type Table struct{}

// Format formats the run as JSON
func (j *JSON) Format(run *types.RunResult) (string, error) {
	bytes, err := json.MarshalIndent(run, "", "  ")
	if err != nil {
		return "", fmt.Errorf("error formatting as JSON: %w", err)
	}
	return string(bytes), nil
}

// Format formats the run as YAML
func (y *YAML) Format(run *types.RunResult) (string, error) {
	bytes, err := yaml.Marshal(run)
	if err != nil {
		return "", fmt.Errorf("error formatting as YAML: %w", err)
	}
	return string(bytes), nil
}

// Format renders the run as a summary table followed by one row per
// step, in execution order
func (t *Table) Format(run *types.RunResult) (string, error) {
	if run == nil {
		return "", fmt.Errorf("no run result to format")
	}

	summary := table.NewWriter()
	summary.SetStyle(table.StyleLight)
	summary.SetTitle("RUN SUMMARY")
	summary.AppendHeader(table.Row{"KEY", "VALUE"})
	summary.AppendRow(table.Row{"RUN ID", run.ID})
	summary.AppendRow(table.Row{"SEQUENCE", run.Sequence})
	summary.AppendRow(table.Row{"STARTED", time.Unix(run.StartedAt, 0).UTC().Format(time.RFC3339)})
	summary.AppendRow(table.Row{"DURATION", (time.Duration(run.FinishedAt-run.StartedAt) * time.Second).String()})
	summary.AppendRow(table.Row{"STEPS", len(run.Outcomes)})
	summary.AppendRow(table.Row{"FAILED", run.Failed()})
	summary.AppendRow(table.Row{"WARNINGS", run.Warned()})
	summary.AppendRow(table.Row{"ABORTED", run.Aborted})

	steps := table.NewWriter()
	steps.SetStyle(table.StyleLight)
	steps.SetTitle("STEPS")
	steps.AppendHeader(table.Row{"STEP", "KIND", "TARGET", "RESULT", "DETAIL", "MESSAGE"})
	steps.SetColumnConfigs([]table.ColumnConfig{
		{Name: "MESSAGE", WidthMax: 60},
		{Name: "RESULT", Transformer: colorizeResult},
	})

	for _, o := range run.Outcomes {
		steps.AppendRow(table.Row{o.Step, o.Kind, o.Identity, string(o.Result), o.Detail, o.Message})
	}

	out := summary.Render() + "\n\n" + steps.Render() + "\n"

	for _, o := range run.Outcomes {
		if o.Result == types.ResultFail && o.Remediation != "" {
			out += fmt.Sprintf("remediation for %s: %s\n", o.Step, o.Remediation)
		}
	}
	return out, nil
}

// colorizeResult highlights the result column
func colorizeResult(val interface{}) string {
	s := fmt.Sprint(val)
	switch types.Result(s) {
	case types.ResultPass:
		return text.FgGreen.Sprint(s)
	case types.ResultFail:
		return text.FgRed.Sprint(s)
	case types.ResultWarn:
		return text.FgYellow.Sprint(s)
	}
	return s
}

// ParseType converts a string to a Type
func ParseType(s string) (Type, error) {
	switch Type(s) {
	case TypeJSON, TypeYAML, TypeTable:
		return Type(s), nil
	default:
		return "", fmt.Errorf("unknown formatter type: %s", s)
	}
}

// NewFormatter creates a new formatter of the specified type
func NewFormatter(t Type) (Formatter, error) {
	switch t {
	case TypeJSON:
		return &JSON{}, nil
	case TypeYAML:
		return &YAML{}, nil
	case TypeTable:
		return &Table{}, nil
	default:
		return nil, fmt.Errorf("unknown formatter type: %s", t)
	}
}
