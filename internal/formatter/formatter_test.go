package formatter

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/rhacs-labs/acs-ops/internal/types"
	"gopkg.in/yaml.v3"
)

func sampleRun() *types.RunResult {
	return &types.RunResult{
		ID:         "0c7dce1e-9a1b-4f8a-a6cb-3a0f1d2ab111",
		Sequence:   "install",
		StartedAt:  1756500000,
		FinishedAt: 1756500180,
		Outcomes: []types.OutcomeRecord{
			{
				Step:     "namespace",
				Kind:     "namespace",
				Identity: "stackrox",
				Result:   types.ResultPass,
				Detail:   types.DetailUnchanged,
			},
			{
				Step:        "operator subscription",
				Kind:        "operator-subscription",
				Identity:    "stackrox/rhacs-operator",
				Result:      types.ResultFail,
				Detail:      types.DetailTimedOut,
				Message:     "no installed CSV after 300s",
				Remediation: "check the subscription conditions with oc describe sub",
			},
			{
				Step:     "central route",
				Kind:     "route",
				Identity: "stackrox/central",
				Result:   types.ResultWarn,
				Detail:   types.DetailTimedOut,
			},
		},
	}
}

func TestParseType(t *testing.T) {
	tests := []struct {
		input   string
		wantErr bool
	}{
		{input: "json"},
		{input: "yaml"},
		{input: "table"},
		{input: "xml", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			_, err := ParseType(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ParseType(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestJSONFormatRoundTrips(t *testing.T) {
	f, err := NewFormatter(TypeJSON)
	if err != nil {
		t.Fatal(err)
	}

	out, err := f.Format(sampleRun())
	if err != nil {
		t.Fatal(err)
	}

	var decoded types.RunResult
	if err := json.Unmarshal([]byte(out), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if decoded.Sequence != "install" {
		t.Errorf("unexpected sequence %s", decoded.Sequence)
	}
	if len(decoded.Outcomes) != 3 {
		t.Errorf("expected 3 outcomes, got %d", len(decoded.Outcomes))
	}
}

func TestYAMLFormat(t *testing.T) {
	f, err := NewFormatter(TypeYAML)
	if err != nil {
		t.Fatal(err)
	}

	out, err := f.Format(sampleRun())
	if err != nil {
		t.Fatal(err)
	}

	var decoded map[string]interface{}
	if err := yaml.Unmarshal([]byte(out), &decoded); err != nil {
		t.Fatalf("output is not valid YAML: %v", err)
	}
	if decoded["sequence"] != "install" {
		t.Errorf("unexpected sequence %v", decoded["sequence"])
	}
}

func TestTableFormat(t *testing.T) {
	f, err := NewFormatter(TypeTable)
	if err != nil {
		t.Fatal(err)
	}

	out, err := f.Format(sampleRun())
	if err != nil {
		t.Fatal(err)
	}

	for _, want := range []string{
		"RUN SUMMARY",
		"STEPS",
		"stackrox/rhacs-operator",
		"TimedOut",
		"remediation for operator subscription",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("table output missing %q", want)
		}
	}
}

func TestTableFormatNilRun(t *testing.T) {
	f := &Table{}
	if _, err := f.Format(nil); err == nil {
		t.Error("expected error for nil run")
	}
}

func TestNewFormatterUnknownType(t *testing.T) {
	if _, err := NewFormatter("csv"); err == nil {
		t.Error("expected error for unknown formatter type")
	}
}
