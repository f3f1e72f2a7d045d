package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIdentityString(t *testing.T) {
	assert.Equal(t, "stackrox/central", Identity{Namespace: "stackrox", Name: "central"}.String())
	assert.Equal(t, "stackrox", Identity{Name: "stackrox"}.String())
}

func TestProbeResultString(t *testing.T) {
	assert.Equal(t, "Absent", Absent.String())
	assert.Equal(t, "PresentMatching", PresentMatching.String())
	assert.Equal(t, "PresentMismatched", PresentMismatched.String())
	assert.Equal(t, "Unknown", ProbeResult(42).String())
}

func TestApplyResultString(t *testing.T) {
	assert.Equal(t, "Created", Created.String())
	assert.Equal(t, "Updated", Updated.String())
	assert.Equal(t, "Unchanged", Unchanged.String())
	assert.Equal(t, "Triggered", Triggered.String())
	assert.Equal(t, "Unknown", ApplyResult(42).String())
}
