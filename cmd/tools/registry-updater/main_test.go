package main

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"edpsych-connect/internal/assessment"
	"edpsych-connect/pkg/registry"
)

var fixedNow = time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)

func TestSyncThenAddAndUpdate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "configs", "tool-registry.json")

	require.NoError(t, syncRegistry(path, assessment.DefaultCatalogs(), fixedNow))
	n, err := validateRegistry(path)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	require.NoError(t, addTool(path, "vr-environments", registry.Tool{
		Name:        "generate-environment",
		Description: "Creates personalized virtual environments",
		Status:      registry.StatusPlanned,
	}, fixedNow))
	require.Error(t, addTool(path, "vr-environments", registry.Tool{
		Name:        "generate-environment",
		Description: "duplicate",
		Status:      registry.StatusPlanned,
	}, fixedNow))

	require.NoError(t, updateTool(path, "vr-environments", "generate-environment", "status", registry.StatusAvailable, fixedNow))
	assert.Error(t, updateTool(path, "vr-environments", "generate-environment", "colour", "blue", fixedNow))
	assert.Error(t, updateTool(path, "vr-environments", "missing", "status", registry.StatusAvailable, fixedNow))

	reg, err := registry.LoadRegistry(path)
	require.NoError(t, err)
	assert.Equal(t, "2025-03-14T09:00:00Z", reg.LastUpdated)
	require.Len(t, reg.Servers, 2)
	vr, ok := reg.Server("vr-environments")
	require.True(t, ok)
	assert.Equal(t, registry.StatusAvailable, vr.Tools[0].Status)

	// A second sync keeps the other servers.
	require.NoError(t, syncRegistry(path, assessment.DefaultCatalogs(), fixedNow))
	reg, err = registry.LoadRegistry(path)
	require.NoError(t, err)
	assert.Len(t, reg.Servers, 2)
}

func TestUpdateRejectsUnknownStatus(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tool-registry.json")
	require.NoError(t, addTool(path, "vr-environments", registry.Tool{
		Name: "generate-environment", Description: "x", Status: registry.StatusPlanned,
	}, fixedNow))

	assert.Error(t, updateTool(path, "vr-environments", "generate-environment", "status", "someday", fixedNow))
}

func TestValidateMissingFile(t *testing.T) {
	_, err := validateRegistry(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}
