package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFeatures_Defaults(t *testing.T) {
	dir := newProject(t, "", nil)

	out, err := execute(t, dir, "features")
	require.NoError(t, err)

	assert.Contains(t, out, "Language features (")
	for _, name := range []string{"pipelineOperators", "operatorOverloading", "matchExpressions", "withUpdates", "linqQueries", "autoProperties"} {
		assert.Contains(t, out, "✓ "+name+"\n")
	}
	assert.Contains(t, out, "✗ enhancedTypes\n")
}

func TestFeatures_JSONReflectsConfig(t *testing.T) {
	dir := newProject(t, `{"languageFeatures": {"linqQueries": false, "enhancedTypes": true}}`, nil)

	out, err := execute(t, dir, "--format", "json", "features")
	require.NoError(t, err)

	var result FeaturesResult
	decodeResponse(t, out, &result)
	assert.Contains(t, result.Config, "csconfig.json")
	assert.Equal(t, []FeatureState{
		{"pipelineOperators", true},
		{"operatorOverloading", true},
		{"matchExpressions", true},
		{"withUpdates", true},
		{"linqQueries", false},
		{"autoProperties", true},
		{"enhancedTypes", true},
	}, result.Features)
}
