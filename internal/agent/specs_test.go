package agent

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadSpecs(t *testing.T) {
	yaml := `agents:
  - id: cost
    description: "Cost analysis worker"
    settings:
      subscription_id: sub-42

  - id: kubernetes
    enabled: false
`
	dir := t.TempDir()
	path := filepath.Join(dir, "agents.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0644))

	specs, err := LoadSpecs(path)
	require.NoError(t, err)
	require.Len(t, specs, 2)

	assert.Equal(t, "cost", specs[0].ID)
	assert.True(t, specs[0].IsEnabled())
	assert.Equal(t, "sub-42", specs[0].Settings["subscription_id"])

	assert.Equal(t, "kubernetes", specs[1].ID)
	assert.False(t, specs[1].IsEnabled())
}

func TestLoadSpecs_MissingFile(t *testing.T) {
	specs, err := LoadSpecs(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Nil(t, specs)
}

func TestLoadSpecs_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "agents.yaml")
	require.NoError(t, os.WriteFile(path, []byte("agents: {not: a list}"), 0644))

	_, err := LoadSpecs(path)
	assert.Error(t, err)
}
