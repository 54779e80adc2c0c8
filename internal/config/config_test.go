package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/modelseq/go-modelseq/internal/config"
	"github.com/modelseq/go-modelseq/pkg/sequence"
)

const sampleConfig = `
server:
  host: 127.0.0.1
  port: 9000

log:
  level: debug
  format: text

engine:
  strict: true
  batch_workers: 8
  batch_fail_fast: true

sequence:
  name: test_sequence
  version: v0.1.0
  steps:
    - id: model_1
      name: First Model
      input_features:
        - name: in
          type: string
          default_value: start
      output_template:
        - name: score
          type: float
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "api.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestLoad(t *testing.T) {
	cfg, err := config.Load(writeConfig(t, sampleConfig))
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9000", cfg.Server.Addr())
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.True(t, cfg.Engine.Strict)
	assert.Equal(t, 8, cfg.Engine.BatchWorkers)
	assert.True(t, cfg.Engine.BatchFailFast)
	require.Len(t, cfg.Sequence.Steps, 1)
	assert.Equal(t, "model_1", cfg.Sequence.Steps[0].ID)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoadMalformedFile(t *testing.T) {
	_, err := config.Load(writeConfig(t, "server: [not a map"))
	assert.Error(t, err)
}

func TestServerAddrDefaults(t *testing.T) {
	assert.Equal(t, "0.0.0.0:8092", config.ServerConfig{}.Addr())
}

func TestSequenceConfigSpec(t *testing.T) {
	cfg, err := config.Load(writeConfig(t, sampleConfig))
	require.NoError(t, err)

	spec := cfg.Sequence.Spec()
	require.NoError(t, spec.Validate())

	assert.Equal(t, "test_sequence", spec.Name)
	assert.Equal(t, "v0.1.0", spec.Version)
	require.Len(t, spec.Steps, 1)

	step := spec.Steps[0]
	assert.Equal(t, "First Model", step.Name)
	require.Len(t, step.InputFeatures, 1)
	assert.Equal(t, sequence.FieldTemplate{
		Name:    "in",
		Type:    sequence.KindString,
		Default: "start",
	}, step.InputFeatures[0])
	require.Len(t, step.OutputTemplate, 1)
	assert.Equal(t, sequence.KindFloat, step.OutputTemplate[0].Type)
}
