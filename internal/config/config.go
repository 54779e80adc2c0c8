// Package config loads the service configuration, including the sequence
// declaration itself, from a YAML file with environment overrides.
package config

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/viper"

	"github.com/modelseq/go-modelseq/pkg/log"
	"github.com/modelseq/go-modelseq/pkg/sequence"
)

// Config is the root configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Log      log.Config     `mapstructure:"log"`
	Engine   EngineConfig   `mapstructure:"engine"`
	Sequence SequenceConfig `mapstructure:"sequence"`
}

// ServerConfig is the HTTP listener configuration.
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// Addr returns the listen address.
func (c ServerConfig) Addr() string {
	host := c.Host
	if host == "" {
		host = "0.0.0.0"
	}
	port := c.Port
	if port == 0 {
		port = 8092
	}

	return fmt.Sprintf("%s:%d", host, port)
}

// EngineConfig tunes verification and batch behaviour.
type EngineConfig struct {
	// Strict rejects caller-supplied fields outside the step contract.
	Strict bool `mapstructure:"strict"`
	// BatchWorkers bounds concurrent batch rows; <=0 means 1.
	BatchWorkers int `mapstructure:"batch_workers"`
	// BatchFailFast aborts a batch on the first row failure.
	BatchFailFast bool `mapstructure:"batch_fail_fast"`
}

// SequenceConfig is the declarative sequence, mirroring the wire shapes of
// pkg/sequence.
type SequenceConfig struct {
	Name    string       `mapstructure:"name"`
	Version string       `mapstructure:"version"`
	Steps   []StepConfig `mapstructure:"steps"`
}

// StepConfig declares one step.
type StepConfig struct {
	ID             string          `mapstructure:"id"`
	Name           string          `mapstructure:"name"`
	Description    string          `mapstructure:"description"`
	InputFeatures  []FeatureConfig `mapstructure:"input_features"`
	OutputTemplate []FeatureConfig `mapstructure:"output_template"`
}

// FeatureConfig declares one field template.
type FeatureConfig struct {
	Name    string `mapstructure:"name"`
	Type    string `mapstructure:"type"`
	Default any    `mapstructure:"default_value"`
}

// Load reads the configuration file. Environment variables prefixed with
// MODELSEQ_ override file values (MODELSEQ_SERVER_PORT=9000 overrides
// server.port).
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetEnvPrefix("modelseq")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, errors.Wrap(err, "unable to read configuration file")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "unable to parse configuration file")
	}

	return &cfg, nil
}

// Spec converts the declarative sequence into the engine's spec type. The
// result still has to pass sequence validation.
func (c *SequenceConfig) Spec() *sequence.Spec {
	spec := &sequence.Spec{
		Name:    c.Name,
		Version: c.Version,
	}
	for _, step := range c.Steps {
		spec.Steps = append(spec.Steps, sequence.StepSpec{
			ID:             step.ID,
			Name:           step.Name,
			Description:    step.Description,
			InputFeatures:  features(step.InputFeatures),
			OutputTemplate: features(step.OutputTemplate),
		})
	}

	return spec
}

func features(configs []FeatureConfig) []sequence.FieldTemplate {
	templates := make([]sequence.FieldTemplate, 0, len(configs))
	for _, cfg := range configs {
		templates = append(templates, sequence.FieldTemplate{
			Name:    cfg.Name,
			Type:    sequence.Kind(cfg.Type),
			Default: cfg.Default,
		})
	}

	return templates
}
