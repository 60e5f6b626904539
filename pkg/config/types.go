package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// ToolkitConfig representa a estrutura raiz do arquivo YAML de leitura.
type ToolkitConfig struct {
	Version string      `yaml:"version" validate:"required"`
	Table   TableConf   `yaml:"table" validate:"required"`
	Reader  ReaderConf  `yaml:"reader"`
	Logging LoggingConf `yaml:"logging"`
	Metrics MetricsConf `yaml:"metrics"`
}

// TableConf identifica a tabela (ou índice) alvo das leituras.
type TableConf struct {
	Name    string `yaml:"name" validate:"required" env:"DYNAMODB_TABLE_NAME"`
	HashKey string `yaml:"hash_key" env:"DYNAMODB_HASH_KEY"`
	SortKey string `yaml:"sort_key" env:"DYNAMODB_SORT_KEY"`
	Index   string `yaml:"index"`
	Region  string `yaml:"region" env:"AWS_REGION"`
}

// ReaderConf contém os knobs de paginação e retry.
type ReaderConf struct {
	PageSize       int32   `yaml:"page_size" validate:"gte=0"`
	RecordLimit    int     `yaml:"record_limit" validate:"gte=0"`
	Segments       int     `yaml:"segments" validate:"gte=0"`
	Consistent     bool    `yaml:"consistent"`
	MaxAttempts    int     `yaml:"max_attempts" validate:"gte=0"`
	InitialBackoff string  `yaml:"initial_backoff"` // Ex: "50ms", "1s"
	MaxBackoff     string  `yaml:"max_backoff"`
	Multiplier     float64 `yaml:"multiplier" validate:"gte=0"`
}

// GetInitialBackoff converte o intervalo inicial, com default de 50ms.
func (r ReaderConf) GetInitialBackoff() time.Duration {
	d, err := time.ParseDuration(r.InitialBackoff)
	if err != nil || d <= 0 {
		return 50 * time.Millisecond
	}
	return d
}

// GetMaxBackoff converte o teto de espera, com default de 2s.
func (r ReaderConf) GetMaxBackoff() time.Duration {
	d, err := time.ParseDuration(r.MaxBackoff)
	if err != nil || d <= 0 {
		return 2 * time.Second
	}
	return d
}

type LoggingConf struct {
	Enabled bool   `yaml:"enabled"`
	Level   string `yaml:"level" validate:"omitempty,oneof=debug info warn error"`
	Format  string `yaml:"format" validate:"omitempty,oneof=json console"`
}

type MetricsConf struct {
	Datadog DatadogConf `yaml:"datadog"`
}

type DatadogConf struct {
	Enabled   bool   `yaml:"enabled" env:"DD_ENABLED"`
	Addr      string `yaml:"addr" env:"DD_AGENT_HOST" validate:"required_if=Enabled true"`
	Namespace string `yaml:"namespace"`
}

// Load lê e valida um ToolkitConfig a partir de um arquivo YAML.
func Load(path string) (*ToolkitConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("falha ao ler configuração %s: %w", path, err)
	}
	var cfg ToolkitConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("falha ao interpretar configuração %s: %w", path, err)
	}
	if err := NewValidator().Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
