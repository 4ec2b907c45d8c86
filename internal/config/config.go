// Package config loads layered configuration: struct defaults, an optional YAML file,
// then COMPLIANCE_* environment variables.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/Boakye-20/ai-compliance-tool/internal/models"
)

// EnvPrefix is stripped from environment variable names. A double underscore separates
// levels, so COMPLIANCE_LLM__API_KEY sets llm.api_key.
const EnvPrefix = "COMPLIANCE_"

type Config struct {
	Environment string `koanf:"environment" validate:"required"`
	LogLevel    string `koanf:"log_level" validate:"oneof=debug info warn warning error"`

	Server   ServerConfig   `koanf:"server"`
	LLM      LLMConfig      `koanf:"llm"`
	GCP      GCPConfig      `koanf:"gcp"`
	Pipeline PipelineConfig `koanf:"pipeline"`
	Store    StoreConfig    `koanf:"store"`
}

type ServerConfig struct {
	Port           int           `koanf:"port" validate:"min=1,max=65535"`
	ReadTimeout    time.Duration `koanf:"read_timeout"`
	WriteTimeout   time.Duration `koanf:"write_timeout"`
	MaxUploadBytes int64         `koanf:"max_upload_bytes" validate:"min=1"`
}

type LLMConfig struct {
	Provider          string        `koanf:"provider" validate:"oneof=perplexity gemini vertex"`
	APIKey            string        `koanf:"api_key"`
	BaseURL           string        `koanf:"base_url" validate:"omitempty,url"`
	Timeout           time.Duration `koanf:"timeout"`
	RequestsPerSecond float64       `koanf:"requests_per_second" validate:"min=0"`
	Burst             int           `koanf:"burst" validate:"min=1"`
	FastModel         string        `koanf:"fast_model"`
	AnalysisModel     string        `koanf:"analysis_model"`
	ReasoningModel    string        `koanf:"reasoning_model"`
}

type GCPConfig struct {
	ProjectID           string `koanf:"project_id"`
	Region              string `koanf:"region"`
	FirestoreDatabase   string `koanf:"firestore_database"`
	FirestoreCollection string `koanf:"firestore_collection"`
	ReportBucket        string `koanf:"report_bucket"`
	WorkflowID          string `koanf:"workflow_id"`
	WorkflowLocation    string `koanf:"workflow_location"`
}

type PipelineConfig struct {
	Concurrency           int           `koanf:"concurrency" validate:"min=1,max=4"`
	EvaluationTimeout     time.Duration `koanf:"evaluation_timeout"`
	MaxPages              int           `koanf:"max_pages" validate:"min=1"`
	FullTextChars         int           `koanf:"full_text_chars" validate:"min=1"`
	ExtractionPromptChars int           `koanf:"extraction_prompt_chars" validate:"min=1"`
	DefaultFrameworks     []string      `koanf:"default_frameworks"`
}

type StoreConfig struct {
	Backend       string        `koanf:"backend" validate:"oneof=memory redis firestore"`
	TTL           time.Duration `koanf:"ttl"`
	RedisAddr     string        `koanf:"redis_addr"`
	RedisPassword string        `koanf:"redis_password"`
	RedisDB       int           `koanf:"redis_db" validate:"min=0"`
}

// Defaults returns the configuration used when nothing else is set.
func Defaults() *Config {
	return &Config{
		Environment: "development",
		LogLevel:    "info",
		Server: ServerConfig{
			Port:           8080,
			ReadTimeout:    30 * time.Second,
			WriteTimeout:   10 * time.Minute,
			MaxUploadBytes: 32 << 20,
		},
		LLM: LLMConfig{
			Provider:          "perplexity",
			Timeout:           2 * time.Minute,
			RequestsPerSecond: 1,
			Burst:             2,
		},
		GCP: GCPConfig{
			FirestoreCollection: "analysis_jobs",
			WorkflowLocation:    "us-central1",
		},
		Pipeline: PipelineConfig{
			Concurrency:           2,
			EvaluationTimeout:     120 * time.Second,
			MaxPages:              30,
			FullTextChars:         50000,
			ExtractionPromptChars: 15000,
			DefaultFrameworks:     []string{"ICO", "DPA", "EU_AI_ACT", "ISO_42001"},
		},
		Store: StoreConfig{
			Backend: "memory",
			TTL:     24 * time.Hour,
		},
	}
}

// Load builds the configuration. path may be empty, in which case only defaults and
// the environment are used.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(Defaults(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("loading defaults: %w", err)
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("loading config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("loading environment variables: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks field constraints and the combinations a struct tag can't express.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if c.LLM.Provider == "vertex" && (c.GCP.ProjectID == "" || c.GCP.Region == "") {
		return fmt.Errorf("invalid config: llm.provider vertex requires gcp.project_id and gcp.region")
	}
	if c.Store.Backend == "firestore" && c.GCP.ProjectID == "" {
		return fmt.Errorf("invalid config: store.backend firestore requires gcp.project_id")
	}
	if c.Store.Backend == "redis" && c.Store.RedisAddr == "" {
		return fmt.Errorf("invalid config: store.backend redis requires store.redis_addr")
	}
	if c.GCP.WorkflowID != "" && c.GCP.ProjectID == "" {
		return fmt.Errorf("invalid config: gcp.workflow_id requires gcp.project_id")
	}
	if _, err := models.ParseFrameworks(c.Pipeline.DefaultFrameworks); err != nil {
		return fmt.Errorf("invalid config: pipeline.default_frameworks: %w", err)
	}
	return nil
}

// DefaultFrameworks returns the parsed pipeline.default_frameworks.
func (c *Config) DefaultFrameworks() []models.Framework {
	fs, _ := models.ParseFrameworks(c.Pipeline.DefaultFrameworks)
	return fs
}
