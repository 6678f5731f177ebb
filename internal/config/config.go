// ABOUTME: Centralized configuration for the context intelligence engine
// ABOUTME: Loads from environment variables with an optional YAML overlay for ranker tuning
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all tunables for the engine.
type Config struct {
	// Storage settings
	DBPath string

	// OpenAI settings
	OpenAIKey      string
	ChatModel      string
	EmbeddingModel string
	Timeout        time.Duration
	MaxRetries     int
	RetryDelay     time.Duration

	// Ranker weights (must sum to 1.0)
	WeightSemantic   float64
	WeightPreference float64
	WeightTemporal   float64
	WeightScope      float64

	// Ranker shape
	CrossProjectDiscount float64
	TemporalHalfLife     time.Duration

	// Profile learning
	ProfileStep          float64
	OutcomeStep          float64
	SnapshotEvery        int
	EvolutionLogMax      int
	AntiPatternFlagBelow float64

	// Pattern transfer
	LinkThreshold        float64
	AntiPatternThreshold float64
	RecomputeInterval    time.Duration

	// Retention policy
	PurgeMaxAge     time.Duration
	PurgeMaxAccess  int
	PurgeMaxOutcome float64

	// Initial outcome estimates by kind
	InitialOutcome         float64
	InitialOutcomeDecision float64

	// Embedding geometry
	VectorDimension int
}

// Load reads configuration from environment variables, then applies the YAML
// overlay named by CTXBRAIN_CONFIG when set.
func Load() (*Config, error) {
	cfg := &Config{
		// Defaults
		DBPath:                 os.Getenv("CTXBRAIN_DB_PATH"),
		OpenAIKey:              os.Getenv("OPENAI_API_KEY"),
		ChatModel:              getEnv("CTXBRAIN_CHAT_MODEL", "gpt-4o-mini"),
		EmbeddingModel:         getEnv("CTXBRAIN_EMBEDDING_MODEL", "text-embedding-3-small"),
		Timeout:                getEnvDuration("CTXBRAIN_OPENAI_TIMEOUT", 30*time.Second),
		MaxRetries:             getEnvInt("CTXBRAIN_OPENAI_MAX_RETRIES", 3),
		RetryDelay:             getEnvDuration("CTXBRAIN_OPENAI_RETRY_DELAY", 2*time.Second),
		WeightSemantic:         getEnvFloat("CTXBRAIN_WEIGHT_SEMANTIC", 0.40),
		WeightPreference:       getEnvFloat("CTXBRAIN_WEIGHT_PREFERENCE", 0.25),
		WeightTemporal:         getEnvFloat("CTXBRAIN_WEIGHT_TEMPORAL", 0.20),
		WeightScope:            getEnvFloat("CTXBRAIN_WEIGHT_SCOPE", 0.15),
		CrossProjectDiscount:   getEnvFloat("CTXBRAIN_CROSS_PROJECT_DISCOUNT", 0.6),
		TemporalHalfLife:       getEnvDuration("CTXBRAIN_TEMPORAL_HALF_LIFE", 168*time.Hour),
		ProfileStep:            getEnvFloat("CTXBRAIN_PROFILE_STEP", 0.1),
		OutcomeStep:            getEnvFloat("CTXBRAIN_OUTCOME_STEP", 0.05),
		SnapshotEvery:          getEnvInt("CTXBRAIN_SNAPSHOT_EVERY", 50),
		EvolutionLogMax:        getEnvInt("CTXBRAIN_EVOLUTION_LOG_MAX", 52),
		AntiPatternFlagBelow:   getEnvFloat("CTXBRAIN_ANTI_PATTERN_FLAG_BELOW", 0.25),
		LinkThreshold:          getEnvFloat("CTXBRAIN_LINK_THRESHOLD", 0.55),
		AntiPatternThreshold:   getEnvFloat("CTXBRAIN_ANTI_PATTERN_THRESHOLD", 0.8),
		RecomputeInterval:      getEnvDuration("CTXBRAIN_RECOMPUTE_INTERVAL", time.Hour),
		PurgeMaxAge:            getEnvDuration("CTXBRAIN_PURGE_MAX_AGE", 180*24*time.Hour),
		PurgeMaxAccess:         getEnvInt("CTXBRAIN_PURGE_MAX_ACCESS", 2),
		PurgeMaxOutcome:        getEnvFloat("CTXBRAIN_PURGE_MAX_OUTCOME", 0.3),
		InitialOutcome:         getEnvFloat("CTXBRAIN_INITIAL_OUTCOME", 0.5),
		InitialOutcomeDecision: getEnvFloat("CTXBRAIN_INITIAL_OUTCOME_DECISION", 0.7),
		VectorDimension:        getEnvInt("CTXBRAIN_VECTOR_DIMENSION", 1536),
	}

	if path := os.Getenv("CTXBRAIN_CONFIG"); path != "" {
		if err := cfg.applyOverlay(path); err != nil {
			return nil, fmt.Errorf("failed to apply config overlay %s: %w", path, err)
		}
	}

	return cfg, cfg.Validate()
}

// Validate checks value ranges. The four ranker weights must form a convex
// blend so scores stay in [0,1].
func (c *Config) Validate() error {
	sum := c.WeightSemantic + c.WeightPreference + c.WeightTemporal + c.WeightScope
	if sum < 0.999 || sum > 1.001 {
		return fmt.Errorf("ranker weights must sum to 1.0, got %f", sum)
	}
	for name, v := range map[string]float64{
		"CTXBRAIN_WEIGHT_SEMANTIC":          c.WeightSemantic,
		"CTXBRAIN_WEIGHT_PREFERENCE":        c.WeightPreference,
		"CTXBRAIN_WEIGHT_TEMPORAL":          c.WeightTemporal,
		"CTXBRAIN_WEIGHT_SCOPE":             c.WeightScope,
		"CTXBRAIN_CROSS_PROJECT_DISCOUNT":   c.CrossProjectDiscount,
		"CTXBRAIN_LINK_THRESHOLD":           c.LinkThreshold,
		"CTXBRAIN_ANTI_PATTERN_THRESHOLD":   c.AntiPatternThreshold,
		"CTXBRAIN_ANTI_PATTERN_FLAG_BELOW":  c.AntiPatternFlagBelow,
		"CTXBRAIN_PURGE_MAX_OUTCOME":        c.PurgeMaxOutcome,
		"CTXBRAIN_INITIAL_OUTCOME":          c.InitialOutcome,
		"CTXBRAIN_INITIAL_OUTCOME_DECISION": c.InitialOutcomeDecision,
	} {
		if v < 0 || v > 1 {
			return fmt.Errorf("%s must be 0-1, got %f", name, v)
		}
	}
	if c.ProfileStep <= 0 || c.ProfileStep > 1 {
		return fmt.Errorf("CTXBRAIN_PROFILE_STEP must be in (0,1], got %f", c.ProfileStep)
	}
	if c.OutcomeStep <= 0 || c.OutcomeStep > 1 {
		return fmt.Errorf("CTXBRAIN_OUTCOME_STEP must be in (0,1], got %f", c.OutcomeStep)
	}
	if c.MaxRetries < 0 || c.MaxRetries > 10 {
		return fmt.Errorf("CTXBRAIN_OPENAI_MAX_RETRIES must be 0-10, got %d", c.MaxRetries)
	}
	if c.SnapshotEvery <= 0 {
		return fmt.Errorf("CTXBRAIN_SNAPSHOT_EVERY must be positive, got %d", c.SnapshotEvery)
	}
	if c.EvolutionLogMax <= 0 {
		return fmt.Errorf("CTXBRAIN_EVOLUTION_LOG_MAX must be positive, got %d", c.EvolutionLogMax)
	}
	if c.VectorDimension <= 0 {
		return fmt.Errorf("CTXBRAIN_VECTOR_DIMENSION must be positive, got %d", c.VectorDimension)
	}
	return nil
}

// InitialOutcomeFor returns the starting outcome estimate for a new item of
// the given kind. Decisions start higher; everything else starts neutral.
func (c *Config) InitialOutcomeFor(kind string) float64 {
	if kind == "decision" {
		return c.InitialOutcomeDecision
	}
	return c.InitialOutcome
}

// overlay mirrors the YAML overlay file. Pointer fields distinguish
// "absent" from "zero".
type overlay struct {
	Weights *struct {
		Semantic   *float64 `yaml:"semantic"`
		Preference *float64 `yaml:"preference"`
		Temporal   *float64 `yaml:"temporal"`
		Scope      *float64 `yaml:"scope"`
	} `yaml:"weights"`
	CrossProjectDiscount *float64 `yaml:"cross_project_discount"`
	TemporalHalfLife     *string  `yaml:"temporal_half_life"`
	ProfileStep          *float64 `yaml:"profile_step"`
	LinkThreshold        *float64 `yaml:"link_threshold"`
	AntiPatternThreshold *float64 `yaml:"anti_pattern_threshold"`
	RecomputeInterval    *string  `yaml:"recompute_interval"`
}

func (c *Config) applyOverlay(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var o overlay
	if err := yaml.Unmarshal(data, &o); err != nil {
		return fmt.Errorf("invalid YAML: %w", err)
	}

	if o.Weights != nil {
		if o.Weights.Semantic != nil {
			c.WeightSemantic = *o.Weights.Semantic
		}
		if o.Weights.Preference != nil {
			c.WeightPreference = *o.Weights.Preference
		}
		if o.Weights.Temporal != nil {
			c.WeightTemporal = *o.Weights.Temporal
		}
		if o.Weights.Scope != nil {
			c.WeightScope = *o.Weights.Scope
		}
	}
	if o.CrossProjectDiscount != nil {
		c.CrossProjectDiscount = *o.CrossProjectDiscount
	}
	if o.TemporalHalfLife != nil {
		d, err := time.ParseDuration(*o.TemporalHalfLife)
		if err != nil {
			return fmt.Errorf("invalid temporal_half_life: %w", err)
		}
		c.TemporalHalfLife = d
	}
	if o.ProfileStep != nil {
		c.ProfileStep = *o.ProfileStep
	}
	if o.LinkThreshold != nil {
		c.LinkThreshold = *o.LinkThreshold
	}
	if o.AntiPatternThreshold != nil {
		c.AntiPatternThreshold = *o.AntiPatternThreshold
	}
	if o.RecomputeInterval != nil {
		d, err := time.ParseDuration(*o.RecomputeInterval)
		if err != nil {
			return fmt.Errorf("invalid recompute_interval: %w", err)
		}
		c.RecomputeInterval = d
	}

	return nil
}

// Helper functions
func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultVal
}
