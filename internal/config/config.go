package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/couchcryptid/hazard-sentinel/internal/domain"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Kafka alert broadcasting. Empty brokers disable the sink.
	KafkaBrokers    []string
	KafkaAlertTopic string

	// AdminKey gates decision and drill endpoints.
	AdminKey string

	SignalTimeout     time.Duration
	ProposalRadiusKm  float64
	ProposalThreshold domain.RiskLevel
	CrowdReportWindow time.Duration

	FusionPolicy domain.FusionPolicy
}

// Load reads configuration from environment variables, applying defaults
// where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := parseDuration("SHUTDOWN_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}
	signalTimeout, err := parseDuration("SIGNAL_TIMEOUT", "2s")
	if err != nil {
		return nil, err
	}
	crowdWindow, err := parseDuration("CROWD_REPORT_WINDOW", "30m")
	if err != nil {
		return nil, err
	}

	radius, err := parseFloat("PROPOSAL_RADIUS_KM", 2.0)
	if err != nil {
		return nil, err
	}

	threshold, err := domain.ParseRiskLevel(envOrDefault("PROPOSAL_THRESHOLD", "MODERATE"))
	if err != nil {
		return nil, fmt.Errorf("invalid PROPOSAL_THRESHOLD: %w", err)
	}

	policy, err := loadFusionPolicy(os.Getenv("FUSION_POLICY_PATH"))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		HTTPAddr:        envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		LogFormat:       envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		KafkaBrokers:    parseBrokers(os.Getenv("KAFKA_BROKERS")),
		KafkaAlertTopic: envOrDefault("KAFKA_ALERTS_TOPIC", "hazard-alerts"),

		AdminKey: os.Getenv("ADMIN_KEY"),

		SignalTimeout:     signalTimeout,
		ProposalRadiusKm:  radius,
		ProposalThreshold: threshold,
		CrowdReportWindow: crowdWindow,

		FusionPolicy: policy,
	}

	if cfg.AdminKey == "" {
		return nil, errors.New("ADMIN_KEY is required")
	}
	if len(cfg.KafkaBrokers) > 0 && cfg.KafkaAlertTopic == "" {
		return nil, errors.New("KAFKA_ALERTS_TOPIC is required when KAFKA_BROKERS is set")
	}
	if cfg.ProposalRadiusKm <= 0 {
		return nil, errors.New("PROPOSAL_RADIUS_KM must be positive")
	}

	return cfg, nil
}

// AlertsEnabled reports whether a Kafka alert sink should be wired.
func (c *Config) AlertsEnabled() bool {
	return len(c.KafkaBrokers) > 0
}

// loadFusionPolicy reads the YAML weighting policy from path, falling back
// to the shipped defaults when no path is configured. A configured policy
// must validate; a silently broken blend is worse than failing startup.
func loadFusionPolicy(path string) (domain.FusionPolicy, error) {
	policy := domain.DefaultFusionPolicy()
	if path == "" {
		return policy, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return domain.FusionPolicy{}, fmt.Errorf("reading FUSION_POLICY_PATH: %w", err)
	}
	if err := yaml.Unmarshal(raw, &policy); err != nil {
		return domain.FusionPolicy{}, fmt.Errorf("parsing fusion policy %s: %w", path, err)
	}
	if err := policy.Validate(); err != nil {
		return domain.FusionPolicy{}, fmt.Errorf("fusion policy %s: %w", path, err)
	}
	return policy, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseBrokers(raw string) []string {
	if raw == "" {
		return nil
	}
	var brokers []string
	for _, b := range strings.Split(raw, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

func parseDuration(key, fallback string) (time.Duration, error) {
	d, err := time.ParseDuration(envOrDefault(key, fallback))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func parseFloat(key string, fallback float64) (float64, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return f, nil
}
