package main

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port                   string `yaml:"port"`
		ShutdownTimeoutSeconds int    `yaml:"shutdown_timeout_seconds"`
	} `yaml:"server"`

	NATS struct {
		URL           string `yaml:"url"`
		Stream        string `yaml:"stream"`
		SubjectPrefix string `yaml:"subject_prefix"`
		Consumer      string `yaml:"consumer"`
	} `yaml:"nats"`

	Engagement struct {
		BaseURL string `yaml:"base_url"`
		APIKey  string `yaml:"api_key"`
	} `yaml:"engagement"`

	Participation struct {
		DBPath string `yaml:"db_path"`
	} `yaml:"participation"`

	Simulation struct {
		AutoStart   bool   `yaml:"auto_start"`
		BroadcastID string `yaml:"broadcast_id"`
	} `yaml:"simulation"`
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func loadConfig(path string) (*Config, error) {
	var config Config

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	// Environment variables override file values
	config.Server.Port = getEnv("PORT", firstNonEmpty(config.Server.Port, "8080"))
	config.Server.ShutdownTimeoutSeconds = getEnvAsInt("SHUTDOWN_TIMEOUT_SECONDS", config.Server.ShutdownTimeoutSeconds)
	if config.Server.ShutdownTimeoutSeconds <= 0 {
		config.Server.ShutdownTimeoutSeconds = 10
	}
	config.NATS.URL = getEnv("NATS_URL", firstNonEmpty(config.NATS.URL, "nats://localhost:4222"))
	config.NATS.Stream = firstNonEmpty(config.NATS.Stream, "TIMELINE_EVENTS")
	config.NATS.SubjectPrefix = firstNonEmpty(config.NATS.SubjectPrefix, "timeline.events")
	config.NATS.Consumer = firstNonEmpty(config.NATS.Consumer, "timeline-gateway")
	config.Engagement.BaseURL = getEnv("ENGAGEMENT_BASE_URL", config.Engagement.BaseURL)
	config.Engagement.APIKey = getEnv("ENGAGEMENT_API_KEY", config.Engagement.APIKey)
	config.Participation.DBPath = getEnv("PARTICIPATION_DB_PATH", firstNonEmpty(config.Participation.DBPath, "participation.db"))
	config.Simulation.BroadcastID = getEnv("SIMULATION_BROADCAST_ID", firstNonEmpty(config.Simulation.BroadcastID, "sim-match-1"))

	return &config, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
