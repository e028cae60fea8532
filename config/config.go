package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port        int      `yaml:"port"`
		CORSOrigins []string `yaml:"corsOrigins"`
	} `yaml:"server"`

	Session struct {
		SegmentSeconds int    `yaml:"segmentSeconds"`
		SkipPolicy     string `yaml:"skipPolicy"`
	} `yaml:"session"`

	Debate struct {
		SegmentSeconds  int `yaml:"segmentSeconds"`
		QnASeconds      int `yaml:"qnaSeconds"`
		TickMillis      int `yaml:"tickMillis"`
		DefaultSegments int `yaml:"defaultSegments"`
		MaxSegments     int `yaml:"maxSegments"`
	} `yaml:"debate"`

	Database struct {
		URI string `yaml:"uri"`
	} `yaml:"database"`

	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`

	Limits struct {
		QuestionsPerWindow    int `yaml:"questionsPerWindow"`
		QuestionWindowSeconds int `yaml:"questionWindowSeconds"`
		ReactionsPerWindow    int `yaml:"reactionsPerWindow"`
		ReactionWindowSeconds int `yaml:"reactionWindowSeconds"`
	} `yaml:"limits"`
}

// Default returns the configuration used when no file is given. The zero
// values of Session and Debate are filled in by the services themselves.
func Default() *Config {
	var cfg Config
	cfg.applyDefaults()
	return &cfg
}

// LoadConfig reads the configuration file
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal yaml: %w", err)
	}

	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 1313
	}
	if len(c.Server.CORSOrigins) == 0 {
		c.Server.CORSOrigins = []string{"http://localhost:5173"}
	}
	if c.Limits.QuestionsPerWindow == 0 {
		c.Limits.QuestionsPerWindow = 1
	}
	if c.Limits.QuestionWindowSeconds == 0 {
		c.Limits.QuestionWindowSeconds = 15
	}
	if c.Limits.ReactionsPerWindow == 0 {
		c.Limits.ReactionsPerWindow = 5
	}
	if c.Limits.ReactionWindowSeconds == 0 {
		c.Limits.ReactionWindowSeconds = 10
	}
}
