package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

const envConfigPath = "CALIBKIT_CONFIG"

// Config represents the calibkit configuration file
// ($XDG_CONFIG_HOME/calibkit/config.yaml). Pointer fields distinguish
// "not set" from zero values.
type Config struct {
	Dataset   string `yaml:"dataset"`
	SeqLen    *int64 `yaml:"seqlen"`
	Seed      *int64 `yaml:"seed"`
	BatchSize *int64 `yaml:"batch_size"`
	NSamples  *int64 `yaml:"nsamples"`
	Workers   *int64 `yaml:"workers"`

	Tokenizer       string `yaml:"tokenizer"`
	TokenizerConfig string `yaml:"tokenizer_config"`
	ChatTemplate    string `yaml:"chat_template"`
	Arch            string `yaml:"arch"`

	DatasetsServer string   `yaml:"datasets_server"`
	HFToken        string   `yaml:"hf_token"`
	RateLimit      *float64 `yaml:"rate_limit"`

	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`

	ServerAddress string `yaml:"server_address"`
}

func configPath() string {
	if p := os.Getenv(envConfigPath); p != "" {
		return p
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "calibkit", "config.yaml")
}

// LoadConfig reads the config file. A missing file yields a zero Config; a
// malformed one is an error.
func LoadConfig(path string) (Config, error) {
	if path == "" {
		return Config{}, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Config{}, nil
	}
	if err != nil {
		return Config{}, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

func applyLoggingConfig(c *cli.Command, cfg Config) {
	if cfg.LogLevel != "" && !c.IsSet("log-level") {
		logLevel = cfg.LogLevel
	}
	if cfg.LogFormat != "" && !c.IsSet("log-format") {
		logFormat = cfg.LogFormat
	}
}

// applyPipelineConfig applies config file defaults to the corpus, tokenizer
// and hub variables when the corresponding flag was not explicitly set.
func applyPipelineConfig(c *cli.Command, cfg Config) {
	setString := func(flag, v string, dst *string) {
		if v != "" && !c.IsSet(flag) {
			*dst = v
		}
	}
	setInt := func(flag string, v *int64, dst *int64) {
		if v != nil && !c.IsSet(flag) {
			*dst = *v
		}
	}
	setString("dataset", cfg.Dataset, &dataset)
	setInt("seqlen", cfg.SeqLen, &seqLen)
	setInt("seed", cfg.Seed, &seed)
	setInt("batch-size", cfg.BatchSize, &batchSize)
	setInt("nsamples", cfg.NSamples, &nsamples)
	setInt("workers", cfg.Workers, &workers)
	setString("tokenizer", cfg.Tokenizer, &tokenizerRef)
	setString("tokenizer-config", cfg.TokenizerConfig, &tokenizerConfig)
	setString("chat-template", cfg.ChatTemplate, &chatTemplate)
	setString("arch", cfg.Arch, &arch)
	setString("datasets-server", cfg.DatasetsServer, &datasetsServer)
	setString("hf-token", cfg.HFToken, &hfToken)
	if cfg.RateLimit != nil && !c.IsSet("rate-limit") {
		rateLimit = *cfg.RateLimit
	}
}

// applyServeConfig applies config file defaults to serve command variables.
func applyServeConfig(c *cli.Command, cfg Config, addr *string) {
	applyPipelineConfig(c, cfg)
	if cfg.ServerAddress != "" && !c.IsSet("addr") {
		*addr = cfg.ServerAddress
	}
}
