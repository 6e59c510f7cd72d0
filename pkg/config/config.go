package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Storage StorageConfig `yaml:"storage"`
	Engine  EngineConfig  `yaml:"engine"`
}

type StorageConfig struct {
	Path        string `yaml:"path"`        // data directory
	LogFile     string `yaml:"log_file"`    // append-only log inside Path
	Persistence *bool  `yaml:"persistence"` // nil means enabled
}

type EngineConfig struct {
	CacheCapacity  int     `yaml:"cache_capacity"`
	InitialBuckets int     `yaml:"initial_buckets"`
	BTreeDegree    int     `yaml:"btree_degree"`
	BloomSize      uint    `yaml:"bloom_size"`
	BloomFalseProb float64 `yaml:"bloom_false_prob"`
}

// Default returns a configuration with every field populated.
func Default() *Config {
	cfg := &Config{
		Storage: StorageConfig{
			Path:    "minikv_data",
			LogFile: "minikv.log",
		},
	}
	applyDefaults(cfg)
	return cfg
}

func (c *Config) PersistenceEnabled() bool {
	return c.Storage.Persistence == nil || *c.Storage.Persistence
}

func Load(configPath string) (*Config, error) {
	cfg := &Config{
		Storage: StorageConfig{
			Path:    "minikv_data",
			LogFile: "minikv.log",
		},
		Engine: EngineConfig{
			CacheCapacity:  128,
			InitialBuckets: 16,
			BTreeDegree:    32,
			BloomSize:      100000,
			BloomFalseProb: 0.01,
		},
	}

	if configPath == "" {
		for _, p := range []string{"configs/minikv.yaml", "minikv.yaml"} {
			data, err := os.ReadFile(p)
			if err == nil {
				if err := yaml.Unmarshal(data, cfg); err != nil {
					return cfg, err
				}
				applyDefaults(cfg)
				return cfg, nil
			}
		}
		applyDefaults(cfg)
		return cfg, nil // no file found: use defaults
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return cfg, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return cfg, err
	}

	applyDefaults(cfg)
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Storage.Path == "" {
		cfg.Storage.Path = "minikv_data"
	}
	if cfg.Storage.LogFile == "" {
		cfg.Storage.LogFile = "minikv.log"
	}
	if cfg.Engine.CacheCapacity <= 0 {
		cfg.Engine.CacheCapacity = 128
	}
	if cfg.Engine.InitialBuckets <= 0 {
		cfg.Engine.InitialBuckets = 16
	}
	if cfg.Engine.BTreeDegree < 2 {
		cfg.Engine.BTreeDegree = 32
	}
	if cfg.Engine.BloomSize == 0 {
		cfg.Engine.BloomSize = 100000
	}
	if cfg.Engine.BloomFalseProb <= 0 || cfg.Engine.BloomFalseProb >= 1 {
		cfg.Engine.BloomFalseProb = 0.01
	}
}
