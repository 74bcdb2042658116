package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// BackendConfig はバックエンド接続の設定。
type BackendConfig struct {
	BaseURL string `yaml:"base_url"`
	Token   string `yaml:"token"`
}

// AppConfig は config/config.yaml の統合設定構造
type AppConfig struct {
	Backend     BackendConfig `yaml:"backend"`
	RegistryDir string        `yaml:"registry_dir"`
	StateDir    string        `yaml:"state_dir"`
	Entrypoints []string      `yaml:"entrypoints"`
}

// applyDefaults はゼロ値のフィールドにデフォルト値を適用する
func (c *AppConfig) applyDefaults() {
	if c.Backend.BaseURL == "" {
		c.Backend.BaseURL = "http://127.0.0.1:8787"
	}
	if c.RegistryDir == "" {
		c.RegistryDir = "registry"
	}
	if c.StateDir == "" {
		c.StateDir = ".glotdeck"
	}
	if len(c.Entrypoints) == 0 {
		c.Entrypoints = []string{"pipeline.py", "main.py"}
	}
}

// Load は config/config.yaml を読み込む。
// ${VAR} 環境変数を展開する。
// ファイルが存在しない場合はデフォルトの AppConfig を返す。
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg := &AppConfig{}
			cfg.applyDefaults()
			return cfg, nil
		}
		return nil, fmt.Errorf("config: failed to read %s: %w", path, err)
	}

	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse %s: %w", path, err)
	}

	// 環境変数を展開（base_url / token の ${VAR}）
	cfg.Backend.BaseURL = expandEnvString(cfg.Backend.BaseURL)
	cfg.Backend.Token = expandEnvString(cfg.Backend.Token)
	cfg.RegistryDir = expandEnvString(cfg.RegistryDir)
	cfg.StateDir = expandEnvString(cfg.StateDir)

	// デフォルト値の適用
	cfg.applyDefaults()

	return &cfg, nil
}

// expandEnvString は文字列内の ${VAR} をホスト環境変数で展開する
func expandEnvString(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		varName := match[2 : len(match)-1]
		return os.Getenv(varName)
	})
}
