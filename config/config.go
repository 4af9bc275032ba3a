// Package config loads devq's configuration from defaults, a TOML file and
// DEVQ_ environment variables, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/fwojciec/devq"
	"github.com/fwojciec/devq/static"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix prefixes every environment override. Nested keys are separated
// by a double underscore: DEVQ_MODEL__API_KEY sets model.api_key.
const EnvPrefix = "DEVQ_"

// Model providers.
const (
	ProviderOllama = "ollama"
	ProviderGemini = "gemini"
)

// DefaultOllamaModel is used when the ollama provider is selected without a
// model name. The gemini provider has its own default.
const DefaultOllamaModel = "mistral"

// Config is the complete configuration of a devq process.
type Config struct {
	Model   ModelConfig   `koanf:"model"`
	Static  StaticConfig  `koanf:"static"`
	Scratch ScratchConfig `koanf:"scratch"`
	Run     RunConfig     `koanf:"run"`

	// Weights holds the [weights] table keyed by criterion name. Keys may be
	// written as CodeSmells or code_smells.
	Weights map[string]float64 `koanf:"-"`
}

// ModelConfig selects and tunes the model endpoint.
type ModelConfig struct {
	Provider          string        `koanf:"provider"`
	Name              string        `koanf:"name"`
	URL               string        `koanf:"url"`
	APIKey            string        `koanf:"api_key"`
	Timeout           time.Duration `koanf:"timeout"`
	MaxRetries        int           `koanf:"max_retries"`
	BaseDelay         time.Duration `koanf:"base_delay"`
	MaxDelay          time.Duration `koanf:"max_delay"`
	RequestsPerMinute int           `koanf:"requests_per_minute"`
	CacheDir          string        `koanf:"cache_dir"` // Empty disables the response cache
	ThreadFileReviews bool          `koanf:"thread_file_reviews"`
}

// StaticConfig configures the static analyzers.
type StaticConfig struct {
	Tools   []string      `koanf:"tools"`
	Timeout time.Duration `koanf:"timeout"`
	Flake8  string        `koanf:"flake8"`
	Bandit  string        `koanf:"bandit"`
}

// ScratchConfig configures per-run working directories.
type ScratchConfig struct {
	Dir        string `koanf:"dir"`
	KeepFailed bool   `koanf:"keep_failed"`
}

// RunConfig configures the run scheduler.
type RunConfig struct {
	Workers int `koanf:"workers"`
}

func defaults() map[string]any {
	return map[string]any{
		"model.provider":            ProviderOllama,
		"model.url":                 "http://localhost:11434",
		"model.timeout":             "5m",
		"model.max_retries":         3,
		"model.base_delay":          "2s",
		"model.max_delay":           "30s",
		"model.requests_per_minute": 0,
		"model.thread_file_reviews": false,
		"static.tools":              []string{"flake8", "bandit"},
		"static.timeout":            "30s",
		"static.flake8":             "flake8",
		"static.bandit":             "bandit",
		"scratch.dir":               filepath.Join(os.TempDir(), "devq"),
		"scratch.keep_failed":       false,
		"run.workers":               1,
	}
}

func defaultWeights() map[string]any {
	return map[string]any{
		"weights.code_smells":          devq.DefaultWeights()[devq.CodeSmells],
		"weights.anti_patterns":        devq.DefaultWeights()[devq.AntiPatterns],
		"weights.legacy_compatibility": devq.DefaultWeights()[devq.LegacyCompatibility],
	}
}

// Load reads the configuration. An empty path skips the file; a path that
// does not exist is an error.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("loading defaults: %w", err)
	}

	if path != "" {
		if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
			return nil, fmt.Errorf("loading config file %s: %w", path, err)
		}
	}

	// Default weights apply only when the file has no [weights] table, so a
	// partial table is reported instead of silently completed.
	if !k.Exists("weights") {
		if err := k.Load(confmap.Provider(defaultWeights(), "."), nil); err != nil {
			return nil, fmt.Errorf("loading default weights: %w", err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("loading environment: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	if cfg.Model.Name == "" && cfg.Model.Provider == ProviderOllama {
		cfg.Model.Name = DefaultOllamaModel
	}

	weights, err := canonicalWeights(k.Cut("weights").All())
	if err != nil {
		return nil, err
	}
	cfg.Weights = weights

	return &cfg, nil
}

// envKey maps DEVQ_MODEL__API_KEY to model.api_key.
func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.ReplaceAll(s, "__", ".")
}

// canonicalWeights maps weight keys written as CodeSmells, code_smells or
// CODESMELLS to the criterion name. Unknown keys are kept as written and
// rejected later by devq.NewWeightTable.
func canonicalWeights(raw map[string]any) (map[string]float64, error) {
	out := make(map[string]float64, len(raw))
	for key, v := range raw {
		name := key
		for _, c := range devq.AllCriteria() {
			if foldKey(key) == foldKey(string(c)) {
				name = string(c)
				break
			}
		}
		if _, dup := out[name]; dup {
			return nil, fmt.Errorf("weight for %s given more than once", name)
		}
		w, err := toFloat(v)
		if err != nil {
			return nil, fmt.Errorf("weight %s: %w", key, err)
		}
		out[name] = w
	}
	return out, nil
}

func foldKey(s string) string {
	return strings.ToLower(strings.ReplaceAll(s, "_", ""))
}

func toFloat(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case int:
		return float64(n), nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, fmt.Errorf("not a number: %q", n)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("not a number: %v", v)
	}
}

// WeightTable returns the validated criterion weights.
func (c *Config) WeightTable() (devq.WeightTable, error) {
	return devq.NewWeightTable(c.Weights)
}

// Tools returns the configured static analyzers with their command paths.
func (c *Config) Tools() ([]static.Tool, error) {
	tools := make([]static.Tool, 0, len(c.Static.Tools))
	for _, name := range c.Static.Tools {
		tool, ok := static.Builtin(name)
		if !ok {
			return nil, fmt.Errorf("unknown static analyzer %q", name)
		}
		switch name {
		case "flake8":
			if c.Static.Flake8 != "" {
				tool.Command = c.Static.Flake8
			}
		case "bandit":
			if c.Static.Bandit != "" {
				tool.Command = c.Static.Bandit
			}
		}
		tools = append(tools, tool)
	}
	return tools, nil
}

// Validate checks the configuration. A criterion without weight is reported
// as *devq.UnweightedCriterionError.
func (c *Config) Validate() error {
	switch c.Model.Provider {
	case ProviderOllama:
		if c.Model.URL == "" {
			return errors.New("model.url is required for the ollama provider")
		}
	case ProviderGemini:
		if c.Model.APIKey == "" {
			return errors.New("model.api_key is required for the gemini provider")
		}
	default:
		return fmt.Errorf("unsupported model provider %q", c.Model.Provider)
	}
	if c.Model.Timeout <= 0 {
		return errors.New("model.timeout must be positive")
	}
	if c.Model.MaxRetries < 0 {
		return errors.New("model.max_retries must not be negative")
	}
	if c.Model.BaseDelay < 0 || c.Model.MaxDelay < c.Model.BaseDelay {
		return errors.New("model.base_delay must be non-negative and not above model.max_delay")
	}
	if c.Model.RequestsPerMinute < 0 {
		return errors.New("model.requests_per_minute must not be negative")
	}
	if c.Static.Timeout <= 0 {
		return errors.New("static.timeout must be positive")
	}
	if _, err := c.Tools(); err != nil {
		return err
	}
	if c.Scratch.Dir == "" {
		return errors.New("scratch.dir is required")
	}
	if c.Run.Workers < 1 {
		return errors.New("run.workers must be at least 1")
	}
	if _, err := c.WeightTable(); err != nil {
		return err
	}
	return nil
}

// LoadDotEnv loads environment files into the process environment. Missing
// files are skipped; variables already set are not overridden.
func LoadDotEnv(paths ...string) error {
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("loading %s: %w", p, err)
		}
	}
	return nil
}

// Init writes a sample configuration file. It refuses to overwrite an
// existing file.
func Init(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("configuration file already exists at %s", path)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, []byte(sampleConfig), 0o644)
}

const sampleConfig = `# devq configuration
# Every key can be overridden from the environment, e.g. DEVQ_MODEL__NAME.

[model]
provider = "ollama"          # ollama | gemini
name = "mistral"
url = "http://localhost:11434"
# api_key = ""               # required for gemini
timeout = "5m"
max_retries = 3
base_delay = "2s"
max_delay = "30s"
requests_per_minute = 0      # 0 disables rate limiting
# cache_dir = "~/.cache/devq"
thread_file_reviews = false

# Every criterion needs a weight once this table is present.
[weights]
code_smells = 4.0
anti_patterns = 5.0
legacy_compatibility = 1.0

[static]
tools = ["flake8", "bandit"]
timeout = "30s"
flake8 = "flake8"
bandit = "bandit"

[scratch]
# dir = "/tmp/devq"
keep_failed = false

[run]
workers = 1
`
