package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

const (
	DefaultPath = "configs/config.yaml"
	// PathEnv names the environment variable holding the config path.
	PathEnv = "SAIDA_CONFIG"
)

// PathFromEnv returns the config path from SAIDA_CONFIG, or DefaultPath.
func PathFromEnv() string {
	if p := strings.TrimSpace(os.Getenv(PathEnv)); p != "" {
		return p
	}
	return DefaultPath
}

// Load reads path and the files it includes, applies defaults and validates
// the result. Included files are merged first, so the including file wins.
func Load(path string) (*Config, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("config path cannot be empty")
	}
	root, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	r := &includeResolver{visited: map[string]bool{}, active: map[string]bool{}}
	if err := r.walk(root); err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetConfigType("yaml")
	for _, f := range r.order {
		settings, err := readSettings(f)
		if err != nil {
			return nil, fmt.Errorf("reading config file failed (%s): %w", f, err)
		}
		delete(settings, "include")
		if err := v.MergeConfigMap(settings); err != nil {
			return nil, fmt.Errorf("merging config file failed (%s): %w", f, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "toml"
		dc.WeaklyTypedInput = true
	}); err != nil {
		return nil, fmt.Errorf("parsing config failed: %w", err)
	}
	keys := make(keySet)
	markKeys("", v.AllSettings(), keys)
	cfg.applyDefaults(keys)
	cfg.expandSecrets()
	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// includeResolver orders config files depth-first: includes before the file
// that names them, each file once.
type includeResolver struct {
	visited map[string]bool
	active  map[string]bool
	order   []string
}

func (r *includeResolver) walk(path string) error {
	path = filepath.Clean(path)
	if r.active[path] {
		return fmt.Errorf("include cycle detected: %s", path)
	}
	if r.visited[path] {
		return nil
	}
	settings, err := readSettings(path)
	if err != nil {
		return fmt.Errorf("reading config file failed (%s): %w", path, err)
	}
	includes, err := includeList(settings["include"])
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	r.active[path] = true
	for _, inc := range includes {
		if !filepath.IsAbs(inc) {
			inc = filepath.Join(filepath.Dir(path), inc)
		}
		if err := r.walk(inc); err != nil {
			return err
		}
	}
	delete(r.active, path)
	r.visited[path] = true
	r.order = append(r.order, path)
	return nil
}

func readSettings(path string) (map[string]any, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}
	return v.AllSettings(), nil
}

// includeList accepts a single path or a list of paths.
func includeList(raw any) ([]string, error) {
	var items []any
	switch val := raw.(type) {
	case nil:
		return nil, nil
	case string:
		items = []any{val}
	case []any:
		items = val
	case []string:
		for _, s := range val {
			items = append(items, s)
		}
	default:
		return nil, fmt.Errorf("include must be a path or a list of paths")
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		s, ok := item.(string)
		if !ok {
			return nil, fmt.Errorf("include entries must be strings")
		}
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out, nil
}

// markKeys records every leaf key present in the merged settings so defaults
// never override an explicit value such as false or 0.
func markKeys(prefix string, node any, dest keySet) {
	var children map[string]any
	switch val := node.(type) {
	case map[string]any:
		children = val
	case map[any]any:
		children = make(map[string]any, len(val))
		for k, v := range val {
			if s, ok := k.(string); ok {
				children[s] = v
			}
		}
	default:
		dest.mark(prefix)
		return
	}
	for k, v := range children {
		key := strings.ToLower(strings.TrimSpace(k))
		if key == "" {
			continue
		}
		if prefix != "" {
			key = prefix + "." + key
		}
		markKeys(key, v, dest)
	}
}

// expandSecrets resolves ${VAR} references so tokens can stay out of the
// config files.
func (c *Config) expandSecrets() {
	c.Notify.Telegram.BotToken = strings.TrimSpace(os.ExpandEnv(c.Notify.Telegram.BotToken))
	c.Pricing.CoinGecko.APIKey = strings.TrimSpace(os.ExpandEnv(c.Pricing.CoinGecko.APIKey))
}
