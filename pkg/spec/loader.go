package spec

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/prefixflow/prefixflow/pkg/util"
)

// Load parses a policy configuration YAML file and validates required fields.
// A missing or empty routers section is an error: nothing in a run can
// proceed without it. Per-router and per-policy field problems are not
// errors here; the deployment loop skips and reports them individually.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config YAML: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", util.ErrInvalidConfig, err)
	}

	return &cfg, nil
}

func validate(cfg *Config) error {
	if len(cfg.Routers) == 0 {
		return fmt.Errorf("missing 'routers' section")
	}
	if cfg.Global.DefaultMaxPrefixLength < 0 {
		return fmt.Errorf("global.default_max_prefix_length must not be negative")
	}
	for _, r := range cfg.Routers {
		if r.Port < 0 || r.Port > 65535 {
			return fmt.Errorf("router %s: invalid port %d", r.Hostname, r.Port)
		}
	}
	return nil
}
