// Package spec loads and validates the declarative router/policy
// configuration consumed at startup.
package spec

// Config is the top-level policy configuration document.
type Config struct {
	Global  Global   `yaml:"global"`
	Routers []Router `yaml:"routers"`
}

// Global holds run-wide defaults applied when a policy omits a field.
type Global struct {
	DefaultRIR             string `yaml:"default_rir"`
	DefaultMaxPrefixLength int    `yaml:"default_max_prefix_length"`
}

// Router identifies one manageable device and the policies it carries.
type Router struct {
	Hostname string   `yaml:"hostname"`
	IP       string   `yaml:"ip"`
	Username string   `yaml:"username,omitempty"`
	Password string   `yaml:"password,omitempty"`
	Port     int      `yaml:"port,omitempty"`
	Policies []Policy `yaml:"policies"`
}

// Policy names one prefix filter to generate from an IRR AS-set.
type Policy struct {
	Name            string `yaml:"name"`
	ASSet           string `yaml:"as_set"`
	RIR             string `yaml:"rir,omitempty"`
	MaxPrefixLength int    `yaml:"max_prefix_length,omitempty"`
}

// Fallback defaults when neither the policy nor the global section sets them.
const (
	FallbackRIR             = "AFRINIC"
	FallbackMaxPrefixLength = 24
)

// RIR resolves the registry for a policy: policy > global > fallback.
func (c *Config) RIR(p Policy) string {
	if p.RIR != "" {
		return p.RIR
	}
	if c.Global.DefaultRIR != "" {
		return c.Global.DefaultRIR
	}
	return FallbackRIR
}

// MaxPrefixLength resolves the max prefix length for a policy:
// policy > global > fallback.
func (c *Config) MaxPrefixLength(p Policy) int {
	if p.MaxPrefixLength != 0 {
		return p.MaxPrefixLength
	}
	if c.Global.DefaultMaxPrefixLength != 0 {
		return c.Global.DefaultMaxPrefixLength
	}
	return FallbackMaxPrefixLength
}

// FindRouter returns the router whose IP or hostname matches addr.
func (c *Config) FindRouter(addr string) (Router, bool) {
	for _, r := range c.Routers {
		if r.IP == addr || r.Hostname == addr {
			return r, true
		}
	}
	return Router{}, false
}
