package config

import (
	"time"

	"github.com/aiservice/poseul/internal/prediction"
)

// DefaultServerURL is the host alias an Android emulator uses to reach
// a backend on the development machine.
const DefaultServerURL = "http://10.0.2.2:5000"

// Config represents the entire configuration file
type Config struct {
	Version   int                 `yaml:"version"`
	ServerURL string              `yaml:"server_url,omitempty"`
	Timeouts  *Timeouts           `yaml:"timeouts,omitempty"`
	Profile   *Profile            `yaml:"profile,omitempty"`
	Discovery *DiscoveryPrefs     `yaml:"discovery,omitempty"`
	Backends  map[string]*Backend `yaml:"backends,omitempty"` // Keyed by mDNS instance name

	path string
}

// Timeouts bounds each backend call
type Timeouts struct {
	Health  time.Duration `yaml:"health"`
	Predict time.Duration `yaml:"predict"`
	State   time.Duration `yaml:"state"`
	Control time.Duration `yaml:"control"`
}

// Profile is the default physiological sample used by predict when no
// flags are given.
type Profile struct {
	HeartRate int     `yaml:"heart_rate"`
	HRVSDNN   float64 `yaml:"hrv_sdnn"`
	BMI       float64 `yaml:"bmi"`
	MeanSaO2  float64 `yaml:"mean_sao2"`
	Gender    string  `yaml:"gender"` // "male" or "female"
	Age       int     `yaml:"age"`
}

// Input converts the profile into a prediction input
func (p *Profile) Input() prediction.Input {
	return prediction.Input{
		HeartRate: p.HeartRate,
		HRVSDNN:   p.HRVSDNN,
		BMI:       p.BMI,
		MeanSaO2:  p.MeanSaO2,
		Gender:    p.Gender,
		Age:       p.Age,
	}
}

// DiscoveryPrefs controls mDNS backend discovery
type DiscoveryPrefs struct {
	Timeout time.Duration `yaml:"timeout"`
}

// Backend is a backend found by discovery
type Backend struct {
	URL      string    `yaml:"url" json:"url"`
	LastSeen time.Time `yaml:"last_seen,omitempty" json:"last_seen"`
}

func defaultTimeouts() *Timeouts {
	return &Timeouts{
		Health:  prediction.DefaultHealthTimeout,
		Predict: prediction.DefaultPredictTimeout,
		State:   10 * time.Second,
		Control: 10 * time.Second,
	}
}

func defaultProfile() *Profile {
	return &Profile{
		HeartRate: 75,
		HRVSDNN:   45,
		BMI:       22,
		MeanSaO2:  97,
		Gender:    "male",
		Age:       30,
	}
}

// New creates a Config with default values
func New() *Config {
	return &Config{
		Version:   1,
		ServerURL: DefaultServerURL,
		Timeouts:  defaultTimeouts(),
		Profile:   defaultProfile(),
		Discovery: &DiscoveryPrefs{Timeout: 5 * time.Second},
		Backends:  make(map[string]*Backend),
	}
}

// fillDefaults replaces missing sections and zero values with defaults
func (c *Config) fillDefaults() {
	if c.ServerURL == "" {
		c.ServerURL = DefaultServerURL
	}

	def := defaultTimeouts()
	if c.Timeouts == nil {
		c.Timeouts = def
	}
	if c.Timeouts.Health <= 0 {
		c.Timeouts.Health = def.Health
	}
	if c.Timeouts.Predict <= 0 {
		c.Timeouts.Predict = def.Predict
	}
	if c.Timeouts.State <= 0 {
		c.Timeouts.State = def.State
	}
	if c.Timeouts.Control <= 0 {
		c.Timeouts.Control = def.Control
	}

	if c.Profile == nil {
		c.Profile = defaultProfile()
	}
	if c.Discovery == nil || c.Discovery.Timeout <= 0 {
		c.Discovery = &DiscoveryPrefs{Timeout: 5 * time.Second}
	}
	if c.Backends == nil {
		c.Backends = make(map[string]*Backend)
	}
}

// RememberBackend records a discovered backend
func (c *Config) RememberBackend(instance, url string) {
	if c.Backends == nil {
		c.Backends = make(map[string]*Backend)
	}
	c.Backends[instance] = &Backend{URL: url, LastSeen: time.Now()}
}

// UseBackend makes the named remembered backend the default server.
// It reports false when the instance is unknown.
func (c *Config) UseBackend(instance string) bool {
	b, ok := c.Backends[instance]
	if !ok {
		return false
	}
	c.ServerURL = b.URL
	return true
}
