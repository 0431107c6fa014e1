package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"crewplan/internal/capacity"
)

// Config models crewplan.yml.
type Config struct {
	Team struct {
		Name                       string  `yaml:"name"`
		DefaultWorkingHoursPerWeek float64 `yaml:"default_working_hours_per_week"`
	} `yaml:"team"`
	Capacity PolicySection `yaml:"capacity"`
}

// PolicySection holds the tunable business-policy constants. Zero values fall
// back to the stock policy so a partial config stays valid.
type PolicySection struct {
	MaxAnnualVacationDays int     `yaml:"max_annual_vacation_days"`
	WarnUtilizationPct    float64 `yaml:"warn_utilization_pct"`
	UpcomingWindowDays    int     `yaml:"upcoming_window_days"`
	MaxFutureYears        int     `yaml:"max_future_years"`
	WorkweekDays          int     `yaml:"workweek_days"`
}

// Policy resolves the configured section against the defaults.
func (c *Config) Policy() capacity.Policy {
	pol := capacity.DefaultPolicy()
	if c.Capacity.MaxAnnualVacationDays > 0 {
		pol.MaxAnnualVacationDays = c.Capacity.MaxAnnualVacationDays
	}
	if c.Capacity.WarnUtilizationPct > 0 {
		pol.WarnUtilizationPct = c.Capacity.WarnUtilizationPct
	}
	if c.Capacity.UpcomingWindowDays > 0 {
		pol.UpcomingWindowDays = c.Capacity.UpcomingWindowDays
	}
	if c.Capacity.MaxFutureYears > 0 {
		pol.MaxFutureYears = c.Capacity.MaxFutureYears
	}
	if c.Capacity.WorkweekDays > 0 {
		pol.WorkweekDays = c.Capacity.WorkweekDays
	}
	return pol
}

// Validate ensures the config meets required structure.
func (c *Config) Validate() error {
	if c.Team.Name == "" {
		return fmt.Errorf("config.team.name is required")
	}
	if c.Team.DefaultWorkingHoursPerWeek < 0 {
		return fmt.Errorf("config.team.default_working_hours_per_week must not be negative")
	}
	if c.Capacity.WarnUtilizationPct < 0 || c.Capacity.WarnUtilizationPct > 200 {
		return fmt.Errorf("config.capacity.warn_utilization_pct out of range")
	}
	if c.Capacity.WorkweekDays < 0 || c.Capacity.WorkweekDays > 7 {
		return fmt.Errorf("config.capacity.workweek_days must be between 0 and 7")
	}
	if c.Capacity.MaxAnnualVacationDays < 0 {
		return fmt.Errorf("config.capacity.max_annual_vacation_days must not be negative")
	}
	return nil
}

// Path returns the config file path for a workspace.
func Path(workspace string) string {
	if workspace == "" {
		workspace = "."
	}
	return filepath.Join(workspace, "crewplan.yml")
}

// Load reads and validates config from workspace.
func Load(workspace string) (*Config, error) {
	path := Path(workspace)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config %s not found; run crew init or create it from the default template", path)
		}
		return nil, err
	}
	return FromYAML(data)
}

// LoadOptional returns the default config if the file does not exist.
func LoadOptional(workspace string) (*Config, error) {
	path := Path(workspace)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, err
	}
	return FromYAML(data)
}

// FromYAML parses and validates config from raw YAML bytes.
func FromYAML(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("invalid config yaml: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// FromFile reads YAML config from the given path.
func FromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return FromYAML(data)
}

// Default returns the stock configuration.
func Default() *Config {
	var cfg Config
	_ = yaml.Unmarshal([]byte(defaultTemplate), &cfg)
	return &cfg
}

// GenerateDefault returns the default config YAML.
func GenerateDefault() string {
	return defaultTemplate
}

const defaultTemplate = `team:
  name: default-team
  default_working_hours_per_week: 40

capacity:
  # Soft cap on approved vacation days per calendar year.
  max_annual_vacation_days: 25
  # Warn when a new engagement would push weekly utilization above this.
  warn_utilization_pct: 90
  # How far ahead upcoming time off is surfaced, in days.
  upcoming_window_days: 30
  # Engagement end dates beyond this horizon trigger a sanity warning.
  max_future_years: 10
  # Working days per week used to prorate weekly hours.
  workweek_days: 5
`
