package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Table roles
const (
	RoleUsage   = "usage"   // rows become usage records and feed the status scan
	RoleProfile = "profile" // rows only feed the status scan
)

// DefaultBudgetLimit is the monthly budget in baht when none is configured
const DefaultBudgetLimit = 1000.0

// Config holds the application configuration
type Config struct {
	Dashboard     DashboardConfig `yaml:"dashboard"`
	HomeAssistant HAConfig        `yaml:"home_assistant,omitempty"`
	MQTT          MQTTConfig      `yaml:"mqtt,omitempty"`
	Server        ServerConfig    `yaml:"server,omitempty"`
}

// DashboardConfig describes where the usage log lives and the budget it is measured against
type DashboardConfig struct {
	BaseURL     string        `yaml:"base_url,omitempty"` // gviz endpoint override, mostly for testing
	BudgetLimit float64       `yaml:"budget_limit"`
	Tables      []TableConfig `yaml:"tables"`
}

// TableConfig identifies one sheet tab
type TableConfig struct {
	Name    string `yaml:"name"`
	SheetID string `yaml:"sheet_id"` // dataset identifier
	GID     string `yaml:"gid"`      // sheet-tab identifier
	Role    string `yaml:"role"`     // "usage" or "profile"
}

// HAConfig holds Home Assistant HTTP API configuration
type HAConfig struct {
	Enabled  bool   `yaml:"enabled"`
	URL      string `yaml:"url"`       // e.g., "http://homeassistant.local:8123"
	Token    string `yaml:"token"`     // Long-lived access token
	EntityID string `yaml:"entity_id"` // e.g., "sensor.room_electricity_budget"
}

// MQTTConfig holds MQTT broker configuration
type MQTTConfig struct {
	Enabled     bool   `yaml:"enabled"`
	Broker      string `yaml:"broker"` // host:port
	Username    string `yaml:"username,omitempty"`
	Password    string `yaml:"password,omitempty"`
	TopicPrefix string `yaml:"topic_prefix,omitempty"`
}

// ServerConfig holds settings for the serve command
type ServerConfig struct {
	Listen string `yaml:"listen,omitempty"`
}

// ValidationError represents an invalid configuration value
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

func (e *ValidationError) Error() string {
	if e.Value != nil {
		return fmt.Sprintf("validation error for %s (value: %v): %s", e.Field, e.Value, e.Message)
	}
	return fmt.Sprintf("validation error for %s: %s", e.Field, e.Message)
}

// Load reads the config file. A missing file yields an empty config.
func Load(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	return &cfg, nil
}

// Save writes the config to file
func Save(configPath string, cfg *Config) error {
	// Ensure directory exists
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}

// DefaultConfigPath returns the default config file path (local directory)
func DefaultConfigPath() string {
	return "config.yaml"
}

// LoadEnv loads a .env file if one exists. It reports whether a file was read.
func LoadEnv() bool {
	return godotenv.Load() == nil
}

// ApplyEnv overlays ROOMWATT_* environment variables onto the config.
// ROOMWATT_SHEET_ID with ROOMWATT_USAGE_GID / ROOMWATT_PROFILE_GID replaces the table list.
func (c *Config) ApplyEnv() error {
	if sheetID := os.Getenv("ROOMWATT_SHEET_ID"); sheetID != "" {
		tables := []TableConfig{{
			Name:    "usage",
			SheetID: sheetID,
			GID:     os.Getenv("ROOMWATT_USAGE_GID"),
			Role:    RoleUsage,
		}}
		if gid := os.Getenv("ROOMWATT_PROFILE_GID"); gid != "" {
			tables = append(tables, TableConfig{Name: "profile", SheetID: sheetID, GID: gid, Role: RoleProfile})
		}
		c.Dashboard.Tables = tables
	}

	if budget := os.Getenv("ROOMWATT_BUDGET"); budget != "" {
		v, err := strconv.ParseFloat(budget, 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return &ValidationError{Field: "ROOMWATT_BUDGET", Value: budget, Message: "must be a finite number"}
		}
		if v < 0 {
			return &ValidationError{Field: "ROOMWATT_BUDGET", Value: budget, Message: "cannot be negative"}
		}
		c.Dashboard.BudgetLimit = v
	}

	if token := os.Getenv("ROOMWATT_HA_TOKEN"); token != "" {
		c.HomeAssistant.Token = token
	}
	if password := os.Getenv("ROOMWATT_MQTT_PASSWORD"); password != "" {
		c.MQTT.Password = password
	}
	return nil
}

// ApplyDefaults fills in unset values. Invalid values are left for Validate to report.
func (c *Config) ApplyDefaults() {
	if c.Dashboard.BudgetLimit == 0 {
		c.Dashboard.BudgetLimit = DefaultBudgetLimit
	}
	for i := range c.Dashboard.Tables {
		t := &c.Dashboard.Tables[i]
		if t.Role == "" {
			t.Role = RoleUsage
		}
		if t.Name == "" {
			t.Name = fmt.Sprintf("%s-%d", t.Role, i+1)
		}
	}
	if c.MQTT.TopicPrefix == "" {
		c.MQTT.TopicPrefix = "roomwatt"
	}
	if c.Server.Listen == "" {
		c.Server.Listen = ":8080"
	}
}

// Validate checks if the dashboard configuration can be loaded
func (c *Config) Validate() error {
	var errs []error

	if len(c.Dashboard.Tables) == 0 {
		errs = append(errs, &ValidationError{Field: "dashboard.tables", Message: "at least one table is required"})
	}

	usage := 0
	for i, t := range c.Dashboard.Tables {
		field := fmt.Sprintf("dashboard.tables[%d]", i)
		if t.SheetID == "" {
			errs = append(errs, &ValidationError{Field: field + ".sheet_id", Message: "sheet id is required"})
		}
		switch t.Role {
		case RoleUsage:
			usage++
		case RoleProfile:
		default:
			errs = append(errs, &ValidationError{Field: field + ".role", Value: t.Role, Message: "must be usage or profile"})
		}
	}
	if len(c.Dashboard.Tables) > 0 && usage == 0 {
		errs = append(errs, &ValidationError{Field: "dashboard.tables", Message: "at least one usage table is required"})
	}

	switch budget := c.Dashboard.BudgetLimit; {
	case math.IsNaN(budget) || math.IsInf(budget, 0):
		errs = append(errs, &ValidationError{Field: "dashboard.budget_limit", Value: budget, Message: "must be a finite number"})
	case budget < 0:
		errs = append(errs, &ValidationError{Field: "dashboard.budget_limit", Value: budget, Message: "cannot be negative"})
	}

	return errors.Join(errs...)
}

// UsageTables returns the tables whose rows become usage records
func (c *Config) UsageTables() []TableConfig {
	var out []TableConfig
	for _, t := range c.Dashboard.Tables {
		if t.Role == RoleUsage {
			out = append(out, t)
		}
	}
	return out
}
