package app

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/klabast/wb-services/time-travel/internal/calendar"
	"github.com/klabast/wb-services/time-travel/internal/contributions"
)

// Constants
const (
	DefaultPort            = 8080
	DefaultShutdownTimeout = 5 * time.Second
	DefaultConfigFile      = "time-travel.yaml"
	DefaultSelectionsFile  = "selections.json"
	BackupSuffix           = ".backup"
	TmpSuffix              = ".tmp.json"
	FilePermissions        = 0644
	// MaxRangeDays bounds the calendar range of one request
	MaxRangeDays = 366 * 10

	// Error messages
	ErrInvalidDateFormat = "Invalid date format"
	ErrInvalidRange      = "Invalid date range"
	ErrRangeTooLarge     = "Date range too large"
	ErrInvalidWeekStart  = "Invalid week start"
	ErrInvalidFormat     = "Invalid format"
	ErrInvalidMode       = "Invalid mode"
	ErrInternalServer    = "Internal server error"
	ErrUpstream          = "Failed to fetch contribution data"

	// Session cookie
	SessionCookie = "tt_session"
	SessionMaxAge = 24 * time.Hour

	// ICS constants
	ICSProductID = "-//Klabast//Time Travel//EN"

	// Environment overrides
	EnvPort     = "TIME_TRAVEL_PORT"
	EnvAuthFile = "AUTH_FILE"
)

var ErrInvalidConfig = errors.New("invalid configuration")

// Config is the complete application configuration
type Config struct {
	Server        ServerConfig        `yaml:"server"`
	Calendar      CalendarConfig      `yaml:"calendar"`
	Contributions ContributionsConfig `yaml:"contributions"`
	Replay        ReplayConfig        `yaml:"replay"`
	Log           LogConfig           `yaml:"log"`
}

type ServerConfig struct {
	Port            int           `yaml:"port"`
	AuthFile        string        `yaml:"auth_file"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

type CalendarConfig struct {
	// WeekStart is 0 for Sunday through 6 for Saturday
	WeekStart int `yaml:"week_start"`
	MaxLevel  int `yaml:"max_level"`
	// From and To bound the default range (YYYY-MM-DD); empty means the current year
	From       string   `yaml:"from"`
	To         string   `yaml:"to"`
	MonthNames []string `yaml:"month_names"`
}

// ContributionsConfig switches the calendar from synthetic to real data
// when Username is set
type ContributionsConfig struct {
	Username string        `yaml:"username"`
	BaseURL  string        `yaml:"base_url"`
	Timeout  time.Duration `yaml:"timeout"`
	// LastMonths, when positive, keeps only the contributions of the last
	// n calendar months up to the current one
	LastMonths int `yaml:"last_months"`
}

type ReplayConfig struct {
	AuthorName  string `yaml:"author_name"`
	AuthorEmail string `yaml:"author_email"`
}

type LogConfig struct {
	Verbose bool `yaml:"verbose"`
	JSON    bool `yaml:"json"`
}

// DefaultConfig returns the configuration used when no file is given
func DefaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Port:            DefaultPort,
			ShutdownTimeout: DefaultShutdownTimeout,
		},
		Calendar: CalendarConfig{
			WeekStart: int(time.Sunday),
			MaxLevel:  int(calendar.MaxLevel),
		},
		Contributions: ContributionsConfig{
			BaseURL: contributions.DefaultBaseURL,
			Timeout: contributions.DefaultTimeout,
		},
	}
}

// LoadConfig reads the YAML file at path over the defaults and applies
// environment overrides. A missing file is not an error.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("parse config %s: %w", path, err)
			}
		case !os.IsNotExist(err):
			return cfg, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

func (c *Config) applyEnv() error {
	if v := os.Getenv(EnvPort); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: %s=%q is not a number", ErrInvalidConfig, EnvPort, v)
		}
		c.Server.Port = port
	}
	if v := os.Getenv(EnvAuthFile); v != "" {
		c.Server.AuthFile = v
	}
	return nil
}

// Validate reports the first invalid setting
func (c Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("%w: port %d out of range", ErrInvalidConfig, c.Server.Port)
	}
	if c.Calendar.WeekStart < 0 || c.Calendar.WeekStart > 6 {
		return fmt.Errorf("%w: week_start must be 0-6, got %d", ErrInvalidConfig, c.Calendar.WeekStart)
	}
	if c.Contributions.LastMonths < 0 {
		return fmt.Errorf("%w: last_months must not be negative, got %d", ErrInvalidConfig, c.Contributions.LastMonths)
	}
	if n := len(c.Calendar.MonthNames); n != 0 && n != 12 {
		return fmt.Errorf("%w: month_names needs 12 entries, got %d", ErrInvalidConfig, n)
	}
	for _, d := range []string{c.Calendar.From, c.Calendar.To} {
		if d == "" {
			continue
		}
		if _, err := calendar.ParseDate(d); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
		}
	}
	return nil
}

// WeekStart returns the configured first day of the week
func (c Config) WeekStart() time.Weekday {
	return time.Weekday(c.Calendar.WeekStart)
}

// MonthNames returns the configured month labels or the English defaults
func (c Config) MonthNames() [12]string {
	if len(c.Calendar.MonthNames) != 12 {
		return calendar.DefaultMonthNames
	}
	var names [12]string
	copy(names[:], c.Calendar.MonthNames)
	return names
}

// DefaultInterval returns the configured range, falling back to the
// calendar year of now for missing bounds
func (c Config) DefaultInterval(now time.Time) calendar.Interval {
	iv := calendar.Interval{
		Start: time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(now.Year(), time.December, 31, 0, 0, 0, 0, time.UTC),
	}
	if t, err := calendar.ParseDate(c.Calendar.From); err == nil {
		iv.Start = t
	}
	if t, err := calendar.ParseDate(c.Calendar.To); err == nil {
		iv.End = t
	}
	return iv
}
