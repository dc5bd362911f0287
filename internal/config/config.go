// Package config loads the bot configuration from the environment,
// optionally seeded from a .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Limits imposed by the chat platform on a single-select control.
const (
	MaxSchools     = 25
	MaxSchoolLabel = 100
)

var DefaultSchools = []string{
	"JerseySTEM - Newark",
	"JerseySTEM - Jersey City",
	"JerseySTEM - Hoboken",
	"JerseySTEM - Paterson",
	"JerseySTEM - Elizabeth",
}

type Config struct {
	Token          string        `env:"DISCORD_BOT_TOKEN,required,notEmpty"`
	GuildID        string        `env:"DISCORD_GUILD_ID"`
	RoleName       string        `env:"VOLUNTEER_ROLE_NAME"   envDefault:"Volunteer"`
	LogChannelName string        `env:"VOLUNTEER_LOG_CHANNEL" envDefault:"volunteer-log"`
	Schools        []string      `env:"SCHOOL_OPTIONS"        envSeparator:","`
	DataPath       string        `env:"VOLUNTEER_DATA_PATH"   envDefault:"volunteers.json"`
	SessionTimeout time.Duration `env:"SESSION_TIMEOUT"       envDefault:"0s"`
	LogLevel       string        `env:"LOG_LEVEL"             envDefault:"info"`
}

// Load reads dotenvPath if it exists and then parses the process environment.
// Variables already present in the environment win over the file.
func Load(dotenvPath string) (Config, error) {
	if dotenvPath != "" {
		if err := godotenv.Load(dotenvPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", dotenvPath, err)
		}
	}
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg.normalize()
}

// FromMap parses the configuration from the given variables only.
func FromMap(environment map[string]string) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Environment: environment}); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg.normalize()
}

func (cfg Config) normalize() (Config, error) {
	cfg.Schools = SplitSchools(cfg.Schools)
	if len(cfg.Schools) == 0 {
		cfg.Schools = append([]string(nil), DefaultSchools...)
	}
	if len(cfg.Schools) > MaxSchools {
		return Config{}, fmt.Errorf("SCHOOL_OPTIONS has %d entries, at most %d are allowed", len(cfg.Schools), MaxSchools)
	}
	for _, school := range cfg.Schools {
		if len(school) > MaxSchoolLabel {
			return Config{}, fmt.Errorf("school %q is longer than %d characters", school, MaxSchoolLabel)
		}
	}
	cfg.RoleName = strings.TrimSpace(cfg.RoleName)
	cfg.LogChannelName = strings.TrimSpace(cfg.LogChannelName)
	if cfg.RoleName == "" {
		return Config{}, errors.New("VOLUNTEER_ROLE_NAME must not be blank")
	}
	if cfg.LogChannelName == "" {
		return Config{}, errors.New("VOLUNTEER_LOG_CHANNEL must not be blank")
	}
	if cfg.SessionTimeout < 0 {
		return Config{}, fmt.Errorf("SESSION_TIMEOUT must not be negative, got %s", cfg.SessionTimeout)
	}
	return cfg, nil
}

// SplitSchools trims every entry, drops empty ones and keeps only the first
// occurrence of a repeated name. Order is preserved.
func SplitSchools(raw []string) []string {
	seen := make(map[string]struct{}, len(raw))
	schools := make([]string, 0, len(raw))
	for _, school := range raw {
		school = strings.TrimSpace(school)
		if school == "" {
			continue
		}
		if _, ok := seen[school]; ok {
			continue
		}
		seen[school] = struct{}{}
		schools = append(schools, school)
	}
	return schools
}

// DotenvPath is the .env file read at startup, overridable with DOTENV_PATH.
func DotenvPath() string {
	if path := os.Getenv("DOTENV_PATH"); path != "" {
		return path
	}
	return ".env"
}
