package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Addr             string          `yaml:"addr" env:"OPPTAK_ADDR"`
	DatabasePath     string          `yaml:"database_path" env:"OPPTAK_DATABASE_PATH"`
	RedisAddr        string          `yaml:"redis_addr" env:"OPPTAK_REDIS_ADDR"`
	JWTSecret        string          `yaml:"jwt_secret" env:"OPPTAK_JWT_SECRET"`
	APITimeout       time.Duration   `yaml:"timeout" env:"OPPTAK_TIMEOUT"`
	TokenDuration    time.Duration   `yaml:"token_duration" env:"OPPTAK_TOKEN_DURATION"`
	MembershipTTL    time.Duration   `yaml:"membership_cache_ttl" env:"OPPTAK_MEMBERSHIP_CACHE_TTL"`
	SubmissionSchema string          `yaml:"submission_schema" env:"OPPTAK_SUBMISSION_SCHEMA"`
	Admission        AdmissionConfig `yaml:"admission"`
}

// AdmissionConfig holds the admission-domain knobs. The sentinel committee
// ids are configuration so the visibility policy can be exercised against
// fixture data.
type AdmissionConfig struct {
	ElectionCommitteeID int64 `yaml:"election_committee_id" env:"OPPTAK_ELECTION_COMMITTEE_ID"`
	MainBoardID         int64 `yaml:"main_board_id" env:"OPPTAK_MAIN_BOARD_ID"`
	NotifyWorkers       int   `yaml:"notify_workers" env:"OPPTAK_NOTIFY_WORKERS"`
}

// LoadConfig builds the configuration from defaults, then the YAML file at
// path (when given), then environment overrides.
func LoadConfig(path string) (*Config, error) {
	cfg := &Config{
		Addr:          ":8080",
		DatabasePath:  "opptak.db",
		JWTSecret:     "supersecretkey",
		APITimeout:    15 * time.Second,
		TokenDuration: 1 * time.Hour,
		MembershipTTL: 5 * time.Minute,
		Admission: AdmissionConfig{
			ElectionCommitteeID: 1,
			MainBoardID:         2,
			NotifyWorkers:       2,
		},
	}
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()

		dec := yaml.NewDecoder(f)
		if err := dec.Decode(cfg); err != nil {
			return nil, err
		}
	}

	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate rejects configurations that cannot work. The default JWT secret is
// only tolerated when OPPTAK_ENV is development.
func (c *Config) Validate() error {
	if c.JWTSecret == "supersecretkey" && os.Getenv("OPPTAK_ENV") != "development" {
		return fmt.Errorf("insecure jwt_secret; set OPPTAK_JWT_SECRET")
	}
	if c.Admission.ElectionCommitteeID == c.Admission.MainBoardID {
		return fmt.Errorf("election committee and main board ids must differ")
	}
	return nil
}
