package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/opptakhq/opptak/internal/config"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := config.LoadConfig("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != ":8080" {
		t.Fatalf("addr: %q", cfg.Addr)
	}
	if cfg.DatabasePath != "opptak.db" {
		t.Fatalf("database path: %q", cfg.DatabasePath)
	}
	if cfg.TokenDuration != time.Hour || cfg.MembershipTTL != 5*time.Minute {
		t.Fatalf("durations: %v %v", cfg.TokenDuration, cfg.MembershipTTL)
	}
	if cfg.Admission.ElectionCommitteeID != 1 || cfg.Admission.MainBoardID != 2 {
		t.Fatalf("sentinels: %+v", cfg.Admission)
	}
	if cfg.Admission.NotifyWorkers != 2 {
		t.Fatalf("notify workers: %d", cfg.Admission.NotifyWorkers)
	}
}

func TestLoadConfigFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
addr: ":9090"
jwt_secret: "filesecret"
token_duration: 30m
admission:
  election_committee_id: 10
  main_board_id: 20
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := config.LoadConfig(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != ":9090" || cfg.JWTSecret != "filesecret" {
		t.Fatalf("file values not applied: %+v", cfg)
	}
	if cfg.TokenDuration != 30*time.Minute {
		t.Fatalf("token duration: %v", cfg.TokenDuration)
	}
	if cfg.Admission.ElectionCommitteeID != 10 || cfg.Admission.MainBoardID != 20 {
		t.Fatalf("sentinels not applied: %+v", cfg.Admission)
	}
	// untouched keys keep their defaults
	if cfg.DatabasePath != "opptak.db" {
		t.Fatalf("database path: %q", cfg.DatabasePath)
	}
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv("OPPTAK_ADDR", ":7070")
	t.Setenv("OPPTAK_JWT_SECRET", "envsecret")
	t.Setenv("OPPTAK_ELECTION_COMMITTEE_ID", "42")

	cfg, err := config.LoadConfig("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != ":7070" || cfg.JWTSecret != "envsecret" {
		t.Fatalf("env values not applied: %+v", cfg)
	}
	if cfg.Admission.ElectionCommitteeID != 42 {
		t.Fatalf("sentinel not applied: %+v", cfg.Admission)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := config.LoadConfig(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestValidate(t *testing.T) {
	t.Run("DefaultSecretRejected", func(t *testing.T) {
		t.Setenv("OPPTAK_ENV", "")
		cfg, err := config.LoadConfig("")
		if err != nil {
			t.Fatalf("load: %v", err)
		}
		if err := cfg.Validate(); err == nil {
			t.Fatalf("default secret must be rejected outside development")
		}
	})

	t.Run("DefaultSecretToleratedInDevelopment", func(t *testing.T) {
		t.Setenv("OPPTAK_ENV", "development")
		cfg, err := config.LoadConfig("")
		if err != nil {
			t.Fatalf("load: %v", err)
		}
		if err := cfg.Validate(); err != nil {
			t.Fatalf("validate: %v", err)
		}
	})

	t.Run("EqualSentinelsRejected", func(t *testing.T) {
		cfg, err := config.LoadConfig("")
		if err != nil {
			t.Fatalf("load: %v", err)
		}
		cfg.JWTSecret = "something-else"
		cfg.Admission.MainBoardID = cfg.Admission.ElectionCommitteeID
		if err := cfg.Validate(); err == nil {
			t.Fatalf("equal sentinel ids must be rejected")
		}
	})
}
