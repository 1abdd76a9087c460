package skeptic

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig_Valid(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("default profile rejected: %v", err)
	}
}

func TestConfigValidate_GateOrder(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Gate1Cap = 80
	if err := cfg.Validate(); err == nil {
		t.Fatal("unordered gates accepted")
	}
}

func TestConfigValidate_QuotaMonotonicity(t *testing.T) {
	cfg := DefaultConfig()
	// A lower-trust bracket with a larger cap than its higher-trust
	// neighbor must be rejected.
	cfg.QuotaBrackets = []QuotaBracket{
		{MinTrust: 90, Cap: 4, Bonus: 2},
		{MinTrust: 50, Cap: 6, Bonus: 1},
	}
	if err := cfg.Validate(); err == nil {
		t.Fatal("non-monotonic quota caps accepted")
	}
}

func TestConfigValidate_ProbCeiling(t *testing.T) {
	cfg := DefaultConfig()
	cfg.PurchaseProbCeiling = 1.5
	if err := cfg.Validate(); err == nil {
		t.Fatal("probability ceiling above 1 accepted")
	}
	cfg.PurchaseProbCeiling = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("zero probability ceiling accepted")
	}
}

func TestLoadConfig_OverridesAndDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profile.yaml")
	body := []byte("version: custom_v1\nhard_weight: 12\ngate3_cap: 80\n")
	if err := os.WriteFile(path, body, 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Version != "custom_v1" || cfg.HardWeight != 12 || cfg.Gate3Cap != 80 {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
	// Untouched fields keep their defaults.
	if cfg.MediumWeight != DefaultConfig().MediumWeight {
		t.Fatalf("default lost for medium_weight: %d", cfg.MediumWeight)
	}
	if len(cfg.QuotaBrackets) != len(DefaultConfig().QuotaBrackets) {
		t.Fatalf("default quota brackets lost: %d", len(cfg.QuotaBrackets))
	}
}

func TestLoadConfig_RejectsBrokenProfile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profile.yaml")
	if err := os.WriteFile(path, []byte("gate1_cap: 90\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Fatal("profile breaking gate order was accepted")
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("missing profile file was accepted")
	}
}

func TestClamp(t *testing.T) {
	if got := clamp(-5, 0, 100); got != 0 {
		t.Fatalf("clamp below: %d", got)
	}
	if got := clamp(120, 0, 100); got != 100 {
		t.Fatalf("clamp above: %d", got)
	}
	if got := clamp(42, 0, 100); got != 42 {
		t.Fatalf("clamp inside: %d", got)
	}
}
