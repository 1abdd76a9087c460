package skeptic

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ──────────────────────────────────────────────
// Scoring profile — all weights, gates and cooldowns in one place
// ──────────────────────────────────────────────

// QuotaBracket defines the personal-question allowance for a trust floor.
// Caps are lifetime-cumulative within a conversation and must be
// monotonically increasing with trust.
type QuotaBracket struct {
	MinTrust int     `yaml:"min_trust"`
	Cap      int     `yaml:"cap"`
	Bonus    float64 `yaml:"bonus"`
}

// PurchaseStep maps a trust floor to a base commitment probability.
type PurchaseStep struct {
	MinTrust int     `yaml:"min_trust"`
	Prob     float64 `yaml:"prob"`
}

// Config is the versioned scoring profile consumed by the scorer and the
// policy engine. Construct with DefaultConfig and override, or load a
// profile from YAML with LoadConfig.
type Config struct {
	Version string `yaml:"version"`

	// Evidence weights (per unique key).
	HardWeight        int `yaml:"hard_weight"`
	MediumWeight      int `yaml:"medium_weight"`
	MediumCounted     int `yaml:"medium_counted"` // cap on counted Medium items
	SupportWeight     int `yaml:"support_weight"`
	SupportCounted    int `yaml:"support_counted"`
	FullContractBonus int `yaml:"full_contract_bonus"`
	VarietyBonus      int `yaml:"variety_bonus"`      // at >=3 distinct kinds
	VarietyBonusWide  int `yaml:"variety_bonus_wide"` // additionally at >=5

	// Stage-history bonuses.
	CandidateStageBonus int `yaml:"candidate_stage_bonus"`
	ContractStageBonus  int `yaml:"contract_stage_bonus"`

	// Tone.
	PolitenessCap     int `yaml:"politeness_cap"`
	ObsequiousPenalty int `yaml:"obsequious_penalty"`
	ConcretenessCap   int `yaml:"concreteness_cap"`
	BusinessFocusCap  int `yaml:"business_focus_cap"`

	// Personal-question quota.
	PersonalFloor   int            `yaml:"personal_floor"`   // below: penalty
	PersonalPenalty int            `yaml:"personal_penalty"` // applied below floor
	QuotaBrackets   []QuotaBracket `yaml:"quota_brackets"`

	// Courtesy micro-bonus.
	CourtesyBonus    float64 `yaml:"courtesy_bonus"`
	CourtesyCooldown int     `yaml:"courtesy_cooldown"` // turns between bonuses

	// Well-rounded dialogue credits.
	TopicCreditCap   int `yaml:"topic_credit_cap"`
	NoPressureCredit int `yaml:"no_pressure_credit"`
	TopicWindow      int `yaml:"topic_window"` // trailing user messages scanned

	// Nonlinear gates.
	Gate1Cap int `yaml:"gate1_cap"` // lifted by >=1 Hard
	Gate2Cap int `yaml:"gate2_cap"` // lifted by 2 Hard, or Hard+Medium
	Gate3Cap int `yaml:"gate3_cap"` // lifted by 2 Hard and a clean latest message

	PrematurePaymentPenalty int `yaml:"premature_payment_penalty"`

	// Purchase decision.
	PurchaseTrustFloor  int            `yaml:"purchase_trust_floor"`
	PurchaseSteps       []PurchaseStep `yaml:"purchase_steps"` // descending MinTrust
	WeakHandlingBonus   float64        `yaml:"weak_handling_bonus"`
	StrongHandlingBonus float64        `yaml:"strong_handling_bonus"`
	PurchaseProbCeiling float64        `yaml:"purchase_prob_ceiling"`
	MaxUnits            int            `yaml:"max_units"`
	AltChannelCeiling   float64        `yaml:"alt_channel_ceiling"`

	// Anti-repetition.
	RepeatCooldown int `yaml:"repeat_cooldown"` // turns
	RepeatCap      int `yaml:"repeat_cap"`      // uses per session
	MaxQuestions   int `yaml:"max_questions"`   // per outgoing message

	// Fallbacks.
	DefaultBaseTrust int `yaml:"default_base_trust"`
}

// DefaultConfig returns the hand-tuned production profile.
func DefaultConfig() Config {
	return Config{
		Version: "profile_v2",

		HardWeight:        10,
		MediumWeight:      4,
		MediumCounted:     3,
		SupportWeight:     2,
		SupportCounted:    3,
		FullContractBonus: 4,
		VarietyBonus:      3,
		VarietyBonusWide:  3,

		CandidateStageBonus: 2,
		ContractStageBonus:  3,

		PolitenessCap:     4,
		ObsequiousPenalty: 3,
		ConcretenessCap:   3,
		BusinessFocusCap:  3,

		PersonalFloor:   40,
		PersonalPenalty: 4,
		QuotaBrackets: []QuotaBracket{
			{MinTrust: 100, Cap: 8, Bonus: 3},
			{MinTrust: 90, Cap: 7, Bonus: 3},
			{MinTrust: 80, Cap: 6, Bonus: 2},
			{MinTrust: 70, Cap: 5, Bonus: 2},
			{MinTrust: 60, Cap: 4, Bonus: 2},
			{MinTrust: 50, Cap: 3, Bonus: 1},
			{MinTrust: 40, Cap: 2, Bonus: 1},
		},

		CourtesyBonus:    0.5,
		CourtesyCooldown: 3,

		TopicCreditCap:   8,
		NoPressureCredit: 1,
		TopicWindow:      6,

		Gate1Cap: 30,
		Gate2Cap: 60,
		Gate3Cap: 75,

		PrematurePaymentPenalty: 8,

		PurchaseTrustFloor: 70,
		PurchaseSteps: []PurchaseStep{
			{MinTrust: 100, Prob: 0.50},
			{MinTrust: 90, Prob: 0.35},
			{MinTrust: 80, Prob: 0.05},
			{MinTrust: 0, Prob: 0.01},
		},
		WeakHandlingBonus:   0.03,
		StrongHandlingBonus: 0.10,
		PurchaseProbCeiling: 0.85,
		MaxUnits:            10,
		AltChannelCeiling:   0.80,

		RepeatCooldown: 6,
		RepeatCap:      1,
		MaxQuestions:   1,

		DefaultBaseTrust: 20,
	}
}

// LoadConfig reads a YAML scoring profile. Fields missing from the file
// keep their DefaultConfig values.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read scoring profile: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse scoring profile: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate rejects profiles that would break scorer invariants.
func (c Config) Validate() error {
	if c.Gate1Cap > c.Gate2Cap || c.Gate2Cap > c.Gate3Cap {
		return fmt.Errorf("gates must be ordered: %d <= %d <= %d",
			c.Gate1Cap, c.Gate2Cap, c.Gate3Cap)
	}
	prevCap := -1
	// Brackets are stored descending by trust; caps must not increase as
	// trust decreases. A bracket where the cap could grow with lower
	// trust reintroduces a known profile bug.
	for _, b := range c.QuotaBrackets {
		if prevCap >= 0 && b.Cap > prevCap {
			return fmt.Errorf("quota cap not monotonic at trust>=%d", b.MinTrust)
		}
		prevCap = b.Cap
	}
	if c.PurchaseProbCeiling <= 0 || c.PurchaseProbCeiling > 1 {
		return fmt.Errorf("purchase probability ceiling out of range: %v", c.PurchaseProbCeiling)
	}
	return nil
}

// clamp bounds v to [lo, hi].
func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
