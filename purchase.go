package skeptic

import "fmt"

// ──────────────────────────────────────────────
// Purchase Decision Model — stochastic, seeded commitment gate
// ──────────────────────────────────────────────

// Payment channels the persona can settle through.
const (
	ChannelBank = "bank"
	ChannelCard = "card"
)

// Commitment is the one-time purchase decision output.
type Commitment struct {
	Units   int
	Channel string
	Reply   string
}

// PurchaseModel decides whether the persona commits to a deal. All
// randomness is drawn from a (sessionID, turn) seed, so a turn replays
// identically while different turns get fresh draws.
type PurchaseModel struct {
	cfg   Config
	draws DrawSource
}

// NewPurchaseModel creates a model over the given draw source.
func NewPurchaseModel(cfg Config, draws DrawSource) *PurchaseModel {
	return &PurchaseModel{cfg: cfg, draws: draws}
}

// prerequisites the persona insists on before any money talk succeeds.
var purchasePrereqs = []string{
	EvBusinessCard,
	EvDemandLetter,
	EvSampleContract,
	EvCoopContractFull,
}

// Ready reports whether all evidence prerequisites are met.
func (m *PurchaseModel) Ready(state *SessionState) bool {
	for _, key := range purchasePrereqs {
		if !state.HasEvidence(key) {
			return false
		}
	}
	return true
}

// Decide evaluates the commitment gate for the current turn. Returns
// nil when preconditions fail or the draw declines; the gate may fire
// on a later turn. Never call after a session has committed; the
// engine enforces that with the session's Committed flag.
func (m *PurchaseModel) Decide(sessionID string, state *SessionState, trust int, latest string) *Commitment {
	if state.Committed || !m.Ready(state) || trust < m.cfg.PurchaseTrustFloor {
		return nil
	}

	prob := m.baseProb(trust)
	switch ObjectionHandling(latest) {
	case HandlingWeak:
		prob += m.cfg.WeakHandlingBonus
	case HandlingStrong:
		prob += m.cfg.StrongHandlingBonus
	}
	if prob > m.cfg.PurchaseProbCeiling {
		prob = m.cfg.PurchaseProbCeiling
	}

	rng := m.draws.Turn(sessionID, state.Turn)
	if rng.Float64() >= prob {
		return nil
	}

	// Unit count: geometric, about half the mass on a single unit,
	// monotonically decreasing up to MaxUnits.
	units := 1
	for units < m.cfg.MaxUnits && rng.Float64() < 0.5 {
		units++
	}

	channel := ChannelBank
	if pitch := ChannelPitchStrength(latest); pitch > 0 && payChannelRe.MatchString(latest) {
		p := float64(trust-m.cfg.PurchaseTrustFloor)/100.0*0.5 + pitch*0.4
		if p > m.cfg.AltChannelCeiling {
			p = m.cfg.AltChannelCeiling
		}
		if rng.Float64() < p {
			channel = ChannelCard
		}
	}

	return &Commitment{
		Units:   units,
		Channel: channel,
		Reply:   commitmentReply(units, channel),
	}
}

func (m *PurchaseModel) baseProb(trust int) float64 {
	for _, step := range m.cfg.PurchaseSteps {
		if trust >= step.MinTrust {
			return step.Prob
		}
	}
	return 0
}

func commitmentReply(units int, channel string) string {
	noun := pluralCandidates(units)
	if channel == ChannelCard {
		return fmt.Sprintf("Хорошо, вы меня убедили. Начнём с %d %s. Оплату проведу картой, присылайте данные для платежа.", units, noun)
	}
	return fmt.Sprintf("Хорошо, вы меня убедили. Начнём с %d %s. Выставляйте счёт на компанию, оплачу банковским переводом.", units, noun)
}

// pluralCandidates picks the Russian plural form for the unit count.
func pluralCandidates(n int) string {
	n = n % 100
	if n >= 11 && n <= 14 {
		return "кандидатов"
	}
	switch n % 10 {
	case 1:
		return "кандидата"
	case 2, 3, 4:
		return "кандидатов"
	default:
		return "кандидатов"
	}
}
