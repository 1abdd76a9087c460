package skeptic

import "math"

// ──────────────────────────────────────────────
// Trust Scorer — deterministic, stateless, recomputed every turn
// ──────────────────────────────────────────────

// Scorer turns accumulated evidence and textual signals into a bounded
// trust value with nonlinear gates. It carries no state: given identical
// inputs it always returns the same value.
type Scorer struct {
	cfg Config
}

// NewScorer creates a scorer. Without an argument it uses DefaultConfig.
func NewScorer(cfg ...Config) *Scorer {
	c := DefaultConfig()
	if len(cfg) > 0 {
		c = cfg[0]
	}
	return &Scorer{cfg: c}
}

// Compute scores trust in [0,100] from the base value, the accumulated
// evidence set, the dialogue history and the latest user message.
// History must not include the latest message; only its user turns are
// inspected for running totals.
func (sc *Scorer) Compute(baseTrust int, ev EvidenceSet, history []Turn, latest string) int {
	c := sc.cfg
	score := float64(clamp(baseTrust, 0, 100))

	// Evidence contribution.
	score += float64(c.HardWeight * ev.Hard)
	score += float64(c.MediumWeight * minInt(ev.Medium, c.MediumCounted))
	score += float64(c.SupportWeight * minInt(ev.Support, c.SupportCounted))
	if ev.HasFullContract() {
		score += float64(c.FullContractBonus)
	}
	if ev.Unique() >= 3 {
		score += float64(c.VarietyBonus)
	}
	if ev.Unique() >= 5 {
		score += float64(c.VarietyBonusWide)
	}

	// Stage-history bonuses.
	if stageReached(history, StageCandidate) && ev.Hard+ev.Medium > 0 {
		score += float64(c.CandidateStageBonus)
	}
	if stageReached(history, StageContract) && ev.Hard > 0 {
		score += float64(c.ContractStageBonus)
	}

	// Tone over the trailing window of user messages plus the latest.
	window := trailingUserTexts(history, c.TopicWindow)
	windowAll := append(append([]string{}, window...), latest)

	politeness := 0
	pressure := 0
	obsequious := 0
	for _, msg := range windowAll {
		politeness += PolitenessScore(msg)
		pressure += PressureScore(msg)
		if IsObsequious(msg) {
			obsequious++
		}
	}
	score += float64(minInt(politeness, c.PolitenessCap))
	score += float64(pressure) // non-positive, uncapped downward
	if obsequious >= 2 {
		score -= float64(c.ObsequiousPenalty)
	}

	// Concreteness + business focus of the latest message.
	score += float64(ConcretenessScore(latest, c.ConcretenessCap))
	score += float64(BusinessFocusScore(latest, c.BusinessFocusCap))

	// Red and green flags of the latest message.
	redFlags := DetectRedFlags(latest)
	for _, f := range redFlags {
		score -= float64(f.Penalty)
	}
	score += float64(GreenFlagBonus(latest))

	// Personal-question quota: lifetime-cumulative within the
	// conversation, caps never reset between brackets.
	if IsPersonalQuestion(latest) {
		askedBefore := 0
		for _, t := range history {
			if t.Role == RoleUser && IsPersonalQuestion(t.Text) {
				askedBefore++
			}
		}
		if score < float64(c.PersonalFloor) {
			score -= float64(c.PersonalPenalty)
		} else if b, ok := bracketFor(c.QuotaBrackets, score); ok && askedBefore+1 <= b.Cap {
			score += b.Bonus
		}
		// Over quota: no bonus, no penalty.
	}

	// Courtesy micro-bonus on a turn-based cooldown.
	if HasCourtesy(latest) && courtesyCooledDown(history, c.CourtesyCooldown) {
		score += c.CourtesyBonus
	}

	// Well-rounded dialogue credits.
	topicSet := make(map[string]bool)
	paymentMentions := 0
	for _, msg := range windowAll {
		for _, topic := range Topics(msg) {
			topicSet[topic] = true
		}
		if HasPaymentMention(msg) {
			paymentMentions++
		}
	}
	score += float64(minInt(len(topicSet), c.TopicCreditCap))
	if !earlyPaymentPressure(paymentMentions, ev) {
		score += float64(c.NoPressureCredit)
	}

	// Nonlinear gates: hard ceilings lifted only by evidence structure.
	if ev.Hard < 1 && score > float64(c.Gate1Cap) {
		score = float64(c.Gate1Cap)
	}
	gate2Open := ev.Hard >= 2 || (ev.Hard >= 1 && ev.Medium >= 1)
	if !gate2Open && score > float64(c.Gate2Cap) {
		score = float64(c.Gate2Cap)
	}
	gate3Open := ev.Hard >= 2 && len(redFlags) == 0
	if !gate3Open && score > float64(c.Gate3Cap) {
		score = float64(c.Gate3Cap)
	}

	// Premature payment talk: the stage was pushed while trust had not
	// cleared the last gate.
	if stageReached(history, StagePayment) && score < float64(c.Gate3Cap) {
		score -= float64(c.PrematurePaymentPenalty)
	}

	return clamp(int(math.Round(score)), 0, 100)
}

// earlyPaymentPressure flags repeated payment talk without the evidence
// to back it.
func earlyPaymentPressure(paymentMentions int, ev EvidenceSet) bool {
	return paymentMentions >= 2 && (ev.Hard == 0 || ev.Hard+ev.Medium < 2)
}

// bracketFor picks the highest bracket whose floor the score clears.
// Brackets are ordered descending by MinTrust.
func bracketFor(brackets []QuotaBracket, score float64) (QuotaBracket, bool) {
	for _, b := range brackets {
		if score >= float64(b.MinTrust) {
			return b, true
		}
	}
	return QuotaBracket{}, false
}

// courtesyCooledDown reports whether no courtesy-bearing user message
// appeared within the last cooldown user turns.
func courtesyCooledDown(history []Turn, cooldown int) bool {
	seen := 0
	for i := len(history) - 1; i >= 0 && seen < cooldown; i-- {
		if history[i].Role != RoleUser {
			continue
		}
		if HasCourtesy(history[i].Text) {
			return false
		}
		seen++
	}
	return true
}

// trailingUserTexts returns up to n most recent user messages, oldest
// first.
func trailingUserTexts(history []Turn, n int) []string {
	var texts []string
	for i := len(history) - 1; i >= 0 && len(texts) < n; i-- {
		if history[i].Role == RoleUser {
			texts = append(texts, history[i].Text)
		}
	}
	// Reverse into chronological order.
	for i, j := 0, len(texts)-1; i < j; i, j = i+1, j-1 {
		texts[i], texts[j] = texts[j], texts[i]
	}
	return texts
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
