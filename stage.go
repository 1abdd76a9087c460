package skeptic

// ──────────────────────────────────────────────
// Negotiation stages
// ──────────────────────────────────────────────

// Stage is the phase label of the negotiation state machine.
type Stage string

const (
	StageGreeting  Stage = "Greeting"
	StageDemand    Stage = "Demand"
	StageContract  Stage = "Contract"
	StageCandidate Stage = "Candidate"
	StagePayment   Stage = "Payment"
	StageClosing   Stage = "Closing"
)

// stageRank orders stages by negotiation progress. Unknown stages rank
// below Greeting so a garbled draft stage never advances the dialogue.
var stageRank = map[Stage]int{
	StageGreeting:  1,
	StageDemand:    2,
	StageContract:  3,
	StageCandidate: 4,
	StagePayment:   5,
	StageClosing:   6,
}

// ParseStage normalizes a raw stage string. Unrecognized input maps to
// StageGreeting rather than failing.
func ParseStage(raw string) Stage {
	s := Stage(raw)
	if _, ok := stageRank[s]; ok {
		return s
	}
	return StageGreeting
}

// MaxStage returns the furthest-advanced of the given stages.
func MaxStage(stages ...Stage) Stage {
	best := StageGreeting
	for _, s := range stages {
		if stageRank[s] > stageRank[best] {
			best = s
		}
	}
	return best
}

// stageReached reports whether any turn in history carries the given stage.
func stageReached(history []Turn, stage Stage) bool {
	for _, t := range history {
		if t.Stage == stage {
			return true
		}
	}
	return false
}
