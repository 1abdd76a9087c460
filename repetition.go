package skeptic

import (
	"regexp"
	"strings"
)

// ──────────────────────────────────────────────
// Anti-Repetition Guard — per-phrase cooldowns and repeat caps
// ──────────────────────────────────────────────

// Sentences the persona must never emit, regardless of ledger state.
var sentenceStoplist = []string{
	"спасибо за ваше сообщение",
	"рад был помочь",
	"обращайтесь в любое время",
	"как искусственный интеллект",
	"thank you for your message",
	"as an ai",
}

// Neutral fillers returned when every candidate sentence is filtered.
var neutralFillers = []string{
	"Понял вас. Продолжим.",
	"Хорошо, я вас услышал.",
	"Принято. Что дальше по делу?",
}

var (
	sentenceSplitRe = regexp.MustCompile(`[^.!?…]+[.!?…]*`)
	normStripRe     = regexp.MustCompile(`[^\p{L}\p{N} ]+`)
	spaceRunRe      = regexp.MustCompile(`\s+`)
)

// RepetitionGuard filters a candidate reply against the session's
// phrase ledger.
type RepetitionGuard struct {
	cfg Config
}

// NewRepetitionGuard creates a guard. Without an argument it uses
// DefaultConfig.
func NewRepetitionGuard(cfg ...Config) *RepetitionGuard {
	c := DefaultConfig()
	if len(cfg) > 0 {
		c = cfg[0]
	}
	return &RepetitionGuard{cfg: c}
}

// Apply splits the candidate into sentences, drops stoplisted,
// recently-used, over-used and excess-question sentences, records the
// survivors in the ledger and joins them. If everything is filtered it
// returns a non-empty neutral filler.
func (g *RepetitionGuard) Apply(candidate string, state *SessionState) string {
	sentences := splitSentences(candidate)
	questions := 0
	var kept []string

	for _, sent := range sentences {
		trimmed := strings.TrimSpace(sent)
		if trimmed == "" || stoplisted(trimmed) {
			continue
		}
		norm := normalizePhrase(trimmed)
		if norm == "" {
			continue
		}
		if last, ok := state.PhraseLastUsed[norm]; ok && state.Turn-last <= g.cfg.RepeatCooldown {
			continue
		}
		if state.PhraseUseCount[norm] >= g.cfg.RepeatCap {
			continue
		}
		if isQuestion(trimmed) {
			if questions >= g.cfg.MaxQuestions {
				continue
			}
			questions++
		}
		state.PhraseUsed(norm)
		kept = append(kept, trimmed)
	}

	if len(kept) == 0 {
		return neutralFillers[state.Turn%len(neutralFillers)]
	}
	return strings.Join(kept, " ")
}

func splitSentences(text string) []string {
	return sentenceSplitRe.FindAllString(text, -1)
}

func stoplisted(sentence string) bool {
	lower := strings.ToLower(sentence)
	for _, stop := range sentenceStoplist {
		if strings.Contains(lower, stop) {
			return true
		}
	}
	return false
}

// normalizePhrase lower-cases and strips punctuation so trivial
// rephrasings collide in the ledger.
func normalizePhrase(sentence string) string {
	s := strings.ToLower(sentence)
	s = normStripRe.ReplaceAllString(s, "")
	s = spaceRunRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

func isQuestion(sentence string) bool {
	return strings.Contains(sentence, "?")
}
