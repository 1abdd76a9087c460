package skeptic

import (
	"math/rand"
	"regexp"
)

// ──────────────────────────────────────────────
// Objection Generator — seeded, non-repeating refusal lines
// ──────────────────────────────────────────────

// Objection is a scripted hesitation line plus the stage the persona
// steers the dialogue toward.
type Objection struct {
	Text           string
	SuggestedStage Stage
}

var (
	priceTalkRe = regexp.MustCompile(
		`(?i)(сколько стоит|цена|стоимост|тариф|прайс|how much|price|pricing|cost per)`)
	workPermitRe = regexp.MustCompile(
		`(?i)(разрешени[ея] на работу|патент|work permit|labor permit)`)
	slotQueueRe = regexp.MustCompile(
		`(?i)(слот|очеред|запись на подачу|slot|queue|appointment)`)
	payChannelRe = regexp.MustCompile(
		`(?i)(крипт|usdt|btc|кошел[её]к|карту|на карту|wallet|crypto|card payment)`)
)

var objectionPools = map[string][]string{
	"budget": {
		"Честно говоря, для нас это ощутимые деньги. Мне нужно понимать, за что именно мы платим.",
		"Бюджет у нас не резиновый. Пока не вижу, чем ваша ставка обоснована.",
		"Давайте без красивых цифр. Покажите раскладку, что входит в цену.",
	},
	"post_permit": {
		"Разрешение на работу — это хорошо, но платить до результата я не готов.",
		"Сначала документы на руках, потом разговор про деньги. Мы уже обжигались.",
		"Пока разрешения нет, обсуждать оплату рано.",
	},
	"slot_first": {
		"Слоты слотами, но без договора я никуда записываться не буду.",
		"Сначала покажите, что запись вообще существует, потом поговорим.",
		"Очередь меня не пугает. Пугает отсутствие бумаг.",
	},
	"stall": {
		"Мне нужно больше фактуры, прежде чем двигаться дальше.",
		"Пока рано. Пришлите документы, тогда продолжим.",
		"Я не принимаю решения на словах. Нужны бумаги.",
	},
}

const objectionFallback = "Давайте вернёмся к этому, когда будут документы."

// ObjectionGenerator selects context-appropriate refusal lines from a
// seeded pool, never repeating last turn's line.
type ObjectionGenerator struct {
	draws DrawSource
}

// NewObjectionGenerator creates a generator over the given draw source.
func NewObjectionGenerator(draws DrawSource) *ObjectionGenerator {
	return &ObjectionGenerator{draws: draws}
}

// Choose returns an objection when a trigger is present in the latest
// message (or the dialogue already sits at Payment), nil otherwise.
func (g *ObjectionGenerator) Choose(sessionID, latest string, stage Stage, state *SessionState) *Objection {
	pool := ""
	switch {
	case priceTalkRe.MatchString(latest):
		pool = "budget"
	case workPermitRe.MatchString(latest):
		pool = "post_permit"
	case slotQueueRe.MatchString(latest):
		pool = "slot_first"
	case payChannelRe.MatchString(latest), HasPostponement(latest), stage == StagePayment:
		pool = "stall"
	default:
		return nil
	}

	rng := g.draws.Turn(sessionID, state.Turn)
	text := drawLine(rng, objectionPools[pool])
	if text == state.LastObjection {
		text = objectionFallback
	}

	return &Objection{
		Text:           text,
		SuggestedStage: stageForGaps(state),
	}
}

// stageForGaps derives the suggested next stage from what evidence is
// still missing.
func stageForGaps(state *SessionState) Stage {
	switch {
	case !state.HasEvidence(EvDemandLetter):
		return StageDemand
	case !state.HasEvidence(EvCoopContractPDF) && !state.HasEvidence(EvCoopContractFull):
		return StageContract
	case state.UniqueEvidenceCount() < 2:
		return StageCandidate
	default:
		return StagePayment
	}
}

func drawLine(rng *rand.Rand, pool []string) string {
	if len(pool) == 0 {
		return objectionFallback
	}
	return pool[rng.Intn(len(pool))]
}
